package cache

import (
	"context"
	"fmt"
	"strings"
)

// ViewCache 列表视图缓存
// key 由视图路径、代数和用户组成，写入新商品后按路径整体失效
// InvalidatePath 会先递增路径代数，失效前读到旧代数的写入不会再被读到
type ViewCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Generation(ctx context.Context, path string) (int64, error)
	InvalidatePath(ctx context.Context, path string) error
}

const (
	keyPrefix = "view:"
	genPrefix = "viewgen:"
)

// HomePath 首页（我的商品列表）视图路径
const HomePath = "/"

// ViewKey 生成视图缓存 key，gen 取自 Generation
func ViewKey(path string, gen, userID int64) string {
	return fmt.Sprintf("%sg%d|user:%d", pathPrefix(path), gen, userID)
}

// pathPrefix 路径下所有 key 的公共前缀
func pathPrefix(path string) string {
	return keyPrefix + strings.TrimSpace(path) + "|"
}

func genKey(path string) string {
	return genPrefix + strings.TrimSpace(path)
}
