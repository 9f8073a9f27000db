package middleware

import "context"

// ==================== 身份上下文 ====================

type identityContextKey struct{}

// Identity 当前请求的登录用户
type Identity struct {
	UserID int64
	Email  string
	Name   string
}

// WithIdentity 注入身份到 context
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext 从 context 获取身份
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	id, ok := ctx.Value(identityContextKey{}).(*Identity)
	if !ok || id == nil || id.UserID <= 0 {
		return nil, false
	}
	return id, true
}

// ContextIdentityResolver 从 request context 解析身份
type ContextIdentityResolver struct{}

// CurrentUser 返回当前登录用户，未登录时 ok 为 false
func (ContextIdentityResolver) CurrentUser(ctx context.Context) (*Identity, bool) {
	return IdentityFromContext(ctx)
}
