package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewHTTPClient 创建统一配置的 Resty 客户端
// timeout 为 0 时不设客户端超时，由调用方 context 控制
func NewHTTPClient(timeout time.Duration) *resty.Client {
	client := resty.New().
		SetHeader("User-Agent", "Trendies-Market/1.0")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return client
}
