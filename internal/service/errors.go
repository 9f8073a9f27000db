package service

import (
	"errors"
	"fmt"

	"trendies_market_v1/internal/schema"
)

// ==================== 错误分类 ====================

var (
	// ErrAuthenticationRequired 无法解析当前用户
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrStorageFailed 存储失败，细节只记录日志
	ErrStorageFailed = errors.New("storage failed")
	// ErrSuggestionThrottled 价格建议冷却中
	ErrSuggestionThrottled = errors.New("suggestion throttled")
)

// 面向调用方的安全提示
const (
	MsgAuthenticationRequired = "Authentication required."
	MsgInvalidData            = "Invalid data provided."
	MsgSuggestionFailed       = "Failed to get AI suggestion."
	MsgSuggestionThrottled    = "Too many suggestion requests. Please wait a moment."
	MsgCreateFailed           = "Database error. Failed to create listing."
	MsgListFailed             = "Failed to fetch listings."
)

// ValidationError 完整校验失败
type ValidationError struct {
	Fields schema.FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid data: %v", e.Fields.Paths())
}

// SuggestionFailureKind 价格建议失败类型
type SuggestionFailureKind string

const (
	FailureUpstream  SuggestionFailureKind = "upstream"  // 网络错误 / 非 2xx
	FailureMalformed SuggestionFailureKind = "malformed" // 响应无法解析或为空
	FailureNoNumber  SuggestionFailureKind = "no_number" // 文本中没有数字
	FailureTimeout   SuggestionFailureKind = "timeout"   // 超时
)

// SuggestionError 价格建议失败，Kind 只用于日志与统计
type SuggestionError struct {
	Kind SuggestionFailureKind
	Err  error
}

func (e *SuggestionError) Error() string {
	return fmt.Sprintf("price suggestion failed (%s): %v", e.Kind, e.Err)
}

func (e *SuggestionError) Unwrap() error {
	return e.Err
}

// upstreamError 供 provider 标记失败类型
func upstreamError(kind SuggestionFailureKind, format string, args ...any) error {
	return &SuggestionError{Kind: kind, Err: fmt.Errorf(format, args...)}
}
