package model

import "gorm.io/datatypes"

// AICallLog 价格建议调用日志
// 失败详情只落库和写日志，不返回给调用方
type AICallLog struct {
	BaseModel

	// 关联
	UserID int64 `gorm:"index;comment:用户ID"`

	// 调用信息
	Provider  string `gorm:"size:32;index;comment:上游(chat/gemini)"`
	ModelName string `gorm:"size:64;comment:模型名称"`

	// 输入输出
	Attributes     datatypes.JSON `gorm:"comment:商品属性"`
	SuggestedPrice float64        `gorm:"type:decimal(12,2);default:0;comment:建议价格"`

	// 性能
	DurationMs int64 `gorm:"comment:耗时(毫秒)"`

	// 状态
	Status      string `gorm:"size:32;index;default:success;comment:状态(success/failed)"`
	FailureKind string `gorm:"size:32;comment:失败类型"`
	ErrorMsg    string `gorm:"size:1024;comment:错误信息"`
}

func (AICallLog) TableName() string {
	return "ai_call_logs"
}

// ==================== 状态常量 ====================

const (
	AICallStatusSuccess = "success"
	AICallStatusFailed  = "failed"
)
