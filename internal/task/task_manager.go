package task

import (
	"go.uber.org/zap"

	"trendies_market_v1/internal/middleware"
	"trendies_market_v1/internal/wizard"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理进程内后台任务
type TaskManager struct {
	sessionCleanup *SessionCleanupTask
	log            *zap.Logger
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	Sessions *wizard.SessionStore
	Limiter  *middleware.CooldownLimiter
	Logger   *zap.Logger
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	SessionCleanupEnabled bool
	SessionCleanupSpec    string
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		SessionCleanupEnabled: true,
		SessionCleanupSpec:    DefaultCleanupSpec,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	tm := &TaskManager{log: log}
	if cfg.SessionCleanupEnabled && deps.Sessions != nil {
		tm.sessionCleanup = NewSessionCleanupTask(deps.Sessions, deps.Limiter, cfg.SessionCleanupSpec, log)
	}
	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() error {
	tm.log.Info("[TaskManager] 正在启动后台任务...")
	if tm.sessionCleanup != nil {
		if err := tm.sessionCleanup.Start(); err != nil {
			return err
		}
	}
	tm.log.Info("[TaskManager] 后台任务已全部启动")
	return nil
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	tm.log.Info("[TaskManager] 正在停止后台任务...")
	if tm.sessionCleanup != nil {
		tm.sessionCleanup.Stop()
	}
	tm.log.Info("[TaskManager] 后台任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerSessionCleanup 立即清理一次
func (tm *TaskManager) TriggerSessionCleanup() error {
	if tm.sessionCleanup == nil {
		return ErrTaskDisabled
	}
	tm.sessionCleanup.RunNow()
	return nil
}

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"session_cleanup": tm.sessionCleanup != nil,
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)
