package task

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"trendies_market_v1/internal/middleware"
	"trendies_market_v1/internal/wizard"
)

// DefaultCleanupSpec 默认每 5 分钟清理一次
const DefaultCleanupSpec = "@every 5m"

// ==================== SessionCleanupTask 向导会话清理 ====================

// SessionCleanupTask 回收空闲向导会话与过期的估价冷却记录
type SessionCleanupTask struct {
	sessions *wizard.SessionStore
	limiter  *middleware.CooldownLimiter
	log      *zap.Logger
	cron     *cron.Cron

	spec        string
	limiterIdle time.Duration
	now         func() time.Time
}

// NewSessionCleanupTask 创建清理任务，limiter 可为 nil
func NewSessionCleanupTask(sessions *wizard.SessionStore, limiter *middleware.CooldownLimiter, spec string, log *zap.Logger) *SessionCleanupTask {
	if spec == "" {
		spec = DefaultCleanupSpec
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionCleanupTask{
		sessions:    sessions,
		limiter:     limiter,
		log:         log,
		cron:        cron.New(cron.WithSeconds()),
		spec:        spec,
		limiterIdle: 10 * time.Minute, // 远大于冷却间隔
		now:         time.Now,
	}
}

// Start 启动定时任务
func (t *SessionCleanupTask) Start() error {
	if _, err := t.cron.AddFunc(t.spec, t.execute); err != nil {
		return fmt.Errorf("无法启动会话清理任务: %w", err)
	}
	t.cron.Start()
	t.log.Info("[SessionCleanupTask] 已启动", zap.String("spec", t.spec))
	return nil
}

// Stop 停止任务，等待执行中的清理完成
func (t *SessionCleanupTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.log.Info("[SessionCleanupTask] 已停止")
}

// RunNow 手动执行一次
func (t *SessionCleanupTask) RunNow() (sessions, cooldowns int) {
	return t.run()
}

func (t *SessionCleanupTask) execute() {
	t.run()
}

func (t *SessionCleanupTask) run() (sessions, cooldowns int) {
	sessions = t.sessions.PurgeExpired(t.now())
	if t.limiter != nil {
		cooldowns = t.limiter.PurgeIdle(t.limiterIdle)
	}
	if sessions > 0 || cooldowns > 0 {
		t.log.Info("[SessionCleanupTask] 清理完成",
			zap.Int("sessions", sessions),
			zap.Int("cooldowns", cooldowns),
			zap.Int("remaining", t.sessions.Len()),
		)
	}
	return sessions, cooldowns
}
