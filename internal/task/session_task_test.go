package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trendies_market_v1/internal/middleware"
	"trendies_market_v1/internal/schema"
	"trendies_market_v1/internal/wizard"
)

func setupCleanupTask(t *testing.T) (*SessionCleanupTask, *wizard.SessionStore, *middleware.CooldownLimiter) {
	t.Helper()
	sessions := wizard.NewSessionStore(schema.NewListingSchema(), nil, time.Minute)
	limiter := middleware.NewCooldownLimiter()
	task := NewSessionCleanupTask(sessions, limiter, "", zap.NewNop())
	return task, sessions, limiter
}

func TestSessionCleanupTask_PurgesExpiredSessions(t *testing.T) {
	task, sessions, _ := setupCleanupTask(t)
	sessions.Start(1)
	sessions.Start(2)

	purged, _ := task.RunNow()
	assert.Equal(t, 0, purged, "未过期的会话不应被清理")
	assert.Equal(t, 2, sessions.Len())

	task.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	purged, _ = task.RunNow()
	assert.Equal(t, 2, purged)
	assert.Equal(t, 0, sessions.Len())
}

func TestSessionCleanupTask_PurgesIdleCooldowns(t *testing.T) {
	task, _, limiter := setupCleanupTask(t)
	key := middleware.SuggestionKey(7)
	require.True(t, limiter.Check(key, time.Hour).Allowed)
	require.False(t, limiter.Check(key, time.Hour).Allowed)

	_, cooldowns := task.RunNow()
	assert.Equal(t, 0, cooldowns)

	task.limiterIdle = 0
	time.Sleep(time.Millisecond)
	_, cooldowns = task.RunNow()
	assert.Equal(t, 1, cooldowns)
	assert.True(t, limiter.Check(key, time.Hour).Allowed, "清理后冷却记录应重新开始")
}

func TestSessionCleanupTask_StartStop(t *testing.T) {
	task, _, _ := setupCleanupTask(t)
	assert.Equal(t, DefaultCleanupSpec, task.spec)

	require.NoError(t, task.Start())
	task.Stop()

	bad := NewSessionCleanupTask(wizard.NewSessionStore(schema.NewListingSchema(), nil, 0), nil, "not a spec", nil)
	assert.Error(t, bad.Start())
}

func TestTaskManager(t *testing.T) {
	sessions := wizard.NewSessionStore(schema.NewListingSchema(), nil, time.Minute)

	tm := NewTaskManager(&TaskManagerDeps{Sessions: sessions}, nil)
	assert.Equal(t, map[string]bool{"session_cleanup": true}, tm.Status())
	assert.NoError(t, tm.TriggerSessionCleanup())

	disabled := NewTaskManager(&TaskManagerDeps{Sessions: sessions}, &TaskManagerConfig{})
	assert.ErrorIs(t, disabled.TriggerSessionCleanup(), ErrTaskDisabled)
	require.NoError(t, disabled.Start())
	disabled.Stop()
}
