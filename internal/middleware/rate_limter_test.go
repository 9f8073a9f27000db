package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownLimiter_Check(t *testing.T) {
	l := NewCooldownLimiter()
	key := SuggestionKey(1)

	assert.True(t, l.Check(key, time.Minute).Allowed)

	res := l.Check(key, time.Minute)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))

	// 不同用户互不影响
	assert.True(t, l.Check(SuggestionKey(2), time.Minute).Allowed)

	l.Reset(key)
	assert.True(t, l.Check(key, time.Minute).Allowed)
}

func TestCooldownLimiter_ZeroInterval(t *testing.T) {
	l := NewCooldownLimiter()
	for i := 0; i < 3; i++ {
		assert.True(t, l.Check("k", 0).Allowed)
	}
}

func TestCooldownLimiter_PurgeIdle(t *testing.T) {
	l := NewCooldownLimiter()
	l.Check("a", time.Minute)

	assert.Equal(t, 0, l.PurgeIdle(time.Hour))
	assert.Equal(t, 1, l.PurgeIdle(0))
}
