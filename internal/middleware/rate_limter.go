package middleware

import (
	"fmt"
	"sync"
	"time"
)

// ==================== CooldownLimiter 冷却限流器 ====================

// CooldownLimiter 按 key 的冷却限流器
// 同一 key 在冷却间隔内只放行一次
type CooldownLimiter struct {
	locks sync.Map // key -> *lockEntry
}

// lockEntry 锁条目
type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// NewCooldownLimiter 创建限流器
func NewCooldownLimiter() *CooldownLimiter {
	return &CooldownLimiter{}
}

// ==================== 限流检查 ====================

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行，放行时记录本次时间
func (r *CooldownLimiter) Check(key string, interval time.Duration) CheckResult {
	if interval <= 0 {
		return CheckResult{Allowed: true}
	}

	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)

	if !entry.lastTime.IsZero() && elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key 的限流
func (r *CooldownLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// PurgeIdle 清理超过 maxIdle 未使用的条目
func (r *CooldownLimiter) PurgeIdle(maxIdle time.Duration) int {
	removed := 0
	r.locks.Range(func(k, v any) bool {
		entry := v.(*lockEntry)
		entry.mu.Lock()
		idle := time.Since(entry.lastTime) > maxIdle
		entry.mu.Unlock()
		if idle {
			r.locks.Delete(k)
			removed++
		}
		return true
	})
	return removed
}

// ==================== Key 生成工具 ====================

// SuggestionKey 价格建议冷却 Key
func SuggestionKey(userID int64) string {
	return fmt.Sprintf("user:%d:suggest_price", userID)
}
