package utils

import (
	"sync"
	"time"
)

// cacheItem 内部结构，包含值和过期时间
type cacheItem struct {
	value      string
	expiration time.Time
}

// TTLStore 带过期时间的字符串缓存，使用 sync.Map 保证并发安全
// 用于 OAuth state -> PKCE verifier 这类短期数据
type TTLStore struct {
	items sync.Map
	ttl   time.Duration
}

// NewTTLStore 创建缓存，ttl <= 0 时默认 10 分钟，足够完成授权流程
func NewTTLStore(ttl time.Duration) *TTLStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TTLStore{ttl: ttl}
}

// Set 设置缓存
func (s *TTLStore) Set(key, value string) {
	s.items.Store(key, cacheItem{
		value:      value,
		expiration: time.Now().Add(s.ttl),
	})
}

// Get 获取缓存并验证是否过期
func (s *TTLStore) Get(key string) (string, bool) {
	val, ok := s.items.Load(key)
	if !ok {
		return "", false
	}

	item := val.(cacheItem)
	if time.Now().After(item.expiration) {
		s.items.Delete(key) // 懒删除
		return "", false
	}
	return item.value, true
}

// Take 取出并删除 (用完即焚)
func (s *TTLStore) Take(key string) (string, bool) {
	v, ok := s.Get(key)
	if ok {
		s.items.Delete(key)
	}
	return v, ok
}

// Delete 删除缓存
func (s *TTLStore) Delete(key string) {
	s.items.Delete(key)
}
