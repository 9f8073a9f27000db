package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// cacheItem 内部结构，包含值和过期时间
type cacheItem struct {
	value      []byte
	expiration time.Time
}

// MemoryCache 进程内缓存，使用 sync.Map 保证并发安全
type MemoryCache struct {
	items sync.Map
	ttl   time.Duration

	genMu sync.Mutex
	gens  map[string]int64
}

// NewMemoryCache 创建内存缓存，ttl <= 0 时永不过期
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, gens: make(map[string]int64)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, ok := m.items.Load(key)
	if !ok {
		return nil, false, nil
	}

	item := val.(cacheItem)
	if !item.expiration.IsZero() && time.Now().After(item.expiration) {
		m.items.Delete(key) // 懒删除
		return nil, false, nil
	}
	return item.value, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	item := cacheItem{value: value}
	if m.ttl > 0 {
		item.expiration = time.Now().Add(m.ttl)
	}
	m.items.Store(key, item)
	return nil
}

func (m *MemoryCache) Generation(_ context.Context, path string) (int64, error) {
	m.genMu.Lock()
	defer m.genMu.Unlock()
	return m.gens[genKey(path)], nil
}

func (m *MemoryCache) InvalidatePath(_ context.Context, path string) error {
	m.genMu.Lock()
	m.gens[genKey(path)]++
	m.genMu.Unlock()

	prefix := pathPrefix(path)
	m.items.Range(func(k, _ any) bool {
		if strings.HasPrefix(k.(string), prefix) {
			m.items.Delete(k)
		}
		return true
	})
	return nil
}
