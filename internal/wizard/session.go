package wizard

import (
	"sync"
	"time"

	"trendies_market_v1/internal/schema"
)

// SessionStore 每个用户至多一个向导会话，空闲超时后回收
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Wizard
	ttl      time.Duration
	schema   *schema.ListingSchema
	pipeline Pipeline
}

// NewSessionStore 创建会话存储，ttl <= 0 时默认 30 分钟
func NewSessionStore(s *schema.ListingSchema, p Pipeline, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionStore{
		sessions: make(map[int64]*Wizard),
		ttl:      ttl,
		schema:   s,
		pipeline: p,
	}
}

// Start 为用户开启新会话，已有会话被丢弃
func (s *SessionStore) Start(userID int64) *Wizard {
	w := New(s.schema, s.pipeline)

	s.mu.Lock()
	old := s.sessions[userID]
	s.sessions[userID] = w
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return w
}

// Get 获取用户会话，过期视为不存在
func (s *SessionStore) Get(userID int64) (*Wizard, bool) {
	s.mu.Lock()
	w, ok := s.sessions[userID]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}

	if s.expired(w, time.Now()) {
		s.discardIf(userID, w)
		return nil, false
	}
	return w, true
}

// Discard 结束用户会话
func (s *SessionStore) Discard(userID int64) {
	s.mu.Lock()
	w, ok := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()

	if ok {
		w.Close()
	}
}

// PurgeExpired 回收所有过期会话，返回回收数量
func (s *SessionStore) PurgeExpired(now time.Time) int {
	s.mu.Lock()
	var expired []*Wizard
	for userID, w := range s.sessions {
		if s.expired(w, now) {
			delete(s.sessions, userID)
			expired = append(expired, w)
		}
	}
	s.mu.Unlock()

	for _, w := range expired {
		w.Close()
	}
	return len(expired)
}

// Len 当前会话数
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// expired 提交或估价进行中的会话不回收
func (s *SessionStore) expired(w *Wizard, now time.Time) bool {
	if w.Busy() {
		return false
	}
	return now.Sub(w.LastActive()) > s.ttl
}

func (s *SessionStore) discardIf(userID int64, w *Wizard) {
	s.mu.Lock()
	if s.sessions[userID] != w {
		s.mu.Unlock()
		return
	}
	delete(s.sessions, userID)
	s.mu.Unlock()
	w.Close()
}
