package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendies_market_v1/internal/schema"
)

func TestSessionStore_StartGetDiscard(t *testing.T) {
	s := NewSessionStore(schema.NewListingSchema(), &fakePipeline{}, time.Minute)

	_, ok := s.Get(1)
	assert.False(t, ok)

	w := s.Start(1)
	got, ok := s.Get(1)
	require.True(t, ok)
	assert.Same(t, w, got)

	// 重新开始替换旧会话
	w2 := s.Start(1)
	assert.NotEqual(t, w.ID(), w2.ID())
	assert.Equal(t, 1, s.Len())

	s.Discard(1)
	_, ok = s.Get(1)
	assert.False(t, ok)
}

func TestSessionStore_PurgeExpired(t *testing.T) {
	s := NewSessionStore(schema.NewListingSchema(), &fakePipeline{}, time.Minute)
	s.Start(1)
	s.Start(2)

	assert.Equal(t, 0, s.PurgeExpired(time.Now()))
	assert.Equal(t, 2, s.PurgeExpired(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, s.Len())
}

func TestSessionStore_ExpiredOnGet(t *testing.T) {
	s := NewSessionStore(schema.NewListingSchema(), &fakePipeline{}, time.Millisecond)
	s.Start(1)
	time.Sleep(5 * time.Millisecond)

	_, ok := s.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}
