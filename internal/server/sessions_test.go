package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestStore(t *testing.T, ttl time.Duration) (*SessionStore[string], *time.Time) {
	t.Helper()
	s := NewSessionStore[string]("test", ttl, nil, nil)
	t.Cleanup(s.Stop)

	now := time.Date(2026, time.March, 23, 10, 0, 0, 0, time.UTC)
	s.mu.Lock()
	s.now = func() time.Time { return now }
	s.mu.Unlock()
	return s, &now
}

func TestSessionStore_PutGetTake(t *testing.T) {
	s, _ := newTestStore(t, time.Hour)

	s.Put("a", "first")
	got, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "first", got)

	got, ok = s.Take("a")
	assert.True(t, ok)
	assert.Equal(t, "first", got)

	_, ok = s.Take("a")
	assert.False(t, ok, "taken entries are gone")
	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestSessionStore_Expiry(t *testing.T) {
	s, now := newTestStore(t, time.Hour)

	s.Put("a", "first")
	*now = now.Add(59 * time.Minute)
	_, ok := s.Get("a")
	assert.True(t, ok)

	*now = now.Add(time.Minute)
	_, ok = s.Get("a")
	assert.False(t, ok, "an entry expires exactly at its ttl")

	_, ok = s.Take("a")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len(), "taking an expired entry still removes it")
}

func TestSessionStore_Sweep(t *testing.T) {
	s, now := newTestStore(t, time.Hour)

	s.Put("old", "1")
	*now = now.Add(30 * time.Minute)
	s.Put("new", "2")
	*now = now.Add(45 * time.Minute)

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("new")
	assert.True(t, ok)
}

func TestSessionStore_PutRefreshesExpiry(t *testing.T) {
	s, now := newTestStore(t, time.Hour)

	s.Put("a", "first")
	*now = now.Add(50 * time.Minute)
	s.Put("a", "second")
	*now = now.Add(50 * time.Minute)

	got, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "second", got)
	assert.Equal(t, 1, s.Len())
}

func TestSessionStore_DefaultTTLAndStop(t *testing.T) {
	s := NewSessionStore[int]("test", 0, nil, nil)
	assert.Equal(t, DefaultSessionTTL, s.TTL())

	assert.NotPanics(t, func() {
		s.Stop()
		s.Stop()
	})
}

func TestCleanupInterval(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want time.Duration
	}{
		{ttl: time.Hour, want: 10 * time.Minute},
		{ttl: 10 * time.Minute, want: 5 * time.Minute},
		{ttl: time.Second, want: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.ttl.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, cleanupInterval(tt.ttl))
		})
	}
}
