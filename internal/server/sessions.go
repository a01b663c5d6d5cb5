package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/teemow/travelcal/internal/instrumentation"
	"github.com/teemow/travelcal/internal/logging"
)

// DefaultSessionTTL is how long downloads and pending pushes are kept.
const DefaultSessionTTL = time.Hour

const maxCleanupInterval = 10 * time.Minute

type sessionEntry[T any] struct {
	value   T
	expires time.Time
}

// SessionStore keeps values under server-generated identifiers for a limited
// time. Expired entries are never returned and are swept periodically.
type SessionStore[T any] struct {
	name          string
	entries       map[string]*sessionEntry[T]
	mu            sync.Mutex
	ttl           time.Duration
	now           func() time.Time
	cleanupTicker *time.Ticker
	cleanupDone   chan struct{}
	stopOnce      sync.Once
	// metrics is nil for stores that do not count as active sessions
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// NewSessionStore creates a store whose entries live for ttl and starts its
// cleanup goroutine. Call Stop to release it.
func NewSessionStore[T any](name string, ttl time.Duration, metrics *instrumentation.Metrics, logger *slog.Logger) *SessionStore[T] {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	s := &SessionStore[T]{
		name:          name,
		entries:       make(map[string]*sessionEntry[T]),
		ttl:           ttl,
		now:           time.Now,
		cleanupTicker: time.NewTicker(cleanupInterval(ttl)),
		cleanupDone:   make(chan struct{}),
		metrics:       metrics,
		logger:        logging.OrDefault(logger),
	}

	go s.cleanupExpired()

	return s
}

func cleanupInterval(ttl time.Duration) time.Duration {
	interval := ttl / 2
	if interval > maxCleanupInterval {
		interval = maxCleanupInterval
	}
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// TTL returns the lifetime of new entries.
func (s *SessionStore[T]) TTL() time.Duration {
	return s.ttl
}

// Put stores value under id, replacing any previous entry.
func (s *SessionStore[T]) Put(id string, value T) {
	s.mu.Lock()
	_, existed := s.entries[id]
	s.entries[id] = &sessionEntry[T]{value: value, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()

	if !existed {
		s.metrics.IncrementActiveSessions(context.Background())
	}
}

// Get returns the value stored under id if it has not expired.
func (s *SessionStore[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	e, ok := s.entries[id]
	if !ok || !s.now().Before(e.expires) {
		return zero, false
	}
	return e.value, true
}

// Take returns the value stored under id and removes it, so an identifier
// can be redeemed once.
func (s *SessionStore[T]) Take(id string) (T, bool) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok {
		delete(s.entries, id)
	}
	s.mu.Unlock()

	var zero T
	if !ok {
		return zero, false
	}
	s.metrics.DecrementActiveSessions(context.Background())
	if !s.now().Before(e.expires) {
		return zero, false
	}
	return e.value, true
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (s *SessionStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes expired entries and returns how many were removed.
func (s *SessionStore[T]) Sweep() int {
	s.mu.Lock()
	now := s.now()
	expired := 0
	for id, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, id)
			expired++
		}
	}
	s.mu.Unlock()

	for i := 0; i < expired; i++ {
		s.metrics.DecrementActiveSessions(context.Background())
	}
	return expired
}

func (s *SessionStore[T]) cleanupExpired() {
	for {
		select {
		case <-s.cleanupTicker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("Cleaned up expired sessions", slog.String("store", s.name), slog.Int("count", n))
			}
		case <-s.cleanupDone:
			return
		}
	}
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (s *SessionStore[T]) Stop() {
	s.stopOnce.Do(func() {
		s.cleanupTicker.Stop()
		close(s.cleanupDone)
	})
}
