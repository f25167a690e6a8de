// Package ratelimit implements the shared fixed-window counters consulted by
// the login throttle middleware.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/societyhub/backoffice-api/internal/core/domain"
)

const defaultWindow = time.Minute

// Store is an in-memory fixed-window counter store. Counters live in a
// sync.Map keyed by the composite (route, client) key; each counter carries
// its own mutex, so unrelated clients never contend on a shared lock.
// Counters survive only for the process lifetime, which is acceptable for
// login throttling.
type Store struct {
	window   time.Duration
	counters sync.Map // domain.RateLimitKey -> *windowCounter
}

type windowCounter struct {
	mu          sync.Mutex
	count       int64
	windowStart time.Time
}

// NewStore creates a Store with the given window length. A non-positive
// window falls back to one minute.
func NewStore(window time.Duration) *Store {
	if window <= 0 {
		window = defaultWindow
	}
	return &Store{window: window}
}

// IncrementAndGet records one attempt for key and returns the count within
// the window containing now. When no window is active, or the active window
// started more than the window length before now, a fresh window begins with
// count 1. The comparison uses now.Sub, so the monotonic clock reading of
// time.Time decides window expiry, not wall-clock arithmetic.
func (s *Store) IncrementAndGet(_ context.Context, key domain.RateLimitKey, now time.Time) (int64, error) {
	v, _ := s.counters.LoadOrStore(key, &windowCounter{})
	c := v.(*windowCounter)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.windowStart.IsZero() || now.Sub(c.windowStart) >= s.window {
		c.windowStart = now
		c.count = 1
		return 1, nil
	}

	c.count++
	return c.count, nil
}
