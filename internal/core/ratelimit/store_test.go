package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/societyhub/backoffice-api/internal/core/domain"
)

func TestStore_FixedWindow(t *testing.T) {
	store := NewStore(60 * time.Second)
	key := domain.RateLimitKey{Route: "/auth/login", ClientID: "10.0.0.1"}
	t0 := time.Now()

	if n, _ := store.IncrementAndGet(context.Background(), key, t0); n != 1 {
		t.Fatalf("first call: want 1, got %d", n)
	}
	if n, _ := store.IncrementAndGet(context.Background(), key, t0.Add(time.Second)); n != 2 {
		t.Fatalf("second call in window: want 2, got %d", n)
	}
	if n, _ := store.IncrementAndGet(context.Background(), key, t0.Add(61*time.Second)); n != 1 {
		t.Fatalf("call after window elapsed: want fresh window with 1, got %d", n)
	}
}

func TestStore_WindowBoundary(t *testing.T) {
	store := NewStore(60 * time.Second)
	key := domain.RateLimitKey{Route: "/auth/login", ClientID: "10.0.0.2"}
	t0 := time.Now()

	store.IncrementAndGet(context.Background(), key, t0)
	// Exactly one window later starts a new window.
	if n, _ := store.IncrementAndGet(context.Background(), key, t0.Add(60*time.Second)); n != 1 {
		t.Fatalf("call at exact window edge: want 1, got %d", n)
	}
}

func TestStore_KeysAreIndependent(t *testing.T) {
	store := NewStore(60 * time.Second)
	now := time.Now()

	a := domain.RateLimitKey{Route: "/auth/login", ClientID: "10.0.0.1"}
	b := domain.RateLimitKey{Route: "/auth/login", ClientID: "10.0.0.2"}
	c := domain.RateLimitKey{Route: "/auth/otp/send", ClientID: "10.0.0.1"}

	store.IncrementAndGet(context.Background(), a, now)
	store.IncrementAndGet(context.Background(), a, now)

	if n, _ := store.IncrementAndGet(context.Background(), b, now); n != 1 {
		t.Fatalf("different client shares counter: got %d", n)
	}
	if n, _ := store.IncrementAndGet(context.Background(), c, now); n != 1 {
		t.Fatalf("different route shares counter: got %d", n)
	}
}

// Concurrent increments for one key must never undercount.
func TestStore_ConcurrentIncrements(t *testing.T) {
	store := NewStore(time.Hour)
	key := domain.RateLimitKey{Route: "/auth/login", ClientID: "10.0.0.9"}
	now := time.Now()

	const goroutines = 64
	const perGoroutine = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				store.IncrementAndGet(context.Background(), key, now)
			}
		}()
	}
	wg.Wait()

	n, _ := store.IncrementAndGet(context.Background(), key, now)
	if want := int64(goroutines*perGoroutine + 1); n != want {
		t.Fatalf("undercounted: want %d, got %d", want, n)
	}
}
