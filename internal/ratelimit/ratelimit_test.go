package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter(1, 1)

	if !l.Allow("a.example") {
		t.Errorf("expected Allow to return true for initial event")
	}
	// burst of 1 consumed; the next token is a second away
	if l.Allow("a.example") {
		t.Errorf("expected Allow to return false when burst exceeded")
	}
}

func TestLimiter_Refill(t *testing.T) {
	l := NewLimiter(100, 1)

	if !l.Allow("k") {
		t.Fatal("first event should pass")
	}
	time.Sleep(30 * time.Millisecond)
	if !l.Allow("k") {
		t.Errorf("expected a token after waiting at 100 rps")
	}
}

func TestLimiter_DifferentKeys(t *testing.T) {
	l := NewLimiter(1, 1)

	if !l.Allow("A") {
		t.Error("A should be allowed")
	}
	if l.Allow("A") {
		t.Error("A should be blocked")
	}
	if !l.Allow("B") {
		t.Error("B should be allowed (independent of A)")
	}
	if l.Len() != 2 {
		t.Errorf("len: got %d, want 2", l.Len())
	}
}

func TestLimiter_ZeroBurst(t *testing.T) {
	l := NewLimiter(1, 0)
	if !l.Allow("k") {
		t.Error("burst should be raised to 1")
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l := NewLimiter(0, 5)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 5 {
		t.Fatalf("allowed: got %d, want exactly the burst (5)", allowed)
	}
}
