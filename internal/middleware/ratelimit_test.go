package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, perSec float64, burst int) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(RateLimitConfig{PerSec: perSec, Burst: burst})
	t.Cleanup(rl.Stop)
	return rl
}

// ============================================================================
// Allow Tests
// ============================================================================

func TestNewRateLimiter_Defaults(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{})
	defer rl.Stop()

	if rl.limit != 10 {
		t.Errorf("expected default rate 10, got %v", rl.limit)
	}
	if rl.burst != 30 {
		t.Errorf("expected default burst 30, got %d", rl.burst)
	}
}

func TestAllow_BurstThenDeny(t *testing.T) {
	t.Parallel()

	rl := newTestLimiter(t, 0.001, 3)

	for i := 0; i < 3; i++ {
		allowed, remaining, _ := rl.Allow("10.0.0.1")
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if remaining != 2-i {
			t.Errorf("request %d: expected remaining %d, got %d", i+1, 2-i, remaining)
		}
	}

	allowed, _, wait := rl.Allow("10.0.0.1")
	if allowed {
		t.Fatal("fourth request should be denied")
	}
	if wait <= 0 {
		t.Errorf("expected a positive wait, got %v", wait)
	}
}

func TestAllow_DeniedRequestsDoNotConsumeTokens(t *testing.T) {
	t.Parallel()

	rl := newTestLimiter(t, 20, 1)

	if ok, _, _ := rl.Allow("k"); !ok {
		t.Fatal("first request should be allowed")
	}
	for i := 0; i < 5; i++ {
		_, _, _ = rl.Allow("k")
	}
	time.Sleep(80 * time.Millisecond)

	if ok, _, _ := rl.Allow("k"); !ok {
		t.Error("expected a refilled token after waiting")
	}
}

func TestAllow_SeparateClients(t *testing.T) {
	t.Parallel()

	rl := newTestLimiter(t, 0.001, 1)

	if ok, _, _ := rl.Allow("a"); !ok {
		t.Fatal("client a should be allowed")
	}
	if ok, _, _ := rl.Allow("b"); !ok {
		t.Fatal("client b should be allowed")
	}
	if ok, _, _ := rl.Allow("a"); ok {
		t.Error("client a should be limited")
	}
	if rl.Clients() != 2 {
		t.Errorf("expected 2 tracked clients, got %d", rl.Clients())
	}
}

func TestAllow_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	rl := newTestLimiter(t, 0.001, 50)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _, _ := rl.Allow("shared"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("expected exactly 50 allowed requests, got %d", allowed)
	}
}

func TestForgetIdle_DropsStaleClients(t *testing.T) {
	t.Parallel()

	rl := newTestLimiter(t, 1, 1)
	_, _, _ = rl.Allow("stale")
	_, _, _ = rl.Allow("fresh")

	rl.mu.Lock()
	rl.clients["stale"].lastSeen = time.Now().Add(-time.Hour)
	rl.mu.Unlock()

	rl.forgetIdle(time.Now())

	if rl.Clients() != 1 {
		t.Fatalf("expected 1 client left, got %d", rl.Clients())
	}
	rl.mu.Lock()
	_, ok := rl.clients["fresh"]
	rl.mu.Unlock()
	if !ok {
		t.Error("fresh client should be kept")
	}
}

func TestStop_IsIdempotent(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimitConfig{Cleanup: time.Millisecond})
	rl.Stop()
	rl.Stop()
}

// ============================================================================
// Client Key Tests
// ============================================================================

func TestClientKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		remote string
		fwd    string
		want   string
	}{
		{"remote host", "192.0.2.1:5555", "", "192.0.2.1"},
		{"forwarded first hop", "10.0.0.1:80", "203.0.113.9, 10.0.0.1", "203.0.113.9"},
		{"no port", "pipe", "", "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.fwd != "" {
				req.Header.Set("X-Forwarded-For", tt.fwd)
			}
			if got := ClientKey(req); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// ============================================================================
// Middleware Tests
// ============================================================================

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()

	rl := newTestLimiter(t, 0.5, 1)
	handler := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/realms", nil)
	req.RemoteAddr = "198.51.100.7:1234"

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", first.Code)
	}
	if first.Header().Get("X-RateLimit-Limit") != "1" {
		t.Errorf("expected limit header 1, got %q", first.Header().Get("X-RateLimit-Limit"))
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	retry, err := strconv.Atoi(second.Header().Get("Retry-After"))
	if err != nil || retry < 1 || retry > 2 {
		t.Errorf("expected Retry-After of 1-2 seconds, got %q", second.Header().Get("Retry-After"))
	}
	if second.Header().Get("Content-Type") != "application/problem+json" {
		t.Errorf("expected problem response, got %q", second.Header().Get("Content-Type"))
	}
}
