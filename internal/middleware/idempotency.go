package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"
)

// IdempotencyStore stores idempotency key results
type IdempotencyStore struct {
	mu       sync.RWMutex
	entries  map[string]*idempotencyEntry
	ttl      time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type idempotencyEntry struct {
	status    int
	headers   http.Header
	body      []byte
	expiresAt time.Time
	inFlight  bool
	done      chan struct{}
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	TTL     time.Duration // How long to keep idempotency results (default 24h)
	Cleanup time.Duration // Cleanup interval (default 1h)
}

// NewIdempotencyStore creates a new idempotency store
func NewIdempotencyStore(cfg IdempotencyConfig) *IdempotencyStore {
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Cleanup == 0 {
		cfg.Cleanup = time.Hour
	}

	store := &IdempotencyStore{
		entries:  make(map[string]*idempotencyEntry),
		ttl:      cfg.TTL,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop(cfg.Cleanup)

	return store
}

// Stop stops the cleanup goroutine
func (s *IdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}

func (s *IdempotencyStore) cleanupLoop(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopChan:
			return
		}
	}
}

func (s *IdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, entry := range s.entries {
		if entry.expiresAt.Before(now) && !entry.inFlight {
			delete(s.entries, key)
		}
	}
}

// generateKey fingerprints the client, idempotency key and request
func generateKey(clientKey, idempotencyKey, method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(clientKey))
	h.Write([]byte(idempotencyKey))
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// idempotencyResponseWriter captures the response for caching
type idempotencyResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *idempotencyResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// replay writes a stored response
func (e *idempotencyEntry) replay(w http.ResponseWriter) {
	for k, v := range e.headers {
		for _, val := range v {
			w.Header().Add(k, val)
		}
	}
	w.Header().Set("X-Idempotency-Replayed", "true")
	w.WriteHeader(e.status)
	_, _ = w.Write(e.body)
}

// claim returns a stored response for key, or registers the caller as the
// one request allowed to produce it. Concurrent duplicates wait for the
// first to finish.
func (s *IdempotencyStore) claim(key string) (stored *idempotencyEntry, claimed *idempotencyEntry) {
	for {
		s.mu.Lock()
		entry, exists := s.entries[key]
		switch {
		case exists && entry.inFlight:
			s.mu.Unlock()
			<-entry.done
			continue
		case exists && entry.expiresAt.After(time.Now()):
			s.mu.Unlock()
			return entry, nil
		}

		entry = &idempotencyEntry{inFlight: true, done: make(chan struct{})}
		s.entries[key] = entry
		s.mu.Unlock()
		return nil, entry
	}
}

// settle stores the captured response. Server errors are not kept so a
// retry runs again.
func (s *IdempotencyStore) settle(key string, entry *idempotencyEntry, rw *idempotencyResponseWriter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.status = rw.status
	entry.headers = rw.Header().Clone()
	entry.body = rw.body.Bytes()
	entry.expiresAt = time.Now().Add(s.ttl)
	entry.inFlight = false
	if rw.status >= http.StatusInternalServerError {
		delete(s.entries, key)
	}
	close(entry.done)
}

// Idempotency returns middleware that replays the first response to a
// write request carrying the same Idempotency-Key. Roster edits and sync
// triggers are the write routes it protects.
func Idempotency(store *IdempotencyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodDelete:
			default:
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := r.Header.Get("Idempotency-Key")
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Read and restore request body
			body, err := io.ReadAll(r.Body)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := generateKey(ClientKey(r), idempotencyKey, r.Method, r.URL.Path, body)

			stored, claimed := store.claim(key)
			if stored != nil {
				stored.replay(w)
				return
			}

			irw := &idempotencyResponseWriter{
				ResponseWriter: w,
				status:         http.StatusOK,
			}
			defer store.settle(key, claimed, irw)

			next.ServeHTTP(irw, r)
		})
	}
}
