package middleware

import (
	"context"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// LimitStore counts requests per client within a fixed window
type LimitStore interface {
	// Allow records one request for clientID and reports whether it is within the limit
	Allow(ctx context.Context, clientID string) (bool, error)
}

// RateLimiter rejects clients that exceed their request budget with 429
type RateLimiter struct {
	store LimitStore
}

// NewRateLimiter creates a rate limiter backed by the given store
func NewRateLimiter(store LimitStore) *RateLimiter {
	return &RateLimiter{store: store}
}

// Middleware returns a rate limiting middleware
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := getClientIP(r)

		allowed, err := rl.store.Allow(r.Context(), clientID)
		if err != nil {
			// Fail open: a broken counter store must not take the API down
			log.Printf("[RATELIMIT] Store error for client %s: %v", clientID, err)
			allowed = true
		}
		if !allowed {
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// MemoryStore is an in-process LimitStore, suitable for a single instance
type MemoryStore struct {
	clients  map[string]*clientLimit
	now      func() time.Time
	requests int
	window   time.Duration
	mu       sync.Mutex
}

type clientLimit struct {
	resetTime time.Time
	count     int
}

// NewMemoryStore creates an in-memory store
// requests: maximum number of requests allowed per window
// window: time window duration (e.g., 1 minute)
func NewMemoryStore(requests int, window time.Duration) *MemoryStore {
	return &MemoryStore{
		clients:  make(map[string]*clientLimit),
		now:      func() time.Time { return time.Now().UTC() },
		requests: requests,
		window:   window,
	}
}

// Allow checks if a client is allowed to make a request
func (s *MemoryStore) Allow(_ context.Context, clientID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	client, exists := s.clients[clientID]
	if !exists || now.After(client.resetTime) {
		s.clients[clientID] = &clientLimit{
			count:     1,
			resetTime: now.Add(s.window),
		}
		return true, nil
	}

	if client.count < s.requests {
		client.count++
		return true, nil
	}

	return false, nil
}

// Cleanup removes expired client entries every window until ctx is done
func (s *MemoryStore) Cleanup(ctx context.Context) {
	ticker := time.NewTicker(s.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for clientID, client := range s.clients {
		if now.After(client.resetTime) {
			delete(s.clients, clientID)
		}
	}
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (if behind proxy); the first hop is the client
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	// Fall back to RemoteAddr without the port
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
