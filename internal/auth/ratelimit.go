package auth

import (
	"sync"
	"time"
)

// clientLimiter tracks request timestamps for one client in a sliding window
type clientLimiter struct {
	mu       sync.Mutex
	requests []time.Time
}

// RateLimiter enforces a per-minute request limit per client
type RateLimiter struct {
	mu      sync.RWMutex
	clients map[string]*clientLimiter
}

// NewRateLimiter creates a rate limiter and starts its cleanup loop
func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow reports whether the client may make another request this minute
func (rl *RateLimiter) Allow(clientID string, limitPerMinute int) bool {
	rl.mu.Lock()
	limiter, ok := rl.clients[clientID]
	if !ok {
		limiter = &clientLimiter{}
		rl.clients[clientID] = limiter
	}
	rl.mu.Unlock()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	windowStart := time.Now().Add(-time.Minute)
	kept := limiter.requests[:0]
	for _, t := range limiter.requests {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}
	limiter.requests = kept

	if len(limiter.requests) >= limitPerMinute {
		return false
	}

	limiter.requests = append(limiter.requests, time.Now())
	return true
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		windowStart := time.Now().Add(-time.Minute)
		rl.mu.Lock()
		for id, limiter := range rl.clients {
			limiter.mu.Lock()
			idle := len(limiter.requests) == 0 ||
				limiter.requests[len(limiter.requests)-1].Before(windowStart)
			limiter.mu.Unlock()
			if idle {
				delete(rl.clients, id)
			}
		}
		rl.mu.Unlock()
	}
}

var (
	globalRateLimiter     *RateLimiter
	globalRateLimiterOnce sync.Once
)

// GetGlobalRateLimiter returns the shared rate limiter
func GetGlobalRateLimiter() *RateLimiter {
	globalRateLimiterOnce.Do(func() {
		globalRateLimiter = NewRateLimiter()
	})
	return globalRateLimiter
}
