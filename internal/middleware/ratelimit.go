package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// TokenBucket implements token bucket rate limiting
type TokenBucket struct {
	mu         sync.Mutex
	capacity   int
	tokens     int
	interval   time.Duration // time to earn one token back
	lastRefill time.Time
	lastUsed   time.Time
	now        func() time.Time
}

// NewTokenBucket allows capacity requests per window, refilled evenly
func NewTokenBucket(capacity int, window time.Duration) *TokenBucket {
	if capacity < 1 {
		capacity = 1
	}
	now := time.Now()
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		interval:   window / time.Duration(capacity),
		lastRefill: now,
		lastUsed:   now,
		now:        time.Now,
	}
}

func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	tb.lastUsed = now
	if tb.interval > 0 {
		earned := int(now.Sub(tb.lastRefill) / tb.interval)
		if earned > 0 {
			tb.tokens += earned
			if tb.tokens > tb.capacity {
				tb.tokens = tb.capacity
			}
			tb.lastRefill = tb.lastRefill.Add(time.Duration(earned) * tb.interval)
		}
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimiter manages one bucket per client key
type RateLimiter struct {
	mu       sync.RWMutex
	buckets  map[string]*TokenBucket
	capacity int
	window   time.Duration
}

func NewRateLimiter(capacity int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets:  make(map[string]*TokenBucket),
		capacity: capacity,
		window:   window,
	}
}

func (rl *RateLimiter) getBucket(key string) *TokenBucket {
	rl.mu.RLock()
	bucket, exists := rl.buckets[key]
	rl.mu.RUnlock()

	if exists {
		return bucket
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Double-check after acquiring write lock
	if bucket, exists := rl.buckets[key]; exists {
		return bucket
	}

	bucket = NewTokenBucket(rl.capacity, rl.window)
	rl.buckets[key] = bucket
	return bucket
}

func (rl *RateLimiter) Allow(key string) bool {
	return rl.getBucket(key).Allow()
}

// Prune drops buckets idle for longer than maxIdle
func (rl *RateLimiter) Prune(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()
	for key, bucket := range rl.buckets {
		bucket.mu.Lock()
		idle := now.Sub(bucket.lastUsed)
		bucket.mu.Unlock()
		if idle > maxIdle {
			delete(rl.buckets, key)
		}
	}
}

// RateLimitMiddleware limits each client (see ClientKey) to requests per
// window. Apply it to the submission route only.
func RateLimitMiddleware(requests int, window time.Duration) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(requests, window)
	retryAfter := strconv.Itoa(int(window.Seconds()))
	var calls uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(ClientKey(r)) {
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, "rate limit exceeded, please try again later", http.StatusTooManyRequests)
				return
			}
			limiter.mu.Lock()
			calls++
			prune := calls%1000 == 0
			limiter.mu.Unlock()
			if prune {
				limiter.Prune(10 * window)
			}
			next.ServeHTTP(w, r)
		})
	}
}
