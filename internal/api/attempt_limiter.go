package api

import (
	"sync"
	"time"
)

// attemptLimiter keeps a sliding window of attempt times per key.
type attemptLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

func newAttemptLimiter() *attemptLimiter {
	return &attemptLimiter{
		attempts: make(map[string][]time.Time),
	}
}

// allow records an attempt for key unless limit attempts already fall inside
// the window ending at now.
func (limiter *attemptLimiter) allow(key string, now time.Time, limit int, window time.Duration) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	pruned := limiter.pruneLocked(key, now, window)
	if len(pruned) >= limit {
		return false
	}
	limiter.attempts[key] = append(pruned, now)
	return true
}

// retryAfter reports how long until the oldest attempt for key leaves the
// window. Zero means an attempt would be allowed now.
func (limiter *attemptLimiter) retryAfter(key string, now time.Time, limit int, window time.Duration) time.Duration {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	pruned := limiter.pruneLocked(key, now, window)
	if len(pruned) < limit || len(pruned) == 0 {
		return 0
	}
	return pruned[0].Add(window).Sub(now)
}

func (limiter *attemptLimiter) pruneLocked(key string, now time.Time, window time.Duration) []time.Time {
	values := limiter.attempts[key]
	if len(values) == 0 {
		return []time.Time{}
	}

	threshold := now.Add(-window)
	pruned := make([]time.Time, 0, len(values))
	for _, value := range values {
		if value.After(threshold) {
			pruned = append(pruned, value)
		}
	}

	if len(pruned) == 0 {
		delete(limiter.attempts, key)
		return []time.Time{}
	}

	limiter.attempts[key] = pruned
	return pruned
}
