package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a caller bucket may stay unused before it
// becomes eligible for pruning.
const limiterIdleTTL = 10 * time.Minute

// DefaultLimiterMaxKeys bounds the number of tracked callers.
const DefaultLimiterMaxKeys = 1024

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter manages one token bucket per caller key. At most
// maxKeys buckets are tracked at once.
type KeyedRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*keyedLimiter
	limit    rate.Limit
	burst    int
	clock    Clocker
	maxKeys  int
}

// NewKeyedRateLimiter allows perMinute requests per key with the given burst.
func NewKeyedRateLimiter(perMinute, burst int, clock Clocker) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: make(map[string]*keyedLimiter),
		limit:    rate.Limit(float64(perMinute) / time.Minute.Seconds()),
		burst:    burst,
		clock:    clock,
		maxKeys:  DefaultLimiterMaxKeys,
	}
}

// Allow reports whether a request for key may proceed now.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	now := krl.clock.Now()
	krl.mu.Lock()
	defer krl.mu.Unlock()

	kl, exists := krl.limiters[key]
	if !exists {
		if len(krl.limiters) >= krl.maxKeys {
			krl.prune(now)
		}
		if len(krl.limiters) >= krl.maxKeys {
			krl.evictOldest()
		}
		kl = &keyedLimiter{limiter: rate.NewLimiter(krl.limit, krl.burst)}
		krl.limiters[key] = kl
	}
	kl.lastSeen = now
	return kl.limiter.AllowN(now, 1)
}

// prune drops idle buckets. Caller holds the lock.
func (krl *KeyedRateLimiter) prune(now time.Time) {
	for key, kl := range krl.limiters {
		if now.Sub(kl.lastSeen) > limiterIdleTTL {
			delete(krl.limiters, key)
		}
	}
}

// evictOldest drops the least recently seen bucket. Caller holds the lock.
func (krl *KeyedRateLimiter) evictOldest() {
	var oldestKey string
	var oldest time.Time
	first := true
	for key, kl := range krl.limiters {
		if first || kl.lastSeen.Before(oldest) {
			oldestKey, oldest, first = key, kl.lastSeen, false
		}
	}
	if !first {
		delete(krl.limiters, oldestKey)
	}
}

// Len returns the number of tracked keys.
func (krl *KeyedRateLimiter) Len() int {
	krl.mu.Lock()
	defer krl.mu.Unlock()
	return len(krl.limiters)
}
