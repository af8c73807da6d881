package util

import (
	"sync"
	"time"
)

// LimiterRegistry keeps one Limiter per key and evicts limiters that
// have not been asked for within ttl. Keys are watched file paths.
type LimiterRegistry struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry
	rate    float64
	burst   int
	ttl     time.Duration
}

type registryEntry struct {
	limiter *Limiter
	touched time.Time
}

// NewLimiterRegistry builds a registry whose limiters refill r tokens
// per second with burst b. Idle limiters are dropped after ttl.
func NewLimiterRegistry(r float64, b int, ttl time.Duration) *LimiterRegistry {
	reg := &LimiterRegistry{
		entries: make(map[string]*registryEntry),
		rate:    r,
		burst:   b,
		ttl:     ttl,
	}
	go reg.evictLoop()
	return reg
}

// Get returns the limiter for key, creating it on first use.
func (r *LimiterRegistry) Get(key string) *Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok {
		entry = &registryEntry{limiter: NewLimiter(r.rate, r.burst)}
		r.entries[key] = entry
	}
	entry.touched = time.Now()
	return entry.limiter
}

func (r *LimiterRegistry) evictLoop() {
	ticker := time.NewTicker(r.ttl / 2)
	defer ticker.Stop()

	for range ticker.C {
		r.evictIdle()
	}
}

func (r *LimiterRegistry) evictIdle() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-r.ttl)
	for key, entry := range r.entries {
		if entry.touched.Before(cutoff) {
			delete(r.entries, key)
		}
	}
}
