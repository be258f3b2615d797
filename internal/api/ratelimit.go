package api

import (
	"sync"
	"time"
)

// rateLimiter admits at most limit requests per key within a sliding window.
type rateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		hits:   make(map[string][]time.Time),
	}
}

// allow records a hit for key when under the limit. When over, it reports how
// long until the oldest hit leaves the window.
func (l *rateLimiter) allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	recent := l.hits[key][:0]
	for _, at := range l.hits[key] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}
	if len(recent) >= l.limit {
		l.hits[key] = recent
		return false, recent[0].Sub(cutoff)
	}
	l.hits[key] = append(recent, now)
	l.prune(cutoff)
	return true, 0
}

// prune drops idle keys so the map does not grow with every client seen.
func (l *rateLimiter) prune(cutoff time.Time) {
	if len(l.hits) < 1024 {
		return
	}
	for key, hits := range l.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(l.hits, key)
		}
	}
}
