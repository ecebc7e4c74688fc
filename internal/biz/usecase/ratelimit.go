package usecase

import (
	"sync"
	"time"
)

// RateLimiter is a per-user sliding-window limiter for mutating commands.
type RateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	hits   map[int64][]time.Time
	now    func() time.Time
}

// NewRateLimiter creates a limiter allowing max requests per window.
func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	return &RateLimiter{
		window: window,
		max:    max,
		hits:   make(map[int64][]time.Time),
		now:    time.Now,
	}
}

// Allow records an attempt and reports whether it fits in the window.
func (l *RateLimiter) Allow(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	valid := l.hits[userID][:0]
	for _, t := range l.hits[userID] {
		if now.Sub(t) < l.window {
			valid = append(valid, t)
		}
	}
	if len(valid) >= l.max {
		l.hits[userID] = valid
		return false
	}
	l.hits[userID] = append(valid, now)
	return true
}
