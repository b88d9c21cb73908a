package api

import (
	"sync"

	"golang.org/x/time/rate"
)

// userRateLimiter throttles on-demand dedup runs per user. A run is cheap to
// request and expensive to execute, so the UI cannot hammer the batch.
type userRateLimiter struct {
	mu            sync.Mutex
	limiters      map[int64]*rate.Limiter
	runsPerMinute float64
}

func newUserRateLimiter(runsPerMinute float64) *userRateLimiter {
	return &userRateLimiter{
		limiters:      make(map[int64]*rate.Limiter),
		runsPerMinute: runsPerMinute,
	}
}

func (l *userRateLimiter) Allow(userID int64) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(l.runsPerMinute/60), 1)
		l.limiters[userID] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}
