package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a sliding-window hard ceiling on posting attempts: at most
// capacity acquisitions per period, no matter what the scheduler does. It is
// the one piece of state shared across concurrent attempts, so every access
// goes through the mutex.
type Limiter struct {
	mu       sync.Mutex
	capacity int
	period   time.Duration
	attempts []time.Time
}

func NewLimiter(capacity int, period time.Duration) *Limiter {
	return &Limiter{capacity: capacity, period: period}
}

// TryAcquire records an attempt at now and reports whether it is allowed.
// A denied attempt is not recorded. Denial cannot be retried away; the window
// has to advance first.
func (l *Limiter) TryAcquire(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.period)
	kept := l.attempts[:0]
	for _, t := range l.attempts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.attempts = kept

	if len(l.attempts) >= l.capacity {
		return false
	}
	l.attempts = append(l.attempts, now)
	return true
}

// Remaining reports how many acquisitions are left in the window at now.
func (l *Limiter) Remaining(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.period)
	used := 0
	for _, t := range l.attempts {
		if t.After(cutoff) {
			used++
		}
	}
	if used >= l.capacity {
		return 0
	}
	return l.capacity - used
}
