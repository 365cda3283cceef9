package ratelimit

import (
	"sync"
	"time"
)

// LoginLimiter tracks failed login attempts per client key inside a sliding
// window. Successful logins never clear a key's history; entries only age out
// of the window. State is process-local and never persisted.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	window   time.Duration
	max      int
	now      func() time.Time
}

// NewLoginLimiter constructs a limiter that blocks a key once `max` failures
// have been recorded within the trailing `window`.
func NewLoginLimiter(window time.Duration, max int) *LoginLimiter {
	if window <= 0 {
		window = 5 * time.Minute
	}
	if max <= 0 {
		max = 5
	}
	return &LoginLimiter{
		attempts: make(map[string][]time.Time),
		window:   window,
		max:      max,
		now:      time.Now,
	}
}

// Allow reports whether the key may attempt a login. It prunes entries older
// than the window before counting.
func (l *LoginLimiter) Allow(key string) bool {
	if key == "" {
		key = "unknown"
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.pruneLocked(key, l.now())
	return len(recent) < l.max
}

// RecordFailure appends a failed attempt for the key. Callers invoke this only
// after a credential check fails, not on malformed requests.
func (l *LoginLimiter) RecordFailure(key string) {
	if key == "" {
		key = "unknown"
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.attempts[key] = append(l.pruneLocked(key, now), now)
}

func (l *LoginLimiter) pruneLocked(key string, now time.Time) []time.Time {
	stamps, ok := l.attempts[key]
	if !ok {
		return nil
	}

	cutoff := now.Add(-l.window)
	kept := stamps[:0]
	for _, t := range stamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) == 0 {
		delete(l.attempts, key)
		return nil
	}

	l.attempts[key] = kept
	return kept
}

// WithNowFunc allows tests to override the time source.
func (l *LoginLimiter) WithNowFunc(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
