// Package ratelimit implements a process-local sliding-window submission
// limiter keyed by client IP. The store is intentionally not distributed;
// each process enforces its own window.
package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultWindow is the length of one rate-limit window.
	DefaultWindow = 10 * time.Minute
	// DefaultMax is the number of submissions allowed per key per window.
	DefaultMax = 5

	// cleanupMultiple controls how often expired entries are swept: a sweep
	// runs once more than cleanupMultiple windows have passed since the last
	// one. This bounds memory without a background timer.
	cleanupMultiple = 6
)

// Result is the outcome of a limiter check.
type Result struct {
	Allowed           bool
	RetryAfterSeconds int
}

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter counts submissions per key within a sliding window. Safe for
// concurrent use.
type Limiter struct {
	mu          sync.Mutex
	window      time.Duration
	max         int
	entries     map[string]*entry
	lastCleanup time.Time
}

// New creates a limiter allowing max submissions per key per window.
func New(window time.Duration, max int) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if max <= 0 {
		max = DefaultMax
	}
	return &Limiter{
		window:  window,
		max:     max,
		entries: make(map[string]*entry),
	}
}

// Check records a submission attempt for key at time now and reports whether
// it is allowed. The first attempt after a key's window has expired starts a
// fresh window. When denied, RetryAfterSeconds is the whole number of seconds
// (rounded up) until the window resets.
func (l *Limiter) Check(key string, now time.Time) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.maybeCleanup(now)

	e, ok := l.entries[key]
	if !ok || !e.resetAt.After(now) {
		l.entries[key] = &entry{count: 1, resetAt: now.Add(l.window)}
		return Result{Allowed: true}
	}

	e.count++
	if e.count > l.max {
		retry := int((e.resetAt.Sub(now) + time.Second - 1) / time.Second)
		return Result{RetryAfterSeconds: retry}
	}
	return Result{Allowed: true}
}

// maybeCleanup drops expired entries once enough time has passed since the
// previous sweep. Caller must hold l.mu.
func (l *Limiter) maybeCleanup(now time.Time) {
	if now.Sub(l.lastCleanup) <= cleanupMultiple*l.window {
		return
	}
	for key, e := range l.entries {
		if !e.resetAt.After(now) {
			delete(l.entries, key)
		}
	}
	l.lastCleanup = now
}

// Size reports the number of tracked keys, expired or not.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
