package application

import (
	"sync"
	"time"
)

const (
	defaultLockoutThreshold = 5
	defaultLockoutDuration  = 15 * time.Minute
)

// loginLockout tracks consecutive failed authentication attempts per email
// and locks the account for a fixed duration once the threshold is reached.
// State is per process; a restart clears all counters.
type loginLockout struct {
	mu        sync.Mutex
	threshold int
	duration  time.Duration
	now       func() time.Time
	entries   map[string]*lockoutEntry
}

type lockoutEntry struct {
	failures    int
	lockedUntil time.Time
}

func newLoginLockout(threshold int, duration time.Duration, now func() time.Time) *loginLockout {
	if threshold <= 0 {
		threshold = defaultLockoutThreshold
	}
	if duration <= 0 {
		duration = defaultLockoutDuration
	}
	if now == nil {
		now = time.Now
	}
	return &loginLockout{
		threshold: threshold,
		duration:  duration,
		now:       now,
		entries:   make(map[string]*lockoutEntry),
	}
}

// locked reports whether the email is currently locked out. Expired locks are
// cleared on the way through.
func (l *loginLockout) locked(email string) bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[email]
	if !ok {
		return false
	}
	if entry.lockedUntil.IsZero() {
		return false
	}
	if l.now().Before(entry.lockedUntil) {
		return true
	}
	delete(l.entries, email)
	return false
}

// recordFailure counts a failed attempt and arms the lock once the threshold
// is reached.
func (l *loginLockout) recordFailure(email string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[email]
	if !ok {
		entry = &lockoutEntry{}
		l.entries[email] = entry
	}
	entry.failures++
	if entry.failures >= l.threshold {
		entry.lockedUntil = l.now().Add(l.duration)
	}
}

// reset clears the counter after a successful authentication.
func (l *loginLockout) reset(email string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, email)
}
