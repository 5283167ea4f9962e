package application

import (
	"strings"
	"sync"
	"time"

	"github.com/example/classroom-scheduler/internal/recurrence"
)

// weekViewCache stores recently materialized week views to avoid repeated
// expansion for identical listing queries while the timetable remains
// unchanged. Any write to the timetable invalidates the whole cache.
type weekViewCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]weekViewCacheEntry
}

type weekViewCacheEntry struct {
	view      WeekView
	expiresAt time.Time
}

func newWeekViewCache(ttl time.Duration, maxEntries int, now func() time.Time) *weekViewCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &weekViewCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]weekViewCacheEntry),
	}
}

func (c *weekViewCache) Get(key string) (WeekView, bool) {
	if c == nil {
		return WeekView{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return WeekView{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return WeekView{}, false
	}
	return cloneWeekView(entry.view), true
}

func (c *weekViewCache) Store(key string, view WeekView) {
	if c == nil {
		return
	}
	cloned := cloneWeekView(view)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = weekViewCacheEntry{view: cloned, expiresAt: expiry}
}

func (c *weekViewCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]weekViewCacheEntry)
	c.mu.Unlock()
}

func (c *weekViewCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *weekViewCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneWeekView(view WeekView) WeekView {
	out := WeekView{WeekStart: view.WeekStart}
	if len(view.Sessions) > 0 {
		out.Sessions = make([]Session, len(view.Sessions))
		copy(out.Sessions, view.Sessions)
	}
	if len(view.Occurrences) > 0 {
		out.Occurrences = make([]recurrence.Occurrence, len(view.Occurrences))
		copy(out.Occurrences, view.Occurrences)
	}
	return out
}

func buildWeekViewCacheKey(params ListWeekParams) string {
	builder := strings.Builder{}
	builder.WriteString(params.WeekStart.Format(time.RFC3339))
	builder.WriteString("|")
	builder.WriteString(params.InstructorID)
	builder.WriteString("|")
	builder.WriteString(params.SubjectID)
	return builder.String()
}
