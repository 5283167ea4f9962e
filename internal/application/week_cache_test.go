package application

import (
	"testing"
	"time"
)

func TestWeekViewCache(t *testing.T) {
	weekStart := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	t.Run("returns stored views until the TTL elapses", func(t *testing.T) {
		current := fixedNow()
		cache := newWeekViewCache(time.Minute, 4, func() time.Time { return current })

		cache.Store("key", WeekView{WeekStart: weekStart})
		if _, ok := cache.Get("key"); !ok {
			t.Fatalf("expected cache hit")
		}

		current = current.Add(2 * time.Minute)
		if _, ok := cache.Get("key"); ok {
			t.Fatalf("expected expired entry to miss")
		}
	})

	t.Run("invalidation clears all entries", func(t *testing.T) {
		cache := newWeekViewCache(time.Minute, 4, fixedNow)
		cache.Store("a", WeekView{WeekStart: weekStart})
		cache.Store("b", WeekView{WeekStart: weekStart.AddDate(0, 0, 7)})

		cache.Invalidate()

		if _, ok := cache.Get("a"); ok {
			t.Fatalf("expected miss after invalidation")
		}
		if _, ok := cache.Get("b"); ok {
			t.Fatalf("expected miss after invalidation")
		}
	})

	t.Run("evicts when the entry limit is reached", func(t *testing.T) {
		cache := newWeekViewCache(time.Minute, 2, fixedNow)
		cache.Store("a", WeekView{})
		cache.Store("b", WeekView{})
		cache.Store("c", WeekView{})

		if len(cache.entries) > 2 {
			t.Fatalf("expected at most two entries, got %d", len(cache.entries))
		}
	})

	t.Run("returned views are copies", func(t *testing.T) {
		cache := newWeekViewCache(time.Minute, 4, fixedNow)
		cache.Store("key", WeekView{Sessions: []Session{{ID: "session-1"}}})

		view, ok := cache.Get("key")
		if !ok {
			t.Fatalf("expected cache hit")
		}
		view.Sessions[0].ID = "mutated"

		again, _ := cache.Get("key")
		if again.Sessions[0].ID != "session-1" {
			t.Fatalf("cache entry was mutated through a returned view")
		}
	})

	t.Run("distinct filters build distinct keys", func(t *testing.T) {
		a := buildWeekViewCacheKey(ListWeekParams{WeekStart: weekStart, InstructorID: "instructor-1"})
		b := buildWeekViewCacheKey(ListWeekParams{WeekStart: weekStart, SubjectID: "subject-1"})
		if a == b {
			t.Fatalf("expected distinct keys, got %q", a)
		}
	})
}
