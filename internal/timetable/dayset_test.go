package timetable

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestNewDaySet(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()
		if _, err := NewDaySet(); !errors.Is(err, ErrEmptyDaySet) {
			t.Fatalf("expected ErrEmptyDaySet, got %v", err)
		}
	})

	t.Run("rejects invalid tags", func(t *testing.T) {
		t.Parallel()
		if _, err := NewDaySet(time.Weekday(7)); !errors.Is(err, ErrInvalidWeekday) {
			t.Fatalf("expected ErrInvalidWeekday, got %v", err)
		}
	})

	t.Run("collapses duplicates", func(t *testing.T) {
		t.Parallel()
		set, err := NewDaySet(time.Monday, time.Monday, time.Friday)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if set.Len() != 2 {
			t.Fatalf("expected 2 days, got %d", set.Len())
		}
	})
}

func TestParseDaySet(t *testing.T) {
	t.Parallel()

	set, err := ParseDaySet([]string{"Wednesday", "monday", " friday "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	if got := set.Ordered(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order: %v", got)
	}

	if _, err := ParseDaySet([]string{"funday"}); !errors.Is(err, ErrInvalidWeekday) {
		t.Fatalf("expected ErrInvalidWeekday, got %v", err)
	}
	if _, err := ParseDaySet(nil); !errors.Is(err, ErrEmptyDaySet) {
		t.Fatalf("expected ErrEmptyDaySet, got %v", err)
	}
}

func TestDaySet_Ordering(t *testing.T) {
	t.Parallel()

	// Sunday sorts last regardless of Go's Sunday-first Weekday numbering.
	set, err := NewDaySet(time.Sunday, time.Monday, time.Saturday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []time.Weekday{time.Monday, time.Saturday, time.Sunday}
	if got := set.Ordered(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected canonical order: %v", got)
	}

	wantNames := []string{"monday", "saturday", "sunday"}
	if got := set.Names(); !reflect.DeepEqual(got, wantNames) {
		t.Fatalf("unexpected names: %v", got)
	}
}

func TestDaySet_Intersects(t *testing.T) {
	t.Parallel()

	mustDays := func(days ...time.Weekday) DaySet {
		t.Helper()
		set, err := NewDaySet(days...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return set
	}

	monWed := mustDays(time.Monday, time.Wednesday)
	wedFri := mustDays(time.Wednesday, time.Friday)
	tueThu := mustDays(time.Tuesday, time.Thursday)

	if !monWed.Intersects(wedFri) {
		t.Fatalf("expected Mon/Wed to intersect Wed/Fri")
	}
	if monWed.Intersects(tueThu) {
		t.Fatalf("expected Mon/Wed and Tue/Thu to be disjoint")
	}

	if got := monWed.Intersection(wedFri); !reflect.DeepEqual(got, []time.Weekday{time.Wednesday}) {
		t.Fatalf("unexpected intersection: %v", got)
	}
	if got := monWed.Intersection(tueThu); got != nil {
		t.Fatalf("expected nil intersection, got %v", got)
	}
}

func TestDaySet_Equal(t *testing.T) {
	t.Parallel()

	a, _ := NewDaySet(time.Monday, time.Wednesday)
	b, _ := NewDaySet(time.Wednesday, time.Monday)
	c, _ := NewDaySet(time.Monday)

	if !a.Equal(b) {
		t.Fatalf("expected order-independent equality")
	}
	if a.Equal(c) {
		t.Fatalf("expected inequality for differing sets")
	}
}
