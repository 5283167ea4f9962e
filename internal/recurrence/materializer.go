package recurrence

import (
	"errors"
	"time"

	"github.com/example/classroom-scheduler/internal/timetable"
)

// ErrNotWeekStart indicates the reference date is not a Monday at midnight.
var ErrNotWeekStart = errors.New("recurrence: reference week start must be a Monday at midnight")

// Definition is the weekly recurrence rule of one session: the weekdays it
// repeats on and the daily time window it occupies.
type Definition struct {
	SessionID string
	Days      timetable.DaySet
	Window    timetable.TimeInterval
}

// Occurrence is one concrete calendar instance of a session on a specific
// date. Multiple occurrences share the same SessionID; they are the same
// recurring booking materialized on different days.
type Occurrence struct {
	SessionID string
	Day       time.Weekday
	Start     time.Time
	End       time.Time
}

// Materialize expands a session definition into one occurrence per recurring
// weekday, anchored to weekStart. weekStart must fall on the canonical first
// day of the week (Monday) at midnight; its location is carried into the
// occurrences unchanged, since all times in the scheduler are naive local
// wall-clock.
//
// The expansion is pure and idempotent: identical inputs yield identical
// output, in canonical Monday-first day order.
func Materialize(def Definition, weekStart time.Time) ([]Occurrence, error) {
	if !isWeekStart(weekStart) {
		return nil, ErrNotWeekStart
	}

	ordered := def.Days.Ordered()
	occurrences := make([]Occurrence, 0, len(ordered))
	for _, day := range ordered {
		dayStart := weekStart.AddDate(0, 0, offsetFromMonday(day))
		occurrences = append(occurrences, Occurrence{
			SessionID: def.SessionID,
			Day:       day,
			Start:     dayStart.Add(time.Duration(def.Window.Start) * time.Minute),
			End:       dayStart.Add(time.Duration(def.Window.End) * time.Minute),
		})
	}
	return occurrences, nil
}

// MaterializeAll expands every definition against the same reference week,
// preserving the input session order.
func MaterializeAll(defs []Definition, weekStart time.Time) ([]Occurrence, error) {
	if !isWeekStart(weekStart) {
		return nil, ErrNotWeekStart
	}

	var occurrences []Occurrence
	for _, def := range defs {
		expanded, err := Materialize(def, weekStart)
		if err != nil {
			return nil, err
		}
		occurrences = append(occurrences, expanded...)
	}
	return occurrences, nil
}

// WeekStartFor returns the Monday midnight that begins the week containing
// the reference instant, in the reference's location.
func WeekStartFor(reference time.Time) time.Time {
	midnight := time.Date(reference.Year(), reference.Month(), reference.Day(), 0, 0, 0, 0, reference.Location())
	return midnight.AddDate(0, 0, -offsetFromMonday(midnight.Weekday()))
}

func isWeekStart(t time.Time) bool {
	if t.Weekday() != time.Monday {
		return false
	}
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

// offsetFromMonday maps a weekday to its zero-based index from Monday.
// In Go, Monday == 1 and Sunday == 0.
func offsetFromMonday(day time.Weekday) int {
	return (int(day) + 6) % 7
}
