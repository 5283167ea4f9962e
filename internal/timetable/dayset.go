package timetable

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptyDaySet indicates a recurrence with no weekdays selected.
	ErrEmptyDaySet = errors.New("timetable: day set must contain at least one weekday")
	// ErrInvalidWeekday indicates a weekday tag outside Sunday..Saturday.
	ErrInvalidWeekday = errors.New("timetable: invalid weekday")
)

// canonicalOrder fixes the Monday-first ordering used for materialization and
// display. Conflict logic never depends on it.
var canonicalOrder = [7]time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// DaySet is a non-empty set of weekdays a session recurs on. The zero value is
// invalid; construct sets through NewDaySet or ParseDaySet.
type DaySet struct {
	days map[time.Weekday]struct{}
}

// NewDaySet builds a set from the provided tags, collapsing duplicates.
func NewDaySet(days ...time.Weekday) (DaySet, error) {
	if len(days) == 0 {
		return DaySet{}, ErrEmptyDaySet
	}
	set := make(map[time.Weekday]struct{}, len(days))
	for _, day := range days {
		if day < time.Sunday || day > time.Saturday {
			return DaySet{}, fmt.Errorf("%w: %d", ErrInvalidWeekday, int(day))
		}
		set[day] = struct{}{}
	}
	return DaySet{days: set}, nil
}

// ParseDaySet builds a set from lowercase English weekday names as exchanged
// on the wire ("monday", "tuesday", ...).
func ParseDaySet(names []string) (DaySet, error) {
	if len(names) == 0 {
		return DaySet{}, ErrEmptyDaySet
	}
	days := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		day, err := parseWeekday(name)
		if err != nil {
			return DaySet{}, err
		}
		days = append(days, day)
	}
	return NewDaySet(days...)
}

// Contains reports whether the set includes the given weekday.
func (s DaySet) Contains(day time.Weekday) bool {
	_, ok := s.days[day]
	return ok
}

// Len returns the number of weekdays in the set.
func (s DaySet) Len() int {
	return len(s.days)
}

// Intersects reports whether the two sets share at least one weekday.
func (s DaySet) Intersects(other DaySet) bool {
	for day := range s.days {
		if other.Contains(day) {
			return true
		}
	}
	return false
}

// Intersection returns the shared weekdays in canonical Monday-first order.
func (s DaySet) Intersection(other DaySet) []time.Weekday {
	shared := make([]time.Weekday, 0, len(s.days))
	for _, day := range canonicalOrder {
		if s.Contains(day) && other.Contains(day) {
			shared = append(shared, day)
		}
	}
	if len(shared) == 0 {
		return nil
	}
	return shared
}

// Ordered returns the contained weekdays in canonical Monday-first order.
func (s DaySet) Ordered() []time.Weekday {
	ordered := make([]time.Weekday, 0, len(s.days))
	for _, day := range canonicalOrder {
		if s.Contains(day) {
			ordered = append(ordered, day)
		}
	}
	return ordered
}

// Names returns the lowercase English names in canonical order.
func (s DaySet) Names() []string {
	ordered := s.Ordered()
	names := make([]string, 0, len(ordered))
	for _, day := range ordered {
		names = append(names, strings.ToLower(day.String()))
	}
	return names
}

// Equal reports whether both sets contain exactly the same weekdays.
func (s DaySet) Equal(other DaySet) bool {
	if len(s.days) != len(other.days) {
		return false
	}
	for day := range s.days {
		if !other.Contains(day) {
			return false
		}
	}
	return true
}

func parseWeekday(name string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return time.Sunday, fmt.Errorf("%w: %q", ErrInvalidWeekday, name)
}
