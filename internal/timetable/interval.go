package timetable

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// minutesPerDay bounds interval endpoints to a single day of wall-clock time.
const minutesPerDay = 24 * 60

// ErrInvalidInterval indicates an interval with inverted, zero-length, or
// out-of-range bounds.
var ErrInvalidInterval = errors.New("timetable: invalid time interval")

// TimeInterval is a half-open [Start, End) window expressed in minutes since
// midnight. Touching endpoints do not overlap.
type TimeInterval struct {
	Start int
	End   int
}

// NewTimeInterval validates the bounds before constructing an interval.
func NewTimeInterval(start, end int) (TimeInterval, error) {
	if start < 0 || start >= minutesPerDay || end < 0 || end >= minutesPerDay {
		return TimeInterval{}, fmt.Errorf("%w: bounds must be within [0, %d)", ErrInvalidInterval, minutesPerDay)
	}
	if start >= end {
		return TimeInterval{}, fmt.Errorf("%w: start must be before end", ErrInvalidInterval)
	}
	return TimeInterval{Start: start, End: end}, nil
}

// ParseTimeInterval builds an interval from "HH:MM" formatted bounds as
// exchanged on the wire.
func ParseTimeInterval(start, end string) (TimeInterval, error) {
	startMinutes, err := parseClock(start)
	if err != nil {
		return TimeInterval{}, err
	}
	endMinutes, err := parseClock(end)
	if err != nil {
		return TimeInterval{}, err
	}
	return NewTimeInterval(startMinutes, endMinutes)
}

// Overlaps reports whether the two half-open windows share any instant.
func (i TimeInterval) Overlaps(other TimeInterval) bool {
	return i.Start < other.End && i.End > other.Start
}

// Minutes returns the length of the window.
func (i TimeInterval) Minutes() int {
	return i.End - i.Start
}

// String renders the window as "HH:MM-HH:MM".
func (i TimeInterval) String() string {
	return formatClock(i.Start) + "-" + formatClock(i.End)
}

// StartClock renders the lower bound as "HH:MM".
func (i TimeInterval) StartClock() string {
	return formatClock(i.Start)
}

// EndClock renders the upper bound as "HH:MM".
func (i TimeInterval) EndClock() string {
	return formatClock(i.End)
}

func parseClock(value string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q is not an HH:MM value", ErrInvalidInterval, value)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %q is not an HH:MM value", ErrInvalidInterval, value)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q is not an HH:MM value", ErrInvalidInterval, value)
	}
	return hour*60 + minute, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
