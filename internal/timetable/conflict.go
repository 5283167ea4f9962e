package timetable

import "time"

// Entry is the day-set and time-window view of a recurring session that
// conflict detection operates on. Candidates that have not been persisted yet
// may leave ID empty.
type Entry struct {
	ID           string
	InstructorID string
	Room         string
	Days         DaySet
	Window       TimeInterval
}

// Resource describes which booked resource collided.
type Resource string

const (
	// ResourceInstructor indicates the instructor is double-booked.
	ResourceInstructor Resource = "instructor"
	// ResourceRoom indicates the room is double-booked.
	ResourceRoom Resource = "room"
	// ResourceBoth indicates both instructor and room are double-booked by
	// the same existing session.
	ResourceBoth Resource = "both"
)

// Conflict details a shared-day, overlapping-time collision with one existing
// session. Days lists the shared weekdays in canonical Monday-first order.
type Conflict struct {
	WithSessionID string
	Resource      Resource
	Days          []time.Weekday
}

// DetectConflicts scans the existing entries once and reports at most one
// conflict record per colliding entry. An entry whose ID equals excludeID is
// skipped, so updates never conflict with their own prior version.
//
// Instructor and room are evaluated as two independent checks; disjoint day
// sets never conflict regardless of time overlap. The function holds no state
// between calls, so callers must re-run detection after mutating the session
// set.
func DetectConflicts(existing []Entry, candidate Entry, excludeID string) []Conflict {
	var conflicts []Conflict
	for _, entry := range existing {
		if excludeID != "" && entry.ID == excludeID {
			continue
		}
		if !entry.Days.Intersects(candidate.Days) {
			continue
		}
		if !entry.Window.Overlaps(candidate.Window) {
			continue
		}

		sameInstructor := entry.InstructorID != "" && entry.InstructorID == candidate.InstructorID
		sameRoom := entry.Room != "" && entry.Room == candidate.Room
		if !sameInstructor && !sameRoom {
			continue
		}

		resource := ResourceInstructor
		switch {
		case sameInstructor && sameRoom:
			resource = ResourceBoth
		case sameRoom:
			resource = ResourceRoom
		}

		conflicts = append(conflicts, Conflict{
			WithSessionID: entry.ID,
			Resource:      resource,
			Days:          entry.Days.Intersection(candidate.Days),
		})
	}
	return conflicts
}
