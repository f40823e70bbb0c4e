package scheduling

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// OpeningHours is the weekly schedule entry of a resource. DayOfWeek follows
// time.Weekday: 0 is Sunday.
type OpeningHours struct {
	ID         string
	ResourceID string
	DayOfWeek  int
	OpenTime   TimeOfDay
	CloseTime  TimeOfDay
	IsClosed   bool
}

// Window is an opening window [Open, Close] of a single day.
type Window struct {
	Open  TimeOfDay `json:"openTime"`
	Close TimeOfDay `json:"closeTime"`
}

// Contains reports whether a span of durationMinutes starting at start lies
// entirely inside the window.
func (w Window) Contains(start TimeOfDay, durationMinutes int) bool {
	return start >= w.Open && spanEnd(start, durationMinutes) <= w.Close
}

// Weekday returns the day of week of a civil date.
func Weekday(date string) (int, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return int(d.Weekday()), nil
}

// ResolveOpeningHours returns the opening window of resourceID on date.
// open is false when the weekly schedule marks that weekday closed. A weekday
// without an entry uses the grid's default window.
func (g Grid) ResolveOpeningHours(date, resourceID string, weekly []OpeningHours) (window Window, open bool, err error) {
	wd, err := Weekday(date)
	if err != nil {
		return Window{}, false, err
	}
	for _, h := range weekly {
		if h.ResourceID != resourceID || h.DayOfWeek != wd {
			continue
		}
		if h.IsClosed {
			return Window{}, false, nil
		}
		return Window{Open: h.OpenTime, Close: h.CloseTime}, true, nil
	}
	return g.DefaultWindow(), true, nil
}

// ActivityKind separates activities bound to opening hours from the ones
// that are not.
type ActivityKind int

const (
	ActivityStandard ActivityKind = iota
	ActivityInstructorLesson
)

// InstructorLessonActivity is the activity type booked by instructors.
const InstructorLessonActivity = "lezione-maestro"

func KindOf(activityType string) ActivityKind {
	if activityType == InstructorLessonActivity {
		return ActivityInstructorLesson
	}
	return ActivityStandard
}

// RespectsOpeningHours is false for instructor lessons, which may be booked
// outside the weekly schedule and ignore blackouts.
func (k ActivityKind) RespectsOpeningHours() bool {
	return k == ActivityStandard
}

func (k ActivityKind) String() string {
	switch k {
	case ActivityInstructorLesson:
		return "instructor_lesson"
	default:
		return "standard"
	}
}
