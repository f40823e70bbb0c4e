package scheduling

import (
	"errors"
	"fmt"
)

const (
	minutesPerDay = 24 * 60

	// DefaultStep is the slot granularity in minutes.
	DefaultStep = 30
)

var ErrInvalidTimeOfDay = errors.New("invalid time of day, expected HH:mm")

// TimeOfDay is a resource-local wall-clock time expressed as minutes since
// midnight. It is the only place where HH:mm strings are parsed or formatted.
type TimeOfDay int

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	h, okH := twoDigits(s[0:2])
	m, okM := twoDigits(s[3:5])
	if !okH || !okM || h > 23 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return TimeOfDay(h*60 + m), nil
}

// MustParseTimeOfDay is ParseTimeOfDay for constants and tests.
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

func (t TimeOfDay) Minutes() int { return int(t) }

// String formats t as HH:mm, folding values past midnight back into the day.
func (t TimeOfDay) String() string {
	m := int(t) % minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// CalculateEndTime adds durationMinutes to start. The result wraps modulo
// 24h; cross-midnight spans are rejected by callers, see spanEnd.
func CalculateEndTime(start TimeOfDay, durationMinutes int) TimeOfDay {
	return TimeOfDay((int(start) + durationMinutes) % minutesPerDay)
}

// spanEnd is the unwrapped end of a span, used wherever a comparison
// against a closing time must not be fooled by the midnight wrap.
func spanEnd(start TimeOfDay, durationMinutes int) TimeOfDay {
	return start + TimeOfDay(durationMinutes)
}

// HasTimeOverlap reports whether [start1,end1) and [start2,end2) overlap.
// Intervals that only share a boundary do not overlap.
func HasTimeOverlap(start1, end1, start2, end2 TimeOfDay) bool {
	return !(end1 <= start2 || end2 <= start1)
}

// Grid is the slot grid the calculator works on.
type Grid struct {
	DefaultOpen  TimeOfDay
	DefaultClose TimeOfDay
	Step         int
}

// DefaultGrid spans 09:30-23:00 in 30 minute steps.
func DefaultGrid() Grid {
	return Grid{
		DefaultOpen:  MustParseTimeOfDay("09:30"),
		DefaultClose: MustParseTimeOfDay("23:00"),
		Step:         DefaultStep,
	}
}

func (g Grid) step() TimeOfDay {
	if g.Step <= 0 {
		return DefaultStep
	}
	return TimeOfDay(g.Step)
}

func (g Grid) DefaultWindow() Window {
	return Window{Open: g.DefaultOpen, Close: g.DefaultClose}
}

// GenerateTimeSlots enumerates start, start+step, ... up to and including end.
// The grid is anchored at start.
func (g Grid) GenerateTimeSlots(start, end TimeOfDay) []TimeOfDay {
	slots := []TimeOfDay{}
	for t := start; t <= end; t += g.step() {
		slots = append(slots, t)
	}
	return slots
}

// GenerateTimeSlotsBetween enumerates the grid points a booking of
// [start,end) occupies. end itself is excluded so back-to-back bookings do
// not share a point.
func (g Grid) GenerateTimeSlotsBetween(start, end TimeOfDay) []TimeOfDay {
	slots := []TimeOfDay{}
	for t := start; t < end; t += g.step() {
		slots = append(slots, t)
	}
	return slots
}

// DefaultSlots is every slot of the default window.
func (g Grid) DefaultSlots() []TimeOfDay {
	return g.GenerateTimeSlots(g.DefaultOpen, g.DefaultClose)
}

func FormatSlots(slots []TimeOfDay) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}
