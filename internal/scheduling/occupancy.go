package scheduling

import "sort"

type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking is the slice of a stored booking the engine needs. Date is the
// resource-local civil day (YYYY-MM-DD).
type Booking struct {
	ID         string
	ResourceID string
	Date       string
	StartTime  TimeOfDay
	EndTime    TimeOfDay
	Status     BookingStatus
}

// BlackoutPeriod blocks the resource on every day of [StartDate, EndDate].
// Without a time window the whole day is blocked.
type BlackoutPeriod struct {
	ID         string
	ResourceID string
	StartDate  string
	EndDate    string
	StartTime  *TimeOfDay
	EndTime    *TimeOfDay
	Reason     string
}

func (b BlackoutPeriod) IsFullDay() bool {
	return b.StartTime == nil || b.EndTime == nil
}

func (b BlackoutPeriod) CoversDate(date string) bool {
	return date >= b.StartDate && date <= b.EndDate
}

func (b BlackoutPeriod) appliesTo(date, resourceID string) bool {
	return b.ResourceID == resourceID && b.CoversDate(date)
}

func IsBookingActive(b Booking, date string) bool {
	return b.Status == StatusConfirmed && b.Date == date
}

// IsSlotOccupied reports whether a booking of durationMinutes starting at
// slot would overlap an active booking of resourceID on date.
func IsSlotOccupied(slot TimeOfDay, durationMinutes int, bookings []Booking, date, resourceID string) bool {
	end := spanEnd(slot, durationMinutes)
	for _, b := range bookings {
		if !IsBookingActive(b, date) || b.ResourceID != resourceID {
			continue
		}
		if HasTimeOverlap(slot, end, b.StartTime, b.EndTime) {
			return true
		}
	}
	return false
}

// IsSlotInBlackout reports whether a booking of durationMinutes starting at
// slot would fall into a blackout of resourceID on date.
func IsSlotInBlackout(slot TimeOfDay, durationMinutes int, date string, blackouts []BlackoutPeriod, resourceID string) bool {
	end := spanEnd(slot, durationMinutes)
	for _, b := range blackouts {
		if !b.appliesTo(date, resourceID) {
			continue
		}
		if b.IsFullDay() {
			return true
		}
		if HasTimeOverlap(slot, end, *b.StartTime, *b.EndTime) {
			return true
		}
	}
	return false
}

func HasFullDayBlackout(date string, blackouts []BlackoutPeriod, resourceID string) bool {
	for _, b := range blackouts {
		if b.appliesTo(date, resourceID) && b.IsFullDay() {
			return true
		}
	}
	return false
}

// CalculateAllOccupiedSlots returns every grid point touched by an active
// booking or a blackout on date, independent of any requested duration.
// Full-day blackouts expand over the whole default window. The result is
// de-duplicated and sorted.
func (g Grid) CalculateAllOccupiedSlots(date string, bookings []Booking, resourceID string, blackouts []BlackoutPeriod) []TimeOfDay {
	seen := make(map[TimeOfDay]struct{})
	add := func(slots []TimeOfDay) {
		for _, s := range slots {
			seen[s] = struct{}{}
		}
	}

	for _, b := range bookings {
		if !IsBookingActive(b, date) || b.ResourceID != resourceID {
			continue
		}
		add(g.GenerateTimeSlotsBetween(b.StartTime, b.EndTime))
	}

	for _, b := range blackouts {
		if !b.appliesTo(date, resourceID) {
			continue
		}
		if b.IsFullDay() {
			add(g.DefaultSlots())
			continue
		}
		add(g.GenerateTimeSlotsBetween(*b.StartTime, *b.EndTime))
	}

	out := make([]TimeOfDay, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
