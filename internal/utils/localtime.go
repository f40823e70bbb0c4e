package utils

import (
	"fmt"
	"time"

	"simbooking/internal/scheduling"
)

// CombineDateAndTime builds the instant of a civil date and HH:mm in loc.
func CombineDateAndTime(date, hhmm string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(scheduling.DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	t, err := scheduling.ParseTimeOfDay(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Minutes()/60, t.Minutes()%60, 0, 0, loc), nil
}

// ToLocal projects an instant onto the civil date and HH:mm of loc.
func ToLocal(t time.Time, loc *time.Location) (date string, hhmm string) {
	l := t.In(loc)
	return l.Format(scheduling.DateLayout), l.Format("15:04")
}

// Today is the civil date of now in loc.
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(scheduling.DateLayout)
}

// IsValidDate checks the YYYY-MM-DD layout and calendar validity.
func IsValidDate(date string) bool {
	_, err := time.Parse(scheduling.DateLayout, date)
	return err == nil
}
