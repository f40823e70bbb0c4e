package service

import (
	"fmt"

	"simbooking/internal/db"
	"simbooking/internal/scheduling"
)

func toSchedulingBookings(rows []db.Booking) ([]scheduling.Booking, error) {
	out := make([]scheduling.Booking, 0, len(rows))
	for _, b := range rows {
		start, err := scheduling.ParseTimeOfDay(b.StartTime)
		if err != nil {
			return nil, fmt.Errorf("booking %s: %w", b.ID, err)
		}
		end, err := scheduling.ParseTimeOfDay(b.EndTime)
		if err != nil {
			return nil, fmt.Errorf("booking %s: %w", b.ID, err)
		}
		// A span ending past midnight keeps its unwrapped end.
		if end <= start {
			end += 24 * 60
		}
		out = append(out, scheduling.Booking{
			ID:         b.ID,
			ResourceID: b.ResourceID,
			Date:       b.Date,
			StartTime:  start,
			EndTime:    end,
			Status:     scheduling.BookingStatus(b.Status),
		})
	}
	return out, nil
}

func toSchedulingBlackouts(rows []db.BlackoutPeriod) ([]scheduling.BlackoutPeriod, error) {
	out := make([]scheduling.BlackoutPeriod, 0, len(rows))
	for _, b := range rows {
		p := scheduling.BlackoutPeriod{
			ID:         b.ID,
			ResourceID: b.ResourceID,
			StartDate:  b.StartDate,
			EndDate:    b.EndDate,
			Reason:     b.Reason,
		}
		if b.StartTime != nil && b.EndTime != nil {
			start, err := scheduling.ParseTimeOfDay(*b.StartTime)
			if err != nil {
				return nil, fmt.Errorf("blackout %s: %w", b.ID, err)
			}
			end, err := scheduling.ParseTimeOfDay(*b.EndTime)
			if err != nil {
				return nil, fmt.Errorf("blackout %s: %w", b.ID, err)
			}
			p.StartTime, p.EndTime = &start, &end
		}
		out = append(out, p)
	}
	return out, nil
}

func toSchedulingHours(rows []db.WeeklyHours) ([]scheduling.OpeningHours, error) {
	out := make([]scheduling.OpeningHours, 0, len(rows))
	for _, h := range rows {
		open, err := scheduling.ParseTimeOfDay(h.OpenTime)
		if err != nil {
			return nil, fmt.Errorf("weekly hours %s: %w", h.ID, err)
		}
		closeAt, err := scheduling.ParseTimeOfDay(h.CloseTime)
		if err != nil {
			return nil, fmt.Errorf("weekly hours %s: %w", h.ID, err)
		}
		out = append(out, scheduling.OpeningHours{
			ID:         h.ID,
			ResourceID: h.ResourceID,
			DayOfWeek:  h.DayOfWeek,
			OpenTime:   open,
			CloseTime:  closeAt,
			IsClosed:   h.IsClosed,
		})
	}
	return out, nil
}
