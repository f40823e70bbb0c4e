package service

import (
	"context"

	"go.uber.org/zap"

	"simbooking/internal/entities"
	"simbooking/internal/repository"
	"simbooking/internal/scheduling"
)

type AvailabilityService struct {
	bookings  repository.BookingRepository
	blackouts repository.BlackoutRepository
	hours     repository.WeeklyHoursRepository
	calc      *scheduling.Calculator
	log       *zap.Logger
}

func NewAvailabilityService(
	bookings repository.BookingRepository,
	blackouts repository.BlackoutRepository,
	hours repository.WeeklyHoursRepository,
	calc *scheduling.Calculator,
	log *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{bookings: bookings, blackouts: blackouts, hours: hours, calc: calc, log: log}
}

// GetAvailability resolves the opening window of date, loads the day's
// bookings and blackouts and partitions the grid for durationMinutes.
// Data errors are logged and answered with an empty result.
func (s *AvailabilityService) GetAvailability(ctx context.Context, date, resourceID string, durationMinutes int) entities.AvailabilityResponse {
	resp := entities.EmptyAvailability(date, resourceID)
	log := s.log.With(zap.String("date", date), zap.String("resource_id", resourceID), zap.Int("duration", durationMinutes))

	window, open, err := s.openingWindow(ctx, date, resourceID)
	if err != nil {
		log.Error("cannot resolve opening hours", zap.Error(err))
		return resp
	}
	if !open {
		resp.IsClosed = true
		return resp
	}
	resp.OpeningHours = &window

	bookingRows, err := s.bookings.ListConfirmedForDate(ctx, resourceID, date)
	if err != nil {
		log.Error("cannot load bookings", zap.Error(err))
		return resp
	}
	blackoutRows, err := s.blackouts.ListOverlapping(ctx, resourceID, date, date)
	if err != nil {
		log.Error("cannot load blackouts", zap.Error(err))
		return resp
	}
	bookings, err := toSchedulingBookings(bookingRows)
	if err != nil {
		log.Error("invalid booking data", zap.Error(err))
		return resp
	}
	blackouts, err := toSchedulingBlackouts(blackoutRows)
	if err != nil {
		log.Error("invalid blackout data", zap.Error(err))
		return resp
	}

	partition := s.calc.CalculateAvailableSlots(date, durationMinutes, bookings, blackouts, resourceID, window.Open, window.Close)
	resp.AvailableSlots = partition.AvailableSlots
	resp.OccupiedSlots = partition.OccupiedSlots
	resp.AllOccupiedSlots = s.calc.Grid().CalculateAllOccupiedSlots(date, bookings, resourceID, blackouts)
	resp.HasFullDayBlackout = scheduling.HasFullDayBlackout(date, blackouts, resourceID)

	log.Debug("availability computed",
		zap.Int("bookings", len(bookings)),
		zap.Int("available", len(resp.AvailableSlots)),
		zap.Int("occupied", len(resp.OccupiedSlots)))
	return resp
}

func (s *AvailabilityService) openingWindow(ctx context.Context, date, resourceID string) (scheduling.Window, bool, error) {
	rows, err := s.hours.List(ctx, resourceID)
	if err != nil {
		return scheduling.Window{}, false, err
	}
	weekly, err := toSchedulingHours(rows)
	if err != nil {
		return scheduling.Window{}, false, err
	}
	return s.calc.Grid().ResolveOpeningHours(date, resourceID, weekly)
}
