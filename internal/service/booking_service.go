package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"simbooking/internal/canceltoken"
	"simbooking/internal/db"
	"simbooking/internal/entities"
	apperrors "simbooking/internal/errors"
	"simbooking/internal/repository"
	"simbooking/internal/scheduling"
	"simbooking/internal/utils"
)

const (
	minStandardMinutes = 60
	maxStandardMinutes = 240
	maxPlayers         = 4
	// CancellationWindow is how long before the start a customer may still cancel.
	CancellationWindow = 24 * time.Hour
)

type BookingNotifier interface {
	SendBookingConfirmation(b db.Booking, c db.Customer, cancelURL string)
	SendBookingCancelled(b db.Booking, c db.Customer)
}

type BookingServiceConfig struct {
	Grid          scheduling.Grid
	Location      *time.Location
	PublicBaseURL string
}

type BookingService struct {
	bookings  repository.BookingRepository
	blackouts repository.BlackoutRepository
	hours     repository.WeeklyHoursRepository
	signer    *canceltoken.Signer
	notifier  BookingNotifier
	cfg       BookingServiceConfig
	log       *zap.Logger
	now       func() time.Time
}

func NewBookingService(
	bookings repository.BookingRepository,
	blackouts repository.BlackoutRepository,
	hours repository.WeeklyHoursRepository,
	signer *canceltoken.Signer,
	notifier BookingNotifier,
	cfg BookingServiceConfig,
	log *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		blackouts: blackouts,
		hours:     hours,
		signer:    signer,
		notifier:  notifier,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

func invalidInput(msg string) error {
	return apperrors.ErrBadRequest(apperrors.CodeInvalidInput, msg)
}

func validateCustomer(req *entities.CreateBookingRequest) error {
	req.FirstName = utils.SanitizeString(req.FirstName)
	req.LastName = utils.SanitizeString(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.Notes = utils.SanitizeString(req.Notes)

	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		return invalidInput("Dati customer incompleti")
	}
	if !utils.ValidateStringLength(req.FirstName, 1, 100) || !utils.ValidateStringLength(req.LastName, 1, 100) {
		return invalidInput("Nome o cognome troppo lungo")
	}
	if !utils.IsValidEmail(req.Email) {
		return invalidInput("Email non valida")
	}
	if req.Phone != "" && !utils.IsValidPhone(req.Phone) {
		return invalidInput("Numero di telefono non valido")
	}
	if req.UserType != db.UserTypeMember && req.UserType != db.UserTypeExternal {
		return invalidInput("Tipo utente non valido")
	}
	if !utils.ValidateStringLength(req.Notes, 0, 1000) {
		return invalidInput("Note troppo lunghe")
	}
	return nil
}

func validActivity(activityType string) bool {
	for _, a := range db.ActivityTypes {
		if a == activityType {
			return true
		}
	}
	return false
}

// ValidateDuration applies the duration policy of an activity kind.
func ValidateDuration(kind scheduling.ActivityKind, minutes int) error {
	if kind == scheduling.ActivityInstructorLesson {
		if minutes != 30 && minutes != 60 {
			return apperrors.ErrBadRequest(apperrors.CodeInvalidDuration, "Una lezione dura 30 o 60 minuti")
		}
		return nil
	}
	if minutes < minStandardMinutes {
		return apperrors.ErrBadRequest(apperrors.CodeInvalidDuration, "La durata minima di prenotazione è 60 minuti")
	}
	if minutes%scheduling.DefaultStep != 0 || minutes > maxStandardMinutes {
		return apperrors.ErrBadRequest(apperrors.CodeInvalidDuration, "La durata deve essere un multiplo di 30 minuti, massimo 240")
	}
	return nil
}

// resolveStart reads either startsAt or date plus startTime as a
// resource-local instant.
func (s *BookingService) resolveStart(req entities.CreateBookingRequest) (time.Time, error) {
	switch {
	case req.StartsAt != "":
		t, err := time.Parse(time.RFC3339, req.StartsAt)
		if err != nil {
			return time.Time{}, invalidInput("startsAt deve essere un timestamp ISO 8601")
		}
		return t.In(s.cfg.Location), nil
	case req.Date != "" && req.StartTime != "":
		t, err := utils.CombineDateAndTime(req.Date, req.StartTime, s.cfg.Location)
		if err != nil {
			return time.Time{}, invalidInput("Data o orario non validi")
		}
		return t, nil
	default:
		return time.Time{}, invalidInput("Dati prenotazione incompleti: fornisci 'startsAt' oppure 'date' + 'startTime'")
	}
}

// CreateBooking validates req, runs the pre-flight checks and stores the
// booking. The store's exclusion constraint has the final word on overlaps.
func (s *BookingService) CreateBooking(ctx context.Context, req entities.CreateBookingRequest) (*entities.CreateBookingResponse, error) {
	if err := validateCustomer(&req); err != nil {
		return nil, err
	}
	if req.ResourceID == "" {
		req.ResourceID = utils.ValidResourceIDs[0]
	}
	if !utils.IsValidResourceID(req.ResourceID) {
		return nil, invalidInput("Risorsa non valida")
	}
	if !validActivity(req.ActivityType) {
		return nil, invalidInput("Tipo di attività non valido")
	}
	if req.Players < 1 || req.Players > maxPlayers {
		return nil, invalidInput("Il numero di giocatori deve essere compreso tra 1 e 4")
	}
	kind := scheduling.KindOf(req.ActivityType)
	if err := ValidateDuration(kind, req.DurationMinutes); err != nil {
		return nil, err
	}

	startsAt, err := s.resolveStart(req)
	if err != nil {
		return nil, err
	}
	endsAt := startsAt.Add(time.Duration(req.DurationMinutes) * time.Minute)
	date, hhmm := utils.ToLocal(startsAt, s.cfg.Location)
	start := scheduling.MustParseTimeOfDay(hhmm)

	if start.Minutes()+req.DurationMinutes > 24*60 {
		return nil, invalidInput("La prenotazione non può superare la mezzanotte")
	}
	if startsAt.Before(s.now()) {
		return nil, apperrors.ErrBadRequest(apperrors.CodePastDate, "Non è possibile prenotare nel passato")
	}

	log := s.log.With(zap.String("resource_id", req.ResourceID), zap.String("date", date),
		zap.String("start", hhmm), zap.Int("duration", req.DurationMinutes), zap.String("activity", req.ActivityType))

	if kind.RespectsOpeningHours() {
		if err := s.checkOpeningHours(ctx, date, req.ResourceID, start, req.DurationMinutes); err != nil {
			return nil, err
		}
		if err := s.checkBlackouts(ctx, date, req.ResourceID, start, req.DurationMinutes); err != nil {
			return nil, err
		}
	}

	rows, err := s.bookings.ListConfirmedForDate(ctx, req.ResourceID, date)
	if err != nil {
		log.Error("pre-flight bookings lookup failed", zap.Error(err))
		return nil, apperrors.ErrDatabase()
	}
	existing, err := toSchedulingBookings(rows)
	if err != nil {
		log.Error("invalid booking data", zap.Error(err))
		return nil, apperrors.ErrDatabase()
	}
	if scheduling.IsSlotOccupied(start, req.DurationMinutes, existing, date, req.ResourceID) {
		return nil, overlapError()
	}

	customer, err := s.bookings.UpsertCustomer(ctx, repository.CustomerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		UserType:  req.UserType,
	})
	if err != nil {
		log.Error("customer upsert failed", zap.Error(err))
		return nil, apperrors.ErrDatabase()
	}

	booking, err := s.bookings.CreateBooking(ctx, repository.NewBooking{
		ResourceID:      req.ResourceID,
		CustomerID:      customer.ID,
		StartsAt:        startsAt,
		EndsAt:          endsAt,
		DurationMinutes: req.DurationMinutes,
		ActivityType:    req.ActivityType,
		Players:         req.Players,
		Notes:           req.Notes,
	})
	if err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			log.Info("booking rejected by overlap constraint")
			return nil, overlapError()
		}
		log.Error("booking insert failed", zap.Error(err))
		return nil, apperrors.ErrDatabase()
	}

	log.Info("booking created", zap.String("booking_id", booking.ID), zap.String("customer_id", customer.ID))
	s.notifier.SendBookingConfirmation(*booking, *customer, s.CancelURL(booking.ID))

	return &entities.CreateBookingResponse{Booking: *booking, Customer: *customer}, nil
}

func overlapError() error {
	return apperrors.ErrConflict(apperrors.CodeOverlap, "La prenotazione si sovrappone con una prenotazione esistente")
}

func (s *BookingService) CancelURL(bookingID string) string {
	return fmt.Sprintf("%s/cancel/%s", s.cfg.PublicBaseURL, s.signer.Generate(bookingID))
}

func (s *BookingService) checkOpeningHours(ctx context.Context, date, resourceID string, start scheduling.TimeOfDay, minutes int) error {
	rows, err := s.hours.List(ctx, resourceID)
	if err != nil {
		s.log.Error("weekly hours lookup failed", zap.Error(err))
		return apperrors.ErrDatabase()
	}
	weekly, err := toSchedulingHours(rows)
	if err != nil {
		s.log.Error("invalid weekly hours data", zap.Error(err))
		return apperrors.ErrDatabase()
	}
	window, open, err := s.cfg.Grid.ResolveOpeningHours(date, resourceID, weekly)
	if err != nil {
		return invalidInput("Data non valida")
	}
	if !open {
		return apperrors.ErrUnprocessable(apperrors.CodeClosed, "La struttura è chiusa in questa data")
	}
	if !window.Contains(start, minutes) {
		return apperrors.ErrUnprocessable(apperrors.CodeOutsideHours,
			fmt.Sprintf("La prenotazione deve essere compresa tra le %s e le %s", window.Open, window.Close))
	}
	return nil
}

func (s *BookingService) checkBlackouts(ctx context.Context, date, resourceID string, start scheduling.TimeOfDay, minutes int) error {
	rows, err := s.blackouts.ListOverlapping(ctx, resourceID, date, date)
	if err != nil {
		s.log.Error("blackout lookup failed", zap.Error(err))
		return apperrors.ErrDatabase()
	}
	blackouts, err := toSchedulingBlackouts(rows)
	if err != nil {
		s.log.Error("invalid blackout data", zap.Error(err))
		return apperrors.ErrDatabase()
	}
	if scheduling.IsSlotInBlackout(start, minutes, date, blackouts, resourceID) {
		return apperrors.ErrConflict(apperrors.CodeBlackout, "Il simulatore non è disponibile in questo orario")
	}
	return nil
}

// CancelByToken cancels the booking a cancel link points to. Cancellation
// closes CancellationWindow before the start.
func (s *BookingService) CancelByToken(ctx context.Context, token string) (*db.Booking, error) {
	bookingID, err := s.signer.Validate(token)
	if err != nil || !utils.IsValidUUID(bookingID) {
		return nil, apperrors.ErrBadRequest(apperrors.CodeInvalidToken, "Token di cancellazione non valido o scaduto")
	}
	existing, err := s.bookings.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, s.lookupError(bookingID, err)
	}
	if existing.Status == db.StatusCancelled {
		return nil, apperrors.ErrBadRequest(apperrors.CodeAlreadyCancelled, "La prenotazione è già stata cancellata")
	}
	if existing.StartsAt.Sub(s.now()) < CancellationWindow {
		return nil, apperrors.ErrBadRequest(apperrors.CodeCancellationExpired,
			"La prenotazione può essere cancellata solo entro 24 ore prima dell'orario prenotato")
	}
	return s.cancel(ctx, existing)
}

// AdminCancel cancels a booking regardless of the cancellation window.
func (s *BookingService) AdminCancel(ctx context.Context, bookingID string) (*db.Booking, error) {
	existing, err := s.bookings.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, s.lookupError(bookingID, err)
	}
	if existing.Status == db.StatusCancelled {
		return &existing.Booking, nil
	}
	return s.cancel(ctx, existing)
}

func (s *BookingService) cancel(ctx context.Context, existing *db.BookingWithCustomer) (*db.Booking, error) {
	booking, err := s.bookings.CancelBooking(ctx, existing.ID)
	if err != nil {
		return nil, s.lookupError(existing.ID, err)
	}
	s.log.Info("booking cancelled", zap.String("booking_id", booking.ID))
	s.notifier.SendBookingCancelled(*booking, existing.Customer)
	return booking, nil
}

func (s *BookingService) UpdateAdminNotes(ctx context.Context, bookingID, notes string) (*db.Booking, error) {
	notes = utils.SanitizeString(notes)
	if !utils.ValidateStringLength(notes, 0, 2000) {
		return nil, invalidInput("Note troppo lunghe")
	}
	booking, err := s.bookings.UpdateAdminNotes(ctx, bookingID, notes)
	if err != nil {
		return nil, s.lookupError(bookingID, err)
	}
	return booking, nil
}

// PatchBooking applies an admin patch: status may only become cancelled.
func (s *BookingService) PatchBooking(ctx context.Context, bookingID string, patch entities.AdminBookingPatch) (*db.Booking, error) {
	if patch.Status == nil && patch.AdminNotes == nil {
		return nil, apperrors.ErrBadRequest(apperrors.CodeInvalidStatus, "Per cancellare una prenotazione, imposta status='cancelled'")
	}
	if patch.Status != nil && *patch.Status != db.StatusCancelled {
		return nil, apperrors.ErrBadRequest(apperrors.CodeInvalidStatus, "Per cancellare una prenotazione, imposta status='cancelled'")
	}
	var booking *db.Booking
	var err error
	if patch.AdminNotes != nil {
		if booking, err = s.UpdateAdminNotes(ctx, bookingID, *patch.AdminNotes); err != nil {
			return nil, err
		}
	}
	if patch.Status != nil {
		if booking, err = s.AdminCancel(ctx, bookingID); err != nil {
			return nil, err
		}
	}
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, limit int) (*entities.BookingsList, error) {
	list, err := s.bookings.ListBookings(ctx, limit)
	if err != nil {
		s.log.Error("listing bookings failed", zap.Error(err))
		return nil, apperrors.ErrDatabase()
	}
	return &entities.BookingsList{Total: len(list), Limit: limit, Bookings: list}, nil
}

func (s *BookingService) lookupError(bookingID string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrNotFound("Prenotazione non trovata")
	}
	s.log.Error("booking lookup failed", zap.String("booking_id", bookingID), zap.Error(err))
	return apperrors.ErrDatabase()
}
