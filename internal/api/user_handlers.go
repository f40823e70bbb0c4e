package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"simbooking/internal/db"
	"simbooking/internal/entities"
	apperrors "simbooking/internal/errors"
	"simbooking/internal/utils"
)

type AvailabilityFinder interface {
	GetAvailability(ctx context.Context, date, resourceID string, durationMinutes int) entities.AvailabilityResponse
}

type BookingCreator interface {
	CreateBooking(ctx context.Context, req entities.CreateBookingRequest) (*entities.CreateBookingResponse, error)
	CancelByToken(ctx context.Context, token string) (*db.Booking, error)
}

// UserHandler serves the public booking routes.
type UserHandler struct {
	availability AvailabilityFinder
	bookings     BookingCreator
	loc          *time.Location
	now          func() time.Time
}

func NewUserHandler(availability AvailabilityFinder, bookings BookingCreator, loc *time.Location) *UserHandler {
	return &UserHandler{availability: availability, bookings: bookings, loc: loc, now: time.Now}
}

func (h *UserHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := q.Get("date")
	resourceID := q.Get("resourceId")
	if resourceID == "" {
		resourceID = utils.ValidResourceIDs[0]
	}

	if date == "" {
		apperrors.WriteError(w, apperrors.ErrBadRequest(apperrors.CodeInvalidInput, "Parametro 'date' è obbligatorio"))
		return
	}
	if q.Get("durationMinutes") == "" {
		apperrors.WriteError(w, apperrors.ErrBadRequest(apperrors.CodeInvalidInput, "Parametro 'durationMinutes' è obbligatorio"))
		return
	}
	duration, err := strconv.Atoi(q.Get("durationMinutes"))
	if err != nil || duration <= 0 {
		apperrors.WriteError(w, apperrors.ErrBadRequest(apperrors.CodeInvalidDuration, "Parametro 'durationMinutes' deve essere un numero positivo"))
		return
	}
	if !utils.IsValidDate(date) {
		apperrors.WriteError(w, apperrors.ErrBadRequest(apperrors.CodeInvalidInput, "Formato data non valido. Usa YYYY-MM-DD"))
		return
	}
	if date < utils.Today(h.now(), h.loc) {
		apperrors.WriteError(w, apperrors.ErrBadRequest(apperrors.CodePastDate, "Non è possibile prenotare per date nel passato"))
		return
	}
	if !utils.IsValidResourceID(resourceID) {
		apperrors.WriteError(w, apperrors.ErrBadRequest(apperrors.CodeInvalidInput, "resourceId non valido"))
		return
	}

	writeJSON(w, http.StatusOK, h.availability.GetAvailability(r.Context(), date, resourceID, duration))
}

func (h *UserHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req entities.CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	resp, err := h.bookings.CreateBooking(r.Context(), req)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *UserHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.bookings.CancelByToken(r.Context(), mux.Vars(r)["token"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"booking": booking,
		"message": "Prenotazione cancellata con successo",
	})
}
