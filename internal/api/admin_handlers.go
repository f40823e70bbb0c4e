package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"simbooking/internal/db"
	"simbooking/internal/entities"
	apperrors "simbooking/internal/errors"
	"simbooking/internal/service"
	"simbooking/internal/utils"
)

const (
	defaultListLimit = 1000
	maxListLimit     = 5000
)

type BookingAdmin interface {
	ListBookings(ctx context.Context, limit int) (*entities.BookingsList, error)
	PatchBooking(ctx context.Context, bookingID string, patch entities.AdminBookingPatch) (*db.Booking, error)
}

type BookingExporter interface {
	WriteCSV(ctx context.Context, w io.Writer) error
}

type AdminHandler struct {
	bookings BookingAdmin
	exporter BookingExporter
	log      *zap.Logger
	now      func() time.Time
}

func NewAdminHandler(bookings BookingAdmin, exporter BookingExporter, log *zap.Logger) *AdminHandler {
	return &AdminHandler{bookings: bookings, exporter: exporter, log: log, now: time.Now}
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			apperrors.WriteError(w, apperrors.ErrBadRequest(apperrors.CodeInvalidInput, "Parametro 'limit' non valido"))
			return
		}
		if n > maxListLimit {
			n = maxListLimit
		}
		limit = n
	}
	list, err := h.bookings.ListBookings(r.Context(), limit)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "private, max-age=10")
	writeJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) PatchBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !utils.IsValidUUID(id) {
		apperrors.WriteError(w, apperrors.ErrBadRequest(apperrors.CodeInvalidID, "ID prenotazione non valido"))
		return
	}
	var patch entities.AdminBookingPatch
	if err := decodeJSON(r, &patch); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	booking, err := h.bookings.PatchBooking(r.Context(), id, patch)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"booking": booking})
}

// ExportCSV renders into a buffer first so a failed export still gets a
// JSON error instead of a truncated file.
func (h *AdminHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.exporter.WriteCSV(r.Context(), &buf); err != nil {
		h.log.Error("csv export failed", zap.Error(err))
		apperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, service.ExportFilename(h.now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
