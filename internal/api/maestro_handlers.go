package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"simbooking/internal/db"
	"simbooking/internal/entities"
	apperrors "simbooking/internal/errors"
)

type MaestroManager interface {
	Sync(ctx context.Context) (entities.SyncResult, error)
	Overview(ctx context.Context, from, to string) (*entities.MaestriOverview, error)
	Detail(ctx context.Context, email string) (*entities.MaestroDetail, error)
	ApplyPaymentAction(ctx context.Context, paymentID, action string) (*db.MaestroPayment, error)
	PaymentForBooking(ctx context.Context, bookingID string) (*db.MaestroPayment, error)
	ApplyBookingAction(ctx context.Context, bookingID, action string) (*db.MaestroPayment, error)
}

type MaestroHandler struct {
	maestri MaestroManager
}

func NewMaestroHandler(maestri MaestroManager) *MaestroHandler {
	return &MaestroHandler{maestri: maestri}
}

type actionRequest struct {
	Action string `json:"action"`
}

func (h *MaestroHandler) Overview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	overview, err := h.maestri.Overview(r.Context(), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *MaestroHandler) Sync(w http.ResponseWriter, r *http.Request) {
	res, err := h.maestri.Sync(r.Context())
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	overview, err := h.maestri.Overview(r.Context(), "", "")
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Sincronizzazione completata",
		"sync":      res,
		"summaries": overview.Maestri,
		"totalOwed": overview.TotalOwed,
	})
}

func (h *MaestroHandler) Detail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.maestri.Detail(r.Context(), mux.Vars(r)["email"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *MaestroHandler) PaymentAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	payment, err := h.maestri.ApplyPaymentAction(r.Context(), mux.Vars(r)["id"], req.Action)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "payment": payment})
}

func (h *MaestroHandler) BookingPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.maestri.PaymentForBooking(r.Context(), mux.Vars(r)["bookingId"])
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"payment": payment})
}

func (h *MaestroHandler) BookingAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	payment, err := h.maestri.ApplyBookingAction(r.Context(), mux.Vars(r)["bookingId"], req.Action)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "payment": payment})
}
