package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"simbooking/internal/db"
	"simbooking/internal/entities"
	apperrors "simbooking/internal/errors"
)

type BlackoutManager interface {
	List(ctx context.Context, resourceID string) ([]db.BlackoutPeriod, error)
	Create(ctx context.Context, req entities.BlackoutRequest) (*db.BlackoutPeriod, error)
	Update(ctx context.Context, id string, req entities.BlackoutRequest) (*db.BlackoutPeriod, error)
	Delete(ctx context.Context, id string) error
}

type WeeklyHoursManager interface {
	List(ctx context.Context, resourceID string) ([]db.WeeklyHours, error)
	Save(ctx context.Context, req entities.WeeklyHoursRequest) (*db.WeeklyHours, error)
	Update(ctx context.Context, id string, req entities.WeeklyHoursRequest) (*db.WeeklyHours, error)
	Delete(ctx context.Context, id string) error
}

type ScheduleHandler struct {
	blackouts BlackoutManager
	hours     WeeklyHoursManager
}

func NewScheduleHandler(blackouts BlackoutManager, hours WeeklyHoursManager) *ScheduleHandler {
	return &ScheduleHandler{blackouts: blackouts, hours: hours}
}

func (h *ScheduleHandler) ListBlackouts(w http.ResponseWriter, r *http.Request) {
	list, err := h.blackouts.List(r.Context(), r.URL.Query().Get("resourceId"))
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"blackouts": list})
}

func (h *ScheduleHandler) CreateBlackout(w http.ResponseWriter, r *http.Request) {
	var req entities.BlackoutRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	created, err := h.blackouts.Create(r.Context(), req)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"blackout": created})
}

func (h *ScheduleHandler) UpdateBlackout(w http.ResponseWriter, r *http.Request) {
	var req entities.BlackoutRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	updated, err := h.blackouts.Update(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"blackout": updated})
}

func (h *ScheduleHandler) DeleteBlackout(w http.ResponseWriter, r *http.Request) {
	if err := h.blackouts.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *ScheduleHandler) ListWeeklyHours(w http.ResponseWriter, r *http.Request) {
	list, err := h.hours.List(r.Context(), r.URL.Query().Get("resourceId"))
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"weeklyHours": list})
}

func (h *ScheduleHandler) SaveWeeklyHours(w http.ResponseWriter, r *http.Request) {
	var req entities.WeeklyHoursRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	saved, err := h.hours.Save(r.Context(), req)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"weeklyHours": saved})
}

func (h *ScheduleHandler) UpdateWeeklyHours(w http.ResponseWriter, r *http.Request) {
	var req entities.WeeklyHoursRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	saved, err := h.hours.Update(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"weeklyHours": saved})
}

func (h *ScheduleHandler) DeleteWeeklyHours(w http.ResponseWriter, r *http.Request) {
	if err := h.hours.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
