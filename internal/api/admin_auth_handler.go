package api

import (
	"net/http"
	"strings"

	"simbooking/internal/auth"
	apperrors "simbooking/internal/errors"
	"simbooking/internal/service"
)

type AdminAuthHandler struct {
	service      service.AdminAuthService
	cookieSecure bool
}

func NewAdminAuthHandler(svc service.AdminAuthService, cookieSecure bool) *AdminAuthHandler {
	return &AdminAuthHandler{service: svc, cookieSecure: cookieSecure}
}

// LoginRequest accepts username as an alias of email.
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.WriteError(w, err)
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = strings.TrimSpace(req.Username)
	}
	if email == "" || req.Password == "" {
		apperrors.WriteError(w, apperrors.ErrUnauthorized("Credenziali non valide"))
		return
	}

	token, err := h.service.Login(r.Context(), strings.ToLower(email), req.Password)
	if err != nil {
		apperrors.WriteError(w, err)
		return
	}

	auth.SetSessionCookie(w, token, h.cookieSecure)
	writeJSON(w, http.StatusOK, LoginResponse{Success: true, Token: token})
}

func (h *AdminAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cookieSecure)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
