package auth

import (
	"context"
	"net/http"
	"strings"

	apperrors "simbooking/internal/errors"
	"simbooking/internal/service"
)

// CookieName is the httpOnly cookie holding the admin session token.
const CookieName = "admin-auth"

type TokenValidator interface {
	ParseToken(token string) (*service.AdminClaims, error)
}

type ctxKey struct{}

// AdminAuthMiddleware accepts the session cookie or an Authorization bearer
// token and rejects everything else with 401.
func AdminAuthMiddleware(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				apperrors.WriteError(w, apperrors.ErrUnauthorized("Non autorizzato"))
				return
			}
			claims, err := v.ParseToken(token)
			if err != nil {
				apperrors.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

func ClaimsFromContext(ctx context.Context) (*service.AdminClaims, bool) {
	claims, ok := ctx.Value(ctxKey{}).(*service.AdminClaims)
	return claims, ok
}

func SetSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(service.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
