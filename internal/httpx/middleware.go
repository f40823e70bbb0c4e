package httpx

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"go.uber.org/zap"
)

type Middleware func(http.Handler) http.Handler

// Chain(h, a, b) is a(b(h)).
func Chain(h http.Handler, m ...Middleware) http.Handler {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}

func WithBodyLimit(limitBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limitBytes)
			next.ServeHTTP(w, r)
		})
	}
}

func WithTimeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, `{"error":"Timeout della richiesta","code":"INTERNAL_ERROR"}`)
	}
}

// WithRecovery turns panics into 500 responses and logs them.
func WithRecovery(log *zap.Logger) Middleware {
	return Middleware(handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(log)),
		handlers.PrintRecoveryStack(false),
	))
}

type CORSPolicy struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

// WithCORS is a no-op when no origin is allowed. Credentials are always
// allowed so the admin cookie reaches the API from the panel.
func WithCORS(cfg CORSPolicy) Middleware {
	if len(cfg.AllowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	opts := []handlers.CORSOption{
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowCredentials(),
	}
	if len(cfg.AllowedMethods) > 0 {
		opts = append(opts, handlers.AllowedMethods(cfg.AllowedMethods))
	}
	if len(cfg.AllowedHeaders) > 0 {
		opts = append(opts, handlers.AllowedHeaders(cfg.AllowedHeaders))
	}
	if cfg.MaxAge > 0 {
		opts = append(opts, handlers.MaxAge(int(cfg.MaxAge.Seconds())))
	}
	return Middleware(handlers.CORS(opts...))
}

// WithProxyHeaders takes the client address from X-Forwarded-For or
// X-Real-IP. Enable it only behind a proxy that overwrites those headers.
func WithProxyHeaders(trusted bool) Middleware {
	if !trusted {
		return func(next http.Handler) http.Handler { return next }
	}
	return Middleware(handlers.ProxyHeaders)
}

// NoStore marks responses as never cacheable.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}
