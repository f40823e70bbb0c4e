package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"simbooking/internal/auth"
	"simbooking/internal/httpx"
)

type Handlers struct {
	User      *UserHandler
	AdminAuth *AdminAuthHandler
	Admin     *AdminHandler
	Schedule  *ScheduleHandler
	Maestri   *MaestroHandler
}

// RouterOptions carries the middleware that differs per deployment.
type RouterOptions struct {
	Tokens    auth.TokenValidator
	RateLimit httpx.Middleware
}

func NewRouter(h Handlers, opts RouterOptions) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Public endpoints
	public := r.PathPrefix("/api").Subrouter()
	if opts.RateLimit != nil {
		public.Use(mux.MiddlewareFunc(opts.RateLimit))
	}
	public.Handle("/availability", noStore(h.User.GetAvailability)).Methods(http.MethodGet)
	public.HandleFunc("/bookings", h.User.CreateBooking).Methods(http.MethodPost)
	public.Handle("/bookings/cancel/{token}", noStore(h.User.CancelBooking)).Methods(http.MethodGet)
	public.HandleFunc("/admin/login", h.AdminAuth.Login).Methods(http.MethodPost)
	public.HandleFunc("/admin/logout", h.AdminAuth.Logout).Methods(http.MethodPost)

	// Admin endpoints (protected). Registered on the root router so the
	// public rate limit does not apply.
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware(opts.Tokens))
	admin.HandleFunc("/bookings", h.Admin.ListBookings).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{id}", h.Admin.PatchBooking).Methods(http.MethodPatch)
	admin.Handle("/export-csv", noStore(h.Admin.ExportCSV)).Methods(http.MethodGet)

	admin.Handle("/blackouts", noStore(h.Schedule.ListBlackouts)).Methods(http.MethodGet)
	admin.HandleFunc("/blackouts", h.Schedule.CreateBlackout).Methods(http.MethodPost)
	admin.HandleFunc("/blackouts/{id}", h.Schedule.UpdateBlackout).Methods(http.MethodPut)
	admin.HandleFunc("/blackouts/{id}", h.Schedule.DeleteBlackout).Methods(http.MethodDelete)

	admin.Handle("/weekly-hours", noStore(h.Schedule.ListWeeklyHours)).Methods(http.MethodGet)
	admin.HandleFunc("/weekly-hours", h.Schedule.SaveWeeklyHours).Methods(http.MethodPost)
	admin.HandleFunc("/weekly-hours/{id}", h.Schedule.UpdateWeeklyHours).Methods(http.MethodPut)
	admin.HandleFunc("/weekly-hours/{id}", h.Schedule.DeleteWeeklyHours).Methods(http.MethodDelete)

	admin.Handle("/maestri", noStore(h.Maestri.Overview)).Methods(http.MethodGet)
	admin.Handle("/maestri", noStore(h.Maestri.Sync)).Methods(http.MethodPost)
	admin.HandleFunc("/maestri/payments/{id}", h.Maestri.PaymentAction).Methods(http.MethodPost)
	admin.Handle("/maestri/bookings/{bookingId}", noStore(h.Maestri.BookingPayment)).Methods(http.MethodGet)
	admin.HandleFunc("/maestri/bookings/{bookingId}", h.Maestri.BookingAction).Methods(http.MethodPost)
	admin.Handle("/maestri/{email}", noStore(h.Maestri.Detail)).Methods(http.MethodGet)

	return r
}

func noStore(f http.HandlerFunc) http.Handler {
	return httpx.NoStore(f)
}
