package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"simbooking/internal/auth"
	"simbooking/internal/db"
	"simbooking/internal/entities"
	apperrors "simbooking/internal/errors"
	"simbooking/internal/service"
)

const bookingID = "00000000-0000-4000-8000-000000000001"

var rome, _ = time.LoadLocation("Europe/Rome")

type stubAvailability struct {
	calls []string
}

func (s *stubAvailability) GetAvailability(_ context.Context, date, resourceID string, d int) entities.AvailabilityResponse {
	s.calls = append(s.calls, date+"|"+resourceID)
	resp := entities.EmptyAvailability(date, resourceID)
	return resp
}

type stubBookings struct {
	createErr error
	cancelErr error
	patched   *entities.AdminBookingPatch
}

func (s *stubBookings) CreateBooking(_ context.Context, req entities.CreateBookingRequest) (*entities.CreateBookingResponse, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &entities.CreateBookingResponse{
		Booking:  db.Booking{ID: bookingID, Date: req.Date, StartTime: req.StartTime, Status: db.StatusConfirmed},
		Customer: db.Customer{Email: req.Email},
	}, nil
}

func (s *stubBookings) CancelByToken(_ context.Context, token string) (*db.Booking, error) {
	if s.cancelErr != nil {
		return nil, s.cancelErr
	}
	return &db.Booking{ID: bookingID, Status: db.StatusCancelled}, nil
}

func (s *stubBookings) ListBookings(_ context.Context, limit int) (*entities.BookingsList, error) {
	return &entities.BookingsList{Total: 0, Limit: limit, Bookings: []db.BookingWithCustomer{}}, nil
}

func (s *stubBookings) PatchBooking(_ context.Context, id string, patch entities.AdminBookingPatch) (*db.Booking, error) {
	s.patched = &patch
	return &db.Booking{ID: id, Status: db.StatusCancelled}, nil
}

type stubExporter struct{ err error }

func (s stubExporter) WriteCSV(_ context.Context, w io.Writer) error {
	if s.err != nil {
		return s.err
	}
	_, err := io.WriteString(w, "ID,Data\n")
	return err
}

type stubBlackouts struct{}

func (stubBlackouts) List(context.Context, string) ([]db.BlackoutPeriod, error) {
	return []db.BlackoutPeriod{{ID: "b1"}}, nil
}

func (stubBlackouts) Create(_ context.Context, req entities.BlackoutRequest) (*db.BlackoutPeriod, error) {
	if req.StartDate == "" {
		return nil, apperrors.ErrBadRequest(apperrors.CodeInvalidInput, "startDate e endDate sono obbligatori")
	}
	return &db.BlackoutPeriod{ID: "b2", StartDate: req.StartDate, EndDate: req.EndDate}, nil
}

func (stubBlackouts) Update(_ context.Context, id string, _ entities.BlackoutRequest) (*db.BlackoutPeriod, error) {
	return &db.BlackoutPeriod{ID: id}, nil
}

func (stubBlackouts) Delete(context.Context, string) error { return nil }

type stubHours struct{}

func (stubHours) List(context.Context, string) ([]db.WeeklyHours, error) { return nil, nil }

func (stubHours) Save(_ context.Context, req entities.WeeklyHoursRequest) (*db.WeeklyHours, error) {
	return &db.WeeklyHours{ID: "h1", DayOfWeek: *req.DayOfWeek}, nil
}

func (stubHours) Update(_ context.Context, id string, _ entities.WeeklyHoursRequest) (*db.WeeklyHours, error) {
	return &db.WeeklyHours{ID: id}, nil
}

func (stubHours) Delete(context.Context, string) error {
	return apperrors.ErrNotFound("Orario non trovato")
}

type stubMaestri struct {
	synced  bool
	actions []string
}

func (s *stubMaestri) Sync(context.Context) (entities.SyncResult, error) {
	s.synced = true
	return entities.SyncResult{Inserted: 2}, nil
}

func (s *stubMaestri) Overview(_ context.Context, from, to string) (*entities.MaestriOverview, error) {
	return &entities.MaestriOverview{
		Maestri:   []entities.MaestroSummary{{MaestroEmail: "luca@golf.it"}},
		TotalOwed: decimal.RequireFromString("12.5"),
		TotalPaid: decimal.Zero,
	}, nil
}

func (s *stubMaestri) Detail(_ context.Context, email string) (*entities.MaestroDetail, error) {
	return &entities.MaestroDetail{Summary: entities.MaestroSummary{MaestroEmail: email}}, nil
}

func (s *stubMaestri) ApplyPaymentAction(_ context.Context, id, action string) (*db.MaestroPayment, error) {
	s.actions = append(s.actions, "payment:"+id+":"+action)
	return &db.MaestroPayment{ID: id, Paid: action == "paid"}, nil
}

func (s *stubMaestri) PaymentForBooking(_ context.Context, id string) (*db.MaestroPayment, error) {
	return &db.MaestroPayment{BookingID: id}, nil
}

func (s *stubMaestri) ApplyBookingAction(_ context.Context, id, action string) (*db.MaestroPayment, error) {
	s.actions = append(s.actions, "booking:"+id+":"+action)
	return &db.MaestroPayment{BookingID: id}, nil
}

type stubAuth struct{}

func (stubAuth) Login(_ context.Context, email, password string) (string, error) {
	if email == "admin@example.com" && password == "secret" {
		return "good", nil
	}
	return "", apperrors.ErrUnauthorized("Credenziali non valide")
}

func (stubAuth) ParseToken(token string) (*service.AdminClaims, error) {
	if token != "good" {
		return nil, apperrors.ErrUnauthorized("Non autorizzato")
	}
	return &service.AdminClaims{Email: "admin@example.com"}, nil
}

func (stubAuth) CreateAdmin(context.Context, string, string) error { return nil }

type testServer struct {
	router       http.Handler
	availability *stubAvailability
	bookings     *stubBookings
	maestri      *stubMaestri
	exporter     *stubExporter
}

func newTestServer() *testServer {
	ts := &testServer{
		availability: &stubAvailability{},
		bookings:     &stubBookings{},
		maestri:      &stubMaestri{},
		exporter:     &stubExporter{},
	}
	user := NewUserHandler(ts.availability, ts.bookings, rome)
	user.now = func() time.Time { return time.Date(2030, 6, 3, 23, 30, 0, 0, rome) }
	admin := NewAdminHandler(ts.bookings, ts.exporter, zap.NewNop())
	admin.now = func() time.Time { return time.Date(2030, 6, 3, 12, 0, 0, 0, time.UTC) }

	ts.router = NewRouter(Handlers{
		User:      user,
		AdminAuth: NewAdminAuthHandler(stubAuth{}, true),
		Admin:     admin,
		Schedule:  NewScheduleHandler(stubBlackouts{}, stubHours{}),
		Maestri:   NewMaestroHandler(ts.maestri),
	}, RouterOptions{Tokens: stubAuth{}})
	return ts
}

func (ts *testServer) do(method, target, body string, admin bool) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if admin {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "good"})
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestAvailabilityValidation(t *testing.T) {
	tests := []struct {
		name  string
		query string
		code  string
	}{
		{"missing date", "?durationMinutes=60", apperrors.CodeInvalidInput},
		{"missing duration", "?date=2030-06-04", apperrors.CodeInvalidInput},
		{"zero duration", "?date=2030-06-04&durationMinutes=0", apperrors.CodeInvalidDuration},
		{"bad duration", "?date=2030-06-04&durationMinutes=abc", apperrors.CodeInvalidDuration},
		{"bad date", "?date=04-06-2030&durationMinutes=60", apperrors.CodeInvalidInput},
		{"past date", "?date=2030-06-02&durationMinutes=60", apperrors.CodePastDate},
		{"unknown resource", "?date=2030-06-04&durationMinutes=60&resourceId=bay-2", apperrors.CodeInvalidInput},
	}
	ts := newTestServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(http.MethodGet, "/api/availability"+tt.query, "", false)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
	assert.Empty(t, ts.availability.calls)
}

func TestAvailability(t *testing.T) {
	ts := newTestServer()
	rec := ts.do(http.MethodGet, "/api/availability?date=2030-06-03&durationMinutes=60", "", false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
	assert.Equal(t, []string{"2030-06-03|trackman-io"}, ts.availability.calls)
	assert.JSONEq(t, `{"date":"2030-06-03","resourceId":"trackman-io","availableSlots":[],"occupiedSlots":[],
		"allOccupiedSlots":[],"openingHours":null,"isClosed":false,"hasFullDayBlackout":false}`, rec.Body.String())
}

func TestCreateBookingHandler(t *testing.T) {
	ts := newTestServer()
	rec := ts.do(http.MethodPost, "/api/bookings", `{"date":"2030-06-04","startTime":"10:00","email":"a@b.it"}`, false)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"startTime":"10:00"`)

	rec = ts.do(http.MethodPost, "/api/bookings", `{"date":`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeInvalidInput, errorCode(t, rec))

	ts.bookings.createErr = apperrors.ErrConflict(apperrors.CodeOverlap, "slot occupato")
	rec = ts.do(http.MethodPost, "/api/bookings", `{}`, false)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apperrors.CodeOverlap, errorCode(t, rec))

	ts.bookings.createErr = errors.New("unexpected")
	rec = ts.do(http.MethodPost, "/api/bookings", `{}`, false)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCancelBookingHandler(t *testing.T) {
	ts := newTestServer()
	rec := ts.do(http.MethodGet, "/api/bookings/cancel/tok", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")

	ts.bookings.cancelErr = apperrors.ErrBadRequest(apperrors.CodeCancellationExpired, "troppo tardi")
	rec = ts.do(http.MethodGet, "/api/bookings/cancel/tok", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeCancellationExpired, errorCode(t, rec))
}

func TestAdminLoginAndLogout(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/admin/login", `{"username":"Admin@example.com","password":"secret"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Equal(t, "good", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	rec = ts.do(http.MethodPost, "/api/admin/login", `{"email":"admin@example.com","password":"nope"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodPost, "/api/admin/logout", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, "", rec.Result().Cookies()[0].Value)
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	ts := newTestServer()
	for _, target := range []string{"/api/admin/bookings", "/api/admin/export-csv", "/api/admin/blackouts", "/api/admin/maestri"} {
		rec := ts.do(http.MethodGet, target, "", false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
		assert.Equal(t, apperrors.CodeUnauthorized, errorCode(t, rec))
	}
}

func TestAdminBookings(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/api/admin/bookings?limit=10", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "private, max-age=10", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), `"limit":10`)

	rec = ts.do(http.MethodGet, "/api/admin/bookings?limit=-1", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPatch, "/api/admin/bookings/"+bookingID, `{"status":"cancelled"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, ts.bookings.patched)
	assert.Equal(t, "cancelled", *ts.bookings.patched.Status)

	rec = ts.do(http.MethodPatch, "/api/admin/bookings/abc", `{"status":"cancelled"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeInvalidID, errorCode(t, rec))
}

func TestExportCSVHandler(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/api/admin/export-csv", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="prenotazioni-2030-06-03.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "ID,Data\n", rec.Body.String())

	ts.exporter.err = apperrors.ErrDatabase()
	rec = ts.do(http.MethodGet, "/api/admin/export-csv", "", true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperrors.CodeDB, errorCode(t, rec))
}

func TestScheduleRoutes(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/api/admin/blackouts", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"blackouts"`)

	rec = ts.do(http.MethodPost, "/api/admin/blackouts", `{"startDate":"2030-08-10","endDate":"2030-08-11"}`, true)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(http.MethodPost, "/api/admin/blackouts", `{}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/api/admin/weekly-hours", `{"dayOfWeek":1,"openTime":"10:00","closeTime":"20:00"}`, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"dayOfWeek":1`)

	rec = ts.do(http.MethodDelete, "/api/admin/weekly-hours/h9", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMaestriRoutes(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/api/admin/maestri?startDate=2030-06-01", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"summaries"`)
	assert.Contains(t, rec.Body.String(), `"totalOwed":"12.5"`)

	rec = ts.do(http.MethodPost, "/api/admin/maestri", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ts.maestri.synced)

	rec = ts.do(http.MethodGet, "/api/admin/maestri/luca@golf.it", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "luca@golf.it")

	rec = ts.do(http.MethodPost, "/api/admin/maestri/payments/p1", `{"action":"paid"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/admin/maestri/bookings/"+bookingID, "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")

	rec = ts.do(http.MethodPost, "/api/admin/maestri/bookings/"+bookingID, `{"action":"not_due"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"payment:p1:paid", "booking:" + bookingID + ":not_due"}, ts.maestri.actions)
}
