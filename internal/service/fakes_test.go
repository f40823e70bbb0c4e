package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"simbooking/internal/db"
	"simbooking/internal/repository"
	"simbooking/internal/utils"
)

var rome = mustLoad("Europe/Rome")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func testID(n int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
}

type fakeBookingRepo struct {
	mu        sync.Mutex
	seq       int
	bookings  map[string]*db.BookingWithCustomer
	customers map[string]*db.Customer
	err       error
	created   int
	// staleReads hides stored bookings from ListConfirmedForDate, as a read
	// that raced a concurrent insert would.
	staleReads bool
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings:  map[string]*db.BookingWithCustomer{},
		customers: map[string]*db.Customer{},
	}
}

func (r *fakeBookingRepo) nextID() string {
	r.seq++
	return testID(r.seq)
}

// add stores a confirmed booking starting at date/hhmm local time.
func (r *fakeBookingRepo) add(date, hhmm string, minutes int, activity string) *db.BookingWithCustomer {
	r.mu.Lock()
	defer r.mu.Unlock()
	start, err := utils.CombineDateAndTime(date, hhmm, rome)
	if err != nil {
		panic(err)
	}
	b := &db.BookingWithCustomer{
		Booking: db.Booking{
			ID:              r.nextID(),
			ResourceID:      "trackman-io",
			StartsAt:        start,
			EndsAt:          start.Add(time.Duration(minutes) * time.Minute),
			DurationMinutes: minutes,
			ActivityType:    activity,
			Players:         2,
			Status:          db.StatusConfirmed,
		},
		Customer: db.Customer{ID: "c", FirstName: "Anna", LastName: "Neri", Email: "anna@example.com"},
	}
	project(&b.Booking)
	r.bookings[b.ID] = b
	return b
}

func project(b *db.Booking) {
	b.Date, b.StartTime = utils.ToLocal(b.StartsAt, rome)
	_, b.EndTime = utils.ToLocal(b.EndsAt, rome)
}

func (r *fakeBookingRepo) ListConfirmedForDate(_ context.Context, resourceID, date string) ([]db.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []db.Booking
	if r.staleReads {
		return out, nil
	}
	for _, b := range r.bookings {
		if b.ResourceID == resourceID && b.Date == date && b.Status == db.StatusConfirmed {
			out = append(out, b.Booking)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) UpsertCustomer(_ context.Context, in repository.CustomerInput) (*db.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.customers[in.Email]; ok {
		c.FirstName, c.LastName, c.Phone, c.UserType = in.FirstName, in.LastName, in.Phone, in.UserType
		return c, nil
	}
	c := &db.Customer{ID: r.nextID(), FirstName: in.FirstName, LastName: in.LastName, Email: in.Email, Phone: in.Phone, UserType: in.UserType}
	r.customers[in.Email] = c
	return c, nil
}

// CreateBooking mirrors the exclusion constraint on confirmed bookings.
func (r *fakeBookingRepo) CreateBooking(_ context.Context, in repository.NewBooking) (*db.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ResourceID == in.ResourceID && b.Status == db.StatusConfirmed &&
			b.StartsAt.Before(in.EndsAt) && in.StartsAt.Before(b.EndsAt) {
			return nil, repository.ErrOverlap
		}
	}
	b := &db.BookingWithCustomer{Booking: db.Booking{
		ID:              r.nextID(),
		CustomerID:      in.CustomerID,
		ResourceID:      in.ResourceID,
		StartsAt:        in.StartsAt,
		EndsAt:          in.EndsAt,
		DurationMinutes: in.DurationMinutes,
		ActivityType:    in.ActivityType,
		Players:         in.Players,
		Notes:           in.Notes,
		Status:          db.StatusConfirmed,
	}}
	for _, c := range r.customers {
		if c.ID == in.CustomerID {
			b.Customer = *c
		}
	}
	project(&b.Booking)
	r.bookings[b.ID] = b
	r.created++
	copied := b.Booking
	return &copied, nil
}

func (r *fakeBookingRepo) GetBookingByID(_ context.Context, id string) (*db.BookingWithCustomer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) CancelBooking(_ context.Context, id string) (*db.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	b.Status = db.StatusCancelled
	copied := b.Booking
	return &copied, nil
}

func (r *fakeBookingRepo) ListBookings(_ context.Context, limit int) ([]db.BookingWithCustomer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]db.BookingWithCustomer, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.After(out[j].StartsAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeBookingRepo) UpdateAdminNotes(_ context.Context, id, notes string) (*db.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	b.AdminNotes = notes
	copied := b.Booking
	return &copied, nil
}

type fakeBlackoutRepo struct {
	items []db.BlackoutPeriod
	err   error
}

func (r *fakeBlackoutRepo) List(_ context.Context, resourceID string) ([]db.BlackoutPeriod, error) {
	return r.ListOverlapping(context.Background(), resourceID, "0000-01-01", "9999-12-31")
}

func (r *fakeBlackoutRepo) ListOverlapping(_ context.Context, resourceID, from, to string) ([]db.BlackoutPeriod, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []db.BlackoutPeriod
	for _, b := range r.items {
		if b.ResourceID == resourceID && b.StartDate <= to && b.EndDate >= from {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBlackoutRepo) Create(_ context.Context, b db.BlackoutPeriod) (*db.BlackoutPeriod, error) {
	b.ID = testID(100 + len(r.items))
	r.items = append(r.items, b)
	return &b, nil
}

func (r *fakeBlackoutRepo) Update(_ context.Context, b db.BlackoutPeriod) (*db.BlackoutPeriod, error) {
	for i := range r.items {
		if r.items[i].ID == b.ID {
			r.items[i] = b
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeBlackoutRepo) Delete(_ context.Context, id string) error {
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeHoursRepo struct {
	items []db.WeeklyHours
	err   error
}

func (r *fakeHoursRepo) List(_ context.Context, resourceID string) ([]db.WeeklyHours, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []db.WeeklyHours
	for _, h := range r.items {
		if h.ResourceID == resourceID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *fakeHoursRepo) Upsert(_ context.Context, h db.WeeklyHours) (*db.WeeklyHours, error) {
	for i := range r.items {
		if r.items[i].ResourceID == h.ResourceID && r.items[i].DayOfWeek == h.DayOfWeek {
			h.ID = r.items[i].ID
			r.items[i] = h
			return &h, nil
		}
	}
	h.ID = testID(200 + len(r.items))
	r.items = append(r.items, h)
	return &h, nil
}

func (r *fakeHoursRepo) Update(_ context.Context, h db.WeeklyHours) (*db.WeeklyHours, error) {
	for i := range r.items {
		if r.items[i].ID == h.ID {
			h.ResourceID, h.DayOfWeek = r.items[i].ResourceID, r.items[i].DayOfWeek
			r.items[i] = h
			return &h, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeHoursRepo) Delete(_ context.Context, id string) error {
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeMaestroRepo struct {
	lessons  []db.LessonBooking
	payments []db.MaestroPayment
	// cancelled holds booking ids whose bookings were cancelled.
	cancelled map[string]bool
	now       time.Time
}

func (r *fakeMaestroRepo) ListLessonBookingsWithoutPayment(context.Context) ([]db.LessonBooking, error) {
	var out []db.LessonBooking
	for _, l := range r.lessons {
		if r.cancelled[l.BookingID] {
			continue
		}
		if _, err := r.GetByBookingID(context.Background(), l.BookingID); err == nil {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *fakeMaestroRepo) InsertPayments(_ context.Context, payments []db.MaestroPayment) (int, error) {
	for _, p := range payments {
		p.ID = testID(300 + len(r.payments))
		r.payments = append(r.payments, p)
	}
	return len(payments), nil
}

func (r *fakeMaestroRepo) DeleteUnpaidForCancelled(context.Context) (int, error) {
	kept := r.payments[:0]
	removed := 0
	for _, p := range r.payments {
		if r.cancelled[p.BookingID] && !p.Paid {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	r.payments = kept
	return removed, nil
}

func (r *fakeMaestroRepo) ListPayments(_ context.Context, email string) ([]db.MaestroPaymentWithBooking, error) {
	var out []db.MaestroPaymentWithBooking
	for _, p := range r.payments {
		if strings.EqualFold(p.MaestroEmail, email) {
			out = append(out, db.MaestroPaymentWithBooking{MaestroPayment: p, Booking: db.LessonInfo{ID: p.BookingID}})
		}
	}
	return out, nil
}

func (r *fakeMaestroRepo) ListAllPayments(context.Context) ([]db.MaestroPayment, error) {
	return append([]db.MaestroPayment(nil), r.payments...), nil
}

func (r *fakeMaestroRepo) find(match func(db.MaestroPayment) bool) (*db.MaestroPayment, error) {
	for i := range r.payments {
		if match(r.payments[i]) {
			return &r.payments[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeMaestroRepo) GetByID(_ context.Context, id string) (*db.MaestroPayment, error) {
	return r.find(func(p db.MaestroPayment) bool { return p.ID == id })
}

func (r *fakeMaestroRepo) GetByBookingID(_ context.Context, bookingID string) (*db.MaestroPayment, error) {
	return r.find(func(p db.MaestroPayment) bool { return p.BookingID == bookingID })
}

func (r *fakeMaestroRepo) SetPaid(_ context.Context, id string, paid bool) (*db.MaestroPayment, error) {
	p, err := r.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	p.Paid = paid
	p.PaidAt = nil
	if paid {
		at := r.now
		p.PaidAt = &at
		p.NotDue = false
	}
	copied := *p
	return &copied, nil
}

func (r *fakeMaestroRepo) SetNotDue(_ context.Context, id string) (*db.MaestroPayment, error) {
	p, err := r.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	p.NotDue, p.Paid, p.PaidAt = true, false, nil
	copied := *p
	return &copied, nil
}

type recordingNotifier struct {
	mu         sync.Mutex
	confirmed  []string
	cancelURLs []string
	cancelled  []string
}

func (n *recordingNotifier) SendBookingConfirmation(b db.Booking, _ db.Customer, cancelURL string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, b.ID)
	n.cancelURLs = append(n.cancelURLs, cancelURL)
}

func (n *recordingNotifier) SendBookingCancelled(b db.Booking, _ db.Customer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, b.ID)
}

var testLogger = zap.NewNop()
