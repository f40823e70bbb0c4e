package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"simbooking/internal/db"
	"simbooking/internal/utils"
)

type NewBooking struct {
	ResourceID      string
	CustomerID      string
	StartsAt        time.Time
	EndsAt          time.Time
	DurationMinutes int
	ActivityType    string
	Players         int
	Notes           string
}

type CustomerInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	UserType  string
}

type BookingRepository interface {
	// ListConfirmedForDate returns the confirmed bookings of resourceID
	// starting on the resource-local civil date.
	ListConfirmedForDate(ctx context.Context, resourceID, date string) ([]db.Booking, error)
	UpsertCustomer(ctx context.Context, in CustomerInput) (*db.Customer, error)
	CreateBooking(ctx context.Context, in NewBooking) (*db.Booking, error)
	GetBookingByID(ctx context.Context, id string) (*db.BookingWithCustomer, error)
	CancelBooking(ctx context.Context, id string) (*db.Booking, error)
	ListBookings(ctx context.Context, limit int) ([]db.BookingWithCustomer, error)
	UpdateAdminNotes(ctx context.Context, id, notes string) (*db.Booking, error)
}

type bookingRepository struct {
	db  *sql.DB
	loc *time.Location
}

func NewBookingRepository(conn *sql.DB, loc *time.Location) BookingRepository {
	return &bookingRepository{db: conn, loc: loc}
}

const bookingColumns = `b.id, b.customer_id, b.resource_id, b.starts_at, b.ends_at, b.duration_minutes,
	b.activity_type, b.players, b.status, b.notes, b.admin_notes, b.created_at, b.updated_at`

const customerColumns = `c.id, c.first_name, c.last_name, c.email, c.phone, c.user_type, c.created_at, c.updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *bookingRepository) scanBooking(row scanner, extra ...interface{}) (*db.Booking, error) {
	var b db.Booking
	var notes, adminNotes sql.NullString
	dest := []interface{}{
		&b.ID, &b.CustomerID, &b.ResourceID, &b.StartsAt, &b.EndsAt, &b.DurationMinutes,
		&b.ActivityType, &b.Players, &b.Status, &notes, &adminNotes, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	b.Notes = notes.String
	b.AdminNotes = adminNotes.String
	r.project(&b)
	return &b, nil
}

// project fills the resource-local date and HH:mm fields.
func (r *bookingRepository) project(b *db.Booking) {
	b.Date, b.StartTime = utils.ToLocal(b.StartsAt, r.loc)
	_, b.EndTime = utils.ToLocal(b.EndsAt, r.loc)
	b.StartsAt = b.StartsAt.In(r.loc)
	b.EndsAt = b.EndsAt.In(r.loc)
}

func (r *bookingRepository) ListConfirmedForDate(ctx context.Context, resourceID, date string) ([]db.Booking, error) {
	dayStart, err := utils.CombineDateAndTime(date, "00:00", r.loc)
	if err != nil {
		return nil, err
	}
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `SELECT ` + bookingColumns + `
		FROM bookings b
		WHERE b.resource_id = $1 AND b.status = 'confirmed'
		  AND b.starts_at >= $2 AND b.starts_at < $3
		ORDER BY b.starts_at`
	rows, err := r.db.QueryContext(ctx, query, resourceID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings for %s: %w", date, err)
	}
	defer rows.Close()

	bookings := []db.Booking{}
	for rows.Next() {
		b, err := r.scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) UpsertCustomer(ctx context.Context, in CustomerInput) (*db.Customer, error) {
	query := `
		INSERT INTO customers (first_name, last_name, email, phone, user_type)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			phone = EXCLUDED.phone,
			user_type = EXCLUDED.user_type,
			updated_at = NOW()
		RETURNING id, first_name, last_name, email, phone, user_type, created_at, updated_at`

	var c db.Customer
	var phone sql.NullString
	err := r.db.QueryRowContext(ctx, query,
		in.FirstName, in.LastName, strings.ToLower(strings.TrimSpace(in.Email)), nullString(in.Phone), in.UserType,
	).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &phone, &c.UserType, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error upserting customer: %w", err)
	}
	c.Phone = phone.String
	return &c, nil
}

// CreateBooking relies on the exclusion constraint of the bookings table to
// reject overlapping confirmed bookings.
func (r *bookingRepository) CreateBooking(ctx context.Context, in NewBooking) (*db.Booking, error) {
	query := `
		INSERT INTO bookings AS b
		(customer_id, resource_id, starts_at, ends_at, duration_minutes, activity_type, players, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'confirmed', $8)
		RETURNING ` + bookingColumns

	row := r.db.QueryRowContext(ctx, query,
		in.CustomerID, in.ResourceID, in.StartsAt.UTC(), in.EndsAt.UTC(),
		in.DurationMinutes, in.ActivityType, in.Players, nullString(in.Notes),
	)
	b, err := r.scanBooking(row)
	if err != nil {
		if IsConflict(err) {
			return nil, ErrOverlap
		}
		return nil, fmt.Errorf("error creating booking: %w", err)
	}
	return b, nil
}

func (r *bookingRepository) GetBookingByID(ctx context.Context, id string) (*db.BookingWithCustomer, error) {
	query := `SELECT ` + bookingColumns + `, ` + customerColumns + `
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		WHERE b.id = $1`

	var c db.Customer
	var phone sql.NullString
	b, err := r.scanBooking(r.db.QueryRowContext(ctx, query, id),
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &phone, &c.UserType, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying booking %s: %w", id, err)
	}
	c.Phone = phone.String
	return withCustomer(b, c), nil
}

func withCustomer(b *db.Booking, c db.Customer) *db.BookingWithCustomer {
	b.CustomerFirstName = c.FirstName
	b.CustomerLastName = c.LastName
	return &db.BookingWithCustomer{Booking: *b, Customer: c}
}

func (r *bookingRepository) CancelBooking(ctx context.Context, id string) (*db.Booking, error) {
	query := `UPDATE bookings AS b SET status = 'cancelled', updated_at = NOW()
		WHERE b.id = $1
		RETURNING ` + bookingColumns
	b, err := r.scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error cancelling booking %s: %w", id, err)
	}
	return b, nil
}

func (r *bookingRepository) ListBookings(ctx context.Context, limit int) ([]db.BookingWithCustomer, error) {
	if limit <= 0 {
		limit = 1000
	}
	query := `SELECT ` + bookingColumns + `, ` + customerColumns + `
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		ORDER BY b.starts_at DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer rows.Close()

	list := []db.BookingWithCustomer{}
	for rows.Next() {
		var c db.Customer
		var phone sql.NullString
		b, err := r.scanBooking(rows,
			&c.ID, &c.FirstName, &c.LastName, &c.Email, &phone, &c.UserType, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		c.Phone = phone.String
		list = append(list, *withCustomer(b, c))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating bookings: %w", err)
	}
	return list, nil
}

func (r *bookingRepository) UpdateAdminNotes(ctx context.Context, id, notes string) (*db.Booking, error) {
	query := `UPDATE bookings AS b SET admin_notes = $2, updated_at = NOW()
		WHERE b.id = $1
		RETURNING ` + bookingColumns
	b, err := r.scanBooking(r.db.QueryRowContext(ctx, query, id, nullString(notes)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error updating admin notes of %s: %w", id, err)
	}
	return b, nil
}
