package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"simbooking/internal/db"
	"simbooking/internal/scheduling"
	"simbooking/internal/utils"
)

type MaestroRepository interface {
	// ListLessonBookingsWithoutPayment returns confirmed instructor lessons
	// that have no payment row yet.
	ListLessonBookingsWithoutPayment(ctx context.Context) ([]db.LessonBooking, error)
	InsertPayments(ctx context.Context, payments []db.MaestroPayment) (int, error)
	// DeleteUnpaidForCancelled drops unpaid rows whose booking was cancelled.
	DeleteUnpaidForCancelled(ctx context.Context) (int, error)
	ListPayments(ctx context.Context, email string) ([]db.MaestroPaymentWithBooking, error)
	ListAllPayments(ctx context.Context) ([]db.MaestroPayment, error)
	GetByID(ctx context.Context, id string) (*db.MaestroPayment, error)
	GetByBookingID(ctx context.Context, bookingID string) (*db.MaestroPayment, error)
	SetPaid(ctx context.Context, id string, paid bool) (*db.MaestroPayment, error)
	SetNotDue(ctx context.Context, id string) (*db.MaestroPayment, error)
}

type maestroRepository struct {
	db  *sql.DB
	loc *time.Location
}

func NewMaestroRepository(conn *sql.DB, loc *time.Location) MaestroRepository {
	return &maestroRepository{db: conn, loc: loc}
}

const paymentColumns = `mp.id, mp.booking_id, mp.maestro_name, mp.maestro_email, mp.amount, mp.paid, mp.paid_at, mp.not_due, mp.created_at, mp.updated_at`

func scanPayment(row scanner, extra ...interface{}) (*db.MaestroPayment, error) {
	var p db.MaestroPayment
	var paidAt sql.NullTime
	dest := []interface{}{
		&p.ID, &p.BookingID, &p.MaestroName, &p.MaestroEmail, &p.Amount, &p.Paid, &paidAt, &p.NotDue, &p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if paidAt.Valid {
		p.PaidAt = &paidAt.Time
	}
	return &p, nil
}

func (r *maestroRepository) ListLessonBookingsWithoutPayment(ctx context.Context) ([]db.LessonBooking, error) {
	query := `
		SELECT b.id, b.duration_minutes, c.first_name, c.last_name, c.email
		FROM bookings b
		JOIN customers c ON c.id = b.customer_id
		LEFT JOIN maestro_payments mp ON mp.booking_id = b.id
		WHERE b.status = 'confirmed' AND b.activity_type = $1 AND mp.id IS NULL
		ORDER BY b.starts_at`
	rows, err := r.db.QueryContext(ctx, query, scheduling.InstructorLessonActivity)
	if err != nil {
		return nil, fmt.Errorf("error querying lessons without payment: %w", err)
	}
	defer rows.Close()

	var lessons []db.LessonBooking
	for rows.Next() {
		var l db.LessonBooking
		if err := rows.Scan(&l.BookingID, &l.DurationMinutes, &l.FirstName, &l.LastName, &l.Email); err != nil {
			return nil, fmt.Errorf("error scanning lesson: %w", err)
		}
		lessons = append(lessons, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating lessons: %w", err)
	}
	return lessons, nil
}

func (r *maestroRepository) InsertPayments(ctx context.Context, payments []db.MaestroPayment) (int, error) {
	if len(payments) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO maestro_payments (booking_id, maestro_name, maestro_email, amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (booking_id) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("error preparing payment insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, p := range payments {
		res, err := stmt.ExecContext(ctx, p.BookingID, p.MaestroName, p.MaestroEmail, p.Amount)
		if err != nil {
			return 0, fmt.Errorf("error inserting payment for booking %s: %w", p.BookingID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing payments: %w", err)
	}
	return inserted, nil
}

func (r *maestroRepository) DeleteUnpaidForCancelled(ctx context.Context) (int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT mp.id FROM maestro_payments mp
		JOIN bookings b ON b.id = mp.booking_id
		WHERE b.status = 'cancelled' AND mp.paid = FALSE`)
	if err != nil {
		return 0, fmt.Errorf("error querying payments of cancelled lessons: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("error scanning payment id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error after iterating payment ids: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM maestro_payments WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("error deleting payments: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return len(ids), nil
	}
	return int(n), nil
}

func (r *maestroRepository) ListPayments(ctx context.Context, email string) ([]db.MaestroPaymentWithBooking, error) {
	query := `SELECT ` + paymentColumns + `, b.id, b.starts_at, b.ends_at, b.admin_notes
		FROM maestro_payments mp
		JOIN bookings b ON b.id = mp.booking_id
		WHERE lower(mp.maestro_email) = lower($1)
		ORDER BY b.starts_at DESC`
	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("error querying payments of %s: %w", email, err)
	}
	defer rows.Close()

	list := []db.MaestroPaymentWithBooking{}
	for rows.Next() {
		var lesson db.LessonInfo
		var startsAt, endsAt time.Time
		var notes sql.NullString
		p, err := scanPayment(rows, &lesson.ID, &startsAt, &endsAt, &notes)
		if err != nil {
			return nil, fmt.Errorf("error scanning payment: %w", err)
		}
		lesson.Date, lesson.StartTime = utils.ToLocal(startsAt, r.loc)
		_, lesson.EndTime = utils.ToLocal(endsAt, r.loc)
		lesson.AdminNotes = notes.String
		list = append(list, db.MaestroPaymentWithBooking{MaestroPayment: *p, Booking: lesson})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating payments: %w", err)
	}
	return list, nil
}

func (r *maestroRepository) ListAllPayments(ctx context.Context) ([]db.MaestroPayment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM maestro_payments mp ORDER BY mp.created_at`)
	if err != nil {
		return nil, fmt.Errorf("error querying payments: %w", err)
	}
	defer rows.Close()

	list := []db.MaestroPayment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning payment: %w", err)
		}
		list = append(list, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating payments: %w", err)
	}
	return list, nil
}

func (r *maestroRepository) getOne(ctx context.Context, where string, arg string) (*db.MaestroPayment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM maestro_payments mp WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying payment: %w", err)
	}
	return p, nil
}

func (r *maestroRepository) GetByID(ctx context.Context, id string) (*db.MaestroPayment, error) {
	return r.getOne(ctx, "mp.id = $1", id)
}

func (r *maestroRepository) GetByBookingID(ctx context.Context, bookingID string) (*db.MaestroPayment, error) {
	return r.getOne(ctx, "mp.booking_id = $1", bookingID)
}

func (r *maestroRepository) update(ctx context.Context, set, id string) (*db.MaestroPayment, error) {
	query := `UPDATE maestro_payments AS mp SET ` + set + `, updated_at = NOW()
		WHERE mp.id = $1
		RETURNING ` + paymentColumns
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error updating payment %s: %w", id, err)
	}
	return p, nil
}

func (r *maestroRepository) SetPaid(ctx context.Context, id string, paid bool) (*db.MaestroPayment, error) {
	if paid {
		return r.update(ctx, "paid = TRUE, paid_at = NOW(), not_due = FALSE", id)
	}
	return r.update(ctx, "paid = FALSE, paid_at = NULL", id)
}

// SetNotDue marks a lesson as owing nothing, clearing any payment.
func (r *maestroRepository) SetNotDue(ctx context.Context, id string) (*db.MaestroPayment, error) {
	return r.update(ctx, "not_due = TRUE, paid = FALSE, paid_at = NULL", id)
}
