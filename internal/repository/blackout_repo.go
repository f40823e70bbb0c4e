package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"simbooking/internal/db"
)

type BlackoutRepository interface {
	List(ctx context.Context, resourceID string) ([]db.BlackoutPeriod, error)
	// ListOverlapping returns the blackouts of resourceID intersecting [from, to].
	ListOverlapping(ctx context.Context, resourceID, from, to string) ([]db.BlackoutPeriod, error)
	Create(ctx context.Context, b db.BlackoutPeriod) (*db.BlackoutPeriod, error)
	Update(ctx context.Context, b db.BlackoutPeriod) (*db.BlackoutPeriod, error)
	Delete(ctx context.Context, id string) error
}

type blackoutRepository struct {
	db *sql.DB
}

func NewBlackoutRepository(conn *sql.DB) BlackoutRepository {
	return &blackoutRepository{db: conn}
}

const blackoutColumns = `id, resource_id, to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'),
	to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), reason, created_at`

func scanBlackout(row scanner) (*db.BlackoutPeriod, error) {
	var b db.BlackoutPeriod
	var start, end, reason sql.NullString
	if err := row.Scan(&b.ID, &b.ResourceID, &b.StartDate, &b.EndDate, &start, &end, &reason, &b.CreatedAt); err != nil {
		return nil, err
	}
	if start.Valid {
		b.StartTime = &start.String
	}
	if end.Valid {
		b.EndTime = &end.String
	}
	b.Reason = reason.String
	return &b, nil
}

func (r *blackoutRepository) query(ctx context.Context, query string, args ...interface{}) ([]db.BlackoutPeriod, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying blackouts: %w", err)
	}
	defer rows.Close()

	list := []db.BlackoutPeriod{}
	for rows.Next() {
		b, err := scanBlackout(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning blackout: %w", err)
		}
		list = append(list, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating blackouts: %w", err)
	}
	return list, nil
}

func (r *blackoutRepository) List(ctx context.Context, resourceID string) ([]db.BlackoutPeriod, error) {
	return r.query(ctx, `SELECT `+blackoutColumns+` FROM blackout_periods
		WHERE resource_id = $1 ORDER BY start_date, start_time NULLS FIRST`, resourceID)
}

func (r *blackoutRepository) ListOverlapping(ctx context.Context, resourceID, from, to string) ([]db.BlackoutPeriod, error) {
	return r.query(ctx, `SELECT `+blackoutColumns+` FROM blackout_periods
		WHERE resource_id = $1 AND start_date <= $3::date AND end_date >= $2::date
		ORDER BY start_date`, resourceID, from, to)
}

func (r *blackoutRepository) Create(ctx context.Context, b db.BlackoutPeriod) (*db.BlackoutPeriod, error) {
	query := `INSERT INTO blackout_periods (resource_id, start_date, end_date, start_time, end_time, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + blackoutColumns
	created, err := scanBlackout(r.db.QueryRowContext(ctx, query,
		b.ResourceID, b.StartDate, b.EndDate, b.StartTime, b.EndTime, nullString(b.Reason)))
	if err != nil {
		return nil, fmt.Errorf("error creating blackout: %w", err)
	}
	return created, nil
}

func (r *blackoutRepository) Update(ctx context.Context, b db.BlackoutPeriod) (*db.BlackoutPeriod, error) {
	query := `UPDATE blackout_periods
		SET start_date = $2, end_date = $3, start_time = $4, end_time = $5, reason = $6
		WHERE id = $1
		RETURNING ` + blackoutColumns
	updated, err := scanBlackout(r.db.QueryRowContext(ctx, query,
		b.ID, b.StartDate, b.EndDate, b.StartTime, b.EndTime, nullString(b.Reason)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error updating blackout %s: %w", b.ID, err)
	}
	return updated, nil
}

func (r *blackoutRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blackout_periods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting blackout %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting blackout %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
