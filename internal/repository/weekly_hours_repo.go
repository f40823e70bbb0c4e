package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"simbooking/internal/db"
)

type WeeklyHoursRepository interface {
	List(ctx context.Context, resourceID string) ([]db.WeeklyHours, error)
	// Upsert writes the schedule of one weekday, replacing any existing entry.
	Upsert(ctx context.Context, h db.WeeklyHours) (*db.WeeklyHours, error)
	Update(ctx context.Context, h db.WeeklyHours) (*db.WeeklyHours, error)
	Delete(ctx context.Context, id string) error
}

type weeklyHoursRepository struct {
	db *sql.DB
}

func NewWeeklyHoursRepository(conn *sql.DB) WeeklyHoursRepository {
	return &weeklyHoursRepository{db: conn}
}

const weeklyHoursColumns = `id, resource_id, day_of_week, to_char(open_time, 'HH24:MI'), to_char(close_time, 'HH24:MI'), is_closed, updated_at`

func scanWeeklyHours(row scanner) (*db.WeeklyHours, error) {
	var h db.WeeklyHours
	if err := row.Scan(&h.ID, &h.ResourceID, &h.DayOfWeek, &h.OpenTime, &h.CloseTime, &h.IsClosed, &h.UpdatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *weeklyHoursRepository) List(ctx context.Context, resourceID string) ([]db.WeeklyHours, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+weeklyHoursColumns+` FROM weekly_hours
		WHERE resource_id = $1 ORDER BY day_of_week`, resourceID)
	if err != nil {
		return nil, fmt.Errorf("error querying weekly hours: %w", err)
	}
	defer rows.Close()

	list := []db.WeeklyHours{}
	for rows.Next() {
		h, err := scanWeeklyHours(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning weekly hours: %w", err)
		}
		list = append(list, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating weekly hours: %w", err)
	}
	return list, nil
}

func (r *weeklyHoursRepository) Upsert(ctx context.Context, h db.WeeklyHours) (*db.WeeklyHours, error) {
	query := `INSERT INTO weekly_hours (resource_id, day_of_week, open_time, close_time, is_closed)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (resource_id, day_of_week) DO UPDATE SET
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			is_closed = EXCLUDED.is_closed,
			updated_at = NOW()
		RETURNING ` + weeklyHoursColumns
	saved, err := scanWeeklyHours(r.db.QueryRowContext(ctx, query,
		h.ResourceID, h.DayOfWeek, h.OpenTime, h.CloseTime, h.IsClosed))
	if err != nil {
		return nil, fmt.Errorf("error saving weekly hours: %w", err)
	}
	return saved, nil
}

func (r *weeklyHoursRepository) Update(ctx context.Context, h db.WeeklyHours) (*db.WeeklyHours, error) {
	query := `UPDATE weekly_hours
		SET open_time = $2, close_time = $3, is_closed = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + weeklyHoursColumns
	saved, err := scanWeeklyHours(r.db.QueryRowContext(ctx, query, h.ID, h.OpenTime, h.CloseTime, h.IsClosed))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error updating weekly hours %s: %w", h.ID, err)
	}
	return saved, nil
}

func (r *weeklyHoursRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM weekly_hours WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting weekly hours %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
