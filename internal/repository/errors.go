package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrOverlap is returned when the bookings exclusion constraint rejects
	// an insert.
	ErrOverlap = errors.New("booking overlaps an existing booking")
)

const (
	sqlStateExclusionViolation = "23P01"
	sqlStateUniqueViolation    = "23505"
)

// IsConflict reports whether err is an exclusion or unique violation.
func IsConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == sqlStateExclusionViolation || pqErr.Code == sqlStateUniqueViolation
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
