package entities

import "simbooking/internal/db"

// CreateBookingRequest is the public booking payload. Either StartsAt
// (RFC 3339) or Date plus StartTime must be set.
type CreateBookingRequest struct {
	ResourceID      string `json:"resourceId"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	StartsAt        string `json:"startsAt"`
	DurationMinutes int    `json:"durationMinutes"`
	ActivityType    string `json:"activityType"`
	Players         int    `json:"players"`
	Notes           string `json:"notes"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	UserType        string `json:"userType"`
}

type CreateBookingResponse struct {
	Booking  db.Booking  `json:"booking"`
	Customer db.Customer `json:"customer"`
}

// AdminBookingPatch updates a booking from the admin panel. Status may only
// be set to cancelled.
type AdminBookingPatch struct {
	Status     *string `json:"status"`
	AdminNotes *string `json:"adminNotes"`
}
