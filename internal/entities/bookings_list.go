package entities

import "simbooking/internal/db"

type BookingsList struct {
	Total    int                      `json:"total"`
	Limit    int                      `json:"limit"`
	Bookings []db.BookingWithCustomer `json:"bookings"`
}
