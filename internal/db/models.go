package db

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	UserTypeMember   = "socio"
	UserTypeExternal = "esterno"

	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// ActivityTypes lists the bookable activities.
var ActivityTypes = []string{"9", "18", "pratica", "mini-giochi", "lezione-maestro"}

type Customer struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	UserType  string    `json:"userType"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Booking is a stored booking. Date, StartTime and EndTime are the
// resource-local projection of StartsAt/EndsAt.
type Booking struct {
	ID                string    `json:"id"`
	CustomerID        string    `json:"customerId"`
	ResourceID        string    `json:"resourceId"`
	Date              string    `json:"date"`
	StartTime         string    `json:"startTime"`
	EndTime           string    `json:"endTime"`
	StartsAt          time.Time `json:"startsAt"`
	EndsAt            time.Time `json:"endsAt"`
	DurationMinutes   int       `json:"durationMinutes"`
	ActivityType      string    `json:"activityType"`
	Players           int       `json:"players"`
	Status            string    `json:"status"`
	Notes             string    `json:"notes,omitempty"`
	AdminNotes        string    `json:"adminNotes,omitempty"`
	CustomerFirstName string    `json:"customerFirstName,omitempty"`
	CustomerLastName  string    `json:"customerLastName,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type BookingWithCustomer struct {
	Booking
	Customer Customer `json:"customer"`
}

type BlackoutPeriod struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resourceId"`
	StartDate  string    `json:"startDate"`
	EndDate    string    `json:"endDate"`
	StartTime  *string   `json:"startTime"`
	EndTime    *string   `json:"endTime"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type WeeklyHours struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resourceId"`
	DayOfWeek  int       `json:"dayOfWeek"`
	OpenTime   string    `json:"openTime"`
	CloseTime  string    `json:"closeTime"`
	IsClosed   bool      `json:"isClosed"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type MaestroPayment struct {
	ID           string          `json:"id"`
	BookingID    string          `json:"bookingId"`
	MaestroName  string          `json:"maestroName"`
	MaestroEmail string          `json:"maestroEmail"`
	Amount       decimal.Decimal `json:"amount"`
	Paid         bool            `json:"paid"`
	PaidAt       *time.Time      `json:"paidAt,omitempty"`
	NotDue       bool            `json:"notDue"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// MaestroPaymentWithBooking carries the lesson details shown next to a payment.
type MaestroPaymentWithBooking struct {
	MaestroPayment
	Booking LessonInfo `json:"booking"`
}

type LessonInfo struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	AdminNotes string `json:"adminNotes,omitempty"`
}

// LessonBooking is a confirmed instructor lesson still lacking a payment row.
type LessonBooking struct {
	BookingID       string
	DurationMinutes int
	FirstName       string
	LastName        string
	Email           string
}
