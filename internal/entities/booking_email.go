package entities

type BookingEmailData struct {
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	UserType      string
	BookingID     string
	ActivityLabel string
	Players       int
	Date          string
	StartTime     string
	EndTime       string
	Duration      string
	Notes         string
	CancelURL     string
	CurrentYear   int
}
