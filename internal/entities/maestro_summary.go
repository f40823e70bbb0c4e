package entities

import (
	"simbooking/internal/db"

	"github.com/shopspring/decimal"
)

type MaestroSummary struct {
	MaestroEmail     string          `json:"maestroEmail"`
	MaestroNames     []string        `json:"maestroNames"`
	TotalOwed        decimal.Decimal `json:"totalOwed"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	PendingAmount    decimal.Decimal `json:"pendingAmount"`
	LessonsCount     int             `json:"lessonsCount"`
	PaidLessonsCount int             `json:"paidLessonsCount"`
}

type MaestriOverview struct {
	Maestri   []MaestroSummary `json:"summaries"`
	TotalOwed decimal.Decimal  `json:"totalOwed"`
	TotalPaid decimal.Decimal  `json:"totalPaid"`
}

type MaestroDetail struct {
	Summary  MaestroSummary                 `json:"summary"`
	Payments []db.MaestroPaymentWithBooking `json:"payments"`
}

type SyncResult struct {
	Inserted int `json:"inserted"`
	Removed  int `json:"removed"`
}
