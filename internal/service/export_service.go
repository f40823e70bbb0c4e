package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"simbooking/internal/db"
	apperrors "simbooking/internal/errors"
	"simbooking/internal/repository"
)

const exportLimit = 50000

var exportHeader = []string{
	"ID", "Data", "Orario Inizio", "Orario Fine", "Nome", "Cognome", "Email",
	"Telefono", "Tipo Utente", "Giocatori", "Attività", "Durata (min)", "Stato",
	"Note", "Data Creazione", "Ultima Modifica",
}

type ExportService struct {
	bookings repository.BookingRepository
	log      *zap.Logger
}

func NewExportService(bookings repository.BookingRepository, log *zap.Logger) *ExportService {
	return &ExportService{bookings: bookings, log: log}
}

// ExportFilename is the attachment name for an export made at now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("prenotazioni-%s.csv", now.UTC().Format("2006-01-02"))
}

// WriteCSV writes every booking, newest first, to w.
func (s *ExportService) WriteCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.bookings.ListBookings(ctx, exportLimit)
	if err != nil {
		s.log.Error("export: cannot list bookings", zap.Error(err))
		return apperrors.ErrDatabase()
	}
	return WriteBookingsCSV(w, rows)
}

func WriteBookingsCSV(w io.Writer, rows []db.BookingWithCustomer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, b := range rows {
		if err := cw.Write(exportRecord(b)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportRecord(b db.BookingWithCustomer) []string {
	firstName := b.CustomerFirstName
	if firstName == "" {
		firstName = b.Customer.FirstName
	}
	lastName := b.CustomerLastName
	if lastName == "" {
		lastName = b.Customer.LastName
	}
	userType := "Esterno"
	if b.Customer.UserType == db.UserTypeMember {
		userType = "Socio"
	}
	status := "Cancellata"
	if b.Status == db.StatusConfirmed {
		status = "Confermata"
	}
	return []string{
		b.ID,
		b.Date,
		b.StartTime,
		b.EndTime,
		firstName,
		lastName,
		b.Customer.Email,
		b.Customer.Phone,
		userType,
		strconv.Itoa(b.Players),
		ActivityLabel(b.ActivityType),
		strconv.Itoa(b.DurationMinutes),
		status,
		b.Notes,
		b.CreatedAt.UTC().Format(time.RFC3339),
		b.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
