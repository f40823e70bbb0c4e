package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"go.uber.org/zap"

	"simbooking/internal/db"
	"simbooking/internal/entities"
	"simbooking/internal/scheduling"
)

//go:embed templates/*.html
var templateFS embed.FS

var emailTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const sendTimeout = 30 * time.Second

// SenderService renders booking notifications and dispatches them without
// blocking the caller.
type SenderService struct {
	mail       EmailSender
	sms        SMSSender
	adminEmail string
	templates  *template.Template
	log        *zap.Logger
	// dispatch runs a delivery; tests replace it to run synchronously.
	dispatch func(func())
}

func NewSenderService(mail EmailSender, sms SMSSender, adminEmail string, log *zap.Logger) *SenderService {
	return &SenderService{
		mail:       mail,
		sms:        sms,
		adminEmail: adminEmail,
		templates:  emailTemplates,
		log:        log,
		dispatch:   func(f func()) { go f() },
	}
}

func ActivityLabel(activityType string) string {
	switch activityType {
	case "9":
		return "9 buche"
	case "18":
		return "18 buche"
	case "pratica":
		return "Campo Pratica"
	case "mini-giochi":
		return "Mini-giochi"
	case "lezione-maestro":
		return "Lezione maestro"
	default:
		return activityType
	}
}

func FormatDuration(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dmin", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dmin", h, m)
	}
}

func emailData(b db.Booking, c db.Customer, cancelURL string) entities.BookingEmailData {
	return entities.BookingEmailData{
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Email:         c.Email,
		Phone:         c.Phone,
		UserType:      c.UserType,
		BookingID:     b.ID,
		ActivityLabel: ActivityLabel(b.ActivityType),
		Players:       b.Players,
		Date:          displayDate(b.Date),
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Duration:      FormatDuration(b.DurationMinutes),
		Notes:         b.Notes,
		CancelURL:     cancelURL,
		CurrentYear:   time.Now().Year(),
	}
}

// displayDate turns YYYY-MM-DD into DD/MM/YYYY.
func displayDate(date string) string {
	t, err := time.Parse(scheduling.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("02/01/2006")
}

func plainToHTML(s string) string {
	return "<pre>" + template.HTMLEscapeString(s) + "</pre>"
}

func (s *SenderService) render(name string, data entities.BookingEmailData) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// htmlBody renders template name, falling back to the escaped plain text
// so a template error never produces an empty email.
func (s *SenderService) htmlBody(name string, data entities.BookingEmailData, plain string) string {
	body, err := s.render(name, data)
	if err != nil {
		s.log.Error("cannot render email, sending plain text", zap.String("template", name),
			zap.String("booking_id", data.BookingID), zap.Error(err))
		return plainToHTML(plain)
	}
	return body
}

// SendBookingConfirmation emails the customer and the admin and texts the
// customer when a phone number is known. Failures are logged only.
func (s *SenderService) SendBookingConfirmation(b db.Booking, c db.Customer, cancelURL string) {
	data := emailData(b, c, cancelURL)

	subject := "Conferma Prenotazione TrackMan iO - Montecchia Performance Center"
	plain := fmt.Sprintf(
		"Ciao %s %s,\n\nla tua prenotazione è confermata.\n\nData: %s\nOrario: %s - %s (%s)\nAttività: %s\nGiocatori: %d\n\nPer cancellare (fino a 24 ore prima): %s\n",
		data.FirstName, data.LastName, data.Date, data.StartTime, data.EndTime, data.Duration,
		data.ActivityLabel, data.Players, data.CancelURL,
	)
	customerHTML := s.htmlBody("booking_confirmation.html", data, plain)

	s.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := s.mail.SendEmail(ctx, c.Email, c.FirstName+" "+c.LastName, subject, plain, customerHTML); err != nil {
			s.log.Error("confirmation email failed", zap.String("booking_id", b.ID), zap.Error(err))
		}
	})

	if s.adminEmail != "" {
		adminSubject := fmt.Sprintf("Nuova prenotazione: %s %s - %s %s", c.FirstName, c.LastName, data.Date, data.StartTime)
		adminHTML := s.htmlBody("admin_notification.html", data, adminSubject)
		s.dispatch(func() {
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()
			if err := s.mail.SendEmail(ctx, s.adminEmail, "Admin", adminSubject, adminSubject, adminHTML); err != nil {
				s.log.Error("admin email failed", zap.String("booking_id", b.ID), zap.Error(err))
			}
		})
	}

	if c.Phone != "" {
		sms := fmt.Sprintf("Montecchia: prenotazione confermata il %s alle %s (%s). Dettagli nella tua email.",
			data.Date, data.StartTime, data.ActivityLabel)
		s.dispatch(func() {
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()
			if err := s.sms.SendSMS(ctx, c.Phone, sms); err != nil {
				s.log.Error("confirmation sms failed", zap.String("booking_id", b.ID), zap.Error(err))
			}
		})
	}
}

// SendBookingCancelled tells the customer a booking was cancelled.
func (s *SenderService) SendBookingCancelled(b db.Booking, c db.Customer) {
	subject := "Prenotazione cancellata - Montecchia Performance Center"
	plain := fmt.Sprintf("Ciao %s,\n\nla prenotazione del %s alle %s è stata cancellata.\n",
		c.FirstName, displayDate(b.Date), b.StartTime)
	s.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := s.mail.SendEmail(ctx, c.Email, c.FirstName+" "+c.LastName, subject, plain, plainToHTML(plain)); err != nil {
			s.log.Error("cancellation email failed", zap.String("booking_id", b.ID), zap.Error(err))
		}
	})
}
