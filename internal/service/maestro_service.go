package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"simbooking/internal/db"
	"simbooking/internal/entities"
	apperrors "simbooking/internal/errors"
	"simbooking/internal/repository"
	"simbooking/internal/utils"
)

const (
	ActionPaid   = "paid"
	ActionUnpaid = "unpaid"
	ActionNotDue = "not_due"
)

// MaestroService keeps one payment row per confirmed instructor lesson and
// reports what is owed to each instructor.
type MaestroService struct {
	repo       repository.MaestroRepository
	hourlyRate decimal.Decimal
	loc        *time.Location
	log        *zap.Logger
}

func NewMaestroService(repo repository.MaestroRepository, hourlyRate decimal.Decimal, loc *time.Location, log *zap.Logger) *MaestroService {
	return &MaestroService{repo: repo, hourlyRate: hourlyRate, loc: loc, log: log}
}

// LessonAmount is hourlyRate * minutes / 60, rounded to cents.
func LessonAmount(hourlyRate decimal.Decimal, minutes int) decimal.Decimal {
	return hourlyRate.Mul(decimal.NewFromInt(int64(minutes))).Div(decimal.NewFromInt(60)).Round(2)
}

func (s *MaestroService) Sync(ctx context.Context) (entities.SyncResult, error) {
	var res entities.SyncResult

	lessons, err := s.repo.ListLessonBookingsWithoutPayment(ctx)
	if err != nil {
		return res, storeError(s.log, "Lezione", err)
	}
	payments := make([]db.MaestroPayment, 0, len(lessons))
	for _, l := range lessons {
		payments = append(payments, db.MaestroPayment{
			BookingID:    l.BookingID,
			MaestroName:  strings.TrimSpace(l.FirstName + " " + l.LastName),
			MaestroEmail: strings.ToLower(l.Email),
			Amount:       LessonAmount(s.hourlyRate, l.DurationMinutes),
		})
	}
	if res.Inserted, err = s.repo.InsertPayments(ctx, payments); err != nil {
		return res, storeError(s.log, "Pagamento", err)
	}
	if res.Removed, err = s.repo.DeleteUnpaidForCancelled(ctx); err != nil {
		return res, storeError(s.log, "Pagamento", err)
	}
	if res.Inserted > 0 || res.Removed > 0 {
		s.log.Info("maestro payments synced", zap.Int("inserted", res.Inserted), zap.Int("removed", res.Removed))
	}
	return res, nil
}

func summarize(email string, payments []db.MaestroPayment) entities.MaestroSummary {
	sum := entities.MaestroSummary{
		MaestroEmail:  email,
		MaestroNames:  []string{},
		TotalOwed:     decimal.Zero,
		TotalPaid:     decimal.Zero,
		PendingAmount: decimal.Zero,
	}
	seen := map[string]bool{}
	for _, p := range payments {
		if !seen[p.MaestroName] {
			seen[p.MaestroName] = true
			sum.MaestroNames = append(sum.MaestroNames, p.MaestroName)
		}
		sum.LessonsCount++
		if p.NotDue {
			continue
		}
		sum.TotalOwed = sum.TotalOwed.Add(p.Amount)
		if p.Paid {
			sum.TotalPaid = sum.TotalPaid.Add(p.Amount)
			sum.PaidLessonsCount++
		}
	}
	sum.PendingAmount = sum.TotalOwed.Sub(sum.TotalPaid)
	return sum
}

// Summaries groups all payments by instructor email.
func (s *MaestroService) Summaries(ctx context.Context) ([]entities.MaestroSummary, error) {
	all, err := s.repo.ListAllPayments(ctx)
	if err != nil {
		return nil, storeError(s.log, "Pagamento", err)
	}
	return summariesOf(all), nil
}

func summariesOf(all []db.MaestroPayment) []entities.MaestroSummary {
	byEmail := map[string][]db.MaestroPayment{}
	for _, p := range all {
		key := strings.ToLower(p.MaestroEmail)
		byEmail[key] = append(byEmail[key], p)
	}
	out := make([]entities.MaestroSummary, 0, len(byEmail))
	for email, payments := range byEmail {
		out = append(out, summarize(email, payments))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MaestroEmail < out[j].MaestroEmail })
	return out
}

// Overview returns the summaries with the outstanding total and the amount
// paid between from and to (inclusive civil dates, empty for unbounded).
func (s *MaestroService) Overview(ctx context.Context, from, to string) (*entities.MaestriOverview, error) {
	if (from != "" && !utils.IsValidDate(from)) || (to != "" && !utils.IsValidDate(to)) {
		return nil, invalidInput("Formato data non valido. Usa YYYY-MM-DD")
	}
	all, err := s.repo.ListAllPayments(ctx)
	if err != nil {
		return nil, storeError(s.log, "Pagamento", err)
	}
	return &entities.MaestriOverview{
		Maestri:   summariesOf(all),
		TotalOwed: TotalOwed(all),
		TotalPaid: TotalPaid(all, from, to, s.loc),
	}, nil
}

// TotalOwed is the amount still to be paid across all instructors.
func TotalOwed(all []db.MaestroPayment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range all {
		if !p.Paid && !p.NotDue {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// TotalPaid sums payments whose paid date falls in [from, to].
func TotalPaid(all []db.MaestroPayment, from, to string, loc *time.Location) decimal.Decimal {
	total := decimal.Zero
	for _, p := range all {
		if !p.Paid || p.PaidAt == nil {
			continue
		}
		day := utils.Today(*p.PaidAt, loc)
		if (from != "" && day < from) || (to != "" && day > to) {
			continue
		}
		total = total.Add(p.Amount)
	}
	return total
}

func (s *MaestroService) Detail(ctx context.Context, email string) (*entities.MaestroDetail, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !utils.IsValidEmail(email) {
		return nil, invalidInput("Email maestro non valida")
	}
	payments, err := s.repo.ListPayments(ctx, email)
	if err != nil {
		return nil, storeError(s.log, "Pagamento", err)
	}
	plain := make([]db.MaestroPayment, len(payments))
	for i, p := range payments {
		plain[i] = p.MaestroPayment
	}
	return &entities.MaestroDetail{Summary: summarize(email, plain), Payments: payments}, nil
}

func (s *MaestroService) MarkPaid(ctx context.Context, paymentID string) (*db.MaestroPayment, error) {
	return s.update(ctx, paymentID, ActionPaid, func() (*db.MaestroPayment, error) {
		return s.repo.SetPaid(ctx, paymentID, true)
	})
}

func (s *MaestroService) MarkUnpaid(ctx context.Context, paymentID string) (*db.MaestroPayment, error) {
	return s.update(ctx, paymentID, ActionUnpaid, func() (*db.MaestroPayment, error) {
		return s.repo.SetPaid(ctx, paymentID, false)
	})
}

// MarkNotDue waives a payment: it no longer counts towards any total.
func (s *MaestroService) MarkNotDue(ctx context.Context, paymentID string) (*db.MaestroPayment, error) {
	return s.update(ctx, paymentID, ActionNotDue, func() (*db.MaestroPayment, error) {
		return s.repo.SetNotDue(ctx, paymentID)
	})
}

func (s *MaestroService) update(ctx context.Context, paymentID, action string, fn func() (*db.MaestroPayment, error)) (*db.MaestroPayment, error) {
	if !utils.IsValidUUID(paymentID) {
		return nil, apperrors.ErrBadRequest(apperrors.CodeInvalidID, "ID pagamento non valido")
	}
	p, err := fn()
	if err != nil {
		return nil, storeError(s.log, "Pagamento", err)
	}
	s.log.Info("maestro payment updated", zap.String("payment_id", paymentID), zap.String("action", action))
	return p, nil
}

// ApplyPaymentAction handles "paid" and "unpaid" on a payment id.
func (s *MaestroService) ApplyPaymentAction(ctx context.Context, paymentID, action string) (*db.MaestroPayment, error) {
	switch action {
	case ActionPaid:
		return s.MarkPaid(ctx, paymentID)
	case ActionUnpaid:
		return s.MarkUnpaid(ctx, paymentID)
	default:
		return nil, apperrors.ErrBadRequest(apperrors.CodeInvalidAction, "Azione non valida. Usa 'paid' o 'unpaid'")
	}
}

func (s *MaestroService) PaymentForBooking(ctx context.Context, bookingID string) (*db.MaestroPayment, error) {
	if !utils.IsValidUUID(bookingID) {
		return nil, apperrors.ErrBadRequest(apperrors.CodeInvalidID, "ID prenotazione non valido")
	}
	p, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, storeError(s.log, "Pagamento", err)
	}
	return p, nil
}

// ApplyBookingAction handles "paid" and "not_due" on the payment of a lesson.
func (s *MaestroService) ApplyBookingAction(ctx context.Context, bookingID, action string) (*db.MaestroPayment, error) {
	if action != ActionPaid && action != ActionNotDue {
		return nil, apperrors.ErrBadRequest(apperrors.CodeInvalidAction, "Azione non valida. Usa 'paid' o 'not_due'")
	}
	p, err := s.PaymentForBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if action == ActionPaid {
		return s.MarkPaid(ctx, p.ID)
	}
	return s.MarkNotDue(ctx, p.ID)
}
