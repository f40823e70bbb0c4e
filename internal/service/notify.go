package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type EmailSender interface {
	SendEmail(ctx context.Context, toEmail, toName, subject, plainText, html string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, toNumber, body string) error
}

// RetryPolicy bounds delivery attempts to an external provider.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Backoff: 500 * time.Millisecond}

// Do runs fn until it succeeds, the attempts are exhausted or ctx is done.
// The wait doubles after every failure.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	wait := p.Backoff
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}

type noopEmailSender struct{ log *zap.Logger }

func (n noopEmailSender) SendEmail(_ context.Context, toEmail, _, subject, _, _ string) error {
	n.log.Warn("email provider not configured, skipping email", zap.String("to", toEmail), zap.String("subject", subject))
	return nil
}

type noopSMSSender struct{ log *zap.Logger }

func (n noopSMSSender) SendSMS(_ context.Context, toNumber, _ string) error {
	n.log.Warn("sms provider not configured, skipping sms", zap.String("to", toNumber))
	return nil
}
