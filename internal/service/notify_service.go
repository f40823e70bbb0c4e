package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
	retry  RetryPolicy
	log    *zap.Logger
}

// NewEmailSender returns a SendGrid sender, or a sender that only logs when
// the API key or the sender address is missing.
func NewEmailSender(cfg SendGridConfig, log *zap.Logger) EmailSender {
	if cfg.APIKey == "" || cfg.FromEmail == "" {
		log.Warn("SENDGRID_API_KEY or SENDGRID_FROM_EMAIL not set, emails are disabled")
		return noopEmailSender{log: log}
	}
	return &SendGridMailer{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.FromEmail),
		retry:  DefaultRetryPolicy,
		log:    log,
	}
}

func (m *SendGridMailer) SendEmail(ctx context.Context, toEmail, toName, subject, plainText, html string) error {
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail(toName, toEmail), plainText, html)

	return m.retry.Do(ctx, func() error {
		response, err := m.client.SendWithContext(ctx, message)
		if err != nil {
			m.log.Warn("sendgrid request failed", zap.String("to", toEmail), zap.Error(err))
			return fmt.Errorf("sendgrid send to %s: %w", toEmail, err)
		}
		if response.StatusCode >= 200 && response.StatusCode < 300 {
			m.log.Info("email sent", zap.String("to", toEmail), zap.String("subject", subject), zap.Int("status", response.StatusCode))
			return nil
		}
		m.log.Warn("sendgrid rejected email",
			zap.String("to", toEmail), zap.Int("status", response.StatusCode), zap.String("body", response.Body))
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	})
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

type TwilioSender struct {
	client *twilio.RestClient
	from   string
	retry  RetryPolicy
	log    *zap.Logger
}

func NewSMSSender(cfg TwilioConfig, log *zap.Logger) SMSSender {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.FromNumber == "" {
		log.Warn("twilio credentials not set, sms is disabled")
		return noopSMSSender{log: log}
	}
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username:   cfg.AccountSID,
			Password:   cfg.AuthToken,
			AccountSid: cfg.AccountSID,
		}),
		from:  cfg.FromNumber,
		retry: DefaultRetryPolicy,
		log:   log,
	}
}

func (t *TwilioSender) SendSMS(ctx context.Context, toNumber, body string) error {
	toNumber = ToE164(toNumber)
	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(t.from)
	params.SetBody(body)

	return t.retry.Do(ctx, func() error {
		resp, err := t.client.Api.CreateMessage(params)
		if err != nil {
			t.log.Warn("twilio request failed", zap.String("to", toNumber), zap.Error(err))
			return fmt.Errorf("twilio send to %s: %w", toNumber, err)
		}
		if resp != nil && resp.Sid != nil {
			t.log.Info("sms sent", zap.String("to", toNumber), zap.String("sid", *resp.Sid))
		}
		return nil
	})
}

// ToE164 normalises Italian numbers accepted by the booking form to +39....
func ToE164(phone string) string {
	p := strings.Join(strings.Fields(phone), "")
	switch {
	case strings.HasPrefix(p, "+"):
		return p
	case strings.HasPrefix(p, "0039"):
		return "+" + strings.TrimPrefix(p, "00")
	default:
		return "+39" + p
	}
}
