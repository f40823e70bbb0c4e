package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicyStopsOnSuccess(t *testing.T) {
	calls := 0
	err := RetryPolicy{Attempts: 3, Backoff: time.Millisecond}.Do(context.Background(), func() error {
		calls++
		if calls < 2 {
			return errors.New("temporary")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryPolicyReturnsLastError(t *testing.T) {
	calls := 0
	err := RetryPolicy{Attempts: 3, Backoff: time.Millisecond}.Do(context.Background(), func() error {
		calls++
		return errors.New("down")
	})
	assert.EqualError(t, err, "down")
	assert.Equal(t, 3, calls)
}

func TestRetryPolicyHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := RetryPolicy{Attempts: 5, Backoff: time.Hour}.Do(ctx, func() error {
		calls++
		return errors.New("down")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestToE164(t *testing.T) {
	assert.Equal(t, "+393331234567", ToE164("333 123 4567"))
	assert.Equal(t, "+393331234567", ToE164("+39 3331234567"))
	assert.Equal(t, "+393331234567", ToE164("00393331234567"))
}

func TestMissingCredentialsDisableSenders(t *testing.T) {
	mail := NewEmailSender(SendGridConfig{}, testLogger)
	assert.IsType(t, noopEmailSender{}, mail)
	assert.NoError(t, mail.SendEmail(context.Background(), "a@b.it", "A", "s", "p", "h"))

	sms := NewSMSSender(TwilioConfig{AccountSID: "AC1"}, testLogger)
	assert.IsType(t, noopSMSSender{}, sms)
	assert.NoError(t, sms.SendSMS(context.Background(), "3331234567", "hi"))
}
