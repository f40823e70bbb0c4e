package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const DefaultResourceID = "trackman-io"

type Config struct {
	DatabaseURL string
	Port        string
	Timezone    *time.Location

	JWTSecret           string
	CancelTokenSecret   string
	CookieSecure        bool
	PublicBaseURL       string
	AdminNotifyEmail    string
	CORSOrigins         []string
	TrustProxy          bool
	RedisURL            string
	RateLimitPerMinute  int
	MaestroHourlyRate   decimal.Decimal
	MaestroSyncSchedule string

	SendGridAPIKey   string
	SendGridFrom     string
	SendGridFromName string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL, err := RequiredString("DATABASE_URL")
	if err != nil {
		return nil, err
	}
	jwtSecret, err := RequiredString("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	port, err := Port("PORT", "8080")
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(String("TIMEZONE", "Europe/Rome"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	rate, err := decimal.NewFromString(String("MAESTRO_HOURLY_RATE", "20"))
	if err != nil {
		return nil, fmt.Errorf("MAESTRO_HOURLY_RATE: %w", err)
	}
	rpm, err := Int("RATE_LIMIT_PER_MINUTE", 60)
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:         dbURL,
		Port:                port,
		Timezone:            loc,
		JWTSecret:           jwtSecret,
		CancelTokenSecret:   String("BOOKING_CANCEL_SECRET", jwtSecret),
		CookieSecure:        Bool("COOKIE_SECURE", true),
		PublicBaseURL:       strings.TrimRight(String("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		AdminNotifyEmail:    String("ADMIN_EMAIL", ""),
		CORSOrigins:         List("CORS_ORIGINS"),
		TrustProxy:          Bool("TRUST_PROXY", false),
		RedisURL:            String("REDIS_URL", ""),
		RateLimitPerMinute:  rpm,
		MaestroHourlyRate:   rate,
		MaestroSyncSchedule: String("MAESTRO_SYNC_SPEC", "@every 15m"),
		SendGridAPIKey:      String("SENDGRID_API_KEY", ""),
		SendGridFrom:        String("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:    String("SENDGRID_FROM_NAME", "Montecchia Performance Center"),
		TwilioAccountSID:    String("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:     String("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber:    String("TWILIO_FROM_NUMBER", ""),
	}, nil
}

func String(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func RequiredString(key string) (string, error) {
	v := String(key, "")
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func Int(key string, fallback int) (int, error) {
	v := String(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got %q)", key, v)
	}
	return n, nil
}

func Bool(key string, fallback bool) bool {
	v := String(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func List(key string) []string {
	v := String(key, "")
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func Port(key, fallback string) (string, error) {
	v := String(key, fallback)
	p, err := strconv.Atoi(v)
	if err != nil || p < 1 || p > 65535 {
		return "", fmt.Errorf("%s must be a valid TCP port (got %q)", key, v)
	}
	return v, nil
}
