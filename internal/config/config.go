package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string

	// Booking window
	TimeZone               string
	DayStartHour           int
	DayEndHour             int
	SlotDurationMinutes    int
	BookingDurationMinutes int
	HoldTTL                time.Duration

	// Google Calendar service account
	CalendarID          string
	GoogleProjectID     string
	GooglePrivateKeyID  string
	GooglePrivateKey    string
	GoogleClientEmail   string
	GoogleClientID      string
	GoogleClientCertURL string

	// MercadoPago
	MercadoPagoAccessToken string

	// SendGrid Email Configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	// Redis (slot holds); empty addr disables the hold store
	RedisAddr     string
	RedisPassword string

	// Service price table and currency conversion
	ServicePricesJSON string
	USDToCOPRate      float64

	OrganizerName  string
	OrganizerEmail string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),

		TimeZone:               getEnv("BOOKING_TIMEZONE", "America/Bogota"),
		DayStartHour:           getEnvAsInt("BOOKING_DAY_START_HOUR", 9),
		DayEndHour:             getEnvAsInt("BOOKING_DAY_END_HOUR", 17),
		SlotDurationMinutes:    getEnvAsInt("BOOKING_SLOT_MINUTES", 60),
		BookingDurationMinutes: getEnvAsInt("BOOKING_DURATION_MINUTES", 60),
		HoldTTL:                getEnvAsDuration("BOOKING_HOLD_TTL", 5*time.Minute),

		CalendarID:          getEnv("CALENDAR_ID", "primary"),
		GoogleProjectID:     getEnv("GOOGLE_PROJECT_ID", ""),
		GooglePrivateKeyID:  getEnv("GOOGLE_PRIVATE_KEY_ID", ""),
		GooglePrivateKey:    getEnv("GOOGLE_PRIVATE_KEY", ""),
		GoogleClientEmail:   getEnv("GOOGLE_CLIENT_EMAIL", ""),
		GoogleClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientCertURL: getEnv("GOOGLE_CLIENT_CERT_URL", ""),

		MercadoPagoAccessToken: getEnv("MERCADOPAGO_ACCESS_TOKEN", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Agenda"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		ServicePricesJSON: getEnv("SERVICE_PRICES", ""),
		USDToCOPRate:      getEnvAsFloat("DOLLAR_COP_RATE", 4000),

		OrganizerName:  getEnv("ORGANIZER_NAME", "Agenda"),
		OrganizerEmail: getEnv("ORGANIZER_EMAIL", ""),
	}
}

// Validate rejects configurations that cannot serve bookings. Invalid
// slot windows are a startup error, never a per-request one.
func (c *Config) Validate() error {
	if c.DayStartHour >= c.DayEndHour {
		return fmt.Errorf("config: BOOKING_DAY_START_HOUR (%d) must be before BOOKING_DAY_END_HOUR (%d)", c.DayStartHour, c.DayEndHour)
	}
	if c.SlotDurationMinutes <= 0 {
		return fmt.Errorf("config: BOOKING_SLOT_MINUTES must be positive (got %d)", c.SlotDurationMinutes)
	}
	if c.BookingDurationMinutes <= 0 {
		return fmt.Errorf("config: BOOKING_DURATION_MINUTES must be positive (got %d)", c.BookingDurationMinutes)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("config: unknown BOOKING_TIMEZONE %q: %w", c.TimeZone, err)
	}
	if c.USDToCOPRate <= 0 {
		return fmt.Errorf("config: DOLLAR_COP_RATE must be positive (got %v)", c.USDToCOPRate)
	}
	if c.GoogleProjectID == "" || c.GooglePrivateKey == "" || c.GoogleClientEmail == "" {
		return fmt.Errorf("config: missing Google credentials (GOOGLE_PROJECT_ID, GOOGLE_PRIVATE_KEY, GOOGLE_CLIENT_EMAIL are required)")
	}
	return nil
}

// Location resolves the booking timezone. Call Validate first.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GoogleCredentialsJSON assembles the service-account key document the
// Google client expects from the individual env fields. Private keys
// pasted into env files carry literal "\n" sequences; they are restored
// to real newlines here.
func (c *Config) GoogleCredentialsJSON() ([]byte, error) {
	creds := map[string]string{
		"type":                        "service_account",
		"project_id":                  c.GoogleProjectID,
		"private_key_id":              c.GooglePrivateKeyID,
		"private_key":                 strings.ReplaceAll(c.GooglePrivateKey, `\n`, "\n"),
		"client_email":                c.GoogleClientEmail,
		"client_id":                   c.GoogleClientID,
		"auth_uri":                    "https://accounts.google.com/o/oauth2/auth",
		"token_uri":                   "https://oauth2.googleapis.com/token",
		"auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
		"client_x509_cert_url":        c.GoogleClientCertURL,
		"universe_domain":             "googleapis.com",
	}
	out, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("config: marshal google credentials: %w", err)
	}
	return out, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
