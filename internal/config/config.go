package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	Environment    string
	StaticDir      string // Built front-end bundle; empty serves JSON page descriptors

	DatabaseURL     string
	DatabaseReadURL string // Read replica URL for admin listings
	RedisURL        string

	SessionSecret string // Signs the client scope cookie
	SessionTTL    time.Duration
	CookieSecure  bool
	JWTSecret     string // Signs bearer session tokens
	JWTIssuer     string

	AdminEmails  []string
	PublicRoutes []string // Extra routes reachable without a user

	FeeAmount      float64
	FeeCurrency    string
	PaymentDueDays int
	PaymentLatency time.Duration // Simulated provider processing time

	EventName     string
	EventStartsAt time.Time
	EventEndsAt   time.Time

	ContactWebhookURL   string
	ContactRateLimit    int
	ContactRateLimitTTL time.Duration

	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	GmailSender       string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	startsAt, err := getTimeEnv("EVENT_STARTS_AT", "2025-04-19T09:00:00Z")
	if err != nil {
		return nil, err
	}
	endsAt, err := getTimeEnv("EVENT_ENDS_AT", "2025-04-20T18:00:00Z")
	if err != nil {
		return nil, err
	}
	if endsAt.Before(startsAt) {
		return nil, fmt.Errorf("EVENT_ENDS_AT (%s) is before EVENT_STARTS_AT (%s)", endsAt, startsAt)
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: parseList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Environment:    getEnv("ENVIRONMENT", "production"),
		StaticDir:      getEnv("STATIC_DIR", ""),

		DatabaseURL:     getEnv("DATABASE_URL", ""),
		DatabaseReadURL: getEnv("DATABASE_READ_URL", getEnv("DATABASE_URL", "")), // Falls back to write DB if not set
		RedisURL:        getEnv("REDIS_URL", ""),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    getDurationEnv("SESSION_TTL", 30*24*time.Hour),
		CookieSecure:  getBoolEnv("COOKIE_SECURE", true),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTIssuer:     getEnv("JWT_ISSUER", "loc-portal"),

		AdminEmails:  parseList(strings.ToLower(getEnv("ADMIN_EMAILS", ""))),
		PublicRoutes: parseList(getEnv("PUBLIC_ROUTES", "")),

		FeeAmount:      getFloatEnv("FEE_AMOUNT", 50),
		FeeCurrency:    getEnv("FEE_CURRENCY", "USD"),
		PaymentDueDays: getIntEnv("PAYMENT_DUE_DAYS", 7),
		PaymentLatency: getDurationEnv("PAYMENT_LATENCY", 1500*time.Millisecond),

		EventName:     getEnv("EVENT_NAME", "League of Coders 2025"),
		EventStartsAt: startsAt,
		EventEndsAt:   endsAt,

		ContactWebhookURL:   getEnv("CONTACT_WEBHOOK_URL", ""),
		ContactRateLimit:    getIntEnv("CONTACT_RATE_LIMIT", 5),
		ContactRateLimitTTL: getDurationEnv("CONTACT_RATE_LIMIT_WINDOW", time.Hour),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailSender:       getEnv("GMAIL_SENDER", ""),
	}, nil
}

// GmailConfigured reports whether welcome emails go out through Gmail
func (c *Config) GmailConfigured() bool {
	return c.GmailClientID != "" && c.GmailClientSecret != "" && c.GmailRefreshToken != "" && c.GmailSender != ""
}

// IsDevelopment reports whether the service runs locally
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "local"
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseList parses a comma-separated list into a slice
func parseList(value string) []string {
	if value == "" {
		return []string{}
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getTimeEnv(key, fallback string) (time.Time, error) {
	raw := getEnv(key, fallback)
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return parsed, nil
}
