package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the knobs that used to be literals buried in the booking flow
// (pickup location, launch discount) plus the operational limits.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	// DefaultLocation is used as pickup and return location for guest
	// bookings; the booking form does not expose a branch selector yet.
	DefaultLocation string

	// LaunchDiscountPct is subtracted from every booking subtotal.
	LaunchDiscountPct float64

	// AllowSameDayTurnover controls whether a booking ending on day D
	// conflicts with one starting on day D. False keeps the shared
	// boundary day blocked.
	AllowSameDayTurnover bool

	StoreTimeout          time.Duration
	HistoryPageSize       int
	CalendarHorizonMonths int
	PendingMaxAge         time.Duration
}

func Load() *Config {
	return &Config{
		Port:                  getEnv("PORT", "8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		DefaultLocation:       getEnv("DEFAULT_LOCATION", "본점"),
		LaunchDiscountPct:     getEnvFloat("LAUNCH_DISCOUNT_PCT", 5),
		AllowSameDayTurnover:  getEnvBool("ALLOW_SAME_DAY_TURNOVER", false),
		StoreTimeout:          getEnvDuration("STORE_TIMEOUT", 10*time.Second),
		HistoryPageSize:       getEnvInt("HISTORY_PAGE_SIZE", 50),
		CalendarHorizonMonths: getEnvInt("CALENDAR_HORIZON_MONTHS", 3),
		PendingMaxAge:         getEnvDuration("PENDING_MAX_AGE", 168*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
