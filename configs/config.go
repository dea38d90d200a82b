package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

func Config(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	return os.Getenv(key)
}

// BookingConfig is built once at startup and handed to the booking service
// at construction. The service never reads env vars on its own.
type BookingConfig struct {
	Currency    string
	FrontendURL string
	PendingTTL  time.Duration
}

func LoadBookingConfig() BookingConfig {
	cfg := BookingConfig{
		Currency:    Config("BOOKING_CURRENCY"),
		FrontendURL: Config("FRONTEND_URL"),
		PendingTTL:  24 * time.Hour,
	}

	if cfg.Currency == "" {
		cfg.Currency = "inr"
	}

	if raw := Config("BOOKING_PENDING_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			log.Printf("⚠️ Invalid BOOKING_PENDING_TTL %q, keeping default %s", raw, cfg.PendingTTL)
		} else {
			cfg.PendingTTL = ttl
		}
	}

	return cfg
}
