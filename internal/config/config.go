package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultLocation is offered when a request does not name a bay.
const DefaultLocation = "That Golf Place - Main Location"

type Config struct {
	Port string

	OpenHour        int
	CloseHour       int
	SlotStepMinutes int
	Timezone        *time.Location

	HourlyRateCents int64
	CancelCutoff    time.Duration
	PendingTTL      time.Duration
	Locations       []string
	DefaultLocation string

	JWTSecret           []byte
	StripeSecretKey     string
	StripeWebhookSecret string
}

// Load reads configuration from the environment. Every knob has a
// default except the secrets, which are required.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            envDefault("PORT", "8080"),
		OpenHour:        envInt("OPEN_HOUR", 6),
		CloseHour:       envInt("CLOSE_HOUR", 22),
		SlotStepMinutes: envInt("SLOT_STEP_MINUTES", 30),
		HourlyRateCents: int64(envInt("HOURLY_RATE_CENTS", 4500)),
		CancelCutoff:    time.Duration(envInt("CANCEL_CUTOFF_HOURS", 24)) * time.Hour,
		PendingTTL:      time.Duration(envInt("PENDING_TTL_HOURS", 24)) * time.Hour,
		DefaultLocation: envDefault("DEFAULT_LOCATION", DefaultLocation),
	}

	if cfg.SlotStepMinutes <= 0 || cfg.SlotStepMinutes > 60 {
		return nil, fmt.Errorf("SLOT_STEP_MINUTES must be between 1 and 60, got %d", cfg.SlotStepMinutes)
	}

	if raw := strings.TrimSpace(os.Getenv("LOCATIONS")); raw != "" {
		for _, l := range strings.Split(raw, ",") {
			cfg.Locations = append(cfg.Locations, strings.TrimSpace(l))
		}
	} else {
		cfg.Locations = []string{cfg.DefaultLocation}
	}

	tzName := envDefault("BOOKING_TZ", "America/New_York")
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_TZ %q: %w", tzName, err)
	}
	cfg.Timezone = tz

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	cfg.JWTSecret = []byte(secret)

	cfg.StripeSecretKey = os.Getenv("STRIPE_SECRET_KEY")
	if cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY not set")
	}
	cfg.StripeWebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")
	if cfg.StripeWebhookSecret == "" {
		return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET not set")
	}
	return cfg, nil
}

func envDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
