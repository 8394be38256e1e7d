package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTP         HTTPConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Stripe       StripeConfig
	Email        EmailConfig
	Reservation  ReservationConfig
	Tracing      TracingConfig
	ListingCache ListingCacheConfig
}

type HTTPConfig struct {
	Addr string `env:"HTTP_ADDR" env-default:":8080"`
	// AdminToken guards the catalog write and booking list endpoints.
	AdminToken string `env:"ADMIN_API_TOKEN" env-required:"true"`
}

type PostgresConfig struct {
	URL string `env:"POSTGRES_URL" env-required:"true"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR" env-required:"true"`
}

type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY" env-required:"true"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET" env-required:"true"`
	SuccessURL    string `env:"CHECKOUT_SUCCESS_URL" env-default:"http://localhost:3000/reservation/success?booking_id={BOOKING_ID}"`
	CancelURL     string `env:"CHECKOUT_CANCEL_URL" env-default:"http://localhost:3000/reservation/cancel?booking_id={BOOKING_ID}"`
}

type EmailConfig struct {
	ResendAPIKey string `env:"RESEND_API_KEY" env-required:"true"`
	From         string `env:"EMAIL_FROM" env-default:"Reservations <reservations@example.com>"`
	AdminAddress string `env:"ADMIN_EMAIL" env-required:"true"`
}

type ReservationConfig struct {
	// PendingTTL bounds how long an unpaid booking may stay pending.
	// The payment gateway refuses session expiry below 30 minutes.
	PendingTTL     time.Duration `env:"PENDING_BOOKING_TTL" env-default:"35m"`
	ReaperInterval time.Duration `env:"REAPER_INTERVAL" env-default:"1m"`
}

type TracingConfig struct {
	JaegerEndpoint string `env:"JAEGER_ENDPOINT"`
	GatewayAddr    string `env:"GATEWAY_ADDR"`
}

type ListingCacheConfig struct {
	TTL time.Duration `env:"LISTING_CACHE_TTL" env-default:"5m"`
}

func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("could not read config from env: %w", err)
	}

	if cfg.Reservation.PendingTTL < 30*time.Minute {
		return Config{}, fmt.Errorf("PENDING_BOOKING_TTL must be at least 30m, got %s", cfg.Reservation.PendingTTL)
	}
	if cfg.Reservation.ReaperInterval <= 0 {
		return Config{}, fmt.Errorf("REAPER_INTERVAL must be positive, got %s", cfg.Reservation.ReaperInterval)
	}

	return cfg, nil
}

func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
