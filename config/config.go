package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds every runtime setting for the server. It is built once in main
// and passed by pointer; nothing reads the environment after startup.
//
// Fields:
//   - Env: "development" or "production"; controls error verbosity and the
//     Secure flag on the session cookie.
//   - JWTSecret: HMAC secret for signing session tokens (HS256). Required.
//   - JWTExpiresIn: session token lifetime.
//   - JWTCookieDays: expiry of the session cookie, in days from issuance.
//   - ResetTokenTTL: validity window of a password reset token.
type Config struct {
	Env           string
	Port          string
	MongoURI      string
	MongoDB       string
	JWTSecret     string
	JWTExpiresIn  time.Duration
	JWTCookieDays int
	ResetTokenTTL time.Duration
	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPass      string
	EmailFrom     string
}

// loadDefaults populates development defaults. The JWT secret has no default
// on purpose.
func (c *Config) loadDefaults() {
	c.Env = "development"
	c.Port = "8080"
	c.MongoURI = "mongodb://localhost:27017"
	c.MongoDB = "go-tours"
	c.JWTExpiresIn = 90 * 24 * time.Hour
	c.JWTCookieDays = 90
	c.ResetTokenTTL = 10 * time.Minute
	c.EmailFrom = "Go Tours <noreply@go-tours.dev>"
}

// Load builds a Config by applying defaults and then overlaying values from
// the environment. It fails if JWT_SECRET is not set.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.loadDefaults()

	overlayString(&cfg.Env, "APP_ENV")
	overlayString(&cfg.Port, "PORT")
	overlayString(&cfg.MongoURI, "MONGO_URI")
	overlayString(&cfg.MongoDB, "MONGO_DB")
	overlayString(&cfg.JWTSecret, "JWT_SECRET")
	overlayDuration(&cfg.JWTExpiresIn, "JWT_EXPIRES_IN")
	overlayInt(&cfg.JWTCookieDays, "JWT_COOKIE_DAYS")
	overlayDuration(&cfg.ResetTokenTTL, "RESET_TOKEN_TTL")
	overlayString(&cfg.SMTPHost, "SMTP_HOST")
	overlayString(&cfg.SMTPPort, "SMTP_PORT")
	overlayString(&cfg.SMTPUser, "SMTP_USER")
	overlayString(&cfg.SMTPPass, "SMTP_PASS")
	overlayString(&cfg.EmailFrom, "EMAIL_FROM")

	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET not set in env")
	}
	return cfg, nil
}

// Production reports whether the server runs with production hardening
// (opaque errors, Secure cookies).
func (c *Config) Production() bool {
	return c.Env == "production"
}

func overlayString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func overlayInt(dst *int, key string) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

func overlayDuration(dst *time.Duration, key string) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
