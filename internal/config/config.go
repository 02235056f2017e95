// Package config holds runtime settings for the storefront server, built from
// defaults overlaid with environment variables (optionally loaded from .env).
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds runtime settings for the server.
//
// Fields:
//   - JWTSecret: HMAC secret for signing and verifying every bearer token. The
//     same value serves issuance, the access gate and rate limit classification.
//   - RateLimitWindow / RateLimitAuthenticated / RateLimitAnonymous: fixed
//     window length and the per-window ceilings for each caller tier.
//   - RateLimitBackend: "memory" (single process) or "redis" (shared).
//   - TrustProxy: key the limiter on the first X-Forwarded-For entry.
type Config struct {
	Port   string
	AppEnv string

	MongoURI string
	MongoDB  string

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	RateLimitWindow        time.Duration
	RateLimitAuthenticated int
	RateLimitAnonymous     int
	RateLimitBackend       string
	TrustProxy             bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SMTPServer   string
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	MailRate     float64

	CORSOrigins []string
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// devSecret is only accepted outside production.
const devSecret = "dev-secret-change-me"

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Port = "8080"
	c.AppEnv = "development"
	c.MongoURI = "mongodb://localhost:27017"
	c.MongoDB = "storefront"
	c.JWTSecret = devSecret
	c.TokenTTL = time.Hour
	c.BcryptCost = 10
	c.RateLimitWindow = 15 * time.Minute
	c.RateLimitAuthenticated = 100
	c.RateLimitAnonymous = 20
	c.RateLimitBackend = BackendMemory
	c.RedisAddr = "localhost:6379"
	c.MailRate = 1
	c.CORSOrigins = []string{"*"}
}

// Production reports whether APP_ENV is "production".
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Production() && c.JWTSecret == devSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	// Reset codes are only logged without a relay, so production needs one.
	if c.Production() && c.SMTPServer == "" {
		errs = append(errs, errors.New("SMTP_SERVER is required in production"))
	}
	if c.Production() && c.MailFrom == "" {
		errs = append(errs, errors.New("MAIL_FROM or SMTP_USER is required in production"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	if c.RateLimitWindow <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.RateLimitWindow))
	}
	if c.RateLimitAuthenticated <= 0 || c.RateLimitAnonymous <= 0 {
		errs = append(errs, errors.New("rate limit ceilings must be positive"))
	}
	switch c.RateLimitBackend {
	case BackendMemory, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", c.RateLimitBackend))
	}
	if c.MailRate <= 0 {
		errs = append(errs, errors.New("MAIL_RATE must be positive"))
	}
	return errors.Join(errs...)
}

// Load builds a Config from defaults overlaid with the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := cfg.FromEnv(osLookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
