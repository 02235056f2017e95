package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

var osLookup LookupFunc = os.LookupEnv

// FromEnv overlays every variable that is set on top of the current values.
// Unset variables keep their defaults; malformed numbers and durations are errors.
func (c *Config) FromEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	var err error
	integer := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || err != nil {
			return
		}
		n, perr := strconv.Atoi(strings.TrimSpace(v))
		if perr != nil {
			err = fmt.Errorf("%s: %w", key, perr)
			return
		}
		*dst = n
	}
	duration := func(key string, dst *time.Duration) {
		v, ok := lookup(key)
		if !ok || err != nil {
			return
		}
		d, perr := time.ParseDuration(strings.TrimSpace(v))
		if perr != nil {
			err = fmt.Errorf("%s: %w", key, perr)
			return
		}
		*dst = d
	}
	boolean := func(key string, dst *bool) {
		v, ok := lookup(key)
		if !ok || err != nil {
			return
		}
		b, perr := strconv.ParseBool(strings.TrimSpace(v))
		if perr != nil {
			err = fmt.Errorf("%s: %w", key, perr)
			return
		}
		*dst = b
	}

	str("PORT", &c.Port)
	str("APP_ENV", &c.AppEnv)
	str("MONGO_URI", &c.MongoURI)
	str("MONGO_DB", &c.MongoDB)
	str("JWT_SECRET", &c.JWTSecret)
	duration("TOKEN_TTL", &c.TokenTTL)
	integer("BCRYPT_COST", &c.BcryptCost)

	duration("RATE_LIMIT_WINDOW", &c.RateLimitWindow)
	integer("RATE_LIMIT_AUTHENTICATED", &c.RateLimitAuthenticated)
	integer("RATE_LIMIT_ANONYMOUS", &c.RateLimitAnonymous)
	str("RATE_LIMIT_BACKEND", &c.RateLimitBackend)
	boolean("TRUST_PROXY", &c.TrustProxy)

	str("REDIS_ADDR", &c.RedisAddr)
	str("REDIS_PASSWORD", &c.RedisPassword)
	integer("REDIS_DB", &c.RedisDB)

	str("SMTP_SERVER", &c.SMTPServer)
	str("SMTP_USER", &c.SMTPUser)
	str("SMTP_PASSWORD", &c.SMTPPassword)
	str("MAIL_FROM", &c.MailFrom)
	if v, ok := lookup("MAIL_RATE"); ok && err == nil {
		f, perr := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if perr != nil {
			err = fmt.Errorf("MAIL_RATE: %w", perr)
		} else {
			c.MailRate = f
		}
	}

	if v, ok := lookup("CORS_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORSOrigins = origins
	}

	c.RateLimitBackend = strings.ToLower(c.RateLimitBackend)
	if c.MailFrom == "" {
		c.MailFrom = c.SMTPUser
	}
	return err
}
