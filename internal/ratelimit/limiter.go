// Package ratelimit counts requests per client in fixed windows and rejects
// clients that exceed the ceiling of their tier. Callers presenting a valid
// bearer token get the authenticated ceiling, everyone else the anonymous one.
package ratelimit

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/auth"
	"storefront/internal/logging"
)

var (
	// ErrRateLimited is returned once a client exceeded its ceiling for the current window.
	ErrRateLimited = errors.New("rate limited")
	// ErrStoreUnavailable wraps failures of the counter backend.
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
)

// Tier is the authentication class a request is counted under.
type Tier int

const (
	Anonymous Tier = iota
	Authenticated
)

func (t Tier) String() string {
	if t == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Store counts hits per key in fixed windows.
type Store interface {
	// Hit records one request for key and returns the number of requests in
	// the current window, including this one, and when that window ends. The
	// first hit for a key, or the first after its window elapsed, opens a new window.
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

type Config struct {
	Window             time.Duration
	AuthenticatedLimit int
	AnonymousLimit     int
	// TrustProxy keys clients on the first X-Forwarded-For entry.
	TrustProxy bool
}

type Limiter struct {
	store    Store
	verifier auth.TokenVerifier
	cfg      Config
	log      logging.Logger
	now      func() time.Time
}

// New builds a Limiter. verifier must be the same token service that issues
// tokens, otherwise every caller is classified anonymous.
func New(store Store, verifier auth.TokenVerifier, cfg Config, log logging.Logger) *Limiter {
	return &Limiter{
		store:    store,
		verifier: verifier,
		cfg:      cfg,
		log:      log.With("component", "ratelimit"),
		now:      time.Now,
	}
}

// Classify returns Authenticated when the request carries a bearer token that
// verifies. Missing, malformed and invalid tokens all classify as Anonymous.
func (l *Limiter) Classify(r *http.Request) Tier {
	token, ok := auth.BearerToken(r)
	if !ok {
		return Anonymous
	}
	if _, err := l.verifier.Verify(token); err != nil {
		return Anonymous
	}
	return Authenticated
}

// Limit returns the per-window ceiling of tier.
func (l *Limiter) Limit(tier Tier) int {
	if tier == Authenticated {
		return l.cfg.AuthenticatedLimit
	}
	return l.cfg.AnonymousLimit
}

// Check is a pipeline step. It counts the request against its client's window,
// sets the RateLimit-* headers and returns ErrRateLimited once the ceiling is
// exceeded. Store failures are logged and the request is let through.
func (l *Limiter) Check(w http.ResponseWriter, r *http.Request) (*http.Request, error) {
	tier := l.Classify(r)
	limit := l.Limit(tier)
	key := ClientKey(r, l.cfg.TrustProxy)

	count, resetAt, err := l.store.Hit(r.Context(), key, l.cfg.Window)
	if err != nil {
		l.log.Warn(r.Context(), "rate limit store failed; allowing request", "key", key, "error", err)
		return r, nil
	}

	resetIn := secondsUntil(l.now(), resetAt)
	h := w.Header()
	h.Set("RateLimit-Limit", strconv.Itoa(limit))
	h.Set("RateLimit-Remaining", strconv.FormatInt(max(int64(limit)-count, 0), 10))
	h.Set("RateLimit-Reset", strconv.Itoa(resetIn))

	if count > int64(limit) {
		h.Set("Retry-After", strconv.Itoa(resetIn))
		l.log.Info(r.Context(), "rate limit exceeded", "key", key, "tier", tier.String(), "count", count)
		return nil, ErrRateLimited
	}
	return r, nil
}

func secondsUntil(now, t time.Time) int {
	d := t.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
