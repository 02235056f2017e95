package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/auth"
	"storefront/internal/logging"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestLimiter(t *testing.T) (*Limiter, *fakeClock, *auth.TokenService) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	store := NewMemoryStore()
	store.now = clock.Now
	tokens := auth.NewTokenService([]byte("secret"), 24*time.Hour, auth.WithClock(clock.Now))

	l := New(store, tokens, Config{
		Window:             15 * time.Minute,
		AuthenticatedLimit: 100,
		AnonymousLimit:     20,
	}, discardLogger())
	l.now = clock.Now
	return l, clock, tokens
}

func request(remoteAddr, authorization string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/products", nil)
	r.RemoteAddr = remoteAddr
	if authorization != "" {
		r.Header.Set("Authorization", authorization)
	}
	return r
}

func TestLimiter_AnonymousCeilingAndRollover(t *testing.T) {
	l, clock, _ := newTestLimiter(t)

	for i := 1; i <= 20; i++ {
		_, err := l.Check(httptest.NewRecorder(), request("10.0.0.1:5000", ""))
		require.NoError(t, err, "request %d", i)
	}

	rec := httptest.NewRecorder()
	_, err := l.Check(rec, request("10.0.0.1:5000", ""))
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, "20", rec.Header().Get("RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("RateLimit-Remaining"))
	assert.Equal(t, "900", rec.Header().Get("Retry-After"))

	clock.Advance(14 * time.Minute)
	_, err = l.Check(httptest.NewRecorder(), request("10.0.0.1:5000", ""))
	require.ErrorIs(t, err, ErrRateLimited, "still inside the window")

	clock.Advance(time.Minute)
	rec = httptest.NewRecorder()
	_, err = l.Check(rec, request("10.0.0.1:5000", ""))
	require.NoError(t, err)
	assert.Equal(t, "19", rec.Header().Get("RateLimit-Remaining"))
}

func TestLimiter_AuthenticatedCeiling(t *testing.T) {
	l, _, tokens := newTestLimiter(t)
	tok, _, err := tokens.Issue(auth.Subject{ID: "u1", Username: "bob1"})
	require.NoError(t, err)

	for i := 1; i <= 100; i++ {
		_, err := l.Check(httptest.NewRecorder(), request("10.0.0.2:5000", "Bearer "+tok))
		require.NoError(t, err, "request %d", i)
	}
	_, err = l.Check(httptest.NewRecorder(), request("10.0.0.2:5000", "Bearer "+tok))
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestLimiter_InvalidTokenDemotesWithoutRejecting(t *testing.T) {
	l, _, _ := newTestLimiter(t)

	r := request("10.0.0.3:5000", "Bearer forged.token.value")
	assert.Equal(t, Anonymous, l.Classify(r))

	next, err := l.Check(httptest.NewRecorder(), r)
	require.NoError(t, err)
	assert.Same(t, r, next)

	for i := 2; i <= 20; i++ {
		_, err := l.Check(httptest.NewRecorder(), request("10.0.0.3:5000", "Bearer forged.token.value"))
		require.NoError(t, err)
	}
	_, err = l.Check(httptest.NewRecorder(), request("10.0.0.3:5000", "Bearer forged.token.value"))
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestLimiter_ExpiredTokenIsAnonymous(t *testing.T) {
	l, clock, tokens := newTestLimiter(t)
	tok, _, err := tokens.Issue(auth.Subject{ID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, Authenticated, l.Classify(request("10.0.0.4:5000", "Bearer "+tok)))
	clock.Advance(25 * time.Hour)
	assert.Equal(t, Anonymous, l.Classify(request("10.0.0.4:5000", "Bearer "+tok)))
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l, _, _ := newTestLimiter(t)
	for i := 0; i < 21; i++ {
		_, _ = l.Check(httptest.NewRecorder(), request("10.0.0.5:5000", ""))
	}
	_, err := l.Check(httptest.NewRecorder(), request("10.0.0.6:5000", ""))
	assert.NoError(t, err)
}

type failingStore struct{}

func (failingStore) Hit(context.Context, string, time.Duration) (int64, time.Time, error) {
	return 0, time.Time{}, errors.New("down")
}

func TestLimiter_StoreFailureAllows(t *testing.T) {
	l := New(failingStore{}, auth.NewTokenService([]byte("s"), time.Hour), Config{
		Window: time.Minute, AuthenticatedLimit: 1, AnonymousLimit: 1,
	}, discardLogger())

	r := request("10.0.0.7:5000", "")
	next, err := l.Check(httptest.NewRecorder(), r)
	require.NoError(t, err)
	assert.Same(t, r, next)
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "anonymous", Anonymous.String())
	assert.Equal(t, "authenticated", Authenticated.String())
}
