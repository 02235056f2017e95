package auth

import (
	"context"
	"net/http"
	"strings"
)

type claimsKey struct{}

// WithClaims attaches verified claims to ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims stored by the access gate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
// Any other shape is reported as absent.
func BearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(prefix):])
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// Gate is a pipeline step protecting an operation. It rejects requests without
// a valid bearer token and otherwise continues with the claims in the context.
func Gate(v TokenVerifier) func(http.ResponseWriter, *http.Request) (*http.Request, error) {
	return func(_ http.ResponseWriter, r *http.Request) (*http.Request, error) {
		token, ok := BearerToken(r)
		if !ok {
			return nil, ErrMissingToken
		}
		claims, err := v.Verify(token)
		if err != nil {
			return nil, err
		}
		return r.WithContext(WithClaims(r.Context(), claims)), nil
	}
}
