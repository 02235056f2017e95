package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func nopWriter() http.ResponseWriter { return httptest.NewRecorder() }

func TestClientKey(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		trustProxy bool
		want       string
	}{
		{"remote addr host", "192.0.2.1:1234", "", false, "192.0.2.1"},
		{"xff ignored without trust", "192.0.2.1:1234", "203.0.113.9", false, "192.0.2.1"},
		{"xff first entry with trust", "192.0.2.1:1234", "203.0.113.9, 10.0.0.1", true, "203.0.113.9"},
		{"empty xff falls back", "192.0.2.1:1234", " ", true, "192.0.2.1"},
		{"ipv6", "[2001:db8::1]:443", "", false, "2001:db8::1"},
		{"no port", "192.0.2.7", "", false, "192.0.2.7"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			assert.Equal(t, tc.want, ClientKey(r, tc.trustProxy))
		})
	}
}
