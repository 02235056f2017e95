package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// ClientKey identifies the client by network address. X-Forwarded-For is only
// honoured when the service runs behind a trusted proxy; otherwise any client
// could pick its own bucket.
func ClientKey(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
