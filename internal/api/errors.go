package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"storefront/internal/auth"
	"storefront/internal/ratelimit"
)

// statusError carries a status and a client-facing message chosen by a handler.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string { return e.message }

func badRequest(msg string) error { return &statusError{status: http.StatusBadRequest, message: msg} }

func notFound(msg string) error { return &statusError{status: http.StatusNotFound, message: msg} }

var (
	errBadPayload   = badRequest("Invalid request payload")
	errBodyTooLarge = &statusError{status: http.StatusRequestEntityTooLarge, message: "Request body too large"}
)

// classify maps an error to its status code and client message. Unknown
// errors are internal.
func classify(err error) (int, string) {
	var se *statusError
	var ve *auth.ValidationError
	switch {
	case errors.As(err, &se):
		return se.status, se.message
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, auth.ErrInvalidOTP):
		return http.StatusBadRequest, "Invalid OTP"
	case errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized, "Access token required"
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, ratelimit.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests, please try again later"
	}
	return http.StatusInternalServerError, err.Error()
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status < http.StatusInternalServerError {
		writeJSONError(w, status, msg)
		return
	}

	s.log.Error(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	if s.production {
		msg = "Internal Server Error"
	}
	writeJSON(w, status, map[string]string{
		"error":     msg,
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

// writeJSONError is a helper that writes an error response in JSON.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return errBadPayload
	}
	return nil
}
