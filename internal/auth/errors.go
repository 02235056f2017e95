package auth

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidOTP         = errors.New("invalid otp")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrMissingToken means no bearer credential was presented.
	ErrMissingToken = errors.New("access token required")
	// ErrInvalidToken covers bad signatures, unexpected algorithms, malformed and expired tokens.
	ErrInvalidToken = errors.New("invalid token")

	ErrHashing  = errors.New("password hashing failed")
	ErrDelivery = errors.New("otp delivery failed")
)

// ValidationError reports the first input rule a request violated. Message is
// safe to return to the client verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
