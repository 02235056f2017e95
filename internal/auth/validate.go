package auth

import (
	"regexp"
	"strings"
)

var (
	reUsername = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	reEmail    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	reDigit    = regexp.MustCompile(`[0-9]`)
)

const (
	msgUsername = "Username must be at least 3 characters and alphanumeric"
	msgEmail    = "Valid email is required"
	msgPassword = "Password must be at least 8 characters with one number"
)

// ValidateSignup checks a signup candidate. Rules are evaluated username, email,
// password and the first violation is returned as a *ValidationError.
func ValidateSignup(username, email, password string) error {
	if len(username) < 3 || !reUsername.MatchString(username) {
		return &ValidationError{Message: msgUsername}
	}
	if !reEmail.MatchString(email) {
		return &ValidationError{Message: msgEmail}
	}
	return ValidatePassword(password)
}

// ValidatePassword requires at least 8 characters including one digit.
func ValidatePassword(password string) error {
	if len(password) < 8 || !reDigit.MatchString(password) {
		return &ValidationError{Message: msgPassword}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
