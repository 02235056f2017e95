package auth

import (
	"context"

	"storefront/internal/models"
)

// CredentialStore persists user identity, password hash and the pending reset code.
//
// Implementations return ErrUserNotFound for unknown emails and ErrUserExists
// when Create violates username or email uniqueness.
type CredentialStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// SetOTP stores code as the only live reset code for email.
	SetOTP(ctx context.Context, email, code string) error
	// ResetPassword replaces the password hash and clears the reset code in one
	// step, only while the stored code still equals code. Otherwise it returns
	// ErrInvalidOTP and changes nothing.
	ResetPassword(ctx context.Context, email, code, passwordHash string) error
}
