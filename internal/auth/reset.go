package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"storefront/internal/logging"
	"storefront/internal/mail"
)

const (
	otpMin  = 100000
	otpSpan = 900000 // codes are drawn from [otpMin, otpMin+otpSpan)
)

// ResetFlow issues and consumes single-use numeric password reset codes.
// Each user has at most one live code; issuing a new one replaces the old.
type ResetFlow struct {
	store    CredentialStore
	hasher   Hasher
	notifier mail.Notifier
	log      logging.Logger
	newCode  func() (string, error)
}

func NewResetFlow(store CredentialStore, hasher Hasher, notifier mail.Notifier, log logging.Logger) *ResetFlow {
	return &ResetFlow{
		store:    store,
		hasher:   hasher,
		notifier: notifier,
		log:      log.With("component", "password_reset"),
		newCode:  generateCode,
	}
}

// RequestReset stores a fresh code on the account for email and mails it to
// the account address. Unknown emails return ErrUserNotFound without side
// effects. The send is awaited; a failed delivery returns ErrDelivery.
func (f *ResetFlow) RequestReset(ctx context.Context, email string) error {
	u, err := f.store.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}

	code, err := f.newCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := f.store.SetOTP(ctx, u.Email, code); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	msg := mail.Message{
		To:      u.Email,
		Subject: "Password Reset OTP",
		Body:    fmt.Sprintf("Your OTP is: %s", code),
	}
	if err := f.notifier.Notify(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	f.log.Info(ctx, "password reset code issued", "user_id", u.ID.Hex())
	return nil
}

// ConfirmReset replaces the password of the account for email when code equals
// its live reset code, and consumes the code. Unknown accounts, missing codes
// and mismatches all yield ErrInvalidOTP. The new password is checked first, so
// a rejected password reveals nothing about the code.
func (f *ResetFlow) ConfirmReset(ctx context.Context, email, code, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	email = normalizeEmail(email)
	u, err := f.store.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return ErrInvalidOTP
	}
	if err != nil {
		return err
	}
	if u.OTP == "" || subtle.ConstantTimeCompare([]byte(u.OTP), []byte(code)) != 1 {
		return ErrInvalidOTP
	}

	hash, err := f.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	// The store re-checks the code, so two racing confirms cannot both win.
	if err := f.store.ResetPassword(ctx, email, code, hash); err != nil {
		return err
	}

	f.log.Info(ctx, "password reset completed", "user_id", u.ID.Hex())
	return nil
}

// generateCode draws a six digit code uniformly from [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(otpMin+n.Int64(), 10), nil
}
