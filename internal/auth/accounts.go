package auth

import (
	"context"
	"errors"
	"time"

	"storefront/internal/logging"
	"storefront/internal/models"
)

// Accounts creates users and signs them in.
type Accounts struct {
	store  CredentialStore
	hasher Hasher
	tokens *TokenService
	log    logging.Logger
}

func NewAccounts(store CredentialStore, hasher Hasher, tokens *TokenService, log logging.Logger) *Accounts {
	return &Accounts{store: store, hasher: hasher, tokens: tokens, log: log.With("component", "accounts")}
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Signup validates the candidate, hashes the password and stores the user.
// Nothing is hashed or stored when validation fails.
func (a *Accounts) Signup(ctx context.Context, username, email, password string) (*models.User, error) {
	if err := ValidateSignup(username, email, password); err != nil {
		return nil, err
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Username:     username,
		Email:        normalizeEmail(email),
		PasswordHash: hash,
	}
	if err := a.store.Create(ctx, u); err != nil {
		return nil, err
	}

	a.log.Info(ctx, "user signed up", "user_id", u.ID.Hex(), "username", u.Username)
	return u, nil
}

// SignIn checks the credentials and issues a bearer token. Unknown emails and
// wrong passwords both return ErrInvalidCredentials.
func (a *Accounts) SignIn(ctx context.Context, email, password string) (*Session, error) {
	u, err := a.store.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !a.hasher.Verify(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := a.tokens.Issue(Subject{ID: u.ID.Hex(), Username: u.Username})
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}
