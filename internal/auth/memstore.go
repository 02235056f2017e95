package auth

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

// MemoryStore is an in-process CredentialStore for tests and local runs
// without MongoDB.
type MemoryStore struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byEmail: map[string]*models.User{}}
}

func (s *MemoryStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[u.Email]; exists {
		return ErrUserExists
	}
	for _, existing := range s.byEmail {
		if existing.Username == u.Username {
			return ErrUserExists
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	clone := *u
	s.byEmail[u.Email] = &clone
	return nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *MemoryStore) SetOTP(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[email]
	if !ok {
		return ErrUserNotFound
	}
	u.OTP = code
	return nil
}

func (s *MemoryStore) ResetPassword(_ context.Context, email, code, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[email]
	if !ok || u.OTP == "" || u.OTP != code {
		return ErrInvalidOTP
	}
	u.PasswordHash = passwordHash
	u.OTP = ""
	return nil
}
