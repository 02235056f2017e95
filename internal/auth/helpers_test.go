package auth

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/logging"
	"storefront/internal/mail"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func cheapHasher() *PasswordHasher {
	return NewPasswordHasher(bcrypt.MinCost)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
