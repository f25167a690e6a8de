package ports

import (
	"context"
	"time"

	"github.com/societyhub/backoffice-api/internal/core/domain"
)

// UserRepository defines the interface for tenant user persistence.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// OTPStore holds short-lived one-time codes keyed by phone number.
type OTPStore interface {
	Save(ctx context.Context, phone, code string, ttl time.Duration) error
	// Consume returns the stored code and deletes it. A missing or expired
	// code yields domain.ErrInvalidCredentials.
	Consume(ctx context.Context, phone string) (string, error)
}
