package ports

import (
	"context"

	"github.com/societyhub/backoffice-api/internal/core/domain"
)

// TokenPair is the access/refresh token pair returned by every login flow.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	// Login authenticates a tenant user by email and password.
	Login(ctx context.Context, email, password string) (TokenPair, *domain.User, error)
	// RootLogin authenticates the platform root account. The issued tokens
	// carry the account's current token version.
	RootLogin(ctx context.Context, email, password string) (TokenPair, error)
	// SendOTP generates and stores a one-time code for the given phone.
	SendOTP(ctx context.Context, phone string) error
	// LoginWithOTP exchanges a previously sent code for a token pair.
	LoginWithOTP(ctx context.Context, phone, code string) (TokenPair, *domain.User, error)
	// RevokeRootTokens bumps the root account's token version, invalidating
	// every root token issued before the call. Returns the new version.
	RevokeRootTokens(ctx context.Context, subject string) (int64, error)
}
