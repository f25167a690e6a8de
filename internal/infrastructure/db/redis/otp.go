package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/societyhub/backoffice-api/internal/core/domain"
)

// OTPStore holds one-time login codes in Redis with a TTL.
// Key format: otp:<phone>
type OTPStore struct {
	client *redis.Client
}

// NewOTPStore creates an OTPStore wrapping the given Redis client.
func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

// Save stores the code, replacing any previous one for the same phone.
func (s *OTPStore) Save(ctx context.Context, phone, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(phone), code, ttl).Err(); err != nil {
		return fmt.Errorf("otp save: %w", err)
	}
	return nil
}

// Consume returns the stored code and deletes it in a single round trip, so
// a code can never be exchanged twice.
func (s *OTPStore) Consume(ctx context.Context, phone string) (string, error) {
	code, err := s.client.GetDel(ctx, s.key(phone)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("otp consume: %w", err)
	}
	return code, nil
}

func (s *OTPStore) key(phone string) string {
	return "otp:" + phone
}
