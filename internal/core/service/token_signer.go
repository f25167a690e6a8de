package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/societyhub/backoffice-api/internal/core/domain"
	"github.com/societyhub/backoffice-api/internal/core/ports"
)

// minSigningKeyBytes is the minimum HMAC key length. A shorter key is a
// fatal configuration error at construction time, not at first request.
const minSigningKeyBytes = 32

// tokenClaims is the claim set carried inside every signed token.
type tokenClaims struct {
	TenantID      string `json:"tenantId,omitempty"`
	Role          string `json:"role"`
	TokenType     string `json:"tokenType"`
	PrincipalType string `json:"principalType"`
	TokenVersion  int64  `json:"tokenVersion,omitempty"`
	jwt.RegisteredClaims
}

type tokenSigner struct {
	key      []byte
	versions ports.TokenVersionSource
}

// NewTokenSigner builds an HS256 token signer. versions resolves the current
// revocation counter for root subjects and may be nil when root tokens are
// never verified (tests, tooling).
func NewTokenSigner(key string, versions ports.TokenVersionSource) (ports.TokenSigner, error) {
	if len(key) < minSigningKeyBytes {
		return nil, fmt.Errorf("token signer: signing key must be at least %d bytes, got %d", minSigningKeyBytes, len(key))
	}
	return &tokenSigner{key: []byte(key), versions: versions}, nil
}

func (s *tokenSigner) Issue(subject, tenantID, role string, kind domain.TokenType, ttl time.Duration) (string, error) {
	if subject == "" || tenantID == "" || role == "" {
		return "", fmt.Errorf("token signer: %w", domain.ErrTokenInvalid)
	}
	return s.sign(tokenClaims{
		TenantID:         tenantID,
		Role:             role,
		TokenType:        string(kind),
		PrincipalType:    string(domain.PrincipalUser),
		RegisteredClaims: registeredClaims(subject, ttl),
	})
}

func (s *tokenSigner) IssueRoot(subject string, tokenVersion int64, kind domain.TokenType, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("token signer: %w", domain.ErrTokenInvalid)
	}
	return s.sign(tokenClaims{
		Role:             domain.RoleRoot,
		TokenType:        string(kind),
		PrincipalType:    string(domain.PrincipalRoot),
		TokenVersion:     tokenVersion,
		RegisteredClaims: registeredClaims(subject, ttl),
	})
}

// Verify checks signature, expiry and structural well-formedness, and
// reconstructs the Principal. All failures come back as typed domain errors.
func (s *tokenSigner) Verify(ctx context.Context, token string) (domain.Principal, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Principal{}, domain.ErrTokenExpired
		}
		return domain.Principal{}, domain.ErrTokenInvalid
	}
	if !parsed.Valid {
		return domain.Principal{}, domain.ErrTokenInvalid
	}

	p, err := claims.principal()
	if err != nil {
		return domain.Principal{}, err
	}

	// Root tokens older than the account's recorded version have been bulk
	// revoked.
	if p.IsRoot() && s.versions != nil {
		current, err := s.versions.CurrentTokenVersion(ctx, p.Subject)
		if err != nil {
			return domain.Principal{}, fmt.Errorf("token signer: resolve token version: %w", err)
		}
		if p.TokenVersion < current {
			return domain.Principal{}, domain.ErrTokenRevoked
		}
	}

	return p, nil
}

func (s *tokenSigner) sign(c tokenClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.key)
}

func registeredClaims(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now().UTC()
	return jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// principal validates the claim set's structure and converts it.
func (c *tokenClaims) principal() (domain.Principal, error) {
	kind := domain.TokenType(c.TokenType)
	if kind != domain.TokenAccess && kind != domain.TokenRefresh {
		return domain.Principal{}, domain.ErrTokenInvalid
	}

	switch domain.PrincipalType(c.PrincipalType) {
	case domain.PrincipalUser:
		if c.Subject == "" || c.TenantID == "" || c.Role == "" {
			return domain.Principal{}, domain.ErrTokenInvalid
		}
	case domain.PrincipalRoot:
		if c.Subject == "" {
			return domain.Principal{}, domain.ErrTokenInvalid
		}
	default:
		return domain.Principal{}, domain.ErrTokenInvalid
	}

	return domain.Principal{
		Subject:      c.Subject,
		TenantID:     c.TenantID,
		Role:         c.Role,
		Type:         domain.PrincipalType(c.PrincipalType),
		TokenType:    kind,
		TokenVersion: c.TokenVersion,
	}, nil
}

// StripBearer removes a leading "Bearer " scheme prefix from a raw
// Authorization header value. A value without the prefix passes through
// unchanged.
func StripBearer(header string) string {
	const prefix = "bearer "
	if len(header) >= len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return header
}
