package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/societyhub/backoffice-api/internal/core/domain"
	"github.com/societyhub/backoffice-api/internal/core/ports"
)

const otpTTL = 5 * time.Minute

// AuthService implements the three login flows: password, root and OTP.
type AuthService struct {
	users      ports.UserRepository
	roots      ports.RootAccountRepository
	otp        ports.OTPStore
	signer     ports.TokenSigner
	audit      ports.AuditSink
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	roots ports.RootAccountRepository,
	otp ports.OTPStore,
	signer ports.TokenSigner,
	audit ports.AuditSink,
	accessTTL, refreshTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * time.Hour
	}
	return &AuthService{
		users:      users,
		roots:      roots,
		otp:        otp,
		signer:     signer,
		audit:      audit,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

// Login authenticates a tenant user by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (ports.TokenPair, *domain.User, error) {
	if email == "" || password == "" {
		return ports.TokenPair{}, nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return ports.TokenPair{}, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ports.TokenPair{}, nil, domain.ErrInvalidCredentials
	}

	pair, err := s.userTokenPair(user)
	if err != nil {
		return ports.TokenPair{}, nil, err
	}
	return pair, user, nil
}

// RootLogin authenticates the platform root account and embeds its current
// token version so the tokens can be bulk-revoked later.
func (s *AuthService) RootLogin(ctx context.Context, email, password string) (ports.TokenPair, error) {
	if email == "" || password == "" {
		return ports.TokenPair{}, domain.ErrInvalidCredentials
	}

	root, err := s.roots.FindByEmail(ctx, email)
	if err != nil {
		return ports.TokenPair{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(root.PasswordHash), []byte(password)) != nil {
		return ports.TokenPair{}, domain.ErrInvalidCredentials
	}

	access, err := s.signer.IssueRoot(root.ID, root.TokenVersion, domain.TokenAccess, s.accessTTL)
	if err != nil {
		return ports.TokenPair{}, s.issueFailed(err)
	}
	refresh, err := s.signer.IssueRoot(root.ID, root.TokenVersion, domain.TokenRefresh, s.refreshTTL)
	if err != nil {
		return ports.TokenPair{}, s.issueFailed(err)
	}

	return ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// SendOTP generates a 6-digit code and stores it with a short TTL. The
// delivery channel (SMS gateway) is an external collaborator; only the code
// lifecycle lives here.
func (s *AuthService) SendOTP(ctx context.Context, phone string) error {
	if phone == "" {
		return domain.ErrInvalidCredentials
	}

	// Confirm the phone belongs to a known user before issuing a code.
	if _, err := s.users.FindByPhone(ctx, phone); err != nil {
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	if err := s.otp.Save(ctx, phone, code, otpTTL); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}

	s.log.Info().Str("phone", maskPhone(phone)).Msg("otp issued")
	return nil
}

// LoginWithOTP exchanges a previously sent code for a token pair. Codes are
// single use; a correct code consumed twice fails the second time.
func (s *AuthService) LoginWithOTP(ctx context.Context, phone, code string) (ports.TokenPair, *domain.User, error) {
	if phone == "" || code == "" {
		return ports.TokenPair{}, nil, domain.ErrInvalidCredentials
	}

	stored, err := s.otp.Consume(ctx, phone)
	if err != nil {
		return ports.TokenPair{}, nil, err
	}
	if stored != code {
		return ports.TokenPair{}, nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		return ports.TokenPair{}, nil, err
	}

	pair, err := s.userTokenPair(user)
	if err != nil {
		return ports.TokenPair{}, nil, err
	}
	return pair, user, nil
}

// RevokeRootTokens increments the root account's token version. Tokens carry
// the version they were issued with, so every earlier root token becomes
// unverifiable at once without tracking individual tokens.
func (s *AuthService) RevokeRootTokens(ctx context.Context, subject string) (int64, error) {
	version, err := s.roots.BumpTokenVersion(ctx, subject)
	if err != nil {
		return 0, err
	}
	s.log.Info().Str("subject", subject).Int64("token_version", version).Msg("root tokens revoked")
	return version, nil
}

func (s *AuthService) userTokenPair(user *domain.User) (ports.TokenPair, error) {
	access, err := s.signer.Issue(user.ID, user.TenantID, user.Role, domain.TokenAccess, s.accessTTL)
	if err != nil {
		return ports.TokenPair{}, s.issueFailed(err)
	}
	refresh, err := s.signer.Issue(user.ID, user.TenantID, user.Role, domain.TokenRefresh, s.refreshTTL)
	if err != nil {
		return ports.TokenPair{}, s.issueFailed(err)
	}
	return ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// issueFailed notifies the audit sink without blocking the caller's error path.
func (s *AuthService) issueFailed(err error) error {
	s.audit.Record(ports.AuditEvent{
		Kind:   ports.AuditTokenIssueFailed,
		Detail: err.Error(),
		At:     time.Now().UTC(),
	})
	return err
}

// generateOTP returns a uniformly random 6-digit code.
func generateOTP() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	n := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return fmt.Sprintf("%06d", n%1000000), nil
}

// maskPhone keeps only the last two digits for log output.
func maskPhone(phone string) string {
	if len(phone) <= 2 {
		return "**"
	}
	masked := make([]byte, len(phone)-2)
	for i := range masked {
		masked[i] = '*'
	}
	return string(masked) + phone[len(phone)-2:]
}
