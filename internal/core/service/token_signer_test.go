package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/societyhub/backoffice-api/internal/core/domain"
)

const testSigningKey = "0123456789abcdef0123456789abcdef" // 32 bytes

type stubVersionSource struct {
	version int64
	err     error
}

func (s *stubVersionSource) CurrentTokenVersion(_ context.Context, _ string) (int64, error) {
	return s.version, s.err
}

func TestNewTokenSigner_KeyLength(t *testing.T) {
	if _, err := NewTokenSigner("too-short-key-16", nil); err == nil {
		t.Fatalf("expected error for 16-byte key")
	}
	if _, err := NewTokenSigner(testSigningKey, nil); err != nil {
		t.Fatalf("unexpected error for 32-byte key: %v", err)
	}
}

func TestTokenSigner_IssueVerify_Roundtrip(t *testing.T) {
	signer, err := NewTokenSigner(testSigningKey, nil)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	token, err := signer.Issue("user_1", "tenant_9", domain.RoleStaff, domain.TokenAccess, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	p, err := signer.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.Subject != "user_1" || p.TenantID != "tenant_9" || p.Role != domain.RoleStaff {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if p.Type != domain.PrincipalUser || p.TokenType != domain.TokenAccess {
		t.Fatalf("unexpected principal kind: %+v", p)
	}
	if p.IsRoot() {
		t.Fatalf("tenant user must not be root")
	}
}

func TestTokenSigner_Issue_RequiresTenant(t *testing.T) {
	signer, _ := NewTokenSigner(testSigningKey, nil)
	if _, err := signer.Issue("user_1", "", domain.RoleStaff, domain.TokenAccess, time.Minute); err == nil {
		t.Fatalf("expected error for missing tenant")
	}
}

func TestTokenSigner_Verify_ZeroTTLRejected(t *testing.T) {
	signer, _ := NewTokenSigner(testSigningKey, nil)

	token, err := signer.Issue("user_1", "tenant_9", domain.RoleStaff, domain.TokenAccess, 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := signer.Verify(context.Background(), token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenSigner_Verify_Expired(t *testing.T) {
	signer, _ := NewTokenSigner(testSigningKey, nil)

	token, err := signer.Issue("user_1", "tenant_9", domain.RoleStaff, domain.TokenAccess, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := signer.Verify(context.Background(), token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenSigner_Verify_TamperedToken(t *testing.T) {
	signer, _ := NewTokenSigner(testSigningKey, nil)

	token, _ := signer.Issue("user_1", "tenant_9", domain.RoleStaff, domain.TokenAccess, time.Minute)

	// Flip a character in the signature segment.
	last := token[len(token)-1]
	flipped := byte('A')
	if last == 'A' {
		flipped = 'B'
	}
	tampered := token[:len(token)-1] + string(flipped)

	if _, err := signer.Verify(context.Background(), tampered); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenSigner_Verify_WrongKey(t *testing.T) {
	signer, _ := NewTokenSigner(testSigningKey, nil)
	other, _ := NewTokenSigner("ffffffffffffffffffffffffffffffff", nil)

	token, _ := signer.Issue("user_1", "tenant_9", domain.RoleStaff, domain.TokenAccess, time.Minute)
	if _, err := other.Verify(context.Background(), token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenSigner_RootTokenVersion(t *testing.T) {
	versions := &stubVersionSource{version: 3}
	signer, _ := NewTokenSigner(testSigningKey, versions)

	token, err := signer.IssueRoot("root_1", 3, domain.TokenAccess, time.Minute)
	if err != nil {
		t.Fatalf("issue root: %v", err)
	}

	p, err := signer.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify current version: %v", err)
	}
	if !p.IsRoot() || p.TenantID != "" || p.TokenVersion != 3 {
		t.Fatalf("unexpected root principal: %+v", p)
	}

	// Bumping the recorded version revokes the token.
	versions.version = 4
	if _, err := signer.Verify(context.Background(), token); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}

func TestStripBearer(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc.def.ghi", "abc.def.ghi"},
		{"abc.def.ghi", "abc.def.ghi"},
		{"Token abc", "Token abc"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := StripBearer(tc.in); got != tc.want {
			t.Errorf("StripBearer(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTokenSigner_Verify_Garbage(t *testing.T) {
	signer, _ := NewTokenSigner(testSigningKey, nil)
	for _, raw := range []string{"", "not-a-token", strings.Repeat("x", 400)} {
		if _, err := signer.Verify(context.Background(), raw); !errors.Is(err, domain.ErrTokenInvalid) {
			t.Errorf("Verify(%q): expected ErrTokenInvalid, got %v", raw, err)
		}
	}
}
