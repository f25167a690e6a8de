package domain

import "errors"

const (
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
	RoleResident = "resident"
	RoleRoot     = "root"
)

// PrincipalType distinguishes tenant-scoped users from the platform root account.
type PrincipalType string

const (
	PrincipalUser PrincipalType = "USER"
	PrincipalRoot PrincipalType = "ROOT"
)

// TokenType is the kind of signed token a principal presents.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

var (
	ErrTokenInvalid  = errors.New("token invalid")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenRevoked  = errors.New("token revoked")
	ErrMissingTenant = errors.New("no tenant bound to request context")
	ErrRateLimited   = errors.New("too many attempts")
)

// Principal is the verified identity attached to a request after token
// verification. Immutable once constructed; rebuilt from the token on every
// request, never persisted.
type Principal struct {
	Subject      string
	TenantID     string // empty for ROOT principals
	Role         string
	Type         PrincipalType
	TokenType    TokenType
	TokenVersion int64 // root-only bulk-revocation counter
}

// IsRoot reports whether the principal is the platform root account.
func (p Principal) IsRoot() bool {
	return p.Type == PrincipalRoot
}
