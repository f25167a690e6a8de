package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/societyhub/backoffice-api/internal/core/domain"
)

// SignatureVerifier validates provider webhook signatures: hex-encoded
// HMAC-SHA256 over the adapter-built payload, keyed by the provider's shared
// secret. Stateless after construction, safe for concurrent use.
type SignatureVerifier struct {
	secrets SecretMap
	strict  bool
}

// NewSignatureVerifier builds a verifier over the given secret map. In
// strict mode a provider without a configured secret is rejected; in lenient
// mode verification is skipped for such providers. Strictness is an explicit
// configuration flag, never inferred.
func NewSignatureVerifier(secrets SecretMap, strict bool) *SignatureVerifier {
	return &SignatureVerifier{secrets: secrets, strict: strict}
}

// AssertValid passes silently when the signature checks out (or when the
// provider has no secret and the verifier is lenient) and returns a typed
// signature error otherwise.
func (v *SignatureVerifier) AssertValid(provider string, payload []byte, suppliedSignature string) error {
	secret, ok := v.secrets[normalizeProvider(provider)]
	if !ok {
		if v.strict {
			return fmt.Errorf("%w: %s", domain.ErrSecretNotConfigured, normalizeProvider(provider))
		}
		return nil
	}

	supplied := strings.TrimSpace(suppliedSignature)
	if supplied == "" {
		return domain.ErrSignatureMissing
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	// hmac.Equal compares in constant time, so a mismatch leaks nothing
	// about how many leading bytes matched.
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(supplied))) {
		return domain.ErrSignatureInvalid
	}
	return nil
}
