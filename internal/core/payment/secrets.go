package payment

import "strings"

// SecretMap maps normalized provider names to their webhook shared secrets.
// Parsed once at startup; immutable for the process lifetime.
type SecretMap map[string]string

// ParseProviderSecrets parses a "PROVIDER=secret,OTHER=secret" configuration
// string. Malformed entries (no '=', blank name or blank secret) are skipped
// rather than failing startup over one bad pair.
func ParseProviderSecrets(raw string) SecretMap {
	m := make(SecretMap)
	for _, pair := range strings.Split(raw, ",") {
		name, secret, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name = normalizeProvider(name)
		secret = strings.TrimSpace(secret)
		if name == "" || secret == "" {
			continue
		}
		m[name] = secret
	}
	return m
}
