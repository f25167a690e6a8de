package domain

// RateLimitKey identifies one fixed-window counter: a route class combined
// with a client identifier (remote address or a trusted forwarded-for value).
type RateLimitKey struct {
	Route    string
	ClientID string
}

// String renders the key in the canonical "<route>|<client>" form used by
// keyed stores.
func (k RateLimitKey) String() string {
	return k.Route + "|" + k.ClientID
}
