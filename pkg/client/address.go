package client

import (
	"net/url"
	"strings"
)

// AddressPolicy builds the addresses a client dials.
type AddressPolicy interface {
	// ConnectAddress is dialed by Init. An empty code creates a new session.
	ConnectAddress(code string) string

	// ReconnectAddress is dialed after a failure to resume the session
	// identified by token.
	ReconnectAddress(code, token string) string
}

// TokenPlacement selects where DefaultAddressPolicy puts the recovery token.
type TokenPlacement int

const (
	// TokenAppend suffixes the connect address with the token:
	// <base>/<ns>/<code>/join/<token> or <base>/<ns>/create/<token>.
	TokenAppend TokenPlacement = iota

	// TokenReplace puts the token in place of the connect segment:
	// <base>/<ns>/<token>.
	TokenReplace
)

func (p TokenPlacement) String() string {
	switch p {
	case TokenAppend:
		return "append"
	case TokenReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// ParseTokenPlacement maps "append" and "replace" to their placement.
func ParseTokenPlacement(s string) (TokenPlacement, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "append":
		return TokenAppend, true
	case "replace":
		return TokenReplace, true
	default:
		return TokenAppend, false
	}
}

// DefaultAddressPolicy derives addresses from a base origin and namespace.
type DefaultAddressPolicy struct {
	// Base is the origin, for example "wss://example.com".
	Base string

	// Namespace is the path segment sessions live under, for example "versus".
	Namespace string

	Token TokenPlacement
}

func (p DefaultAddressPolicy) prefix() string {
	prefix := strings.TrimRight(p.Base, "/")
	if ns := strings.Trim(p.Namespace, "/"); ns != "" {
		prefix += "/" + ns
	}
	return prefix
}

// ConnectAddress returns <base>/<ns>/create, or <base>/<ns>/<code>/join.
func (p DefaultAddressPolicy) ConnectAddress(code string) string {
	if code == "" {
		return p.prefix() + "/create"
	}
	return p.prefix() + "/" + url.PathEscape(code) + "/join"
}

// ReconnectAddress places token according to p.Token. Without a token it
// falls back to the connect address.
func (p DefaultAddressPolicy) ReconnectAddress(code, token string) string {
	if token == "" {
		return p.ConnectAddress(code)
	}
	if p.Token == TokenReplace {
		return p.prefix() + "/" + url.PathEscape(token)
	}
	return p.ConnectAddress(code) + "/" + url.PathEscape(token)
}

// AddressFuncs overrides either address of a fallback policy.
type AddressFuncs struct {
	Fallback  AddressPolicy
	Connect   func(code string) string
	Reconnect func(code, token string) string
}

func (a AddressFuncs) ConnectAddress(code string) string {
	if a.Connect != nil {
		return a.Connect(code)
	}
	return a.fallback().ConnectAddress(code)
}

func (a AddressFuncs) ReconnectAddress(code, token string) string {
	if a.Reconnect != nil {
		return a.Reconnect(code, token)
	}
	return a.fallback().ReconnectAddress(code, token)
}

func (a AddressFuncs) fallback() AddressPolicy {
	if a.Fallback == nil {
		return DefaultAddressPolicy{}
	}
	return a.Fallback
}
