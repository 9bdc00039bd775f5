// Package chain resolves chain selectors to Sui RPC endpoints.
//
// Only the three public networks are recognized by name. Any other endpoint
// must be given as a literal http(s) URL and is used as-is; it is never
// probed to discover which network it serves.
package chain

import (
	"fmt"
	"net/url"
	"strings"
)

// Chain is one of the named Sui networks.
type Chain int

const (
	Mainnet Chain = iota
	Testnet
	Devnet
)

var chainNames = []string{"mainnet", "testnet", "devnet"}

// All returns every named chain in declaration order.
func All() []Chain {
	return []Chain{Mainnet, Testnet, Devnet}
}

func (c Chain) String() string {
	if c < 0 || int(c) >= len(chainNames) {
		return fmt.Sprintf("chain(%d)", int(c))
	}
	return chainNames[c]
}

// Parse maps a chain keyword (case-insensitive) to its Chain.
func Parse(s string) (Chain, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	for i, name := range chainNames {
		if name == lower {
			return Chain(i), nil
		}
	}
	return 0, &Error{Kind: InvalidChain, Token: s}
}

// FallbackURL is the public fullnode for c.
func (c Chain) FallbackURL() string {
	return "https://fullnode." + c.String() + ".sui.io:443"
}

// MarshalText encodes the chain keyword.
func (c Chain) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a chain keyword.
func (c *Chain) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Overrides maps a chain to a configured RPC URL that replaces its fallback.
type Overrides map[Chain]string

// RPCURL returns the override for c if one is set, else its fallback URL.
func RPCURL(c Chain, overrides Overrides) string {
	if u, ok := overrides[c]; ok && u != "" {
		return u
	}
	return c.FallbackURL()
}

// ChainOrRPC is either a named chain or a literal RPC endpoint.
// Exactly one of Chain and URL is set.
type ChainOrRPC struct {
	Chain *Chain
	URL   string
}

// Named returns a ChainOrRPC for c.
func Named(c Chain) ChainOrRPC {
	return ChainOrRPC{Chain: &c}
}

// RPC returns a ChainOrRPC for a literal endpoint.
func RPC(u string) ChainOrRPC {
	return ChainOrRPC{URL: u}
}

// IsChain reports whether c names one of the known networks.
func (c ChainOrRPC) IsChain() bool {
	return c.Chain != nil
}

// Endpoint returns the URL requests for c should be sent to.
func (c ChainOrRPC) Endpoint(overrides Overrides) string {
	if c.Chain != nil {
		return RPCURL(*c.Chain, overrides)
	}
	return c.URL
}

// String is the value shown in a row's chain column: the keyword for a
// named chain, the URL itself otherwise.
func (c ChainOrRPC) String() string {
	if c.Chain != nil {
		return c.Chain.String()
	}
	return c.URL
}

// FromSelector expands an ON selector. "*" yields every named chain in
// declaration order; otherwise each comma-separated token is trimmed and
// resolved to a chain keyword or a literal http(s) URL.
func FromSelector(selector string) ([]ChainOrRPC, error) {
	selector = strings.TrimSpace(selector)
	if selector == "*" {
		out := make([]ChainOrRPC, 0, len(chainNames))
		for _, c := range All() {
			out = append(out, Named(c))
		}
		return out, nil
	}

	tokens := strings.Split(selector, ",")
	out := make([]ChainOrRPC, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if isURL(tok) {
			out = append(out, RPC(tok))
			continue
		}
		c, err := Parse(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, Named(c))
	}
	return out, nil
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ErrorKind classifies chain resolution failures.
type ErrorKind string

const (
	InvalidChain ErrorKind = "INVALID_CHAIN"
)

// Error reports a selector token that is neither a chain keyword nor a URL.
type Error struct {
	Kind  ErrorKind
	Token string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid chain %q", e.Token)
}
