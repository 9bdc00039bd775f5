package ir

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NameOrAddress is an account reference: either a literal address or a
// SuiNS name that must be resolved with one forward lookup.
type NameOrAddress struct {
	Name    string
	Address *Address
}

// ParseNameOrAddress parses a 0x address or a SuiNS name (name.sui or @name).
// Names are NFC-normalized and lowercased.
func ParseNameOrAddress(s string) (NameOrAddress, error) {
	s = strings.TrimSpace(s)
	if _, ok := cutHexPrefix(s); ok {
		a, err := ParseAddress(s)
		if err != nil {
			return NameOrAddress{}, err
		}
		return NameOrAddress{Address: &a}, nil
	}
	name := strings.ToLower(norm.NFC.String(s))
	label := name
	switch {
	case strings.HasPrefix(name, "@"):
		label = strings.TrimPrefix(name, "@")
	case strings.HasSuffix(name, ".sui"):
		label = strings.TrimSuffix(name, ".sui")
	default:
		return NameOrAddress{}, &IDError{Kind: InvalidName, Literal: s, Message: "expected an address, name.sui or @name"}
	}
	if label == "" || strings.ContainsAny(label, " \t") {
		return NameOrAddress{}, &IDError{Kind: InvalidName, Literal: s}
	}
	return NameOrAddress{Name: name}, nil
}

// IsName reports whether the reference still needs resolution.
func (n NameOrAddress) IsName() bool {
	return n.Address == nil
}

func (n NameOrAddress) String() string {
	if n.Address != nil {
		return n.Address.String()
	}
	return n.Name
}
