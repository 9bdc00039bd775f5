package ir

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// IDErrorKind classifies a malformed identifier literal.
type IDErrorKind string

const (
	InvalidAddress    IDErrorKind = "INVALID_ADDRESS"
	InvalidDigest     IDErrorKind = "INVALID_DIGEST"
	InvalidObjectID   IDErrorKind = "INVALID_OBJECT_ID"
	InvalidCoinType   IDErrorKind = "INVALID_COIN_TYPE"
	InvalidCheckpoint IDErrorKind = "INVALID_CHECKPOINT"
	InvalidName       IDErrorKind = "INVALID_NAME"
)

// IDError reports an identifier literal that could not be parsed.
type IDError struct {
	Kind    IDErrorKind
	Literal string
	Message string
}

func (e *IDError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %q", e.Kind, e.Literal)
	}
	return fmt.Sprintf("%s: %q: %s", e.Kind, e.Literal, e.Message)
}

// AddressLength is the byte length of Sui addresses, object ids and digests.
const AddressLength = 32

// Address is a 32-byte Sui account address.
type Address [AddressLength]byte

// ParseAddress parses a fixed-length "0x" + 64 hex digit address.
func ParseAddress(s string) (Address, error) {
	var a Address
	hexPart, ok := cutHexPrefix(s)
	if !ok || len(hexPart) != 2*AddressLength {
		return a, &IDError{Kind: InvalidAddress, Literal: s, Message: "expected 0x followed by 64 hex digits"}
	}
	if _, err := hex.Decode(a[:], []byte(hexPart)); err != nil {
		return a, &IDError{Kind: InvalidAddress, Literal: s, Message: err.Error()}
	}
	return a, nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// IsZero reports whether a is the all-zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// MarshalText encodes the address in its 0x form.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText accepts both the long and the short (left-trimmed) form RPC
// responses use.
func (a *Address) UnmarshalText(b []byte) error {
	id, err := ParseObjectID(string(b))
	if err != nil {
		return &IDError{Kind: InvalidAddress, Literal: string(b)}
	}
	*a = Address(id)
	return nil
}

// ObjectID is a 32-byte Sui object id. Short forms such as 0x5 are left-padded.
type ObjectID [AddressLength]byte

// ParseObjectID parses "0x" followed by 1 to 64 hex digits.
func ParseObjectID(s string) (ObjectID, error) {
	var id ObjectID
	hexPart, ok := cutHexPrefix(s)
	if !ok || len(hexPart) == 0 || len(hexPart) > 2*AddressLength {
		return id, &IDError{Kind: InvalidObjectID, Literal: s, Message: "expected 0x followed by 1 to 64 hex digits"}
	}
	padded := strings.Repeat("0", 2*AddressLength-len(hexPart)) + hexPart
	if _, err := hex.Decode(id[:], []byte(padded)); err != nil {
		return id, &IDError{Kind: InvalidObjectID, Literal: s, Message: err.Error()}
	}
	return id, nil
}

func (id ObjectID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// MarshalText encodes the id in its long 0x form.
func (id ObjectID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses the long or short 0x form.
func (id *ObjectID) UnmarshalText(b []byte) error {
	parsed, err := ParseObjectID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Digest is a 32-byte transaction or checkpoint digest, displayed in base58.
type Digest [AddressLength]byte

// ParseDigest parses the base58 form Sui uses for digests.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	raw := base58.Decode(s)
	if len(raw) != AddressLength {
		return d, &IDError{Kind: InvalidDigest, Literal: s, Message: fmt.Sprintf("expected %d bytes of base58, got %d", AddressLength, len(raw))}
	}
	copy(d[:], raw)
	return d, nil
}

func (d Digest) String() string {
	return base58.Encode(d[:])
}

// MarshalText encodes the digest in base58.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses a base58 digest.
func (d *Digest) UnmarshalText(b []byte) error {
	parsed, err := ParseDigest(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// CoinType is a Move struct tag naming a coin, e.g. 0x2::sui::SUI.
// The address part is stored in its long form so equal types compare equal.
type CoinType string

// SuiCoinType is the native coin.
const SuiCoinType CoinType = "0x0000000000000000000000000000000000000000000000000000000000000002::sui::SUI"

// ParseCoinType validates and normalizes a struct tag.
func ParseCoinType(s string) (CoinType, error) {
	addr, rest, ok := strings.Cut(strings.TrimSpace(s), "::")
	if !ok {
		return "", &IDError{Kind: InvalidCoinType, Literal: s, Message: "expected address::module::Name"}
	}
	id, err := ParseObjectID(addr)
	if err != nil {
		return "", &IDError{Kind: InvalidCoinType, Literal: s, Message: "bad package address"}
	}
	module, name, ok := strings.Cut(rest, "::")
	if !ok || !isMoveIdent(module) || name == "" {
		return "", &IDError{Kind: InvalidCoinType, Literal: s, Message: "expected address::module::Name"}
	}
	base, _, _ := strings.Cut(name, "<")
	if !isMoveIdent(base) {
		return "", &IDError{Kind: InvalidCoinType, Literal: s, Message: "bad struct name"}
	}
	return CoinType(id.String() + "::" + rest), nil
}

func (c CoinType) String() string { return string(c) }

func cutHexPrefix(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return "", false
	}
	return strings.ToLower(s[2:]), true
}

func isMoveIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
