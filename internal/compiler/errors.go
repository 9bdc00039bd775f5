package compiler

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ParseErrorKind classifies a parse failure.
type ParseErrorKind string

const (
	ErrUnexpectedToken ParseErrorKind = "UNEXPECTED_TOKEN"
	ErrMissingEntity   ParseErrorKind = "MISSING_ENTITY"
	ErrInvalidEntity   ParseErrorKind = "INVALID_ENTITY"
	ErrInvalidField    ParseErrorKind = "INVALID_FIELD"
	ErrInvalidFilter   ParseErrorKind = "INVALID_FILTER"
	ErrInvalidID       ParseErrorKind = "INVALID_ID"
	ErrInvalidChain    ParseErrorKind = "INVALID_CHAIN"
	ErrInvalidDump     ParseErrorKind = "INVALID_DUMP"
	ErrEmptyProgram    ParseErrorKind = "EMPTY_PROGRAM"
)

// ParseError is returned by Parse. Token is the offending source text, so the
// error renders as a one-line diagnostic without the original source.
type ParseError struct {
	Kind  ParseErrorKind
	Token string
	Pos   lexer.Position
	Err   error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Pos.Line > 0 {
		fmt.Fprintf(&b, "%d:%d: ", e.Pos.Line, e.Pos.Column)
	}
	b.WriteString(string(e.Kind))
	if e.Token != "" {
		fmt.Fprintf(&b, " %q", e.Token)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is a ParseError of the given kind.
func IsParseError(err error, kind ParseErrorKind) bool {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}

// fromParticiple converts a lexer or grammar error into an UNEXPECTED_TOKEN
// error carrying the text at the failure position.
func fromParticiple(source string, err error) error {
	var perr participle.Error
	if !errors.As(err, &perr) {
		return &ParseError{Kind: ErrUnexpectedToken, Err: err}
	}
	pos := perr.Position()
	return &ParseError{
		Kind:  ErrUnexpectedToken,
		Token: tokenAt(source, pos.Offset),
		Pos:   pos,
		Err:   errors.New(perr.Message()),
	}
}

// tokenAt returns the whitespace-delimited word starting at offset, or
// "<EOF>" past the end of the source.
func tokenAt(source string, offset int) string {
	if offset < 0 || offset >= len(source) {
		return "<EOF>"
	}
	rest := source[offset:]
	end := strings.IndexFunc(rest, unicode.IsSpace)
	if end < 0 {
		return rest
	}
	if end == 0 {
		return tokenAt(source, offset+1)
	}
	return rest[:end]
}
