package compiler

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Rules are tried in order; the first match wins, so keywords, URLs and
// Move types must come before the generic Word rule. Comment precedes Word
// so "--" never lexes as a negative number.
var lex = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Comment", Pattern: `--[^\n]*`},
	{Name: "Keyword", Pattern: `(?i)\b(?:SELECT|FROM|WHERE|ON)\b`},
	{Name: "Dump", Pattern: `>>`},
	{Name: "Op", Pattern: `!=|<=|>=|=|<|>`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "URL", Pattern: `https?://[^\s,;]+`},
	{Name: "MoveType", Pattern: `0[xX][0-9a-fA-F]+::[A-Za-z_][A-Za-z0-9_]*::[A-Za-z_][A-Za-z0-9_]*(?:<[0-9A-Za-z_:<>]+>)?`},
	{Name: "Word", Pattern: `-[0-9]+|[A-Za-z0-9_@][A-Za-z0-9_.\-@]*`},
	{Name: "Punct", Pattern: `[,;:*]`},
})

var parser = participle.MustBuild[program](
	participle.Lexer(lex),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
	participle.CaseInsensitive("Keyword"),
)

type program struct {
	Statements []*statement `parser:"';'* ( @@ ';'* )*"`
}

type statement struct {
	Pos lexer.Position

	Selection  *selection    `parser:"'SELECT' @@"`
	From       *from         `parser:"( 'FROM' @@ )?"`
	Filters    []*filterExpr `parser:"( 'WHERE' @@ ( ',' @@ )* )?"`
	Chains     *chainList    `parser:"'ON' @@"`
	Dump       *string       `parser:"( '>>' @( Word | String ) )?"`
	Terminated bool          `parser:"( @';' | EOF )"`
}

type selection struct {
	Wildcard bool     `parser:"  @'*'"`
	Names    []string `parser:"| @Word ( ',' @Word )*"`
}

type from struct {
	Pos lexer.Position

	Entity string   `parser:"@Word"`
	IDs    []*value `parser:"( @@ ( ',' @@ )* )?"`
}

// value is an id or filter literal, optionally a start:end pair.
type value struct {
	Pos lexer.Position

	Start string  `parser:"@( Word | MoveType | String )"`
	End   *string `parser:"( ':' @Word )?"`
}

// Text returns the literal as written, with a range rejoined on ':'.
func (v *value) Text() string {
	if v.End == nil {
		return v.Start
	}
	return v.Start + ":" + *v.End
}

type filterExpr struct {
	Pos lexer.Position

	Field string `parser:"@Word"`
	Op    string `parser:"@Op"`
	Value *value `parser:"@@"`
}

type chainList struct {
	Pos lexer.Position

	Wildcard bool     `parser:"  @'*'"`
	Tokens   []string `parser:"| @( Word | URL ) ( ',' @( Word | URL ) )*"`
}

// Selector rebuilds the ON clause as the chain resolver expects it.
func (c *chainList) Selector() string {
	if c.Wildcard {
		return "*"
	}
	return strings.Join(c.Tokens, ",")
}
