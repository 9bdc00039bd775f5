package ir

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Operator is the comparison token between a filter's field and value.
type Operator int

const (
	OpEq Operator = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
)

var operatorTokens = []string{"=", "!=", "<", "<=", ">", ">="}

func (o Operator) String() string {
	if o < 0 || int(o) >= len(operatorTokens) {
		return fmt.Sprintf("op(%d)", int(o))
	}
	return operatorTokens[o]
}

// IsEquality reports whether o is = or !=.
func (o Operator) IsEquality() bool {
	return o == OpEq || o == OpNeq
}

// ParseOperator maps an operator token to an Operator.
func ParseOperator(s string) (Operator, error) {
	for i, tok := range operatorTokens {
		if tok == s {
			return Operator(i), nil
		}
	}
	return 0, &FilterError{Operator: s, Message: "unknown operator"}
}

// EqualityFilter is a predicate on a value that supports only = and !=.
type EqualityFilter[T comparable] struct {
	Op    Operator
	Value T
}

// NewEqualityFilter builds an EqualityFilter, rejecting ordered operators.
func NewEqualityFilter[T comparable](field string, op Operator, value T) (EqualityFilter[T], error) {
	if !op.IsEquality() {
		return EqualityFilter[T]{}, &FilterError{
			Field:    field,
			Operator: op.String(),
			Message:  "operator not allowed on unordered field",
		}
	}
	return EqualityFilter[T]{Op: op, Value: value}, nil
}

// Matches reports whether v satisfies the filter.
func (f EqualityFilter[T]) Matches(v T) bool {
	if f.Op == OpNeq {
		return v != f.Value
	}
	return v == f.Value
}

func (f EqualityFilter[T]) String() string {
	return fmt.Sprintf("%s %v", f.Op, f.Value)
}

// ComparisonFilter is a predicate on an ordered value. All six operators are legal.
type ComparisonFilter[T cmp.Ordered] struct {
	Op    Operator
	Value T
}

// Matches reports whether v satisfies the filter.
func (f ComparisonFilter[T]) Matches(v T) bool {
	c := cmp.Compare(v, f.Value)
	switch f.Op {
	case OpEq:
		return c == 0
	case OpNeq:
		return c != 0
	case OpLt:
		return c < 0
	case OpLte:
		return c <= 0
	case OpGt:
		return c > 0
	case OpGte:
		return c >= 0
	}
	return false
}

func (f ComparisonFilter[T]) String() string {
	return fmt.Sprintf("%s %v", f.Op, f.Value)
}

// ParseUintFilter builds a ComparisonFilter over a base-10 unsigned literal.
func ParseUintFilter(field string, op Operator, literal string) (ComparisonFilter[uint64], error) {
	n, err := strconv.ParseUint(strings.ReplaceAll(literal, "_", ""), 10, 64)
	if err != nil {
		return ComparisonFilter[uint64]{}, &FilterError{Field: field, Value: literal, Message: "expected an unsigned integer"}
	}
	return ComparisonFilter[uint64]{Op: op, Value: n}, nil
}

// ParseIntFilter builds a ComparisonFilter over a base-10 signed literal.
func ParseIntFilter(field string, op Operator, literal string) (ComparisonFilter[int64], error) {
	n, err := strconv.ParseInt(strings.ReplaceAll(literal, "_", ""), 10, 64)
	if err != nil {
		return ComparisonFilter[int64]{}, &FilterError{Field: field, Value: literal, Message: "expected an integer"}
	}
	return ComparisonFilter[int64]{Op: op, Value: n}, nil
}

// ParseBoolFilter builds an EqualityFilter over "true" or "false".
func ParseBoolFilter(field string, op Operator, literal string) (EqualityFilter[bool], error) {
	var b bool
	switch strings.ToLower(literal) {
	case "true":
		b = true
	case "false":
		b = false
	default:
		return EqualityFilter[bool]{}, &FilterError{Field: field, Value: literal, Message: "expected true or false"}
	}
	return NewEqualityFilter(field, op, b)
}

// FilterError reports a filter that names an unfilterable field, uses an
// operator the field does not allow, or carries an unparseable value.
type FilterError struct {
	Entity   EntityKind
	Field    string
	Operator string
	Value    string
	Message  string
}

func (e *FilterError) Error() string {
	var b strings.Builder
	b.WriteString("invalid filter")
	if e.Field != "" {
		fmt.Fprintf(&b, " on %s.%s", e.Entity, e.Field)
	}
	if e.Operator != "" {
		fmt.Fprintf(&b, " operator %q", e.Operator)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " value %q", e.Value)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}
