// Package compiler turns suiql source text into typed ir expressions.
//
// Parsing is two-phase: participle builds an untyped parse tree from the
// grammar in grammar.go, then the builder resolves entity, field, filter, id
// and chain names against the ir and chain packages. Any failure aborts the
// whole program; no partial expression list is ever returned.
package compiler

import (
	"errors"
	"slices"
	"strings"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/chain"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
)

// Parse compiles one or more ';'-separated statements.
func Parse(source string) ([]ir.Expression, error) {
	tree, err := parser.ParseString("", source)
	if err != nil {
		return nil, fromParticiple(source, err)
	}
	if len(tree.Statements) == 0 {
		return nil, &ParseError{Kind: ErrEmptyProgram}
	}

	exprs := make([]ir.Expression, 0, len(tree.Statements))
	for _, stmt := range tree.Statements {
		expr, err := buildGet(stmt)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func buildGet(stmt *statement) (*ir.Get, error) {
	if stmt.From == nil {
		return nil, &ParseError{Kind: ErrMissingEntity, Pos: stmt.Pos}
	}
	kind, err := ir.ParseEntityKind(stmt.From.Entity)
	if err != nil {
		return nil, &ParseError{Kind: ErrInvalidEntity, Token: stmt.From.Entity, Pos: stmt.From.Pos}
	}

	entity, err := buildEntity(kind, stmt)
	if err != nil {
		return nil, err
	}

	chains, err := chain.FromSelector(stmt.Chains.Selector())
	if err != nil {
		token := stmt.Chains.Selector()
		var ce *chain.Error
		if errors.As(err, &ce) {
			token = ce.Token
		}
		return nil, &ParseError{Kind: ErrInvalidChain, Token: token, Pos: stmt.Chains.Pos, Err: err}
	}

	get := &ir.Get{Entity: entity, Chains: chains}
	if stmt.Dump != nil {
		dump, err := ir.ParseDump(*stmt.Dump)
		if err != nil {
			return nil, &ParseError{Kind: ErrInvalidDump, Token: *stmt.Dump, Pos: stmt.Pos, Err: err}
		}
		get.Dump = dump
	}
	return get, nil
}

func buildEntity(kind ir.EntityKind, stmt *statement) (ir.Entity, error) {
	switch kind {
	case ir.KindAccount:
		e := &ir.Account{}
		var err error
		if e.Fields, err = buildFields(stmt, ir.AllAccountFields, ir.ParseAccountField); err != nil {
			return nil, err
		}
		if e.IDs, err = buildIDs(stmt, single(ir.ParseNameOrAddress)); err != nil {
			return nil, err
		}
		if e.Filters, err = buildFilters(stmt, ir.ParseAccountFilter); err != nil {
			return nil, err
		}
		return e, nil
	case ir.KindCheckpoint:
		e := &ir.Checkpoint{}
		var err error
		if e.Fields, err = buildFields(stmt, ir.AllCheckpointFields, ir.ParseCheckpointField); err != nil {
			return nil, err
		}
		if e.IDs, err = buildIDs(stmt, ranged(ir.ParseCheckpointID)); err != nil {
			return nil, err
		}
		if e.Filters, err = buildFilters(stmt, ir.ParseCheckpointFilter); err != nil {
			return nil, err
		}
		return e, nil
	case ir.KindTransaction:
		e := &ir.Transaction{}
		var err error
		if e.Fields, err = buildFields(stmt, ir.AllTransactionFields, ir.ParseTransactionField); err != nil {
			return nil, err
		}
		if e.IDs, err = buildIDs(stmt, single(ir.ParseDigest)); err != nil {
			return nil, err
		}
		if e.Filters, err = buildFilters(stmt, ir.ParseTransactionFilter); err != nil {
			return nil, err
		}
		return e, nil
	case ir.KindCoin:
		e := &ir.Coin{}
		var err error
		if e.Fields, err = buildFields(stmt, ir.AllCoinFields, ir.ParseCoinField); err != nil {
			return nil, err
		}
		if e.IDs, err = buildIDs(stmt, single(ir.ParseCoinType)); err != nil {
			return nil, err
		}
		if e.Filters, err = buildFilters(stmt, ir.ParseCoinFilter); err != nil {
			return nil, err
		}
		return e, nil
	case ir.KindObject:
		e := &ir.Object{}
		var err error
		if e.Fields, err = buildFields(stmt, ir.AllObjectFields, ir.ParseObjectField); err != nil {
			return nil, err
		}
		if e.IDs, err = buildIDs(stmt, single(ir.ParseObjectID)); err != nil {
			return nil, err
		}
		if e.Filters, err = buildFilters(stmt, ir.ParseObjectFilter); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, &ParseError{Kind: ErrInvalidEntity, Token: stmt.From.Entity, Pos: stmt.From.Pos}
}

// buildFields expands "*" in declaration order, or resolves each name and
// drops repeats while keeping first-seen order.
func buildFields[F comparable](stmt *statement, all func() []F, parse func(string) (F, error)) ([]F, error) {
	if stmt.Selection.Wildcard {
		return all(), nil
	}
	fields := make([]F, 0, len(stmt.Selection.Names))
	for _, name := range stmt.Selection.Names {
		f, err := parse(name)
		if err != nil {
			return nil, &ParseError{Kind: ErrInvalidField, Token: name, Pos: stmt.Pos, Err: err}
		}
		if !slices.Contains(fields, f) {
			fields = append(fields, f)
		}
	}
	return fields, nil
}

// idParser parses one id literal. ranged reports whether start:end is legal.
type idParser[T any] struct {
	parse  func(string) (T, error)
	ranged bool
}

func single[T any](parse func(string) (T, error)) idParser[T] {
	return idParser[T]{parse: parse}
}

func ranged[T any](parse func(string) (T, error)) idParser[T] {
	return idParser[T]{parse: parse, ranged: true}
}

func buildIDs[T any](stmt *statement, p idParser[T]) ([]T, error) {
	if len(stmt.From.IDs) == 0 {
		return nil, nil
	}
	ids := make([]T, 0, len(stmt.From.IDs))
	for _, v := range stmt.From.IDs {
		if v.End != nil && !p.ranged {
			return nil, &ParseError{Kind: ErrUnexpectedToken, Token: ":", Pos: v.Pos}
		}
		id, err := p.parse(v.Text())
		if err != nil {
			return nil, &ParseError{Kind: ErrInvalidID, Token: v.Text(), Pos: v.Pos, Err: err}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func buildFilters[T any](stmt *statement, parse func(string, ir.Operator, string) (T, error)) ([]T, error) {
	if len(stmt.Filters) == 0 {
		return nil, nil
	}
	filters := make([]T, 0, len(stmt.Filters))
	for _, fe := range stmt.Filters {
		op, err := ir.ParseOperator(fe.Op)
		if err != nil {
			return nil, &ParseError{Kind: ErrUnexpectedToken, Token: fe.Op, Pos: fe.Pos}
		}
		f, err := parse(fe.Field, op, fe.Value.Text())
		if err != nil {
			return nil, filterError(fe, err)
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func filterError(fe *filterExpr, err error) error {
	kind := ErrInvalidFilter
	token := fe.Field + " " + fe.Op + " " + fe.Value.Text()
	switch err.(type) {
	case *ir.FieldError:
		kind, token = ErrInvalidField, fe.Field
	case *ir.IDError:
		kind, token = ErrInvalidID, fe.Value.Text()
	}
	return &ParseError{Kind: kind, Token: strings.TrimSpace(token), Pos: fe.Pos, Err: err}
}
