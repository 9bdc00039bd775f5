// Package result holds the typed, sparsely populated rows a query returns.
//
// Every column is a pointer. A resolver fills only the columns the query
// selected, so a nil column means "not requested", never "zero".
package result

import (
	"strconv"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
)

// QueryResult is the outcome of one expression.
type QueryResult struct {
	Result ExpressionResult `json:"result"`
}

// ExpressionResult is a sealed union of row lists, one variant per entity.
type ExpressionResult interface {
	Kind() ir.EntityKind
	Len() int
	// Cells returns each row's cells in declaration order.
	Cells() [][]Cell
	expressionResult()
}

// AccountResult holds account rows.
type AccountResult struct {
	Rows []AccountRow `json:"account"`
}

// CheckpointResult holds checkpoint rows.
type CheckpointResult struct {
	Rows []CheckpointRow `json:"checkpoint"`
}

// TransactionResult holds transaction rows.
type TransactionResult struct {
	Rows []TransactionRow `json:"tx"`
}

// CoinResult holds coin rows.
type CoinResult struct {
	Rows []CoinRow `json:"coin"`
}

// ObjectResult holds object rows.
type ObjectResult struct {
	Rows []ObjectRow `json:"object"`
}

func (AccountResult) Kind() ir.EntityKind     { return ir.KindAccount }
func (CheckpointResult) Kind() ir.EntityKind  { return ir.KindCheckpoint }
func (TransactionResult) Kind() ir.EntityKind { return ir.KindTransaction }
func (CoinResult) Kind() ir.EntityKind        { return ir.KindCoin }
func (ObjectResult) Kind() ir.EntityKind      { return ir.KindObject }

func (r AccountResult) Len() int     { return len(r.Rows) }
func (r CheckpointResult) Len() int  { return len(r.Rows) }
func (r TransactionResult) Len() int { return len(r.Rows) }
func (r CoinResult) Len() int        { return len(r.Rows) }
func (r ObjectResult) Len() int      { return len(r.Rows) }

func (r AccountResult) Cells() [][]Cell     { return collect(r.Rows) }
func (r CheckpointResult) Cells() [][]Cell  { return collect(r.Rows) }
func (r TransactionResult) Cells() [][]Cell { return collect(r.Rows) }
func (r CoinResult) Cells() [][]Cell        { return collect(r.Rows) }
func (r ObjectResult) Cells() [][]Cell      { return collect(r.Rows) }

func (AccountResult) expressionResult()     {}
func (CheckpointResult) expressionResult()  {}
func (TransactionResult) expressionResult() {}
func (CoinResult) expressionResult()        {}
func (ObjectResult) expressionResult()      {}

// Cell is one column of one row. Set is false for columns left unpopulated.
type Cell struct {
	Name string
	Text string
	Set  bool
}

type celler interface {
	Cells() []Cell
}

func collect[R celler](rows []R) [][]Cell {
	out := make([][]Cell, len(rows))
	for i, r := range rows {
		out[i] = r.Cells()
	}
	return out
}

// Columns returns the names of columns populated in at least one row, in
// declaration order.
func Columns(r ExpressionResult) []string {
	rows := r.Cells()
	if len(rows) == 0 {
		return nil
	}
	used := make([]bool, len(rows[0]))
	for _, row := range rows {
		for i, c := range row {
			if c.Set {
				used[i] = true
			}
		}
	}
	var cols []string
	for i, c := range rows[0] {
		if used[i] {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// Table flattens r into a header and string cells, restricted to Columns(r).
// Unset cells render as the empty string.
func Table(r ExpressionResult) (header []string, rows [][]string) {
	header = Columns(r)
	if len(header) == 0 {
		return header, nil
	}
	want := make(map[string]bool, len(header))
	for _, h := range header {
		want[h] = true
	}
	all := r.Cells()
	rows = make([][]string, len(all))
	for i, row := range all {
		line := make([]string, 0, len(header))
		for _, c := range row {
			if want[c.Name] {
				line = append(line, c.Text)
			}
		}
		rows[i] = line
	}
	return header, rows
}

func cell[T any](name string, v *T, format func(T) string) Cell {
	if v == nil {
		return Cell{Name: name}
	}
	return Cell{Name: name, Text: format(*v), Set: true}
}

func formatUint(v uint64) string     { return strconv.FormatUint(v, 10) }
func formatInt(v int64) string       { return strconv.FormatInt(v, 10) }
func formatBool(v bool) string       { return strconv.FormatBool(v) }
func formatString(v string) string   { return v }
func formatStringer[T interface{ String() string }](v T) string { return v.String() }

// Ptr returns a pointer to v. Resolvers use it to populate columns.
func Ptr[T any](v T) *T { return &v }
