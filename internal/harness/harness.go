package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"text/template"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/chain"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/engine"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/result"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/rpc"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/testutil"
)

// Harness is the test execution engine. It owns one fake node per scenario
// chain and an engine dialing them.
type Harness struct {
	dialer *testutil.FakeDialer
	engine *engine.Engine
	logger *slog.Logger
}

// New builds the fake nodes for s and an engine wired to them.
func New(s *Scenario) (*Harness, error) {
	dialer := testutil.NewFakeDialer()
	for name, fixture := range s.Chains {
		ch, err := chain.Parse(name)
		if err != nil {
			return nil, err
		}
		dialer.Add(ch.FallbackURL(), fixture.node())
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Harness{
		dialer: dialer,
		engine: engine.New(dialer, engine.WithLogger(quiet)),
		logger: quiet,
	}, nil
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Build one fake node per chain from the fixtures
// 2. Expand and run every step through engine.RunEach
// 3. Check each step's expect clause
func Run(ctx context.Context, s *Scenario) (*Result, error) {
	h, err := New(s)
	if err != nil {
		return nil, err
	}
	return h.Run(ctx, s)
}

// Run executes s against the harness nodes.
func (h *Harness) Run(ctx context.Context, s *Scenario) (*Result, error) {
	res := NewResult(s.Name)
	for i, step := range s.Steps {
		query, err := expandTemplate(step.Query)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		expect, err := expandExpect(step.Expect)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}

		sr := StepResult{Query: query}
		report, err := h.engine.RunEach(ctx, query)
		if err != nil {
			// Parse failures are outcomes too; a scenario may expect them.
			sr.Outcomes = []OutcomeSnapshot{errorSnapshot(err)}
		} else {
			sr.Outcomes = make([]OutcomeSnapshot, len(report.Outcomes))
			for j, o := range report.Outcomes {
				if o.Err != nil {
					sr.Outcomes[j] = errorSnapshot(o.Err)
					continue
				}
				sr.Outcomes[j] = resultSnapshot(o.Result.Result)
			}
		}
		res.Steps = append(res.Steps, sr)

		for _, msg := range checkExpect(expect, sr) {
			res.AddError(fmt.Sprintf("step %d (%s): %s", i, query, msg))
		}
		h.logger.Info("step completed", "step", i, "query", query, "outcomes", len(sr.Outcomes))
	}
	return res, nil
}

// Calls returns the number of RPC calls served by every fake node.
func (h *Harness) Calls() int {
	return h.dialer.TotalCalls()
}

func errorSnapshot(err error) OutcomeSnapshot {
	return OutcomeSnapshot{Error: engine.Code(err), Message: err.Error()}
}

func resultSnapshot(r result.ExpressionResult) OutcomeSnapshot {
	header, rows := result.Table(r)
	return OutcomeSnapshot{Entity: r.Kind().String(), Columns: header, Rows: rows}
}

var queryFuncs = template.FuncMap{
	"addr":   func(b byte) string { return testutil.Address(b).String() },
	"digest": func(b byte) string { return testutil.Digest(b).String() },
	"object": func(b byte) string { return testutil.ObjectID(b).String() },
}

// expandTemplate renders s with the fixture helpers.
func expandTemplate(s string) (string, error) {
	if !strings.Contains(s, "{{") {
		return s, nil
	}
	tmpl, err := template.New("step").Funcs(queryFuncs).Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, nil); err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}
	return b.String(), nil
}

// expandExpect returns a copy of e with every contains cell expanded.
func expandExpect(e *Expect) (*Expect, error) {
	if e == nil || len(e.Contains) == 0 {
		return e, nil
	}
	out := *e
	out.Contains = make([]map[string]string, len(e.Contains))
	for i, row := range e.Contains {
		expanded := make(map[string]string, len(row))
		for col, v := range row {
			cell, err := expandTemplate(v)
			if err != nil {
				return nil, fmt.Errorf("contains[%d].%s: %w", i, col, err)
			}
			expanded[col] = cell
		}
		out.Contains[i] = expanded
	}
	return &out, nil
}

// node materializes the fixture.
func (f Fixture) node() *testutil.FakeNode {
	n := testutil.NewFakeNode()
	n.Latest = f.Latest

	for _, cp := range f.Checkpoints {
		txs := make([]ir.Digest, len(cp.Transactions))
		for i, d := range cp.Transactions {
			txs[i] = testutil.Digest(d)
		}
		n.Checkpoints[cp.Seq] = testutil.Checkpoint(cp.Seq, txs...)
		if cp.Seq > n.Latest {
			n.Latest = cp.Seq
		}
	}

	for _, tx := range f.Transactions {
		d := testutil.Digest(tx.Digest)
		n.Transactions[d] = testutil.Transaction(d, tx.Checkpoint, testutil.Address(tx.Sender), rpc.GasCostSummary{
			ComputationCost: rpc.U64(tx.ComputationCost),
			StorageCost:     rpc.U64(tx.StorageCost),
			StorageRebate:   rpc.U64(tx.StorageRebate),
		})
	}

	for _, b := range f.Balances {
		owner := testutil.Address(b.Owner)
		coinType := b.CoinType
		if ct, err := ir.ParseCoinType(coinType); err == nil {
			coinType = string(ct)
		}
		n.Balances[owner] = append(n.Balances[owner], rpc.Balance{
			CoinType:        coinType,
			CoinObjectCount: b.Objects,
			TotalBalance:    rpc.U64(b.Total),
		})
	}

	// Sorted so the reverse name of a shared address is stable.
	for _, name := range slices.Sorted(maps.Keys(f.Names)) {
		addr := testutil.Address(f.Names[name])
		n.Names[name] = addr
		if _, ok := n.Reverse[addr]; !ok {
			n.Reverse[addr] = name
		}
	}
	return n
}
