package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/chain"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/compiler"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/dump"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/result"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/rpc"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/store"
)

// DefaultConcurrency is the errgroup limit for each fan-out level.
const DefaultConcurrency = 16

// HistoryRecorder persists one entry per Run or RunEach call.
type HistoryRecorder interface {
	RecordRun(ctx context.Context, run store.Run) error
}

// Engine resolves expressions. It holds no per-query state and is safe for
// concurrent use.
type Engine struct {
	dialer      rpc.Dialer
	overrides   chain.Overrides
	concurrency int
	maxRows     int
	runIDs      RunIDGenerator
	dumpDir     string
	history     HistoryRecorder
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithOverrides sets per-chain endpoint URLs used instead of the public fullnodes.
func WithOverrides(o chain.Overrides) Option {
	return func(e *Engine) {
		e.overrides = o
	}
}

// WithConcurrency bounds in-flight tasks per fan-out level. Values below 1
// are ignored.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithMaxRows sets the per-chain row quota. Zero disables it.
func WithMaxRows(n int) Option {
	return func(e *Engine) {
		e.maxRows = n
	}
}

// WithRunIDGenerator replaces the UUIDv7 run id source.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) {
		e.runIDs = g
	}
}

// WithDumpDir sets where dump files are written. Defaults to the working directory.
func WithDumpDir(dir string) Option {
	return func(e *Engine) {
		e.dumpDir = dir
	}
}

// WithHistory records every Run and RunEach.
func WithHistory(h HistoryRecorder) Option {
	return func(e *Engine) {
		e.history = h
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithClock replaces time.Now for history timestamps and expression timings.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine that reaches fullnodes through dialer.
func New(dialer rpc.Dialer, opts ...Option) *Engine {
	e := &Engine{
		dialer:      dialer,
		concurrency: DefaultConcurrency,
		maxRows:     DefaultMaxRows,
		runIDs:      UUIDv7Generator{},
		dumpDir:     ".",
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Outcome is the result or error of one expression under ExecuteEach.
type Outcome struct {
	Result *result.QueryResult
	Err    error
}

// Report is the output of RunEach.
type Report struct {
	RunID    string
	Outcomes []Outcome
}

// Rows is the total row count over successful outcomes.
func (r *Report) Rows() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Result != nil {
			n += o.Result.Result.Len()
		}
	}
	return n
}

// Err returns the first failed outcome's error.
func (r *Report) Err() error {
	for _, o := range r.Outcomes {
		if o.Err != nil {
			return o.Err
		}
	}
	return nil
}

// Execute resolves exprs in order. The first failing expression aborts the
// batch and no results are returned.
func (e *Engine) Execute(ctx context.Context, exprs []ir.Expression) ([]result.QueryResult, error) {
	return e.execute(ctx, e.runIDs.Generate(), exprs)
}

// ExecuteEach resolves every expression, collecting each one's result or
// error independently.
func (e *Engine) ExecuteEach(ctx context.Context, exprs []ir.Expression) []Outcome {
	return e.executeEach(ctx, e.runIDs.Generate(), exprs)
}

// Run parses source and executes it with Execute semantics, recording the
// run in history.
func (e *Engine) Run(ctx context.Context, source string) ([]result.QueryResult, error) {
	exprs, err := compiler.Parse(source)
	if err != nil {
		return nil, err
	}
	runID := e.runIDs.Generate()
	started := e.now()
	results, err := e.execute(ctx, runID, exprs)

	rows := 0
	for _, r := range results {
		rows += r.Result.Len()
	}
	e.record(ctx, runID, source, started, len(exprs), rows, err)
	return results, err
}

// RunEach parses source and executes it with ExecuteEach semantics. Only a
// parse failure is returned as an error.
func (e *Engine) RunEach(ctx context.Context, source string) (*Report, error) {
	exprs, err := compiler.Parse(source)
	if err != nil {
		return nil, err
	}
	runID := e.runIDs.Generate()
	started := e.now()
	report := &Report{RunID: runID, Outcomes: e.executeEach(ctx, runID, exprs)}
	e.record(ctx, runID, source, started, len(exprs), report.Rows(), report.Err())
	return report, nil
}

func (e *Engine) execute(ctx context.Context, runID string, exprs []ir.Expression) ([]result.QueryResult, error) {
	log := e.logger.With("run_id", runID)
	out := make([]result.QueryResult, 0, len(exprs))
	for _, expr := range exprs {
		r, err := e.executeOne(ctx, log, expr)
		if err != nil {
			log.Error("expression failed", "error", err)
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (e *Engine) executeEach(ctx context.Context, runID string, exprs []ir.Expression) []Outcome {
	log := e.logger.With("run_id", runID)
	out := make([]Outcome, len(exprs))
	for i, expr := range exprs {
		r, err := e.executeOne(ctx, log, expr)
		if err != nil {
			log.Error("expression failed", "index", i, "error", err)
			out[i] = Outcome{Err: err}
			continue
		}
		out[i] = Outcome{Result: &r}
	}
	return out
}

func (e *Engine) executeOne(ctx context.Context, log *slog.Logger, expr ir.Expression) (result.QueryResult, error) {
	get, ok := expr.(*ir.Get)
	if !ok {
		return result.QueryResult{}, &ExecutionError{Code: ErrCodeUnsupportedEntity, Message: "unsupported expression"}
	}

	start := e.now()
	res, err := e.resolve(ctx, get)
	if err != nil {
		return result.QueryResult{}, err
	}
	log.Info("expression resolved",
		"entity", res.Kind().String(),
		"chains", len(get.Chains),
		"rows", res.Len(),
		"duration", e.now().Sub(start),
	)

	if get.Dump != nil {
		e.writeDump(log, get.Dump, res)
	}
	return result.QueryResult{Result: res}, nil
}

// resolve dispatches on the entity. Every ir.Entity must have a case.
func (e *Engine) resolve(ctx context.Context, get *ir.Get) (result.ExpressionResult, error) {
	switch ent := get.Entity.(type) {
	case *ir.Account:
		rows, err := e.resolveAccounts(ctx, get.Chains, ent)
		return result.AccountResult{Rows: rows}, err
	case *ir.Checkpoint:
		rows, err := e.resolveCheckpoints(ctx, get.Chains, ent)
		return result.CheckpointResult{Rows: rows}, err
	case *ir.Transaction:
		rows, err := e.resolveTransactions(ctx, get.Chains, ent)
		return result.TransactionResult{Rows: rows}, err
	case *ir.Coin:
		rows, err := e.resolveCoins(ctx, get.Chains, ent)
		return result.CoinResult{Rows: rows}, err
	case *ir.Object:
		rows, err := e.resolveObjects(ctx, get.Chains, ent)
		return result.ObjectResult{Rows: rows}, err
	}
	return nil, &ExecutionError{Code: ErrCodeUnsupportedEntity, Message: "unsupported entity"}
}

// writeDump persists res. Failures are logged, never returned.
func (e *Engine) writeDump(log *slog.Logger, target *ir.Dump, res result.ExpressionResult) {
	path, err := dump.Write(e.dumpDir, target, res)
	if err != nil {
		log.Warn("dump failed", "file", target.Filename(), "error", err)
		return
	}
	log.Info("dump written", "file", path, "rows", res.Len())
}

func (e *Engine) record(ctx context.Context, runID, source string, started time.Time, exprs, rows int, runErr error) {
	if e.history == nil {
		return
	}
	run := store.Run{
		ID:          runID,
		Source:      source,
		StartedAt:   started,
		Duration:    e.now().Sub(started),
		Expressions: exprs,
		Rows:        rows,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := e.history.RecordRun(ctx, run); err != nil {
		e.logger.Warn("history write failed", "run_id", runID, "error", err)
	}
}
