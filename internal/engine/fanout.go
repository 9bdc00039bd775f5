package engine

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/chain"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/rpc"
)

// target is one chain of an expression: the label written to the chain
// column and the client for its endpoint.
type target struct {
	label  string
	client rpc.Client
}

// fanOut runs fn for every item with at most limit in flight and returns
// the outputs concatenated in input order. The first error cancels the
// context passed to the remaining calls and is returned alone.
func fanOut[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) ([]R, error)) ([]R, error) {
	parts := make([][]R, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			rows, err := fn(ctx, item)
			if err != nil {
				return err
			}
			parts[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]R, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}

// onChains dials every chain and runs fn per chain concurrently.
func onChains[R any](ctx context.Context, e *Engine, chains []chain.ChainOrRPC, fn func(context.Context, target) ([]R, error)) ([]R, error) {
	return fanOut(ctx, e.concurrency, chains, func(ctx context.Context, c chain.ChainOrRPC) ([]R, error) {
		client, err := e.dialer.Dial(c.Endpoint(e.overrides))
		if err != nil {
			return nil, &ExecutionError{Code: ErrCodeRPCFailure, Message: "dial failed", Chain: c.String(), Err: err}
		}
		return fn(ctx, target{label: c.String(), client: client})
	})
}

// fetchFields returns the selected fields followed by any field a filter
// reads that was not selected.
func fetchFields[F comparable, P interface{ Field() F }](fields []F, filters []P) []F {
	out := slices.Clone(fields)
	for _, f := range filters {
		if !slices.Contains(out, f.Field()) {
			out = append(out, f.Field())
		}
	}
	return out
}

func requireFields[F any](kind ir.EntityKind, fields []F) error {
	if len(fields) == 0 {
		return &ExecutionError{Code: ErrCodeMissingFields, Message: "no fields selected for " + kind.String()}
	}
	return nil
}

func requireIDs[T any](kind ir.EntityKind, ids []T) error {
	if len(ids) == 0 {
		return &ExecutionError{Code: ErrCodeMissingIDs, Message: kind.String() + " queries need at least one id"}
	}
	return nil
}

// matchPtr applies a predicate to an optional column. An unset column never
// matches.
func matchPtr[T any](v *T, pred func(T) bool) bool {
	return v != nil && pred(*v)
}
