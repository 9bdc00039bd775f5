package engine

import (
	"context"
	"errors"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/rpc"
)

// resolveAddress returns the address a name-or-address stands for. Names
// cost one forward lookup on the chain's endpoint.
func resolveAddress(ctx context.Context, t target, n ir.NameOrAddress) (ir.Address, error) {
	if n.Address != nil {
		return *n.Address, nil
	}
	addr, err := t.client.ResolveName(ctx, n.Name)
	if err != nil && !isNodeRejection(err) {
		return ir.Address{}, rpcError(t.label, n.Name, err)
	}
	if err != nil || addr == nil || addr.IsZero() {
		return ir.Address{}, &ExecutionError{
			Code:    ErrCodeResolverNotFound,
			Message: "name does not resolve to an address",
			Chain:   t.label,
			ID:      n.Name,
			Err:     err,
		}
	}
	return *addr, nil
}

// isNodeRejection reports whether the node answered with a JSON-RPC error,
// as it does for malformed or unregistered names, rather than failing to
// answer at all.
func isNodeRejection(err error) bool {
	var rerr *rpc.Error
	return errors.As(err, &rerr) && rerr.Code != 0
}
