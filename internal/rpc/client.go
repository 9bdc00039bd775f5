// Package rpc is the Sui JSON-RPC client used by the engine.
//
// Client is the narrow method set the resolvers need. HTTPClient implements it
// over HTTP with per-request timeouts, bounded exponential retries, a
// per-endpoint token bucket, in-flight deduplication, and an optional
// persistent cache for responses that can never change.
package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
)

// Client is one Sui fullnode.
type Client interface {
	LatestCheckpoint(ctx context.Context) (uint64, error)
	Checkpoint(ctx context.Context, seq uint64) (*Checkpoint, error)
	MultiGetTransactions(ctx context.Context, digests []ir.Digest, opts TransactionOptions) ([]TransactionBlock, error)
	Balance(ctx context.Context, owner ir.Address, coinType ir.CoinType) (*Balance, error)
	AllBalances(ctx context.Context, owner ir.Address) ([]Balance, error)
	Stakes(ctx context.Context, owner ir.Address) ([]DelegatedStake, error)
	CoinMetadata(ctx context.Context, coinType ir.CoinType) (*CoinMetadata, error)
	Object(ctx context.Context, id ir.ObjectID, opts ObjectOptions) (*ObjectResponse, error)
	// ResolveName returns nil when the name has no target address.
	ResolveName(ctx context.Context, name string) (*ir.Address, error)
	// ReverseName returns the primary name of addr, or nil.
	ReverseName(ctx context.Context, addr ir.Address) (*string, error)
}

// Dialer hands out a Client per endpoint URL.
type Dialer interface {
	Dial(endpoint string) (Client, error)
}

// Cache stores raw results of immutable calls, keyed by endpoint, method and
// the encoded params.
type Cache interface {
	Get(ctx context.Context, endpoint, method string, params []byte) ([]byte, bool, error)
	Put(ctx context.Context, endpoint, method string, params, result []byte) error
}

// MaxMultiGet is the fullnode limit on digests per multiGet call.
const MaxMultiGet = 50

// ErrNotFound is returned when the node reports a missing checkpoint,
// transaction, object or coin.
var ErrNotFound = errors.New("not found")

// Error is a JSON-RPC error object, or a non-2xx HTTP status when Code is 0.
type Error struct {
	Endpoint string
	Method   string
	Code     int
	Status   int
	Message  string
}

func (e *Error) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("%s %s: http %d: %s", e.Endpoint, e.Method, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: rpc error %d: %s", e.Endpoint, e.Method, e.Code, e.Message)
}

// IsNotFound reports whether err means the requested item does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Chunk splits items into slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for len(items) > size {
		chunks = append(chunks, items[:size:size])
		items = items[size:]
	}
	return append(chunks, items)
}
