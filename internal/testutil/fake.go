// Package testutil holds fakes and fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/rpc"
)

// FakeNode is an in-memory rpc.Client. Populate the maps before use; they
// are read under the node's lock. Unknown items behave like a real node:
// not found for checkpoints, transactions, objects and coin metadata, zero
// for balances.
type FakeNode struct {
	Latest        uint64
	Checkpoints   map[uint64]*rpc.Checkpoint
	Transactions  map[ir.Digest]rpc.TransactionBlock
	Balances      map[ir.Address][]rpc.Balance
	StakesByOwner map[ir.Address][]rpc.DelegatedStake
	Metadata      map[ir.CoinType]*rpc.CoinMetadata
	Objects       map[ir.ObjectID]*rpc.ObjectData
	Names         map[string]ir.Address
	Reverse       map[ir.Address]string

	// Delay, when set, is slept before answering. key identifies the item:
	// a sequence number, digest, address or object id.
	Delay func(method, key string) time.Duration

	// Fail makes every call of the named method return the error.
	Fail map[string]error

	mu    sync.Mutex
	calls map[string]int
}

var _ rpc.Client = (*FakeNode)(nil)

// NewFakeNode returns an empty node.
func NewFakeNode() *FakeNode {
	return &FakeNode{
		Checkpoints:   map[uint64]*rpc.Checkpoint{},
		Transactions:  map[ir.Digest]rpc.TransactionBlock{},
		Balances:      map[ir.Address][]rpc.Balance{},
		StakesByOwner: map[ir.Address][]rpc.DelegatedStake{},
		Metadata:      map[ir.CoinType]*rpc.CoinMetadata{},
		Objects:       map[ir.ObjectID]*rpc.ObjectData{},
		Names:         map[string]ir.Address{},
		Reverse:       map[ir.Address]string{},
		Fail:          map[string]error{},
		calls:         map[string]int{},
	}
}

// Calls returns how many times method was called.
func (n *FakeNode) Calls(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

// TotalCalls returns the number of calls over all methods.
func (n *FakeNode) TotalCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, c := range n.calls {
		total += c
	}
	return total
}

// enter records the call, sleeps for the configured delay and returns the
// injected failure, if any.
func (n *FakeNode) enter(ctx context.Context, method, key string) error {
	n.mu.Lock()
	n.calls[method]++
	delay := n.Delay
	fail := n.Fail[method]
	n.mu.Unlock()

	if delay != nil {
		if d := delay(method, key); d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fail
}

func (n *FakeNode) LatestCheckpoint(ctx context.Context) (uint64, error) {
	if err := n.enter(ctx, "LatestCheckpoint", ""); err != nil {
		return 0, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.Latest, nil
}

func (n *FakeNode) Checkpoint(ctx context.Context, seq uint64) (*rpc.Checkpoint, error) {
	if err := n.enter(ctx, "Checkpoint", fmt.Sprint(seq)); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	cp, ok := n.Checkpoints[seq]
	if !ok {
		return nil, fmt.Errorf("checkpoint %d: %w", seq, rpc.ErrNotFound)
	}
	return cp, nil
}

func (n *FakeNode) MultiGetTransactions(ctx context.Context, digests []ir.Digest, _ rpc.TransactionOptions) ([]rpc.TransactionBlock, error) {
	key := ""
	if len(digests) > 0 {
		key = digests[0].String()
	}
	if err := n.enter(ctx, "MultiGetTransactions", key); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]rpc.TransactionBlock, len(digests))
	for i, d := range digests {
		tx, ok := n.Transactions[d]
		if !ok {
			tx = rpc.TransactionBlock{Digest: d, Error: []byte(`{"code":"notExists"}`)}
		}
		out[i] = tx
	}
	return out, nil
}

func (n *FakeNode) Balance(ctx context.Context, owner ir.Address, coinType ir.CoinType) (*rpc.Balance, error) {
	if err := n.enter(ctx, "Balance", owner.String()); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, b := range n.Balances[owner] {
		if b.CoinType == string(coinType) {
			return &b, nil
		}
	}
	return &rpc.Balance{CoinType: string(coinType)}, nil
}

func (n *FakeNode) AllBalances(ctx context.Context, owner ir.Address) ([]rpc.Balance, error) {
	if err := n.enter(ctx, "AllBalances", owner.String()); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.Balances[owner], nil
}

func (n *FakeNode) Stakes(ctx context.Context, owner ir.Address) ([]rpc.DelegatedStake, error) {
	if err := n.enter(ctx, "Stakes", owner.String()); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.StakesByOwner[owner], nil
}

func (n *FakeNode) CoinMetadata(ctx context.Context, coinType ir.CoinType) (*rpc.CoinMetadata, error) {
	if err := n.enter(ctx, "CoinMetadata", string(coinType)); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	md, ok := n.Metadata[coinType]
	if !ok {
		return nil, fmt.Errorf("coin metadata %s: %w", coinType, rpc.ErrNotFound)
	}
	return md, nil
}

func (n *FakeNode) Object(ctx context.Context, id ir.ObjectID, _ rpc.ObjectOptions) (*rpc.ObjectResponse, error) {
	if err := n.enter(ctx, "Object", id.String()); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	obj, ok := n.Objects[id]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", id, rpc.ErrNotFound)
	}
	return &rpc.ObjectResponse{Data: obj}, nil
}

func (n *FakeNode) ResolveName(ctx context.Context, name string) (*ir.Address, error) {
	if err := n.enter(ctx, "ResolveName", name); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	addr, ok := n.Names[name]
	if !ok {
		return nil, nil
	}
	return &addr, nil
}

func (n *FakeNode) ReverseName(ctx context.Context, addr ir.Address) (*string, error) {
	if err := n.enter(ctx, "ReverseName", addr.String()); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	name, ok := n.Reverse[addr]
	if !ok {
		return nil, nil
	}
	return &name, nil
}

// FakeDialer maps endpoint URLs to fake nodes.
type FakeDialer struct {
	mu    sync.Mutex
	nodes map[string]*FakeNode
	dials map[string]int
}

var _ rpc.Dialer = (*FakeDialer)(nil)

// NewFakeDialer returns a dialer with no endpoints.
func NewFakeDialer() *FakeDialer {
	return &FakeDialer{nodes: map[string]*FakeNode{}, dials: map[string]int{}}
}

// Add registers node under endpoint and returns it.
func (d *FakeDialer) Add(endpoint string, node *FakeNode) *FakeNode {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nodes[endpoint] = node
	return node
}

// Dial fails for endpoints that were never added.
func (d *FakeDialer) Dial(endpoint string) (rpc.Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials[endpoint]++
	node, ok := d.nodes[endpoint]
	if !ok {
		return nil, fmt.Errorf("no fake node for %s", endpoint)
	}
	return node, nil
}

// Dials returns how often endpoint was dialed.
func (d *FakeDialer) Dials(endpoint string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials[endpoint]
}

// TotalCalls sums calls over every registered node.
func (d *FakeDialer) TotalCalls() int {
	d.mu.Lock()
	nodes := make([]*FakeNode, 0, len(d.nodes))
	for _, n := range d.nodes {
		nodes = append(nodes, n)
	}
	d.mu.Unlock()

	total := 0
	for _, n := range nodes {
		total += n.TotalCalls()
	}
	return total
}
