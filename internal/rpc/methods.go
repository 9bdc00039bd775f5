package rpc

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
)

func (c *HTTPClient) LatestCheckpoint(ctx context.Context) (uint64, error) {
	var seq U64
	if err := c.call(ctx, "sui_getLatestCheckpointSequenceNumber", false, &seq); err != nil {
		return 0, err
	}
	return uint64(seq), nil
}

// Checkpoint fetches a checkpoint by sequence number. Recently fetched
// checkpoints are served from memory.
func (c *HTTPClient) Checkpoint(ctx context.Context, seq uint64) (*Checkpoint, error) {
	if v, ok := c.checkpoints.get(seq); ok {
		return v.(*Checkpoint), nil
	}
	var cp *Checkpoint
	if err := c.call(ctx, "sui_getCheckpoint", true, &cp, strconv.FormatUint(seq, 10)); err != nil {
		return nil, err
	}
	if cp == nil {
		return nil, fmt.Errorf("checkpoint %d: %w", seq, ErrNotFound)
	}
	c.checkpoints.add(seq, cp)
	return cp, nil
}

// MultiGetTransactions fetches digests in batches of MaxMultiGet, preserving
// input order.
func (c *HTTPClient) MultiGetTransactions(ctx context.Context, digests []ir.Digest, opts TransactionOptions) ([]TransactionBlock, error) {
	out := make([]TransactionBlock, 0, len(digests))
	for _, chunk := range Chunk(digests, MaxMultiGet) {
		ids := make([]string, len(chunk))
		for i, d := range chunk {
			ids[i] = d.String()
		}
		var page []TransactionBlock
		if err := c.call(ctx, "sui_multiGetTransactionBlocks", true, &page, ids, opts); err != nil {
			return nil, err
		}
		if len(page) != len(chunk) {
			return nil, fmt.Errorf("sui_multiGetTransactionBlocks: asked for %d transactions, got %d", len(chunk), len(page))
		}
		out = append(out, page...)
	}
	return out, nil
}

func (c *HTTPClient) Balance(ctx context.Context, owner ir.Address, coinType ir.CoinType) (*Balance, error) {
	var b Balance
	if err := c.call(ctx, "suix_getBalance", false, &b, owner.String(), string(coinType)); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *HTTPClient) AllBalances(ctx context.Context, owner ir.Address) ([]Balance, error) {
	var bs []Balance
	if err := c.call(ctx, "suix_getAllBalances", false, &bs, owner.String()); err != nil {
		return nil, err
	}
	return bs, nil
}

func (c *HTTPClient) Stakes(ctx context.Context, owner ir.Address) ([]DelegatedStake, error) {
	var stakes []DelegatedStake
	if err := c.call(ctx, "suix_getStakes", false, &stakes, owner.String()); err != nil {
		return nil, err
	}
	return stakes, nil
}

// CoinMetadata returns ErrNotFound when the coin type has no metadata object.
func (c *HTTPClient) CoinMetadata(ctx context.Context, coinType ir.CoinType) (*CoinMetadata, error) {
	var md *CoinMetadata
	if err := c.call(ctx, "suix_getCoinMetadata", false, &md, string(coinType)); err != nil {
		return nil, err
	}
	if md == nil {
		return nil, fmt.Errorf("coin metadata %s: %w", coinType, ErrNotFound)
	}
	return md, nil
}

// Object returns ErrNotFound for deleted or never-created objects.
func (c *HTTPClient) Object(ctx context.Context, id ir.ObjectID, opts ObjectOptions) (*ObjectResponse, error) {
	var resp ObjectResponse
	if err := c.call(ctx, "sui_getObject", false, &resp, id.String(), opts); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("object %s: %w", id, ErrNotFound)
	}
	return &resp, nil
}

func (c *HTTPClient) ResolveName(ctx context.Context, name string) (*ir.Address, error) {
	if v, ok := c.names.get(name); ok {
		return v.(*ir.Address), nil
	}
	var addr *ir.Address
	if err := c.call(ctx, "suix_resolveNameServiceAddress", false, &addr, name); err != nil {
		return nil, err
	}
	c.names.add(name, addr)
	return addr, nil
}

func (c *HTTPClient) ReverseName(ctx context.Context, addr ir.Address) (*string, error) {
	var page NamesPage
	if err := c.call(ctx, "suix_resolveNameServiceNames", false, &page, addr.String(), nil, 1); err != nil {
		return nil, err
	}
	if len(page.Data) == 0 {
		return nil, nil
	}
	name := page.Data[0]
	return &name, nil
}
