package engine

import (
	"context"
	"slices"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/chain"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/result"
)

func (e *Engine) resolveCoins(ctx context.Context, chains []chain.ChainOrRPC, q *ir.Coin) ([]result.CoinRow, error) {
	if err := requireFields(ir.KindCoin, q.Fields); err != nil {
		return nil, err
	}
	ids := q.IDs
	if len(ids) == 0 {
		ids = []ir.CoinType{ir.SuiCoinType}
	}
	fetch := fetchFields(q.Fields, q.Filters)
	owner := q.Owner()

	return onChains(ctx, e, chains, func(ctx context.Context, t target) ([]result.CoinRow, error) {
		var holder *ir.Address
		if owner != nil {
			addr, err := resolveAddress(ctx, t, *owner)
			if err != nil {
				return nil, err
			}
			holder = &addr
		}
		return fanOut(ctx, e.concurrency, ids, func(ctx context.Context, coinType ir.CoinType) ([]result.CoinRow, error) {
			row, err := coinRow(ctx, t, coinType, holder, fetch)
			if err != nil {
				return nil, err
			}
			if !matchCoin(&row, q.Filters) {
				return nil, nil
			}
			row.Retain(q.Fields)
			return []result.CoinRow{row}, nil
		})
	})
}

var coinMetadataFields = []ir.CoinField{ir.CoinDecimals, ir.CoinName, ir.CoinSymbol, ir.CoinDescription, ir.CoinIconURL}

// coinRow reads metadata when a metadata column is needed and the owner's
// balance when an owner was given.
func coinRow(ctx context.Context, t target, coinType ir.CoinType, holder *ir.Address, fields []ir.CoinField) (result.CoinRow, error) {
	var row result.CoinRow
	needsMetadata := slices.ContainsFunc(fields, func(f ir.CoinField) bool {
		return slices.Contains(coinMetadataFields, f)
	})
	if needsMetadata {
		md, err := t.client.CoinMetadata(ctx, coinType)
		if err != nil {
			return row, rpcError(t.label, coinType.String(), err)
		}
		row.Decimals = result.Ptr(uint64(md.Decimals))
		row.Name = result.Ptr(md.Name)
		row.Symbol = result.Ptr(md.Symbol)
		row.Description = result.Ptr(md.Description)
		row.IconURL = md.IconURL
	}

	for _, f := range fields {
		switch f {
		case ir.CoinCoinType:
			row.CoinType = result.Ptr(coinType)
		case ir.CoinDecimals, ir.CoinName, ir.CoinSymbol, ir.CoinDescription, ir.CoinIconURL:
			// Filled from the metadata call above.
		case ir.CoinBalance:
			if holder == nil {
				continue
			}
			b, err := t.client.Balance(ctx, *holder, coinType)
			if err != nil {
				return row, rpcError(t.label, coinType.String(), err)
			}
			row.Balance = result.Ptr(uint64(b.TotalBalance))
		case ir.CoinOwner:
			row.Owner = holder
		case ir.CoinChain:
			row.Chain = result.Ptr(t.label)
		}
	}
	return row, nil
}

func matchCoin(row *result.CoinRow, filters []ir.CoinFilter) bool {
	for _, f := range filters {
		var ok bool
		switch f := f.(type) {
		case ir.CoinOwnerFilter:
			ok = true
		case ir.CoinDecimalsFilter:
			ok = matchPtr(row.Decimals, f.Cmp.Matches)
		case ir.CoinSymbolFilter:
			ok = matchPtr(row.Symbol, f.Eq.Matches)
		}
		if !ok {
			return false
		}
	}
	return true
}
