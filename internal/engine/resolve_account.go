package engine

import (
	"context"
	"slices"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/chain"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/result"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/rpc"
)

func (e *Engine) resolveAccounts(ctx context.Context, chains []chain.ChainOrRPC, q *ir.Account) ([]result.AccountRow, error) {
	if err := requireFields(ir.KindAccount, q.Fields); err != nil {
		return nil, err
	}
	if err := requireIDs(ir.KindAccount, q.IDs); err != nil {
		return nil, err
	}
	fetch := fetchFields(q.Fields, q.Filters)

	return onChains(ctx, e, chains, func(ctx context.Context, t target) ([]result.AccountRow, error) {
		return fanOut(ctx, e.concurrency, q.IDs, func(ctx context.Context, id ir.NameOrAddress) ([]result.AccountRow, error) {
			addr, err := resolveAddress(ctx, t, id)
			if err != nil {
				return nil, err
			}
			row, err := accountRow(ctx, t, addr, fetch)
			if err != nil {
				return nil, err
			}
			if !matchAccount(&row, q.Filters) {
				return nil, nil
			}
			row.Retain(q.Fields)
			return []result.AccountRow{row}, nil
		})
	})
}

// accountRow issues only the calls the requested fields need.
func accountRow(ctx context.Context, t target, addr ir.Address, fields []ir.AccountField) (result.AccountRow, error) {
	var row result.AccountRow
	id := addr.String()

	if slices.Contains(fields, ir.AccountStakedAmount) || slices.Contains(fields, ir.AccountActiveDelegations) {
		stakes, err := t.client.Stakes(ctx, addr)
		if err != nil {
			return row, rpcError(t.label, id, err)
		}
		var staked, active uint64
		for _, ds := range stakes {
			for _, s := range ds.Stakes {
				if s.Status == rpc.StakeActive {
					staked += uint64(s.Principal)
					active++
				}
			}
		}
		row.StakedAmount = result.Ptr(staked)
		row.ActiveDelegations = result.Ptr(active)
	}

	for _, f := range fields {
		switch f {
		case ir.AccountAddress:
			row.Address = result.Ptr(addr)
		case ir.AccountSuiBalance:
			b, err := t.client.Balance(ctx, addr, ir.SuiCoinType)
			if err != nil {
				return row, rpcError(t.label, id, err)
			}
			row.SuiBalance = result.Ptr(uint64(b.TotalBalance))
		case ir.AccountCoinOwned:
			bs, err := t.client.AllBalances(ctx, addr)
			if err != nil {
				return row, rpcError(t.label, id, err)
			}
			row.CoinOwned = result.Ptr(uint64(len(bs)))
		case ir.AccountStakedAmount, ir.AccountActiveDelegations:
			// Filled from the single stakes call above.
		case ir.AccountName:
			name, err := t.client.ReverseName(ctx, addr)
			if err != nil {
				return row, rpcError(t.label, id, err)
			}
			row.Name = name
		case ir.AccountChain:
			row.Chain = result.Ptr(t.label)
		}
	}
	return row, nil
}

func matchAccount(row *result.AccountRow, filters []ir.AccountFilter) bool {
	for _, f := range filters {
		switch f := f.(type) {
		case ir.AccountNumberFilter:
			if !matchPtr(accountUint(row, f.Target), f.Cmp.Matches) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func accountUint(row *result.AccountRow, f ir.AccountField) *uint64 {
	switch f {
	case ir.AccountSuiBalance:
		return row.SuiBalance
	case ir.AccountCoinOwned:
		return row.CoinOwned
	case ir.AccountStakedAmount:
		return row.StakedAmount
	case ir.AccountActiveDelegations:
		return row.ActiveDelegations
	}
	return nil
}
