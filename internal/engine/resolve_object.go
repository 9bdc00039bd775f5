package engine

import (
	"context"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/chain"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/result"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/rpc"
)

var objectOptions = rpc.ObjectOptions{
	ShowType:                true,
	ShowOwner:               true,
	ShowPreviousTransaction: true,
	ShowStorageRebate:       true,
}

func (e *Engine) resolveObjects(ctx context.Context, chains []chain.ChainOrRPC, q *ir.Object) ([]result.ObjectRow, error) {
	if err := requireFields(ir.KindObject, q.Fields); err != nil {
		return nil, err
	}
	if err := requireIDs(ir.KindObject, q.IDs); err != nil {
		return nil, err
	}
	fetch := fetchFields(q.Fields, q.Filters)

	return onChains(ctx, e, chains, func(ctx context.Context, t target) ([]result.ObjectRow, error) {
		return fanOut(ctx, e.concurrency, q.IDs, func(ctx context.Context, id ir.ObjectID) ([]result.ObjectRow, error) {
			resp, err := t.client.Object(ctx, id, objectOptions)
			if err != nil {
				return nil, rpcError(t.label, id.String(), err)
			}
			row := objectRow(resp.Data, fetch, t.label)
			if !matchObject(&row, q.Filters) {
				return nil, nil
			}
			row.Retain(q.Fields)
			return []result.ObjectRow{row}, nil
		})
	})
}

func objectRow(obj *rpc.ObjectData, fields []ir.ObjectField, label string) result.ObjectRow {
	var row result.ObjectRow
	for _, f := range fields {
		switch f {
		case ir.ObjectObjectID:
			row.ObjectID = result.Ptr(obj.ObjectID)
		case ir.ObjectVersion:
			row.Version = result.Ptr(uint64(obj.Version))
		case ir.ObjectDigest:
			row.Digest = result.Ptr(obj.Digest)
		case ir.ObjectType:
			row.Type = obj.Type
		case ir.ObjectOwner:
			if obj.Owner != nil {
				row.Owner = result.Ptr(obj.Owner.String())
			}
		case ir.ObjectPreviousTransaction:
			row.PreviousTransaction = obj.PreviousTransaction
		case ir.ObjectStorageRebate:
			if obj.StorageRebate != nil {
				row.StorageRebate = result.Ptr(uint64(*obj.StorageRebate))
			}
		case ir.ObjectChain:
			row.Chain = result.Ptr(label)
		}
	}
	return row
}

func matchObject(row *result.ObjectRow, filters []ir.ObjectFilter) bool {
	for _, f := range filters {
		var ok bool
		switch f := f.(type) {
		case ir.ObjectNumberFilter:
			switch f.Target {
			case ir.ObjectVersion:
				ok = matchPtr(row.Version, f.Cmp.Matches)
			case ir.ObjectStorageRebate:
				ok = matchPtr(row.StorageRebate, f.Cmp.Matches)
			}
		case ir.ObjectTypeFilter:
			ok = matchPtr(row.Type, f.Eq.Matches)
		case ir.ObjectOwnerFilter:
			ok = matchPtr(row.Owner, f.Eq.Matches)
		}
		if !ok {
			return false
		}
	}
	return true
}
