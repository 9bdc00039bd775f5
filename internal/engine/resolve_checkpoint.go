package engine

import (
	"context"
	"strconv"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/chain"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/result"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/rpc"
)

func (e *Engine) resolveCheckpoints(ctx context.Context, chains []chain.ChainOrRPC, q *ir.Checkpoint) ([]result.CheckpointRow, error) {
	if err := requireFields(ir.KindCheckpoint, q.Fields); err != nil {
		return nil, err
	}
	if len(q.IDs) == 0 {
		return nil, &ExecutionError{Code: ErrCodeMissingCheckpointID, Message: "checkpoint queries need a number, tag or range"}
	}
	fetch := fetchFields(q.Fields, q.Filters)

	return onChains(ctx, e, chains, func(ctx context.Context, t target) ([]result.CheckpointRow, error) {
		seqs, err := expandCheckpoints(ctx, t, q.IDs, newRowQuota(t.label, e.maxRows))
		if err != nil {
			return nil, err
		}
		return fanOut(ctx, e.concurrency, seqs, func(ctx context.Context, seq uint64) ([]result.CheckpointRow, error) {
			cp, err := t.client.Checkpoint(ctx, seq)
			if err != nil {
				return nil, rpcError(t.label, strconv.FormatUint(seq, 10), err)
			}
			row := checkpointRow(cp, fetch, t.label)
			if !matchCheckpoint(&row, q.Filters) {
				return nil, nil
			}
			row.Retain(q.Fields)
			return []result.CheckpointRow{row}, nil
		})
	})
}

// tipResolver turns tags into sequence numbers for one chain task. The
// latest checkpoint is looked up at most once per task.
type tipResolver struct {
	t      target
	latest *uint64
}

func (r *tipResolver) resolve(ctx context.Context, n ir.CheckpointNumberOrTag) (uint64, error) {
	switch n.Tag {
	case ir.TagEarliest:
		return 0, nil
	case ir.TagLatest:
		if r.latest == nil {
			seq, err := r.t.client.LatestCheckpoint(ctx)
			if err != nil {
				return 0, rpcError(r.t.label, "latest", err)
			}
			r.latest = &seq
		}
		return *r.latest, nil
	}
	return n.Number, nil
}

// expandCheckpoints resolves ids to the ordered list of sequence numbers
// they cover. Ranges are inclusive.
func expandCheckpoints(ctx context.Context, t target, ids []ir.CheckpointID, quota *rowQuota) ([]uint64, error) {
	tips := &tipResolver{t: t}
	var seqs []uint64
	for _, id := range ids {
		switch {
		case id.Number != nil:
			seq, err := tips.resolve(ctx, *id.Number)
			if err != nil {
				return nil, err
			}
			if err := quota.Take(1); err != nil {
				return nil, err
			}
			seqs = append(seqs, seq)
		case id.Range != nil:
			start, err := tips.resolve(ctx, id.Range.Start)
			if err != nil {
				return nil, err
			}
			end := start
			if id.Range.End != nil {
				if end, err = tips.resolve(ctx, *id.Range.End); err != nil {
					return nil, err
				}
			}
			if start > end {
				return nil, newStartAfterEndError(t.label, start, end)
			}
			if err := quota.TakeRange(start, end); err != nil {
				return nil, err
			}
			for seq := start; ; seq++ {
				seqs = append(seqs, seq)
				if seq == end {
					break
				}
			}
		}
	}
	return seqs, nil
}

func checkpointRow(cp *rpc.Checkpoint, fields []ir.CheckpointField, label string) result.CheckpointRow {
	var row result.CheckpointRow
	gas := cp.EpochRollingGasCostSummary
	for _, f := range fields {
		switch f {
		case ir.CheckpointEpoch:
			row.Epoch = result.Ptr(uint64(cp.Epoch))
		case ir.CheckpointNumber:
			row.Number = result.Ptr(uint64(cp.SequenceNumber))
		case ir.CheckpointDigest:
			row.Digest = result.Ptr(cp.Digest)
		case ir.CheckpointTimestamp:
			row.Timestamp = result.Ptr(uint64(cp.TimestampMs))
		case ir.CheckpointTransactions:
			row.Transactions = result.Ptr(uint64(len(cp.Transactions)))
		case ir.CheckpointValidatorSignature:
			row.ValidatorSignature = result.Ptr(cp.ValidatorSignature)
		case ir.CheckpointChain:
			row.Chain = result.Ptr(label)
		case ir.CheckpointComputationCost:
			row.ComputationCost = result.Ptr(uint64(gas.ComputationCost))
		case ir.CheckpointStorageCost:
			row.StorageCost = result.Ptr(uint64(gas.StorageCost))
		case ir.CheckpointStorageRebate:
			row.StorageRebate = result.Ptr(uint64(gas.StorageRebate))
		case ir.CheckpointNonRefundableStorageFee:
			row.NonRefundableStorageFee = result.Ptr(uint64(gas.NonRefundableStorageFee))
		case ir.CheckpointPreviousDigest:
			row.PreviousDigest = cp.PreviousDigest
		case ir.CheckpointNetworkTotalTransactions:
			row.NetworkTotalTransactions = result.Ptr(uint64(cp.NetworkTotalTransactions))
		}
	}
	return row
}

func matchCheckpoint(row *result.CheckpointRow, filters []ir.CheckpointFilter) bool {
	for _, f := range filters {
		switch f := f.(type) {
		case ir.CheckpointNumberFilter:
			if !matchPtr(checkpointUint(row, f.Target), f.Cmp.Matches) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func checkpointUint(row *result.CheckpointRow, f ir.CheckpointField) *uint64 {
	switch f {
	case ir.CheckpointEpoch:
		return row.Epoch
	case ir.CheckpointNumber:
		return row.Number
	case ir.CheckpointTimestamp:
		return row.Timestamp
	case ir.CheckpointTransactions:
		return row.Transactions
	case ir.CheckpointComputationCost:
		return row.ComputationCost
	case ir.CheckpointStorageCost:
		return row.StorageCost
	case ir.CheckpointStorageRebate:
		return row.StorageRebate
	case ir.CheckpointNonRefundableStorageFee:
		return row.NonRefundableStorageFee
	case ir.CheckpointNetworkTotalTransactions:
		return row.NetworkTotalTransactions
	}
	return nil
}
