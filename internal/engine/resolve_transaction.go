package engine

import (
	"context"
	"slices"
	"strconv"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/chain"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/result"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/rpc"
)

func (e *Engine) resolveTransactions(ctx context.Context, chains []chain.ChainOrRPC, q *ir.Transaction) ([]result.TransactionRow, error) {
	if err := requireFields(ir.KindTransaction, q.Fields); err != nil {
		return nil, err
	}
	cpFilter := q.CheckpointFilter()
	if len(q.IDs) == 0 && cpFilter == nil {
		return nil, &ExecutionError{
			Code:    ErrCodeMissingTxHashOrFilter,
			Message: "tx queries need transaction digests or a checkpoint filter",
		}
	}
	fetch := fetchFields(q.Fields, q.Filters)
	opts := transactionOptions(fetch)

	return onChains(ctx, e, chains, func(ctx context.Context, t target) ([]result.TransactionRow, error) {
		var inRange map[uint64]struct{}
		digests := q.IDs
		if cpFilter != nil {
			seqs, err := expandCheckpoints(ctx, t, []ir.CheckpointID{*cpFilter}, newRowQuota(t.label, e.maxRows))
			if err != nil {
				return nil, err
			}
			inRange = make(map[uint64]struct{}, len(seqs))
			for _, s := range seqs {
				inRange[s] = struct{}{}
			}
			if len(digests) == 0 {
				if digests, err = e.checkpointDigests(ctx, t, seqs); err != nil {
					return nil, err
				}
			}
		}

		return fanOut(ctx, e.concurrency, rpc.Chunk(digests, rpc.MaxMultiGet), func(ctx context.Context, chunk []ir.Digest) ([]result.TransactionRow, error) {
			txs, err := t.client.MultiGetTransactions(ctx, chunk, opts)
			if err != nil {
				return nil, rpcError(t.label, chunk[0].String(), err)
			}
			rows := make([]result.TransactionRow, 0, len(txs))
			for i := range txs {
				tx := &txs[i]
				if len(tx.Error) > 0 {
					return nil, &ExecutionError{Code: ErrCodeNotFound, Message: "transaction not found", Chain: t.label, ID: chunk[i].String()}
				}
				row := transactionRow(tx, fetch, t.label)
				if !matchTransaction(&row, q.Filters, inRange) {
					continue
				}
				row.Retain(q.Fields)
				rows = append(rows, row)
			}
			return rows, nil
		})
	})
}

// checkpointDigests fetches checkpoints and returns their transaction
// digests in checkpoint order.
func (e *Engine) checkpointDigests(ctx context.Context, t target, seqs []uint64) ([]ir.Digest, error) {
	return fanOut(ctx, e.concurrency, seqs, func(ctx context.Context, seq uint64) ([]ir.Digest, error) {
		cp, err := t.client.Checkpoint(ctx, seq)
		if err != nil {
			return nil, rpcError(t.label, strconv.FormatUint(seq, 10), err)
		}
		return cp.Transactions, nil
	})
}

func transactionOptions(fields []ir.TransactionField) rpc.TransactionOptions {
	return rpc.TransactionOptions{
		ShowInput:         true,
		ShowEffects:       true,
		ShowEvents:        true,
		ShowObjectChanges: slices.Contains(fields, ir.TransactionTotalObjectChanges),
	}
}

func transactionRow(tx *rpc.TransactionBlock, fields []ir.TransactionField, label string) result.TransactionRow {
	var row result.TransactionRow
	var data *rpc.TransactionData
	if tx.Transaction != nil {
		data = &tx.Transaction.Data
	}
	effects := tx.Effects

	for _, f := range fields {
		switch f {
		case ir.TransactionType:
			if data != nil {
				row.Type = result.Ptr(data.Transaction.Kind)
			}
		case ir.TransactionDigest:
			row.Digest = result.Ptr(tx.Digest)
		case ir.TransactionSender:
			if data != nil {
				row.Sender = result.Ptr(data.Sender)
			}
		case ir.TransactionGasBudget:
			if data != nil {
				row.GasBudget = result.Ptr(uint64(data.GasData.Budget))
			}
		case ir.TransactionGasPrice:
			if data != nil {
				row.GasPrice = result.Ptr(uint64(data.GasData.Price))
			}
		case ir.TransactionGasUsed:
			if effects != nil {
				row.GasUsed = result.Ptr(effects.GasUsed.Net())
			}
		case ir.TransactionComputationCost:
			if effects != nil {
				row.ComputationCost = result.Ptr(uint64(effects.GasUsed.ComputationCost))
			}
		case ir.TransactionStorageCost:
			if effects != nil {
				row.StorageCost = result.Ptr(uint64(effects.GasUsed.StorageCost))
			}
		case ir.TransactionStorageRebate:
			if effects != nil {
				row.StorageRebate = result.Ptr(uint64(effects.GasUsed.StorageRebate))
			}
		case ir.TransactionStatus:
			if effects != nil {
				row.Status = result.Ptr(effects.Status.Success())
			}
		case ir.TransactionExecutedEpoch:
			if effects != nil {
				row.ExecutedEpoch = result.Ptr(uint64(effects.ExecutedEpoch))
			}
		case ir.TransactionCheckpoint:
			if tx.Checkpoint != nil {
				row.Checkpoint = result.Ptr(uint64(*tx.Checkpoint))
			}
		case ir.TransactionTimestampMs:
			if tx.TimestampMs != nil {
				row.TimestampMs = result.Ptr(uint64(*tx.TimestampMs))
			}
		case ir.TransactionTotalEvents:
			row.TotalEvents = result.Ptr(uint64(len(tx.Events)))
		case ir.TransactionTotalObjectChanges:
			row.TotalObjectChanges = result.Ptr(uint64(len(tx.ObjectChanges)))
		case ir.TransactionChain:
			row.Chain = result.Ptr(label)
		}
	}
	return row
}

// matchTransaction ANDs the filters. inRange holds the checkpoints a
// checkpoint filter resolved to.
func matchTransaction(row *result.TransactionRow, filters []ir.TransactionFilter, inRange map[uint64]struct{}) bool {
	for _, f := range filters {
		var ok bool
		switch f := f.(type) {
		case ir.TransactionCheckpointFilter:
			ok = matchPtr(row.Checkpoint, func(cp uint64) bool {
				_, hit := inRange[cp]
				return hit
			})
		case ir.TransactionNumberFilter:
			ok = matchPtr(transactionUint(row, f.Target), f.Cmp.Matches)
		case ir.TransactionGasUsedFilter:
			ok = matchPtr(row.GasUsed, f.Cmp.Matches)
		case ir.TransactionSenderFilter:
			ok = matchPtr(row.Sender, f.Eq.Matches)
		case ir.TransactionDigestFilter:
			ok = matchPtr(row.Digest, f.Eq.Matches)
		case ir.TransactionStatusFilter:
			ok = matchPtr(row.Status, f.Eq.Matches)
		case ir.TransactionTypeFilter:
			ok = matchPtr(row.Type, f.Eq.Matches)
		}
		if !ok {
			return false
		}
	}
	return true
}

func transactionUint(row *result.TransactionRow, f ir.TransactionField) *uint64 {
	switch f {
	case ir.TransactionGasBudget:
		return row.GasBudget
	case ir.TransactionGasPrice:
		return row.GasPrice
	case ir.TransactionComputationCost:
		return row.ComputationCost
	case ir.TransactionStorageCost:
		return row.StorageCost
	case ir.TransactionStorageRebate:
		return row.StorageRebate
	case ir.TransactionExecutedEpoch:
		return row.ExecutedEpoch
	case ir.TransactionCheckpoint:
		return row.Checkpoint
	case ir.TransactionTimestampMs:
		return row.TimestampMs
	case ir.TransactionTotalEvents:
		return row.TotalEvents
	case ir.TransactionTotalObjectChanges:
		return row.TotalObjectChanges
	}
	return nil
}
