package testutil

import (
	"bytes"
	"time"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/rpc"
)

// Digest returns the digest whose 32 bytes are all b.
func Digest(b byte) ir.Digest {
	var d ir.Digest
	copy(d[:], bytes.Repeat([]byte{b}, ir.AddressLength))
	return d
}

// Address returns the address whose 32 bytes are all b.
func Address(b byte) ir.Address {
	var a ir.Address
	copy(a[:], bytes.Repeat([]byte{b}, ir.AddressLength))
	return a
}

// ObjectID returns the object id whose last byte is b, like 0x5.
func ObjectID(b byte) ir.ObjectID {
	var id ir.ObjectID
	id[ir.AddressLength-1] = b
	return id
}

// Checkpoint builds a checkpoint whose fields derive from seq.
func Checkpoint(seq uint64, txs ...ir.Digest) *rpc.Checkpoint {
	return &rpc.Checkpoint{
		Epoch:                    rpc.U64(seq / 100),
		SequenceNumber:           rpc.U64(seq),
		Digest:                   Digest(byte(seq%250) + 1),
		NetworkTotalTransactions: rpc.U64(seq * 10),
		EpochRollingGasCostSummary: rpc.GasCostSummary{
			ComputationCost: rpc.U64(seq),
			StorageCost:     rpc.U64(2 * seq),
			StorageRebate:   rpc.U64(seq / 2),
		},
		TimestampMs:        rpc.U64(1_700_000_000_000 + seq),
		Transactions:       txs,
		ValidatorSignature: "sig",
	}
}

// Transaction builds a successful programmable transaction in checkpoint cp.
func Transaction(d ir.Digest, cp uint64, sender ir.Address, gas rpc.GasCostSummary) rpc.TransactionBlock {
	ts := rpc.U64(1_700_000_000_000 + cp)
	seq := rpc.U64(cp)
	return rpc.TransactionBlock{
		Digest: d,
		Transaction: &rpc.SenderSignedData{Data: rpc.TransactionData{
			Sender:      sender,
			GasData:     rpc.GasData{Owner: sender, Price: 750, Budget: 10_000_000},
			Transaction: rpc.TransactionKind{Kind: "ProgrammableTransaction"},
		}},
		Effects: &rpc.TransactionEffects{
			Status:        rpc.ExecutionStatus{Status: "success"},
			ExecutedEpoch: rpc.U64(cp / 100),
			GasUsed:       gas,
		},
		Events:      []rpc.Event{{Type: "0x2::coin::CoinEvent", Sender: sender}},
		TimestampMs: &ts,
		Checkpoint:  &seq,
	}
}

// ReverseDelay makes higher keys answer sooner, so completion order is the
// reverse of issue order for numeric keys.
func ReverseDelay(step time.Duration, keys ...string) func(method, key string) time.Duration {
	rank := make(map[string]int, len(keys))
	for i, k := range keys {
		rank[k] = len(keys) - i
	}
	return func(_, key string) time.Duration {
		return time.Duration(rank[key]) * step
	}
}
