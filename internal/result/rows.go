package result

import (
	"slices"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
)

// AccountRow is one account on one chain.
type AccountRow struct {
	Address           *ir.Address `json:"address,omitempty"`
	SuiBalance        *uint64     `json:"sui_balance,omitempty"`
	CoinOwned         *uint64     `json:"coin_owned,omitempty"`
	StakedAmount      *uint64     `json:"staked_amount,omitempty"`
	ActiveDelegations *uint64     `json:"active_delegations,omitempty"`
	Name              *string     `json:"name,omitempty"`
	Chain             *string     `json:"chain,omitempty"`
}

// Cells returns the row's columns in declaration order.
func (r AccountRow) Cells() []Cell {
	return []Cell{
		cell(ir.AccountAddress.String(), r.Address, formatStringer[ir.Address]),
		cell(ir.AccountSuiBalance.String(), r.SuiBalance, formatUint),
		cell(ir.AccountCoinOwned.String(), r.CoinOwned, formatUint),
		cell(ir.AccountStakedAmount.String(), r.StakedAmount, formatUint),
		cell(ir.AccountActiveDelegations.String(), r.ActiveDelegations, formatUint),
		cell(ir.AccountName.String(), r.Name, formatString),
		cell(ir.AccountChain.String(), r.Chain, formatString),
	}
}

// Retain clears every column not listed in fields.
func (r *AccountRow) Retain(fields []ir.AccountField) {
	for _, f := range ir.AllAccountFields() {
		if slices.Contains(fields, f) {
			continue
		}
		switch f {
		case ir.AccountAddress:
			r.Address = nil
		case ir.AccountSuiBalance:
			r.SuiBalance = nil
		case ir.AccountCoinOwned:
			r.CoinOwned = nil
		case ir.AccountStakedAmount:
			r.StakedAmount = nil
		case ir.AccountActiveDelegations:
			r.ActiveDelegations = nil
		case ir.AccountName:
			r.Name = nil
		case ir.AccountChain:
			r.Chain = nil
		}
	}
}

// CheckpointRow is one checkpoint on one chain.
type CheckpointRow struct {
	Epoch                    *uint64    `json:"epoch,omitempty"`
	Number                   *uint64    `json:"number,omitempty"`
	Digest                   *ir.Digest `json:"digest,omitempty"`
	Timestamp                *uint64    `json:"timestamp,omitempty"`
	Transactions             *uint64    `json:"transactions,omitempty"`
	ValidatorSignature       *string    `json:"validator_signature,omitempty"`
	Chain                    *string    `json:"chain,omitempty"`
	ComputationCost          *uint64    `json:"computation_cost,omitempty"`
	StorageCost              *uint64    `json:"storage_cost,omitempty"`
	StorageRebate            *uint64    `json:"storage_rebate,omitempty"`
	NonRefundableStorageFee  *uint64    `json:"non_refundable_storage_fee,omitempty"`
	PreviousDigest           *ir.Digest `json:"previous_digest,omitempty"`
	NetworkTotalTransactions *uint64    `json:"network_total_transactions,omitempty"`
}

// Cells returns the row's columns in declaration order.
func (r CheckpointRow) Cells() []Cell {
	return []Cell{
		cell(ir.CheckpointEpoch.String(), r.Epoch, formatUint),
		cell(ir.CheckpointNumber.String(), r.Number, formatUint),
		cell(ir.CheckpointDigest.String(), r.Digest, formatStringer[ir.Digest]),
		cell(ir.CheckpointTimestamp.String(), r.Timestamp, formatUint),
		cell(ir.CheckpointTransactions.String(), r.Transactions, formatUint),
		cell(ir.CheckpointValidatorSignature.String(), r.ValidatorSignature, formatString),
		cell(ir.CheckpointChain.String(), r.Chain, formatString),
		cell(ir.CheckpointComputationCost.String(), r.ComputationCost, formatUint),
		cell(ir.CheckpointStorageCost.String(), r.StorageCost, formatUint),
		cell(ir.CheckpointStorageRebate.String(), r.StorageRebate, formatUint),
		cell(ir.CheckpointNonRefundableStorageFee.String(), r.NonRefundableStorageFee, formatUint),
		cell(ir.CheckpointPreviousDigest.String(), r.PreviousDigest, formatStringer[ir.Digest]),
		cell(ir.CheckpointNetworkTotalTransactions.String(), r.NetworkTotalTransactions, formatUint),
	}
}

// Retain clears every column not listed in fields.
func (r *CheckpointRow) Retain(fields []ir.CheckpointField) {
	for _, f := range ir.AllCheckpointFields() {
		if slices.Contains(fields, f) {
			continue
		}
		switch f {
		case ir.CheckpointEpoch:
			r.Epoch = nil
		case ir.CheckpointNumber:
			r.Number = nil
		case ir.CheckpointDigest:
			r.Digest = nil
		case ir.CheckpointTimestamp:
			r.Timestamp = nil
		case ir.CheckpointTransactions:
			r.Transactions = nil
		case ir.CheckpointValidatorSignature:
			r.ValidatorSignature = nil
		case ir.CheckpointChain:
			r.Chain = nil
		case ir.CheckpointComputationCost:
			r.ComputationCost = nil
		case ir.CheckpointStorageCost:
			r.StorageCost = nil
		case ir.CheckpointStorageRebate:
			r.StorageRebate = nil
		case ir.CheckpointNonRefundableStorageFee:
			r.NonRefundableStorageFee = nil
		case ir.CheckpointPreviousDigest:
			r.PreviousDigest = nil
		case ir.CheckpointNetworkTotalTransactions:
			r.NetworkTotalTransactions = nil
		}
	}
}

// TransactionRow is one transaction block on one chain.
type TransactionRow struct {
	Type               *string     `json:"type,omitempty"`
	Digest             *ir.Digest  `json:"digest,omitempty"`
	Sender             *ir.Address `json:"sender,omitempty"`
	GasBudget          *uint64     `json:"gas_budget,omitempty"`
	GasPrice           *uint64     `json:"gas_price,omitempty"`
	GasUsed            *int64      `json:"gas_used,omitempty"`
	ComputationCost    *uint64     `json:"computation_cost,omitempty"`
	StorageCost        *uint64     `json:"storage_cost,omitempty"`
	StorageRebate      *uint64     `json:"storage_rebate,omitempty"`
	Status             *bool       `json:"status,omitempty"`
	ExecutedEpoch      *uint64     `json:"executed_epoch,omitempty"`
	Checkpoint         *uint64     `json:"checkpoint,omitempty"`
	TimestampMs        *uint64     `json:"timestamp_ms,omitempty"`
	TotalEvents        *uint64     `json:"total_events,omitempty"`
	TotalObjectChanges *uint64     `json:"total_object_changes,omitempty"`
	Chain              *string     `json:"chain,omitempty"`
}

// Cells returns the row's columns in declaration order.
func (r TransactionRow) Cells() []Cell {
	return []Cell{
		cell(ir.TransactionType.String(), r.Type, formatString),
		cell(ir.TransactionDigest.String(), r.Digest, formatStringer[ir.Digest]),
		cell(ir.TransactionSender.String(), r.Sender, formatStringer[ir.Address]),
		cell(ir.TransactionGasBudget.String(), r.GasBudget, formatUint),
		cell(ir.TransactionGasPrice.String(), r.GasPrice, formatUint),
		cell(ir.TransactionGasUsed.String(), r.GasUsed, formatInt),
		cell(ir.TransactionComputationCost.String(), r.ComputationCost, formatUint),
		cell(ir.TransactionStorageCost.String(), r.StorageCost, formatUint),
		cell(ir.TransactionStorageRebate.String(), r.StorageRebate, formatUint),
		cell(ir.TransactionStatus.String(), r.Status, formatBool),
		cell(ir.TransactionExecutedEpoch.String(), r.ExecutedEpoch, formatUint),
		cell(ir.TransactionCheckpoint.String(), r.Checkpoint, formatUint),
		cell(ir.TransactionTimestampMs.String(), r.TimestampMs, formatUint),
		cell(ir.TransactionTotalEvents.String(), r.TotalEvents, formatUint),
		cell(ir.TransactionTotalObjectChanges.String(), r.TotalObjectChanges, formatUint),
		cell(ir.TransactionChain.String(), r.Chain, formatString),
	}
}

// Retain clears every column not listed in fields.
func (r *TransactionRow) Retain(fields []ir.TransactionField) {
	for _, f := range ir.AllTransactionFields() {
		if slices.Contains(fields, f) {
			continue
		}
		switch f {
		case ir.TransactionType:
			r.Type = nil
		case ir.TransactionDigest:
			r.Digest = nil
		case ir.TransactionSender:
			r.Sender = nil
		case ir.TransactionGasBudget:
			r.GasBudget = nil
		case ir.TransactionGasPrice:
			r.GasPrice = nil
		case ir.TransactionGasUsed:
			r.GasUsed = nil
		case ir.TransactionComputationCost:
			r.ComputationCost = nil
		case ir.TransactionStorageCost:
			r.StorageCost = nil
		case ir.TransactionStorageRebate:
			r.StorageRebate = nil
		case ir.TransactionStatus:
			r.Status = nil
		case ir.TransactionExecutedEpoch:
			r.ExecutedEpoch = nil
		case ir.TransactionCheckpoint:
			r.Checkpoint = nil
		case ir.TransactionTimestampMs:
			r.TimestampMs = nil
		case ir.TransactionTotalEvents:
			r.TotalEvents = nil
		case ir.TransactionTotalObjectChanges:
			r.TotalObjectChanges = nil
		case ir.TransactionChain:
			r.Chain = nil
		}
	}
}

// CoinRow is one coin type on one chain, optionally with an owner's balance.
type CoinRow struct {
	CoinType    *ir.CoinType `json:"coin_type,omitempty"`
	Decimals    *uint64      `json:"decimals,omitempty"`
	Name        *string      `json:"name,omitempty"`
	Symbol      *string      `json:"symbol,omitempty"`
	Description *string      `json:"description,omitempty"`
	IconURL     *string      `json:"icon_url,omitempty"`
	Balance     *uint64      `json:"balance,omitempty"`
	Owner       *ir.Address  `json:"owner,omitempty"`
	Chain       *string      `json:"chain,omitempty"`
}

// Cells returns the row's columns in declaration order.
func (r CoinRow) Cells() []Cell {
	return []Cell{
		cell(ir.CoinCoinType.String(), r.CoinType, formatStringer[ir.CoinType]),
		cell(ir.CoinDecimals.String(), r.Decimals, formatUint),
		cell(ir.CoinName.String(), r.Name, formatString),
		cell(ir.CoinSymbol.String(), r.Symbol, formatString),
		cell(ir.CoinDescription.String(), r.Description, formatString),
		cell(ir.CoinIconURL.String(), r.IconURL, formatString),
		cell(ir.CoinBalance.String(), r.Balance, formatUint),
		cell(ir.CoinOwner.String(), r.Owner, formatStringer[ir.Address]),
		cell(ir.CoinChain.String(), r.Chain, formatString),
	}
}

// Retain clears every column not listed in fields.
func (r *CoinRow) Retain(fields []ir.CoinField) {
	for _, f := range ir.AllCoinFields() {
		if slices.Contains(fields, f) {
			continue
		}
		switch f {
		case ir.CoinCoinType:
			r.CoinType = nil
		case ir.CoinDecimals:
			r.Decimals = nil
		case ir.CoinName:
			r.Name = nil
		case ir.CoinSymbol:
			r.Symbol = nil
		case ir.CoinDescription:
			r.Description = nil
		case ir.CoinIconURL:
			r.IconURL = nil
		case ir.CoinBalance:
			r.Balance = nil
		case ir.CoinOwner:
			r.Owner = nil
		case ir.CoinChain:
			r.Chain = nil
		}
	}
}

// ObjectRow is one object on one chain.
type ObjectRow struct {
	ObjectID            *ir.ObjectID `json:"object_id,omitempty"`
	Version             *uint64      `json:"version,omitempty"`
	Digest              *ir.Digest   `json:"digest,omitempty"`
	Type                *string      `json:"type,omitempty"`
	Owner               *string      `json:"owner,omitempty"`
	PreviousTransaction *ir.Digest   `json:"previous_transaction,omitempty"`
	StorageRebate       *uint64      `json:"storage_rebate,omitempty"`
	Chain               *string      `json:"chain,omitempty"`
}

// Cells returns the row's columns in declaration order.
func (r ObjectRow) Cells() []Cell {
	return []Cell{
		cell(ir.ObjectObjectID.String(), r.ObjectID, formatStringer[ir.ObjectID]),
		cell(ir.ObjectVersion.String(), r.Version, formatUint),
		cell(ir.ObjectDigest.String(), r.Digest, formatStringer[ir.Digest]),
		cell(ir.ObjectType.String(), r.Type, formatString),
		cell(ir.ObjectOwner.String(), r.Owner, formatString),
		cell(ir.ObjectPreviousTransaction.String(), r.PreviousTransaction, formatStringer[ir.Digest]),
		cell(ir.ObjectStorageRebate.String(), r.StorageRebate, formatUint),
		cell(ir.ObjectChain.String(), r.Chain, formatString),
	}
}

// Retain clears every column not listed in fields.
func (r *ObjectRow) Retain(fields []ir.ObjectField) {
	for _, f := range ir.AllObjectFields() {
		if slices.Contains(fields, f) {
			continue
		}
		switch f {
		case ir.ObjectObjectID:
			r.ObjectID = nil
		case ir.ObjectVersion:
			r.Version = nil
		case ir.ObjectDigest:
			r.Digest = nil
		case ir.ObjectType:
			r.Type = nil
		case ir.ObjectOwner:
			r.Owner = nil
		case ir.ObjectPreviousTransaction:
			r.PreviousTransaction = nil
		case ir.ObjectStorageRebate:
			r.StorageRebate = nil
		case ir.ObjectChain:
			r.Chain = nil
		}
	}
}
