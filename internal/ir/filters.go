package ir

import (
	"errors"
	"strings"
)

// AccountFilter is a sealed union of account predicates.
type AccountFilter interface {
	Field() AccountField
	accountFilter()
}

// AccountNumberFilter compares a numeric account column.
type AccountNumberFilter struct {
	Target AccountField
	Cmp    ComparisonFilter[uint64]
}

func (f AccountNumberFilter) Field() AccountField { return f.Target }
func (AccountNumberFilter) accountFilter()        {}

// ParseAccountFilter builds the filter for field name with a value literal.
func ParseAccountFilter(name string, op Operator, literal string) (AccountFilter, error) {
	field, err := ParseAccountField(name)
	if err != nil {
		return nil, err
	}
	switch field {
	case AccountSuiBalance, AccountCoinOwned, AccountStakedAmount, AccountActiveDelegations:
		cmp, err := ParseUintFilter(field.String(), op, literal)
		if err != nil {
			return nil, withEntity(err, KindAccount)
		}
		return AccountNumberFilter{Target: field, Cmp: cmp}, nil
	}
	return nil, notFilterable(KindAccount, field.String())
}

// CheckpointFilter is a sealed union of checkpoint predicates.
type CheckpointFilter interface {
	Field() CheckpointField
	checkpointFilter()
}

// CheckpointNumberFilter compares a numeric checkpoint column.
type CheckpointNumberFilter struct {
	Target CheckpointField
	Cmp    ComparisonFilter[uint64]
}

func (f CheckpointNumberFilter) Field() CheckpointField { return f.Target }
func (CheckpointNumberFilter) checkpointFilter()        {}

// ParseCheckpointFilter builds the filter for field name with a value literal.
func ParseCheckpointFilter(name string, op Operator, literal string) (CheckpointFilter, error) {
	field, err := ParseCheckpointField(name)
	if err != nil {
		return nil, err
	}
	switch field {
	case CheckpointEpoch, CheckpointNumber, CheckpointTimestamp, CheckpointTransactions,
		CheckpointComputationCost, CheckpointStorageCost, CheckpointStorageRebate,
		CheckpointNonRefundableStorageFee, CheckpointNetworkTotalTransactions:
		cmp, err := ParseUintFilter(field.String(), op, literal)
		if err != nil {
			return nil, withEntity(err, KindCheckpoint)
		}
		return CheckpointNumberFilter{Target: field, Cmp: cmp}, nil
	}
	return nil, notFilterable(KindCheckpoint, field.String())
}

// TransactionFilter is a sealed union of transaction predicates.
type TransactionFilter interface {
	Field() TransactionField
	transactionFilter()
}

// TransactionCheckpointFilter selects the transactions of a checkpoint or range.
// Besides restricting rows it tells the resolver where to fetch from.
type TransactionCheckpointFilter struct {
	ID CheckpointID
}

// TransactionNumberFilter compares an unsigned transaction column.
type TransactionNumberFilter struct {
	Target TransactionField
	Cmp    ComparisonFilter[uint64]
}

// TransactionGasUsedFilter compares net gas, which can be negative.
type TransactionGasUsedFilter struct {
	Cmp ComparisonFilter[int64]
}

// TransactionSenderFilter matches the sender address.
type TransactionSenderFilter struct {
	Eq EqualityFilter[Address]
}

// TransactionDigestFilter matches the transaction digest.
type TransactionDigestFilter struct {
	Eq EqualityFilter[Digest]
}

// TransactionStatusFilter matches execution success.
type TransactionStatusFilter struct {
	Eq EqualityFilter[bool]
}

// TransactionTypeFilter matches the transaction kind name.
type TransactionTypeFilter struct {
	Eq EqualityFilter[string]
}

func (TransactionCheckpointFilter) Field() TransactionField { return TransactionCheckpoint }
func (f TransactionNumberFilter) Field() TransactionField   { return f.Target }
func (TransactionGasUsedFilter) Field() TransactionField    { return TransactionGasUsed }
func (TransactionSenderFilter) Field() TransactionField     { return TransactionSender }
func (TransactionDigestFilter) Field() TransactionField     { return TransactionDigest }
func (TransactionStatusFilter) Field() TransactionField     { return TransactionStatus }
func (TransactionTypeFilter) Field() TransactionField       { return TransactionType }

func (TransactionCheckpointFilter) transactionFilter() {}
func (TransactionNumberFilter) transactionFilter()     {}
func (TransactionGasUsedFilter) transactionFilter()    {}
func (TransactionSenderFilter) transactionFilter()     {}
func (TransactionDigestFilter) transactionFilter()     {}
func (TransactionStatusFilter) transactionFilter()     {}
func (TransactionTypeFilter) transactionFilter()       {}

// ParseTransactionFilter builds the filter for field name with a value literal.
func ParseTransactionFilter(name string, op Operator, literal string) (TransactionFilter, error) {
	field, err := ParseTransactionField(name)
	if err != nil {
		return nil, err
	}
	var f TransactionFilter
	switch field {
	case TransactionCheckpoint:
		if op != OpEq {
			return nil, &FilterError{Entity: KindTransaction, Field: field.String(), Operator: op.String(), Message: "checkpoint filters only support ="}
		}
		id, perr := ParseCheckpointID(literal)
		if perr != nil {
			return nil, perr
		}
		f = TransactionCheckpointFilter{ID: id}
	case TransactionGasBudget, TransactionGasPrice, TransactionComputationCost,
		TransactionStorageCost, TransactionStorageRebate, TransactionExecutedEpoch,
		TransactionTimestampMs, TransactionTotalEvents, TransactionTotalObjectChanges:
		cmp, perr := ParseUintFilter(field.String(), op, literal)
		err = perr
		f = TransactionNumberFilter{Target: field, Cmp: cmp}
	case TransactionGasUsed:
		cmp, perr := ParseIntFilter(field.String(), op, literal)
		err = perr
		f = TransactionGasUsedFilter{Cmp: cmp}
	case TransactionSender:
		addr, perr := ParseAddress(literal)
		if perr != nil {
			return nil, perr
		}
		eq, perr := NewEqualityFilter(field.String(), op, addr)
		err = perr
		f = TransactionSenderFilter{Eq: eq}
	case TransactionDigest:
		d, perr := ParseDigest(literal)
		if perr != nil {
			return nil, perr
		}
		eq, perr := NewEqualityFilter(field.String(), op, d)
		err = perr
		f = TransactionDigestFilter{Eq: eq}
	case TransactionStatus:
		eq, perr := ParseBoolFilter(field.String(), op, literal)
		err = perr
		f = TransactionStatusFilter{Eq: eq}
	case TransactionType:
		eq, perr := NewEqualityFilter(field.String(), op, literal)
		err = perr
		f = TransactionTypeFilter{Eq: eq}
	default:
		return nil, notFilterable(KindTransaction, field.String())
	}
	if err != nil {
		return nil, withEntity(err, KindTransaction)
	}
	return f, nil
}

// CoinFilter is a sealed union of coin predicates.
type CoinFilter interface {
	Field() CoinField
	coinFilter()
}

// CoinOwnerFilter names the account whose balance fills the balance column.
// It restricts nothing; it parameterizes the lookup.
type CoinOwnerFilter struct {
	Owner NameOrAddress
}

// CoinDecimalsFilter compares the coin's decimals.
type CoinDecimalsFilter struct {
	Cmp ComparisonFilter[uint64]
}

// CoinSymbolFilter matches the coin symbol exactly.
type CoinSymbolFilter struct {
	Eq EqualityFilter[string]
}

func (CoinOwnerFilter) Field() CoinField    { return CoinOwner }
func (CoinDecimalsFilter) Field() CoinField { return CoinDecimals }
func (CoinSymbolFilter) Field() CoinField   { return CoinSymbol }

func (CoinOwnerFilter) coinFilter()    {}
func (CoinDecimalsFilter) coinFilter() {}
func (CoinSymbolFilter) coinFilter()   {}

// ParseCoinFilter builds the filter for field name with a value literal.
func ParseCoinFilter(name string, op Operator, literal string) (CoinFilter, error) {
	field, err := ParseCoinField(name)
	if err != nil {
		return nil, err
	}
	switch field {
	case CoinOwner:
		if op != OpEq {
			return nil, &FilterError{Entity: KindCoin, Field: field.String(), Operator: op.String(), Message: "owner only supports ="}
		}
		owner, err := ParseNameOrAddress(literal)
		if err != nil {
			return nil, err
		}
		return CoinOwnerFilter{Owner: owner}, nil
	case CoinDecimals:
		cmp, err := ParseUintFilter(field.String(), op, literal)
		if err != nil {
			return nil, withEntity(err, KindCoin)
		}
		return CoinDecimalsFilter{Cmp: cmp}, nil
	case CoinSymbol:
		eq, err := NewEqualityFilter(field.String(), op, literal)
		if err != nil {
			return nil, withEntity(err, KindCoin)
		}
		return CoinSymbolFilter{Eq: eq}, nil
	}
	return nil, notFilterable(KindCoin, field.String())
}

// ObjectFilter is a sealed union of object predicates.
type ObjectFilter interface {
	Field() ObjectField
	objectFilter()
}

// ObjectNumberFilter compares a numeric object column.
type ObjectNumberFilter struct {
	Target ObjectField
	Cmp    ComparisonFilter[uint64]
}

// ObjectTypeFilter matches the object's Move type.
type ObjectTypeFilter struct {
	Eq EqualityFilter[string]
}

// ObjectOwnerFilter matches the rendered owner: an address, "shared" or "immutable".
type ObjectOwnerFilter struct {
	Eq EqualityFilter[string]
}

func (f ObjectNumberFilter) Field() ObjectField { return f.Target }
func (ObjectTypeFilter) Field() ObjectField     { return ObjectType }
func (ObjectOwnerFilter) Field() ObjectField    { return ObjectOwner }

func (ObjectNumberFilter) objectFilter() {}
func (ObjectTypeFilter) objectFilter()   {}
func (ObjectOwnerFilter) objectFilter()  {}

// ParseObjectFilter builds the filter for field name with a value literal.
func ParseObjectFilter(name string, op Operator, literal string) (ObjectFilter, error) {
	field, err := ParseObjectField(name)
	if err != nil {
		return nil, err
	}
	switch field {
	case ObjectVersion, ObjectStorageRebate:
		cmp, err := ParseUintFilter(field.String(), op, literal)
		if err != nil {
			return nil, withEntity(err, KindObject)
		}
		return ObjectNumberFilter{Target: field, Cmp: cmp}, nil
	case ObjectType:
		eq, err := NewEqualityFilter(field.String(), op, literal)
		if err != nil {
			return nil, withEntity(err, KindObject)
		}
		return ObjectTypeFilter{Eq: eq}, nil
	case ObjectOwner:
		owner, err := normalizeOwner(literal)
		if err != nil {
			return nil, err
		}
		eq, err := NewEqualityFilter(field.String(), op, owner)
		if err != nil {
			return nil, withEntity(err, KindObject)
		}
		return ObjectOwnerFilter{Eq: eq}, nil
	}
	return nil, notFilterable(KindObject, field.String())
}

// Owner strings used for objects without an address owner.
const (
	OwnerShared    = "shared"
	OwnerImmutable = "immutable"
)

func normalizeOwner(literal string) (string, error) {
	switch lower := strings.ToLower(literal); lower {
	case OwnerShared, OwnerImmutable:
		return lower, nil
	}
	id, err := ParseObjectID(literal)
	if err != nil {
		return "", &IDError{Kind: InvalidAddress, Literal: literal, Message: "expected an address, shared or immutable"}
	}
	return id.String(), nil
}

func notFilterable(kind EntityKind, field string) error {
	return &FilterError{Entity: kind, Field: field, Message: "field does not support filtering"}
}

func withEntity(err error, kind EntityKind) error {
	var fe *FilterError
	if errors.As(err, &fe) {
		fe.Entity = kind
	}
	return err
}
