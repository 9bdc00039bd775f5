package ir

// AccountField is a selectable column of an account row.
type AccountField int

const (
	AccountAddress AccountField = iota
	AccountSuiBalance
	AccountCoinOwned
	AccountStakedAmount
	AccountActiveDelegations
	AccountName
	AccountChain
	accountFieldCount
)

// CheckpointField is a selectable column of a checkpoint row.
type CheckpointField int

const (
	CheckpointEpoch CheckpointField = iota
	CheckpointNumber
	CheckpointDigest
	CheckpointTimestamp
	CheckpointTransactions
	CheckpointValidatorSignature
	CheckpointChain
	CheckpointComputationCost
	CheckpointStorageCost
	CheckpointStorageRebate
	CheckpointNonRefundableStorageFee
	CheckpointPreviousDigest
	CheckpointNetworkTotalTransactions
	checkpointFieldCount
)

// TransactionField is a selectable column of a transaction row.
type TransactionField int

const (
	TransactionType TransactionField = iota
	TransactionDigest
	TransactionSender
	TransactionGasBudget
	TransactionGasPrice
	TransactionGasUsed
	TransactionComputationCost
	TransactionStorageCost
	TransactionStorageRebate
	TransactionStatus
	TransactionExecutedEpoch
	TransactionCheckpoint
	TransactionTimestampMs
	TransactionTotalEvents
	TransactionTotalObjectChanges
	TransactionChain
	transactionFieldCount
)

// CoinField is a selectable column of a coin row.
type CoinField int

const (
	CoinCoinType CoinField = iota
	CoinDecimals
	CoinName
	CoinSymbol
	CoinDescription
	CoinIconURL
	CoinBalance
	CoinOwner
	CoinChain
	coinFieldCount
)

// ObjectField is a selectable column of an object row.
type ObjectField int

const (
	ObjectObjectID ObjectField = iota
	ObjectVersion
	ObjectDigest
	ObjectType
	ObjectOwner
	ObjectPreviousTransaction
	ObjectStorageRebate
	ObjectChain
	objectFieldCount
)

var (
	accountFields = newFieldTable(KindAccount, accountFieldCount,
		"address",
		"sui_balance",
		"coin_owned",
		"staked_amount",
		"active_delegations",
		"name",
		"chain",
	)

	checkpointFields = newFieldTable(KindCheckpoint, checkpointFieldCount,
		"epoch",
		"number",
		"digest",
		"timestamp",
		"transactions",
		"validator_signature",
		"chain",
		"computation_cost",
		"storage_cost",
		"storage_rebate",
		"non_refundable_storage_fee",
		"previous_digest",
		"network_total_transactions",
	)

	transactionFields = newFieldTable(KindTransaction, transactionFieldCount,
		"type",
		"digest",
		"sender",
		"gas_budget",
		"gas_price",
		"gas_used",
		"computation_cost",
		"storage_cost",
		"storage_rebate",
		"status",
		"executed_epoch",
		"checkpoint",
		"timestamp_ms",
		"total_events",
		"total_object_changes",
		"chain",
	)

	coinFields = newFieldTable(KindCoin, coinFieldCount,
		"coin_type",
		"decimals",
		"name",
		"symbol",
		"description",
		"icon_url",
		"balance",
		"owner",
		"chain",
	)

	objectFields = newFieldTable(KindObject, objectFieldCount,
		"object_id",
		"version",
		"digest",
		"type",
		"owner",
		"previous_transaction",
		"storage_rebate",
		"chain",
	)
)

func (f AccountField) String() string     { return accountFields.name(f) }
func (f CheckpointField) String() string  { return checkpointFields.name(f) }
func (f TransactionField) String() string { return transactionFields.name(f) }
func (f CoinField) String() string        { return coinFields.name(f) }
func (f ObjectField) String() string      { return objectFields.name(f) }

// ParseAccountField maps a name to an AccountField.
func ParseAccountField(s string) (AccountField, error) { return accountFields.parse(s) }

// ParseCheckpointField maps a name to a CheckpointField.
func ParseCheckpointField(s string) (CheckpointField, error) { return checkpointFields.parse(s) }

// ParseTransactionField maps a name to a TransactionField.
func ParseTransactionField(s string) (TransactionField, error) { return transactionFields.parse(s) }

// ParseCoinField maps a name to a CoinField.
func ParseCoinField(s string) (CoinField, error) { return coinFields.parse(s) }

// ParseObjectField maps a name to an ObjectField.
func ParseObjectField(s string) (ObjectField, error) { return objectFields.parse(s) }

// AllAccountFields returns every account field in declaration order.
func AllAccountFields() []AccountField { return accountFields.all() }

// AllCheckpointFields returns every checkpoint field in declaration order.
func AllCheckpointFields() []CheckpointField { return checkpointFields.all() }

// AllTransactionFields returns every transaction field in declaration order.
func AllTransactionFields() []TransactionField { return transactionFields.all() }

// AllCoinFields returns every coin field in declaration order.
func AllCoinFields() []CoinField { return coinFields.all() }

// AllObjectFields returns every object field in declaration order.
func AllObjectFields() []ObjectField { return objectFields.all() }
