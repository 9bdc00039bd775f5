package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
)

// U64 is an unsigned integer that Sui encodes as a decimal string.
// Plain JSON numbers are accepted too.
type U64 uint64

func (u *U64) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}
	n, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid u64 %s: %w", b, err)
	}
	*u = U64(n)
	return nil
}

func (u U64) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(u), 10))
}

// GasCostSummary is the gas accounting shared by checkpoints and effects.
type GasCostSummary struct {
	ComputationCost         U64 `json:"computationCost"`
	StorageCost             U64 `json:"storageCost"`
	StorageRebate           U64 `json:"storageRebate"`
	NonRefundableStorageFee U64 `json:"nonRefundableStorageFee"`
}

// Net is computation + storage - rebate. It is negative when the rebate wins.
func (g GasCostSummary) Net() int64 {
	return int64(g.ComputationCost) + int64(g.StorageCost) - int64(g.StorageRebate)
}

// Checkpoint is the sui_getCheckpoint response.
type Checkpoint struct {
	Epoch                      U64            `json:"epoch"`
	SequenceNumber             U64            `json:"sequenceNumber"`
	Digest                     ir.Digest      `json:"digest"`
	NetworkTotalTransactions   U64            `json:"networkTotalTransactions"`
	PreviousDigest             *ir.Digest     `json:"previousDigest,omitempty"`
	EpochRollingGasCostSummary GasCostSummary `json:"epochRollingGasCostSummary"`
	TimestampMs                U64            `json:"timestampMs"`
	Transactions               []ir.Digest    `json:"transactions"`
	ValidatorSignature         string         `json:"validatorSignature"`
}

// TransactionOptions selects the optional parts of a transaction response.
type TransactionOptions struct {
	ShowInput         bool `json:"showInput,omitempty"`
	ShowEffects       bool `json:"showEffects,omitempty"`
	ShowEvents        bool `json:"showEvents,omitempty"`
	ShowObjectChanges bool `json:"showObjectChanges,omitempty"`
}

// TransactionBlock is one sui_getTransactionBlock / multiGet response entry.
type TransactionBlock struct {
	Digest        ir.Digest           `json:"digest"`
	Transaction   *SenderSignedData   `json:"transaction,omitempty"`
	Effects       *TransactionEffects `json:"effects,omitempty"`
	Events        []Event             `json:"events,omitempty"`
	ObjectChanges []json.RawMessage   `json:"objectChanges,omitempty"`
	TimestampMs   *U64                `json:"timestampMs,omitempty"`
	Checkpoint    *U64                `json:"checkpoint,omitempty"`
	Error         json.RawMessage     `json:"error,omitempty"`
}

// SenderSignedData wraps the transaction input.
type SenderSignedData struct {
	Data TransactionData `json:"data"`
}

// TransactionData is the signed transaction payload.
type TransactionData struct {
	Sender      ir.Address      `json:"sender"`
	GasData     GasData         `json:"gasData"`
	Transaction TransactionKind `json:"transaction"`
}

// TransactionKind names the transaction variant, e.g. ProgrammableTransaction.
type TransactionKind struct {
	Kind string `json:"kind"`
}

// GasData is the gas payment section.
type GasData struct {
	Owner  ir.Address `json:"owner"`
	Price  U64        `json:"price"`
	Budget U64        `json:"budget"`
}

// TransactionEffects is the subset of effects suiql reads.
type TransactionEffects struct {
	Status        ExecutionStatus `json:"status"`
	ExecutedEpoch U64             `json:"executedEpoch"`
	GasUsed       GasCostSummary  `json:"gasUsed"`
}

// ExecutionStatus is "success" or "failure" with an optional error.
type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Success reports whether execution succeeded.
func (s ExecutionStatus) Success() bool {
	return s.Status == "success"
}

// Event is one emitted Move event.
type Event struct {
	Type              string     `json:"type"`
	Sender            ir.Address `json:"sender"`
	TransactionModule string     `json:"transactionModule"`
}

// Balance is one coin balance of an owner.
type Balance struct {
	CoinType        string `json:"coinType"`
	CoinObjectCount int    `json:"coinObjectCount"`
	TotalBalance    U64    `json:"totalBalance"`
}

// DelegatedStake groups an owner's stakes with one validator.
type DelegatedStake struct {
	ValidatorAddress ir.Address  `json:"validatorAddress"`
	StakingPool      ir.ObjectID `json:"stakingPool"`
	Stakes           []Stake     `json:"stakes"`
}

// Stake statuses.
const (
	StakeActive   = "Active"
	StakePending  = "Pending"
	StakeUnstaked = "Unstaked"
)

// Stake is one StakedSui object.
type Stake struct {
	StakedSuiID       ir.ObjectID `json:"stakedSuiId"`
	StakeRequestEpoch U64         `json:"stakeRequestEpoch"`
	StakeActiveEpoch  U64         `json:"stakeActiveEpoch"`
	Principal         U64         `json:"principal"`
	Status            string      `json:"status"`
}

// CoinMetadata is the suix_getCoinMetadata response.
type CoinMetadata struct {
	Decimals    uint8        `json:"decimals"`
	Name        string       `json:"name"`
	Symbol      string       `json:"symbol"`
	Description string       `json:"description"`
	IconURL     *string      `json:"iconUrl"`
	ID          *ir.ObjectID `json:"id"`
}

// ObjectOptions selects the optional parts of an object response.
type ObjectOptions struct {
	ShowType                bool `json:"showType,omitempty"`
	ShowOwner               bool `json:"showOwner,omitempty"`
	ShowPreviousTransaction bool `json:"showPreviousTransaction,omitempty"`
	ShowStorageRebate       bool `json:"showStorageRebate,omitempty"`
}

// ObjectResponse is the sui_getObject response; exactly one of Data and Error is set.
type ObjectResponse struct {
	Data  *ObjectData     `json:"data,omitempty"`
	Error json.RawMessage `json:"error,omitempty"`
}

// ObjectData is an object's metadata.
type ObjectData struct {
	ObjectID            ir.ObjectID `json:"objectId"`
	Version             U64         `json:"version"`
	Digest              ir.Digest   `json:"digest"`
	Type                *string     `json:"type,omitempty"`
	Owner               *Owner      `json:"owner,omitempty"`
	PreviousTransaction *ir.Digest  `json:"previousTransaction,omitempty"`
	StorageRebate       *U64        `json:"storageRebate,omitempty"`
}

// Owner is the ownership of an object. Exactly one form applies.
type Owner struct {
	Address   *ir.Address
	Object    *ir.Address
	Shared    bool
	Immutable bool
}

type ownerJSON struct {
	AddressOwner          *ir.Address `json:"AddressOwner"`
	ObjectOwner           *ir.Address `json:"ObjectOwner"`
	Shared                *struct{}   `json:"Shared"`
	ConsensusAddressOwner *struct {
		Owner ir.Address `json:"owner"`
	} `json:"ConsensusAddressOwner"`
}

func (o *Owner) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != "Immutable" {
			return fmt.Errorf("unknown owner %q", s)
		}
		*o = Owner{Immutable: true}
		return nil
	}
	var raw ownerJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch {
	case raw.AddressOwner != nil:
		*o = Owner{Address: raw.AddressOwner}
	case raw.ObjectOwner != nil:
		*o = Owner{Object: raw.ObjectOwner}
	case raw.ConsensusAddressOwner != nil:
		addr := raw.ConsensusAddressOwner.Owner
		*o = Owner{Address: &addr}
	case raw.Shared != nil:
		*o = Owner{Shared: true}
	default:
		return fmt.Errorf("unknown owner %s", b)
	}
	return nil
}

// String renders the owner as an address, "shared" or "immutable".
func (o Owner) String() string {
	switch {
	case o.Address != nil:
		return o.Address.String()
	case o.Object != nil:
		return o.Object.String()
	case o.Shared:
		return ir.OwnerShared
	case o.Immutable:
		return ir.OwnerImmutable
	}
	return ""
}

// NamesPage is one page of suix_resolveNameServiceNames.
type NamesPage struct {
	Data        []string `json:"data"`
	NextCursor  *string  `json:"nextCursor"`
	HasNextPage bool     `json:"hasNextPage"`
}
