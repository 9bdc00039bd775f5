package ir

// Entity is a sealed interface over the queryable record kinds.
// Only Account, Checkpoint, Transaction, Coin and Object implement it.
type Entity interface {
	Kind() EntityKind
	entity()
}

// Account selects account rows by address or SuiNS name.
type Account struct {
	IDs     []NameOrAddress
	Filters []AccountFilter
	Fields  []AccountField
}

// Checkpoint selects checkpoint rows by number, tag or range.
type Checkpoint struct {
	IDs     []CheckpointID
	Filters []CheckpointFilter
	Fields  []CheckpointField
}

// Transaction selects transaction rows by digest or by checkpoint filter.
type Transaction struct {
	IDs     []Digest
	Filters []TransactionFilter
	Fields  []TransactionField
}

// Coin selects coin metadata rows by coin type.
type Coin struct {
	IDs     []CoinType
	Filters []CoinFilter
	Fields  []CoinField
}

// Object selects object rows by object id.
type Object struct {
	IDs     []ObjectID
	Filters []ObjectFilter
	Fields  []ObjectField
}

func (*Account) Kind() EntityKind     { return KindAccount }
func (*Checkpoint) Kind() EntityKind  { return KindCheckpoint }
func (*Transaction) Kind() EntityKind { return KindTransaction }
func (*Coin) Kind() EntityKind        { return KindCoin }
func (*Object) Kind() EntityKind      { return KindObject }

func (*Account) entity()     {}
func (*Checkpoint) entity()  {}
func (*Transaction) entity() {}
func (*Coin) entity()        {}
func (*Object) entity()      {}

// CheckpointFilter returns the checkpoint-id filter, if any.
func (t *Transaction) CheckpointFilter() *CheckpointID {
	for _, f := range t.Filters {
		if cf, ok := f.(TransactionCheckpointFilter); ok {
			id := cf.ID
			return &id
		}
	}
	return nil
}

// Owner returns the owner parameter, if any.
func (c *Coin) Owner() *NameOrAddress {
	for _, f := range c.Filters {
		if of, ok := f.(CoinOwnerFilter); ok {
			owner := of.Owner
			return &owner
		}
	}
	return nil
}
