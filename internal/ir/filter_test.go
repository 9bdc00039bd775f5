package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparisonFilterMatches(t *testing.T) {
	tests := []struct {
		op   Operator
		v    uint64
		want bool
	}{
		{OpEq, 10, true},
		{OpEq, 11, false},
		{OpNeq, 11, true},
		{OpLt, 9, true},
		{OpLt, 10, false},
		{OpLte, 10, true},
		{OpGt, 11, true},
		{OpGt, 10, false},
		{OpGte, 10, true},
		{OpGte, 9, false},
	}
	for _, tt := range tests {
		f := ComparisonFilter[uint64]{Op: tt.op, Value: 10}
		assert.Equal(t, tt.want, f.Matches(tt.v), "%d %s 10", tt.v, tt.op)
	}
}

func TestEqualityFilterRejectsOrderedOperators(t *testing.T) {
	for _, op := range []Operator{OpLt, OpLte, OpGt, OpGte} {
		_, err := NewEqualityFilter("sender", op, "x")
		var filterErr *FilterError
		require.ErrorAs(t, err, &filterErr, op.String())
		assert.Equal(t, op.String(), filterErr.Operator)
	}

	f, err := NewEqualityFilter("symbol", OpNeq, "SUI")
	require.NoError(t, err)
	assert.True(t, f.Matches("USDC"))
	assert.False(t, f.Matches("SUI"))
}

func TestParseOperator(t *testing.T) {
	for _, tok := range []string{"=", "!=", "<", "<=", ">", ">="} {
		op, err := ParseOperator(tok)
		require.NoError(t, err)
		assert.Equal(t, tok, op.String())
	}
	_, err := ParseOperator("==")
	assert.Error(t, err)
}

func TestParseTransactionFilter(t *testing.T) {
	sender := "0x" + repeatHex("ab", 32)

	tests := []struct {
		name    string
		field   string
		op      Operator
		literal string
		check   func(t *testing.T, f TransactionFilter)
		wantErr bool
	}{
		{
			name: "checkpoint range", field: "checkpoint", op: OpEq, literal: "100:102",
			check: func(t *testing.T, f TransactionFilter) {
				cf := f.(TransactionCheckpointFilter)
				require.NotNil(t, cf.ID.Range)
				assert.Equal(t, uint64(100), cf.ID.Range.Start.Number)
				assert.Equal(t, uint64(102), cf.ID.Range.End.Number)
			},
		},
		{name: "checkpoint rejects <", field: "checkpoint", op: OpLt, literal: "100", wantErr: true},
		{
			name: "gas budget", field: "gas_budget", op: OpGte, literal: "2_000_000",
			check: func(t *testing.T, f TransactionFilter) {
				nf := f.(TransactionNumberFilter)
				assert.Equal(t, TransactionGasBudget, nf.Target)
				assert.Equal(t, uint64(2000000), nf.Cmp.Value)
			},
		},
		{
			name: "gas used signed", field: "gas_used", op: OpLt, literal: "-5",
			check: func(t *testing.T, f TransactionFilter) {
				assert.Equal(t, int64(-5), f.(TransactionGasUsedFilter).Cmp.Value)
			},
		},
		{
			name: "sender", field: "sender", op: OpEq, literal: sender,
			check: func(t *testing.T, f TransactionFilter) {
				assert.Equal(t, sender, f.(TransactionSenderFilter).Eq.Value.String())
			},
		},
		{name: "sender ordered", field: "sender", op: OpGt, literal: sender, wantErr: true},
		{name: "sender short", field: "sender", op: OpEq, literal: "0x2", wantErr: true},
		{
			name: "status", field: "status", op: OpNeq, literal: "true",
			check: func(t *testing.T, f TransactionFilter) {
				eq := f.(TransactionStatusFilter).Eq
				assert.False(t, eq.Matches(true))
				assert.True(t, eq.Matches(false))
			},
		},
		{name: "status not bool", field: "status", op: OpEq, literal: "yes", wantErr: true},
		{name: "chain not filterable", field: "chain", op: OpEq, literal: "mainnet", wantErr: true},
		{name: "unknown field", field: "nonce", op: OpEq, literal: "1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseTransactionFilter(tt.field, tt.op, tt.literal)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, f)
		})
	}
}

func TestFilterErrorCarriesEntity(t *testing.T) {
	_, err := ParseAccountFilter("sui_balance", OpGt, "lots")
	var filterErr *FilterError
	require.ErrorAs(t, err, &filterErr)
	assert.Equal(t, KindAccount, filterErr.Entity)
	assert.Equal(t, `invalid filter on account.sui_balance value "lots": expected an unsigned integer`, err.Error())

	_, err = ParseAccountFilter("address", OpEq, "0x1")
	require.ErrorAs(t, err, &filterErr)
	assert.Contains(t, err.Error(), "does not support filtering")
}

func TestParseCoinOwnerFilter(t *testing.T) {
	f, err := ParseCoinFilter("owner", OpEq, "Alice.sui")
	require.NoError(t, err)
	owner := f.(CoinOwnerFilter).Owner
	assert.True(t, owner.IsName())
	assert.Equal(t, "alice.sui", owner.Name)

	_, err = ParseCoinFilter("owner", OpNeq, "alice.sui")
	assert.Error(t, err)
}

func TestParseObjectOwnerFilter(t *testing.T) {
	f, err := ParseObjectFilter("owner", OpEq, "Shared")
	require.NoError(t, err)
	assert.Equal(t, OwnerShared, f.(ObjectOwnerFilter).Eq.Value)

	f, err = ParseObjectFilter("owner", OpNeq, "0x5")
	require.NoError(t, err)
	assert.Equal(t, "0x"+repeatHex("00", 31)+"05", f.(ObjectOwnerFilter).Eq.Value)
}

func TestParseCheckpointFilter(t *testing.T) {
	f, err := ParseCheckpointFilter("epoch", OpLte, "7")
	require.NoError(t, err)
	nf := f.(CheckpointNumberFilter)
	assert.Equal(t, CheckpointEpoch, nf.Target)
	assert.True(t, nf.Cmp.Matches(7))
	assert.False(t, nf.Cmp.Matches(8))

	f, err = ParseCheckpointFilter("number", OpGt, "100")
	require.NoError(t, err)
	nf = f.(CheckpointNumberFilter)
	assert.Equal(t, CheckpointNumber, nf.Target)
	assert.True(t, nf.Cmp.Matches(101))
	assert.False(t, nf.Cmp.Matches(100))

	_, err = ParseCheckpointFilter("digest", OpEq, "x")
	assert.Error(t, err)
}

func repeatHex(pair string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += pair
	}
	return out
}
