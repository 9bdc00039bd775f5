package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/result"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/rpc"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/testutil"
)

func suiBalance(amount uint64) []rpc.Balance {
	return []rpc.Balance{{CoinType: string(ir.SuiCoinType), CoinObjectCount: 1, TotalBalance: rpc.U64(amount)}}
}

func TestAccount_OneRowPerChain(t *testing.T) {
	e, d := newTestEngine(t)
	addr := testutil.Address(7)
	m := d.Add(mainnetURL, testutil.NewFakeNode())
	m.Balances[addr] = suiBalance(10)
	m.Delay = func(string, string) time.Duration { return 10 * time.Millisecond }
	tn := d.Add(testnetURL, testutil.NewFakeNode())
	tn.Balances[addr] = suiBalance(20)

	res := runOne(t, e, "SELECT sui_balance FROM account "+addr.String()+" ON mainnet, testnet")

	rows := res.(result.AccountResult).Rows
	require.Len(t, rows, 2)
	assert.Equal(t, result.AccountRow{SuiBalance: result.Ptr(uint64(10))}, rows[0])
	assert.Equal(t, result.AccountRow{SuiBalance: result.Ptr(uint64(20))}, rows[1])
}

func TestAccount_ChainMajorIdentifierMinor(t *testing.T) {
	e, d := newTestEngine(t)
	a1, a2 := testutil.Address(1), testutil.Address(2)
	for _, url := range []string{mainnetURL, testnetURL} {
		node := d.Add(url, testutil.NewFakeNode())
		node.Delay = testutil.ReverseDelay(5*time.Millisecond, a1.String(), a2.String())
	}

	res := runOne(t, e, "SELECT address, chain FROM account "+a1.String()+", "+a2.String()+" ON mainnet, testnet")

	rows := res.(result.AccountResult).Rows
	require.Len(t, rows, 4)
	want := []struct {
		addr  ir.Address
		chain string
	}{{a1, "mainnet"}, {a2, "mainnet"}, {a1, "testnet"}, {a2, "testnet"}}
	for i, w := range want {
		assert.Equal(t, w.addr, *rows[i].Address, "row %d", i)
		assert.Equal(t, w.chain, *rows[i].Chain, "row %d", i)
	}
}

func TestAccount_StakesCountOnlyActive(t *testing.T) {
	e, d := newTestEngine(t)
	addr := testutil.Address(3)
	node := d.Add(mainnetURL, testutil.NewFakeNode())
	node.StakesByOwner[addr] = []rpc.DelegatedStake{
		{Stakes: []rpc.Stake{
			{Principal: 100, Status: rpc.StakeActive},
			{Principal: 50, Status: rpc.StakePending},
		}},
		{Stakes: []rpc.Stake{{Principal: 25, Status: rpc.StakeActive}}},
	}

	res := runOne(t, e, "SELECT staked_amount, active_delegations FROM account "+addr.String()+" ON mainnet")

	rows := res.(result.AccountResult).Rows
	require.Len(t, rows, 1)
	assert.Equal(t, uint64(125), *rows[0].StakedAmount)
	assert.Equal(t, uint64(2), *rows[0].ActiveDelegations)
	assert.Equal(t, 1, node.Calls("Stakes"))
	assert.Equal(t, 1, node.TotalCalls())
}

func TestAccount_NameResolution(t *testing.T) {
	e, d := newTestEngine(t)
	addr := testutil.Address(4)
	node := d.Add(mainnetURL, testutil.NewFakeNode())
	node.Names["alice.sui"] = addr
	node.Reverse[addr] = "alice.sui"
	node.Balances[addr] = append(suiBalance(1), rpc.Balance{CoinType: "0x5::usdc::USDC"})

	res := runOne(t, e, "SELECT address, coin_owned, name FROM account alice.sui ON mainnet")

	rows := res.(result.AccountResult).Rows
	require.Len(t, rows, 1)
	assert.Equal(t, addr, *rows[0].Address)
	assert.Equal(t, uint64(2), *rows[0].CoinOwned)
	assert.Equal(t, "alice.sui", *rows[0].Name)
}

func TestAccount_UnknownName(t *testing.T) {
	e, d := newTestEngine(t)
	d.Add(mainnetURL, testutil.NewFakeNode())

	_, err := e.Run(t.Context(), "SELECT address FROM account nobody.sui ON mainnet")

	var ee *ExecutionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrCodeResolverNotFound, ee.Code)
	assert.Equal(t, "nobody.sui", ee.ID)
}

func TestAccount_NameLookupFailures(t *testing.T) {
	tests := []struct {
		name string
		fail error
		want ErrorCode
	}{
		{"rpc error", &rpc.Error{Method: "suix_resolveNameServiceAddress", Code: -32602, Message: "invalid name"}, ErrCodeResolverNotFound},
		{"http 503", &rpc.Error{Method: "suix_resolveNameServiceAddress", Status: 503, Message: "unavailable"}, ErrCodeRPCFailure},
		{"transport", errors.New("connection refused"), ErrCodeRPCFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, d := newTestEngine(t)
			node := d.Add(mainnetURL, testutil.NewFakeNode())
			node.Fail["ResolveName"] = tt.fail

			_, err := e.Run(t.Context(), "SELECT address FROM account nobody.sui ON mainnet")

			var ee *ExecutionError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, tt.want, ee.Code)
			assert.Equal(t, "nobody.sui", ee.ID)
			assert.ErrorIs(t, err, tt.fail)
		})
	}
}

func TestAccount_FilterDropsRows(t *testing.T) {
	e, d := newTestEngine(t)
	rich, poor := testutil.Address(5), testutil.Address(6)
	node := d.Add(mainnetURL, testutil.NewFakeNode())
	node.Balances[rich] = suiBalance(1_000)
	node.Balances[poor] = suiBalance(1)

	res := runOne(t, e, "SELECT address FROM account "+rich.String()+", "+poor.String()+" WHERE sui_balance >= 100 ON mainnet")

	rows := res.(result.AccountResult).Rows
	require.Len(t, rows, 1)
	assert.Equal(t, result.AccountRow{Address: result.Ptr(rich)}, rows[0])
}

func TestAccount_MissingIDs(t *testing.T) {
	e, _ := newTestEngine(t)
	get := &ir.Get{
		Entity: &ir.Account{Fields: []ir.AccountField{ir.AccountAddress}},
		Chains: mainnetOnly(),
	}

	_, err := e.Execute(t.Context(), []ir.Expression{get})
	assert.True(t, IsExecutionError(err, ErrCodeMissingIDs), "got %v", err)
}
