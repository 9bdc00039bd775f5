package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/rpc"
)

func TestFakeNodeNotFound(t *testing.T) {
	node := NewFakeNode()
	ctx := context.Background()

	_, err := node.Checkpoint(ctx, 1)
	assert.True(t, rpc.IsNotFound(err))
	_, err = node.Object(ctx, ObjectID(5), rpc.ObjectOptions{})
	assert.True(t, rpc.IsNotFound(err))
	_, err = node.CoinMetadata(ctx, ir.SuiCoinType)
	assert.True(t, rpc.IsNotFound(err))

	txs, err := node.MultiGetTransactions(ctx, []ir.Digest{Digest(1)}, rpc.TransactionOptions{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.NotEmpty(t, txs[0].Error)

	addr, err := node.ResolveName(ctx, "nobody.sui")
	require.NoError(t, err)
	assert.Nil(t, addr)
}

func TestFakeNodeCountsAndFails(t *testing.T) {
	node := NewFakeNode()
	node.Fail["Stakes"] = errors.New("down")

	_, err := node.Stakes(context.Background(), Address(1))
	assert.EqualError(t, err, "down")
	_, _ = node.LatestCheckpoint(context.Background())

	assert.Equal(t, 1, node.Calls("Stakes"))
	assert.Equal(t, 2, node.TotalCalls())
}

func TestFakeNodeDelayHonorsContext(t *testing.T) {
	node := NewFakeNode()
	node.Delay = func(string, string) time.Duration { return time.Hour }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := node.LatestCheckpoint(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFakeDialer(t *testing.T) {
	d := NewFakeDialer()
	node := d.Add("http://a", NewFakeNode())

	c, err := d.Dial("http://a")
	require.NoError(t, err)
	assert.Same(t, node, c)

	_, err = d.Dial("http://b")
	assert.Error(t, err)
	assert.Equal(t, 1, d.Dials("http://b"))
}

func TestReverseDelay(t *testing.T) {
	delay := ReverseDelay(time.Millisecond, "1", "2", "3")
	assert.Equal(t, 3*time.Millisecond, delay("Checkpoint", "1"))
	assert.Equal(t, time.Millisecond, delay("Checkpoint", "3"))
	assert.Zero(t, delay("Checkpoint", "9"))
}
