package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/result"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/testutil"
)

func checkpointNode(seqs ...uint64) *testutil.FakeNode {
	node := testutil.NewFakeNode()
	for _, s := range seqs {
		node.Checkpoints[s] = testutil.Checkpoint(s)
	}
	return node
}

func TestCheckpoint_Single(t *testing.T) {
	e, d := newTestEngine(t)
	d.Add(mainnetURL, checkpointNode(100))

	res := runOne(t, e, "SELECT * FROM checkpoint 100 ON mainnet")

	cps, ok := res.(result.CheckpointResult)
	require.True(t, ok, "got %T", res)
	require.Len(t, cps.Rows, 1)
	row := cps.Rows[0]
	assert.Equal(t, uint64(100), *row.Number)
	assert.Equal(t, uint64(1), *row.Epoch)
	assert.Equal(t, "mainnet", *row.Chain)
	assert.Equal(t, testutil.Digest(101), *row.Digest)
	assert.Equal(t, uint64(0), *row.Transactions)
}

func TestCheckpoint_RangeKeepsOrderAndProjection(t *testing.T) {
	e, d := newTestEngine(t)
	node := d.Add(mainnetURL, checkpointNode(100, 101, 102))
	node.Delay = testutil.ReverseDelay(5*time.Millisecond, "100", "101", "102")

	res := runOne(t, e, "SELECT digest FROM checkpoint 100:102 ON mainnet")

	cps := res.(result.CheckpointResult)
	require.Len(t, cps.Rows, 3)
	for i, seq := range []uint64{100, 101, 102} {
		want := result.CheckpointRow{Digest: result.Ptr(testutil.Digest(byte(seq%250) + 1))}
		assert.Equal(t, want, cps.Rows[i], "row %d", i)
	}
}

func TestCheckpoint_StartAfterEnd(t *testing.T) {
	e, d := newTestEngine(t)
	node := d.Add(mainnetURL, checkpointNode())

	_, err := e.Run(t.Context(), "SELECT number FROM checkpoint 10:5 ON mainnet")

	require.True(t, IsExecutionError(err, ErrCodeStartAfterEnd), "got %v", err)
	assert.Contains(t, err.Error(), "start checkpoint must be less than end checkpoint (10 > 5)")
	assert.Equal(t, 0, node.Calls("Checkpoint"))
}

func TestCheckpoint_EarliestAndSingleTipLookup(t *testing.T) {
	e, d := newTestEngine(t)
	node := d.Add(mainnetURL, checkpointNode(0, 1, 2))
	node.Latest = 2

	res := runOne(t, e, "SELECT number FROM checkpoint earliest:latest, latest ON mainnet")

	var got []uint64
	for _, r := range res.(result.CheckpointResult).Rows {
		got = append(got, *r.Number)
	}
	assert.Equal(t, []uint64{0, 1, 2, 2}, got)
	assert.Equal(t, 1, node.Calls("LatestCheckpoint"))
}

func TestCheckpoint_FiltersAreConjunctive(t *testing.T) {
	e, d := newTestEngine(t)
	d.Add(mainnetURL, checkpointNode(1, 2, 3, 4, 5))

	res := runOne(t, e, "SELECT number FROM checkpoint 1:5 WHERE number > 1, number < 4 ON mainnet")

	var got []uint64
	for _, r := range res.(result.CheckpointResult).Rows {
		got = append(got, *r.Number)
	}
	assert.Equal(t, []uint64{2, 3}, got)
}

func TestCheckpoint_FilterOnUnselectedField(t *testing.T) {
	e, d := newTestEngine(t)
	node := d.Add(mainnetURL, checkpointNode(1, 3))
	node.Checkpoints[2] = testutil.Checkpoint(2, testutil.Digest(9))

	res := runOne(t, e, "SELECT digest FROM checkpoint 1:3 WHERE transactions > 0 ON mainnet")

	rows := res.(result.CheckpointResult).Rows
	require.Len(t, rows, 1)
	assert.Equal(t, result.CheckpointRow{Digest: result.Ptr(testutil.Digest(3))}, rows[0])
}

func TestCheckpoint_NotFound(t *testing.T) {
	e, d := newTestEngine(t)
	d.Add(mainnetURL, checkpointNode(1))

	_, err := e.Run(t.Context(), "SELECT number FROM checkpoint 1:2 ON mainnet")

	var ee *ExecutionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrCodeNotFound, ee.Code)
	assert.Equal(t, "mainnet", ee.Chain)
	assert.Equal(t, "2", ee.ID)
}

func TestCheckpoint_RowQuota(t *testing.T) {
	e, d := newTestEngine(t, WithMaxRows(5))
	node := d.Add(mainnetURL, checkpointNode())

	_, err := e.Run(t.Context(), "SELECT number FROM checkpoint 1:10 ON mainnet")

	assert.True(t, IsExecutionError(err, ErrCodeRowLimitExceeded), "got %v", err)
	assert.Equal(t, 0, node.Calls("Checkpoint"))
}

func TestCheckpoint_FullWidthRangeHitsQuota(t *testing.T) {
	e, d := newTestEngine(t)
	node := d.Add(mainnetURL, checkpointNode())

	_, err := e.Run(t.Context(), "SELECT number FROM checkpoint 0:18446744073709551615 ON mainnet")

	assert.True(t, IsExecutionError(err, ErrCodeRowLimitExceeded), "got %v", err)
	assert.Equal(t, 0, node.Calls("Checkpoint"))
}

func TestExpandCheckpoints_MaxUint(t *testing.T) {
	node := testutil.NewFakeNode()
	max := ^uint64(0)
	id := ir.CheckpointID{Range: &ir.CheckpointRange{Start: ir.CheckpointAt(max - 1), End: result.Ptr(ir.CheckpointAt(max))}}

	seqs, err := expandCheckpoints(t.Context(), target{label: "mainnet", client: node}, []ir.CheckpointID{id}, newRowQuota("mainnet", 0))
	require.NoError(t, err)
	assert.Equal(t, []uint64{max - 1, max}, seqs)
}
