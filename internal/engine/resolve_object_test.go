package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/result"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/rpc"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/testutil"
)

func objectNode() *testutil.FakeNode {
	node := testutil.NewFakeNode()
	clockType := "0x2::clock::Clock"
	rebate := rpc.U64(0)
	node.Objects[testutil.ObjectID(6)] = &rpc.ObjectData{
		ObjectID:      testutil.ObjectID(6),
		Version:       12,
		Digest:        testutil.Digest(6),
		Type:          &clockType,
		Owner:         &rpc.Owner{Shared: true},
		StorageRebate: &rebate,
	}
	owner := testutil.Address(1)
	node.Objects[testutil.ObjectID(7)] = &rpc.ObjectData{
		ObjectID: testutil.ObjectID(7),
		Version:  3,
		Digest:   testutil.Digest(7),
		Owner:    &rpc.Owner{Address: &owner},
	}
	return node
}

func TestObject_Fields(t *testing.T) {
	e, d := newTestEngine(t)
	d.Add(mainnetURL, objectNode())

	res := runOne(t, e, "SELECT object_id, version, type, owner FROM object 0x6, 0x7 ON mainnet")

	rows := res.(result.ObjectResult).Rows
	require.Len(t, rows, 2)
	assert.Equal(t, testutil.ObjectID(6), *rows[0].ObjectID)
	assert.Equal(t, uint64(12), *rows[0].Version)
	assert.Equal(t, "0x2::clock::Clock", *rows[0].Type)
	assert.Equal(t, "shared", *rows[0].Owner)
	assert.Nil(t, rows[1].Type)
	assert.Equal(t, testutil.Address(1).String(), *rows[1].Owner)
}

func TestObject_VersionFilter(t *testing.T) {
	e, d := newTestEngine(t)
	d.Add(mainnetURL, objectNode())

	res := runOne(t, e, "SELECT object_id FROM object 0x6, 0x7 WHERE version > 5 ON mainnet")

	rows := res.(result.ObjectResult).Rows
	require.Len(t, rows, 1)
	assert.Equal(t, result.ObjectRow{ObjectID: result.Ptr(testutil.ObjectID(6))}, rows[0])
}

func TestObject_NotFound(t *testing.T) {
	e, d := newTestEngine(t)
	d.Add(mainnetURL, objectNode())

	_, err := e.Run(t.Context(), "SELECT version FROM object 0x9 ON mainnet")

	var ee *ExecutionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrCodeNotFound, ee.Code)
	assert.Equal(t, testutil.ObjectID(9).String(), ee.ID)
}

func TestObject_MissingIDs(t *testing.T) {
	e, _ := newTestEngine(t)
	get := &ir.Get{Entity: &ir.Object{Fields: []ir.ObjectField{ir.ObjectVersion}}, Chains: mainnetOnly()}

	_, err := e.Execute(t.Context(), []ir.Expression{get})
	assert.True(t, IsExecutionError(err, ErrCodeMissingIDs), "got %v", err)
}
