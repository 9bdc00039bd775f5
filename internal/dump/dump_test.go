package dump

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/result"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/testutil"
)

func accounts() result.AccountResult {
	return result.AccountResult{Rows: []result.AccountRow{
		{
			Address:      result.Ptr(testutil.Address(1)),
			SuiBalance:   result.Ptr(uint64(1000)),
			StakedAmount: result.Ptr(uint64(0)),
			Chain:        result.Ptr("mainnet"),
		},
		{
			Address:    result.Ptr(testutil.Address(2)),
			SuiBalance: result.Ptr(uint64(5)),
			Name:       result.Ptr("alice.sui"),
			Chain:      result.Ptr("testnet"),
		},
	}}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestEncodeJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ir.DumpJSON, accounts()))
	newGoldie(t).Assert(t, "account_json", buf.Bytes())
}

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ir.DumpCSV, accounts()))
	newGoldie(t).Assert(t, "account_csv", buf.Bytes())
}

func TestEncodeCSV_EmptyKeepsHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ir.DumpCSV, result.CoinResult{}))
	assert.Equal(t, "coin_type,decimals,name,symbol,description,icon_url,balance,owner,chain\n", buf.String())
}

func TestEncodeParquet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ir.DumpParquet, accounts()))

	table, err := pqarrow.ReadTable(t.Context(), bytes.NewReader(buf.Bytes()),
		parquet.NewReaderProperties(memory.DefaultAllocator), pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	require.NoError(t, err)
	defer table.Release()

	require.Equal(t, int64(2), table.NumRows())
	var names []string
	for _, f := range table.Schema().Fields() {
		names = append(names, f.Name)
		assert.True(t, f.Nullable)
	}
	assert.Equal(t, []string{"address", "sui_balance", "staked_amount", "name", "chain"}, names)

	balances := table.Column(1).Data().Chunk(0).(*array.String)
	assert.Equal(t, "1000", balances.Value(0))
	assert.Equal(t, "5", balances.Value(1))

	names3 := table.Column(3).Data().Chunk(0).(*array.String)
	assert.True(t, names3.IsNull(0))
	assert.Equal(t, "alice.sui", names3.Value(1))
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()

	path, err := Write(dir, &ir.Dump{Name: "out", Format: ir.DumpCSV}, accounts())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "alice.sui")
}

func TestWrite_MissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")

	_, err := Write(dir, &ir.Dump{Name: "out", Format: ir.DumpJSON}, accounts())
	var dumpErr *Error
	require.True(t, errors.As(err, &dumpErr))
	assert.Equal(t, "write", dumpErr.Op)
	assert.Equal(t, filepath.Join(dir, "out.json"), dumpErr.Path)
}

func TestWrite_RejectsEscapingNames(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "dumps")
	require.NoError(t, os.Mkdir(dir, 0o755))

	for _, name := range []string{"../escaped", "sub/out", "/tmp/out"} {
		_, err := Write(dir, &ir.Dump{Name: name, Format: ir.DumpJSON}, accounts())
		var dumpErr *Error
		require.ErrorAs(t, err, &dumpErr, name)
		assert.Equal(t, "write", dumpErr.Op)
	}

	_, err := os.Stat(filepath.Join(root, "escaped.json"))
	assert.True(t, os.IsNotExist(err), "nothing may be written outside the dump directory")
}

func TestEncode_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Encode(&buf, ir.DumpFormat(99), accounts()))
}
