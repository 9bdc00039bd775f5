package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/engine"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/result"
)

func TestExitError(t *testing.T) {
	inner := errors.New("boom")
	err := WrapExitError(ExitFailure, "query failed", inner)

	assert.Equal(t, "query failed: boom", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "bad usage", NewExitError(ExitCommandError, "bad usage").Error())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "x")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitCommandError, "x"))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Error(&engine.ExecutionError{Code: engine.ErrCodeMissingIDs, Message: "account query needs ids"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "MISSING_IDS", resp.Error.Code)
	assert.Equal(t, "MISSING_IDS: account query needs ids", resp.Error.Message)
}

func TestOutputFormatter_TextErrorGoesToErrWriter(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "table", Writer: out, ErrWriter: errOut}

	require.NoError(t, formatter.Error(errors.New("boom")))

	assert.Empty(t, out.String())
	assert.Equal(t, "Error [INTERNAL]: boom\n", errOut.String())
}

func TestOutputFormatter_EmptyResult(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "table", Writer: buf}

	require.NoError(t, formatter.Results([]result.QueryResult{{Result: result.AccountResult{}}}))

	assert.Equal(t, "(0 rows)\n", buf.String())
}

func TestOutputFormatter_UnsetCellsAreBlank(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "table", Writer: buf}
	addr := ir.Address{31: 1}

	res := result.AccountResult{Rows: []result.AccountRow{
		{Name: result.Ptr("alice.sui"), Chain: result.Ptr("mainnet")},
		{Address: &addr, Chain: result.Ptr("testnet")},
	}}
	require.NoError(t, formatter.Results([]result.QueryResult{{Result: res}}))

	header, rows := result.Table(res)
	require.Equal(t, []string{"address", "name", "chain"}, header)
	assert.Equal(t, "", rows[0][0])
	assert.Contains(t, buf.String(), "(2 rows)")
}

func TestOutputFormatter_OutcomesJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	outcomes := []engine.Outcome{
		{Result: &result.QueryResult{Result: result.CheckpointResult{Rows: []result.CheckpointRow{{Number: result.Ptr(uint64(9))}}}}},
		{Err: &engine.ExecutionError{Code: engine.ErrCodeNotFound}},
	}
	require.NoError(t, formatter.Outcomes(outcomes))

	assert.JSONEq(t,
		`{"status":"ok","data":[{"result":{"checkpoint":[{"number":9}]}},{"error":{"code":"NOT_FOUND","message":"NOT_FOUND"}}]}`,
		buf.String())
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "SELECT * FROM tx ON mainnet", oneLine("SELECT *\n  FROM tx\n\tON mainnet", 60))
	assert.Equal(t, "abcdefg...", oneLine("abcdefghijklmnop", 10))
}
