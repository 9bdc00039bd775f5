package cli

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/engine"
)

// promptRecorder wraps a scanner and records every prompt change.
type promptRecorder struct {
	scannerReader
	prompts []string
}

func (p *promptRecorder) SetPrompt(prompt string) {
	p.prompts = append(p.prompts, prompt)
}

func runReplInput(t *testing.T, h *cliHarness, input string) (string, *promptRecorder) {
	t.Helper()
	eng := engine.New(h.dialer, engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	reader := &promptRecorder{scannerReader: scannerReader{sc: bufio.NewScanner(strings.NewReader(input))}}
	var out bytes.Buffer
	err := repl(t.Context(), reader, &OutputFormatter{Format: "table", Writer: &out}, eng)
	require.NoError(t, err)
	return out.String(), reader
}

func TestRepl_AccumulatesUntilSemicolon(t *testing.T) {
	h := newHarness(t)

	out, reader := runReplInput(t, h, "SELECT number\nFROM checkpoint 100\nON mainnet;\n")

	assert.Equal(t, "number\n100\n(1 row)\n", out)
	assert.Equal(t, []string{replContinuePrompt, replContinuePrompt, replPrompt}, reader.prompts)
}

func TestRepl_ErrorsDoNotStopTheSession(t *testing.T) {
	h := newHarness(t)

	out, _ := runReplInput(t, h,
		"SELECT * FROM planets ON mainnet;\n"+
			"SELECT number FROM checkpoint 7 ON mainnet; SELECT number FROM checkpoint 101 ON mainnet;\n")

	assert.Contains(t, out, "Error [INVALID_ENTITY]")
	assert.Contains(t, out, "Error [NOT_FOUND]")
	assert.Contains(t, out, "number\n101\n(1 row)\n")
}

func TestRepl_Commands(t *testing.T) {
	h := newHarness(t)

	out, _ := runReplInput(t, h, "\nhelp\nfields\nexit\nSELECT number FROM checkpoint 100 ON mainnet;\n")

	assert.Contains(t, out, "Statements run when a line ends with ';'")
	assert.Contains(t, out, "coin ")
	assert.NotContains(t, out, "(1 row)", "nothing runs after exit")
	assert.Zero(t, h.node.TotalCalls())
}

func TestRepl_RunsPendingInputAtEOF(t *testing.T) {
	h := newHarness(t)

	out, _ := runReplInput(t, h, "SELECT number FROM checkpoint 100 ON mainnet")

	assert.Contains(t, out, "(1 row)")
}

func TestReplCommand_ReadsPipedStdin(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.execute(t, "SELECT number, epoch FROM checkpoint 100:101 ON mainnet;\nquit\n", "repl")

	require.NoError(t, err)
	newGoldie(t).Assert(t, "run_table", []byte(out))
}
