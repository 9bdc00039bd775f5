package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestScenarios runs every scenario under testdata/scenarios against its
// golden file.
func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)
			require.Equal(t, name, s.Name, "scenario name must match its file name")

			result := RunWithGolden(t, s)
			require.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRender(t *testing.T) {
	r := NewResult("render")
	r.Steps = []StepResult{
		{
			Query: "SELECT number\n  FROM checkpoint 1 ON mainnet",
			Outcomes: []OutcomeSnapshot{
				{Entity: "checkpoint", Columns: []string{"number"}, Rows: [][]string{{"1"}}},
				{Error: "NOT_FOUND", Message: "checkpoint 2 not found"},
			},
		},
	}

	want := "# render\n" +
		"> SELECT number FROM checkpoint 1 ON mainnet\n" +
		"checkpoint: number\n" +
		"1\n" +
		"(1 rows)\n" +
		"error: NOT_FOUND\n"
	require.Equal(t, want, string(Render(r)))
}
