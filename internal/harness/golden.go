package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Render formats a result as the text stored in golden files:
//
//	# name
//	> query
//	entity: col1,col2
//	v1,v2
//	(1 rows)
//	error: CODE
//
// Error messages are left out so that wording changes do not churn goldens.
func Render(r *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", r.Name)
	for _, step := range r.Steps {
		fmt.Fprintf(&b, "> %s\n", strings.Join(strings.Fields(step.Query), " "))
		for _, o := range step.Outcomes {
			if o.Error != "" {
				fmt.Fprintf(&b, "error: %s\n", o.Error)
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", o.Entity, strings.Join(o.Columns, ","))
			for _, row := range o.Rows {
				fmt.Fprintln(&b, strings.Join(row, ","))
			}
			fmt.Fprintf(&b, "(%d rows)\n", len(o.Rows))
		}
	}
	return []byte(b.String())
}

// RunWithGolden executes a scenario, fails t on unmet expectations and
// compares the rendered outcomes against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result, err := Run(t.Context(), scenario)
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}
	for _, msg := range result.Errors {
		t.Errorf("scenario %s: %s", scenario.Name, msg)
	}
	AssertGolden(t, scenario.Name, result)
	return result
}

// AssertGolden compares the given result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Render(result))
}
