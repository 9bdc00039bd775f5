package harness

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// checkExpect returns one message per unmet expectation.
func checkExpect(e *Expect, sr StepResult) []string {
	if e == nil {
		return nil
	}

	var failures []string
	firstErr := firstError(sr.Outcomes)

	if e.Error != "" {
		switch {
		case firstErr == nil:
			failures = append(failures, fmt.Sprintf("expected error %s, got success", e.Error))
		case firstErr.Error != e.Error:
			failures = append(failures, fmt.Sprintf("expected error %s, got %s: %s", e.Error, firstErr.Error, firstErr.Message))
		}
		return failures
	}

	if firstErr != nil {
		return []string{fmt.Sprintf("unexpected error %s: %s", firstErr.Error, firstErr.Message)}
	}

	if e.Rows != nil {
		if got := totalRows(sr.Outcomes); got != *e.Rows {
			failures = append(failures, fmt.Sprintf("expected %d rows, got %d", *e.Rows, got))
		}
	}

	for _, want := range e.Contains {
		if !containsRow(sr.Outcomes, want) {
			failures = append(failures, fmt.Sprintf("no row matches %s", formatRow(want)))
		}
	}
	return failures
}

func firstError(outcomes []OutcomeSnapshot) *OutcomeSnapshot {
	for i := range outcomes {
		if outcomes[i].Error != "" {
			return &outcomes[i]
		}
	}
	return nil
}

func totalRows(outcomes []OutcomeSnapshot) int {
	n := 0
	for _, o := range outcomes {
		n += len(o.Rows)
	}
	return n
}

// containsRow reports whether any row of any outcome has every cell in want
// (subset semantics). A column the outcome lacks never matches.
func containsRow(outcomes []OutcomeSnapshot, want map[string]string) bool {
	for _, o := range outcomes {
		index := make(map[string]int, len(o.Columns))
		for i, c := range o.Columns {
			index[c] = i
		}
	rows:
		for _, row := range o.Rows {
			for col, v := range want {
				i, ok := index[col]
				if !ok || row[i] != v {
					continue rows
				}
			}
			return true
		}
	}
	return false
}

// formatRow renders want with sorted keys so messages are stable.
func formatRow(want map[string]string) string {
	parts := make([]string, 0, len(want))
	for _, k := range slices.Sorted(maps.Keys(want)) {
		parts = append(parts, k+"="+want[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
