package testutil

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/footprint/pkg/sizetree"
)

// RowLabels flattens rows to their labels, in order.
func RowLabels(rows []sizetree.Row) []string {
	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.Label
	}
	return labels
}

// FindRow returns the first row with the given label.
func FindRow(rows []sizetree.Row, label string) (sizetree.Row, bool) {
	for _, r := range rows {
		if r.Label == label {
			return r, true
		}
	}
	return sizetree.Row{}, false
}

// AssertRowCount verifies the expected number of rows.
func AssertRowCount(t *testing.T, rows []sizetree.Row, expected int) {
	t.Helper()
	if len(rows) != expected {
		t.Errorf("expected %d rows, got %d: %v", expected, len(rows), RowLabels(rows))
	}
}

// AssertRowOrder verifies that the labels appear in the rows in the given
// order; unrelated rows in between are ignored.
func AssertRowOrder(t *testing.T, rows []sizetree.Row, labels ...string) {
	t.Helper()
	i := 0
	for _, r := range rows {
		if i < len(labels) && r.Label == labels[i] {
			i++
		}
	}
	if i != len(labels) {
		t.Errorf("expected rows to contain %v in order, got %v", labels, RowLabels(rows))
	}
}

// AssertRowLevel verifies the level of the first row with the given label.
func AssertRowLevel(t *testing.T, rows []sizetree.Row, label string, level int) {
	t.Helper()
	r, ok := FindRow(rows, label)
	if !ok {
		t.Errorf("row %q not found in %v", label, RowLabels(rows))
		return
	}
	if r.Level != level {
		t.Errorf("expected row %q at level %d, got %d", label, level, r.Level)
	}
}

// AssertTotal verifies the recorded tree total.
func AssertTotal(t *testing.T, tree *sizetree.Tree, expected uint64) {
	t.Helper()
	total, ok := tree.Total()
	if !ok {
		t.Fatal("tree has no total; CalculateTotal was not run")
	}
	if total != expected {
		t.Errorf("expected total %d, got %d", expected, total)
	}
}

// AssertLine verifies that output contains the given line exactly, ignoring
// trailing whitespace on both sides of the comparison.
func AssertLine(t *testing.T, output, line string) {
	t.Helper()
	want := strings.TrimRight(line, " ")
	for _, l := range strings.Split(output, "\n") {
		if strings.TrimRight(l, " ") == want {
			return
		}
	}
	t.Errorf("expected line %q in output:\n%s", line, output)
}

// AssertContains verifies that output contains the substring.
func AssertContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Errorf("expected output to contain %q:\n%s", substr, output)
	}
}

// AssertNotContains verifies that output does not contain the substring.
func AssertNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Errorf("expected output to not contain %q:\n%s", substr, output)
	}
}
