package collapse

import (
	"testing"

	"pgregory.net/rapid"
)

// TestBuildStartsFullyExpanded verifies a fresh tree sits at the
// deepest level with nothing hidden.
func TestBuildStartsFullyExpanded(t *testing.T) {
	tr, nodes := buildFixture(t)

	if tr.Depth() != tr.MaxLevel() {
		t.Errorf("Depth() = %d, want max level %d", tr.Depth(), tr.MaxLevel())
	}
	checkAllVisible(t, nodes)
}

// TestCollapseToDepth verifies a sweep marks exactly the rows at the
// target level and hides exactly the rows beneath them.
func TestCollapseToDepth(t *testing.T) {
	tr, nodes := buildFixture(t)

	tr.CollapseToDepth(1)
	if tr.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1", tr.Depth())
	}
	checkRow(t, nodes, 0, false, false) // A, above the band
	checkRow(t, nodes, 1, false, true)  // B, at the band with children
	checkRow(t, nodes, 2, true, false)  // C, beneath B
	checkRow(t, nodes, 3, false, false) // D, at the band but a leaf
	checkRow(t, nodes, 4, false, false) // E
	checkRow(t, nodes, 5, false, false) // F, at the band but a leaf

	tr.CollapseToDepth(0)
	if tr.Depth() != 0 {
		t.Fatalf("Depth() = %d, want 0", tr.Depth())
	}
	checkRow(t, nodes, 0, false, true) // A
	checkRow(t, nodes, 1, true, false)
	checkRow(t, nodes, 2, true, false)
	checkRow(t, nodes, 3, true, false)
	checkRow(t, nodes, 4, false, true) // E
	checkRow(t, nodes, 5, true, false)

	// Rows above the band never keep markers from a previous sweep.
	tr.CollapseToDepth(2)
	if tr.Depth() != 2 {
		t.Fatalf("Depth() = %d, want 2", tr.Depth())
	}
	checkAllVisible(t, nodes)
}

// TestCollapseMoreLessClamp verifies stepping clamps at the bottom and
// at the deepest level instead of wrapping.
func TestCollapseMoreLessClamp(t *testing.T) {
	tr, _ := buildFixture(t)

	steps := []struct {
		action string
		want   int
	}{
		{"more", 1},
		{"more", 0},
		{"more", 0},
		{"less", 1},
		{"less", 2},
		{"less", 2},
	}
	for i, s := range steps {
		switch s.action {
		case "more":
			tr.CollapseMore()
		case "less":
			tr.CollapseLess()
		}
		if tr.Depth() != s.want {
			t.Fatalf("step %d (%s): Depth() = %d, want %d", i, s.action, tr.Depth(), s.want)
		}
	}
}

// TestCollapseAllExpandAll verifies the two jump actions land on the
// extremes regardless of the current level.
func TestCollapseAllExpandAll(t *testing.T) {
	tr, nodes := buildFixture(t)

	tr.CollapseAll()
	if tr.Depth() != 0 {
		t.Errorf("Depth() after CollapseAll = %d, want 0", tr.Depth())
	}
	for i, n := range nodes {
		if n.Level > 0 && !n.El.Hidden() {
			t.Errorf("row %d at level %d still visible after CollapseAll", i, n.Level)
		}
		if n.Level == 0 && n.El.Hidden() {
			t.Errorf("top row %d hidden after CollapseAll", i)
		}
	}

	tr.ExpandAll()
	if tr.Depth() != tr.MaxLevel() {
		t.Errorf("Depth() after ExpandAll = %d, want %d", tr.Depth(), tr.MaxLevel())
	}
	checkAllVisible(t, nodes)
}

// TestSweepResetsManualToggles verifies a sweep rebuilds visibility
// from scratch, discarding per-row toggles.
func TestSweepResetsManualToggles(t *testing.T) {
	tr, nodes := buildFixture(t)

	tr.Toggle(nodes[1]) // collapse B by hand
	tr.CollapseToDepth(2)
	checkAllVisible(t, nodes)

	tr.Toggle(nodes[0]) // collapse A by hand
	tr.CollapseToDepth(0)
	checkRow(t, nodes, 0, false, true)
	checkRow(t, nodes, 4, false, true)
	for _, i := range []int{1, 2, 3, 5} {
		checkRow(t, nodes, i, true, false)
	}
}

// TestDepthOnFlatForest verifies depth actions are harmless when every
// row is a top-level leaf.
func TestDepthOnFlatForest(t *testing.T) {
	tr, err := Build(rows(0, 0, 0))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tr.CollapseAll()
	tr.CollapseMore()
	tr.CollapseLess()
	tr.ExpandAll()
	if tr.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0", tr.Depth())
	}
	checkAllVisible(t, tr.Nodes())
}

// TestDepthOnEmptyTree verifies depth actions tolerate a tree with no
// rows at all.
func TestDepthOnEmptyTree(t *testing.T) {
	tr, err := Build(nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tr.CollapseMore()
	tr.CollapseAll()
	tr.ExpandAll()
	tr.CollapseToDepth(3)
	if tr.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0", tr.Depth())
	}
}

// TestDepthActionsKeepInvariants drives a random tree through random
// depth actions and row toggles, checking after every step that the
// level stays in range, a row is hidden exactly when a row above it is
// collapsed, and leaves never carry markers. Only visible rows are
// toggled, since hidden rows cannot be clicked.
func TestDepthActionsKeepInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 48).Draw(t, "rows")
		levels := make([]int, n)
		for i := 1; i < n; i++ {
			levels[i] = rapid.IntRange(0, levels[i-1]+1).Draw(t, "level")
		}
		tr, err := Build(rows(levels...))
		if err != nil {
			t.Fatalf("Build(%v): %v", levels, err)
		}

		steps := rapid.IntRange(1, 32).Draw(t, "steps")
		for s := 0; s < steps; s++ {
			switch rapid.IntRange(0, 5).Draw(t, "action") {
			case 0:
				tr.CollapseMore()
			case 1:
				tr.CollapseLess()
			case 2:
				tr.CollapseAll()
			case 3:
				tr.ExpandAll()
			case 4:
				tr.CollapseToDepth(rapid.IntRange(-1, tr.MaxLevel()+1).Draw(t, "target"))
			case 5:
				var visible []*Node
				for _, nd := range tr.Nodes() {
					if !nd.El.Hidden() {
						visible = append(visible, nd)
					}
				}
				// Top rows are never hidden, so there is always one.
				nd := visible[rapid.IntRange(0, len(visible)-1).Draw(t, "row")]
				tr.Toggle(nd)
			}

			if tr.Depth() < 0 || tr.Depth() > tr.MaxLevel() {
				t.Fatalf("step %d: Depth() = %d out of [0, %d]", s, tr.Depth(), tr.MaxLevel())
			}
			for i, nd := range tr.Nodes() {
				collapsedAbove := false
				for p := nd.Parent; p != nil && p.El != nil; p = p.Parent {
					if p.El.CollapsedMarker() {
						collapsedAbove = true
						break
					}
				}
				if nd.El.Hidden() != collapsedAbove {
					t.Fatalf("step %d: row %d hidden = %v with collapsed row above = %v",
						s, i, nd.El.Hidden(), collapsedAbove)
				}
				if nd.IsLeaf() && nd.El.CollapsedMarker() {
					t.Fatalf("step %d: leaf row %d carries a collapsed marker", s, i)
				}
			}
		}
	})
}
