package collapse

// The global depth actions mirror the four report buttons
// ("Collapse: All / None / Less / More"): a lower depth folds more of the
// tree away, depth 0 leaves only top-level rows, depth maxLevel leaves
// everything open.

// CollapseMore folds one more level (depth-1, floor 0).
func (t *Tree) CollapseMore() { t.CollapseToDepth(t.depth - 1) }

// CollapseLess unfolds one level (depth+1, ceiling maxLevel).
func (t *Tree) CollapseLess() { t.CollapseToDepth(t.depth + 1) }

// CollapseAll folds everything down to the top-level rows.
func (t *Tree) CollapseAll() { t.CollapseToDepth(0) }

// ExpandAll unfolds the whole tree.
func (t *Tree) ExpandAll() { t.CollapseToDepth(t.maxLevel) }

// CollapseToDepth sets the collapse depth, clamped to [0, maxLevel], and
// runs a full sweep: first every node is unhidden and stripped of its
// collapsed marker, then every node sitting exactly at the target depth is
// collapsed.
//
// Only the single band at the target depth is folded. Nodes above it are
// open; nodes below it are hidden by the band, not marked collapsed
// themselves, so unfolding a band node reveals its subtree fully expanded.
func (t *Tree) CollapseToDepth(depth int) {
	if depth < 0 {
		depth = 0
	}
	if depth > t.maxLevel {
		depth = t.maxLevel
	}
	t.depth = depth

	for _, n := range t.all {
		n.El.SetHidden(false)
		n.El.SetCollapsedMarker(false)
	}
	for _, n := range t.all {
		if n.Level == depth {
			t.SetCollapsed(n, true)
		}
	}
}
