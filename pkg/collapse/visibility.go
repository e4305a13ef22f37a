package collapse

// SetCollapsed folds or unfolds the subtree under n. Leaves and the
// synthetic root are ignored. The node itself stays visible and only carries
// the collapsed marker; every strict descendant gets its own collapsed
// marker cleared and its hidden flag set to collapsed.
//
// Clearing descendant markers means nested collapse state is deliberately
// not remembered: unfolding an ancestor reveals the whole subtree fully
// expanded, even parts that were individually folded before.
func (t *Tree) SetCollapsed(n *Node, collapsed bool) {
	if n == nil || n == t.root || n.IsLeaf() {
		return
	}
	n.El.SetCollapsedMarker(collapsed)
	for _, c := range n.Children {
		setSubtreeHidden(c, collapsed)
	}
}

func setSubtreeHidden(n *Node, hidden bool) {
	n.El.SetCollapsedMarker(false)
	n.El.SetHidden(hidden)
	for _, c := range n.Children {
		setSubtreeHidden(c, hidden)
	}
}

// Toggle flips the collapsed state of n. The current state is read from the
// element itself, not from an internal flag, so hosts that manipulate
// markers directly stay in sync.
func (t *Tree) Toggle(n *Node) {
	if n == nil || n == t.root {
		return
	}
	t.SetCollapsed(n, !n.El.CollapsedMarker())
}

// BindClicks visits every managed node exactly once and hands the host a
// fire function that toggles that node. Hosts call this once after Build,
// attach fire to whatever click surface they own, and never rebind.
func (t *Tree) BindClicks(bind func(n *Node, fire func())) {
	for _, n := range t.all {
		n := n
		bind(n, func() { t.Toggle(n) })
	}
}
