package sizetree

import (
	"github.com/vanderheijden86/footprint/pkg/metrics"
)

// RowKind says what a flattened row stands for.
type RowKind int

const (
	RowDir RowKind = iota
	RowFile
	RowSymbol
)

// Row is one line of the flattened tree: a pre-order entry with its nesting
// level, ready for a render host. Level 0 is a top-level node.
type Row struct {
	Label string
	Kind  RowKind
	Level int

	// Size is the symbol size for symbol rows and the cumulative subtree
	// size for path rows; HasSize is false on path rows before
	// AccumulateSizes has run.
	Size    uint64
	HasSize bool

	Node *Node
}

// RowOptions filters the flattened stream.
type RowOptions struct {
	// MinSize drops symbol rows smaller than this. Path rows always stay,
	// so a file keeps showing its cumulative size even when every one of
	// its symbols falls under the threshold.
	MinSize uint64

	// FilesOnly drops all symbol rows.
	FilesOnly bool
}

// Rows flattens the tree pre-order into depth-annotated rows. Since only
// leaf rows are ever filtered, the level sequence stays valid for tree
// reconstruction: levels grow by at most one between consecutive rows.
func (t *Tree) Rows(opts RowOptions) []Row {
	defer metrics.Timer(metrics.RowFlatten)()

	var rows []Row
	var descend func(n *Node, level int)
	descend = func(n *Node, level int) {
		if n.IsSymbol() {
			if opts.FilesOnly || n.Symbol.Size < opts.MinSize {
				return
			}
			rows = append(rows, Row{
				Label:   n.Label,
				Kind:    RowSymbol,
				Level:   level,
				Size:    n.Symbol.Size,
				HasSize: true,
				Node:    n,
			})
			return
		}
		kind := RowFile
		if n.IsDir() {
			kind = RowDir
		}
		rows = append(rows, Row{
			Label:   n.Label,
			Kind:    kind,
			Level:   level,
			Size:    n.Cumulative,
			HasSize: n.HasCumulative,
			Node:    n,
		})
		for _, c := range n.Children {
			descend(c, level+1)
		}
	}
	for _, c := range t.root.Children {
		descend(c, 0)
	}
	return rows
}
