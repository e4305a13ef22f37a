package ui

import (
	"fmt"
	"path/filepath"

	"github.com/vanderheijden86/footprint/pkg/collapse"
	"github.com/vanderheijden86/footprint/pkg/sizetree"
)

// treeRow adapts one flattened size-tree row to the collapse widget. The
// widget drives hidden and collapsed through the Element interface; the
// viewer reads them back when drawing.
type treeRow struct {
	sizetree.Row

	marker    string
	hidden    bool
	collapsed bool

	// cnode and toggle are bound after widget construction.
	cnode  *collapse.Node
	toggle func()
}

func (r *treeRow) LevelMarker() string       { return r.marker }
func (r *treeRow) SetHidden(h bool)          { r.hidden = h }
func (r *treeRow) Hidden() bool              { return r.hidden }
func (r *treeRow) SetCollapsedMarker(c bool) { r.collapsed = c }
func (r *treeRow) CollapsedMarker() bool     { return r.collapsed }

var _ collapse.Element = (*treeRow)(nil)

// newTreeRows wraps flattened rows into widget elements.
func newTreeRows(rows []sizetree.Row) []*treeRow {
	out := make([]*treeRow, len(rows))
	for i, r := range rows {
		out[i] = &treeRow{
			Row:    r,
			marker: fmt.Sprintf("collapsible level-%d", r.Level),
		}
	}
	return out
}

// buildWidget constructs the collapse widget over the rows and binds each
// row's toggle. Rows keep a reference to their widget node so the viewer can
// walk ancestry when the cursor's row disappears under a fold.
func buildWidget(rows []*treeRow) (*collapse.Tree, error) {
	elements := make([]collapse.Element, len(rows))
	for i, r := range rows {
		elements[i] = r
	}
	w, err := collapse.Build(elements)
	if err != nil {
		return nil, err
	}
	w.BindClicks(func(n *collapse.Node, fire func()) {
		r := n.El.(*treeRow)
		r.cnode = n
		r.toggle = fire
	})
	return w, nil
}

// fullPath reconstructs the row's place in the tree for clipboard yanks:
// ancestor path components joined, with symbol rows appended after a colon.
func (r *treeRow) fullPath() string {
	var parts []string
	for n := r.cnode; n != nil && n.El != nil; n = n.Parent {
		row := n.El.(*treeRow)
		if row.Kind == sizetree.RowSymbol {
			continue
		}
		parts = append(parts, row.Label)
	}
	// Ancestors were collected bottom-up.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	path := filepath.Join(parts...)
	if r.Kind == sizetree.RowSymbol {
		if path == "" {
			return r.Label
		}
		return path + ":" + r.Label
	}
	return path
}
