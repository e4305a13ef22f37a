// Package collapse implements a hierarchical collapse/expand widget over a
// flat, pre-order stream of depth-annotated rows.
//
// Hosts hand Build an ordered slice of elements, each carrying a
// level-<digits> marker. Build reconstructs the tree those levels describe
// and the returned Tree then drives all visibility state: per-node toggles
// (click handling) and global depth sweeps (the All/None/Less/More actions).
// The widget never renders anything itself; it only reads level markers and
// writes hidden flags and collapsed markers through the Element interface,
// so the same core serves the terminal UI and the HTML report rewriter.
//
// A Tree is built once per document view and mutated in place. All
// operations are synchronous and single-threaded; they run to completion
// inside one UI event.
package collapse

import (
	"errors"
	"fmt"
)

// Construction errors. All are fatal: the stream is rejected as a whole and
// no partial tree is returned.
var (
	// ErrOrphanLevelJump: the level went one deeper but the would-be parent
	// has no child to descend into.
	ErrOrphanLevelJump = errors.New("collapse: level increased under a node with no children")

	// ErrBrokenAncestryChain: the level went up past the top of the tree.
	ErrBrokenAncestryChain = errors.New("collapse: level decrease walked past the root")

	// ErrInvalidLevelJump: the level grew by more than one between rows.
	ErrInvalidLevelJump = errors.New("collapse: level increased by more than one")
)

// Node is one managed row. The synthetic root has a nil El and level -1; it
// is never rendered and never collapsible.
type Node struct {
	El       Element
	Level    int
	Children []*Node

	// Parent is a non-owning back-reference, needed for ascension during
	// construction and otherwise unused at runtime.
	Parent *Node
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Tree holds the widget state for one document view: the forest under a
// single synthetic root, the maximum level observed at build time, and the
// current collapse depth.
type Tree struct {
	root     *Node
	all      []*Node // every managed node in input order
	maxLevel int
	depth    int
}

// Root returns the synthetic root node.
func (t *Tree) Root() *Node { return t.root }

// Nodes returns every managed node in input (document) order. The slice is
// shared with the tree; callers must not modify it.
func (t *Tree) Nodes() []*Node { return t.all }

// Len returns the number of managed nodes.
func (t *Tree) Len() int { return len(t.all) }

// MaxLevel returns the maximum level observed during construction. It never
// changes after Build.
func (t *Tree) MaxLevel() int { return t.maxLevel }

// Depth returns the current collapse depth.
func (t *Tree) Depth() int { return t.depth }

// Build reconstructs the tree from an ordered element stream. Elements
// without a level token are skipped and do not move the depth cursor.
//
// The cursor starts at the root with level 0. A row at the cursor level is
// appended as a sibling; a row one level deeper descends into the last
// appended child first; a row at a shallower level ascends the parent chain
// one step per level first. Any deeper jump than one step is invalid: a
// valid pre-order leveled stream can only grow depth one row at a time.
func Build(elements []Element) (*Tree, error) {
	root := &Node{Level: -1}
	t := &Tree{root: root}

	parent := root
	level := 0
	for i, el := range elements {
		l, ok := ParseLevel(el.LevelMarker())
		if !ok {
			continue
		}
		switch {
		case l == level:
			// Sibling of the previous row; parent unchanged.
		case l == level+1:
			if len(parent.Children) == 0 {
				return nil, fmt.Errorf("element %d: level %d with no preceding level %d row: %w",
					i, l, level, ErrOrphanLevelJump)
			}
			parent = parent.Children[len(parent.Children)-1]
			level = l
		case l < level:
			for steps := level - l; steps > 0; steps-- {
				if parent == root {
					return nil, fmt.Errorf("element %d: level %d: %w", i, l, ErrBrokenAncestryChain)
				}
				parent = parent.Parent
			}
			level = l
		default: // l > level+1
			return nil, fmt.Errorf("element %d: level %d after %d: %w", i, l, level, ErrInvalidLevelJump)
		}

		n := &Node{El: el, Level: l, Parent: parent}
		parent.Children = append(parent.Children, n)
		t.all = append(t.all, n)
		if l > t.maxLevel {
			t.maxLevel = l
		}
	}

	// Fully expanded is the starting state; hosts reseed via CollapseToDepth.
	t.depth = t.maxLevel
	return t, nil
}
