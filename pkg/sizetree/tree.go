// Package sizetree aggregates ELF symbols into a tree keyed by the source
// paths that defined them: one node per directory component, one per file,
// symbols as leaves. Symbols without source information collect under the
// reserved "?" bucket, a top-level file node that exists even when empty.
//
// A tree is built once per report, then shaped by the optional passes
// (MergePaths, AccumulateSizes, one of the sorts, CalculateTotal) and finally
// flattened by Rows into the depth-annotated pre-order stream the render
// hosts and the collapse widget consume.
package sizetree

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/vanderheijden86/footprint/pkg/debug"
	"github.com/vanderheijden86/footprint/pkg/elf"
	"github.com/vanderheijden86/footprint/pkg/metrics"
)

// Node is one tree entry: the synthetic root, a directory, a file, or a
// symbol leaf. Label is the path component for path nodes and the display
// name for symbols; after MergePaths a path label may span several joined
// components.
type Node struct {
	Label    string
	Dir      bool // distinguishes directories from files on path nodes
	Symbol   *elf.Symbol
	Children []*Node
	Parent   *Node

	// Cumulative is the sum of all symbol sizes in the subtree, valid only
	// after AccumulateSizes.
	Cumulative    uint64
	HasCumulative bool

	root bool
}

// IsRoot reports whether this is the synthetic root node.
func (n *Node) IsRoot() bool { return n.root }

// IsSymbol reports whether the node is a symbol leaf.
func (n *Node) IsSymbol() bool { return n.Symbol != nil }

// IsPath reports whether the node is a directory or file node.
func (n *Node) IsPath() bool { return !n.root && n.Symbol == nil }

// IsDir reports whether the node is a directory node.
func (n *Node) IsDir() bool { return n.IsPath() && n.Dir }

// IsFile reports whether the node is a file node. The "?" orphan bucket
// counts as a file.
func (n *Node) IsFile() bool { return n.IsPath() && !n.Dir }

func (n *Node) add(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Tree groups symbols by their defining source paths.
type Tree struct {
	root    *Node
	orphans *Node

	symbols  int
	total    uint64
	hasTotal bool
}

// New builds a tree from the given symbols. Symbol display names become leaf
// labels, so demangling must already have happened.
func New(symbols []*elf.Symbol) *Tree {
	defer metrics.Timer(metrics.TreeBuild)()

	t := &Tree{
		root:    &Node{root: true},
		orphans: &Node{Label: "?"},
	}
	t.root.add(t.orphans)
	for _, s := range symbols {
		t.Add(s)
	}
	debug.Log("size tree built: %d symbols, %d orphans", t.symbols, len(t.orphans.Children))
	return t
}

// Add inserts one symbol, creating any missing path nodes on the way.
func (t *Tree) Add(s *elf.Symbol) {
	t.symbols++
	if s.File == "" {
		t.orphans.add(&Node{Label: s.Demangled, Symbol: s})
		return
	}
	if !filepath.IsAbs(s.File) {
		debug.Log("symbol %s has a relative source path: %s", s.Demangled, s.File)
	}

	node := t.root
	for _, part := range pathParts(s.File) {
		var next *Node
		for _, c := range node.Children {
			if c.IsPath() && c.Label == part {
				next = c
				break
			}
		}
		if next == nil {
			next = &Node{Label: part, Dir: true}
			node.add(next)
		}
		node = next
	}
	// The last component is the file itself.
	node.Dir = false
	node.add(&Node{Label: s.Demangled, Symbol: s})
}

// Root returns the synthetic root node.
func (t *Tree) Root() *Node { return t.root }

// SymbolCount returns the number of symbols added to the tree.
func (t *Tree) SymbolCount() int { return t.symbols }

// MergePaths collapses directory chains with a single path child into one
// node, so /home/user/project prints as one row instead of three. With
// fishLike, every already-joined component except the last shrinks to its
// first rune, in the style of the fish shell prompt.
func (t *Tree) MergePaths(fishLike bool) {
	t.mergePaths(t.root, fishLike)
}

func (t *Tree) mergePaths(n *Node, fishLike bool) {
	for i := 0; i < len(n.Children); i++ {
		child := n.Children[i]
		for child.IsPath() && len(child.Children) == 1 && child.Children[0].IsPath() {
			label := child.Label
			if fishLike {
				label = fishAbbrev(label)
			}
			merged := child.Children[0]
			merged.Label = filepath.Join(label, merged.Label)
			merged.Parent = n
			n.Children[i] = merged
			child = merged
		}
		t.mergePaths(child, fishLike)
	}
}

// fishAbbrev shortens the final component of label to its first rune,
// keeping the leading directories untouched.
func fishAbbrev(label string) string {
	dir, base := filepath.Dir(label), filepath.Base(label)
	short := base
	for _, r := range base {
		short = string(r)
		break
	}
	return filepath.Join(dir, short)
}

// AccumulateSizes computes the cumulative subtree size of every node. The
// orphan bucket always ends up with a value, even when empty.
func (t *Tree) AccumulateSizes() {
	accumulate(t.root)
}

func accumulate(n *Node) uint64 {
	var sum uint64
	for _, c := range n.Children {
		sum += accumulate(c)
	}
	if n.IsSymbol() {
		sum = n.Symbol.Size
	}
	n.Cumulative, n.HasCumulative = sum, true
	return sum
}

// CalculateTotal records the total size of all symbols in the tree. The
// total feeds the percent column and the totals line; Rows filtering does
// not change it.
func (t *Tree) CalculateTotal() {
	var total uint64
	walk(t.root, func(n *Node) {
		if n.IsSymbol() {
			total += n.Symbol.Size
		}
	})
	t.total, t.hasTotal = total, true
}

// Total returns the recorded total size. ok is false before CalculateTotal.
func (t *Tree) Total() (total uint64, ok bool) {
	return t.total, t.hasTotal
}

// MaxDepth returns the deepest row level, where top-level nodes sit at 0.
// An empty tree (only the orphan bucket) reports 0.
func (t *Tree) MaxDepth() int {
	max := 0
	var descend func(n *Node, depth int)
	descend = func(n *Node, depth int) {
		if depth > max {
			max = depth
		}
		for _, c := range n.Children {
			descend(c, depth+1)
		}
	}
	for _, c := range t.root.Children {
		descend(c, 0)
	}
	return max
}

// SortBySize orders every sibling list largest-first: directories first,
// then files, then symbols, with path nodes compared by cumulative size
// when available and by label otherwise.
func (t *Tree) SortBySize() {
	t.sortChildren(func(a, b *elf.Symbol) bool { return a.Size > b.Size })
}

// SortByName orders symbols alphabetically; path nodes keep the
// dirs-then-files grouping and their size ordering when accumulated.
func (t *Tree) SortByName() {
	t.sortChildren(func(a, b *elf.Symbol) bool { return a.Demangled < b.Demangled })
}

func (t *Tree) sortChildren(symbolLess func(a, b *elf.Symbol) bool) {
	walk(t.root, func(n *Node) {
		if len(n.Children) < 2 {
			return
		}
		var dirs, files, symbols []*Node
		for _, c := range n.Children {
			switch {
			case c.IsDir():
				dirs = append(dirs, c)
			case c.IsFile():
				files = append(files, c)
			default:
				symbols = append(symbols, c)
			}
		}
		sortPaths(dirs)
		sortPaths(files)
		sort.SliceStable(symbols, func(i, j int) bool {
			return symbolLess(symbols[i].Symbol, symbols[j].Symbol)
		})
		children := n.Children[:0]
		children = append(children, dirs...)
		children = append(children, files...)
		children = append(children, symbols...)
		n.Children = children
	})
}

func sortPaths(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.HasCumulative && b.HasCumulative {
			return a.Cumulative > b.Cumulative
		}
		return a.Label < b.Label
	})
}

// walk visits every node pre-order, root included.
func walk(n *Node, visit func(*Node)) {
	visit(n)
	for _, c := range n.Children {
		walk(c, visit)
	}
}

// pathParts splits a cleaned path into its components, keeping a leading
// separator (or volume name) as the first component the way an absolute
// path is usually displayed.
func pathParts(path string) []string {
	path = filepath.Clean(path)
	vol := filepath.VolumeName(path)
	rest := path[len(vol):]

	var parts []string
	sep := string(filepath.Separator)
	if strings.HasPrefix(rest, sep) {
		parts = append(parts, vol+sep)
		rest = rest[1:]
	} else if vol != "" {
		parts = append(parts, vol)
	}
	for _, c := range strings.Split(rest, sep) {
		if c != "" && c != "." {
			parts = append(parts, c)
		}
	}
	return parts
}
