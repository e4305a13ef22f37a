package ui

import (
	"context"
	"fmt"

	"github.com/vanderheijden86/footprint/pkg/collapse"
	"github.com/vanderheijden86/footprint/pkg/debug"
	"github.com/vanderheijden86/footprint/pkg/elf"
	"github.com/vanderheijden86/footprint/pkg/metrics"
	"github.com/vanderheijden86/footprint/pkg/sizetree"
)

// snapshot holds everything derived from one pass over the ELF file: the
// aggregated size tree, its flattened rows and the collapse widget that
// drives their visibility. A fresh snapshot replaces the old one wholesale
// on reload; collapse state is deliberately not carried over.
type snapshot struct {
	tree     *sizetree.Tree
	rows     []*treeRow
	widget   *collapse.Tree
	total    uint64
	hasTotal bool
	symbols  int
	machine  string
}

// buildSnapshot runs the full extraction pipeline against the file.
func buildSnapshot(path string, opts Options) (*snapshot, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	syms, err := f.Symbols(context.Background(), elf.SymbolOptions{Demangle: opts.Demangle})
	if err != nil {
		return nil, err
	}

	var secs []*elf.Section
	if len(opts.Sections) > 0 {
		secs, err = elf.FilterNumbers(f.Sections, opts.Sections)
		if err != nil {
			return nil, err
		}
	} else {
		secs = elf.FilterKind(f.Sections, opts.Kind)
	}

	syms = elf.FilterSymbols(syms, secs)
	if len(syms) == 0 {
		return nil, fmt.Errorf("%s: no symbols in the selected sections", path)
	}

	tree := sizetree.New(syms)
	if opts.MergePaths {
		tree.MergePaths(opts.FishPaths)
	}
	tree.AccumulateSizes()
	tree.CalculateTotal()

	return newSnapshot(tree, opts, f.Machine.String())
}

// newSnapshot flattens an already-built size tree into widget-managed rows.
// Split out from buildSnapshot so sort cycling and tests can rebuild rows
// without touching the ELF file again.
func newSnapshot(tree *sizetree.Tree, opts Options, machine string) (*snapshot, error) {
	if opts.SortByName {
		tree.SortByName()
	} else {
		tree.SortBySize()
	}

	rows := newTreeRows(tree.Rows(sizetree.RowOptions{
		MinSize:   opts.MinSize,
		FilesOnly: opts.FilesOnly,
	}))
	widget, err := buildWidget(rows)
	if err != nil {
		return nil, err
	}

	if opts.Depth >= 0 {
		done := metrics.Timer(metrics.CollapseSweep)
		widget.CollapseToDepth(opts.Depth)
		done()
	}

	total, hasTotal := tree.Total()
	debug.Log("snapshot: %d symbols, %d rows, max level %d",
		tree.SymbolCount(), len(rows), widget.MaxLevel())

	return &snapshot{
		tree:     tree,
		rows:     rows,
		widget:   widget,
		total:    total,
		hasTotal: hasTotal,
		symbols:  tree.SymbolCount(),
		machine:  machine,
	}, nil
}

// resort re-flattens the retained tree under a new sort order, preserving
// the widget's current collapse depth.
func (s *snapshot) resort(opts Options) error {
	opts.Depth = s.widget.Depth()
	fresh, err := newSnapshot(s.tree, opts, s.machine)
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}

// visible returns the rows the widget currently leaves unhidden, in document
// order.
func (s *snapshot) visible() []*treeRow {
	out := make([]*treeRow, 0, len(s.rows))
	for _, r := range s.rows {
		if !r.hidden {
			out = append(out, r)
		}
	}
	return out
}
