// Package testutil provides deterministic symbol and size-tree fixtures
// shared by tests across the module.
package testutil

import (
	stdelf "debug/elf"
	"fmt"
	"math/rand"

	"github.com/vanderheijden86/footprint/pkg/elf"
	"github.com/vanderheijden86/footprint/pkg/sizetree"
)

// Sym builds a function symbol with the fields reports care about. The
// display name mirrors the raw name, as the extractor leaves it when
// demangling is off.
func Sym(name string, size uint64, file string) *elf.Symbol {
	return &elf.Symbol{
		Name:      name,
		Demangled: name,
		Size:      size,
		Type:      stdelf.STT_FUNC,
		Bind:      stdelf.STB_GLOBAL,
		Section:   stdelf.SectionIndex(1),
		File:      file,
	}
}

// Obj builds a data symbol.
func Obj(name string, size uint64, file string) *elf.Symbol {
	s := Sym(name, size, file)
	s.Type = stdelf.STT_OBJECT
	return s
}

// GeneratorConfig controls symbol generation.
type GeneratorConfig struct {
	Seed    int64  // Random seed for determinism (0 = 42)
	MinSize uint64 // Lower bound for generated symbol sizes (default 16)
	MaxSize uint64 // Upper bound for generated symbol sizes (default 4096)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:    42, // Deterministic
		MinSize: 16,
		MaxSize: 4096,
	}
}

// Generator creates symbol fixtures with various path shapes.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.MinSize == 0 {
		cfg.MinSize = 16
	}
	if cfg.MaxSize <= cfg.MinSize {
		cfg.MaxSize = cfg.MinSize + 4080
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

func (g *Generator) size() uint64 {
	span := int64(g.cfg.MaxSize - g.cfg.MinSize)
	return g.cfg.MinSize + uint64(g.rng.Int63n(span+1))
}

// ============================================================================
// Path Shape Generators
// ============================================================================

// Flat creates n symbols defined in a single source file.
func (g *Generator) Flat(n int) []*elf.Symbol {
	symbols := make([]*elf.Symbol, n)
	for i := range symbols {
		symbols[i] = Sym(fmt.Sprintf("sym%d", i), g.size(), "src/flat.c")
	}
	return symbols
}

// Wide creates symbols spread across sibling files in one directory.
func (g *Generator) Wide(files, perFile int) []*elf.Symbol {
	symbols := make([]*elf.Symbol, 0, files*perFile)
	for f := 0; f < files; f++ {
		file := fmt.Sprintf("src/file%d.c", f)
		for s := 0; s < perFile; s++ {
			symbols = append(symbols, Sym(fmt.Sprintf("f%d_sym%d", f, s), g.size(), file))
		}
	}
	return symbols
}

// Deep creates two symbols in one file at the bottom of a directory chain of
// the given depth. MergePaths collapses the whole chain into a single row.
func (g *Generator) Deep(depth int) []*elf.Symbol {
	if depth < 1 {
		depth = 1
	}
	path := ""
	for d := 0; d < depth; d++ {
		path += fmt.Sprintf("d%d/", d)
	}
	path += "leaf.c"
	return []*elf.Symbol{
		Sym("leaf_fn", g.size(), path),
		Obj("leaf_data", g.size(), path),
	}
}

// Mixed creates n symbols with paths drawn from a small fixed pool, a
// general-purpose load for row counts and scrolling.
func (g *Generator) Mixed(n int) []*elf.Symbol {
	pool := []string{
		"src/core/main.c",
		"src/core/sched.c",
		"src/drivers/uart.c",
		"src/drivers/spi.c",
		"lib/printf.c",
		"", // orphans
	}
	symbols := make([]*elf.Symbol, n)
	for i := range symbols {
		symbols[i] = Sym(fmt.Sprintf("sym%d", i), g.size(), pool[g.rng.Intn(len(pool))])
	}
	return symbols
}

// Orphans creates n symbols without source information; all land in the "?"
// bucket.
func (g *Generator) Orphans(n int) []*elf.Symbol {
	symbols := make([]*elf.Symbol, n)
	for i := range symbols {
		symbols[i] = Obj(fmt.Sprintf("orphan%d", i), g.size(), "")
	}
	return symbols
}

// ============================================================================
// Tree Builders
// ============================================================================

// Tree builds a bare tree, no pipeline passes applied.
func Tree(symbols []*elf.Symbol) *sizetree.Tree {
	return sizetree.New(symbols)
}

// BuildTree runs the standard reporting pipeline over the symbols:
// accumulated sizes, total and a size sort. Paths stay unmerged so row
// labels match single components.
func BuildTree(symbols []*elf.Symbol) *sizetree.Tree {
	t := sizetree.New(symbols)
	t.AccumulateSizes()
	t.CalculateTotal()
	t.SortBySize()
	return t
}

// ============================================================================
// Canonical Fixture
// ============================================================================

// CanonicalSymbols returns a small fixed symbol set spanning two directory
// trees and the orphan bucket. Sizes are distinct so size-sorted orderings
// are unambiguous.
func CanonicalSymbols() []*elf.Symbol {
	return []*elf.Symbol{
		Sym("main", 1000, "src/core/main.c"),
		Sym("init", 512, "src/core/main.c"),
		Sym("helper", 256, "src/core/util.c"),
		Obj("uart_rx_buf", 2048, "src/drivers/uart.c"),
		Sym("uart_isr", 128, "src/drivers/uart.c"),
		Sym("aes_encrypt", 4096, "lib/crypto/aes.c"),
		Obj("orphan_sym", 64, ""),
	}
}

// CanonicalTotal is the summed size of CanonicalSymbols.
const CanonicalTotal uint64 = 8104

// CanonicalTree builds CanonicalSymbols through the standard pipeline. The
// size-sorted row order is:
//
//	lib > crypto > aes.c > aes_encrypt
//	src > drivers > uart.c > uart_rx_buf, uart_isr
//	    > core > main.c > main, init
//	           > util.c > helper
//	? > orphan_sym
func CanonicalTree() *sizetree.Tree {
	return BuildTree(CanonicalSymbols())
}
