package elf

import (
	"context"
	stdelf "debug/elf"
	"debug/dwarf"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/ianlancetaylor/demangle"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/footprint/pkg/debug"
	"github.com/vanderheijden86/footprint/pkg/metrics"
)

// ErrNoSymbols means the ELF file carries no symbol table, typically because
// it was stripped.
var ErrNoSymbols = errors.New("elf: no symbol table")

// Symbol is one entry of the ELF symbol table, enriched with the source file
// and line that defined it when DWARF line info is available. Symbols with an
// empty File end up in the report's "?" bucket.
type Symbol struct {
	Name      string // linker name, as stored in the symbol table
	Demangled string // display name; equals Name when demangling is off or not applicable
	Value     uint64
	Size      uint64
	Type      stdelf.SymType
	Bind      stdelf.SymBind
	Section   stdelf.SectionIndex
	File      string
	Line      int
}

// SymbolOptions controls symbol extraction.
type SymbolOptions struct {
	// Demangle rewrites C++ and Rust linker names into their source form.
	Demangle bool

	// Concurrency bounds the number of DWARF compilation units scanned in
	// parallel. Zero or negative means GOMAXPROCS.
	Concurrency int
}

// Symbols extracts the symbol table, keeping only symbols that describe
// sized program entities: NOTYPE, SECTION and FILE entries, unnamed entries
// and zero-size entries are skipped. Source locations are resolved from the
// DWARF line tables; a file without DWARF info yields symbols with empty
// File fields rather than an error.
func (f *File) Symbols(ctx context.Context, opts SymbolOptions) ([]*Symbol, error) {
	defer metrics.Timer(metrics.SymbolResolve)()

	raw, err := f.elf.Symbols()
	if err != nil {
		if errors.Is(err, stdelf.ErrNoSymbols) {
			return nil, fmt.Errorf("%s: %w", f.Path, ErrNoSymbols)
		}
		return nil, fmt.Errorf("read symbol table: %w", err)
	}

	symbols := make([]*Symbol, 0, len(raw))
	skipped := 0
	for _, s := range raw {
		if !keepSymbol(s) {
			skipped++
			continue
		}
		sym := &Symbol{
			Name:      s.Name,
			Demangled: s.Name,
			Value:     s.Value,
			Size:      s.Size,
			Type:      stdelf.ST_TYPE(s.Info),
			Bind:      stdelf.ST_BIND(s.Info),
			Section:   s.Section,
		}
		if opts.Demangle {
			sym.Demangled = demangle.Filter(s.Name)
		}
		symbols = append(symbols, sym)
	}
	debug.Log("extracted %d symbols (%d skipped)", len(symbols), skipped)

	if err := f.resolveFileLines(ctx, symbols, opts.Concurrency); err != nil {
		return nil, err
	}
	return symbols, nil
}

// keepSymbol applies the extraction skip rules.
func keepSymbol(s stdelf.Symbol) bool {
	if s.Name == "" || s.Size == 0 {
		return false
	}
	switch stdelf.ST_TYPE(s.Info) {
	case stdelf.STT_NOTYPE, stdelf.STT_SECTION, stdelf.STT_FILE:
		return false
	}
	return true
}

// FilterSymbols keeps the symbols defined in one of the given sections.
func FilterSymbols(symbols []*Symbol, sections []*Section) []*Symbol {
	nums := make(map[int]bool, len(sections))
	for _, s := range sections {
		nums[s.Num] = true
	}
	var out []*Symbol
	for _, s := range symbols {
		if nums[int(s.Section)] {
			out = append(out, s)
		}
	}
	return out
}

// lineEntry maps a program address to the source position that produced it.
// Entries with an empty file act as sequence-end sentinels: an address that
// resolves to one falls between line-table sequences and stays unattributed.
type lineEntry struct {
	addr uint64
	file string
	line int
}

// resolveFileLines fills in File and Line from the DWARF line tables. The
// per-compilation-unit scans are independent and run on an errgroup. Missing
// DWARF data is not an error; the symbols simply stay unattributed.
func (f *File) resolveFileLines(ctx context.Context, symbols []*Symbol, concurrency int) error {
	d, err := f.elf.DWARF()
	if err != nil {
		debug.Log("no DWARF data in %s: %v", f.Path, err)
		return nil
	}

	var units []*dwarf.Entry
	r := d.Reader()
	for {
		e, err := r.Next()
		if err != nil {
			return fmt.Errorf("walk DWARF info: %w", err)
		}
		if e == nil {
			break
		}
		if e.Tag == dwarf.TagCompileUnit {
			units = append(units, e)
		}
		r.SkipChildren()
	}
	if len(units) == 0 {
		return nil
	}

	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	tables := make([][]lineEntry, len(units))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, cu := range units {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entries, err := readLineTable(d, cu)
			if err != nil {
				return err
			}
			tables[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("read DWARF line tables: %w", err)
	}

	idx := newLineIndex(tables)
	resolved := 0
	for _, s := range symbols {
		if file, line, ok := idx.lookup(s.Value); ok {
			s.File, s.Line = file, line
			resolved++
		}
	}
	debug.Log("resolved source files for %d/%d symbols over %d compilation units",
		resolved, len(symbols), len(units))
	return nil
}

// readLineTable flattens one compilation unit's line program.
func readLineTable(d *dwarf.Data, cu *dwarf.Entry) ([]lineEntry, error) {
	lr, err := d.LineReader(cu)
	if err != nil {
		return nil, fmt.Errorf("compilation unit at %#x: %w", cu.Offset, err)
	}
	if lr == nil {
		// Unit without a line table (e.g. assembly without -g).
		return nil, nil
	}
	var out []lineEntry
	var le dwarf.LineEntry
	for {
		if err := lr.Next(&le); err != nil {
			if err == io.EOF {
				return out, nil
			}
			return nil, fmt.Errorf("compilation unit at %#x: %w", cu.Offset, err)
		}
		if le.EndSequence || le.File == nil {
			out = append(out, lineEntry{addr: le.Address})
			continue
		}
		out = append(out, lineEntry{
			addr: le.Address,
			file: filepath.Clean(le.File.Name),
			line: le.Line,
		})
	}
}

// lineIndex is a sorted merge of all line tables, queried by binary search.
type lineIndex struct {
	entries []lineEntry
}

func newLineIndex(tables [][]lineEntry) *lineIndex {
	total := 0
	for _, t := range tables {
		total += len(t)
	}
	idx := &lineIndex{entries: make([]lineEntry, 0, total)}
	for _, t := range tables {
		idx.entries = append(idx.entries, t...)
	}
	// Sentinels sort before real entries at the same address so that a
	// sequence start overrides the previous sequence's end marker.
	sort.Slice(idx.entries, func(i, j int) bool {
		a, b := idx.entries[i], idx.entries[j]
		if a.addr != b.addr {
			return a.addr < b.addr
		}
		return a.file == "" && b.file != ""
	})
	return idx
}

// lookup returns the source position covering addr: the last entry at or
// below it. Sentinel hits and addresses before the first entry report !ok.
func (x *lineIndex) lookup(addr uint64) (file string, line int, ok bool) {
	i := sort.Search(len(x.entries), func(i int) bool {
		return x.entries[i].addr > addr
	})
	if i == 0 {
		return "", 0, false
	}
	e := x.entries[i-1]
	if e.file == "" {
		return "", 0, false
	}
	return e.file, e.line, true
}
