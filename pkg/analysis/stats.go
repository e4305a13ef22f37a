// Package analysis computes derived statistics over extracted symbols.
package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/footprint/pkg/elf"
)

// Stats summarizes the size distribution of a symbol set. Quantiles are
// empirical, so they are always actual sample values.
type Stats struct {
	Count  int         `json:"count"`
	Total  uint64      `json:"total"`
	Mean   float64     `json:"mean"`
	Median float64     `json:"median"`
	P90    float64     `json:"p90"`
	P99    float64     `json:"p99"`
	Max    uint64      `json:"max"`
	Top    []TopSymbol `json:"top,omitempty"`
}

// TopSymbol is one entry of the largest-symbols list.
type TopSymbol struct {
	Name string `json:"name"`
	File string `json:"file,omitempty"`
	Size uint64 `json:"size"`
}

// Compute builds size-distribution stats for the given symbols and keeps the
// topN largest ones. A non-positive topN drops the top list; an empty symbol
// set yields zero stats.
func Compute(symbols []*elf.Symbol, topN int) Stats {
	if len(symbols) == 0 {
		return Stats{}
	}

	s := Stats{Count: len(symbols)}
	sizes := make([]float64, len(symbols))
	for i, sym := range symbols {
		sizes[i] = float64(sym.Size)
		s.Total += sym.Size
		if sym.Size > s.Max {
			s.Max = sym.Size
		}
	}
	sort.Float64s(sizes) // Quantile needs ascending input

	s.Mean = stat.Mean(sizes, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, sizes, nil)
	s.P90 = stat.Quantile(0.9, stat.Empirical, sizes, nil)
	s.P99 = stat.Quantile(0.99, stat.Empirical, sizes, nil)
	s.Top = topSymbols(symbols, topN)
	return s
}

// topSymbols returns the topN largest symbols, ties broken by name so the
// list is deterministic.
func topSymbols(symbols []*elf.Symbol, topN int) []TopSymbol {
	if topN <= 0 {
		return nil
	}
	ranked := make([]*elf.Symbol, len(symbols))
	copy(ranked, symbols)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Size != ranked[j].Size {
			return ranked[i].Size > ranked[j].Size
		}
		return ranked[i].Demangled < ranked[j].Demangled
	})
	if topN > len(ranked) {
		topN = len(ranked)
	}
	top := make([]TopSymbol, topN)
	for i, sym := range ranked[:topN] {
		top[i] = TopSymbol{Name: sym.Demangled, File: sym.File, Size: sym.Size}
	}
	return top
}
