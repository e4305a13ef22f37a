// Package report renders a size tree for non-interactive consumption: the
// classic three-column terminal table, a self-contained HTML page that hosts
// the collapse widget in the browser, a nested JSON dict, a Markdown table,
// an SVG/PNG treemap and the section-header listing.
//
// All writers take the tree as-is. Sorting, path merging and size
// accumulation are the caller's pipeline decisions; a tree without
// cumulative sizes simply renders "-" where those numbers would go.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/vanderheijden86/footprint/pkg/sizetree"
)

// ANSI escapes for the terminal tables. Headers and totals are bold blue,
// path rows blue or light blue, symbols yellow with a green alternate.
const (
	ansiReset     = "\033[0m"
	ansiBold      = "\033[1m"
	ansiHeader    = "\033[1;34m"
	ansiDir       = "\033[34m"
	ansiFile      = "\033[94m"
	ansiSymbol    = "\033[93m"
	ansiSymbolAlt = "\033[92m"
)

// colSep separates table columns.
const colSep = "   "

// sizeField renders the size column for one row. Path rows that never got a
// cumulative size show "-".
func sizeField(r sizetree.Row, human bool) string {
	if !r.HasSize {
		return "-"
	}
	return sizetree.SizeString(r.Size, human)
}

// pctField renders the percent-of-total column; without a computed total
// every row shows "-".
func pctField(r sizetree.Row, total uint64, hasTotal bool) string {
	if !hasTotal || !r.HasSize || total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", float64(r.Size)/float64(total)*100)
}

func padRight(s string, width int) string {
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func padLeft(s string, width int) string {
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}

// trimCell cuts a cell down to the column width, marking the cut with "...".
func trimCell(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width-3, "") + "..."
}

// centerPad centers s inside a field of the given width, filling both sides
// with the fill byte. Strings already at or past the width pass through.
func centerPad(s string, width int, fill byte) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	right := width - len(s) - left
	return strings.Repeat(string(fill), left) + s + strings.Repeat(string(fill), right)
}

// TerminalWidth returns the column count of w when it is a terminal and the
// fallback otherwise, so tables can fill the screen without overflowing a
// pipe or a file.
func TerminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 0 {
		return fallback
	}
	return cols
}
