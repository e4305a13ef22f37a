package report

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/footprint/pkg/metrics"
	"github.com/vanderheijden86/footprint/pkg/sizetree"
)

// TextOptions configures the plain terminal table.
type TextOptions struct {
	// Header is centered inside the top separator line, e.g. "ROM".
	Header string

	// MaxWidth clamps the summed column widths. The symbol column absorbs
	// the overflow and too-long cells are cut to "...". Zero disables the
	// clamp.
	MaxWidth int

	// Indent is the number of spaces per nesting level; 0 means 2.
	Indent int

	MinSize       uint64
	FilesOnly     bool
	HumanReadable bool
	Colors        bool
	Alternating   bool

	// NoTotals drops the totals block; the percent column keeps working.
	NoTotals bool
}

type textLine struct {
	s     string
	color string
}

// WriteText renders the size tree as the classic three-column table:
// symbol, size, percent of total. The percent column and the totals block
// need CalculateTotal; paths without a cumulative size show "-".
func WriteText(w io.Writer, tree *sizetree.Tree, opts TextOptions) error {
	defer metrics.Timer(metrics.ReportRender)()

	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}
	rows := tree.Rows(sizetree.RowOptions{MinSize: opts.MinSize, FilesOnly: opts.FilesOnly})
	total, hasTotal := tree.Total()

	headers := [3]string{"Symbol", "Size", "%"}
	widths := [3]int{len(headers[0]), len(headers[1]), len(headers[2])}
	fields := make([][3]string, len(rows))
	for i, r := range rows {
		fields[i] = [3]string{
			strings.Repeat(" ", indent*r.Level) + r.Label,
			sizeField(r, opts.HumanReadable),
			pctField(r, total, hasTotal),
		}
		for j, f := range fields[i] {
			if fw := runewidth.StringWidth(f); fw > widths[j] {
				widths[j] = fw
			}
		}
	}

	// The symbol column absorbs the overflow when the table gets too wide,
	// but never shrinks below its own header.
	if opts.MaxWidth > 0 {
		if over := widths[0] + widths[1] + widths[2] - opts.MaxWidth; over > 0 {
			widths[0] -= over
			if widths[0] < len(headers[0]) {
				widths[0] = len(headers[0])
			}
		}
	}
	for i := range fields {
		for j, f := range fields[i] {
			fields[i][j] = trimCell(f, widths[j])
		}
	}

	header := padRight(headers[0], widths[0]) + colSep +
		padRight(headers[1], widths[1]) + colSep +
		padRight(headers[2], widths[2])
	separator := strings.Repeat("=", runewidth.StringWidth(header))
	title := separator
	if opts.Header != "" {
		title = centerTitle(separator, opts.Header)
	}

	out := []textLine{
		{title, ansiHeader},
		{header, ansiHeader},
		{separator, ansiHeader},
	}
	alt := false
	for i, r := range rows {
		line := padRight(fields[i][0], widths[0]) + colSep +
			padLeft(fields[i][1], widths[1]) + colSep +
			padLeft(fields[i][2], widths[2])
		var c string
		switch r.Kind {
		case sizetree.RowDir:
			c = ansiDir
		case sizetree.RowFile:
			c = ansiFile
		default:
			if alt && opts.Alternating {
				c = ansiSymbolAlt
				alt = false
			} else {
				c = ansiSymbol
				alt = true
			}
		}
		out = append(out, textLine{line, c})
	}
	if hasTotal && !opts.NoTotals {
		totals := padRight("Symbols total", widths[0]) + colSep +
			padLeft(sizetree.SizeString(total, opts.HumanReadable), widths[1]) + colSep +
			padLeft("", widths[2])
		sep := strings.Repeat("=", runewidth.StringWidth(totals))
		out = append(out,
			textLine{sep, ansiHeader},
			textLine{totals, ansiHeader},
			textLine{sep, ansiHeader},
		)
	}

	var sb strings.Builder
	for _, l := range out {
		if opts.Colors && l.color != "" {
			sb.WriteString(l.color)
			sb.WriteString(l.s)
			sb.WriteString(ansiReset)
		} else {
			sb.WriteString(l.s)
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// centerTitle embeds " Header " in the middle of the '=' separator line.
func centerTitle(separator, header string) string {
	h := " " + header + " "
	if len(h) >= len(separator) {
		return h
	}
	mid := len(separator) / 2
	lo := mid - (len(h)+1)/2
	hi := mid + len(h)/2
	if lo < 0 {
		lo = 0
	}
	if hi > len(separator) {
		hi = len(separator)
	}
	return separator[:lo] + h + separator[hi:]
}
