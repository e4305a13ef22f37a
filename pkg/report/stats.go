package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vanderheijden86/footprint/pkg/analysis"
	"github.com/vanderheijden86/footprint/pkg/metrics"
	"github.com/vanderheijden86/footprint/pkg/sizetree"
)

// StatsOptions configures the size-distribution summary.
type StatsOptions struct {
	// Header is centered inside the top separator line, e.g. "ROM STATS".
	Header        string
	HumanReadable bool
	Colors        bool
}

// WriteStats prints the size-distribution summary: one key/value block with
// count, total and quantiles, then the largest symbols when the stats carry
// a top list.
func WriteStats(w io.Writer, s analysis.Stats, opts StatsOptions) error {
	defer metrics.Timer(metrics.ReportRender)()

	if s.Count == 0 {
		return fmt.Errorf("no symbols to summarize")
	}

	rows := [][2]string{
		{"Symbols", strconv.Itoa(s.Count)},
		{"Total size", sizetree.SizeString(s.Total, opts.HumanReadable)},
		{"Mean", statValue(s.Mean, opts.HumanReadable, 1)},
		{"Median", statValue(s.Median, opts.HumanReadable, 0)},
		{"P90", statValue(s.P90, opts.HumanReadable, 0)},
		{"P99", statValue(s.P99, opts.HumanReadable, 0)},
		{"Largest", sizetree.SizeString(s.Max, opts.HumanReadable)},
	}
	var kw, vw int
	for _, r := range rows {
		if len(r[0]) > kw {
			kw = len(r[0])
		}
		if len(r[1]) > vw {
			vw = len(r[1])
		}
	}

	separator := strings.Repeat("=", kw+len(colSep)+vw)
	title := separator
	if opts.Header != "" {
		title = centerTitle(separator, opts.Header)
	}
	frame := func(s string) string {
		if opts.Colors {
			return ansiHeader + s + ansiReset
		}
		return s
	}

	var sb strings.Builder
	sb.WriteString(frame(title) + "\n")
	for _, r := range rows {
		sb.WriteString(padRight(r[0], kw) + colSep + padLeft(r[1], vw) + "\n")
	}
	sb.WriteString(frame(separator) + "\n")

	if len(s.Top) > 0 {
		var nw, sw int
		sizes := make([]string, len(s.Top))
		for i, t := range s.Top {
			sizes[i] = sizetree.SizeString(t.Size, opts.HumanReadable)
			if len(t.Name) > nw {
				nw = len(t.Name)
			}
			if len(sizes[i]) > sw {
				sw = len(sizes[i])
			}
		}
		sb.WriteString("\n" + frame(fmt.Sprintf("Top %d symbols", len(s.Top))) + "\n")
		for i, t := range s.Top {
			file := t.File
			if file == "" {
				file = "?"
			}
			sb.WriteString(padRight(t.Name, nw) + colSep + padLeft(sizes[i], sw) + colSep + file + "\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// statValue renders one distribution value. Quantiles are sample values, so
// they print without decimals; the mean keeps one.
func statValue(v float64, human bool, decimals int) string {
	if human {
		return sizetree.HumanSize(v)
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
