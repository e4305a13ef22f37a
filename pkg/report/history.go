package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vanderheijden86/footprint/pkg/history"
	"github.com/vanderheijden86/footprint/pkg/metrics"
	"github.com/vanderheijden86/footprint/pkg/sizetree"
)

// HistoryOptions configures the snapshot listing.
type HistoryOptions struct {
	// Header is centered inside the top separator line, e.g. "ROM HISTORY".
	Header        string
	HumanReadable bool
	Colors        bool
}

// WriteHistory prints snapshots newest first, each with the size change
// against the snapshot before it. The oldest row has nothing to compare
// against and shows "-".
func WriteHistory(w io.Writer, snaps []history.Snapshot, opts HistoryOptions) error {
	defer metrics.Timer(metrics.ReportRender)()

	if len(snaps) == 0 {
		return fmt.Errorf("no snapshots recorded yet")
	}

	lines := make([][4]string, len(snaps))
	for i, s := range snaps {
		delta := "-"
		if i+1 < len(snaps) {
			delta = deltaField(int64(s.Total)-int64(snaps[i+1].Total), opts.HumanReadable)
		}
		lines[i] = [4]string{
			s.Taken.Format("2006-01-02 15:04"),
			sizetree.SizeString(s.Total, opts.HumanReadable),
			delta,
			strconv.Itoa(s.Symbols),
		}
	}

	labels := [4]string{"Taken", "Total", "Delta", "Symbols"}
	var widths [4]int
	for i, l := range labels {
		widths[i] = len(l)
	}
	for _, l := range lines {
		for i, f := range l {
			if len(f) > widths[i] {
				widths[i] = len(f)
			}
		}
	}

	head := make([]string, len(labels))
	for i, h := range labels {
		head[i] = padRight(h, widths[i])
	}
	header := strings.Join(head, colSep)
	separator := strings.Repeat("=", len(header))
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
	sb.WriteString(frame(header) + "\n")
	sb.WriteString(frame(separator) + "\n")
	for _, l := range lines {
		cols := []string{
			padRight(l[0], widths[0]),
			padLeft(l[1], widths[1]),
			padLeft(l[2], widths[2]),
			padLeft(l[3], widths[3]),
		}
		sb.WriteString(strings.Join(cols, colSep) + "\n")
	}
	sb.WriteString(frame(separator) + "\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// deltaField renders a signed size change; growth keeps an explicit "+".
func deltaField(delta int64, human bool) string {
	if human {
		s := sizetree.HumanSize(float64(delta))
		if delta >= 0 {
			s = "+" + s
		}
		return s
	}
	return fmt.Sprintf("%+d", delta)
}
