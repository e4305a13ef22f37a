package ui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/footprint/pkg/metrics"
	"github.com/vanderheijden86/footprint/pkg/sizetree"
)

// Column widths for the size and percent columns; the label column flexes.
const (
	sizeColWidth = 12
	pctColWidth  = 7
)

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	if m.showHelp {
		return m.viewHelp()
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteByte('\n')

	vis := m.snap.visible()

	// Symbol rows alternate colors by their ordinal in the whole visible
	// list, not the window, so scrolling does not flip the stripes.
	symbolOrdinal := 0
	for i := 0; i < m.offset && i < len(vis); i++ {
		if vis[i].Kind == sizetree.RowSymbol {
			symbolOrdinal++
		}
	}

	body := m.bodyHeight()
	for line := 0; line < body; line++ {
		i := m.offset + line
		if i < len(vis) {
			r := vis[i]
			alt := false
			if r.Kind == sizetree.RowSymbol {
				alt = m.opts.Alternating && symbolOrdinal%2 == 1
				symbolOrdinal++
			}
			b.WriteString(m.renderRow(r, i == m.cursor, alt))
		}
		b.WriteByte('\n')
	}

	b.WriteString(m.viewStatus(vis))
	return b.String()
}

func (m Model) viewHeader() string {
	title := fmt.Sprintf("footprint · %s · %s · %s",
		filepath.Base(m.path), m.kindLabel(), m.snap.machine)
	return m.theme.Header.Render(truncateCells(title, m.width-2))
}

func (m Model) kindLabel() string {
	if len(m.opts.Sections) > 0 {
		nums := make([]string, len(m.opts.Sections))
		for i, n := range m.opts.Sections {
			nums[i] = strconv.Itoa(n)
		}
		return "SECTIONS: " + strings.Join(nums, ",")
	}
	return m.opts.Kind.Label()
}

func (m Model) renderRow(r *treeRow, selected, alt bool) string {
	labelWidth := m.width - sizeColWidth - pctColWidth - 4
	if labelWidth < 10 {
		labelWidth = 10
	}

	var indicator string
	switch {
	case r.cnode != nil && r.cnode.IsLeaf():
		indicator = "· "
	case r.collapsed:
		indicator = "▸ "
	default:
		indicator = "▾ "
	}

	label := strings.Repeat("  ", r.Level) + indicator + r.Label
	label = padCells(truncateCells(label, labelWidth), labelWidth)

	size := "-"
	pct := "-"
	if r.HasSize {
		size = sizetree.SizeString(r.Size, m.opts.HumanSizes)
		if m.snap.hasTotal && m.snap.total > 0 {
			pct = fmt.Sprintf("%.2f", 100*float64(r.Size)/float64(m.snap.total))
		}
	}

	line := fmt.Sprintf("%s  %*s  %*s", label, sizeColWidth, size, pctColWidth, pct)

	style := m.theme.RowStyle(r.Kind, alt)
	if selected {
		style = style.Background(m.theme.Highlight).Bold(true)
	}
	return style.Render(line)
}

func (m Model) viewStatus(vis []*treeRow) string {
	var left string
	switch {
	case m.statusMsg != "" && m.statusIsError:
		return m.theme.StatusError.Render(truncateCells(m.statusMsg, m.width))
	case m.statusMsg != "":
		left = m.statusMsg
	default:
		segments := []string{}
		if m.snap.hasTotal {
			segments = append(segments,
				"total "+strings.TrimRight(sizetree.SizeString(m.snap.total, m.opts.HumanSizes), " "))
		}
		segments = append(segments,
			fmt.Sprintf("depth %d/%d", m.snap.widget.Depth(), m.snap.widget.MaxLevel()),
			fmt.Sprintf("rows %d/%d", len(vis), m.snap.widget.Len()),
		)
		if m.opts.SortByName {
			segments = append(segments, "sort name")
		} else {
			segments = append(segments, "sort size")
		}
		if m.watcher != nil {
			if m.watcher.IsPolling() {
				segments = append(segments, "polling")
			} else {
				segments = append(segments, "watching")
			}
		}
		left = strings.Join(segments, " · ")
	}

	right := "? help · q quit"
	gap := m.width - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	if gap < 1 {
		return m.theme.StatusBar.Render(truncateCells(left, m.width))
	}
	return m.theme.StatusBar.Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) viewHelp() string {
	var b strings.Builder
	b.WriteString(m.theme.Header.Render("footprint · help"))
	b.WriteByte('\n')
	b.WriteString(m.helpVP.View())
	b.WriteByte('\n')
	b.WriteString(m.theme.StatusBar.Render("j/k scroll · any other key to close"))
	return b.String()
}

// truncateCells truncates a string to max visual width (cells), appending an
// ellipsis if needed. Uses go-runewidth to handle wide characters correctly.
func truncateCells(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}
	return runewidth.Truncate(s, maxWidth-1, "") + "…"
}

// padCells pads s with spaces on the right to the given visual width.
func padCells(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
