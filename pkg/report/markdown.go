package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vanderheijden86/footprint/pkg/metrics"
	"github.com/vanderheijden86/footprint/pkg/sizetree"
)

// MarkdownOptions configures the Markdown table report.
type MarkdownOptions struct {
	Title string

	// MaxDepth limits how many nesting levels appear; 0 means all.
	MaxDepth int

	MinSize       uint64
	FilesOnly     bool
	HumanReadable bool
}

// WriteMarkdown renders the flattened tree as a pipe table. Nesting shows
// through non-breaking indentation since Markdown tables have no concept of
// hierarchy; directories are bold, symbols are code spans.
func WriteMarkdown(w io.Writer, tree *sizetree.Tree, opts MarkdownOptions) error {
	defer metrics.Timer(metrics.ReportRender)()

	var sb strings.Builder
	if opts.Title != "" {
		sb.WriteString(fmt.Sprintf("# %s\n\n", opts.Title))
		sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", time.Now().Format(time.RFC1123)))
	}

	rows := tree.Rows(sizetree.RowOptions{MinSize: opts.MinSize, FilesOnly: opts.FilesOnly})
	total, hasTotal := tree.Total()

	sb.WriteString("| Symbol | Size | % |\n")
	sb.WriteString("|--------|-----:|--:|\n")
	for _, r := range rows {
		if opts.MaxDepth > 0 && r.Level >= opts.MaxDepth {
			continue
		}
		label := strings.ReplaceAll(r.Label, "|", "\\|")
		switch r.Kind {
		case sizetree.RowDir:
			label = "**" + label + "**"
		case sizetree.RowSymbol:
			label = "`" + label + "`"
		}
		indent := strings.Repeat("&nbsp;&nbsp;", r.Level)
		sb.WriteString(fmt.Sprintf("| %s%s | %s | %s |\n",
			indent, label,
			strings.TrimRight(sizeField(r, opts.HumanReadable), " "),
			pctField(r, total, hasTotal)))
	}
	if hasTotal {
		sb.WriteString(fmt.Sprintf("| **Symbols total** | %s | |\n",
			strings.TrimRight(sizetree.SizeString(total, opts.HumanReadable), " ")))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
