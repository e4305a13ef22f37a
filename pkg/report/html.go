package report

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"strconv"

	"github.com/vanderheijden86/footprint/pkg/collapse"
	"github.com/vanderheijden86/footprint/pkg/debug"
	"github.com/vanderheijden86/footprint/pkg/metrics"
	"github.com/vanderheijden86/footprint/pkg/sizetree"
)

// HTMLOptions configures the standalone report page.
type HTMLOptions struct {
	Title string

	// Depth is the collapse depth baked into the page before it is served;
	// negative leaves every row expanded. The browser-side script starts
	// from this depth, carried in the data-collapse-depth attribute.
	Depth int

	MinSize   uint64
	FilesOnly bool

	// CSSFile replaces the built-in stylesheet when set.
	CSSFile string
}

// htmlRow carries one table row through the collapse widget before
// rendering: the widget writes the hidden and collapsed state, the template
// reads it back out as attributes.
type htmlRow struct {
	Level int
	Label string
	Size  string

	marker    string
	hidden    bool
	collapsed bool
}

func (r *htmlRow) LevelMarker() string       { return r.marker }
func (r *htmlRow) SetHidden(h bool)          { r.hidden = h }
func (r *htmlRow) Hidden() bool              { return r.hidden }
func (r *htmlRow) SetCollapsedMarker(c bool) { r.collapsed = c }
func (r *htmlRow) CollapsedMarker() bool     { return r.collapsed }

// Classes returns the row's final class attribute value.
func (r *htmlRow) Classes() string {
	if r.collapsed {
		return r.marker + " collapsed"
	}
	return r.marker
}

// Pad returns the first cell's left padding in pixels.
func (r *htmlRow) Pad() int { return 10 * r.Level }

type pageData struct {
	Title   string
	CSS     template.CSS
	Script  template.JS
	Depth   int
	Rows    []*htmlRow
	Overall uint64
}

// WriteHTML emits a self-contained report page. The same widget that drives
// the terminal view computes the initial visibility here, so the page opens
// at the requested depth even with scripting disabled; the embedded script
// then re-implements the widget for clicks and the collapse buttons.
func WriteHTML(w io.Writer, tree *sizetree.Tree, opts HTMLOptions) error {
	defer metrics.Timer(metrics.ReportRender)()

	rows := tree.Rows(sizetree.RowOptions{MinSize: opts.MinSize, FilesOnly: opts.FilesOnly})
	hrows := make([]*htmlRow, len(rows))
	els := make([]collapse.Element, len(rows))
	for i, r := range rows {
		hr := &htmlRow{
			Level:  r.Level,
			Label:  r.Label,
			Size:   "-",
			marker: fmt.Sprintf("collapsible level-%d", r.Level),
		}
		if r.HasSize {
			hr.Size = strconv.FormatUint(r.Size, 10)
		}
		hrows[i] = hr
		els[i] = hr
	}
	widget, err := collapse.Build(els)
	if err != nil {
		return fmt.Errorf("build collapse tree: %w", err)
	}
	if opts.Depth >= 0 {
		widget.CollapseToDepth(opts.Depth)
	}
	debug.Log("html report: %d rows, baked depth %d", len(hrows), widget.Depth())

	css := template.CSS(defaultCSS)
	if opts.CSSFile != "" {
		data, err := os.ReadFile(opts.CSSFile)
		if err != nil {
			return fmt.Errorf("read custom css: %w", err)
		}
		css = template.CSS(data)
	}

	var overall uint64
	for _, r := range rows {
		if r.Level == 0 && r.HasSize {
			overall += r.Size
		}
	}

	return pageTemplate.Execute(w, pageData{
		Title:   opts.Title,
		CSS:     css,
		Script:  template.JS(collapseScript),
		Depth:   widget.Depth(),
		Rows:    hrows,
		Overall: overall,
	})
}

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
    <head>
        <title>{{.Title}}</title>
        <meta charset="UTF-8">
        <meta name="viewport" content="width=device-width, initial-scale=1">
        <style>{{.CSS}}</style>
        <script>{{.Script}}</script>
    </head>
    <body>
        <h3>{{.Title}}</h3>
        <div class="collapse-buttons">
            <span>Collapse</span>
            <button class="all">All</button>
            <button class="none">None</button>
            <button class="less">Less</button>
            <button class="more">More</button>
            <span>or click on rows</span>
        </div>
        <table data-collapse-depth="{{.Depth}}">
{{- range .Rows}}
            <tr class="{{.Classes}}"{{if .Hidden}} hidden{{end}}>
                <td style="padding-left:{{.Pad}}px;word-break:break-all;word-wrap:break-word">{{.Label}}</td>
                <td width="200px" align="right">{{.Size}}</td>
            </tr>
{{- end}}
            <tr>
                <td align="right"><b>Overall size in bytes</b></td>
                <td align="right">{{.Overall}}</td>
            </tr>
        </table>
    </body>
</html>
`))

const defaultCSS = `
tr:nth-child(even) {
    background-color: #efefef;
}
tr:nth-child(odd) {
    background-color: #e0e0e0;
}
table {
    border-spacing: 0px;
    table-layout: fixed;
    width: 100%;
}
h3 {
    font-family: "Verdana";
    font-size: 14pt;
}
td {
    font-family: "Verdana";
    font-size: 10pt;
}
tr:hover {
    background: #adf0c2 !important;
}
tr.collapsible {
    cursor: pointer;
}
tr[hidden] {
    display: none;
}
tr.collapsed td:first-child::before {
    content: "\25B8  ";
}
.collapse-buttons {
    font-family: "Verdana";
    font-size: 10pt;
    margin-bottom: 8px;
}
`

// collapseScript mirrors the Go widget in the browser: the same level-token
// parsing, the same single-band depth sweeps and the same
// forget-nested-state rule on collapse, with one click listener bound per
// row at load.
const collapseScript = `
document.addEventListener('DOMContentLoaded', function () {
    var rows = Array.prototype.slice.call(document.querySelectorAll('tr.collapsible'));
    var levels = rows.map(function (row) {
        var m = row.className.match(/(?:^|\s)level-(\d+)(?:\s|$)/);
        return m ? parseInt(m[1], 10) : 0;
    });
    var maxLevel = levels.reduce(function (a, b) { return a > b ? a : b; }, 0);
    var depth = maxLevel;
    var table = document.querySelector('table');
    if (table) {
        var start = parseInt(table.getAttribute('data-collapse-depth'), 10);
        if (!isNaN(start)) depth = start;
    }

    function subtreeEnd(i) {
        var end = i + 1;
        while (end < rows.length && levels[end] > levels[i]) end++;
        return end;
    }

    function setCollapsed(i, collapsed) {
        if (subtreeEnd(i) === i + 1) return; // leaves cannot fold
        rows[i].classList.toggle('collapsed', collapsed);
        for (var j = i + 1; j < subtreeEnd(i); j++) {
            rows[j].classList.remove('collapsed');
            rows[j].hidden = collapsed;
        }
    }

    function collapseToDepth(d) {
        if (d < 0) d = 0;
        if (d > maxLevel) d = maxLevel;
        depth = d;
        rows.forEach(function (row) {
            row.hidden = false;
            row.classList.remove('collapsed');
        });
        for (var i = 0; i < rows.length; i++) {
            if (levels[i] === d) setCollapsed(i, true);
        }
    }

    rows.forEach(function (row, i) {
        row.addEventListener('click', function () {
            setCollapsed(i, !row.classList.contains('collapsed'));
        });
    });

    function bind(cls, fn) {
        var bs = document.querySelectorAll('.collapse-buttons .' + cls);
        Array.prototype.forEach.call(bs, function (b) {
            b.addEventListener('click', fn);
        });
    }
    bind('all', function () { collapseToDepth(0); });
    bind('none', function () { collapseToDepth(maxLevel); });
    bind('less', function () { collapseToDepth(depth + 1); });
    bind('more', function () { collapseToDepth(depth - 1); });
});
`
