package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/vanderheijden86/footprint/pkg/elf"
	"github.com/vanderheijden86/footprint/pkg/testutil"
)

func renderPage(t *testing.T, opts HTMLOptions) string {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteHTML(&buf, testutil.CanonicalTree(), opts); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	return buf.String()
}

func TestWriteHTMLExpanded(t *testing.T) {
	out := renderPage(t, HTMLOptions{Title: "ROM", Depth: -1})

	testutil.AssertContains(t, out, "<!DOCTYPE html>")
	testutil.AssertContains(t, out, "<title>ROM</title>")
	testutil.AssertContains(t, out, `class="collapsible level-0"`)
	testutil.AssertContains(t, out, `class="collapsible level-3"`)
	testutil.AssertContains(t, out, `<button class="all">All</button>`)
	testutil.AssertContains(t, out, "or click on rows")
	testutil.AssertContains(t, out, "Overall size in bytes")
	testutil.AssertContains(t, out, ">8104</td>")
	testutil.AssertContains(t, out, "tr:hover")

	// Fully expanded: the deepest level is 3 and nothing is hidden.
	testutil.AssertContains(t, out, `data-collapse-depth="3"`)
	testutil.AssertNotContains(t, out, " hidden>")
	testutil.AssertNotContains(t, out, " collapsed\"")
}

func TestWriteHTMLBakedDepth(t *testing.T) {
	tests := []struct {
		depth         int
		wantHidden    int
		wantCollapsed int
	}{
		{0, 14, 3}, // lib, src and ? fold; 14 descendants disappear
		{1, 10, 3}, // crypto, drivers, core fold; orphan_sym is a leaf
		{3, 0, 0},  // the deepest rows are all leaves, nothing folds
	}
	for _, tt := range tests {
		out := renderPage(t, HTMLOptions{Title: "ROM", Depth: tt.depth})

		if got := strings.Count(out, " hidden>"); got != tt.wantHidden {
			t.Errorf("depth %d: expected %d hidden rows, got %d", tt.depth, tt.wantHidden, got)
		}
		if got := strings.Count(out, ` collapsed"`); got != tt.wantCollapsed {
			t.Errorf("depth %d: expected %d collapsed rows, got %d", tt.depth, tt.wantCollapsed, got)
		}
	}
}

func TestWriteHTMLEscapesLabels(t *testing.T) {
	tree := testutil.BuildTree([]*elf.Symbol{
		testutil.Sym("std::vector<int>::at(unsigned long)", 96, "src/vec.cc"),
	})

	var buf bytes.Buffer
	if err := WriteHTML(&buf, tree, HTMLOptions{Title: "RAM", Depth: -1}); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	out := buf.String()

	testutil.AssertContains(t, out, "std::vector&lt;int&gt;::at(unsigned long)")
	testutil.AssertNotContains(t, out, "<int>")
}

func TestWriteHTMLCustomCSS(t *testing.T) {
	cssPath := filepath.Join(t.TempDir(), "custom.css")
	if err := os.WriteFile(cssPath, []byte("body { background: #123456; }"), 0o644); err != nil {
		t.Fatalf("write css: %v", err)
	}

	out := renderPage(t, HTMLOptions{Title: "ROM", Depth: -1, CSSFile: cssPath})

	testutil.AssertContains(t, out, "#123456")
	testutil.AssertNotContains(t, out, "tr:hover")
}

func TestWriteHTMLMissingCSS(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHTML(&buf, testutil.CanonicalTree(), HTMLOptions{
		Depth:   -1,
		CSSFile: filepath.Join(t.TempDir(), "nope.css"),
	})
	if err == nil {
		t.Fatal("expected an error for a missing css file")
	}
}

func TestWriteHTMLMinSize(t *testing.T) {
	out := renderPage(t, HTMLOptions{Title: "ROM", Depth: -1, MinSize: 500})

	testutil.AssertNotContains(t, out, "uart_isr")
	// Top-level cumulative sizes are untouched by row filtering.
	testutil.AssertContains(t, out, ">8104</td>")
}

// collectRows parses a rendered page and returns the table node and all
// level-classed rows.
func collectRows(t *testing.T, page string) (table *html.Node, rows []*html.Node) {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "table":
				if table == nil {
					table = n
				}
			case "tr":
				if hasClassToken(getAttr(n, "class"), "collapsible") {
					rows = append(rows, n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return table, rows
}

func TestRedepthRoundTrip(t *testing.T) {
	page := renderPage(t, HTMLOptions{Title: "ROM", Depth: -1})

	var out bytes.Buffer
	if err := Redepth(&out, strings.NewReader(page), 1); err != nil {
		t.Fatalf("Redepth: %v", err)
	}

	table, rows := collectRows(t, out.String())
	if table == nil {
		t.Fatal("no table in rebaked page")
	}
	if got := getAttr(table, "data-collapse-depth"); got != "1" {
		t.Errorf("expected data-collapse-depth 1, got %q", got)
	}
	if len(rows) != 17 {
		t.Fatalf("expected 17 collapsible rows, got %d", len(rows))
	}

	hidden, collapsed := 0, 0
	for _, r := range rows {
		if hasAttr(r, "hidden") {
			hidden++
		}
		if hasClassToken(getAttr(r, "class"), "collapsed") {
			collapsed++
		}
	}
	if hidden != 10 {
		t.Errorf("expected 10 hidden rows at depth 1, got %d", hidden)
	}
	if collapsed != 3 {
		t.Errorf("expected 3 collapsed rows at depth 1, got %d", collapsed)
	}
}

func TestRedepthClampsDepth(t *testing.T) {
	page := renderPage(t, HTMLOptions{Title: "ROM", Depth: 0})

	var out bytes.Buffer
	if err := Redepth(&out, strings.NewReader(page), 99); err != nil {
		t.Fatalf("Redepth: %v", err)
	}

	table, rows := collectRows(t, out.String())
	if got := getAttr(table, "data-collapse-depth"); got != "3" {
		t.Errorf("expected clamped depth 3, got %q", got)
	}
	for _, r := range rows {
		if hasAttr(r, "hidden") {
			t.Error("expected no hidden rows after expanding to max depth")
			break
		}
	}
}

func TestRedepthLeavesFooterAlone(t *testing.T) {
	page := renderPage(t, HTMLOptions{Title: "ROM", Depth: -1})

	var out bytes.Buffer
	if err := Redepth(&out, strings.NewReader(page), 0); err != nil {
		t.Fatalf("Redepth: %v", err)
	}

	// The overall-size footer has no level class; it must stay visible no
	// matter the depth.
	doc, err := html.Parse(strings.NewReader(out.String()))
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	var check func(*html.Node)
	check = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" &&
			!hasClassToken(getAttr(n, "class"), "collapsible") {
			if hasAttr(n, "hidden") {
				t.Error("footer row was hidden")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			check(c)
		}
	}
	check(doc)
}

func TestRedepthWithoutRows(t *testing.T) {
	var out bytes.Buffer
	err := Redepth(&out, strings.NewReader("<html><body><p>hello</p></body></html>"), 1)
	if !errors.Is(err, ErrNoCollapsibleRows) {
		t.Errorf("expected ErrNoCollapsibleRows, got %v", err)
	}
}
