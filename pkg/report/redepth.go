package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/vanderheijden86/footprint/pkg/collapse"
	"github.com/vanderheijden86/footprint/pkg/debug"
)

// ErrNoCollapsibleRows is returned when a document holds no rows the
// collapse widget can drive.
var ErrNoCollapsibleRows = errors.New("no collapsible rows found")

// domRow adapts a parsed <tr> node to the collapse widget. State changes
// write straight back into the node's attributes, so rendering the document
// afterwards emits the new baked state.
type domRow struct {
	n *html.Node
}

func (r *domRow) LevelMarker() string { return getAttr(r.n, "class") }

func (r *domRow) Hidden() bool { return hasAttr(r.n, "hidden") }

func (r *domRow) SetHidden(h bool) {
	if h {
		setAttr(r.n, "hidden", "")
		return
	}
	removeAttr(r.n, "hidden")
}

func (r *domRow) CollapsedMarker() bool {
	return hasClassToken(getAttr(r.n, "class"), "collapsed")
}

func (r *domRow) SetCollapsedMarker(c bool) {
	cls := getAttr(r.n, "class")
	if c {
		if !hasClassToken(cls, "collapsed") {
			setAttr(r.n, "class", strings.TrimSpace(cls+" collapsed"))
		}
		return
	}
	setAttr(r.n, "class", removeClassToken(cls, "collapsed"))
}

// Redepth parses a previously written report, resets its baked collapse
// state to the given depth and renders the document back out. Rows without
// a level class, like the overall-size footer, pass through untouched.
func Redepth(w io.Writer, r io.Reader, depth int) error {
	doc, err := html.Parse(r)
	if err != nil {
		return fmt.Errorf("parse report: %w", err)
	}

	var table *html.Node
	var els []collapse.Element
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "table":
				if table == nil {
					table = n
				}
			case "tr":
				els = append(els, &domRow{n: n})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	widget, err := collapse.Build(els)
	if err != nil {
		return fmt.Errorf("build collapse tree: %w", err)
	}
	if widget.Len() == 0 {
		return ErrNoCollapsibleRows
	}
	widget.CollapseToDepth(depth)
	if table != nil {
		setAttr(table, "data-collapse-depth", strconv.Itoa(widget.Depth()))
	}
	debug.Log("redepth: %d rows rebaked to depth %d", widget.Len(), widget.Depth())

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

func hasClassToken(class, token string) bool {
	for _, t := range strings.Fields(class) {
		if t == token {
			return true
		}
	}
	return false
}

func removeClassToken(class, token string) string {
	fields := strings.Fields(class)
	kept := fields[:0]
	for _, t := range fields {
		if t != token {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}
