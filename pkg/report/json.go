package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/footprint/pkg/metrics"
	"github.com/vanderheijden86/footprint/pkg/sizetree"
)

// JSONOptions configures the nested JSON dump.
type JSONOptions struct {
	MinSize   uint64
	FilesOnly bool
}

// WriteJSON dumps the tree as a nested dict keyed by node label. Every entry
// carries name and cumulative_size (null when sizes were never accumulated);
// path entries additionally carry a children dict, symbols do not. Sibling
// order in the output is the tree's sibling order, so a sorted tree stays
// sorted in the JSON.
func WriteJSON(w io.Writer, tree *sizetree.Tree, opts JSONOptions) error {
	defer metrics.Timer(metrics.ReportRender)()

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(buildNodeDict(tree, opts)); err != nil {
		return fmt.Errorf("encode size tree: %w", err)
	}
	return nil
}

func buildNodeDict(tree *sizetree.Tree, opts JSONOptions) *nodeDict {
	root := newNodeDict()
	var descend func(n *sizetree.Node, into *nodeDict)
	descend = func(n *sizetree.Node, into *nodeDict) {
		for _, c := range n.Children {
			if c.IsSymbol() {
				if opts.FilesOnly || c.Symbol.Size < opts.MinSize {
					continue
				}
				into.set(c.Label, &nodeEntry{name: c.Label, size: cumulative(c)})
				continue
			}
			entry := &nodeEntry{name: c.Label, size: cumulative(c), children: newNodeDict()}
			into.set(c.Label, entry)
			descend(c, entry.children)
		}
	}
	descend(tree.Root(), root)
	return root
}

func cumulative(n *sizetree.Node) *uint64 {
	if !n.HasCumulative {
		return nil
	}
	v := n.Cumulative
	return &v
}

// nodeEntry is one value of the dict. Symbol entries have a nil children
// dict and omit the key entirely.
type nodeEntry struct {
	name     string
	size     *uint64
	children *nodeDict
}

// nodeDict is a JSON object that keeps insertion order, which the stock
// map marshalling would destroy by sorting keys. A duplicate label keeps
// its first position but takes the later value.
type nodeDict struct {
	keys  []string
	items map[string]*nodeEntry
}

func newNodeDict() *nodeDict {
	return &nodeDict{items: make(map[string]*nodeEntry)}
}

func (d *nodeDict) set(key string, e *nodeEntry) {
	if _, ok := d.items[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.items[key] = e
}

func (d *nodeDict) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.MarshalWithOption(k, json.DisableHTMLEscape())
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := d.items[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (e *nodeEntry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"name":`)
	nb, err := json.MarshalWithOption(e.name, json.DisableHTMLEscape())
	if err != nil {
		return nil, err
	}
	buf.Write(nb)
	buf.WriteString(`,"cumulative_size":`)
	if e.size == nil {
		buf.WriteString("null")
	} else {
		buf.WriteString(strconv.FormatUint(*e.size, 10))
	}
	if e.children != nil {
		buf.WriteString(`,"children":`)
		cb, err := e.children.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(cb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
