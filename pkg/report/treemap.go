package report

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/footprint/pkg/debug"
	"github.com/vanderheijden86/footprint/pkg/metrics"
	"github.com/vanderheijden86/footprint/pkg/sizetree"
)

// TreemapOptions controls treemap export behaviour.
type TreemapOptions struct {
	Path     string // Output path; format inferred from extension when Format empty
	Format   string // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title    string // Optional title rendered in the header strip
	Width    int    // Canvas width in pixels, default 1024
	Height   int    // Canvas height in pixels, default 640
	MaxDepth int    // Nesting levels to draw, default 4
	MinSize  uint64 // Symbols below this size are folded into their parent tile
}

// SaveTreemap renders the tree as a squarified treemap. Tile areas are
// proportional to cumulative size, so the tree must have been accumulated
// before export.
func SaveTreemap(tree *sizetree.Tree, opts TreemapOptions) error {
	defer metrics.Timer(metrics.ReportRender)()

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg" // safe default
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.Width <= 0 {
		opts.Width = 1024
	}
	if opts.Height <= 0 {
		opts.Height = 640
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 4
	}
	if strings.TrimSpace(opts.Title) == "" {
		opts.Title = "Memory Treemap"
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout, err := buildTreemap(tree, opts)
	if err != nil {
		return err
	}
	debug.Log("treemap: %d tiles into %s", len(layout.Tiles), opts.Path)

	switch format {
	case "svg":
		return renderTreemapSVG(opts, layout)
	case "png":
		return renderTreemapPNG(opts, layout)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

// --- layout computation ----------------------------------------------------

const (
	treemapHeader = 48.0 // title strip above the plot
	frameStrip    = 16.0 // label strip of a tile that holds children
	frameInset    = 2.0
	minTileW      = 40.0 // below this a branch is drawn flat
	minTileH      = 30.0
)

type rectF struct {
	x, y, w, h float64
}

func (r rectF) area() float64 { return r.w * r.h }

type treemapTile struct {
	Label string
	Rect  rectF
	Fill  color.RGBA
	Frame bool // children are drawn inside, label goes into the top strip
}

type treemapLayout struct {
	Tiles    []treemapTile
	Subtitle string
}

type sizedNode struct {
	node *sizetree.Node
	size uint64
}

func buildTreemap(tree *sizetree.Tree, opts TreemapOptions) (treemapLayout, error) {
	top := childEntries(tree.Root(), opts.MinSize)
	if len(top) == 0 {
		return treemapLayout{}, fmt.Errorf("tree has no sized entries; accumulate sizes before exporting a treemap")
	}

	var topSum uint64
	for _, e := range top {
		topSum += e.size
	}
	subtitle := fmt.Sprintf("total: %s  symbols: %d",
		strings.TrimRight(sizetree.HumanSize(float64(topSum)), " "), tree.SymbolCount())

	plot := rectF{
		x: frameInset,
		y: treemapHeader,
		w: float64(opts.Width) - 2*frameInset,
		h: float64(opts.Height) - treemapHeader - frameInset,
	}

	b := &treemapBuilder{maxDepth: opts.MaxDepth, minSize: opts.MinSize}
	b.place(top, plot, 0)
	return treemapLayout{Tiles: b.tiles, Subtitle: subtitle}, nil
}

type treemapBuilder struct {
	maxDepth int
	minSize  uint64
	tiles    []treemapTile
}

// place squarifies the entries into r, emitting a flat tile per leaf and a
// framed tile plus a recursion for branches. Parents are appended before
// their children so painting in order layers correctly.
func (b *treemapBuilder) place(entries []sizedNode, r rectF, depth int) {
	var sum float64
	for _, e := range entries {
		sum += float64(e.size)
	}
	if sum <= 0 || r.w <= 0 || r.h <= 0 {
		return
	}

	scale := r.area() / sum
	areas := make([]float64, len(entries))
	for i, e := range entries {
		areas[i] = float64(e.size) * scale
	}
	rects := squarify(areas, r)

	for i, e := range entries {
		tr := rects[i]
		children := childEntries(e.node, b.minSize)
		flat := e.node.IsSymbol() || len(children) == 0 ||
			depth+1 >= b.maxDepth || tr.w < minTileW || tr.h < minTileH
		if flat {
			b.tiles = append(b.tiles, treemapTile{
				Label: tileLabel(e.node.Label, tr.w, tr.h),
				Rect:  tr,
				Fill:  tileColor(e.node),
			})
			continue
		}
		b.tiles = append(b.tiles, treemapTile{
			Label: tileLabel(e.node.Label, tr.w, frameStrip),
			Rect:  tr,
			Fill:  lighten(tileColor(e.node), 0.45),
			Frame: true,
		})
		inner := rectF{
			x: tr.x + frameInset,
			y: tr.y + frameStrip,
			w: tr.w - 2*frameInset,
			h: tr.h - frameStrip - frameInset,
		}
		b.place(children, inner, depth+1)
	}
}

// childEntries returns the drawable children of n, largest first. Symbols
// size by their own byte count and fall below the min-size cut; paths size by
// cumulative total and are skipped when no total was accumulated.
func childEntries(n *sizetree.Node, minSize uint64) []sizedNode {
	entries := make([]sizedNode, 0, len(n.Children))
	for _, c := range n.Children {
		var size uint64
		switch {
		case c.IsSymbol():
			size = c.Symbol.Size
			if size < minSize {
				continue
			}
		case c.HasCumulative:
			size = c.Cumulative
		default:
			continue
		}
		if size == 0 {
			continue
		}
		entries = append(entries, sizedNode{node: c, size: size})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].size != entries[j].size {
			return entries[i].size > entries[j].size
		}
		return entries[i].node.Label < entries[j].node.Label
	})
	return entries
}

// squarify lays the areas into r, growing each strip while it keeps the
// worst aspect ratio from degrading. Areas must sum to r's area.
func squarify(areas []float64, r rectF) []rectF {
	out := make([]rectF, 0, len(areas))
	i := 0
	for i < len(areas) {
		if r.w <= 0 || r.h <= 0 {
			// Rounding consumed the rect; park the leftovers as degenerate
			// rects so callers can still index one rect per area.
			for ; i < len(areas); i++ {
				out = append(out, rectF{x: r.x, y: r.y})
			}
			break
		}
		side := math.Min(r.w, r.h)
		end := i + 1
		worst := worstRatio(areas[i:end], side)
		for end < len(areas) {
			next := worstRatio(areas[i:end+1], side)
			if next > worst {
				break
			}
			worst = next
			end++
		}
		strip, rest := layoutStrip(areas[i:end], r)
		out = append(out, strip...)
		r = rest
		i = end
	}
	return out
}

// worstRatio is the worst tile aspect ratio a strip of the given areas would
// have along a side of the given length.
func worstRatio(areas []float64, side float64) float64 {
	var sum, min, max float64
	min = math.Inf(1)
	for _, a := range areas {
		sum += a
		if a < min {
			min = a
		}
		if a > max {
			max = a
		}
	}
	if sum <= 0 || side <= 0 {
		return math.Inf(1)
	}
	s2 := sum * sum
	w2 := side * side
	return math.Max(w2*max/s2, s2/(w2*min))
}

// layoutStrip slices one strip off r: a vertical band on the left when the
// rect is wider than tall, a horizontal band on top otherwise. It returns
// the tile rects and what is left of r.
func layoutStrip(areas []float64, r rectF) ([]rectF, rectF) {
	var sum float64
	for _, a := range areas {
		sum += a
	}
	rects := make([]rectF, len(areas))
	if r.w >= r.h {
		w := sum / r.h
		y := r.y
		for i, a := range areas {
			h := a / w
			rects[i] = rectF{x: r.x, y: y, w: w, h: h}
			y += h
		}
		return rects, rectF{x: r.x + w, y: r.y, w: r.w - w, h: r.h}
	}
	h := sum / r.w
	x := r.x
	for i, a := range areas {
		w := a / h
		rects[i] = rectF{x: x, y: r.y, w: w, h: h}
		x += w
	}
	return rects, rectF{x: r.x, y: r.y + h, w: r.w, h: r.h - h}
}

// tileLabel fits the label to the tile with the fixed 7px font advance,
// returning "" when even a truncated form will not fit.
func tileLabel(label string, w, h float64) string {
	if h < 14 {
		return ""
	}
	maxChars := int((w - 8) / 7)
	if maxChars < 4 {
		return ""
	}
	return truncate(label, maxChars)
}

// --- rendering -------------------------------------------------------------

var (
	treemapDir    = color.RGBA{0x99, 0xbb, 0xe4, 0xff}
	treemapFile   = color.RGBA{0x8b, 0xe9, 0xfd, 0xff}
	treemapSymbol = color.RGBA{0xf1, 0xfa, 0x8c, 0xff}
	treemapStroke = color.RGBA{0x22, 0x22, 0x22, 0xff}
	treemapText   = color.RGBA{0x11, 0x11, 0x11, 0xff}
	treemapSubtle = color.RGBA{0x66, 0x66, 0x66, 0xff}
	treemapBack   = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
)

func tileColor(n *sizetree.Node) color.RGBA {
	switch {
	case n.IsSymbol():
		return treemapSymbol
	case n.IsDir():
		return treemapDir
	default:
		return treemapFile
	}
}

// lighten blends c toward white by factor f in [0,1].
func lighten(c color.RGBA, f float64) color.RGBA {
	blend := func(v uint8) uint8 {
		return uint8(float64(v) + (255-float64(v))*f)
	}
	return color.RGBA{blend(c.R), blend(c.G), blend(c.B), c.A}
}

func renderTreemapPNG(opts TreemapOptions, layout treemapLayout) error {
	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetColor(treemapBack)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(treemapText)
	dc.DrawStringAnchored(opts.Title, 16, 18, 0, 0.5)
	dc.SetColor(treemapSubtle)
	dc.DrawStringAnchored(layout.Subtitle, 16, 36, 0, 0.5)

	for _, t := range layout.Tiles {
		dc.SetColor(t.Fill)
		dc.DrawRectangle(t.Rect.x, t.Rect.y, t.Rect.w, t.Rect.h)
		dc.Fill()
		dc.SetColor(treemapStroke)
		dc.SetLineWidth(1)
		dc.DrawRectangle(t.Rect.x, t.Rect.y, t.Rect.w, t.Rect.h)
		dc.Stroke()
		if t.Label != "" {
			dc.SetColor(treemapText)
			dc.DrawStringAnchored(t.Label, t.Rect.x+4, t.Rect.y+9, 0, 0.5)
		}
	}

	return dc.SavePNG(opts.Path)
}

func renderTreemapSVG(opts TreemapOptions, layout treemapLayout) error {
	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderTreemapSVGToWriter(file, opts, layout)
}

func renderTreemapSVGToWriter(w io.Writer, opts TreemapOptions, layout treemapLayout) error {
	canvas := svg.New(w)
	canvas.Start(opts.Width, opts.Height)
	canvas.Rect(0, 0, opts.Width, opts.Height, fmt.Sprintf("fill:%s", css(treemapBack)))
	canvas.Text(16, 22, opts.Title,
		fmt.Sprintf("fill:%s;font-size:15px;font-family:monospace;font-weight:bold", css(treemapText)))
	canvas.Text(16, 40, layout.Subtitle,
		fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(treemapSubtle)))

	for _, t := range layout.Tiles {
		canvas.Rect(int(t.Rect.x), int(t.Rect.y), int(t.Rect.w), int(t.Rect.h),
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(t.Fill), css(treemapStroke)))
		if t.Label != "" {
			canvas.Text(int(t.Rect.x)+4, int(t.Rect.y)+12, t.Label,
				fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(treemapText)))
		}
	}

	canvas.End()
	return nil
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
