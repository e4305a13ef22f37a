package collapse

import (
	"regexp"
	"strconv"
)

// Element is the minimal surface the widget needs from a host row. The TUI
// backs it with an in-memory row struct, the HTML report with a DOM node;
// the widget itself never sees anything more concrete than this.
type Element interface {
	// LevelMarker returns the row's raw marker metadata, typically a class
	// string such as "collapsible level-2".
	LevelMarker() string

	// SetHidden and Hidden drive whether the row is rendered at all. The
	// widget is the sole writer; hosts read it when drawing.
	SetHidden(bool)
	Hidden() bool

	// SetCollapsedMarker and CollapsedMarker drive the visual "subtree is
	// folded" flag on the row itself. Meaningful only on rows with children;
	// the widget never sets it on leaves.
	SetCollapsedMarker(bool)
	CollapsedMarker() bool
}

// levelToken matches a whitespace-delimited level-<digits> token inside a
// marker string.
var levelToken = regexp.MustCompile(`(^|\s)level-(\d+)(\s|$)`)

// ParseLevel extracts the nesting depth from a marker string. ok is false
// when the marker carries no level token; such elements are not tree rows
// and are skipped by Build without moving its depth cursor. When several
// tokens are present the first one wins.
func ParseLevel(marker string) (level int, ok bool) {
	m := levelToken.FindStringSubmatch(marker)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		// Digits overflowing int are not a usable depth.
		return 0, false
	}
	return n, true
}
