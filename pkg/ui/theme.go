package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/footprint/pkg/sizetree"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme bundles every style the viewer renders with. Row colors follow the
// classic readelf-ish scheme: directories blue, files cyan, symbols yellow
// with an optional green alternation.
type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor
	Dir       lipgloss.AdaptiveColor
	File      lipgloss.AdaptiveColor
	Symbol    lipgloss.AdaptiveColor
	SymbolAlt lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor

	// Pre-computed styles, created once instead of per-frame.
	Base          lipgloss.Style
	Header        lipgloss.Style
	StatusBar     lipgloss.Style
	StatusError   lipgloss.Style
	MutedText     lipgloss.Style
	DirText       lipgloss.Style
	FileText      lipgloss.Style
	SymbolText    lipgloss.Style
	SymbolAltText lipgloss.Style
	TotalText     lipgloss.Style
}

// DefaultTheme returns the standard adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}, // Purple
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}, // Dimmed text
		Error:     lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}, // Red
		Dir:       lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#6699FF"}, // Blue
		File:      lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}, // Cyan
		Symbol:    lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#F1FA8C"}, // Yellow
		SymbolAlt: lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}, // Green
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.StatusBar = r.NewStyle().Foreground(t.Muted)
	t.StatusError = r.NewStyle().Foreground(t.Error).Bold(true)
	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.DirText = r.NewStyle().Foreground(t.Dir)
	t.FileText = r.NewStyle().Foreground(t.File)
	t.SymbolText = r.NewStyle().Foreground(t.Symbol)
	t.SymbolAltText = r.NewStyle().Foreground(t.SymbolAlt)
	t.TotalText = r.NewStyle().Foreground(t.Primary).Bold(true)

	return t
}

// RowStyle returns the text style for a row of the given kind. alt selects
// the alternate symbol color; it is ignored for path rows.
func (t Theme) RowStyle(kind sizetree.RowKind, alt bool) lipgloss.Style {
	switch kind {
	case sizetree.RowDir:
		return t.DirText
	case sizetree.RowFile:
		return t.FileText
	default:
		if alt {
			return t.SymbolAltText
		}
		return t.SymbolText
	}
}

// ThemeForMode returns the default theme forced to a dark or light rendition
// instead of relying on terminal background detection.
func ThemeForMode(mode string) Theme {
	r := lipgloss.NewRenderer(os.Stdout)
	r.SetHasDarkBackground(mode != "light")
	return DefaultTheme(r)
}

// TestTheme returns a theme suitable for use in tests (stdout renderer).
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
