package ui

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

func TestTruncateCells(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{name: "zero max", input: "hello", maxWidth: 0, want: ""},
		{name: "fits", input: "hello", maxWidth: 10, want: "hello"},
		{name: "exact", input: "hello", maxWidth: 5, want: "hello"},
		{name: "ellipsis", input: "hello", maxWidth: 4, want: "hel…"},
		{name: "single cell", input: "hello", maxWidth: 1, want: "…"},
		{name: "wide runes", input: "こんにちは", maxWidth: 4, want: "こ…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateCells(tt.input, tt.maxWidth)
			if got != tt.want {
				t.Fatalf("truncateCells(%q, %d) = %q; want %q", tt.input, tt.maxWidth, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("output is not valid UTF-8: %q", got)
			}
			if runewidth.StringWidth(got) > tt.maxWidth {
				t.Fatalf("output is %d cells wide; max %d", runewidth.StringWidth(got), tt.maxWidth)
			}
		})
	}
}

func TestPadCells(t *testing.T) {
	if got := padCells("ab", 5); got != "ab   " {
		t.Errorf("padCells(ab, 5) = %q", got)
	}
	if got := padCells("こ", 4); got != "こ  " {
		t.Errorf("padCells(こ, 4) = %q", got)
	}
	if got := padCells("abcdef", 3); got != "abcdef" {
		t.Errorf("expected overlong string unchanged, got %q", got)
	}
}

func TestViewShape(t *testing.T) {
	m := fixtureModel(t, expandedOpts())

	out := m.View()
	lines := strings.Split(out, "\n")
	if len(lines) != m.height {
		t.Fatalf("expected %d lines, got %d", m.height, len(lines))
	}
	if !strings.Contains(lines[0], "app.elf") {
		t.Errorf("expected file name in header, got %q", lines[0])
	}
	if !strings.Contains(lines[0], "ROM") {
		t.Errorf("expected memory kind in header, got %q", lines[0])
	}

	status := lines[len(lines)-1]
	if !strings.Contains(status, "depth 3/3") {
		t.Errorf("expected depth segment in status, got %q", status)
	}
	if !strings.Contains(status, "rows 11/11") {
		t.Errorf("expected row counts in status, got %q", status)
	}
	if !strings.Contains(status, "total 380") {
		t.Errorf("expected total in status, got %q", status)
	}
}

func TestViewReflectsCollapse(t *testing.T) {
	m := fixtureModel(t, expandedOpts())
	m, _ = pressKey(t, m, "a")

	out := m.View()
	if strings.Contains(out, "util_fn") {
		t.Error("expected hidden rows left out of the view")
	}
	if !strings.Contains(out, "▸") {
		t.Error("expected collapsed indicator in view")
	}
	if !strings.Contains(out, "rows 2/11") {
		t.Errorf("expected rows 2/11 in status, got %q", out)
	}
}

func TestRenderRowIndicators(t *testing.T) {
	m := fixtureModel(t, expandedOpts())

	if line := m.renderRow(m.snap.rows[0], false, false); !strings.Contains(line, "▾") {
		t.Errorf("expected expanded indicator on /src, got %q", line)
	}
	if line := m.renderRow(m.snap.rows[3], false, false); !strings.Contains(line, "·") {
		t.Errorf("expected leaf indicator on main, got %q", line)
	}

	m, _ = pressKey(t, m, "enter")
	if line := m.renderRow(m.snap.rows[0], false, false); !strings.Contains(line, "▸") {
		t.Errorf("expected collapsed indicator on /src, got %q", line)
	}
}

func TestRenderRowPercent(t *testing.T) {
	m := fixtureModel(t, expandedOpts())

	// buffer is 200 of 380 total.
	line := m.renderRow(m.snap.rows[8], false, false)
	if !strings.Contains(line, "52.63") {
		t.Errorf("expected percent column, got %q", line)
	}
}

func TestStatusBarShowsError(t *testing.T) {
	m := fixtureModel(t, expandedOpts())
	m.statusMsg = "Reload error: truncated file"
	m.statusIsError = true

	out := m.View()
	if !strings.Contains(out, "Reload error: truncated file") {
		t.Error("expected error message in status bar")
	}
}

func TestKindLabelSections(t *testing.T) {
	opts := expandedOpts()
	opts.Sections = []int{1, 2, 5}
	m := fixtureModel(t, opts)

	if got := m.kindLabel(); got != "SECTIONS: 1,2,5" {
		t.Errorf("expected section list label, got %q", got)
	}
}

func TestHelpViewShape(t *testing.T) {
	m := fixtureModel(t, expandedOpts())
	m, _ = pressKey(t, m, "?")

	out := m.View()
	lines := strings.Split(out, "\n")
	if len(lines) != m.height {
		t.Fatalf("expected %d lines, got %d", m.height, len(lines))
	}
	if !strings.Contains(out, "help") {
		t.Error("expected help header")
	}
}
