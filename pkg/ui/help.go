package ui

import "github.com/charmbracelet/glamour"

const helpMarkdown = `# Key bindings

## Folding

| Key | Action |
|-----|--------|
| enter, space | Toggle the subtree under the cursor row |
| click | Toggle the clicked row |
| - | Collapse one more level |
| + | Expand one more level |
| a | Collapse everything to the top-level rows |
| n | Expand everything |

## Navigation

| Key | Action |
|-----|--------|
| j / k, arrows | Move cursor |
| g / G | First / last row |
| ctrl+d / ctrl+u | Page down / up |
| wheel | Scroll |

## Display

| Key | Action |
|-----|--------|
| s | Toggle sort between size and name |
| H | Toggle human-readable sizes |
| y | Copy the cursor row's path to the clipboard |
| r | Re-analyze the file |
| ? | This help |
| q | Quit |

Collapsing folds one band of the tree at the current depth: rows above the
band stay open, rows below it are hidden by the band. Unfolding a row always
reveals its whole subtree expanded.
`

// renderHelp renders the help text through glamour, sized to the window.
// Falls back to the raw markdown if the renderer cannot be built.
func renderHelp(width int) string {
	wrap := width - 4
	if wrap > 78 {
		wrap = 78
	}
	if wrap < 40 {
		wrap = 40
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
