// Package ui is the interactive terminal viewer: the aggregated size tree
// rendered as an indented, collapsible row list. All folding goes through
// the collapse widget; the viewer only decides which keys and clicks fire
// which widget operation and draws whatever the widget leaves visible.
package ui

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/footprint/pkg/debug"
	"github.com/vanderheijden86/footprint/pkg/elf"
	"github.com/vanderheijden86/footprint/pkg/metrics"
	"github.com/vanderheijden86/footprint/pkg/watcher"
)

// headerHeight is the number of lines above the first tree row.
const headerHeight = 1

// Options selects what the viewer analyzes and how rows are shaped. Runtime
// toggles (sort order, human sizes) mutate the embedded copy.
type Options struct {
	Kind     elf.Kind
	Sections []int // explicit section numbers; overrides Kind when set

	Demangle   bool
	MergePaths bool
	FishPaths  bool
	MinSize    uint64
	FilesOnly  bool

	SortByName  bool
	HumanSizes  bool
	Alternating bool

	// Depth is the initial collapse depth; -1 starts fully expanded.
	Depth int

	Watch bool
	Theme Theme
}

// FileChangedMsg is sent when the watched ELF file changes on disk.
type FileChangedMsg struct{}

// reloadDoneMsg carries the result of an asynchronous snapshot rebuild.
type reloadDoneMsg struct {
	snap *snapshot
	err  error
}

// WatchFileCmd returns a command that waits for the next file change and
// sends FileChangedMsg.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

func reloadCmd(path string, opts Options) tea.Cmd {
	return func() tea.Msg {
		snap, err := buildSnapshot(path, opts)
		return reloadDoneMsg{snap: snap, err: err}
	}
}

// Model is the main Bubble Tea model for fp.
type Model struct {
	path string
	opts Options
	snap *snapshot

	watcher *watcher.Watcher

	theme  Theme
	width  int
	height int

	// cursor indexes into the currently visible rows; offset is the first
	// visible row drawn at the top of the body.
	cursor int
	offset int

	showHelp bool
	helpVP   viewport.Model

	statusMsg     string
	statusIsError bool
}

// New analyzes the file once and returns a ready model. With opts.Watch the
// watcher is started here; a watcher failure degrades to a status message
// rather than an error.
func New(path string, opts Options) (Model, error) {
	snap, err := buildSnapshot(path, opts)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		path:   path,
		opts:   opts,
		snap:   snap,
		theme:  opts.Theme,
		width:  100,
		height: 30,
	}
	if m.theme.Renderer == nil {
		m.theme = ThemeForMode("dark")
	}

	if opts.Watch {
		w, err := watcher.New(path, watcher.WithDebounce(200*time.Millisecond))
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			m.statusMsg = fmt.Sprintf("Live reload unavailable: %v", err)
			m.statusIsError = true
		} else {
			m.watcher = w
			if w.IsPolling() {
				debug.Log("watching %s via polling", path)
			}
		}
	}
	return m, nil
}

// Stop releases the file watcher. Safe to call on a model without one.
func (m Model) Stop() {
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return WatchFileCmd(m.watcher)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.showHelp {
			m.helpVP.Width = msg.Width
			m.helpVP.Height = m.bodyHeight()
			m.helpVP.SetContent(renderHelp(m.width))
		}
		m.ensureCursorVisible()

	case tea.KeyMsg:
		if m.showHelp {
			return m.handleHelpKeys(msg), nil
		}
		return m.handleKeys(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case FileChangedMsg:
		m.statusMsg = "File changed, rebuilding..."
		m.statusIsError = false
		cmds := []tea.Cmd{reloadCmd(m.path, m.opts)}
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case reloadDoneMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Reload error: %v", msg.err)
			m.statusIsError = true
			return m, nil
		}
		m.snap = msg.snap
		m.cursor = 0
		m.offset = 0
		m.statusMsg = fmt.Sprintf("Reloaded: %d symbols", msg.snap.symbols)
		m.statusIsError = false
	}
	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	// Any action clears a stale status line.
	m.statusMsg = ""
	m.statusIsError = false

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "?":
		m.showHelp = true
		m.helpVP = viewport.New(m.width, m.bodyHeight())
		m.helpVP.SetContent(renderHelp(m.width))

	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "g", "home":
		m.cursor = 0
		m.ensureCursorVisible()
	case "G", "end":
		m.cursor = len(m.snap.visible()) - 1
		m.ensureCursorVisible()
	case "pgdown", "ctrl+d":
		m.moveCursor(m.bodyHeight())
	case "pgup", "ctrl+u":
		m.moveCursor(-m.bodyHeight())

	case "enter", " ":
		m.toggleAtCursor()

	case "-":
		m.sweep(m.snap.widget.CollapseMore)
	case "+", "=":
		m.sweep(m.snap.widget.CollapseLess)
	case "a":
		m.sweep(m.snap.widget.CollapseAll)
	case "n":
		m.sweep(m.snap.widget.ExpandAll)

	case "s":
		m.opts.SortByName = !m.opts.SortByName
		if err := m.snap.resort(m.opts); err != nil {
			m.statusMsg = fmt.Sprintf("Sort error: %v", err)
			m.statusIsError = true
			break
		}
		m.cursor = 0
		m.offset = 0
		if m.opts.SortByName {
			m.statusMsg = "Sorted by name"
		} else {
			m.statusMsg = "Sorted by size"
		}

	case "H":
		m.opts.HumanSizes = !m.opts.HumanSizes

	case "y":
		m.yankCursorPath()

	case "r":
		m.statusMsg = "Rebuilding..."
		return m, reloadCmd(m.path, m.opts)
	}
	return m, nil
}

func (m Model) handleHelpKeys(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "j", "down":
		m.helpVP.LineDown(1)
	case "k", "up":
		m.helpVP.LineUp(1)
	case "pgdown", "ctrl+d":
		m.helpVP.HalfViewDown()
	case "pgup", "ctrl+u":
		m.helpVP.HalfViewUp()
	case "g", "home":
		m.helpVP.GotoTop()
	case "G", "end":
		m.helpVP.GotoBottom()
	default:
		// Any other key dismisses the overlay.
		m.showHelp = false
	}
	return m
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	if m.showHelp {
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.helpVP.LineUp(3)
		case tea.MouseButtonWheelDown:
			m.helpVP.LineDown(3)
		}
		return m
	}
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scroll(-3)
	case msg.Button == tea.MouseButtonWheelDown:
		m.scroll(3)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		idx := m.offset + msg.Y - headerHeight
		vis := m.snap.visible()
		if idx >= 0 && idx < len(vis) {
			m.cursor = idx
			m.toggleAtCursor()
		}
	}
	return m
}

func (m Model) bodyHeight() int {
	h := m.height - headerHeight - 1 // status bar
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) moveCursor(delta int) {
	vis := m.snap.visible()
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(vis) {
		m.cursor = len(vis) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureCursorVisible()
}

func (m *Model) scroll(delta int) {
	vis := m.snap.visible()
	m.offset += delta
	max := len(vis) - m.bodyHeight()
	if max < 0 {
		max = 0
	}
	if m.offset > max {
		m.offset = max
	}
	if m.offset < 0 {
		m.offset = 0
	}
	// Drag the cursor along so it stays on screen.
	if m.cursor < m.offset {
		m.cursor = m.offset
	}
	if m.cursor >= m.offset+m.bodyHeight() {
		m.cursor = m.offset + m.bodyHeight() - 1
	}
	if m.cursor >= len(vis) && len(vis) > 0 {
		m.cursor = len(vis) - 1
	}
}

func (m *Model) ensureCursorVisible() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.bodyHeight() {
		m.offset = m.cursor - m.bodyHeight() + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// toggleAtCursor fires the widget toggle bound to the cursor row. Leaves
// have nothing to fold; the widget ignores them.
func (m *Model) toggleAtCursor() {
	vis := m.snap.visible()
	if m.cursor < 0 || m.cursor >= len(vis) {
		return
	}
	r := vis[m.cursor]
	if r.toggle == nil {
		return
	}
	r.toggle()
	// The toggled row itself never hides, but recompute in case callers
	// moved the cursor first.
	if idx := visibleIndex(m.snap.visible(), r); idx >= 0 {
		m.cursor = idx
	}
	m.ensureCursorVisible()
}

// sweep runs a global depth action and then parks the cursor on the nearest
// still-visible ancestor of the row it was on.
func (m *Model) sweep(apply func()) {
	var prev *treeRow
	if vis := m.snap.visible(); m.cursor >= 0 && m.cursor < len(vis) {
		prev = vis[m.cursor]
	}

	done := metrics.Timer(metrics.CollapseSweep)
	apply()
	done()

	m.cursorTo(prev)
}

func (m *Model) cursorTo(prev *treeRow) {
	vis := m.snap.visible()
	if len(vis) == 0 {
		m.cursor, m.offset = 0, 0
		return
	}
	if prev != nil {
		for n := prev.cnode; n != nil && n.El != nil; n = n.Parent {
			r := n.El.(*treeRow)
			if !r.hidden {
				if idx := visibleIndex(vis, r); idx >= 0 {
					m.cursor = idx
					m.ensureCursorVisible()
					return
				}
			}
		}
	}
	m.cursor, m.offset = 0, 0
}

func (m *Model) yankCursorPath() {
	vis := m.snap.visible()
	if m.cursor < 0 || m.cursor >= len(vis) {
		return
	}
	path := vis[m.cursor].fullPath()
	if err := clipboard.WriteAll(path); err != nil {
		m.statusMsg = fmt.Sprintf("Clipboard error: %v", err)
		m.statusIsError = true
		return
	}
	m.statusMsg = fmt.Sprintf("Copied %s", path)
}

func visibleIndex(vis []*treeRow, r *treeRow) int {
	for i, v := range vis {
		if v == r {
			return i
		}
	}
	return -1
}
