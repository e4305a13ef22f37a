// Command fp analyzes the memory footprint of an ELF executable: which
// symbols, files and directories occupy ROM and RAM. Without an output flag
// it opens an interactive tree viewer; with one it renders the chosen
// report to stdout or -o.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/footprint/internal/discover"
	"github.com/vanderheijden86/footprint/pkg/analysis"
	"github.com/vanderheijden86/footprint/pkg/config"
	"github.com/vanderheijden86/footprint/pkg/debug"
	"github.com/vanderheijden86/footprint/pkg/elf"
	"github.com/vanderheijden86/footprint/pkg/history"
	"github.com/vanderheijden86/footprint/pkg/metrics"
	"github.com/vanderheijden86/footprint/pkg/report"
	"github.com/vanderheijden86/footprint/pkg/sizetree"
	"github.com/vanderheijden86/footprint/pkg/ui"
	"github.com/vanderheijden86/footprint/pkg/version"
)

// verbosityFlag counts repeated -v occurrences. One -v traces ELF discovery,
// two enable the full debug log (same as FP_DEBUG=1).
type verbosityFlag int

func (v *verbosityFlag) String() string { return strconv.Itoa(int(*v)) }

func (v *verbosityFlag) Set(s string) error {
	if b, err := strconv.ParseBool(s); err == nil && !b {
		*v = 0
		return nil
	}
	*v++
	return nil
}

func (v *verbosityFlag) IsBoolFlag() bool { return true }

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring config file: %v\n", err)
		cfg = config.DefaultConfig()
	}

	var (
		rom           = flag.Bool("rom", false, "analyze the read-only memory footprint (code and constants)")
		ram           = flag.Bool("ram", false, "analyze the RAM footprint (data and bss)")
		sections      = flag.String("sections", "", "analyze the given section numbers, comma separated (see -print-sections)")
		printSections = flag.Bool("print-sections", false, "print the section header table and exit")

		minSize     = flag.Uint64("min-size", cfg.MinSize, "hide symbols smaller than this many bytes")
		maxWidth    = flag.Int("max-width", cfg.MaxWidth, "clamp the text table to this many columns (0 = no limit)")
		human       = flag.Bool("human-readable", cfg.HumanReadable, "print sizes as KiB/MiB instead of bytes")
		byName      = flag.Bool("sort-by-name", cfg.Sort == config.SortByName, "sort rows by name instead of size")
		filesOnly   = flag.Bool("files-only", false, "stop at file granularity, hide individual symbols")
		alternating = flag.Bool("alternating-colors", cfg.AlternatingColors, "alternate symbol row colors for readability")
		noDemangle  = flag.Bool("no-demangle", !cfg.Demangle, "show raw mangled C++/Rust symbol names")
		noMerge     = flag.Bool("no-merge-paths", !cfg.MergePaths, "keep every path component as its own tree level")
		fishPaths   = flag.Bool("fish-paths", cfg.FishPaths, "shorten merged path components to one letter, fish style")
		noColor     = flag.Bool("no-color", false, "disable ANSI colors even on a terminal")
		noCumulated = flag.Bool("no-cumulative-size", false, "do not roll symbol sizes up into directories and files")
		noTotals    = flag.Bool("no-totals", false, "omit the totals block under the text table")

		textOut     = flag.Bool("text", false, "force the plain text report instead of the interactive viewer")
		jsonOut     = flag.Bool("json", false, "write the size tree as JSON")
		markdownOut = flag.Bool("markdown", false, "write the size tree as a Markdown table")
		htmlOut     = flag.Bool("html", false, "write a standalone HTML report with collapsible rows")
		cssFile     = flag.String("css", "", "replace the built-in stylesheet of the HTML report (path to a CSS file)")
		treemapOut  = flag.String("treemap", "", "render a treemap image to this path (.svg or .png)")
		statsOut    = flag.Bool("stats", false, "print size distribution statistics instead of the tree")
		outFile     = flag.String("o", "", "write the report to this file instead of stdout")

		depth       = flag.Int("depth", cfg.Depth, "initial collapse depth for the viewer and HTML report (-1 = expanded)")
		redepth     = flag.String("redepth", "", "rewrite the collapse depth of an existing HTML report at this path")
		topN        = flag.Int("top", cfg.Top, "number of entries in -stats top list and recorded snapshots")
		record      = flag.Bool("record", false, "record a snapshot of this analysis in the history database")
		histN       = flag.Int("history", 0, "show the last N recorded snapshots and exit")
		watch       = flag.Bool("watch", false, "reload the interactive viewer when the file changes on disk")
		initCfg     = flag.Bool("init", false, "run the interactive configuration wizard and exit")
		showVersion = flag.Bool("version", false, "print the version and exit")

		verbosity verbosityFlag
	)
	flag.Var(&verbosity, "v", "increase verbosity (repeat for debug traces)")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: fp [options] [ELF file]\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Without a file argument fp looks for an ELF executable in the usual\nbuild directories. Without an output flag it opens the interactive viewer.\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("fp %s\n", version.Version)
		return
	}
	if verbosity >= 2 {
		debug.SetEnabled(true)
	}
	defer logTimings()
	if *initCfg {
		if err := config.RunWizard(); err != nil {
			fatalf("configuration wizard failed: %v", err)
		}
		return
	}
	if *redepth != "" {
		if err := redepthReport(*redepth, *outFile, *depth); err != nil {
			fatalf("%v", err)
		}
		return
	}

	kind := pickKind(cfg, *rom, *ram, *printSections, *sections)
	nums, err := parseSections(*sections)
	if err != nil {
		fatalf("%v", err)
	}

	header := "SECTIONS"
	if kind.Valid() {
		header = kind.Label()
	}

	path := flag.Arg(0)
	if path == "" {
		path = cfg.ELF
	}
	if path == "" {
		best, err := discover.Best(discover.Options{Logger: traceLogger(int(verbosity))})
		if err != nil {
			fatalf("%v", err)
		}
		path = best.Path
		fmt.Fprintf(os.Stderr, "Analyzing %s\n", path)
	}

	outputs := 0
	for _, set := range []bool{*textOut, *jsonOut, *markdownOut, *htmlOut, *treemapOut != "", *statsOut, *record, *histN > 0} {
		if set {
			outputs++
		}
	}
	if outputs > 1 {
		fmt.Fprintln(os.Stderr, "Error: pick one output: -text, -json, -markdown, -html, -treemap, -stats, -record or -history")
		os.Exit(2)
	}

	// The snapshot history is keyed by absolute path and memory kind, so
	// runs from different working directories land in the same series.
	historyKind := "sections"
	if kind.Valid() {
		historyKind = string(kind)
	}
	if *histN > 0 {
		if err := showHistory(path, historyKind, header, *histN, *human, !*noColor); err != nil {
			fatalf("%v", err)
		}
		return
	}

	tty := term.IsTerminal(int(os.Stdout.Fd()))
	colors := !*noColor && tty && *outFile == ""
	widthSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "max-width" {
			widthSet = true
		}
	})
	if !widthSet && tty {
		*maxWidth = report.TerminalWidth(os.Stdout, *maxWidth)
	}

	// The viewer analyzes the file itself (it re-runs the extraction on
	// every -watch reload), so it dispatches before the pipeline below.
	if outputs == 0 && !*printSections && tty {
		m, err := ui.New(path, ui.Options{
			Kind:        kind,
			Sections:    nums,
			Demangle:    !*noDemangle,
			MergePaths:  !*noMerge,
			FishPaths:   *fishPaths,
			MinSize:     *minSize,
			FilesOnly:   *filesOnly,
			SortByName:  *byName,
			HumanSizes:  *human,
			Alternating: *alternating,
			Depth:       *depth,
			Watch:       *watch,
			Theme:       ui.ThemeForMode(cfg.Theme),
		})
		if err != nil {
			fatalf("%v", err)
		}
		defer m.Stop()
		if err := runTUIProgram(m); err != nil {
			fatalf("viewer failed: %v", err)
		}
		return
	}
	if *watch {
		fmt.Fprintln(os.Stderr, "Warning: -watch only applies to the interactive viewer")
	}

	f, err := elf.Open(path)
	if err != nil {
		fatalf("%v", err)
	}
	defer f.Close()

	w, closeOut, err := openOutput(*outFile)
	if err != nil {
		fatalf("%v", err)
	}
	defer closeOut()

	if *printSections {
		if err := report.WriteSections(w, f.Sections, report.SectionsOptions{Colors: colors}); err != nil {
			fatalf("%v", err)
		}
		return
	}

	var selected []*elf.Section
	if len(nums) > 0 {
		selected, err = elf.FilterNumbers(f.Sections, nums)
		if err != nil {
			fatalf("%v", err)
		}
	} else {
		selected = elf.FilterKind(f.Sections, kind)
	}

	symbols, err := f.Symbols(context.Background(), elf.SymbolOptions{Demangle: !*noDemangle})
	if err != nil {
		fatalf("%v", err)
	}
	symbols = elf.FilterSymbols(symbols, selected)

	if *statsOut {
		s := analysis.Compute(symbols, *topN)
		opts := report.StatsOptions{Header: header + " STATS", HumanReadable: *human, Colors: colors}
		if err := report.WriteStats(w, s, opts); err != nil {
			fatalf("%v", err)
		}
		return
	}

	tree := sizetree.New(symbols)
	if !*noMerge {
		tree.MergePaths(*fishPaths)
	}
	if !*noCumulated {
		tree.AccumulateSizes()
	}
	tree.CalculateTotal()
	if *byName {
		tree.SortByName()
	} else {
		tree.SortBySize()
	}

	title := fmt.Sprintf("%s footprint: %s", header, filepath.Base(path))
	switch {
	case *jsonOut:
		err = report.WriteJSON(w, tree, report.JSONOptions{MinSize: *minSize, FilesOnly: *filesOnly})
	case *markdownOut:
		err = report.WriteMarkdown(w, tree, report.MarkdownOptions{
			Title:         title,
			MinSize:       *minSize,
			FilesOnly:     *filesOnly,
			HumanReadable: *human,
		})
	case *htmlOut:
		err = report.WriteHTML(w, tree, report.HTMLOptions{
			Title:     title,
			Depth:     *depth,
			MinSize:   *minSize,
			FilesOnly: *filesOnly,
			CSSFile:   *cssFile,
		})
	case *treemapOut != "":
		err = report.SaveTreemap(tree, report.TreemapOptions{
			Path:    *treemapOut,
			Title:   title,
			MinSize: *minSize,
		})
	case *record:
		err = recordSnapshot(tree, path, historyKind, *topN)
	default:
		err = report.WriteText(w, tree, report.TextOptions{
			Header:        header,
			MaxWidth:      *maxWidth,
			MinSize:       *minSize,
			FilesOnly:     *filesOnly,
			HumanReadable: *human,
			Colors:        colors,
			Alternating:   *alternating,
			NoTotals:      *noTotals,
		})
	}
	if err != nil {
		fatalf("%v", err)
	}
}

// pickKind applies the memory selection flags on top of the config default.
// Exactly one of -rom, -ram, -sections and -print-sections may be given;
// conflicts and a missing selection exit with usage status 2.
func pickKind(cfg config.Config, rom, ram, printSections bool, sections string) elf.Kind {
	count := 0
	for _, set := range []bool{rom, ram, printSections, sections != ""} {
		if set {
			count++
		}
	}
	if count > 1 {
		fmt.Fprintln(os.Stderr, "Error: -rom, -ram, -sections and -print-sections are mutually exclusive")
		os.Exit(2)
	}
	switch {
	case rom:
		return elf.KindROM
	case ram:
		return elf.KindRAM
	case printSections, sections != "":
		return ""
	}
	if kind := elf.Kind(cfg.Memory); kind.Valid() {
		return kind
	}
	fmt.Fprintln(os.Stderr, "Error: pick a memory to analyze: -rom, -ram, -sections N,M or -print-sections")
	os.Exit(2)
	return ""
}

// parseSections parses a comma separated section number list like "1,2,5".
func parseSections(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("bad section number %q (want a comma separated list like 1,2,5)", p)
		}
		nums = append(nums, n)
	}
	return nums, nil
}

// traceLogger returns a discovery logger for -v, nil otherwise.
func traceLogger(verbosity int) func(string) {
	if verbosity < 1 {
		return nil
	}
	return func(msg string) {
		fmt.Fprintln(os.Stderr, msg)
	}
}

// openOutput returns stdout or the created -o file plus a close func.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// redepthReport rewrites the baked-in collapse depth of an existing HTML
// report without re-analyzing the ELF file. With an empty -o the file is
// rewritten in place; the source is read up front so that is safe.
func redepthReport(src, dst string, depth int) error {
	if depth < 0 {
		depth = math.MaxInt32 // clamped to the deepest level, i.e. fully expanded
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}
	if dst == "" {
		dst = src
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.Redepth(out, bytes.NewReader(data), depth); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// showHistory prints the most recent snapshots recorded for path.
func showHistory(path, kind, header string, n int, human, colors bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	db, err := history.Open(history.DefaultPath())
	if err != nil {
		return err
	}
	defer db.Close()
	snaps, err := db.Recent(abs, kind, n)
	if err != nil {
		return err
	}
	return report.WriteHistory(os.Stdout, snaps, report.HistoryOptions{
		Header:        header + " HISTORY",
		HumanReadable: human,
		Colors:        colors && term.IsTerminal(int(os.Stdout.Fd())),
	})
}

// recordSnapshot stores the analyzed totals in the history database.
func recordSnapshot(tree *sizetree.Tree, path, kind string, topN int) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	db, err := history.Open(history.DefaultPath())
	if err != nil {
		return err
	}
	defer db.Close()
	snap := history.SnapshotOf(tree, abs, kind, topN)
	id, err := db.Record(snap)
	if err != nil {
		return err
	}
	fmt.Printf("Recorded snapshot %d for %s (%s): %d bytes in %d symbols\n",
		id, abs, kind, snap.Total, snap.Symbols)
	return nil
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set FP_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("FP_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

// logTimings writes the phase timing summary to the debug log, so -v -v
// shows where a slow run spends its time.
func logTimings() {
	if !debug.Enabled() {
		return
	}
	for _, s := range metrics.AllTimingStats() {
		debug.Log("timing %s: n=%d total=%.1fms avg=%.1fms max=%.1fms",
			s.Name, s.Count, s.TotalMs, s.AvgMs, s.MaxMs)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
