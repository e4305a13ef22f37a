// Package discover locates ELF files in conventional build output
// directories when the user does not name one explicitly. Files are
// identified by the ELF magic, never by extension.
package discover

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Location ranks. The fixed Zephyr image path beats generic build output
// directories, which beat loose files in the working directory.
const (
	priorityKnownPath = 100
	priorityBuildDir  = 80
	priorityCwd       = 50
)

// buildDirs are scanned two levels deep, so layouts like target/release/app
// are still found.
var buildDirs = []string{"build", "out", "target"}

// Candidate is one ELF file found during discovery.
type Candidate struct {
	Path     string
	Priority int
	ModTime  time.Time
	Size     int64
}

// String returns a human-readable description for verbose tracing.
func (c Candidate) String() string {
	return fmt.Sprintf("%s (priority=%d, mod=%s)", c.Path, c.Priority, c.ModTime.Format(time.RFC3339))
}

// Options configures discovery.
type Options struct {
	// Root is the directory to scan from; empty means the working directory.
	Root string
	// Logger receives verbose traces; nil disables them.
	Logger func(msg string)
}

// Find returns all ELF candidates under the conventional locations, best
// first: location priority, then modification time, then path. An empty
// result is not an error.
func Find(opts Options) ([]Candidate, error) {
	logf := opts.Logger
	if logf == nil {
		logf = func(string) {}
	}
	root := opts.Root
	if root == "" {
		var err error
		root, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
	}

	seen := make(map[string]bool)
	var found []Candidate
	add := func(path string, priority int) {
		path = filepath.Clean(path)
		if seen[path] {
			return
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return
		}
		if !isELF(path) {
			return
		}
		seen[path] = true
		found = append(found, Candidate{
			Path:     path,
			Priority: priority,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})
		logf(fmt.Sprintf("found ELF %s (mod=%s)", path, info.ModTime().Format(time.RFC3339)))
	}

	add(filepath.Join(root, "build", "zephyr", "zephyr.elf"), priorityKnownPath)
	for _, dir := range buildDirs {
		scanDir(filepath.Join(root, dir), 2, func(p string) { add(p, priorityBuildDir) })
	}
	scanDir(root, 1, func(p string) { add(p, priorityCwd) })

	sort.Slice(found, func(i, j int) bool {
		if found[i].Priority != found[j].Priority {
			return found[i].Priority > found[j].Priority
		}
		if !found[i].ModTime.Equal(found[j].ModTime) {
			return found[i].ModTime.After(found[j].ModTime)
		}
		return found[i].Path < found[j].Path
	})
	logf(fmt.Sprintf("discovered %d ELF candidates", len(found)))
	return found, nil
}

// Best returns the highest-ranked candidate.
func Best(opts Options) (Candidate, error) {
	found, err := Find(opts)
	if err != nil {
		return Candidate{}, err
	}
	if len(found) == 0 {
		return Candidate{}, fmt.Errorf("no ELF files found; pass a path explicitly")
	}
	return found[0], nil
}

// scanDir calls fn for every regular file up to depth levels below dir.
// Missing or unreadable directories are skipped silently.
func scanDir(dir string, depth int, fn func(path string)) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		switch {
		case e.Type().IsRegular():
			fn(path)
		case e.IsDir() && depth > 1:
			scanDir(path, depth-1, fn)
		}
	}
}

// isELF reports whether the file starts with the ELF magic.
func isELF(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return false
	}
	return magic == [4]byte{0x7f, 'E', 'L', 'F'}
}
