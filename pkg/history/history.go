// Package history persists footprint snapshots in an SQLite database so
// consecutive builds of the same ELF file can be compared.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	json "github.com/goccy/go-json"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/footprint/pkg/config"
	"github.com/vanderheijden86/footprint/pkg/debug"
	"github.com/vanderheijden86/footprint/pkg/metrics"
	"github.com/vanderheijden86/footprint/pkg/sizetree"
)

// Snapshot is one recorded footprint of an ELF file.
type Snapshot struct {
	ID      int64
	Taken   time.Time
	Path    string // ELF path the snapshot was taken from
	Kind    string // memory kind, e.g. "rom" or "ram"
	Total   uint64
	Symbols int
	TopDirs []DirSize
}

// DirSize is one top-level tree entry with its cumulative size. The list is
// stored as JSON alongside the totals so regressions can be narrowed down
// without re-running the analysis.
type DirSize struct {
	Label string `json:"label"`
	Size  uint64 `json:"size"`
}

// SnapshotOf builds a snapshot from an analyzed tree, keeping the topN
// largest top-level entries. The tree must have accumulated sizes and a
// computed total.
func SnapshotOf(tree *sizetree.Tree, path, kind string, topN int) Snapshot {
	total, _ := tree.Total()
	s := Snapshot{
		Taken:   time.Now().UTC(),
		Path:    path,
		Kind:    kind,
		Total:   total,
		Symbols: tree.SymbolCount(),
	}
	for _, child := range tree.Root().Children {
		if !child.HasCumulative || child.Cumulative == 0 {
			continue
		}
		s.TopDirs = append(s.TopDirs, DirSize{Label: child.Label, Size: child.Cumulative})
	}
	sort.Slice(s.TopDirs, func(i, j int) bool {
		if s.TopDirs[i].Size != s.TopDirs[j].Size {
			return s.TopDirs[i].Size > s.TopDirs[j].Size
		}
		return s.TopDirs[i].Label < s.TopDirs[j].Label
	})
	if topN > 0 && len(s.TopDirs) > topN {
		s.TopDirs = s.TopDirs[:topN]
	}
	return s
}

// DB wraps the snapshot database.
type DB struct {
	db *sql.DB
}

// DefaultPath returns the snapshot database location in the XDG state dir.
func DefaultPath() string {
	return filepath.Join(config.StateDir(), "footprint.sqlite3")
}

// Open opens the snapshot database at path, creating the file and schema
// when missing.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	debug.Log("history database open at %s", path)
	return &DB{db: db}, nil
}

func (d *DB) Close() error { return d.db.Close() }

// Record appends one snapshot and returns its id. A zero Taken time is
// filled with the current time.
func (d *DB) Record(s Snapshot) (int64, error) {
	defer metrics.Timer(metrics.HistoryWrite)()

	if s.Taken.IsZero() {
		s.Taken = time.Now().UTC()
	}
	dirs := "[]"
	if len(s.TopDirs) > 0 {
		b, err := json.Marshal(s.TopDirs)
		if err != nil {
			return 0, fmt.Errorf("marshal top dirs: %w", err)
		}
		dirs = string(b)
	}

	res, err := d.db.Exec(`
		INSERT INTO snapshots (taken_at, elf_path, kind, total, symbols, top_dirs)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.Taken.UTC().Format(time.RFC3339), s.Path, s.Kind, int64(s.Total), s.Symbols, dirs)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("snapshot id: %w", err)
	}
	debug.Log("recorded snapshot %d for %s (%s): %d bytes", id, s.Path, s.Kind, s.Total)
	return id, nil
}

// Recent returns up to n snapshots for the given ELF path and memory kind,
// newest first.
func (d *DB) Recent(path, kind string, n int) ([]Snapshot, error) {
	rows, err := d.db.Query(`
		SELECT id, taken_at, elf_path, kind, total, symbols, top_dirs
		FROM snapshots
		WHERE elf_path = ? AND kind = ?
		ORDER BY taken_at DESC, id DESC
		LIMIT ?
	`, path, kind, n)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var (
			s     Snapshot
			taken string
			total int64
			dirs  sql.NullString
		)
		if err := rows.Scan(&s.ID, &taken, &s.Path, &s.Kind, &total, &s.Symbols, &dirs); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.Taken, err = time.Parse(time.RFC3339, taken)
		if err != nil {
			return nil, fmt.Errorf("snapshot %d has a bad timestamp %q: %w", s.ID, taken, err)
		}
		s.Total = uint64(total)
		if dirs.Valid && dirs.String != "" && dirs.String != "[]" {
			if err := json.Unmarshal([]byte(dirs.String), &s.TopDirs); err != nil {
				return nil, fmt.Errorf("snapshot %d has bad top dirs: %w", s.ID, err)
			}
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}
