package history

import (
	"database/sql"
	"fmt"
	"strconv"
)

// SchemaVersion tracks the snapshot table layout.
const SchemaVersion = 1

// createSchema creates the snapshot tables and indexes. All statements are
// idempotent so reopening an existing database is safe.
func createSchema(db *sql.DB) error {
	snapshotsSQL := `
		CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			taken_at TEXT NOT NULL,
			elf_path TEXT NOT NULL,
			kind TEXT NOT NULL,
			total INTEGER NOT NULL,
			symbols INTEGER NOT NULL,
			top_dirs TEXT
		)
	`
	if _, err := db.Exec(snapshotsSQL); err != nil {
		return fmt.Errorf("create snapshots table: %w", err)
	}

	indexSQL := `CREATE INDEX IF NOT EXISTS idx_snapshots_target ON snapshots(elf_path, kind, taken_at DESC)`
	if _, err := db.Exec(indexSQL); err != nil {
		return fmt.Errorf("create snapshots index: %w", err)
	}

	metaSQL := `
		CREATE TABLE IF NOT EXISTS history_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create history_meta table: %w", err)
	}

	versionSQL := `INSERT OR REPLACE INTO history_meta (key, value) VALUES ('schema_version', ?)`
	if _, err := db.Exec(versionSQL, strconv.Itoa(SchemaVersion)); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}

	return nil
}
