package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/vanderheijden86/footprint/pkg/testutil"
)

var testBase = time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

// makeSnap creates a snapshot for the default test target.
func makeSnap(taken time.Time, total uint64) Snapshot {
	return Snapshot{
		Taken:   taken,
		Path:    "/build/zephyr/zephyr.elf",
		Kind:    "rom",
		Total:   total,
		Symbols: 7,
		TopDirs: []DirSize{{Label: "src", Size: total - 100}, {Label: "lib", Size: 100}},
	}
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "footprint.sqlite3"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSnapshotOf(t *testing.T) {
	snap := SnapshotOf(testutil.CanonicalTree(), "/build/app.elf", "rom", 0)

	if snap.Total != testutil.CanonicalTotal {
		t.Errorf("expected total %d, got %d", testutil.CanonicalTotal, snap.Total)
	}
	if snap.Symbols != 7 {
		t.Errorf("expected 7 symbols, got %d", snap.Symbols)
	}
	if snap.Path != "/build/app.elf" || snap.Kind != "rom" {
		t.Errorf("unexpected target: %+v", snap)
	}
	if snap.Taken.IsZero() {
		t.Error("expected a non-zero taken time")
	}

	want := []DirSize{
		{Label: "lib", Size: 4096},
		{Label: "src", Size: 3944},
		{Label: "?", Size: 64},
	}
	if len(snap.TopDirs) != len(want) {
		t.Fatalf("expected %d top dirs, got %d", len(want), len(snap.TopDirs))
	}
	for i, w := range want {
		if snap.TopDirs[i] != w {
			t.Errorf("top dir %d = %+v, want %+v", i, snap.TopDirs[i], w)
		}
	}
}

func TestSnapshotOfKeepsTopN(t *testing.T) {
	snap := SnapshotOf(testutil.CanonicalTree(), "/build/app.elf", "rom", 2)

	if len(snap.TopDirs) != 2 {
		t.Fatalf("expected 2 top dirs, got %d", len(snap.TopDirs))
	}
	if snap.TopDirs[0].Label != "lib" || snap.TopDirs[1].Label != "src" {
		t.Errorf("expected the two largest entries, got %+v", snap.TopDirs)
	}
}

func TestRecordAndRecent(t *testing.T) {
	db := openTestDB(t)

	for i, total := range []uint64{8000, 8104, 8090} {
		if _, err := db.Record(makeSnap(testBase.Add(time.Duration(i)*time.Minute), total)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	// Different kind and different path must not show up.
	other := makeSnap(testBase, 9999)
	other.Kind = "ram"
	if _, err := db.Record(other); err != nil {
		t.Fatalf("Record: %v", err)
	}
	other = makeSnap(testBase, 9999)
	other.Path = "/build/other.elf"
	if _, err := db.Record(other); err != nil {
		t.Fatalf("Record: %v", err)
	}

	snaps, err := db.Recent("/build/zephyr/zephyr.elf", "rom", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snaps))
	}

	wantTotals := []uint64{8090, 8104, 8000} // newest first
	for i, want := range wantTotals {
		if snaps[i].Total != want {
			t.Errorf("snapshot %d total = %d, want %d", i, snaps[i].Total, want)
		}
	}
	if got := snaps[0].Taken; !got.Equal(testBase.Add(2 * time.Minute)) {
		t.Errorf("expected newest taken at %v, got %v", testBase.Add(2*time.Minute), got)
	}
	if snaps[0].Symbols != 7 {
		t.Errorf("expected 7 symbols, got %d", snaps[0].Symbols)
	}

	dirs := snaps[0].TopDirs
	if len(dirs) != 2 || dirs[0].Label != "src" || dirs[0].Size != 8090-100 {
		t.Errorf("top dirs did not survive the round trip: %+v", dirs)
	}
}

func TestRecentLimit(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 5; i++ {
		if _, err := db.Record(makeSnap(testBase.Add(time.Duration(i)*time.Minute), uint64(8000+i))); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	snaps, err := db.Recent("/build/zephyr/zephyr.elf", "rom", 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}
	if snaps[0].Total != 8004 || snaps[1].Total != 8003 {
		t.Errorf("expected the two newest snapshots, got totals %d and %d", snaps[0].Total, snaps[1].Total)
	}
}

func TestRecentEmpty(t *testing.T) {
	db := openTestDB(t)

	snaps, err := db.Recent("/build/zephyr/zephyr.elf", "rom", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("expected no snapshots, got %d", len(snaps))
	}
}

func TestRecordDefaultsTaken(t *testing.T) {
	db := openTestDB(t)

	snap := makeSnap(time.Time{}, 8104)
	if _, err := db.Record(snap); err != nil {
		t.Fatalf("Record: %v", err)
	}

	snaps, err := db.Recent(snap.Path, snap.Kind, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(snaps) != 1 || snaps[0].Taken.IsZero() {
		t.Errorf("expected a filled taken time, got %+v", snaps)
	}
}

func TestOpenExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "footprint.sqlite3")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := db.Record(makeSnap(testBase, 8104)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	snaps, err := db.Recent("/build/zephyr/zephyr.elf", "rom", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(snaps) != 1 {
		t.Errorf("expected the snapshot to survive a reopen, got %d", len(snaps))
	}
}
