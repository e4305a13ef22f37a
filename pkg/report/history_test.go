package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/footprint/pkg/history"
	"github.com/vanderheijden86/footprint/pkg/testutil"
)

// testSnaps returns three snapshots newest first, sizes 8000 -> 8104 -> 8090.
func testSnaps() []history.Snapshot {
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	return []history.Snapshot{
		{Taken: base.Add(2 * time.Minute), Path: "/build/app.elf", Kind: "rom", Total: 8090, Symbols: 7},
		{Taken: base.Add(1 * time.Minute), Path: "/build/app.elf", Kind: "rom", Total: 8104, Symbols: 7},
		{Taken: base, Path: "/build/app.elf", Kind: "rom", Total: 8000, Symbols: 6},
	}
}

func TestWriteHistoryCanonical(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, testSnaps(), HistoryOptions{Header: "ROM HISTORY"}); err != nil {
		t.Fatalf("WriteHistory: %v", err)
	}

	want := `============== ROM HISTORY ===============
Taken              Total   Delta   Symbols
==========================================
2026-08-25 10:02    8090     -14         7
2026-08-25 10:01    8104    +104         7
2026-08-25 10:00    8000       -         6
==========================================
`
	if got := buf.String(); got != want {
		t.Errorf("unexpected history:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteHistorySingle(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, testSnaps()[:1], HistoryOptions{}); err != nil {
		t.Fatalf("WriteHistory: %v", err)
	}

	// Nothing to compare against: the only row shows "-".
	testutil.AssertLine(t, buf.String(), "2026-08-25 10:02    8090       -         7")
}

func TestWriteHistoryHumanReadable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, testSnaps(), HistoryOptions{HumanReadable: true}); err != nil {
		t.Fatalf("WriteHistory: %v", err)
	}
	out := buf.String()

	testutil.AssertContains(t, out, "7.9 KiB")
	testutil.AssertContains(t, out, "-14.0 B")
	testutil.AssertContains(t, out, "+104.0 B")
}

func TestWriteHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, nil, HistoryOptions{}); err == nil {
		t.Fatal("expected an error for an empty snapshot list")
	}
}

func TestWriteHistoryColors(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, testSnaps(), HistoryOptions{Colors: true}); err != nil {
		t.Fatalf("WriteHistory: %v", err)
	}

	lines := strings.Split(buf.String(), "\n")
	if !strings.HasPrefix(lines[0], ansiHeader) {
		t.Errorf("expected the frame to be colored, got %q", lines[0])
	}
	if strings.HasPrefix(lines[3], ansiHeader) {
		t.Errorf("expected data rows to stay plain, got %q", lines[3])
	}
}
