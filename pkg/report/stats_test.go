package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vanderheijden86/footprint/pkg/analysis"
	"github.com/vanderheijden86/footprint/pkg/elf"
	"github.com/vanderheijden86/footprint/pkg/testutil"
)

func TestWriteStatsCanonical(t *testing.T) {
	s := analysis.Compute(testutil.CanonicalSymbols(), 3)

	var buf bytes.Buffer
	if err := WriteStats(&buf, s, StatsOptions{Header: "ROM STATS"}); err != nil {
		t.Fatalf("WriteStats: %v", err)
	}

	want := `=== ROM STATS =====
Symbols           7
Total size     8104
Mean         1157.7
Median          512
P90            4096
P99            4096
Largest        4096
===================

Top 3 symbols
aes_encrypt   4096   lib/crypto/aes.c
uart_rx_buf   2048   src/drivers/uart.c
main          1000   src/core/main.c
`
	if got := buf.String(); got != want {
		t.Errorf("unexpected stats:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteStatsWithoutTop(t *testing.T) {
	s := analysis.Compute(testutil.CanonicalSymbols(), 0)

	var buf bytes.Buffer
	if err := WriteStats(&buf, s, StatsOptions{}); err != nil {
		t.Fatalf("WriteStats: %v", err)
	}
	out := buf.String()

	testutil.AssertNotContains(t, out, "Top")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if last := lines[len(lines)-1]; last != strings.Repeat("=", 19) {
		t.Errorf("expected the block to end with a separator, got %q", last)
	}
}

func TestWriteStatsHumanReadable(t *testing.T) {
	s := analysis.Compute(testutil.CanonicalSymbols(), 1)

	var buf bytes.Buffer
	if err := WriteStats(&buf, s, StatsOptions{HumanReadable: true}); err != nil {
		t.Fatalf("WriteStats: %v", err)
	}
	out := buf.String()

	testutil.AssertContains(t, out, "7.9 KiB") // total
	testutil.AssertContains(t, out, "1.1 KiB") // mean
	testutil.AssertContains(t, out, "512.0 B") // median
	testutil.AssertContains(t, out, "4.0 KiB") // largest and the top entry
}

func TestWriteStatsOrphanFile(t *testing.T) {
	// Symbols without a source file land in the "?" bucket of the tree; the
	// top list shows the same marker.
	s := analysis.Compute([]*elf.Symbol{testutil.Sym("orphan", 64, "")}, 1)

	var buf bytes.Buffer
	if err := WriteStats(&buf, s, StatsOptions{}); err != nil {
		t.Fatalf("WriteStats: %v", err)
	}
	testutil.AssertLine(t, buf.String(), "orphan   64   ?")
}

func TestWriteStatsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteStats(&buf, analysis.Stats{}, StatsOptions{}); err == nil {
		t.Fatal("expected an error for empty stats")
	}
}

func TestWriteStatsColors(t *testing.T) {
	s := analysis.Compute(testutil.CanonicalSymbols(), 2)

	var buf bytes.Buffer
	if err := WriteStats(&buf, s, StatsOptions{Header: "ROM STATS", Colors: true}); err != nil {
		t.Fatalf("WriteStats: %v", err)
	}

	lines := strings.Split(buf.String(), "\n")
	if !strings.HasPrefix(lines[0], ansiHeader) {
		t.Errorf("expected title line to start with %q, got %q", ansiHeader, lines[0])
	}
	if strings.HasPrefix(lines[1], ansiHeader) {
		t.Errorf("expected data rows to stay plain, got %q", lines[1])
	}
}
