package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Sort != SortBySize {
		t.Errorf("expected default sort 'size', got %q", cfg.Sort)
	}
	if cfg.MaxWidth != 80 {
		t.Errorf("expected max width 80, got %d", cfg.MaxWidth)
	}
	if !cfg.MergePaths {
		t.Error("expected merge_paths enabled by default")
	}
	if !cfg.Demangle {
		t.Error("expected demangling enabled by default")
	}
	if cfg.Depth != -1 {
		t.Errorf("expected depth -1 (fully expanded), got %d", cfg.Depth)
	}
	if cfg.Theme != ThemeDark {
		t.Errorf("expected dark theme, got %q", cfg.Theme)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to validate, got: %v", err)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Sort != SortBySize {
		t.Errorf("expected default config, got sort %q", cfg.Sort)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
memory: ram
elf: ~/fw/build/zephyr/zephyr.elf
sort: name
human_readable: true
min_size: 32
max_width: 120
merge_paths: false
fish_paths: true
demangle: false
alternating_colors: true
theme: light
depth: 2
top: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Memory != "ram" {
		t.Errorf("expected memory 'ram', got %q", cfg.Memory)
	}
	if cfg.Sort != SortByName {
		t.Errorf("expected sort 'name', got %q", cfg.Sort)
	}
	if !cfg.HumanReadable {
		t.Error("expected human_readable true")
	}
	if cfg.MinSize != 32 {
		t.Errorf("expected min_size 32, got %d", cfg.MinSize)
	}
	if cfg.MaxWidth != 120 {
		t.Errorf("expected max_width 120, got %d", cfg.MaxWidth)
	}
	if cfg.MergePaths {
		t.Error("expected merge_paths false")
	}
	if !cfg.FishPaths {
		t.Error("expected fish_paths true")
	}
	if cfg.Demangle {
		t.Error("expected demangle false")
	}
	if !cfg.AlternatingColors {
		t.Error("expected alternating_colors true")
	}
	if cfg.Theme != ThemeLight {
		t.Errorf("expected theme 'light', got %q", cfg.Theme)
	}
	if cfg.Depth != 2 {
		t.Errorf("expected depth 2, got %d", cfg.Depth)
	}
	if cfg.Top != 5 {
		t.Errorf("expected top 5, got %d", cfg.Top)
	}

	// The ELF path should have ~ expanded
	home, _ := os.UserHomeDir()
	expectedPath := filepath.Join(home, "fw/build/zephyr/zephyr.elf")
	if cfg.ELF != expectedPath {
		t.Errorf("expected expanded path %q, got %q", expectedPath, cfg.ELF)
	}
}

func TestLoadFrom_PartialConfigKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("memory: rom\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Memory != "rom" {
		t.Errorf("expected memory 'rom', got %q", cfg.Memory)
	}
	if !cfg.MergePaths || !cfg.Demangle || cfg.MaxWidth != 80 {
		t.Error("expected unset fields to keep their defaults")
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFrom_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad memory kind", "memory: flash\n"},
		{"bad sort", "sort: weight\n"},
		{"bad theme", "theme: solarized\n"},
		{"depth below -1", "depth: -2\n"},
		{"zero top", "top: 0\n"},
		{"negative max width", "max_width: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Memory = "rom"
	cfg.MinSize = 16
	cfg.FishPaths = true
	cfg.Depth = 1

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load after save failed: %v", err)
	}
	if loaded != cfg {
		t.Errorf("round trip mismatch:\nsaved:  %+v\nloaded: %+v", cfg, loaded)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/foo", filepath.Join(home, "foo")},
		{"~/", filepath.Join(home, "")},
		{"/absolute", "/absolute"},
		{"relative", "relative"},
		{"", ""},
	}

	for _, tt := range tests {
		got := expandHome(tt.input)
		if got != tt.expected {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestConfigDir_XDGOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got := ConfigDir()
	expected := filepath.Join(dir, "footprint")
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
	if got := ConfigPath(); got != filepath.Join(expected, "config.yaml") {
		t.Errorf("expected config.yaml under footprint dir, got %q", got)
	}
}

func TestDataDir_XDGOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	got := DataDir()
	expected := filepath.Join(dir, "footprint")
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestStateDir_XDGOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	got := StateDir()
	expected := filepath.Join(dir, "footprint")
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}
