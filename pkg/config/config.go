// Package config handles loading and saving fp configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/footprint/config.yaml
//   - Data:    ~/.local/share/footprint/ (custom report stylesheets)
//   - State:   ~/.local/state/footprint/ (build history database)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Memory kinds, sort orders and themes accepted in the config file.
const (
	SortBySize = "size"
	SortByName = "name"

	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Config is the top-level configuration for fp. Flags override these
// settings per run; the config supplies the defaults.
type Config struct {
	// Memory preselects the report kind ("rom" or "ram") so plain `fp`
	// works without a memory flag. Empty means a flag is required.
	Memory string `yaml:"memory,omitempty"`

	// ELF is a default executable path, with ~ expanded on load.
	ELF string `yaml:"elf,omitempty"`

	Sort              string `yaml:"sort"`
	HumanReadable     bool   `yaml:"human_readable"`
	MinSize           uint64 `yaml:"min_size"`
	MaxWidth          int    `yaml:"max_width"`
	MergePaths        bool   `yaml:"merge_paths"`
	FishPaths         bool   `yaml:"fish_paths"`
	Demangle          bool   `yaml:"demangle"`
	AlternatingColors bool   `yaml:"alternating_colors"`
	Theme             string `yaml:"theme"`

	// Depth is the initial collapse depth for the TUI and HTML report:
	// 0 shows only top-level rows, -1 starts fully expanded.
	Depth int `yaml:"depth"`

	// Top bounds the largest-symbols list in -stats output.
	Top int `yaml:"top"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Sort:       SortBySize,
		MaxWidth:   80,
		MergePaths: true,
		Demangle:   true,
		Theme:      ThemeDark,
		Depth:      -1,
		Top:        10,
	}
}

// Validate reports the first invalid field value.
func (c Config) Validate() error {
	switch c.Memory {
	case "", "rom", "ram":
	default:
		return fmt.Errorf("invalid memory kind %q (want rom or ram)", c.Memory)
	}
	switch c.Sort {
	case SortBySize, SortByName:
	default:
		return fmt.Errorf("invalid sort %q (want size or name)", c.Sort)
	}
	switch c.Theme {
	case ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("invalid theme %q (want dark or light)", c.Theme)
	}
	if c.MaxWidth < 0 {
		return fmt.Errorf("max_width must be >= 0, got %d", c.MaxWidth)
	}
	if c.Depth < -1 {
		return fmt.Errorf("depth must be >= -1, got %d", c.Depth)
	}
	if c.Top < 1 {
		return fmt.Errorf("top must be >= 1, got %d", c.Top)
	}
	return nil
}

// ConfigDir returns the XDG config directory for fp.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "footprint")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "footprint")
}

// DataDir returns the XDG data directory for fp.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "footprint")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "footprint")
}

// StateDir returns the XDG state directory for fp.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "footprint")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "footprint")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.ELF = expandHome(cfg.ELF)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
