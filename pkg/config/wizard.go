package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// RunWizard interactively collects a configuration and writes it to the XDG
// config path. An existing file is only replaced after confirmation.
func RunWizard() error {
	fmt.Println("")
	fmt.Println("fp configuration")
	fmt.Println("────────────────")

	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}

	if _, err := os.Stat(path); err == nil {
		replace := false
		form := newForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("A config file already exists. Reconfigure?").
					Description(path).
					Value(&replace).
					Affirmative("Yes, reconfigure").
					Negative("No, keep it"),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
		if !replace {
			fmt.Println("Keeping existing configuration.")
			return nil
		}
	}

	cfg := DefaultConfig()
	if err := collectDefaults(&cfg); err != nil {
		return err
	}
	if err := collectShaping(&cfg); err != nil {
		return err
	}
	if err := collectPresentation(&cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := SaveTo(cfg, path); err != nil {
		return err
	}

	fmt.Println("")
	fmt.Printf("Configuration written to %s\n", path)
	fmt.Println("Flags still override these settings per run.")
	return nil
}

func collectDefaults(cfg *Config) error {
	fmt.Println("")
	fmt.Println("Step 1: Defaults")
	fmt.Println("────────────────")

	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default memory kind").
				Description("Used when no -rom/-ram flag is given").
				Options(
					huh.NewOption("ROM (flash: ALLOC sections that are not NOBITS)", "rom"),
					huh.NewOption("RAM (ALLOC sections with WRITE)", "ram"),
					huh.NewOption("None, require a flag each run", ""),
				).
				Value(&cfg.Memory),
			huh.NewInput().
				Title("Default ELF file (optional)").
				Description("Leave empty to pass the file as an argument or auto-discover it").
				Value(&cfg.ELF).
				Placeholder("build/zephyr/zephyr.elf"),
		),
	)
	return form.Run()
}

func collectShaping(cfg *Config) error {
	fmt.Println("")
	fmt.Println("Step 2: Tree shaping")
	fmt.Println("────────────────────")

	minSize := strconv.FormatUint(cfg.MinSize, 10)
	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Sort symbols by").
				Options(
					huh.NewOption("Size, largest first", SortBySize),
					huh.NewOption("Name, alphabetical", SortByName),
				).
				Value(&cfg.Sort),
			huh.NewConfirm().
				Title("Merge single-child directory chains?").
				Description("/home/user/project prints as one row instead of three").
				Value(&cfg.MergePaths),
			huh.NewConfirm().
				Title("Abbreviate merged paths fish-style?").
				Description("/home/user/project becomes /h/u/project").
				Value(&cfg.FishPaths),
			huh.NewConfirm().
				Title("Demangle C++/Rust symbol names?").
				Value(&cfg.Demangle),
			huh.NewInput().
				Title("Hide symbols smaller than (bytes)").
				Value(&minSize).
				Validate(validateUint),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	cfg.MinSize, _ = strconv.ParseUint(minSize, 10, 64)
	return nil
}

func collectPresentation(cfg *Config) error {
	fmt.Println("")
	fmt.Println("Step 3: Presentation")
	fmt.Println("────────────────────")

	depth := strconv.Itoa(cfg.Depth)
	maxWidth := strconv.Itoa(cfg.MaxWidth)
	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Dark", ThemeDark),
					huh.NewOption("Light", ThemeLight),
				).
				Value(&cfg.Theme),
			huh.NewInput().
				Title("Initial collapse depth").
				Description("-1 starts fully expanded, 0 shows only top-level rows").
				Value(&depth).
				Validate(validateDepth),
			huh.NewConfirm().
				Title("Human readable sizes (1.5 KiB instead of 1536)?").
				Value(&cfg.HumanReadable),
			huh.NewConfirm().
				Title("Alternate symbol row colors?").
				Value(&cfg.AlternatingColors),
			huh.NewInput().
				Title("Maximum table width (0 for unlimited)").
				Value(&maxWidth).
				Validate(validateUint),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	cfg.Depth, _ = strconv.Atoi(depth)
	cfg.MaxWidth, _ = strconv.Atoi(maxWidth)
	return nil
}

func validateUint(s string) error {
	if s == "" {
		return fmt.Errorf("enter a number")
	}
	if _, err := strconv.ParseUint(s, 10, 64); err != nil {
		return fmt.Errorf("not a non-negative number: %s", s)
	}
	return nil
}

func validateDepth(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("not a number: %s", s)
	}
	if n < -1 {
		return fmt.Errorf("depth must be -1 or higher")
	}
	return nil
}
