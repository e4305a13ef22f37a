package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vanderheijden86/footprint/pkg/elf"
	"github.com/vanderheijden86/footprint/pkg/sizetree"
)

// SectionsOptions configures the section header table.
type SectionsOptions struct {
	Colors bool
}

// WriteSections prints the section header table, close to what
// `readelf -WS` shows: index, name, type, address, human-readable size and
// flag names. The index column is what manual section selection refers to.
func WriteSections(w io.Writer, sections []*elf.Section, opts SectionsOptions) error {
	if len(sections) == 0 {
		return fmt.Errorf("no sections to print")
	}

	lines := make([][6]string, len(sections))
	for i, s := range sections {
		lines[i] = [6]string{
			strconv.Itoa(s.Num),
			s.Name,
			s.TypeName(),
			fmt.Sprintf("%#x", s.Addr),
			sizetree.HumanSize(float64(s.Size)),
			strings.Join(s.FlagNames(), ","),
		}
	}

	labels := [6]string{"N", "Name", "Type", "Addr", "Size", "Flags"}
	var widths [6]int
	for i, h := range labels {
		widths[i] = len(h)
	}
	for _, l := range lines {
		for i, f := range l {
			if len(f) > widths[i] {
				widths[i] = len(f)
			}
		}
	}

	head := make([]string, len(labels))
	for i, h := range labels {
		head[i] = padRight(h, widths[i])
	}
	header := strings.Join(head, colSep)
	separator := strings.Repeat("=", len(header))
	top := centerPad(" SECTIONS ", len(separator), '=')

	bold := func(s string) string {
		if opts.Colors {
			return ansiBold + s + ansiReset
		}
		return s
	}
	var sb strings.Builder
	sb.WriteString(bold(top) + "\n")
	sb.WriteString(bold(header) + "\n")
	sb.WriteString(bold(separator) + "\n")
	for _, l := range lines {
		cols := []string{
			padLeft(l[0], widths[0]),
			padRight(l[1], widths[1]),
			padRight(l[2], widths[2]),
			padLeft(l[3], widths[3]),
			padLeft(l[4], widths[4]),
			padRight(l[5], widths[5]),
		}
		sb.WriteString(strings.Join(cols, colSep) + "\n")
	}
	sb.WriteString(bold(separator) + "\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
