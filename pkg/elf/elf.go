// Package elf reads sections and symbols from ELF executables using the
// standard library parsers, replacing the binutils shell-outs (readelf, nm,
// c++filt) such analyses traditionally depend on. Section classification
// follows the usual embedded-firmware simplification: a section occupies
// memory iff it has the ALLOC flag, occupies ROM iff it additionally is not
// NOBITS, and occupies RAM iff it additionally has the WRITE flag.
package elf

import (
	stdelf "debug/elf"
	"fmt"
	"sort"

	"github.com/vanderheijden86/footprint/pkg/debug"
	"github.com/vanderheijden86/footprint/pkg/metrics"
)

// Kind selects which memory a report covers.
type Kind string

const (
	KindROM Kind = "rom"
	KindRAM Kind = "ram"
)

// Valid reports whether k is a known memory kind.
func (k Kind) Valid() bool { return k == KindROM || k == KindRAM }

// Label returns the report header form, e.g. "ROM".
func (k Kind) Label() string {
	switch k {
	case KindROM:
		return "ROM"
	case KindRAM:
		return "RAM"
	}
	return string(k)
}

// Section is one ELF section header. Num is the section header table index,
// which is also how symbols reference their defining section.
type Section struct {
	Num    int
	Name   string
	Type   stdelf.SectionType
	Flags  stdelf.SectionFlag
	Addr   uint64
	Offset uint64
	Size   uint64
}

// OccupiesMemory reports whether the section is part of the program's memory
// image at all (SHF_ALLOC).
func (s *Section) OccupiesMemory() bool { return s.Flags&stdelf.SHF_ALLOC != 0 }

// OccupiesROM reports whether the section consumes program storage: allocated
// and backed by file contents (everything but NOBITS).
func (s *Section) OccupiesROM() bool {
	return s.OccupiesMemory() && s.Type != stdelf.SHT_NOBITS
}

// OccupiesRAM reports whether the section consumes writable runtime memory.
func (s *Section) OccupiesRAM() bool {
	return s.OccupiesMemory() && s.Flags&stdelf.SHF_WRITE != 0
}

// FlagNames expands the flag bits into readelf-style names for display.
func (s *Section) FlagNames() []string {
	var names []string
	for _, f := range []struct {
		bit  stdelf.SectionFlag
		name string
	}{
		{stdelf.SHF_WRITE, "WRITE"},
		{stdelf.SHF_ALLOC, "ALLOC"},
		{stdelf.SHF_EXECINSTR, "EXECUTE"},
		{stdelf.SHF_MERGE, "MERGE"},
		{stdelf.SHF_STRINGS, "STRINGS"},
		{stdelf.SHF_INFO_LINK, "INFO"},
		{stdelf.SHF_LINK_ORDER, "LINK_ORDER"},
		{stdelf.SHF_OS_NONCONFORMING, "OS_NONCONFORMING"},
		{stdelf.SHF_GROUP, "GROUP"},
		{stdelf.SHF_TLS, "TLS"},
		{stdelf.SHF_COMPRESSED, "COMPRESSED"},
	} {
		if s.Flags&f.bit != 0 {
			names = append(names, f.name)
		}
	}
	return names
}

// TypeName returns the section type without the stdlib's SHT_ prefix, to
// match the spelling readelf users expect (PROGBITS, NOBITS, ...).
func (s *Section) TypeName() string {
	str := s.Type.String()
	const prefix = "SHT_"
	if len(str) > len(prefix) && str[:len(prefix)] == prefix {
		return str[len(prefix):]
	}
	return str
}

// File is an opened ELF executable with its section headers decoded. Close
// releases the underlying reader; Symbols must be called before Close.
type File struct {
	Path     string
	Machine  stdelf.Machine
	Class    stdelf.Class
	Sections []*Section

	elf *stdelf.File
}

// Open opens and parses the ELF file at path.
func Open(path string) (*File, error) {
	defer metrics.Timer(metrics.ELFLoad)()

	ef, err := stdelf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ELF %s: %w", path, err)
	}
	f := &File{
		Path:    path,
		Machine: ef.Machine,
		Class:   ef.Class,
		elf:     ef,
	}
	for i, s := range ef.Sections {
		f.Sections = append(f.Sections, &Section{
			Num:    i,
			Name:   s.Name,
			Type:   s.Type,
			Flags:  s.Flags,
			Addr:   s.Addr,
			Offset: s.Offset,
			Size:   s.Size,
		})
	}
	debug.Log("opened %s: %s %s, %d sections", path, ef.Class, ef.Machine, len(f.Sections))
	return f, nil
}

// Close releases the underlying file handle.
func (f *File) Close() error {
	if f.elf == nil {
		return nil
	}
	err := f.elf.Close()
	f.elf = nil
	return err
}

// FilterROM returns the sections that occupy program storage.
func FilterROM(sections []*Section) []*Section {
	return filterSections(sections, (*Section).OccupiesROM)
}

// FilterRAM returns the sections that occupy writable runtime memory.
func FilterRAM(sections []*Section) []*Section {
	return filterSections(sections, (*Section).OccupiesRAM)
}

// FilterKind dispatches to FilterROM or FilterRAM.
func FilterKind(sections []*Section, kind Kind) []*Section {
	if kind == KindRAM {
		return FilterRAM(sections)
	}
	return FilterROM(sections)
}

// FilterNumbers returns the sections whose header table index is in nums.
// Unknown numbers are reported as an error so a typo in a manual section
// selection does not silently produce an empty report.
func FilterNumbers(sections []*Section, nums []int) ([]*Section, error) {
	byNum := make(map[int]*Section, len(sections))
	for _, s := range sections {
		byNum[s.Num] = s
	}
	var out []*Section
	for _, n := range nums {
		s, ok := byNum[n]
		if !ok {
			return nil, fmt.Errorf("no section with number %d", n)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Num < out[j].Num })
	return out, nil
}

func filterSections(sections []*Section, keep func(*Section) bool) []*Section {
	var out []*Section
	for _, s := range sections {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
