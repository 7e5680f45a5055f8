package objfile

import "debug/elf"

// ProgramHeader is one load-segment descriptor.
type ProgramHeader struct {
	Type   elf.ProgType
	Flags  elf.ProgFlag
	Off    uint64 // file offset
	Filesz uint64 // bytes stored in the file
	Vaddr  uint64 // virtual address
	Memsz  uint64 // bytes occupied in memory
	Align  uint64
}

// SectionHeader is one section descriptor.
type SectionHeader struct {
	// Index is the position in the section header table.
	Index int

	// NameOffset is the raw sh_name value: an offset into the section-name
	// string table. It is not validated.
	NameOffset uint32

	Type   elf.SectionType
	Flags  elf.SectionFlag
	Addr   uint64 // virtual address
	Offset uint64 // file offset
	Size   uint64
}

// Object is a parsed object file.
//
// For kinds other than KindELF only Kind is set.
type Object struct {
	Kind    Kind
	Class   elf.Class
	Machine elf.Machine
	Entry   uint64

	// Programs and Sections are in header-table order.
	Programs []ProgramHeader
	Sections []SectionHeader

	// SectionNames resolves SectionHeader.NameOffset.
	SectionNames StringTable
}

// SectionName returns the name of sh, or false when its name offset does
// not resolve.
func (o *Object) SectionName(sh SectionHeader) (string, bool) {
	return o.SectionNames.Lookup(sh.NameOffset)
}

// VirtualToFile translates a virtual address to a file offset using the
// file-backed part of the PT_LOAD segments. It returns false when no segment
// stores the address in the file.
func (o *Object) VirtualToFile(addr uint64) (uint64, bool) {
	off, _, ok := o.FileExtent(addr)
	return off, ok
}

// FileExtent is VirtualToFile that also returns how many file bytes the
// segment stores from addr onward.
func (o *Object) FileExtent(addr uint64) (off, n uint64, ok bool) {
	for _, p := range o.Programs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		if addr >= p.Vaddr && addr-p.Vaddr < p.Filesz {
			delta := addr - p.Vaddr
			return p.Off + delta, p.Filesz - delta, true
		}
	}
	return 0, 0, false
}
