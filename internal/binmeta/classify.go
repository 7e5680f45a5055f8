package binmeta

import (
	"debug/elf"

	"github.com/isseis/go-binmeta/internal/common"
	"github.com/isseis/go-binmeta/internal/objfile"
)

// ClassifyProgram derives the MetaData of a program header. The name is the
// canonical label of the header type, e.g. "PT_LOAD". Only PT_LOAD segments
// carry a memory Segment.
func ClassifyProgram(ph objfile.ProgramHeader) MetaData {
	md := MetaData{
		Tag:  Unknown,
		Name: common.Some(ph.Type.String()),
	}
	switch ph.Type {
	case elf.PT_PHDR, elf.PT_DYNAMIC:
		md.Tag = Meta
	case elf.PT_INTERP, elf.PT_NOTE:
		md.Tag = ASCII
	case elf.PT_LOAD:
		md.Tag = Code
		md.Memory = common.Some(NewSegment(programPermissions(ph.Flags)))
	}
	return md
}

// ClassifySection derives the MetaData of a section header. The name is left
// unset; it lives in the section-name string table. SHT_NOBITS, SHT_PROGBITS,
// SHT_INIT_ARRAY and SHT_FINI_ARRAY sections carry a memory Segment.
func ClassifySection(sh objfile.SectionHeader) MetaData {
	md := MetaData{Tag: Unknown}
	switch sh.Type {
	case elf.SHT_NOTE:
		md.Tag = ASCII
	case elf.SHT_REL, elf.SHT_RELA:
		md.Tag = Relocation
	case elf.SHT_DYNAMIC:
		md.Tag = Meta
	case elf.SHT_SYMTAB, elf.SHT_DYNSYM:
		md.Tag = SymbolTable
	case elf.SHT_STRTAB:
		md.Tag = StringTable
	case elf.SHT_NOBITS:
		md.Tag = Zero
		md.Memory = common.Some(NewSegment(sectionPermissions(sh.Flags)))
	case elf.SHT_PROGBITS, elf.SHT_INIT_ARRAY, elf.SHT_FINI_ARRAY:
		md.Tag = Code
		md.Memory = common.Some(NewSegment(sectionPermissions(sh.Flags)))
	}
	return md
}
