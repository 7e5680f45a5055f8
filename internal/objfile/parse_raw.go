package objfile

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	errUnsupportedEncoding = errors.New("unsupported ELF data encoding")
	errHeaderOutOfRange    = errors.New("header table entry out of range")
	errHeaderEntryTooSmall = errors.New("header table entry size too small")
)

// rawHeader is the subset of the ELF file header both classes share.
type rawHeader struct {
	machine   elf.Machine
	entry     uint64
	phoff     uint64
	phentsize uint64
	phnum     uint64
	shoff     uint64
	shentsize uint64
	shnum     uint64
	shstrndx  uint32
}

// parseELFHeaders decodes the ELF header, the program headers and the
// section headers with encoding/binary, without the cross checks debug/elf
// applies. Section names are not resolved here, so an sh_name outside the
// name table only leaves that section unnamed.
func parseELFHeaders(data []byte) (*Object, error) {
	if len(data) < elf.EI_NIDENT {
		return nil, fmt.Errorf("%w: %d bytes", errHeaderOutOfRange, len(data))
	}

	class := elf.Class(data[elf.EI_CLASS])
	var order binary.ByteOrder
	switch elf.Data(data[elf.EI_DATA]) {
	case elf.ELFDATA2LSB:
		order = binary.LittleEndian
	case elf.ELFDATA2MSB:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedEncoding, elf.Data(data[elf.EI_DATA]))
	}

	hdr, err := readRawHeader(data, class, order)
	if err != nil {
		return nil, err
	}

	obj := &Object{
		Kind:    KindELF,
		Class:   class,
		Machine: hdr.machine,
		Entry:   hdr.entry,
	}

	for i := range hdr.phnum {
		ph, err := readRawProgram(data, class, order, hdr.phoff+i*hdr.phentsize, hdr.phentsize)
		if err != nil {
			return nil, fmt.Errorf("program header %d: %w", i, err)
		}
		obj.Programs = append(obj.Programs, ph)
	}

	shnum := hdr.shnum
	if shnum == 0 && hdr.shoff != 0 {
		// SHN_UNDEF count: the real one is in sh_size of section 0.
		first, _, err := readRawSection(data, class, order, hdr.shoff, hdr.shentsize)
		if err != nil {
			return nil, fmt.Errorf("section header 0: %w", err)
		}
		shnum = first.Size
	}

	var links []uint32
	for i := range shnum {
		sh, link, err := readRawSection(data, class, order, hdr.shoff+i*hdr.shentsize, hdr.shentsize)
		if err != nil {
			return nil, fmt.Errorf("section header %d: %w", i, err)
		}
		sh.Index = int(i)
		obj.Sections = append(obj.Sections, sh)
		links = append(links, link)
	}

	shstrndx := hdr.shstrndx
	if shstrndx == uint32(elf.SHN_XINDEX) && len(links) > 0 {
		shstrndx = links[0]
	}
	if uint64(shstrndx) < uint64(len(obj.Sections)) {
		names := obj.Sections[shstrndx]
		end := names.Offset + names.Size
		if names.Type != elf.SHT_NOBITS && end >= names.Offset && end <= uint64(len(data)) {
			obj.SectionNames = NewStringTable(data[names.Offset:end])
		}
	}

	return obj, nil
}

func readRawHeader(data []byte, class elf.Class, order binary.ByteOrder) (rawHeader, error) {
	r := bytes.NewReader(data)
	switch class {
	case elf.ELFCLASS64:
		var h elf.Header64
		if err := binary.Read(r, order, &h); err != nil {
			return rawHeader{}, fmt.Errorf("failed to read ELF header: %w", err)
		}
		return rawHeader{
			machine: elf.Machine(h.Machine), entry: h.Entry,
			phoff: h.Phoff, phentsize: uint64(h.Phentsize), phnum: uint64(h.Phnum),
			shoff: h.Shoff, shentsize: uint64(h.Shentsize), shnum: uint64(h.Shnum),
			shstrndx: uint32(h.Shstrndx),
		}, nil
	case elf.ELFCLASS32:
		var h elf.Header32
		if err := binary.Read(r, order, &h); err != nil {
			return rawHeader{}, fmt.Errorf("failed to read ELF header: %w", err)
		}
		return rawHeader{
			machine: elf.Machine(h.Machine), entry: uint64(h.Entry),
			phoff: uint64(h.Phoff), phentsize: uint64(h.Phentsize), phnum: uint64(h.Phnum),
			shoff: uint64(h.Shoff), shentsize: uint64(h.Shentsize), shnum: uint64(h.Shnum),
			shstrndx: uint32(h.Shstrndx),
		}, nil
	default:
		return rawHeader{}, fmt.Errorf("%w: %s", errUnsupportedClass, class)
	}
}

// entryReader returns a reader over the table entry at off, checking that
// the declared entry size holds a want-byte record and lies inside data.
func entryReader(data []byte, off, entsize uint64, want int) (*bytes.Reader, error) {
	if entsize < uint64(want) {
		return nil, fmt.Errorf("%w: %d < %d", errHeaderEntryTooSmall, entsize, want)
	}
	end := off + uint64(want)
	if end < off || end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: offset %#x", errHeaderOutOfRange, off)
	}
	return bytes.NewReader(data[off:end]), nil
}

func readRawProgram(data []byte, class elf.Class, order binary.ByteOrder, off, entsize uint64) (ProgramHeader, error) {
	if class == elf.ELFCLASS32 {
		var p elf.Prog32
		r, err := entryReader(data, off, entsize, binary.Size(p))
		if err != nil {
			return ProgramHeader{}, err
		}
		if err := binary.Read(r, order, &p); err != nil {
			return ProgramHeader{}, err
		}
		return ProgramHeader{
			Type: elf.ProgType(p.Type), Flags: elf.ProgFlag(p.Flags),
			Off: uint64(p.Off), Filesz: uint64(p.Filesz),
			Vaddr: uint64(p.Vaddr), Memsz: uint64(p.Memsz), Align: uint64(p.Align),
		}, nil
	}

	var p elf.Prog64
	r, err := entryReader(data, off, entsize, binary.Size(p))
	if err != nil {
		return ProgramHeader{}, err
	}
	if err := binary.Read(r, order, &p); err != nil {
		return ProgramHeader{}, err
	}
	return ProgramHeader{
		Type: elf.ProgType(p.Type), Flags: elf.ProgFlag(p.Flags),
		Off: p.Off, Filesz: p.Filesz, Vaddr: p.Vaddr, Memsz: p.Memsz, Align: p.Align,
	}, nil
}

// readRawSection also returns sh_link, which section 0 uses for SHN_XINDEX.
func readRawSection(data []byte, class elf.Class, order binary.ByteOrder, off, entsize uint64) (SectionHeader, uint32, error) {
	if class == elf.ELFCLASS32 {
		var s elf.Section32
		r, err := entryReader(data, off, entsize, binary.Size(s))
		if err != nil {
			return SectionHeader{}, 0, err
		}
		if err := binary.Read(r, order, &s); err != nil {
			return SectionHeader{}, 0, err
		}
		return SectionHeader{
			NameOffset: s.Name, Type: elf.SectionType(s.Type), Flags: elf.SectionFlag(s.Flags),
			Addr: uint64(s.Addr), Offset: uint64(s.Off), Size: uint64(s.Size),
		}, s.Link, nil
	}

	var s elf.Section64
	r, err := entryReader(data, off, entsize, binary.Size(s))
	if err != nil {
		return SectionHeader{}, 0, err
	}
	if err := binary.Read(r, order, &s); err != nil {
		return SectionHeader{}, 0, err
	}
	return SectionHeader{
		NameOffset: s.Name, Type: elf.SectionType(s.Type), Flags: elf.SectionFlag(s.Flags),
		Addr: s.Addr, Offset: s.Off, Size: s.Size,
	}, s.Link, nil
}
