package objfile

import (
	"bytes"
	"debug/elf"
	"debug/pe"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	macho "github.com/blacktop/go-macho"
)

// Magic numbers of the recognized container formats.
var (
	elfMagic     = []byte("\x7fELF")
	archiveMagic = []byte("!<arch>\n")
	peMagic      = []byte("MZ")
	machoMagics  = [][]byte{
		{0xfe, 0xed, 0xfa, 0xce}, // MH_MAGIC, big endian
		{0xfe, 0xed, 0xfa, 0xcf}, // MH_MAGIC_64, big endian
		{0xce, 0xfa, 0xed, 0xfe}, // MH_MAGIC, little endian
		{0xcf, 0xfa, 0xed, 0xfe}, // MH_MAGIC_64, little endian
	}
)

var (
	errUnsupportedClass       = errors.New("unsupported ELF class")
	errSectionTableOutOfRange = errors.New("section header 0 out of range for SHN_XINDEX")
)

const (
	// shNameSize is the size of the sh_name field that starts every section header.
	shNameSize = 4

	// shLinkOffset32 and shLinkOffset64 locate sh_link inside a section header.
	shLinkOffset32 = 24
	shLinkOffset64 = 40
)

// Detect identifies the container format from the leading bytes of data.
// It does not validate anything beyond the magic number.
func Detect(data []byte) Kind {
	switch {
	case bytes.HasPrefix(data, elfMagic):
		return KindELF
	case bytes.HasPrefix(data, archiveMagic):
		return KindArchive
	case bytes.HasPrefix(data, peMagic):
		return KindPE
	}
	for _, m := range machoMagics {
		if bytes.HasPrefix(data, m) {
			return KindMachO
		}
	}
	return KindUnknown
}

// Parse parses data as an object file.
//
// ELF files are parsed in full. Mach-O and PE images are validated with their
// respective parsers and returned with only Kind set. Archives are returned
// as-is. Data with no known magic number yields ErrUnrecognizedFormat.
func Parse(data []byte) (*Object, error) {
	kind := Detect(data)
	switch kind {
	case KindELF:
		return parseELF(data)
	case KindMachO:
		mf, err := macho.NewFile(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: mach-o: %w", ErrMalformedObject, err)
		}
		_ = mf.Close()
	case KindPE:
		pf, err := pe.NewFile(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: pe: %w", ErrMalformedObject, err)
		}
		_ = pf.Close()
	case KindArchive:
	default:
		return nil, ErrUnrecognizedFormat
	}
	slog.Debug("Object kind has no structural headers to analyze", slog.String("kind", kind.String()))
	return &Object{Kind: kind}, nil
}

func parseELF(data []byte) (*Object, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		// debug/elf rejects files whose headers it cannot fully resolve, a
		// bad sh_name included. Those headers are still classifiable.
		var formatErr *elf.FormatError
		if errors.As(err, &formatErr) {
			obj, rawErr := parseELFHeaders(data)
			if rawErr == nil {
				slog.Debug("ELF headers decoded without validation", slog.Any("error", err))
				return obj, nil
			}
			slog.Debug("Raw ELF header decoding failed", slog.Any("error", rawErr))
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedELF, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("error closing ELF file", slog.Any("error", closeErr))
		}
	}()

	layout, err := readSectionLayout(data, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedELF, err)
	}

	obj := &Object{
		Kind:     KindELF,
		Class:    f.Class,
		Machine:  f.Machine,
		Entry:    f.Entry,
		Programs: make([]ProgramHeader, 0, len(f.Progs)),
		Sections: make([]SectionHeader, 0, len(f.Sections)),
	}

	for _, p := range f.Progs {
		obj.Programs = append(obj.Programs, ProgramHeader{
			Type:   p.Type,
			Flags:  p.Flags,
			Off:    p.Off,
			Filesz: p.Filesz,
			Vaddr:  p.Vaddr,
			Memsz:  p.Memsz,
			Align:  p.Align,
		})
	}

	for i, s := range f.Sections {
		obj.Sections = append(obj.Sections, SectionHeader{
			Index:      i,
			NameOffset: layout.nameOffset(data, f.ByteOrder, i),
			Type:       s.Type,
			Flags:      s.Flags,
			Addr:       s.Addr,
			Offset:     s.Offset,
			Size:       s.Size,
		})
	}

	if layout.shstrndx < uint32(len(f.Sections)) {
		names, err := f.Sections[layout.shstrndx].Data()
		if err != nil {
			slog.Warn("Section name table unreadable, sections will be unnamed", slog.Any("error", err))
		} else {
			obj.SectionNames = NewStringTable(names)
		}
	}

	return obj, nil
}

// sectionLayout is the part of the ELF header debug/elf does not expose.
type sectionLayout struct {
	shoff     uint64
	shentsize uint64
	shstrndx  uint32
}

// nameOffset returns the raw sh_name of section i, or 0 if the header lies
// outside data.
func (l sectionLayout) nameOffset(data []byte, order binary.ByteOrder, i int) uint32 {
	off := l.shoff + uint64(i)*l.shentsize
	if off+shNameSize > uint64(len(data)) || off+shNameSize < off {
		return 0
	}
	return order.Uint32(data[off : off+shNameSize])
}

// readSectionLayout reads e_shoff, e_shentsize and e_shstrndx, resolving
// SHN_XINDEX through the sh_link of section 0.
func readSectionLayout(data []byte, f *elf.File) (sectionLayout, error) {
	var l sectionLayout
	r := bytes.NewReader(data)
	linkOffset := uint64(shLinkOffset64)

	switch f.Class {
	case elf.ELFCLASS64:
		var hdr elf.Header64
		if err := binary.Read(r, f.ByteOrder, &hdr); err != nil {
			return l, fmt.Errorf("failed to read ELF header: %w", err)
		}
		l = sectionLayout{shoff: hdr.Shoff, shentsize: uint64(hdr.Shentsize), shstrndx: uint32(hdr.Shstrndx)}
	case elf.ELFCLASS32:
		var hdr elf.Header32
		if err := binary.Read(r, f.ByteOrder, &hdr); err != nil {
			return l, fmt.Errorf("failed to read ELF header: %w", err)
		}
		l = sectionLayout{shoff: uint64(hdr.Shoff), shentsize: uint64(hdr.Shentsize), shstrndx: uint32(hdr.Shstrndx)}
		linkOffset = shLinkOffset32
	default:
		return l, fmt.Errorf("%w: %s", errUnsupportedClass, f.Class)
	}

	if l.shstrndx == uint32(elf.SHN_XINDEX) {
		off := l.shoff + linkOffset
		if off+4 > uint64(len(data)) {
			return l, errSectionTableOutOfRange
		}
		l.shstrndx = f.ByteOrder.Uint32(data[off : off+4])
	}
	return l, nil
}
