//go:build test

// Package objfiletesting provides test helpers that synthesize ELF images.
package objfiletesting

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	elf64HeaderSize   = 64
	elf64ProgSize     = 56
	elf64SectionSize  = 64
	contentAlign      = 16
	sectionTableAlign = 8
)

// Segment describes a program header to emit.
type Segment struct {
	Type   elf.ProgType
	Flags  elf.ProgFlag
	Off    uint64
	Filesz uint64
	Vaddr  uint64
	Memsz  uint64
	Align  uint64
}

// Section describes a section header to emit.
//
// For anything but SHT_NOBITS the builder stores Size bytes in the image:
// Data when given (Size defaults to len(Data)), zeros otherwise. A zero
// Offset lets the builder place the bytes after the program headers.
type Section struct {
	Name   string
	Type   elf.SectionType
	Flags  elf.SectionFlag
	Addr   uint64
	Offset uint64
	Size   uint64
	Data   []byte
}

// Image describes a little-endian ELF64 file.
type Image struct {
	Type     elf.Type
	Machine  elf.Machine
	Entry    uint64
	Segments []Segment
	Sections []Section
}

// BuildELF64 serializes img. Section 0 is the null section and the
// section-name string table is appended as the last section.
func BuildELF64(t testing.TB, img Image) []byte {
	t.Helper()

	order := binary.LittleEndian
	buf := make([]byte, elf64HeaderSize+len(img.Segments)*elf64ProgSize)

	grow := func(end uint64) {
		if end > uint64(len(buf)) {
			buf = append(buf, make([]byte, end-uint64(len(buf)))...)
		}
	}

	for _, s := range img.Segments {
		grow(s.Off + s.Filesz)
	}

	// Explicitly placed sections first so automatic placement lands after them.
	sections := make([]Section, len(img.Sections))
	copy(sections, img.Sections)
	for i := range sections {
		s := &sections[i]
		if s.Size == 0 && s.Data != nil {
			s.Size = uint64(len(s.Data))
		}
		if s.Offset != 0 && s.Type != elf.SHT_NOBITS {
			grow(s.Offset + s.Size)
			copy(buf[s.Offset:], s.Data)
		}
	}
	for i := range sections {
		s := &sections[i]
		if s.Offset != 0 {
			continue
		}
		s.Offset = alignUp(uint64(len(buf)), contentAlign)
		if s.Type == elf.SHT_NOBITS {
			continue
		}
		grow(s.Offset + s.Size)
		copy(buf[s.Offset:], s.Data)
	}

	var names bytes.Buffer
	names.WriteByte(0)
	nameOffsets := make([]uint32, len(sections))
	for i, s := range sections {
		nameOffsets[i] = uint32(names.Len())
		names.WriteString(s.Name)
		names.WriteByte(0)
	}
	shstrtabName := uint32(names.Len())
	names.WriteString(".shstrtab")
	names.WriteByte(0)

	shstrtabOff := alignUp(uint64(len(buf)), contentAlign)
	grow(shstrtabOff + uint64(names.Len()))
	copy(buf[shstrtabOff:], names.Bytes())

	shoff := alignUp(uint64(len(buf)), sectionTableAlign)
	shnum := len(sections) + 2
	grow(shoff)

	var out bytes.Buffer
	out.Write(buf)

	headers := []elf.Section64{{}}
	for i, s := range sections {
		headers = append(headers, elf.Section64{
			Name:      nameOffsets[i],
			Type:      uint32(s.Type),
			Flags:     uint64(s.Flags),
			Addr:      s.Addr,
			Off:       s.Offset,
			Size:      s.Size,
			Addralign: 1,
		})
	}
	headers = append(headers, elf.Section64{
		Name:      shstrtabName,
		Type:      uint32(elf.SHT_STRTAB),
		Off:       shstrtabOff,
		Size:      uint64(names.Len()),
		Addralign: 1,
	})
	require.NoError(t, binary.Write(&out, order, headers))

	data := out.Bytes()

	typ := img.Type
	if typ == elf.ET_NONE {
		typ = elf.ET_EXEC
	}
	machine := img.Machine
	if machine == elf.EM_NONE {
		machine = elf.EM_X86_64
	}

	hdr := elf.Header64{
		Type:      uint16(typ),
		Machine:   uint16(machine),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     img.Entry,
		Shoff:     shoff,
		Ehsize:    elf64HeaderSize,
		Phentsize: elf64ProgSize,
		Phnum:     uint16(len(img.Segments)),
		Shentsize: elf64SectionSize,
		Shnum:     uint16(shnum),
		Shstrndx:  uint16(shnum - 1),
	}
	if len(img.Segments) > 0 {
		hdr.Phoff = elf64HeaderSize
	}
	copy(hdr.Ident[:], elf.ELFMAG)
	hdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	hdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	var head bytes.Buffer
	require.NoError(t, binary.Write(&head, order, hdr))
	for _, s := range img.Segments {
		require.NoError(t, binary.Write(&head, order, elf.Prog64{
			Type:   uint32(s.Type),
			Flags:  uint32(s.Flags),
			Off:    s.Off,
			Vaddr:  s.Vaddr,
			Paddr:  s.Vaddr,
			Filesz: s.Filesz,
			Memsz:  s.Memsz,
			Align:  s.Align,
		}))
	}
	copy(data, head.Bytes())

	// Verify it can be parsed as ELF
	_, err := elf.NewFile(bytes.NewReader(data))
	require.NoError(t, err)

	return data
}

// WriteELF64 builds img and writes it to path.
func WriteELF64(t testing.TB, path string, img Image) {
	t.Helper()

	err := os.WriteFile(path, BuildELF64(t, img), 0o644) //nolint:gosec // test helper: 0644 is intentional for test files
	require.NoError(t, err)
}

// SetSectionNameOffset overwrites sh_name of section index in an image
// produced by BuildELF64.
func SetSectionNameOffset(t testing.TB, data []byte, index int, nameOff uint32) {
	t.Helper()

	var hdr elf.Header64
	require.NoError(t, binary.Read(bytes.NewReader(data), binary.LittleEndian, &hdr))
	require.Less(t, index, int(hdr.Shnum))

	off := hdr.Shoff + uint64(index)*elf64SectionSize
	binary.LittleEndian.PutUint32(data[off:off+4], nameOff)
}

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}
