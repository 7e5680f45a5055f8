//go:build test

package objfile

import (
	"debug/elf"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isseis/go-binmeta/internal/objfile/objfiletesting"
)

func sampleImage() objfiletesting.Image {
	return objfiletesting.Image{
		Entry: 0x401000,
		Segments: []objfiletesting.Segment{
			{Type: elf.PT_LOAD, Flags: elf.PF_R | elf.PF_X, Off: 0x1000, Filesz: 0x20, Vaddr: 0x401000, Memsz: 0x20, Align: 0x1000},
			{Type: elf.PT_LOAD, Flags: elf.PF_R | elf.PF_W, Off: 0x2000, Filesz: 0x10, Vaddr: 0x402000, Memsz: 0x110, Align: 0x1000},
		},
		Sections: []objfiletesting.Section{
			{Name: ".text", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR, Addr: 0x401000, Offset: 0x1000, Size: 0x20},
			{Name: ".data", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC | elf.SHF_WRITE, Addr: 0x402000, Offset: 0x2000, Size: 0x10},
			{Name: ".bss", Type: elf.SHT_NOBITS, Flags: elf.SHF_ALLOC | elf.SHF_WRITE, Addr: 0x402010, Offset: 0x2010, Size: 0x100},
			{Name: ".comment", Type: elf.SHT_PROGBITS, Size: 0x8},
		},
	}
}

func TestParse_ELF(t *testing.T) {
	data := objfiletesting.BuildELF64(t, sampleImage())

	obj, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, KindELF, obj.Kind)
	assert.Equal(t, elf.ELFCLASS64, obj.Class)
	assert.Equal(t, elf.EM_X86_64, obj.Machine)
	assert.Equal(t, uint64(0x401000), obj.Entry)

	require.Len(t, obj.Programs, 2)
	assert.Equal(t, ProgramHeader{
		Type: elf.PT_LOAD, Flags: elf.PF_R | elf.PF_X,
		Off: 0x1000, Filesz: 0x20, Vaddr: 0x401000, Memsz: 0x20, Align: 0x1000,
	}, obj.Programs[0])

	// null section + 4 user sections + .shstrtab
	require.Len(t, obj.Sections, 6)
	assert.Equal(t, elf.SHT_NULL, obj.Sections[0].Type)

	var names []string
	for _, sh := range obj.Sections {
		name, ok := obj.SectionName(sh)
		require.True(t, ok, "section %d name should resolve", sh.Index)
		names = append(names, name)
	}
	assert.Equal(t, []string{"", ".text", ".data", ".bss", ".comment", ".shstrtab"}, names)

	bss := obj.Sections[3]
	assert.Equal(t, 3, bss.Index)
	assert.Equal(t, elf.SHT_NOBITS, bss.Type)
	assert.Equal(t, uint64(0x100), bss.Size)
	assert.Equal(t, uint64(0x402010), bss.Addr)
}

func TestParse_ELFWithoutSegments(t *testing.T) {
	data := objfiletesting.BuildELF64(t, objfiletesting.Image{
		Type: elf.ET_REL,
		Sections: []objfiletesting.Section{
			{Name: ".text", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR, Size: 4},
		},
	})

	obj, err := Parse(data)
	require.NoError(t, err)
	assert.Empty(t, obj.Programs)
	require.Len(t, obj.Sections, 3)
	name, ok := obj.SectionName(obj.Sections[1])
	assert.True(t, ok)
	assert.Equal(t, ".text", name)
}

func TestParse_BadSectionNameOffset(t *testing.T) {
	data := objfiletesting.BuildELF64(t, sampleImage())
	objfiletesting.SetSectionNameOffset(t, data, 1, 0xFFFFFF)

	obj, err := Parse(data)
	require.NoError(t, err, "an unresolvable sh_name must not fail the parse")

	assert.Equal(t, KindELF, obj.Kind)
	assert.Equal(t, elf.ELFCLASS64, obj.Class)
	assert.Equal(t, elf.EM_X86_64, obj.Machine)
	assert.Equal(t, uint64(0x401000), obj.Entry)
	require.Len(t, obj.Programs, 2)
	assert.Equal(t, ProgramHeader{
		Type: elf.PT_LOAD, Flags: elf.PF_R | elf.PF_W,
		Off: 0x2000, Filesz: 0x10, Vaddr: 0x402000, Memsz: 0x110, Align: 0x1000,
	}, obj.Programs[1])

	require.Len(t, obj.Sections, 6)
	text := obj.Sections[1]
	assert.Equal(t, 1, text.Index)
	assert.Equal(t, uint32(0xFFFFFF), text.NameOffset)
	assert.Equal(t, elf.SHT_PROGBITS, text.Type)
	assert.Equal(t, elf.SHF_ALLOC|elf.SHF_EXECINSTR, text.Flags)
	assert.Equal(t, uint64(0x401000), text.Addr)
	assert.Equal(t, uint64(0x20), text.Size)

	_, ok := obj.SectionName(text)
	assert.False(t, ok)

	var names []string
	for _, sh := range obj.Sections[2:] {
		name, ok := obj.SectionName(sh)
		require.True(t, ok, "section %d name should resolve", sh.Index)
		names = append(names, name)
	}
	assert.Equal(t, []string{".data", ".bss", ".comment", ".shstrtab"}, names)
}

func TestParse_Errors(t *testing.T) {
	t.Run("unrecognized", func(t *testing.T) {
		_, err := Parse([]byte("#!/bin/sh\n"))
		assert.ErrorIs(t, err, ErrUnrecognizedFormat)
	})

	t.Run("truncated elf", func(t *testing.T) {
		_, err := Parse([]byte("\x7fELF\x02\x01\x01\x00"))
		assert.ErrorIs(t, err, ErrMalformedELF)
	})

	t.Run("truncated pe", func(t *testing.T) {
		_, err := Parse([]byte("MZ"))
		assert.ErrorIs(t, err, ErrMalformedObject)
	})

	t.Run("truncated mach-o", func(t *testing.T) {
		_, err := Parse([]byte{0xcf, 0xfa, 0xed, 0xfe})
		assert.ErrorIs(t, err, ErrMalformedObject)
	})
}

func TestParse_Archive(t *testing.T) {
	obj, err := Parse([]byte("!<arch>\n"))
	require.NoError(t, err)
	assert.Equal(t, KindArchive, obj.Kind)
	assert.False(t, obj.Kind.Supported())
	assert.Empty(t, obj.Programs)
	assert.Empty(t, obj.Sections)
}

func TestObject_VirtualToFile(t *testing.T) {
	obj := &Object{
		Programs: []ProgramHeader{
			{Type: elf.PT_PHDR, Off: 0x40, Filesz: 0x100, Vaddr: 0x400040, Memsz: 0x100},
			{Type: elf.PT_LOAD, Off: 0x1000, Filesz: 0x20, Vaddr: 0x401000, Memsz: 0x20},
			{Type: elf.PT_LOAD, Off: 0x2000, Filesz: 0x10, Vaddr: 0x402000, Memsz: 0x110},
		},
	}

	off, ok := obj.VirtualToFile(0x401010)
	assert.True(t, ok)
	assert.Equal(t, uint64(0x1010), off)

	off, ok = obj.VirtualToFile(0x40200f)
	assert.True(t, ok)
	assert.Equal(t, uint64(0x200f), off)

	_, ok = obj.VirtualToFile(0x402010)
	assert.False(t, ok, "zero-filled tail has no file bytes")

	_, ok = obj.VirtualToFile(0x400050)
	assert.False(t, ok, "only PT_LOAD segments translate")
}

func TestObject_FileExtent(t *testing.T) {
	obj := &Object{
		Programs: []ProgramHeader{
			{Type: elf.PT_LOAD, Off: 0x2000, Filesz: 0x10, Vaddr: 0x402000, Memsz: 0x110},
		},
	}

	off, n, ok := obj.FileExtent(0x402004)
	require.True(t, ok)
	assert.Equal(t, uint64(0x2004), off)
	assert.Equal(t, uint64(0xc), n, "only the file-backed remainder counts")

	off, n, ok = obj.FileExtent(0x40200f)
	require.True(t, ok)
	assert.Equal(t, uint64(0x200f), off)
	assert.Equal(t, uint64(1), n)

	_, _, ok = obj.FileExtent(0x402010)
	assert.False(t, ok)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("regular file", func(t *testing.T) {
		path := filepath.Join(dir, "sample.elf")
		objfiletesting.WriteELF64(t, path, sampleImage())

		data, err := ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, KindELF, Detect(data))
	})

	t.Run("directory", func(t *testing.T) {
		_, err := ReadFile(dir)
		assert.ErrorIs(t, err, ErrNotRegularFile)
	})

	t.Run("symlink", func(t *testing.T) {
		target := filepath.Join(dir, "target.elf")
		objfiletesting.WriteELF64(t, target, sampleImage())
		link := filepath.Join(dir, "link.elf")
		require.NoError(t, os.Symlink(target, link))

		_, err := ReadFile(link)
		assert.Error(t, err)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(dir, "missing"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
