package binmeta

import (
	"log/slog"

	"github.com/isseis/go-binmeta/internal/addrrange"
	"github.com/isseis/go-binmeta/internal/common"
	"github.com/isseis/go-binmeta/internal/objfile"
)

// Space names the coordinate space of a range collection.
type Space string

const (
	// FileSpace is byte offsets within the file.
	FileSpace Space = "file"

	// MemorySpace is virtual addresses once loaded.
	MemorySpace Space = "memory"
)

// Analysis holds the classified ranges of one object, indexed by file offset
// and by virtual address. It is immutable and safe for concurrent readers.
type Analysis struct {
	fileRanges   *addrrange.Index[MetaData]
	memoryRanges *addrrange.Index[MetaData]
}

// New analyzes obj.
//
// Program headers are recorded in both spaces, zero-length ones included.
// Sections of size zero are skipped; every other section is recorded in
// memory space, and in file space unless it is zero-filled (Tag Zero).
//
// A nil object, or one whose kind is not supported, yields an empty Analysis.
func New(obj *objfile.Object) *Analysis {
	files := addrrange.NewBuilder[MetaData]()
	memory := addrrange.NewBuilder[MetaData]()

	if obj == nil || !obj.Kind.Supported() {
		kind := objfile.KindUnknown
		if obj != nil {
			kind = obj.Kind
		}
		slog.Debug("Object kind not supported, analysis is empty", slog.String("kind", kind.String()))
		return &Analysis{fileRanges: files.Build(), memoryRanges: memory.Build()}
	}

	for _, ph := range obj.Programs {
		md := ClassifyProgram(ph)
		insert(files, FileSpace, addrrange.FromSize(ph.Off, ph.Filesz), md)
		insert(memory, MemorySpace, addrrange.FromSize(ph.Vaddr, ph.Memsz), md)
	}

	for _, sh := range obj.Sections {
		if sh.Size == 0 {
			continue
		}
		md := ClassifySection(sh)
		if name, ok := obj.SectionName(sh); ok {
			md.Name = common.Some(name)
		}
		if md.Tag != Zero {
			insert(files, FileSpace, addrrange.FromSize(sh.Offset, sh.Size), md)
		}
		insert(memory, MemorySpace, addrrange.FromSize(sh.Addr, sh.Size), md)
	}

	a := &Analysis{fileRanges: files.Build(), memoryRanges: memory.Build()}
	slog.Debug("Range analysis completed",
		"programs", len(obj.Programs),
		"sections", len(obj.Sections),
		"file_ranges", a.fileRanges.Len(),
		"memory_ranges", a.memoryRanges.Len())
	return a
}

func insert(b *addrrange.Builder[MetaData], space Space, r addrrange.Range, md MetaData) {
	slog.Debug("Range classified",
		"space", string(space),
		"range", r.String(),
		"tag", md.Tag.String(),
		"name", md.NameOr(""))
	b.Insert(r, md)
}

// FileRanges returns the records indexed by file offset.
func (a *Analysis) FileRanges() *addrrange.Index[MetaData] {
	return a.fileRanges
}

// MemoryRanges returns the records indexed by virtual address.
func (a *Analysis) MemoryRanges() *addrrange.Index[MetaData] {
	return a.memoryRanges
}

// Ranges returns the records of the given space, or nil for an unknown space.
func (a *Analysis) Ranges(space Space) *addrrange.Index[MetaData] {
	switch space {
	case FileSpace:
		return a.fileRanges
	case MemorySpace:
		return a.memoryRanges
	default:
		return nil
	}
}
