package disasm

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/isseis/go-binmeta/internal/binmeta"
	"github.com/isseis/go-binmeta/internal/objfile"
)

// Errors returned by EntryWindow.
var (
	ErrEntryNotExecutable = errors.New("entry point is not in an executable range")
	ErrEntryNotMapped     = errors.New("entry point is not backed by file bytes")
)

// EntryWindow returns the file bytes at obj's entry point, enough for n
// instructions at most. The window stops at the end of the executable memory
// record holding the entry, at the end of the segment's file bytes and at the
// end of data.
func EntryWindow(obj *objfile.Object, a *binmeta.Analysis, data []byte, n int) ([]byte, error) {
	entry := obj.Entry

	var avail uint64
	for r, md := range a.MemoryRanges().Containing(entry) {
		seg, ok := md.Memory.Get()
		if !ok || !seg.Permissions.Execute {
			continue
		}
		avail = max(avail, r.Max-entry)
	}
	if avail == 0 {
		return nil, fmt.Errorf("%w: %#x", ErrEntryNotExecutable, entry)
	}

	off, stored, ok := obj.FileExtent(entry)
	if !ok || off >= uint64(len(data)) {
		return nil, fmt.Errorf("%w: %#x", ErrEntryNotMapped, entry)
	}

	size := min(avail, stored, uint64(n)*maxInstructionLen, uint64(len(data))-off)
	slog.Debug("Entry window located",
		"entry", fmt.Sprintf("%#x", entry),
		"offset", fmt.Sprintf("%#x", off),
		"size", size)
	return data[off : off+size], nil
}

// DecodeEntry decodes up to n instructions at obj's entry point.
func DecodeEntry(obj *objfile.Object, a *binmeta.Analysis, data []byte, n int) ([]Instruction, error) {
	if n <= 0 {
		return nil, nil
	}
	d, err := NewDecoder(obj.Machine)
	if err != nil {
		return nil, err
	}
	code, err := EntryWindow(obj, a, data, n)
	if err != nil {
		return nil, err
	}
	return d.Decode(code, obj.Entry, n), nil
}
