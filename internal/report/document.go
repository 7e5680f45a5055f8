// Package report turns an analysis into printable documents and renders
// them as a table, the classic line format, JSON or YAML.
package report

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/isseis/go-binmeta/internal/addrrange"
	"github.com/isseis/go-binmeta/internal/binmeta"
	"github.com/isseis/go-binmeta/internal/disasm"
	"github.com/isseis/go-binmeta/internal/objfile"
)

// Record is one classified range.
type Record struct {
	Min         string      `json:"min" yaml:"min"`
	Max         string      `json:"max" yaml:"max"`
	Size        uint64      `json:"size" yaml:"size"`
	Tag         binmeta.Tag `json:"tag" yaml:"tag"`
	Name        *string     `json:"name,omitempty" yaml:"name,omitempty"`
	Permissions *string     `json:"permissions,omitempty" yaml:"permissions,omitempty"`

	rng addrrange.Range
}

// Range returns the numeric range of the record.
func (r Record) Range() addrrange.Range {
	return r.rng
}

// NewRecord converts one index entry.
func NewRecord(rng addrrange.Range, md binmeta.MetaData) Record {
	rec := Record{
		Min:  fmt.Sprintf("%#x", rng.Min),
		Max:  fmt.Sprintf("%#x", rng.Max),
		Size: rng.Len(),
		Tag:  md.Tag,
		Name: md.Name.Ptr(),
		rng:  rng,
	}
	if seg, ok := md.Memory.Get(); ok {
		perms := seg.Permissions.String()
		rec.Permissions = &perms
	}
	return rec
}

// Ranges is the filtered record list of one space.
type Ranges struct {
	Space   binmeta.Space `json:"space" yaml:"space"`
	Records []Record      `json:"records" yaml:"records"`
}

// Lookup lists the records holding one address.
type Lookup struct {
	Space   binmeta.Space `json:"space" yaml:"space"`
	Addr    string        `json:"addr" yaml:"addr"`
	Records []Record      `json:"records" yaml:"records"`
}

// Instruction is one line of the entry-point preview.
type Instruction struct {
	Addr  string `json:"addr" yaml:"addr"`
	Bytes string `json:"bytes" yaml:"bytes"`
	Text  string `json:"text" yaml:"text"`
}

// Document is everything printed for one input file.
type Document struct {
	RunID       string        `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Path        string        `json:"path" yaml:"path"`
	Kind        string        `json:"kind" yaml:"kind"`
	Size        uint64        `json:"size" yaml:"size"`
	Digest      string        `json:"xxh64" yaml:"xxh64"`
	Machine     string        `json:"machine,omitempty" yaml:"machine,omitempty"`
	Entry       string        `json:"entry,omitempty" yaml:"entry,omitempty"`
	Ranges      []Ranges      `json:"ranges" yaml:"ranges"`
	Lookups     []Lookup      `json:"lookups,omitempty" yaml:"lookups,omitempty"`
	Disassembly []Instruction `json:"disassembly,omitempty" yaml:"disassembly,omitempty"`
}

// Options select what NewDocument includes.
type Options struct {
	// Spaces to list, in order. Empty means file then memory.
	Spaces []binmeta.Space

	// Tags keeps only records with one of these tags. Empty keeps all.
	Tags []binmeta.Tag

	// SkipEmpty drops zero-length ranges.
	SkipEmpty bool
}

func (o Options) spaces() []binmeta.Space {
	if len(o.Spaces) == 0 {
		return []binmeta.Space{binmeta.FileSpace, binmeta.MemorySpace}
	}
	return o.Spaces
}

func (o Options) keep(rng addrrange.Range, md binmeta.MetaData) bool {
	if o.SkipEmpty && rng.Empty() {
		return false
	}
	return len(o.Tags) == 0 || slices.Contains(o.Tags, md.Tag)
}

// Input is one analyzed file.
type Input struct {
	Path     string
	Data     []byte
	Object   *objfile.Object
	Analysis *binmeta.Analysis
}

// Digest returns the xxHash64 of data as 16 hex digits.
func Digest(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// NewDocument builds the document for in.
func NewDocument(runID string, in Input, opts Options) Document {
	doc := Document{
		RunID:  runID,
		Path:   in.Path,
		Kind:   objfile.KindUnknown.String(),
		Size:   uint64(len(in.Data)),
		Digest: Digest(in.Data),
	}
	if in.Object != nil {
		doc.Kind = in.Object.Kind.String()
		if in.Object.Kind == objfile.KindELF {
			doc.Machine = in.Object.Machine.String()
			doc.Entry = fmt.Sprintf("%#x", in.Object.Entry)
		}
	}

	for _, space := range opts.spaces() {
		section := Ranges{Space: space, Records: []Record{}}
		if in.Analysis != nil {
			for rng, md := range in.Analysis.Ranges(space).All() {
				if opts.keep(rng, md) {
					section.Records = append(section.Records, NewRecord(rng, md))
				}
			}
		}
		doc.Ranges = append(doc.Ranges, section)
	}
	return doc
}

// AddLookup records every range of space in a containing addr. Filters do
// not apply to lookups.
func (d *Document) AddLookup(a *binmeta.Analysis, space binmeta.Space, addr uint64) {
	lookup := Lookup{Space: space, Addr: fmt.Sprintf("%#x", addr), Records: []Record{}}
	for rng, md := range a.Ranges(space).Containing(addr) {
		lookup.Records = append(lookup.Records, NewRecord(rng, md))
	}
	d.Lookups = append(d.Lookups, lookup)
}

// SetDisassembly stores the entry-point preview.
func (d *Document) SetDisassembly(insts []disasm.Instruction) {
	d.Disassembly = make([]Instruction, 0, len(insts))
	for _, inst := range insts {
		d.Disassembly = append(d.Disassembly, Instruction{
			Addr:  fmt.Sprintf("%#x", inst.Addr),
			Bytes: inst.Hex(),
			Text:  inst.Text,
		})
	}
}
