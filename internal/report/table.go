package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/isseis/go-binmeta/internal/binmeta"
	"github.com/isseis/go-binmeta/internal/color"
)

var tableHeader = []string{"Range", "Size", "Tag", "Name", "Perms"}

// tagColors tints the tag column.
var tagColors = map[binmeta.Tag]color.Color{
	binmeta.Meta:        color.Purple,
	binmeta.Code:        color.Green,
	binmeta.Data:        color.Blue,
	binmeta.Relocation:  color.Yellow,
	binmeta.StringTable: color.Cyan,
	binmeta.SymbolTable: color.Cyan,
	binmeta.Zero:        color.Gray,
	binmeta.ASCII:       color.Blue,
	binmeta.Unknown:     color.Red,
}

type tableRenderer struct {
	palette color.Palette
}

func (r *tableRenderer) Render(w io.Writer, docs []Document) error {
	for i, doc := range docs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := r.renderDocument(w, doc); err != nil {
			return err
		}
	}
	return nil
}

func (r *tableRenderer) renderDocument(w io.Writer, doc Document) error {
	p := r.palette
	fmt.Fprintf(w, "%s: %s, %s, xxh64 %s\n", p.Paint(color.Bold, doc.Path), doc.Kind, humanize.IBytes(doc.Size), doc.Digest)
	if doc.Machine != "" {
		fmt.Fprintf(w, "machine %s, entry %s\n", doc.Machine, doc.Entry)
	}

	for _, section := range doc.Ranges {
		fmt.Fprintf(w, "\n%s ranges (%d)\n", section.Space, len(section.Records))
		r.renderRecords(w, section.Records)
	}

	for _, lookup := range doc.Lookups {
		fmt.Fprintf(w, "\n%s %s is in %d range(s)\n", lookup.Space, lookup.Addr, len(lookup.Records))
		r.renderRecords(w, lookup.Records)
	}

	if len(doc.Disassembly) > 0 {
		fmt.Fprintf(w, "\nentry point\n")
		tw := newTable(w)
		for _, inst := range doc.Disassembly {
			tw.Append([]string{p.Paint(color.Gray, inst.Addr), inst.Bytes, inst.Text})
		}
		tw.Render()
	}
	return nil
}

func (r *tableRenderer) renderRecords(w io.Writer, records []Record) {
	if len(records) == 0 {
		return
	}
	tw := newTable(w)
	tw.SetHeader(tableHeader)
	for _, rec := range records {
		tw.Append(r.row(rec))
	}
	tw.Render()
}

func (r *tableRenderer) row(rec Record) []string {
	name, perms := "", ""
	if rec.Name != nil {
		name = *rec.Name
	}
	if rec.Permissions != nil {
		perms = *rec.Permissions
	}
	return []string{
		rec.Range().String(),
		humanize.IBytes(rec.Size),
		r.palette.Paint(tagColors[rec.Tag], rec.Tag.String()),
		name,
		perms,
	}
}

func newTable(w io.Writer) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoWrapText(false)
	tw.SetAutoFormatHeaders(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetBorder(false)
	tw.SetCenterSeparator("")
	tw.SetColumnSeparator("")
	tw.SetRowSeparator("")
	tw.SetHeaderLine(false)
	tw.SetTablePadding("  ")
	tw.SetNoWhiteSpace(true)
	return tw
}
