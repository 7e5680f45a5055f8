package report

import (
	"bufio"
	"fmt"
	"io"
)

// classicRenderer prints one line per record:
//
//	0x1000..0x2000(4095) -> Code - "PT_LOAD" : R+X
//
// The number in parentheses is the length minus one. Permissions are only
// printed for loaded records. Headers are added only when more than one
// file or space is printed.
type classicRenderer struct{}

func (classicRenderer) Render(w io.Writer, docs []Document) error {
	bw := bufio.NewWriter(w)
	for _, doc := range docs {
		if len(docs) > 1 {
			fmt.Fprintf(bw, "# %s\n", doc.Path)
		}
		for _, section := range doc.Ranges {
			if len(doc.Ranges) > 1 {
				fmt.Fprintf(bw, "# %s ranges\n", section.Space)
			}
			for _, rec := range section.Records {
				writeClassicLine(bw, rec)
			}
		}
		for _, lookup := range doc.Lookups {
			fmt.Fprintf(bw, "# %s %s\n", lookup.Space, lookup.Addr)
			for _, rec := range lookup.Records {
				writeClassicLine(bw, rec)
			}
		}
		for _, inst := range doc.Disassembly {
			fmt.Fprintf(bw, "%s: %-30s %s\n", inst.Addr, inst.Bytes, inst.Text)
		}
	}
	return bw.Flush()
}

func writeClassicLine(w io.Writer, rec Record) {
	rng := rec.Range()
	last := rng.Len()
	if last > 0 {
		last--
	}
	name := "None"
	if rec.Name != nil {
		name = *rec.Name
	}
	fmt.Fprintf(w, "%#x..%#x(%d) -> %s - %q", rng.Min, rng.Max, last, rec.Tag, name)
	if rec.Permissions != nil {
		fmt.Fprintf(w, " : %s", *rec.Permissions)
	}
	fmt.Fprintln(w)
}
