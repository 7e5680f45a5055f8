// Package binmeta tags the address ranges of an object file with what they
// hold and how they are mapped.
//
// Every program header and every non-empty section is classified into a Tag
// (code, zero-fill, symbol table, ...) with optional memory permissions, and
// recorded twice: once by its byte range in the file and once by its range in
// the virtual address space.
//
// # Usage
//
//	obj, err := objfile.Parse(data)
//	if err != nil {
//	    return err
//	}
//	analysis := binmeta.New(obj)
//	for r, md := range analysis.MemoryRanges().Containing(0x401000) {
//	    fmt.Println(r, md.Tag, md.NameOr("None"))
//	}
//
// # Limitations
//
// - Only ELF objects are analyzed; other kinds yield an empty Analysis
// - The analysis trusts the header tables and does not check them for consistency
package binmeta
