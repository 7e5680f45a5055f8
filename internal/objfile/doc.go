// Package objfile reads executable and object files into the structural
// model the range analysis works on: program headers, section headers and
// the section-name string table.
//
// Only ELF is parsed in full. Mach-O, PE and ar archives are recognized so
// callers can report them, but their Object carries no headers.
//
// # Usage
//
//	data, err := objfile.ReadFile("/usr/bin/ls")
//	if err != nil {
//	    return err
//	}
//	obj, err := objfile.Parse(data)
//	if err != nil {
//	    return err
//	}
//	for _, sh := range obj.Sections {
//	    name, _ := obj.SectionNames.Lookup(sh.NameOffset)
//	    fmt.Println(name, sh.Type)
//	}
package objfile
