package objfile

import "fmt"

// Kind identifies the container format of a file.
type Kind int

const (
	// KindUnknown is the zero Kind.
	KindUnknown Kind = iota

	// KindELF is an ELF executable, shared object or relocatable object.
	KindELF

	// KindMachO is a thin Mach-O image.
	KindMachO

	// KindPE is a PE/COFF image.
	KindPE

	// KindArchive is a Unix ar archive (static library).
	KindArchive
)

// String returns a string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindELF:
		return "elf"
	case KindMachO:
		return "mach-o"
	case KindPE:
		return "pe"
	case KindArchive:
		return "archive"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Supported reports whether objects of this kind carry structural headers
// the range analysis can use.
func (k Kind) Supported() bool {
	return k == KindELF
}
