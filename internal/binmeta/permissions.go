package binmeta

import (
	"debug/elf"
	"strings"
)

// Permissions are the access rights of a loaded region.
type Permissions struct {
	Read    bool
	Write   bool
	Execute bool
}

// String renders the permissions flag by flag: "R" if readable, "W" if
// writable, then "+X" if executable. No permissions render as "".
func (p Permissions) String() string {
	var sb strings.Builder
	if p.Read {
		sb.WriteString("R")
	}
	if p.Write {
		sb.WriteString("W")
	}
	if p.Execute {
		sb.WriteString("+X")
	}
	return sb.String()
}

// programPermissions maps PF_R, PF_W and PF_X.
func programPermissions(flags elf.ProgFlag) Permissions {
	return Permissions{
		Read:    flags&elf.PF_R != 0,
		Write:   flags&elf.PF_W != 0,
		Execute: flags&elf.PF_X != 0,
	}
}

// sectionPermissions maps SHF_ALLOC to read, SHF_WRITE to write and
// SHF_EXECINSTR to execute.
func sectionPermissions(flags elf.SectionFlag) Permissions {
	return Permissions{
		Read:    flags&elf.SHF_ALLOC != 0,
		Write:   flags&elf.SHF_WRITE != 0,
		Execute: flags&elf.SHF_EXECINSTR != 0,
	}
}
