package binmeta

import "github.com/isseis/go-binmeta/internal/common"

// Segment describes a region that is present in memory once loaded.
type Segment struct {
	Permissions Permissions

	// Alignment is reserved; the classifier never sets it.
	Alignment common.Optional[uint64]
}

// NewSegment returns a Segment with the given permissions and no alignment.
func NewSegment(p Permissions) Segment {
	return Segment{Permissions: p}
}

// MetaData is what is known about one address range.
type MetaData struct {
	Tag Tag

	// Name is the section name or the program header type label.
	Name common.Optional[string]

	// Memory is set for regions that occupy memory at load time.
	Memory common.Optional[Segment]
}

// NameOr returns the name, or def when the range is unnamed.
func (m MetaData) NameOr(def string) string {
	return m.Name.Or(def)
}
