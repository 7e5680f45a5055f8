// Package addrrange provides half-open address ranges and an ordered index
// that answers overlap and containment queries over possibly overlapping
// ranges.
package addrrange

import (
	"cmp"
	"fmt"
	"math"
	"math/bits"
)

// Range is the half-open interval [Min, Max) over 64-bit addresses.
//
// A Range with Max < Min is accepted as-is; it behaves as an empty range
// starting at Min.
type Range struct {
	Min uint64
	Max uint64
}

// New returns the range [minAddr, maxAddr).
func New(minAddr, maxAddr uint64) Range {
	return Range{Min: minAddr, Max: maxAddr}
}

// FromSize returns [start, start+size). The end saturates at math.MaxUint64
// instead of wrapping around.
func FromSize(start, size uint64) Range {
	end, carry := bits.Add64(start, size, 0)
	if carry != 0 {
		end = math.MaxUint64
	}
	return Range{Min: start, Max: end}
}

// Len returns Max-Min, or 0 when Max < Min.
func (r Range) Len() uint64 {
	if r.Max < r.Min {
		return 0
	}
	return r.Max - r.Min
}

// Empty reports whether the range covers no addresses.
func (r Range) Empty() bool {
	return r.Len() == 0
}

// Contains reports whether addr lies in [Min, Max).
func (r Range) Contains(addr uint64) bool {
	return r.Min <= addr && addr < r.Max
}

// Overlaps reports whether r and o share at least one address.
//
// An empty range is treated as the point at its Min: it overlaps any range
// containing that point, and another empty range only if both start at the
// same address.
func (r Range) Overlaps(o Range) bool {
	switch {
	case r.Empty() && o.Empty():
		return r.Min == o.Min
	case r.Empty():
		return o.Contains(r.Min)
	case o.Empty():
		return r.Contains(o.Min)
	default:
		return r.Min < o.Max && o.Min < r.Max
	}
}

// Encloses reports whether o lies entirely within r.
func (r Range) Encloses(o Range) bool {
	if o.Empty() {
		if r.Empty() {
			return r.Min == o.Min
		}
		return r.Contains(o.Min)
	}
	return r.Min <= o.Min && o.Max <= r.Max
}

// Compare orders ranges by Min, then by Max.
func Compare(a, b Range) int {
	if c := cmp.Compare(a.Min, b.Min); c != 0 {
		return c
	}
	return cmp.Compare(a.Max, b.Max)
}

// String renders the range as "0xMIN..0xMAX".
func (r Range) String() string {
	return fmt.Sprintf("%#x..%#x", r.Min, r.Max)
}
