package addrrange

import (
	"iter"

	"github.com/google/btree"
)

// btreeDegree is the branching factor of the backing B-tree.
const btreeDegree = 32

// Entry is one (range, value) record of an Index.
type Entry[V any] struct {
	Range Range
	Value V

	// seq is the insertion sequence number; it keeps records with identical
	// ranges distinct and in insertion order.
	seq uint64
}

func lessEntry[V any](a, b Entry[V]) bool {
	if c := Compare(a.Range, b.Range); c != 0 {
		return c < 0
	}
	return a.seq < b.seq
}

// Builder accumulates records for an Index. Overlapping and duplicate ranges
// are all retained. A Builder is not safe for concurrent use.
type Builder[V any] struct {
	tree    *btree.BTreeG[Entry[V]]
	next    uint64
	maxSpan uint64
}

// NewBuilder returns an empty Builder.
func NewBuilder[V any]() *Builder[V] {
	return &Builder[V]{tree: btree.NewG(btreeDegree, lessEntry[V])}
}

// Insert adds a record. Zero-length and inverted ranges are accepted.
func (b *Builder[V]) Insert(r Range, v V) {
	b.tree.ReplaceOrInsert(Entry[V]{Range: r, Value: v, seq: b.next})
	b.next++
	if l := r.Len(); l > b.maxSpan {
		b.maxSpan = l
	}
}

// Len returns the number of records inserted so far.
func (b *Builder[V]) Len() int {
	return b.tree.Len()
}

// Build freezes the records into an Index and resets the Builder.
func (b *Builder[V]) Build() *Index[V] {
	ix := &Index[V]{tree: b.tree, maxSpan: b.maxSpan}
	*b = *NewBuilder[V]()
	return ix
}

// Index is an immutable, range-ordered collection of (Range, V) records.
//
// Records are kept in a B-tree ordered by (Min, Max, insertion order). The
// index remembers the longest span it holds, so a query for records touching
// [lo, hi) only walks records whose Min lies in [lo-maxSpan, hi). Queries are
// safe for concurrent use.
type Index[V any] struct {
	tree    *btree.BTreeG[Entry[V]]
	maxSpan uint64
}

// Len returns the number of records.
func (ix *Index[V]) Len() int {
	if ix == nil || ix.tree == nil {
		return 0
	}
	return ix.tree.Len()
}

// All yields every record in range order.
func (ix *Index[V]) All() iter.Seq2[Range, V] {
	return func(yield func(Range, V) bool) {
		if ix.Len() == 0 {
			return
		}
		ix.tree.Ascend(func(e Entry[V]) bool {
			return yield(e.Range, e.Value)
		})
	}
}

// Entries returns a snapshot of every record in range order.
func (ix *Index[V]) Entries() []Entry[V] {
	out := make([]Entry[V], 0, ix.Len())
	if ix.Len() == 0 {
		return out
	}
	ix.tree.Ascend(func(e Entry[V]) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Overlapping yields, in range order, every record whose range overlaps
// probe (see Range.Overlaps).
func (ix *Index[V]) Overlapping(probe Range) iter.Seq2[Range, V] {
	limit := probe.Min
	if !probe.Empty() {
		limit = probe.Max - 1
	}
	return ix.scan(probe.Min, limit, probe.Overlaps)
}

// Containing yields every record whose range contains addr. Empty ranges
// never contain an address.
func (ix *Index[V]) Containing(addr uint64) iter.Seq2[Range, V] {
	return ix.scan(addr, addr, func(r Range) bool { return r.Contains(addr) })
}

// Enclosing yields every record whose range encloses probe.
func (ix *Index[V]) Enclosing(probe Range) iter.Seq2[Range, V] {
	return ix.scan(probe.Min, probe.Min, func(r Range) bool { return r.Encloses(probe) })
}

// scan walks the records whose Min lies in [from-maxSpan, limit] and yields
// those accepted by match.
func (ix *Index[V]) scan(from, limit uint64, match func(Range) bool) iter.Seq2[Range, V] {
	return func(yield func(Range, V) bool) {
		if ix.Len() == 0 {
			return
		}
		start := uint64(0)
		if from > ix.maxSpan {
			start = from - ix.maxSpan
		}
		pivot := Entry[V]{Range: Range{Min: start}}
		ix.tree.AscendGreaterOrEqual(pivot, func(e Entry[V]) bool {
			if e.Range.Min > limit {
				return false
			}
			if !match(e.Range) {
				return true
			}
			return yield(e.Range, e.Value)
		})
	}
}
