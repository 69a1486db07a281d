package transform

import "fmt"

// Range is a selection over document offsets. A zero length is a caret.
type Range struct {
	Index  int
	Length int
}

// NewRange builds a range from two offsets in any order.
func NewRange(from, to int) Range {
	if to < from {
		from, to = to, from
	}
	return Range{Index: from, Length: to - from}
}

// End returns the offset right after the range.
func (r Range) End() int {
	return r.Index + r.Length
}

// Collapsed tells if the range is a caret.
func (r Range) Collapsed() bool {
	return r.Length == 0
}

// Contains tells if an offset is inside the range, its end included.
func (r Range) Contains(pos int) bool {
	return pos >= r.Index && pos <= r.End()
}

// Clamp restricts the range to a document of the given length. The last
// offset of a document is its final line terminator, so a caret can not go
// past length-1.
func (r Range) Clamp(length int) Range {
	limit := length - 1
	if limit < 0 {
		limit = 0
	}
	from, to := r.Index, r.End()
	if from < 0 {
		from = 0
	}
	if from > limit {
		from = limit
	}
	if to > length {
		to = length
	}
	if to < from || r.Collapsed() {
		to = from
	}
	return Range{Index: from, Length: to - from}
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.Index, r.Length)
}

// MapRange maps a range through a change. Both boundaries move with assoc
// (see Mappable). Deleted content collapses to the boundary that survives,
// so a range fully deleted becomes a caret where the content was.
func MapRange(r Range, mapping Mappable, assoc ...int) Range {
	from := mapping.Map(r.Index, assoc...)
	if r.Collapsed() {
		return Range{Index: from}
	}
	to := mapping.Map(r.End(), assoc...)
	if to < from {
		to = from
	}
	return Range{Index: from, Length: to - from}
}
