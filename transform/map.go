package transform

import (
	"fmt"

	"github.com/cozy/quill-go/delta"
)

// Mappable is an interface. There are several things that positions can be
// mapped through. Such objects conform to this interface.
type Mappable interface {
	// Map a position through this object. When given, assoc (should be -1 or
	// 1, defaults to 1) determines with which side the position is associated,
	// which determines in which direction to move when a chunk of content is
	// inserted at the mapped position.
	Map(pos int, assoc ...int) int

	// MapResult maps a position, and returns an object containing additional
	// information about the mapping. The result's deleted field tells you
	// whether the position was deleted (completely enclosed in a deleted
	// range) during the mapping. When content on only one side is deleted, the
	// position itself is only considered deleted when assoc points in the
	// direction of the deleted content.
	MapResult(pos int, assoc ...int) *MapResult
}

// MapResult is an object representing a mapped position with extra
// information.
type MapResult struct {
	// The mapped version of the position.
	Pos int
	// Tells you whether the position was deleted, that is, whether the change
	// removed its surroundings from the document.
	Deleted bool
}

// NewMapResult is the constructor for MapResult
func NewMapResult(pos int, deleted ...bool) *MapResult {
	d := false
	if len(deleted) > 0 {
		d = deleted[0]
	}
	return &MapResult{Pos: pos, Deleted: d}
}

// StepMap is a map describing the deletions and insertions made by a change,
// which can be used to find the correspondence between offsets in the
// document before the change and the same offsets after it.
type StepMap struct {
	Ranges   []int
	Inverted bool
}

// NewStepMap creates a position map. The modifications to the document are
// represented as an array of numbers, in which each group of three represents
// a modified chunk as [start, oldSize, newSize].
func NewStepMap(ranges []int, inverted ...bool) *StepMap {
	inv := false
	if len(inverted) > 0 {
		inv = inverted[0]
	}
	return &StepMap{Ranges: ranges, Inverted: inv}
}

// MapOf builds the position map of a change delta. Inserts and deletes at
// the same offset are grouped in a single chunk.
func MapOf(change *delta.Delta) *StepMap {
	var ranges []int
	pos := 0
	grow := func(oldSize, newSize int) {
		n := len(ranges)
		if n > 0 && ranges[n-3]+ranges[n-2] == pos {
			ranges[n-2] += oldSize
			ranges[n-1] += newSize
			return
		}
		ranges = append(ranges, pos, oldSize, newSize)
	}
	for _, op := range change.Ops {
		switch op.Type() {
		case delta.RetainOp:
			pos += op.Len()
		case delta.InsertOp:
			grow(0, op.Len())
		case delta.DeleteOp:
			grow(op.Len(), 0)
			pos += op.Len()
		}
	}
	if len(ranges) == 0 {
		return EmptyStepMap
	}
	return NewStepMap(ranges)
}

// MapResult is part of the Mappable interface.
func (sm *StepMap) MapResult(pos int, assoc ...int) *MapResult {
	return sm.mapPos(pos, assocOf(assoc))
}

// Map is part of the Mappable interface.
func (sm *StepMap) Map(pos int, assoc ...int) int {
	return sm.mapPos(pos, assocOf(assoc)).Pos
}

func assocOf(assoc []int) int {
	if len(assoc) > 0 {
		return assoc[0]
	}
	return 1
}

func (sm *StepMap) mapPos(pos, assoc int) *MapResult {
	diff := 0
	oldIndex, newIndex := 1, 2
	if sm.Inverted {
		oldIndex, newIndex = 2, 1
	}
	for i := 0; i < len(sm.Ranges); i += 3 {
		start := sm.Ranges[i]
		if sm.Inverted {
			start -= diff
		}
		if start > pos {
			break
		}
		oldSize := sm.Ranges[i+oldIndex]
		newSize := sm.Ranges[i+newIndex]
		end := start + oldSize
		if pos <= end {
			var side int
			switch {
			case oldSize == 0:
				side = assoc
			case pos == start:
				side = -1
			case pos == end:
				side = 1
			default:
				side = assoc
			}
			result := start + diff
			if side >= 0 {
				result += newSize
			}
			deleted := pos != end
			if assoc < 0 {
				deleted = pos != start
			}
			return NewMapResult(result, deleted)
		}
		diff += newSize - oldSize
	}
	return NewMapResult(pos + diff)
}

// Invert creates an inverted version of this map. The result can be used to
// map offsets in the changed document back to the original one.
func (sm *StepMap) Invert() *StepMap {
	return NewStepMap(sm.Ranges, !sm.Inverted)
}

func (sm *StepMap) String() string {
	prefix := ""
	if sm.Inverted {
		prefix = "-"
	}
	return fmt.Sprintf("%s%v", prefix, sm.Ranges)
}

// EmptyStepMap is an empty StepMap.
var EmptyStepMap = NewStepMap(nil)

var _ Mappable = &StepMap{}

// Mapping is a sequence of step maps, applied in order.
type Mapping struct {
	Maps []*StepMap
}

// NewMapping creates a mapping from the given maps.
func NewMapping(maps ...*StepMap) *Mapping {
	return &Mapping{Maps: maps}
}

// AppendMap adds a step map at the end of the mapping.
func (m *Mapping) AppendMap(sm *StepMap) {
	m.Maps = append(m.Maps, sm)
}

// AppendMapping adds all the maps of another mapping.
func (m *Mapping) AppendMapping(other *Mapping) {
	m.Maps = append(m.Maps, other.Maps...)
}

// Invert returns a mapping going from the last document back to the first.
func (m *Mapping) Invert() *Mapping {
	inverted := make([]*StepMap, len(m.Maps))
	for i, sm := range m.Maps {
		inverted[len(m.Maps)-1-i] = sm.Invert()
	}
	return NewMapping(inverted...)
}

// Map is part of the Mappable interface.
func (m *Mapping) Map(pos int, assoc ...int) int {
	return m.MapResult(pos, assoc...).Pos
}

// MapResult is part of the Mappable interface. The position is deleted if
// any of the maps deleted it.
func (m *Mapping) MapResult(pos int, assoc ...int) *MapResult {
	deleted := false
	for _, sm := range m.Maps {
		result := sm.MapResult(pos, assoc...)
		pos = result.Pos
		deleted = deleted || result.Deleted
	}
	return NewMapResult(pos, deleted)
}

var _ Mappable = &Mapping{}
