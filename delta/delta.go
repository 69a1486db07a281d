// Package delta implements the flat operation format used to describe rich
// text documents and the changes made to them.
//
// A document is a delta made only of inserts. A change is a delta of
// retains, inserts and deletes meant to be composed over a document.
package delta

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Delta is an ordered list of operations. It is kept in normal form: no
// zero-length operation, adjacent compatible operations merged and inserts
// placed before deletes at the same position.
type Delta struct {
	Ops []Op
}

// New creates a delta from the given operations, normalizing them.
func New(ops ...Op) *Delta {
	d := &Delta{}
	for _, op := range ops {
		d.Push(op)
	}
	return d
}

// Insert appends the insertion of a string or an embed. Empty strings are
// ignored.
func (d *Delta) Insert(content interface{}, attrs AttributeMap) *Delta {
	op := Op{Attributes: attrs.Copy()}
	switch c := content.(type) {
	case string:
		if c == "" {
			return d
		}
		op.Insert = c
	case Embed:
		op.Insert = Embed(deepCopy(map[string]interface{}(c)).(map[string]interface{}))
	case map[string]interface{}:
		op.Insert = Embed(deepCopy(c).(map[string]interface{}))
	default:
		return d
	}
	return d.Push(op)
}

// Retain appends a retain of n units, optionally formatting them.
func (d *Delta) Retain(n int, attrs AttributeMap) *Delta {
	if n <= 0 {
		return d
	}
	return d.Push(Op{Retain: n, Attributes: attrs.Copy()})
}

// Delete appends the deletion of n units.
func (d *Delta) Delete(n int) *Delta {
	if n <= 0 {
		return d
	}
	return d.Push(Op{Delete: n})
}

// Push appends an operation, merging it with the previous one when possible.
func (d *Delta) Push(op Op) *Delta {
	if op.Len() == 0 {
		return d
	}
	if len(op.Attributes) == 0 {
		op.Attributes = nil
	}
	index := len(d.Ops)
	if index > 0 {
		last := d.Ops[index-1]
		if op.Delete > 0 && last.Delete > 0 {
			d.Ops[index-1] = Op{Delete: last.Delete + op.Delete}
			return d
		}
		if last.Delete > 0 && op.Insert != nil {
			index--
			if index == 0 {
				d.Ops = append([]Op{op}, d.Ops...)
				return d
			}
			last = d.Ops[index-1]
		}
		if op.Attributes.Eq(last.Attributes) {
			ls, lok := last.Insert.(string)
			os, ook := op.Insert.(string)
			switch {
			case lok && ook:
				d.Ops[index-1] = Op{Insert: ls + os, Attributes: op.Attributes}
				return d
			case last.Retain > 0 && op.Retain > 0:
				d.Ops[index-1] = Op{Retain: last.Retain + op.Retain, Attributes: op.Attributes}
				return d
			}
		}
	}
	if index == len(d.Ops) {
		d.Ops = append(d.Ops, op)
		return d
	}
	d.Ops = append(d.Ops, Op{})
	copy(d.Ops[index+1:], d.Ops[index:])
	d.Ops[index] = op
	return d
}

// Chop removes a trailing plain retain.
func (d *Delta) Chop() *Delta {
	if n := len(d.Ops); n > 0 {
		last := d.Ops[n-1]
		if last.Retain > 0 && last.Attributes == nil {
			d.Ops = d.Ops[:n-1]
		}
	}
	return d
}

// Clone returns a copy of the delta that can be extended independently.
func (d *Delta) Clone() *Delta {
	return &Delta{Ops: append([]Op(nil), d.Ops...)}
}

// Length is the total length covered by the delta's operations.
func (d *Delta) Length() int {
	n := 0
	for _, op := range d.Ops {
		n += op.Len()
	}
	return n
}

// BaseLength is the length of the document a change expects: the sum of its
// retains and deletes.
func (d *Delta) BaseLength() int {
	n := 0
	for _, op := range d.Ops {
		n += op.Retain + op.Delete
	}
	return n
}

// ChangeLength is how much a change grows (or shrinks) the document.
func (d *Delta) ChangeLength() int {
	n := 0
	for _, op := range d.Ops {
		switch op.Type() {
		case InsertOp:
			n += op.Len()
		case DeleteOp:
			n -= op.Delete
		}
	}
	return n
}

// IsDocument reports whether the delta is made only of inserts.
func (d *Delta) IsDocument() bool {
	for _, op := range d.Ops {
		if op.Insert == nil {
			return false
		}
	}
	return true
}

// Eq tests whether two deltas have the same operations.
func (d *Delta) Eq(other *Delta) bool {
	if len(d.Ops) != len(other.Ops) {
		return false
	}
	for i := range d.Ops {
		if !d.Ops[i].Eq(other.Ops[i]) {
			return false
		}
	}
	return true
}

// Filter returns the operations for which fn returns true.
func (d *Delta) Filter(fn func(op Op, i int) bool) []Op {
	var result []Op
	for i, op := range d.Ops {
		if fn(op, i) {
			result = append(result, op)
		}
	}
	return result
}

// Partition splits the operations in those passing fn and the others.
func (d *Delta) Partition(fn func(op Op) bool) ([]Op, []Op) {
	var passed, failed []Op
	for _, op := range d.Ops {
		if fn(op) {
			passed = append(passed, op)
		} else {
			failed = append(failed, op)
		}
	}
	return passed, failed
}

// Slice returns the operations covering [start, end). A negative end means
// the end of the delta.
func (d *Delta) Slice(start, end int) *Delta {
	if end < 0 {
		end = infinity
	}
	result := &Delta{}
	iter := NewIterator(d.Ops)
	index := 0
	for index < end && iter.HasNext() {
		var next Op
		if index < start {
			next = iter.Next(start - index)
		} else {
			next = iter.Next(end - index)
			result.Ops = append(result.Ops, next)
		}
		index += next.Len()
	}
	return result
}

// Concat appends the operations of other.
func (d *Delta) Concat(other *Delta) *Delta {
	result := d.Clone()
	if len(other.Ops) > 0 {
		result.Push(other.Ops[0])
		result.Ops = append(result.Ops, other.Ops[1:]...)
	}
	return result
}

// Compose returns the delta equivalent to applying d then other. When d is a
// document, other must not retain or delete past its end.
func (d *Delta) Compose(other *Delta) (*Delta, error) {
	if d.IsDocument() {
		if base, length := other.BaseLength(), d.Length(); base > length {
			return nil, &LengthError{Length: length, Reach: base}
		}
	}
	return d.compose(other), nil
}

// ComposeChange composes two changes. No length is checked: a change does
// not know the length of the document it will be applied to.
func (d *Delta) ComposeChange(other *Delta) *Delta {
	return d.compose(other)
}

func (d *Delta) compose(other *Delta) *Delta {
	thisIter := NewIterator(d.Ops)
	otherIter := NewIterator(other.Ops)
	result := &Delta{}
	if first, ok := otherIter.Peek(); ok && first.Retain > 0 && first.Attributes == nil {
		firstLeft := first.Retain
		for thisIter.PeekType() == InsertOp && thisIter.PeekLength() <= firstLeft {
			firstLeft -= thisIter.PeekLength()
			result.Ops = append(result.Ops, thisIter.Next(0))
		}
		if first.Retain-firstLeft > 0 {
			otherIter.Next(first.Retain - firstLeft)
		}
	}
	for thisIter.HasNext() || otherIter.HasNext() {
		switch {
		case otherIter.PeekType() == InsertOp:
			result.Push(otherIter.Next(0))
		case thisIter.PeekType() == DeleteOp:
			result.Push(thisIter.Next(0))
		default:
			length := thisIter.PeekLength()
			if l := otherIter.PeekLength(); l < length {
				length = l
			}
			thisOp := thisIter.Next(length)
			otherOp := otherIter.Next(length)
			if otherOp.Retain > 0 {
				newOp := Op{}
				if thisOp.Retain > 0 {
					newOp.Retain = length
				} else {
					newOp.Insert = thisOp.Insert
				}
				newOp.Attributes = ComposeAttributes(thisOp.Attributes, otherOp.Attributes, thisOp.Retain > 0)
				result.Push(newOp)
				if !otherIter.HasNext() {
					for _, op := range thisIter.Rest() {
						result.Push(op)
					}
					return result.Chop()
				}
			} else if otherOp.Delete > 0 && thisOp.Retain > 0 {
				result.Push(otherOp)
			}
		}
	}
	return result.Chop()
}

const nullCharacter = "\x00"

// Diff returns the change turning document d into document other. Text is
// compared character by character and embeds by value.
func (d *Delta) Diff(other *Delta) (*Delta, error) {
	if !d.IsDocument() || !other.IsDocument() {
		return nil, ErrNotDocument
	}
	result := &Delta{}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(d.flatText(), other.flatText(), false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	thisIter := NewIterator(d.Ops)
	otherIter := NewIterator(other.Ops)
	for _, component := range diffs {
		length := utf8.RuneCountInString(component.Text)
		for length > 0 {
			opLength := 0
			switch component.Type {
			case diffmatchpatch.DiffInsert:
				opLength = min(otherIter.PeekLength(), length)
				result.Push(otherIter.Next(opLength))
			case diffmatchpatch.DiffDelete:
				opLength = min(length, thisIter.PeekLength())
				thisIter.Next(opLength)
				result.Delete(opLength)
			case diffmatchpatch.DiffEqual:
				opLength = min(thisIter.PeekLength(), otherIter.PeekLength(), length)
				thisOp := thisIter.Next(opLength)
				otherOp := otherIter.Next(opLength)
				if valueEqual(thisOp.Insert, otherOp.Insert) {
					result.Push(Op{Retain: opLength, Attributes: DiffAttributes(thisOp.Attributes, otherOp.Attributes)})
				} else {
					result.Push(otherOp).Delete(opLength)
				}
			}
			length -= opLength
		}
	}
	return result.Chop(), nil
}

func (d *Delta) flatText() string {
	var sb strings.Builder
	for _, op := range d.Ops {
		if s, ok := op.Insert.(string); ok {
			sb.WriteString(s)
		} else {
			sb.WriteString(nullCharacter)
		}
	}
	return sb.String()
}

// Invert returns the change undoing d when d is applied over base.
func (d *Delta) Invert(base *Delta) *Delta {
	inverted := &Delta{}
	baseIndex := 0
	for _, op := range d.Ops {
		switch {
		case op.Insert != nil:
			inverted.Delete(op.Len())
		case op.Retain > 0 && op.Attributes == nil:
			inverted.Retain(op.Retain, nil)
			baseIndex += op.Retain
		default:
			length := op.Delete + op.Retain
			for _, baseOp := range base.Slice(baseIndex, baseIndex+length).Ops {
				if op.Delete > 0 {
					inverted.Push(baseOp)
				} else {
					inverted.Push(Op{Retain: baseOp.Len(), Attributes: InvertAttributes(op.Attributes, baseOp.Attributes)})
				}
			}
			baseIndex += length
		}
	}
	return inverted.Chop()
}

// TransformPosition maps an index through the change. With priority, an
// insert at the index itself does not push it.
func (d *Delta) TransformPosition(index int, priority bool) int {
	iter := NewIterator(d.Ops)
	offset := 0
	for iter.HasNext() && offset <= index {
		length := iter.PeekLength()
		typ := iter.PeekType()
		iter.Next(0)
		if typ == DeleteOp {
			index -= min(length, index-offset)
			continue
		} else if typ == InsertOp && (offset < index || !priority) {
			index += length
		}
		offset += length
	}
	return index
}

// EachLine calls fn for every line of a document, with the line content
// (without its terminator) and the terminator's attributes. Iteration stops
// when fn returns false. Trailing content without a terminator is reported
// with empty attributes.
func (d *Delta) EachLine(fn func(line *Delta, attrs AttributeMap, i int) bool) {
	iter := NewIterator(d.Ops)
	line := &Delta{}
	i := 0
	for iter.HasNext() {
		if iter.PeekType() != InsertOp {
			return
		}
		op, _ := iter.Peek()
		start := op.Len() - iter.PeekLength()
		index := -1
		if s, ok := op.Insert.(string); ok {
			if at := runeIndex(s, '\n', start); at >= 0 {
				index = at - start
			}
		}
		switch {
		case index < 0:
			line.Push(iter.Next(0))
		case index > 0:
			line.Push(iter.Next(index))
		default:
			if !fn(line, iter.Next(1).Attributes, i) {
				return
			}
			i++
			line = &Delta{}
		}
	}
	if line.Length() > 0 {
		fn(line, nil, i)
	}
}

// Text returns the plain text of a document, embeds excluded.
func (d *Delta) Text() string {
	var sb strings.Builder
	for _, op := range d.Ops {
		if s, ok := op.Insert.(string); ok {
			sb.WriteString(s)
		}
	}
	return sb.String()
}
