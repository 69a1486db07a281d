package delta

import (
	"math"
	"unicode/utf8"
)

// Embed is a non-text insert. It holds exactly one key naming the embed type
// (image, video, formula...) mapped to its value.
type Embed map[string]interface{}

// Type returns the name of the embed, or the empty string for a malformed
// embed.
func (e Embed) Type() string {
	for k := range e {
		return k
	}
	return ""
}

// OpType tells which of the three kinds of operation an Op is.
type OpType int

const (
	RetainOp OpType = iota
	InsertOp
	DeleteOp
)

func (t OpType) String() string {
	switch t {
	case InsertOp:
		return "insert"
	case DeleteOp:
		return "delete"
	default:
		return "retain"
	}
}

// Op is one operation of a Delta. Exactly one of Insert, Retain and Delete is
// set. Insert holds either a string or an Embed.
type Op struct {
	Insert     interface{}
	Retain     int
	Delete     int
	Attributes AttributeMap
}

// Type returns the kind of the operation.
func (op Op) Type() OpType {
	switch {
	case op.Insert != nil:
		return InsertOp
	case op.Delete > 0:
		return DeleteOp
	default:
		return RetainOp
	}
}

// Len is the number of document units covered by the operation: one per
// rune for text, one for an embed.
func (op Op) Len() int {
	switch {
	case op.Delete > 0:
		return op.Delete
	case op.Retain > 0:
		return op.Retain
	}
	switch ins := op.Insert.(type) {
	case string:
		return utf8.RuneCountInString(ins)
	case nil:
		return 0
	default:
		return 1
	}
}

// Text returns the inserted string, if any.
func (op Op) Text() (string, bool) {
	s, ok := op.Insert.(string)
	return s, ok
}

// Embed returns the inserted embed, if any.
func (op Op) Embed() (Embed, bool) {
	e, ok := op.Insert.(Embed)
	return e, ok
}

// Eq tests whether two operations are identical.
func (op Op) Eq(other Op) bool {
	return op.Retain == other.Retain && op.Delete == other.Delete &&
		valueEqual(op.Insert, other.Insert) &&
		op.Attributes.Eq(other.Attributes)
}

const infinity = math.MaxInt

// Iterator walks the operations of a delta, handing out pieces of at most a
// given length.
type Iterator struct {
	ops    []Op
	index  int
	offset int
}

// NewIterator returns an iterator over ops.
func NewIterator(ops []Op) *Iterator {
	return &Iterator{ops: ops}
}

// HasNext reports whether there are operations left.
func (it *Iterator) HasNext() bool {
	return it.PeekLength() < infinity
}

// Next consumes and returns an operation of at most length units. A length
// of zero or less means the rest of the current operation. Once the
// operations are exhausted, an infinite retain is returned.
func (it *Iterator) Next(length int) Op {
	if length <= 0 {
		length = infinity
	}
	if it.index >= len(it.ops) {
		return Op{Retain: infinity}
	}
	next := it.ops[it.index]
	offset := it.offset
	opLength := next.Len()
	if length >= opLength-offset {
		length = opLength - offset
		it.index++
		it.offset = 0
	} else {
		it.offset += length
	}
	if next.Delete > 0 {
		return Op{Delete: length}
	}
	result := Op{Attributes: next.Attributes}
	switch ins := next.Insert.(type) {
	case string:
		result.Insert = substr(ins, offset, length)
	case nil:
		result.Retain = length
	default:
		result.Insert = ins
	}
	return result
}

// Peek returns the current operation without consuming it.
func (it *Iterator) Peek() (Op, bool) {
	if it.index >= len(it.ops) {
		return Op{}, false
	}
	return it.ops[it.index], true
}

// PeekLength returns the remaining length of the current operation.
func (it *Iterator) PeekLength() int {
	if it.index >= len(it.ops) {
		return infinity
	}
	return it.ops[it.index].Len() - it.offset
}

// PeekType returns the type of the current operation. An exhausted iterator
// reports RetainOp.
func (it *Iterator) PeekType() OpType {
	if it.index >= len(it.ops) {
		return RetainOp
	}
	return it.ops[it.index].Type()
}

// Rest consumes and returns everything left.
func (it *Iterator) Rest() []Op {
	if !it.HasNext() {
		return nil
	}
	if it.offset == 0 {
		rest := append([]Op(nil), it.ops[it.index:]...)
		it.index = len(it.ops)
		return rest
	}
	first := it.Next(0)
	rest := append([]Op{first}, it.ops[it.index:]...)
	it.index = len(it.ops)
	return rest
}

// substr cuts a string by rune offsets.
func substr(s string, offset, length int) string {
	start := 0
	for i := 0; i < offset && start < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[start:])
		start += size
	}
	end := start
	for i := 0; i < length && end < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return s[start:end]
}

// runeIndex returns the rune index of the first occurrence of r at or after
// rune offset from, or -1.
func runeIndex(s string, r rune, from int) int {
	i := 0
	for _, c := range s {
		if i >= from && c == r {
			return i
		}
		i++
	}
	return -1
}
