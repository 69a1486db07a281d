package model

import (
	"errors"
	"fmt"

	"github.com/cozy/quill-go/delta"
	"go.uber.org/zap"
)

var (
	// ErrOutOfRange is returned for a position outside of the document.
	ErrOutOfRange = errors.New("model: position out of range")
	// ErrInvalidContent is returned by Check for a malformed tree.
	ErrInvalidContent = errors.New("model: invalid content")
)

// ReplaceError is returned when a change cannot be applied to the tree. The
// tree is left untouched.
type ReplaceError struct {
	Message string
	Err     error
}

// NewReplaceError is the constructor for ReplaceError.
func NewReplaceError(err error, message string, args ...interface{}) *ReplaceError {
	return &ReplaceError{Message: fmt.Sprintf(message, args...), Err: err}
}

// Error returns the error message.
func (e *ReplaceError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ReplaceError) Unwrap() error {
	return e.Err
}

// ApplyDelta applies a change to the tree. The change is validated before
// anything is touched: a change retaining or deleting past the end of the
// document fails with delta.ErrLengthMismatch.
//
// Only the top-level nodes around the change are rebuilt, and the blocks
// left unchanged keep their identity. Formats and embeds unknown to the
// registry are dropped and tables are normalized. The returned delta is the
// change that was effectively applied, repairs included.
func (t *Tree) ApplyDelta(change *delta.Delta) (*delta.Delta, error) {
	old := t.ToDelta()
	length := old.Length()
	if reach := change.BaseLength(); reach > length {
		return nil, NewReplaceError(&delta.LengthError{Length: length, Reach: reach}, "apply change")
	}
	start, end, touched := touchedRange(change)
	if !touched {
		return delta.New(), nil
	}
	doc, err := old.Compose(change)
	if err != nil {
		return nil, NewReplaceError(err, "apply change")
	}

	root := t.Root
	from, _ := root.FindIndex(start)
	to, _ := root.FindIndex(end)
	if to < len(root.Children) {
		to++
	}
	// Neighbours may merge with the changed lines: a paragraph turned into
	// a cell line joins the tables around it.
	if from > 0 {
		from--
	}
	if to < len(root.Children) {
		to++
	}
	oldStart := root.ChildOffset(from)
	oldEnd := root.ChildOffset(to)
	newEnd := oldEnd + change.ChangeLength()
	if to == len(root.Children) {
		newEnd = doc.Length()
	}
	segment := doc.Slice(oldStart, newEnd)

	nodes := t.buildNodes(t.splitLines(segment))
	nodes = t.normalizeTables(nodes)
	if len(nodes) == 0 && from == 0 && to == len(root.Children) {
		// the document always ends with a line
		nodes = []*Node{{Kind: Block}}
	}
	reuseLines(root.Children[from:to], nodes)

	rebuilt := delta.New()
	for _, node := range nodes {
		node.writeDelta(rebuilt)
	}
	effective := change
	repair, err := segment.Diff(rebuilt)
	if err != nil {
		return nil, NewReplaceError(err, "repair change")
	}
	if len(repair.Ops) > 0 {
		t.logger.Debug("change repaired", zap.Stringer("repair", repair))
		effective = change.ComposeChange(delta.New().Retain(oldStart, nil).Concat(repair))
	}
	root.ReplaceChildren(from, to, nodes...)
	return effective, nil
}

// touchedRange returns the range of the old document affected by a change.
// Plain retains do not count.
func touchedRange(change *delta.Delta) (start, end int, ok bool) {
	index := 0
	start = -1
	mark := func(from, to int) {
		if start < 0 {
			start = from
		}
		end = to
	}
	for _, op := range change.Ops {
		switch op.Type() {
		case delta.InsertOp:
			mark(index, index)
		case delta.DeleteOp:
			mark(index, index+op.Delete)
			index += op.Delete
		default:
			if op.Attributes != nil {
				mark(index, index+op.Retain)
			}
			index += op.Retain
		}
	}
	return start, end, start >= 0
}

// normalizeTables runs the table normalizer, and drops the tables it could
// not repair.
func (t *Tree) normalizeTables(nodes []*Node) []*Node {
	if t.normalize == nil {
		return nodes
	}
	result := nodes[:0]
	for _, node := range nodes {
		if node.Kind == Table {
			if err := t.normalize(node); err != nil {
				t.logger.Warn("drop malformed table", zap.Error(err))
				continue
			}
		}
		result = append(result, node)
	}
	return result
}

// reuseLines puts back the old blocks in place of the rebuilt blocks that
// are identical, so that unchanged lines keep their identity.
func reuseLines(oldNodes, newNodes []*Node) {
	var oldLines []*Node
	for _, n := range oldNodes {
		for _, l := range n.Lines() {
			if l.Kind == Block {
				oldLines = append(oldLines, l)
			}
		}
	}
	j := 0
	match := func(nl *Node) *Node {
		for k := j; k < len(oldLines); k++ {
			if oldLines[k].Eq(nl) {
				j = k + 1
				return oldLines[k]
			}
		}
		return nil
	}
	for i, n := range newNodes {
		if n.Kind == Block {
			if old := match(n); old != nil {
				old.Parent = nil
				newNodes[i] = old
			}
			continue
		}
		for _, nl := range n.Lines() {
			if nl.Kind != Block {
				continue
			}
			if old := match(nl); old != nil {
				parent := nl.Parent
				parent.Children[parent.IndexOfChild(nl)] = old
				old.Parent = parent
			}
		}
	}
}
