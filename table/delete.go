package table

import (
	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/model"
)

// DeleteRange returns the deletion of [index, index+length) that keeps the
// structure of tables: a line terminator is only deleted when the two lines
// it separates are outside of tables or in the same cell. Content of the
// cells in the range is deleted, the cells remain.
func DeleteRange(t *model.Tree, index, length int) *delta.Delta {
	c := newChange()
	end := index + length
	lines := t.Lines()
	offset := 0
	for i, l := range lines {
		lineEnd := offset + l.Len()
		if lineEnd <= index {
			offset = lineEnd
			continue
		}
		if offset >= end {
			break
		}
		from, to := max(offset, index), min(lineEnd, end)
		if l.Kind == model.Block && to == lineEnd {
			var next *model.Node
			if i+1 < len(lines) {
				next = lines[i+1]
			}
			if !joinable(l, next) {
				to--
			}
		}
		if to > from {
			c.deleteAt(from, to-from)
		}
		offset = lineEnd
	}
	return c.d
}

// joinable tells whether the terminator between two lines may be deleted.
// The terminator of the last line is kept.
func joinable(l, next *model.Node) bool {
	if next == nil {
		return false
	}
	return l.Ancestor(model.TableCell) == next.Ancestor(model.TableCell)
}
