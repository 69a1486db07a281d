package editor

import (
	"github.com/cozy/quill-go/model"
	tables "github.com/cozy/quill-go/table"
	"github.com/cozy/quill-go/transform"
)

// GetSelection returns the selection, or nil when the session has none.
func (s *Session) GetSelection() *transform.Range {
	if s.selection == nil {
		return nil
	}
	r := *s.selection
	return &r
}

// SetSelection moves the selection, clamped to the document. A nil range
// removes it.
func (s *Session) SetSelection(r *transform.Range) {
	if r == nil {
		s.selection = nil
		s.pending = nil
		return
	}
	clamped := s.clamp(*r)
	if s.selection == nil || clamped.Index != s.selection.Index {
		s.pending = nil
	}
	s.selection = &clamped
}

// clamp restricts a range to the document. A caret may stand after a table
// ending the document: it is the position where a new line can be added.
func (s *Session) clamp(r transform.Range) transform.Range {
	length := s.tree.Length()
	if r.Collapsed() && r.Index >= length && s.endsWithTable() {
		return transform.Range{Index: length}
	}
	return r.Clamp(length)
}

func (s *Session) endsWithTable() bool {
	last := s.tree.Root.LastChild()
	return last != nil && last.Kind == model.Table
}

// TabNavigate moves the caret to the start of the next (or previous) cell
// of the table holding the selection. It returns false, leaving the
// selection unchanged, outside of a table.
func (s *Session) TabNavigate(dir tables.Direction) bool {
	if s.selection == nil {
		return false
	}
	index, ok := tables.TabNavigate(s.tree, s.selection.Index, dir)
	if !ok {
		return false
	}
	s.SetSelection(&transform.Range{Index: index})
	return true
}
