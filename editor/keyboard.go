package editor

import (
	"unicode/utf8"

	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/model"
	"github.com/cozy/quill-go/registry"
	tables "github.com/cozy/quill-go/table"
	"github.com/cozy/quill-go/transform"
)

// textInsert returns the insertion of text at index: its parts take the
// inline formats, its line terminators those of the line holding index.
func textInsert(t *model.Tree, index int, text string, inline delta.AttributeMap) *delta.Delta {
	insert := delta.New()
	start := 0
	for i, r := range text {
		if r != '\n' {
			continue
		}
		insert.Insert(text[start:i], inline)
		insert.Insert("\n", lineFormatsIn(t, index))
		start = i + 1
	}
	insert.Insert(text[start:], inline)
	return insert
}

// TypeText replaces the selection with text typed by the user. The text
// takes the formats around the caret and those set with Format on it.
func (s *Session) TypeText(text string) (*delta.Delta, error) {
	r := s.GetSelection()
	if r == nil || text == "" {
		return delta.New(), nil
	}
	text = carriageReturns.Replace(text)
	pending := s.pending
	change, err := s.modify(User, func(tr *transform.Transform) error {
		if !r.Collapsed() {
			if err := tr.Apply(tables.DeleteRange(tr.Tree, r.Index, r.Length)); err != nil {
				return err
			}
		}
		insert := textInsert(tr.Tree, r.Index, text, merge(s.inheritedIn(tr.Tree, r.Index), pending))
		if r.Index >= tr.Tree.Length() {
			// After a table ending the document: a new line.
			insert.Insert("\n", nil)
		}
		return tr.Replace(r.Index, r.Index, insert)
	})
	if err != nil {
		return nil, err
	}
	s.pending = nil
	s.SetSelection(&transform.Range{Index: r.Index + utf8.RuneCountInString(text)})
	return change, nil
}

// deleteSelection deletes the content of a range, keeping the structure of
// the tables, and collapses the selection at its start.
func (s *Session) deleteSelection(r transform.Range) (*delta.Delta, error) {
	change, err := s.modify(User, func(tr *transform.Transform) error {
		return tr.Apply(tables.DeleteRange(tr.Tree, r.Index, r.Length))
	})
	if err != nil {
		return nil, err
	}
	s.SetSelection(&transform.Range{Index: r.Index})
	return change, nil
}

func (s *Session) moveCaret(index int) *delta.Delta {
	s.SetSelection(&transform.Range{Index: index})
	return delta.New()
}

// Backspace deletes the selection, or the character before the caret.
//
// At the start of a line, the line is joined to the previous one, unless
// it would merge two cells or a cell with a line outside of the table: the
// start of a cell is left as is, and on the line after a table, the caret
// goes to the end of the last cell, removing the line when it is empty.
func (s *Session) Backspace() (*delta.Delta, error) {
	r := s.GetSelection()
	if r == nil {
		return delta.New(), nil
	}
	if !r.Collapsed() {
		return s.deleteSelection(*r)
	}
	index := r.Index
	t := s.tree
	if index >= t.Length() {
		return s.moveCaret(index - 1), nil
	}
	line, offset, err := t.Line(index)
	if err != nil {
		return nil, err
	}
	if offset > 0 {
		return s.deleteBefore(index, func(tr *transform.Transform) error {
			return tr.Delete(index-1, 1)
		})
	}
	if outdent := outdentFormats(line); outdent != nil {
		return s.modify(User, func(tr *transform.Transform) error {
			return tr.FormatLine(index, 1, outdent)
		})
	}
	if index == 0 {
		return delta.New(), nil
	}
	prev, _, err := t.Line(index - 1)
	if err != nil {
		return nil, err
	}
	cell, prevCell := line.Ancestor(model.TableCell), prev.Ancestor(model.TableCell)
	switch {
	case cell != nil && cell != prevCell:
		return delta.New(), nil
	case prevCell != nil && cell == nil:
		if line.Kind != model.Block || line.ContentLen() > 0 {
			return s.moveCaret(index - 1), nil
		}
		return s.deleteBefore(index, func(tr *transform.Transform) error {
			return tr.Delete(index, 1)
		})
	case line.Kind == model.Embed:
		if prev.Kind == model.Block && prev.ContentLen() == 0 {
			return s.deleteBefore(index, func(tr *transform.Transform) error {
				return tr.Delete(index-1, 1)
			})
		}
		return s.moveCaret(index - 1), nil
	}
	return s.deleteBefore(index, func(tr *transform.Transform) error {
		if err := tr.Delete(index-1, 1); err != nil {
			return err
		}
		if prev.Kind != model.Block || prev.Len() <= 1 {
			return nil
		}
		// The joined line keeps the formats of the previous one.
		if formats := delta.DiffAttributes(line.LineAttributes(), prev.LineAttributes()); len(formats) > 0 {
			return tr.FormatLine(index-1, 1, formats)
		}
		return nil
	})
}

// deleteBefore runs a deletion and puts the caret before index.
func (s *Session) deleteBefore(index int, build func(tr *transform.Transform) error) (*delta.Delta, error) {
	change, err := s.modify(User, build)
	if err != nil {
		return nil, err
	}
	s.SetSelection(&transform.Range{Index: index - 1})
	return change, nil
}

// outdentFormats returns the formats removing a level of indentation, or
// the list, of a line.
func outdentFormats(line *model.Node) delta.AttributeMap {
	if line.Kind != model.Block {
		return nil
	}
	if indent, ok := registry.Int(line.Formats["indent"]); ok && indent > 0 {
		if indent == 1 {
			return delta.AttributeMap{"indent": nil}
		}
		return delta.AttributeMap{"indent": indent - 1}
	}
	if line.Formats["list"] != nil {
		return delta.AttributeMap{"list": nil}
	}
	return nil
}

// Delete deletes the selection, or the character after the caret. The
// structure of the tables is kept.
func (s *Session) Delete() (*delta.Delta, error) {
	r := s.GetSelection()
	if r == nil {
		return delta.New(), nil
	}
	if !r.Collapsed() {
		return s.deleteSelection(*r)
	}
	if r.Index >= s.tree.Length()-1 {
		return delta.New(), nil
	}
	return s.modify(User, func(tr *transform.Transform) error {
		return tr.Apply(tables.DeleteRange(tr.Tree, r.Index, 1))
	})
}

// Enter deletes the selection and splits the line at the caret. The new
// line has the formats of the split one, except for a header ended by the
// caret. On an empty list item, the list is removed instead. After a table
// ending the document, a new line is added.
func (s *Session) Enter() (*delta.Delta, error) {
	r := s.GetSelection()
	if r == nil {
		return delta.New(), nil
	}
	index, caret := r.Index, r.Index+1
	change, err := s.modify(User, func(tr *transform.Transform) error {
		if !r.Collapsed() {
			if err := tr.Apply(tables.DeleteRange(tr.Tree, r.Index, r.Length)); err != nil {
				return err
			}
		}
		t := tr.Tree
		if index >= t.Length() {
			caret = index
			return tr.Insert(index, "\n", nil)
		}
		line, offset, err := t.Line(index)
		if err != nil {
			return err
		}
		if line.Kind == model.Block && line.ContentLen() == 0 && line.Formats["list"] != nil {
			caret = index
			formats := delta.AttributeMap{"list": nil}
			if line.Formats["indent"] != nil {
				formats["indent"] = nil
			}
			return tr.FormatLine(index, 1, formats)
		}
		if err := tr.Insert(index, "\n", lineFormatsIn(t, index)); err != nil {
			return err
		}
		if line.Kind == model.Block && line.Formats["header"] != nil && offset == line.ContentLen() {
			return tr.FormatLine(index+1, 1, delta.AttributeMap{"header": nil})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.SetSelection(&transform.Range{Index: caret})
	return change, nil
}
