package editor

import (
	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/model"
	"github.com/cozy/quill-go/transform"
)

// tableChange applies the change computed by a table operation at the
// selection, then balances the tables, as one change. Without a selection,
// or outside of a table, nothing happens.
func (s *Session) tableChange(op func(t *model.Tree, index int) (*delta.Delta, error)) (*delta.Delta, error) {
	r := s.GetSelection()
	if r == nil {
		return delta.New(), nil
	}
	return s.modify(User, func(tr *transform.Transform) error {
		change, err := op(tr.Tree, r.Index)
		if err != nil {
			return err
		}
		if err := tr.Apply(change); err != nil {
			return err
		}
		balance, err := s.engine.Balance(tr.Tree)
		if err != nil {
			return err
		}
		return tr.Apply(balance)
	})
}

func infallible(op func(t *model.Tree, index int) *delta.Delta) func(t *model.Tree, index int) (*delta.Delta, error) {
	return func(t *model.Tree, index int) (*delta.Delta, error) {
		return op(t, index), nil
	}
}

// InsertTable inserts a table of rows × cols empty cells at the caret. The
// caret is left in the first cell.
func (s *Session) InsertTable(rows, cols int) (*delta.Delta, error) {
	r := s.GetSelection()
	if r == nil {
		return delta.New(), nil
	}
	change, err := s.tableChange(func(t *model.Tree, index int) (*delta.Delta, error) {
		return s.engine.InsertTable(t, index, rows, cols)
	})
	if err != nil {
		return nil, err
	}
	s.SetSelection(&transform.Range{Index: r.Index})
	return change, nil
}

// InsertRowAbove inserts a row above the one holding the selection.
func (s *Session) InsertRowAbove() (*delta.Delta, error) {
	return s.tableChange(infallible(s.engine.InsertRowAbove))
}

// InsertRowBelow inserts a row below the one holding the selection.
func (s *Session) InsertRowBelow() (*delta.Delta, error) {
	return s.tableChange(infallible(s.engine.InsertRowBelow))
}

// InsertColumnLeft inserts a column left of the one holding the selection.
func (s *Session) InsertColumnLeft() (*delta.Delta, error) {
	return s.tableChange(infallible(s.engine.InsertColumnLeft))
}

// InsertColumnRight inserts a column right of the one holding the
// selection.
func (s *Session) InsertColumnRight() (*delta.Delta, error) {
	return s.tableChange(infallible(s.engine.InsertColumnRight))
}

// InsertHeaderRow adds a header row to the table holding the selection.
func (s *Session) InsertHeaderRow() (*delta.Delta, error) {
	return s.tableChange(s.engine.InsertHeaderRow)
}

// DeleteRow deletes the row holding the selection.
func (s *Session) DeleteRow() (*delta.Delta, error) {
	return s.tableChange(infallible(s.engine.DeleteRow))
}

// DeleteColumn deletes the column holding the selection.
func (s *Session) DeleteColumn() (*delta.Delta, error) {
	return s.tableChange(infallible(s.engine.DeleteColumn))
}

// DeleteTable deletes the table holding the selection.
func (s *Session) DeleteTable() (*delta.Delta, error) {
	return s.tableChange(infallible(s.engine.DeleteTable))
}
