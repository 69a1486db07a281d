package table

import (
	"fmt"

	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/model"
	"go.uber.org/zap"
)

// Normalize makes a table rectangular: rows shorter than the longest one
// are padded with empty cells at their end, and missing identifiers are
// generated. Cells are never removed. It fails with ErrStructuralInvariant
// when the table has no row, or a row without cells.
//
// Its signature matches model.TableNormalizer.
func (e *Engine) Normalize(table *model.Node) error {
	rows := table.Children
	if len(rows) == 0 {
		return fmt.Errorf("%w: table without cells", ErrStructuralInvariant)
	}
	for i, row := range rows {
		if len(row.Children) == 0 {
			return fmt.Errorf("%w: row %d without cells", ErrStructuralInvariant, i)
		}
	}
	g := Of(table)
	for _, row := range rows {
		if row.ID == "" {
			row.ID = e.newID()
		}
		for _, cell := range row.Children {
			if cell.ID == "" {
				cell.ID = e.newID()
			}
			if len(cell.Children) == 0 {
				cell.AppendChild(&model.Node{Kind: model.Block})
			}
		}
		if missing := g.Columns - len(row.Children); missing > 0 {
			e.logger.Debug("pad table row",
				zap.String("row", row.ID), zap.Int("cells", missing))
			for i := 0; i < missing; i++ {
				row.AppendChild(e.emptyCell(row.Header))
			}
		}
	}
	return nil
}

func (e *Engine) emptyCell(header bool) *model.Node {
	cell := &model.Node{Kind: model.TableCell, ID: e.newID(), Header: header}
	cell.AppendChild(&model.Node{Kind: model.Block})
	return cell
}

// Balance returns the change normalizing every table of the document.
// Tables that cannot be repaired are deleted.
func (e *Engine) Balance(t *model.Tree) (*delta.Delta, error) {
	balanced := t.Clone()
	root := balanced.Root
	for i := 0; i < len(root.Children); i++ {
		node := root.Children[i]
		if node.Kind != model.Table {
			continue
		}
		if err := e.Normalize(node); err != nil {
			e.logger.Warn("drop malformed table", zap.Error(err))
			root.ReplaceChildren(i, i+1)
			i--
		}
	}
	return model.Diff(t, balanced)
}
