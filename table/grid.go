// Package table maintains the tables of a document: it locates the cell
// under a position, computes the changes of the structural operations, and
// keeps every table rectangular.
//
// Operations never mutate the tree. They return the change to apply, so
// that the caller emits a single change for each operation.
package table

import (
	"github.com/cozy/quill-go/model"
)

// Grid is the rows × columns view of a table node.
type Grid struct {
	Table *model.Node
	Rows  []*model.Node
	// Number of leading header rows.
	Headers int
	// The largest number of cells in a row.
	Columns int
}

// Of computes the grid of a table node.
func Of(table *model.Node) *Grid {
	g := &Grid{Table: table, Rows: table.Children}
	leading := true
	for _, row := range table.Children {
		leading = leading && row.Header
		if leading {
			g.Headers++
		}
		if n := len(row.Children); n > g.Columns {
			g.Columns = n
		}
	}
	return g
}

// Cell returns the cell at row r and column c, or nil.
func (g *Grid) Cell(r, c int) *model.Node {
	if r < 0 || r >= len(g.Rows) || c < 0 || c >= len(g.Rows[r].Children) {
		return nil
	}
	return g.Rows[r].Children[c]
}

// Locate returns the row and column of a cell of the table.
func (g *Grid) Locate(cell *model.Node) (int, int, bool) {
	for r, row := range g.Rows {
		if c := row.IndexOfChild(cell); c >= 0 {
			return r, c, true
		}
	}
	return 0, 0, false
}

// BodyRows is the number of rows after the header group.
func (g *Grid) BodyRows() int {
	return len(g.Rows) - g.Headers
}

// Cells returns the cells in row-major order.
func (g *Grid) Cells() []*model.Node {
	var cells []*model.Node
	for _, row := range g.Rows {
		cells = append(cells, row.Children...)
	}
	return cells
}

// Position is a cell of a table, found from a document index.
type Position struct {
	Grid *Grid
	// Offset of the start of the table in the document.
	Start  int
	Row    int
	Column int
	Cell   *model.Node
}

// Table returns the table node.
func (p *Position) Table() *model.Node {
	return p.Grid.Table
}

// InHeader tells whether the cell is in a header row.
func (p *Position) InHeader() bool {
	return p.Row < p.Grid.Headers
}

// Find returns the cell holding the index.
func Find(t *model.Tree, index int) (*Position, bool) {
	r, err := t.Resolve(index)
	if err != nil {
		return nil, false
	}
	cell := r.Cell()
	if cell == nil {
		return nil, false
	}
	table := cell.Ancestor(model.Table)
	g := Of(table)
	row, column, ok := g.Locate(cell)
	if !ok {
		return nil, false
	}
	return &Position{
		Grid:   g,
		Start:  t.IndexOf(table),
		Row:    row,
		Column: column,
		Cell:   cell,
	}, true
}
