package table

import "github.com/cozy/quill-go/model"

// Direction of the tab navigation.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// TabNavigate returns the start of the cell after (or before) the one
// holding index, in row-major order. It wraps from the last cell to the
// first one and back. It returns false outside of a table.
func TabNavigate(t *model.Tree, index int, dir Direction) (int, bool) {
	pos, ok := Find(t, index)
	if !ok {
		return index, false
	}
	cells := pos.Grid.Cells()
	i := 0
	for j, cell := range cells {
		if cell == pos.Cell {
			i = j
		}
	}
	if dir == Backward {
		i = (i - 1 + len(cells)) % len(cells)
	} else {
		i = (i + 1) % len(cells)
	}
	return t.IndexOf(cells[i]), true
}
