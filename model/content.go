package model

import "fmt"

// allowedChildren lists the kinds each kind of node may hold.
var allowedChildren = map[Kind][]Kind{
	Root:      {Block, Embed, Table},
	Block:     {Inline, Embed},
	Table:     {TableRow},
	TableRow:  {TableCell},
	TableCell: {Block},
}

// minChildren is the minimal number of children of container nodes.
var minChildren = map[Kind]int{
	Table:     1,
	TableRow:  1,
	TableCell: 1,
}

// Check verifies that the tree is well formed: nodes hold children of the
// right kinds, containers are not empty, header rows come first, all rows
// of a table have the same number of cells, and text runs are not empty.
func (t *Tree) Check() error {
	return t.Root.Check()
}

// Check verifies the node and its descendants.
func (n *Node) Check() error {
	if n.Kind == Inline && n.Text == "" {
		return fmt.Errorf("%w: empty text run", ErrInvalidContent)
	}
	if n.Kind == Embed && len(n.Value) != 1 {
		return fmt.Errorf("%w: embed %v", ErrInvalidContent, n.Value)
	}
	if len(n.Children) < minChildren[n.Kind] {
		return fmt.Errorf("%w: empty %s", ErrInvalidContent, n.Kind)
	}
	allowed := allowedChildren[n.Kind]
	for _, child := range n.Children {
		if !containsKind(allowed, child.Kind) {
			return fmt.Errorf("%w: %s in %s", ErrInvalidContent, child.Kind, n.Kind)
		}
		if child.Parent != n {
			return fmt.Errorf("%w: %s with a wrong parent", ErrInvalidContent, child.Kind)
		}
		if err := child.Check(); err != nil {
			return err
		}
	}
	if n.Kind == Table {
		return checkGrid(n)
	}
	return nil
}

func checkGrid(table *Node) error {
	body := false
	columns := len(table.Children[0].Children)
	for _, row := range table.Children {
		if row.Header && body {
			return fmt.Errorf("%w: header row after body rows", ErrInvalidContent)
		}
		body = body || !row.Header
		if len(row.Children) != columns {
			return fmt.Errorf("%w: row with %d cells in a table of %d columns",
				ErrInvalidContent, len(row.Children), columns)
		}
		for _, cell := range row.Children {
			if cell.Header != row.Header {
				return fmt.Errorf("%w: cell and row disagree on header", ErrInvalidContent)
			}
		}
	}
	return nil
}

func containsKind(kinds []Kind, kind Kind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
