package table_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/model"
	. "github.com/cozy/quill-go/table"
	"github.com/cozy/quill-go/test/builder"
	"github.com/stretchr/testify/require"
)

type attrs = builder.Attrs

var (
	doc  = builder.Doc
	p    = builder.P
	grid = builder.Grid
	cell = builder.Cell
)

// sequence returns predictable identifiers.
func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

func newEngine() *Engine {
	return New(WithIDs(sequence()))
}

func build(t *testing.T, e *Engine, parts ...interface{}) *model.Tree {
	tr, err := model.BuildFromDelta(builder.Registry, doc(parts...), model.WithTableNormalizer(e.Normalize))
	require.NoError(t, err)
	return tr
}

func apply(t *testing.T, tr *model.Tree, change *delta.Delta) {
	_, err := tr.ApplyDelta(change)
	require.NoError(t, err)
	require.NoError(t, tr.Check(), tr.String())
}

// abTable is the table [[a1, a2, a3], [b1, b2, b3]].
func abTable() []delta.Op {
	return grid(2, 3, false, nil, "a1", "a2", "a3", "b1", "b2", "b3")
}

func firstTable(tr *model.Tree) *model.Node {
	for _, n := range tr.Root.Children {
		if n.Kind == model.Table {
			return n
		}
	}
	return nil
}

// texts returns the text of the cells of the first table, row by row.
func texts(tr *model.Tree) [][]string {
	table := firstTable(tr)
	if table == nil {
		return nil
	}
	var rows [][]string
	for _, row := range table.Children {
		var cells []string
		for _, c := range row.Children {
			cells = append(cells, strings.TrimSuffix(c.TextContent(), "\n"))
		}
		rows = append(rows, cells)
	}
	return rows
}

func headers(tr *model.Tree) int {
	return Of(firstTable(tr)).Headers
}
