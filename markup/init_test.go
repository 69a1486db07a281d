package markup_test

import (
	"fmt"
	"strings"
	"testing"

	. "github.com/cozy/quill-go/markup"
	"github.com/cozy/quill-go/model"
	tables "github.com/cozy/quill-go/table"
	"github.com/cozy/quill-go/test/builder"
	"github.com/stretchr/testify/require"
)

type attrs = builder.Attrs

var (
	registry = builder.Registry
	doc      = builder.Doc
	p        = builder.P
	h        = builder.H
	li       = builder.Li
	bold     = builder.Bold
	cell     = builder.Cell
	line     = builder.Line
	grid     = builder.Grid
)

func newImporter() *Importer {
	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
	return NewImporter(registry, WithEngine(tables.New(tables.WithIDs(ids))))
}

func importTree(t *testing.T, markup string) *model.Tree {
	tr, err := newImporter().ImportTree(markup)
	require.NoError(t, err)
	require.NoError(t, tr.Check(), tr.String())
	return tr
}

func with(maps ...attrs) attrs {
	result := attrs{}
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}

func firstTable(tr *model.Tree) *model.Node {
	for _, n := range tr.Root.Children {
		if n.Kind == model.Table {
			return n
		}
	}
	return nil
}

func texts(tr *model.Tree) [][]string {
	var rows [][]string
	for _, row := range firstTable(tr).Children {
		var cells []string
		for _, c := range row.Children {
			cells = append(cells, strings.TrimSuffix(c.TextContent(), "\n"))
		}
		rows = append(rows, cells)
	}
	return rows
}
