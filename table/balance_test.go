package table_test

import (
	"errors"
	"testing"

	"github.com/cozy/quill-go/model"
	. "github.com/cozy/quill-go/table"
	"github.com/cozy/quill-go/test/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	e := newEngine()

	// pads the short header row
	tr := build(t, e,
		builder.HeaderCell("h", "h1", nil, "h1"),
		cell("b", "b1", nil, "b1"),
		cell("b", "b2", nil, "b2"),
	)
	assert.Equal(t, [][]string{{"h1", ""}, {"b1", "b2"}}, texts(tr))
	assert.Equal(t, 1, headers(tr))
	padded := firstTable(tr).Children[0].Children[1]
	assert.True(t, padded.Header)
	assert.Equal(t, "id1", padded.ID)
	assert.NoError(t, tr.Check())

	// never truncates
	tr = build(t, e,
		cell("r1", "c1", nil, "a"),
		cell("r2", "c1", nil, "b"),
		cell("r2", "c2", nil, "c"),
		cell("r2", "c3", nil, "d"),
		cell("r3", "c1", nil, "e"),
	)
	assert.Equal(t, [][]string{{"a", "", ""}, {"b", "c", "d"}, {"e", "", ""}}, texts(tr))

	// generates missing identifiers
	tr = build(t, e, builder.Line(attrs{"tableCellLine": map[string]interface{}{}}, "x"))
	row := firstTable(tr).Children[0]
	assert.NotEmpty(t, row.ID)
	assert.NotEmpty(t, row.Children[0].ID)
	identity := tr.ToDelta().Ops[1].Attributes["tableCellLine"]
	assert.Equal(t, map[string]interface{}{"row": row.ID, "cell": row.Children[0].ID}, identity)

	// a table without cells cannot be repaired
	err := e.Normalize(&model.Node{Kind: model.Table})
	assert.True(t, errors.Is(err, ErrStructuralInvariant))
	table := &model.Node{Kind: model.Table}
	table.AppendChild(&model.Node{Kind: model.TableRow})
	assert.True(t, errors.Is(e.Normalize(table), ErrStructuralInvariant))

	// nor a table with a row without cells
	tr = build(t, e, cell("r1", "c1", nil, "a"))
	firstTable(tr).AppendChild(&model.Node{Kind: model.TableRow, ID: "r2"})
	assert.True(t, errors.Is(e.Normalize(firstTable(tr)), ErrStructuralInvariant))
}

func TestBalance(t *testing.T) {
	e := newEngine()
	uneven := doc(
		cell("r1", "c1", nil, "a"),
		cell("r2", "c1", nil, "b"),
		cell("r2", "c2", nil, "c"),
		p("end"),
	)
	tr, err := model.BuildFromDelta(builder.Registry, uneven)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {"b", "c"}}, texts(tr))

	before := tr.ToDelta()
	change, err := e.Balance(tr)
	require.NoError(t, err)
	assert.Equal(t, 1, change.ChangeLength())

	apply(t, tr, change)
	assert.Equal(t, [][]string{{"a", ""}, {"b", "c"}}, texts(tr))
	assert.Equal(t, "id1", firstTable(tr).Children[0].Children[1].ID)
	after, err := before.Compose(change)
	require.NoError(t, err)
	assert.True(t, after.Eq(tr.ToDelta()))

	change, err = e.Balance(tr)
	require.NoError(t, err)
	assert.Empty(t, change.Ops)

	// a table with an empty row is removed
	tr = build(t, e, cell("r1", "c1", nil, "a"), p("end"))
	firstTable(tr).AppendChild(&model.Node{Kind: model.TableRow, ID: "r2"})
	before = tr.ToDelta()
	change, err = e.Balance(tr)
	require.NoError(t, err)
	after, err = before.Compose(change)
	require.NoError(t, err)
	assert.True(t, after.Eq(doc(p("end"))), after.String())
}
