package table_test

import (
	"testing"

	"github.com/cozy/quill-go/delta"
	. "github.com/cozy/quill-go/table"
	"github.com/stretchr/testify/assert"
)

func TestDeleteRange(t *testing.T) {
	e := newEngine()
	// "1\n" "2\n" "3\n" then an empty line
	cells := func() []interface{} {
		return []interface{}{grid(1, 3, false, nil, "1", "2", "3"), p()}
	}

	// keeps the cells of a selection across cells
	tr := build(t, e, cells()...)
	change := DeleteRange(tr, 3, 2)
	assert.True(t, change.Eq(delta.New().Retain(4, nil).Delete(1)), change.String())
	apply(t, tr, change.ComposeChange(delta.New().Retain(3, nil).Insert("c", nil)))
	assert.Equal(t, [][]string{{"1", "2c", ""}}, texts(tr))

	// does not join the line after a table with the last cell
	tr = build(t, e, cells()...)
	assert.Empty(t, DeleteRange(tr, 5, 1).Ops)

	// joins lines of the same cell
	tr = build(t, e, cell("r", "c", nil, "a"), cell("r", "c", nil, "b"), p())
	change = DeleteRange(tr, 1, 1)
	assert.True(t, change.Eq(delta.New().Retain(1, nil).Delete(1)))
	apply(t, tr, change)
	assert.Equal(t, [][]string{{"ab"}}, texts(tr))

	// joins lines out of tables
	tr = build(t, e, p("ab"), p("cd"))
	assert.True(t, DeleteRange(tr, 1, 3).Eq(delta.New().Retain(1, nil).Delete(3)))

	// keeps the last terminator
	assert.True(t, DeleteRange(tr, 4, 2).Eq(delta.New().Retain(4, nil).Delete(1)))

	// a table covered by the range keeps its empty cells
	tr = build(t, e, cells()...)
	apply(t, tr, DeleteRange(tr, 0, tr.Length()))
	assert.Equal(t, [][]string{{"", "", ""}}, texts(tr))
	assert.Equal(t, 4, tr.Length())
}
