package table_test

import (
	"testing"

	. "github.com/cozy/quill-go/table"
	"github.com/stretchr/testify/assert"
)

func TestTabNavigate(t *testing.T) {
	e := newEngine()
	// a header row and two body rows of three columns
	tr := build(t, e, p("x"), grid(3, 3, true, nil, "h1", "h2", "h3", "a1", "a2", "a3", "b1", "b2", "b3"), p("y"))
	start := 2
	cellStart := func(i int) int { return start + 3*i }

	tab := func(index int, dir Direction, expected int) {
		actual, ok := TabNavigate(tr, index, dir)
		assert.True(t, ok)
		assert.Equal(t, expected, actual, "from %d", index)
	}

	tab(cellStart(0), Forward, cellStart(1))
	tab(cellStart(0)+2, Forward, cellStart(1))
	// wraps from the end of a row to the next row
	tab(cellStart(2)+1, Forward, cellStart(3))
	// from the last cell back to the first one
	tab(cellStart(8)+2, Forward, cellStart(0))
	tab(cellStart(0), Backward, cellStart(8))
	tab(cellStart(4), Backward, cellStart(3))

	index, ok := TabNavigate(tr, 0, Forward)
	assert.False(t, ok)
	assert.Equal(t, 0, index)
}

func TestFind(t *testing.T) {
	e := newEngine()
	tr := build(t, e, p("x"), grid(3, 3, true, nil, "h1", "h2", "h3", "a1", "a2", "a3"))

	pos, ok := Find(tr, 14)
	if assert.True(t, ok) {
		assert.Equal(t, 2, pos.Start)
		assert.Equal(t, 1, pos.Row)
		assert.Equal(t, 1, pos.Column)
		assert.Equal(t, "c11", pos.Cell.ID)
		assert.False(t, pos.InHeader())
		assert.Equal(t, 3, pos.Grid.Columns)
		assert.Equal(t, 1, pos.Grid.Headers)
		assert.Equal(t, 2, pos.Grid.BodyRows())
		assert.Equal(t, pos.Cell, pos.Grid.Cell(1, 1))
		assert.Nil(t, pos.Grid.Cell(3, 0))
		assert.Len(t, pos.Grid.Cells(), 9)
	}

	_, ok = Find(tr, 1)
	assert.False(t, ok)
	_, ok = Find(tr, tr.Length())
	assert.False(t, ok)
}
