package model_test

import (
	"errors"
	"testing"

	"github.com/cozy/quill-go/delta"
	. "github.com/cozy/quill-go/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatsAt(t *testing.T) {
	tr := tree(p("a", bold("b")), h(1, bold("cd")))
	formats := func(index, length int) delta.AttributeMap {
		f, err := tr.FormatsAt(index, length)
		require.NoError(t, err)
		return f
	}

	// the character before a collapsed range
	assert.Empty(t, formats(1, 0))
	assert.Equal(t, delta.AttributeMap{"bold": true}, formats(2, 0))
	// the first character at a line start
	assert.Empty(t, formats(0, 0))
	assert.Equal(t, delta.AttributeMap{"bold": true, "header": 1}, formats(3, 0))
	assert.Equal(t, delta.AttributeMap{"bold": true, "header": 1}, formats(4, 0))

	// formats set on the whole range only
	assert.Equal(t, delta.AttributeMap{"bold": true}, formats(1, 4))
	assert.Empty(t, formats(0, 2))
	assert.Equal(t, delta.AttributeMap{"bold": true, "header": 1}, formats(3, 2))

	_, err := tr.FormatsAt(5, 3)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestFormatsAtSeveralValues(t *testing.T) {
	tr := tree(h(1, "a"), h(2, "b"), h(1, "c"))
	f, err := tr.FormatsAt(0, 6)
	require.NoError(t, err)
	assert.Equal(t, delta.AttributeMap{"header": []interface{}{1, 2}}, f)
}

func TestFormatsAtTable(t *testing.T) {
	tr := tree(
		cell("r", "c1", attrs{"tableWidth": "100px", "cellWidth": "20px"}, "x"),
		cell("r", "c2", attrs{"tableWidth": "100px", "cellWidth": "30px"}, "y"),
	)
	f, err := tr.FormatsAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "100px", f["tableWidth"])
	assert.Equal(t, "20px", f["cellWidth"])
	assert.Equal(t, map[string]interface{}{"row": "r", "cell": "c1"}, f["tableCellLine"])

	f, err = tr.FormatsAt(0, 3)
	require.NoError(t, err)
	assert.Equal(t, "100px", f["tableWidth"])
	assert.Equal(t, []interface{}{"20px", "30px"}, f["cellWidth"])
}
