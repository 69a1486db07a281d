package model_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/cozy/quill-go/delta"
	. "github.com/cozy/quill-go/model"
	"github.com/cozy/quill-go/test/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDelta(t *testing.T) {
	apply := func(before *delta.Delta, change *delta.Delta, after *delta.Delta) {
		tr := build(before)
		_, err := tr.ApplyDelta(change)
		if assert.NoError(t, err) {
			actual := tr.ToDelta()
			assert.True(t, actual.Eq(after), "%s != %s", actual, after)
			assert.NoError(t, tr.Check())
			assert.True(t, tr.Root.Eq(build(after).Root), "%s", tr)
		}
	}

	// inserts text
	apply(doc(p("ab")),
		delta.New().Retain(1, nil).Insert("x", nil),
		doc(p("axb")))

	// splits a line
	apply(doc(p("abcd")),
		delta.New().Retain(2, nil).Insert("\n", nil),
		doc(p("ab"), p("cd")))

	// joins two lines
	apply(doc(p("ab"), h(1, "cd")),
		delta.New().Retain(2, nil).Delete(1),
		doc(h(1, "abcd")))

	// formats a line
	apply(doc(p("ab"), p("cd")),
		delta.New().Retain(5, nil).Retain(1, attrs{"header": 2}),
		doc(p("ab"), h(2, "cd")))

	// formats text across lines
	apply(doc(p("ab"), p("cd")),
		delta.New().Retain(1, nil).Retain(3, attrs{"bold": true}),
		doc(p("a", bold("b")), line(nil, bold("c"), "d")))

	// turns a paragraph into a line of the previous cell
	apply(doc(grid(1, 1, false, nil, "a"), p("b")),
		delta.New().Retain(3, nil).Retain(1, builder.CellAttrs("r0", "c00", false)),
		doc(grid(1, 1, false, nil, "a"), cell("r0", "c00", nil, "b")))

	// deletes a whole table
	apply(doc(p("a"), grid(1, 2, false, nil, "x"), p("b")),
		delta.New().Retain(2, nil).Delete(3),
		doc(p("a"), p("b")))

	// inserts a block embed
	apply(doc(p("ab")),
		delta.New().Retain(3, nil).Insert(delta.Embed{"video": "v"}, nil),
		doc(p("ab"), video("v")))
}

func TestApplyDeltaKeepsUnchangedLines(t *testing.T) {
	tr := tree(p("a"), p("b"), p("c"), grid(1, 2, false, nil, "x", "y"), p("d"))
	first := tr.Root.Children[0]
	third := tr.Root.Children[2]
	cellLine := tr.Lines()[4]

	_, err := tr.ApplyDelta(delta.New().Retain(4, nil).Insert("z", nil))
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nzc\nx\ny\nd\n", tr.Root.TextContent())
	assert.Same(t, first, tr.Root.Children[0])
	assert.NotSame(t, third, tr.Root.Children[2])
	assert.Same(t, cellLine, tr.Lines()[4])
	assert.Equal(t, tr.Root, first.Parent)
	assert.NoError(t, tr.Check())
}

func TestApplyDeltaErrors(t *testing.T) {
	tr := tree(p("ab"))

	_, err := tr.ApplyDelta(delta.New().Retain(4, nil))
	assert.True(t, errors.Is(err, delta.ErrLengthMismatch), "%v", err)
	var lengthErr *delta.LengthError
	if assert.True(t, errors.As(err, &lengthErr)) {
		assert.Equal(t, 3, lengthErr.Length)
		assert.Equal(t, 4, lengthErr.Reach)
	}

	_, err = tr.ApplyDelta(delta.New().Retain(2, nil).Delete(2))
	assert.True(t, errors.Is(err, delta.ErrLengthMismatch))
	assert.Equal(t, "ab\n", tr.Root.TextContent())
}

func TestApplyDeltaEffectiveChange(t *testing.T) {
	// content after the last line gets a terminator
	tr := tree(p("ab"))
	effective, err := tr.ApplyDelta(delta.New().Retain(3, nil).Insert("!", nil))
	require.NoError(t, err)
	assert.Equal(t, "ab\n!\n", tr.Root.TextContent())
	assert.True(t, effective.Eq(delta.New().Retain(3, nil).Insert("!\n", nil)), effective.String())

	// unknown formats are dropped
	tr = tree(p("ab"))
	effective, err = tr.ApplyDelta(delta.New().Insert("x", attrs{"unknown": true, "bold": true}))
	require.NoError(t, err)
	assert.True(t, effective.Eq(delta.New().Insert("x", attrs{"bold": true})), effective.String())
	assert.True(t, tr.ToDelta().Eq(doc(bold("x"), p("ab"))))

	// a plain retain changes nothing
	effective, err = tr.ApplyDelta(delta.New().Retain(2, nil))
	require.NoError(t, err)
	assert.Empty(t, effective.Ops)

	// the effective change turns the old document into the new one
	tr = tree(p("a"), grid(1, 2, false, nil, "x"), p("b"))
	before := tr.ToDelta()
	effective, err = tr.ApplyDelta(delta.New().Retain(2, nil).Insert("y", attrs{"foo": "bar"}))
	require.NoError(t, err)
	after, err := before.Compose(effective)
	require.NoError(t, err)
	assert.True(t, after.Eq(tr.ToDelta()), "%s != %s", after, tr.ToDelta())
}

func TestApplyDeltaLeavingTable(t *testing.T) {
	// the last cell joins the paragraph after the table
	tr := tree(grid(1, 2, false, nil, "a1", "a2"), p("y"))
	before := tr.ToDelta()
	effective, err := tr.ApplyDelta(delta.New().Retain(5, nil).Delete(2))
	require.NoError(t, err)
	assert.True(t, tr.ToDelta().Eq(doc(grid(1, 1, false, nil, "a1"), p("a2"))), tr.ToDelta().String())
	after, err := before.Compose(effective)
	require.NoError(t, err)
	assert.True(t, after.Eq(tr.ToDelta()), "%s != %s", after, tr.ToDelta())
	assert.Nil(t, tr.Root.LastChild().Ancestor(TableCell))
}

func TestApplyDeltaEmptiesDocument(t *testing.T) {
	tr := tree(p("x1"), p("y"))
	effective, err := tr.ApplyDelta(delta.New().Delete(5))
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Length())
	assert.True(t, tr.ToDelta().Eq(doc(p())), tr.ToDelta().String())
	assert.True(t, effective.Eq(delta.New().Insert("\n", nil).Delete(5)), effective.String())
	assert.NoError(t, tr.Check())

	tr = tree(grid(2, 2, false, nil, "a", "b", "c", "d"))
	_, err = tr.ApplyDelta(delta.New().Delete(tr.Length()))
	require.NoError(t, err)
	assert.True(t, tr.ToDelta().Eq(doc(p())), tr.ToDelta().String())
}

// randomChange returns a change valid on a document of the given length.
func randomChange(rnd *rand.Rand, length int) *delta.Delta {
	inserts := []string{"x", "\n", "ab\n", "\n\n"}
	formats := []attrs{nil, {"bold": true}, {"header": 2}, builder.CellAttrs("r9", "c99", false)}
	change := delta.New()
	pos := 0
	for i := 0; i < 1+rnd.Intn(4); i++ {
		left := length - pos
		switch rnd.Intn(3) {
		case 0:
			if left > 0 {
				n := 1 + rnd.Intn(left)
				change.Retain(n, formats[rnd.Intn(len(formats))])
				pos += n
			}
		case 1:
			if left > 0 {
				n := 1 + rnd.Intn(min(left, 4))
				change.Delete(n)
				pos += n
			}
		default:
			change.Insert(inserts[rnd.Intn(len(inserts))], formats[rnd.Intn(len(formats))])
		}
	}
	return change
}

func TestApplyDeltaComposes(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		tr := tree(p("a"), grid(2, 2, false, nil, "a1", "a2", "b1", "b2"), h(1, "y"), p("z"))
		for j := 0; j < 3; j++ {
			before := tr.ToDelta()
			change := randomChange(rnd, before.Length())
			effective, err := tr.ApplyDelta(change)
			require.NoError(t, err, change.String())
			after, err := before.Compose(effective)
			require.NoError(t, err)
			require.True(t, after.Eq(tr.ToDelta()), "%s on %s: %s != %s", change, before, after, tr.ToDelta())
			require.True(t, tr.ToDelta().IsDocument())
			require.Greater(t, tr.Length(), 0)
		}
	}
}

func TestApplyDeltaTableNormalizer(t *testing.T) {
	failing := func(table *Node) error { return errors.New("cannot repair") }
	tr := NewTree(registry, WithTableNormalizer(failing))
	effective, err := tr.ApplyDelta(doc(p("a"), grid(1, 1, false, nil, "x")))
	require.NoError(t, err)
	assert.Equal(t, "a\n", tr.Root.TextContent())
	assert.True(t, effective.Eq(delta.New().Insert("a\n", nil)), effective.String())

	var seen []*Node
	counting := func(table *Node) error {
		seen = append(seen, table)
		return nil
	}
	tr = NewTree(registry, WithTableNormalizer(counting))
	_, err = tr.ApplyDelta(doc(grid(1, 1, false, nil, "x"), p("a"), grid(1, 1, false, nil, "y")))
	require.NoError(t, err)
	assert.Len(t, seen, 2)
}

func TestBuildFromDelta(t *testing.T) {
	_, err := BuildFromDelta(registry, delta.New().Retain(1, nil))
	assert.Equal(t, delta.ErrNotDocument, err)

	// adds a missing terminator
	tr := build(doc("abc"))
	assert.True(t, tr.ToDelta().Eq(doc(p("abc"))))

	// drops unknown embeds and attributes
	tr = build(doc("a", delta.Embed{"formula": "x"}, line(attrs{"header": 1, "foo": "bar"}, "b")))
	assert.True(t, tr.ToDelta().Eq(doc(h(1, "ab"))), tr.ToDelta().String())

	// block embeds end the current line
	tr = build(doc("a", video("v"), p("b")))
	assert.Equal(t, `root(block("a"), video(v), block("b"))`, tr.String())

	// header lines after body rows become body rows
	tr = build(doc(cell("r1", "c1", nil, "a"), headerCell("r2", "c2", nil, "b")))
	table := tr.Root.Children[0]
	if assert.Len(t, table.Children, 2) {
		assert.False(t, table.Children[1].Header)
		assert.False(t, table.Children[1].Children[0].Header)
	}

	// consecutive lines of one cell
	tr = build(doc(cell("r1", "c1", nil, "a"), cell("r1", "c1", nil, "b"), cell("r1", "c2", nil, "c")))
	row := tr.Root.Children[0].Children[0]
	if assert.Len(t, row.Children, 2) {
		assert.Len(t, row.Children[0].Children, 2)
	}

	// a paragraph splits two tables
	tr = build(doc(grid(1, 1, false, nil, "a"), p("x"), grid(1, 1, false, nil, "b")))
	assert.Len(t, tr.Root.Children, 3)
}

func TestReplaceError(t *testing.T) {
	err := NewReplaceError(delta.ErrInvalidOp, "apply %d", 3)
	assert.Equal(t, "apply 3: "+delta.ErrInvalidOp.Error(), err.Error())
	assert.True(t, errors.Is(err, delta.ErrInvalidOp))
	assert.Equal(t, "oops", NewReplaceError(nil, "oops").Error())
}
