package editor_test

import (
	"errors"
	"testing"

	"github.com/cozy/quill-go/delta"
	. "github.com/cozy/quill-go/editor"
	"github.com/cozy/quill-go/model"
	"github.com/cozy/quill-go/test/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample is the document 0123<em>45</em>67.
func sample() []delta.Op {
	return p("0123", italic("45"), "67")
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.Equal(t, ErrNoRegistry, err)

	s, err := New(builder.Registry)
	require.NoError(t, err)
	assert.Equal(t, 1, s.GetLength())
	sameDelta(t, delta.New().Insert("\n", nil), s.GetContents())
	assert.Nil(t, s.GetSelection())
}

func TestGetters(t *testing.T) {
	s, _ := newSession(t, sample())
	assert.Equal(t, 9, s.GetLength())

	text, err := s.GetText(0, 9)
	require.NoError(t, err)
	assert.Equal(t, "01234567\n", text)

	contents, err := s.GetContentsAt(2, 4)
	require.NoError(t, err)
	sameDelta(t, delta.New().Insert("23", nil).Insert("45", attrs{"italic": true}), contents)

	formats, err := s.GetFormat(5, 0)
	require.NoError(t, err)
	assert.Equal(t, delta.AttributeMap{"italic": true}, formats)

	formats, err = s.GetFormat(0, 0)
	require.NoError(t, err)
	assert.Empty(t, formats)

	_, err = s.GetContentsAt(5, 10)
	assert.True(t, errors.Is(err, model.ErrOutOfRange))
	_, err = s.GetText(-1, 1)
	assert.True(t, errors.Is(err, model.ErrOutOfRange))
}

func TestSetContents(t *testing.T) {
	s, _ := newSession(t, sample())
	var changes []*delta.Delta
	s.OnTextChange(func(change, old *delta.Delta, source Source) {
		changes = append(changes, change)
		assert.Equal(t, 9, old.Length())
		assert.Equal(t, API, source)
	})

	change, err := s.SetContents(delta.New().Insert("abc", nil), API)
	require.NoError(t, err)
	// the missing terminator is added
	sameDelta(t, delta.New().Insert("abc\n", nil), s.GetContents())
	sameDelta(t, delta.New().Insert("abc\n", nil).Delete(9), change)
	require.Len(t, changes, 1)
	sameDelta(t, change, changes[0])

	_, err = s.SetContents(delta.New().Retain(1, nil), API)
	assert.Equal(t, delta.ErrNotDocument, err)

	// a document ending with a block embed is complete
	_, err = s.SetContents(doc("a\n", builder.Video("v.mp4")), Silent)
	require.NoError(t, err)
	assert.Equal(t, 3, s.GetLength())

	_, err = s.SetText("a\r\nb\rc", Silent)
	require.NoError(t, err)
	text, err := s.GetText(0, s.GetLength())
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", text)
	assert.Len(t, changes, 1)
}

func TestUpdateContents(t *testing.T) {
	s, _ := newSession(t, p("ab"))
	var emitted int
	s.OnTextChange(func(change, old *delta.Delta, source Source) { emitted++ })

	_, err := s.UpdateContents(delta.New().Retain(4, nil).Insert("!", nil), API)
	assert.True(t, errors.Is(err, delta.ErrLengthMismatch))
	var lengthErr *delta.LengthError
	if assert.True(t, errors.As(err, &lengthErr)) {
		assert.Equal(t, 3, lengthErr.Length)
		assert.Equal(t, 4, lengthErr.Reach)
	}
	sameDelta(t, delta.New().Insert("ab\n", nil), s.GetContents())
	assert.Equal(t, 0, emitted)

	change, err := s.UpdateContents(delta.New().Retain(1, nil).Insert("x", attrs{"bold": true}), API)
	require.NoError(t, err)
	sameDelta(t, delta.New().Retain(1, nil).Insert("x", attrs{"bold": true}), change)
	sameDelta(t, delta.New().Insert("a", nil).Insert("x", attrs{"bold": true}).Insert("b\n", nil), s.GetContents())
	assert.Equal(t, 1, emitted)

	// no change, no event
	change, err = s.UpdateContents(delta.New().Retain(2, nil), API)
	require.NoError(t, err)
	assert.Empty(t, change.Ops)
	assert.Equal(t, 1, emitted)

	// the document keeps its last line
	s, _ = newSession(t, p("x1"), p("y"))
	var emittedChange *delta.Delta
	s.OnTextChange(func(change, old *delta.Delta, source Source) { emittedChange = change })
	change, err = s.UpdateContents(delta.New().Delete(s.GetLength()), User)
	require.NoError(t, err)
	assert.Equal(t, 1, s.GetLength())
	sameDelta(t, doc(p()), s.GetContents())
	sameDelta(t, delta.New().Insert("\n", nil).Delete(5), change)
	sameDelta(t, change, emittedChange)
}

func TestUpdateContentsLeavingTable(t *testing.T) {
	s, _ := newSession(t, grid(1, 2, false, nil, "a1", "a2"), p("y"))
	old := s.GetContents()
	change, err := s.UpdateContents(delta.New().Retain(5, nil).Delete(2), User)
	require.NoError(t, err)
	after, err := old.Compose(change)
	require.NoError(t, err)
	sameDelta(t, s.GetContents(), after)
	sameDelta(t, doc(grid(1, 1, false, nil, "a1"), p("a2")), s.GetContents())
}

func TestInsertText(t *testing.T) {
	s, _ := newSession(t, sample())

	// the text takes the formats of the text before it
	change, err := s.InsertText(6, "|", attrs{"bold": true}, API)
	require.NoError(t, err)
	sameDelta(t, delta.New().Retain(6, nil).Insert("|", attrs{"bold": true, "italic": true}), change)

	// a line terminator copies the formats of the split line
	s, _ = newSession(t, h(1, "ab"))
	change, err = s.InsertText(1, "\n", nil, API)
	require.NoError(t, err)
	sameDelta(t, delta.New().Retain(1, nil).Insert("\n", attrs{"header": 1}), change)
	sameDelta(t, doc(h(1, "a"), h(1, "b")), s.GetContents())

	// line formats in attrs apply to the lines of the text
	s, _ = newSession(t, p("ab"))
	_, err = s.InsertText(2, "c", attrs{"header": 2}, API)
	require.NoError(t, err)
	sameDelta(t, doc(h(2, "abc")), s.GetContents())

	change, err = s.InsertText(0, "", nil, API)
	require.NoError(t, err)
	assert.Empty(t, change.Ops)
	_, err = s.InsertText(42, "x", nil, API)
	assert.True(t, errors.Is(err, model.ErrOutOfRange))
}

func TestInsertEmbed(t *testing.T) {
	s, _ := newSession(t, p(italic("ab")))
	change, err := s.InsertEmbed(1, "image", "a.png", API)
	require.NoError(t, err)
	sameDelta(t, delta.New().Retain(1, nil).Insert(delta.Embed{"image": "a.png"}, attrs{"italic": true}), change)

	// a block embed in the middle of a line splits it
	s, _ = newSession(t, p("ab"))
	_, err = s.InsertEmbed(1, "video", "v.mp4", API)
	require.NoError(t, err)
	sameDelta(t, doc(p("a"), builder.Video("v.mp4"), p("b")), s.GetContents())

	_, err = s.InsertEmbed(0, "formula", "x", API)
	assert.Error(t, err)
}

func TestDeleteText(t *testing.T) {
	s, _ := newSession(t, sample())
	change, err := s.DeleteText(2, 4, API)
	require.NoError(t, err)
	sameDelta(t, delta.New().Retain(2, nil).Delete(4), change)
	sameDelta(t, delta.New().Insert("0167\n", nil), s.GetContents())

	// cells keep their structure
	s, _ = newSession(t, grid(1, 2, false, nil, "ab", "cd"), p("x"))
	_, err = s.DeleteText(1, 3, API)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "d"}}, texts(s.Tree()))
	checked(t, s)
}

func TestFormatText(t *testing.T) {
	s, _ := newSession(t, sample())
	change, err := s.FormatText(0, 2, attrs{"bold": true, "header": 1}, API)
	require.NoError(t, err)
	// line formats are ignored
	sameDelta(t, delta.New().Retain(2, attrs{"bold": true}), change)

	change, err = s.FormatLine(1, 1, attrs{"header": 2, "bold": true}, API)
	require.NoError(t, err)
	sameDelta(t, delta.New().Retain(8, nil).Retain(1, attrs{"header": 2}), change)
}

func TestFormat(t *testing.T) {
	s, _ := newSession(t, sample())

	// without a selection
	change, err := s.Format("bold", true, API)
	require.NoError(t, err)
	assert.Empty(t, change.Ops)

	s.SetSelection(selection(0, 2))
	change, err = s.Format("bold", true, API)
	require.NoError(t, err)
	sameDelta(t, delta.New().Retain(2, attrs{"bold": true}), change)

	change, err = s.Format("align", "center", API)
	require.NoError(t, err)
	sameDelta(t, delta.New().Retain(8, nil).Retain(1, attrs{"align": "center"}), change)

	// on a caret, the format waits for the typed text
	s.SetSelection(caret(8))
	change, err = s.Format("bold", true, API)
	require.NoError(t, err)
	assert.Empty(t, change.Ops)
	_, err = s.TypeText("!")
	require.NoError(t, err)
	contents, err := s.GetContentsAt(8, 1)
	require.NoError(t, err)
	sameDelta(t, delta.New().Insert("!", attrs{"bold": true}), contents)
}

func TestRemoveFormat(t *testing.T) {
	s, _ := newSession(t, sample())
	change, err := s.RemoveFormat(5, 1, API)
	require.NoError(t, err)
	sameDelta(t, delta.New().Retain(5, nil).Retain(1, attrs{"italic": nil}), change)

	// the line formats of the touched lines go too
	s, _ = newSession(t, h(1, "ab", italic("cd")), li("bullet", "ef"), p("gh"))
	_, err = s.RemoveFormat(1, 4, API)
	require.NoError(t, err)
	sameDelta(t, doc(p("abcd"), p("ef"), p("gh")), s.GetContents())

	// the cells stay cells
	s, _ = newSession(t, cell("r0", "c0", attrs{"align": "center"}, italic("x")))
	_, err = s.RemoveFormat(0, 1, API)
	require.NoError(t, err)
	sameDelta(t, doc(cell("r0", "c0", nil, "x")), s.GetContents())
}

func TestObservers(t *testing.T) {
	s, _ := newSession(t, p("ab"))
	var calls []Source
	stop := s.OnTextChange(func(change, old *delta.Delta, source Source) {
		calls = append(calls, source)
	})
	var olds []*delta.Delta
	s.OnTextChange(func(change, old *delta.Delta, source Source) {
		olds = append(olds, old)
	})

	_, err := s.InsertText(0, "x", nil, User)
	require.NoError(t, err)
	assert.Equal(t, []Source{User}, calls)
	require.Len(t, olds, 1)
	sameDelta(t, delta.New().Insert("ab\n", nil), olds[0])

	stop()
	_, err = s.InsertText(0, "y", nil, API)
	require.NoError(t, err)
	assert.Equal(t, []Source{User}, calls)
	assert.Len(t, olds, 2)
	assert.Equal(t, "user", User.String())
	assert.Equal(t, "silent", Silent.String())
}

func TestSelectionMapping(t *testing.T) {
	s, _ := newSession(t, p("abcd"))
	s.SetSelection(selection(1, 2))

	// API changes before the selection move it
	_, err := s.InsertText(0, "xx", nil, API)
	require.NoError(t, err)
	assert.Equal(t, selection(3, 2), s.GetSelection())

	_, err = s.DeleteText(0, 4, API)
	require.NoError(t, err)
	assert.Equal(t, selection(0, 1), s.GetSelection())

	// clamped to the document
	s.SetSelection(caret(42))
	assert.Equal(t, caret(2), s.GetSelection())
	s.SetSelection(nil)
	assert.Nil(t, s.GetSelection())
}
