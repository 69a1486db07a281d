package editor_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cozy/quill-go/delta"
	. "github.com/cozy/quill-go/editor"
	"github.com/cozy/quill-go/model"
	tables "github.com/cozy/quill-go/table"
	"github.com/cozy/quill-go/test/builder"
	"github.com/cozy/quill-go/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type attrs = builder.Attrs

var (
	doc    = builder.Doc
	p      = builder.P
	h      = builder.H
	li     = builder.Li
	line   = builder.Line
	italic = builder.Italic
	grid   = builder.Grid
	cell   = builder.Cell
)

// clock is a manual time source for the history.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }
func newClock() *clock                   { return &clock{t: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)} }
func caret(index int) *transform.Range   { return &transform.Range{Index: index} }
func selection(index, length int) *transform.Range {
	return &transform.Range{Index: index, Length: length}
}

func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

// newSession starts a session on a document made of parts.
func newSession(t *testing.T, parts ...interface{}) (*Session, *clock) {
	t.Helper()
	c := newClock()
	s, err := New(builder.Registry,
		WithEngine(tables.New(tables.WithIDs(sequence()))),
		WithClock(c.now))
	require.NoError(t, err)
	if len(parts) > 0 {
		_, err = s.SetContents(doc(parts...), Silent)
		require.NoError(t, err)
	}
	return s, c
}

// sameDelta compares two deltas by their JSON.
func sameDelta(t *testing.T, expected, actual *delta.Delta) {
	t.Helper()
	assert.True(t, expected.Eq(actual), "expected %s\ngot      %s", expected, actual)
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

func checked(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.Tree().Check(), s.Tree().String())
}
