package table

import (
	"errors"

	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/model"
	tables "github.com/cozy/quill-go/schema/table"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrDuplicateHeader is returned when a header row is inserted in a
	// table that already has one.
	ErrDuplicateHeader = errors.New("table: the table already has a header row")
	// ErrStructuralInvariant is returned when a table cannot be made
	// rectangular.
	ErrStructuralInvariant = errors.New("table: structural invariant violation")
	// ErrInvalidSize is returned for a table without rows or columns.
	ErrInvalidSize = errors.New("table: invalid size")
)

// NewID returns a new row or cell identifier.
func NewID() string {
	return uuid.NewString()
}

// Engine computes the changes of the table operations. It is stateless
// apart from its identifier source, and safe for concurrent use when that
// source is.
type Engine struct {
	newID  func() string
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDs sets the function generating row and cell identifiers.
func WithIDs(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithLogger sets the logger of the engine.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an engine.
func New(opts ...Option) *Engine {
	e := &Engine{newID: NewID, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ID returns a new identifier from the engine's source.
func (e *Engine) ID() string {
	return e.newID()
}

// cellLine returns the attributes of a line of a cell.
func cellLine(tableFormats, cellFormats delta.AttributeMap, rowID, cellID string, header bool) delta.AttributeMap {
	attrs := delta.AttributeMap{}
	for k, v := range tableFormats {
		attrs[k] = v
	}
	for k, v := range cellFormats {
		attrs[k] = v
	}
	key := tables.CellLine
	if header {
		key = tables.HeaderCellLine
	}
	attrs[key] = map[string]interface{}{tables.RowKey: rowID, tables.CellKey: cellID}
	return attrs
}

// change builds a delta from edits at increasing offsets of the old
// document.
type change struct {
	d      *delta.Delta
	cursor int
}

func newChange() *change {
	return &change{d: delta.New()}
}

func (c *change) insertAt(offset int, text string, attrs delta.AttributeMap) {
	c.d.Retain(offset-c.cursor, nil)
	c.cursor = offset
	c.d.Insert(text, attrs)
}

func (c *change) deleteAt(offset, length int) {
	c.d.Retain(offset-c.cursor, nil)
	c.d.Delete(length)
	c.cursor = offset + length
}

// InsertTable inserts an empty table of the given size at index. When the
// index is inside a line, the text before it becomes the content of the
// first cell and the rest of the line follows the table. Tables cannot be
// nested: inside a table, nothing happens.
func (e *Engine) InsertTable(t *model.Tree, index, rows, cols int) (*delta.Delta, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidSize
	}
	if index < 0 || index > t.Length() {
		return nil, model.ErrOutOfRange
	}
	if _, ok := Find(t, index); ok {
		e.logger.Debug("no nested table", zap.Int("index", index))
		return delta.New(), nil
	}
	c := newChange()
	for r := 0; r < rows; r++ {
		rowID := e.newID()
		for col := 0; col < cols; col++ {
			c.insertAt(index, "\n", cellLine(nil, nil, rowID, e.newID(), false))
		}
	}
	if index == t.Length() {
		c.insertAt(index, "\n", nil)
	}
	return c.d, nil
}

// InsertRowAbove inserts an empty row above the row under index.
func (e *Engine) InsertRowAbove(t *model.Tree, index int) *delta.Delta {
	return e.insertRow(t, index, false)
}

// InsertRowBelow inserts an empty row below the row under index.
func (e *Engine) InsertRowBelow(t *model.Tree, index int) *delta.Delta {
	return e.insertRow(t, index, true)
}

// insertRow inserts a body row. From a header row, the row goes above or
// below the first body row.
func (e *Engine) insertRow(t *model.Tree, index int, below bool) *delta.Delta {
	pos, ok := Find(t, index)
	if !ok {
		return delta.New()
	}
	g := pos.Grid
	at, ref := pos.Row, pos.Row
	if pos.InHeader() {
		at = g.Headers
		if below {
			at++
		}
		at = min(at, len(g.Rows))
		ref = min(g.Headers, len(g.Rows)-1)
	} else if below {
		at++
	}
	offset := pos.Start + g.Table.Len()
	if at < len(g.Rows) {
		offset = t.IndexOf(g.Rows[at])
	}
	c := newChange()
	rowID := e.newID()
	for col := 0; col < g.Columns; col++ {
		var formats delta.AttributeMap
		if cell := g.Cell(ref, col); cell != nil {
			formats = cell.Formats
		}
		c.insertAt(offset, "\n", cellLine(g.Table.Formats, formats, rowID, e.newID(), false))
	}
	return c.d
}

// InsertColumnLeft inserts an empty cell in every row, left of the column
// under index.
func (e *Engine) InsertColumnLeft(t *model.Tree, index int) *delta.Delta {
	return e.insertColumn(t, index, false)
}

// InsertColumnRight inserts an empty cell in every row, right of the
// column under index.
func (e *Engine) InsertColumnRight(t *model.Tree, index int) *delta.Delta {
	return e.insertColumn(t, index, true)
}

func (e *Engine) insertColumn(t *model.Tree, index int, right bool) *delta.Delta {
	pos, ok := Find(t, index)
	if !ok {
		return delta.New()
	}
	col := pos.Column
	if right {
		col++
	}
	c := newChange()
	for _, row := range pos.Grid.Rows {
		offset := t.IndexOf(row) + row.Len()
		if col < len(row.Children) {
			offset = t.IndexOf(row.Children[col])
		}
		c.insertAt(offset, "\n", cellLine(pos.Table().Formats, nil, row.ID, e.newID(), row.Header))
	}
	return c.d
}

// InsertHeaderRow inserts an empty header row at the top of the table.
func (e *Engine) InsertHeaderRow(t *model.Tree, index int) (*delta.Delta, error) {
	pos, ok := Find(t, index)
	if !ok {
		return delta.New(), nil
	}
	g := pos.Grid
	if g.Headers > 0 {
		return nil, ErrDuplicateHeader
	}
	c := newChange()
	rowID := e.newID()
	for col := 0; col < g.Columns; col++ {
		var formats delta.AttributeMap
		if cell := g.Cell(0, col); cell != nil {
			formats = cell.Formats
		}
		c.insertAt(pos.Start, "\n", cellLine(g.Table.Formats, formats, rowID, e.newID(), true))
	}
	return c.d, nil
}

// DeleteRow deletes the row under index. From a header row, the whole
// header group is deleted. Deleting the last row deletes the table.
func (e *Engine) DeleteRow(t *model.Tree, index int) *delta.Delta {
	pos, ok := Find(t, index)
	if !ok {
		return delta.New()
	}
	g := pos.Grid
	from, to := pos.Row, pos.Row+1
	if pos.InHeader() {
		from, to = 0, g.Headers
	}
	if to-from == len(g.Rows) {
		return e.deleteTable(pos)
	}
	start := t.IndexOf(g.Rows[from])
	last := g.Rows[to-1]
	end := t.IndexOf(last) + last.Len()
	c := newChange()
	c.deleteAt(start, end-start)
	return c.d
}

// DeleteColumn deletes the cell of the column under index in every row.
// Deleting the last column deletes the table.
func (e *Engine) DeleteColumn(t *model.Tree, index int) *delta.Delta {
	pos, ok := Find(t, index)
	if !ok {
		return delta.New()
	}
	if pos.Grid.Columns <= 1 {
		return e.deleteTable(pos)
	}
	c := newChange()
	for _, row := range pos.Grid.Rows {
		if pos.Column < len(row.Children) {
			cell := row.Children[pos.Column]
			c.deleteAt(t.IndexOf(cell), cell.Len())
		}
	}
	return c.d
}

// DeleteTable deletes the table under index.
func (e *Engine) DeleteTable(t *model.Tree, index int) *delta.Delta {
	pos, ok := Find(t, index)
	if !ok {
		return delta.New()
	}
	return e.deleteTable(pos)
}

func (e *Engine) deleteTable(pos *Position) *delta.Delta {
	c := newChange()
	c.deleteAt(pos.Start, pos.Table().Len())
	return c.d
}
