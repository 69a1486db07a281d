// Package builder helps writing documents in tests. Its functions return
// delta operations that can be combined with Doc.
package builder

import (
	"fmt"

	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/model"
	"github.com/cozy/quill-go/registry"
	tables "github.com/cozy/quill-go/schema/table"
)

// Attrs is a shorter name for attribute maps.
type Attrs = delta.AttributeMap

// Registry has the basic, list and table formats.
var Registry = mustRegistry()

func mustRegistry() *registry.Registry {
	r, err := tables.NewRegistry(nil)
	if err != nil {
		panic(err)
	}
	return r
}

// Doc concatenates its parts: strings, operations and slices of operations.
func Doc(parts ...interface{}) *delta.Delta {
	d := delta.New()
	for _, part := range parts {
		for _, op := range Ops(part) {
			d.Push(op)
		}
	}
	return d
}

// Ops flattens a part in operations.
func Ops(part interface{}) []delta.Op {
	switch p := part.(type) {
	case string:
		return []delta.Op{{Insert: p}}
	case delta.Op:
		return []delta.Op{p}
	case []delta.Op:
		return p
	case delta.Embed:
		return []delta.Op{{Insert: p}}
	case *delta.Delta:
		return p.Ops
	}
	panic(fmt.Sprintf("builder: unexpected part %T", part))
}

// Tree builds a document with the test registry.
func Tree(parts ...interface{}) *model.Tree {
	t, err := model.BuildFromDelta(Registry, Doc(parts...))
	if err != nil {
		panic(err)
	}
	return t
}

// Text is a formatted run.
func Text(text string, attrs Attrs) delta.Op {
	return delta.Op{Insert: text, Attributes: attrs}
}

// Line writes the content then a terminator with the given attributes.
func Line(attrs Attrs, parts ...interface{}) []delta.Op {
	var ops []delta.Op
	for _, part := range parts {
		ops = append(ops, Ops(part)...)
	}
	return append(ops, delta.Op{Insert: "\n", Attributes: attrs})
}

// P is a paragraph.
func P(parts ...interface{}) []delta.Op { return Line(nil, parts...) }

// H is a header of the given level.
func H(level int, parts ...interface{}) []delta.Op {
	return Line(Attrs{"header": level}, parts...)
}

// Li is a list item.
func Li(kind string, parts ...interface{}) []delta.Op {
	return Line(Attrs{"list": kind}, parts...)
}

// Bold, Italic and Link are formatted runs.
func Bold(text string) delta.Op   { return Text(text, Attrs{"bold": true}) }
func Italic(text string) delta.Op { return Text(text, Attrs{"italic": true}) }
func Link(text, href string) delta.Op {
	return Text(text, Attrs{"link": href})
}

// Image is an inline embed.
func Image(src string) delta.Op { return delta.Op{Insert: delta.Embed{"image": src}} }

// Video is a block embed.
func Video(src string) delta.Op { return delta.Op{Insert: delta.Embed{"video": src}} }

// CellAttrs returns the identity attributes of a line in a cell.
func CellAttrs(row, cell string, header bool) Attrs {
	key := tables.CellLine
	if header {
		key = tables.HeaderCellLine
	}
	return Attrs{key: map[string]interface{}{tables.RowKey: row, tables.CellKey: cell}}
}

// Cell is a line of a body cell. Extra formats are merged with the identity.
func Cell(row, cell string, formats Attrs, parts ...interface{}) []delta.Op {
	return Line(merge(CellAttrs(row, cell, false), formats), parts...)
}

// HeaderCell is a line of a header cell.
func HeaderCell(row, cell string, formats Attrs, parts ...interface{}) []delta.Op {
	return Line(merge(CellAttrs(row, cell, true), formats), parts...)
}

// RowID and CellID name the identifiers of the grids built by Grid.
func RowID(r int) string     { return fmt.Sprintf("r%d", r) }
func CellID(r, c int) string { return fmt.Sprintf("c%d%d", r, c) }

// Grid is a table with one line per cell. The text of each cell comes from
// texts, row by row; missing texts leave the cell empty. With header, the
// first row is a header row.
func Grid(rows, cols int, header bool, formats Attrs, texts ...string) []delta.Op {
	var ops []delta.Op
	i := 0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			var parts []interface{}
			if i < len(texts) && texts[i] != "" {
				parts = append(parts, texts[i])
			}
			i++
			attrs := merge(CellAttrs(RowID(r), CellID(r, c), header && r == 0), formats)
			ops = append(ops, Line(attrs, parts...)...)
		}
	}
	return ops
}

func merge(a, b Attrs) Attrs {
	result := Attrs{}
	for k, v := range a {
		result[k] = v
	}
	for k, v := range b {
		result[k] = v
	}
	return result
}
