package table

import (
	"strings"

	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/registry"
	tables "github.com/cozy/quill-go/schema/table"
)

// Line attributes of the single line cells of lite tables. Their value is
// the identifier of the row.
const (
	liteCell       = "table"
	liteHeaderCell = "tableHeaderCell"
)

// Keys of the identity of older cell lines.
const (
	legacyRowKey  = "rowId"
	legacyCellKey = "cellId"
)

// MigrateLegacy rewrites the deprecated table attributes of a document to
// the current scheme. Lines of lite tables become one cell each; older cell
// identities keyed by rowId and cellId are renamed. Values that cannot be
// mapped are dropped.
func (e *Engine) MigrateLegacy(d *delta.Delta) *delta.Delta {
	result := delta.New()
	for _, op := range d.Ops {
		if !isLegacy(op.Attributes) {
			result.Push(op)
			continue
		}
		text, ok := op.Text()
		if !ok || op.Type() != delta.InsertOp {
			op.Attributes = e.migrate(op.Attributes)
			result.Push(op)
			continue
		}
		for _, part := range strings.SplitAfter(text, "\n") {
			if part == "" {
				continue
			}
			result.Push(delta.Op{Insert: part, Attributes: e.migrate(op.Attributes)})
		}
	}
	return result
}

func isLegacy(attrs delta.AttributeMap) bool {
	if attrs == nil {
		return false
	}
	if _, ok := attrs[liteCell]; ok {
		return true
	}
	if _, ok := attrs[liteHeaderCell]; ok {
		return true
	}
	for _, key := range []string{tables.CellLine, tables.HeaderCellLine} {
		if v, ok := attrs[key]; ok && !isIdentity(v) {
			return true
		}
	}
	return false
}

func isIdentity(v interface{}) bool {
	m, ok := v.(map[string]interface{})
	if !ok || len(m) != 2 {
		return false
	}
	_, row := m[tables.RowKey].(string)
	_, cell := m[tables.CellKey].(string)
	return row && cell
}

func (e *Engine) migrate(attrs delta.AttributeMap) delta.AttributeMap {
	result := delta.AttributeMap{}
	for k, v := range attrs {
		switch k {
		case liteCell, liteHeaderCell, tables.CellLine, tables.HeaderCellLine:
		default:
			result[k] = v
		}
	}
	identity := func(row, cell string) map[string]interface{} {
		if cell == "" {
			cell = e.newID()
		}
		return map[string]interface{}{tables.RowKey: row, tables.CellKey: cell}
	}
	switch {
	case attrs[liteHeaderCell] != nil:
		result[tables.HeaderCellLine] = identity(registry.Stringify(attrs[liteHeaderCell]), "")
	case attrs[liteCell] != nil:
		result[tables.CellLine] = identity(registry.Stringify(attrs[liteCell]), "")
	}
	for _, key := range []string{tables.CellLine, tables.HeaderCellLine} {
		m, ok := attrs[key].(map[string]interface{})
		if !ok {
			continue
		}
		row := firstString(m, tables.RowKey, legacyRowKey)
		if row == "" {
			continue
		}
		result[key] = identity(row, firstString(m, tables.CellKey, legacyCellKey))
	}
	return result
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			if s := registry.Stringify(v); s != "" {
				return s
			}
		}
	}
	return ""
}
