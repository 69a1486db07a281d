// Package table defines the formats of tables: the line attributes tying a
// line to its cell, and the table and cell presets (dimensions, borders,
// colors, alignment and padding).
package table

import (
	"github.com/cozy/quill-go/registry"
	"github.com/cozy/quill-go/schema/basic"
	"github.com/cozy/quill-go/schema/list"
	"go.uber.org/zap"
)

// Names of the line attributes tying a line to a body or header cell. Their
// value is an object {row, cell} of identifiers.
const (
	CellLine       = "tableCellLine"
	HeaderCellLine = "tableHeaderCellLine"
)

// Keys of the cell line value.
const (
	RowKey  = "row"
	CellKey = "cell"
)

var cellTags = []string{"td", "th", "tr"}

// Lines are the identity attributes.
var Lines = []*registry.Spec{
	{Name: CellLine, Scope: registry.Cell, Kind: registry.Object, Rule: registry.Tag("td")},
	{Name: HeaderCellLine, Scope: registry.Cell, Kind: registry.Object, Rule: registry.Tag("th")},
}

// TableFormats apply to the whole table. They are repeated on every line of
// the table.
var TableFormats = []*registry.Spec{
	{Name: "tableWidth", Scope: registry.Table, Kind: registry.String, Rule: registry.Attribute("width", "table")},
	{Name: "tableHeight", Scope: registry.Table, Kind: registry.String, Rule: registry.Attribute("height", "table")},
	{Name: "tableAlign", Scope: registry.Table, Kind: registry.String, Rule: registry.Style("float", "table"),
		Values: []string{"left", "right", "none"}},
	{Name: "tableTextAlign", Scope: registry.Table, Kind: registry.String, Rule: registry.Style("text-align", "table")},
	{Name: "tableBackgroundColor", Scope: registry.Table, Kind: registry.String, Rule: registry.Style("background-color", "table")},
	{Name: "tableBorder", Scope: registry.Table, Kind: registry.String, Rule: registry.Style("border", "table")},
	{Name: "tableBorderStyle", Scope: registry.Table, Kind: registry.String, Rule: registry.Style("border-style", "table")},
	{Name: "tableBorderWidth", Scope: registry.Table, Kind: registry.String, Rule: registry.Style("border-width", "table")},
	{Name: "tableBorderColor", Scope: registry.Table, Kind: registry.String, Rule: registry.Style("border-color", "table")},
}

// CellFormats apply to one cell, and are repeated on every line of it.
// Styles declared on a row are read as formats of its cells.
var CellFormats = []*registry.Spec{
	{Name: "cellWidth", Scope: registry.Cell, Kind: registry.String, Rule: registry.Attribute("width", cellTags...)},
	{Name: "cellHeight", Scope: registry.Cell, Kind: registry.String, Rule: registry.Attribute("height", cellTags...)},
	{Name: "cellBorder", Scope: registry.Cell, Kind: registry.String, Rule: registry.Style("border", cellTags...)},
	{Name: "cellBorderStyle", Scope: registry.Cell, Kind: registry.String, Rule: registry.Style("border-style", cellTags...)},
	{Name: "cellBorderWidth", Scope: registry.Cell, Kind: registry.String, Rule: registry.Style("border-width", cellTags...)},
	{Name: "cellBorderColor", Scope: registry.Cell, Kind: registry.String, Rule: registry.Style("border-color", cellTags...)},
	{Name: "cellBackgroundColor", Scope: registry.Cell, Kind: registry.String, Rule: registry.Style("background-color", cellTags...)},
	{Name: "cellVerticalAlign", Scope: registry.Cell, Kind: registry.String, Rule: registry.Style("vertical-align", cellTags...),
		Values: []string{"top", "middle", "bottom", "baseline"}},
	{Name: "cellTextAlign", Scope: registry.Cell, Kind: registry.String, Rule: registry.Style("text-align", cellTags...)},
	{Name: "cellPadding", Scope: registry.Cell, Kind: registry.String, Rule: registry.Style("padding", cellTags...)},
	{Name: "cellPaddingTop", Scope: registry.Cell, Kind: registry.String, Rule: registry.Style("padding-top", cellTags...)},
	{Name: "cellPaddingLeft", Scope: registry.Cell, Kind: registry.String, Rule: registry.Style("padding-left", cellTags...)},
	{Name: "cellPaddingRight", Scope: registry.Cell, Kind: registry.String, Rule: registry.Style("padding-right", cellTags...)},
	{Name: "cellPaddingBottom", Scope: registry.Cell, Kind: registry.String, Rule: registry.Style("padding-bottom", cellTags...)},
}

// Register adds the table formats to r.
func Register(r *registry.Registry) error {
	if err := r.Register(Lines...); err != nil {
		return err
	}
	if err := r.Register(TableFormats...); err != nil {
		return err
	}
	return r.Register(CellFormats...)
}

// NewRegistry returns a frozen registry with the basic, list and table
// formats.
func NewRegistry(logger *zap.Logger) (*registry.Registry, error) {
	r := registry.New(registry.WithLogger(logger))
	for _, register := range []func(*registry.Registry) error{basic.Register, list.Register, Register} {
		if err := register(r); err != nil {
			return nil, err
		}
	}
	r.Freeze()
	return r, nil
}

// IsLineKey tells whether name is one of the cell identity attributes.
func IsLineKey(name string) bool {
	return name == CellLine || name == HeaderCellLine
}
