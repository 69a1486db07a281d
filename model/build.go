package model

import (
	"strings"

	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/registry"
	tables "github.com/cozy/quill-go/schema/table"
	"go.uber.org/zap"
)

// line is a line of a document delta: inline content and the attributes of
// its terminator, or a block embed.
type line struct {
	content []delta.Op
	attrs   delta.AttributeMap
	embed   delta.Embed
}

// splitLines cuts a document in lines, filtering formats and embeds through
// the registry. Trailing content gets a terminator.
func (t *Tree) splitLines(doc *delta.Delta) []line {
	var lines []line
	current := line{}
	flush := func(attrs delta.AttributeMap) {
		current.attrs = t.registry.Filter(attrs, registry.Line)
		lines = append(lines, current)
		current = line{}
	}
	for _, op := range doc.Ops {
		switch ins := op.Insert.(type) {
		case string:
			attrs := t.registry.Filter(op.Attributes, registry.Inline)
			parts := strings.Split(ins, "\n")
			for i, part := range parts {
				if i > 0 {
					flush(op.Attributes)
				}
				if part != "" {
					current.content = append(current.content, delta.Op{Insert: part, Attributes: attrs})
				}
			}
		case delta.Embed:
			name := ins.Type()
			switch {
			case t.registry.IsBlockEmbed(name):
				if len(current.content) > 0 {
					flush(nil)
				}
				lines = append(lines, line{embed: ins, attrs: t.registry.Filter(op.Attributes, registry.Inline)})
			case t.registry.IsEmbed(name):
				attrs := t.registry.Filter(op.Attributes, registry.Inline)
				current.content = append(current.content, delta.Op{Insert: ins, Attributes: attrs})
			default:
				t.logger.Debug("drop unknown embed", zap.String("embed", name))
			}
		}
	}
	if len(current.content) > 0 {
		flush(nil)
	}
	return lines
}

// CellIdentity reads the row and cell identifiers from line attributes.
func CellIdentity(attrs delta.AttributeMap) (row, cell string, header, ok bool) {
	value, found := attrs[tables.HeaderCellLine]
	header = found && value != nil
	if !header {
		value, found = attrs[tables.CellLine]
		if !found || value == nil {
			return "", "", false, false
		}
	}
	m, _ := value.(map[string]interface{})
	row, _ = m[tables.RowKey].(string)
	cell, _ = m[tables.CellKey].(string)
	return row, cell, header, true
}

// buildNodes groups lines in blocks, block embeds and tables. Consecutive
// cell lines form a table; a new row starts when the row identifier
// changes, a new cell when the cell identifier changes. Header lines found
// after body rows are turned into body lines.
func (t *Tree) buildNodes(lines []line) []*Node {
	var nodes []*Node
	var table *Node
	for _, l := range lines {
		if l.embed != nil {
			table = nil
			nodes = append(nodes, &Node{Kind: Embed, Value: l.embed, Formats: l.attrs})
			continue
		}
		block := &Node{Kind: Block}
		for _, op := range l.content {
			block.AppendChild(leafOf(op))
		}
		block.Children = mergeInline(block.Children)
		rowID, cellID, header, ok := CellIdentity(l.attrs)
		if !ok {
			table = nil
			block.Formats = t.registry.Filter(l.attrs, registry.Block)
			nodes = append(nodes, block)
			continue
		}
		split := t.registry.Split(l.attrs)
		block.Formats = split[registry.Block]
		if table == nil {
			table = &Node{Kind: Table, Formats: split[registry.Table]}
			nodes = append(nodes, table)
		}
		row := table.LastChild()
		if header && row != nil && !row.Header {
			header = false
		}
		if row == nil || row.ID != rowID || row.Header != header {
			row = &Node{Kind: TableRow, ID: rowID, Header: header}
			table.AppendChild(row)
		}
		cell := row.LastChild()
		if cell == nil || cell.ID != cellID {
			cell = &Node{
				Kind:    TableCell,
				ID:      cellID,
				Header:  header,
				Formats: split[registry.Cell].Without(tables.CellLine, tables.HeaderCellLine),
			}
			row.AppendChild(cell)
		}
		cell.AppendChild(block)
	}
	return nodes
}

func leafOf(op delta.Op) *Node {
	if e, ok := op.Insert.(delta.Embed); ok {
		return &Node{Kind: Embed, Value: e, Formats: op.Attributes}
	}
	return &Node{Kind: Inline, Text: op.Insert.(string), Formats: op.Attributes}
}

// mergeInline joins adjacent text runs with the same formats.
func mergeInline(children []*Node) []*Node {
	var result []*Node
	for _, child := range children {
		if n := len(result); n > 0 {
			last := result[n-1]
			if last.Kind == Inline && child.Kind == Inline && last.Formats.Eq(child.Formats) {
				last.Text += child.Text
				continue
			}
		}
		result = append(result, child)
	}
	return result
}

// Delta returns the content of the node as a delta of inserts.
func (n *Node) Delta() *delta.Delta {
	d := delta.New()
	n.writeDelta(d)
	return d
}

func (n *Node) writeDelta(d *delta.Delta) {
	switch n.Kind {
	case Inline:
		d.Push(delta.Op{Insert: n.Text, Attributes: n.Formats})
	case Embed:
		d.Push(delta.Op{Insert: n.Value, Attributes: n.Formats})
	case Block:
		for _, child := range n.Children {
			child.writeDelta(d)
		}
		d.Push(delta.Op{Insert: "\n", Attributes: n.LineAttributes()})
	default:
		for _, child := range n.Children {
			child.writeDelta(d)
		}
	}
}

// LineAttributes returns the attributes of the terminator of a block: its
// own formats, and for a line in a table, the cell identity and the cell
// and table formats.
func (n *Node) LineAttributes() delta.AttributeMap {
	cell := n.Ancestor(TableCell)
	if cell == nil {
		return n.Formats
	}
	attrs := delta.AttributeMap{}
	if table := cell.Ancestor(Table); table != nil {
		for k, v := range table.Formats {
			attrs[k] = v
		}
	}
	for k, v := range cell.Formats {
		attrs[k] = v
	}
	for k, v := range n.Formats {
		attrs[k] = v
	}
	rowID := ""
	if row := cell.Parent; row != nil {
		rowID = row.ID
	}
	key := tables.CellLine
	if cell.Header {
		key = tables.HeaderCellLine
	}
	attrs[key] = map[string]interface{}{tables.RowKey: rowID, tables.CellKey: cell.ID}
	return attrs
}
