package model

// Kind is the type of a node. The set is closed: code dispatches on it with
// switches instead of methods on node types.
type Kind int

const (
	// Root is the document node. Its children are blocks, block embeds and
	// tables.
	Root Kind = iota
	// Block is a line. It ends with a line terminator, and its children are
	// inline runs and inline embeds.
	Block
	// Inline is a run of text sharing the same formats.
	Inline
	// Embed is an atomic unit: an inline embed inside a block, or a block
	// embed taking its own line.
	Embed
	// Table holds rows. Header rows always come first.
	Table
	// TableRow holds cells.
	TableRow
	// TableCell holds at least one block.
	TableCell
)

var kindNames = [...]string{"root", "block", "inline", "embed", "table", "row", "cell"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsLeaf is true for text runs and embeds.
func (k Kind) IsLeaf() bool {
	return k == Inline || k == Embed
}

// IsContainer is true for the nodes that only group other nodes and take no
// document unit of their own.
func (k Kind) IsContainer() bool {
	switch k {
	case Root, Table, TableRow, TableCell:
		return true
	}
	return false
}
