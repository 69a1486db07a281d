package model

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cozy/quill-go/delta"
)

// Node is an element of the content tree. A document is a Root node whose
// descendants are lines (blocks and block embeds), possibly grouped in
// tables.
//
// Nodes are owned by their tree. They are mutated only by the tree itself,
// when a change is applied.
type Node struct {
	// The type of node that this is.
	Kind Kind
	// For inline nodes, the text of the run.
	Text string
	// For embed nodes, the embed value, like {"image": "a.png"}.
	Value delta.Embed
	// The formats of the node: inline formats for runs and embeds, line
	// formats for blocks, table formats for tables and cell formats for
	// cells. Identity attributes are not stored here.
	Formats delta.AttributeMap
	// For rows and cells, the identifier written in the line attributes.
	ID string
	// For rows and cells, whether they are part of the header group.
	Header bool
	// The parent node. It is nil for the root.
	Parent *Node
	// The children, in document order.
	Children []*Node
}

// The size of this node, in document units. For text runs, this is the
// number of characters. Embeds count for one. Blocks count their content
// plus one for their terminator. Other nodes take the size of their
// children and nothing more.
func (n *Node) Len() int {
	switch n.Kind {
	case Inline:
		return utf8.RuneCountInString(n.Text)
	case Embed:
		return 1
	case Block:
		return n.ContentLen() + 1
	}
	return n.ContentLen()
}

// ContentLen is the size of the children.
func (n *Node) ContentLen() int {
	size := 0
	for _, child := range n.Children {
		size += child.Len()
	}
	return size
}

// IsLine is true for the nodes taking a line of the document: blocks and
// block embeds.
func (n *Node) IsLine() bool {
	return n.Kind == Block || (n.Kind == Embed && n.Parent != nil && n.Parent.Kind != Block)
}

// EmbedType returns the name of the embed.
func (n *Node) EmbedType() string {
	return n.Value.Type()
}

// Concatenates the text of the node. Lines are ended by "\n" and embeds
// are skipped.
func (n *Node) TextContent() string {
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *Node) writeText(sb *strings.Builder) {
	switch n.Kind {
	case Inline:
		sb.WriteString(n.Text)
		return
	case Embed:
		return
	}
	for _, child := range n.Children {
		child.writeText(sb)
	}
	if n.Kind == Block {
		sb.WriteString("\n")
	}
}

// Test whether two nodes represent the same piece of document.
func (n *Node) Eq(other *Node) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil {
		return false
	}
	if !n.SameMarkup(other) || n.Text != other.Text || len(n.Children) != len(other.Children) {
		return false
	}
	for i, child := range n.Children {
		if !child.Eq(other.Children[i]) {
			return false
		}
	}
	return true
}

// Compare the markup (kind, formats, identity and embed value) of two
// nodes.
func (n *Node) SameMarkup(other *Node) bool {
	return n.Kind == other.Kind && n.ID == other.ID && n.Header == other.Header &&
		n.Formats.Eq(other.Formats) &&
		delta.ValueEqual(map[string]interface{}(n.Value), map[string]interface{}(other.Value))
}

// Copy returns a deep copy of the node, without parent.
func (n *Node) Copy() *Node {
	c := &Node{
		Kind:    n.Kind,
		Text:    n.Text,
		Value:   n.Value,
		Formats: n.Formats,
		ID:      n.ID,
		Header:  n.Header,
	}
	for _, child := range n.Children {
		c.AppendChild(child.Copy())
	}
	return c
}

// Ancestor returns the closest ancestor (or the node itself) of the given
// kind.
func (n *Node) Ancestor(kind Kind) *Node {
	for node := n; node != nil; node = node.Parent {
		if node.Kind == kind {
			return node
		}
	}
	return nil
}

// Descendants calls fn for the node and all its descendants, depth first.
// When fn returns false, the children of that node are skipped.
func (n *Node) Descendants(fn func(node *Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Descendants(fn)
	}
}

// Lines returns the lines below the node, in document order.
func (n *Node) Lines() []*Node {
	var lines []*Node
	n.Descendants(func(node *Node) bool {
		if node.IsLine() {
			lines = append(lines, node)
			return false
		}
		return !node.Kind.IsLeaf()
	})
	return lines
}

// Return a string representation of this node for debugging purpose.
func (n *Node) String() string {
	switch n.Kind {
	case Inline:
		s := fmt.Sprintf("%q", n.Text)
		if len(n.Formats) > 0 {
			s += formatsString(n.Formats)
		}
		return s
	case Embed:
		return fmt.Sprintf("%s(%v)%s", n.EmbedType(), n.Value[n.EmbedType()], formatsString(n.Formats))
	}
	parts := make([]string, len(n.Children))
	for i, child := range n.Children {
		parts[i] = child.String()
	}
	name := n.Kind.String()
	if n.Header {
		name = "header" + name
	}
	return name + formatsString(n.Formats) + "(" + strings.Join(parts, ", ") + ")"
}

func formatsString(formats delta.AttributeMap) string {
	if len(formats) == 0 {
		return ""
	}
	keys := sortedKeys(formats)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, formats[k])
	}
	return "[" + strings.Join(parts, " ") + "]"
}
