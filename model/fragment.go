package model

import "sort"

// AppendChild adds children at the end of the node.
func (n *Node) AppendChild(children ...*Node) {
	for _, child := range children {
		child.Parent = n
	}
	n.Children = append(n.Children, children...)
}

// ReplaceChildren replaces the children in [from, to) by the given nodes.
func (n *Node) ReplaceChildren(from, to int, nodes ...*Node) {
	for _, child := range n.Children[from:to] {
		if child.Parent == n {
			child.Parent = nil
		}
	}
	for _, node := range nodes {
		node.Parent = n
	}
	tail := append([]*Node(nil), n.Children[to:]...)
	n.Children = append(append(n.Children[:from], nodes...), tail...)
}

// RemoveChild detaches a child from the node.
func (n *Node) RemoveChild(child *Node) {
	if i := n.IndexOfChild(child); i >= 0 {
		n.ReplaceChildren(i, i+1)
	}
}

// IndexOfChild returns the index of a child, or -1.
func (n *Node) IndexOfChild(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// ChildOffset returns the offset of the start of the child at index, relative
// to the start of the node.
func (n *Node) ChildOffset(index int) int {
	offset := 0
	for _, child := range n.Children[:index] {
		offset += child.Len()
	}
	return offset
}

// FindIndex finds the child containing the given offset, relative to the
// start of the node. It returns the child index and the offset of its start.
// An offset at the end of the node returns len(Children).
func (n *Node) FindIndex(pos int) (int, int) {
	offset := 0
	for i, child := range n.Children {
		end := offset + child.Len()
		if pos < end {
			return i, offset
		}
		offset = end
	}
	return len(n.Children), offset
}

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
