package model

import "fmt"

// ResolvedPos is a document position resolved to the nodes containing it.
// Path goes from the root to the deepest node holding the position; for
// each of them, Starts holds the offset of its start in the document.
type ResolvedPos struct {
	// The position that was resolved.
	Pos    int
	Path   []*Node
	Starts []int
	// The offset this position has into its parent node.
	ParentOffset int
}

// Depth is the number of levels the parent node is from the root. If this
// position points directly into the root node, it is 0.
func (r *ResolvedPos) Depth() int {
	return len(r.Path) - 1
}

// Node returns the ancestor node at the given level. Without argument, it
// returns the deepest node.
func (r *ResolvedPos) Node(depth ...int) *Node {
	return r.Path[r.resolveDepth(depth)]
}

// Start returns the document offset of the start of the node at the given
// level.
func (r *ResolvedPos) Start(depth ...int) int {
	return r.Starts[r.resolveDepth(depth)]
}

// End returns the document offset of the end of the node at the given
// level.
func (r *ResolvedPos) End(depth ...int) int {
	d := r.resolveDepth(depth)
	return r.Starts[d] + r.Path[d].Len()
}

func (r *ResolvedPos) resolveDepth(depth []int) int {
	if len(depth) == 0 {
		return r.Depth()
	}
	if depth[0] < 0 {
		return r.Depth() + depth[0]
	}
	return depth[0]
}

// Line returns the line containing the position and the offset into it.
// It is nil for the position at the very end of the document.
func (r *ResolvedPos) Line() (*Node, int) {
	for d := r.Depth(); d >= 0; d-- {
		if n := r.Path[d]; n.IsLine() {
			return n, r.Pos - r.Starts[d]
		}
	}
	return nil, 0
}

// Cell returns the table cell containing the position, if any.
func (r *ResolvedPos) Cell() *Node {
	for d := r.Depth(); d >= 0; d-- {
		if r.Path[d].Kind == TableCell {
			return r.Path[d]
		}
	}
	return nil
}

// Table returns the table containing the position, if any.
func (r *ResolvedPos) Table() *Node {
	for d := r.Depth(); d >= 0; d-- {
		if r.Path[d].Kind == Table {
			return r.Path[d]
		}
	}
	return nil
}

// String returns a debug representation of the position.
func (r *ResolvedPos) String() string {
	str := ""
	for i, n := range r.Path {
		if i > 0 {
			str += "/"
		}
		str += fmt.Sprintf("%s@%d", n.Kind, r.Starts[i])
	}
	return fmt.Sprintf("%s:%d", str, r.ParentOffset)
}

// Resolve finds the nodes containing a position. A position between two
// nodes belongs to the one starting there. Inside a block, the position of
// its terminator resolves to the block itself.
func (t *Tree) Resolve(pos int) (*ResolvedPos, error) {
	if pos < 0 || pos > t.Length() {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfRange, pos, t.Length())
	}
	r := &ResolvedPos{Pos: pos}
	node, start := t.Root, 0
	for {
		r.Path = append(r.Path, node)
		r.Starts = append(r.Starts, start)
		r.ParentOffset = pos - start
		if node.Kind.IsLeaf() {
			return r, nil
		}
		index, offset := node.FindIndex(pos - start)
		if index == len(node.Children) {
			return r, nil
		}
		node, start = node.Children[index], start+offset
	}
}

// IndexToNode returns the deepest node holding a position and the offset of
// the position into it.
func (t *Tree) IndexToNode(pos int) (*Node, int, error) {
	r, err := t.Resolve(pos)
	if err != nil {
		return nil, 0, err
	}
	return r.Node(), r.ParentOffset, nil
}

// Line returns the line holding a position, and the offset into it.
func (t *Tree) Line(pos int) (*Node, int, error) {
	r, err := t.Resolve(pos)
	if err != nil {
		return nil, 0, err
	}
	line, offset := r.Line()
	if line == nil {
		return nil, 0, fmt.Errorf("%w: no line at %d", ErrOutOfRange, pos)
	}
	return line, offset, nil
}

// LinesBetween returns the lines intersecting [from, from+length). An
// empty range returns the line holding from.
func (t *Tree) LinesBetween(from, length int) []*Node {
	var result []*Node
	to := from + length
	if length == 0 {
		to = from + 1
	}
	offset := 0
	for _, l := range t.Lines() {
		if offset >= to {
			break
		}
		end := offset + l.Len()
		if end > from {
			result = append(result, l)
		}
		offset = end
	}
	return result
}
