package model

import "github.com/cozy/quill-go/delta"

// FindDiffStart returns the offset of the first top-level child where two
// nodes differ, or false when their children are identical.
func FindDiffStart(a, b *Node) (int, bool) {
	pos := 0
	for i := 0; ; i++ {
		if i == len(a.Children) || i == len(b.Children) {
			if len(a.Children) == len(b.Children) {
				return 0, false
			}
			return pos, true
		}
		childA, childB := a.Children[i], b.Children[i]
		if !childA.Eq(childB) {
			return pos, true
		}
		pos += childA.Len()
	}
}

// FindDiffEnd returns the end offsets, in a and in b, of the last
// top-level children where the nodes differ.
func FindDiffEnd(a, b *Node) (int, int, bool) {
	posA, posB := a.Len(), b.Len()
	for iA, iB := len(a.Children), len(b.Children); ; {
		if iA == 0 || iB == 0 {
			if iA == iB {
				return 0, 0, false
			}
			return posA, posB, true
		}
		iA--
		iB--
		childA, childB := a.Children[iA], b.Children[iB]
		if !childA.Eq(childB) {
			return posA, posB, true
		}
		posA -= childA.Len()
		posB -= childB.Len()
	}
}

// Diff returns the change turning document a into document b. Identical
// leading and trailing top-level nodes are skipped before the text diff.
func Diff(a, b *Tree) (*delta.Delta, error) {
	start, found := FindDiffStart(a.Root, b.Root)
	if !found {
		return delta.New(), nil
	}
	endA, endB, _ := FindDiffEnd(a.Root, b.Root)
	if overlap := start - min(endA, endB); overlap > 0 {
		endA += overlap
		endB += overlap
	}
	docA, docB := a.ToDelta(), b.ToDelta()
	middle, err := docA.Slice(start, endA).Diff(docB.Slice(start, endB))
	if err != nil {
		return nil, err
	}
	return delta.New().Retain(start, nil).Concat(middle).Chop(), nil
}
