package model

import (
	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/registry"
	"go.uber.org/zap"
)

// TableNormalizer repairs a table built from a change. It may add cells and
// rows, or return an error when the table cannot be repaired, in which case
// the table is removed.
type TableNormalizer func(table *Node) error

// Tree is a document: the content tree and the registry of the formats it
// may hold. It is not safe for concurrent use; an editor session owns it.
type Tree struct {
	Root      *Node
	registry  *registry.Registry
	logger    *zap.Logger
	normalize TableNormalizer
}

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the logger of the tree.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tree) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithTableNormalizer sets the function called on every table touched by a
// change.
func WithTableNormalizer(fn TableNormalizer) Option {
	return func(t *Tree) {
		t.normalize = fn
	}
}

// NewTree returns an empty document.
func NewTree(reg *registry.Registry, opts ...Option) *Tree {
	t := &Tree{
		Root:     &Node{Kind: Root},
		registry: reg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// BuildFromDelta creates the tree of a document. Unknown formats and embeds
// are dropped, and a missing final line terminator is added.
func BuildFromDelta(reg *registry.Registry, doc *delta.Delta, opts ...Option) (*Tree, error) {
	if !doc.IsDocument() {
		return nil, delta.ErrNotDocument
	}
	t := NewTree(reg, opts...)
	if _, err := t.ApplyDelta(doc); err != nil {
		return nil, err
	}
	return t, nil
}

// Registry returns the registry of the tree.
func (t *Tree) Registry() *registry.Registry {
	return t.registry
}

// Logger returns the logger of the tree.
func (t *Tree) Logger() *zap.Logger {
	return t.logger
}

// Length is the number of units of the document.
func (t *Tree) Length() int {
	return t.Root.Len()
}

// ToDelta returns the document as a delta of inserts.
func (t *Tree) ToDelta() *delta.Delta {
	return t.Root.Delta()
}

// Lines returns the lines of the document.
func (t *Tree) Lines() []*Node {
	return t.Root.Lines()
}

// Clone returns a deep copy of the tree, sharing the registry.
func (t *Tree) Clone() *Tree {
	return &Tree{
		Root:      t.Root.Copy(),
		registry:  t.registry,
		logger:    t.logger,
		normalize: t.normalize,
	}
}

// String returns a debug representation of the document.
func (t *Tree) String() string {
	return t.Root.String()
}

// IndexOf returns the offset of the start of a node in the document.
func (t *Tree) IndexOf(node *Node) int {
	index := 0
	for n := node; n.Parent != nil; n = n.Parent {
		index += n.Parent.ChildOffset(n.Parent.IndexOfChild(n))
	}
	return index
}
