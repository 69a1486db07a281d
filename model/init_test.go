package model_test

import (
	"github.com/cozy/quill-go/delta"
	. "github.com/cozy/quill-go/model"
	"github.com/cozy/quill-go/schema/list"
	"github.com/cozy/quill-go/test/builder"
)

type attrs = builder.Attrs

var (
	registry   = builder.Registry
	doc        = builder.Doc
	tree       = builder.Tree
	p          = builder.P
	h          = builder.H
	li         = builder.Li
	bold       = builder.Bold
	italic     = builder.Italic
	link       = builder.Link
	img        = builder.Image
	video      = builder.Video
	cell       = builder.Cell
	headerCell = builder.HeaderCell
	grid       = builder.Grid
	line       = builder.Line

	bullet  = list.Bullet
	ordered = list.Ordered
)

func build(d *delta.Delta) *Tree {
	t, err := BuildFromDelta(registry, d)
	if err != nil {
		panic(err)
	}
	return t
}
