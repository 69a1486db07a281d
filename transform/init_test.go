package transform_test

import (
	"testing"

	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/model"
	"github.com/cozy/quill-go/test/builder"
	"github.com/stretchr/testify/require"
)

type attrs = builder.Attrs

var (
	doc    = builder.Doc
	p      = builder.P
	h      = builder.H
	li     = builder.Li
	italic = builder.Italic
)

func build(t *testing.T, parts ...interface{}) *model.Tree {
	tr, err := model.BuildFromDelta(builder.Registry, doc(parts...))
	require.NoError(t, err)
	return tr
}

func insertAt(index int, text string) *delta.Delta {
	return delta.New().Retain(index, nil).Insert(text, nil)
}

func deleteAt(index, length int) *delta.Delta {
	return delta.New().Retain(index, nil).Delete(length)
}
