// Package list defines the list formats: list items and indentation.
package list

import "github.com/cozy/quill-go/registry"

// Kinds of list items.
const (
	Ordered   = "ordered"
	Bullet    = "bullet"
	Checked   = "checked"
	Unchecked = "unchecked"
)

// Specs of the list formats. A list item is a line with a list format; the
// items of consecutive lines are grouped in one <ol> or <ul>.
var Specs = []*registry.Spec{
	{Name: "list", Scope: registry.Block, Kind: registry.String,
		Rule: registry.Tag("li"), Values: []string{Ordered, Bullet, Checked, Unchecked}},
	{Name: "indent", Scope: registry.Block, Kind: registry.Number, Rule: registry.Class("ql-indent")},
}

// Register adds the list formats to r.
func Register(r *registry.Registry) error {
	return r.Register(Specs...)
}

// ContainerTag returns the element wrapping items of the given kind.
func ContainerTag(kind string) string {
	if kind == Ordered {
		return "ol"
	}
	return "ul"
}
