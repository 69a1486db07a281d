package registry_test

import (
	"testing"

	. "github.com/cozy/quill-go/registry"
	"github.com/stretchr/testify/assert"
)

func TestSpecAccepts(t *testing.T) {
	yes := func(spec *Spec, v interface{}) {
		t.Helper()
		assert.True(t, spec.Accepts(v), "%s should accept %v", spec.Name, v)
	}
	no := func(spec *Spec, v interface{}) {
		t.Helper()
		assert.False(t, spec.Accepts(v), "%s should refuse %v", spec.Name, v)
	}

	align := &Spec{Name: "align", Kind: String, Values: []string{"right", "center"}}
	yes(align, "right")
	no(align, "left")
	no(align, 1)

	color := &Spec{Name: "color", Kind: String}
	yes(color, "#fff")
	no(color, "")

	header := &Spec{Name: "header", Kind: Number}
	yes(header, 1)
	yes(header, 2.0)
	no(header, "1")

	bold := &Spec{Name: "bold", Kind: Bool}
	yes(bold, true)
	no(bold, "true")

	line := &Spec{Name: "line", Kind: Object}
	yes(line, map[string]interface{}{"row": "a"})
	no(line, "a")

	anything := &Spec{Name: "any"}
	yes(anything, []interface{}{1})
}

func TestSpecParse(t *testing.T) {
	v, ok := (&Spec{Kind: Number}).Parse(" 3 ")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = (&Spec{Kind: Number}).Parse("x")
	assert.False(t, ok)

	v, ok = (&Spec{Kind: Bool}).Parse("true")
	assert.True(t, ok)
	assert.Equal(t, true, v)

	_, ok = (&Spec{Kind: String}).Parse("  ")
	assert.False(t, ok)
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "2", Stringify(2.0))
	assert.Equal(t, "1.5", Stringify(1.5))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "red", Stringify("red"))
	assert.Equal(t, "", Stringify(nil))
}

func TestSpecTagFor(t *testing.T) {
	header := &Spec{Kind: Number, Rule: Tag("h1", "h2", "h3")}
	assert.Equal(t, "h2", header.TagFor(2))
	assert.Equal(t, "h1", header.TagFor(9))

	script := &Spec{Kind: String, Rule: Tag("sub", "sup"), Values: []string{"sub", "super"}}
	assert.Equal(t, "sup", script.TagFor("super"))

	assert.Equal(t, "", (&Spec{Rule: Style("color")}).TagFor("red"))
	assert.Equal(t, "ql-align-right", (&Spec{Rule: Class("ql-align")}).ClassFor("right"))
}

func TestParseStyle(t *testing.T) {
	decls := ParseStyle("border: 2px dashed green; background-color: azure;; bad")
	assert.Equal(t, []Declaration{
		{Property: "border", Value: "2px dashed green"},
		{Property: "background-color", Value: "azure"},
	}, decls)
	assert.Equal(t, "border: 2px dashed green; background-color: azure;", FormatStyle(decls))
}
