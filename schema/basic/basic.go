// Package basic defines the everyday formats of a rich text document:
// inline styles, headers and paragraphs, images and videos. Its specs can be
// reused to build other registries.
package basic

import (
	"github.com/cozy/quill-go/registry"
	"go.uber.org/zap"
)

// Inline are the formats applying to runs of text.
var Inline = []*registry.Spec{
	// Strong emphasis, written as <strong> and also read from <b>.
	{Name: "bold", Scope: registry.Inline, Kind: registry.Bool, Rule: registry.Tag("strong", "b")},
	{Name: "italic", Scope: registry.Inline, Kind: registry.Bool, Rule: registry.Tag("em", "i")},
	{Name: "underline", Scope: registry.Inline, Kind: registry.Bool, Rule: registry.Tag("u")},
	{Name: "strike", Scope: registry.Inline, Kind: registry.Bool, Rule: registry.Tag("s", "strike", "del")},
	{Name: "code", Scope: registry.Inline, Kind: registry.Bool, Rule: registry.Tag("code")},

	// A link. Its value is the href of the <a> element.
	{Name: "link", Scope: registry.Inline, Kind: registry.String, Rule: registry.Rule{
		Kind: registry.TagRule, Name: "href", Tags: []string{"a"},
	}},

	// Subscript and superscript. The nth tag maps to the nth value.
	{Name: "script", Scope: registry.Inline, Kind: registry.String,
		Rule: registry.Tag("sub", "sup"), Values: []string{"sub", "super"}},

	{Name: "color", Scope: registry.Inline, Kind: registry.String, Rule: registry.Style("color")},
	{Name: "background", Scope: registry.Inline, Kind: registry.String, Rule: registry.Style("background-color")},
	{Name: "font", Scope: registry.Inline, Kind: registry.String,
		Rule: registry.Class("ql-font"), Values: []string{"serif", "monospace"}},
	{Name: "size", Scope: registry.Inline, Kind: registry.String,
		Rule: registry.Class("ql-size"), Values: []string{"small", "large", "huge"}},

	// Image dimensions and alternative text, carried by the image embed.
	{Name: "width", Scope: registry.Inline, Kind: registry.String, Rule: registry.Attribute("width", "img")},
	{Name: "height", Scope: registry.Inline, Kind: registry.String, Rule: registry.Attribute("height", "img")},
	{Name: "alt", Scope: registry.Inline, Kind: registry.String, Rule: registry.Attribute("alt", "img")},
}

// Blocks are the formats carried by line terminators.
var Blocks = []*registry.Spec{
	// A heading, with a level from 1 to 6. Written as <h1> to <h6>.
	{Name: "header", Scope: registry.Block, Kind: registry.Number,
		Rule: registry.Tag("h1", "h2", "h3", "h4", "h5", "h6")},
	{Name: "blockquote", Scope: registry.Block, Kind: registry.Bool, Rule: registry.Tag("blockquote")},
	// A code listing line. Consecutive lines render in one <pre>.
	{Name: "code-block", Scope: registry.Block, Kind: registry.Bool, Rule: registry.Tag("pre")},
	{Name: "align", Scope: registry.Block, Kind: registry.String,
		Rule: registry.Class("ql-align"), Values: []string{"right", "center", "justify"}},
	{Name: "direction", Scope: registry.Block, Kind: registry.String,
		Rule: registry.Class("ql-direction"), Values: []string{"rtl"}},
}

// Embeds are the non-text inserts.
var Embeds = []*registry.Spec{
	// An inline image (<img>). Its value is the source URL.
	{Name: "image", Scope: registry.InlineEmbed, Kind: registry.String, Rule: registry.Rule{
		Kind: registry.TagRule, Name: "src", Tags: []string{"img"},
	}},
	// A video takes its own line, rendered as an <iframe>.
	{Name: "video", Scope: registry.BlockEmbed, Kind: registry.String, Rule: registry.Rule{
		Kind: registry.TagRule, Name: "src", Tags: []string{"iframe"},
	}},
}

// Register adds the basic formats to r.
func Register(r *registry.Registry) error {
	if err := r.Register(Inline...); err != nil {
		return err
	}
	if err := r.Register(Blocks...); err != nil {
		return err
	}
	return r.Register(Embeds...)
}

// NewRegistry returns a frozen registry with the basic formats.
func NewRegistry(logger *zap.Logger) (*registry.Registry, error) {
	r := registry.New(registry.WithLogger(logger))
	if err := Register(r); err != nil {
		return nil, err
	}
	r.Freeze()
	return r, nil
}
