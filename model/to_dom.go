package model

import (
	"bytes"
	"strings"

	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/registry"
	"github.com/cozy/quill-go/schema/list"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ToDOM renders a node, without its children, as an element.
type ToDOM = func(n *Node) *html.Node

// Order of the inline tags, from the outermost to the innermost.
var inlineOrder = []string{"code", "link", "script", "bold", "italic", "strike", "underline"}

func element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag)),
		Data:     tag,
		Attr:     attrs,
	}
}

func addAttr(n *html.Node, key, value string) {
	for i, a := range n.Attr {
		if a.Key == key {
			if key == "class" {
				n.Attr[i].Val += " " + value
			} else {
				n.Attr[i].Val = value
			}
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

// A DOMSerializer knows how to convert content nodes to markup. Tag
// formats choose elements, the other formats are written as classes,
// styles and attributes following the registry.
type DOMSerializer struct {
	registry *registry.Registry
	// Nodes may override the element used for a kind of node.
	Nodes map[Kind]ToDOM
}

// DOMSerializerFromRegistry builds a serializer for the formats of a
// registry.
func DOMSerializerFromRegistry(reg *registry.Registry) *DOMSerializer {
	return &DOMSerializer{registry: reg, Nodes: map[Kind]ToDOM{}}
}

// HTML renders the whole document.
func (d *DOMSerializer) HTML(t *Tree) (string, error) {
	target := d.SerializeFragment(t.Root.Children, nil)
	var buf bytes.Buffer
	for c := target.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// SerializeFragment renders a list of sibling lines and tables into
// target. Consecutive list items are grouped in lists and consecutive code
// lines in one <pre>.
func (d *DOMSerializer) SerializeFragment(nodes []*Node, target *html.Node) *html.Node {
	if target == nil {
		target = &html.Node{Type: html.DocumentNode}
	}
	var group *html.Node
	groupKind := ""
	for _, node := range nodes {
		kind := ""
		if node.Kind == Block {
			if v, ok := node.Formats["list"].(string); ok {
				kind = list.ContainerTag(v)
			} else if node.Formats["code-block"] != nil {
				kind = "pre"
			}
		}
		if kind != groupKind || kind == "" {
			group = nil
		}
		groupKind = kind
		switch kind {
		case "":
			target.AppendChild(d.SerializeNode(node))
		case "pre":
			if group == nil {
				group = element("pre", html.Attribute{Key: "class", Val: "ql-syntax"})
				target.AppendChild(group)
			} else {
				group.AppendChild(&html.Node{Type: html.TextNode, Data: "\n"})
			}
			d.serializeInline(node.Children, group)
		default:
			if group == nil {
				group = element(kind)
				target.AppendChild(group)
			}
			group.AppendChild(d.SerializeNode(node))
		}
	}
	return target
}

// SerializeNode renders a line, a table or a leaf with its content.
func (d *DOMSerializer) SerializeNode(node *Node) *html.Node {
	if toDOM, ok := d.Nodes[node.Kind]; ok && toDOM != nil {
		el := toDOM(node)
		d.serializeContent(node, el)
		return el
	}
	switch node.Kind {
	case Inline:
		return &html.Node{Type: html.TextNode, Data: node.Text}
	case Embed:
		return d.serializeEmbed(node)
	case Table:
		return d.serializeTable(node)
	}
	el := d.blockElement(node)
	d.serializeContent(node, el)
	return el
}

func (d *DOMSerializer) serializeContent(node *Node, el *html.Node) {
	switch node.Kind {
	case Block:
		if len(node.Children) == 0 {
			el.AppendChild(element("br"))
			return
		}
		d.serializeInline(node.Children, el)
	case Table, TableRow, TableCell, Root:
		d.SerializeFragment(node.Children, el)
	}
}

func (d *DOMSerializer) blockElement(node *Node) *html.Node {
	tag := "p"
	for _, name := range sortedKeys(node.Formats) {
		spec, ok := d.registry.Lookup(name)
		if !ok || spec.Rule.Kind != registry.TagRule || node.Formats[name] == nil {
			continue
		}
		tag = spec.TagFor(node.Formats[name])
		if name == "list" {
			tag = "li"
		}
	}
	el := element(tag)
	d.writeFormats(el, node.Formats)
	if v, ok := node.Formats["list"].(string); ok && (v == list.Checked || v == list.Unchecked) {
		addAttr(el, "data-list", v)
	}
	return el
}

// writeFormats writes the class, style and attribute formats on el.
func (d *DOMSerializer) writeFormats(el *html.Node, formats delta.AttributeMap) {
	var styles []registry.Declaration
	for _, name := range sortedKeys(formats) {
		value := formats[name]
		spec, ok := d.registry.Lookup(name)
		if !ok || value == nil || !spec.Rule.AllowsTag(el.Data) {
			continue
		}
		switch spec.Rule.Kind {
		case registry.ClassRule:
			addAttr(el, "class", spec.ClassFor(value))
		case registry.StyleRule:
			styles = append(styles, registry.Declaration{Property: spec.Rule.Name, Value: registry.Stringify(value)})
		case registry.AttributeRule:
			addAttr(el, spec.Rule.Name, registry.Stringify(value))
		}
	}
	if len(styles) > 0 {
		addAttr(el, "style", registry.FormatStyle(styles))
	}
}

func (d *DOMSerializer) serializeEmbed(node *Node) *html.Node {
	name := node.EmbedType()
	value := registry.Stringify(node.Value[name])
	spec, ok := d.registry.Lookup(name)
	var el *html.Node
	if ok && spec.Rule.Kind == registry.TagRule && len(spec.Rule.Tags) > 0 {
		el = element(spec.Rule.Tags[0])
		if spec.Rule.Name != "" {
			addAttr(el, spec.Rule.Name, value)
		}
	} else {
		el = element("span", html.Attribute{Key: "class", Val: "ql-" + name})
	}
	if name == "video" {
		addAttr(el, "class", "ql-video")
		addAttr(el, "frameborder", "0")
		addAttr(el, "allowfullscreen", "true")
	}
	d.writeFormats(el, node.Formats)
	return el
}

func (d *DOMSerializer) serializeTable(table *Node) *html.Node {
	el := element("table")
	d.writeFormats(el, table.Formats)
	var head, body *html.Node
	for _, row := range table.Children {
		section := body
		if row.Header {
			if head == nil {
				head = element("thead")
				el.AppendChild(head)
			}
			section = head
		} else if body == nil {
			body = element("tbody")
			el.AppendChild(body)
			section = body
		}
		tr := element("tr")
		section.AppendChild(tr)
		for _, cell := range row.Children {
			tag := "td"
			if cell.Header {
				tag = "th"
			}
			td := element(tag)
			d.writeFormats(td, cell.Formats)
			d.SerializeFragment(cell.Children, td)
			tr.AppendChild(td)
		}
	}
	return el
}

type wrapper struct {
	name  string
	value interface{}
	el    *html.Node
}

// serializeInline renders leaves into target, sharing the wrapping
// elements between consecutive leaves with the same formats.
func (d *DOMSerializer) serializeInline(leaves []*Node, target *html.Node) {
	var active []wrapper
	for _, leaf := range leaves {
		wanted := d.inlineWrappers(leaf)
		keep := 0
		for keep < len(active) && keep < len(wanted) &&
			active[keep].name == wanted[keep].name &&
			delta.ValueEqual(active[keep].value, wanted[keep].value) {
			keep++
		}
		active = active[:keep]
		top := target
		if keep > 0 {
			top = active[keep-1].el
		}
		for _, w := range wanted[keep:] {
			top.AppendChild(w.el)
			top = w.el
			active = append(active, w)
		}
		if leaf.Kind == Embed {
			top.AppendChild(d.serializeEmbed(leaf))
		} else {
			top.AppendChild(&html.Node{Type: html.TextNode, Data: leaf.Text})
		}
	}
}

// inlineWrappers returns the elements a leaf is wrapped in: the tag formats
// in their fixed order, then a <span> for class and style formats.
func (d *DOMSerializer) inlineWrappers(leaf *Node) []wrapper {
	var result []wrapper
	for _, name := range inlineOrder {
		value := leaf.Formats[name]
		if value == nil {
			continue
		}
		spec, ok := d.registry.Lookup(name)
		if !ok || spec.Rule.Kind != registry.TagRule {
			continue
		}
		el := element(spec.TagFor(value))
		if spec.Rule.Name != "" {
			addAttr(el, spec.Rule.Name, registry.Stringify(value))
			if name == "link" {
				addAttr(el, "rel", "noopener noreferrer")
				addAttr(el, "target", "_blank")
			}
		}
		result = append(result, wrapper{name: name, value: value, el: el})
	}
	if leaf.Kind == Embed {
		return result
	}
	span := element("span")
	d.writeFormats(span, leaf.Formats)
	if len(span.Attr) > 0 {
		var key strings.Builder
		for _, a := range span.Attr {
			key.WriteString(a.Key + "=" + a.Val + ";")
		}
		result = append(result, wrapper{name: "span", value: key.String(), el: span})
	}
	return result
}
