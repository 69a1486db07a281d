// Package markdown writes documents as GitHub flavored Markdown. Formats
// without a Markdown syntax (colors, alignment, ...) are dropped.
package markdown

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/model"
	"github.com/cozy/quill-go/schema/list"
	md "github.com/nao1215/markdown"
)

// LineSerializerFunc is the function to serialize a line.
type LineSerializerFunc func(state *SerializerState, line *model.Node)

// FormatFunc computes the opening or closing string of a format, from the
// leaves of the line and the index of the leaf where it opens or closes.
type FormatFunc func(state *SerializerState, f Format, leaves []*model.Node, index int) string

// FormatSerializerSpec is the serializer info for an inline format.
type FormatSerializerSpec struct {
	Open                     interface{} // Can be a string or a FormatFunc
	Close                    interface{} // Can be a string or a FormatFunc
	Mixable                  bool
	ExpelEnclosingWhitespace bool
	NoEscape                 bool
}

// Format is an inline format of a leaf.
type Format struct {
	Name  string
	Value interface{}
}

// Eq tells if two formats have the same name and value.
func (f Format) Eq(other Format) bool {
	return f.Name == other.Name && delta.ValueEqual(f.Value, other.Value)
}

func (f Format) isIn(set []Format) bool {
	for _, other := range set {
		if f.Eq(other) {
			return true
		}
	}
	return false
}

// Serializer describes how to write a document as Markdown.
//
// Lines are keyed by their main line format ("header", "blockquote", ...),
// "paragraph" for the plain lines, and by the embed name for block embeds.
// Lists, code blocks, blockquotes and tables are written by the serializer
// state itself, as they group consecutive lines.
//
// Order lists the inline formats written, from the outermost to the
// innermost. A format with NoEscape must come last.
type Serializer struct {
	Lines   map[string]LineSerializerFunc
	Formats map[string]FormatSerializerSpec
	Order   []string
}

// NewSerializer constructs a serializer with the given configuration.
func NewSerializer(lines map[string]LineSerializerFunc, formats map[string]FormatSerializerSpec, order []string) *Serializer {
	return &Serializer{
		Lines:   lines,
		Formats: formats,
		Order:   order,
	}
}

// Serialize the document to Markdown.
func (s *Serializer) Serialize(t *model.Tree) (string, error) {
	state := NewSerializerState(s)
	state.RenderContent(t.Root.Children)
	if state.err != nil {
		return "", state.err
	}
	return state.Out, nil
}

func getAttrInt(attrs delta.AttributeMap, name string, defaultValue int) int {
	value := defaultValue
	switch v := attrs[name].(type) {
	case int:
		value = v
	case float64:
		value = int(v)
	case int64:
		value = int(v)
	}
	return value
}

var backticksRegexp = regexp.MustCompile("`{3,}")

func escapeURL(url string) string {
	url = strings.ReplaceAll(url, "(", "\\(")
	return strings.ReplaceAll(url, ")", "\\)")
}

// DefaultSerializer is a serializer for the basic, list and table formats.
var DefaultSerializer = NewSerializer(map[string]LineSerializerFunc{
	"header": func(state *SerializerState, line *model.Node) {
		level := getAttrInt(line.Formats, "header", 1)
		if level < 1 || level > 6 {
			level = 1
		}
		state.Write(strings.Repeat("#", level) + " ")
		state.RenderInline(line)
		state.CloseBlock(line)
	},
	"paragraph": func(state *SerializerState, line *model.Node) {
		state.RenderInline(line)
		state.CloseBlock(line)
	},
	"video": func(state *SerializerState, line *model.Node) {
		src := stringOf(line.Value["video"])
		state.Write(fmt.Sprintf("[%s](%s)", state.Esc(src), escapeURL(src)))
		state.CloseBlock(line)
	},
}, map[string]FormatSerializerSpec{
	"italic": {Open: "*", Close: "*", Mixable: true, ExpelEnclosingWhitespace: true},
	"bold":   {Open: "**", Close: "**", Mixable: true, ExpelEnclosingWhitespace: true},
	"strike": {Open: "~~", Close: "~~", Mixable: true, ExpelEnclosingWhitespace: true},
	"link": {
		Open: FormatFunc(func(state *SerializerState, f Format, leaves []*model.Node, index int) string {
			state.InAutoLink = isPlainURL(f, leaves, index)
			if state.InAutoLink {
				return "<"
			}
			return "["
		}),
		Close: FormatFunc(func(state *SerializerState, f Format, leaves []*model.Node, index int) string {
			if state.InAutoLink {
				state.InAutoLink = false
				return ">"
			}
			href := strings.ReplaceAll(escapeURL(stringOf(f.Value)), `"`, `\"`)
			return fmt.Sprintf("](%s)", href)
		}),
		Mixable: true,
	},
	"code": {
		Open: FormatFunc(func(_ *SerializerState, _ Format, leaves []*model.Node, index int) string {
			if index >= len(leaves) {
				return "`"
			}
			return backticksFor(leaves[index], -1)
		}),
		Close: FormatFunc(func(_ *SerializerState, _ Format, leaves []*model.Node, index int) string {
			if index < 1 || index > len(leaves) {
				return "`"
			}
			return backticksFor(leaves[index-1], 1)
		}),
		NoEscape: true,
	},
}, []string{"link", "bold", "italic", "strike", "code"})

func stringOf(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func backticksFor(leaf *model.Node, side int) string {
	length := 0
	if leaf.Kind == model.Inline {
		ticks := strings.FieldsFunc(leaf.Text, func(r rune) bool { return r != '`' })
		for _, t := range ticks {
			if l := len(t); l > length {
				length = l
			}
		}
	}
	result := "`"
	if length > 0 && side > 0 {
		result = " `"
	}
	result += strings.Repeat("`", length)
	if length > 0 && side < 0 {
		result += " "
	}
	return result
}

func isPlainURL(link Format, leaves []*model.Node, index int) bool {
	href := stringOf(link.Value)
	if !strings.Contains(href, ":") {
		return false
	}
	if index >= len(leaves) {
		return true
	}
	content := leaves[index]
	if content.Kind != model.Inline || content.Text != href {
		return false
	}
	for name := range content.Formats {
		if name != "link" && content.Formats[name] != nil {
			return false
		}
	}
	if index == len(leaves)-1 {
		return true
	}
	return !delta.ValueEqual(leaves[index+1].Formats["link"], link.Value)
}

// SerializerState is an object used to track state and expose methods
// related to markdown serialization. Instances are passed to line and format
// serialization functions.
type SerializerState struct {
	*Serializer
	Delim        string
	Out          string
	Closed       *model.Node
	InAutoLink   bool
	AtBlockStart bool
	InTightList  bool
	err          error
}

// NewSerializerState is the constructor for SerializerState.
func NewSerializerState(s *Serializer) *SerializerState {
	return &SerializerState{Serializer: s}
}

func (s *SerializerState) flushClose(size ...int) {
	if s.Closed == nil {
		return
	}
	s.EnsureNewLine()
	siz := 2
	if len(size) > 0 {
		siz = size[0]
	}
	if siz > 1 {
		delimMin := strings.TrimRightFunc(s.Delim, unicode.IsSpace)
		for i := 1; i < siz; i++ {
			s.Out += delimMin + "\n"
		}
	}
	s.Closed = nil
}

// WrapBlock renders a block, prefixing each line with `delim`, and the first
// line in `firstDelim`. `node` should be the node that is closed at the end
// of the block, and `f` is a function that renders the content of the block.
func (s *SerializerState) WrapBlock(delim string, firstDelim *string, node *model.Node, f func()) {
	old := s.Delim
	d := delim
	if firstDelim != nil {
		d = *firstDelim
	}
	s.Write(d)
	s.Delim += delim
	f()
	s.Delim = old
	s.CloseBlock(node)
}

func (s *SerializerState) atBlank() bool {
	if len(s.Out) == 0 {
		return true
	}
	return s.Out[len(s.Out)-1] == '\n'
}

// EnsureNewLine ensures the current content ends with a newline.
func (s *SerializerState) EnsureNewLine() {
	if !s.atBlank() {
		s.Out += "\n"
	}
}

// Write prepares the state for writing output (closing closed paragraphs,
// adding delimiters, and so on), and then optionally add content
// (unescaped) to the output.
func (s *SerializerState) Write(content ...string) {
	s.flushClose()
	if s.Delim != "" && s.atBlank() {
		s.Out += s.Delim
	}
	if len(content) > 0 {
		s.Out += content[0]
	}
}

// CloseBlock closes the block for the given node.
func (s *SerializerState) CloseBlock(node *model.Node) {
	s.Closed = node
}

var textRegexp1 = regexp.MustCompile(`(^|[^\\])\!$`)

// Text adds the given text to the document. When escape is not `false`, it
// will be escaped.
func (s *SerializerState) Text(text string, escape ...bool) {
	lines := strings.Split(text, "\n")
	esc := true
	if len(escape) > 0 {
		esc = escape[0]
	}
	for i, line := range lines {
		s.Write()
		// Escape exclamation marks in front of links
		if !esc && strings.HasPrefix(line, "[") && textRegexp1.MatchString(s.Out) {
			s.Out = s.Out[:len(s.Out)-1] + "\\!"
		}
		if esc {
			s.Out += s.Esc(line, s.AtBlockStart)
		} else {
			s.Out += line
		}
		if i != len(lines)-1 {
			s.Out += "\n"
		}
	}
}

// lineType returns the key of the line in the Lines of the serializer.
func lineType(line *model.Node) string {
	if line.Kind == model.Embed {
		return line.EmbedType()
	}
	for _, name := range []string{"code-block", "list", "blockquote", "header"} {
		if line.Formats[name] != nil {
			return name
		}
	}
	return "paragraph"
}

// Render the given line.
func (s *SerializerState) Render(line *model.Node) {
	if fn, ok := s.Lines[lineType(line)]; ok {
		fn(s, line)
	} else if fn, ok := s.Lines["paragraph"]; ok && line.Kind == model.Block {
		fn(s, line)
	}
}

// RenderContent renders a sequence of lines and tables. Consecutive lines
// of the same list, code block or blockquote are grouped.
func (s *SerializerState) RenderContent(nodes []*model.Node) {
	for i := 0; i < len(nodes); {
		node := nodes[i]
		if node.Kind == model.Table {
			s.RenderTable(node)
			i++
			continue
		}
		kind := lineType(node)
		j := i + 1
		for j < len(nodes) && nodes[j].Kind == model.Block && lineType(nodes[j]) == kind {
			j++
		}
		switch kind {
		case "list":
			s.RenderList(nodes[i:j])
		case "code-block":
			s.RenderCode(nodes[i:j])
		case "blockquote":
			s.WrapBlock("> ", nil, nodes[j-1], func() {
				for k, line := range nodes[i:j] {
					if k > 0 {
						s.flushClose(2)
					}
					s.RenderInline(line)
					s.CloseBlock(line)
				}
			})
		default:
			j = i + 1
			s.Render(node)
		}
		i = j
	}
}

// RenderCode writes consecutive code lines in one fenced block.
func (s *SerializerState) RenderCode(lines []*model.Node) {
	texts := make([]string, len(lines))
	for i, line := range lines {
		texts[i] = strings.TrimSuffix(line.TextContent(), "\n")
	}
	content := strings.Join(texts, "\n")
	fence := "```"
	for _, backticks := range backticksRegexp.FindAllString(content, -1) {
		if len(backticks) >= len(fence) {
			fence = backticks + "`"
		}
	}
	s.Write(fence + "\n")
	s.Text(content, false)
	s.EnsureNewLine()
	s.Write(fence)
	s.CloseBlock(lines[len(lines)-1])
}

// RenderList renders consecutive list items as a tight list. Nested items
// are indented by their indent format; ordered items are numbered per
// level.
func (s *SerializerState) RenderList(items []*model.Node) {
	if s.InTightList {
		s.flushClose(1)
	}
	prevTight := s.InTightList
	s.InTightList = true
	var counters []int
	for i, item := range items {
		if i > 0 {
			s.flushClose(1)
		}
		level := getAttrInt(item.Formats, "indent", 0)
		if level < 0 {
			level = 0
		}
		for len(counters) <= level {
			counters = append(counters, 0)
		}
		counters = counters[:level+1]
		kind, _ := item.Formats["list"].(string)
		first := strings.Repeat("    ", level)
		switch kind {
		case list.Ordered:
			counters[level]++
			first += fmt.Sprintf("%d. ", counters[level])
		case list.Checked:
			counters[level] = 0
			first += "* [x] "
		case list.Unchecked:
			counters[level] = 0
			first += "* [ ] "
		default:
			counters[level] = 0
			first += "* "
		}
		s.WrapBlock(strings.Repeat(" ", len(first)), &first, item, func() {
			s.RenderInline(item)
		})
	}
	s.InTightList = prevTight
}

var cellEscape = strings.NewReplacer("|", "\\|")

// RenderTable writes a table as a pipe table. The leading header row
// becomes the table header; without one, the header is left blank. The
// paragraphs of a cell are separated by <br>.
func (s *SerializerState) RenderTable(table *model.Node) {
	var header []string
	var rows [][]string
	cols := 0
	for i, row := range table.Children {
		cells := make([]string, len(row.Children))
		for j, cell := range row.Children {
			cells[j] = s.cellText(cell)
		}
		if len(cells) > cols {
			cols = len(cells)
		}
		if i == 0 && row.Header {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}
	for len(header) < cols {
		header = append(header, "")
	}
	for i := range rows {
		for len(rows[i]) < cols {
			rows[i] = append(rows[i], "")
		}
	}

	var buf strings.Builder
	err := md.NewMarkdown(&buf).
		CustomTable(md.TableSet{
			Header: header,
			Rows:   rows,
		}, md.TableOptions{
			AutoWrapText: false,
		}).
		Build()
	if err != nil {
		if s.err == nil {
			s.err = fmt.Errorf("markdown: table: %w", err)
		}
		return
	}
	s.Write()
	for i, line := range strings.Split(strings.Trim(buf.String(), "\n"), "\n") {
		if i > 0 {
			s.Out += "\n"
			s.Write()
		}
		s.Out += line
	}
	s.CloseBlock(table)
}

func (s *SerializerState) cellText(cell *model.Node) string {
	var parts []string
	for _, line := range cell.Children {
		if line.Kind != model.Block {
			continue
		}
		sub := NewSerializerState(s.Serializer)
		sub.RenderInline(line)
		parts = append(parts, cellEscape.Replace(sub.Out))
	}
	return strings.Join(parts, "<br>")
}

// formatsOf returns the formats of a leaf written by the serializer, from
// the outermost to the innermost.
func (s *SerializerState) formatsOf(leaf *model.Node) []Format {
	var formats []Format
	for _, name := range s.Order {
		if _, ok := s.Formats[name]; !ok {
			continue
		}
		if v := leaf.Formats[name]; v != nil && v != false {
			formats = append(formats, Format{Name: name, Value: v})
		}
	}
	return formats
}

func (s *SerializerState) renderLeaf(leaf *model.Node) {
	switch leaf.Kind {
	case model.Inline:
		s.Text(leaf.Text, !s.InAutoLink)
	case model.Embed:
		if src, ok := leaf.Value["image"]; ok {
			alt, _ := leaf.Formats["alt"].(string)
			s.Write(fmt.Sprintf("![%s](%s)", s.Esc(alt), escapeURL(stringOf(src))))
		}
	}
}

var inlineRegexp = regexp.MustCompile(`^(\s*)(.*?)(\s*)$`)

// RenderInline renders the leaves of a line.
func (s *SerializerState) RenderInline(line *model.Node) {
	leaves := line.Children
	s.AtBlockStart = true
	var active []Format
	var trailing string

	progress := func(leaf *model.Node, index int) {
		var formats []Format
		if leaf != nil {
			formats = s.formatsOf(leaf)
		}

		leading := trailing
		trailing = ""
		// If whitespace has to be expelled from the leaf, adjust
		// leading and trailing accordingly.
		if leaf != nil && leaf.Kind == model.Inline {
			expel := false
			for _, f := range formats {
				if !s.Formats[f.Name].ExpelEnclosingWhitespace || f.isIn(active) {
					continue
				}
				if index >= len(leaves)-1 || !f.isIn(s.formatsOf(leaves[index+1])) {
					expel = true
					break
				}
			}
			if expel {
				parts := inlineRegexp.FindStringSubmatch(leaf.Text)
				if len(parts) == 4 && (parts[1] != "" || parts[3] != "") {
					leading += parts[1]
					trailing = parts[3]
					if parts[2] != "" {
						leaf = &model.Node{Kind: model.Inline, Text: parts[2], Formats: leaf.Formats}
					} else {
						leaf = nil
						formats = active
					}
				}
			}
		}

		var inner *Format
		if len(formats) > 0 {
			inner = &formats[len(formats)-1]
		}
		noEsc := inner != nil && s.Formats[inner.Name].NoEscape
		length := len(formats)
		if noEsc {
			length--
		}

		// Try to reorder mixable formats, such as italic and bold, which
		// in Markdown may be opened and closed in different order, so that
		// the order of the formats of the leaf matches the order in active.
		for i, f := range formats {
			if !s.Formats[f.Name].Mixable {
				break
			}
			for j, other := range active {
				if !s.Formats[other.Name].Mixable {
					break
				}
				if !f.Eq(other) {
					continue
				}
				if i != j && j < len(formats) {
					mixed := make([]Format, 0, len(formats))
					if i > j {
						mixed = append(mixed, formats[:j]...)
						mixed = append(mixed, f)
						mixed = append(mixed, formats[j:i]...)
						mixed = append(mixed, formats[i+1:]...)
					} else {
						mixed = append(mixed, formats[:i]...)
						mixed = append(mixed, formats[i+1:j+1]...)
						mixed = append(mixed, f)
						mixed = append(mixed, formats[j+1:]...)
					}
					formats = mixed
				}
				break
			}
		}

		// Find the prefix of the format set that didn't change
		keep := 0
		for keep < len(formats) && keep < len(active) && formats[keep].Eq(active[keep]) {
			keep++
		}

		// Close the formats that need to be closed
		for keep < len(active) {
			s.Text(s.FormatString(active[len(active)-1], false, leaves, index), false)
			active = active[:len(active)-1]
		}

		// Output any previously expelled trailing whitespace outside the
		// formats
		if leading != "" {
			s.Text(leading)
		}

		if leaf != nil {
			// Open the formats that need to be opened
			for len(active) < length {
				add := formats[len(active)]
				active = append(active, add)
				s.Text(s.FormatString(add, true, leaves, index), false)
			}

			// Code content is not escaped.
			if noEsc && leaf.Kind == model.Inline {
				s.Text(s.FormatString(*inner, true, leaves, index)+leaf.Text+
					s.FormatString(*inner, false, leaves, index+1), false)
			} else {
				s.renderLeaf(leaf)
			}
		}
		s.AtBlockStart = false
	}

	for i, leaf := range leaves {
		progress(leaf, i)
	}
	progress(nil, len(leaves))
	s.AtBlockStart = false
}

var (
	escRegexp1 = regexp.MustCompile("([`*\\\\~\\[\\]])")
	escRegexp2 = regexp.MustCompile(`(\b_)|(_\b)`)
	escRegexp3 = regexp.MustCompile(`^([#\-*+>])`)
	escRegexp4 = regexp.MustCompile(`^(\s*\d+)\.`)
)

// Esc escapes the given string so that it can safely appear in Markdown
// content. If `startOfLine` is true, also escape characters that have
// special meaning only at the start of the line.
func (s *SerializerState) Esc(str string, startOfLine ...bool) string {
	start := false
	if len(startOfLine) > 0 {
		start = startOfLine[0]
	}
	str = escRegexp1.ReplaceAllString(str, "\\$1")
	str = escRegexp2.ReplaceAllString(str, "\\_")
	if start {
		str = escRegexp3.ReplaceAllString(str, "\\$1")
		str = escRegexp4.ReplaceAllString(str, "$1\\.")
	}
	return str
}

// FormatString gets the markdown string for a given opening or closing
// format.
func (s *SerializerState) FormatString(f Format, open bool, leaves []*model.Node, index int) string {
	info := s.Formats[f.Name]
	value := info.Open
	if !open {
		value = info.Close
	}
	switch value := value.(type) {
	case string:
		return value
	case FormatFunc:
		return value(s, f, leaves, index)
	}
	return ""
}
