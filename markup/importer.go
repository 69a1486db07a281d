package markup

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/model"
	"github.com/cozy/quill-go/registry"
	"github.com/cozy/quill-go/schema/list"
	"github.com/cozy/quill-go/schema/table"
	tables "github.com/cozy/quill-go/table"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tdewolff/minify/v2"
	htmlmin "github.com/tdewolff/minify/v2/html"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var whitespace = regexp.MustCompile(`\s+`)

// Elements starting a new line.
var blockAtoms = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true, atom.Figcaption: true,
	atom.Figure: true, atom.Footer: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Header: true, atom.Li: true,
	atom.Main: true, atom.Nav: true, atom.Ol: true, atom.P: true, atom.Pre: true,
	atom.Section: true, atom.Ul: true,
}

// Importer reads HTML into documents.
type Importer struct {
	registry *registry.Registry
	policy   *bluemonday.Policy
	minifier *minify.M
	engine   *tables.Engine
	logger   *zap.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger of the importer.
func WithLogger(l *zap.Logger) Option {
	return func(im *Importer) {
		if l != nil {
			im.logger = l
		}
	}
}

// WithPolicy replaces the sanitizing policy.
func WithPolicy(p *bluemonday.Policy) Option {
	return func(im *Importer) {
		im.policy = p
	}
}

// WithEngine sets the table engine generating the row and cell identifiers
// and balancing the imported tables.
func WithEngine(e *tables.Engine) Option {
	return func(im *Importer) {
		im.engine = e
	}
}

// NewImporter returns an importer for the formats of reg.
func NewImporter(reg *registry.Registry, opts ...Option) *Importer {
	im := &Importer{registry: reg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(im)
	}
	if im.policy == nil {
		im.policy = Policy(reg)
	}
	if im.engine == nil {
		im.engine = tables.New(tables.WithLogger(im.logger))
	}
	im.minifier = minify.New()
	im.minifier.Add("text/html", &htmlmin.Minifier{
		KeepEndTags:         true,
		KeepDocumentTags:    true,
		KeepDefaultAttrVals: true,
	})
	return im
}

// Import converts markup to a document delta.
func (im *Importer) Import(markup string) (*delta.Delta, error) {
	t, err := im.ImportTree(markup)
	if err != nil {
		return nil, err
	}
	return t.ToDelta(), nil
}

// ImportTree converts markup to a document. Its tables are balanced.
func (im *Importer) ImportTree(markup string) (*model.Tree, error) {
	d, err := im.convert(markup)
	if err != nil {
		return nil, err
	}
	return model.BuildFromDelta(im.registry, d,
		model.WithLogger(im.logger),
		model.WithTableNormalizer(im.engine.Normalize))
}

// convert reads markup without balancing tables nor filtering the formats
// the registry would reject.
func (im *Importer) convert(markup string) (*delta.Delta, error) {
	minified, err := im.minifier.String("text/html", markup)
	if err != nil {
		return nil, fmt.Errorf("markup: minify: %w", err)
	}
	clean := im.policy.Sanitize(minified)
	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(clean), body)
	if err != nil {
		return nil, fmt.Errorf("markup: parse: %w", err)
	}
	w := &walker{im: im, out: delta.New()}
	for _, n := range nodes {
		w.walk(context{}, n)
	}
	if w.open || w.lines == 0 {
		w.newline(context{}, nil)
	}
	im.logger.Debug("markup imported",
		zap.Int("input", len(markup)), zap.Int("lines", w.lines))
	return w.out, nil
}

// context holds what the enclosing elements impose on their content.
type context struct {
	inline delta.AttributeMap
	block  delta.AttributeMap
	// Identity and formats of the enclosing table cell.
	cell  delta.AttributeMap
	pre   bool
	lists []atom.Atom
}

type walker struct {
	im    *Importer
	out   *delta.Delta
	open  bool // content was written since the last line terminator
	lines int
}

func attrMap(n *html.Node) map[string]string {
	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		attrs[a.Key] = a.Val
	}
	return attrs
}

func merge(maps ...delta.AttributeMap) delta.AttributeMap {
	result := delta.AttributeMap{}
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func (w *walker) newline(ctx context, formats delta.AttributeMap) {
	w.out.Insert("\n", merge(formats, ctx.cell))
	w.open = false
	w.lines++
}

func (w *walker) closeLine(ctx context) {
	if w.open {
		w.newline(ctx, ctx.block)
	}
}

func (w *walker) text(ctx context, s string) {
	if ctx.pre {
		for i, part := range strings.Split(s, "\n") {
			if i > 0 {
				w.newline(ctx, ctx.block)
			}
			if part != "" {
				w.out.Insert(part, ctx.inline)
				w.open = true
			}
		}
		return
	}
	s = whitespace.ReplaceAllString(s, " ")
	if !w.open {
		s = strings.TrimLeft(s, " ")
	}
	if s == "" {
		return
	}
	w.out.Insert(s, ctx.inline)
	w.open = true
}

func (w *walker) children(ctx context, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(ctx, c)
	}
}

func (w *walker) walk(ctx context, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(ctx, n.Data)
		return
	case html.ElementNode:
	case html.DocumentNode:
		w.children(ctx, n)
		return
	default:
		return
	}

	reg := w.im.registry
	attrs := attrMap(n)
	switch n.DataAtom {
	case atom.Br:
		w.newline(ctx, ctx.block)
	case atom.Img:
		value := reg.Read(n.Data, attrs, registry.InlineEmbed)
		if value == nil {
			return
		}
		w.out.Insert(delta.Embed(value), merge(ctx.inline, reg.Read(n.Data, attrs, registry.Inline)))
		w.open = true
	case atom.Iframe:
		value := reg.Read(n.Data, attrs, registry.BlockEmbed)
		if value == nil || ctx.cell != nil {
			w.im.logger.Debug("drop block embed", zap.String("tag", n.Data))
			return
		}
		w.closeLine(ctx)
		w.out.Insert(delta.Embed(value), nil)
		w.lines++
	case atom.Table:
		if ctx.cell != nil {
			// Nested tables are flattened into the cell.
			w.block(ctx, n, nil, true)
			return
		}
		w.table(ctx, n)
	case atom.Ul, atom.Ol:
		ctx.lists = append(append([]atom.Atom(nil), ctx.lists...), n.DataAtom)
		w.block(ctx, n, nil, true)
	case atom.Li:
		w.block(ctx, n, w.listFormats(ctx, attrs), false)
	case atom.Pre:
		ctx.pre = true
		w.block(ctx, n, reg.Read(n.Data, attrs, registry.Block), false)
	default:
		if blockAtoms[n.DataAtom] {
			w.block(ctx, n, reg.Read(n.Data, attrs, registry.Block), false)
			return
		}
		ctx.inline = merge(ctx.inline, reg.Read(n.Data, attrs, registry.Inline))
		w.children(ctx, n)
	}
}

// block walks an element taking its own lines. A container only groups
// other blocks and does not make a line when empty.
func (w *walker) block(ctx context, n *html.Node, formats delta.AttributeMap, container bool) {
	w.closeLine(ctx)
	ctx.block = merge(ctx.block, formats)
	start := w.lines
	w.children(ctx, n)
	if w.open || (!container && w.lines == start) {
		w.newline(ctx, ctx.block)
	}
}

func (w *walker) listFormats(ctx context, attrs map[string]string) delta.AttributeMap {
	formats := w.im.registry.Read("li", attrs, registry.Block)
	if formats == nil {
		formats = delta.AttributeMap{}
	}
	kind := list.Bullet
	if depth := len(ctx.lists); depth > 0 && ctx.lists[depth-1] == atom.Ol {
		kind = list.Ordered
	}
	if v := attrs["data-list"]; v == list.Checked || v == list.Unchecked {
		kind = v
	}
	formats["list"] = kind
	if depth := len(ctx.lists); depth > 1 {
		formats["indent"] = depth - 1
	}
	return formats
}

type row struct {
	node *html.Node
	head bool
}

func collectRows(t *html.Node) []row {
	var rows []row
	for c := t.FirstChild; c != nil; c = c.NextSibling {
		switch c.DataAtom {
		case atom.Tr:
			rows = append(rows, row{node: c})
		case atom.Thead, atom.Tbody, atom.Tfoot:
			for r := c.FirstChild; r != nil; r = r.NextSibling {
				if r.DataAtom == atom.Tr {
					rows = append(rows, row{node: r, head: c.DataAtom == atom.Thead})
				}
			}
		}
	}
	return rows
}

func cellsOf(tr *html.Node) []*html.Node {
	var cells []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom == atom.Td || c.DataAtom == atom.Th {
			cells = append(cells, c)
		}
	}
	return cells
}

// isHeaderRow tells if a row is made only of <th> cells, or of cells
// marked with the older data-header-row attribute.
func isHeaderRow(cells []*html.Node) bool {
	th, legacy := true, true
	for _, c := range cells {
		th = th && c.DataAtom == atom.Th
		_, ok := attrMap(c)["data-header-row"]
		legacy = legacy && ok
	}
	return th || legacy
}

// table writes a line for every paragraph of every cell. The rows of a
// <thead>, or the leading rows made only of header cells, form the header.
// Styles of a row apply to its cells, unless the cell declares the same
// format.
func (w *walker) table(ctx context, n *html.Node) {
	w.closeLine(ctx)
	reg := w.im.registry
	engine := w.im.engine
	tableFormats := reg.Read(n.Data, attrMap(n), registry.Table)
	leading := true
	for _, r := range collectRows(n) {
		cells := cellsOf(r.node)
		if len(cells) == 0 {
			continue
		}
		header := leading && (r.head || isHeaderRow(cells))
		leading = header
		key := table.CellLine
		if header {
			key = table.HeaderCellLine
		}
		rowID := engine.ID()
		rowFormats := reg.Read(r.node.Data, attrMap(r.node), registry.Cell)
		for _, c := range cells {
			cellFormats, _ := registry.Resolve(
				registry.Layer{Scope: registry.Row, Attrs: rowFormats},
				registry.Layer{Scope: registry.Cell, Attrs: reg.Read(c.Data, attrMap(c), registry.Cell)},
			)
			identity := map[string]interface{}{table.RowKey: rowID, table.CellKey: engine.ID()}
			cctx := context{cell: merge(tableFormats, cellFormats, delta.AttributeMap{key: identity})}
			start := w.lines
			w.children(cctx, c)
			if w.open || w.lines == start {
				w.newline(cctx, nil)
			}
		}
	}
}
