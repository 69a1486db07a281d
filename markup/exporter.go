package markup

import (
	"github.com/cozy/quill-go/model"
	"github.com/cozy/quill-go/registry"
	"golang.org/x/net/html"
)

// Exporter writes documents as semantic HTML. Table identifiers are not
// written: they only make sense inside a document.
type Exporter struct {
	serializer *model.DOMSerializer
}

// NewExporter returns an exporter for the formats of reg.
func NewExporter(reg *registry.Registry) *Exporter {
	return &Exporter{serializer: model.DOMSerializerFromRegistry(reg)}
}

// Serializer gives access to the underlying serializer, to override the
// elements of some kinds of nodes.
func (e *Exporter) Serializer() *model.DOMSerializer {
	return e.serializer
}

// Export renders the document as HTML.
func (e *Exporter) Export(t *model.Tree) (string, error) {
	return e.serializer.HTML(t)
}

// Render returns the document as a tree of HTML nodes.
func (e *Exporter) Render(t *model.Tree) *html.Node {
	return e.serializer.SerializeFragment(t.Root.Children, nil)
}
