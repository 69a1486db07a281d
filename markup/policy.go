// Package markup converts documents from and to HTML. Imported markup is
// untrusted: it is minified, sanitized and then read through the format
// registry, so that unknown content is dropped instead of failing.
package markup

import (
	"regexp"

	"github.com/cozy/quill-go/registry"
	"github.com/microcosm-cc/bluemonday"
)

// Attributes of older table markup. They are accepted so that the header
// rows can be recognized, but the identifiers they carry are regenerated.
var legacyAttrs = []string{"data-row", "data-cell", "data-header-row", "data-table-cell"}

var (
	styleValue = regexp.MustCompile(`^[^;{}<>\\]*$`)
	attrValue  = regexp.MustCompile(`^[\w.%# -]*$`)
	classValue = regexp.MustCompile(`^[\w -]*$`)
	listValue  = regexp.MustCompile(`^(ordered|bullet|checked|unchecked)$`)
)

// Policy returns the sanitizing policy for the formats of a registry: the
// user generated content policy, extended with the styles and attributes
// the registry reads.
func Policy(reg *registry.Registry) *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(classValue).Globally()
	p.AllowAttrs("data-list").Matching(listValue).OnElements("li")
	p.AllowAttrs(legacyAttrs...).Matching(attrValue).OnElements("tr", "td", "th")
	p.AllowElements("iframe")
	p.AllowAttrs("src").OnElements("iframe")

	for _, spec := range reg.Specs(registry.Any | registry.Embed) {
		rule := spec.Rule
		switch rule.Kind {
		case registry.StyleRule:
			b := p.AllowStyles(rule.Name).Matching(styleValue)
			if len(rule.Tags) > 0 {
				b.OnElements(rule.Tags...)
			} else {
				b.Globally()
			}
		case registry.AttributeRule:
			b := p.AllowAttrs(rule.Name).Matching(attrValue)
			if len(rule.Tags) > 0 {
				b.OnElements(rule.Tags...)
			} else {
				b.Globally()
			}
		}
	}
	return p
}
