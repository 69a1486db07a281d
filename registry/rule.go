package registry

import (
	"strings"

	"github.com/cozy/quill-go/delta"
)

// RuleKind tells how a format is written in markup.
type RuleKind int

const (
	// TagRule formats are written as an element (<strong>, <h2>...).
	TagRule RuleKind = iota
	// ClassRule formats are written as a class name: Name + "-" + value.
	ClassRule
	// StyleRule formats are written as a CSS declaration on Name.
	StyleRule
	// AttributeRule formats are written as the element attribute Name.
	AttributeRule
)

// Rule is the rendering rule of a format.
//
// For tag rules, Tags lists the elements producing the format, the first one
// being used on output. Header-like number formats map the nth tag to the
// value n+1. When Name is set, the value is read from that attribute of the
// element (a link's href).
//
// For the other rules, Tags restricts the elements the format is read from
// and written to. An empty list means any element.
type Rule struct {
	Kind RuleKind
	Name string
	Tags []string
}

// Tag is a shortcut for a tag rule.
func Tag(tags ...string) Rule { return Rule{Kind: TagRule, Tags: tags} }

// Class is a shortcut for a class rule.
func Class(prefix string, tags ...string) Rule {
	return Rule{Kind: ClassRule, Name: prefix, Tags: tags}
}

// Style is a shortcut for a style rule.
func Style(property string, tags ...string) Rule {
	return Rule{Kind: StyleRule, Name: property, Tags: tags}
}

// Attribute is a shortcut for an attribute rule.
func Attribute(name string, tags ...string) Rule {
	return Rule{Kind: AttributeRule, Name: name, Tags: tags}
}

// AllowsTag tells whether the rule applies to the element.
func (r Rule) AllowsTag(tag string) bool {
	if len(r.Tags) == 0 {
		return true
	}
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// TagFor returns the element writing the value of a tag rule format.
func (s *Spec) TagFor(value interface{}) string {
	if s.Rule.Kind != TagRule || len(s.Rule.Tags) == 0 {
		return ""
	}
	if s.Kind == Number && len(s.Rule.Tags) > 1 {
		if n, ok := Int(value); ok && n >= 1 && n <= len(s.Rule.Tags) {
			return s.Rule.Tags[n-1]
		}
	}
	if len(s.Values) == len(s.Rule.Tags) {
		for i, v := range s.Values {
			if v == value {
				return s.Rule.Tags[i]
			}
		}
	}
	return s.Rule.Tags[0]
}

// ClassFor returns the class name writing the value of a class rule format.
func (s *Spec) ClassFor(value interface{}) string {
	return s.Rule.Name + "-" + Stringify(value)
}

// Declaration is a CSS property and its value.
type Declaration struct {
	Property string
	Value    string
}

// ParseStyle splits an inline style attribute in declarations. Properties
// are lower-cased, values trimmed.
func ParseStyle(style string) []Declaration {
	var result []Declaration
	for _, part := range strings.Split(style, ";") {
		i := strings.Index(part, ":")
		if i < 0 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(part[:i]))
		value := strings.TrimSpace(part[i+1:])
		if prop == "" || value == "" {
			continue
		}
		result = append(result, Declaration{Property: prop, Value: value})
	}
	return result
}

// FormatStyle joins declarations back into a style attribute.
func FormatStyle(decls []Declaration) string {
	var sb strings.Builder
	for i, d := range decls {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(d.Property)
		sb.WriteString(": ")
		sb.WriteString(d.Value)
		sb.WriteString(";")
	}
	return sb.String()
}

// Read returns the formats of the given scope declared by a markup element:
// its tag, classes, styles and attributes.
func (r *Registry) Read(tag string, attrs map[string]string, scope Scope) delta.AttributeMap {
	tag = strings.ToLower(tag)
	styles := map[string]string{}
	for _, d := range ParseStyle(attrs["style"]) {
		styles[d.Property] = d.Value
	}
	classes := strings.Fields(attrs["class"])
	result := delta.AttributeMap{}
	for _, spec := range r.Specs(scope) {
		rule := spec.Rule
		var (
			value interface{}
			ok    bool
		)
		switch rule.Kind {
		case TagRule:
			value, ok = spec.readTag(tag, attrs)
		case ClassRule:
			if !rule.AllowsTag(tag) {
				continue
			}
			for _, class := range classes {
				if strings.HasPrefix(class, rule.Name+"-") {
					value, ok = spec.Parse(strings.TrimPrefix(class, rule.Name+"-"))
					break
				}
			}
		case StyleRule:
			if !rule.AllowsTag(tag) {
				continue
			}
			if text, found := styles[rule.Name]; found {
				value, ok = spec.Parse(text)
			}
		case AttributeRule:
			if !rule.AllowsTag(tag) {
				continue
			}
			if text, found := attrs[rule.Name]; found {
				value, ok = spec.Parse(text)
			}
		}
		if ok {
			result[spec.Name] = value
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func (s *Spec) readTag(tag string, attrs map[string]string) (interface{}, bool) {
	for i, t := range s.Rule.Tags {
		if !strings.EqualFold(t, tag) {
			continue
		}
		switch {
		case s.Rule.Name != "":
			return s.Parse(attrs[s.Rule.Name])
		case s.Kind == Number:
			return i + 1, true
		case s.Kind == Bool || s.Kind == AnyKind:
			return true, true
		case len(s.Values) > i:
			return s.Values[i], true
		}
	}
	return nil, false
}
