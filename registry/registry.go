// Package registry declares the formats a document may carry: their scope,
// their value domain and the way they are written in markup.
//
// A Registry is built once, frozen, and then handed to every component
// that needs it. It is safe for concurrent reads.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cozy/quill-go/delta"
	"go.uber.org/zap"
)

var (
	// ErrDuplicateAttribute is returned when a format name is registered
	// twice with different scopes.
	ErrDuplicateAttribute = errors.New("registry: duplicate attribute")
	// ErrRegistryFrozen is returned by Register once Freeze has been called.
	ErrRegistryFrozen = errors.New("registry: frozen")
	// ErrInvalidSpec is returned for a spec without a name or a scope.
	ErrInvalidSpec = errors.New("registry: invalid spec")
)

// Scope is the structural level a format applies to. Scopes are bit flags
// so that lookups can ask for several at once.
type Scope int

const (
	Inline Scope = 1 << iota
	Block
	Table
	Row
	Cell
	InlineEmbed
	BlockEmbed
)

const (
	// Container groups the table scopes.
	Container = Table | Row | Cell
	// Embed groups both kinds of embeds.
	Embed = InlineEmbed | BlockEmbed
	// Line is every scope carried by a line terminator.
	Line = Block | Container
	// Any format, whatever its scope.
	Any = Inline | Line
)

func (s Scope) String() string {
	names := []string{"inline", "block", "table", "row", "cell", "inline-embed", "block-embed"}
	var result string
	for i, name := range names {
		if s&(1<<i) != 0 {
			if result != "" {
				result += "|"
			}
			result += name
		}
	}
	if result == "" {
		return "none"
	}
	return result
}

// Spec declares one format.
type Spec struct {
	Name  string
	Scope Scope
	Kind  Kind
	Rule  Rule
	// Whitelist of accepted values for string formats. Empty means any.
	Values []string
}

// Registry holds the declared formats and embeds.
type Registry struct {
	mu     sync.RWMutex
	specs  map[string]*Spec
	frozen bool
	logger *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to report filtered attributes.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{specs: map[string]*Spec{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds formats to the registry. Registering the same name with the
// same scope again replaces the previous spec.
func (r *Registry) Register(specs ...*Spec) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrRegistryFrozen
	}
	for _, spec := range specs {
		if spec == nil || spec.Name == "" || spec.Scope == 0 {
			return ErrInvalidSpec
		}
		if prev, ok := r.specs[spec.Name]; ok && prev.Scope != spec.Scope {
			return fmt.Errorf("%w: %q is %s, not %s", ErrDuplicateAttribute, spec.Name, prev.Scope, spec.Scope)
		}
	}
	for _, spec := range specs {
		r.specs[spec.Name] = spec
	}
	return nil
}

// Freeze forbids any further registration.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Lookup returns the spec of a format.
func (r *Registry) Lookup(name string) (*Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[name]
	return spec, ok
}

// Specs returns the specs matching the scope, sorted by name.
func (r *Registry) Specs(scope Scope) []*Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*Spec
	for _, spec := range r.specs {
		if spec.Scope&scope != 0 {
			result = append(result, spec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// ScopeOf returns the scope of a format, or zero for unknown names.
func (r *Registry) ScopeOf(name string) Scope {
	if spec, ok := r.Lookup(name); ok {
		return spec.Scope
	}
	return 0
}

// Filter keeps the attributes that are registered with one of the given
// scopes and hold an acceptable value. A nil value, which removes a format,
// is always acceptable. Anything else is dropped silently.
func (r *Registry) Filter(attrs delta.AttributeMap, scope Scope) delta.AttributeMap {
	if len(attrs) == 0 {
		return nil
	}
	result := delta.AttributeMap{}
	for name, value := range attrs {
		spec, ok := r.Lookup(name)
		switch {
		case !ok:
			r.logger.Debug("drop unknown attribute", zap.String("name", name))
			continue
		case spec.Scope&scope == 0:
			r.logger.Debug("drop attribute out of scope",
				zap.String("name", name), zap.Stringer("scope", spec.Scope))
			continue
		case value != nil && !spec.Accepts(value):
			r.logger.Debug("drop attribute value",
				zap.String("name", name), zap.Any("value", value))
			continue
		}
		result[name] = value
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// Split sorts attributes by scope. Unknown names are dropped.
func (r *Registry) Split(attrs delta.AttributeMap) map[Scope]delta.AttributeMap {
	result := map[Scope]delta.AttributeMap{}
	for name, value := range attrs {
		scope := r.ScopeOf(name)
		if scope == 0 {
			continue
		}
		if result[scope] == nil {
			result[scope] = delta.AttributeMap{}
		}
		result[scope][name] = value
	}
	return result
}

// IsEmbed reports whether the embed type is registered.
func (r *Registry) IsEmbed(name string) bool {
	return r.ScopeOf(name)&Embed != 0
}

// IsBlockEmbed reports whether the embed takes a whole line.
func (r *Registry) IsBlockEmbed(name string) bool {
	return r.ScopeOf(name)&BlockEmbed != 0
}
