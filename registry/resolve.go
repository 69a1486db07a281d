package registry

import "github.com/cozy/quill-go/delta"

// Layer holds the formats declared on one element of a nested markup path,
// for instance a row and then one of its cells.
type Layer struct {
	Scope Scope
	Attrs delta.AttributeMap
}

// Resolve merges layers given from the coarsest to the finest. A format
// declared at several levels is kept at the finest one. The second result
// holds each layer without the formats a finer layer overrides.
func Resolve(layers ...Layer) (delta.AttributeMap, []Layer) {
	result := delta.AttributeMap{}
	stripped := make([]Layer, len(layers))
	for i := len(layers) - 1; i >= 0; i-- {
		layer := layers[i]
		own := delta.AttributeMap{}
		for name, value := range layer.Attrs {
			if _, ok := result[name]; ok {
				continue
			}
			own[name] = value
		}
		for name, value := range own {
			result[name] = value
		}
		if len(own) == 0 {
			own = nil
		}
		stripped[i] = Layer{Scope: layer.Scope, Attrs: own}
	}
	if len(result) == 0 {
		result = nil
	}
	return result, stripped
}
