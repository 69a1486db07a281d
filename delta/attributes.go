package delta

import (
	"reflect"

	"github.com/mitchellh/copystructure"
)

// AttributeMap maps format names to values. A nil value means the format is
// removed. Attribute maps held by a Delta are never mutated in place.
type AttributeMap map[string]interface{}

// Eq compares two attribute maps. Nil and empty maps are equal, and numbers
// compare by value whatever their Go type.
func (a AttributeMap) Eq(b AttributeMap) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !valueEqual(va, vb) {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of the map.
func (a AttributeMap) Copy() AttributeMap {
	if len(a) == 0 {
		return nil
	}
	return AttributeMap(deepCopy(map[string]interface{}(a)).(map[string]interface{}))
}

// Without returns a copy of the map without the given keys.
func (a AttributeMap) Without(keys ...string) AttributeMap {
	result := AttributeMap{}
	for k, v := range a {
		result[k] = v
	}
	for _, k := range keys {
		delete(result, k)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// ComposeAttributes applies b over a. Keys set to nil in b remove the
// format; they are kept in the result only when keepNull is set, which is
// the case when composing two changes.
func ComposeAttributes(a, b AttributeMap, keepNull bool) AttributeMap {
	attributes := AttributeMap{}
	for k, v := range b {
		if v == nil && !keepNull {
			continue
		}
		attributes[k] = v
	}
	for k, v := range a {
		if _, ok := b[k]; !ok {
			attributes[k] = v
		}
	}
	if len(attributes) == 0 {
		return nil
	}
	return attributes
}

// DiffAttributes returns the attributes turning a into b.
func DiffAttributes(a, b AttributeMap) AttributeMap {
	attributes := AttributeMap{}
	for k, va := range a {
		vb := b[k]
		if !valueEqual(va, vb) {
			attributes[k] = vb
		}
	}
	for k, vb := range b {
		if _, ok := a[k]; ok {
			continue
		}
		attributes[k] = vb
	}
	if len(attributes) == 0 {
		return nil
	}
	return attributes
}

// InvertAttributes returns the attributes undoing attr when applied over
// base.
func InvertAttributes(attr, base AttributeMap) AttributeMap {
	inverted := AttributeMap{}
	for k, vb := range base {
		if va, ok := attr[k]; ok && !valueEqual(va, vb) {
			inverted[k] = vb
		}
	}
	for k, va := range attr {
		if _, ok := base[k]; !ok && va != nil {
			inverted[k] = nil
		}
	}
	if len(inverted) == 0 {
		return nil
	}
	return inverted
}

func deepCopy(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	c, err := copystructure.Copy(v)
	if err != nil {
		return v
	}
	return c
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func valueEqual(a, b interface{}) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	switch va := a.(type) {
	case Embed:
		return valueEqual(map[string]interface{}(va), b)
	case AttributeMap:
		return valueEqual(map[string]interface{}(va), b)
	case map[string]interface{}:
		var vb map[string]interface{}
		switch m := b.(type) {
		case Embed:
			vb = m
		case AttributeMap:
			vb = m
		case map[string]interface{}:
			vb = m
		default:
			return false
		}
		if len(va) != len(vb) {
			return false
		}
		for k, x := range va {
			y, ok := vb[k]
			if !ok || !valueEqual(x, y) {
				return false
			}
		}
		return true
	case []interface{}:
		vb, ok := b.([]interface{})
		if !ok || len(va) != len(vb) {
			return false
		}
		for i := range va {
			if !valueEqual(va[i], vb[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// ValueEqual compares two attribute or embed values the way deltas do.
func ValueEqual(a, b interface{}) bool {
	return valueEqual(a, b)
}
