package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the domain of a format value.
type Kind int

const (
	AnyKind Kind = iota
	String
	Number
	Bool
	Object
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Object:
		return "object"
	default:
		return "any"
	}
}

// Accepts tells whether v is a valid value for the format.
func (s *Spec) Accepts(v interface{}) bool {
	switch s.Kind {
	case String:
		str, ok := v.(string)
		if !ok {
			return false
		}
		if len(s.Values) == 0 {
			return str != ""
		}
		for _, allowed := range s.Values {
			if allowed == str {
				return true
			}
		}
		return false
	case Number:
		_, ok := toNumber(v)
		return ok
	case Bool:
		_, ok := v.(bool)
		return ok
	case Object:
		_, ok := v.(map[string]interface{})
		return ok
	default:
		return true
	}
}

// Parse converts the textual form found in markup to a value of the
// format's kind.
func (s *Spec) Parse(text string) (interface{}, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	var v interface{} = text
	switch s.Kind {
	case Number:
		n, err := strconv.Atoi(text)
		if err != nil {
			return nil, false
		}
		v = n
	case Bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, false
		}
		v = b
	case Object:
		return nil, false
	}
	if !s.Accepts(v) {
		return nil, false
	}
	return v, true
}

// Stringify returns the markup form of a value.
func Stringify(v interface{}) string {
	if n, ok := toNumber(v); ok {
		if n == float64(int64(n)) {
			return strconv.FormatInt(int64(n), 10)
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// Int returns a numeric value as an int.
func Int(v interface{}) (int, bool) {
	if n, ok := toNumber(v); ok {
		return int(n), true
	}
	if s, ok := v.(string); ok {
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
	}
	return 0, false
}

func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
