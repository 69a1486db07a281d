package delta

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type jsonOp struct {
	Insert     interface{}  `json:"insert,omitempty"`
	Retain     int          `json:"retain,omitempty"`
	Delete     int          `json:"delete,omitempty"`
	Attributes AttributeMap `json:"attributes,omitempty"`
}

// MarshalJSON encodes an operation as {insert|retain|delete, attributes}.
func (op Op) MarshalJSON() ([]byte, error) {
	j := jsonOp{Retain: op.Retain, Delete: op.Delete, Attributes: op.Attributes}
	switch ins := op.Insert.(type) {
	case Embed:
		j.Insert = map[string]interface{}(ins)
	default:
		j.Insert = ins
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes an operation.
func (op *Op) UnmarshalJSON(data []byte) error {
	var j jsonOp
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	set := 0
	if j.Insert != nil {
		set++
	}
	if j.Retain > 0 {
		set++
	}
	if j.Delete > 0 {
		set++
	}
	if set != 1 {
		return fmt.Errorf("%w: %s", ErrInvalidOp, data)
	}
	*op = Op{Retain: j.Retain, Delete: j.Delete, Attributes: j.Attributes}
	switch ins := j.Insert.(type) {
	case string:
		op.Insert = ins
	case map[string]interface{}:
		if len(ins) != 1 {
			return fmt.Errorf("%w: embed must have one key: %s", ErrInvalidOp, data)
		}
		op.Insert = Embed(ins)
	case nil:
	default:
		return fmt.Errorf("%w: insert of %T", ErrInvalidOp, ins)
	}
	if op.Delete > 0 && len(op.Attributes) > 0 {
		op.Attributes = nil
	}
	return nil
}

// MarshalJSON encodes the delta as {"ops": [...]}.
func (d *Delta) MarshalJSON() ([]byte, error) {
	ops := d.Ops
	if ops == nil {
		ops = []Op{}
	}
	return json.Marshal(struct {
		Ops []Op `json:"ops"`
	}{ops})
}

// UnmarshalJSON decodes {"ops": [...]} or a bare list of operations. The
// operations are normalized on the way in.
func (d *Delta) UnmarshalJSON(data []byte) error {
	var ops []Op
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &ops); err != nil {
			return err
		}
	} else {
		var wrapper struct {
			Ops []Op `json:"ops"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return err
		}
		ops = wrapper.Ops
	}
	*d = Delta{}
	for _, op := range ops {
		d.Push(op)
	}
	return nil
}

// FromJSON parses a delta.
func FromJSON(data []byte) (*Delta, error) {
	d := &Delta{}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, err
	}
	return d, nil
}

// String returns the JSON form of the delta.
func (d *Delta) String() string {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Sprintf("delta(%v)", d.Ops)
	}
	return string(data)
}
