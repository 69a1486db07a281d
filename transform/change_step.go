package transform

import (
	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/model"
)

// ChangeStep applies an arbitrary change delta. It is used for the changes
// computed elsewhere (table operations, inverted format steps, ...).
type ChangeStep struct {
	Delta *delta.Delta
}

// NewChangeStep is the constructor for ChangeStep.
func NewChangeStep(change *delta.Delta) *ChangeStep {
	return &ChangeStep{Delta: change}
}

// Change is a method of the Step interface.
func (s *ChangeStep) Change() *delta.Delta {
	return s.Delta
}

// Apply is a method of the Step interface.
func (s *ChangeStep) Apply(t *model.Tree) StepResult {
	return FromChange(t, s.Delta)
}

// GetMap is a method of the Step interface.
func (s *ChangeStep) GetMap() *StepMap {
	return MapOf(s.Delta)
}

// Invert is a method of the Step interface.
func (s *ChangeStep) Invert(t *model.Tree) Step {
	return NewChangeStep(s.Delta.Invert(t.ToDelta()))
}

// Map is a method of the Step interface. Every operation is moved on its
// own: inserts stick after the content inserted at the same offset, and
// deletes or formats shrink to the part of their range that still exists.
func (s *ChangeStep) Map(mapping Mappable) Step {
	mapped := delta.New()
	pos, cursor := 0, 0
	seek := func(at int) {
		if at > cursor {
			mapped.Retain(at-cursor, nil)
			cursor = at
		}
	}
	for _, op := range s.Delta.Ops {
		switch {
		case op.Type() == delta.InsertOp:
			seek(mapping.Map(pos, 1))
			mapped.Push(op)
		case op.Type() == delta.DeleteOp || op.Attributes != nil:
			from := mapping.Map(pos, 1)
			to := mapping.Map(pos+op.Len(), -1)
			if to > from {
				seek(from)
				if op.Type() == delta.DeleteOp {
					mapped.Delete(to - from)
				} else {
					mapped.Retain(to-from, op.Attributes)
				}
				cursor = to
			}
			pos += op.Len()
		default:
			pos += op.Len()
		}
	}
	mapped.Chop()
	if len(mapped.Ops) == 0 {
		return nil
	}
	return NewChangeStep(mapped)
}

// Merge is a method of the Step interface. Any step applied after a change
// can be composed into it.
func (s *ChangeStep) Merge(other Step) (Step, bool) {
	return NewChangeStep(s.Delta.ComposeChange(other.Change())), true
}

var _ Step = &ChangeStep{}
