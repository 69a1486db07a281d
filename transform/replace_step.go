package transform

import (
	"strings"

	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/model"
)

// ReplaceStep replaces a part of the document with new content.
type ReplaceStep struct {
	From int
	To   int
	// Insert holds the inserted operations only.
	Insert    *delta.Delta
	Structure bool
}

// NewReplaceStep is the constructor of ReplaceStep.
//
// When structure is true, the step will fail if the content between from and
// to is not only made of line terminators (this is to guard against rebased
// replace steps overwriting something they weren't supposed to).
func NewReplaceStep(from, to int, insert *delta.Delta, structure ...bool) *ReplaceStep {
	s := false
	if len(structure) > 0 {
		s = structure[0]
	}
	if insert == nil {
		insert = delta.New()
	}
	return &ReplaceStep{From: from, To: to, Insert: insert, Structure: s}
}

// Change is a method of the Step interface.
func (s *ReplaceStep) Change() *delta.Delta {
	return delta.New().Retain(s.From, nil).Concat(s.Insert).Delete(s.To - s.From)
}

// Apply is a method of the Step interface.
func (s *ReplaceStep) Apply(t *model.Tree) StepResult {
	if s.Structure && contentBetween(t, s.From, s.To) {
		return Fail("Structure replace would overwrite content")
	}
	return FromChange(t, s.Change())
}

// contentBetween tells if [from, to) holds something else than line
// terminators.
func contentBetween(t *model.Tree, from, to int) bool {
	text := t.ToDelta().Slice(from, to).Text()
	return strings.Trim(text, "\n") != ""
}

// GetMap is a method of the Step interface.
func (s *ReplaceStep) GetMap() *StepMap {
	return NewStepMap([]int{s.From, s.To - s.From, s.Insert.Length()})
}

// Invert is a method of the Step interface.
func (s *ReplaceStep) Invert(t *model.Tree) Step {
	removed := t.ToDelta().Slice(s.From, s.To)
	return NewReplaceStep(s.From, s.From+s.Insert.Length(), removed)
}

// Map is a method of the Step interface.
func (s *ReplaceStep) Map(mapping Mappable) Step {
	from := mapping.MapResult(s.From, 1)
	to := mapping.MapResult(s.To, -1)
	if from.Deleted && to.Deleted && len(s.Insert.Ops) == 0 {
		return nil
	}
	max := from.Pos
	if to.Pos > max {
		max = to.Pos
	}
	return NewReplaceStep(from.Pos, max, s.Insert, s.Structure)
}

// Merge is a method of the Step interface.
func (s *ReplaceStep) Merge(other Step) (Step, bool) {
	repl, ok := other.(*ReplaceStep)
	if !ok || repl.Structure || s.Structure {
		return nil, false
	}
	if s.From+s.Insert.Length() == repl.From {
		return NewReplaceStep(s.From, s.To+repl.To-repl.From, s.Insert.Concat(repl.Insert)), true
	}
	if repl.To == s.From {
		return NewReplaceStep(repl.From, s.To, repl.Insert.Concat(s.Insert)), true
	}
	return nil, false
}

var _ Step = &ReplaceStep{}
