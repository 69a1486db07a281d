package transform

import (
	"fmt"

	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/model"
)

// FormatStep applies formats to all the content between two offsets. A nil
// value removes the format.
type FormatStep struct {
	From  int
	To    int
	Attrs delta.AttributeMap
}

// NewFormatStep is the constructor for FormatStep.
func NewFormatStep(from, to int, attrs delta.AttributeMap) *FormatStep {
	return &FormatStep{From: from, To: to, Attrs: attrs}
}

// Change is a method of the Step interface.
func (s *FormatStep) Change() *delta.Delta {
	return delta.New().Retain(s.From, nil).Retain(s.To-s.From, s.Attrs)
}

// Apply is a method of the Step interface.
func (s *FormatStep) Apply(t *model.Tree) StepResult {
	return FromChange(t, s.Change())
}

// GetMap is a method of the Step interface.
func (s *FormatStep) GetMap() *StepMap {
	return EmptyStepMap
}

// Invert is a method of the Step interface. The previous formats may differ
// along the range, so the inverse is a generic change.
func (s *FormatStep) Invert(t *model.Tree) Step {
	return NewChangeStep(s.Change().Invert(t.ToDelta()))
}

// Map is a method of the Step interface.
func (s *FormatStep) Map(mapping Mappable) Step {
	from := mapping.MapResult(s.From, 1)
	to := mapping.MapResult(s.To, -1)
	if from.Deleted && to.Deleted || from.Pos >= to.Pos {
		return nil
	}
	return NewFormatStep(from.Pos, to.Pos, s.Attrs)
}

// Merge is a method of the Step interface. Overlapping or adjacent steps
// setting the same formats are merged.
func (s *FormatStep) Merge(other Step) (Step, bool) {
	f, ok := other.(*FormatStep)
	if !ok || !f.Attrs.Eq(s.Attrs) || f.From > s.To || f.To < s.From {
		return nil, false
	}
	return NewFormatStep(min(s.From, f.From), max(s.To, f.To), s.Attrs), true
}

var _ Step = &FormatStep{}

// LineFormatStep applies formats to the line terminator at Pos. Only block
// formats are meaningful there.
type LineFormatStep struct {
	Pos   int
	Attrs delta.AttributeMap
}

// NewLineFormatStep is a constructor for LineFormatStep.
func NewLineFormatStep(pos int, attrs delta.AttributeMap) *LineFormatStep {
	return &LineFormatStep{Pos: pos, Attrs: attrs}
}

// LineFormatSteps returns a step for every block intersecting
// [index, index+length). Block embeds have no terminator and are skipped.
func LineFormatSteps(t *model.Tree, index, length int, attrs delta.AttributeMap) []Step {
	var steps []Step
	for _, line := range t.LinesBetween(index, length) {
		if line.Kind != model.Block {
			continue
		}
		end := t.IndexOf(line) + line.Len() - 1
		steps = append(steps, NewLineFormatStep(end, attrs))
	}
	return steps
}

// Change is a method of the Step interface.
func (s *LineFormatStep) Change() *delta.Delta {
	return delta.New().Retain(s.Pos, nil).Retain(1, s.Attrs)
}

// Apply is a method of the Step interface.
func (s *LineFormatStep) Apply(t *model.Tree) StepResult {
	line, offset, err := t.Line(s.Pos)
	if err != nil {
		return Fail(err.Error())
	}
	if line.Kind != model.Block || offset != line.ContentLen() {
		return Fail(fmt.Sprintf("No line terminator at %d", s.Pos))
	}
	return FromChange(t, s.Change())
}

// GetMap is a method of the Step interface.
func (s *LineFormatStep) GetMap() *StepMap {
	return EmptyStepMap
}

// Invert is a method of the Step interface.
func (s *LineFormatStep) Invert(t *model.Tree) Step {
	var attrs delta.AttributeMap
	if line, _, err := t.Line(s.Pos); err == nil {
		attrs = line.LineAttributes()
	}
	return NewLineFormatStep(s.Pos, delta.InvertAttributes(s.Attrs, attrs))
}

// Map is a method of the Step interface.
func (s *LineFormatStep) Map(mapping Mappable) Step {
	result := mapping.MapResult(s.Pos, 1)
	if result.Deleted {
		return nil
	}
	return NewLineFormatStep(result.Pos, s.Attrs)
}

// Merge is a method of the Step interface.
func (s *LineFormatStep) Merge(other Step) (Step, bool) {
	l, ok := other.(*LineFormatStep)
	if !ok || l.Pos != s.Pos {
		return nil, false
	}
	return NewLineFormatStep(s.Pos, delta.ComposeAttributes(s.Attrs, l.Attrs, true)), true
}

var _ Step = &LineFormatStep{}
