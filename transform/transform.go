package transform

import (
	"errors"
	"fmt"

	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/model"
)

// ErrStepFailed is returned when a step can not be applied to the current
// document.
var ErrStepFailed = errors.New("step failed")

// Transform builds a change from a sequence of steps. Each step is applied
// to the document produced by the previous one; the document given to New
// is never modified.
type Transform struct {
	// The current document (the result of applying the steps so far).
	Tree *model.Tree
	// The steps in this transform.
	Steps []Step
	// The documents before each of the steps.
	Trees []*model.Tree
	// A mapping with the maps of the effective changes of the steps.
	Mapping *Mapping

	change *delta.Delta
}

// New creates a transform that starts with the given document.
func New(t *model.Tree) *Transform {
	return &Transform{Tree: t, Mapping: NewMapping(), change: delta.New()}
}

// Before returns the starting document.
func (tr *Transform) Before() *model.Tree {
	if len(tr.Trees) > 0 {
		return tr.Trees[0]
	}
	return tr.Tree
}

// Step applies a new step in this transform. A failed step leaves the
// transform unchanged.
func (tr *Transform) Step(step Step) error {
	result := step.Apply(tr.Tree)
	if result.Err != nil {
		return fmt.Errorf("%w: %w", ErrStepFailed, result.Err)
	}
	if result.Failed != "" {
		return fmt.Errorf("%w: %s", ErrStepFailed, result.Failed)
	}
	tr.Steps = append(tr.Steps, step)
	tr.Trees = append(tr.Trees, tr.Tree)
	tr.Mapping.AppendMap(MapOf(result.Change))
	tr.change = tr.change.ComposeChange(result.Change)
	tr.Tree = result.Tree
	return nil
}

// DocChanged is true when the document has been changed (when there are any
// steps).
func (tr *Transform) DocChanged() bool {
	return len(tr.Steps) > 0
}

// Change returns the composition of the effective changes of all the steps,
// relative to the starting document.
func (tr *Transform) Change() *delta.Delta {
	return tr.change.Clone().Chop()
}

// Inverse returns the change restoring the starting document.
func (tr *Transform) Inverse() *delta.Delta {
	return tr.Change().Invert(tr.Before().ToDelta())
}

// Apply adds a step for an arbitrary change. An empty change is ignored.
func (tr *Transform) Apply(change *delta.Delta) error {
	if len(change.Ops) == 0 {
		return nil
	}
	return tr.Step(NewChangeStep(change))
}

// Replace replaces [from, to) with the operations of insert.
func (tr *Transform) Replace(from, to int, insert *delta.Delta) error {
	if from == to && (insert == nil || len(insert.Ops) == 0) {
		return nil
	}
	return tr.Step(NewReplaceStep(from, to, insert))
}

// Insert inserts text or an embed at the given offset.
func (tr *Transform) Insert(index int, content interface{}, attrs delta.AttributeMap) error {
	return tr.Replace(index, index, delta.New().Insert(content, attrs))
}

// Delete removes length units at the given offset.
func (tr *Transform) Delete(index, length int) error {
	return tr.Replace(index, index+length, nil)
}

// Format applies formats to [index, index+length).
func (tr *Transform) Format(index, length int, attrs delta.AttributeMap) error {
	if length <= 0 || len(attrs) == 0 {
		return nil
	}
	return tr.Step(NewFormatStep(index, index+length, attrs))
}

// FormatLine applies block formats to every line intersecting
// [index, index+length).
func (tr *Transform) FormatLine(index, length int, attrs delta.AttributeMap) error {
	if len(attrs) == 0 {
		return nil
	}
	start := len(tr.Mapping.Maps)
	for _, step := range LineFormatSteps(tr.Tree, index, length, attrs) {
		step = step.Map(NewMapping(tr.Mapping.Maps[start:]...))
		if step == nil {
			continue
		}
		if err := tr.Step(step); err != nil {
			return err
		}
	}
	return nil
}
