// Package transform implements document transforms, which are used by the
// editor to treat changes as first-class values, which can be saved, shared,
// and reasoned about. It also maps offsets and selections through them.
package transform

import (
	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/model"
)

// Step objects represent an atomic change. It generally applies only to the
// document it was created for, since the offsets stored in it will only make
// sense for that document.
type Step interface {
	// Change returns the delta of this step, relative to the document it
	// was created for.
	Change() *delta.Delta

	// Applies this step to the given document, returning a result
	// object that either indicates failure, if the step can not be
	// applied to this document, or indicates success by containing a
	// transformed document. The given tree is left untouched.
	Apply(t *model.Tree) StepResult

	// GetMap gets the step map that represents the changes made by this step,
	// and which can be used to transform between offsets in the old and the
	// new document.
	GetMap() *StepMap

	// Invert creates an inverted version of this step. Needs the document as
	// it was before the step as argument.
	Invert(t *model.Tree) Step

	// Map this step through a mappable thing, returning either a version of
	// that step with its offsets adjusted, or nil if the step was entirely
	// deleted by the mapping.
	Map(mapping Mappable) Step

	// Merge tries to merge this step with another one, to be applied directly
	// after it. Returns the merged step when possible.
	Merge(other Step) (Step, bool)
}

// StepResult is the result of applying a step. Contains either a new document
// with the change effectively applied, or a failure value.
type StepResult struct {
	Tree *model.Tree
	// The applied change, with the repairs made by the document.
	Change *delta.Delta
	// Text providing information about a failed step.
	Failed string
	// The error of the document rejecting the step, if any.
	Err error
}

// OK creates a successful step result.
func OK(t *model.Tree, change *delta.Delta) StepResult {
	return StepResult{Tree: t, Change: change}
}

// Fail creates a failed step result.
func Fail(message string) StepResult {
	return StepResult{Failed: message}
}

// FromChange applies a change on a copy of the tree. Create a successful
// result if it succeeds, and a failed one if the tree rejects it.
func FromChange(t *model.Tree, change *delta.Delta) StepResult {
	next := t.Clone()
	effective, err := next.ApplyDelta(change)
	if err != nil {
		return StepResult{Failed: err.Error(), Err: err}
	}
	return OK(next, effective)
}
