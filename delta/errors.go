package delta

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch is returned when a change retains or deletes past
	// the end of the document it is applied to.
	ErrLengthMismatch = errors.New("delta: length mismatch")
	// ErrNotDocument is returned by operations that only make sense on
	// documents (deltas of inserts).
	ErrNotDocument = errors.New("delta: not a document")
	// ErrInvalidOp is returned when decoding an operation that is not
	// exactly one of insert, retain or delete.
	ErrInvalidOp = errors.New("delta: invalid operation")
)

// LengthError gives the details of a length mismatch.
type LengthError struct {
	// Length of the document.
	Length int
	// Position reached by the change.
	Reach int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%s: change reaches %d in a document of length %d", ErrLengthMismatch, e.Reach, e.Length)
}

func (e *LengthError) Unwrap() error {
	return ErrLengthMismatch
}
