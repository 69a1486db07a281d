package editor

import (
	"time"

	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/transform"
	"go.uber.org/zap"
)

type entry struct {
	undo, redo *delta.Delta
}

// History keeps the changes of a session to undo and redo them. Changes
// recorded within the delay of each other are undone together.
type History struct {
	options      HistoryOptions
	now          func() time.Time
	undo, redo   []entry
	lastRecorded time.Time
	ignore       bool
}

func newHistory(opts HistoryOptions, now func() time.Time) *History {
	return &History{options: opts, now: now}
}

func (h *History) record(change, old *delta.Delta, source Source) {
	if h.ignore || len(change.Ops) == 0 {
		return
	}
	if h.options.UserOnly && source != User {
		return
	}
	h.redo = nil
	undo := change.Invert(old)
	redo := change
	ts := h.now()
	if !h.lastRecorded.IsZero() && ts.Sub(h.lastRecorded) < h.options.Delay && len(h.undo) > 0 {
		last := h.undo[len(h.undo)-1]
		h.undo = h.undo[:len(h.undo)-1]
		undo = undo.ComposeChange(last.undo)
		redo = last.redo.ComposeChange(redo)
	} else {
		h.lastRecorded = ts
	}
	if undo.Length() == 0 {
		return
	}
	h.undo = append(h.undo, entry{undo: undo, redo: redo})
	if limit := h.options.MaxStack; limit > 0 && len(h.undo) > limit {
		h.undo = h.undo[len(h.undo)-limit:]
	}
}

// Cutoff stops the merge of the next change with the previous one.
func (h *History) Cutoff() {
	h.lastRecorded = time.Time{}
}

// Clear empties both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
	h.lastRecorded = time.Time{}
}

// CanUndo tells whether there is a change to undo.
func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo tells whether there is a change to redo.
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// Undo reverts the last recorded change. The caret is put at the end of
// what the revert changed.
func (s *Session) Undo() (*delta.Delta, error) {
	return s.replay(&s.history.undo, &s.history.redo, func(e entry) *delta.Delta { return e.undo })
}

// Redo applies again the last undone change.
func (s *Session) Redo() (*delta.Delta, error) {
	return s.replay(&s.history.redo, &s.history.undo, func(e entry) *delta.Delta { return e.redo })
}

func (s *Session) replay(from, to *[]entry, pick func(entry) *delta.Delta) (*delta.Delta, error) {
	h := s.history
	if len(*from) == 0 {
		return delta.New(), nil
	}
	e := (*from)[len(*from)-1]
	d := pick(e)
	h.lastRecorded = time.Time{}
	h.ignore = true
	change, err := s.modify(User, func(tr *transform.Transform) error {
		return tr.Apply(d)
	})
	h.ignore = false
	if err != nil {
		s.logger.Warn("cannot replay history entry", zap.Error(err))
		return nil, err
	}
	*from = (*from)[:len(*from)-1]
	*to = append(*to, e)
	s.SetSelection(&transform.Range{Index: lastChangeIndex(d)})
	return change, nil
}

// lastChangeIndex is the position after the last insertion or retain of a
// change, before its final line terminator.
func lastChangeIndex(d *delta.Delta) int {
	index := 0
	for _, op := range d.Ops {
		switch op.Type() {
		case delta.InsertOp:
			index += op.Len()
		case delta.RetainOp:
			index += op.Retain
		}
	}
	if n := len(d.Ops); n > 0 {
		if text, ok := d.Ops[n-1].Insert.(string); ok && len(text) > 0 && text[len(text)-1] == '\n' {
			index--
		}
	}
	return index
}
