// Package editor holds an editing session: one document, its selection and
// its history, changed through API calls and keyboard intents. Every call
// produces at most one change, emitted to the observers once the document
// is updated.
//
// A Session is not safe for concurrent use. Intents coming from several
// goroutines go through a Queue.
package editor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/model"
	"github.com/cozy/quill-go/registry"
	tables "github.com/cozy/quill-go/table"
	"github.com/cozy/quill-go/transform"
	"go.uber.org/zap"
)

// ErrNoRegistry is returned by New without a registry.
var ErrNoRegistry = errors.New("editor: no registry")

// Source tells where a change comes from.
type Source int

const (
	// API changes are made by the program.
	API Source = iota
	// User changes come from the keyboard intents.
	User
	// Silent changes are neither recorded in the history nor emitted.
	Silent
)

func (s Source) String() string {
	switch s {
	case API:
		return "api"
	case User:
		return "user"
	case Silent:
		return "silent"
	}
	return "unknown"
}

// TextChangeFunc observes the changes of a document. oldContents is the
// document before the change.
type TextChangeFunc func(change, oldContents *delta.Delta, source Source)

type observer struct {
	id int
	fn TextChangeFunc
}

// Session is an editing session.
type Session struct {
	registry *registry.Registry
	engine   *tables.Engine
	logger   *zap.Logger
	options  Options
	now      func() time.Time

	tree      *model.Tree
	selection *transform.Range
	history   *History
	observers []observer
	nextID    int
	// Formats applied to the next typed text.
	pending delta.AttributeMap
}

// New starts a session on an empty document.
func New(reg *registry.Registry, opts ...Option) (*Session, error) {
	if reg == nil {
		return nil, ErrNoRegistry
	}
	s := &Session{
		registry: reg,
		logger:   zap.NewNop(),
		options:  DefaultOptions(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = tables.New(tables.WithLogger(s.logger))
	}
	tree, err := s.build(delta.New().Insert("\n", nil))
	if err != nil {
		return nil, err
	}
	s.tree = tree
	s.history = newHistory(s.options.History, s.now)
	return s, nil
}

func (s *Session) build(doc *delta.Delta) (*model.Tree, error) {
	return model.BuildFromDelta(s.registry, doc,
		model.WithLogger(s.logger),
		model.WithTableNormalizer(s.engine.Normalize))
}

// Tree returns the current document. It must not be modified.
func (s *Session) Tree() *model.Tree {
	return s.tree
}

// Registry returns the registry of the session.
func (s *Session) Registry() *registry.Registry {
	return s.registry
}

// History returns the undo stack of the session.
func (s *Session) History() *History {
	return s.history
}

// OnTextChange registers an observer. The returned function unregisters it.
func (s *Session) OnTextChange(fn TextChangeFunc) func() {
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// modify runs build on a transform of the document, then commits it.
func (s *Session) modify(source Source, build func(tr *transform.Transform) error) (*delta.Delta, error) {
	tr := transform.New(s.tree)
	if err := build(tr); err != nil {
		return nil, err
	}
	return s.commit(tr, source), nil
}

// commit replaces the document with the result of the transform, maps the
// selection, records the change and emits it. Nothing happens for a
// transform without changes.
func (s *Session) commit(tr *transform.Transform, source Source) *delta.Delta {
	change := tr.Change()
	if !tr.DocChanged() || len(change.Ops) == 0 {
		return delta.New()
	}
	old := tr.Before().ToDelta()
	s.tree = tr.Tree
	if s.selection != nil {
		assoc := -1
		if source == User {
			assoc = 1
		}
		r := s.clamp(transform.MapRange(*s.selection, tr.Mapping, assoc))
		s.selection = &r
	}
	if source != Silent {
		s.history.record(change, old, source)
	}
	s.logger.Debug("text change",
		zap.Stringer("change", change), zap.Stringer("source", source))
	if source != Silent {
		for _, o := range append([]observer(nil), s.observers...) {
			o.fn(change, old, source)
		}
	}
	return change
}

// checkRange validates a range of the document.
func (s *Session) checkRange(index, length int) error {
	if index < 0 || length < 0 || index+length > s.tree.Length() {
		return fmt.Errorf("%w: [%d, %d] in a document of length %d",
			model.ErrOutOfRange, index, length, s.tree.Length())
	}
	return nil
}

// GetLength returns the length of the document.
func (s *Session) GetLength() int {
	return s.tree.Length()
}

// GetContents returns the document.
func (s *Session) GetContents() *delta.Delta {
	return s.tree.ToDelta()
}

// GetContentsAt returns a part of the document.
func (s *Session) GetContentsAt(index, length int) (*delta.Delta, error) {
	if err := s.checkRange(index, length); err != nil {
		return nil, err
	}
	return s.tree.ToDelta().Slice(index, index+length), nil
}

// GetText returns the text of a part of the document. Embeds are left out.
func (s *Session) GetText(index, length int) (string, error) {
	d, err := s.GetContentsAt(index, length)
	if err != nil {
		return "", err
	}
	return d.Text(), nil
}

// normalizeDocument migrates legacy table attributes and adds the final
// line terminator a document may be missing.
func (s *Session) normalizeDocument(doc *delta.Delta) *delta.Delta {
	doc = s.engine.MigrateLegacy(doc)
	if len(doc.Ops) == 0 {
		return delta.New().Insert("\n", nil)
	}
	last := doc.Ops[len(doc.Ops)-1]
	if text, ok := last.Insert.(string); ok && strings.HasSuffix(text, "\n") {
		return doc
	}
	if e, ok := last.Insert.(delta.Embed); ok && s.registry.IsBlockEmbed(e.Type()) {
		return doc
	}
	return doc.Clone().Insert("\n", nil)
}

// SetContents replaces the document. The change deletes the whole old
// document and inserts the new one.
func (s *Session) SetContents(doc *delta.Delta, source Source) (*delta.Delta, error) {
	if !doc.IsDocument() {
		return nil, delta.ErrNotDocument
	}
	next, err := s.build(s.normalizeDocument(doc))
	if err != nil {
		return nil, err
	}
	change := next.ToDelta().Delete(s.tree.Length())
	return s.modify(source, func(tr *transform.Transform) error {
		return tr.Apply(change)
	})
}

var carriageReturns = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// SetText replaces the document with plain text.
func (s *Session) SetText(text string, source Source) (*delta.Delta, error) {
	return s.SetContents(delta.New().Insert(carriageReturns.Replace(text), nil), source)
}

// UpdateContents applies a change. A change reaching past the end of the
// document is rejected with delta.ErrLengthMismatch. The returned change
// includes the repairs made by the document.
func (s *Session) UpdateContents(change *delta.Delta, source Source) (*delta.Delta, error) {
	if reach := change.BaseLength(); reach > s.tree.Length() {
		return nil, &delta.LengthError{Length: s.tree.Length(), Reach: reach}
	}
	return s.modify(source, func(tr *transform.Transform) error {
		return tr.Apply(change)
	})
}

// inherited returns the inline formats text inserted at index takes from
// its neighbours.
func (s *Session) inherited(index int) delta.AttributeMap {
	return s.inheritedIn(s.tree, index)
}

func (s *Session) inheritedIn(t *model.Tree, index int) delta.AttributeMap {
	formats, err := t.FormatsAt(index, 0)
	if err != nil {
		return nil
	}
	return s.registry.Filter(formats, registry.Inline)
}

func merge(maps ...delta.AttributeMap) delta.AttributeMap {
	result := delta.AttributeMap{}
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	for k, v := range result {
		if v == nil {
			delete(result, k)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// InsertText inserts text at index. The text takes the inline formats of
// the text around it, overridden by attrs. Line terminators in text start
// new lines with the formats of the line they split.
func (s *Session) InsertText(index int, text string, attrs delta.AttributeMap, source Source) (*delta.Delta, error) {
	if err := s.checkRange(index, 0); err != nil {
		return nil, err
	}
	if text == "" {
		return delta.New(), nil
	}
	text = carriageReturns.Replace(text)
	inline := merge(s.inherited(index), s.registry.Filter(attrs, registry.Inline))
	insert := textInsert(s.tree, index, text, inline)
	return s.modify(source, func(tr *transform.Transform) error {
		if err := tr.Replace(index, index, insert); err != nil {
			return err
		}
		if line := s.registry.Filter(attrs, registry.Block); len(line) > 0 {
			return tr.FormatLine(index, len([]rune(text)), line)
		}
		return nil
	})
}

// lineFormatsAt returns the attributes of the line holding index.
func (s *Session) lineFormatsAt(index int) delta.AttributeMap {
	return lineFormatsIn(s.tree, index)
}

func lineFormatsIn(t *model.Tree, index int) delta.AttributeMap {
	line, _, err := t.Line(index)
	if err != nil || line.Kind != model.Block {
		return nil
	}
	return line.LineAttributes()
}

// InsertEmbed inserts an embed at index. Inline embeds take the formats of
// the text around them; a block embed is placed on its own line.
func (s *Session) InsertEmbed(index int, name string, value interface{}, source Source) (*delta.Delta, error) {
	if err := s.checkRange(index, 0); err != nil {
		return nil, err
	}
	if !s.registry.IsEmbed(name) {
		return nil, fmt.Errorf("editor: unknown embed %q", name)
	}
	embed := delta.Embed{name: value}
	return s.modify(source, func(tr *transform.Transform) error {
		if !s.registry.IsBlockEmbed(name) {
			return tr.Insert(index, embed, s.inherited(index))
		}
		if _, offset, err := s.tree.Line(index); err == nil && offset > 0 {
			// Split the line first.
			if err := tr.Insert(index, "\n", s.lineFormatsAt(index)); err != nil {
				return err
			}
			index++
		}
		return tr.Insert(index, embed, nil)
	})
}

// DeleteText deletes a range of the document. The structure of the tables
// is kept: only the content of the cells in the range is deleted.
func (s *Session) DeleteText(index, length int, source Source) (*delta.Delta, error) {
	if err := s.checkRange(index, length); err != nil {
		return nil, err
	}
	change := tables.DeleteRange(s.tree, index, length)
	return s.modify(source, func(tr *transform.Transform) error {
		return tr.Apply(change)
	})
}

// FormatText applies inline formats to a range. A nil value removes the
// format.
func (s *Session) FormatText(index, length int, attrs delta.AttributeMap, source Source) (*delta.Delta, error) {
	if err := s.checkRange(index, length); err != nil {
		return nil, err
	}
	inline := s.registry.Filter(attrs, registry.Inline)
	return s.modify(source, func(tr *transform.Transform) error {
		return tr.Format(index, length, inline)
	})
}

// FormatLine applies line formats to every line intersecting a range.
func (s *Session) FormatLine(index, length int, attrs delta.AttributeMap, source Source) (*delta.Delta, error) {
	if err := s.checkRange(index, length); err != nil {
		return nil, err
	}
	line := s.registry.Filter(attrs, registry.Block)
	return s.modify(source, func(tr *transform.Transform) error {
		return tr.FormatLine(index, length, line)
	})
}

// Format applies one format to the selection: line formats to its lines,
// inline formats to its text. On a caret, inline formats apply to the next
// typed text.
func (s *Session) Format(name string, value interface{}, source Source) (*delta.Delta, error) {
	r := s.GetSelection()
	if r == nil {
		return delta.New(), nil
	}
	attrs := delta.AttributeMap{name: value}
	switch scope := s.registry.ScopeOf(name); {
	case scope&registry.Block != 0:
		return s.FormatLine(r.Index, r.Length, attrs, source)
	case scope&registry.Inline != 0:
		if r.Collapsed() {
			s.pending = delta.ComposeAttributes(s.pending, attrs, true)
			return delta.New(), nil
		}
		return s.FormatText(r.Index, r.Length, attrs, source)
	}
	return delta.New(), nil
}

// RemoveFormat removes the inline formats of a range, and the line formats
// of the lines it touches. Table structure is kept.
func (s *Session) RemoveFormat(index, length int, source Source) (*delta.Delta, error) {
	if err := s.checkRange(index, length); err != nil {
		return nil, err
	}
	line, offset, err := s.tree.Line(index + length)
	suffix := 0
	if err == nil && line.Kind == model.Block {
		suffix = line.Len() - offset
	}
	doc := s.tree.ToDelta()
	contents := doc.Slice(index, index+length+suffix)
	target := delta.New()
	s.plainLines(target, doc.Slice(index, index+length), false)
	s.plainLines(target, doc.Slice(index+length, index+length+suffix), true)
	diff, err := contents.Diff(target)
	if err != nil {
		return nil, err
	}
	change := delta.New().Retain(index, nil).Concat(diff)
	return s.modify(source, func(tr *transform.Transform) error {
		return tr.Apply(change)
	})
}

// plainLines writes the content of d to target without its line formats,
// and without its inline formats unless keepInline is set.
func (s *Session) plainLines(target, d *delta.Delta, keepInline bool) {
	for _, op := range d.Ops {
		attrs := op.Attributes
		if !keepInline {
			attrs = nil
		}
		text, ok := op.Insert.(string)
		if !ok {
			target.Insert(op.Insert, attrs)
			continue
		}
		for i, part := range strings.Split(text, "\n") {
			if i > 0 {
				target.Insert("\n", s.withoutBlockFormats(op.Attributes))
			}
			target.Insert(part, attrs)
		}
	}
}

// withoutBlockFormats keeps the table attributes of a line terminator.
func (s *Session) withoutBlockFormats(attrs delta.AttributeMap) delta.AttributeMap {
	result := delta.AttributeMap{}
	for k, v := range attrs {
		if s.registry.ScopeOf(k)&registry.Block == 0 {
			result[k] = v
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// GetFormat returns the formats of a range: those of its lines and those
// shared by all of its text.
func (s *Session) GetFormat(index, length int) (delta.AttributeMap, error) {
	if err := s.checkRange(index, length); err != nil {
		return nil, err
	}
	return s.tree.FormatsAt(index, length)
}
