// Package buffer provides the TextBuffer facade that coordinates text
// storage, edit history, and position markers. Every mutation goes
// through a single critical section that applies the edit to the rope,
// records it in history, and shifts markers, so concurrent readers
// never observe a torn intermediate state.
package buffer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"

	"github.com/editkit/editkit/config"
	"github.com/editkit/editkit/event"
	"github.com/editkit/editkit/history"
	"github.com/editkit/editkit/logging"
	"github.com/editkit/editkit/marker"
	"github.com/editkit/editkit/rope"
	"github.com/editkit/editkit/textop"
)

// ByteOffset is an alias for rope.ByteOffset for convenience.
type ByteOffset = rope.ByteOffset

var (
	// ErrOffsetOutOfRange is returned when a position falls outside the
	// current content. The rope below clamps; the facade rejects.
	ErrOffsetOutOfRange = errors.New("buffer: offset out of range")

	// ErrRangeInvalid is returned when a range is inverted or falls
	// outside the current content.
	ErrRangeInvalid = errors.New("buffer: invalid range")
)

// Buffer owns one rope, one history, and one marker set.
type Buffer struct {
	mu      sync.RWMutex
	id      string
	content rope.Rope
	hist    *history.History
	markers *marker.Set

	bus *event.Bus
	log *logging.Logger
}

// Option configures a Buffer.
type Option func(*options)

type options struct {
	maxHistory int
	logger     *logging.Logger
	bus        *event.Bus
	id         string
}

// WithMaxHistory caps the undo stack.
func WithMaxHistory(n int) Option {
	return func(o *options) { o.maxHistory = n }
}

// WithLogger attaches a logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBus attaches an event bus for change notifications.
func WithBus(b *event.Bus) Option {
	return func(o *options) { o.bus = b }
}

// WithID overrides the generated buffer id.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithConfig applies the relevant tunables from a loaded configuration.
func WithConfig(cfg config.Config) Option {
	return func(o *options) { o.maxHistory = cfg.History.MaxEntries }
}

// New creates an empty buffer.
func New(opts ...Option) *Buffer {
	return NewFromString("", opts...)
}

// NewFromString creates a buffer holding text.
func NewFromString(text string, opts ...Option) *Buffer {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Nop()
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}

	return &Buffer{
		id:      o.id,
		content: rope.FromString(text),
		hist:    history.New(o.maxHistory),
		markers: marker.NewSet(),
		bus:     o.bus,
		log:     o.logger.WithComponent("buffer"),
	}
}

// ID returns the buffer's identifier.
func (b *Buffer) ID() string {
	return b.id
}

// Insert adds text at position. The position must lie within
// [0, Len()]; it is snapped down to a UTF-8 rune boundary so an edit
// can never split an encoded character.
func (b *Buffer) Insert(position ByteOffset, text string) error {
	if text == "" {
		return nil
	}

	b.mu.Lock()
	if position < 0 || position > b.content.Len() {
		b.mu.Unlock()
		return fmt.Errorf("insert at %d in buffer of %d bytes: %w", position, b.content.Len(), ErrOffsetOutOfRange)
	}
	position = b.alignDownLocked(position)

	op := textop.Insert{Position: position, Text: text}
	next, err := op.Apply(b.content)
	if err != nil {
		b.mu.Unlock()
		return err
	}
	b.content = next
	b.hist.Push(op)
	b.markers.UpdatePositions(position, op.Delta())
	b.mu.Unlock()

	b.log.Debug("inserted %d bytes at %d", len(text), position)
	b.publish(event.TopicContentInserted, event.ContentInserted{
		BufferID: b.id,
		Position: position,
		Text:     text,
	})
	return nil
}

// Delete removes the bytes in [start, end). Both bounds must lie within
// the current content and start must not exceed end; bounds are snapped
// down to UTF-8 rune boundaries.
func (b *Buffer) Delete(start, end ByteOffset) error {
	b.mu.Lock()
	if start < 0 || end > b.content.Len() || start > end {
		length := b.content.Len()
		b.mu.Unlock()
		return fmt.Errorf("delete [%d,%d) in buffer of %d bytes: %w", start, end, length, ErrRangeInvalid)
	}
	start = b.alignDownLocked(start)
	end = b.alignDownLocked(end)
	if start == end {
		b.mu.Unlock()
		return nil
	}

	removed := b.content.Slice(start, end)
	op := textop.Delete{Start: start, End: end, Text: removed}
	next, err := op.Apply(b.content)
	if err != nil {
		b.mu.Unlock()
		return err
	}
	b.content = next
	b.hist.Push(op)
	b.markers.UpdatePositions(start, op.Delta())
	b.mu.Unlock()

	b.log.Debug("deleted [%d,%d)", start, end)
	b.publish(event.TopicContentDeleted, event.ContentDeleted{
		BufferID: b.id,
		Start:    start,
		End:      end,
		Text:     removed,
	})
	return nil
}

// Replace substitutes newText for the bytes in [start, end).
func (b *Buffer) Replace(start, end ByteOffset, newText string) error {
	b.mu.Lock()
	if start < 0 || end > b.content.Len() || start > end {
		length := b.content.Len()
		b.mu.Unlock()
		return fmt.Errorf("replace [%d,%d) in buffer of %d bytes: %w", start, end, length, ErrRangeInvalid)
	}
	start = b.alignDownLocked(start)
	end = b.alignDownLocked(end)

	old := b.content.Slice(start, end)
	op := textop.Replace{Start: start, End: end, OldText: old, NewText: newText}
	next, err := op.Apply(b.content)
	if err != nil {
		b.mu.Unlock()
		return err
	}
	b.content = next
	b.hist.Push(op)
	b.markers.UpdatePositions(start, op.Delta())
	b.mu.Unlock()

	b.log.Debug("replaced [%d,%d) with %d bytes", start, end, len(newText))
	b.publish(event.TopicContentReplaced, event.ContentReplaced{
		BufferID: b.id,
		Start:    start,
		End:      end,
		OldText:  old,
		NewText:  newText,
	})
	return nil
}

// DeleteGraphemeBefore removes the grapheme cluster ending at position,
// the way a backspace keystroke would. It reports whether anything was
// removed.
func (b *Buffer) DeleteGraphemeBefore(position ByteOffset) (bool, error) {
	b.mu.RLock()
	if position < 0 || position > b.content.Len() {
		length := b.content.Len()
		b.mu.RUnlock()
		return false, fmt.Errorf("backspace at %d in buffer of %d bytes: %w", position, length, ErrOffsetOutOfRange)
	}
	position = b.alignDownLocked(position)
	prefix := b.content.Slice(0, position)
	b.mu.RUnlock()

	if prefix == "" {
		return false, nil
	}

	// Walk the prefix cluster by cluster; the last step gives the
	// boundary of the cluster a backspace should remove.
	var start ByteOffset
	state := -1
	rest := prefix
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		if len(rest) == 0 {
			break
		}
		start += ByteOffset(len(cluster))
	}

	if err := b.Delete(start, position); err != nil {
		return false, err
	}
	return true, nil
}

// Undo reverses the most recent edit unit. It reports false when there
// is nothing to undo.
func (b *Buffer) Undo() bool {
	b.mu.Lock()
	recorded, ok := b.hist.Undo()
	if !ok {
		b.mu.Unlock()
		return false
	}

	inverse := recorded.Invert()
	next, err := inverse.Apply(b.content)
	if err != nil {
		// The recorded operation no longer matches the content. Put the
		// entry back and report failure.
		b.hist.Redo()
		b.mu.Unlock()
		b.log.Error("undo failed: %v", err)
		return false
	}
	b.content = next
	shiftMarkers(b.markers, inverse)
	pos, delta := opOrigin(inverse), inverse.Delta()
	b.mu.Unlock()

	b.publish(event.TopicUndoApplied, event.HistoryApplied{
		BufferID: b.id,
		Position: pos,
		Delta:    delta,
	})
	return true
}

// Redo reapplies the most recently undone edit unit. It reports false
// when there is nothing to redo.
func (b *Buffer) Redo() bool {
	b.mu.Lock()
	recorded, ok := b.hist.Redo()
	if !ok {
		b.mu.Unlock()
		return false
	}

	next, err := recorded.Apply(b.content)
	if err != nil {
		b.hist.Undo()
		b.mu.Unlock()
		b.log.Error("redo failed: %v", err)
		return false
	}
	b.content = next
	shiftMarkers(b.markers, recorded)
	pos, delta := opOrigin(recorded), recorded.Delta()
	b.mu.Unlock()

	b.publish(event.TopicRedoApplied, event.HistoryApplied{
		BufferID: b.id,
		Position: pos,
		Delta:    delta,
	})
	return true
}

// CanUndo reports whether undo is available.
func (b *Buffer) CanUndo() bool {
	return b.hist.CanUndo()
}

// CanRedo reports whether redo is available.
func (b *Buffer) CanRedo() bool {
	return b.hist.CanRedo()
}

// BeginGroup opens an undo group: every edit until EndGroup is undone
// and redone as one unit.
func (b *Buffer) BeginGroup() {
	b.hist.StartGroup()
}

// EndGroup closes the current undo group.
func (b *Buffer) EndGroup() {
	b.hist.EndGroup()
}

// Transaction runs fn with an undo group open.
func (b *Buffer) Transaction(fn func() error) error {
	return b.hist.Transaction(fn)
}

// ClearHistory drops all undo/redo state without touching content.
func (b *Buffer) ClearHistory() {
	b.hist.Clear()
}

// Reset empties content, history, and markers.
func (b *Buffer) Reset() {
	b.mu.Lock()
	b.content = rope.New()
	b.hist.Clear()
	b.markers.Clear()
	b.mu.Unlock()

	b.publish(event.TopicCleared, event.Cleared{BufferID: b.id})
}

// Text returns the full content.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.content.String()
}

// Slice returns the bytes in [start, end), clamped to the content.
func (b *Buffer) Slice(start, end ByteOffset) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.content.Slice(start, end)
}

// Len returns the content length in bytes.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.content.Len()
}

// LineCount returns the number of newline separators.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.content.LineCount()
}

// VisualLineCount returns the number of lines a renderer would draw.
func (b *Buffer) VisualLineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.content.VisualLineCount()
}

// IsEmpty reports whether the buffer holds no text.
func (b *Buffer) IsEmpty() bool {
	return b.Len() == 0
}

// GraphemeCount returns the number of user-perceived characters.
func (b *Buffer) GraphemeCount() int {
	return uniseg.GraphemeClusterCount(b.Text())
}

// AlignToBoundary snaps offset down to the nearest UTF-8 rune boundary
// within [0, Len()].
func (b *Buffer) AlignToBoundary(offset ByteOffset) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if offset < 0 {
		return 0
	}
	if offset > b.content.Len() {
		return b.content.Len()
	}
	return b.alignDownLocked(offset)
}

// alignDownLocked moves offset back over UTF-8 continuation bytes to
// the start of the rune it falls inside. Caller holds a lock and has
// bounds-checked offset.
func (b *Buffer) alignDownLocked(offset ByteOffset) ByteOffset {
	for offset > 0 {
		c, ok := b.content.ByteAt(offset)
		if !ok || c&0xC0 != 0x80 {
			break
		}
		offset--
	}
	return offset
}

// publish sends an event when a bus is attached. Events go out after
// the critical section so a handler reading the buffer cannot deadlock
// against the writer.
func (b *Buffer) publish(topic event.Topic, e any) {
	if b.bus != nil {
		b.bus.Publish(topic, e)
	}
}

// shiftMarkers applies an operation's position shifts to the marker
// set, child by child for compounds.
func shiftMarkers(set *marker.Set, op textop.Operation) {
	switch o := op.(type) {
	case textop.Insert:
		set.UpdatePositions(o.Position, o.Delta())
	case textop.Delete:
		set.UpdatePositions(o.Start, o.Delta())
	case textop.Replace:
		set.UpdatePositions(o.Start, o.Delta())
	case textop.Compound:
		for _, child := range o.Ops {
			shiftMarkers(set, child)
		}
	}
}

// opOrigin returns the leftmost position an operation touches, used in
// change notifications.
func opOrigin(op textop.Operation) ByteOffset {
	switch o := op.(type) {
	case textop.Insert:
		return o.Position
	case textop.Delete:
		return o.Start
	case textop.Replace:
		return o.Start
	case textop.Compound:
		if len(o.Ops) > 0 {
			origin := opOrigin(o.Ops[0])
			for _, child := range o.Ops[1:] {
				if p := opOrigin(child); p < origin {
					origin = p
				}
			}
			return origin
		}
	}
	return 0
}
