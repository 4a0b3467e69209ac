// Package history provides bounded undo/redo stacks over recorded text
// operations, with explicit grouping so a multi-step logical edit can
// be reversed as a single unit.
package history

import (
	"sync"
	"time"

	"github.com/editkit/editkit/textop"
)

// DefaultMaxEntries is the undo stack cap when none is configured.
// Oldest entries are evicted silently once the cap is reached.
const DefaultMaxEntries = 1000

// Entry is one recorded operation with its metadata.
type Entry struct {
	// Op is the operation as it was applied.
	Op textop.Operation

	// Timestamp records when the operation was pushed.
	Timestamp time.Time

	// Group ties consecutive entries into one undo unit. Zero means
	// ungrouped; ungrouped entries are always singleton units.
	Group uint64
}

// History manages undo/redo state for a buffer. All methods are safe
// for concurrent use.
type History struct {
	mu sync.Mutex

	undoStack []Entry
	redoStack []Entry

	// Grouping state.
	currentGroup uint64
	nextGroup    uint64

	maxEntries int
}

// New creates a history with the given cap. A cap <= 0 selects
// DefaultMaxEntries.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{
		nextGroup:  1,
		maxEntries: maxEntries,
	}
}

// Push records an applied operation on the undo stack, tagged with the
// current group if one is open. Any new push invalidates the redo
// stack: redo is only meaningful immediately after an undo.
func (h *History) Push(op textop.Operation) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = append(h.undoStack, Entry{
		Op:        op,
		Timestamp: time.Now(),
		Group:     h.currentGroup,
	})
	h.redoStack = nil

	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = append([]Entry(nil), h.undoStack[excess:]...)
	}
}

// StartGroup opens a new operation group. Every push until EndGroup is
// tagged with the same fresh group id and will be undone and redone as
// one unit. Nested calls start a new group.
func (h *History) StartGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentGroup = h.nextGroup
	h.nextGroup++
}

// EndGroup closes the current group. Later pushes are ungrouped.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentGroup = 0
}

// Transaction runs fn with a group open, closing it when fn returns.
func (h *History) Transaction(fn func() error) error {
	h.StartGroup()
	defer h.EndGroup()
	return fn()
}

// Undo pops the most recent undo unit (a whole group, or a single
// ungrouped entry), moves it to the redo stack, and returns the
// combined recorded operation (a textop.Compound for more than one).
// The caller is expected to invert it before applying. Reports false
// when there is nothing to undo.
func (h *History) Undo() (textop.Operation, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	popped := h.popUnit(&h.undoStack)
	if len(popped) == 0 {
		return nil, false
	}

	// Reverse onto the redo stack so a later Redo restores original
	// order.
	for i := len(popped) - 1; i >= 0; i-- {
		h.redoStack = append(h.redoStack, popped[i])
	}

	return combineEntries(popped), true
}

// Redo is symmetric to Undo: it pops the most recent redo unit back
// onto the undo stack and returns the combined recorded operation,
// ready to apply as-is.
func (h *History) Redo() (textop.Operation, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	popped := h.popUnit(&h.redoStack)
	if len(popped) == 0 {
		return nil, false
	}

	for i := len(popped) - 1; i >= 0; i-- {
		h.undoStack = append(h.undoStack, popped[i])
	}

	return combineEntries(popped), true
}

// popUnit pops one undo unit off the stack: the top entry plus, when
// it carries a group id, every consecutive entry with the same id.
func (h *History) popUnit(stack *[]Entry) []Entry {
	s := *stack
	if len(s) == 0 {
		return nil
	}

	top := s[len(s)-1]
	s = s[:len(s)-1]
	popped := []Entry{top}

	if top.Group != 0 {
		for len(s) > 0 && s[len(s)-1].Group == top.Group {
			popped = append(popped, s[len(s)-1])
			s = s[:len(s)-1]
		}
	}

	*stack = s
	return popped
}

// combineEntries flattens popped entries into one operation. Entries
// come off the stack newest-first; the recorded order is the reverse.
func combineEntries(popped []Entry) textop.Operation {
	ops := make([]textop.Operation, len(popped))
	for i, e := range popped {
		ops[len(popped)-1-i] = e.Op
	}
	return textop.Combine(ops)
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of entries on the undo stack.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of entries on the redo stack.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// MaxEntries returns the configured stack cap.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}

// Clear empties both stacks and resets grouping state.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undoStack = nil
	h.redoStack = nil
	h.currentGroup = 0
}
