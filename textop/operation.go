// Package textop defines the reversible edit operations applied to a
// rope: insert, delete, replace, and compound sequences of those.
//
// Every operation knows how to apply itself to a rope, invert itself,
// and optionally coalesce with an adjacent operation of the same kind.
// The central contract is the round-trip law: for any operation op and
// rope r, applying op and then op.Invert() restores r byte for byte.
// Delete and Replace carry the removed text so that inversion never
// needs to re-read the buffer.
package textop

import (
	"errors"
	"fmt"

	"github.com/editkit/editkit/rope"
)

// ByteOffset is an alias for rope.ByteOffset for convenience.
type ByteOffset = rope.ByteOffset

// ErrOutOfRange is returned when an operation names a position or range
// outside the rope it is applied to.
var ErrOutOfRange = errors.New("textop: position out of range")

// Operation is a single reversible edit.
type Operation interface {
	// Apply performs the edit and returns the resulting rope. Ropes
	// are immutable, so the input is never modified.
	Apply(r rope.Rope) (rope.Rope, error)

	// Invert returns the operation that undoes this one.
	Invert() Operation

	// Combine merges this operation with an immediately following one
	// of the same kind when they are position-adjacent. It reports
	// false when the pair cannot be coalesced.
	Combine(other Operation) (Operation, bool)

	// Delta returns the signed change in rope length this operation
	// causes. Callers use it to shift positions that ride on the text.
	Delta() ByteOffset
}

// Insert adds Text at Position.
type Insert struct {
	Position ByteOffset
	Text     string
}

// Delete removes the bytes in [Start, End). Text is the removed
// content, captured at delete time so the operation is self-invertible.
type Delete struct {
	Start ByteOffset
	End   ByteOffset
	Text  string
}

// Replace substitutes NewText for the bytes in [Start, End). OldText is
// the replaced content, captured for inversion.
type Replace struct {
	Start   ByteOffset
	End     ByteOffset
	OldText string
	NewText string
}

// Compound is an ordered sequence of operations treated as one edit.
type Compound struct {
	Ops []Operation
}

// Insert

func (op Insert) Apply(r rope.Rope) (rope.Rope, error) {
	if op.Position < 0 || op.Position > r.Len() {
		return r, fmt.Errorf("insert at %d in rope of %d bytes: %w", op.Position, r.Len(), ErrOutOfRange)
	}
	return r.Insert(op.Position, op.Text), nil
}

func (op Insert) Invert() Operation {
	return Delete{
		Start: op.Position,
		End:   op.Position + ByteOffset(len(op.Text)),
		Text:  op.Text,
	}
}

// Combine coalesces two inserts when the second appends directly to the
// end of the first's text.
func (op Insert) Combine(other Operation) (Operation, bool) {
	next, ok := other.(Insert)
	if !ok {
		return nil, false
	}
	if next.Position != op.Position+ByteOffset(len(op.Text)) {
		return nil, false
	}
	return Insert{Position: op.Position, Text: op.Text + next.Text}, true
}

func (op Insert) Delta() ByteOffset {
	return ByteOffset(len(op.Text))
}

func (op Insert) String() string {
	return fmt.Sprintf("insert %q at %d", truncate(op.Text), op.Position)
}

// Delete

func (op Delete) Apply(r rope.Rope) (rope.Rope, error) {
	if op.Start < 0 || op.Start > op.End || op.End > r.Len() {
		return r, fmt.Errorf("delete [%d,%d) in rope of %d bytes: %w", op.Start, op.End, r.Len(), ErrOutOfRange)
	}
	return r.Delete(op.Start, op.End), nil
}

func (op Delete) Invert() Operation {
	return Insert{Position: op.Start, Text: op.Text}
}

// Combine coalesces two deletes when one's end meets the other's start,
// in either direction (forward delete and backspace both qualify).
func (op Delete) Combine(other Operation) (Operation, bool) {
	next, ok := other.(Delete)
	if !ok {
		return nil, false
	}
	switch {
	case op.End == next.Start:
		// Forward adjacency: the second range begins where the first
		// ended.
		return Delete{
			Start: op.Start,
			End:   op.Start + ByteOffset(len(op.Text)+len(next.Text)),
			Text:  op.Text + next.Text,
		}, true
	case op.Start == next.End:
		// Backspace adjacency: the second range ends where the first
		// began, so its text comes first in the document.
		return Delete{
			Start: next.Start,
			End:   next.Start + ByteOffset(len(next.Text)+len(op.Text)),
			Text:  next.Text + op.Text,
		}, true
	}
	return nil, false
}

func (op Delete) Delta() ByteOffset {
	return -(op.End - op.Start)
}

func (op Delete) String() string {
	return fmt.Sprintf("delete [%d,%d)", op.Start, op.End)
}

// Replace

func (op Replace) Apply(r rope.Rope) (rope.Rope, error) {
	if op.Start < 0 || op.Start > op.End || op.End > r.Len() {
		return r, fmt.Errorf("replace [%d,%d) in rope of %d bytes: %w", op.Start, op.End, r.Len(), ErrOutOfRange)
	}
	return r.Delete(op.Start, op.End).Insert(op.Start, op.NewText), nil
}

func (op Replace) Invert() Operation {
	return Replace{
		Start:   op.Start,
		End:     op.Start + ByteOffset(len(op.NewText)),
		OldText: op.NewText,
		NewText: op.OldText,
	}
}

// Combine coalesces two replaces when the first's end meets the
// second's start.
func (op Replace) Combine(other Operation) (Operation, bool) {
	next, ok := other.(Replace)
	if !ok {
		return nil, false
	}
	if next.Start != op.End {
		return nil, false
	}
	return Replace{
		Start:   op.Start,
		End:     op.Start + ByteOffset(len(op.OldText)+len(next.OldText)),
		OldText: op.OldText + next.OldText,
		NewText: op.NewText + next.NewText,
	}, true
}

func (op Replace) Delta() ByteOffset {
	return ByteOffset(len(op.NewText)) - (op.End - op.Start)
}

func (op Replace) String() string {
	return fmt.Sprintf("replace [%d,%d) with %q", op.Start, op.End, truncate(op.NewText))
}

// Compound

// Apply applies each child in order. Application is all-or-nothing:
// ropes are cheap to reference-share, so the input rope itself is the
// rollback snapshot and is returned unchanged if any child fails.
func (op Compound) Apply(r rope.Rope) (rope.Rope, error) {
	result := r
	for i, child := range op.Ops {
		next, err := child.Apply(result)
		if err != nil {
			return r, fmt.Errorf("compound op %d: %w", i, err)
		}
		result = next
	}
	return result, nil
}

// Invert reverses the child order and inverts each child. The order
// reversal is required for correctness when children are not
// independent of each other.
func (op Compound) Invert() Operation {
	inverted := make([]Operation, len(op.Ops))
	for i, child := range op.Ops {
		inverted[len(op.Ops)-1-i] = child.Invert()
	}
	return Compound{Ops: inverted}
}

// Combine never coalesces compounds.
func (op Compound) Combine(Operation) (Operation, bool) {
	return nil, false
}

func (op Compound) Delta() ByteOffset {
	var total ByteOffset
	for _, child := range op.Ops {
		total += child.Delta()
	}
	return total
}

func (op Compound) String() string {
	return fmt.Sprintf("compound of %d ops", len(op.Ops))
}

// Combine flattens a list of operations into a single one: the sole
// element for a singleton list, a Compound otherwise.
func Combine(ops []Operation) Operation {
	if len(ops) == 1 {
		return ops[0]
	}
	combined := make([]Operation, len(ops))
	copy(combined, ops)
	return Compound{Ops: combined}
}

func truncate(s string) string {
	if len(s) > 20 {
		return s[:17] + "..."
	}
	return s
}
