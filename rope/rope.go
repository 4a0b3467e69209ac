// Package rope provides an immutable rope data structure for efficient
// text storage and manipulation.
//
// A rope is a binary tree where leaf nodes hold runs of text and
// internal nodes cache aggregated metrics (byte length, newline count)
// for their subtrees. Edits split the tree around the affected range
// and rejoin it, giving O(log n + edit-size) mutation instead of the
// O(n) shifting a flat buffer would need. Operations return new Rope
// values and share unchanged subtrees with the original, so snapshots
// are cheap and concurrent readers never observe a partial edit.
package rope

import (
	"io"
	"strings"
)

// Rope is an immutable text container. The zero value is not usable;
// construct with New or FromString.
type Rope struct {
	root *node
}

// New creates an empty rope.
func New() Rope {
	return Rope{root: newLeaf("")}
}

// FromString creates a rope containing s.
func FromString(s string) Rope {
	if len(s) == 0 {
		return New()
	}
	var b Builder
	b.WriteString(s)
	return b.Build()
}

// FromReader creates a rope from an io.Reader.
func FromReader(r io.Reader) (Rope, error) {
	var b Builder
	buf := make([]byte, 64*1024)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			b.WriteString(string(buf[:n]))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Rope{}, err
		}
	}
	return b.Build(), nil
}

// Len returns the total byte length. O(1), served from the root cache.
func (r Rope) Len() ByteOffset {
	if r.root == nil {
		return 0
	}
	return r.root.length()
}

// LineCount returns the number of newline separators. O(1). A trailing
// partial line without a terminator is not counted; callers wanting
// "number of lines" should use VisualLineCount.
func (r Rope) LineCount() int {
	if r.root == nil {
		return 0
	}
	return r.root.summary.Lines
}

// VisualLineCount returns the number of lines as a user would count
// them: newline separators plus one for the final line.
func (r Rope) VisualLineCount() int {
	return r.LineCount() + 1
}

// IsEmpty returns true if the rope contains no text.
func (r Rope) IsEmpty() bool {
	return r.Len() == 0
}

// String returns the full text. Use sparingly for large ropes.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(int(r.Len()))
	r.root.appendTo(&sb)
	return sb.String()
}

// Slice materializes the bytes in [start, end) into a string.
// Out-of-range indices are clamped rather than erroring: start and end
// are clamped to [0, Len()], and start >= end yields "". Slice never
// panics for any input.
func (r Rope) Slice(start, end ByteOffset) string {
	if r.root == nil {
		return ""
	}

	length := r.Len()
	if start < 0 {
		start = 0
	}
	if end > length {
		end = length
	}
	if start >= end {
		return ""
	}

	var sb strings.Builder
	sb.Grow(int(end - start))
	r.root.appendRange(&sb, start, end)
	return sb.String()
}

// ByteAt returns the byte at the given offset.
// Returns 0 and false if offset is out of range.
func (r Rope) ByteAt(offset ByteOffset) (byte, bool) {
	if r.root == nil || offset < 0 || offset >= r.Len() {
		return 0, false
	}
	return r.root.byteAt(offset), true
}

// Insert inserts text at the given byte offset and returns the new
// rope; the original is unchanged. Inserting past the end or inserting
// empty text is a silent no-op: the receiver is returned as-is.
func (r Rope) Insert(offset ByteOffset, text string) Rope {
	if len(text) == 0 || offset < 0 || r.root == nil || offset > r.Len() {
		return r
	}

	left, right := r.root.split(offset)
	mid := FromString(text).root
	return Rope{root: concatNodes(concatNodes(left, mid), right)}
}

// Delete removes the bytes in [start, end) and returns the new rope;
// the original is unchanged. A range starting at or past the end, or
// with start >= end, is a silent no-op. An end past the rope length is
// clamped.
func (r Rope) Delete(start, end ByteOffset) Rope {
	if r.root == nil || start < 0 || start >= r.Len() || start >= end {
		return r
	}
	if end > r.Len() {
		end = r.Len()
	}

	left, rest := r.root.split(start)
	_, right := rest.split(end - start)
	return Rope{root: concatNodes(left, right)}
}

// Replace replaces the bytes in [start, end) with text.
func (r Rope) Replace(start, end ByteOffset, text string) Rope {
	if start >= end {
		return r.Insert(start, text)
	}
	if len(text) == 0 {
		return r.Delete(start, end)
	}
	return r.Delete(start, end).Insert(start, text)
}

// Split splits the rope at offset, returning two ropes whose
// concatenation reconstructs the original. The offset must fall on a
// valid UTF-8 boundary; boundary safety is the caller's responsibility.
func (r Rope) Split(offset ByteOffset) (Rope, Rope) {
	if r.root == nil || offset <= 0 {
		return New(), r
	}
	if offset >= r.Len() {
		return r, New()
	}

	left, right := r.root.split(offset)
	return Rope{root: left}, Rope{root: right}
}

// Concat returns a single rope representing r followed by other.
// Both inputs are unchanged.
func (r Rope) Concat(other Rope) Rope {
	if r.root == nil || r.Len() == 0 {
		return other
	}
	if other.root == nil || other.Len() == 0 {
		return r
	}
	return Rope{root: concatNodes(r.root, other.root)}
}

// LineStartOffset returns the byte offset of the start of the given
// 0-indexed line. Lines past the last return Len().
func (r Rope) LineStartOffset(line int) ByteOffset {
	if r.root == nil || line <= 0 {
		return 0
	}
	if line > r.LineCount() {
		return r.Len()
	}
	return r.root.offsetOfNewline(line - 1)
}

// LineEndOffset returns the byte offset of the end of the given line,
// not including the newline itself.
func (r Rope) LineEndOffset(line int) ByteOffset {
	if r.root == nil {
		return 0
	}
	if line >= r.LineCount() {
		return r.Len()
	}
	return r.root.offsetOfNewline(line) - 1
}

// LineText returns the text of the given line without its newline.
func (r Rope) LineText(line int) string {
	return r.Slice(r.LineStartOffset(line), r.LineEndOffset(line))
}

// Lines returns all lines in the rope, split on newline separators.
// The separators themselves are not included.
func (r Rope) Lines() []string {
	count := r.VisualLineCount()
	lines := make([]string, 0, count)
	for i := 0; i < count; i++ {
		lines = append(lines, r.LineText(i))
	}
	return lines
}

// Summary returns the aggregated metrics for the entire rope.
func (r Rope) Summary() TextSummary {
	if r.root == nil {
		return TextSummary{}
	}
	return r.root.summary
}

// Equals returns true if two ropes contain the same text.
// This compares content, not structure.
func (r Rope) Equals(other Rope) bool {
	if r.Len() != other.Len() {
		return false
	}
	return r.String() == other.String()
}

// Height returns the height of the rope tree. Useful for tests that
// observe tree shape.
func (r Rope) Height() int {
	if r.root == nil {
		return 0
	}
	return r.root.height()
}
