package rope

import "strings"

// MaxLeafSize is the maximum byte length of a leaf's text. Two adjacent
// leaves whose combined size fits under this threshold are fused into a
// single leaf on concat; larger runs stay as separate children of an
// internal node. This bounds leaf fragmentation but is a performance
// knob, not a correctness invariant.
const MaxLeafSize = 1024

// node is a node in the rope binary tree. A node is either a leaf
// holding a run of text, or an internal node holding two children.
// Nodes are immutable once built; split and concat share untouched
// subtrees instead of cloning them.
type node struct {
	summary TextSummary

	// Internal node fields (nil for leaves).
	left  *node
	right *node

	// Leaf node field.
	text string
}

// newLeaf creates a leaf node with precomputed summary.
func newLeaf(text string) *node {
	return &node{
		text:    text,
		summary: ComputeSummary(text),
	}
}

// newInternal creates an internal node over two children. The summary
// is recomputed from the children at construction so cached metrics
// can never go stale.
func newInternal(left, right *node) *node {
	return &node{
		left:    left,
		right:   right,
		summary: left.summary.Add(right.summary),
	}
}

// isLeaf returns true if this is a leaf node.
func (n *node) isLeaf() bool {
	return n.left == nil
}

// length returns the byte length of text in this subtree.
func (n *node) length() ByteOffset {
	return n.summary.Bytes
}

// split splits the subtree at the given byte offset, returning the
// left part [0, offset) and the right part [offset, end). The child
// on the far side of the offset is reused as-is; only the spine down
// to the split point is rebuilt.
func (n *node) split(offset ByteOffset) (*node, *node) {
	if offset <= 0 {
		return newLeaf(""), n
	}
	if offset >= n.length() {
		return n, newLeaf("")
	}

	if n.isLeaf() {
		return newLeaf(n.text[:offset]), newLeaf(n.text[offset:])
	}

	leftLen := n.left.length()
	if offset <= leftLen {
		ll, lr := n.left.split(offset)
		return ll, concatNodes(lr, n.right)
	}
	rl, rr := n.right.split(offset - leftLen)
	return concatNodes(n.left, rl), rr
}

// concatNodes joins two subtrees. Small adjacent leaves are fused into
// one leaf; everything else is wrapped in an internal node.
func concatNodes(left, right *node) *node {
	if left == nil || left.length() == 0 {
		if right == nil {
			return newLeaf("")
		}
		return right
	}
	if right == nil || right.length() == 0 {
		return left
	}

	if left.isLeaf() && right.isLeaf() && len(left.text)+len(right.text) <= MaxLeafSize {
		return newLeaf(left.text + right.text)
	}
	return newInternal(left, right)
}

// appendTo appends all text in this subtree to the builder.
func (n *node) appendTo(sb *strings.Builder) {
	if n.isLeaf() {
		sb.WriteString(n.text)
		return
	}
	n.left.appendTo(sb)
	n.right.appendTo(sb)
}

// appendRange appends text in the byte range [start, end) to the
// builder. Both bounds are assumed clamped to the subtree's length.
func (n *node) appendRange(sb *strings.Builder, start, end ByteOffset) {
	if start >= end {
		return
	}

	if n.isLeaf() {
		sb.WriteString(n.text[start:end])
		return
	}

	leftLen := n.left.length()
	if start < leftLen {
		leftEnd := end
		if leftEnd > leftLen {
			leftEnd = leftLen
		}
		n.left.appendRange(sb, start, leftEnd)
	}
	if end > leftLen {
		rightStart := start - leftLen
		if rightStart < 0 {
			rightStart = 0
		}
		n.right.appendRange(sb, rightStart, end-leftLen)
	}
}

// byteAt returns the byte at the given offset. The offset is assumed
// in range.
func (n *node) byteAt(offset ByteOffset) byte {
	for !n.isLeaf() {
		leftLen := n.left.length()
		if offset < leftLen {
			n = n.left
		} else {
			n = n.right
			offset -= leftLen
		}
	}
	return n.text[offset]
}

// offsetOfNewline returns the byte offset just past the idx-th newline
// (0-indexed) in the subtree. The index is assumed less than the
// subtree's newline count.
func (n *node) offsetOfNewline(idx int) ByteOffset {
	if n.isLeaf() {
		pos := ByteOffset(0)
		for i := 0; i <= idx; i++ {
			rel := strings.IndexByte(n.text[pos:], '\n')
			pos += ByteOffset(rel) + 1
		}
		return pos
	}

	if idx < n.left.summary.Lines {
		return n.left.offsetOfNewline(idx)
	}
	return n.left.length() + n.right.offsetOfNewline(idx-n.left.summary.Lines)
}

// height returns the height of the subtree. Used by tests to observe
// tree shape.
func (n *node) height() int {
	if n.isLeaf() {
		return 1
	}
	lh := n.left.height()
	rh := n.right.height()
	if lh > rh {
		return lh + 1
	}
	return rh + 1
}
