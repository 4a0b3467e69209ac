package rope

// Builder incrementally constructs a rope from sequential writes.
// It accumulates leaf-sized runs and assembles a balanced tree in
// Build, avoiding the degenerate spine repeated Concat calls would
// produce. The zero value is ready to use.
type Builder struct {
	leaves  []*node
	pending []byte
}

// WriteString appends s to the rope being built.
func (b *Builder) WriteString(s string) {
	for len(s) > 0 {
		room := MaxLeafSize - len(b.pending)
		if room == 0 {
			b.flush()
			room = MaxLeafSize
		}
		n := len(s)
		if n > room {
			n = room
		}
		b.pending = append(b.pending, s[:n]...)
		s = s[n:]
	}
}

// Write appends p to the rope being built. It implements io.Writer and
// never returns an error.
func (b *Builder) Write(p []byte) (int, error) {
	b.WriteString(string(p))
	return len(p), nil
}

// flush turns the pending bytes into a leaf.
func (b *Builder) flush() {
	if len(b.pending) == 0 {
		return
	}
	b.leaves = append(b.leaves, newLeaf(string(b.pending)))
	b.pending = b.pending[:0]
}

// Build assembles the accumulated text into a balanced rope and resets
// the builder.
func (b *Builder) Build() Rope {
	b.flush()
	nodes := b.leaves
	b.leaves = nil

	if len(nodes) == 0 {
		return New()
	}

	// Pair up nodes level by level until one root remains.
	for len(nodes) > 1 {
		parents := make([]*node, 0, (len(nodes)+1)/2)
		for i := 0; i < len(nodes); i += 2 {
			if i+1 < len(nodes) {
				parents = append(parents, newInternal(nodes[i], nodes[i+1]))
			} else {
				parents = append(parents, nodes[i])
			}
		}
		nodes = parents
	}
	return Rope{root: nodes[0]}
}
