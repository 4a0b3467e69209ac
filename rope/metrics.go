package rope

import "strings"

// ByteOffset is an absolute byte position in the rope.
// It is signed so that edit deltas can be expressed directly.
type ByteOffset = int64

// TextSummary holds aggregated metrics for a text span.
// Summaries are cached on every node and combined with Add when
// subtrees are concatenated, so Len and LineCount are O(1).
type TextSummary struct {
	// Bytes is the UTF-8 byte count.
	Bytes ByteOffset

	// Lines is the number of newline characters (separators, not
	// visual lines).
	Lines int
}

// Add combines two summaries. This is the monoid operation used when
// joining rope sections.
func (s TextSummary) Add(other TextSummary) TextSummary {
	return TextSummary{
		Bytes: s.Bytes + other.Bytes,
		Lines: s.Lines + other.Lines,
	}
}

// IsZero returns true if this summary describes empty text.
func (s TextSummary) IsZero() bool {
	return s.Bytes == 0
}

// ComputeSummary calculates metrics for a string.
func ComputeSummary(s string) TextSummary {
	return TextSummary{
		Bytes: ByteOffset(len(s)),
		Lines: strings.Count(s, "\n"),
	}
}
