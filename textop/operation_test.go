package textop

import (
	"errors"
	"testing"
	"testing/quick"

	"github.com/editkit/editkit/rope"
)

func mustApply(t *testing.T, op Operation, r rope.Rope) rope.Rope {
	t.Helper()
	result, err := op.Apply(r)
	if err != nil {
		t.Fatalf("apply %v: %v", op, err)
	}
	return result
}

func TestInsertApplyAndInvert(t *testing.T) {
	r := rope.New()
	op := Insert{Position: 0, Text: "Hello"}

	r = mustApply(t, op, r)
	if r.String() != "Hello" {
		t.Errorf("got %q", r.String())
	}

	r = mustApply(t, op.Invert(), r)
	if r.String() != "" {
		t.Errorf("invert did not restore empty, got %q", r.String())
	}
}

func TestDeleteApplyAndInvert(t *testing.T) {
	r := rope.FromString("Hello, World!")
	op := Delete{Start: 5, End: 7, Text: ", "}

	r = mustApply(t, op, r)
	if r.String() != "HelloWorld!" {
		t.Errorf("got %q", r.String())
	}

	r = mustApply(t, op.Invert(), r)
	if r.String() != "Hello, World!" {
		t.Errorf("invert did not restore, got %q", r.String())
	}
}

func TestReplaceApplyAndInvert(t *testing.T) {
	r := rope.FromString("Hello, World!")
	op := Replace{Start: 0, End: 5, OldText: "Hello", NewText: "Hi"}

	r = mustApply(t, op, r)
	if r.String() != "Hi, World!" {
		t.Errorf("got %q", r.String())
	}

	r = mustApply(t, op.Invert(), r)
	if r.String() != "Hello, World!" {
		t.Errorf("invert did not restore, got %q", r.String())
	}
}

func TestCompoundApplyAndInvert(t *testing.T) {
	r := rope.New()
	op := Compound{Ops: []Operation{
		Insert{Position: 0, Text: "Hello"},
		Insert{Position: 5, Text: ", "},
		Insert{Position: 7, Text: "World!"},
	}}

	r = mustApply(t, op, r)
	if r.String() != "Hello, World!" {
		t.Errorf("got %q", r.String())
	}

	r = mustApply(t, op.Invert(), r)
	if r.String() != "" {
		t.Errorf("invert did not restore empty, got %q", r.String())
	}
}

func TestCompoundAtomicity(t *testing.T) {
	r := rope.FromString("abc")
	op := Compound{Ops: []Operation{
		Insert{Position: 0, Text: "x"},
		Insert{Position: 100, Text: "boom"}, // out of range
	}}

	result, err := op.Apply(r)
	if err == nil {
		t.Fatal("expected error from out-of-range child")
	}
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("error = %v, want ErrOutOfRange", err)
	}
	if result.String() != "abc" {
		t.Errorf("failed compound must leave rope untouched, got %q", result.String())
	}
}

func TestRoundTripProperty(t *testing.T) {
	base := "the quick brown fox jumps over the lazy dog"

	f := func(pos uint16, text string) bool {
		r := rope.FromString(base)
		p := ByteOffset(pos) % (r.Len() + 1)

		op := Insert{Position: p, Text: text}
		after, err := op.Apply(r)
		if err != nil {
			return false
		}
		restored, err := op.Invert().Apply(after)
		if err != nil {
			return false
		}
		return restored.String() == base
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestDeleteRoundTripProperty(t *testing.T) {
	base := "abcdefghijklmnopqrstuvwxyz0123456789"

	f := func(a, b uint16) bool {
		r := rope.FromString(base)
		start := ByteOffset(a) % r.Len()
		end := ByteOffset(b) % r.Len()
		if start > end {
			start, end = end, start
		}

		op := Delete{Start: start, End: end, Text: r.Slice(start, end)}
		after, err := op.Apply(r)
		if err != nil {
			return false
		}
		restored, err := op.Invert().Apply(after)
		if err != nil {
			return false
		}
		return restored.String() == base
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestInsertCombine(t *testing.T) {
	op1 := Insert{Position: 0, Text: "Hello"}

	// Append-adjacent: second insert starts right after first's text.
	combined, ok := op1.Combine(Insert{Position: 5, Text: ", World!"})
	if !ok {
		t.Fatal("adjacent inserts should combine")
	}
	ins, ok := combined.(Insert)
	if !ok || ins.Position != 0 || ins.Text != "Hello, World!" {
		t.Errorf("combined = %+v", combined)
	}

	// Not adjacent.
	if _, ok := op1.Combine(Insert{Position: 3, Text: "x"}); ok {
		t.Error("non-adjacent inserts must not combine")
	}
	if _, ok := op1.Combine(Insert{Position: 6, Text: "x"}); ok {
		t.Error("gapped inserts must not combine")
	}
}

func TestDeleteCombine(t *testing.T) {
	// Forward: [2,4) then [4,6).
	op1 := Delete{Start: 2, End: 4, Text: "cd"}
	combined, ok := op1.Combine(Delete{Start: 4, End: 6, Text: "ef"})
	if !ok {
		t.Fatal("forward-adjacent deletes should combine")
	}
	del := combined.(Delete)
	if del.Start != 2 || del.End != 6 || del.Text != "cdef" {
		t.Errorf("combined = %+v", del)
	}

	// Backspace: [4,6) then [2,4).
	op2 := Delete{Start: 4, End: 6, Text: "ef"}
	combined, ok = op2.Combine(Delete{Start: 2, End: 4, Text: "cd"})
	if !ok {
		t.Fatal("backspace-adjacent deletes should combine")
	}
	del = combined.(Delete)
	if del.Start != 2 || del.End != 6 || del.Text != "cdef" {
		t.Errorf("combined = %+v", del)
	}

	// Disjoint.
	if _, ok := op1.Combine(Delete{Start: 10, End: 12, Text: "xy"}); ok {
		t.Error("disjoint deletes must not combine")
	}
}

func TestReplaceCombine(t *testing.T) {
	op1 := Replace{Start: 0, End: 2, OldText: "ab", NewText: "AB"}

	combined, ok := op1.Combine(Replace{Start: 2, End: 4, OldText: "cd", NewText: "CD"})
	if !ok {
		t.Fatal("adjacent replaces should combine")
	}
	rep := combined.(Replace)
	if rep.Start != 0 || rep.OldText != "abcd" || rep.NewText != "ABCD" {
		t.Errorf("combined = %+v", rep)
	}

	if _, ok := op1.Combine(Replace{Start: 5, End: 6, OldText: "f", NewText: "F"}); ok {
		t.Error("gapped replaces must not combine")
	}
}

func TestCrossKindCombineRejected(t *testing.T) {
	ins := Insert{Position: 0, Text: "a"}
	del := Delete{Start: 0, End: 1, Text: "a"}
	rep := Replace{Start: 0, End: 1, OldText: "a", NewText: "b"}
	comp := Compound{Ops: []Operation{ins}}

	pairs := []struct {
		name string
		a, b Operation
	}{
		{"insert/delete", ins, del},
		{"delete/insert", del, ins},
		{"insert/replace", ins, rep},
		{"replace/delete", rep, del},
		{"compound/insert", comp, ins},
		{"insert/compound", ins, comp},
	}
	for _, p := range pairs {
		if _, ok := p.a.Combine(p.b); ok {
			t.Errorf("%s must not combine", p.name)
		}
	}
}

func TestDelta(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want ByteOffset
	}{
		{"insert", Insert{Position: 0, Text: "hello"}, 5},
		{"delete", Delete{Start: 0, End: 5, Text: "hello"}, -5},
		{"replace grow", Replace{Start: 0, End: 3, OldText: "abc", NewText: "hello"}, 2},
		{"replace shrink", Replace{Start: 0, End: 5, OldText: "hello", NewText: "hi"}, -3},
		{"compound", Compound{Ops: []Operation{
			Insert{Position: 0, Text: "hello"},
			Delete{Start: 0, End: 2, Text: "he"},
		}}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.Delta(); got != tt.want {
				t.Errorf("Delta() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCombineHelper(t *testing.T) {
	single := Combine([]Operation{Insert{Position: 0, Text: "a"}})
	if _, ok := single.(Insert); !ok {
		t.Error("singleton list should not be wrapped in a compound")
	}

	multi := Combine([]Operation{
		Insert{Position: 0, Text: "a"},
		Insert{Position: 1, Text: "b"},
	})
	comp, ok := multi.(Compound)
	if !ok || len(comp.Ops) != 2 {
		t.Errorf("multi = %+v", multi)
	}
}
