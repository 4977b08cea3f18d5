package textpos

import "testing"

func TestIndexLine(t *testing.T) {
	idx := New("a\nbb\n\nccc")
	cases := map[int]int{-3: 1, 0: 1, 1: 1, 2: 2, 4: 2, 5: 3, 6: 4, 8: 4, 40: 4}
	for offset, want := range cases {
		if got := idx.Line(offset); got != want {
			t.Fatalf("Line(%d) = %d, want %d", offset, got, want)
		}
	}
	if idx.Lines() != 4 {
		t.Fatalf("expected 4 lines, got %d", idx.Lines())
	}
}

func TestIndexBytes(t *testing.T) {
	idx := New([]byte("x\ny\n"))
	if idx.Lines() != 3 {
		t.Fatalf("expected trailing newline to open a third line, got %d", idx.Lines())
	}
	if idx.Line(2) != 2 {
		t.Fatalf("expected offset 2 on line 2, got %d", idx.Line(2))
	}
}
