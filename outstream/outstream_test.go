package outstream

import "testing"

func TestAssembleConcatenatesPlainText(t *testing.T) {
	s := New()
	s.PushText("Hello, ")
	s.PushText("world!")
	s.PushText("\n")

	got := Assemble(s)
	if got.Text != "Hello, world!\n" {
		t.Fatalf("unexpected text %q", got.Text)
	}
}

func TestAssembleGlueTrimsWhitespaceOnBothSides(t *testing.T) {
	s := New()
	s.PushText("Hello ")
	s.PushGlue()
	s.PushText(" world")

	got := Assemble(s)
	if got.Text != "Helloworld" {
		t.Fatalf("expected glue to consume both sides of whitespace, got %q", got.Text)
	}
}

func TestAssembleCollapsesConsecutiveNewlines(t *testing.T) {
	s := New()
	s.PushText("one\n\n\ntwo\n")

	got := Assemble(s)
	if got.Text != "one\ntwo\n" {
		t.Fatalf("expected collapsed newlines, got %q", got.Text)
	}
}

func TestAssembleTrimsLeadingWhitespaceAfterNewline(t *testing.T) {
	s := New()
	s.PushText("one\n")
	s.PushText("   two")

	got := Assemble(s)
	if got.Text != "one\ntwo" {
		t.Fatalf("expected leading whitespace trimmed, got %q", got.Text)
	}
}

func TestAssembleCollectsTagsSeparateFromText(t *testing.T) {
	s := New()
	s.PushText("Hello ")
	s.PushTagBegin()
	s.PushText("mood: happy")
	s.PushTagEnd()
	s.PushText("world")

	got := Assemble(s)
	if got.Text != "Hello world" {
		t.Fatalf("expected tag content removed from text, got %q", got.Text)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "mood: happy" {
		t.Fatalf("unexpected tags %v", got.Tags)
	}
}

func TestTruncateDropsTrailingEntries(t *testing.T) {
	s := New()
	s.PushText("a")
	mark := s.Len()
	s.PushText("b")
	s.PushText("c")
	s.Truncate(mark)
	if s.Len() != mark {
		t.Fatalf("expected truncation to %d entries, got %d", mark, s.Len())
	}
}

func TestCopyIsIndependent(t *testing.T) {
	s := New()
	s.PushText("a")
	clone := s.Copy()
	clone.PushText("b")
	if s.Len() != 1 {
		t.Fatalf("expected original unaffected, got %d entries", s.Len())
	}
	if clone.Len() != 2 {
		t.Fatalf("expected clone to have 2 entries, got %d", clone.Len())
	}
}
