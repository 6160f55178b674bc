package evalstack

import (
	"testing"

	"loom/content"
)

func TestPushPopPeek(t *testing.T) {
	s := New()
	if _, ok := s.Pop(); ok {
		t.Fatal("pop on empty stack must fail")
	}
	s.Push(content.NewInt(1))
	s.Push(content.NewInt(2))
	if v, _ := s.Peek(); v.String() != "2" {
		t.Fatalf("peek = %v, want 2", v)
	}
	if s.Height() != 2 {
		t.Fatalf("height = %d, want 2", s.Height())
	}
	if v, _ := s.Pop(); v.String() != "2" {
		t.Fatalf("pop = %v, want 2", v)
	}
}

func TestPopNReturnsOldestFirst(t *testing.T) {
	s := New()
	s.Push(content.NewInt(1))
	s.Push(content.NewInt(2))
	s.Push(content.NewInt(3))

	args, ok := s.PopN(2)
	if !ok || len(args) != 2 {
		t.Fatalf("PopN(2) = %v ok=%v", args, ok)
	}
	if args[0].String() != "2" || args[1].String() != "3" {
		t.Fatalf("expected operand order [2 3], got %v", args)
	}
	if s.Height() != 1 {
		t.Fatalf("height after PopN = %d, want 1", s.Height())
	}

	if _, ok := s.PopN(5); ok {
		t.Fatal("PopN past the stack height must fail")
	}
}

func TestTruncateAndCopy(t *testing.T) {
	s := New()
	s.Push(content.NewInt(1))
	s.Push(content.NewInt(2))
	clone := s.Copy()
	clone.Push(content.NewInt(3))

	s.Truncate(1)
	if s.Height() != 1 {
		t.Fatalf("height after truncate = %d, want 1", s.Height())
	}
	if clone.Height() != 3 {
		t.Fatalf("copy must be independent, height = %d", clone.Height())
	}
}
