package callstack

import (
	"testing"

	"loom/content"
	"loom/path"
)

func TestPushPopRoundTrips(t *testing.T) {
	cs := NewCallStack(path.Pointer{Container: 0, Index: 0})
	if cs.Depth() != 1 {
		t.Fatalf("expected fresh callstack depth 1, got %d", cs.Depth())
	}
	if cs.CanPop() {
		t.Fatal("root frame alone should not be poppable")
	}

	ret := path.Pointer{Container: 0, Index: 5}
	cs.Push(FrameTunnel, ret, 0, 0)
	if cs.Depth() != 2 {
		t.Fatalf("expected depth 2 after push, got %d", cs.Depth())
	}
	if !cs.CanPopType(FrameTunnel) {
		t.Fatal("expected top frame to be a tunnel frame")
	}

	popped, ok := cs.Pop()
	if !ok {
		t.Fatal("expected pop to succeed")
	}
	if !popped.ReturnPointer.Equal(ret) {
		t.Fatalf("expected popped return pointer %v, got %v", ret, popped.ReturnPointer)
	}
	if cs.Depth() != 1 {
		t.Fatalf("expected depth 1 after pop, got %d", cs.Depth())
	}
}

func TestTempScopeIsPerFrame(t *testing.T) {
	cs := NewCallStack(path.Pointer{Container: 0, Index: 0})
	cs.SetTemp("x", content.NewInt(1))

	cs.Push(FrameFunction, path.Null, 0, 0)
	if _, ok := cs.ResolveTemp("x"); ok {
		t.Fatal("expected new frame to have its own empty temp scope")
	}
	cs.SetTemp("x", content.NewInt(2))
	if v, ok := cs.ResolveTemp("x"); !ok || v.String() != "2" {
		t.Fatalf("expected x=2 in new frame, got %v ok=%v", v, ok)
	}

	cs.Pop()
	if v, ok := cs.ResolveTemp("x"); !ok || v.String() != "1" {
		t.Fatalf("expected x=1 restored in parent frame, got %v ok=%v", v, ok)
	}
}

func TestForkCreatesIndependentTopThread(t *testing.T) {
	cs := NewCallStack(path.Pointer{Container: 0, Index: 0})
	cs.SetTemp("x", content.NewInt(1))

	cs.Fork()
	if len(cs.Threads) != 2 {
		t.Fatalf("expected 2 threads after fork, got %d", len(cs.Threads))
	}
	cs.SetTemp("x", content.NewInt(2))
	if v, _ := cs.ResolveTemp("x"); v.String() != "2" {
		t.Fatalf("expected forked thread x=2, got %v", v)
	}

	popped, ok := cs.PopThread()
	if !ok {
		t.Fatal("expected PopThread to succeed with 2 threads")
	}
	if v, _ := popped.Frames[0].Temps["x"]; v.String() != "2" {
		t.Fatalf("expected popped thread to retain its own x=2, got %v", v)
	}
	if v, _ := cs.ResolveTemp("x"); v.String() != "1" {
		t.Fatalf("expected parent thread unaffected, got %v", v)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	cs := NewCallStack(path.Pointer{Container: 0, Index: 0})
	cs.SetTemp("x", content.NewInt(1))
	clone := cs.Copy()
	clone.SetTemp("x", content.NewInt(99))

	if v, _ := cs.ResolveTemp("x"); v.String() != "1" {
		t.Fatalf("expected original unaffected by clone mutation, got %v", v)
	}
}

func TestThreadByIndexAndSetCurrentThread(t *testing.T) {
	cs := NewCallStack(path.Pointer{Container: 0, Index: 0})
	cs.Fork()
	cs.Fork()

	th, ok := cs.ThreadByIndex(1)
	if !ok {
		t.Fatal("expected to find thread index 1")
	}
	cs.SetCurrentThread(*th)
	if cs.CurrentThread().Index != 1 {
		t.Fatalf("expected active thread index 1, got %d", cs.CurrentThread().Index)
	}
}
