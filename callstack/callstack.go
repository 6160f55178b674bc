// Package callstack implements the Callstack component: nested frames of
// three kinds (tunnel, function, none), each with its own temporary-
// variable scope, grouped into threads a CallStack can fork and pop.
package callstack

import (
	"loom/content"
	"loom/path"
)

// FrameType discriminates why a frame was pushed, which governs how
// control returns from it.
type FrameType int

const (
	// FrameNone is the root frame of a thread: stepping off the end of
	// its content ends the thread rather than returning anywhere.
	FrameNone FrameType = iota
	// FrameTunnel was pushed by a divert expecting an explicit `->->`.
	FrameTunnel
	// FrameFunction was pushed by a function call; its return value is
	// whatever sits on top of the evaluation stack when it returns.
	FrameFunction
)

// Frame is one entry in a Thread's frame stack.
type Frame struct {
	Type FrameType

	// ReturnPointer is where execution resumes after this frame pops.
	ReturnPointer path.Pointer

	// Temps holds this frame's temporary-variable scope (both `temp`
	// declarations and function parameters).
	Temps map[string]content.Value

	// EvalStackHeightOnEntry records the evaluation stack's height when
	// this frame was pushed, so a function return can truncate the stack
	// back to that height before pushing its return value.
	EvalStackHeightOnEntry int

	// FunctionStartInOutputStream is the output stream length when a
	// Function frame was entered, used to capture only text produced
	// within the call when the function is used as a string expression.
	FunctionStartInOutputStream int

	// InExpressionEvaluation marks a frame pushed while evaluating an
	// expression (e.g. a function call inside `{f(x)}`), distinguishing
	// it from a frame pushed by a top-level divert.
	InExpressionEvaluation bool
}

func newFrame(t FrameType, ret path.Pointer, evalHeight, outputLen int) Frame {
	return Frame{
		Type:                         t,
		ReturnPointer:                ret,
		Temps:                        map[string]content.Value{},
		EvalStackHeightOnEntry:       evalHeight,
		FunctionStartInOutputStream:  outputLen,
	}
}

// Thread is an ordered sequence of frames plus the index ink assigns it
// (used to associate choices with the thread that produced them).
type Thread struct {
	Frames []Frame
	Index  int

	// PreviousPointer is where this thread resumes when a thread forked
	// above it reaches `done` and pops: the content position just past
	// the divert the fork took. Null for a thread that never forked.
	PreviousPointer path.Pointer
}

func (t *Thread) top() *Frame {
	if len(t.Frames) == 0 {
		return nil
	}
	return &t.Frames[len(t.Frames)-1]
}

// Copy returns a deep-enough copy of the thread: frames are copied by
// value and each frame's Temps map is cloned so mutating the copy never
// aliases the original (required for CallStack.Fork and for background
// save's copy-on-write semantics).
func (t Thread) Copy() Thread {
	out := Thread{Index: t.Index, PreviousPointer: t.PreviousPointer}
	out.Frames = make([]Frame, len(t.Frames))
	for i, f := range t.Frames {
		nf := f
		nf.Temps = make(map[string]content.Value, len(f.Temps))
		for k, v := range f.Temps {
			nf.Temps[k] = v
		}
		out.Frames[i] = nf
	}
	return out
}

// CallStack holds a stack of threads; the active thread is the last one.
// The invariant that only one thread may remain at a terminal step is
// enforced by the engine, not here.
type CallStack struct {
	Threads       []Thread
	nextThreadIdx int
}

// NewCallStack returns a callstack with a single thread containing one
// FrameNone frame rooted at start.
func NewCallStack(start path.Pointer) *CallStack {
	cs := &CallStack{nextThreadIdx: 1}
	root := Thread{Index: 0, PreviousPointer: path.Null, Frames: []Frame{newFrame(FrameNone, path.Null, 0, 0)}}
	cs.Threads = append(cs.Threads, root)
	cs.top().ReturnPointer = start
	return cs
}

func (cs *CallStack) activeThread() *Thread {
	return &cs.Threads[len(cs.Threads)-1]
}

// top returns the current frame: the top frame of the active thread.
func (cs *CallStack) top() *Frame {
	return cs.activeThread().top()
}

// CurrentFrame returns the current frame: the top frame of the active
// thread.
func (cs *CallStack) CurrentFrame() *Frame { return cs.top() }

// CurrentThread returns the active thread.
func (cs *CallStack) CurrentThread() *Thread { return cs.activeThread() }

// Depth returns the number of frames in the active thread.
func (cs *CallStack) Depth() int { return len(cs.activeThread().Frames) }

// CanPop reports whether the active thread has more than its root frame,
// i.e. popping would not destroy the thread.
func (cs *CallStack) CanPop() bool { return len(cs.activeThread().Frames) > 1 }

// CanPopType reports whether the current frame matches t, used by the
// engine to validate a `->->` return or a function-call return against
// what was actually pushed (a mismatch is a runtime error).
func (cs *CallStack) CanPopType(t FrameType) bool {
	f := cs.top()
	return f != nil && f.Type == t
}

// Push pushes a new frame of the given type onto the active thread.
func (cs *CallStack) Push(t FrameType, ret path.Pointer, evalStackHeight, outputLen int) {
	th := cs.activeThread()
	th.Frames = append(th.Frames, newFrame(t, ret, evalStackHeight, outputLen))
}

// Pop removes the current frame and returns it, or ok=false if the
// active thread has only its root frame left.
func (cs *CallStack) Pop() (Frame, bool) {
	th := cs.activeThread()
	if len(th.Frames) <= 1 {
		return Frame{}, false
	}
	f := th.Frames[len(th.Frames)-1]
	th.Frames = th.Frames[:len(th.Frames)-1]
	return f, true
}

// PopThread removes the active thread entirely (used when a forked
// thread reaches `done`) and resumes on the thread below it. It is an
// error to call this with only one thread remaining.
func (cs *CallStack) PopThread() (Thread, bool) {
	if len(cs.Threads) <= 1 {
		return Thread{}, false
	}
	t := cs.Threads[len(cs.Threads)-1]
	cs.Threads = cs.Threads[:len(cs.Threads)-1]
	return t, true
}

// Fork implements `startThread`: the active thread is duplicated, both
// copies sharing the same frame history up to this point but now
// advancing independently. The new thread becomes active.
func (cs *CallStack) Fork() *Thread {
	current := cs.activeThread()
	forked := current.Copy()
	forked.Index = cs.nextThreadIdx
	forked.PreviousPointer = path.Null
	cs.nextThreadIdx++
	cs.Threads = append(cs.Threads, forked)
	return cs.activeThread()
}

// ParentThread returns the thread directly beneath the active one, or
// nil when only one thread exists. The engine records the parent's
// resume position here when `startThread` forks.
func (cs *CallStack) ParentThread() *Thread {
	if len(cs.Threads) < 2 {
		return nil
	}
	return &cs.Threads[len(cs.Threads)-2]
}

// ThreadByIndex finds a live thread by its Index. Choice selection does
// not use it: a choice restores the thread copy it carries.
func (cs *CallStack) ThreadByIndex(idx int) (*Thread, bool) {
	for i := range cs.Threads {
		if cs.Threads[i].Index == idx {
			return &cs.Threads[i], true
		}
	}
	return nil, false
}

// SetCurrentThread replaces the active thread wholesale (used when a
// choice restores its originating thread). Only the active thread is
// replaced; the threads beneath it are kept.
func (cs *CallStack) SetCurrentThread(t Thread) {
	cs.Threads = cs.Threads[:len(cs.Threads)-1]
	cs.Threads = append(cs.Threads, t)
}

// Copy returns a deep copy of the whole callstack, used for newline-
// lookahead snapshotting and background-save patch isolation.
func (cs *CallStack) Copy() *CallStack {
	out := &CallStack{nextThreadIdx: cs.nextThreadIdx}
	out.Threads = make([]Thread, len(cs.Threads))
	for i, t := range cs.Threads {
		out.Threads[i] = t.Copy()
	}
	return out
}

// ResolveTemp looks up name in the current frame's temporary scope.
func (cs *CallStack) ResolveTemp(name string) (content.Value, bool) {
	f := cs.top()
	if f == nil {
		return nil, false
	}
	v, ok := f.Temps[name]
	return v, ok
}

// SetTemp writes name into the current frame's temporary scope.
func (cs *CallStack) SetTemp(name string, v content.Value) {
	f := cs.top()
	if f == nil {
		return
	}
	f.Temps[name] = v
}
