package engine

import (
	"strings"

	"loom/choice"
	"loom/outstream"
)

// maybeStartLookahead: the first time the active flow's output stream
// ends in a resolved newline while continuation is still possible,
// freeze a snapshot of every mutable field of state so a later step can
// either confirm the newline (restore) or discover it was only
// provisional (discard and keep going).
func (e *Engine) maybeStartLookahead(f *flowAlias) {
	if e.snapshot != nil || e.evalFunctionDepth > 0 {
		return
	}
	assembled := outstream.Assemble(f.Output)
	if !strings.HasSuffix(assembled.Text, "\n") {
		return
	}
	if f.Pointer.IsNull() {
		return // nothing left to look ahead through
	}
	run := e.ensureRun()
	e.snapshot = &engineSnapshot{
		flowName:          f.Name,
		callstack:         f.Callstack.Copy(),
		output:            f.Output.Copy(),
		choices:           append([]choice.Choice(nil), f.Choices...),
		pointer:           f.Pointer,
		vars:              e.Vars.Copy(),
		counts:            e.Counts.Copy(),
		evalStack:         run.eval.stack.Copy(),
		inExpression:      run.eval.inExpression,
		stringStarts:      append([]int(nil), run.eval.stringStarts...),
		turn:              e.turn,
		assembledText:     assembled.Text,
		assembledTagCount: len(assembled.Tags),
	}
	e.sawLookaheadUnsafe = false
}

// lookaheadOutcome classifies how the live output has diverged from the
// held snapshot.
type lookaheadOutcome int

const (
	lookaheadNoChange lookaheadOutcome = iota
	lookaheadExtendedBeyondNewline
	lookaheadNewlineRemoved
)

func classifyLookahead(before string, beforeTags int, now string, nowTags int) lookaheadOutcome {
	if !strings.HasPrefix(now, before) {
		// The snapshot's trailing newline is no longer present at the
		// same position: glue consumed it, collapsing or rewriting the
		// assembled text in the middle.
		return lookaheadNewlineRemoved
	}
	if nowTags > beforeTags {
		return lookaheadExtendedBeyondNewline
	}
	suffix := now[len(before):]
	if strings.TrimSpace(suffix) != "" {
		return lookaheadExtendedBeyondNewline
	}
	return lookaheadNoChange
}

// maybeResolveLookahead is called after every step while a snapshot is
// held: it decides whether to keep stepping, restore the snapshot (the
// original newline stood), or discard it (glue removed the newline, so
// the extended content is kept).
func (e *Engine) maybeResolveLookahead(f *flowAlias) {
	if e.snapshot == nil {
		return
	}
	if e.sawLookaheadUnsafe {
		e.restoreSnapshot(f)
		return
	}
	assembled := outstream.Assemble(f.Output)
	switch classifyLookahead(e.snapshot.assembledText, e.snapshot.assembledTagCount, assembled.Text, len(assembled.Tags)) {
	case lookaheadExtendedBeyondNewline:
		e.restoreSnapshot(f)
	case lookaheadNewlineRemoved:
		e.discardSnapshot()
	case lookaheadNoChange:
		// keep stepping
	}
}

// restoreSnapshot reverts every mutable field of state to the values
// held at snapshot time and clears the snapshot.
func (e *Engine) restoreSnapshot(f *flowAlias) {
	snap := e.snapshot
	f.Callstack = snap.callstack
	f.Output = snap.output
	f.Choices = snap.choices
	f.Pointer = snap.pointer
	e.Vars = snap.vars
	e.Counts = snap.counts
	run := e.ensureRun()
	run.eval.stack = snap.evalStack
	run.eval.inExpression = snap.inExpression
	run.eval.stringStarts = snap.stringStarts
	e.turn = snap.turn
	e.finishSave(true)
	e.snapshot = nil
	e.sawLookaheadUnsafe = false
}

// discardSnapshot drops the held snapshot without reverting anything: the
// extended content (glue having removed the provisional newline) becomes
// the accepted live state.
func (e *Engine) discardSnapshot() {
	e.finishSave(false)
	e.snapshot = nil
	e.sawLookaheadUnsafe = false
}
