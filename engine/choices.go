package engine

// ChooseChoice selects one of the choices generated by the last
// continue, restores the thread it was generated on, points execution
// at its target, and clears the generated choice list for the flow.
func (e *Engine) ChooseChoice(index int) error {
	if e.asyncInProgress {
		return newError(ErrAsyncOperationInProgress, "cannot choose while a continue-async call is incomplete")
	}
	f := e.Flows.Current()
	if index < 0 || index >= len(f.Choices) {
		return newError(ErrOutOfRangeChoice, "choice index %d out of range (have %d)", index, len(f.Choices))
	}
	c := f.Choices[index]

	// Restore the thread the choice was generated on. The stored copy is
	// used rather than a live lookup: the generating thread may have been
	// popped by a `done` since.
	f.Callstack.SetCurrentThread(c.Thread.Copy())

	if e.Callbacks.OnMakeChoice != nil {
		e.Callbacks.OnMakeChoice(c)
	}

	resolved, ok := e.Tree.Resolve(c.Target, e.Tree.Root)
	if !ok {
		return newError(ErrInvalidDivertTarget, "choice target %q did not resolve", c.Target.String())
	}
	if c.OnceOnly {
		e.Counts.IncrementVisits("choice:" + c.OriginalChoicePath.String())
	}

	target := e.Tree.EntryPointer(resolved)
	e.checkDivertContainerChange(f.Pointer, target)
	f.Pointer = target
	f.Choices = nil
	e.turn++
	return nil
}

// tryFollowDefaultInvisibleChoice: when continuation stops with exactly
// one choice and it is marked invisible-default, the engine chooses it
// itself rather than surfacing it to the caller. Choosing re-opens
// continuation, so the caller's own continue loop picks up the followed
// branch on its next iteration.
func (e *Engine) tryFollowDefaultInvisibleChoice() {
	f := e.Flows.Current()
	if e.CanContinue() {
		return
	}
	if len(f.Choices) != 1 || !f.Choices[0].IsInvisibleDefault {
		return
	}
	_ = e.ChooseChoice(0)
}
