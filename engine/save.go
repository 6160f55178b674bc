package engine

import "github.com/google/uuid"

// CopyStateForBackgroundSave begins a background-save window: the
// pre-call globals and visit counts are frozen into a copy identified by
// the returned token, and the live engine continues on its own copy with
// a freshly opened patch overlay, so every write made while the save is
// in flight lands in the overlay instead of in the frozen copy. The
// frozen copy stays inside the engine: only the token is returned, and
// no method hands the copy out.
func (e *Engine) CopyStateForBackgroundSave() (string, error) {
	if e.pendingSave != nil {
		return "", newError(ErrSaveInProgress, "background save %q is already in progress", e.pendingSave.token)
	}
	token := uuid.NewString()
	frozenVars := e.Vars
	frozenCounts := e.Counts

	e.Vars = frozenVars.Copy()
	e.Counts = frozenCounts.Copy()
	e.Vars.StartPatch()
	e.Counts.StartPatch()

	e.pendingSave = &pendingSave{
		token:      token,
		savedState: &savedState{globals: frozenVars, counts: frozenCounts},
	}
	return token, nil
}

// BackgroundSaveComplete merges the patch accumulated since
// CopyStateForBackgroundSave
// back into the base, unless a newline-lookahead snapshot is currently
// held, in which case the merge is deferred until that snapshot resolves
// (finishSave, called from restoreSnapshot/discardSnapshot).
func (e *Engine) BackgroundSaveComplete(token string) error {
	if e.pendingSave == nil || e.pendingSave.token != token {
		return newError(ErrSaveInProgress, "no background save in progress with token %q", token)
	}
	if e.snapshot != nil {
		e.pendingSave.deferredMerge = true
		return nil
	}
	e.mergeSave()
	return nil
}

func (e *Engine) mergeSave() {
	e.Vars.MergePatch()
	e.Counts.MergePatch()
	e.pendingSave = nil
}

// finishSave applies a merge that BackgroundSaveComplete deferred while
// a newline snapshot was held, whether that snapshot ended up restored
// or discarded.
func (e *Engine) finishSave(_ bool) {
	if e.pendingSave != nil && e.pendingSave.deferredMerge {
		e.mergeSave()
	}
}
