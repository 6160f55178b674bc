package engine

import "time"

// ContinueAsync steps until the current line completes, continuation stops, or the
// budget elapses, whichever comes first. When the budget elapses with
// the line still incomplete, AsyncContinueComplete reports false and a
// later ContinueAsync call resumes stepping from where it left off,
// with a fresh budget.
func (e *Engine) ContinueAsync(timeBudgetMs int) error {
	e.asyncInProgress = true
	e.asyncDeadline = time.Now().Add(time.Duration(timeBudgetMs) * time.Millisecond)

	for {
		if time.Now().After(e.asyncDeadline) {
			return nil // still in progress; caller polls AsyncContinueComplete
		}
		more, err := e.step()
		if err != nil {
			e.asyncInProgress = false
			return err
		}
		if e.lineComplete() || !more {
			break
		}
	}

	e.asyncInProgress = false
	e.flushLine()
	if derr := e.dispatchIssues(); derr != nil {
		return derr
	}
	if e.Callbacks.OnDidContinue != nil {
		e.Callbacks.OnDidContinue()
	}
	e.tryFollowDefaultInvisibleChoice()
	return nil
}

// AsyncContinueComplete reports whether the most recent ContinueAsync
// call has finished.
func (e *Engine) AsyncContinueComplete() bool {
	return !e.asyncInProgress
}
