// Package engine implements the story engine: the top-level step loop,
// newline lookahead and snapshot/restore, error aggregation, and
// external-call dispatch that drives a loaded content.Tree from one line
// of output to the next.
package engine

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"loom/callstack"
	"loom/choice"
	"loom/content"
	"loom/evalstack"
	"loom/externals"
	"loom/flow"
	"loom/internal/trace"
	"loom/outstream"
	"loom/path"
	"loom/vars"
	"loom/visits"
)

// OnError is called once per accumulated runtime issue when a continue
// completes.
type OnError func(message string, severity Severity)

// Callbacks holds the optional session-event subscribers.
// Every field is nil-safe: an unset callback is simply not invoked.
type Callbacks struct {
	OnError                  OnError
	OnDidContinue             func()
	OnMakeChoice              func(c choice.Choice)
	OnEvaluateFunction        func(name string, args []content.Value)
	OnCompleteEvaluateFunction func(name string, args []content.Value, text string, ret content.Value)
	OnChoosePathString        func(p path.Path, args []content.Value)
}

// pendingSave tracks the one background save allowed in flight at a
// time; a second CopyStateForBackgroundSave fails until it completes.
type pendingSave struct {
	token      string
	savedState *savedState

	// deferredMerge is set when BackgroundSaveComplete runs while a
	// newline-lookahead snapshot is held: the merge into base waits
	// until the snapshot resolves one way or the other.
	deferredMerge bool
}

// savedState is the frozen, independently owned copy of globals and
// visit counts taken by CopyStateForBackgroundSave. It is held only
// inside the engine; the caller gets the token, not this copy, and hands
// the token back to BackgroundSaveComplete.
type savedState struct {
	globals     *vars.State
	counts      *visits.Counts
}

// Engine is the story engine: one content.Tree loaded once, plus the
// mutable runtime state (flows, variables, visit counts) that advances
// as the caller drives Continue/ChooseChoice calls.
type Engine struct {
	Tree *content.Tree

	Flows *flow.Registry
	Vars  *vars.State
	Counts *visits.Counts

	Externals *externals.Registry

	Callbacks Callbacks
	Logger    *logrus.Logger

	// Tracer is an optional step tracer (nil-safe); see internal/trace.
	// It logs diverts, control commands, generated choices and external
	// calls, filtered by glob patterns.
	Tracer *trace.Tracer

	seed int64
	turn int

	// run holds the expression-evaluation scratch (evaluation stack,
	// begin/endString bookkeeping). There is one per Engine, shared by
	// every flow: ResetState and ResetCallstack drop it, SwitchFlow
	// keeps it.
	run *runState

	// lastText/lastTags are the text and tag list assembled by the most
	// recent continue call, exposed via CurrentText/CurrentTags.
	lastText string
	lastTags []string

	// snapshot is the newline-lookahead state freeze, nil when no
	// lookahead is in progress.
	snapshot *engineSnapshot

	// sawLookaheadUnsafe is set when a lookahead-unsafe external is
	// reached while a snapshot is held, forcing the restore path on the
	// next lookahead resolution so the call never runs speculatively.
	sawLookaheadUnsafe bool

	pendingSave *pendingSave

	asyncInProgress bool
	asyncDeadline   time.Time

	// recursionDepth counts nested ContinueMaximally/ContinueOneLine
	// calls made from within an external function's own body.
	// Variable-change notifications only batch at depth 0, the
	// outermost call.
	recursionDepth int

	// evalFunctionDepth is nonzero while EvaluateFunction drives the
	// step loop. Newline lookahead is suppressed there: the whole
	// function runs to completion and its text is captured wholesale,
	// so there is no provisional line ending to speculate past.
	evalFunctionDepth int

	currentIssues *multierror.Error
}

// engineSnapshot freezes every mutable field of state the newline-
// lookahead mechanism must be able to revert exactly.
type engineSnapshot struct {
	flowName  string
	callstack *callstack.CallStack
	output    *outstream.Stream
	choices   []choice.Choice
	pointer   path.Pointer

	vars   *vars.State
	counts *visits.Counts

	evalStack    *evalstack.Stack
	inExpression bool
	stringStarts []int

	turn int

	// assembledText/assembledTagCount record the current-text/current-
	// tags state at the moment the snapshot was taken, so
	// maybeResolveLookahead can classify subsequent steps as no-change,
	// extended-beyond-newline or newline-removed without
	// re-deriving the "before" state from the now-diverged live output.
	assembledText     string
	assembledTagCount int
}

// New constructs an Engine over a loaded tree, rooted at the tree's
// root container itself (index -1, not yet descended to its first child).
func New(tree *content.Tree, globals map[string]content.Value) *Engine {
	start := path.Pointer{Container: tree.Root, Index: -1}
	e := &Engine{
		Tree:      tree,
		Flows:     flow.NewRegistry(start),
		Vars:      vars.New(globals),
		Counts:    visits.New(),
		Externals: externals.NewRegistry(),
		Logger:    discardLogger(),
		seed:      1,
	}
	return e
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(discardWriter{})
	return l
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// CurrentFlowName returns the active flow's name.
func (e *Engine) CurrentFlowName() string { return e.Flows.CurrentName() }

// AliveFlowNames returns every known flow name.
func (e *Engine) AliveFlowNames() []string { return e.Flows.Names() }

// VariablesState exposes the underlying variables state.
func (e *Engine) VariablesState() *vars.State { return e.Vars }

// HasError reports whether the last continue accumulated any errors.
func (e *Engine) HasError() bool {
	return e.currentIssues != nil && len(severityFiltered(e.currentIssues, SeverityError)) > 0
}

// HasWarning reports whether the last continue accumulated any warnings.
func (e *Engine) HasWarning() bool {
	return e.currentIssues != nil && len(severityFiltered(e.currentIssues, SeverityWarning)) > 0
}

func severityFiltered(me *multierror.Error, sev Severity) []error {
	var out []error
	for _, err := range me.Errors {
		if ri, ok := err.(RuntimeIssue); ok && ri.Severity == sev {
			out = append(out, err)
		}
	}
	return out
}

// CurrentErrors returns accumulated runtime errors from the last continue.
func (e *Engine) CurrentErrors() []error {
	if e.currentIssues == nil {
		return nil
	}
	return severityFiltered(e.currentIssues, SeverityError)
}

// CurrentWarnings returns accumulated runtime warnings from the last continue.
func (e *Engine) CurrentWarnings() []error {
	if e.currentIssues == nil {
		return nil
	}
	return severityFiltered(e.currentIssues, SeverityWarning)
}

func (e *Engine) addIssue(sev Severity, code Code, format string, args ...interface{}) {
	issue := RuntimeIssue{Severity: sev, Code: code, Message: fmt.Sprintf(format, args...)}
	e.currentIssues = multierror.Append(e.currentIssues, issue)
}

// dispatchIssues hands accumulated issues to OnError in order once a
// continue completes; with no subscriber, the first issue is promoted
// to a fatal error.
func (e *Engine) dispatchIssues() error {
	if e.currentIssues == nil {
		return nil
	}
	errs := e.currentIssues.Errors
	e.currentIssues = nil
	if len(errs) == 0 {
		return nil
	}
	if e.Callbacks.OnError == nil {
		first := errs[0].(RuntimeIssue)
		e.Logger.WithField("code", first.Code).Warn(first.Message)
		return &first
	}
	for _, err := range errs {
		ri := err.(RuntimeIssue)
		e.Callbacks.OnError(ri.Message, ri.Severity)
	}
	return nil
}

// BindExternal registers an external function implementation under name.
func (e *Engine) BindExternal(name string, fn externals.Func, lookaheadSafe bool) {
	e.Externals.Bind(name, fn, lookaheadSafe)
}

// UnbindExternal removes name's external binding.
func (e *Engine) UnbindExternal(name string) { e.Externals.Unbind(name) }

// SwitchFlow swaps the active (callstack, output, choices) triple for
// the named flow, creating it if absent. Illegal while a background
// save is open.
func (e *Engine) SwitchFlow(name string) error {
	if e.pendingSave != nil {
		return newError(ErrCannotSwitchFlowWhileSaving, "cannot switch to %q while a background save is in progress", name)
	}
	e.Flows.Switch(name)
	return nil
}

// RemoveFlow deletes a named flow. Illegal on the default flow or the
// active flow.
func (e *Engine) RemoveFlow(name string) error {
	if err := e.Flows.Remove(name); err != nil {
		if _, known := e.Flows.Get(name); !known {
			return newError(ErrUnknownFlow, "%s", err.Error())
		}
		return newError(ErrCannotRemoveDefaultFlow, "%s", err.Error())
	}
	return nil
}

// ResetState restores globals to their default snapshot, zeroes
// visit/turn counts, and resets the pointer to the initial root
// position.
func (e *Engine) ResetState() {
	e.Vars.Reset()
	e.Counts = visits.New()
	e.turn = 0
	e.run = nil
	e.snapshot = nil
	e.sawLookaheadUnsafe = false
	e.currentIssues = nil
	e.lastText = ""
	e.lastTags = nil
	start := path.Pointer{Container: e.Tree.Root, Index: -1}
	e.Flows = flow.NewRegistry(start)
}

// ResetCallstack discards every frame and thread beyond the current
// flow's root, without touching variables or counts.
func (e *Engine) ResetCallstack() {
	start := path.Pointer{Container: e.Tree.Root, Index: -1}
	e.Flows.Current().Callstack = callstack.NewCallStack(start)
	e.Flows.Current().Choices = nil
	e.run = nil
}

