package engine

import (
	"fmt"
	"math/rand"
	"strings"

	"loom/callstack"
	"loom/choice"
	"loom/content"
	"loom/evalstack"
	"loom/flow"
	"loom/listval"
	"loom/outstream"
	"loom/path"
)

func pointerString(p path.Pointer) string {
	return fmt.Sprintf("%d:%d", p.Container, p.Index)
}

// evalState is the expression-evaluation scratch the engine
// needs beyond what callstack/evalstack already own: whether we are
// inside evalStart/evalEnd, and the output-stream index beginString
// opened at (so endString can collect exactly the entries in between).
type evalState struct {
	stack        *evalstack.Stack
	inExpression bool
	stringStarts []int // stack of output-stream Len() at each open beginString
}

// runState bundles everything a single flow's stepping needs beyond
// the flow itself, kept per-Engine rather than per-Flow since only one
// flow steps at a time.
type runState struct {
	eval *evalState
}

func newRunState() *runState {
	return &runState{eval: &evalState{stack: evalstack.New()}}
}

func (e *Engine) ensureRun() *runState {
	if e.run == nil {
		e.run = newRunState()
	}
	return e.run
}

// ContinueOneLine runs Step repeatedly until the current line is
// complete (a resolved newline) or continuation becomes impossible,
// returning the assembled text for the line.
func (e *Engine) ContinueOneLine() (string, error) {
	if !e.CanContinue() {
		return "", newError(ErrCannotContinueNoContent, "no content to continue")
	}
	outermost := e.recursionDepth == 0
	if outermost {
		e.Vars.BeginBatch()
	}
	e.recursionDepth++
	for {
		more, err := e.Step()
		if err != nil {
			e.recursionDepth--
			if outermost {
				e.Vars.EndBatch()
			}
			return "", err
		}
		if e.lineComplete() {
			break
		}
		if !more {
			break
		}
	}
	e.recursionDepth--
	if outermost {
		e.Vars.EndBatch()
	}
	text := e.flushLine()
	if derr := e.dispatchIssues(); derr != nil {
		return text, derr
	}
	if e.Callbacks.OnDidContinue != nil {
		e.Callbacks.OnDidContinue()
	}
	e.tryFollowDefaultInvisibleChoice()
	return text, nil
}

// ContinueMaximally keeps producing lines until continuation stops (no
// content left, or choices are waiting on the player), returning the
// concatenation of everything produced.
func (e *Engine) ContinueMaximally() (string, error) {
	var sb strings.Builder
	for e.CanContinue() {
		text, err := e.ContinueOneLine()
		sb.WriteString(text)
		if err != nil {
			e.lastText = sb.String()
			return sb.String(), err
		}
	}
	e.lastText = sb.String()
	return sb.String(), nil
}

// lineComplete reports whether the active flow's output currently ends
// in a resolved (non-lookahead) newline.
func (e *Engine) lineComplete() bool {
	if e.snapshot != nil {
		return false // still resolving lookahead
	}
	assembled := outstream.Assemble(e.Flows.Current().Output)
	return strings.HasSuffix(assembled.Text, "\n")
}

// flushLine returns and clears the current flow's assembled text, the
// way a single continue's current-text is meant to be read once.
func (e *Engine) flushLine() string {
	assembled := outstream.Assemble(e.Flows.Current().Output)
	e.Flows.Current().Output = outstream.New()
	e.lastTags = assembled.Tags
	e.lastText = assembled.Text
	return assembled.Text
}

// CurrentText returns the text produced by the most recent continue.
func (e *Engine) CurrentText() string { return e.lastText }

// CurrentTags returns the tags collected by the most recent continue.
func (e *Engine) CurrentTags() []string { return e.lastTags }

// CurrentChoices returns the choices generated by the most recent continue.
func (e *Engine) CurrentChoices() []choice.Choice { return e.Flows.Current().Choices }

// CanContinue reports whether the active flow's pointer still has
// content to step through.
func (e *Engine) CanContinue() bool {
	return !e.Flows.Current().Pointer.IsNull()
}

// Step executes exactly one content object at the active flow's current
// pointer, advancing it, and returns more=false when the flow has
// nothing left to execute (content exhausted or `end`/`done` reached
// with no thread left).
func (e *Engine) Step() (bool, error) {
	if e.asyncInProgress {
		return false, newError(ErrAsyncOperationInProgress, "a continue-async call is already in progress")
	}
	return e.step()
}

// step performs one Step's work without the reentrancy guard, so
// ContinueAsync (which holds asyncInProgress for the call's duration)
// can keep stepping internally.
func (e *Engine) step() (bool, error) {
	f := e.Flows.Current()
	if f.Pointer.IsNull() {
		if e.snapshot != nil {
			// Nothing left to extend or remove the held newline: it
			// stands as final, so the snapshot itself is now moot.
			e.discardSnapshot()
		}
		return false, nil
	}
	run := e.ensureRun()

	node := e.Tree.CurrentNode(f.Pointer)
	if node == nil {
		e.addIssue(SeverityError, ErrUnexpectedEndOfContent, "pointer resolved to no content")
		f.Pointer = path.Null
		return false, nil
	}

	e.maybeCountVisit(f.Pointer)

	switch node.Kind {
	case content.NodeText:
		if run.eval.inExpression {
			// shouldn't normally happen; raw text inside expression
			// evaluation is treated as a string push.
			run.eval.stack.Push(content.NewString(node.Text))
		} else {
			f.Output.PushText(node.Text)
		}
		e.advance(f)

	case content.NodeValue:
		run.eval.stack.Push(node.Value)
		e.advance(f)

	case content.NodeGlue:
		f.Output.PushGlue()
		e.advance(f)

	case content.NodeTag:
		f.Output.PushTagBegin()
		f.Output.PushText(node.Tag.Text)
		f.Output.PushTagEnd()
		e.advance(f)

	case content.NodeControlCommand:
		e.execControlCommand(f, run, node.Command)

	case content.NodeDivert:
		e.execDivert(f, run, node.Divert)

	case content.NodeVariableReference:
		e.execVariableReference(f, run, node.VarRef)
		e.advance(f)

	case content.NodeVariableAssignment:
		e.execVariableAssignment(f, run, node.VarAssign)
		e.advance(f)

	case content.NodeNativeFunctionCall:
		e.execNativeCall(run, node.NativeCall)
		e.advance(f)

	case content.NodeChoicePoint:
		e.execChoicePoint(f, run, node.Choice)
		e.advance(f)

	case content.NodeContainer:
		e.advance(f)

	default:
		e.advance(f)
	}

	// Checked after this step's node has been processed, so the output
	// stream reflects whatever this step just appended: a newline that
	// appears for the first time here is what starts the lookahead.
	e.maybeStartLookahead(f)
	e.maybeResolveLookahead(f)

	return !f.Pointer.IsNull() || e.snapshot != nil, nil
}

// advance moves f.Pointer to the next content step, falling into the
// implicit-return cascade when NextContent returns null.
func (e *Engine) advance(f *flowAlias) {
	next := e.Tree.NextContent(f.Pointer)
	if !next.IsNull() {
		e.checkDivertContainerChange(f.Pointer, next)
		f.Pointer = next
		return
	}
	e.handleImplicitReturn(f)
}

func (e *Engine) handleImplicitReturn(f *flowAlias) {
	cs := f.Callstack
	frame := cs.CurrentFrame()
	if frame == nil {
		f.Pointer = path.Null
		return
	}
	switch frame.Type {
	case callstack.FrameFunction:
		run := e.ensureRun()
		var ret content.Value = content.NewInt(0)
		if run.eval.stack.Height() > frame.EvalStackHeightOnEntry {
			if v, ok := run.eval.stack.Pop(); ok {
				ret = v
			}
		}
		run.eval.stack.Truncate(frame.EvalStackHeightOnEntry)
		run.eval.stack.Push(ret)
		popped, _ := cs.Pop()
		e.resumeAfterPop(f, popped)
	case callstack.FrameTunnel:
		e.addIssue(SeverityError, ErrThreadNotPopped, "tunnel ran off the end of its content without a -> -> return")
		popped, _ := cs.Pop()
		e.resumeAfterPop(f, popped)
	default: // FrameNone
		f.Pointer = path.Null
		if _, ok := cs.PopThread(); ok {
			e.resumeParentThread(f)
		}
	}
}

func (e *Engine) resumeAfterPop(f *flowAlias, popped callstack.Frame) {
	f.Pointer = popped.ReturnPointer
}

// resumeParentThread points f at wherever the thread that just became
// active should pick up: the position recorded when it forked, or —
// for a thread that never forked — its top frame's return pointer.
func (e *Engine) resumeParentThread(f *flowAlias) {
	th := f.Callstack.CurrentThread()
	if th != nil && !th.PreviousPointer.IsNull() {
		f.Pointer = th.PreviousPointer
		return
	}
	if top := f.Callstack.CurrentFrame(); top != nil && !top.ReturnPointer.IsNull() {
		f.Pointer = top.ReturnPointer
	}
}

// flowAlias names the active flow.Flow a step operates against.
type flowAlias = flow.Flow

// maybeCountVisit fires whenever the pointer sits on a container's own
// entry position (Index -1, not yet descended to its first child) —
// always an at-start entry, since a pointer only ever addresses a
// container node itself right after a divert or sequential descent
// lands there. Mid-container entries (a divert straight to a deeper
// stitch, bypassing this container's own entry point) are counted
// instead by checkDivertContainerChange, for containers where
// counting-at-start-only is false.
func (e *Engine) maybeCountVisit(p path.Pointer) {
	node := e.Tree.CurrentNode(p)
	if node == nil || node.Kind != content.NodeContainer {
		return
	}
	container := e.Tree.Container(node)
	if container == nil || !container.VisitsCounted {
		return
	}
	key := e.Tree.PathForNode(p.Container).String()
	e.Counts.IncrementVisits(key)
	if container.TurnIndexCounted {
		e.Counts.SetTurnIndex(key, e.turn)
	}
}

// execControlCommand executes one control command and leaves the
// pointer on the next step: commands that transfer control (done, end,
// `->->`, `~ret`) set it themselves and return early; everything else
// falls through to a plain advance.
func (e *Engine) execControlCommand(f *flowAlias, run *runState, cmd content.ControlCommand) {
	switch cmd.Kind {
	case content.StartThread, content.Done, content.End, content.PopFunction, content.PopTunnel:
		e.Tracer.ControlCommand(e.Tree.PathForNode(f.Pointer.Container).String(), cmd.Kind.String())
	}
	switch cmd.Kind {
	case content.EvalStart:
		run.eval.inExpression = true
	case content.EvalEnd:
		run.eval.inExpression = false
	case content.EvalOutput:
		if v, ok := run.eval.stack.Pop(); ok {
			if v.String() != "" {
				f.Output.PushText(v.String())
			}
		}
	case content.Duplicate:
		if v, ok := run.eval.stack.Peek(); ok {
			run.eval.stack.Push(v)
		}
	case content.PopEvaluated:
		run.eval.stack.Pop()
	case content.BeginString:
		run.eval.stringStarts = append(run.eval.stringStarts, f.Output.Len())
		run.eval.inExpression = false
	case content.EndString:
		n := len(run.eval.stringStarts)
		start := 0
		if n > 0 {
			start = run.eval.stringStarts[n-1]
			run.eval.stringStarts = run.eval.stringStarts[:n-1]
		}
		assembled := outstream.Assemble(&outstream.Stream{Entries: f.Output.Entries[start:]})
		f.Output.Truncate(start)
		run.eval.stack.Push(content.NewString(assembled.Text))
		run.eval.inExpression = true
	case content.BeginTag:
		f.Output.PushTagBegin()
	case content.EndTag:
		f.Output.PushTagEnd()
	case content.ChoiceCount:
		run.eval.stack.Push(content.NewInt(len(f.Choices)))
	case content.Turns:
		run.eval.stack.Push(content.NewInt(e.turn))
	case content.VisitIndex:
		key := e.Tree.PathForNode(f.Pointer.Container).String()
		run.eval.stack.Push(content.NewInt(e.Counts.Visits(key)))
	case content.SequenceShuffleIndex:
		key := e.Tree.PathForNode(f.Pointer.Container).String()
		count, _ := run.eval.stack.Pop()
		n, _ := content.CastToInt(count)
		if n <= 0 {
			n = 1
		}
		src := rand.NewSource(e.seed + int64(e.turn) + int64(stringHash(key)))
		idx := rand.New(src).Intn(n)
		run.eval.stack.Push(content.NewInt(idx))
	case content.StartThread:
		f.Callstack.Fork()
		if parent := f.Callstack.ParentThread(); parent != nil {
			// The forked thread takes the divert that follows this
			// command; the parent resumes just past it once the fork
			// reaches `done`.
			afterDivert := e.Tree.NextContent(f.Pointer)
			parent.PreviousPointer = e.Tree.NextContent(afterDivert)
		}
	case content.Done:
		f.Pointer = path.Null
		if _, ok := f.Callstack.PopThread(); ok {
			e.resumeParentThread(f)
		}
		return
	case content.End:
		f.Pointer = path.Null
		f.Callstack = callstack.NewCallStack(path.Null)
		f.Choices = nil
		return
	case content.PopFunction, content.PopTunnel:
		e.execPop(f, run, cmd.Kind)
		return
	case content.ListFromInt:
		origin, _ := run.eval.stack.Pop()
		value, _ := run.eval.stack.Pop()
		n, _ := content.CastToInt(value)
		originName := ""
		if sv, ok := origin.(content.StringValue); ok {
			originName = sv.V
		}
		l, ok := listval.FromInt(e.Tree, originName, n)
		if !ok {
			e.addIssue(SeverityWarning, WarnPathApproximated, "listFromInt: no item at %d", n)
		}
		run.eval.stack.Push(content.NewList(l))
	case content.ListRange:
		maxV, _ := run.eval.stack.Pop()
		minV, _ := run.eval.stack.Pop()
		listV, _ := run.eval.stack.Pop()
		lv, _ := listV.(content.ListValue)
		maxN, _ := content.CastToInt(maxV)
		minN, _ := content.CastToInt(minV)
		origin := ""
		if origins := lv.V.Origins(); len(origins) > 0 {
			origin = origins[0]
		}
		run.eval.stack.Push(content.NewList(listval.Range(e.Tree, origin, minN, maxN)))
	case content.ListRandom:
		listV, _ := run.eval.stack.Pop()
		lv, ok := listV.(content.ListValue)
		if !ok || lv.V.Len() == 0 {
			run.eval.stack.Push(content.NewList(listval.New()))
			break
		}
		items := lv.V.Items()
		idx := rand.New(rand.NewSource(e.seed + int64(e.turn))).Intn(len(items))
		run.eval.stack.Push(content.NewList(listval.New(items[idx].Origin).Add(items[idx])))
	case content.NoOp:
		// nothing
	}
	e.advance(f)
}

// execPop implements the explicit returns: `~ret` pops a Function frame
// (preserving its return value on the evaluation stack), `->->` pops a
// Tunnel frame. A mismatch between the return used and the frame that
// was actually pushed is a runtime error, but execution still pops and
// resumes so the story can limp on.
func (e *Engine) execPop(f *flowAlias, run *runState, kind content.ControlCommandKind) {
	want := callstack.FrameTunnel
	if kind == content.PopFunction {
		want = callstack.FrameFunction
	}
	frame := f.Callstack.CurrentFrame()
	if frame == nil || !f.Callstack.CanPop() {
		e.addIssue(SeverityError, ErrThreadNotPopped, "found %s with no frame to return from", kind)
		f.Pointer = path.Null
		return
	}
	if !f.Callstack.CanPopType(want) {
		e.addIssue(SeverityError, ErrThreadNotPopped, "found %s where a %s return was expected", kind, frameLabel(frame.Type))
	}
	if frame.Type == callstack.FrameFunction {
		var ret content.Value = content.NewInt(0)
		if run.eval.stack.Height() > frame.EvalStackHeightOnEntry {
			if v, ok := run.eval.stack.Pop(); ok {
				ret = v
			}
		}
		run.eval.stack.Truncate(frame.EvalStackHeightOnEntry)
		run.eval.stack.Push(ret)
	}
	popped, _ := f.Callstack.Pop()
	e.resumeAfterPop(f, popped)
}

func frameLabel(t callstack.FrameType) string {
	switch t {
	case callstack.FrameFunction:
		return "~ret"
	case callstack.FrameTunnel:
		return "->->"
	default:
		return "-> DONE"
	}
}

func stringHash(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

func (e *Engine) execVariableReference(f *flowAlias, run *runState, ref content.VariableReference) {
	if ref.IsCountRef {
		key := ref.PathForCount.String()
		run.eval.stack.Push(content.NewInt(e.Counts.Visits(key)))
		return
	}
	if v, ok := f.Callstack.ResolveTemp(ref.Name); ok {
		run.eval.stack.Push(v)
		return
	}
	if v, ok := e.Vars.Get(ref.Name); ok {
		run.eval.stack.Push(v)
		return
	}
	e.addIssue(SeverityError, ErrUnresolvedVariable, "unresolved variable %q", ref.Name)
	run.eval.stack.Push(content.NewInt(0))
}

func (e *Engine) execVariableAssignment(f *flowAlias, run *runState, assign content.VariableAssignment) {
	v, ok := run.eval.stack.Pop()
	if !ok {
		e.addIssue(SeverityError, ErrStackUnderflow, "assignment to %q with nothing on the evaluation stack", assign.Name)
		return
	}
	if assign.IsNewDeclaration {
		if !assign.IsGlobal {
			f.Callstack.SetTemp(assign.Name, v)
			return
		}
		if e.Vars.Exists(assign.Name) {
			e.addIssue(SeverityError, ErrTypeMismatch, "variable %q already declared", assign.Name)
			return
		}
		e.Vars.Set(assign.Name, v)
		return
	}
	if _, ok := f.Callstack.ResolveTemp(assign.Name); ok {
		f.Callstack.SetTemp(assign.Name, v)
		return
	}
	e.Vars.Set(assign.Name, v)
}

func (e *Engine) execChoicePoint(f *flowAlias, run *runState, cp content.ChoicePoint) {
	if cp.HasCondition {
		cond, ok := run.eval.stack.Pop()
		if !ok || !cond.Truthy() {
			return
		}
	}
	var startText, choiceOnlyText string
	if cp.HasChoiceOnlyContent {
		if v, ok := run.eval.stack.Pop(); ok {
			choiceOnlyText = v.String()
		}
	}
	if cp.HasStartContent {
		if v, ok := run.eval.stack.Pop(); ok {
			startText = v.String()
		}
	}
	text := startText + choiceOnlyText

	own := e.Tree.PathForNode(f.Pointer.Container).Append(path.Indexed(f.Pointer.Index))
	key := own.String()
	if cp.OnceOnly && e.Counts.Visits("choice:"+key) > 0 {
		return
	}
	c := choice.Choice{
		Text:                text,
		Target:              cp.Target,
		Thread:              f.Callstack.CurrentThread().Copy(),
		ThreadIndex:         f.Callstack.CurrentThread().Index,
		IsInvisibleDefault:  cp.IsInvisibleDefault,
		OnceOnly:            cp.OnceOnly,
		OriginalChoicePath:  own,
	}
	f.Choices = append(f.Choices, c)
	e.Tracer.ChoiceGenerated(key, text, cp.IsInvisibleDefault)
}

func (e *Engine) execDivert(f *flowAlias, run *runState, d content.Divert) {
	if d.Flags.IsConditional {
		cond, ok := run.eval.stack.Pop()
		if !ok || !cond.Truthy() {
			e.advance(f)
			return
		}
	}

	target := d.Target
	if d.Flags.VarDivertName != "" {
		v, ok := e.Vars.Get(d.Flags.VarDivertName)
		if !ok {
			if v, ok = f.Callstack.ResolveTemp(d.Flags.VarDivertName); !ok {
				e.addIssue(SeverityError, ErrUnresolvedVariable, "divert variable %q unresolved", d.Flags.VarDivertName)
				e.advance(f)
				return
			}
		}
		dv, ok := v.(content.DivertTargetValue)
		if !ok {
			e.addIssue(SeverityError, ErrInvalidDivertTarget, "variable %q is not a divert target", d.Flags.VarDivertName)
			e.advance(f)
			return
		}
		target = dv.Target
	}

	if d.Flags.IsExternal {
		e.invokeExternal(f, run, target, d.Flags.ExternalArgs)
		e.advance(f)
		return
	}

	resolved, ok := e.Tree.Resolve(target, f.Pointer.Container)
	if !ok {
		e.addIssue(SeverityError, ErrInvalidDivertTarget, "divert target %q did not resolve", target.String())
		e.advance(f)
		return
	}

	newPointer := e.Tree.EntryPointer(resolved)

	if d.Flags.PushesToStack {
		returnAfter := e.Tree.NextContent(f.Pointer)
		ft := callstack.FrameTunnel
		if d.Flags.IsFunction {
			ft = callstack.FrameFunction
		}
		f.Callstack.Push(ft, returnAfter, run.eval.stack.Height(), f.Output.Len())
	}

	kind := "plain"
	switch {
	case d.Flags.PushesToStack && d.Flags.IsFunction:
		kind = "function"
	case d.Flags.PushesToStack:
		kind = "tunnel"
	}
	e.Tracer.Divert(pointerString(f.Pointer), target.String(), kind)

	e.checkDivertContainerChange(f.Pointer, newPointer)
	f.Pointer = newPointer
}

func (e *Engine) invokeExternal(f *flowAlias, run *runState, target path.Path, argc int) {
	name := target.String()
	e.Tracer.ExternalCall(name, argc)
	binding, ok := e.Externals.Lookup(name)
	if !ok {
		if resolved, ok := e.Tree.Resolve(target, f.Pointer.Container); ok {
			_ = resolved
			e.addIssue(SeverityWarning, WarnPathApproximated, "external %q not bound; content of that name exists but is not run in its place", name)
			return
		}
		e.addIssue(SeverityError, ErrMissingExternal, "no external function bound for %q", name)
		return
	}
	if e.snapshot != nil && !binding.LookaheadSafe {
		// Speculative execution must not run a side-effecting function:
		// flag the lookahead to restore, and let the rewound pointer
		// reach this call again for real.
		e.sawLookaheadUnsafe = true
		return
	}
	args, ok := run.eval.stack.PopN(argc)
	if !ok {
		e.addIssue(SeverityError, ErrStackUnderflow, "external %q expects %d arguments", name, argc)
		return
	}
	if e.Callbacks.OnEvaluateFunction != nil {
		e.Callbacks.OnEvaluateFunction(name, args)
	}
	ret, err := binding.Fn(args)
	if err != nil {
		e.addIssue(SeverityError, ErrMissingExternal, "external %q failed: %v", name, err)
		ret = content.NewInt(0)
	}
	if ret == nil {
		ret = content.NewInt(0)
	}
	run.eval.stack.Push(ret)
	if e.Callbacks.OnCompleteEvaluateFunction != nil {
		e.Callbacks.OnCompleteEvaluateFunction(name, args, "", ret)
	}
}

func (e *Engine) execNativeCall(run *runState, call content.NativeFunctionCall) {
	args, ok := run.eval.stack.PopN(call.NumArgs)
	if !ok {
		e.addIssue(SeverityError, ErrStackUnderflow, "native op %v expects %d args", call.Op, call.NumArgs)
		run.eval.stack.Push(content.NewInt(0))
		return
	}
	result, err := applyNative(call.Op, args)
	if err != nil {
		e.addIssue(SeverityError, ErrTypeMismatch, "%v", err)
		result = content.NewInt(0)
	}
	run.eval.stack.Push(result)
}

// checkDivertContainerChange implements VisitChangedContainersDueToDivert:
// every container newly entered between from and to (beyond their common
// path prefix) has its visit count bumped, mirroring ink's own rule that
// a divert "visits" every container it descends into along the way, not
// just the leaf. Containers the divert leaves are not tracked: nothing is
// recorded on exit.
//
// to.Container itself is skipped when to.Index < 0: that means to is an
// EntryPointer sitting right on the container's own entry position, which
// maybeCountVisit will count on the very next step. Counting it here too
// would double-count a plain divert straight to a knot/stitch. When
// to.Index >= 0 the divert landed directly on a deeper leaf, bypassing
// to.Container's own entry position entirely, so this is the only place
// that container's visit is ever recorded.
func (e *Engine) checkDivertContainerChange(from, to path.Pointer) {
	if from.Container == to.Container {
		return
	}
	fromPath := e.Tree.PathForNode(from.Container)
	toPath := e.Tree.PathForNode(to.Container)
	common := path.CommonPrefixLen(fromPath, toPath)
	comps := toPath.Components
	for i := common; i < len(comps); i++ {
		if i == len(comps)-1 && to.Index < 0 {
			continue
		}
		partial := path.Path{Components: comps[:i+1]}
		if id, ok := e.Tree.Resolve(partial, e.Tree.Root); ok {
			if node := e.Tree.Node(id); node != nil && node.Kind == content.NodeContainer {
				container := e.Tree.Container(node)
				if container != nil && container.VisitsCounted && !container.CountingAtStartOnly {
					e.Counts.IncrementVisits(partial.String())
				}
			}
		}
	}
}
