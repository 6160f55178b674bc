package engine

import (
	"strings"

	"loom/callstack"
	"loom/content"
	"loom/outstream"
	"loom/path"
)

// EvaluateFunction diverts into a knot/stitch/function as if it were a
// call, runs it to completion, and returns both the text it produced
// and its return value, without disturbing the caller's own output
// stream.
func (e *Engine) EvaluateFunction(name string, args []content.Value) (string, content.Value, error) {
	f := e.Flows.Current()
	target := path.Parse(name)
	resolved, ok := e.Tree.Resolve(target, e.Tree.Root)
	if !ok {
		return "", nil, newError(ErrInvalidDivertTarget, "evaluate-function: %q did not resolve", name)
	}

	if e.Callbacks.OnEvaluateFunction != nil {
		e.Callbacks.OnEvaluateFunction(name, args)
	}

	run := e.ensureRun()
	savedPointer := f.Pointer
	savedOutput := f.Output
	f.Output = outstream.New()

	for _, a := range args {
		run.eval.stack.Push(a)
	}
	startHeight := run.eval.stack.Height()
	f.Callstack.Push(callstack.FrameFunction, path.Null, startHeight-len(args), f.Output.Len())
	f.Pointer = e.Tree.EntryPointer(resolved)

	e.recursionDepth++
	e.evalFunctionDepth++
	for !f.Pointer.IsNull() {
		more, err := e.step()
		if err != nil {
			e.recursionDepth--
			e.evalFunctionDepth--
			f.Pointer = savedPointer
			f.Output = savedOutput
			return "", nil, err
		}
		if !more {
			break
		}
	}
	e.recursionDepth--
	e.evalFunctionDepth--

	assembled := outstream.Assemble(f.Output)
	var ret content.Value = content.NewInt(0)
	if v, ok := run.eval.stack.Pop(); ok {
		ret = v
	}

	f.Pointer = savedPointer
	f.Output = savedOutput

	if e.Callbacks.OnCompleteEvaluateFunction != nil {
		e.Callbacks.OnCompleteEvaluateFunction(name, args, assembled.Text, ret)
	}
	return strings.TrimRight(assembled.Text, "\n"), ret, nil
}

// ChoosePath diverts the active flow's pointer directly to path, the
// way a player-invisible "go to" works, without waiting for a choice to
// be made.
func (e *Engine) ChoosePath(p path.Path, args []content.Value) error {
	if e.Callbacks.OnChoosePathString != nil {
		e.Callbacks.OnChoosePathString(p, args)
	}
	f := e.Flows.Current()
	resolved, ok := e.Tree.Resolve(p, e.Tree.Root)
	if !ok {
		return newError(ErrInvalidDivertTarget, "choose-path: %q did not resolve", p.String())
	}
	run := e.ensureRun()
	for _, a := range args {
		run.eval.stack.Push(a)
	}
	target := e.Tree.EntryPointer(resolved)
	e.checkDivertContainerChange(f.Pointer, target)
	f.Pointer = target
	f.Choices = nil
	return nil
}
