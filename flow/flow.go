// Package flow implements the flow registry: named, switchable
// (callstack, output-stream, choices) triples that share global
// variable state.
package flow

import (
	"fmt"

	"loom/callstack"
	"loom/choice"
	"loom/outstream"
	"loom/path"
)

// DefaultFlowName is the flow every story starts on; it can never be
// removed.
const DefaultFlowName = "DEFAULT_FLOW"

// Flow bundles the three pieces of state that are independent per-flow:
// the callstack, the output stream, and the currently generated choices.
// Variables and visit counts are NOT here — they are shared across every
// flow, owned by the engine.
type Flow struct {
	Name      string
	Callstack *callstack.CallStack
	Output    *outstream.Stream
	Choices   []choice.Choice

	// Pointer is this flow's current run position: where the next Step
	// will read from. It is independent of any callstack frame's
	// ReturnPointer, which only matters once that frame is popped.
	Pointer path.Pointer
}

func newFlow(name string, start path.Pointer) *Flow {
	return &Flow{
		Name:      name,
		Callstack: callstack.NewCallStack(start),
		Output:    outstream.New(),
		Pointer:   start,
	}
}

// Registry owns every Flow a story has switched to, plus which one is
// current.
type Registry struct {
	flows   map[string]*Flow
	current string
	start   path.Pointer
}

// NewRegistry returns a registry with only the default flow, rooted at
// start.
func NewRegistry(start path.Pointer) *Registry {
	r := &Registry{flows: map[string]*Flow{}, current: DefaultFlowName, start: start}
	r.flows[DefaultFlowName] = newFlow(DefaultFlowName, start)
	return r
}

// Current returns the active flow.
func (r *Registry) Current() *Flow { return r.flows[r.current] }

// CurrentName returns the active flow's name.
func (r *Registry) CurrentName() string { return r.current }

// Switch implements switch-flow(name): creates the flow if absent, then
// makes it current.
func (r *Registry) Switch(name string) *Flow {
	f, ok := r.flows[name]
	if !ok {
		f = newFlow(name, r.start)
		r.flows[name] = f
	}
	r.current = name
	return f
}

// Remove implements remove-flow: illegal on the default flow or the
// currently active flow.
func (r *Registry) Remove(name string) error {
	if name == DefaultFlowName {
		return fmt.Errorf("cannot remove the default flow")
	}
	if name == r.current {
		return fmt.Errorf("cannot remove the active flow %q", name)
	}
	if _, ok := r.flows[name]; !ok {
		return fmt.Errorf("no such flow %q", name)
	}
	delete(r.flows, name)
	return nil
}

// Names returns every known flow name.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.flows))
	for n := range r.flows {
		out = append(out, n)
	}
	return out
}

// Get returns a flow by name without making it current.
func (r *Registry) Get(name string) (*Flow, bool) {
	f, ok := r.flows[name]
	return f, ok
}
