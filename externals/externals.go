// Package externals implements the external-function registry: a map of
// name to (function, lookahead-safe), the collaborator boundary an
// embedder binds story-defined EXTERNAL declarations against.
package externals

import "loom/content"

// Func is a bound external function implementation. It receives the
// popped argument values in call order and returns the value to push
// back (or nil for a void external, which the engine substitutes a null
// placeholder for).
type Func func(args []content.Value) (content.Value, error)

// Binding pairs a Func with whether it is safe to invoke during newline-
// lookahead (a function with observable side effects is not, and the
// engine must never run it speculatively).
type Binding struct {
	Fn             Func
	LookaheadSafe  bool
}

// Registry maps external function names to their bindings.
type Registry struct {
	bindings map[string]Binding
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{bindings: map[string]Binding{}} }

// Bind registers fn under name.
func (r *Registry) Bind(name string, fn Func, lookaheadSafe bool) {
	r.bindings[name] = Binding{Fn: fn, LookaheadSafe: lookaheadSafe}
}

// Unbind removes name's registration, if any.
func (r *Registry) Unbind(name string) { delete(r.bindings, name) }

// Lookup returns the binding for name, if bound.
func (r *Registry) Lookup(name string) (Binding, bool) {
	b, ok := r.bindings[name]
	return b, ok
}

// IsBound reports whether name has a registered binding.
func (r *Registry) IsBound(name string) bool {
	_, ok := r.bindings[name]
	return ok
}
