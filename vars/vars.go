// Package vars implements the Variables State component: global
// variables, a default-globals snapshot (for ResetState), a patch
// overlay for copy-on-write background saving, and change-notification
// batching.
package vars

import (
	"loom/content"
	"loom/patch"
)

// Observer is called for every global variable that changed once a
// batch of writes completes (immediately in non-batch mode, or when
// EndBatch flushes a deferred batch).
type Observer func(name string, v content.Value)

// State holds the live global-variable store plus its patch overlay.
// Invariant: reads consult the patch first, then the base globals.
type State struct {
	Globals        map[string]content.Value
	defaultGlobals map[string]content.Value

	Patch *patch.Patch // nil when no background save is open

	observers    []Observer
	batchMode    bool
	pending      map[string]content.Value
	pendingOrder []string // names in first-change order
}

// New returns a state with globals initialized from initial; a copy of
// initial is kept aside as the default-globals snapshot Reset restores.
func New(initial map[string]content.Value) *State {
	s := &State{
		Globals:        map[string]content.Value{},
		defaultGlobals: map[string]content.Value{},
	}
	for k, v := range initial {
		s.Globals[k] = v
		s.defaultGlobals[k] = v
	}
	return s
}

// Observe registers a change-notification callback.
func (s *State) Observe(o Observer) { s.observers = append(s.observers, o) }

// BeginBatch defers change notifications until EndBatch, coalescing
// repeated writes to the same variable within a continue into a single
// notification.
func (s *State) BeginBatch() {
	s.batchMode = true
	s.pending = map[string]content.Value{}
	s.pendingOrder = nil
}

// EndBatch flushes deferred notifications, once per variable, in the
// order the variables were first written.
func (s *State) EndBatch() {
	s.batchMode = false
	pending, order := s.pending, s.pendingOrder
	s.pending = nil
	s.pendingOrder = nil
	for _, name := range order {
		s.notify(name, pending[name])
	}
}

func (s *State) notify(name string, v content.Value) {
	for _, o := range s.observers {
		o(name, v)
	}
}

// Get reads a global, consulting the open patch first.
func (s *State) Get(name string) (content.Value, bool) {
	if s.Patch != nil {
		if v, ok := s.Patch.Global(name); ok {
			return v, true
		}
	}
	v, ok := s.Globals[name]
	return v, ok
}

// Set writes a global. When a patch is open, the write lands in the
// patch (copy-on-write); otherwise it writes straight to Globals.
func (s *State) Set(name string, v content.Value) {
	if s.Patch != nil {
		s.Patch.SetGlobal(name, v)
	} else {
		s.Globals[name] = v
	}
	if s.batchMode {
		if _, seen := s.pending[name]; !seen {
			s.pendingOrder = append(s.pendingOrder, name)
		}
		s.pending[name] = v
		return
	}
	s.notify(name, v)
}

// Exists reports whether name is a known global (checked by
// VariableAssignment's new-declaration-must-not-shadow rule).
func (s *State) Exists(name string) bool {
	if s.Patch != nil {
		if _, ok := s.Patch.Global(name); ok {
			return true
		}
	}
	_, ok := s.Globals[name]
	return ok
}

// StartPatch opens a fresh patch overlay (copy-state-for-background-save).
func (s *State) StartPatch() { s.Patch = patch.New() }

// MergePatch folds the open patch into the base globals and clears it,
// notifying observers for every variable the patch changed.
func (s *State) MergePatch() {
	if s.Patch == nil {
		return
	}
	changed := s.Patch.MergeGlobalsInto(s.Globals)
	s.Patch = nil
	for _, name := range changed {
		if v, ok := s.Globals[name]; ok {
			s.notify(name, v)
		}
	}
}

// DiscardPatch drops the open patch without applying it.
func (s *State) DiscardPatch() { s.Patch = nil }

// Reset restores every global to its value at construction time and
// drops any open patch.
func (s *State) Reset() {
	s.Globals = map[string]content.Value{}
	for k, v := range s.defaultGlobals {
		s.Globals[k] = v
	}
	s.Patch = nil
}

// Copy returns an independent deep copy, used for newline-lookahead
// snapshots and for the frozen state handed to a background saver.
func (s *State) Copy() *State {
	out := &State{
		Globals:        make(map[string]content.Value, len(s.Globals)),
		defaultGlobals: s.defaultGlobals, // immutable after construction; safe to share
	}
	for k, v := range s.Globals {
		out.Globals[k] = v
	}
	out.Patch = s.Patch.Copy()
	out.observers = s.observers // observer list is shared, not per-snapshot state
	return out
}
