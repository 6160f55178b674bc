// Package patch implements the Patch component: a copy-on-write overlay
// holding tentative changes to global variables and visit/turn counts,
// mergeable into a base store or discardable, which is what lets the
// engine hand a frozen state snapshot to a background saver while it
// keeps running.
package patch

import "loom/content"

// Patch holds entries written since it was opened. Reads against a base
// store consult the patch first (see vars.State and visits.Counts); the
// patch itself never reads through to the base.
type Patch struct {
	Globals         map[string]content.Value
	VisitCounts     map[string]int
	TurnIndices     map[string]int
	ChangedVariables map[string]struct{}
}

// New returns an empty, open patch.
func New() *Patch {
	return &Patch{
		Globals:          map[string]content.Value{},
		VisitCounts:      map[string]int{},
		TurnIndices:      map[string]int{},
		ChangedVariables: map[string]struct{}{},
	}
}

func (p *Patch) SetGlobal(name string, v content.Value) {
	p.Globals[name] = v
	p.ChangedVariables[name] = struct{}{}
}

func (p *Patch) Global(name string) (content.Value, bool) {
	v, ok := p.Globals[name]
	return v, ok
}

func (p *Patch) SetVisitCount(containerPath string, n int) { p.VisitCounts[containerPath] = n }

func (p *Patch) VisitCount(containerPath string) (int, bool) {
	n, ok := p.VisitCounts[containerPath]
	return n, ok
}

func (p *Patch) SetTurnIndex(containerPath string, n int) { p.TurnIndices[containerPath] = n }

func (p *Patch) TurnIndex(containerPath string) (int, bool) {
	n, ok := p.TurnIndices[containerPath]
	return n, ok
}

// Copy returns an independent deep copy, used when a newline-lookahead
// snapshot must freeze the currently-open patch alongside the rest of
// state.
func (p *Patch) Copy() *Patch {
	if p == nil {
		return nil
	}
	out := New()
	for k, v := range p.Globals {
		out.Globals[k] = v
	}
	for k, v := range p.VisitCounts {
		out.VisitCounts[k] = v
	}
	for k, v := range p.TurnIndices {
		out.TurnIndices[k] = v
	}
	for k := range p.ChangedVariables {
		out.ChangedVariables[k] = struct{}{}
	}
	return out
}

// MergeGlobalsInto applies p's global-variable entries onto the base
// globals map, additively. Returns the set of variable names that
// changed, so the caller (vars.State) can notify change-observers.
func (p *Patch) MergeGlobalsInto(globals map[string]content.Value) []string {
	if p == nil {
		return nil
	}
	for k, v := range p.Globals {
		globals[k] = v
	}
	changed := make([]string, 0, len(p.ChangedVariables))
	for k := range p.ChangedVariables {
		changed = append(changed, k)
	}
	return changed
}

// MergeCountsInto applies p's visit-count and turn-index entries onto
// the base counter maps, additively.
func (p *Patch) MergeCountsInto(visitCounts, turnIndices map[string]int) {
	if p == nil {
		return
	}
	for k, v := range p.VisitCounts {
		visitCounts[k] = v
	}
	for k, v := range p.TurnIndices {
		turnIndices[k] = v
	}
}
