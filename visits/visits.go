// Package visits implements the Visit/Turn Counts component: per-
// container visit counters and per-container turn indices, both read
// through a patch overlay before falling back to the base counters.
package visits

import "loom/patch"

// Counts holds visit and turn-index counters keyed by a container's
// absolute path string.
type Counts struct {
	visits map[string]int
	turns  map[string]int

	Patch *patch.Patch // nil when no background save is open
}

// New returns an empty counter set.
func New() *Counts {
	return &Counts{visits: map[string]int{}, turns: map[string]int{}}
}

// Visits returns the current visit count for a container, patch first.
func (c *Counts) Visits(containerPath string) int {
	if c.Patch != nil {
		if n, ok := c.Patch.VisitCount(containerPath); ok {
			return n
		}
	}
	return c.visits[containerPath]
}

// IncrementVisits bumps the visit count by one, writing to the patch
// when one is open so the change is copy-on-write.
func (c *Counts) IncrementVisits(containerPath string) {
	n := c.Visits(containerPath) + 1
	if c.Patch != nil {
		c.Patch.SetVisitCount(containerPath, n)
		return
	}
	c.visits[containerPath] = n
}

// TurnIndex returns the turn index a container was last visited at,
// patch first.
func (c *Counts) TurnIndex(containerPath string) int {
	if c.Patch != nil {
		if n, ok := c.Patch.TurnIndex(containerPath); ok {
			return n
		}
	}
	return c.turns[containerPath]
}

// SetTurnIndex records the current global turn counter against a
// container, writing to the patch when one is open.
func (c *Counts) SetTurnIndex(containerPath string, turn int) {
	if c.Patch != nil {
		c.Patch.SetTurnIndex(containerPath, turn)
		return
	}
	c.turns[containerPath] = turn
}

// StartPatch opens a fresh patch overlay.
func (c *Counts) StartPatch() { c.Patch = patch.New() }

// MergePatch folds the open patch's visit/turn entries into the base
// counters and clears it.
func (c *Counts) MergePatch() {
	if c.Patch == nil {
		return
	}
	c.Patch.MergeCountsInto(c.visits, c.turns)
	c.Patch = nil
}

// DiscardPatch drops the open patch without applying it.
func (c *Counts) DiscardPatch() { c.Patch = nil }

// Copy returns an independent deep copy.
func (c *Counts) Copy() *Counts {
	out := &Counts{
		visits: make(map[string]int, len(c.visits)),
		turns:  make(map[string]int, len(c.turns)),
	}
	for k, v := range c.visits {
		out.visits[k] = v
	}
	for k, v := range c.turns {
		out.turns[k] = v
	}
	out.Patch = c.Patch.Copy()
	return out
}
