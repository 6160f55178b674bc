// Package path implements the Pointer & Path component: addressing into
// the content tree by hierarchical name/index components, and the
// (container, index) cursor used to walk it.
package path

import (
	"strconv"
	"strings"
)

// NodeID indexes a node in a content.Tree's flat arena. Containers
// reference children and parents by NodeID rather than by Go pointer,
// so the tree can be walked, compared and snapshotted by value.
type NodeID int

// NoNode is the sentinel for "no node" (root's parent, a dangling divert
// target, an empty pointer).
const NoNode NodeID = -1

// ParentMarker is the path component name meaning "my container's
// container" (ink's "^" path component).
const ParentMarker = "^"

// Component is one segment of a Path: either a name (a knot, stitch or
// named child) or a nonnegative index (the Nth child of a container),
// or the parent marker.
type Component struct {
	Name    string
	Index   int
	IsIndex bool
	IsUp    bool // the "^" marker: ascend to the parent container
}

func Named(name string) Component       { return Component{Name: name} }
func Indexed(i int) Component           { return Component{Index: i, IsIndex: true} }
func Up() Component                     { return Component{IsUp: true} }
func (c Component) String() string {
	switch {
	case c.IsUp:
		return ParentMarker
	case c.IsIndex:
		return strconv.Itoa(c.Index)
	default:
		return c.Name
	}
}

func (c Component) Equal(o Component) bool {
	if c.IsUp != o.IsUp || c.IsIndex != o.IsIndex {
		return false
	}
	if c.IsUp {
		return true
	}
	if c.IsIndex {
		return c.Index == o.Index
	}
	return c.Name == o.Name
}

// Path is an ordered sequence of Components. A Path with IsRelative set
// is resolved starting from the current container; otherwise it is
// resolved from the tree root.
type Path struct {
	Components []Component
	IsRelative bool
}

// Parse decodes a dotted path string like "knot.stitch.3" or
// ".^.sibling" (relative, ascends once then descends to "sibling").
// Leading "." marks the path relative.
func Parse(s string) Path {
	if s == "" {
		return Path{}
	}
	relative := false
	if strings.HasPrefix(s, ".") {
		relative = true
		s = s[1:]
	}
	parts := strings.Split(s, ".")
	comps := make([]Component, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if p == ParentMarker {
			comps = append(comps, Up())
			continue
		}
		if n, err := strconv.Atoi(p); err == nil {
			comps = append(comps, Indexed(n))
			continue
		}
		comps = append(comps, Named(p))
	}
	return Path{Components: comps, IsRelative: relative}
}

func (p Path) String() string {
	parts := make([]string, len(p.Components))
	for i, c := range p.Components {
		parts[i] = c.String()
	}
	prefix := ""
	if p.IsRelative {
		prefix = "."
	}
	return prefix + strings.Join(parts, ".")
}

// Empty reports whether the path has no components.
func (p Path) Empty() bool { return len(p.Components) == 0 }

// Head returns the first component and the remainder of the path.
func (p Path) Head() (Component, Path, bool) {
	if p.Empty() {
		return Component{}, p, false
	}
	return p.Components[0], Path{Components: p.Components[1:], IsRelative: p.IsRelative}, true
}

// Append returns a new Path with the given component added at the end.
func (p Path) Append(c Component) Path {
	out := make([]Component, len(p.Components)+1)
	copy(out, p.Components)
	out[len(p.Components)] = c
	return Path{Components: out, IsRelative: p.IsRelative}
}

// Equal compares two paths structurally (same components in order, same
// relativity).
func (p Path) Equal(o Path) bool {
	if p.IsRelative != o.IsRelative || len(p.Components) != len(o.Components) {
		return false
	}
	for i := range p.Components {
		if !p.Components[i].Equal(o.Components[i]) {
			return false
		}
	}
	return true
}

// CommonPrefixLen returns how many leading components two absolute paths
// share. Used to compute the newly-entered container set when a divert
// moves the pointer (VisitChangedContainersDueToDivert).
func CommonPrefixLen(a, b Path) int {
	n := len(a.Components)
	if len(b.Components) < n {
		n = len(b.Components)
	}
	i := 0
	for i < n && a.Components[i].Equal(b.Components[i]) {
		i++
	}
	return i
}

// Pointer is a cursor into the content tree: a container plus an index
// within it. Index == -1 means "the container itself" rather than one
// of its children.
type Pointer struct {
	Container NodeID
	Index     int
}

// Null is the empty pointer, meaning "nowhere" — the state after a
// pointer runs off the end of the root with no frame left to return to.
var Null = Pointer{Container: NoNode, Index: 0}

func (p Pointer) IsNull() bool { return p.Container == NoNode }

func (p Pointer) Equal(o Pointer) bool {
	return p.Container == o.Container && p.Index == o.Index
}
