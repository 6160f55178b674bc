package content

import (
	"loom/listval"
	"loom/path"
)

// Tree is the flat arena a loaded story lives in: every Node and every
// Container addressed by path.NodeID rather than by Go pointer, so the
// engine can snapshot a Pointer into it cheaply and compare/copy state
// without walking a pointer graph.
type Tree struct {
	Nodes      []Node
	Containers []Container
	Root       path.NodeID // root container's NodeID

	ListDefs map[string]map[string]int // origin name -> item name -> rank, for listval.Definitions
}

// NewTree returns an empty arena with a single anonymous root container.
func NewTree() *Tree {
	t := &Tree{ListDefs: map[string]map[string]int{}}
	rootContainer := Container{ID: 0, Named: map[string]path.NodeID{}}
	t.Containers = append(t.Containers, rootContainer)
	t.Nodes = append(t.Nodes, Node{Kind: NodeContainer, ContainerRef: 0, ParentID: path.NoNode})
	t.Root = 0
	return t
}

func (t *Tree) Node(id path.NodeID) *Node {
	if id < 0 || int(id) >= len(t.Nodes) {
		return nil
	}
	return &t.Nodes[id]
}

func (t *Tree) Container(node *Node) *Container {
	if node == nil || node.Kind != NodeContainer {
		return nil
	}
	return &t.Containers[node.ContainerRef]
}

// AddNode appends a node to the arena and returns its fresh NodeID.
func (t *Tree) AddNode(n Node) path.NodeID {
	id := path.NodeID(len(t.Nodes))
	t.Nodes = append(t.Nodes, n)
	return id
}

// AddContainer creates a new container node as a child of parent,
// appending it to parent's Content (and, if name is non-empty, to
// parent's Named map), and returns the new container's NodeID.
func (t *Tree) AddContainer(parent path.NodeID, name string) path.NodeID {
	containerIdx := len(t.Containers)
	t.Containers = append(t.Containers, Container{Named: map[string]path.NodeID{}})

	id := t.AddNode(Node{Kind: NodeContainer, ContainerRef: containerIdx, ParentID: parent})
	t.Containers[containerIdx].ID = id

	parentNode := t.Node(parent)
	parentContainer := t.Container(parentNode)
	if parentContainer != nil {
		idx := len(parentContainer.Content)
		parentContainer.Content = append(parentContainer.Content, id)
		t.Nodes[id].OwnIndex = idx
		if name != "" {
			parentContainer.Named[name] = id
		}
	}
	return id
}

// AddChild appends a leaf node (already constructed by the caller) as a
// child of parent and returns its NodeID.
func (t *Tree) AddChild(parent path.NodeID, n Node, name string) path.NodeID {
	n.ParentID = parent
	id := t.AddNode(n)

	parentNode := t.Node(parent)
	parentContainer := t.Container(parentNode)
	if parentContainer != nil {
		idx := len(parentContainer.Content)
		parentContainer.Content = append(parentContainer.Content, id)
		t.Nodes[id].OwnIndex = idx
		if name != "" {
			parentContainer.Named[name] = id
		}
	}
	return id
}

// PathForNode computes the absolute path from the tree root down to id,
// by name where a node's container names it, by index otherwise.
func (t *Tree) PathForNode(id path.NodeID) path.Path {
	var comps []path.Component
	cur := id
	for cur != path.NoNode && cur != t.Root {
		n := t.Node(cur)
		if n == nil {
			break
		}
		parent := t.Node(n.ParentID)
		parentContainer := t.Container(parent)
		comp := path.Indexed(n.OwnIndex)
		if parentContainer != nil {
			for name, childID := range parentContainer.Named {
				if childID == cur {
					comp = path.Named(name)
					break
				}
			}
		}
		comps = append([]path.Component{comp}, comps...)
		cur = n.ParentID
	}
	return path.Path{Components: comps}
}

// Resolve walks p from the tree root (or, for a relative path, from
// origin) and returns the NodeID it addresses.
func (t *Tree) Resolve(p path.Path, origin path.NodeID) (path.NodeID, bool) {
	cur := t.Root
	if p.IsRelative {
		cur = origin
	}
	comps := p.Components
	for len(comps) > 0 {
		c := comps[0]
		comps = comps[1:]

		n := t.Node(cur)
		if n == nil {
			return path.NoNode, false
		}

		if c.IsUp {
			if n.Kind != NodeContainer {
				parent := t.Node(n.ParentID)
				if parent == nil {
					return path.NoNode, false
				}
				cur = n.ParentID
				n = parent
			}
			parent := t.Node(n.ParentID)
			if parent == nil {
				return path.NoNode, false
			}
			cur = n.ParentID
			continue
		}

		container := t.Container(n)
		if container == nil {
			return path.NoNode, false
		}
		if c.IsIndex {
			if c.Index < 0 || c.Index >= len(container.Content) {
				return path.NoNode, false
			}
			cur = container.Content[c.Index]
			continue
		}
		childID, ok := container.Named[c.Name]
		if !ok {
			return path.NoNode, false
		}
		cur = childID
	}
	return cur, true
}

// EntryPointer returns the Pointer that "enters" id the way a divert or
// choice lands on it: Index -1 (the container itself, not yet descended)
// for a container node, so the next step records its visit and descends
// to its first child; or its own position within its parent for a leaf
// node addressed directly (a stitch-level target that isn't itself a
// container).
func (t *Tree) EntryPointer(id path.NodeID) path.Pointer {
	if node := t.Node(id); node != nil && node.Kind != NodeContainer {
		return path.Pointer{Container: node.ParentID, Index: node.OwnIndex}
	}
	return path.Pointer{Container: id, Index: -1}
}

// NextContent advances p by one content step: the next sibling within
// the current container, descending into a container child rather than
// treating it as a leaf, or ascending to the parent's next sibling once
// the current container is exhausted. It returns the null Pointer when
// there is nowhere left to go (the caller pops a callstack frame, or —
// at the outermost frame — the story has ended).
//
// p.Index == -1 ("the container itself", just entered and not yet
// descended) advances to its first child rather than to a sibling.
func (t *Tree) NextContent(p path.Pointer) path.Pointer {
	if p.IsNull() {
		return path.Null
	}
	containerNode := t.Node(p.Container)
	container := t.Container(containerNode)
	if container == nil {
		return path.Null
	}

	containerID := p.Container
	idx := p.Index
	if idx < 0 {
		idx = 0
	} else {
		idx++
	}

	for {
		if idx < len(container.Content) {
			childID := container.Content[idx]
			childNode := t.Node(childID)
			if childNode != nil && childNode.Kind == NodeContainer {
				return path.Pointer{Container: childID, Index: -1}
			}
			return path.Pointer{Container: containerID, Index: idx}
		}

		// Exhausted this container: ascend, resuming just past the
		// container's own position in its parent, walking the whole
		// chain up until a next sibling exists somewhere.
		node := t.Node(containerID)
		if node == nil || node.ParentID == path.NoNode {
			return path.Null
		}
		idx = node.OwnIndex + 1
		containerID = node.ParentID
		container = t.Container(t.Node(containerID))
		if container == nil {
			return path.Null
		}
	}
}

// CurrentNode returns the node a Pointer currently addresses: either the
// container itself (Index == -1) or the indexed child.
func (t *Tree) CurrentNode(p path.Pointer) *Node {
	if p.IsNull() {
		return nil
	}
	containerNode := t.Node(p.Container)
	if containerNode == nil {
		return nil
	}
	if p.Index < 0 {
		return containerNode
	}
	container := t.Container(containerNode)
	if container == nil || p.Index >= len(container.Content) {
		return nil
	}
	return t.Node(container.Content[p.Index])
}

// ItemByValue implements listval.Definitions.
func (t *Tree) ItemByValue(origin string, value int) (string, bool) {
	names, ok := t.ListDefs[origin]
	if !ok {
		return "", false
	}
	for name, v := range names {
		if v == value {
			return name, true
		}
	}
	return "", false
}

// ValueByName implements listval.Definitions.
func (t *Tree) ValueByName(origin, name string) (int, bool) {
	names, ok := t.ListDefs[origin]
	if !ok {
		return 0, false
	}
	v, ok := names[name]
	return v, ok
}

// AllItems implements listval.Definitions.
func (t *Tree) AllItems(origin string) []listval.Item {
	names, ok := t.ListDefs[origin]
	if !ok {
		return nil
	}
	out := make([]listval.Item, 0, len(names))
	for name, v := range names {
		out = append(out, listval.Item{Origin: origin, Name: name, Value: v})
	}
	return out
}

// OriginNames implements listval.Definitions.
func (t *Tree) OriginNames() []string {
	out := make([]string, 0, len(t.ListDefs))
	for o := range t.ListDefs {
		out = append(out, o)
	}
	return out
}
