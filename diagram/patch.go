package diagram

import "fmt"

// Editor accumulates structural patches against a source diagram and builds
// a fresh, re-validated Diagram. The source is never touched: editing is
// copy-on-write, which is what makes population-level parallelism safe.
type Editor struct {
	src   *Diagram
	nodes []Node
	root  NodeID
}

// Edit opens an editor over d.
func (d *Diagram) Edit() *Editor {
	e := &Editor{src: d, nodes: make([]Node, len(d.nodes)), root: d.root}
	copy(e.nodes, d.nodes)

	return e
}

// SetNode replaces the node at id.
func (e *Editor) SetNode(id NodeID, n Node) *Editor {
	e.nodes[id] = n.Clone()
	return e
}

// SetTerm replaces one term of the pattern at id.
func (e *Editor) SetTerm(id NodeID, index int, t Term) *Editor {
	n := e.nodes[id].Clone()
	n.Pattern.Terms[index] = t
	e.nodes[id] = n

	return e
}

// SetPredicate replaces the predicate of the pattern at id. The term count
// must still match the new predicate's arity for Build to succeed.
func (e *Editor) SetPredicate(id NodeID, p Pattern) *Editor {
	n := e.nodes[id].Clone()
	n.Pattern = p.Clone()
	e.nodes[id] = n

	return e
}

// SetEdge points an edge at target (NoNode detaches a match/refute edge).
func (e *Editor) SetEdge(edge Edge, target NodeID) *Editor {
	switch edge.Kind {
	case EdgeRoot:
		e.root = target
	case EdgeMatch:
		n := e.nodes[edge.Source].Clone()
		n.Match = target
		e.nodes[edge.Source] = n
	default:
		n := e.nodes[edge.Source].Clone()
		n.Refute = target
		e.nodes[edge.Source] = n
	}

	return e
}

// Append adds a node, returning its freshly assigned ID.
func (e *Editor) Append(n Node) NodeID {
	e.nodes = append(e.nodes, n.Clone())
	return NodeID(len(e.nodes) - 1)
}

// Remove deletes the node at id. Every node after id shifts down one index;
// edges are renumbered accordingly. Edges still pointing at id become
// detached, so callers reconnect parents before removing.
func (e *Editor) Remove(id NodeID) *Editor {
	shift := func(t NodeID) NodeID {
		switch {
		case t == id:
			return NoNode
		case t > id:
			return t - 1
		default:
			return t
		}
	}
	out := make([]Node, 0, len(e.nodes)-1)
	for i, n := range e.nodes {
		if NodeID(i) == id {
			continue
		}
		c := n.Clone()
		c.Match = shift(c.Match)
		c.Refute = shift(c.Refute)
		out = append(out, c)
	}
	e.nodes = out
	e.root = shift(e.root)

	return e
}

// Build validates the patched graph and returns it as a new Diagram.
// The editor's source diagram is unchanged regardless of the outcome.
func (e *Editor) Build() (*Diagram, error) {
	d, err := Construct(e.nodes, e.root, e.src.registry)
	if err != nil {
		return nil, fmt.Errorf("diagram: edit rejected: %w", err)
	}

	return d, nil
}
