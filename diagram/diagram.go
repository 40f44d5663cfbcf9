package diagram

import (
	"fmt"

	"github.com/zentner-kyle/match-diagram/fact"
)

// Diagram is an immutable rooted graph of nodes addressed by NodeID.
// Cycles are permitted: register state is fully captured per visit by the
// evaluator, so re-entry is well-defined. Construct is the only way to
// obtain a Diagram; a constructed Diagram is always well-formed.
type Diagram struct {
	nodes    []Node
	root     NodeID
	registry *fact.Registry
}

// Construct validates nodes and returns the Diagram rooted at root.
// Validation covers node and edge ranges, pattern arities against registry,
// the no-Free-in-leaf rule, and the register-binding discipline: every
// Reference(r) must be bound by an ancestor Free(r) on every path reaching
// it. Rejections wrap ErrMalformed together with the specific cause.
// Complexity: O(nodes × registers) for the binding fixpoint.
func Construct(nodes []Node, root NodeID, registry *fact.Registry) (*Diagram, error) {
	d := &Diagram{nodes: make([]Node, len(nodes)), root: root, registry: registry}
	for i, n := range nodes {
		d.nodes[i] = n.Clone()
	}
	if err := d.validate(); err != nil {
		return nil, err
	}

	return d, nil
}

// WellFormed reports whether d still satisfies every construction invariant.
// Diagrams obtained from Construct always do; the check is exposed so other
// components can re-verify a diagram they did not build themselves.
func (d *Diagram) WellFormed() bool {
	return d.validate() == nil
}

// Root returns the root node's ID.
func (d *Diagram) Root() NodeID { return d.root }

// Size reports the number of nodes.
func (d *Diagram) Size() int { return len(d.nodes) }

// Registry returns the shared predicate registry this diagram resolves
// predicates through.
func (d *Diagram) Registry() *fact.Registry { return d.registry }

// Contains reports whether id addresses a node of d.
func (d *Diagram) Contains(id NodeID) bool {
	return id >= 0 && int(id) < len(d.nodes)
}

// Node returns a copy of the node at id. id must be in range.
func (d *Diagram) Node(id NodeID) Node {
	return d.nodes[id]
}

// Target returns the node an edge currently points to (the root node for
// the root edge), or NoNode if the edge is absent.
func (d *Diagram) Target(e Edge) NodeID {
	switch e.Kind {
	case EdgeRoot:
		return d.root
	case EdgeMatch:
		return d.nodes[e.Source].Match
	default:
		return d.nodes[e.Source].Refute
	}
}

// MaxRegister returns the highest register index mentioned anywhere in d,
// or -1 when no term names a register.
func (d *Diagram) MaxRegister() int {
	max := -1
	for _, n := range d.nodes {
		for _, t := range n.Pattern.Terms {
			if t.Kind != TermConstant && t.Register > max {
				max = t.Register
			}
		}
	}

	return max
}

// Equal reports structural equality: same root, same node count, and
// index-wise equal nodes.
func (d *Diagram) Equal(o *Diagram) bool {
	if d.root != o.root || len(d.nodes) != len(o.nodes) {
		return false
	}
	for i, n := range d.nodes {
		if !n.Equal(o.nodes[i]) {
			return false
		}
	}

	return true
}

// Clone returns a deep copy of d.
func (d *Diagram) Clone() *Diagram {
	out := &Diagram{nodes: make([]Node, len(d.nodes)), root: d.root, registry: d.registry}
	for i, n := range d.nodes {
		out.nodes[i] = n.Clone()
	}

	return out
}

// Parents returns every edge whose target is id, root edge included.
func (d *Diagram) Parents(id NodeID) []Edge {
	var edges []Edge
	if d.root == id {
		edges = append(edges, RootEdge())
	}
	for i, n := range d.nodes {
		if n.Kind != KindBranch {
			continue
		}
		if n.Match == id {
			edges = append(edges, MatchEdge(NodeID(i)))
		}
		if n.Refute == id {
			edges = append(edges, RefuteEdge(NodeID(i)))
		}
	}

	return edges
}

// reachable returns the set of nodes reachable from the root.
func (d *Diagram) reachable() map[NodeID]bool {
	seen := make(map[NodeID]bool, len(d.nodes))
	stack := []NodeID{d.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		n := d.nodes[id]
		if n.Match != NoNode {
			stack = append(stack, n.Match)
		}
		if n.Refute != NoNode {
			stack = append(stack, n.Refute)
		}
	}

	return seen
}

// validate applies every construction invariant in order: structure first,
// then arities and leaf shape, then the binding fixpoint.
func (d *Diagram) validate() error {
	if len(d.nodes) == 0 || !d.Contains(d.root) {
		return fmt.Errorf("%w: %w: %d", ErrMalformed, ErrBadRoot, d.root)
	}
	for i, n := range d.nodes {
		if n.Match != NoNode && !d.Contains(n.Match) {
			return fmt.Errorf("%w: %w: node %d match -> %d", ErrMalformed, ErrBadEdge, i, n.Match)
		}
		if n.Refute != NoNode && !d.Contains(n.Refute) {
			return fmt.Errorf("%w: %w: node %d refute -> %d", ErrMalformed, ErrBadEdge, i, n.Refute)
		}
		if got, want := len(n.Pattern.Terms), d.registry.Arity(n.Pattern.Predicate); got != want {
			return fmt.Errorf("%w: %w: node %d has %d terms, %s wants %d",
				ErrMalformed, ErrArityMismatch, i, got, d.registry.Name(n.Pattern.Predicate), want)
		}
		for ti, t := range n.Pattern.Terms {
			if t.Kind != TermConstant && t.Register < 0 {
				return fmt.Errorf("%w: %w: node %d term %d", ErrMalformed, ErrBadRegister, i, ti)
			}
			if n.Kind == KindLeaf && t.Kind == TermFree {
				return fmt.Errorf("%w: %w: node %d term %d", ErrMalformed, ErrFreeInLeaf, i, ti)
			}
		}
		if n.Kind == KindLeaf && (n.Match != NoNode || n.Refute != NoNode) {
			return fmt.Errorf("%w: %w: leaf %d has children", ErrMalformed, ErrBadEdge, i)
		}
	}

	return d.checkBindings()
}

// checkBindings runs the must-be-bound forward dataflow: the set of
// registers guaranteed bound at a node is the intersection, over its
// in-edges, of the parent's set extended by the parent's Free terms on
// match edges (refute edges pass the pre-binding state through). The
// fixpoint starts optimistic (unvisited = everything) so cycles settle on
// the greatest solution; any Reference outside a node's settled set is an
// unbound reference.
func (d *Diagram) checkBindings() error {
	// bound[id] == nil means not yet visited (top element).
	bound := make([]map[int]bool, len(d.nodes))
	bound[d.root] = map[int]bool{}
	work := []NodeID{d.root}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		n := d.nodes[id]
		if n.Kind != KindBranch {
			continue
		}
		matchOut := copySet(bound[id])
		for _, t := range n.Pattern.Terms {
			if t.Kind == TermFree {
				matchOut[t.Register] = true
			}
		}
		if n.Match != NoNode && mergeInto(&bound[n.Match], matchOut) {
			work = append(work, n.Match)
		}
		if n.Refute != NoNode && mergeInto(&bound[n.Refute], bound[id]) {
			work = append(work, n.Refute)
		}
	}
	for id := range d.nodes {
		if bound[id] == nil {
			continue // unreachable: vacuously fine
		}
		for ti, t := range d.nodes[id].Pattern.Terms {
			if t.Kind == TermReference && !bound[id][t.Register] {
				return fmt.Errorf("%w: %w: node %d term %d register %d",
					ErrMalformed, ErrUnboundReference, id, ti, t.Register)
			}
		}
	}

	return nil
}

// copySet duplicates a register set.
func copySet(s map[int]bool) map[int]bool {
	out := make(map[int]bool, len(s))
	for r := range s {
		out[r] = true
	}

	return out
}

// mergeInto intersects incoming into *dst (nil *dst adopts incoming whole)
// and reports whether *dst shrank or was first set.
func mergeInto(dst *map[int]bool, incoming map[int]bool) bool {
	if *dst == nil {
		*dst = copySet(incoming)
		return true
	}
	changed := false
	for r := range *dst {
		if !incoming[r] {
			delete(*dst, r)
			changed = true
		}
	}

	return changed
}
