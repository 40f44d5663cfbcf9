package mutate

import (
	"fmt"

	"github.com/zentner-kyle/match-diagram/diagram"
	"github.com/zentner-kyle/match-diagram/fact"
)

// SetTermReference replaces a Constant term with Reference(Register).
// Valid only if every incoming snapshot at the node already binds Register
// to exactly the constant's value, so the term accepts the same facts.
type SetTermReference struct {
	Node     diagram.NodeID
	Term     int
	Register int
}

// Neutral reports that SetTermReference preserves behavior when accepted.
func (SetTermReference) Neutral() bool { return true }

func (m SetTermReference) apply(ctx *Context) (*diagram.Diagram, error) {
	t, err := termAt(ctx.d, m.Node, m.Term)
	if err != nil {
		return nil, err
	}
	if t.Kind != diagram.TermConstant {
		return nil, fmt.Errorf("%w: node %d term %d is not a constant", ErrBadTarget, m.Node, m.Term)
	}
	if !ctx.everySnapshotBinds(m.Node, m.Register, t.Value) {
		return nil, fmt.Errorf("%w: register %d is not always bound to the constant", ErrPrecondition, m.Register)
	}

	return ctx.d.Edit().SetTerm(m.Node, m.Term, diagram.Reference(m.Register)).Build()
}

// SetTermFree replaces a Constant term in a branch pattern with
// Free(Register). Free matches more facts than the constant did and writes
// a register, so validity demands the node's outgoing snapshot sets stay
// unchanged on every context input.
type SetTermFree struct {
	Node     diagram.NodeID
	Term     int
	Register int
}

// Neutral reports that SetTermFree preserves behavior when accepted.
func (SetTermFree) Neutral() bool { return true }

func (m SetTermFree) apply(ctx *Context) (*diagram.Diagram, error) {
	t, err := termAt(ctx.d, m.Node, m.Term)
	if err != nil {
		return nil, err
	}
	if t.Kind != diagram.TermConstant || ctx.d.Node(m.Node).Kind != diagram.KindBranch {
		return nil, fmt.Errorf("%w: node %d term %d cannot become free", ErrBadTarget, m.Node, m.Term)
	}
	repl := ctx.d.Node(m.Node).Clone()
	repl.Pattern.Terms[m.Term] = diagram.Free(m.Register)
	if !ctx.outgoingUnchanged(m.Node, repl) {
		return nil, fmt.Errorf("%w: freeing term changes outgoing snapshots", ErrPrecondition)
	}

	return ctx.d.Edit().SetNode(m.Node, repl).Build()
}

// SetTermConstant replaces a term with Constant(Value): the inverse
// constant↔register swap when the term is a Reference (valid if every
// incoming snapshot binds that register to Value), or a constant
// substitution / free-term narrowing otherwise (valid if the node's
// outgoing snapshot sets are unchanged).
type SetTermConstant struct {
	Node  diagram.NodeID
	Term  int
	Value fact.Value
}

// Neutral reports that SetTermConstant preserves behavior when accepted.
func (SetTermConstant) Neutral() bool { return true }

func (m SetTermConstant) apply(ctx *Context) (*diagram.Diagram, error) {
	t, err := termAt(ctx.d, m.Node, m.Term)
	if err != nil {
		return nil, err
	}
	if t.Kind == diagram.TermReference {
		if !ctx.everySnapshotBinds(m.Node, t.Register, m.Value) {
			return nil, fmt.Errorf("%w: register %d is not always bound to %d", ErrPrecondition, t.Register, m.Value)
		}
	} else {
		repl := ctx.d.Node(m.Node).Clone()
		repl.Pattern.Terms[m.Term] = diagram.Constant(m.Value)
		if !ctx.outgoingUnchanged(m.Node, repl) {
			return nil, fmt.Errorf("%w: constant %d changes outgoing snapshots", ErrPrecondition, m.Value)
		}
	}

	return ctx.d.Edit().SetTerm(m.Node, m.Term, diagram.Constant(m.Value)).Build()
}

// RetargetRegister moves a Reference or Free term from its current register
// to Register. A Reference retarget is valid if both registers are bound to
// equal values in every incoming snapshot (provably interchangeable); a
// Free retarget rewrites which register the term binds, so it demands
// unchanged outgoing snapshot sets.
type RetargetRegister struct {
	Node     diagram.NodeID
	Term     int
	Register int
}

// Neutral reports that RetargetRegister preserves behavior when accepted.
func (RetargetRegister) Neutral() bool { return true }

func (m RetargetRegister) apply(ctx *Context) (*diagram.Diagram, error) {
	t, err := termAt(ctx.d, m.Node, m.Term)
	if err != nil {
		return nil, err
	}
	switch t.Kind {
	case diagram.TermReference:
		if !ctx.everySnapshotAgrees(m.Node, t.Register, m.Register) {
			return nil, fmt.Errorf("%w: registers %d and %d are not interchangeable", ErrPrecondition, t.Register, m.Register)
		}
		return ctx.d.Edit().SetTerm(m.Node, m.Term, diagram.Reference(m.Register)).Build()
	case diagram.TermFree:
		repl := ctx.d.Node(m.Node).Clone()
		repl.Pattern.Terms[m.Term] = diagram.Free(m.Register)
		if !ctx.outgoingUnchanged(m.Node, repl) {
			return nil, fmt.Errorf("%w: register write to %d changes outgoing snapshots", ErrPrecondition, m.Register)
		}
		return ctx.d.Edit().SetNode(m.Node, repl).Build()
	default:
		return nil, fmt.Errorf("%w: node %d term %d is a constant", ErrBadTarget, m.Node, m.Term)
	}
}

// SpliceEdge inserts a pass-through branch on Edge: an all-constant pattern
// copied from Guard, with both children pointing at the edge's original
// target. The node writes no registers and forwards every snapshot whether
// or not Guard's values match, so the target's incoming set is preserved —
// provided Guard's predicate has at least one candidate fact in every
// context input (an empty predicate would forward nothing).
type SpliceEdge struct {
	Edge  diagram.Edge
	Guard fact.Fact
}

// Neutral reports that SpliceEdge preserves behavior when accepted.
func (SpliceEdge) Neutral() bool { return true }

func (m SpliceEdge) apply(ctx *Context) (*diagram.Diagram, error) {
	if m.Edge.Kind != diagram.EdgeRoot && !ctx.d.Contains(m.Edge.Source) {
		return nil, fmt.Errorf("%w: edge source %d", ErrBadTarget, m.Edge.Source)
	}
	target := ctx.d.Target(m.Edge)
	if target == diagram.NoNode {
		return nil, fmt.Errorf("%w: cannot splice an absent edge", ErrBadTarget)
	}
	if !ctx.predicateAlwaysPopulated(m.Guard.Predicate) {
		return nil, fmt.Errorf("%w: guard predicate has no candidate facts in some input", ErrPrecondition)
	}
	e := ctx.d.Edit()
	id := e.Append(diagram.Branch(constantPattern(m.Guard), target, target))
	e.SetEdge(m.Edge, id)

	return e.Build()
}

// CollapseNode removes a pass-through branch (all-constant pattern, both
// children on one shared target), reconnecting every parent directly to the
// target. Exact inverse of SpliceEdge.
type CollapseNode struct {
	Node diagram.NodeID
}

// Neutral reports that CollapseNode preserves behavior when accepted.
func (CollapseNode) Neutral() bool { return true }

func (m CollapseNode) apply(ctx *Context) (*diagram.Diagram, error) {
	if !ctx.d.Contains(m.Node) {
		return nil, fmt.Errorf("%w: node %d", ErrBadTarget, m.Node)
	}
	n := ctx.d.Node(m.Node)
	if n.Kind != diagram.KindBranch || n.Match == diagram.NoNode || n.Match != n.Refute || n.Match == m.Node {
		return nil, fmt.Errorf("%w: node %d is not a pass-through", ErrBadTarget, m.Node)
	}
	for _, t := range n.Pattern.Terms {
		if t.Kind != diagram.TermConstant {
			return nil, fmt.Errorf("%w: node %d writes or reads registers", ErrBadTarget, m.Node)
		}
	}
	if !ctx.predicateAlwaysPopulated(n.Pattern.Predicate) {
		return nil, fmt.Errorf("%w: pass-through blocks some input; removal would change behavior", ErrPrecondition)
	}
	e := ctx.d.Edit()
	for _, parent := range ctx.d.Parents(m.Node) {
		e.SetEdge(parent, n.Match)
	}
	e.Remove(m.Node)

	return e.Build()
}

// DuplicateNode splits the shared target of Parent's match and refute edges
// into two structurally identical nodes: the refute edge moves to a fresh
// copy that keeps the same children. Unconditionally neutral — the copy
// receives exactly the snapshots the original received along the refute
// edge, and routes them identically.
type DuplicateNode struct {
	Parent diagram.NodeID
}

// Neutral reports that DuplicateNode preserves behavior.
func (DuplicateNode) Neutral() bool { return true }

func (m DuplicateNode) apply(ctx *Context) (*diagram.Diagram, error) {
	if !ctx.d.Contains(m.Parent) {
		return nil, fmt.Errorf("%w: node %d", ErrBadTarget, m.Parent)
	}
	p := ctx.d.Node(m.Parent)
	if p.Kind != diagram.KindBranch || p.Match == diagram.NoNode || p.Match != p.Refute {
		return nil, fmt.Errorf("%w: node %d does not share one target on both edges", ErrBadTarget, m.Parent)
	}
	e := ctx.d.Edit()
	copyID := e.Append(ctx.d.Node(p.Match))
	e.SetEdge(diagram.RefuteEdge(m.Parent), copyID)

	return e.Build()
}

// MergeNodes folds the two structurally identical nodes Parent's match and
// refute edges point at back into one: every edge into the refute target is
// redirected to the match target and the duplicate is removed. Exact
// inverse of DuplicateNode.
type MergeNodes struct {
	Parent diagram.NodeID
}

// Neutral reports that MergeNodes preserves behavior.
func (MergeNodes) Neutral() bool { return true }

func (m MergeNodes) apply(ctx *Context) (*diagram.Diagram, error) {
	if !ctx.d.Contains(m.Parent) {
		return nil, fmt.Errorf("%w: node %d", ErrBadTarget, m.Parent)
	}
	p := ctx.d.Node(m.Parent)
	if p.Kind != diagram.KindBranch || p.Match == diagram.NoNode || p.Refute == diagram.NoNode || p.Match == p.Refute {
		return nil, fmt.Errorf("%w: node %d does not have two distinct targets", ErrBadTarget, m.Parent)
	}
	keep, drop := p.Match, p.Refute
	if !ctx.d.Node(keep).Equal(ctx.d.Node(drop)) {
		return nil, fmt.Errorf("%w: targets of node %d are not structurally identical", ErrBadTarget, m.Parent)
	}
	e := ctx.d.Edit()
	for _, parent := range ctx.d.Parents(drop) {
		e.SetEdge(parent, keep)
	}
	e.Remove(drop)

	return e.Build()
}

// RedirectEdge points Edge at Target. Behavior-changing; only the resulting
// diagram's well-formedness is checked. Target may be NoNode to detach a
// match or refute edge.
type RedirectEdge struct {
	Edge   diagram.Edge
	Target diagram.NodeID
}

// Neutral reports that RedirectEdge may change behavior.
func (RedirectEdge) Neutral() bool { return false }

func (m RedirectEdge) apply(ctx *Context) (*diagram.Diagram, error) {
	if m.Edge.Kind != diagram.EdgeRoot && !ctx.d.Contains(m.Edge.Source) {
		return nil, fmt.Errorf("%w: edge source %d", ErrBadTarget, m.Edge.Source)
	}

	return ctx.d.Edit().SetEdge(m.Edge, m.Target).Build()
}

// ReplaceTerm substitutes one pattern term wholesale. Behavior-changing.
type ReplaceTerm struct {
	Node diagram.NodeID
	Term int
	With diagram.Term
}

// Neutral reports that ReplaceTerm may change behavior.
func (ReplaceTerm) Neutral() bool { return false }

func (m ReplaceTerm) apply(ctx *Context) (*diagram.Diagram, error) {
	if _, err := termAt(ctx.d, m.Node, m.Term); err != nil {
		return nil, err
	}

	return ctx.d.Edit().SetTerm(m.Node, m.Term, m.With).Build()
}

// ReplacePredicate swaps a pattern's predicate, keeping its terms. The new
// predicate's arity must match the term count for the edit to build.
// Behavior-changing.
type ReplacePredicate struct {
	Node      diagram.NodeID
	Predicate fact.Predicate
}

// Neutral reports that ReplacePredicate may change behavior.
func (ReplacePredicate) Neutral() bool { return false }

func (m ReplacePredicate) apply(ctx *Context) (*diagram.Diagram, error) {
	if !ctx.d.Contains(m.Node) {
		return nil, fmt.Errorf("%w: node %d", ErrBadTarget, m.Node)
	}
	pat := ctx.d.Node(m.Node).Pattern.Clone()
	pat.Predicate = m.Predicate

	return ctx.d.Edit().SetPredicate(m.Node, pat).Build()
}

// InsertGuardedOutput prepends a guard chain at the root: all-constant
// branches testing Guards in order (refute edges fall through to the old
// root), whose final match edge reaches the Outputs. A single output is
// reached directly, several via a fan-out spine of Spine-guard branches,
// and an empty Outputs leaves the final match edge unset so the guarded
// input derives nothing. The analysis module synthesizes these as the
// constructive escape from local optima; structurally the mutation is
// behavior-changing and carries no snapshot precondition.
type InsertGuardedOutput struct {
	Guards  []fact.Fact
	Spine   fact.Fact // fan-out pivot; required when len(Outputs) > 1
	Outputs []fact.Fact
}

// Neutral reports that InsertGuardedOutput changes behavior.
func (InsertGuardedOutput) Neutral() bool { return false }

func (m InsertGuardedOutput) apply(ctx *Context) (*diagram.Diagram, error) {
	if len(m.Guards) == 0 {
		return nil, fmt.Errorf("%w: guarded output needs at least one guard", ErrBadTarget)
	}
	oldRoot := ctx.d.Root()
	e := ctx.d.Edit()

	leaves := make([]diagram.NodeID, len(m.Outputs))
	for i, out := range m.Outputs {
		leaves[i] = e.Append(diagram.Leaf(constantPattern(out)))
	}
	entry := diagram.NoNode
	if len(m.Outputs) > 0 {
		entry = leaves[0]
	}
	if len(m.Outputs) > 1 {
		// Spine nodes run back to front so each refute edge advances to the
		// next output's branch.
		next := diagram.NoNode
		for j := len(m.Outputs) - 1; j >= 0; j-- {
			next = e.Append(diagram.Branch(constantPattern(m.Spine), leaves[j], next))
		}
		entry = next
	}
	for i := len(m.Guards) - 1; i >= 0; i-- {
		entry = e.Append(diagram.Branch(constantPattern(m.Guards[i]), entry, oldRoot))
	}
	e.SetEdge(diagram.RootEdge(), entry)

	return e.Build()
}

// constantPattern lifts a fully-bound fact into an all-constant pattern.
func constantPattern(f fact.Fact) diagram.Pattern {
	terms := make([]diagram.Term, len(f.Values))
	for i, v := range f.Values {
		terms[i] = diagram.Constant(v)
	}

	return diagram.NewPattern(f.Predicate, terms...)
}

// termAt fetches the term at (id, index), rejecting out-of-range targets.
func termAt(d *diagram.Diagram, id diagram.NodeID, index int) (diagram.Term, error) {
	if !d.Contains(id) {
		return diagram.Term{}, fmt.Errorf("%w: node %d", ErrBadTarget, id)
	}
	terms := d.Node(id).Pattern.Terms
	if index < 0 || index >= len(terms) {
		return diagram.Term{}, fmt.Errorf("%w: node %d term %d", ErrBadTarget, id, index)
	}

	return terms[index], nil
}
