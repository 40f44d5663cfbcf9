// Package eval implements round-based snapshot propagation over a rule
// diagram: Evaluate and SnapshotSets.
package eval

import (
	"fmt"

	"github.com/zentner-kyle/match-diagram/diagram"
	"github.com/zentner-kyle/match-diagram/fact"
)

// Result is one finished evaluation: the per-node accumulated incoming
// snapshot sets, the emitted output facts, and the number of rounds taken
// to reach fixpoint.
type Result struct {
	// Incoming holds, per NodeID, every snapshot that reached the node.
	Incoming []*SnapshotSet

	// Output is the set of facts emitted by leaves.
	Output *fact.Database

	// Rounds is the number of propagation rounds run before fixpoint.
	Rounds int
}

// Evaluate runs input through d and returns the emitted facts.
// Returns ErrNonTerminating if d fails to stabilize within the round
// ceiling, or ErrOptionViolation for a bad option.
func Evaluate(d *diagram.Diagram, input *fact.Database, opts ...Option) (*fact.Database, error) {
	res, err := SnapshotSets(d, input, opts...)
	if err != nil {
		return nil, err
	}

	return res.Output, nil
}

// SnapshotSets runs input through d and returns the full Result, incoming
// snapshot sets included. The mutation engine checks rewrite preconditions
// against these sets.
func SnapshotSets(d *diagram.Diagram, input *fact.Database, opts ...Option) (*Result, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	registers := d.MaxRegister() + 1
	res := &Result{
		Incoming: make([]*SnapshotSet, d.Size()),
		Output:   fact.NewDatabase(),
	}
	for i := range res.Incoming {
		res.Incoming[i] = NewSnapshotSet()
	}
	res.Incoming[d.Root()].Add(NewSnapshot(registers))

	for round := 0; ; round++ {
		if round >= o.RoundLimit {
			return nil, fmt.Errorf("%w: %d rounds", ErrNonTerminating, o.RoundLimit)
		}
		if !propagateRound(d, input, res) {
			res.Rounds = round + 1
			return res, nil
		}
	}
}

// propagateRound pushes every node's current incoming set one step and
// reports whether any incoming set grew. Emission into the output database
// is idempotent, so re-deriving the same facts across rounds is harmless.
func propagateRound(d *diagram.Diagram, input *fact.Database, res *Result) bool {
	grew := false
	for i := 0; i < d.Size(); i++ {
		id := diagram.NodeID(i)
		in := res.Incoming[id]
		if in.Len() == 0 {
			continue
		}
		n := d.Node(id)
		if n.Kind == diagram.KindLeaf {
			for _, snap := range in.Snapshots() {
				res.Output.Insert(Instantiate(n.Pattern, snap))
			}
			continue
		}
		matchSet, refuteSet := PropagateNode(n, input, in)
		if n.Match != diagram.NoNode {
			for _, snap := range matchSet.Snapshots() {
				grew = res.Incoming[n.Match].Add(snap) || grew
			}
		}
		if n.Refute != diagram.NoNode {
			for _, snap := range refuteSet.Snapshots() {
				grew = res.Incoming[n.Refute].Add(snap) || grew
			}
		}
	}

	return grew
}

// PropagateNode unifies every (snapshot, candidate fact) pair at one branch
// node and returns the produced (match, refute) snapshot sets. Exposed so
// the mutation engine can recompute a single node's outgoing sets when
// checking neutrality preconditions.
func PropagateNode(n diagram.Node, input *fact.Database, in *SnapshotSet) (match, refute *SnapshotSet) {
	match, refute = NewSnapshotSet(), NewSnapshotSet()
	for _, snap := range in.Snapshots() {
		for _, f := range input.Facts(n.Pattern.Predicate) {
			if extended, ok := Unify(n.Pattern, f, snap); ok {
				match.Add(extended)
			} else {
				refute.Add(snap)
			}
		}
	}

	return match, refute
}

// Unify matches f's values against pattern under snap. On success it
// returns snap extended by every Free binding; on failure it returns snap
// unchanged and false. References resolve against the incoming snapshot
// only; Free writes accumulate separately and become visible on the match
// edge, never to terms of the same pattern.
func Unify(pattern diagram.Pattern, f fact.Fact, snap Snapshot) (Snapshot, bool) {
	out := snap
	for i, t := range pattern.Terms {
		v := f.Values[i]
		switch t.Kind {
		case diagram.TermConstant:
			if t.Value != v {
				return snap, false
			}
		case diagram.TermReference:
			b, ok := snap.Lookup(t.Register)
			if !ok || b != v {
				return snap, false
			}
		case diagram.TermFree:
			out = out.Bind(t.Register, v)
		}
	}

	return out, true
}

// Instantiate fills a leaf's output template from snap. References are
// bound on every path reaching a leaf (construction invariant), so Lookup
// cannot miss here.
func Instantiate(pattern diagram.Pattern, snap Snapshot) fact.Fact {
	values := make([]fact.Value, len(pattern.Terms))
	for i, t := range pattern.Terms {
		if t.Kind == diagram.TermConstant {
			values[i] = t.Value
			continue
		}
		v, _ := snap.Lookup(t.Register)
		values[i] = v
	}

	return fact.Fact{Predicate: pattern.Predicate, Values: values}
}
