// Package mutate declares the mutation Spec variants, the evaluation
// Context they are validated against, and the package's sentinel errors.
package mutate

import (
	"errors"
	"fmt"

	"github.com/zentner-kyle/match-diagram/diagram"
	"github.com/zentner-kyle/match-diagram/eval"
	"github.com/zentner-kyle/match-diagram/fact"
)

// Sentinel errors for mutation application.
var (
	// ErrInvalidMutation wraps every reason Apply can reject a mutation.
	ErrInvalidMutation = errors.New("mutate: invalid mutation")

	// ErrPrecondition indicates a neutral mutation whose validity predicate
	// does not hold for the context's snapshot sets.
	ErrPrecondition = errors.New("mutate: neutrality precondition failed")

	// ErrBadTarget indicates a mutation aimed at a node, term, or edge that
	// does not exist or has the wrong shape.
	ErrBadTarget = errors.New("mutate: mutation target does not fit diagram")
)

// Spec describes one mutation. The set of implementations is closed: every
// variant lives in this package, mirroring the rewrite taxonomy.
type Spec interface {
	// Neutral reports whether the mutation is guaranteed to preserve the
	// diagram's observable behavior on the context's inputs when accepted.
	Neutral() bool

	// apply validates and performs the mutation copy-on-write.
	apply(ctx *Context) (*diagram.Diagram, error)
}

// Context pairs a diagram with the example inputs and evaluator results the
// neutral preconditions quantify over. Behavior-changing mutations may use
// a context with no inputs.
type Context struct {
	d       *diagram.Diagram
	inputs  []*fact.Database
	results []*eval.Result
}

// NewContext evaluates d against every input and captures the snapshot
// sets. Returns the evaluator's error (including ErrNonTerminating) if any
// input fails to stabilize: a diagram that cannot be evaluated cannot have
// neutral mutations validated against it.
func NewContext(d *diagram.Diagram, inputs []*fact.Database, opts ...eval.Option) (*Context, error) {
	ctx := &Context{d: d, inputs: inputs}
	for _, in := range inputs {
		res, err := eval.SnapshotSets(d, in, opts...)
		if err != nil {
			return nil, err
		}
		ctx.results = append(ctx.results, res)
	}

	return ctx, nil
}

// Diagram returns the diagram this context was built for.
func (ctx *Context) Diagram() *diagram.Diagram { return ctx.d }

// Apply validates s against ctx and returns the mutated diagram. The
// context's diagram is untouched; rejections wrap ErrInvalidMutation and
// are never partially applied.
func Apply(ctx *Context, s Spec) (*diagram.Diagram, error) {
	d, err := s.apply(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMutation, err)
	}

	return d, nil
}

// incoming returns the accumulated incoming snapshot sets at id, one per
// context input.
func (ctx *Context) incoming(id diagram.NodeID) []*eval.SnapshotSet {
	sets := make([]*eval.SnapshotSet, len(ctx.results))
	for i, res := range ctx.results {
		sets[i] = res.Incoming[id]
	}

	return sets
}

// everySnapshotBinds reports whether register r is bound to v in every
// incoming snapshot at id, across all context inputs.
func (ctx *Context) everySnapshotBinds(id diagram.NodeID, r int, v fact.Value) bool {
	for _, set := range ctx.incoming(id) {
		for _, snap := range set.Snapshots() {
			got, ok := snap.Lookup(r)
			if !ok || got != v {
				return false
			}
		}
	}

	return true
}

// everySnapshotAgrees reports whether registers r and r2 are both bound and
// equal in every incoming snapshot at id, across all context inputs.
func (ctx *Context) everySnapshotAgrees(id diagram.NodeID, r, r2 int) bool {
	for _, set := range ctx.incoming(id) {
		for _, snap := range set.Snapshots() {
			a, okA := snap.Lookup(r)
			b, okB := snap.Lookup(r2)
			if !okA || !okB || a != b {
				return false
			}
		}
	}

	return true
}

// outgoingUnchanged reports whether replacing the node at id with repl
// leaves the node's outgoing behavior identical on every context input:
// for branches the recomputed (match, refute) snapshot sets, for leaves the
// instantiated fact sets.
func (ctx *Context) outgoingUnchanged(id diagram.NodeID, repl diagram.Node) bool {
	cur := ctx.d.Node(id)
	if cur.Kind != repl.Kind {
		return false
	}
	for i, res := range ctx.results {
		in := res.Incoming[id]
		if cur.Kind == diagram.KindLeaf {
			if !sameEmissions(cur, repl, in) {
				return false
			}
			continue
		}
		m0, r0 := eval.PropagateNode(cur, ctx.inputs[i], in)
		m1, r1 := eval.PropagateNode(repl, ctx.inputs[i], in)
		if !m0.Equal(m1) || !r0.Equal(r1) {
			return false
		}
	}

	return true
}

// sameEmissions compares two leaf templates' instantiations over one
// incoming snapshot set.
func sameEmissions(a, b diagram.Node, in *eval.SnapshotSet) bool {
	da, db := fact.NewDatabase(), fact.NewDatabase()
	for _, snap := range in.Snapshots() {
		da.Insert(eval.Instantiate(a.Pattern, snap))
		db.Insert(eval.Instantiate(b.Pattern, snap))
	}

	return da.Equal(db)
}

// predicateAlwaysPopulated reports whether p has at least one candidate
// fact in every context input. Pass-through nodes forward snapshots only
// when a candidate fact exists, so splice and collapse hinge on this.
func (ctx *Context) predicateAlwaysPopulated(p fact.Predicate) bool {
	if len(ctx.inputs) == 0 {
		return false
	}
	for _, in := range ctx.inputs {
		if len(in.Facts(p)) == 0 {
			return false
		}
	}

	return true
}
