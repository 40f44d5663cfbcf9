package mutate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zentner-kyle/match-diagram/diagram"
	"github.com/zentner-kyle/match-diagram/eval"
	"github.com/zentner-kyle/match-diagram/fact"
	"github.com/zentner-kyle/match-diagram/mutate"
)

// fixture: f/2 and g/2 as inputs, out/1 as output, and the chain
//
//	n0: f(%0 <- _, %1 <- _) {n1} {}
//	n1: f(%0, :b) {n2} {}
//	n2: output out(%0)
//
// so at n1 every snapshot binds %0=a and %1=b under the input {f(a,b)}.
type fixture struct {
	registry *fact.Registry
	f, g, on fact.Predicate
	a, b, c  fact.Value
	d        *diagram.Diagram
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	r, err := fact.NewRegistry([]fact.Decl{
		{Name: "f", Arity: 2, Role: fact.RoleInput},
		{Name: "g", Arity: 2, Role: fact.RoleInput},
		{Name: "out", Arity: 1, Role: fact.RoleOutput},
	})
	require.NoError(t, err)
	fx := &fixture{registry: r, a: 0, b: 1, c: 2}
	fx.f, _ = r.Lookup("f")
	fx.g, _ = r.Lookup("g")
	fx.on, _ = r.Lookup("out")

	nodes := []diagram.Node{
		diagram.Branch(diagram.NewPattern(fx.f, diagram.Free(0), diagram.Free(1)), 1, diagram.NoNode),
		diagram.Branch(diagram.NewPattern(fx.f, diagram.Reference(0), diagram.Constant(fx.b)), 2, diagram.NoNode),
		diagram.Leaf(diagram.NewPattern(fx.on, diagram.Reference(0))),
	}
	fx.d, err = diagram.Construct(nodes, 0, r)
	require.NoError(t, err)

	return fx
}

func (fx *fixture) fact(t *testing.T, p fact.Predicate, vs ...fact.Value) fact.Fact {
	t.Helper()
	f, err := fx.registry.NewFact(p, vs...)
	require.NoError(t, err)

	return f
}

func (fx *fixture) context(t *testing.T, inputs ...*fact.Database) *mutate.Context {
	t.Helper()
	ctx, err := mutate.NewContext(fx.d, inputs)
	require.NoError(t, err)

	return ctx
}

// assertNeutral applies s and verifies evaluation is unchanged on every
// context input.
func assertNeutral(t *testing.T, ctx *mutate.Context, s mutate.Spec, inputs ...*fact.Database) *diagram.Diagram {
	t.Helper()
	require.True(t, s.Neutral(), "spec under test claims neutrality")
	mutated, err := mutate.Apply(ctx, s)
	require.NoError(t, err, "precondition holds, mutation must apply")
	for _, in := range inputs {
		before, err := eval.Evaluate(ctx.Diagram(), in)
		require.NoError(t, err)
		after, err := eval.Evaluate(mutated, in)
		require.NoError(t, err)
		assert.True(t, before.Equal(after), "neutral mutation changed evaluation")
	}

	return mutated
}

// TestSetTermReference_SwapAndReject: the constant→register swap applies
// exactly when the register always carries the constant's value.
func TestSetTermReference_SwapAndReject(t *testing.T) {
	fx := newFixture(t)
	input := fact.NewDatabase(fx.fact(t, fx.f, fx.a, fx.b))
	ctx := fx.context(t, input)

	assertNeutral(t, ctx, mutate.SetTermReference{Node: 1, Term: 1, Register: 1}, input)

	_, err := mutate.Apply(ctx, mutate.SetTermReference{Node: 1, Term: 1, Register: 0})
	assert.ErrorIs(t, err, mutate.ErrInvalidMutation, "register 0 carries a, not b")
	assert.ErrorIs(t, err, mutate.ErrPrecondition)

	_, err = mutate.Apply(ctx, mutate.SetTermReference{Node: 0, Term: 0, Register: 1})
	assert.ErrorIs(t, err, mutate.ErrBadTarget, "only constants can swap to references")
}

// TestSetTermConstant_ReferenceDirection: the register→constant swap reads
// the snapshot sets, and rejects a constant the register never carries.
func TestSetTermConstant_ReferenceDirection(t *testing.T) {
	fx := newFixture(t)
	input := fact.NewDatabase(fx.fact(t, fx.f, fx.a, fx.b))
	ctx := fx.context(t, input)

	assertNeutral(t, ctx, mutate.SetTermConstant{Node: 1, Term: 0, Value: fx.a}, input)

	_, err := mutate.Apply(ctx, mutate.SetTermConstant{Node: 1, Term: 0, Value: fx.b})
	assert.ErrorIs(t, err, mutate.ErrPrecondition, "register 0 never carries b")
}

// TestSetTermConstant_Substitution: swapping one never-matching constant
// for another keeps the outgoing sets; swapping to a matching one does not.
func TestSetTermConstant_Substitution(t *testing.T) {
	fx := newFixture(t)
	nodes := []diagram.Node{
		diagram.Branch(diagram.NewPattern(fx.f, diagram.Constant(fx.c), diagram.Free(0)), 1, 1),
		diagram.Leaf(diagram.NewPattern(fx.on, diagram.Constant(fx.a))),
	}
	d, err := diagram.Construct(nodes, 0, fx.registry)
	require.NoError(t, err)
	fx.d = d
	input := fact.NewDatabase(fx.fact(t, fx.f, fx.a, fx.b))
	ctx := fx.context(t, input)

	// c and the fresh value 9 both match nothing: outgoing sets identical.
	assertNeutral(t, ctx, mutate.SetTermConstant{Node: 0, Term: 0, Value: 9}, input)

	_, err = mutate.Apply(ctx, mutate.SetTermConstant{Node: 0, Term: 0, Value: fx.a})
	assert.ErrorIs(t, err, mutate.ErrPrecondition, "a would start matching f(a,b)")
}

// TestSetTermFree_RebindSameValue: freeing a constant is neutral when the
// register it writes already holds the matched value.
func TestSetTermFree_RebindSameValue(t *testing.T) {
	fx := newFixture(t)
	input := fact.NewDatabase(fx.fact(t, fx.f, fx.a, fx.b))
	ctx := fx.context(t, input)

	assertNeutral(t, ctx, mutate.SetTermFree{Node: 1, Term: 1, Register: 1}, input)

	_, err := mutate.Apply(ctx, mutate.SetTermFree{Node: 1, Term: 1, Register: 2})
	assert.ErrorIs(t, err, mutate.ErrPrecondition, "writing a fresh register extends the snapshots")
}

// TestRetargetRegister_ReferenceCase: retargeting a Reference needs both
// registers provably equal in every snapshot.
func TestRetargetRegister_ReferenceCase(t *testing.T) {
	fx := newFixture(t)

	diagonal := fact.NewDatabase(fx.fact(t, fx.f, fx.a, fx.a))
	ctx := fx.context(t, diagonal)
	assertNeutral(t, ctx, mutate.RetargetRegister{Node: 1, Term: 0, Register: 1}, diagonal)

	skew := fact.NewDatabase(fx.fact(t, fx.f, fx.a, fx.b))
	ctx = fx.context(t, skew)
	_, err := mutate.Apply(ctx, mutate.RetargetRegister{Node: 1, Term: 0, Register: 1})
	assert.ErrorIs(t, err, mutate.ErrPrecondition, "registers 0 and 1 disagree under f(a,b)")

	_, err = mutate.Apply(ctx, mutate.RetargetRegister{Node: 1, Term: 1, Register: 0})
	assert.ErrorIs(t, err, mutate.ErrBadTarget, "constants carry no register to retarget")
}

// TestRetargetRegister_FreeCase: moving a register write is rejected when
// downstream snapshots would differ.
func TestRetargetRegister_FreeCase(t *testing.T) {
	fx := newFixture(t)
	input := fact.NewDatabase(fx.fact(t, fx.f, fx.a, fx.b))
	ctx := fx.context(t, input)

	_, err := mutate.Apply(ctx, mutate.RetargetRegister{Node: 0, Term: 0, Register: 2})
	assert.ErrorIs(t, err, mutate.ErrPrecondition, "the write moves to an unused register")
}

// TestSpliceCollapse_InverseLaw: collapse(splice(D, e)) == D structurally.
func TestSpliceCollapse_InverseLaw(t *testing.T) {
	fx := newFixture(t)
	input := fact.NewDatabase(fx.fact(t, fx.f, fx.a, fx.b))
	guard := fx.fact(t, fx.f, fx.a, fx.b)

	for _, edge := range []diagram.Edge{diagram.RootEdge(), diagram.MatchEdge(0), diagram.MatchEdge(1)} {
		ctx := fx.context(t, input)
		spliced := assertNeutral(t, ctx, mutate.SpliceEdge{Edge: edge, Guard: guard}, input)
		require.Equal(t, fx.d.Size()+1, spliced.Size(), "splice appends one node")

		ctx2, err := mutate.NewContext(spliced, []*fact.Database{input})
		require.NoError(t, err)
		restored := assertNeutral(t, ctx2, mutate.CollapseNode{Node: diagram.NodeID(spliced.Size() - 1)}, input)
		assert.True(t, fx.d.Equal(restored), "collapse undoes splice exactly")
	}
}

// TestSpliceEdge_NeedsPopulatedPredicate: a pass-through on an empty
// predicate would forward nothing, so the splice is rejected.
func TestSpliceEdge_NeedsPopulatedPredicate(t *testing.T) {
	fx := newFixture(t)
	input := fact.NewDatabase(fx.fact(t, fx.f, fx.a, fx.b))
	ctx := fx.context(t, input)

	_, err := mutate.Apply(ctx, mutate.SpliceEdge{
		Edge:  diagram.RootEdge(),
		Guard: fx.fact(t, fx.g, fx.a, fx.b),
	})
	assert.ErrorIs(t, err, mutate.ErrPrecondition, "no g facts in the input")
}

// TestDuplicateMerge_InverseLaw: merge(duplicate(D, parent)) == D.
func TestDuplicateMerge_InverseLaw(t *testing.T) {
	fx := newFixture(t)
	nodes := []diagram.Node{
		diagram.Branch(diagram.NewPattern(fx.f, diagram.Free(0), diagram.Free(1)), 1, 1),
		diagram.Leaf(diagram.NewPattern(fx.on, diagram.Constant(fx.a))),
	}
	d, err := diagram.Construct(nodes, 0, fx.registry)
	require.NoError(t, err)
	fx.d = d
	input := fact.NewDatabase(fx.fact(t, fx.f, fx.a, fx.b))

	ctx := fx.context(t, input)
	split := assertNeutral(t, ctx, mutate.DuplicateNode{Parent: 0}, input)
	require.Equal(t, 3, split.Size(), "duplication appends the copy")
	assert.NotEqual(t, split.Target(diagram.MatchEdge(0)), split.Target(diagram.RefuteEdge(0)),
		"the refute edge moves to the copy")

	ctx2, err := mutate.NewContext(split, []*fact.Database{input})
	require.NoError(t, err)
	restored := assertNeutral(t, ctx2, mutate.MergeNodes{Parent: 0}, input)
	assert.True(t, d.Equal(restored), "merge undoes duplication exactly")
}

// TestMergeNodes_RequiresIdenticalTargets: distinct children block merging.
func TestMergeNodes_RequiresIdenticalTargets(t *testing.T) {
	fx := newFixture(t)
	nodes := []diagram.Node{
		diagram.Branch(diagram.NewPattern(fx.f, diagram.Free(0), diagram.Free(1)), 1, 2),
		diagram.Leaf(diagram.NewPattern(fx.on, diagram.Constant(fx.a))),
		diagram.Leaf(diagram.NewPattern(fx.on, diagram.Constant(fx.b))),
	}
	d, err := diagram.Construct(nodes, 0, fx.registry)
	require.NoError(t, err)
	fx.d = d
	ctx := fx.context(t, fact.NewDatabase(fx.fact(t, fx.f, fx.a, fx.b)))

	_, err = mutate.Apply(ctx, mutate.MergeNodes{Parent: 0})
	assert.ErrorIs(t, err, mutate.ErrBadTarget, "the two leaves emit different facts")
}

// TestRedirectEdge_BehaviorChanging: redirection needs only a well-formed
// result; breaking the binding discipline is rejected wholesale.
func TestRedirectEdge_BehaviorChanging(t *testing.T) {
	fx := newFixture(t)
	input := fact.NewDatabase(fx.fact(t, fx.f, fx.a, fx.b))
	ctx := fx.context(t, input)

	spec := mutate.RedirectEdge{Edge: diagram.MatchEdge(1), Target: diagram.NoNode}
	assert.False(t, spec.Neutral())
	mutated, err := mutate.Apply(ctx, spec)
	require.NoError(t, err)
	out, err := eval.Evaluate(mutated, input)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len(), "detaching the leaf silences the diagram")

	_, err = mutate.Apply(ctx, mutate.RedirectEdge{Edge: diagram.RootEdge(), Target: 2})
	assert.ErrorIs(t, err, mutate.ErrInvalidMutation)
	assert.ErrorIs(t, err, diagram.ErrUnboundReference, "the leaf reads %0 which the root cannot bind")
}

// TestReplaceTermAndPredicate: wholesale rewrites validate only structure.
func TestReplaceTermAndPredicate(t *testing.T) {
	fx := newFixture(t)
	input := fact.NewDatabase(fx.fact(t, fx.f, fx.a, fx.b))
	ctx := fx.context(t, input)

	mutated, err := mutate.Apply(ctx, mutate.ReplaceTerm{Node: 1, Term: 1, With: diagram.Constant(fx.c)})
	require.NoError(t, err)
	out, err := eval.Evaluate(mutated, input)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len(), "f(a,c) matches nothing, so nothing is derived")

	mutated, err = mutate.Apply(ctx, mutate.ReplacePredicate{Node: 1, Predicate: fx.g})
	require.NoError(t, err)
	out, err = eval.Evaluate(mutated, input)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len(), "no g facts reach the rewritten branch")

	_, err = mutate.Apply(ctx, mutate.ReplacePredicate{Node: 1, Predicate: fx.on})
	assert.ErrorIs(t, err, diagram.ErrArityMismatch, "out/1 cannot carry two terms")
}

// TestInsertGuardedOutput_SingleAndFanOut: the escape insertion emits the
// requested outputs behind its guard and preserves the refute fall-through.
func TestInsertGuardedOutput_SingleAndFanOut(t *testing.T) {
	fx := newFixture(t)
	input := fact.NewDatabase(fx.fact(t, fx.f, fx.a, fx.b))
	ctx := fx.context(t, input)

	single := mutate.InsertGuardedOutput{
		Guards:  []fact.Fact{fx.fact(t, fx.f, fx.a, fx.b)},
		Outputs: []fact.Fact{fx.fact(t, fx.on, fx.c)},
	}
	assert.False(t, single.Neutral())
	mutated, err := mutate.Apply(ctx, single)
	require.NoError(t, err)
	out, err := eval.Evaluate(mutated, input)
	require.NoError(t, err)
	assert.True(t, out.Equal(fact.NewDatabase(fx.fact(t, fx.on, fx.c))),
		"the guard is the input's only f fact, so the old root never runs")

	// Fan-out needs a refuting sibling to advance the spine.
	wide := fact.NewDatabase(fx.fact(t, fx.f, fx.a, fx.b), fx.fact(t, fx.f, fx.b, fx.c))
	ctx = fx.context(t, wide)
	fan := mutate.InsertGuardedOutput{
		Guards:  []fact.Fact{fx.fact(t, fx.f, fx.a, fx.b)},
		Spine:   fx.fact(t, fx.f, fx.a, fx.b),
		Outputs: []fact.Fact{fx.fact(t, fx.on, fx.b), fx.fact(t, fx.on, fx.c)},
	}
	mutated, err = mutate.Apply(ctx, fan)
	require.NoError(t, err)
	out, err = eval.Evaluate(mutated, wide)
	require.NoError(t, err)
	assert.True(t, out.Contains(fx.fact(t, fx.on, fx.b)), "first spine arm emits")
	assert.True(t, out.Contains(fx.fact(t, fx.on, fx.c)), "the refuting sibling advances to the second arm")

	_, err = mutate.Apply(ctx, mutate.InsertGuardedOutput{Guards: nil, Outputs: fan.Outputs})
	assert.ErrorIs(t, err, mutate.ErrBadTarget, "at least one guard is required")
}

// TestInsertGuardedOutput_EmptyOutputs: a guard with no outputs silences
// the guarded input while the refute fall-through keeps every other input's
// behavior.
func TestInsertGuardedOutput_EmptyOutputs(t *testing.T) {
	fx := newFixture(t)
	guarded := fact.NewDatabase(fx.fact(t, fx.f, fx.a, fx.b))
	other := fact.NewDatabase(fx.fact(t, fx.f, fx.b, fx.b))
	ctx := fx.context(t, guarded, other)

	mutated, err := mutate.Apply(ctx, mutate.InsertGuardedOutput{
		Guards: []fact.Fact{fx.fact(t, fx.f, fx.a, fx.b)},
	})
	require.NoError(t, err)

	out, err := eval.Evaluate(mutated, guarded)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len(),
		"the matched guard has no match child, so the guarded input derives nothing")

	out, err = eval.Evaluate(mutated, other)
	require.NoError(t, err)
	assert.True(t, out.Equal(fact.NewDatabase(fx.fact(t, fx.on, fx.b))),
		"the refuted guard falls through to the old root")
}

// TestApply_LeavesSourceUntouched: a rejected or applied mutation never
// mutates the context's diagram.
func TestApply_LeavesSourceUntouched(t *testing.T) {
	fx := newFixture(t)
	input := fact.NewDatabase(fx.fact(t, fx.f, fx.a, fx.b))
	ctx := fx.context(t, input)
	snapshot := fx.d.Clone()

	_, _ = mutate.Apply(ctx, mutate.SetTermReference{Node: 1, Term: 1, Register: 1})
	_, _ = mutate.Apply(ctx, mutate.SetTermReference{Node: 1, Term: 1, Register: 0})
	assert.True(t, snapshot.Equal(ctx.Diagram()), "apply is copy-on-write both ways")
}
