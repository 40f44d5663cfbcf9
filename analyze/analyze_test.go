package analyze_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zentner-kyle/match-diagram/analyze"
	"github.com/zentner-kyle/match-diagram/diagram"
	"github.com/zentner-kyle/match-diagram/eval"
	"github.com/zentner-kyle/match-diagram/fact"
	"github.com/zentner-kyle/match-diagram/mutate"
)

// world carries the game vocabulary and the two canonical examples: a move
// onto a blank cell takes the player's mark, a move onto an occupied cell
// leaves the board unchanged.
type world struct {
	registry *fact.Registry
	player   fact.Predicate
	move     fact.Predicate
	board    fact.Predicate
	next     fact.Predicate

	three, x, o, blank fact.Value

	examples []fact.Example
}

func newWorld(t *testing.T) *world {
	t.Helper()
	r, err := fact.NewRegistry([]fact.Decl{
		{Name: "player", Arity: 1, Role: fact.RoleInput},
		{Name: "move", Arity: 2, Role: fact.RoleInput},
		{Name: "board", Arity: 3, Role: fact.RoleInput},
		{Name: "next_board", Arity: 3, Role: fact.RoleOutput},
	})
	require.NoError(t, err)
	w := &world{registry: r, three: 3, x: 10, o: 11, blank: 12}
	w.player, _ = r.Lookup("player")
	w.move, _ = r.Lookup("move")
	w.board, _ = r.Lookup("board")
	w.next, _ = r.Lookup("next_board")

	w.examples = []fact.Example{
		{
			Input: fact.NewDatabase(
				w.fact(t, w.player, w.x),
				w.fact(t, w.move, w.three, w.three),
				w.fact(t, w.board, w.three, w.three, w.blank),
			),
			Want: fact.NewDatabase(w.fact(t, w.next, w.three, w.three, w.x)),
		},
		{
			Input: fact.NewDatabase(
				w.fact(t, w.player, w.x),
				w.fact(t, w.move, w.three, w.three),
				w.fact(t, w.board, w.three, w.three, w.o),
			),
			Want: fact.NewDatabase(w.fact(t, w.next, w.three, w.three, w.o)),
		},
	}

	return w
}

func (w *world) fact(t *testing.T, p fact.Predicate, vs ...fact.Value) fact.Fact {
	t.Helper()
	f, err := w.registry.NewFact(p, vs...)
	require.NoError(t, err)

	return f
}

// occupiedOnly is a diagram that always answers as if the cell were
// occupied by o: right on the occupied example, wrong on the blank one.
func (w *world) occupiedOnly(t *testing.T) *diagram.Diagram {
	t.Helper()
	leaf := diagram.Leaf(diagram.NewPattern(w.next,
		diagram.Constant(w.three), diagram.Constant(w.three), diagram.Constant(w.o)))
	d, err := diagram.Construct([]diagram.Node{leaf}, 0, w.registry)
	require.NoError(t, err)

	return d
}

// TestCandidates_Deterministic: two enumerations of the same diagram agree
// element for element.
func TestCandidates_Deterministic(t *testing.T) {
	w := newWorld(t)
	d := w.occupiedOnly(t)

	first, err := analyze.Candidates(d, w.examples)
	require.NoError(t, err)
	second, err := analyze.Candidates(d, w.examples)
	require.NoError(t, err)

	assert.NotEmpty(t, first, "a one-leaf diagram still has splice and escape sites")
	assert.Equal(t, first, second, "enumeration order is deterministic")
}

// TestCandidates_AllApplyCleanly: every enumerated candidate passes the
// mutation engine's own validation.
func TestCandidates_AllApplyCleanly(t *testing.T) {
	w := newWorld(t)
	d := w.occupiedOnly(t)
	specs, err := analyze.Candidates(d, w.examples)
	require.NoError(t, err)

	inputs := []*fact.Database{w.examples[0].Input, w.examples[1].Input}
	ctx, err := mutate.NewContext(d, inputs)
	require.NoError(t, err)
	for _, s := range specs {
		_, err := mutate.Apply(ctx, s)
		assert.NoError(t, err, "candidate %#v must apply", s)
	}
}

// TestCandidates_NeutralsPreserveEvaluation: the neutral slice of the
// candidate list leaves every example's evaluation untouched.
func TestCandidates_NeutralsPreserveEvaluation(t *testing.T) {
	w := newWorld(t)
	d := w.occupiedOnly(t)
	specs, err := analyze.Candidates(d, w.examples)
	require.NoError(t, err)

	inputs := []*fact.Database{w.examples[0].Input, w.examples[1].Input}
	ctx, err := mutate.NewContext(d, inputs)
	require.NoError(t, err)
	neutrals := 0
	for _, s := range specs {
		if !s.Neutral() {
			continue
		}
		neutrals++
		mutated, err := mutate.Apply(ctx, s)
		require.NoError(t, err)
		for _, in := range inputs {
			before, err := eval.Evaluate(d, in)
			require.NoError(t, err)
			after, err := eval.Evaluate(mutated, in)
			require.NoError(t, err)
			assert.True(t, before.Equal(after), "neutral candidate %#v changed evaluation", s)
		}
	}
	assert.Positive(t, neutrals, "the board predicate supports at least a splice")
}

// TestCandidates_EscapeRepairsFailingExample: the synthesized escape makes
// the failing example exact and leaves the already-correct one untouched.
func TestCandidates_EscapeRepairsFailingExample(t *testing.T) {
	w := newWorld(t)
	d := w.occupiedOnly(t)
	specs, err := analyze.Candidates(d, w.examples)
	require.NoError(t, err)

	var escapes []mutate.InsertGuardedOutput
	for _, s := range specs {
		if e, ok := s.(mutate.InsertGuardedOutput); ok {
			escapes = append(escapes, e)
		}
	}
	require.Len(t, escapes, 1, "exactly one example fails")
	assert.Equal(t, []fact.Fact{w.fact(t, w.board, w.three, w.three, w.blank)}, escapes[0].Guards,
		"the blank board cell is the distinguishing fact")

	ctx, err := mutate.NewContext(d, []*fact.Database{w.examples[0].Input, w.examples[1].Input})
	require.NoError(t, err)
	repaired, err := mutate.Apply(ctx, escapes[0])
	require.NoError(t, err)
	for i, ex := range w.examples {
		out, err := eval.Evaluate(repaired, ex.Input)
		require.NoError(t, err)
		assert.True(t, out.Equal(ex.Want), "example %d must agree after the escape", i)
	}
}

// TestCandidates_FanOutEscape: a failing example wanting several outputs
// rides a spine over a multi-fact predicate.
func TestCandidates_FanOutEscape(t *testing.T) {
	r, err := fact.NewRegistry([]fact.Decl{
		{Name: "tag", Arity: 1, Role: fact.RoleInput},
		{Name: "f", Arity: 2, Role: fact.RoleInput},
		{Name: "out", Arity: 1, Role: fact.RoleOutput},
	})
	require.NoError(t, err)
	tag, _ := r.Lookup("tag")
	f, _ := r.Lookup("f")
	out, _ := r.Lookup("out")
	mk := func(p fact.Predicate, vs ...fact.Value) fact.Fact {
		ft, err := r.NewFact(p, vs...)
		require.NoError(t, err)
		return ft
	}

	examples := []fact.Example{{
		Input: fact.NewDatabase(mk(tag, 7), mk(f, 1, 2), mk(f, 2, 3)),
		Want:  fact.NewDatabase(mk(out, 1), mk(out, 2)),
	}}
	d, err := diagram.Construct(
		[]diagram.Node{diagram.Leaf(diagram.NewPattern(out, diagram.Constant(9)))}, 0, r)
	require.NoError(t, err)

	specs, err := analyze.Candidates(d, examples)
	require.NoError(t, err)
	var escape *mutate.InsertGuardedOutput
	for _, s := range specs {
		if e, ok := s.(mutate.InsertGuardedOutput); ok {
			escape = &e
			break
		}
	}
	require.NotNil(t, escape, "the failing example must produce an escape")
	assert.Equal(t, []fact.Fact{mk(tag, 7)}, escape.Guards, "tag(7) is unique for its predicate")

	ctx, err := mutate.NewContext(d, []*fact.Database{examples[0].Input})
	require.NoError(t, err)
	repaired, err := mutate.Apply(ctx, *escape)
	require.NoError(t, err)
	got, err := eval.Evaluate(repaired, examples[0].Input)
	require.NoError(t, err)
	assert.True(t, got.Equal(examples[0].Want),
		"the guard hides the old root and the spine emits both outputs")
}

// TestCandidates_EmptyWantEscape: a failing example wanting nothing at all
// still gets an escape; the guard's match side derives nothing, so a
// spuriously emitting diagram stays repairable.
func TestCandidates_EmptyWantEscape(t *testing.T) {
	r, err := fact.NewRegistry([]fact.Decl{
		{Name: "p", Arity: 1, Role: fact.RoleInput},
		{Name: "out", Arity: 1, Role: fact.RoleOutput},
	})
	require.NoError(t, err)
	p, _ := r.Lookup("p")
	out, _ := r.Lookup("out")
	mk := func(pr fact.Predicate, vs ...fact.Value) fact.Fact {
		ft, err := r.NewFact(pr, vs...)
		require.NoError(t, err)
		return ft
	}

	examples := []fact.Example{{
		Input: fact.NewDatabase(mk(p, 1)),
		Want:  fact.NewDatabase(),
	}}
	d, err := diagram.Construct(
		[]diagram.Node{diagram.Leaf(diagram.NewPattern(out, diagram.Constant(9)))}, 0, r)
	require.NoError(t, err)

	specs, err := analyze.Candidates(d, examples)
	require.NoError(t, err)
	var escape *mutate.InsertGuardedOutput
	for _, s := range specs {
		if e, ok := s.(mutate.InsertGuardedOutput); ok {
			escape = &e
			break
		}
	}
	require.NotNil(t, escape, "the spurious emission must be reachable by some candidate")
	assert.Empty(t, escape.Outputs, "nothing is wanted, so the escape emits nothing")

	ctx, err := mutate.NewContext(d, []*fact.Database{examples[0].Input})
	require.NoError(t, err)
	repaired, err := mutate.Apply(ctx, *escape)
	require.NoError(t, err)
	got, err := eval.Evaluate(repaired, examples[0].Input)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len(), "the matched guard suppresses the old root")
}

// TestDistinguishingFact_Preferences covers the picker's fallback ladder.
func TestDistinguishingFact_Preferences(t *testing.T) {
	w := newWorld(t)
	failing := w.examples[0].Input
	others := []*fact.Database{w.examples[1].Input}

	guard, ok := analyze.DistinguishingFact(failing, others)
	require.True(t, ok)
	assert.Equal(t, w.fact(t, w.board, w.three, w.three, w.blank), guard,
		"unique, absent elsewhere, predicate populated elsewhere")

	// With no other inputs any unique-for-predicate fact qualifies.
	guard, ok = analyze.DistinguishingFact(failing, nil)
	require.True(t, ok)
	assert.Equal(t, 1, len(failing.Facts(guard.Predicate)), "guard is unique for its predicate")

	_, ok = analyze.DistinguishingFact(fact.NewDatabase(), others)
	assert.False(t, ok, "an empty input offers no guard")
}

// TestCandidates_OptionViolations: invalid knobs surface before any work.
func TestCandidates_OptionViolations(t *testing.T) {
	w := newWorld(t)
	d := w.occupiedOnly(t)

	_, err := analyze.Candidates(d, w.examples, analyze.WithRoundLimit(0))
	assert.ErrorIs(t, err, analyze.ErrOptionViolation)
	_, err = analyze.Candidates(d, w.examples, analyze.WithPicker(nil))
	assert.ErrorIs(t, err, analyze.ErrOptionViolation)
}
