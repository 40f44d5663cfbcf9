package analyze

import (
	"errors"
	"fmt"

	"github.com/zentner-kyle/match-diagram/diagram"
	"github.com/zentner-kyle/match-diagram/eval"
	"github.com/zentner-kyle/match-diagram/fact"
	"github.com/zentner-kyle/match-diagram/mutate"
)

// ErrOptionViolation reports an invalid option value, surfaced when
// Candidates runs.
var ErrOptionViolation = errors.New("analyze: option violation")

// Options configures candidate enumeration. Construct with DefaultOptions
// and adjust with the With* helpers.
type Options struct {
	roundLimit int
	picker     Picker
	err        error
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns the baseline configuration: the evaluator's
// default round limit and the DistinguishingFact guard picker.
func DefaultOptions() Options {
	return Options{roundLimit: eval.DefaultRoundLimit, picker: DistinguishingFact}
}

// WithRoundLimit forwards a round ceiling to every evaluation Candidates
// performs. n must be at least 1.
func WithRoundLimit(n int) Option {
	return func(o *Options) {
		if n < 1 {
			o.err = fmt.Errorf("%w: round limit %d", ErrOptionViolation, n)
			return
		}
		o.roundLimit = n
	}
}

// WithPicker replaces the guard-fact heuristic used for escape insertions.
func WithPicker(p Picker) Option {
	return func(o *Options) {
		if p == nil {
			o.err = fmt.Errorf("%w: nil picker", ErrOptionViolation)
			return
		}
		o.picker = p
	}
}

// Candidates enumerates mutations of d worth trying against examples:
// every neutral mutation that validates on all example inputs, then one
// escape insertion per example d answers incorrectly. Ordering is
// deterministic: node index, then term index, then mutation kind, with
// escapes last.
func Candidates(d *diagram.Diagram, examples []fact.Example, opts ...Option) ([]mutate.Spec, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	inputs := make([]*fact.Database, len(examples))
	for i, ex := range examples {
		inputs[i] = ex.Input
	}
	ctx, err := mutate.NewContext(d, inputs, eval.WithRoundLimit(o.roundLimit))
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	frame := fact.NewFrame(examples)

	var out []mutate.Spec
	keep := func(s mutate.Spec) {
		if _, err := mutate.Apply(ctx, s); err == nil {
			out = append(out, s)
		}
	}

	values := frame.Values()
	maxReg := d.MaxRegister() + 1
	for id := diagram.NodeID(0); int(id) < d.Size(); id++ {
		n := d.Node(id)
		for ti, t := range n.Pattern.Terms {
			switch t.Kind {
			case diagram.TermConstant:
				for r := 0; r <= maxReg; r++ {
					keep(mutate.SetTermReference{Node: id, Term: ti, Register: r})
					if n.Kind == diagram.KindBranch {
						keep(mutate.SetTermFree{Node: id, Term: ti, Register: r})
					}
				}
				for _, v := range values {
					if v != t.Value {
						keep(mutate.SetTermConstant{Node: id, Term: ti, Value: v})
					}
				}
			case diagram.TermReference, diagram.TermFree:
				for r := 0; r <= maxReg; r++ {
					if r != t.Register {
						keep(mutate.RetargetRegister{Node: id, Term: ti, Register: r})
					}
				}
				for _, v := range values {
					keep(mutate.SetTermConstant{Node: id, Term: ti, Value: v})
				}
			}
		}
		keep(mutate.CollapseNode{Node: id})
		keep(mutate.DuplicateNode{Parent: id})
		keep(mutate.MergeNodes{Parent: id})
	}

	guards := guardFacts(frame, inputs)
	for _, g := range guards {
		keep(mutate.SpliceEdge{Edge: diagram.RootEdge(), Guard: g})
	}
	for id := diagram.NodeID(0); int(id) < d.Size(); id++ {
		for _, g := range guards {
			keep(mutate.SpliceEdge{Edge: diagram.MatchEdge(id), Guard: g})
			keep(mutate.SpliceEdge{Edge: diagram.RefuteEdge(id), Guard: g})
		}
	}

	out = append(out, escapes(d, examples, o)...)

	return out, nil
}

// guardFacts returns one representative fact per predicate that carries
// facts in every input, in ascending predicate order. SpliceEdge re-checks
// the population requirement, so a representative is all that is needed.
func guardFacts(frame *fact.Frame, inputs []*fact.Database) []fact.Fact {
	if len(inputs) == 0 {
		return nil
	}
	var out []fact.Fact
	for _, p := range frame.InputPredicates() {
		populated := true
		for _, db := range inputs {
			if len(db.Facts(p)) == 0 {
				populated = false
				break
			}
		}
		if populated {
			out = append(out, inputs[0].Facts(p)[0])
		}
	}

	return out
}
