package search

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/zentner-kyle/match-diagram/analyze"
	"github.com/zentner-kyle/match-diagram/diagram"
	"github.com/zentner-kyle/match-diagram/eval"
	"github.com/zentner-kyle/match-diagram/fact"
	"github.com/zentner-kyle/match-diagram/mutate"
)

type individual struct {
	d     *diagram.Diagram
	score int
}

// Run evolves population against examples until an individual reaches
// perfect agreement or the generation budget runs out. Candidate analysis
// and scoring fan out across errgroup workers; mutation sampling stays
// sequential under the seeded source, so a run is reproducible given the
// same options and inputs. Cancellation is checked once per generation and
// inside workers.
func Run(ctx context.Context, population []*diagram.Diagram, examples []fact.Example, opts ...Option) (*Result, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	if len(population) == 0 {
		return nil, ErrEmptyPopulation
	}
	rng := rand.New(rand.NewSource(o.seed))
	inputs := make([]*fact.Database, len(examples))
	for i, ex := range examples {
		inputs[i] = ex.Input
	}

	pool := make([]individual, len(population))
	for i, d := range population {
		pool[i] = individual{d: d}
	}
	if err := scoreAll(ctx, pool, examples, o); err != nil {
		return nil, err
	}
	rank(pool)
	pool = truncate(pool, o.population)

	gen := 0
	for ; gen < o.generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		if pool[0].score == 0 {
			break
		}
		if o.hook != nil {
			o.hook(gen, pool[0].d, pool[0].score)
		}

		// Candidate analysis per survivor; a survivor whose evaluation no
		// longer terminates simply breeds nothing this generation.
		candidates := make([][]mutate.Spec, len(pool))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.parallelism)
		for i := range pool {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				specs, err := analyze.Candidates(pool[i].d, examples, analyze.WithRoundLimit(o.roundLimit))
				if err == nil {
					candidates[i] = specs
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}

		// Sequential sampling keeps the rand stream deterministic.
		offspring := make([]individual, 0, len(pool)*o.offspring)
		for i := range pool {
			specs := candidates[i]
			if len(specs) == 0 {
				continue
			}
			mctx, err := mutate.NewContext(pool[i].d, inputs, eval.WithRoundLimit(o.roundLimit))
			if err != nil {
				continue
			}
			for k := 0; k < o.offspring; k++ {
				child, err := mutate.Apply(mctx, specs[rng.Intn(len(specs))])
				if err != nil {
					continue
				}
				offspring = append(offspring, individual{d: child})
			}
		}
		if err := scoreAll(ctx, offspring, examples, o); err != nil {
			return nil, err
		}

		pool = truncate(rank(append(pool, offspring...)), o.population)
	}

	res := &Result{
		Best:        pool[0].d,
		Score:       pool[0].score,
		Perfect:     pool[0].score == 0,
		Generations: gen,
		Population:  make([]*diagram.Diagram, len(pool)),
	}
	for i, ind := range pool {
		res.Population[i] = ind.d
	}

	return res, nil
}

// Seed builds n identical minimal individuals: a single all-constant leaf
// on the registry's first output predicate, constants drawn from the
// examples' value universe. Mutation diversifies them from there.
func Seed(registry *fact.Registry, examples []fact.Example, n int) ([]*diagram.Diagram, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: seed count %d", ErrOptionViolation, n)
	}
	outs := registry.Outputs()
	if len(outs) == 0 {
		return nil, ErrNoOutputs
	}
	v := fact.Value(0)
	if vs := fact.NewFrame(examples).Values(); len(vs) > 0 {
		v = vs[0]
	}
	p := outs[0]
	terms := make([]diagram.Term, registry.Arity(p))
	for i := range terms {
		terms[i] = diagram.Constant(v)
	}
	d, err := diagram.Construct([]diagram.Node{diagram.Leaf(diagram.NewPattern(p, terms...))}, 0, registry)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	out := make([]*diagram.Diagram, n)
	for i := range out {
		// Diagrams are immutable values; sharing one is safe.
		out[i] = d
	}

	return out, nil
}

// scoreAll evaluates and scores every individual in place.
func scoreAll(ctx context.Context, pool []individual, examples []fact.Example, o Options) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallelism)
	for i := range pool {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pool[i].score = score(pool[i].d, examples, o)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("search: %w", err)
	}

	return nil
}

// score sums the scorer over examples, charging NonTerminatingPenalty for
// evaluations that hit the round ceiling.
func score(d *diagram.Diagram, examples []fact.Example, o Options) int {
	total := 0
	for _, ex := range examples {
		got, err := eval.Evaluate(d, ex.Input, eval.WithRoundLimit(o.roundLimit))
		if err != nil {
			total += NonTerminatingPenalty
			continue
		}
		total += o.scorer.Score(got, ex.Want)
	}

	return total
}

// rank sorts fittest first, breaking score ties toward smaller diagrams.
func rank(pool []individual) []individual {
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].score != pool[j].score {
			return pool[i].score > pool[j].score
		}
		return pool[i].d.Size() < pool[j].d.Size()
	})

	return pool
}

func truncate(pool []individual, n int) []individual {
	if len(pool) > n {
		pool = pool[:n]
	}
	return pool
}
