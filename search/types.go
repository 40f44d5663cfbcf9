package search

import (
	"errors"
	"fmt"

	"github.com/zentner-kyle/match-diagram/diagram"
	"github.com/zentner-kyle/match-diagram/eval"
	"github.com/zentner-kyle/match-diagram/fact"
)

var (
	// ErrOptionViolation reports an invalid option value, surfaced when Run
	// or Seed executes.
	ErrOptionViolation = errors.New("search: option violation")

	// ErrEmptyPopulation reports a Run call with no individuals to evolve.
	ErrEmptyPopulation = errors.New("search: empty population")

	// ErrNoOutputs reports a Seed registry with no output predicates.
	ErrNoOutputs = errors.New("search: registry declares no output predicates")
)

const (
	// DefaultGenerations bounds a run when WithGenerations is not given.
	DefaultGenerations = 64

	// DefaultPopulation is the survivor count kept between generations.
	DefaultPopulation = 16

	// DefaultOffspring is how many sampled mutations each survivor tries
	// per generation.
	DefaultOffspring = 8

	// DefaultParallelism is the evaluation worker count.
	DefaultParallelism = 4

	// NonTerminatingPenalty is charged per example whose evaluation exceeds
	// the round ceiling. It must dominate any achievable agreement score so
	// runaway diagrams sink to the bottom of the pool without aborting the
	// run.
	NonTerminatingPenalty = -1 << 20
)

// Scorer turns one evaluated example into a fitness contribution. Zero is
// perfect agreement; more negative is worse. Contributions are summed over
// the example set.
type Scorer interface {
	Score(got, want *fact.Database) int
}

// Agreement is the default Scorer: minus one per spurious fact, minus two
// per missing fact.
type Agreement struct{}

// Score implements Scorer.
func (Agreement) Score(got, want *fact.Database) int {
	cost := 0
	for _, f := range got.All() {
		if !want.Contains(f) {
			cost++
		}
	}
	for _, f := range want.All() {
		if !got.Contains(f) {
			cost += 2
		}
	}

	return -cost
}

// Hook observes the pool's best individual at the start of a generation.
type Hook func(generation int, best *diagram.Diagram, score int)

// Options configures Run. Construct with DefaultOptions and adjust with
// the With* helpers; invalid values surface as ErrOptionViolation.
type Options struct {
	generations int
	population  int
	offspring   int
	parallelism int
	roundLimit  int
	seed        int64
	scorer      Scorer
	hook        Hook
	err         error
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns the baseline search configuration.
func DefaultOptions() Options {
	return Options{
		generations: DefaultGenerations,
		population:  DefaultPopulation,
		offspring:   DefaultOffspring,
		parallelism: DefaultParallelism,
		roundLimit:  eval.DefaultRoundLimit,
		seed:        1,
		scorer:      Agreement{},
	}
}

// WithGenerations caps the generation count. n must be at least 1.
func WithGenerations(n int) Option {
	return func(o *Options) {
		if n < 1 {
			o.err = fmt.Errorf("%w: generations %d", ErrOptionViolation, n)
			return
		}
		o.generations = n
	}
}

// WithPopulation sets the survivor count kept between generations. n must
// be at least 1.
func WithPopulation(n int) Option {
	return func(o *Options) {
		if n < 1 {
			o.err = fmt.Errorf("%w: population %d", ErrOptionViolation, n)
			return
		}
		o.population = n
	}
}

// WithOffspring sets how many sampled mutations each survivor tries per
// generation. n must be at least 1.
func WithOffspring(n int) Option {
	return func(o *Options) {
		if n < 1 {
			o.err = fmt.Errorf("%w: offspring %d", ErrOptionViolation, n)
			return
		}
		o.offspring = n
	}
}

// WithParallelism sets the worker count for evaluation and analysis. n
// must be at least 1.
func WithParallelism(n int) Option {
	return func(o *Options) {
		if n < 1 {
			o.err = fmt.Errorf("%w: parallelism %d", ErrOptionViolation, n)
			return
		}
		o.parallelism = n
	}
}

// WithRoundLimit forwards a round ceiling to every evaluation the search
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

// WithSeed fixes the mutation-sampling seed. Identical seeds and inputs
// reproduce identical runs.
func WithSeed(seed int64) Option {
	return func(o *Options) { o.seed = seed }
}

// WithScorer replaces the default Agreement scorer.
func WithScorer(s Scorer) Option {
	return func(o *Options) {
		if s == nil {
			o.err = fmt.Errorf("%w: nil scorer", ErrOptionViolation)
			return
		}
		o.scorer = s
	}
}

// OnGeneration installs a per-generation observation hook.
func OnGeneration(h Hook) Option {
	return func(o *Options) { o.hook = h }
}

// Result reports the outcome of a run.
type Result struct {
	// Best is the fittest diagram found.
	Best *diagram.Diagram

	// Score is Best's summed fitness; zero means every example agreed.
	Score int

	// Perfect reports whether Score reached zero.
	Perfect bool

	// Generations is how many generations actually ran.
	Generations int

	// Population is the final pool, fittest first.
	Population []*diagram.Diagram
}
