// Package search runs the evolutionary loop: analyze survivors, sample and
// apply candidate mutations, score offspring against the example set, keep
// the fittest.
//
// What:
//   - Run drives generations until an individual answers every example
//     exactly or the generation budget runs out, returning the best diagram
//     found. Seed builds the minimal well-formed individuals a run starts
//     from when the caller has no better prior.
//
// Why:
//   - Candidate enumeration and mutation sampling stay sequential under one
//     seeded rand.Source, so runs are reproducible; only evaluation and
//     candidate analysis fan out across errgroup workers, the population
//     being the unit of parallelism.
//
// Scoring:
//   - The default Scorer charges one point per spurious output fact and two
//     per missing one, negated, summed over examples; zero is perfect.
//     Evaluations that hit the round ceiling score a fixed penalty instead
//     of aborting the run. Ties break toward smaller diagrams.
//
// Errors:
//   - ErrOptionViolation for invalid options, ErrEmptyPopulation when Run
//     is given nothing to evolve, ErrNoOutputs when Seed's registry
//     declares no output predicate. Context cancellation is returned as the
//     context's error, checked once per generation.
package search
