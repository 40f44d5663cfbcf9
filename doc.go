// Package matchdiagram synthesizes small fact-matching programs, called
// rule diagrams, by evolutionary search: starting from a population of
// candidate diagrams it repeatedly applies semantics-preserving and
// semantics-changing rewrites, scores the results against example
// input/output fact sets, and keeps the fittest. The target domain is
// learning "next-state" rules, such as a game's move-application rule,
// from examples.
//
// Everything is organized under seven subpackages, leaves first:
//
//	fact/     — interned values, the immutable predicate registry,
//	            deduplicated fact databases, examples and their census
//	diagram/  — the rule diagram itself: an indexed arena of pattern
//	            nodes with match/refute edges, validated construction,
//	            and a copy-on-write editor
//	eval/     — round-based snapshot propagation: unify every snapshot
//	            against every candidate fact, match extends, refute
//	            forwards, leaves emit
//	mutate/   — the rewrite taxonomy: neutral term swaps, splice and
//	            collapse, duplicate and merge, plus behavior-changing
//	            edits, each validated against evaluator snapshot sets
//	analyze/  — candidate enumeration for a diagram against an example
//	            set, including the guarded escape insertions that repair
//	            failing examples
//	search/   — the generational loop: analyze survivors, sample and
//	            apply mutations, score offspring in parallel, keep the
//	            fittest
//	notation/ — the textual diagram syntax, parsed and printed
//
// A minimal session:
//
//	registry, _ := fact.NewRegistry(decls)
//	pop, _ := search.Seed(registry, examples, 16)
//	res, _ := search.Run(ctx, pop, examples, search.WithSeed(1))
//	fmt.Print(notation.Print(res.Best, symbols))
//
//	go get github.com/zentner-kyle/match-diagram
package matchdiagram
