// Package fact provides the vocabulary layer shared by every other package:
// interned symbolic values, the immutable predicate registry, facts, and
// deduplicated fact sets (Database).
//
// What
//
//   - Value: an interned symbol; Symbols maps names ↔ Values.
//   - Predicate: a registered name with a fixed arity; Registry is the single
//     read-only table every component resolves predicates through.
//   - Fact: a predicate applied to a fully-bound value tuple.
//   - Database: a set of facts with per-predicate grouping and deduplication.
//   - Example / Frame: one input→desired-output pair, and the value universe
//     of an example set.
//
// Why
//
//   - The registry is built once and shared by reference, so predicate
//     lookups never copy tables between components.
//   - Databases are the evaluator's input and output type and the scorer's
//     unit of comparison; set semantics (no duplicates) keep fact counts
//     meaningful.
//
// Errors
//
//   - ErrBadArity            if a predicate is declared with arity < 1.
//   - ErrDuplicatePredicate  if a predicate name is declared twice.
//   - ErrArityMismatch       if a fact's tuple length differs from its
//     predicate's declared arity.
package fact
