// Package analyze enumerates promising mutations for a diagram against an
// example set.
//
// What:
//   - Candidates lists every neutral mutation whose precondition holds on
//     all example inputs (term rewrites bounded by the diagram's register
//     range and the examples' value universe, plus valid splice, collapse,
//     duplicate and merge sites), and for every example the diagram gets
//     wrong it synthesizes an escape insertion: a root-level guard keyed on
//     a distinguishing fact whose match side emits the desired outputs and
//     whose refute side falls through to the old root.
//
// Why:
//   - Neutral mutations walk the search across plateaus without losing
//     fitness; escape insertions guarantee the search is never stuck, since
//     at least one candidate strictly improves agreement on a failing
//     example whenever a distinguishing fact exists.
//
// Complexity:
//   - Candidates is O(sites * apply-cost) where sites grows with diagram
//     size, arity, register range and the example value universe; each site
//     is validated by actually applying it, so apply-cost includes the
//     snapshot comparisons of the mutate package.
//
// Errors:
//   - ErrOptionViolation for invalid options; evaluation errors from
//     non-terminating diagrams propagate from the mutate context.
package analyze
