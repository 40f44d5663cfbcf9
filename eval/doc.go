// Package eval runs input fact sets through a rule diagram, producing the
// diagram's output facts and, as a byproduct, the per-node register-snapshot
// sets the mutation engine validates rewrites against.
//
// What
//
//   - Snapshot: one immutable register→value binding state, live at one node
//     along one evaluation thread.
//   - SnapshotSet: a set of snapshots with order-independent equality.
//   - Evaluate: diagram × input facts → output facts.
//   - SnapshotSets: the same run, additionally returning every node's
//     accumulated incoming snapshot set.
//
// Semantics
//
//	Propagation proceeds in rounds from the root, seeded with one empty
//	snapshot. At a branch, every live snapshot is unified against every
//	input fact of the pattern's predicate: Constant must equal the fact's
//	value, Reference must equal the incoming snapshot's binding, Free
//	always matches and binds. Free writes land on the outgoing snapshot
//	only, so a Reference never sees a binding made by the same pattern.
//	Success routes the extended snapshot to the match child;
//	failure routes the original snapshot to the refute child — once per
//	non-matching fact, which is what lets a single branch distinguish many
//	concurrently-present facts. A predicate with no candidate facts fires
//	neither edge. Leaves emit one fact per live snapshot.
//
//	Because diagrams may be cyclic, incoming sets accumulate across rounds;
//	the run ends at fixpoint (no set grew) or fails with ErrNonTerminating
//	once the round ceiling is hit. A non-stabilizing cyclic diagram is an
//	expected outcome for the search loop, not a bug.
//
// Complexity
//
//   - Per round: O(nodes × live snapshots × candidate facts × arity).
//   - Rounds: at most the configured ceiling (WithRoundLimit, default 64).
//
// Errors
//
//   - ErrNonTerminating   if no fixpoint is reached within the ceiling.
//   - ErrOptionViolation  for an invalid option (round limit < 1).
package eval
