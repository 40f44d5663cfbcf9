// Package mutate implements the rewrite-rule taxonomy over rule diagrams:
// neutral size-preserving swaps, neutral size-changing splice/collapse and
// duplicate/merge pairs, and free-form behavior-changing edits.
//
// What
//
//	A Spec describes one mutation. Apply validates it against the
//	evaluator's per-node snapshot sets (carried by a Context) and returns a
//	new Diagram; the input diagram is never modified, and an invalid
//	request is rejected whole with ErrInvalidMutation.
//
// Neutrality discipline
//
//	A neutral mutation must leave evaluate(D, F) unchanged for every fact
//	set F the context covers. Two precondition styles enforce this:
//
//	  - snapshot quantification: a constant↔register swap is valid only if
//	    every incoming snapshot at the node binds the register to exactly
//	    the constant's value, so the rewritten term accepts and rejects
//	    precisely the same facts;
//	  - outgoing-set equality: for rewrites that touch bindings (free-term
//	    register changes, constant substitution), the node's recomputed
//	    outgoing match and refute snapshot sets must be unchanged as sets.
//	    Snapshot equality includes register bindings, so identical outgoing
//	    sets propagate identical inputs to every descendant, round by
//	    round — neutrality follows by induction.
//
//	The size-changing pairs obey exact structural inverse laws:
//	Collapse(Splice(D, e)) == D and Merge(Duplicate(D, n)) == D.
//
// Behavior-changing mutations (edge redirection, term replacement,
// predicate replacement, guarded-output insertion) carry no precondition
// beyond post-application well-formedness; the search loop's fitness
// evaluation judges them.
//
// Errors
//
//   - ErrInvalidMutation  wraps every rejection; the underlying cause
//     (precondition failure or diagram.ErrMalformed) is wrapped alongside.
package mutate
