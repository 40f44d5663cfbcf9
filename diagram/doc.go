// Package diagram defines the rule-diagram intermediate representation: the
// closed Term variant (Constant / Reference / Free), Patterns, Branch and
// Leaf nodes, and the immutable index-addressed Diagram value.
//
// What
//
//   - Term: Constant(v) matches one literal; Reference(r) matches the value
//     bound to register r; Free(r) matches anything and binds it to r.
//   - Pattern: a predicate plus terms, one per argument position.
//   - Node: a Branch (pattern with optional match / refute children) or a
//     Leaf (output template; Constant and Reference terms only).
//   - Diagram: a rooted, possibly cyclic graph of nodes addressed by NodeID.
//     Diagrams are immutable values; every change goes through Edit, which
//     produces a new Diagram and re-validates it.
//
// Why
//
//   - Construction-time validation is what makes the rest of the system
//     sound: a diagram that passes Construct never evaluates an unbound
//     register, so rewrite rules can reason about binding states instead of
//     defending against them.
//   - Index addressing (rather than pointer identity) keeps cyclic graphs
//     copyable and makes structural equality and node-level patching cheap.
//
// Well-formedness (checked by Construct, reusable via WellFormed)
//
//  1. Every Reference(r) is reachable only along paths where an ancestor
//     Free(r) has already bound r. Refute edges propagate the pre-binding
//     state, so a Free in a pattern does not cover its own refute child.
//  2. Pattern lengths equal the declared predicate arity.
//  3. Leaf patterns contain no Free terms, and leaves have no children.
//
// Errors
//
//   - ErrMalformed wraps every construction failure; the specific cause
//     (ErrUnboundReference, ErrArityMismatch, ErrFreeInLeaf, ErrBadRoot,
//     ErrBadEdge, ErrBadRegister) is wrapped alongside it, so callers may
//     errors.Is against either level.
package diagram
