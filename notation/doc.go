// Package notation reads and writes the textual diagram syntax.
//
// What
//
//   - Parse turns source text into a diagram; Print renders a diagram back
//     as text. One node per statement:
//
//     root: board(%0 <- _, %1 <- _, :x) {blank} {}
//     blank: output next_board(%0, %1, :o)
//
//     A branch names its pattern and then its match and refute targets in
//     braces, either of which may be empty. A leaf is the keyword "output"
//     followed by its template. Terms are ":sym" for a constant, "%N" for
//     a register read, "%N <- _" for a register write. "#" starts a line
//     comment. The first node defined is the root; targets may name labels
//     defined later.
//
// Why
//
//   - Examples, tests and debugging want diagrams as text, not as node
//     arena literals.
//
// Round-trip
//
//   - Print lists the root first and the remaining nodes in index order,
//     so Parse(Print(d)) is structurally equal to d whenever d's root is
//     node 0, and an index-rotated equivalent otherwise.
//
// Errors
//
//   - ErrSyntax with line:column positions for lexical and grammatical
//     problems, including unknown predicates and unresolved labels;
//     structural violations surface as the diagram package's construction
//     errors.
package notation
