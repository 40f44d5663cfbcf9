// Package diagram declares the Term, Pattern, Node, NodeID, and Edge types,
// their constructors, and the sentinel errors of the package.
package diagram

import (
	"errors"

	"github.com/zentner-kyle/match-diagram/fact"
)

// Sentinel errors for diagram construction.
var (
	// ErrMalformed wraps every reason Construct can reject a diagram.
	ErrMalformed = errors.New("diagram: malformed diagram")

	// ErrUnboundReference indicates a Reference(r) reachable along a path on
	// which no ancestor Free(r) has bound r.
	ErrUnboundReference = errors.New("diagram: reference to unbound register")

	// ErrArityMismatch indicates a pattern whose term count differs from its
	// predicate's declared arity.
	ErrArityMismatch = errors.New("diagram: pattern length does not match predicate arity")

	// ErrFreeInLeaf indicates a Free term inside a leaf's output template.
	ErrFreeInLeaf = errors.New("diagram: free term in leaf pattern")

	// ErrBadRoot indicates a missing or out-of-range root node.
	ErrBadRoot = errors.New("diagram: bad root node")

	// ErrBadEdge indicates a child reference to an out-of-range node, or a
	// child on a leaf.
	ErrBadEdge = errors.New("diagram: bad edge target")

	// ErrBadRegister indicates a negative register index in a term.
	ErrBadRegister = errors.New("diagram: negative register index")
)

// NodeID addresses a node within one Diagram. IDs are dense indices; two
// IDs denote the same logical node only if they are the identical index.
type NodeID int

// NoNode marks an absent child: evaluation threads reaching an absent child
// terminate with no output.
const NoNode NodeID = -1

// TermKind tags the closed Term variant.
type TermKind uint8

const (
	// TermConstant matches exactly one literal value.
	TermConstant TermKind = iota
	// TermReference matches the value currently bound to a register.
	TermReference
	// TermFree matches any value and binds it to a register. Valid only in
	// branch patterns.
	TermFree
)

// Term is one argument position of a pattern: a tagged Constant, Reference,
// or Free variant.
type Term struct {
	Kind     TermKind
	Value    fact.Value // Constant only
	Register int        // Reference and Free only
}

// Constant returns a Term matching exactly v.
func Constant(v fact.Value) Term {
	return Term{Kind: TermConstant, Value: v}
}

// Reference returns a Term matching the value bound to register r.
func Reference(r int) Term {
	return Term{Kind: TermReference, Register: r}
}

// Free returns a Term matching any value and binding it to register r.
func Free(r int) Term {
	return Term{Kind: TermFree, Register: r}
}

// Equal reports value equality of two terms.
func (t Term) Equal(o Term) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case TermConstant:
		return t.Value == o.Value
	default:
		return t.Register == o.Register
	}
}

// Pattern is a predicate plus one term per argument position.
type Pattern struct {
	Predicate fact.Predicate
	Terms     []Term
}

// NewPattern builds a Pattern from p and terms.
func NewPattern(p fact.Predicate, terms ...Term) Pattern {
	ts := make([]Term, len(terms))
	copy(ts, terms)

	return Pattern{Predicate: p, Terms: ts}
}

// Clone returns a deep copy of p.
func (p Pattern) Clone() Pattern {
	return NewPattern(p.Predicate, p.Terms...)
}

// Equal reports value equality of two patterns.
func (p Pattern) Equal(o Pattern) bool {
	if p.Predicate != o.Predicate || len(p.Terms) != len(o.Terms) {
		return false
	}
	for i, t := range p.Terms {
		if !t.Equal(o.Terms[i]) {
			return false
		}
	}

	return true
}

// NodeKind tags the closed Node variant.
type NodeKind uint8

const (
	// KindBranch tests a pattern against candidate facts and routes
	// snapshots to its match / refute children.
	KindBranch NodeKind = iota
	// KindLeaf emits one fact per live snapshot, instantiated from its
	// output template.
	KindLeaf
)

// Node is one vertex of a diagram: a Branch or a Leaf.
type Node struct {
	Kind    NodeKind
	Pattern Pattern
	Match   NodeID // Branch only; NoNode if absent
	Refute  NodeID // Branch only; NoNode if absent
}

// Branch returns a branch node testing pattern, routing successful
// unifications to match and per-fact failures to refute.
func Branch(pattern Pattern, match, refute NodeID) Node {
	return Node{Kind: KindBranch, Pattern: pattern, Match: match, Refute: refute}
}

// Leaf returns a leaf node emitting pattern as its output template.
func Leaf(pattern Pattern) Node {
	return Node{Kind: KindLeaf, Pattern: pattern, Match: NoNode, Refute: NoNode}
}

// Equal reports structural equality of two nodes, children included.
func (n Node) Equal(o Node) bool {
	return n.Kind == o.Kind && n.Match == o.Match && n.Refute == o.Refute &&
		n.Pattern.Equal(o.Pattern)
}

// SamePattern reports whether two nodes have equal kind and pattern,
// ignoring children. Used by the duplicate/merge mutation pair.
func (n Node) SamePattern(o Node) bool {
	return n.Kind == o.Kind && n.Pattern.Equal(o.Pattern)
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	return Node{Kind: n.Kind, Pattern: n.Pattern.Clone(), Match: n.Match, Refute: n.Refute}
}

// EdgeKind tags the three edge positions of a diagram.
type EdgeKind uint8

const (
	// EdgeRoot is the diagram's single entry edge.
	EdgeRoot EdgeKind = iota
	// EdgeMatch is a branch's match edge.
	EdgeMatch
	// EdgeRefute is a branch's refute edge.
	EdgeRefute
)

// Edge names one edge position: the root edge, or the match / refute edge
// out of Source.
type Edge struct {
	Kind   EdgeKind
	Source NodeID // NoNode for EdgeRoot
}

// RootEdge returns the diagram's entry edge.
func RootEdge() Edge { return Edge{Kind: EdgeRoot, Source: NoNode} }

// MatchEdge returns the match edge out of src.
func MatchEdge(src NodeID) Edge { return Edge{Kind: EdgeMatch, Source: src} }

// RefuteEdge returns the refute edge out of src.
func RefuteEdge(src NodeID) Edge { return Edge{Kind: EdgeRefute, Source: src} }
