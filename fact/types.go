// Package fact declares the Value, Symbols, Predicate, and Registry types,
// and the sentinel errors shared by the package.
package fact

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors for vocabulary construction and fact building.
var (
	// ErrBadArity indicates a predicate declared with a non-positive arity.
	ErrBadArity = errors.New("fact: predicate arity must be positive")

	// ErrDuplicatePredicate indicates the same predicate name declared twice.
	ErrDuplicatePredicate = errors.New("fact: duplicate predicate name")

	// ErrArityMismatch indicates a value tuple whose length differs from the
	// predicate's declared arity.
	ErrArityMismatch = errors.New("fact: value count does not match predicate arity")
)

// Value is an interned symbolic constant. Two Values are the same symbol
// exactly when they are equal as integers.
type Value int

// Symbols interns symbol names, assigning each distinct name a dense Value.
// The zero Symbols is not usable; construct with NewSymbols.
type Symbols struct {
	byName map[string]Value
	names  []string
}

// NewSymbols returns an empty symbol table.
func NewSymbols() *Symbols {
	return &Symbols{byName: make(map[string]Value)}
}

// Intern returns the Value for name, assigning the next free Value on first
// sight. Complexity: O(1) amortized.
func (s *Symbols) Intern(name string) Value {
	if v, ok := s.byName[name]; ok {
		return v
	}
	v := Value(len(s.names))
	s.byName[name] = v
	s.names = append(s.names, name)

	return v
}

// Lookup returns the Value for name without interning it.
func (s *Symbols) Lookup(name string) (Value, bool) {
	v, ok := s.byName[name]
	return v, ok
}

// Name returns the name of v, or "" and false if v was never interned.
func (s *Symbols) Name(v Value) (string, bool) {
	if v < 0 || int(v) >= len(s.names) {
		return "", false
	}

	return s.names[v], true
}

// Len reports the number of interned symbols.
func (s *Symbols) Len() int { return len(s.names) }

// Predicate identifies a registered predicate. Valid Predicates are dense
// indices into the Registry that issued them.
type Predicate int

// Role distinguishes input-vocabulary predicates from output-vocabulary
// predicates in a problem statement.
type Role uint8

const (
	// RoleInput marks a predicate facts may use in example inputs.
	RoleInput Role = iota
	// RoleOutput marks a predicate diagrams are expected to emit.
	RoleOutput
)

// Decl declares one predicate for registry construction.
type Decl struct {
	Name  string
	Arity int
	Role  Role
}

// Registry is the immutable table of known predicates. It is constructed
// once via NewRegistry and then shared by reference; no method mutates it.
type Registry struct {
	byName map[string]Predicate
	decls  []Decl
}

// NewRegistry builds a Registry from decls. Every arity must be positive and
// every name unique; violations return ErrBadArity or ErrDuplicatePredicate.
// Complexity: O(len(decls)).
func NewRegistry(decls []Decl) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]Predicate, len(decls)),
		decls:  make([]Decl, len(decls)),
	}
	copy(r.decls, decls)
	for i, d := range decls {
		if d.Arity < 1 {
			return nil, fmt.Errorf("%w: %s/%d", ErrBadArity, d.Name, d.Arity)
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePredicate, d.Name)
		}
		r.byName[d.Name] = Predicate(i)
	}

	return r, nil
}

// Lookup returns the Predicate registered under name.
func (r *Registry) Lookup(name string) (Predicate, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Name returns the declared name of p, or "" for an out-of-range predicate.
func (r *Registry) Name(p Predicate) string {
	if !r.Valid(p) {
		return ""
	}

	return r.decls[p].Name
}

// Arity returns the declared arity of p, or 0 for an out-of-range predicate.
func (r *Registry) Arity(p Predicate) int {
	if !r.Valid(p) {
		return 0
	}

	return r.decls[p].Arity
}

// Role returns the declared role of p.
func (r *Registry) Role(p Predicate) Role {
	if !r.Valid(p) {
		return RoleInput
	}

	return r.decls[p].Role
}

// Valid reports whether p was issued by this registry.
func (r *Registry) Valid(p Predicate) bool {
	return p >= 0 && int(p) < len(r.decls)
}

// Len reports the number of registered predicates.
func (r *Registry) Len() int { return len(r.decls) }

// Predicates returns every registered Predicate in declaration order.
func (r *Registry) Predicates() []Predicate {
	ps := make([]Predicate, len(r.decls))
	for i := range ps {
		ps[i] = Predicate(i)
	}

	return ps
}

// Outputs returns every RoleOutput predicate in declaration order.
func (r *Registry) Outputs() []Predicate {
	var ps []Predicate
	for i, d := range r.decls {
		if d.Role == RoleOutput {
			ps = append(ps, Predicate(i))
		}
	}

	return ps
}

// NewFact builds a Fact of p from values, validating the tuple length
// against the declared arity.
func (r *Registry) NewFact(p Predicate, values ...Value) (Fact, error) {
	if len(values) != r.Arity(p) {
		return Fact{}, fmt.Errorf("%w: %s expects %d values, got %d",
			ErrArityMismatch, r.Name(p), r.Arity(p), len(values))
	}
	vs := make([]Value, len(values))
	copy(vs, values)

	return Fact{Predicate: p, Values: vs}, nil
}

// sortValues orders a value slice ascending, in place.
func sortValues(vs []Value) {
	sort.Slice(vs, func(i, j int) bool { return vs[i] < vs[j] })
}
