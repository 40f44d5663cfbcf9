package fact

import (
	"sort"
	"strconv"
	"strings"
)

// Fact is a predicate applied to a fully-bound value tuple. The tuple length
// always equals the predicate's declared arity for facts built through
// Registry.NewFact; Database treats the pair (Predicate, Values) as identity.
type Fact struct {
	Predicate Predicate
	Values    []Value
}

// Key returns a canonical string identity for set membership.
func (f Fact) Key() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(f.Predicate)))
	for _, v := range f.Values {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(int(v)))
	}

	return b.String()
}

// Equal reports value equality of two facts.
func (f Fact) Equal(o Fact) bool {
	if f.Predicate != o.Predicate || len(f.Values) != len(o.Values) {
		return false
	}
	for i, v := range f.Values {
		if o.Values[i] != v {
			return false
		}
	}

	return true
}

// Clone returns a deep copy of f.
func (f Fact) Clone() Fact {
	vs := make([]Value, len(f.Values))
	copy(vs, f.Values)

	return Fact{Predicate: f.Predicate, Values: vs}
}

// Database is a deduplicated set of facts grouped by predicate. The zero
// Database is not usable; construct with NewDatabase.
type Database struct {
	byPred map[Predicate][]Fact
	keys   map[string]struct{}
}

// NewDatabase returns a Database holding the given facts (duplicates folded).
func NewDatabase(facts ...Fact) *Database {
	db := &Database{
		byPred: make(map[Predicate][]Fact),
		keys:   make(map[string]struct{}, len(facts)),
	}
	for _, f := range facts {
		db.Insert(f)
	}

	return db
}

// Insert adds f, reporting whether it was new. Complexity: O(arity).
func (db *Database) Insert(f Fact) bool {
	k := f.Key()
	if _, dup := db.keys[k]; dup {
		return false
	}
	db.keys[k] = struct{}{}
	db.byPred[f.Predicate] = append(db.byPred[f.Predicate], f.Clone())

	return true
}

// Contains reports whether f is present.
func (db *Database) Contains(f Fact) bool {
	_, ok := db.keys[f.Key()]
	return ok
}

// Facts returns the facts of predicate p in insertion order. The returned
// slice is shared; callers must not modify it.
func (db *Database) Facts(p Predicate) []Fact {
	return db.byPred[p]
}

// All returns every fact, ordered by predicate then insertion.
func (db *Database) All() []Fact {
	preds := make([]Predicate, 0, len(db.byPred))
	for p := range db.byPred {
		preds = append(preds, p)
	}
	sort.Slice(preds, func(i, j int) bool { return preds[i] < preds[j] })
	out := make([]Fact, 0, db.Len())
	for _, p := range preds {
		out = append(out, db.byPred[p]...)
	}

	return out
}

// Len reports the number of distinct facts.
func (db *Database) Len() int { return len(db.keys) }

// Equal reports whether db and o hold exactly the same fact set.
func (db *Database) Equal(o *Database) bool {
	if db.Len() != o.Len() {
		return false
	}
	for k := range db.keys {
		if _, ok := o.keys[k]; !ok {
			return false
		}
	}

	return true
}

// Clone returns a deep copy of db.
func (db *Database) Clone() *Database {
	out := NewDatabase()
	for _, f := range db.All() {
		out.Insert(f)
	}

	return out
}

// Example pairs an input fact set with the output fact set a correct
// diagram must derive from it.
type Example struct {
	Input *Database
	Want  *Database
}

// Frame is the census of an example set: every value that appears anywhere
// in it, and every predicate that carries at least one fact in some input.
// The analyze package bounds candidate constants and guard predicates by it.
type Frame struct {
	values map[Value]struct{}
	preds  map[Predicate]struct{}
}

// NewFrame scans examples and collects their value and predicate universe.
func NewFrame(examples []Example) *Frame {
	fr := &Frame{
		values: make(map[Value]struct{}),
		preds:  make(map[Predicate]struct{}),
	}
	add := func(db *Database) {
		for _, f := range db.All() {
			for _, v := range f.Values {
				fr.values[v] = struct{}{}
			}
		}
	}
	for _, ex := range examples {
		add(ex.Input)
		add(ex.Want)
		for _, f := range ex.Input.All() {
			fr.preds[f.Predicate] = struct{}{}
		}
	}

	return fr
}

// Values returns the value universe in ascending order.
func (fr *Frame) Values() []Value {
	vs := make([]Value, 0, len(fr.values))
	for v := range fr.values {
		vs = append(vs, v)
	}
	sortValues(vs)

	return vs
}

// InputPredicates returns, ascending, every predicate with at least one
// fact in some example input.
func (fr *Frame) InputPredicates() []Predicate {
	ps := make([]Predicate, 0, len(fr.preds))
	for p := range fr.preds {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })

	return ps
}
