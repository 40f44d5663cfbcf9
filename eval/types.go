// Package eval declares Snapshot, SnapshotSet, options, and the sentinel
// errors of the evaluator.
package eval

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zentner-kyle/match-diagram/fact"
)

// Sentinel errors for evaluation.
var (
	// ErrNonTerminating is returned when a cyclic diagram fails to reach
	// fixpoint within the configured round ceiling.
	ErrNonTerminating = errors.New("eval: diagram did not reach fixpoint within round limit")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("eval: invalid option supplied")
)

// DefaultRoundLimit is the round ceiling applied when WithRoundLimit is not
// given. Diagrams in the search population are small, so a linear chain
// never comes close; only genuinely unstable cycles hit it.
const DefaultRoundLimit = 64

// Option configures evaluation via functional arguments. An invalid value
// is recorded and surfaced as ErrOptionViolation when evaluation runs.
type Option func(*Options)

// Options holds evaluation parameters.
type Options struct {
	// RoundLimit bounds the number of propagation rounds.
	RoundLimit int

	err error
}

// DefaultOptions returns Options with the default round ceiling.
func DefaultOptions() Options {
	return Options{RoundLimit: DefaultRoundLimit}
}

// WithRoundLimit sets the propagation round ceiling. Values below 1 are an
// option violation.
func WithRoundLimit(n int) Option {
	return func(o *Options) {
		if n < 1 {
			o.err = fmt.Errorf("%w: round limit must be >= 1, got %d", ErrOptionViolation, n)
			return
		}
		o.RoundLimit = n
	}
}

// Snapshot is one register binding state. Snapshots are immutable: Bind
// returns an extended copy. The zero Snapshot has no registers; obtain
// sized snapshots from the evaluator.
type Snapshot struct {
	values []fact.Value
	bound  []bool
}

// NewSnapshot returns an all-unbound snapshot over registers slots.
func NewSnapshot(registers int) Snapshot {
	return Snapshot{
		values: make([]fact.Value, registers),
		bound:  make([]bool, registers),
	}
}

// Registers reports the snapshot's register count.
func (s Snapshot) Registers() int { return len(s.values) }

// Lookup returns the value bound to r, or false if r is unbound or out of
// range.
func (s Snapshot) Lookup(r int) (fact.Value, bool) {
	if r < 0 || r >= len(s.values) || !s.bound[r] {
		return 0, false
	}

	return s.values[r], true
}

// Bind returns a copy of s with r bound to v. Binding an already-bound
// register rebinds it; a register past the snapshot's size grows the copy
// to hold it. The receiver is never modified.
func (s Snapshot) Bind(r int, v fact.Value) Snapshot {
	size := len(s.values)
	if r >= size {
		size = r + 1
	}
	out := Snapshot{
		values: make([]fact.Value, size),
		bound:  make([]bool, size),
	}
	copy(out.values, s.values)
	copy(out.bound, s.bound)
	out.values[r] = v
	out.bound[r] = true

	return out
}

// Key returns a canonical string identity for set membership.
func (s Snapshot) Key() string {
	var b strings.Builder
	for r := range s.values {
		if r > 0 {
			b.WriteByte(',')
		}
		if s.bound[r] {
			b.WriteString(strconv.Itoa(int(s.values[r])))
		} else {
			b.WriteByte('_')
		}
	}

	return b.String()
}

// Equal reports whether two snapshots bind the same registers to the same
// values.
func (s Snapshot) Equal(o Snapshot) bool {
	if len(s.values) != len(o.values) {
		return false
	}
	for r := range s.values {
		if s.bound[r] != o.bound[r] || (s.bound[r] && s.values[r] != o.values[r]) {
			return false
		}
	}

	return true
}

// SnapshotSet is a set of snapshots. Equality is as a set, independent of
// insertion order.
type SnapshotSet struct {
	m map[string]Snapshot
}

// NewSnapshotSet returns an empty set.
func NewSnapshotSet() *SnapshotSet {
	return &SnapshotSet{m: make(map[string]Snapshot)}
}

// Add inserts s, reporting whether it was new.
func (set *SnapshotSet) Add(s Snapshot) bool {
	k := s.Key()
	if _, dup := set.m[k]; dup {
		return false
	}
	set.m[k] = s

	return true
}

// Contains reports membership.
func (set *SnapshotSet) Contains(s Snapshot) bool {
	_, ok := set.m[s.Key()]
	return ok
}

// Len reports the set's size.
func (set *SnapshotSet) Len() int { return len(set.m) }

// Snapshots returns the members in a deterministic (key-sorted) order.
func (set *SnapshotSet) Snapshots() []Snapshot {
	keys := make([]string, 0, len(set.m))
	for k := range set.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Snapshot, len(keys))
	for i, k := range keys {
		out[i] = set.m[k]
	}

	return out
}

// Equal reports set equality.
func (set *SnapshotSet) Equal(o *SnapshotSet) bool {
	if len(set.m) != len(o.m) {
		return false
	}
	for k := range set.m {
		if _, ok := o.m[k]; !ok {
			return false
		}
	}

	return true
}

// Clone returns a copy of the set. Snapshots are immutable, so members are
// shared.
func (set *SnapshotSet) Clone() *SnapshotSet {
	out := &SnapshotSet{m: make(map[string]Snapshot, len(set.m))}
	for k, s := range set.m {
		out.m[k] = s
	}

	return out
}
