package analyze

import (
	"github.com/zentner-kyle/match-diagram/diagram"
	"github.com/zentner-kyle/match-diagram/eval"
	"github.com/zentner-kyle/match-diagram/fact"
	"github.com/zentner-kyle/match-diagram/mutate"
)

// Picker chooses the guard fact for an escape insertion targeting the
// failing input, given the other examples' inputs. The second result is
// false when the input offers no usable guard at all.
//
// The guard wants three properties: present in the failing input, unique
// for its predicate there (so no refute edge re-enters the old root on the
// failing input), and absent from every other input while its predicate
// still carries facts in each (so the refute edge preserves the old root's
// behavior everywhere else). A guard with all three makes the escape exact
// on the failing example; DistinguishingFact degrades gracefully when only
// some hold.
type Picker func(failing *fact.Database, others []*fact.Database) (fact.Fact, bool)

// DistinguishingFact is the default Picker. It prefers a fact that is
// unique for its predicate in the failing input, absent from every other
// input, and whose predicate is populated in every other input; then any
// fact unique for its predicate; then the first fact outright.
func DistinguishingFact(failing *fact.Database, others []*fact.Database) (fact.Fact, bool) {
	all := failing.All()
	if len(all) == 0 {
		return fact.Fact{}, false
	}
	var unique fact.Fact
	haveUnique := false
	for _, f := range all {
		if len(failing.Facts(f.Predicate)) != 1 {
			continue
		}
		if !haveUnique {
			unique, haveUnique = f, true
		}
		good := true
		for _, db := range others {
			if db.Contains(f) || len(db.Facts(f.Predicate)) == 0 {
				good = false
				break
			}
		}
		if good {
			return f, true
		}
	}
	if haveUnique {
		return unique, true
	}

	return all[0], true
}

// escapes synthesizes one InsertGuardedOutput per failing example: a guard
// chosen by the picker whose match side emits the example's entire desired
// output (via a fan-out spine when there is more than one fact, or nothing
// at all when the desired output is empty) and whose refute side falls
// through to the old root. Examples needing a fan-out no input predicate
// can drive are skipped.
func escapes(d *diagram.Diagram, examples []fact.Example, o Options) []mutate.Spec {
	var out []mutate.Spec
	for i, ex := range examples {
		got, err := eval.Evaluate(d, ex.Input, eval.WithRoundLimit(o.roundLimit))
		if err != nil || got.Equal(ex.Want) {
			continue
		}
		want := ex.Want.All()
		others := make([]*fact.Database, 0, len(examples)-1)
		for j, other := range examples {
			if j != i {
				others = append(others, other.Input)
			}
		}
		guard, ok := o.picker(ex.Input, others)
		if !ok {
			continue
		}
		var spine fact.Fact
		if len(want) > 1 {
			spine, ok = spineFact(ex.Input)
			if !ok {
				continue
			}
		}
		out = append(out, mutate.InsertGuardedOutput{
			Guards:  []fact.Fact{guard},
			Spine:   spine,
			Outputs: want,
		})
	}

	return out
}

// spineFact returns a fact of some predicate carrying at least two facts in
// db. The spine branch matches the fact once and refutes once per sibling,
// which is what advances the fan-out to the next output.
func spineFact(db *fact.Database) (fact.Fact, bool) {
	for _, f := range db.All() {
		if len(db.Facts(f.Predicate)) >= 2 {
			return f, true
		}
	}

	return fact.Fact{}, false
}
