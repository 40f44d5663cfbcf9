package notation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zentner-kyle/match-diagram/diagram"
	"github.com/zentner-kyle/match-diagram/fact"
)

// Print renders d in the package syntax, one node per line. The root is
// listed first and the remaining nodes follow in index order, labeled n0,
// n1, and so on in emission order; constants print through symbols, or as
// their raw value when the table has no name for them.
func Print(d *diagram.Diagram, symbols *fact.Symbols) string {
	order := make([]diagram.NodeID, 0, d.Size())
	order = append(order, d.Root())
	for id := diagram.NodeID(0); int(id) < d.Size(); id++ {
		if id != d.Root() {
			order = append(order, id)
		}
	}
	label := make(map[diagram.NodeID]string, len(order))
	for i, id := range order {
		label[id] = "n" + strconv.Itoa(i)
	}

	registry := d.Registry()
	var b strings.Builder
	for _, id := range order {
		n := d.Node(id)
		b.WriteString(label[id])
		b.WriteString(": ")
		if n.Kind == diagram.KindLeaf {
			b.WriteString("output ")
		}
		b.WriteString(registry.Name(n.Pattern.Predicate))
		b.WriteByte('(')
		for i, t := range n.Pattern.Terms {
			if i > 0 {
				b.WriteString(", ")
			}
			writeTerm(&b, t, symbols)
		}
		b.WriteByte(')')
		if n.Kind == diagram.KindBranch {
			writeTarget(&b, n.Match, label)
			writeTarget(&b, n.Refute, label)
		}
		b.WriteByte('\n')
	}

	return b.String()
}

func writeTerm(b *strings.Builder, t diagram.Term, symbols *fact.Symbols) {
	switch t.Kind {
	case diagram.TermConstant:
		name, ok := symbols.Name(t.Value)
		if !ok {
			name = strconv.Itoa(int(t.Value))
		}
		b.WriteByte(':')
		b.WriteString(name)
	case diagram.TermReference:
		fmt.Fprintf(b, "%%%d", t.Register)
	default:
		fmt.Fprintf(b, "%%%d <- _", t.Register)
	}
}

func writeTarget(b *strings.Builder, id diagram.NodeID, label map[diagram.NodeID]string) {
	b.WriteString(" {")
	if id != diagram.NoNode {
		b.WriteString(label[id])
	}
	b.WriteByte('}')
}
