package notation

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/zentner-kyle/match-diagram/diagram"
	"github.com/zentner-kyle/match-diagram/fact"
)

// ErrSyntax reports a lexical or grammatical problem, wrapped with a
// line:column position.
var ErrSyntax = errors.New("notation: syntax error")

type rawTerm struct {
	kind     diagram.TermKind
	symbol   string
	register int
}

type rawNode struct {
	label     token
	leaf      bool
	pred      token
	terms     []rawTerm
	match     token
	refute    token
	hasMatch  bool
	hasRefute bool
}

type parser struct {
	s   *scanner
	tok token
}

func (p *parser) advance() error {
	t, err := p.s.next()
	if err != nil {
		return err
	}
	p.tok = t

	return nil
}

func (p *parser) expect(k tokenKind, what string) (token, error) {
	if p.tok.kind != k {
		return token{}, fmt.Errorf("%w: %d:%d: expected %s, found %s",
			ErrSyntax, p.tok.line, p.tok.col, what, p.tok)
	}
	t := p.tok
	if err := p.advance(); err != nil {
		return token{}, err
	}

	return t, nil
}

// Parse reads diagrams in the package syntax. The first node defined is
// the root. Constants are interned into symbols; predicates must already
// exist in registry. Structural problems in an otherwise well-formed
// parse surface as diagram construction errors.
func Parse(src string, registry *fact.Registry, symbols *fact.Symbols) (*diagram.Diagram, error) {
	p := &parser{s: newScanner(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	var raws []rawNode
	index := make(map[string]diagram.NodeID)
	for p.tok.kind != tokEOF {
		rn, err := p.node()
		if err != nil {
			return nil, err
		}
		if _, dup := index[rn.label.text]; dup {
			return nil, fmt.Errorf("%w: %d:%d: duplicate label %q",
				ErrSyntax, rn.label.line, rn.label.col, rn.label.text)
		}
		index[rn.label.text] = diagram.NodeID(len(raws))
		raws = append(raws, rn)
	}
	if len(raws) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrSyntax)
	}

	nodes := make([]diagram.Node, len(raws))
	for i, rn := range raws {
		pred, ok := registry.Lookup(rn.pred.text)
		if !ok {
			return nil, fmt.Errorf("%w: %d:%d: unknown predicate %q",
				ErrSyntax, rn.pred.line, rn.pred.col, rn.pred.text)
		}
		terms := make([]diagram.Term, len(rn.terms))
		for j, rt := range rn.terms {
			switch rt.kind {
			case diagram.TermConstant:
				terms[j] = diagram.Constant(symbols.Intern(rt.symbol))
			case diagram.TermReference:
				terms[j] = diagram.Reference(rt.register)
			default:
				terms[j] = diagram.Free(rt.register)
			}
		}
		pat := diagram.NewPattern(pred, terms...)
		if rn.leaf {
			nodes[i] = diagram.Leaf(pat)
			continue
		}
		match, err := resolve(index, rn.match, rn.hasMatch)
		if err != nil {
			return nil, err
		}
		refute, err := resolve(index, rn.refute, rn.hasRefute)
		if err != nil {
			return nil, err
		}
		nodes[i] = diagram.Branch(pat, match, refute)
	}

	return diagram.Construct(nodes, 0, registry)
}

func resolve(index map[string]diagram.NodeID, t token, present bool) (diagram.NodeID, error) {
	if !present {
		return diagram.NoNode, nil
	}
	id, ok := index[t.text]
	if !ok {
		return diagram.NoNode, fmt.Errorf("%w: %d:%d: unknown label %q",
			ErrSyntax, t.line, t.col, t.text)
	}

	return id, nil
}

// node parses one statement: label ":" (branch | leaf).
func (p *parser) node() (rawNode, error) {
	var rn rawNode
	var err error
	if rn.label, err = p.expect(tokIdent, "node label"); err != nil {
		return rn, err
	}
	if _, err = p.expect(tokColon, `":"`); err != nil {
		return rn, err
	}
	if p.tok.kind == tokIdent && p.tok.text == "output" {
		rn.leaf = true
		if err = p.advance(); err != nil {
			return rn, err
		}
	}
	if rn.pred, err = p.expect(tokIdent, "predicate"); err != nil {
		return rn, err
	}
	if rn.terms, err = p.terms(); err != nil {
		return rn, err
	}
	if rn.leaf {
		return rn, nil
	}
	if rn.match, rn.hasMatch, err = p.target(); err != nil {
		return rn, err
	}
	if rn.refute, rn.hasRefute, err = p.target(); err != nil {
		return rn, err
	}

	return rn, nil
}

// terms parses "(" (term ("," term)*)? ")".
func (p *parser) terms() ([]rawTerm, error) {
	if _, err := p.expect(tokLParen, `"("`); err != nil {
		return nil, err
	}
	var out []rawTerm
	if p.tok.kind == tokRParen {
		return out, p.advance()
	}
	for {
		t, err := p.term()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if p.tok.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tokRParen, `")" or ","`); err != nil {
		return nil, err
	}

	return out, nil
}

// term parses ":sym", "%N" or "%N <- _".
func (p *parser) term() (rawTerm, error) {
	switch p.tok.kind {
	case tokColon:
		if err := p.advance(); err != nil {
			return rawTerm{}, err
		}
		if p.tok.kind != tokIdent && p.tok.kind != tokNumber {
			return rawTerm{}, fmt.Errorf("%w: %d:%d: expected symbol, found %s",
				ErrSyntax, p.tok.line, p.tok.col, p.tok)
		}
		sym := p.tok.text
		return rawTerm{kind: diagram.TermConstant, symbol: sym}, p.advance()
	case tokPercent:
		if err := p.advance(); err != nil {
			return rawTerm{}, err
		}
		num, err := p.expect(tokNumber, "register number")
		if err != nil {
			return rawTerm{}, err
		}
		r, err := strconv.Atoi(num.text)
		if err != nil {
			return rawTerm{}, fmt.Errorf("%w: %d:%d: register %q",
				ErrSyntax, num.line, num.col, num.text)
		}
		if p.tok.kind != tokArrow {
			return rawTerm{kind: diagram.TermReference, register: r}, nil
		}
		if err := p.advance(); err != nil {
			return rawTerm{}, err
		}
		if p.tok.kind != tokIdent || p.tok.text != "_" {
			return rawTerm{}, fmt.Errorf(`%w: %d:%d: expected "_", found %s`,
				ErrSyntax, p.tok.line, p.tok.col, p.tok)
		}
		return rawTerm{kind: diagram.TermFree, register: r}, p.advance()
	default:
		return rawTerm{}, fmt.Errorf("%w: %d:%d: expected term, found %s",
			ErrSyntax, p.tok.line, p.tok.col, p.tok)
	}
}

// target parses "{" label? "}".
func (p *parser) target() (token, bool, error) {
	if _, err := p.expect(tokLBrace, `"{"`); err != nil {
		return token{}, false, err
	}
	var t token
	present := false
	if p.tok.kind == tokIdent {
		t, present = p.tok, true
		if err := p.advance(); err != nil {
			return token{}, false, err
		}
	}
	if _, err := p.expect(tokRBrace, `"}"`); err != nil {
		return token{}, false, err
	}

	return t, present, nil
}
