package notation

import "fmt"

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokColon
	tokPercent
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokComma
	tokArrow // "<-"
)

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokIdent, tokNumber:
		return fmt.Sprintf("%q", t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

// scanner tokenizes source text, tracking line and column for diagnostics.
type scanner struct {
	src  string
	pos  int
	line int
	col  int
}

func newScanner(src string) *scanner {
	return &scanner{src: src, line: 1, col: 1}
}

func (s *scanner) advance() byte {
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}

	return c
}

func (s *scanner) skip() {
	for s.pos < len(s.src) {
		switch c := s.src[s.pos]; {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			s.advance()
		case c == '#':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.advance()
			}
		default:
			return
		}
	}
}

func isIdent(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// next returns the following token, or an ErrSyntax-wrapped error on a
// byte no token starts with.
func (s *scanner) next() (token, error) {
	s.skip()
	t := token{line: s.line, col: s.col}
	if s.pos >= len(s.src) {
		t.kind = tokEOF
		return t, nil
	}
	c := s.src[s.pos]
	switch {
	case isDigit(c):
		start := s.pos
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.advance()
		}
		t.kind, t.text = tokNumber, s.src[start:s.pos]
	case isIdent(c):
		start := s.pos
		for s.pos < len(s.src) && isIdent(s.src[s.pos]) {
			s.advance()
		}
		t.kind, t.text = tokIdent, s.src[start:s.pos]
	case c == ':':
		s.advance()
		t.kind, t.text = tokColon, ":"
	case c == '%':
		s.advance()
		t.kind, t.text = tokPercent, "%"
	case c == '(':
		s.advance()
		t.kind, t.text = tokLParen, "("
	case c == ')':
		s.advance()
		t.kind, t.text = tokRParen, ")"
	case c == '{':
		s.advance()
		t.kind, t.text = tokLBrace, "{"
	case c == '}':
		s.advance()
		t.kind, t.text = tokRBrace, "}"
	case c == ',':
		s.advance()
		t.kind, t.text = tokComma, ","
	case c == '<' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '-':
		s.advance()
		s.advance()
		t.kind, t.text = tokArrow, "<-"
	default:
		return t, fmt.Errorf("%w: %d:%d: unexpected character %q", ErrSyntax, s.line, s.col, c)
	}

	return t, nil
}
