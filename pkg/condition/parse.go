package condition

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Parse reads a condition expression as written in plan documents:
//
//	gazebo                      flag (gazebo == 'true')
//	camera && gazebo            conjunction
//	!lidar || mode == 'fast'    negation, disjunction, equality
//	world != 'empty'            inequality
//
// An empty expression is Always.
func Parse(expr string) (Predicate, error) {
	toks, err := lex(expr)
	if err != nil {
		return Predicate{}, err
	}
	if len(toks) == 0 {
		return Always(), nil
	}
	p := &parser{toks: toks}
	pred, err := p.or()
	if err != nil {
		return Predicate{}, err
	}
	if p.pos != len(p.toks) {
		return Predicate{}, fmt.Errorf("condition %q: unexpected %q", expr, p.toks[p.pos].text)
	}
	return pred, nil
}

// MustParse is like Parse but panics on error. Intended for static definitions.
func MustParse(expr string) Predicate {
	p, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return p
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokOp
)

type token struct {
	kind tokenKind
	text string
}

func lex(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		c := rune(s[i])
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(' || c == ')':
			toks = append(toks, token{tokOp, string(c)})
			i++
		case strings.HasPrefix(s[i:], "&&"), strings.HasPrefix(s[i:], "||"),
			strings.HasPrefix(s[i:], "=="), strings.HasPrefix(s[i:], "!="):
			toks = append(toks, token{tokOp, s[i : i+2]})
			i += 2
		case c == '!':
			toks = append(toks, token{tokOp, "!"})
			i++
		case c == '\'' || c == '"':
			var sb strings.Builder
			j := i + 1
			for ; j < len(s) && rune(s[j]) != c; j++ {
				if s[j] == '\\' && j+1 < len(s) {
					j++
				}
				sb.WriteByte(s[j])
			}
			if j >= len(s) {
				return nil, fmt.Errorf("condition %q: unterminated string", s)
			}
			toks = append(toks, token{tokString, sb.String()})
			i = j + 1
		case isWordByte(s[i]):
			j := i
			for j < len(s) && (isWordByte(s[j]) || s[j] == '.' || s[j] == '-') {
				j++
			}
			toks = append(toks, token{tokIdent, s[i:j]})
			i = j
		default:
			r, _ := utf8.DecodeRuneInString(s[i:])
			return nil, fmt.Errorf("condition %q: unexpected character %q", s, r)
		}
	}
	return toks, nil
}

// isWordByte reports ASCII letters, digits and '_'. Argument names are ASCII;
// other values must be quoted.
func isWordByte(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peekOp(op string) bool {
	return p.pos < len(p.toks) && p.toks[p.pos].kind == tokOp && p.toks[p.pos].text == op
}

func (p *parser) or() (Predicate, error) {
	left, err := p.and()
	if err != nil {
		return Predicate{}, err
	}
	operands := []Predicate{left}
	for p.peekOp("||") {
		p.pos++
		right, err := p.and()
		if err != nil {
			return Predicate{}, err
		}
		operands = append(operands, right)
	}
	if len(operands) == 1 {
		return left, nil
	}
	return Or(operands...), nil
}

func (p *parser) and() (Predicate, error) {
	left, err := p.unary()
	if err != nil {
		return Predicate{}, err
	}
	operands := []Predicate{left}
	for p.peekOp("&&") {
		p.pos++
		right, err := p.unary()
		if err != nil {
			return Predicate{}, err
		}
		operands = append(operands, right)
	}
	if len(operands) == 1 {
		return left, nil
	}
	return And(operands...), nil
}

func (p *parser) unary() (Predicate, error) {
	if p.peekOp("!") {
		p.pos++
		inner, err := p.unary()
		if err != nil {
			return Predicate{}, err
		}
		return Not(inner), nil
	}
	return p.primary()
}

func (p *parser) primary() (Predicate, error) {
	if p.pos >= len(p.toks) {
		return Predicate{}, fmt.Errorf("condition: unexpected end of expression")
	}
	if p.peekOp("(") {
		p.pos++
		inner, err := p.or()
		if err != nil {
			return Predicate{}, err
		}
		if !p.peekOp(")") {
			return Predicate{}, fmt.Errorf("condition: missing ')'")
		}
		p.pos++
		return inner, nil
	}

	tok := p.toks[p.pos]
	if tok.kind != tokIdent {
		return Predicate{}, fmt.Errorf("condition: expected argument name, got %q", tok.text)
	}
	p.pos++

	switch tok.text {
	case "true":
		return Always(), nil
	case "false":
		return Or(), nil
	}

	if p.peekOp("==") || p.peekOp("!=") {
		negate := p.toks[p.pos].text == "!="
		p.pos++
		if p.pos >= len(p.toks) || p.toks[p.pos].kind == tokOp {
			return Predicate{}, fmt.Errorf("condition: expected value after comparison on %q", tok.text)
		}
		value := p.toks[p.pos].text
		p.pos++
		eq := Equals(tok.text, value)
		if negate {
			return Not(eq), nil
		}
		return eq, nil
	}
	return Flag(tok.text), nil
}
