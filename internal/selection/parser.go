package selection

import (
	"math"
	"strconv"
	"strings"

	"beamplan/pkg/domain"
)

// Predicate decides whether an entry matches a compiled expression.
type Predicate func(domain.Entry) bool

// Attributes is the recognized attribute vocabulary, shared with tabulation.
var Attributes = []string{"ID", "Comment", "U", "V", "Area", "Layer", "DoseFactor"}

// IsAttribute reports whether name is part of the selection vocabulary.
func IsAttribute(name string) bool {
	for _, a := range Attributes {
		if a == name {
			return true
		}
	}
	return false
}

type parser struct {
	lex  *lexer
	tok  token
	expr string
}

// Compile parses an expression into a predicate. It returns
// SelectionSyntaxError on malformed input and UnknownAttributeError when an
// identifier is not a recognized attribute.
func Compile(expr string) (Predicate, error) {
	p := &parser{lex: &lexer{expr: expr}, expr: expr}
	if err := p.advance(); err != nil {
		return nil, err
	}
	pred, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errf("unexpected trailing input")
	}
	return pred, nil
}

// Select returns the entries matching expr, preserving input order. An empty
// result is valid.
func Select(entries []domain.Entry, expr string) ([]domain.Entry, error) {
	pred, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	var out []domain.Entry
	for _, e := range entries {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errf(reason string) error {
	return domain.SelectionSyntaxError{Expression: p.expr, Token: p.tok.text, Pos: p.tok.pos, Reason: reason}
}

func (p *parser) parseOr() (Predicate, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokIdent && p.tok.text == "or" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		l, r := left, right
		left = func(e domain.Entry) bool { return l(e) || r(e) }
	}
	return left, nil
}

func (p *parser) parseAnd() (Predicate, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokIdent && p.tok.text == "and" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		l, r := left, right
		left = func(e domain.Entry) bool { return l(e) && r(e) }
	}
	return left, nil
}

func (p *parser) parseNot() (Predicate, error) {
	if p.tok.kind == tokIdent && p.tok.text == "not" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return func(e domain.Entry) bool { return !inner(e) }, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Predicate, error) {
	if p.tok.kind == tokLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.errf("expected closing parenthesis")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Predicate, error) {
	if p.tok.kind != tokIdent {
		return nil, p.errf("expected attribute name")
	}
	attr := p.tok.text
	if !IsAttribute(attr) {
		return nil, domain.UnknownAttributeError{Name: attr}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind != tokOp {
		return nil, p.errf("expected comparison operator")
	}
	op := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	lit := p.tok
	switch lit.kind {
	case tokNumber, tokString:
	default:
		return nil, p.errf("expected literal value")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.buildComparison(attr, op, lit)
}

func (p *parser) buildComparison(attr, op string, lit token) (Predicate, error) {
	if attr == "Comment" {
		if lit.kind != tokString {
			return nil, domain.SelectionSyntaxError{Expression: p.expr, Token: lit.text, Pos: lit.pos, Reason: "Comment requires a quoted string literal"}
		}
		want := lit.text
		return func(e domain.Entry) bool {
			return compareStrings(e.Comment, op, want)
		}, nil
	}
	if lit.kind != tokNumber {
		return nil, domain.SelectionSyntaxError{Expression: p.expr, Token: lit.text, Pos: lit.pos, Reason: attr + " requires a numeric literal"}
	}
	want, err := strconv.ParseFloat(lit.text, 64)
	if err != nil {
		return nil, domain.SelectionSyntaxError{Expression: p.expr, Token: lit.text, Pos: lit.pos, Reason: "malformed number"}
	}
	switch attr {
	case "Layer":
		// Membership semantics: == tests presence, != absence; ordered
		// operators hold when any member satisfies them. An empty layer set
		// means "all layers" and matches nothing explicitly.
		return func(e domain.Entry) bool {
			switch op {
			case "!=":
				for _, l := range e.Layers {
					if float64(l) == want {
						return false
					}
				}
				return true
			default:
				for _, l := range e.Layers {
					if compareFloats(float64(l), op, want) {
						return true
					}
				}
				return false
			}
		}, nil
	case "Area":
		// Unset areas satisfy only !=.
		return func(e domain.Entry) bool {
			if e.Area == nil {
				return op == "!="
			}
			return compareFloats(e.Area.Surface(), op, want)
		}, nil
	}
	return func(e domain.Entry) bool {
		return compareFloats(numericAttr(e, attr), op, want)
	}, nil
}

func numericAttr(e domain.Entry, attr string) float64 {
	switch attr {
	case "ID":
		return float64(e.ID)
	case "U":
		return e.Position.U
	case "V":
		return e.Position.V
	case "DoseFactor":
		return e.DoseFactor
	}
	return math.NaN()
}

func compareFloats(got float64, op string, want float64) bool {
	switch op {
	case "==":
		return got == want
	case "!=":
		return got != want
	case "<":
		return got < want
	case "<=":
		return got <= want
	case ">":
		return got > want
	case ">=":
		return got >= want
	}
	return false
}

func compareStrings(got, op, want string) bool {
	c := strings.Compare(got, want)
	switch op {
	case "==":
		return c == 0
	case "!=":
		return c != 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	}
	return false
}
