// Package selection implements the boolean query language used to pick
// positionlist entries for bulk operations. Expressions combine attribute
// comparisons ("U < 5", "Comment == 'grating'", "Layer == 2") with and/or/not
// and parentheses. Compilation produces a plain predicate; nothing is
// evaluated dynamically.
package selection

import (
	"strings"
	"unicode"

	"beamplan/pkg/domain"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	expr string
	pos  int
}

func (l *lexer) errf(pos int, tok, reason string) error {
	return domain.SelectionSyntaxError{Expression: l.expr, Token: tok, Pos: pos, Reason: reason}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.expr) && unicode.IsSpace(rune(l.expr[l.pos])) {
		l.pos++
	}
	if l.pos >= len(l.expr) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}
	start := l.pos
	c := l.expr[l.pos]
	switch {
	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case c == '\'' || c == '"':
		quote := c
		l.pos++
		for l.pos < len(l.expr) && l.expr[l.pos] != quote {
			l.pos++
		}
		if l.pos >= len(l.expr) {
			return token{}, l.errf(start, "", "unterminated string literal")
		}
		text := l.expr[start+1 : l.pos]
		l.pos++
		return token{kind: tokString, text: text, pos: start}, nil
	case strings.ContainsRune("=!<>", rune(c)):
		op := l.expr[start : start+1]
		l.pos++
		if l.pos < len(l.expr) && l.expr[l.pos] == '=' {
			op = l.expr[start : l.pos+1]
			l.pos++
		}
		switch op {
		case "==", "!=", "<", "<=", ">", ">=":
			return token{kind: tokOp, text: op, pos: start}, nil
		}
		return token{}, l.errf(start, op, "unrecognized operator")
	case c == '-' || c == '+' || c == '.' || unicode.IsDigit(rune(c)):
		l.pos++
		for l.pos < len(l.expr) {
			c := l.expr[l.pos]
			if unicode.IsDigit(rune(c)) || c == '.' || c == 'e' || c == 'E' {
				l.pos++
				continue
			}
			// exponent sign
			if (c == '-' || c == '+') && (l.expr[l.pos-1] == 'e' || l.expr[l.pos-1] == 'E') {
				l.pos++
				continue
			}
			break
		}
		return token{kind: tokNumber, text: l.expr[start:l.pos], pos: start}, nil
	case unicode.IsLetter(rune(c)) || c == '_':
		l.pos++
		for l.pos < len(l.expr) {
			c := rune(l.expr[l.pos])
			if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' {
				l.pos++
				continue
			}
			break
		}
		return token{kind: tokIdent, text: l.expr[start:l.pos], pos: start}, nil
	}
	return token{}, l.errf(start, string(c), "unexpected character")
}
