/*
formula_parser.go - Tokenizer and parser for the formula language

PURPOSE:
  Turns a formula string into an Expr tree. Parsing happens once, at
  catalog snapshot build; evaluation never re-parses.

GRAMMAR (precedence, low to high):
  ternary     := or ("?" ternary ":" ternary)?
  or          := and ("||" and)*
  and         := equality ("&&" equality)*
  equality    := relational (("==" | "!=") relational)*
  relational  := additive (("<" | "<=" | ">" | ">=") additive)*
  additive    := multiplicative (("+" | "-") multiplicative)*
  multiplicative := unary (("*" | "/") unary)*
  unary       := ("-" | "!") unary | primary
  primary     := NUMBER | IDENT | IDENT "(" args ")" | "(" ternary ")"

DEPTH BOUND:
  Nesting is capped (maxFormulaDepth); deeper input is rejected as
  ErrMalformedFormula. Together with the absence of loops this bounds
  evaluation cost for any tenant-supplied string.
*/
package paie

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

const maxFormulaDepth = 32

// builtinArity maps callable names to (min, max) argument counts.
var builtinArity = map[string][2]int{
	"min":   {2, 8},
	"max":   {2, 8},
	"floor": {1, 1},
	"abs":   {1, 1},
}

// ParseFormula parses a formula string into an immutable Expr.
// Errors wrap ErrMalformedFormula.
func ParseFormula(src string) (Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("%w: empty formula", ErrMalformedFormula)
	}

	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}
	expr, err := p.parseTernary(0)
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, fmt.Errorf("%w: unexpected %q", ErrMalformedFormula, p.peek().text)
	}
	return expr, nil
}

// =============================================================================
// TOKENIZER
// =============================================================================

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

var twoCharOps = []string{"<=", ">=", "==", "!=", "&&", "||"}

func tokenize(src string) ([]token, error) {
	var toks []token
	runes := []rune(src)
	i := 0

	for i < len(runes) {
		c := runes[i]

		if unicode.IsSpace(c) {
			i++
			continue
		}

		// Numbers: digits with optional one decimal point.
		if unicode.IsDigit(c) {
			start := i
			seenDot := false
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				if runes[i] == '.' {
					if seenDot {
						return nil, fmt.Errorf("%w: bad number at position %d", ErrMalformedFormula, start)
					}
					seenDot = true
				}
				i++
			}
			toks = append(toks, token{kind: tokNumber, text: string(runes[start:i]), pos: start})
			continue
		}

		// Identifiers: letter or underscore, then letters/digits/underscores.
		if unicode.IsLetter(c) || c == '_' {
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(runes[start:i]), pos: start})
			continue
		}

		// Two-character operators first.
		if i+1 < len(runes) {
			pair := string(runes[i : i+2])
			matched := false
			for _, op := range twoCharOps {
				if pair == op {
					toks = append(toks, token{kind: tokOp, text: op, pos: i})
					i += 2
					matched = true
					break
				}
			}
			if matched {
				continue
			}
		}

		switch c {
		case '+', '-', '*', '/', '<', '>', '!', '?', ':', '(', ')', ',':
			toks = append(toks, token{kind: tokOp, text: string(c), pos: i})
			i++
		default:
			return nil, fmt.Errorf("%w: unexpected character %q at position %d", ErrMalformedFormula, c, i)
		}
	}

	toks = append(toks, token{kind: tokEOF, pos: len(runes)})
	return toks, nil
}

// =============================================================================
// PARSER - Recursive descent with precedence climbing
// =============================================================================

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token  { return p.toks[p.pos] }
func (p *parser) atEnd() bool  { return p.peek().kind == tokEOF }
func (p *parser) next() token  { t := p.toks[p.pos]; p.pos++; return t }

func (p *parser) acceptOp(ops ...string) (string, bool) {
	t := p.peek()
	if t.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if t.text == op {
			p.pos++
			return op, true
		}
	}
	return "", false
}

func (p *parser) expectOp(op string) error {
	if _, ok := p.acceptOp(op); !ok {
		return fmt.Errorf("%w: expected %q, got %q", ErrMalformedFormula, op, p.peek().text)
	}
	return nil
}

func (p *parser) checkDepth(depth int) error {
	if depth > maxFormulaDepth {
		return fmt.Errorf("%w: nesting deeper than %d", ErrMalformedFormula, maxFormulaDepth)
	}
	return nil
}

func (p *parser) parseTernary(depth int) (Expr, error) {
	if err := p.checkDepth(depth); err != nil {
		return nil, err
	}

	cond, err := p.parseOr(depth + 1)
	if err != nil {
		return nil, err
	}

	if _, ok := p.acceptOp("?"); !ok {
		return cond, nil
	}

	then, err := p.parseTernary(depth + 1)
	if err != nil {
		return nil, err
	}
	if err := p.expectOp(":"); err != nil {
		return nil, err
	}
	els, err := p.parseTernary(depth + 1)
	if err != nil {
		return nil, err
	}
	return &condExpr{cond: cond, then: then, els: els}, nil
}

func (p *parser) parseBinary(depth int, sub func(int) (Expr, error), ops ...string) (Expr, error) {
	if err := p.checkDepth(depth); err != nil {
		return nil, err
	}
	left, err := sub(depth + 1)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp(ops...)
		if !ok {
			return left, nil
		}
		right, err := sub(depth + 1)
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: op, l: left, r: right}
	}
}

func (p *parser) parseOr(depth int) (Expr, error) {
	return p.parseBinary(depth, p.parseAnd, "||")
}

func (p *parser) parseAnd(depth int) (Expr, error) {
	return p.parseBinary(depth, p.parseEquality, "&&")
}

func (p *parser) parseEquality(depth int) (Expr, error) {
	return p.parseBinary(depth, p.parseRelational, "==", "!=")
}

func (p *parser) parseRelational(depth int) (Expr, error) {
	return p.parseBinary(depth, p.parseAdditive, "<=", ">=", "<", ">")
}

func (p *parser) parseAdditive(depth int) (Expr, error) {
	return p.parseBinary(depth, p.parseMultiplicative, "+", "-")
}

func (p *parser) parseMultiplicative(depth int) (Expr, error) {
	return p.parseBinary(depth, p.parseUnary, "*", "/")
}

func (p *parser) parseUnary(depth int) (Expr, error) {
	if err := p.checkDepth(depth); err != nil {
		return nil, err
	}
	if op, ok := p.acceptOp("-", "!"); ok {
		x, err := p.parseUnary(depth + 1)
		if err != nil {
			return nil, err
		}
		return &unaryExpr{op: op, x: x}, nil
	}
	return p.parsePrimary(depth + 1)
}

func (p *parser) parsePrimary(depth int) (Expr, error) {
	if err := p.checkDepth(depth); err != nil {
		return nil, err
	}

	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.next()
		v, err := decimal.NewFromString(t.text)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q", ErrMalformedFormula, t.text)
		}
		return &litExpr{value: v}, nil

	case tokIdent:
		p.next()
		if _, ok := p.acceptOp("("); ok {
			return p.parseCall(t.text, depth)
		}
		return &varExpr{name: t.text}, nil

	case tokOp:
		if t.text == "(" {
			p.next()
			inner, err := p.parseTernary(depth + 1)
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return inner, nil
		}
	}

	return nil, fmt.Errorf("%w: unexpected %q", ErrMalformedFormula, t.text)
}

func (p *parser) parseCall(fn string, depth int) (Expr, error) {
	arity, ok := builtinArity[fn]
	if !ok {
		return nil, fmt.Errorf("%w: unknown function %q", ErrMalformedFormula, fn)
	}

	var args []Expr
	if _, ok := p.acceptOp(")"); !ok {
		for {
			arg, err := p.parseTernary(depth + 1)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if _, ok := p.acceptOp(","); ok {
				continue
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			break
		}
	}

	if len(args) < arity[0] || len(args) > arity[1] {
		return nil, fmt.Errorf("%w: %s expects %d to %d arguments, got %d",
			ErrMalformedFormula, fn, arity[0], arity[1], len(args))
	}
	return &callExpr{fn: fn, args: args}, nil
}
