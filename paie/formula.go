/*
formula.go - Closed expression AST for tenant-supplied formulas

PURPOSE:
  Rubrique formulas are tenant-editable configuration data, so they are
  represented as a small closed AST (literal, variable, unary, binary,
  conditional, builtin call) parsed once per catalog snapshot and
  evaluated against named context variables. This is the load-bearing
  safety boundary: no general-purpose code execution, no loops, no I/O,
  bounded depth.

LANGUAGE:
  Arithmetic:   + - * /           (decimal, full precision)
  Comparison:   < <= > >= == !=   (yield 1 or 0)
  Logic:        && || !           (non-zero is true)
  Conditional:  cond ? a : b
  Builtins:     min(a, b, ...), max(a, b, ...), floor(x), abs(x)

  Identifiers resolve in order:
    1. Context variables (baseSalaire, brutSocial, brutFiscal,
       joursTravailles, anciennete, quotientFamilial)
    2. Prior computed rubrique amounts, by code
    3. Fiscal parameters, by code, as of the context period
  An identifier matching none of these is ErrUnknownVariable.

EXAMPLE (the seniority bonus shipped in the default catalog):
  anciennete > 2 ? baseSalaire * 0.05 * floor(anciennete / 2) : 0

SEE ALSO:
  - formula_parser.go: Tokenizer and recursive-descent parser
  - evaluator.go:      The rubrique evaluator builds the VarSource
*/
package paie

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// VARIABLE SOURCE
// =============================================================================

// VarSource supplies values for formula identifiers.
// found=false means the name is unknown (ErrUnknownVariable); a non-nil
// error propagates as-is (e.g. an ambiguous fiscal parameter).
type VarSource interface {
	LookupVar(name string) (value decimal.Decimal, found bool, err error)
}

// =============================================================================
// AST
// =============================================================================

// Expr is a parsed formula node. Expressions are immutable and safe for
// concurrent evaluation.
type Expr interface {
	Eval(vars VarSource) (decimal.Decimal, error)
	String() string
}

type litExpr struct {
	value decimal.Decimal
}

func (e *litExpr) Eval(VarSource) (decimal.Decimal, error) { return e.value, nil }
func (e *litExpr) String() string                          { return e.value.String() }

type varExpr struct {
	name string
}

func (e *varExpr) Eval(vars VarSource) (decimal.Decimal, error) {
	v, found, err := vars.LookupVar(e.name)
	if err != nil {
		return decimal.Zero, err
	}
	if !found {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownVariable, e.name)
	}
	return v, nil
}
func (e *varExpr) String() string { return e.name }

type unaryExpr struct {
	op string // "-" or "!"
	x  Expr
}

func (e *unaryExpr) Eval(vars VarSource) (decimal.Decimal, error) {
	v, err := e.x.Eval(vars)
	if err != nil {
		return decimal.Zero, err
	}
	switch e.op {
	case "-":
		return v.Neg(), nil
	case "!":
		return boolDec(v.IsZero()), nil
	}
	return decimal.Zero, fmt.Errorf("%w: unary operator %q", ErrMalformedFormula, e.op)
}
func (e *unaryExpr) String() string { return e.op + e.x.String() }

type binaryExpr struct {
	op   string
	l, r Expr
}

func (e *binaryExpr) Eval(vars VarSource) (decimal.Decimal, error) {
	l, err := e.l.Eval(vars)
	if err != nil {
		return decimal.Zero, err
	}

	// Short-circuit logic operators.
	switch e.op {
	case "&&":
		if l.IsZero() {
			return decimal.Zero, nil
		}
		r, err := e.r.Eval(vars)
		if err != nil {
			return decimal.Zero, err
		}
		return boolDec(!r.IsZero()), nil
	case "||":
		if !l.IsZero() {
			return one, nil
		}
		r, err := e.r.Eval(vars)
		if err != nil {
			return decimal.Zero, err
		}
		return boolDec(!r.IsZero()), nil
	}

	r, err := e.r.Eval(vars)
	if err != nil {
		return decimal.Zero, err
	}

	switch e.op {
	case "+":
		return l.Add(r), nil
	case "-":
		return l.Sub(r), nil
	case "*":
		return l.Mul(r), nil
	case "/":
		if r.IsZero() {
			return decimal.Zero, ErrDivisionByZero
		}
		return l.Div(r), nil
	case "<":
		return boolDec(l.LessThan(r)), nil
	case "<=":
		return boolDec(l.LessThanOrEqual(r)), nil
	case ">":
		return boolDec(l.GreaterThan(r)), nil
	case ">=":
		return boolDec(l.GreaterThanOrEqual(r)), nil
	case "==":
		return boolDec(l.Equal(r)), nil
	case "!=":
		return boolDec(!l.Equal(r)), nil
	}
	return decimal.Zero, fmt.Errorf("%w: operator %q", ErrMalformedFormula, e.op)
}
func (e *binaryExpr) String() string {
	return "(" + e.l.String() + " " + e.op + " " + e.r.String() + ")"
}

type condExpr struct {
	cond, then, els Expr
}

func (e *condExpr) Eval(vars VarSource) (decimal.Decimal, error) {
	c, err := e.cond.Eval(vars)
	if err != nil {
		return decimal.Zero, err
	}
	if !c.IsZero() {
		return e.then.Eval(vars)
	}
	return e.els.Eval(vars)
}
func (e *condExpr) String() string {
	return "(" + e.cond.String() + " ? " + e.then.String() + " : " + e.els.String() + ")"
}

type callExpr struct {
	fn   string
	args []Expr
}

func (e *callExpr) Eval(vars VarSource) (decimal.Decimal, error) {
	vals := make([]decimal.Decimal, len(e.args))
	for i, a := range e.args {
		v, err := a.Eval(vars)
		if err != nil {
			return decimal.Zero, err
		}
		vals[i] = v
	}

	switch e.fn {
	case "min":
		out := vals[0]
		for _, v := range vals[1:] {
			if v.LessThan(out) {
				out = v
			}
		}
		return out, nil
	case "max":
		out := vals[0]
		for _, v := range vals[1:] {
			if v.GreaterThan(out) {
				out = v
			}
		}
		return out, nil
	case "floor":
		return vals[0].Floor(), nil
	case "abs":
		return vals[0].Abs(), nil
	}
	return decimal.Zero, fmt.Errorf("%w: unknown function %q", ErrMalformedFormula, e.fn)
}
func (e *callExpr) String() string {
	s := e.fn + "("
	for i, a := range e.args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

func boolDec(b bool) decimal.Decimal {
	if b {
		return one
	}
	return decimal.Zero
}

// =============================================================================
// STATIC VARIABLE MAP - For tests and one-off evaluations
// =============================================================================

// Vars is a VarSource backed by a plain map.
type Vars map[string]decimal.Decimal

func (v Vars) LookupVar(name string) (decimal.Decimal, bool, error) {
	val, ok := v[name]
	return val, ok, nil
}
