/*
bareme.go - Progressive income tax (IRPP) bracket evaluator

PURPOSE:
  Encodes a progressive tax schedule as data and computes the tax due
  for a taxable income and family quotient. The schedule is a list of
  ordered, contiguous [Lower, Upper) brackets, the last one open-ended.

ALGORITHM:
  1. perPart = taxable / quotient          (quotient >= 1, the family
     quotient splits income across fiscal parts)
  2. For each bracket, the marginal amount is
         rate * (min(perPart, Upper) - Lower)
     clipped to zero when perPart <= Lower
  3. tax = sum(marginal) * quotient

VALIDATION:
  Bracket tables are validated ONCE, at catalog load (Validate):
  sorted, contiguous from 0, no overlaps, rates non-decreasing, last
  bracket open. ComputeIRPP assumes a valid bareme and never re-checks.

EDGE CASES:
  taxable <= 0      -> zero tax
  quotient < 1      -> ErrInvalidQuotient

SEE ALSO:
  - catalog.go:     Validate is called from NewSnapshot
  - calculation.go: The orchestrator feeds taxable income here
*/
package paie

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BRACKETS
// =============================================================================

// Bracket is one tranche of a progressive schedule: income in
// [Lower, Upper) is taxed at the marginal Rate. Upper nil = open-ended
// (the highest bracket).
type Bracket struct {
	Lower decimal.Decimal
	Upper *decimal.Decimal
	Rate  decimal.Decimal
}

// Bareme is an ordered progressive tax schedule.
type Bareme struct {
	Brackets []Bracket
}

// =============================================================================
// LOAD-TIME VALIDATION
// =============================================================================

// Validate checks the structural invariants of the schedule. Called at
// catalog load; evaluation assumes validity.
func (b Bareme) Validate() error {
	if len(b.Brackets) == 0 {
		return fmt.Errorf("%w: empty schedule", ErrInvalidBareme)
	}

	if !b.Brackets[0].Lower.IsZero() {
		return fmt.Errorf("%w: first bracket must start at 0, got %s",
			ErrInvalidBareme, b.Brackets[0].Lower)
	}

	for i, br := range b.Brackets {
		if br.Rate.IsNegative() {
			return fmt.Errorf("%w: bracket %d has negative rate %s",
				ErrInvalidBareme, i, br.Rate)
		}
		if i > 0 && br.Rate.LessThan(b.Brackets[i-1].Rate) {
			return fmt.Errorf("%w: bracket %d rate %s below previous rate %s",
				ErrInvalidBareme, i, br.Rate, b.Brackets[i-1].Rate)
		}

		last := i == len(b.Brackets)-1
		if last {
			if br.Upper != nil {
				return fmt.Errorf("%w: last bracket must be open-ended", ErrInvalidBareme)
			}
			continue
		}
		if br.Upper == nil {
			return fmt.Errorf("%w: bracket %d is open-ended but not last",
				ErrInvalidBareme, i)
		}
		if !br.Upper.GreaterThan(br.Lower) {
			return fmt.Errorf("%w: bracket %d upper %s not above lower %s",
				ErrInvalidBareme, i, br.Upper, br.Lower)
		}
		// Contiguity: next bracket starts exactly where this one ends.
		if !b.Brackets[i+1].Lower.Equal(*br.Upper) {
			return fmt.Errorf("%w: gap or overlap between bracket %d (upper %s) and %d (lower %s)",
				ErrInvalidBareme, i, br.Upper, i+1, b.Brackets[i+1].Lower)
		}
	}

	return nil
}

// =============================================================================
// EVALUATION
// =============================================================================

var one = decimal.NewFromInt(1)

// ComputeIRPP computes the income tax for a taxable income under this
// schedule with the given family quotient.
func (b Bareme) ComputeIRPP(taxable decimal.Decimal, quotient decimal.Decimal) (decimal.Decimal, error) {
	if quotient.LessThan(one) {
		return decimal.Zero, fmt.Errorf("%w: got %s", ErrInvalidQuotient, quotient)
	}
	if !taxable.IsPositive() {
		return decimal.Zero, nil
	}

	perPart := taxable.Div(quotient)

	tax := decimal.Zero
	for _, br := range b.Brackets {
		if !perPart.GreaterThan(br.Lower) {
			break
		}
		top := perPart
		if br.Upper != nil && top.GreaterThan(*br.Upper) {
			top = *br.Upper
		}
		tax = tax.Add(br.Rate.Mul(top.Sub(br.Lower)))
	}

	return tax.Mul(quotient), nil
}
