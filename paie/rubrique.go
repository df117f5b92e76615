/*
rubrique.go - Pay-line definitions (rubriques)

PURPOSE:
  A rubrique is one configurable payslip line: an earning, a social
  contribution or a deduction. Its Kind decides which side of the
  payslip it lands on and whether it feeds the fiscal gross; its
  computation mode (exactly one of rate, formula, fixed amount) decides
  how the amount is produced.

INVARIANTS (checked at catalog load, see Validate):
  - Exactly one of {Rate, Formula, FixedAmount} is set
  - Rate-of-base rubriques declare a base (brut social or brut fiscal)
  - Codes are identifier-shaped so formulas can reference them
*/
package paie

import (
	"fmt"
	"unicode"

	"github.com/shopspring/decimal"
)

// =============================================================================
// KIND AND BASE
// =============================================================================

// Kind classifies a rubrique.
type Kind string

const (
	// KindBaseEarning feeds the brut social, and the brut fiscal when
	// the rubrique is taxable.
	KindBaseEarning Kind = "base_earning"

	// KindContribution is a social contribution: the employee rate is
	// deducted from net pay, the employer rate is reported separately.
	KindContribution Kind = "contribution"

	// KindNonTaxableEarning is paid out but never enters either gross
	// (e.g. a transport allowance below the exemption threshold).
	KindNonTaxableEarning Kind = "non_taxable_earning"

	// KindNonTaxableDeduction reduces net pay without touching the
	// fiscal base (e.g. a salary advance repayment).
	KindNonTaxableDeduction Kind = "non_taxable_deduction"
)

func (k Kind) Valid() bool {
	switch k {
	case KindBaseEarning, KindContribution, KindNonTaxableEarning, KindNonTaxableDeduction:
		return true
	}
	return false
}

// BaseKind names the accumulated amount a rate-mode rubrique is
// computed against.
type BaseKind string

const (
	BaseBrutSocial BaseKind = "brut_social"
	BaseBrutFiscal BaseKind = "brut_fiscal"
	BaseFixed      BaseKind = "fixed"
)

// =============================================================================
// RUBRIQUE
// =============================================================================

type Rubrique struct {
	Code  RubriqueCode
	Label string
	Kind  Kind
	Base  BaseKind

	// Computation mode - exactly one of the three is set.
	Rate        *decimal.Decimal
	Formula     string
	FixedAmount *decimal.Decimal

	// EmployerRate is the employer-side rate of a contribution. It is
	// reported on the payslip but never reduces the employee's net.
	EmployerRate *decimal.Decimal

	// PlafondParam names the fiscal parameter capping the base before
	// the rate applies (e.g. the CNSS ceiling). Empty = no ceiling.
	PlafondParam ParamCode

	IsTaxable bool
	IsActive  bool

	// Sequence is the declared dependency order within a kind. Lower
	// runs first; a formula may reference any line already computed.
	Sequence int
}

// Mode describes how a rubrique's amount is produced.
type Mode string

const (
	ModeFixed   Mode = "fixed"
	ModeRate    Mode = "rate"
	ModeFormula Mode = "formula"
)

// Mode returns the computation mode. Only meaningful after Validate.
func (r *Rubrique) Mode() Mode {
	switch {
	case r.Formula != "":
		return ModeFormula
	case r.Rate != nil:
		return ModeRate
	default:
		return ModeFixed
	}
}

// Validate checks the rubrique's structural invariants.
func (r *Rubrique) Validate() error {
	if r.Code == "" {
		return fmt.Errorf("%w: empty code", ErrInvalidRubrique)
	}
	if !validRubriqueCode(string(r.Code)) {
		return fmt.Errorf("%w: code %q is not identifier-shaped", ErrInvalidRubrique, r.Code)
	}
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: %s has unknown kind %q", ErrInvalidRubrique, r.Code, r.Kind)
	}

	modes := 0
	if r.Rate != nil {
		modes++
	}
	if r.Formula != "" {
		modes++
	}
	if r.FixedAmount != nil {
		modes++
	}
	if modes != 1 {
		return fmt.Errorf("%w: %s must set exactly one of rate, formula, fixed amount (got %d)",
			ErrInvalidRubrique, r.Code, modes)
	}

	if r.Rate != nil && r.Base != BaseBrutSocial && r.Base != BaseBrutFiscal {
		return fmt.Errorf("%w: %s is rate-of-base but declares base %q",
			ErrInvalidRubrique, r.Code, r.Base)
	}
	if r.EmployerRate != nil && r.Kind != KindContribution {
		return fmt.Errorf("%w: %s has an employer rate but is not a contribution",
			ErrInvalidRubrique, r.Code)
	}

	return nil
}

// validRubriqueCode reports whether s is identifier-shaped: a letter
// followed by letters, digits or underscores. This keeps codes usable
// as formula variables.
func validRubriqueCode(s string) bool {
	for i, c := range s {
		if i == 0 {
			if !unicode.IsLetter(c) {
				return false
			}
			continue
		}
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			return false
		}
	}
	return len(s) > 0
}
