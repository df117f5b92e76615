/*
context.go - The immutable calculation input snapshot

PURPOSE:
  A Context is the input for exactly one employee x one period. It is
  built fresh per calculation, validated up front, and discarded after
  use - it owns no persisted state. The orchestrator keeps its running
  bases (brut social, brut fiscal) and prior line amounts on its own
  working copy, so a Context handed in by the caller is never mutated.

VALIDATION (performed by NewContext, before any line is computed):
  - period well-formed
  - employee snapshot present
  - 0 <= joursTravailles <= days in the period's month
  - quotient familial >= 1
  - charges deductibles >= 0
*/
package paie

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONTEXT
// =============================================================================

// ContextInput is the raw request for one calculation. BrutSocial and
// BrutFiscal seed the running bases - they are used by the
// single-rubrique preview path, where the caller supplies the bases the
// full calculation would have accumulated.
type ContextInput struct {
	TenantID           TenantID
	Period             Period
	Employee           *Employee
	JoursTravailles    int
	ChargesDeductibles decimal.Decimal
	QuotientFamilial   decimal.Decimal
	RubriquesSaisies   []SaisieRubrique

	BrutSocial decimal.Decimal
	BrutFiscal decimal.Decimal
}

// Context is the validated, immutable calculation input.
type Context struct {
	TenantID           TenantID
	Period             Period
	Employee           Employee
	JoursTravailles    int
	ChargesDeductibles decimal.Decimal
	QuotientFamilial   decimal.Decimal

	// Manual lines keyed by code; a manual amount replaces the computed
	// amount for that rubrique.
	saisies map[RubriqueCode]decimal.Decimal

	// Seed values for the running bases (preview path).
	brutSocialSeed decimal.Decimal
	brutFiscalSeed decimal.Decimal

	// Derived once at build.
	baseSalaire decimal.Decimal
	anciennete  int
}

// NewContext validates the input and assembles the snapshot. The grid
// resolves base pay when the employee's own base salary is zero.
func NewContext(in ContextInput, grid *SalaryGrid) (*Context, error) {
	if in.TenantID == "" {
		return nil, &InputError{Period: in.Period, Field: "tenantId", Detail: "tenant id required"}
	}
	if in.Period.IsZero() {
		return nil, &InputError{TenantID: in.TenantID, Field: "period", Detail: "period required"}
	}
	if in.Employee == nil {
		return nil, ErrEmployeeRequired
	}
	if in.JoursTravailles < 0 || in.JoursTravailles > in.Period.DayCount() {
		return nil, &InputError{
			TenantID: in.TenantID, EmployeeID: in.Employee.ID, Period: in.Period,
			Field:  "joursTravailles",
			Detail: fmt.Sprintf("must be between 0 and %d, got %d", in.Period.DayCount(), in.JoursTravailles),
		}
	}
	quotient := in.QuotientFamilial
	if quotient.IsZero() {
		quotient = one
	}
	if quotient.LessThan(one) {
		return nil, &InputError{
			TenantID: in.TenantID, EmployeeID: in.Employee.ID, Period: in.Period,
			Field: "quotientFamilial", Detail: ErrInvalidQuotient.Error(),
		}
	}
	if in.ChargesDeductibles.IsNegative() {
		return nil, &InputError{
			TenantID: in.TenantID, EmployeeID: in.Employee.ID, Period: in.Period,
			Field: "chargesDeductibles", Detail: "must not be negative",
		}
	}

	base := in.Employee.BaseSalary
	if base.IsZero() {
		if fromGrid, ok := grid.BaseFor(in.Employee.Categorie, in.Employee.Echelon); ok {
			base = fromGrid
		}
	}

	anciennete := 0
	if !in.Employee.HireDate.IsZero() {
		anciennete = in.Employee.HireDate.YearsUntil(in.Period.Anchor())
	}

	saisies := make(map[RubriqueCode]decimal.Decimal, len(in.RubriquesSaisies))
	for _, s := range in.RubriquesSaisies {
		saisies[s.Code] = s.Montant
	}

	return &Context{
		TenantID:           in.TenantID,
		Period:             in.Period,
		Employee:           *in.Employee,
		JoursTravailles:    in.JoursTravailles,
		ChargesDeductibles: in.ChargesDeductibles,
		QuotientFamilial:   quotient,
		saisies:            saisies,
		brutSocialSeed:     in.BrutSocial,
		brutFiscalSeed:     in.BrutFiscal,
		baseSalaire:        base,
		anciennete:         anciennete,
	}, nil
}

// BaseSalaire returns the effective base salary (employee's own, or
// resolved from the salary grid).
func (c *Context) BaseSalaire() decimal.Decimal { return c.baseSalaire }

// Anciennete returns the employee's whole years of service at the
// period start.
func (c *Context) Anciennete() int { return c.anciennete }

// Saisie returns the manually entered amount for a rubrique, if any.
func (c *Context) Saisie(code RubriqueCode) (decimal.Decimal, bool) {
	v, ok := c.saisies[code]
	return v, ok
}
