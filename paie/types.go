/*
Package paie provides the payroll calculation engine.

PURPOSE:
  This package contains the deterministic core that turns a tenant's
  rubrique catalog, time-scoped fiscal parameters and an employee/period
  context into a complete payslip breakdown: brut social, brut fiscal,
  contributions, progressive income tax (IRPP) and net payable.

KEY CONCEPTS IN THIS FILE (types.go):
  - Typed identifiers: TenantID, EmployeeID, RubriqueCode, ParamCode
  - Employee: the read-only employee snapshot the engine computes from
  - EmployeeChargeFixe: per-employee override of a catalog fixed amount
  - SaisieRubrique: a manually entered pay line (code + amount)
  - Money helpers: decimal construction and the single rounding point

DESIGN PRINCIPLES:
  1. Determinism: same inputs, same breakdown - preview and authoritative
     generation share one entry point (see engine.go)
  2. Precision: decimal.Decimal for every monetary value and rate;
     rounding happens exactly once, when a line amount is materialized
  3. Configuration as data: tax law, ceilings and formulas live in the
     catalog snapshot, never in code
  4. Purity: the engine owns no mutable shared state and performs no I/O

SEE ALSO:
  - catalog.go:     Snapshot of rubriques, parameters and bareme
  - engine.go:      The shared entry point for both call paths
  - calculation.go: Orchestrator state machine and result assembly
*/
package paie

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type TenantID string
type EmployeeID string

// RubriqueCode identifies a pay-line definition within a tenant catalog.
// Codes are identifier-shaped (letters, digits, underscore, starting with
// a letter) so formulas can reference prior line amounts by code.
type RubriqueCode string

// ParamCode identifies a fiscal parameter (rate, ceiling, abatement).
type ParamCode string

// =============================================================================
// EMPLOYEE SNAPSHOT - Read-only input to the engine
// =============================================================================

// Employee is the snapshot of employee attributes the engine reads.
// It is supplied fully loaded by the caller; the engine never fetches.
type Employee struct {
	ID         EmployeeID
	Name       string
	BaseSalary decimal.Decimal
	HireDate   Date

	// Grid coordinates. When BaseSalary is zero and the catalog carries
	// a salary grid, base pay is read from the grid instead.
	Categorie string
	Echelon   int

	// Per-employee overrides of catalog fixed amounts, keyed by rubrique
	// code. An active override beats the catalog default.
	ChargesFixes []EmployeeChargeFixe
}

// EmployeeChargeFixe overrides the fixed amount of one rubrique for one
// employee (e.g. a negotiated housing allowance).
type EmployeeChargeFixe struct {
	RubriqueCode RubriqueCode
	Montant      decimal.Decimal
	IsActive     bool
}

// ChargeFixe returns the active override for code, if any.
func (e *Employee) ChargeFixe(code RubriqueCode) (decimal.Decimal, bool) {
	for _, cf := range e.ChargesFixes {
		if cf.RubriqueCode == code && cf.IsActive {
			return cf.Montant, true
		}
	}
	return decimal.Zero, false
}

// =============================================================================
// MANUAL LINES - Amounts keyed in for this payslip only
// =============================================================================

// SaisieRubrique is a manually entered line: the amount is taken as-is
// instead of being computed from the rubrique definition.
type SaisieRubrique struct {
	Code    RubriqueCode
	Montant decimal.Decimal
}

// =============================================================================
// MONEY HELPERS
// =============================================================================

// MustDecimal parses a decimal literal, panicking on malformed input.
// For constants in catalogs and tests only.
func MustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// RoundMontant materializes a monetary amount. Amounts are in XAF which
// has no minor unit, so lines round to whole francs. This is the ONLY
// place rounding happens; intermediate arithmetic keeps full precision.
func RoundMontant(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}
