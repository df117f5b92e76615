/*
calculation.go - Payroll orchestrator state machine and result types

PURPOSE:
  Sequences the catalog's rubriques in declared dependency order,
  accumulates the bases (brut social, brut fiscal), invokes the bareme
  for the income tax, and assembles the final breakdown.

STATE MACHINE:
  Initialized -> BasesAccumulating -> TaxComputed -> Finalized
  with Failed reachable from any state on a fatal error. The failing
  rubrique code travels on the CalculationError for diagnosis.

PROCESSING ORDER (within BasesAccumulating):
  1. Base earnings        - feed brut social; taxable ones feed brut fiscal
  2. Non-taxable earnings - paid out, enter neither gross
  3. Contributions        - employee side deducted, employer side reported;
                            may consult the accumulated gross and the
                            period's ceiling parameters
  4. Non-taxable deductions

TAX:
  taxable = (brut fiscal - charges deductibles) x (1 - abatement)
  where the abatement rate is the optional fiscal parameter
  IRPP_ABATTEMENT (absent = no abatement), then the bareme computes the
  IRPP with the context's family quotient.

NET:
  net = brut social + non-taxable earnings
      - employee contributions - IRPP - non-taxable deductions
  Employer contributions are totalled separately; they never reduce the
  employee's net.

ERROR POLICY:
  Strict (default): any rubrique evaluation failure aborts the payslip.
  An incomplete payslip with a silently zeroed line is worse than an
  explicit failure. Lenient (preview tooling only): the offending line
  is zeroed and a warning recorded. Configuration and input errors are
  fatal under both policies.
*/
package paie

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// STATES
// =============================================================================

// State is the orchestrator's position in the calculation lifecycle.
type State string

const (
	StateInitialized       State = "initialized"
	StateBasesAccumulating State = "bases_accumulating"
	StateTaxComputed       State = "tax_computed"
	StateFinalized         State = "finalized"
	StateFailed            State = "failed"
)

// EvalMode selects the error policy for rubrique evaluation failures.
type EvalMode string

const (
	// Strict aborts the payslip on the first failing rubrique.
	Strict EvalMode = "strict"

	// Lenient zeroes a failing line and records a warning. Intended
	// for preview/tooling contexts only, never authoritative output.
	Lenient EvalMode = "lenient"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// Ligne is one materialized payslip line.
type Ligne struct {
	Code  RubriqueCode
	Label string
	Kind  Kind

	// Base and rates are set for rate-of-base lines.
	Base         *decimal.Decimal
	Taux         *decimal.Decimal
	TauxPatronal *decimal.Decimal

	Montant         decimal.Decimal // employee side
	MontantPatronal decimal.Decimal // employer side (contributions)
	Manual          bool            // true when the amount was keyed in
}

// Warning records a lenient-mode downgrade.
type Warning struct {
	RubriqueCode RubriqueCode
	Message      string
}

// Calculation is the complete payslip breakdown. It is a pure
// computation result; persisting it is the caller's business.
type Calculation struct {
	TenantID   TenantID
	EmployeeID EmployeeID
	Period     Period
	State      State

	Gains       []Ligne // base + non-taxable earnings, in processing order
	Cotisations []Ligne // contributions
	Retenues    []Ligne // IRPP and non-taxable deductions

	TotalBrutSocial         decimal.Decimal
	TotalBrutFiscal         decimal.Decimal
	BaseImposable           decimal.Decimal
	IRPP                    decimal.Decimal
	TotalRetenuesSalariales decimal.Decimal // employee contributions + IRPP
	TotalChargesPatronales  decimal.Decimal
	NetAPayer               decimal.Decimal

	Warnings []Warning
}

// ParamAbattement is the optional fiscal parameter holding the standard
// abatement rate applied to the fiscal gross before the bareme.
const ParamAbattement ParamCode = "IRPP_ABATTEMENT"

// IRPPLineCode is the code of the orchestrator-generated income tax
// line. Catalogs must not define a rubrique with this code.
const IRPPLineCode RubriqueCode = "IRPP"

// =============================================================================
// ORCHESTRATION
// =============================================================================

// calculate runs the full state machine over a validated context.
func calculate(ctx *Context, snap *Snapshot, mode EvalMode) (*Calculation, error) {
	st := newRunState(ctx, snap)
	calc := &Calculation{
		TenantID:   ctx.TenantID,
		EmployeeID: ctx.Employee.ID,
		Period:     ctx.Period,
		State:      StateInitialized,
	}

	fail := func(code RubriqueCode, err error) (*Calculation, error) {
		state := calc.State
		calc.State = StateFailed
		return nil, &CalculationError{
			TenantID:     ctx.TenantID,
			EmployeeID:   ctx.Employee.ID,
			Period:       ctx.Period,
			RubriqueCode: code,
			State:        state,
			Err:          err,
		}
	}

	// --- BasesAccumulating -------------------------------------------------
	calc.State = StateBasesAccumulating

	var totalGainsNonImposables decimal.Decimal
	var totalCotisationsSalariales decimal.Decimal
	var totalRetenuesNonImposables decimal.Decimal

	for i := range snap.Rubriques {
		r := &snap.Rubriques[i]

		ligne, err := st.evalRubrique(r)
		if err != nil {
			if mode == Lenient && IsEvaluationError(err) {
				ligne = Ligne{Code: r.Code, Label: r.Label, Kind: r.Kind}
				calc.Warnings = append(calc.Warnings, Warning{
					RubriqueCode: r.Code,
					Message:      err.Error(),
				})
			} else {
				return fail(r.Code, err)
			}
		}

		st.record(r.Code, ligne.Montant)

		switch r.Kind {
		case KindBaseEarning:
			st.brutSocial = st.brutSocial.Add(ligne.Montant)
			if r.IsTaxable {
				st.brutFiscal = st.brutFiscal.Add(ligne.Montant)
			}
			calc.Gains = append(calc.Gains, ligne)

		case KindNonTaxableEarning:
			totalGainsNonImposables = totalGainsNonImposables.Add(ligne.Montant)
			calc.Gains = append(calc.Gains, ligne)

		case KindContribution:
			totalCotisationsSalariales = totalCotisationsSalariales.Add(ligne.Montant)
			calc.TotalChargesPatronales = calc.TotalChargesPatronales.Add(ligne.MontantPatronal)
			calc.Cotisations = append(calc.Cotisations, ligne)

		case KindNonTaxableDeduction:
			totalRetenuesNonImposables = totalRetenuesNonImposables.Add(ligne.Montant)
			calc.Retenues = append(calc.Retenues, ligne)
		}
	}

	calc.TotalBrutSocial = st.brutSocial
	calc.TotalBrutFiscal = st.brutFiscal

	// --- TaxComputed -------------------------------------------------------
	abattement, _, err := st.resolver.ResolveOptional(ParamAbattement)
	if err != nil {
		return fail("", err)
	}

	taxable := st.brutFiscal.Sub(ctx.ChargesDeductibles)
	if abattement.IsPositive() {
		taxable = taxable.Mul(one.Sub(abattement))
	}
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	irpp, err := snap.Bareme.ComputeIRPP(taxable, ctx.QuotientFamilial)
	if err != nil {
		return fail("", err)
	}
	irpp = RoundMontant(irpp)

	calc.State = StateTaxComputed
	calc.BaseImposable = taxable
	calc.IRPP = irpp
	calc.Retenues = append([]Ligne{{
		Code:    IRPPLineCode,
		Label:   "Impot sur le revenu des personnes physiques",
		Montant: irpp,
	}}, calc.Retenues...)

	// --- Finalized ---------------------------------------------------------
	calc.TotalRetenuesSalariales = totalCotisationsSalariales.Add(irpp)
	calc.NetAPayer = st.brutSocial.
		Add(totalGainsNonImposables).
		Sub(totalCotisationsSalariales).
		Sub(irpp).
		Sub(totalRetenuesNonImposables)
	calc.State = StateFinalized

	return calc, nil
}
