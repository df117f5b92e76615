/*
evaluator.go - Computes the amount of one rubrique

PURPOSE:
  Given a rubrique and the running calculation state, produce the line
  amount according to the rubrique's computation mode:

  Fixed:   employee-level override first (EmployeeChargeFixe), then the
           catalog fixed amount, else zero.
  Rate:    rate x accumulated base; when the rubrique declares a
           plafond, the base is clamped to min(base, plafond) with the
           ceiling resolved through the Fiscal Parameter Resolver for
           the calculation period.
  Formula: the compiled AST evaluated over named context variables,
           prior line amounts and fiscal parameters.

  A manually entered amount (rubriquesSaisies) replaces the computed
  employee-side amount for that line.

ERROR CLASSES:
  Parameter resolution failures (missing/ambiguous plafond) are
  configuration errors and always fatal. Formula failures (unknown
  variable, division by zero, malformed) are per-rubrique evaluation
  errors the orchestrator may downgrade under the lenient policy.
*/
package paie

import (
	"errors"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RUN STATE - Mutable working copy owned by one calculation
// =============================================================================

// runState carries the running bases and prior line amounts across one
// calculation. It is private to a single Calculate/EvaluateRubrique
// call; the shared Snapshot and Context are only read.
type runState struct {
	ctx      *Context
	snap     *Snapshot
	resolver *Resolver

	brutSocial decimal.Decimal
	brutFiscal decimal.Decimal
	amounts    map[RubriqueCode]decimal.Decimal
}

func newRunState(ctx *Context, snap *Snapshot) *runState {
	return &runState{
		ctx:        ctx,
		snap:       snap,
		resolver:   snap.Resolver(ctx.Period),
		brutSocial: ctx.brutSocialSeed,
		brutFiscal: ctx.brutFiscalSeed,
		amounts:    make(map[RubriqueCode]decimal.Decimal),
	}
}

func (st *runState) base(kind BaseKind) decimal.Decimal {
	switch kind {
	case BaseBrutFiscal:
		return st.brutFiscal
	default:
		return st.brutSocial
	}
}

// rateBase returns the rubrique's base, clamped to its ceiling
// parameter when one is declared.
func (st *runState) rateBase(r *Rubrique) (decimal.Decimal, error) {
	base := st.base(r.Base)
	if r.PlafondParam != "" {
		plafond, err := st.resolver.Resolve(r.PlafondParam)
		if err != nil {
			return decimal.Decimal{}, err
		}
		if base.GreaterThan(plafond) {
			base = plafond
		}
	}
	return base, nil
}

// LookupVar implements VarSource: context variables, then prior line
// amounts, then fiscal parameters. A parameter that does not resolve is
// simply "not found" here (the formula may guard for it); an ambiguous
// parameter is a configuration error and propagates.
func (st *runState) LookupVar(name string) (decimal.Decimal, bool, error) {
	switch name {
	case "baseSalaire":
		return st.ctx.BaseSalaire(), true, nil
	case "brutSocial":
		return st.brutSocial, true, nil
	case "brutFiscal":
		return st.brutFiscal, true, nil
	case "joursTravailles":
		return decimal.NewFromInt(int64(st.ctx.JoursTravailles)), true, nil
	case "anciennete":
		return decimal.NewFromInt(int64(st.ctx.Anciennete())), true, nil
	case "quotientFamilial":
		return st.ctx.QuotientFamilial, true, nil
	case "chargesDeductibles":
		return st.ctx.ChargesDeductibles, true, nil
	}

	if v, ok := st.amounts[RubriqueCode(name)]; ok {
		return v, true, nil
	}

	v, found, err := st.resolver.ResolveOptional(ParamCode(name))
	if err != nil {
		return decimal.Zero, false, err
	}
	return v, found, nil
}

// =============================================================================
// LINE EVALUATION
// =============================================================================

// evalRubrique computes one line. The returned Ligne carries rounded,
// materialized amounts; the running bases keep the same rounded values
// so every call path accumulates identically.
func (st *runState) evalRubrique(r *Rubrique) (Ligne, error) {
	ligne := Ligne{Code: r.Code, Label: r.Label, Kind: r.Kind}

	// Manual entry replaces the computed employee-side amount. The
	// employer side of a contribution still follows the catalog rate.
	if saisie, ok := st.ctx.Saisie(r.Code); ok {
		ligne.Montant = RoundMontant(saisie)
		ligne.Manual = true
		if r.Mode() == ModeRate && r.EmployerRate != nil {
			base, err := st.rateBase(r)
			if err != nil {
				return Ligne{}, err
			}
			ligne.TauxPatronal = r.EmployerRate
			ligne.MontantPatronal = RoundMontant(r.EmployerRate.Mul(base))
		}
		return ligne, nil
	}

	switch r.Mode() {
	case ModeFixed:
		amount := decimal.Zero
		if override, ok := st.ctx.Employee.ChargeFixe(r.Code); ok {
			amount = override
		} else if r.FixedAmount != nil {
			amount = *r.FixedAmount
		}
		ligne.Montant = RoundMontant(amount)

	case ModeRate:
		base, err := st.rateBase(r)
		if err != nil {
			return Ligne{}, err
		}
		ligne.Base = &base
		ligne.Taux = r.Rate
		ligne.Montant = RoundMontant(r.Rate.Mul(base))
		if r.EmployerRate != nil {
			ligne.TauxPatronal = r.EmployerRate
			ligne.MontantPatronal = RoundMontant(r.EmployerRate.Mul(base))
		}

	case ModeFormula:
		expr, err := st.snap.formulaFor(r.Code)
		if err != nil {
			return Ligne{}, err
		}
		v, err := expr.Eval(st)
		if err != nil {
			return Ligne{}, st.wrapFormulaErr(r, err)
		}
		ligne.Montant = RoundMontant(v)
	}

	return ligne, nil
}

// wrapFormulaErr attaches the rubrique to a formula evaluation failure.
// Parameter errors pass through untouched: they are configuration
// failures, not formula failures.
func (st *runState) wrapFormulaErr(r *Rubrique, err error) error {
	var pe *ParameterError
	if errors.As(err, &pe) {
		return err
	}
	var fe *FormulaError
	if errors.As(err, &fe) {
		return err
	}

	wrapped := &FormulaError{RubriqueCode: r.Code, Formula: r.Formula}
	switch {
	case errors.Is(err, ErrUnknownVariable):
		wrapped.Err = ErrUnknownVariable
	case errors.Is(err, ErrDivisionByZero):
		wrapped.Err = ErrDivisionByZero
	default:
		wrapped.Err = ErrMalformedFormula
	}
	wrapped.Detail = err.Error()
	return wrapped
}

// record stores a computed line amount so later formulas can reference
// it by code.
func (st *runState) record(code RubriqueCode, montant decimal.Decimal) {
	st.amounts[code] = montant
}
