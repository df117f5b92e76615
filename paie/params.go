/*
params.go - Fiscal parameters and their resolver

PURPOSE:
  A fiscal parameter is a tenant-scoped named constant (contribution
  rate, ceiling, abatement rate) with a temporal validity window.
  The resolver answers "what is the value of CODE as of PERIOD?" and is
  the single authority for period normalization.

TEMPORAL SEMANTICS:
  A row matches a period when it is active and
      DateEffet <= period.Anchor() AND (DateFin is nil OR DateFin >= period.Anchor())
  Both bounds are inclusive. Comparisons are between Dates (calendar
  days, no zone), so every call site agrees on the normalization.

FAILURE MODES:
  Zero matching rows      -> ErrParameterNotFound
  Two or more matching    -> ErrAmbiguousParameter (configuration error;
                             the resolver never silently picks a row)

PURITY:
  A Resolver is a pure lookup over an injected, read-only parameter set
  bound to one tenant and one period. It has no clock and no cache, so
  resolving twice always yields the same value.

SEE ALSO:
  - catalog.go: Snapshot carries the ParameterSet
  - formula.go: Formula identifiers fall back to parameter codes
*/
package paie

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// FISCAL PARAMETER - Named constant with a validity window
// =============================================================================

type FiscalParameter struct {
	TenantID  TenantID
	Code      ParamCode
	Value     decimal.Decimal
	DateEffet Date  // effective-from, inclusive
	DateFin   *Date // effective-to, inclusive; nil = open-ended
	IsActive  bool
}

// covers reports whether the row is active and its window contains day.
func (p FiscalParameter) covers(day Date) bool {
	if !p.IsActive {
		return false
	}
	if day.Before(p.DateEffet) {
		return false
	}
	if p.DateFin != nil && day.After(*p.DateFin) {
		return false
	}
	return true
}

// =============================================================================
// PARAMETER SET - All rows for one tenant
// =============================================================================

// ParameterSet is the read-only collection of fiscal parameter rows for
// a tenant, loaded once per batch and never mutated by the engine.
type ParameterSet struct {
	rows []FiscalParameter
}

func NewParameterSet(rows []FiscalParameter) *ParameterSet {
	cp := make([]FiscalParameter, len(rows))
	copy(cp, rows)
	return &ParameterSet{rows: cp}
}

// Rows returns a copy of the underlying rows.
func (ps *ParameterSet) Rows() []FiscalParameter {
	cp := make([]FiscalParameter, len(ps.rows))
	copy(cp, ps.rows)
	return cp
}

// =============================================================================
// RESOLVER - Value of a parameter as of a period
// =============================================================================

// Resolver resolves parameter codes for one (tenant, period) pair.
type Resolver struct {
	TenantID TenantID
	Period   Period
	Params   *ParameterSet
}

// NewResolver binds a parameter set to a tenant and period.
func NewResolver(tenantID TenantID, period Period, params *ParameterSet) *Resolver {
	if params == nil {
		params = NewParameterSet(nil)
	}
	return &Resolver{TenantID: tenantID, Period: period, Params: params}
}

// Resolve returns the value of code as of the resolver's period.
//
// Exactly one active row must cover the period: zero rows yield
// ErrParameterNotFound, several yield ErrAmbiguousParameter. Rows
// belonging to other tenants are ignored.
func (r *Resolver) Resolve(code ParamCode) (decimal.Decimal, error) {
	day := r.Period.Anchor()

	var value decimal.Decimal
	matches := 0
	for _, row := range r.Params.rows {
		if row.TenantID != r.TenantID || row.Code != code {
			continue
		}
		if !row.covers(day) {
			continue
		}
		matches++
		value = row.Value
	}

	switch matches {
	case 1:
		return value, nil
	case 0:
		return decimal.Zero, &ParameterError{
			TenantID: r.TenantID, Code: code, Period: r.Period,
			Matches: 0, Err: ErrParameterNotFound,
		}
	default:
		return decimal.Zero, &ParameterError{
			TenantID: r.TenantID, Code: code, Period: r.Period,
			Matches: matches, Err: ErrAmbiguousParameter,
		}
	}
}

// ResolveOptional returns (value, true) when the parameter resolves,
// (zero, false) when it is absent. Ambiguity is still an error: an
// optional parameter may be missing but never contradictory.
func (r *Resolver) ResolveOptional(code ParamCode) (decimal.Decimal, bool, error) {
	v, err := r.Resolve(code)
	if err != nil {
		var pe *ParameterError
		if asParameterError(err, &pe) && pe.Err == ErrParameterNotFound {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}
	return v, true, nil
}

func asParameterError(err error, target **ParameterError) bool {
	pe, ok := err.(*ParameterError)
	if ok {
		*target = pe
	}
	return ok
}
