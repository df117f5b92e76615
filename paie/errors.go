/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All engine error types in one place. The engine returns structured
  error values and never logs or formats user-facing text; the calling
  layer decides how to present them.

ERROR CATEGORIES:
  1. Configuration errors - bad tenant configuration (ambiguous or
     missing fiscal parameter, malformed bracket table, bad formula at
     load time). Fatal for the calculation.
  2. Input errors - bad calculation input (missing employee, negative
     worked days, family quotient below 1). Rejected before any line is
     computed.
  3. Rubrique evaluation errors - one formula failed (unknown variable,
     division by zero, malformed formula). Fatal by default; the
     lenient policy zeroes the line and records a warning instead.

USAGE:
  Callers branch with errors.Is / errors.As:

    if errors.Is(err, paie.ErrAmbiguousParameter) { ... }

    var ce *paie.CalculationError
    if errors.As(err, &ce) { report(ce.RubriqueCode) }

SEE ALSO:
  - params.go:      Resolver failures wrap ParameterError
  - formula.go:     Evaluation failures wrap FormulaError
  - calculation.go: The orchestrator attaches rubrique context
*/
package paie

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrParameterNotFound is returned when no active fiscal parameter
	// row covers the requested period.
	ErrParameterNotFound = errors.New("fiscal parameter not found")

	// ErrAmbiguousParameter is returned when more than one active row
	// covers the requested period. The resolver never silently picks one.
	ErrAmbiguousParameter = errors.New("ambiguous fiscal parameter")

	// ErrInvalidBareme is returned when a bracket table fails load-time
	// validation (gaps, overlaps, decreasing rates).
	ErrInvalidBareme = errors.New("invalid tax bracket table")

	// ErrInvalidQuotient is returned when the family quotient is below 1.
	ErrInvalidQuotient = errors.New("family quotient must be >= 1")

	// ErrUnknownVariable is returned when a formula references a name
	// that is neither a context variable, a prior rubrique amount, nor
	// a fiscal parameter.
	ErrUnknownVariable = errors.New("unknown variable in formula")

	// ErrDivisionByZero is returned when a formula divides by zero.
	ErrDivisionByZero = errors.New("division by zero in formula")

	// ErrMalformedFormula is returned when a formula cannot be parsed
	// or exceeds the evaluation depth bound.
	ErrMalformedFormula = errors.New("malformed formula")

	// ErrInvalidRubrique is returned when a rubrique definition is
	// inconsistent (no computation mode, or more than one).
	ErrInvalidRubrique = errors.New("invalid rubrique definition")

	// ErrRubriqueNotFound is returned when a referenced rubrique code
	// does not exist in the catalog.
	ErrRubriqueNotFound = errors.New("rubrique not found")

	// ErrInvalidInput is returned when the calculation input fails
	// validation before computation starts.
	ErrInvalidInput = errors.New("invalid calculation input")

	// ErrEmployeeRequired is returned when no employee snapshot is
	// present in the context.
	ErrEmployeeRequired = errors.New("employee snapshot required")
)

// =============================================================================
// STRUCTURED ERRORS - Carry tenant/period/rubrique context
// =============================================================================

// ParameterError reports a fiscal parameter resolution failure.
type ParameterError struct {
	TenantID TenantID
	Code     ParamCode
	Period   Period
	Matches  int
	Err      error // ErrParameterNotFound or ErrAmbiguousParameter
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("parameter %s for tenant %s period %s: %v (%d rows matched)",
		e.Code, e.TenantID, e.Period, e.Err, e.Matches)
}

func (e *ParameterError) Unwrap() error { return e.Err }

// FormulaError reports a formula parse or evaluation failure.
type FormulaError struct {
	RubriqueCode RubriqueCode
	Formula      string
	Detail       string
	Err          error // ErrUnknownVariable, ErrDivisionByZero or ErrMalformedFormula
}

func (e *FormulaError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("rubrique %s: %v: %s", e.RubriqueCode, e.Err, e.Detail)
	}
	return fmt.Sprintf("rubrique %s: %v", e.RubriqueCode, e.Err)
}

func (e *FormulaError) Unwrap() error { return e.Err }

// InputError reports invalid calculation input.
type InputError struct {
	TenantID   TenantID
	EmployeeID EmployeeID
	Period     Period
	Field      string
	Detail     string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input %s for employee %s period %s: %s",
		e.Field, e.EmployeeID, e.Period, e.Detail)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// CalculationError wraps any fatal failure during orchestration with
// the identifiers the calling layer needs to render a useful message.
type CalculationError struct {
	TenantID     TenantID
	EmployeeID   EmployeeID
	Period       Period
	RubriqueCode RubriqueCode // empty when the failure is not line-scoped
	State        State        // orchestrator state at failure
	Err          error
}

func (e *CalculationError) Error() string {
	if e.RubriqueCode != "" {
		return fmt.Sprintf("payroll calculation failed for employee %s period %s at rubrique %s (%s): %v",
			e.EmployeeID, e.Period, e.RubriqueCode, e.State, e.Err)
	}
	return fmt.Sprintf("payroll calculation failed for employee %s period %s (%s): %v",
		e.EmployeeID, e.Period, e.State, e.Err)
}

func (e *CalculationError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigurationError returns true for tenant-configuration failures
// (the data needs fixing, retrying the same input cannot succeed).
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrParameterNotFound) ||
		errors.Is(err, ErrAmbiguousParameter) ||
		errors.Is(err, ErrInvalidBareme) ||
		errors.Is(err, ErrInvalidRubrique) ||
		errors.Is(err, ErrMalformedFormula)
}

// IsInputError returns true when the calculation input itself was
// rejected.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidQuotient) ||
		errors.Is(err, ErrEmployeeRequired)
}

// IsEvaluationError returns true for per-rubrique evaluation failures,
// the category the lenient policy may downgrade to warnings.
func IsEvaluationError(err error) bool {
	return errors.Is(err, ErrUnknownVariable) ||
		errors.Is(err, ErrDivisionByZero) ||
		errors.Is(err, ErrMalformedFormula)
}
