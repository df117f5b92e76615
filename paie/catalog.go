/*
catalog.go - Read-only tenant configuration snapshot

PURPOSE:
  A Snapshot bundles everything a batch of calculations reads: the
  active rubriques (in processing order), the fiscal parameter set, the
  IRPP bareme and the optional salary grid. It is built once, validated
  once, formulas are compiled once - then it is treated as an immutable
  value shared by any number of concurrent calculations.

LOAD-TIME WORK:
  - Rubrique structural validation (exactly one computation mode, ...)
  - Duplicate code detection
  - Bareme validation (sorted, contiguous, non-decreasing rates)
  - Formula compilation into cached ASTs; compile failures are kept
    per-rubrique so the lenient policy can still run the rest

SEE ALSO:
  - engine.go: NewEngine takes a Snapshot
  - rubrique.go, params.go, bareme.go: The parts being snapshotted
*/
package paie

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SALARY GRID - Category/echelon to base pay
// =============================================================================

// GridEntry maps a category/echelon pair to a monthly base salary.
type GridEntry struct {
	Categorie string
	Echelon   int
	Base      decimal.Decimal
}

// SalaryGrid is an optional grid-based base pay table.
type SalaryGrid struct {
	Entries []GridEntry
}

// BaseFor returns the grid base salary for a category/echelon, if present.
func (g *SalaryGrid) BaseFor(categorie string, echelon int) (decimal.Decimal, bool) {
	if g == nil {
		return decimal.Zero, false
	}
	for _, e := range g.Entries {
		if e.Categorie == categorie && e.Echelon == echelon {
			return e.Base, true
		}
	}
	return decimal.Zero, false
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is the immutable configuration input for calculations of one
// tenant. Build it with NewSnapshot; never mutate it afterwards.
type Snapshot struct {
	TenantID  TenantID
	Rubriques []Rubrique // active only, in processing order
	Params    *ParameterSet
	Bareme    Bareme
	Grid      *SalaryGrid

	byCode   map[RubriqueCode]*Rubrique
	compiled map[RubriqueCode]Expr
	badForms map[RubriqueCode]error
}

// SnapshotInput is the raw configuration handed to NewSnapshot. Rows
// come from the catalog provider collaborators; inactive rubriques are
// dropped here.
type SnapshotInput struct {
	TenantID  TenantID
	Rubriques []Rubrique
	Params    []FiscalParameter
	Bareme    Bareme
	Grid      *SalaryGrid
}

// NewSnapshot validates and compiles a tenant configuration.
//
// Structural problems (invalid rubrique, duplicate code, invalid
// bareme) fail the build: a broken catalog must be fixed, not computed
// from. Formula compile errors do NOT fail the build - they are kept
// per rubrique and surface when (and only when) that line is evaluated,
// so one bad formula cannot take down preview of the others.
func NewSnapshot(in SnapshotInput) (*Snapshot, error) {
	if in.TenantID == "" {
		return nil, fmt.Errorf("%w: tenant id required", ErrInvalidInput)
	}
	if err := in.Bareme.Validate(); err != nil {
		return nil, err
	}

	s := &Snapshot{
		TenantID: in.TenantID,
		Params:   NewParameterSet(in.Params),
		Bareme:   in.Bareme,
		Grid:     in.Grid,
		byCode:   make(map[RubriqueCode]*Rubrique),
		compiled: make(map[RubriqueCode]Expr),
		badForms: make(map[RubriqueCode]error),
	}

	for _, r := range in.Rubriques {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if !r.IsActive {
			continue
		}
		if _, dup := s.byCode[r.Code]; dup {
			return nil, fmt.Errorf("%w: duplicate code %s", ErrInvalidRubrique, r.Code)
		}
		s.Rubriques = append(s.Rubriques, r)
		s.byCode[r.Code] = &s.Rubriques[len(s.Rubriques)-1]
	}

	// byCode holds pointers into s.Rubriques; re-point after the sort
	// below reorders the slice.
	sort.SliceStable(s.Rubriques, func(i, j int) bool {
		ki, kj := kindOrder(s.Rubriques[i].Kind), kindOrder(s.Rubriques[j].Kind)
		if ki != kj {
			return ki < kj
		}
		return s.Rubriques[i].Sequence < s.Rubriques[j].Sequence
	})
	for i := range s.Rubriques {
		s.byCode[s.Rubriques[i].Code] = &s.Rubriques[i]
	}

	for i := range s.Rubriques {
		r := &s.Rubriques[i]
		if r.Mode() != ModeFormula {
			continue
		}
		expr, err := ParseFormula(r.Formula)
		if err != nil {
			s.badForms[r.Code] = &FormulaError{
				RubriqueCode: r.Code, Formula: r.Formula,
				Detail: err.Error(), Err: ErrMalformedFormula,
			}
			continue
		}
		s.compiled[r.Code] = expr
	}

	return s, nil
}

// kindOrder is the declared dependency order of the orchestrator:
// base earnings build the brut social first, non-taxable earnings
// follow, contributions may then consult the accumulated gross, and
// plain deductions run last.
func kindOrder(k Kind) int {
	switch k {
	case KindBaseEarning:
		return 0
	case KindNonTaxableEarning:
		return 1
	case KindContribution:
		return 2
	case KindNonTaxableDeduction:
		return 3
	}
	return 4
}

// Rubrique returns the active rubrique with the given code.
func (s *Snapshot) Rubrique(code RubriqueCode) (*Rubrique, error) {
	r, ok := s.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRubriqueNotFound, code)
	}
	return r, nil
}

// formulaFor returns the compiled AST for a formula rubrique, or the
// compile error recorded at load.
func (s *Snapshot) formulaFor(code RubriqueCode) (Expr, error) {
	if err, bad := s.badForms[code]; bad {
		return nil, err
	}
	expr, ok := s.compiled[code]
	if !ok {
		return nil, fmt.Errorf("%w: no compiled formula for %s", ErrMalformedFormula, code)
	}
	return expr, nil
}

// Resolver returns a parameter resolver bound to this snapshot's tenant
// and the given period.
func (s *Snapshot) Resolver(period Period) *Resolver {
	return NewResolver(s.TenantID, period, s.Params)
}
