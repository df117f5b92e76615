/*
Package factory provides JSON to catalog conversion.

PURPOSE:
  Converts JSON definitions into paie.Rubrique, paie.FiscalParameter
  and paie.Bareme values. This is what lets administration tooling
  define a tenant's payroll rules without code changes: rubriques,
  rates, ceilings and bracket tables travel as JSON, the factory turns
  them into validated engine inputs.

JSON SCHEMA (rubrique):
  {
    "code": "CNSS",
    "label": "Cotisation CNSS (pension)",
    "kind": "contribution",
    "base": "brut_social",
    "rate": "0.04",
    "employer_rate": "0.08",
    "plafond_param": "CNSS_PLAFOND",
    "is_taxable": false,
    "is_active": true,
    "sequence": 10
  }

  Exactly one of "rate", "formula", "fixed_amount" must be present;
  numeric values are JSON strings so no precision is lost in transit.

SEE ALSO:
  - catalog/congo.go:   The same configuration as Go values
  - store/sqlite/:      Persists the JSON forms
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/normx-ai/congo-payroll-system-sub002/paie"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RubriqueJSON is the wire form of a pay-line definition.
type RubriqueJSON struct {
	Code         string `json:"code"`
	Label        string `json:"label"`
	Kind         string `json:"kind"`
	Base         string `json:"base,omitempty"`
	Rate         string `json:"rate,omitempty"`
	Formula      string `json:"formula,omitempty"`
	FixedAmount  string `json:"fixed_amount,omitempty"`
	EmployerRate string `json:"employer_rate,omitempty"`
	PlafondParam string `json:"plafond_param,omitempty"`
	IsTaxable    bool   `json:"is_taxable"`
	IsActive     bool   `json:"is_active"`
	Sequence     int    `json:"sequence"`
}

// ParameterJSON is the wire form of a fiscal parameter row.
type ParameterJSON struct {
	Code      string  `json:"code"`
	Value     string  `json:"value"`
	DateEffet string  `json:"date_effet"`
	DateFin   *string `json:"date_fin,omitempty"`
	IsActive  bool    `json:"is_active"`
}

// BracketJSON is one row of a bracket table.
type BracketJSON struct {
	Lower string  `json:"lower"`
	Upper *string `json:"upper,omitempty"` // absent = open-ended
	Rate  string  `json:"rate"`
}

// GridEntryJSON is one salary grid cell.
type GridEntryJSON struct {
	Categorie string `json:"categorie"`
	Echelon   int    `json:"echelon"`
	Base      string `json:"base"`
}

// =============================================================================
// RUBRIQUES
// =============================================================================

// ParseRubrique converts a JSON string into a validated rubrique.
func ParseRubrique(jsonStr string) (paie.Rubrique, error) {
	var rj RubriqueJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return paie.Rubrique{}, fmt.Errorf("failed to parse rubrique JSON: %w", err)
	}
	return RubriqueFromJSON(rj)
}

// RubriqueFromJSON converts the wire form into a validated rubrique.
func RubriqueFromJSON(rj RubriqueJSON) (paie.Rubrique, error) {
	r := paie.Rubrique{
		Code:         paie.RubriqueCode(rj.Code),
		Label:        rj.Label,
		Kind:         parseKind(rj.Kind),
		Base:         parseBase(rj.Base),
		Formula:      rj.Formula,
		PlafondParam: paie.ParamCode(rj.PlafondParam),
		IsTaxable:    rj.IsTaxable,
		IsActive:     rj.IsActive,
		Sequence:     rj.Sequence,
	}

	var err error
	if r.Rate, err = optDecimal(rj.Rate, "rate"); err != nil {
		return paie.Rubrique{}, err
	}
	if r.FixedAmount, err = optDecimal(rj.FixedAmount, "fixed_amount"); err != nil {
		return paie.Rubrique{}, err
	}
	if r.EmployerRate, err = optDecimal(rj.EmployerRate, "employer_rate"); err != nil {
		return paie.Rubrique{}, err
	}

	if err := r.Validate(); err != nil {
		return paie.Rubrique{}, err
	}
	return r, nil
}

// RubriqueToJSON converts a rubrique to its wire form.
func RubriqueToJSON(r paie.Rubrique) RubriqueJSON {
	rj := RubriqueJSON{
		Code:         string(r.Code),
		Label:        r.Label,
		Kind:         string(r.Kind),
		Base:         string(r.Base),
		Formula:      r.Formula,
		PlafondParam: string(r.PlafondParam),
		IsTaxable:    r.IsTaxable,
		IsActive:     r.IsActive,
		Sequence:     r.Sequence,
	}
	if r.Rate != nil {
		rj.Rate = r.Rate.String()
	}
	if r.FixedAmount != nil {
		rj.FixedAmount = r.FixedAmount.String()
	}
	if r.EmployerRate != nil {
		rj.EmployerRate = r.EmployerRate.String()
	}
	return rj
}

// =============================================================================
// PARAMETERS
// =============================================================================

// ParameterFromJSON converts the wire form into a parameter row for the
// given tenant.
func ParameterFromJSON(tenantID paie.TenantID, pj ParameterJSON) (paie.FiscalParameter, error) {
	value, err := decimal.NewFromString(pj.Value)
	if err != nil {
		return paie.FiscalParameter{}, fmt.Errorf("parameter %s: bad value %q: %w", pj.Code, pj.Value, err)
	}
	effet, err := paie.ParseDate(pj.DateEffet)
	if err != nil {
		return paie.FiscalParameter{}, fmt.Errorf("parameter %s: %w", pj.Code, err)
	}

	p := paie.FiscalParameter{
		TenantID:  tenantID,
		Code:      paie.ParamCode(pj.Code),
		Value:     value,
		DateEffet: effet,
		IsActive:  pj.IsActive,
	}
	if pj.DateFin != nil {
		fin, err := paie.ParseDate(*pj.DateFin)
		if err != nil {
			return paie.FiscalParameter{}, fmt.Errorf("parameter %s: %w", pj.Code, err)
		}
		p.DateFin = &fin
	}
	return p, nil
}

// ParameterToJSON converts a parameter row to its wire form.
func ParameterToJSON(p paie.FiscalParameter) ParameterJSON {
	pj := ParameterJSON{
		Code:      string(p.Code),
		Value:     p.Value.String(),
		DateEffet: p.DateEffet.String(),
		IsActive:  p.IsActive,
	}
	if p.DateFin != nil {
		s := p.DateFin.String()
		pj.DateFin = &s
	}
	return pj
}

// =============================================================================
// BAREME AND GRID
// =============================================================================

// BaremeFromJSON converts bracket rows into a validated bareme.
func BaremeFromJSON(rows []BracketJSON) (paie.Bareme, error) {
	var b paie.Bareme
	for i, row := range rows {
		lower, err := decimal.NewFromString(row.Lower)
		if err != nil {
			return paie.Bareme{}, fmt.Errorf("bracket %d: bad lower %q: %w", i, row.Lower, err)
		}
		rate, err := decimal.NewFromString(row.Rate)
		if err != nil {
			return paie.Bareme{}, fmt.Errorf("bracket %d: bad rate %q: %w", i, row.Rate, err)
		}
		br := paie.Bracket{Lower: lower, Rate: rate}
		if row.Upper != nil {
			upper, err := decimal.NewFromString(*row.Upper)
			if err != nil {
				return paie.Bareme{}, fmt.Errorf("bracket %d: bad upper %q: %w", i, *row.Upper, err)
			}
			br.Upper = &upper
		}
		b.Brackets = append(b.Brackets, br)
	}
	if err := b.Validate(); err != nil {
		return paie.Bareme{}, err
	}
	return b, nil
}

// BaremeToJSON converts a bareme to bracket rows.
func BaremeToJSON(b paie.Bareme) []BracketJSON {
	rows := make([]BracketJSON, len(b.Brackets))
	for i, br := range b.Brackets {
		rows[i] = BracketJSON{Lower: br.Lower.String(), Rate: br.Rate.String()}
		if br.Upper != nil {
			s := br.Upper.String()
			rows[i].Upper = &s
		}
	}
	return rows
}

// GridFromJSON converts grid cells into a salary grid.
func GridFromJSON(rows []GridEntryJSON) (*paie.SalaryGrid, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	grid := &paie.SalaryGrid{}
	for i, row := range rows {
		base, err := decimal.NewFromString(row.Base)
		if err != nil {
			return nil, fmt.Errorf("grid entry %d: bad base %q: %w", i, row.Base, err)
		}
		grid.Entries = append(grid.Entries, paie.GridEntry{
			Categorie: row.Categorie,
			Echelon:   row.Echelon,
			Base:      base,
		})
	}
	return grid, nil
}

// GridToJSON converts a salary grid into wire form. A nil grid yields
// an empty slice.
func GridToJSON(grid *paie.SalaryGrid) []GridEntryJSON {
	if grid == nil {
		return []GridEntryJSON{}
	}
	rows := make([]GridEntryJSON, len(grid.Entries))
	for i, e := range grid.Entries {
		rows[i] = GridEntryJSON{
			Categorie: e.Categorie,
			Echelon:   e.Echelon,
			Base:      e.Base.String(),
		}
	}
	return rows
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func optDecimal(s, field string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("bad %s %q: %w", field, s, err)
	}
	return &d, nil
}

func parseKind(s string) paie.Kind {
	switch s {
	case "base_earning":
		return paie.KindBaseEarning
	case "contribution":
		return paie.KindContribution
	case "non_taxable_earning":
		return paie.KindNonTaxableEarning
	case "non_taxable_deduction":
		return paie.KindNonTaxableDeduction
	default:
		return paie.Kind(s) // fails rubrique validation with the raw value
	}
}

func parseBase(s string) paie.BaseKind {
	switch s {
	case "brut_social":
		return paie.BaseBrutSocial
	case "brut_fiscal":
		return paie.BaseBrutFiscal
	case "", "fixed":
		return paie.BaseFixed
	default:
		return paie.BaseKind(s)
	}
}
