/*
Package catalog provides tenant payroll configuration as data.

PURPOSE:
  Everything country-specific lives here as values, not code: the
  default Congo-Brazzaville rubrique catalog (base pay proration,
  seniority bonus, CNSS and family-allowance contributions), the fiscal
  parameters with their validity windows, the monthly IRPP bracket
  table and a small category/echelon salary grid. Tenants start from
  these defaults and override through the administration flows.

WHY DATA?
  The engine never hard-codes a rate or a ceiling. Changing tax law
  means shipping new rows, not new binaries - and every tenant can
  carry its own variant of any line, including the seniority bonus,
  which is an ordinary formula rubrique here.

SEE ALSO:
  - paie/catalog.go:  Snapshot validation and formula compilation
  - factory/:         JSON <-> catalog conversion for admin tooling
  - store/sqlite/:    Persisted per-tenant catalogs
*/
package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/normx-ai/congo-payroll-system-sub002/paie"
)

// Fiscal parameter codes used by the default catalog.
const (
	ParamPlafondCNSS paie.ParamCode = "CNSS_PLAFOND"
	ParamAbattement  paie.ParamCode = paie.ParamAbattement
)

// Default rubrique codes.
const (
	CodeSalaireBase     paie.RubriqueCode = "SALAIRE_BASE"
	CodePrimeAnciennete paie.RubriqueCode = "PRIME_ANCIENNETE"
	CodeIndemniteLog    paie.RubriqueCode = "INDEMNITE_LOGEMENT"
	CodeHeuresSupp      paie.RubriqueCode = "HEURES_SUPP"
	CodePrimeTransport  paie.RubriqueCode = "PRIME_TRANSPORT"
	CodeCNSS            paie.RubriqueCode = "CNSS"
	CodeAllocFamiliales paie.RubriqueCode = "ALLOC_FAM"
	CodeAccidentTravail paie.RubriqueCode = "ACCIDENT_TRAVAIL"
	CodeAvanceSalaire   paie.RubriqueCode = "AVANCE_SALAIRE"
)

func rate(s string) *decimal.Decimal {
	d := paie.MustDecimal(s)
	return &d
}

func montant(s string) *decimal.Decimal {
	d := paie.MustDecimal(s)
	return &d
}

// Congo returns the default Congo-Brazzaville configuration for a
// tenant, effective from January 2024. Callers feed it to
// paie.NewSnapshot, usually after layering tenant overrides on top.
func Congo(tenantID paie.TenantID) paie.SnapshotInput {
	return paie.SnapshotInput{
		TenantID:  tenantID,
		Rubriques: CongoRubriques(),
		Params:    CongoParams(tenantID),
		Bareme:    CongoBareme(),
		Grid:      CongoGrid(),
	}
}

// CongoRubriques is the default pay-line catalog. Sequence gaps leave
// room for tenant-specific lines between the defaults.
func CongoRubriques() []paie.Rubrique {
	return []paie.Rubrique{
		{
			Code:  CodeSalaireBase,
			Label: "Salaire de base",
			Kind:  paie.KindBaseEarning,
			// 26 working days make a full month; short months prorate.
			Formula:   "joursTravailles >= 26 ? baseSalaire : baseSalaire * joursTravailles / 26",
			IsTaxable: true,
			IsActive:  true,
			Sequence:  10,
		},
		{
			Code:      CodePrimeAnciennete,
			Label:     "Prime d'anciennete",
			Kind:      paie.KindBaseEarning,
			Formula:   "anciennete > 2 ? baseSalaire * 0.05 * floor(anciennete / 2) : 0",
			IsTaxable: true,
			IsActive:  true,
			Sequence:  20,
		},
		{
			Code:        CodeIndemniteLog,
			Label:       "Indemnite de logement",
			Kind:        paie.KindBaseEarning,
			FixedAmount: montant("0"), // per-employee override via charge fixe
			IsTaxable:   true,
			IsActive:    true,
			Sequence:    30,
		},
		{
			Code:        CodeHeuresSupp,
			Label:       "Heures supplementaires",
			Kind:        paie.KindBaseEarning,
			FixedAmount: montant("0"), // manually entered when worked
			IsTaxable:   true,
			IsActive:    true,
			Sequence:    40,
		},
		{
			Code:        CodePrimeTransport,
			Label:       "Prime de transport",
			Kind:        paie.KindNonTaxableEarning,
			FixedAmount: montant("25000"),
			IsActive:    true,
			Sequence:    10,
		},
		{
			Code:         CodeCNSS,
			Label:        "Cotisation CNSS (pension)",
			Kind:         paie.KindContribution,
			Base:         paie.BaseBrutSocial,
			Rate:         rate("0.04"),
			EmployerRate: rate("0.08"),
			PlafondParam: ParamPlafondCNSS,
			IsActive:     true,
			Sequence:     10,
		},
		{
			Code:         CodeAllocFamiliales,
			Label:        "Allocations familiales",
			Kind:         paie.KindContribution,
			Base:         paie.BaseBrutSocial,
			Rate:         rate("0"), // employer-only
			EmployerRate: rate("0.10035"),
			PlafondParam: ParamPlafondCNSS,
			IsActive:     true,
			Sequence:     20,
		},
		{
			Code:         CodeAccidentTravail,
			Label:        "Accidents du travail",
			Kind:         paie.KindContribution,
			Base:         paie.BaseBrutSocial,
			Rate:         rate("0"), // employer-only
			EmployerRate: rate("0.0225"),
			PlafondParam: ParamPlafondCNSS,
			IsActive:     true,
			Sequence:     30,
		},
		{
			Code:        CodeAvanceSalaire,
			Label:       "Avance sur salaire",
			Kind:        paie.KindNonTaxableDeduction,
			FixedAmount: montant("0"), // manually entered when granted
			IsActive:    true,
			Sequence:    10,
		},
	}
}

// CongoParams returns the default fiscal parameters, open-ended from
// 2024-01-01.
func CongoParams(tenantID paie.TenantID) []paie.FiscalParameter {
	effet := paie.NewDate(2024, time.January, 1)
	return []paie.FiscalParameter{
		{
			TenantID:  tenantID,
			Code:      ParamPlafondCNSS,
			Value:     paie.MustDecimal("1200000"),
			DateEffet: effet,
			IsActive:  true,
		},
		{
			TenantID:  tenantID,
			Code:      ParamAbattement,
			Value:     paie.MustDecimal("0.20"),
			DateEffet: effet,
			IsActive:  true,
		},
	}
}

// CongoBareme is the monthly IRPP schedule (the annual legal schedule
// divided by twelve, bounds adjusted to stay contiguous).
func CongoBareme() paie.Bareme {
	upper := func(s string) *decimal.Decimal {
		d := paie.MustDecimal(s)
		return &d
	}
	return paie.Bareme{Brackets: []paie.Bracket{
		{Lower: paie.MustDecimal("0"), Upper: upper("38667"), Rate: paie.MustDecimal("0.01")},
		{Lower: paie.MustDecimal("38667"), Upper: upper("83334"), Rate: paie.MustDecimal("0.10")},
		{Lower: paie.MustDecimal("83334"), Upper: upper("250000"), Rate: paie.MustDecimal("0.25")},
		{Lower: paie.MustDecimal("250000"), Rate: paie.MustDecimal("0.40")},
	}}
}

// CongoGrid is a minimal category/echelon base-pay grid anchored at the
// SMIG. Tenants with collective-agreement grids replace it wholesale.
func CongoGrid() *paie.SalaryGrid {
	entry := func(cat string, ech int, base string) paie.GridEntry {
		return paie.GridEntry{Categorie: cat, Echelon: ech, Base: paie.MustDecimal(base)}
	}
	return &paie.SalaryGrid{Entries: []paie.GridEntry{
		entry("C1", 1, "90000"),
		entry("C1", 2, "105000"),
		entry("C2", 1, "130000"),
		entry("C2", 2, "155000"),
		entry("C3", 1, "200000"),
		entry("C3", 2, "240000"),
		entry("M1", 1, "350000"),
		entry("M1", 2, "420000"),
		entry("CAD", 1, "600000"),
		entry("CAD", 2, "800000"),
	}}
}
