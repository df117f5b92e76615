/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  The compute surface (paie endpoints) speaks camelCase, matching the
  payroll frontends that consume it. The configuration surface (CRUD
  endpoints) speaks snake_case and reuses the factory wire forms, so
  the store, the admin tooling and the API share one schema.

TYPES:
  Compute:
    CalculRequest, EmployeeInput, SaisieDTO
    LigneDTO, WarningDTO, BulletinDTO, StoredBulletinDTO
    BatchRequest, BatchItemDTO

  Configuration:
    factory.RubriqueJSON, factory.ParameterJSON, factory.BracketJSON,
    factory.GridEntryJSON (reused directly)
    EmployeeDTO, ChargeFixeDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers and in the paie package, not in DTOs.
  DTOs are pure data carriers.

MONEY:
  Amounts cross the wire as JSON numbers. Payslip amounts are whole
  francs after paie's rounding, so float64 carries them exactly; all
  arithmetic stays in decimal inside the engine.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/catalog.go: Configuration wire forms
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/normx-ai/congo-payroll-system-sub002/paie"
)

// =============================================================================
// COMPUTE REQUEST TYPES
// =============================================================================

// CalculRequest is the shared request body for the compute endpoints.
// RubriqueCode is only read by the single-rubrique endpoint.
type CalculRequest struct {
	TenantID     string `json:"tenantId"`
	RubriqueCode string `json:"rubriqueCode,omitempty"`
	EmployeeID   string `json:"employeeId,omitempty"`
	Period       string `json:"period"` // "YYYY-MM"

	// Preview seeds for the running bases. Only honored by the
	// single-rubrique endpoint.
	BrutSocial *float64 `json:"brutSocial,omitempty"`
	BrutFiscal *float64 `json:"brutFiscal,omitempty"`

	JoursTravailles    int            `json:"joursTravailles"`
	Employee           *EmployeeInput `json:"employee,omitempty"`
	ChargesDeductibles float64        `json:"chargesDeductibles,omitempty"`
	QuotientFamilial   float64        `json:"quotientFamilial,omitempty"`
	RubriquesSaisies   []SaisieDTO    `json:"rubriquesSaisies,omitempty"`

	// "strict" (default) or "lenient".
	Mode string `json:"mode,omitempty"`
}

// EmployeeInput is an inline employee in a compute request. When
// employeeId references a stored employee this is ignored.
type EmployeeInput struct {
	ID         string  `json:"id,omitempty"`
	Name       string  `json:"name,omitempty"`
	BaseSalary float64 `json:"baseSalary"`
	HireDate   string  `json:"hireDate,omitempty"` // "YYYY-MM-DD"
	Categorie  string  `json:"categorie,omitempty"`
	Echelon    int     `json:"echelon,omitempty"`
}

// SaisieDTO is one manually keyed pay line.
type SaisieDTO struct {
	Code    string  `json:"code"`
	Montant float64 `json:"montant"`
}

// =============================================================================
// COMPUTE RESPONSE TYPES
// =============================================================================

// LigneDTO is one payslip line.
type LigneDTO struct {
	Code            string   `json:"code"`
	Label           string   `json:"label"`
	Kind            string   `json:"kind"`
	Base            *float64 `json:"base,omitempty"`
	Taux            *float64 `json:"taux,omitempty"`
	TauxPatronal    *float64 `json:"tauxPatronal,omitempty"`
	Montant         float64  `json:"montant"`
	MontantPatronal float64  `json:"montantPatronal,omitempty"`
	Manual          bool     `json:"manual,omitempty"`
}

// WarningDTO records a lenient-mode downgrade.
type WarningDTO struct {
	RubriqueCode string `json:"rubriqueCode"`
	Message      string `json:"message"`
}

// BulletinDTO is the full payslip breakdown.
type BulletinDTO struct {
	TenantID   string `json:"tenantId"`
	EmployeeID string `json:"employeeId,omitempty"`
	Period     string `json:"period"`
	State      string `json:"state"`

	Gains       []LigneDTO `json:"gains"`
	Cotisations []LigneDTO `json:"cotisations"`
	Retenues    []LigneDTO `json:"retenues"`

	TotalBrutSocial         float64 `json:"totalBrutSocial"`
	TotalBrutFiscal         float64 `json:"totalBrutFiscal"`
	BaseImposable           float64 `json:"baseImposable"`
	IRPP                    float64 `json:"irpp"`
	TotalRetenuesSalariales float64 `json:"totalRetenuesSalariales"`
	TotalChargesPatronales  float64 `json:"totalChargesPatronales"`
	NetAPayer               float64 `json:"netAPayer"`

	Warnings []WarningDTO `json:"warnings,omitempty"`
}

// StoredBulletinDTO wraps a persisted payslip.
type StoredBulletinDTO struct {
	ID        string      `json:"id"`
	CreatedAt string      `json:"createdAt,omitempty"`
	Bulletin  BulletinDTO `json:"bulletin"`
}

// BatchRequest asks for payslips for several stored employees at once.
// An empty EmployeeIDs means every employee of the tenant.
type BatchRequest struct {
	TenantID        string   `json:"tenantId"`
	Period          string   `json:"period"`
	EmployeeIDs     []string `json:"employeeIds,omitempty"`
	JoursTravailles int      `json:"joursTravailles,omitempty"`
	Mode            string   `json:"mode,omitempty"`
	Workers         int      `json:"workers,omitempty"`
}

// BatchItemDTO is one employee's outcome within a batch.
type BatchItemDTO struct {
	EmployeeID string       `json:"employeeId"`
	BulletinID string       `json:"bulletinId,omitempty"`
	Bulletin   *BulletinDTO `json:"bulletin,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// =============================================================================
// CONFIGURATION TYPES (snake_case, factory wire forms)
// =============================================================================

// EmployeeDTO represents a stored employee.
type EmployeeDTO struct {
	ID           string          `json:"id,omitempty"`
	Name         string          `json:"name"`
	BaseSalary   string          `json:"base_salary"`
	HireDate     string          `json:"hire_date,omitempty"`
	Categorie    string          `json:"categorie,omitempty"`
	Echelon      int             `json:"echelon,omitempty"`
	ChargesFixes []ChargeFixeDTO `json:"charges_fixes,omitempty"`
}

// ChargeFixeDTO is a per-employee fixed-amount override.
type ChargeFixeDTO struct {
	RubriqueCode string `json:"rubrique_code"`
	Montant      string `json:"montant"`
	IsActive     bool   `json:"is_active"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func fl(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func flPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := fl(*d)
	return &f
}

func toLigneDTO(l paie.Ligne) LigneDTO {
	return LigneDTO{
		Code:            string(l.Code),
		Label:           l.Label,
		Kind:            string(l.Kind),
		Base:            flPtr(l.Base),
		Taux:            flPtr(l.Taux),
		TauxPatronal:    flPtr(l.TauxPatronal),
		Montant:         fl(l.Montant),
		MontantPatronal: fl(l.MontantPatronal),
		Manual:          l.Manual,
	}
}

func toLigneDTOs(lignes []paie.Ligne) []LigneDTO {
	dtos := make([]LigneDTO, len(lignes))
	for i, l := range lignes {
		dtos[i] = toLigneDTO(l)
	}
	return dtos
}

func toBulletinDTO(c *paie.Calculation) BulletinDTO {
	dto := BulletinDTO{
		TenantID:   string(c.TenantID),
		EmployeeID: string(c.EmployeeID),
		Period:     c.Period.String(),
		State:      string(c.State),

		Gains:       toLigneDTOs(c.Gains),
		Cotisations: toLigneDTOs(c.Cotisations),
		Retenues:    toLigneDTOs(c.Retenues),

		TotalBrutSocial:         fl(c.TotalBrutSocial),
		TotalBrutFiscal:         fl(c.TotalBrutFiscal),
		BaseImposable:           fl(c.BaseImposable),
		IRPP:                    fl(c.IRPP),
		TotalRetenuesSalariales: fl(c.TotalRetenuesSalariales),
		TotalChargesPatronales:  fl(c.TotalChargesPatronales),
		NetAPayer:               fl(c.NetAPayer),
	}
	for _, w := range c.Warnings {
		dto.Warnings = append(dto.Warnings, WarningDTO{
			RubriqueCode: string(w.RubriqueCode),
			Message:      w.Message,
		})
	}
	return dto
}

func toEmployeeDTO(e paie.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:         string(e.ID),
		Name:       e.Name,
		BaseSalary: e.BaseSalary.String(),
		Categorie:  e.Categorie,
		Echelon:    e.Echelon,
	}
	if !e.HireDate.IsZero() {
		dto.HireDate = e.HireDate.String()
	}
	for _, cf := range e.ChargesFixes {
		dto.ChargesFixes = append(dto.ChargesFixes, ChargeFixeDTO{
			RubriqueCode: string(cf.RubriqueCode),
			Montant:      cf.Montant.String(),
			IsActive:     cf.IsActive,
		})
	}
	return dto
}
