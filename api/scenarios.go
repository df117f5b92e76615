/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates a tenant's rubrique
	catalog, fiscal parameters, bareme, salary grid and employees.

AVAILABLE SCENARIOS:

	congo-standard:  Standard Congo-Brazzaville catalog, three employees
	multi-employes:  Batch tenant with a larger payroll and charges fixes
	changement-taux: Two CNSS ceiling windows showing time-scoped params

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Save the rubrique catalog, parameters, bareme and grid
 3. Save employees (with charges fixes where relevant)
 4. Invalidate the snapshot cache

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "congo-standard"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: LoadScenario, ListScenarios handlers
  - catalog/congo.go: The preset being seeded
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/normx-ai/congo-payroll-system-sub002/catalog"
	"github.com/normx-ai/congo-payroll-system-sub002/paie"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "congo-standard",
		Name:        "Congo Standard",
		Description: "Standard Congo-Brazzaville catalog with three employees",
	},
	{
		ID:          "multi-employes",
		Name:        "Multi Employes",
		Description: "Batch payroll tenant with charges fixes and manual lines",
	},
	{
		ID:          "changement-taux",
		Name:        "Changement de Taux",
		Description: "CNSS ceiling change mid-year, two parameter windows",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          current,
		Name:        current,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.mu.Lock()
	h.snapshots = make(map[paie.TenantID]*paie.Snapshot)
	h.currentScenario = ""
	h.mu.Unlock()

	var err error
	switch req.ScenarioID {
	case "congo-standard":
		err = h.loadCongoStandardScenario(ctx)
	case "multi-employes":
		err = h.loadMultiEmployesScenario(ctx)
	case "changement-taux":
		err = h.loadChangementTauxScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.mu.Lock()
	h.snapshots = make(map[paie.TenantID]*paie.Snapshot)
	h.currentScenario = ""
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// seedCatalog writes a complete snapshot input to the store.
func (h *Handler) seedCatalog(ctx context.Context, in paie.SnapshotInput) error {
	for _, r := range in.Rubriques {
		if err := h.Store.SaveRubrique(ctx, in.TenantID, r); err != nil {
			return err
		}
	}
	for _, p := range in.Params {
		if err := h.Store.SaveParameter(ctx, p); err != nil {
			return err
		}
	}
	if err := h.Store.SaveBareme(ctx, in.TenantID, in.Bareme); err != nil {
		return err
	}
	return h.Store.SaveGrid(ctx, in.TenantID, in.Grid)
}

// loadCongoStandardScenario: one tenant, the standard catalog, three
// employees covering the common cases (grid-paid junior, senior with
// anciennete, manager above the CNSS ceiling).
func (h *Handler) loadCongoStandardScenario(ctx context.Context) error {
	tenantID := paie.TenantID("demo-cg")
	if err := h.seedCatalog(ctx, catalog.Congo(tenantID)); err != nil {
		return err
	}

	employees := []paie.Employee{
		{
			ID:        "emp-okemba",
			Name:      "Grace Okemba",
			Categorie: "C2",
			Echelon:   1,
			HireDate:  paie.Date{Year: 2023, Month: 3, Day: 1},
		},
		{
			ID:         "emp-mbemba",
			Name:       "Pascal Mbemba",
			BaseSalary: paie.MustDecimal("450000"),
			HireDate:   paie.Date{Year: 2019, Month: 6, Day: 15},
		},
		{
			ID:         "emp-ngoma",
			Name:       "Clarisse Ngoma",
			BaseSalary: paie.MustDecimal("1500000"),
			HireDate:   paie.Date{Year: 2015, Month: 1, Day: 10},
		},
	}
	for _, e := range employees {
		if _, err := h.Store.SaveEmployee(ctx, tenantID, e); err != nil {
			return err
		}
	}
	return nil
}

// loadMultiEmployesScenario: a batch tenant whose employees carry
// charges fixes (housing, transport) feeding the fixed-amount
// rubriques.
func (h *Handler) loadMultiEmployesScenario(ctx context.Context) error {
	tenantID := paie.TenantID("demo-batch")
	if err := h.seedCatalog(ctx, catalog.Congo(tenantID)); err != nil {
		return err
	}

	type row struct {
		id, name, salary string
		hire             paie.Date
		logement         string
		transport        string
	}
	rows := []row{
		{"emp-b01", "Armand Loubaki", "280000", paie.Date{Year: 2021, Month: 2, Day: 1}, "", "15000"},
		{"emp-b02", "Sylvie Bakala", "320000", paie.Date{Year: 2020, Month: 9, Day: 1}, "40000", "15000"},
		{"emp-b03", "Davy Moukila", "510000", paie.Date{Year: 2018, Month: 4, Day: 15}, "60000", "20000"},
		{"emp-b04", "Henriette Samba", "760000", paie.Date{Year: 2016, Month: 11, Day: 2}, "80000", "20000"},
		{"emp-b05", "Fortune Itoua", "1350000", paie.Date{Year: 2014, Month: 7, Day: 1}, "120000", "25000"},
	}

	for _, r := range rows {
		e := paie.Employee{
			ID:         paie.EmployeeID(r.id),
			Name:       r.name,
			BaseSalary: paie.MustDecimal(r.salary),
			HireDate:   r.hire,
		}
		if r.logement != "" {
			e.ChargesFixes = append(e.ChargesFixes, paie.EmployeeChargeFixe{
				RubriqueCode: catalog.CodeIndemniteLog,
				Montant:      paie.MustDecimal(r.logement),
				IsActive:     true,
			})
		}
		if r.transport != "" {
			e.ChargesFixes = append(e.ChargesFixes, paie.EmployeeChargeFixe{
				RubriqueCode: catalog.CodePrimeTransport,
				Montant:      paie.MustDecimal(r.transport),
				IsActive:     true,
			})
		}
		if _, err := h.Store.SaveEmployee(ctx, tenantID, e); err != nil {
			return err
		}
	}
	return nil
}

// loadChangementTauxScenario: the CNSS ceiling changes on July 1st.
// Payslips for 2024-06 and 2024-07 resolve different ceilings; the
// windows are closed/opened so no period sees two rows.
func (h *Handler) loadChangementTauxScenario(ctx context.Context) error {
	tenantID := paie.TenantID("demo-taux")
	in := catalog.Congo(tenantID)

	// Replace the open-ended ceiling with two adjoining windows.
	var params []paie.FiscalParameter
	for _, p := range in.Params {
		if p.Code != catalog.ParamPlafondCNSS {
			params = append(params, p)
		}
	}
	juneEnd := paie.Date{Year: 2024, Month: 6, Day: 30}
	params = append(params,
		paie.FiscalParameter{
			TenantID:  tenantID,
			Code:      catalog.ParamPlafondCNSS,
			Value:     paie.MustDecimal("1200000"),
			DateEffet: paie.Date{Year: 2024, Month: 1, Day: 1},
			DateFin:   &juneEnd,
			IsActive:  true,
		},
		paie.FiscalParameter{
			TenantID:  tenantID,
			Code:      catalog.ParamPlafondCNSS,
			Value:     paie.MustDecimal("1500000"),
			DateEffet: paie.Date{Year: 2024, Month: 7, Day: 1},
			IsActive:  true,
		},
	)
	in.Params = params

	if err := h.seedCatalog(ctx, in); err != nil {
		return err
	}

	_, err := h.Store.SaveEmployee(ctx, tenantID, paie.Employee{
		ID:         "emp-cadre",
		Name:       "Bernadette Elenga",
		BaseSalary: paie.MustDecimal("1400000"),
		HireDate:   paie.Date{Year: 2017, Month: 5, Day: 1},
	})
	return err
}
