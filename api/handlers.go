/*
handlers.go - HTTP API handlers for the payroll calculation engine

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Compute:
    POST   /api/paie/rubriques/calculer  Single-rubrique preview
    POST   /api/paie/calculer            Full payslip (not persisted)
    POST   /api/paie/bulletins           Full payslip, persisted
    GET    /api/paie/bulletins           List stored payslips
    POST   /api/paie/batch               Payslips for many employees

  Configuration:
    GET/POST /api/rubriques              Pay-line catalog
    GET/POST /api/parametres             Fiscal parameter windows
    GET/PUT  /api/bareme                 IRPP bracket table
    GET/PUT  /api/grille                 Salary grid
    GET/POST /api/employes               Employees (+ charges fixes)
    GET      /api/employes/{id}

  Scenarios:
    GET    /api/scenarios                List demo scenarios
    POST   /api/scenarios/load           Load a demo scenario

ARCHITECTURE:
  Handler holds the store and a per-tenant snapshot cache. A snapshot
  is the validated, formula-compiled catalog; configuration writes
  invalidate the tenant's cached snapshot. Both compute call shapes go
  through the same paie.Engine, so preview and authoritative output
  cannot drift.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input (body shape, dates, quotient, jours)
  - 404: Unknown rubrique or employee
  - 409: Ambiguous fiscal parameter windows
  - 422: Configuration or evaluation failures (strict mode)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/normx-ai/congo-payroll-system-sub002/catalog"
	"github.com/normx-ai/congo-payroll-system-sub002/factory"
	"github.com/normx-ai/congo-payroll-system-sub002/paie"
	"github.com/normx-ai/congo-payroll-system-sub002/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store

	// mu guards the snapshot cache and the current scenario marker.
	// Snapshots are invalidated on config writes.
	mu              sync.RWMutex
	snapshots       map[paie.TenantID]*paie.Snapshot
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:     store,
		snapshots: make(map[paie.TenantID]*paie.Snapshot),
	}
}

// engineFor returns an engine over the tenant's current snapshot,
// loading and caching it on first use.
func (h *Handler) engineFor(ctx context.Context, tenantID paie.TenantID) (*paie.Engine, error) {
	h.mu.RLock()
	snap, ok := h.snapshots[tenantID]
	h.mu.RUnlock()
	if ok {
		return paie.NewEngine(snap), nil
	}

	snap, err := catalog.Load(ctx, h.Store, tenantID)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.snapshots[tenantID] = snap
	h.mu.Unlock()
	return paie.NewEngine(snap), nil
}

func (h *Handler) invalidate(tenantID paie.TenantID) {
	h.mu.Lock()
	delete(h.snapshots, tenantID)
	h.mu.Unlock()
}

// =============================================================================
// COMPUTE HANDLERS
// =============================================================================

// CalculerRubrique evaluates one rubrique in isolation.
// POST /api/paie/rubriques/calculer
func (h *Handler) CalculerRubrique(w http.ResponseWriter, r *http.Request) {
	var req CalculRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.RubriqueCode == "" {
		writeError(w, http.StatusBadRequest, "rubriqueCode is required", nil)
		return
	}

	engine, in, ok := h.prepare(w, r, req)
	if !ok {
		return
	}

	// Preview seeds for the running bases. Only this endpoint honors
	// them; a full run always accumulates its bases from zero.
	if req.BrutSocial != nil {
		in.BrutSocial = decimal.NewFromFloat(*req.BrutSocial)
	}
	if req.BrutFiscal != nil {
		in.BrutFiscal = decimal.NewFromFloat(*req.BrutFiscal)
	}

	ligne, err := engine.EvaluateRubrique(in, paie.RubriqueCode(req.RubriqueCode))
	if err != nil {
		writeDomainError(w, "Failed to evaluate rubrique", err)
		return
	}

	writeJSON(w, http.StatusOK, toLigneDTO(*ligne))
}

// Calculer computes a full payslip without persisting it.
// POST /api/paie/calculer
func (h *Handler) Calculer(w http.ResponseWriter, r *http.Request) {
	var req CalculRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	engine, in, ok := h.prepare(w, r, req)
	if !ok {
		return
	}

	calc, err := engine.Calculate(in, evalMode(req.Mode))
	if err != nil {
		writeDomainError(w, "Failed to compute payslip", err)
		return
	}

	writeJSON(w, http.StatusOK, toBulletinDTO(calc))
}

// GenererBulletin computes a full payslip and persists it. The
// computation is the same code path as Calculer; only the storage
// side effect differs.
// POST /api/paie/bulletins
func (h *Handler) GenererBulletin(w http.ResponseWriter, r *http.Request) {
	var req CalculRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	engine, in, ok := h.prepare(w, r, req)
	if !ok {
		return
	}

	calc, err := engine.Calculate(in, evalMode(req.Mode))
	if err != nil {
		writeDomainError(w, "Failed to compute payslip", err)
		return
	}

	dto := toBulletinDTO(calc)
	id, err := h.saveBulletin(r.Context(), calc, dto)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save bulletin", err)
		return
	}

	writeJSON(w, http.StatusCreated, StoredBulletinDTO{
		ID:        id,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Bulletin:  dto,
	})
}

func (h *Handler) saveBulletin(ctx context.Context, calc *paie.Calculation, dto BulletinDTO) (string, error) {
	breakdown, err := json.Marshal(dto)
	if err != nil {
		return "", err
	}
	return h.Store.SaveBulletin(ctx, sqlite.Bulletin{
		TenantID:   calc.TenantID,
		EmployeeID: calc.EmployeeID,
		Period:     calc.Period.String(),
		Breakdown:  breakdown,
	})
}

// ListBulletins returns stored payslips.
// GET /api/paie/bulletins?tenant_id=...&period=YYYY-MM
func (h *Handler) ListBulletins(w http.ResponseWriter, r *http.Request) {
	tenantID := paie.TenantID(r.URL.Query().Get("tenant_id"))
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required", nil)
		return
	}

	bulletins, err := h.Store.Bulletins(r.Context(), tenantID, r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bulletins", err)
		return
	}

	dtos := make([]StoredBulletinDTO, 0, len(bulletins))
	for _, b := range bulletins {
		var dto BulletinDTO
		if err := json.Unmarshal(b.Breakdown, &dto); err != nil {
			writeError(w, http.StatusInternalServerError, "Stored bulletin is unreadable", err)
			return
		}
		dtos = append(dtos, StoredBulletinDTO{
			ID:        b.ID,
			CreatedAt: b.CreatedAt.Format(time.RFC3339),
			Bulletin:  dto,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Batch computes and persists payslips for many stored employees.
// POST /api/paie/batch
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tenantID := paie.TenantID(req.TenantID)
	period, err := paie.ParsePeriod(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period format (use YYYY-MM)", err)
		return
	}

	engine, err := h.engineFor(r.Context(), tenantID)
	if err != nil {
		writeDomainError(w, "Failed to load tenant catalog", err)
		return
	}

	employees, err := h.batchEmployees(r.Context(), tenantID, req.EmployeeIDs)
	if err != nil {
		writeDomainError(w, "Failed to load employees", err)
		return
	}

	jours := req.JoursTravailles
	if jours == 0 {
		jours = 26
	}

	inputs := make([]paie.ContextInput, len(employees))
	for i := range employees {
		inputs[i] = paie.ContextInput{
			TenantID:        tenantID,
			Period:          period,
			Employee:        &employees[i],
			JoursTravailles: jours,
		}
	}

	results := engine.CalculateBatch(r.Context(), inputs, evalMode(req.Mode), req.Workers)

	items := make([]BatchItemDTO, len(results))
	for i, res := range results {
		item := BatchItemDTO{EmployeeID: string(res.EmployeeID)}
		if res.Err != nil {
			item.Error = res.Err.Error()
		} else {
			dto := toBulletinDTO(res.Calculation)
			id, err := h.saveBulletin(r.Context(), res.Calculation, dto)
			if err != nil {
				item.Error = err.Error()
			} else {
				item.BulletinID = id
				item.Bulletin = &dto
			}
		}
		items[i] = item
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) batchEmployees(ctx context.Context, tenantID paie.TenantID, ids []string) ([]paie.Employee, error) {
	if len(ids) == 0 {
		return h.Store.Employees(ctx, tenantID)
	}
	out := make([]paie.Employee, 0, len(ids))
	for _, id := range ids {
		emp, err := h.Store.Employee(ctx, tenantID, paie.EmployeeID(id))
		if err != nil {
			return nil, err
		}
		if emp == nil {
			return nil, &paie.InputError{
				TenantID: tenantID,
				Field:    "employeeIds",
				Detail:   "unknown employee " + id,
			}
		}
		out = append(out, *emp)
	}
	return out, nil
}

// prepare loads the tenant engine and converts the request into a
// validated ContextInput. On failure it writes the error response and
// returns ok=false.
func (h *Handler) prepare(w http.ResponseWriter, r *http.Request, req CalculRequest) (*paie.Engine, paie.ContextInput, bool) {
	tenantID := paie.TenantID(req.TenantID)
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenantId is required", nil)
		return nil, paie.ContextInput{}, false
	}

	period, err := paie.ParsePeriod(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period format (use YYYY-MM)", err)
		return nil, paie.ContextInput{}, false
	}

	engine, err := h.engineFor(r.Context(), tenantID)
	if err != nil {
		writeDomainError(w, "Failed to load tenant catalog", err)
		return nil, paie.ContextInput{}, false
	}

	emp, err := h.resolveEmployee(r.Context(), tenantID, req)
	if err != nil {
		writeDomainError(w, "Failed to resolve employee", err)
		return nil, paie.ContextInput{}, false
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return nil, paie.ContextInput{}, false
	}

	in := paie.ContextInput{
		TenantID:           tenantID,
		Period:             period,
		Employee:           emp,
		JoursTravailles:    req.JoursTravailles,
		ChargesDeductibles: decimal.NewFromFloat(req.ChargesDeductibles),
		QuotientFamilial:   decimal.NewFromFloat(req.QuotientFamilial),
	}
	for _, s := range req.RubriquesSaisies {
		in.RubriquesSaisies = append(in.RubriquesSaisies, paie.SaisieRubrique{
			Code:    paie.RubriqueCode(s.Code),
			Montant: decimal.NewFromFloat(s.Montant),
		})
	}
	return engine, in, true
}

// resolveEmployee prefers a stored employee over the inline one.
func (h *Handler) resolveEmployee(ctx context.Context, tenantID paie.TenantID, req CalculRequest) (*paie.Employee, error) {
	if req.EmployeeID != "" {
		return h.Store.Employee(ctx, tenantID, paie.EmployeeID(req.EmployeeID))
	}
	if req.Employee == nil {
		return nil, &paie.InputError{
			TenantID: tenantID,
			Field:    "employee",
			Detail:   "either employeeId or an inline employee is required",
		}
	}

	e := &paie.Employee{
		ID:         paie.EmployeeID(req.Employee.ID),
		Name:       req.Employee.Name,
		BaseSalary: decimal.NewFromFloat(req.Employee.BaseSalary),
		Categorie:  req.Employee.Categorie,
		Echelon:    req.Employee.Echelon,
	}
	if req.Employee.HireDate != "" {
		d, err := paie.ParseDate(req.Employee.HireDate)
		if err != nil {
			return nil, &paie.InputError{
				TenantID: tenantID,
				Field:    "employee.hireDate",
				Detail:   "use YYYY-MM-DD",
			}
		}
		e.HireDate = d
	}
	return e, nil
}

func evalMode(s string) paie.EvalMode {
	if s == string(paie.Lenient) {
		return paie.Lenient
	}
	return paie.Strict
}

// =============================================================================
// RUBRIQUE CONFIGURATION HANDLERS
// =============================================================================

// ListRubriques returns the tenant's pay-line catalog.
// GET /api/rubriques?tenant_id=...
func (h *Handler) ListRubriques(w http.ResponseWriter, r *http.Request) {
	tenantID := paie.TenantID(r.URL.Query().Get("tenant_id"))
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required", nil)
		return
	}

	rubriques, err := h.Store.Rubriques(r.Context(), tenantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rubriques", err)
		return
	}

	dtos := make([]factory.RubriqueJSON, len(rubriques))
	for i, rb := range rubriques {
		dtos[i] = factory.RubriqueToJSON(rb)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpsertRubrique creates or replaces one pay-line definition.
// POST /api/rubriques?tenant_id=...
func (h *Handler) UpsertRubrique(w http.ResponseWriter, r *http.Request) {
	tenantID := paie.TenantID(r.URL.Query().Get("tenant_id"))
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required", nil)
		return
	}

	var rj factory.RubriqueJSON
	if err := json.NewDecoder(r.Body).Decode(&rj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rubrique, err := factory.RubriqueFromJSON(rj)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rubrique definition", err)
		return
	}

	if err := h.Store.SaveRubrique(r.Context(), tenantID, rubrique); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save rubrique", err)
		return
	}
	h.invalidate(tenantID)

	writeJSON(w, http.StatusCreated, factory.RubriqueToJSON(rubrique))
}

// =============================================================================
// FISCAL PARAMETER HANDLERS
// =============================================================================

// ListParametres returns the tenant's parameter windows.
// GET /api/parametres?tenant_id=...
func (h *Handler) ListParametres(w http.ResponseWriter, r *http.Request) {
	tenantID := paie.TenantID(r.URL.Query().Get("tenant_id"))
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required", nil)
		return
	}

	params, err := h.Store.Parameters(r.Context(), tenantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list parameters", err)
		return
	}

	dtos := make([]factory.ParameterJSON, len(params))
	for i, p := range params {
		dtos[i] = factory.ParameterToJSON(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateParametre adds one parameter validity window.
// POST /api/parametres?tenant_id=...
func (h *Handler) CreateParametre(w http.ResponseWriter, r *http.Request) {
	tenantID := paie.TenantID(r.URL.Query().Get("tenant_id"))
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required", nil)
		return
	}

	var pj factory.ParameterJSON
	if err := json.NewDecoder(r.Body).Decode(&pj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	param, err := factory.ParameterFromJSON(tenantID, pj)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid parameter definition", err)
		return
	}

	if err := h.Store.SaveParameter(r.Context(), param); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save parameter", err)
		return
	}
	h.invalidate(tenantID)

	writeJSON(w, http.StatusCreated, factory.ParameterToJSON(param))
}

// =============================================================================
// BAREME AND GRID HANDLERS
// =============================================================================

// GetBareme returns the tenant's IRPP bracket table.
// GET /api/bareme?tenant_id=...
func (h *Handler) GetBareme(w http.ResponseWriter, r *http.Request) {
	tenantID := paie.TenantID(r.URL.Query().Get("tenant_id"))
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required", nil)
		return
	}

	bareme, err := h.Store.Bareme(r.Context(), tenantID)
	if err != nil {
		writeDomainError(w, "Failed to load bareme", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.BaremeToJSON(bareme))
}

// PutBareme replaces the tenant's IRPP bracket table.
// PUT /api/bareme?tenant_id=...
func (h *Handler) PutBareme(w http.ResponseWriter, r *http.Request) {
	tenantID := paie.TenantID(r.URL.Query().Get("tenant_id"))
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required", nil)
		return
	}

	var rows []factory.BracketJSON
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	bareme, err := factory.BaremeFromJSON(rows)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid bracket table", err)
		return
	}

	if err := h.Store.SaveBareme(r.Context(), tenantID, bareme); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save bareme", err)
		return
	}
	h.invalidate(tenantID)

	writeJSON(w, http.StatusOK, factory.BaremeToJSON(bareme))
}

// GetGrille returns the tenant's salary grid.
// GET /api/grille?tenant_id=...
func (h *Handler) GetGrille(w http.ResponseWriter, r *http.Request) {
	tenantID := paie.TenantID(r.URL.Query().Get("tenant_id"))
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required", nil)
		return
	}

	grid, err := h.Store.Grid(r.Context(), tenantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load salary grid", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.GridToJSON(grid))
}

// PutGrille replaces the tenant's salary grid.
// PUT /api/grille?tenant_id=...
func (h *Handler) PutGrille(w http.ResponseWriter, r *http.Request) {
	tenantID := paie.TenantID(r.URL.Query().Get("tenant_id"))
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required", nil)
		return
	}

	var rows []factory.GridEntryJSON
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	grid, err := factory.GridFromJSON(rows)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid salary grid", err)
		return
	}

	if err := h.Store.SaveGrid(r.Context(), tenantID, grid); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save salary grid", err)
		return
	}
	h.invalidate(tenantID)

	writeJSON(w, http.StatusOK, factory.GridToJSON(grid))
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployes returns all employees for a tenant.
// GET /api/employes?tenant_id=...
func (h *Handler) ListEmployes(w http.ResponseWriter, r *http.Request) {
	tenantID := paie.TenantID(r.URL.Query().Get("tenant_id"))
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required", nil)
		return
	}

	employees, err := h.Store.Employees(r.Context(), tenantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmploye returns one employee.
// GET /api/employes/{id}?tenant_id=...
func (h *Handler) GetEmploye(w http.ResponseWriter, r *http.Request) {
	tenantID := paie.TenantID(r.URL.Query().Get("tenant_id"))
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required", nil)
		return
	}

	emp, err := h.Store.Employee(r.Context(), tenantID, paie.EmployeeID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// UpsertEmploye creates or replaces an employee.
// POST /api/employes?tenant_id=...
func (h *Handler) UpsertEmploye(w http.ResponseWriter, r *http.Request) {
	tenantID := paie.TenantID(r.URL.Query().Get("tenant_id"))
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required", nil)
		return
	}

	var dto EmployeeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	emp, err := employeeFromDTO(dto)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee", err)
		return
	}

	id, err := h.Store.SaveEmployee(r.Context(), tenantID, emp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	emp.ID = id

	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

func employeeFromDTO(dto EmployeeDTO) (paie.Employee, error) {
	base, err := decimal.NewFromString(dto.BaseSalary)
	if err != nil {
		return paie.Employee{}, errors.New("base_salary must be a decimal string")
	}

	emp := paie.Employee{
		ID:         paie.EmployeeID(dto.ID),
		Name:       dto.Name,
		BaseSalary: base,
		Categorie:  dto.Categorie,
		Echelon:    dto.Echelon,
	}
	if dto.HireDate != "" {
		d, err := paie.ParseDate(dto.HireDate)
		if err != nil {
			return paie.Employee{}, errors.New("hire_date must be YYYY-MM-DD")
		}
		emp.HireDate = d
	}
	for _, cf := range dto.ChargesFixes {
		m, err := decimal.NewFromString(cf.Montant)
		if err != nil {
			return paie.Employee{}, errors.New("charge fixe montant must be a decimal string")
		}
		emp.ChargesFixes = append(emp.ChargesFixes, paie.EmployeeChargeFixe{
			RubriqueCode: paie.RubriqueCode(cf.RubriqueCode),
			Montant:      m,
			IsActive:     cf.IsActive,
		})
	}
	return emp, nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps paie errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

func statusFor(err error) int {
	switch {
	case paie.IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, paie.ErrRubriqueNotFound):
		return http.StatusNotFound
	case errors.Is(err, paie.ErrAmbiguousParameter):
		return http.StatusConflict
	case paie.IsConfigurationError(err), paie.IsEvaluationError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
