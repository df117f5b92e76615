/*
handlers_test.go - HTTP tests over the full router

Tests for:
- Scenario loading and the compute endpoints
- Preview vs full-run consistency
- Bulletin persistence and listing
- Batch runs
- Error status mapping
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normx-ai/congo-payroll-system-sub002/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter(t *testing.T) http.Handler {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewRouter(NewHandler(store))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), "body: %s", rec.Body.String())
}

func loadScenario(t *testing.T, router http.Handler, id string) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: id})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
}

// =============================================================================
// COMPUTE ENDPOINT TESTS
// =============================================================================

func TestAPI_Calculer_StoredEmployee(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "congo-standard")

	rec := doJSON(t, router, http.MethodPost, "/api/paie/calculer", CalculRequest{
		TenantID:        "demo-cg",
		EmployeeID:      "emp-mbemba",
		Period:          "2024-03",
		JoursTravailles: 26,
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var dto BulletinDTO
	decodeInto(t, rec, &dto)
	assert.Equal(t, "demo-cg", dto.TenantID)
	assert.Equal(t, "2024-03", dto.Period)
	assert.Equal(t, float64(495000), dto.TotalBrutSocial)
	assert.Equal(t, float64(104920), dto.IRPP)
	assert.Equal(t, float64(395280), dto.NetAPayer)
	assert.NotEmpty(t, dto.Gains)
	assert.NotEmpty(t, dto.Cotisations)
}

func TestAPI_Calculer_InlineEmployee(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "congo-standard")

	rec := doJSON(t, router, http.MethodPost, "/api/paie/calculer", CalculRequest{
		TenantID:        "demo-cg",
		Period:          "2024-03",
		JoursTravailles: 26,
		Employee: &EmployeeInput{
			Name:       "Interim",
			BaseSalary: 450000,
			HireDate:   "2019-06-15",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var dto BulletinDTO
	decodeInto(t, rec, &dto)
	assert.Equal(t, float64(395280), dto.NetAPayer,
		"an inline employee with the same profile must get the same payslip")
}

func TestAPI_CalculerRubrique_MatchesFullRun(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "congo-standard")

	emp := &EmployeeInput{Name: "Interim", BaseSalary: 450000, HireDate: "2019-06-15"}
	brutSocial := float64(495000)
	brutFiscal := float64(495000)

	rec := doJSON(t, router, http.MethodPost, "/api/paie/rubriques/calculer", CalculRequest{
		TenantID:        "demo-cg",
		RubriqueCode:    "CNSS",
		Period:          "2024-03",
		JoursTravailles: 26,
		Employee:        emp,
		BrutSocial:      &brutSocial,
		BrutFiscal:      &brutFiscal,
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var ligne LigneDTO
	decodeInto(t, rec, &ligne)
	assert.Equal(t, "CNSS", ligne.Code)
	assert.Equal(t, float64(19800), ligne.Montant)
	assert.Equal(t, float64(39600), ligne.MontantPatronal)
}

func TestAPI_Calculer_IgnoresPreviewSeeds(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "congo-standard")

	// Seeds belong to the single-rubrique preview; a full run starts
	// its bases at zero regardless.
	brutSocial := float64(9999999)
	brutFiscal := float64(9999999)
	rec := doJSON(t, router, http.MethodPost, "/api/paie/calculer", CalculRequest{
		TenantID:        "demo-cg",
		EmployeeID:      "emp-mbemba",
		Period:          "2024-03",
		JoursTravailles: 26,
		BrutSocial:      &brutSocial,
		BrutFiscal:      &brutFiscal,
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var dto BulletinDTO
	decodeInto(t, rec, &dto)
	assert.Equal(t, float64(495000), dto.TotalBrutSocial)
	assert.Equal(t, float64(395280), dto.NetAPayer)
}

func TestAPI_CalculerRubrique_RequiresCode(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "congo-standard")

	rec := doJSON(t, router, http.MethodPost, "/api/paie/rubriques/calculer", CalculRequest{
		TenantID:        "demo-cg",
		EmployeeID:      "emp-mbemba",
		Period:          "2024-03",
		JoursTravailles: 26,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// BULLETIN PERSISTENCE TESTS
// =============================================================================

func TestAPI_GenererBulletin_PersistsAndLists(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "congo-standard")

	rec := doJSON(t, router, http.MethodPost, "/api/paie/bulletins", CalculRequest{
		TenantID:        "demo-cg",
		EmployeeID:      "emp-mbemba",
		Period:          "2024-03",
		JoursTravailles: 26,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	var stored StoredBulletinDTO
	decodeInto(t, rec, &stored)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, float64(395280), stored.Bulletin.NetAPayer)

	list := doJSON(t, router, http.MethodGet, "/api/paie/bulletins?tenant_id=demo-cg&period=2024-03", nil)
	require.Equal(t, http.StatusOK, list.Code)

	var items []StoredBulletinDTO
	decodeInto(t, list, &items)
	require.Len(t, items, 1)
	assert.Equal(t, stored.ID, items[0].ID)
	assert.Equal(t, float64(395280), items[0].Bulletin.NetAPayer)

	none := doJSON(t, router, http.MethodGet, "/api/paie/bulletins?tenant_id=demo-cg&period=2024-04", nil)
	require.Equal(t, http.StatusOK, none.Code)
	var empty []StoredBulletinDTO
	decodeInto(t, none, &empty)
	assert.Empty(t, empty)
}

func TestAPI_ListBulletins_RequiresTenant(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/paie/bulletins", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// BATCH TESTS
// =============================================================================

func TestAPI_Batch_AllEmployees(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "multi-employes")

	rec := doJSON(t, router, http.MethodPost, "/api/paie/batch", BatchRequest{
		TenantID: "demo-batch",
		Period:   "2024-03",
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var items []BatchItemDTO
	decodeInto(t, rec, &items)
	require.Len(t, items, 5)
	for _, item := range items {
		assert.Empty(t, item.Error, "employee %s", item.EmployeeID)
		assert.NotEmpty(t, item.BulletinID, "employee %s", item.EmployeeID)
		require.NotNil(t, item.Bulletin)
		assert.Greater(t, item.Bulletin.NetAPayer, float64(0))
	}

	list := doJSON(t, router, http.MethodGet, "/api/paie/bulletins?tenant_id=demo-batch&period=2024-03", nil)
	require.Equal(t, http.StatusOK, list.Code)
	var stored []StoredBulletinDTO
	decodeInto(t, list, &stored)
	assert.Len(t, stored, 5, "a batch run persists every payslip")
}

func TestAPI_Batch_UnknownEmployeeRejected(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "congo-standard")

	rec := doJSON(t, router, http.MethodPost, "/api/paie/batch", BatchRequest{
		TenantID:    "demo-cg",
		Period:      "2024-03",
		EmployeeIDs: []string{"emp-mbemba", "emp-fantome"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", rec.Body.String())
}

// =============================================================================
// ERROR STATUS TESTS
// =============================================================================

func TestAPI_Calculer_MissingEmployee_Is400(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "congo-standard")

	rec := doJSON(t, router, http.MethodPost, "/api/paie/calculer", CalculRequest{
		TenantID:        "demo-cg",
		Period:          "2024-03",
		JoursTravailles: 26,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp ErrorResponse
	decodeInto(t, rec, &errResp)
	assert.NotEmpty(t, errResp.Error)
}

func TestAPI_CalculerRubrique_UnknownCode_Is404(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "congo-standard")

	rec := doJSON(t, router, http.MethodPost, "/api/paie/rubriques/calculer", CalculRequest{
		TenantID:        "demo-cg",
		RubriqueCode:    "RUBRIQUE_FANTOME",
		EmployeeID:      "emp-mbemba",
		Period:          "2024-03",
		JoursTravailles: 26,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code, "body: %s", rec.Body.String())
}

func TestAPI_Calculer_BadPeriod_Is400(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "congo-standard")

	rec := doJSON(t, router, http.MethodPost, "/api/paie/calculer", CalculRequest{
		TenantID:        "demo-cg",
		EmployeeID:      "emp-mbemba",
		Period:          "03/2024",
		JoursTravailles: 26,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// SCENARIO AND CONFIG TESTS
// =============================================================================

func TestAPI_Scenarios_ListAndLoad(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/scenarios/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var scenarios []ScenarioDTO
	decodeInto(t, rec, &scenarios)
	assert.Len(t, scenarios, 3)

	bad := doJSON(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "inconnu"})
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestAPI_GetCurrentScenario_TracksLoads(t *testing.T) {
	router := newTestRouter(t)

	none := doJSON(t, router, http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, none.Code)
	assert.Equal(t, "null", strings.TrimSpace(none.Body.String()))

	loadScenario(t, router, "congo-standard")

	rec := doJSON(t, router, http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var current ScenarioDTO
	decodeInto(t, rec, &current)
	assert.Equal(t, "congo-standard", current.ID)
}

func TestAPI_CurrentScenario_ConcurrentReadsAndLoads(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "congo-standard")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			doJSON(t, router, http.MethodPost, "/api/scenarios/load",
				LoadScenarioRequest{ScenarioID: "congo-standard"})
		}()
		go func() {
			defer wg.Done()
			doJSON(t, router, http.MethodGet, "/api/scenarios/current", nil)
		}()
	}
	wg.Wait()

	rec := doJSON(t, router, http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var current ScenarioDTO
	decodeInto(t, rec, &current)
	assert.Equal(t, "congo-standard", current.ID)
}

func TestAPI_ScenarioLoad_ReplacesPreviousData(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "congo-standard")
	loadScenario(t, router, "multi-employes")

	rec := doJSON(t, router, http.MethodGet, "/api/employes/?tenant_id=demo-cg", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var employees []EmployeeDTO
	decodeInto(t, rec, &employees)
	assert.Empty(t, employees, "loading a scenario resets the previous one")
}

func TestAPI_ChangementTaux_CeilingWindowApplies(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "changement-taux")

	// Before July 2024 the CNSS ceiling is 1 200 000.
	before := doJSON(t, router, http.MethodPost, "/api/paie/calculer", CalculRequest{
		TenantID:        "demo-taux",
		EmployeeID:      "emp-cadre",
		Period:          "2024-06",
		JoursTravailles: 26,
	})
	require.Equal(t, http.StatusOK, before.Code, "body: %s", before.Body.String())

	// From July 2024 the ceiling is 1 500 000, so the CNSS base grows.
	after := doJSON(t, router, http.MethodPost, "/api/paie/calculer", CalculRequest{
		TenantID:        "demo-taux",
		EmployeeID:      "emp-cadre",
		Period:          "2024-07",
		JoursTravailles: 26,
	})
	require.Equal(t, http.StatusOK, after.Code, "body: %s", after.Body.String())

	var juin, juillet BulletinDTO
	decodeInto(t, before, &juin)
	decodeInto(t, after, &juillet)

	cnss := func(dto BulletinDTO) float64 {
		for _, l := range dto.Cotisations {
			if l.Code == "CNSS" {
				return l.Montant
			}
		}
		t.Fatalf("no CNSS line in %+v", dto.Cotisations)
		return 0
	}
	assert.Equal(t, float64(48000), cnss(juin), "1200000 * 0.04")
	assert.Equal(t, float64(60000), cnss(juillet), "1500000 * 0.04")
}

func TestAPI_UpsertRubrique_InvalidatesCache(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "congo-standard")

	// Warm the snapshot cache.
	warm := doJSON(t, router, http.MethodPost, "/api/paie/calculer", CalculRequest{
		TenantID:        "demo-cg",
		EmployeeID:      "emp-mbemba",
		Period:          "2024-03",
		JoursTravailles: 26,
	})
	require.Equal(t, http.StatusOK, warm.Code)

	// Raise the transport allowance through the config API.
	upsert := doJSON(t, router, http.MethodPost, "/api/rubriques/?tenant_id=demo-cg", map[string]any{
		"code":         "PRIME_TRANSPORT",
		"label":        "Prime de transport",
		"kind":         "non_taxable_earning",
		"fixed_amount": "35000",
		"is_active":    true,
		"sequence":     40,
	})
	require.Equal(t, http.StatusCreated, upsert.Code, "body: %s", upsert.Body.String())

	after := doJSON(t, router, http.MethodPost, "/api/paie/calculer", CalculRequest{
		TenantID:        "demo-cg",
		EmployeeID:      "emp-mbemba",
		Period:          "2024-03",
		JoursTravailles: 26,
	})
	require.Equal(t, http.StatusOK, after.Code)

	var dto BulletinDTO
	decodeInto(t, after, &dto)
	assert.Equal(t, float64(405280), dto.NetAPayer,
		"the next computation must see the updated rubrique")
}

func TestAPI_Health(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
