/*
scheduler_test.go - Tests for the period-close scheduler

Tests for:
- Generating missing bulletins for the closed period
- Skipping tenants that already closed
*/
package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normx-ai/congo-payroll-system-sub002/store/sqlite"
)

func newTestScheduler(t *testing.T) (*CloseScheduler, *Handler, http.Handler) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	handler := NewHandler(store)
	return NewCloseScheduler(store, handler), handler, NewRouter(handler)
}

func TestCloseScheduler_GeneratesMissingBulletins(t *testing.T) {
	scheduler, _, router := newTestScheduler(t)
	loadScenario(t, router, "congo-standard")

	// A run "now" in April 2024 closes March.
	scheduler.RunNow(time.Date(2024, time.April, 5, 9, 0, 0, 0, time.UTC))

	runs := scheduler.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, "2024-03", runs[0].Period)
	assert.Empty(t, runs[0].Error)
	assert.Equal(t, 3, runs[0].Generated, "one bulletin per stored employee")

	list := doJSON(t, router, http.MethodGet, "/api/paie/bulletins?tenant_id=demo-cg&period=2024-03", nil)
	require.Equal(t, http.StatusOK, list.Code)
	var items []StoredBulletinDTO
	decodeInto(t, list, &items)
	assert.Len(t, items, 3)
}

func TestCloseScheduler_MonthEnd_ClosesPreviousMonth(t *testing.T) {
	scheduler, _, router := newTestScheduler(t)
	loadScenario(t, router, "congo-standard")

	// March 31 follows a 29-day February; the target must still be
	// February, never March itself.
	scheduler.RunNow(time.Date(2024, time.March, 31, 9, 0, 0, 0, time.UTC))

	runs := scheduler.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, "2024-02", runs[0].Period)

	list := doJSON(t, router, http.MethodGet, "/api/paie/bulletins?tenant_id=demo-cg&period=2024-03", nil)
	require.Equal(t, http.StatusOK, list.Code)
	var march []StoredBulletinDTO
	decodeInto(t, list, &march)
	assert.Empty(t, march, "the month in progress must not be closed")
}

func TestCloseScheduler_SkipsAlreadyClosedPeriod(t *testing.T) {
	scheduler, _, router := newTestScheduler(t)
	loadScenario(t, router, "congo-standard")

	now := time.Date(2024, time.April, 5, 9, 0, 0, 0, time.UTC)
	scheduler.RunNow(now)
	scheduler.RunNow(now)

	runs := scheduler.Runs()
	require.Len(t, runs, 2)
	assert.True(t, runs[1].Skipped, "second pass must not duplicate bulletins")

	list := doJSON(t, router, http.MethodGet, "/api/paie/bulletins?tenant_id=demo-cg&period=2024-03", nil)
	require.Equal(t, http.StatusOK, list.Code)
	var items []StoredBulletinDTO
	decodeInto(t, list, &items)
	assert.Len(t, items, 3, "still one bulletin per employee")
}

func TestCloseScheduler_NoTenants_NoRuns(t *testing.T) {
	scheduler, _, _ := newTestScheduler(t)

	scheduler.RunNow(time.Date(2024, time.April, 5, 9, 0, 0, 0, time.UTC))
	assert.Empty(t, scheduler.Runs())
}

func TestCloseScheduler_DisabledDoesNotStart(t *testing.T) {
	scheduler, _, _ := newTestScheduler(t)
	scheduler.Enabled = false

	scheduler.Start()
	scheduler.Stop() // must be a no-op, not a panic
}
