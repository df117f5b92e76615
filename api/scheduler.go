/*
scheduler.go - Automated period-close scheduler

PURPOSE:
  Periodically checks for tenants whose previous pay period has no
  stored bulletins and generates them automatically.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Targets the month before the current one (the period that just closed)
  - Skips tenants that already have bulletins for that period
  - Records close runs in memory for inspection

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewCloseScheduler(store, handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: Batch endpoint (manual close)
  - paie/batch.go: CalculateBatch
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/normx-ai/congo-payroll-system-sub002/paie"
	"github.com/normx-ai/congo-payroll-system-sub002/store/sqlite"
)

// CloseScheduler generates missing payslips for the closed period.
type CloseScheduler struct {
	Store         *sqlite.Store
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex

	runsMu sync.Mutex
	runs   []CloseRun
}

// CloseRun records one tenant's outcome during a scheduler pass.
type CloseRun struct {
	At        time.Time
	TenantID  paie.TenantID
	Period    string
	Generated int
	Skipped   bool
	Error     string
}

// NewCloseScheduler creates a new scheduler.
func NewCloseScheduler(store *sqlite.Store, handler *Handler) *CloseScheduler {
	return &CloseScheduler{
		Store:         store,
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (cs *CloseScheduler) Start() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	cs.ticker = time.NewTicker(cs.CheckInterval)
	cs.wg.Add(1)

	go cs.run()

	log.Printf("[Scheduler] Started with check interval: %v", cs.CheckInterval)
}

// Stop stops the scheduler.
func (cs *CloseScheduler) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.ticker != nil {
		cs.ticker.Stop()
		close(cs.stop)
		cs.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (cs *CloseScheduler) run() {
	defer cs.wg.Done()

	// Run immediately on start
	cs.checkAndProcess(time.Now())

	for {
		select {
		case <-cs.ticker.C:
			cs.checkAndProcess(time.Now())
		case <-cs.stop:
			return
		}
	}
}

func (cs *CloseScheduler) checkAndProcess(now time.Time) {
	ctx := context.Background()

	// Derived from the calendar month, not AddDate: on the 31st
	// following a shorter month, AddDate(0, -1, 0) normalizes forward
	// into the current month.
	period := paie.Period{Year: now.Year(), Month: now.Month()}.Prev()

	log.Printf("[Scheduler] Checking period %s at %v", period, now)

	tenants, err := cs.Store.Tenants(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error listing tenants: %v", err)
		return
	}

	generated := 0
	skipped := 0

	for _, tenantID := range tenants {
		run := cs.closeTenant(ctx, tenantID, period)
		run.At = now
		cs.record(run)
		if run.Skipped {
			skipped++
		} else {
			generated += run.Generated
		}
		if run.Error != "" {
			log.Printf("[Scheduler] Error closing %s for %s: %s", tenantID, period, run.Error)
		}
	}

	if generated > 0 || skipped > 0 {
		log.Printf("[Scheduler] Completed %s: %d generated, %d tenants skipped (already closed)",
			period, generated, skipped)
	}
}

// closeTenant generates the tenant's bulletins for period, unless the
// period has already been closed.
func (cs *CloseScheduler) closeTenant(ctx context.Context, tenantID paie.TenantID, period paie.Period) CloseRun {
	run := CloseRun{TenantID: tenantID, Period: period.String()}

	existing, err := cs.Store.Bulletins(ctx, tenantID, period.String())
	if err != nil {
		run.Error = err.Error()
		return run
	}
	if len(existing) > 0 {
		run.Skipped = true
		return run
	}

	employees, err := cs.Store.Employees(ctx, tenantID)
	if err != nil {
		run.Error = err.Error()
		return run
	}
	if len(employees) == 0 {
		run.Skipped = true
		return run
	}

	engine, err := cs.Handler.engineFor(ctx, tenantID)
	if err != nil {
		run.Error = err.Error()
		return run
	}

	inputs := make([]paie.ContextInput, len(employees))
	for i := range employees {
		inputs[i] = paie.ContextInput{
			TenantID:        tenantID,
			Period:          period,
			Employee:        &employees[i],
			JoursTravailles: 26,
		}
	}

	results := engine.CalculateBatch(ctx, inputs, paie.Strict, 0)
	for _, res := range results {
		if res.Err != nil {
			run.Error = res.Err.Error()
			continue
		}
		dto := toBulletinDTO(res.Calculation)
		if _, err := cs.Handler.saveBulletin(ctx, res.Calculation, dto); err != nil {
			run.Error = err.Error()
			continue
		}
		run.Generated++
	}

	log.Printf("[Scheduler] Closed %s for %s: %d bulletins", tenantID, period, run.Generated)
	return run
}

func (cs *CloseScheduler) record(run CloseRun) {
	cs.runsMu.Lock()
	defer cs.runsMu.Unlock()
	cs.runs = append(cs.runs, run)
}

// RunNow triggers an immediate check (for testing/admin).
func (cs *CloseScheduler) RunNow(now time.Time) {
	cs.checkAndProcess(now)
}

// Runs returns a copy of the recorded close runs.
func (cs *CloseScheduler) Runs() []CloseRun {
	cs.runsMu.Lock()
	defer cs.runsMu.Unlock()
	out := make([]CloseRun, len(cs.runs))
	copy(out, cs.runs)
	return out
}

// NextRunTime returns when the next scheduled check will occur.
func (cs *CloseScheduler) NextRunTime() time.Time {
	return time.Now().Add(cs.CheckInterval)
}
