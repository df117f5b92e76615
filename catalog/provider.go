/*
provider.go - Collaborator contracts supplying engine inputs

PURPOSE:
  The engine consumes configuration from black-box collaborators: a
  catalog provider (rubriques), a fiscal-parameter provider, a bareme
  provider and an employee-data provider. These interfaces are the
  whole contract - pure read accessors, loaded once per batch, no
  engine-side caching beyond the snapshot itself.
*/
package catalog

import (
	"context"

	"github.com/normx-ai/congo-payroll-system-sub002/paie"
)

// Provider supplies a tenant's payroll configuration. Implementations
// must return fully loaded rows; the engine never fetches lazily
// mid-calculation.
type Provider interface {
	// Rubriques returns all rubrique rows for the tenant (active and
	// inactive; the snapshot filters).
	Rubriques(ctx context.Context, tenantID paie.TenantID) ([]paie.Rubrique, error)

	// Parameters returns all fiscal parameter rows for the tenant.
	Parameters(ctx context.Context, tenantID paie.TenantID) ([]paie.FiscalParameter, error)

	// Bareme returns the tenant's IRPP bracket table.
	Bareme(ctx context.Context, tenantID paie.TenantID) (paie.Bareme, error)

	// Grid returns the tenant's salary grid, or nil when none exists.
	Grid(ctx context.Context, tenantID paie.TenantID) (*paie.SalaryGrid, error)
}

// EmployeeProvider supplies employee snapshots, fixed-charge overrides
// included.
type EmployeeProvider interface {
	Employee(ctx context.Context, tenantID paie.TenantID, id paie.EmployeeID) (*paie.Employee, error)
	Employees(ctx context.Context, tenantID paie.TenantID) ([]paie.Employee, error)
}

// Load assembles and validates a snapshot from a provider. This is the
// once-per-batch load point: the returned snapshot is immutable and
// shared by every calculation of the batch.
func Load(ctx context.Context, p Provider, tenantID paie.TenantID) (*paie.Snapshot, error) {
	rubriques, err := p.Rubriques(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	params, err := p.Parameters(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	bareme, err := p.Bareme(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	grid, err := p.Grid(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	return paie.NewSnapshot(paie.SnapshotInput{
		TenantID:  tenantID,
		Rubriques: rubriques,
		Params:    params,
		Bareme:    bareme,
		Grid:      grid,
	})
}
