package catalog_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normx-ai/congo-payroll-system-sub002/catalog"
	"github.com/normx-ai/congo-payroll-system-sub002/paie"
)

func TestCongo_SnapshotBuilds(t *testing.T) {
	snap, err := paie.NewSnapshot(catalog.Congo("t1"))
	require.NoError(t, err)

	// Every default rubrique survives (all are active).
	assert.Len(t, snap.Rubriques, len(catalog.CongoRubriques()))
}

func TestCongo_ProcessingOrder(t *testing.T) {
	// Base earnings come first (they feed the grosses), then
	// non-taxable earnings, then contributions, then deductions.
	snap, err := paie.NewSnapshot(catalog.Congo("t1"))
	require.NoError(t, err)

	rank := map[paie.Kind]int{
		paie.KindBaseEarning:         0,
		paie.KindNonTaxableEarning:   1,
		paie.KindContribution:        2,
		paie.KindNonTaxableDeduction: 3,
	}

	prev := -1
	for _, r := range snap.Rubriques {
		k := rank[r.Kind]
		assert.GreaterOrEqual(t, k, prev, "rubrique %s out of order", r.Code)
		if k > prev {
			prev = k
		}
	}

	// Within base earnings, the base salary leads.
	assert.Equal(t, catalog.CodeSalaireBase, snap.Rubriques[0].Code)
}

func TestCongo_RubriquesValidate(t *testing.T) {
	for _, r := range catalog.CongoRubriques() {
		r := r
		assert.NoError(t, r.Validate(), "rubrique %s", r.Code)
	}
}

func TestCongo_BaremeValidates(t *testing.T) {
	require.NoError(t, catalog.CongoBareme().Validate())
}

func TestCongo_DefaultParameters(t *testing.T) {
	params := paie.NewParameterSet(catalog.CongoParams("t1"))
	r := paie.NewResolver("t1", paie.Period{Year: 2024, Month: 3}, params)

	plafond, err := r.Resolve(catalog.ParamPlafondCNSS)
	require.NoError(t, err)
	assert.True(t, plafond.Equal(decimal.NewFromInt(1200000)))

	abattement, err := r.Resolve(catalog.ParamAbattement)
	require.NoError(t, err)
	assert.True(t, abattement.Equal(paie.MustDecimal("0.20")))
}

func TestCongo_GridLookups(t *testing.T) {
	grid := catalog.CongoGrid()

	base, ok := grid.BaseFor("C2", 1)
	require.True(t, ok)
	assert.True(t, base.Equal(decimal.NewFromInt(130000)))

	base, ok = grid.BaseFor("CAD", 2)
	require.True(t, ok)
	assert.True(t, base.Equal(decimal.NewFromInt(800000)))

	_, ok = grid.BaseFor("C9", 1)
	assert.False(t, ok, "unknown category must not resolve")
}

func TestLoad_AssemblesSnapshotFromProvider(t *testing.T) {
	p := &staticProvider{in: catalog.Congo("t1")}

	snap, err := catalog.Load(context.Background(), p, "t1")
	require.NoError(t, err)
	assert.Equal(t, paie.TenantID("t1"), snap.TenantID)
	assert.Len(t, snap.Rubriques, len(catalog.CongoRubriques()))
}

// staticProvider serves a fixed snapshot input.
type staticProvider struct {
	in paie.SnapshotInput
}

func (p *staticProvider) Rubriques(ctx context.Context, tenantID paie.TenantID) ([]paie.Rubrique, error) {
	return p.in.Rubriques, nil
}

func (p *staticProvider) Parameters(ctx context.Context, tenantID paie.TenantID) ([]paie.FiscalParameter, error) {
	return p.in.Params, nil
}

func (p *staticProvider) Bareme(ctx context.Context, tenantID paie.TenantID) (paie.Bareme, error) {
	return p.in.Bareme, nil
}

func (p *staticProvider) Grid(ctx context.Context, tenantID paie.TenantID) (*paie.SalaryGrid, error) {
	return p.in.Grid, nil
}
