/*
Package sqlite provides the SQLite-backed configuration and payslip store.

PURPOSE:
  Plays the external persistence collaborator for the server binary and
  the tests: it supplies the engine's inputs (rubrique catalog, fiscal
  parameters, bareme, salary grid, employees with their fixed-charge
  overrides) and records the engine's output (generated bulletins).
  The engine itself never touches this package - it receives loaded,
  read-only snapshots.

INTERFACES IMPLEMENTED:
  catalog.Provider:         Rubriques, Parameters, Bareme, Grid
  catalog.EmployeeProvider: Employee, Employees

KEY TABLES:
  rubriques:         Pay-line definitions, one JSON document per row
                     (the factory wire form, so admin tooling and the
                     store share one schema)
  fiscal_parameters: Typed columns; each row is one validity window
  bareme_brackets:   One row per bracket, ordered by idx
  salary_grid:       Category/echelon base pay
  employees:         Employee records
  charges_fixes:     Per-employee fixed-amount overrides
  bulletins:         Generated payslips (breakdown as JSON)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, with WAL mode so readers do not
  block each other. In production with PostgreSQL, database-level
  concurrency control handles this instead.

USAGE:
  store, err := sqlite.New("./data/paie.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  snap, err := catalog.Load(ctx, store, "tenant-1")

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - catalog/provider.go: Interface definitions and snapshot loading
  - factory/catalog.go: The JSON wire forms stored in config_json
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/normx-ai/congo-payroll-system-sub002/factory"
	"github.com/normx-ai/congo-payroll-system-sub002/paie"
)

// Store implements the configuration and payslip persistence.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (and migrates) a SQLite store. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rubriques (
		tenant_id TEXT NOT NULL,
		code TEXT NOT NULL,
		config_json TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (tenant_id, code)
	);

	CREATE TABLE IF NOT EXISTS fiscal_parameters (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		code TEXT NOT NULL,
		value TEXT NOT NULL,
		date_effet TEXT NOT NULL,
		date_fin TEXT,
		is_active INTEGER NOT NULL DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_parameters_tenant_code
		ON fiscal_parameters(tenant_id, code);

	CREATE TABLE IF NOT EXISTS bareme_brackets (
		tenant_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		lower TEXT NOT NULL,
		upper TEXT,
		rate TEXT NOT NULL,
		PRIMARY KEY (tenant_id, idx)
	);

	CREATE TABLE IF NOT EXISTS salary_grid (
		tenant_id TEXT NOT NULL,
		categorie TEXT NOT NULL,
		echelon INTEGER NOT NULL,
		base TEXT NOT NULL,
		PRIMARY KEY (tenant_id, categorie, echelon)
	);

	CREATE TABLE IF NOT EXISTS employees (
		tenant_id TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		base_salary TEXT NOT NULL,
		hire_date TEXT,
		categorie TEXT,
		echelon INTEGER,
		PRIMARY KEY (tenant_id, id)
	);

	CREATE TABLE IF NOT EXISTS charges_fixes (
		tenant_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		rubrique_code TEXT NOT NULL,
		montant TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (tenant_id, employee_id, rubrique_code)
	);

	CREATE TABLE IF NOT EXISTS bulletins (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		period TEXT NOT NULL,
		breakdown_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_bulletins_tenant_period
		ON bulletins(tenant_id, period);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Reset drops all rows. Scenario loading only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, table := range []string{
		"rubriques", "fiscal_parameters", "bareme_brackets",
		"salary_grid", "employees", "charges_fixes", "bulletins",
	} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// RUBRIQUES
// =============================================================================

// SaveRubrique upserts one pay-line definition.
func (s *Store) SaveRubrique(ctx context.Context, tenantID paie.TenantID, r paie.Rubrique) error {
	if err := r.Validate(); err != nil {
		return err
	}
	cfg, err := json.Marshal(factory.RubriqueToJSON(r))
	if err != nil {
		return fmt.Errorf("failed to marshal rubrique %s: %w", r.Code, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rubriques (tenant_id, code, config_json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(tenant_id, code) DO UPDATE SET
			config_json = excluded.config_json,
			updated_at = excluded.updated_at`,
		string(tenantID), string(r.Code), string(cfg), time.Now().UTC().Format(time.RFC3339))
	return err
}

// Rubriques returns all pay-line definitions for a tenant.
func (s *Store) Rubriques(ctx context.Context, tenantID paie.TenantID) ([]paie.Rubrique, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT config_json FROM rubriques WHERE tenant_id = ? ORDER BY code`,
		string(tenantID))
	if err != nil {
		return nil, fmt.Errorf("failed to query rubriques: %w", err)
	}
	defer rows.Close()

	var out []paie.Rubrique
	for rows.Next() {
		var cfg string
		if err := rows.Scan(&cfg); err != nil {
			return nil, err
		}
		r, err := factory.ParseRubrique(cfg)
		if err != nil {
			return nil, fmt.Errorf("stored rubrique is invalid: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// FISCAL PARAMETERS
// =============================================================================

// SaveParameter inserts one parameter row. Rows are windows, not
// upserts: a rate change is a new row with a new validity window.
func (s *Store) SaveParameter(ctx context.Context, p paie.FiscalParameter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fin any
	if p.DateFin != nil {
		fin = p.DateFin.String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fiscal_parameters (id, tenant_id, code, value, date_effet, date_fin, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), string(p.TenantID), string(p.Code), p.Value.String(),
		p.DateEffet.String(), fin, boolInt(p.IsActive))
	return err
}

// Parameters returns all parameter rows for a tenant.
func (s *Store) Parameters(ctx context.Context, tenantID paie.TenantID) ([]paie.FiscalParameter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT code, value, date_effet, date_fin, is_active
		FROM fiscal_parameters WHERE tenant_id = ? ORDER BY code, date_effet`,
		string(tenantID))
	if err != nil {
		return nil, fmt.Errorf("failed to query parameters: %w", err)
	}
	defer rows.Close()

	var out []paie.FiscalParameter
	for rows.Next() {
		var (
			code, value, effet string
			fin                sql.NullString
			active             int
		)
		if err := rows.Scan(&code, &value, &effet, &fin, &active); err != nil {
			return nil, err
		}
		p, err := factory.ParameterFromJSON(tenantID, factory.ParameterJSON{
			Code:      code,
			Value:     value,
			DateEffet: effet,
			DateFin:   nullStringPtr(fin),
			IsActive:  active != 0,
		})
		if err != nil {
			return nil, fmt.Errorf("stored parameter is invalid: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// IRPP BAREME
// =============================================================================

// SaveBareme replaces the tenant's bracket table.
func (s *Store) SaveBareme(ctx context.Context, tenantID paie.TenantID, b paie.Bareme) error {
	if err := b.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM bareme_brackets WHERE tenant_id = ?`, string(tenantID)); err != nil {
		return err
	}
	for i, br := range b.Brackets {
		var upper any
		if br.Upper != nil {
			upper = br.Upper.String()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bareme_brackets (tenant_id, idx, lower, upper, rate)
			VALUES (?, ?, ?, ?, ?)`,
			string(tenantID), i, br.Lower.String(), upper, br.Rate.String()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Bareme returns the tenant's bracket table.
func (s *Store) Bareme(ctx context.Context, tenantID paie.TenantID) (paie.Bareme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT lower, upper, rate FROM bareme_brackets
		WHERE tenant_id = ? ORDER BY idx`, string(tenantID))
	if err != nil {
		return paie.Bareme{}, fmt.Errorf("failed to query bareme: %w", err)
	}
	defer rows.Close()

	var bracketRows []factory.BracketJSON
	for rows.Next() {
		var lower, rate string
		var upper sql.NullString
		if err := rows.Scan(&lower, &upper, &rate); err != nil {
			return paie.Bareme{}, err
		}
		bracketRows = append(bracketRows, factory.BracketJSON{
			Lower: lower,
			Upper: nullStringPtr(upper),
			Rate:  rate,
		})
	}
	if err := rows.Err(); err != nil {
		return paie.Bareme{}, err
	}
	return factory.BaremeFromJSON(bracketRows)
}

// =============================================================================
// SALARY GRID
// =============================================================================

// SaveGrid replaces the tenant's salary grid.
func (s *Store) SaveGrid(ctx context.Context, tenantID paie.TenantID, grid *paie.SalaryGrid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM salary_grid WHERE tenant_id = ?`, string(tenantID)); err != nil {
		return err
	}
	if grid != nil {
		for _, e := range grid.Entries {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO salary_grid (tenant_id, categorie, echelon, base)
				VALUES (?, ?, ?, ?)`,
				string(tenantID), e.Categorie, e.Echelon, e.Base.String()); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// Grid returns the tenant's salary grid, nil when none is configured.
func (s *Store) Grid(ctx context.Context, tenantID paie.TenantID) (*paie.SalaryGrid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT categorie, echelon, base FROM salary_grid
		WHERE tenant_id = ? ORDER BY categorie, echelon`, string(tenantID))
	if err != nil {
		return nil, fmt.Errorf("failed to query salary grid: %w", err)
	}
	defer rows.Close()

	var entries []factory.GridEntryJSON
	for rows.Next() {
		var e factory.GridEntryJSON
		if err := rows.Scan(&e.Categorie, &e.Echelon, &e.Base); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return factory.GridFromJSON(entries)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee upserts an employee record, charges fixes included.
// An empty ID gets a generated one.
func (s *Store) SaveEmployee(ctx context.Context, tenantID paie.TenantID, e paie.Employee) (paie.EmployeeID, error) {
	if e.ID == "" {
		e.ID = paie.EmployeeID(uuid.NewString())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var hire any
	if !e.HireDate.IsZero() {
		hire = e.HireDate.String()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO employees (tenant_id, id, name, base_salary, hire_date, categorie, echelon)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, id) DO UPDATE SET
			name = excluded.name,
			base_salary = excluded.base_salary,
			hire_date = excluded.hire_date,
			categorie = excluded.categorie,
			echelon = excluded.echelon`,
		string(tenantID), string(e.ID), e.Name, e.BaseSalary.String(),
		hire, e.Categorie, e.Echelon); err != nil {
		return "", err
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM charges_fixes WHERE tenant_id = ? AND employee_id = ?`,
		string(tenantID), string(e.ID)); err != nil {
		return "", err
	}
	for _, cf := range e.ChargesFixes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO charges_fixes (tenant_id, employee_id, rubrique_code, montant, is_active)
			VALUES (?, ?, ?, ?, ?)`,
			string(tenantID), string(e.ID), string(cf.RubriqueCode),
			cf.Montant.String(), boolInt(cf.IsActive)); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return e.ID, nil
}

// Employee returns one employee record, nil when absent.
func (s *Store) Employee(ctx context.Context, tenantID paie.TenantID, id paie.EmployeeID) (*paie.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, base_salary, hire_date, categorie, echelon
		FROM employees WHERE tenant_id = ? AND id = ?`,
		string(tenantID), string(id))

	e, err := scanEmployee(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	charges, err := s.chargesFixes(ctx, tenantID, e.ID)
	if err != nil {
		return nil, err
	}
	e.ChargesFixes = charges
	return e, nil
}

// Employees returns all employee records for a tenant.
func (s *Store) Employees(ctx context.Context, tenantID paie.TenantID) ([]paie.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, base_salary, hire_date, categorie, echelon
		FROM employees WHERE tenant_id = ? ORDER BY name`, string(tenantID))
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var out []paie.Employee
	for rows.Next() {
		e, err := scanEmployee(rows.Scan)
		if err != nil {
			return nil, err
		}
		charges, err := s.chargesFixes(ctx, tenantID, e.ID)
		if err != nil {
			return nil, err
		}
		e.ChargesFixes = charges
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Tenants returns every tenant that has at least one employee.
func (s *Store) Tenants(ctx context.Context) ([]paie.TenantID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT tenant_id FROM employees ORDER BY tenant_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer rows.Close()

	var out []paie.TenantID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, paie.TenantID(id))
	}
	return out, rows.Err()
}

func scanEmployee(scan func(...any) error) (*paie.Employee, error) {
	var (
		id, name, base string
		hire, cat      sql.NullString
		echelon        sql.NullInt64
	)
	if err := scan(&id, &name, &base, &hire, &cat, &echelon); err != nil {
		return nil, err
	}

	e := &paie.Employee{
		ID:         paie.EmployeeID(id),
		Name:       name,
		BaseSalary: paie.MustDecimal(base),
		Categorie:  cat.String,
		Echelon:    int(echelon.Int64),
	}
	if hire.Valid {
		d, err := paie.ParseDate(hire.String)
		if err != nil {
			return nil, fmt.Errorf("stored hire date is invalid: %w", err)
		}
		e.HireDate = d
	}
	return e, nil
}

func (s *Store) chargesFixes(ctx context.Context, tenantID paie.TenantID, id paie.EmployeeID) ([]paie.EmployeeChargeFixe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rubrique_code, montant, is_active FROM charges_fixes
		WHERE tenant_id = ? AND employee_id = ? ORDER BY rubrique_code`,
		string(tenantID), string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []paie.EmployeeChargeFixe
	for rows.Next() {
		var code, m string
		var active int
		if err := rows.Scan(&code, &m, &active); err != nil {
			return nil, err
		}
		out = append(out, paie.EmployeeChargeFixe{
			RubriqueCode: paie.RubriqueCode(code),
			Montant:      paie.MustDecimal(m),
			IsActive:     active != 0,
		})
	}
	return out, rows.Err()
}

// =============================================================================
// BULLETINS - Stored payslips
// =============================================================================

// Bulletin is a persisted payslip record.
type Bulletin struct {
	ID         string
	TenantID   paie.TenantID
	EmployeeID paie.EmployeeID
	Period     string
	Breakdown  json.RawMessage
	CreatedAt  time.Time
}

// SaveBulletin stores a generated payslip and returns its id.
func (s *Store) SaveBulletin(ctx context.Context, b Bulletin) (string, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bulletins (id, tenant_id, employee_id, period, breakdown_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, string(b.TenantID), string(b.EmployeeID), b.Period,
		string(b.Breakdown), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("failed to save bulletin: %w", err)
	}
	return b.ID, nil
}

// Bulletins returns stored payslips for a tenant, newest first,
// optionally filtered by period.
func (s *Store) Bulletins(ctx context.Context, tenantID paie.TenantID, period string) ([]Bulletin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, employee_id, period, breakdown_json, created_at
		FROM bulletins WHERE tenant_id = ?`
	args := []any{string(tenantID)}
	if period != "" {
		query += ` AND period = ?`
		args = append(args, period)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bulletins: %w", err)
	}
	defer rows.Close()

	var out []Bulletin
	for rows.Next() {
		b := Bulletin{TenantID: tenantID}
		var breakdown, created string
		if err := rows.Scan(&b.ID, &b.EmployeeID, &b.Period, &breakdown, &created); err != nil {
			return nil, err
		}
		b.Breakdown = json.RawMessage(breakdown)
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			b.CreatedAt = t
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
