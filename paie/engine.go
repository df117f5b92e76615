/*
engine.go - The single shared entry point for both call paths

PURPOSE:
  Live preview and authoritative generation MUST produce bit-identical
  results, so both route through this Engine: same context builder,
  same formula evaluator, same parameter resolver, no
  environment-specific branching anywhere below this point. Any
  divergence between the two paths is a defect.

CONCURRENCY:
  An Engine wraps an immutable Snapshot and holds no other state, so
  one Engine serves any number of concurrent calculations. Each call
  builds its own Context and working state.
*/
package paie

// Engine computes payslips against one tenant configuration snapshot.
type Engine struct {
	snap *Snapshot
}

// NewEngine binds an engine to a validated snapshot.
func NewEngine(snap *Snapshot) *Engine {
	return &Engine{snap: snap}
}

// Snapshot returns the configuration the engine computes against.
func (e *Engine) Snapshot() *Snapshot { return e.snap }

// Calculate runs the full payslip calculation for one employee and
// period under the given error policy.
func (e *Engine) Calculate(in ContextInput, mode EvalMode) (*Calculation, error) {
	if mode == "" {
		mode = Strict
	}
	ctx, err := NewContext(in, e.snap.Grid)
	if err != nil {
		return nil, err
	}
	return calculate(ctx, e.snap, mode)
}

// EvaluateRubrique computes a single line against the supplied context,
// seeding the running bases from the request (BrutSocial, BrutFiscal).
// Inside a full calculation the same evaluation runs with the
// accumulated bases, so preview and generation agree whenever the
// caller supplies the bases the full run would have reached.
func (e *Engine) EvaluateRubrique(in ContextInput, code RubriqueCode) (*Ligne, error) {
	ctx, err := NewContext(in, e.snap.Grid)
	if err != nil {
		return nil, err
	}

	r, err := e.snap.Rubrique(code)
	if err != nil {
		return nil, err
	}

	st := newRunState(ctx, e.snap)
	ligne, err := st.evalRubrique(r)
	if err != nil {
		return nil, &CalculationError{
			TenantID:     ctx.TenantID,
			EmployeeID:   ctx.Employee.ID,
			Period:       ctx.Period,
			RubriqueCode: code,
			State:        StateBasesAccumulating,
			Err:          err,
		}
	}
	return &ligne, nil
}
