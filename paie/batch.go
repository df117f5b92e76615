/*
batch.go - Parallel payslip generation for a period

PURPOSE:
  Batch generation (all employees of a tenant for one month) runs each
  calculation on an isolated context against the shared read-only
  snapshot, so calculations parallelize freely. The worker pool here is
  plain goroutines over a channel; cancellation is the caller's
  context. One employee failing never stops the others - each result
  carries its own error.
*/
package paie

import (
	"context"
	"runtime"
	"sync"
)

// BatchResult is the outcome for one employee in a batch.
type BatchResult struct {
	EmployeeID  EmployeeID
	Calculation *Calculation
	Err         error
}

// CalculateBatch computes payslips for all inputs using up to workers
// goroutines (0 = GOMAXPROCS). Results are returned in input order.
// A cancelled context marks the remaining inputs with ctx.Err().
func (e *Engine) CalculateBatch(ctx context.Context, inputs []ContextInput, mode EvalMode, workers int) []BatchResult {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	results := make([]BatchResult, len(inputs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				in := inputs[i]
				var id EmployeeID
				if in.Employee != nil {
					id = in.Employee.ID
				}
				if err := ctx.Err(); err != nil {
					results[i] = BatchResult{EmployeeID: id, Err: err}
					continue
				}
				calc, err := e.Calculate(in, mode)
				results[i] = BatchResult{EmployeeID: id, Calculation: calc, Err: err}
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
