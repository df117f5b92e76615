package paie_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normx-ai/congo-payroll-system-sub002/paie"
)

func batchInputs(n int) []paie.ContextInput {
	inputs := make([]paie.ContextInput, n)
	for i := range inputs {
		inputs[i] = paie.ContextInput{
			TenantID: "t1",
			Period:   paie.Period{Year: 2024, Month: time.March},
			Employee: &paie.Employee{
				ID:         paie.EmployeeID(string(rune('a' + i))),
				Name:       "Employe",
				BaseSalary: dec("300000"),
			},
			JoursTravailles: 26,
		}
	}
	return inputs
}

func TestBatch_ResultsInInputOrder(t *testing.T) {
	engine := newCongoEngine(t)
	inputs := batchInputs(12)

	results := engine.CalculateBatch(context.Background(), inputs, paie.Strict, 4)
	require.Len(t, results, len(inputs))

	for i, res := range results {
		require.NoError(t, res.Err, "input %d", i)
		assert.Equal(t, inputs[i].Employee.ID, res.EmployeeID)
		assert.Equal(t, paie.StateFinalized, res.Calculation.State)
	}

	// Identical inputs yield identical nets.
	for i := 1; i < len(results); i++ {
		assert.True(t, results[i].Calculation.NetAPayer.Equal(results[0].Calculation.NetAPayer))
	}
}

func TestBatch_OneFailureDoesNotStopOthers(t *testing.T) {
	// GIVEN: A batch where one input is invalid
	// WHEN: Running the batch
	// THEN: Only that result carries an error

	engine := newCongoEngine(t)
	inputs := batchInputs(5)
	inputs[2].JoursTravailles = 99 // out of range

	results := engine.CalculateBatch(context.Background(), inputs, paie.Strict, 2)
	require.Len(t, results, 5)

	for i, res := range results {
		if i == 2 {
			require.Error(t, res.Err)
			assert.True(t, paie.IsInputError(res.Err))
			continue
		}
		require.NoError(t, res.Err, "input %d", i)
	}
}

func TestBatch_CancelledContext_MarksRemaining(t *testing.T) {
	engine := newCongoEngine(t)
	inputs := batchInputs(8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // already cancelled: every input reports ctx.Err()

	results := engine.CalculateBatch(ctx, inputs, paie.Strict, 2)
	require.Len(t, results, 8)
	for i, res := range results {
		assert.ErrorIs(t, res.Err, context.Canceled, "input %d", i)
	}
}

func TestBatch_ZeroWorkersDefaults(t *testing.T) {
	engine := newCongoEngine(t)
	inputs := batchInputs(3)

	results := engine.CalculateBatch(context.Background(), inputs, paie.Strict, 0)
	require.Len(t, results, 3)
	for i, res := range results {
		require.NoError(t, res.Err, "input %d", i)
	}
}
