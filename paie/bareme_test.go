package paie_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/normx-ai/congo-payroll-system-sub002/paie"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func upper(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// monthlyBareme mirrors the Congo monthly IRPP schedule.
func monthlyBareme() paie.Bareme {
	return paie.Bareme{Brackets: []paie.Bracket{
		{Lower: dec("0"), Upper: upper("38667"), Rate: dec("0.01")},
		{Lower: dec("38667"), Upper: upper("83334"), Rate: dec("0.10")},
		{Lower: dec("83334"), Upper: upper("250000"), Rate: dec("0.25")},
		{Lower: dec("250000"), Rate: dec("0.40")},
	}}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestBareme_Validate_Accepts_ContiguousSchedule(t *testing.T) {
	if err := monthlyBareme().Validate(); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}
}

func TestBareme_Validate_Rejects_BrokenSchedules(t *testing.T) {
	cases := []struct {
		name string
		b    paie.Bareme
	}{
		{"empty", paie.Bareme{}},
		{"first lower not zero", paie.Bareme{Brackets: []paie.Bracket{
			{Lower: dec("100"), Rate: dec("0.1")},
		}}},
		{"gap between brackets", paie.Bareme{Brackets: []paie.Bracket{
			{Lower: dec("0"), Upper: upper("100"), Rate: dec("0.1")},
			{Lower: dec("200"), Rate: dec("0.2")},
		}}},
		{"overlap between brackets", paie.Bareme{Brackets: []paie.Bracket{
			{Lower: dec("0"), Upper: upper("100"), Rate: dec("0.1")},
			{Lower: dec("50"), Rate: dec("0.2")},
		}}},
		{"decreasing rates", paie.Bareme{Brackets: []paie.Bracket{
			{Lower: dec("0"), Upper: upper("100"), Rate: dec("0.3")},
			{Lower: dec("100"), Rate: dec("0.2")},
		}}},
		{"negative rate", paie.Bareme{Brackets: []paie.Bracket{
			{Lower: dec("0"), Rate: dec("-0.1")},
		}}},
		{"closed last bracket", paie.Bareme{Brackets: []paie.Bracket{
			{Lower: dec("0"), Upper: upper("100"), Rate: dec("0.1")},
		}}},
	}

	for _, tc := range cases {
		err := tc.b.Validate()
		if !errors.Is(err, paie.ErrInvalidBareme) {
			t.Errorf("%s: expected ErrInvalidBareme, got %v", tc.name, err)
		}
	}
}

// =============================================================================
// COMPUTATION TESTS
// =============================================================================

func TestBareme_ComputeIRPP_MarginalWalk(t *testing.T) {
	b := monthlyBareme()

	cases := []struct {
		taxable string
		want    string
	}{
		{"0", "0"},
		{"-5000", "0"},          // floored to zero before the bareme
		{"38667", "386.67"},     // entire first bracket at 1%
		{"100000", "9019.87"},   // 386.67 + 4466.70 + 16666*0.25
		{"396000", "104919.87"}, // crosses all four brackets
	}
	for _, tc := range cases {
		got, err := b.ComputeIRPP(dec(tc.taxable), dec("1"))
		if err != nil {
			t.Fatalf("ComputeIRPP(%s): %v", tc.taxable, err)
		}
		if !got.Equal(dec(tc.want)) {
			t.Errorf("ComputeIRPP(%s) = %s, want %s", tc.taxable, got, tc.want)
		}
	}
}

func TestBareme_ComputeIRPP_Monotonic(t *testing.T) {
	// GIVEN: Increasing taxable incomes
	// WHEN: Computing the tax for each
	// THEN: The tax never decreases

	b := monthlyBareme()
	prev := decimal.Zero
	for _, taxable := range []string{"0", "10000", "38667", "50000", "83334", "120000", "250000", "400000", "2000000"} {
		got, err := b.ComputeIRPP(dec(taxable), dec("1"))
		if err != nil {
			t.Fatalf("ComputeIRPP(%s): %v", taxable, err)
		}
		if got.LessThan(prev) {
			t.Errorf("tax decreased at %s: %s < %s", taxable, got, prev)
		}
		prev = got
	}
}

func TestBareme_ComputeIRPP_QuotientNeverIncreasesTax(t *testing.T) {
	// GIVEN: A fixed taxable income
	// WHEN: Raising the family quotient
	// THEN: The tax never increases (progressive rates spread over parts)

	b := monthlyBareme()
	taxable := dec("396000")

	prev, err := b.ComputeIRPP(taxable, dec("1"))
	if err != nil {
		t.Fatalf("quotient 1: %v", err)
	}
	for _, q := range []string{"1.5", "2", "2.5", "3", "4"} {
		got, err := b.ComputeIRPP(taxable, dec(q))
		if err != nil {
			t.Fatalf("quotient %s: %v", q, err)
		}
		if got.GreaterThan(prev) {
			t.Errorf("tax increased with quotient %s: %s > %s", q, got, prev)
		}
		prev = got
	}
}

func TestBareme_ComputeIRPP_QuotientSplitsParts(t *testing.T) {
	// Quotient 2 taxes each half separately then doubles.
	b := monthlyBareme()

	half, err := b.ComputeIRPP(dec("50000"), dec("1"))
	if err != nil {
		t.Fatalf("half: %v", err)
	}
	full, err := b.ComputeIRPP(dec("100000"), dec("2"))
	if err != nil {
		t.Fatalf("full: %v", err)
	}
	if !full.Equal(half.Mul(dec("2"))) {
		t.Errorf("quotient 2 on 100000 = %s, want %s", full, half.Mul(dec("2")))
	}
}

func TestBareme_ComputeIRPP_RejectsQuotientBelowOne(t *testing.T) {
	b := monthlyBareme()
	for _, q := range []string{"0", "0.5", "-1"} {
		_, err := b.ComputeIRPP(dec("100000"), dec(q))
		if !errors.Is(err, paie.ErrInvalidQuotient) {
			t.Errorf("quotient %s: expected ErrInvalidQuotient, got %v", q, err)
		}
	}
}
