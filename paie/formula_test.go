package paie_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/normx-ai/congo-payroll-system-sub002/paie"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return paie.MustDecimal(s)
}

func evalFormula(t *testing.T, src string, vars paie.Vars) decimal.Decimal {
	t.Helper()
	expr, err := paie.ParseFormula(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	v, err := expr.Eval(vars)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return v
}

// =============================================================================
// PARSER AND EVALUATION TESTS
// =============================================================================

func TestFormula_Arithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"10 - 4 - 3", "3"},     // left associative
		{"100 / 4 / 5", "5"},    // left associative
		{"-5 + 8", "3"},
		{"2 * -3", "-6"},
		{"0.05 * 450000", "22500"},
	}
	for _, tc := range cases {
		got := evalFormula(t, tc.src, nil)
		if !got.Equal(dec(tc.want)) {
			t.Errorf("%q = %s, want %s", tc.src, got, tc.want)
		}
	}
}

func TestFormula_ComparisonsAndLogic(t *testing.T) {
	// Booleans are decimal 1/0.
	cases := []struct {
		src  string
		want string
	}{
		{"3 > 2", "1"},
		{"2 > 3", "0"},
		{"2 >= 2", "1"},
		{"2 <= 1", "0"},
		{"5 == 5", "1"},
		{"5 != 5", "0"},
		{"1 && 0", "0"},
		{"1 || 0", "1"},
		{"!1", "0"},
		{"!0", "1"},
		{"(3 > 2) && (1 < 2)", "1"},
	}
	for _, tc := range cases {
		got := evalFormula(t, tc.src, nil)
		if !got.Equal(dec(tc.want)) {
			t.Errorf("%q = %s, want %s", tc.src, got, tc.want)
		}
	}
}

func TestFormula_Ternary(t *testing.T) {
	vars := paie.Vars{"anciennete": dec("4"), "baseSalaire": dec("450000")}

	got := evalFormula(t, "anciennete > 2 ? baseSalaire * 0.05 * floor(anciennete / 2) : 0", vars)
	if !got.Equal(dec("45000")) {
		t.Errorf("seniority formula = %s, want 45000", got)
	}

	vars["anciennete"] = dec("2")
	got = evalFormula(t, "anciennete > 2 ? baseSalaire * 0.05 * floor(anciennete / 2) : 0", vars)
	if !got.IsZero() {
		t.Errorf("seniority formula at 2 years = %s, want 0", got)
	}
}

func TestFormula_TernaryIsLazy(t *testing.T) {
	// GIVEN: A ternary whose untaken branch divides by zero
	// WHEN: Evaluating with the condition true
	// THEN: The untaken branch is never evaluated

	got := evalFormula(t, "1 ? 42 : 1 / 0", nil)
	if !got.Equal(dec("42")) {
		t.Errorf("got %s, want 42", got)
	}
}

func TestFormula_ShortCircuit(t *testing.T) {
	got := evalFormula(t, "0 && (1 / 0)", nil)
	if !got.IsZero() {
		t.Errorf("0 && _ = %s, want 0", got)
	}
	got = evalFormula(t, "1 || (1 / 0)", nil)
	if !got.Equal(dec("1")) {
		t.Errorf("1 || _ = %s, want 1", got)
	}
}

func TestFormula_Builtins(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"min(3, 7)", "3"},
		{"max(3, 7)", "7"},
		{"min(5, 2, 9)", "2"},
		{"floor(4.9)", "4"},
		{"floor(-1.5)", "-2"},
		{"abs(-12)", "12"},
		{"min(1500000, 1200000) * 0.04", "48000"},
	}
	for _, tc := range cases {
		got := evalFormula(t, tc.src, nil)
		if !got.Equal(dec(tc.want)) {
			t.Errorf("%q = %s, want %s", tc.src, got, tc.want)
		}
	}
}

func TestFormula_Variables(t *testing.T) {
	vars := paie.Vars{"brutSocial": dec("495000"), "CNSS_PLAFOND": dec("1200000")}

	got := evalFormula(t, "min(brutSocial, CNSS_PLAFOND) * 0.04", vars)
	if !got.Equal(dec("19800")) {
		t.Errorf("got %s, want 19800", got)
	}
}

func TestFormula_UnknownVariable(t *testing.T) {
	expr, err := paie.ParseFormula("inconnu * 2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	_, err = expr.Eval(paie.Vars{})
	if !errors.Is(err, paie.ErrUnknownVariable) {
		t.Errorf("expected ErrUnknownVariable, got %v", err)
	}
}

func TestFormula_DivisionByZero(t *testing.T) {
	expr, err := paie.ParseFormula("baseSalaire / jours")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	_, err = expr.Eval(paie.Vars{"baseSalaire": dec("100"), "jours": dec("0")})
	if !errors.Is(err, paie.ErrDivisionByZero) {
		t.Errorf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestFormula_MalformedInputs(t *testing.T) {
	cases := []string{
		"",
		"1 +",
		"(1 + 2",
		"1 ? 2",           // missing else branch
		"foo(1)",          // unknown function
		"min(1)",          // arity too low
		"floor(1, 2)",     // arity too high
		"1 @ 2",           // bad token
		"salaire brut",    // trailing identifier
	}
	for _, src := range cases {
		_, err := paie.ParseFormula(src)
		if !errors.Is(err, paie.ErrMalformedFormula) {
			t.Errorf("ParseFormula(%q): expected ErrMalformedFormula, got %v", src, err)
		}
	}
}

func TestFormula_DepthBound(t *testing.T) {
	// GIVEN: An expression nested beyond the depth cap
	// WHEN: Parsing it
	// THEN: ErrMalformedFormula, not a stack overflow

	src := strings.Repeat("(", 64) + "1" + strings.Repeat(")", 64)
	_, err := paie.ParseFormula(src)
	if !errors.Is(err, paie.ErrMalformedFormula) {
		t.Errorf("expected ErrMalformedFormula for deep nesting, got %v", err)
	}
}

func TestFormula_ParseOnceEvalMany(t *testing.T) {
	// A compiled expression is reusable across contexts.
	expr, err := paie.ParseFormula("baseSalaire * joursTravailles / 26")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	for _, jours := range []string{"13", "20", "26"} {
		vars := paie.Vars{"baseSalaire": dec("260000"), "joursTravailles": dec(jours)}
		v1, err := expr.Eval(vars)
		if err != nil {
			t.Fatalf("eval: %v", err)
		}
		v2, _ := expr.Eval(vars)
		if !v1.Equal(v2) {
			t.Errorf("re-evaluation changed result: %s vs %s", v1, v2)
		}
	}
}
