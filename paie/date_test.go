package paie_test

import (
	"testing"
	"time"

	"github.com/normx-ai/congo-payroll-system-sub002/paie"
)

func TestParsePeriod_RoundTrip(t *testing.T) {
	p, err := paie.ParsePeriod("2024-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Year != 2024 || p.Month != time.March {
		t.Errorf("got %+v", p)
	}
	if p.String() != "2024-03" {
		t.Errorf("String() = %q, want 2024-03", p.String())
	}

	if _, err := paie.ParsePeriod("03-2024"); err == nil {
		t.Error("expected error for reversed format")
	}
	if _, err := paie.ParsePeriod("2024-03-15"); err == nil {
		t.Error("expected error for a full date")
	}
}

func TestPeriod_DayCount(t *testing.T) {
	cases := []struct {
		y    int
		m    time.Month
		want int
	}{
		{2024, time.February, 29}, // leap year
		{2025, time.February, 28},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}
	for _, tc := range cases {
		p := paie.Period{Year: tc.y, Month: tc.m}
		if got := p.DayCount(); got != tc.want {
			t.Errorf("%s: DayCount = %d, want %d", p, got, tc.want)
		}
	}
}

func TestPeriod_AnchorAndNext(t *testing.T) {
	p := paie.Period{Year: 2024, Month: time.December}
	if p.Anchor() != paie.NewDate(2024, time.December, 1) {
		t.Errorf("Anchor = %v", p.Anchor())
	}
	if p.Next() != (paie.Period{Year: 2025, Month: time.January}) {
		t.Errorf("Next = %v", p.Next())
	}
}

func TestPeriod_Prev(t *testing.T) {
	// GIVEN: January, which must roll back a year
	p := paie.Period{Year: 2024, Month: time.January}
	if p.Prev() != (paie.Period{Year: 2023, Month: time.December}) {
		t.Errorf("Prev = %v", p.Prev())
	}
	// AND: a mid-year month
	p = paie.Period{Year: 2024, Month: time.March}
	if p.Prev() != (paie.Period{Year: 2024, Month: time.February}) {
		t.Errorf("Prev = %v", p.Prev())
	}
}

func TestDate_Ordering(t *testing.T) {
	a := paie.NewDate(2024, time.June, 30)
	b := paie.NewDate(2024, time.July, 1)

	if !a.Before(b) || b.Before(a) {
		t.Error("June 30 must sort before July 1")
	}
	if !a.BeforeOrEqual(a) || !a.AfterOrEqual(a) {
		t.Error("a date must compare equal to itself")
	}
}

func TestDate_YearsUntil(t *testing.T) {
	// Whole anniversaries only: the year ticks on the anniversary day,
	// not on January 1st.
	hire := paie.NewDate(2019, time.June, 15)

	cases := []struct {
		at   paie.Date
		want int
	}{
		{paie.NewDate(2019, time.December, 1), 0},
		{paie.NewDate(2020, time.June, 14), 0},
		{paie.NewDate(2020, time.June, 15), 1},
		{paie.NewDate(2024, time.March, 1), 4},
		{paie.NewDate(2024, time.June, 15), 5},
	}
	for _, tc := range cases {
		if got := hire.YearsUntil(tc.at); got != tc.want {
			t.Errorf("YearsUntil(%v) = %d, want %d", tc.at, got, tc.want)
		}
	}
}
