package paie

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Date-only, tenant-calendar day
// =============================================================================

// Date is a calendar day with no time-of-day and no zone. Fiscal
// parameter validity windows, hire dates and periods only ever compare
// Dates, so the local-midnight vs UTC-midnight class of bug cannot
// occur: instants are truncated to their calendar day at the boundary
// and never compared again.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf truncates a time.Time to its calendar day as rendered by the
// value itself (the caller chooses the zone before handing it in).
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Comparison
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}
func (d Date) After(o Date) bool         { return o.Before(d) }
func (d Date) Equal(o Date) bool         { return d == o }
func (d Date) BeforeOrEqual(o Date) bool { return !o.Before(d) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.Before(o) }

// YearsUntil returns the number of whole years elapsed between d and
// later (the anniversary count). Hired 2022-03-01, asked for 2024-03-01
// gives exactly 2; 2024-02-29 gives 1.
func (d Date) YearsUntil(later Date) int {
	years := later.Year - d.Year
	anniversary := Date{Year: d.Year + years, Month: d.Month, Day: d.Day}
	if later.Before(anniversary) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// =============================================================================
// PERIOD - One payroll month
// =============================================================================

// Period is a payroll month. Its canonical Date representation, used
// for every fiscal-parameter window comparison, is the first day of the
// month (see Anchor). The resolver is the single authority for this
// normalization.
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q (use YYYY-MM): %w", s, err)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

func (p Period) IsZero() bool { return p == Period{} }

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Anchor returns the canonical Date for the period: the first day of
// the month.
func (p Period) Anchor() Date {
	return Date{Year: p.Year, Month: p.Month, Day: 1}
}

// End returns the last day of the month.
func (p Period) End() Date {
	return Date{Year: p.Year, Month: p.Month, Day: p.DayCount()}
}

// DayCount returns the number of calendar days in the month.
func (p Period) DayCount() int {
	first := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}

// Next returns the following month.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Prev returns the preceding month.
func (p Period) Prev() Period {
	if p.Month == time.January {
		return Period{Year: p.Year - 1, Month: time.December}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}
