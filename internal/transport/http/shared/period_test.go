package shared

import (
	"net/url"
	"testing"
	"time"

	"kpidash/internal/domain/scoring"
)

var now = time.Date(2024, time.March, 14, 9, 30, 0, 0, time.UTC)

func parse(t *testing.T, raw string) (scoring.Selector, *Validator) {
	t.Helper()
	q, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	v := NewValidator()
	return ParsePeriod(v, q, now, time.UTC), v
}

func TestParsePeriodDefaultsToCurrentMonth(t *testing.T) {
	sel, v := parse(t, "")
	if v.HasIssues() {
		t.Fatalf("unexpected issues %v", v.Issues())
	}
	if sel != (scoring.MonthSelector{Month: time.March, Year: 2024}) {
		t.Fatalf("unexpected selector %#v", sel)
	}
}

func TestParsePeriodMonthByName(t *testing.T) {
	sel, v := parse(t, "period=month&month=feb&year=2023")
	if v.HasIssues() {
		t.Fatalf("unexpected issues %v", v.Issues())
	}
	if sel != (scoring.MonthSelector{Month: time.February, Year: 2023}) {
		t.Fatalf("unexpected selector %#v", sel)
	}
}

func TestParsePeriodWeek(t *testing.T) {
	sel, v := parse(t, "period=week")
	if v.HasIssues() {
		t.Fatalf("unexpected issues %v", v.Issues())
	}
	// March 14 2024 falls in week 11 (March 11-17).
	if sel != (scoring.WeekSelector{Year: 2024, Week: 11}) {
		t.Fatalf("unexpected selector %#v", sel)
	}

	sel, v = parse(t, "period=week&week=53&year=2026")
	if v.HasIssues() || sel != (scoring.WeekSelector{Year: 2026, Week: 53}) {
		t.Fatalf("expected week 53 of 2026, got %#v %v", sel, v.Issues())
	}
}

func TestParsePeriodByDate(t *testing.T) {
	sel, _ := parse(t, "period=week&date=2024-01-03")
	if sel != (scoring.WeekSelector{Year: 2024, Week: 1}) {
		t.Fatalf("unexpected selector %#v", sel)
	}
	sel, _ = parse(t, "date=2023-12-31")
	if sel != (scoring.MonthSelector{Month: time.December, Year: 2023}) {
		t.Fatalf("unexpected selector %#v", sel)
	}
}

func TestParsePeriodRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"period=quarter":                "period",
		"month=smarch":                  "month",
		"period=week&week=53&year=2024": "week",
		"period=week&week=0":            "week",
		"period=week&year=2020":         "week",
		"year=abc":                      "year",
		"date=14/03/2024":               "date",
	}
	for raw, field := range cases {
		sel, v := parse(t, raw)
		if sel != nil || !v.HasIssues() {
			t.Fatalf("%s: expected rejection, got %#v", raw, sel)
		}
		if v.Issues()[0].Field != field {
			t.Fatalf("%s: expected issue on %s, got %v", raw, field, v.Issues())
		}
	}
}

func TestPaginationBounds(t *testing.T) {
	p := Pagination{Limit: 2, Offset: 3}
	start, end := p.Bounds(4)
	if start != 3 || end != 4 || p.Total != 4 {
		t.Fatalf("unexpected bounds %d..%d total %d", start, end, p.Total)
	}
	p = Pagination{Offset: 10}
	start, end = p.Bounds(4)
	if start != 4 || end != 4 {
		t.Fatalf("expected empty page, got %d..%d", start, end)
	}
	p = Pagination{}
	start, end = p.Bounds(4)
	if start != 0 || end != 4 {
		t.Fatalf("expected full range, got %d..%d", start, end)
	}
}

func TestValidatorBoolAndInt(t *testing.T) {
	v := NewValidator()
	if !v.Bool("transitive", "true") || v.Bool("transitive", "") {
		t.Fatalf("unexpected bool parsing")
	}
	if got := v.Int("limit", "", 1, 10, 5); got != 5 {
		t.Fatalf("expected fallback, got %d", got)
	}
	if v.HasIssues() {
		t.Fatalf("unexpected issues %v", v.Issues())
	}
	v.Bool("transitive", "maybe")
	v.Int("limit", "11", 1, 10, 5)
	if len(v.Issues()) != 2 {
		t.Fatalf("expected two issues, got %v", v.Issues())
	}
}
