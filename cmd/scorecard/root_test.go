package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"kpidash/internal/domain/scoring"
)

func TestSelectorDefaultsAndFlags(t *testing.T) {
	now := time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		opts options
		want scoring.Selector
	}{
		{"default", options{}, scoring.MonthSelector{Month: time.March, Year: 2024}},
		{"month", options{month: "jan", year: 2023}, scoring.MonthSelector{Month: time.January, Year: 2023}},
		{"week", options{week: 9}, scoring.WeekSelector{Year: 2024, Week: 9}},
		{"week and year", options{week: 53, year: 2026}, scoring.WeekSelector{Year: 2026, Week: 53}},
	}
	for _, tc := range cases {
		got, err := tc.opts.selector(now, time.UTC)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %#v, got %#v", tc.name, tc.want, got)
		}
	}
}

func TestSelectorRejectsBadFlags(t *testing.T) {
	now := time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)
	for _, opts := range []options{{week: 53, year: 2024}, {month: "smarch"}, {week: -1}} {
		if _, err := opts.selector(now, time.UTC); err == nil {
			t.Fatalf("expected error for %+v", opts)
		}
	}
}

func TestRootRequiresDirector(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"dashboard"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "director") {
		t.Fatalf("expected missing director error, got %v", err)
	}
}

func TestRootRejectsMonthWithWeek(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"dashboard", "--director", "d", "--month", "march", "--week", "3"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected mutually exclusive flag error")
	}
}
