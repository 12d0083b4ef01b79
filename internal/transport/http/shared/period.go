package shared

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"kpidash/internal/domain/scoring"
)

const (
	periodMonth = "month"
	periodWeek  = "week"
)

// ParsePeriod reads period, month, week, year and date from q. Missing
// parts default to the period containing now. A date selects the period
// containing it. Problems are added to v and a nil selector is returned.
func ParsePeriod(v *Validator, q url.Values, now time.Time, loc *time.Location) scoring.Selector {
	kind := strings.ToLower(strings.TrimSpace(q.Get("period")))
	if kind == "" {
		kind = periodMonth
	}
	v.Enum("period", kind, []string{periodMonth, periodWeek}, "must be month or week")
	if v.HasIssues() {
		return nil
	}

	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		parsed, ok := v.Date("date", raw, loc)
		if !ok {
			return nil
		}
		if kind == periodWeek {
			return scoring.WeekOf(parsed, loc)
		}
		return scoring.MonthOf(parsed, loc)
	}

	if kind == periodWeek {
		current := scoring.WeekOf(now, loc)
		year := v.Int("year", q.Get("year"), 1970, 9999, current.Year)
		if v.HasIssues() {
			return nil
		}
		fallback := current.Week
		if year != current.Year {
			fallback = 0
		}
		weeks := scoring.WeeksInYear(year)
		week := v.Int("week", q.Get("week"), 1, weeks, fallback)
		if week == 0 && !v.HasIssues() {
			v.Add("week", "is required when year is not the current year")
		}
		if v.HasIssues() {
			return nil
		}
		return scoring.WeekSelector{Year: year, Week: week}
	}

	current := scoring.MonthOf(now, loc)
	year := v.Int("year", q.Get("year"), 1970, 9999, current.Year)
	month := current.Month
	if raw := strings.TrimSpace(q.Get("month")); raw != "" {
		parsed, err := scoring.ParseMonth(raw)
		if err != nil {
			v.Add("month", fmt.Sprintf("unknown month %q", raw))
		} else {
			month = parsed
		}
	}
	if v.HasIssues() {
		return nil
	}
	return scoring.MonthSelector{Month: month, Year: year}
}
