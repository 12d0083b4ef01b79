package scoring

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window is a half-open [Start, End) scoring period.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Empty reports whether the window can match no instant at all.
func (w Window) Empty() bool {
	return !w.End.After(w.Start)
}

// Span returns a window covering both w and other.
func (w Window) Span(other Window) Window {
	out := w
	if other.Start.Before(out.Start) {
		out.Start = other.Start
	}
	if other.End.After(out.End) {
		out.End = other.End
	}
	return out
}

// Selector identifies one scoring period in either windowing scheme.
type Selector interface {
	Resolve(loc *time.Location) Window
	Prev() Selector
	Label() string
}

type MonthSelector struct {
	Month time.Month `json:"month"`
	Year  int        `json:"year"`
}

func (m MonthSelector) Valid() bool {
	return m.Month >= time.January && m.Month <= time.December
}

// Resolve returns the calendar month in loc. An invalid month yields an
// empty window.
func (m MonthSelector) Resolve(loc *time.Location) Window {
	loc = location(loc)
	if !m.Valid() {
		t := time.Date(m.Year, time.January, 1, 0, 0, 0, 0, loc)
		return Window{Start: t, End: t}
	}
	start := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

func (m MonthSelector) Prev() Selector {
	if m.Month <= time.January {
		return MonthSelector{Month: time.December, Year: m.Year - 1}
	}
	return MonthSelector{Month: m.Month - 1, Year: m.Year}
}

func (m MonthSelector) Label() string {
	if !m.Valid() {
		return fmt.Sprintf("Month %d, %d", int(m.Month), m.Year)
	}
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

type WeekSelector struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

func (s WeekSelector) Valid() bool {
	return s.Week >= 1 && s.Week <= WeeksInYear(s.Year)
}

// Resolve returns the seven days starting at the week's Monday. Week
// numbers outside the year resolve to an empty window at the year's anchor.
func (s WeekSelector) Resolve(loc *time.Location) Window {
	loc = location(loc)
	offset := anchorOffset(s.Year)
	if !s.Valid() {
		t := time.Date(s.Year, time.January, 1+offset, 0, 0, 0, 0, loc)
		return Window{Start: t, End: t}
	}
	day := 1 + offset + (s.Week-1)*7
	return Window{
		Start: time.Date(s.Year, time.January, day, 0, 0, 0, 0, loc),
		End:   time.Date(s.Year, time.January, day+7, 0, 0, 0, 0, loc),
	}
}

func (s WeekSelector) Prev() Selector {
	if s.Week <= 1 {
		return WeekSelector{Year: s.Year - 1, Week: WeeksInYear(s.Year - 1)}
	}
	return WeekSelector{Year: s.Year, Week: s.Week - 1}
}

func (s WeekSelector) Label() string {
	return fmt.Sprintf("Week %d, %d", s.Week, s.Year)
}

// Month returns the calendar month holding the week's first day, which is
// the month a week is filed under for display.
func (s WeekSelector) Month() (time.Month, int) {
	start := s.Resolve(time.UTC).Start
	return start.Month(), start.Year()
}

// anchorOffset is the day offset from Jan 1 to the Monday that starts week 1.
// Years whose Jan 1 falls Sunday..Thursday start on the nearest Monday at or
// around Jan 1; Friday and Saturday push week 1 into the following Monday.
func anchorOffset(year int) int {
	jan1Day := int(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).Weekday())
	if jan1Day <= 4 {
		return 1 - jan1Day
	}
	return 8 - jan1Day
}

func anchor(year int) time.Time {
	return time.Date(year, time.January, 1+anchorOffset(year), 0, 0, 0, 0, time.UTC)
}

// WeeksInYear is the number of weeks between the year's anchor and the
// following year's anchor (52 or 53).
func WeeksInYear(year int) int {
	days := civilDay(anchor(year+1)) - civilDay(anchor(year))
	return int(days / 7)
}

// WeekOf returns the week containing t, interpreted in loc.
func WeekOf(t time.Time, loc *time.Location) WeekSelector {
	t = t.In(location(loc))
	day := civilDay(t)
	year := t.Year()
	if day < civilDay(anchor(year)) {
		year--
	} else if day >= civilDay(anchor(year+1)) {
		year++
	}
	week := int((day-civilDay(anchor(year)))/7) + 1
	return WeekSelector{Year: year, Week: week}
}

// MonthOf returns the month containing t, interpreted in loc.
func MonthOf(t time.Time, loc *time.Location) MonthSelector {
	t = t.In(location(loc))
	return MonthSelector{Month: t.Month(), Year: t.Year()}
}

// After reports whether sel starts after the period containing now.
func After(sel Selector, now time.Time, loc *time.Location) bool {
	var current Selector
	switch sel.(type) {
	case WeekSelector:
		current = WeekOf(now, loc)
	default:
		current = MonthOf(now, loc)
	}
	return sel.Resolve(loc).Start.After(current.Resolve(loc).Start)
}

// ParseMonth accepts English month names, three-letter abbreviations and
// the numbers 1-12.
func ParseMonth(value string) (time.Month, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidMonth)
	}
	if n, err := strconv.Atoi(normalized); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidMonth, n)
		}
		return time.Month(n), nil
	}
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if normalized == name || normalized == name[:3] {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, value)
}

func civilDay(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
