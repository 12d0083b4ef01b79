package performance

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"kpidash/internal/domain/scoring"
	"kpidash/internal/platform/metrics"
)

type Options struct {
	Location               *time.Location
	WeeklyFetchConcurrency int
	TrendPeriods           int
	Metrics                *metrics.Collector
}

type Service struct {
	store        StoreAPI
	loc          *time.Location
	concurrency  int
	trendPeriods int
	metrics      *metrics.Collector
}

func NewService(store StoreAPI, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.WeeklyFetchConcurrency <= 0 {
		opts.WeeklyFetchConcurrency = 1
	}
	if opts.TrendPeriods < 2 {
		opts.TrendPeriods = 2
	}
	return &Service{
		store:        store,
		loc:          opts.Location,
		concurrency:  opts.WeeklyFetchConcurrency,
		trendPeriods: opts.TrendPeriods,
		metrics:      opts.Metrics,
	}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// snapshotView is one fully loaded scoring context plus the trend windows it
// covers, oldest first; the last window is the requested one.
type snapshotView struct {
	snap    *scoring.Snapshot
	windows []scoring.Window
}

func (v snapshotView) current() scoring.Window {
	return v.windows[len(v.windows)-1]
}

// subjectPicker validates the request against the base snapshot and names
// the subjects whose reviews a weekly load must fetch.
type subjectPicker func(base *scoring.Snapshot) ([]string, error)

// loadSnapshot reads profiles, KPIs and assignments, then the reviews for
// the selected period and its trend predecessors. Monthly periods use one
// range query. Weekly periods fetch per subject concurrently, and every
// fetch must succeed before any score is computed.
func (s *Service) loadSnapshot(ctx context.Context, sel scoring.Selector, pick subjectPicker) (snapshotView, error) {
	var (
		profiles    []scoring.Profile
		kpis        []scoring.KPI
		assignments []scoring.Assignment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = s.store.ListProfiles(gctx)
		if err != nil {
			return fmt.Errorf("list profiles: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		kpis, err = s.store.ListKPIs(gctx)
		if err != nil {
			return fmt.Errorf("list kpis: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		assignments, err = s.store.ListAssignments(gctx)
		if err != nil {
			return fmt.Errorf("list assignments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return snapshotView{}, err
	}

	in := scoring.Input{Profiles: profiles, KPIs: kpis, Assignments: assignments}
	base, err := scoring.NewSnapshot(in)
	if err != nil {
		return snapshotView{}, err
	}

	subjects, err := pick(base)
	if err != nil {
		return snapshotView{}, err
	}

	windows := scoring.Windows(sel, s.trendPeriods, s.loc)
	span := windows[0].Span(windows[len(windows)-1])

	switch sel.(type) {
	case scoring.WeekSelector:
		in.Reviews, err = s.fetchWeekly(ctx, subjects, span)
	default:
		in.Reviews, err = s.store.ListReviews(ctx, span.Start, span.End)
		if err != nil {
			err = fmt.Errorf("list reviews: %w", err)
		}
	}
	if err != nil {
		return snapshotView{}, err
	}

	snap, err := scoring.NewSnapshot(in)
	if err != nil {
		return snapshotView{}, err
	}
	return snapshotView{snap: snap, windows: windows}, nil
}

func (s *Service) fetchWeekly(ctx context.Context, subjects []string, span scoring.Window) ([]scoring.ReviewEvent, error) {
	results := make([][]scoring.ReviewEvent, len(subjects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range subjects {
		g.Go(func() error {
			reviews, err := s.store.ListSubjectReviews(gctx, id, span.Start, span.End)
			s.metrics.WeeklyFetch(err)
			if err != nil {
				return fmt.Errorf("list reviews for %s: %w", id, err)
			}
			results[i] = reviews
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []scoring.ReviewEvent
	for _, reviews := range results {
		out = append(out, reviews...)
	}
	return out, nil
}

// teamOf lists root and every subordinate reachable from it, at most depth
// levels down (depth < 0 means unbounded). Each id appears once.
func teamOf(snap *scoring.Snapshot, root string, depth int) []string {
	out := []string{root}
	seen := map[string]struct{}{root: {}}
	level := []string{root}
	for d := 0; len(level) > 0 && (depth < 0 || d < depth); d++ {
		var next []string
		for _, id := range level {
			for _, sub := range snap.DirectReports(id).All() {
				if _, ok := seen[sub]; ok {
					continue
				}
				seen[sub] = struct{}{}
				out = append(out, sub)
				next = append(next, sub)
			}
		}
		level = next
	}
	return out
}

func periodOf(sel scoring.Selector) string {
	if _, ok := sel.(scoring.WeekSelector); ok {
		return PeriodWeek
	}
	return PeriodMonth
}

func monthLabel(sel scoring.Selector) string {
	if week, ok := sel.(scoring.WeekSelector); ok {
		month, year := week.Month()
		return scoring.MonthSelector{Month: month, Year: year}.Label()
	}
	return sel.Label()
}
