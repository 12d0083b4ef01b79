package performance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"kpidash/internal/domain/scoring"
)

// Dashboard scores an approved director's team for the selected period.
// Team scores and cohorts consider approved direct reports only; unapproved
// reports are listed under Pending and never scored.
func (s *Service) Dashboard(ctx context.Context, req DashboardRequest) (Dashboard, error) {
	started := time.Now()
	view, err := s.loadSnapshot(ctx, req.Selector, s.directorPicker(req.DirectorID, req.Transitive))
	if err != nil {
		return Dashboard{}, err
	}

	director, _ := view.snap.Profile(req.DirectorID)
	scored := view.snap.WithoutUnapproved()
	current := view.current()

	approved := map[string]struct{}{}
	var members []MemberRow
	for _, id := range scored.DirectReports(req.DirectorID).All() {
		approved[id] = struct{}{}
		members = append(members, teamRow(scored, id, view.windows, req.Transitive))
	}
	sortRows(members)

	pending := []scoring.Profile{}
	for _, id := range view.snap.DirectReports(req.DirectorID).All() {
		if _, ok := approved[id]; ok {
			continue
		}
		p, ok := view.snap.Profile(id)
		if !ok {
			p = scoring.Profile{ID: id}
		}
		pending = append(pending, p)
	}

	teamSeries := make([]int, 0, len(view.windows))
	for _, w := range view.windows {
		teamSeries = append(teamSeries, teamScore(scored, req.DirectorID, w, req.Transitive))
	}

	dash := Dashboard{
		Director:   director,
		Period:     periodOf(req.Selector),
		Label:      req.Selector.Label(),
		MonthLabel: monthLabel(req.Selector),
		Window:     current,
		Transitive: req.Transitive,
		TeamScore:  teamSeries[len(teamSeries)-1],
		TeamSeries: teamSeries,
		TeamTrend:  scoring.ClassifyTrend(teamSeries),
		Self:       teamRow(scored, req.DirectorID, view.windows, req.Transitive),
		Members:    members,
		Pending:    pending,
		Cohort:     scoring.Classify(scoredRows(members)),
	}
	if dash.Members == nil {
		dash.Members = []MemberRow{}
	}
	s.metrics.ObserveDashboard(dash.Period, time.Since(started))
	return dash, nil
}

// SubjectScore scores one subject for the selected period and its trend.
func (s *Service) SubjectScore(ctx context.Context, sel scoring.Selector, subjectID string) (SubjectReport, error) {
	view, err := s.loadSnapshot(ctx, sel, func(base *scoring.Snapshot) ([]string, error) {
		subject, ok := base.Profile(subjectID)
		if !ok {
			return nil, ErrSubjectNotFound
		}
		if !subject.Accept {
			return nil, fmt.Errorf("%w: %s", ErrNotApproved, subjectID)
		}
		return []string{subjectID}, nil
	})
	if err != nil {
		return SubjectReport{}, err
	}
	current := view.current()
	return SubjectReport{
		Period: periodOf(sel),
		Label:  sel.Label(),
		Window: current,
		Row:    memberRow(view.snap, subjectID, view.windows),
		KPIs:   kpiResults(view.snap, subjectID, current),
	}, nil
}

// kpiResults groups a subject's reviews in w by KPI, ordered by title then
// id. Reviews of removed or unknown KPIs are left out, as in scoring.
func kpiResults(snap *scoring.Snapshot, subjectID string, w scoring.Window) []KPIResult {
	index := map[string]int{}
	out := []KPIResult{}
	for _, review := range snap.Reviews(subjectID) {
		if !w.Contains(review.Date) {
			continue
		}
		kpi, ok := snap.KPI(review.KPIID)
		if !ok {
			continue
		}
		i, seen := index[kpi.ID]
		if !seen {
			i = len(out)
			index[kpi.ID] = i
			out = append(out, KPIResult{KPIID: kpi.ID, Title: kpi.Title, Floor: kpi.Floor, Weight: kpi.Weight})
		}
		out[i].Reviews++
		if review.Met {
			out[i].Met++
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Title == out[j].Title {
			return out[i].KPIID < out[j].KPIID
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// TeamScore returns a director's team score with its per-member breakdown.
func (s *Service) TeamScore(ctx context.Context, sel scoring.Selector, directorID string, transitive bool) (TeamReport, error) {
	view, err := s.loadSnapshot(ctx, sel, s.directorPicker(directorID, transitive))
	if err != nil {
		return TeamReport{}, err
	}
	scored := view.snap.WithoutUnapproved()
	current := view.current()
	team := scored.TeamBreakdown(directorID, current)
	return TeamReport{
		Period:     periodOf(sel),
		Label:      sel.Label(),
		Window:     current,
		Transitive: transitive,
		Score:      teamScore(scored, directorID, current, transitive),
		Team:       team,
	}, nil
}

// Organization scores every approved clinician and director.
func (s *Service) Organization(ctx context.Context, sel scoring.Selector) (Organization, error) {
	started := time.Now()
	view, err := s.loadSnapshot(ctx, sel, func(base *scoring.Snapshot) ([]string, error) {
		return orgSubjects(base), nil
	})
	if err != nil {
		return Organization{}, err
	}

	scored := view.snap.WithoutUnapproved()
	rows := []MemberRow{}
	for _, id := range orgSubjects(scored) {
		rows = append(rows, teamRow(scored, id, view.windows, false))
	}
	sortRows(rows)

	s.metrics.ObserveDashboard(periodOf(sel), time.Since(started))
	return Organization{
		Period:     periodOf(sel),
		Label:      sel.Label(),
		MonthLabel: monthLabel(sel),
		Window:     view.current(),
		Rows:       rows,
		Cohort:     scoring.Classify(scoredRows(rows)),
	}, nil
}

func (s *Service) directorPicker(directorID string, transitive bool) subjectPicker {
	return func(base *scoring.Snapshot) ([]string, error) {
		director, ok := base.Profile(directorID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrDirectorNotFound, directorID)
		}
		if director.Role != scoring.RoleDirector {
			return nil, fmt.Errorf("%w: %s", ErrNotDirector, directorID)
		}
		if !director.Accept {
			return nil, fmt.Errorf("%w: %s", ErrNotApproved, directorID)
		}
		// Sub-director rows carry their own team score, so two levels are
		// needed even for the canonical one-level aggregate.
		depth := 2
		if transitive {
			depth = -1
		}
		return teamOf(base.WithoutUnapproved(), directorID, depth), nil
	}
}

func orgSubjects(snap *scoring.Snapshot) []string {
	var ids []string
	for _, p := range snap.Profiles() {
		if !p.Accept {
			continue
		}
		if p.Role == scoring.RoleClinician || p.Role == scoring.RoleDirector {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func memberRow(snap *scoring.Snapshot, id string, windows []scoring.Window) MemberRow {
	p, ok := snap.Profile(id)
	if !ok {
		p = scoring.Profile{ID: id}
	}
	series := snap.Series(id, windows)
	return MemberRow{
		Profile: p,
		Score:   snap.Score(id, windows[len(windows)-1]),
		Series:  series,
		Trend:   scoring.ClassifyTrend(series),
	}
}

// teamRow is memberRow plus the team score for directors.
func teamRow(snap *scoring.Snapshot, id string, windows []scoring.Window, transitive bool) MemberRow {
	row := memberRow(snap, id, windows)
	if row.Profile.Role == scoring.RoleDirector {
		score := teamScore(snap, id, windows[len(windows)-1], transitive)
		row.TeamScore = &score
	}
	return row
}

func teamScore(snap *scoring.Snapshot, directorID string, w scoring.Window, transitive bool) int {
	if transitive {
		return snap.TeamScoreTransitive(directorID, w, nil)
	}
	return snap.TeamScore(directorID, w)
}

func sortRows(rows []MemberRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Profile.Name == rows[j].Profile.Name {
			return rows[i].Profile.ID < rows[j].Profile.ID
		}
		return rows[i].Profile.Name < rows[j].Profile.Name
	})
}

func scoredRows(rows []MemberRow) []scoring.Scored {
	out := make([]scoring.Scored, 0, len(rows))
	for _, row := range rows {
		out = append(out, scoring.Scored{ID: row.Profile.ID, Score: row.Score.Score})
	}
	return out
}

// Directors lists approved directors by name.
func (s *Service) Directors(ctx context.Context) ([]scoring.Profile, error) {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	var out []scoring.Profile
	for _, p := range profiles {
		if p.Accept && p.Role == scoring.RoleDirector {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
