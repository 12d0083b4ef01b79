package scoring

import (
	"fmt"
	"time"
)

// Input is the raw data set a Snapshot is built from.
type Input struct {
	Profiles    []Profile
	KPIs        []KPI
	Assignments []Assignment
	Reviews     []ReviewEvent
}

// Snapshot is an immutable scoring context. Every score derived from the
// same Snapshot and window is identical no matter how often or from where it
// is requested, so dashboard renders and exports agree.
type Snapshot struct {
	profiles    []Profile
	profileByID map[string]Profile
	kpis        kpiIndex
	reports     map[string][]string
	reviews     map[string][]ReviewEvent
}

// NewSnapshot validates the input shape and indexes it. Data anomalies such
// as cycles, dangling KPI references or out-of-range weights are accepted;
// records missing an identity are not.
func NewSnapshot(in Input) (*Snapshot, error) {
	s := &Snapshot{
		profiles:    make([]Profile, 0, len(in.Profiles)),
		profileByID: make(map[string]Profile, len(in.Profiles)),
		reports:     map[string][]string{},
		reviews:     map[string][]ReviewEvent{},
	}

	for i, p := range in.Profiles {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: profile %d has no id", ErrInvalidInput, i)
		}
		if !p.Role.Valid() {
			return nil, fmt.Errorf("%w: profile %s has unknown role %q", ErrInvalidInput, p.ID, p.Role)
		}
		if _, dup := s.profileByID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate profile %s", ErrInvalidInput, p.ID)
		}
		s.profileByID[p.ID] = p
		s.profiles = append(s.profiles, p)
	}

	seenKPI := make(map[string]struct{}, len(in.KPIs))
	for i, kpi := range in.KPIs {
		if kpi.ID == "" {
			return nil, fmt.Errorf("%w: kpi %d has no id", ErrInvalidInput, i)
		}
		if _, dup := seenKPI[kpi.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate kpi %s", ErrInvalidInput, kpi.ID)
		}
		seenKPI[kpi.ID] = struct{}{}
	}
	s.kpis = indexKPIs(in.KPIs)

	edges := map[Assignment]struct{}{}
	for i, a := range in.Assignments {
		if a.SupervisorID == "" || a.SubordinateID == "" {
			return nil, fmt.Errorf("%w: assignment %d is missing an endpoint", ErrInvalidInput, i)
		}
		if _, dup := edges[a]; dup {
			continue
		}
		edges[a] = struct{}{}
		s.reports[a.SupervisorID] = append(s.reports[a.SupervisorID], a.SubordinateID)
	}

	for i, r := range in.Reviews {
		if r.SubjectID == "" {
			return nil, fmt.Errorf("%w: review %d has no subject", ErrInvalidInput, i)
		}
		if r.Date.IsZero() {
			return nil, fmt.Errorf("%w: review %d has no date", ErrInvalidInput, i)
		}
		s.reviews[r.SubjectID] = append(s.reviews[r.SubjectID], r)
	}
	return s, nil
}

func (s *Snapshot) Profile(id string) (Profile, bool) {
	p, ok := s.profileByID[id]
	return p, ok
}

// Profiles returns the profiles in input order.
func (s *Snapshot) Profiles() []Profile {
	out := make([]Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// KPI resolves an active KPI. Removed, unknown and out-of-range ids report false.
func (s *Snapshot) KPI(id string) (KPI, bool) {
	kpi, ok := s.kpis.byID[id]
	return kpi, ok
}

// Reviews returns every review of subjectID in input order.
func (s *Snapshot) Reviews(subjectID string) []ReviewEvent {
	out := make([]ReviewEvent, len(s.reviews[subjectID]))
	copy(out, s.reviews[subjectID])
	return out
}

func (s *Snapshot) Score(subjectID string, window Window) PeriodScore {
	return scoreSubject(subjectID, window, s.reviews[subjectID], s.kpis)
}

// Series scores a subject over consecutive windows, oldest first.
func (s *Snapshot) Series(subjectID string, windows []Window) []int {
	out := make([]int, 0, len(windows))
	for _, w := range windows {
		out = append(out, s.Score(subjectID, w).Score)
	}
	return out
}

func (s *Snapshot) DirectReports(directorID string) Reports {
	roles := make(map[string]Role, len(s.reports[directorID]))
	for _, id := range s.reports[directorID] {
		roles[id] = s.profileByID[id].Role
	}
	return partitionReports(s.reports[directorID], roles)
}

// WithoutUnapproved returns a view of s in which supervision edges to
// unknown or unapproved subordinates are dropped. s itself is unchanged and
// keeps answering DirectReports with every assigned subordinate.
func (s *Snapshot) WithoutUnapproved() *Snapshot {
	out := *s
	out.reports = make(map[string][]string, len(s.reports))
	for supervisor, subordinates := range s.reports {
		for _, id := range subordinates {
			if p, ok := s.profileByID[id]; ok && p.Accept {
				out.reports[supervisor] = append(out.reports[supervisor], id)
			}
		}
	}
	return &out
}

// Windows resolves sel and its n-1 predecessors, oldest first.
func Windows(sel Selector, n int, loc *time.Location) []Window {
	if n < 1 {
		return nil
	}
	out := make([]Window, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = sel.Resolve(loc)
		sel = sel.Prev()
	}
	return out
}
