package scoring

import "time"

type Role string

type KPI struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Weight      int    `json:"weight"`
	Floor       string `json:"floor"`
	Removed     bool   `json:"removed"`
}

type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	Accept    bool      `json:"accept"`
	CreatedAt time.Time `json:"createdAt"`
}

// Assignment is a supervision edge: SupervisorID supervises SubordinateID.
type Assignment struct {
	SupervisorID  string `json:"supervisorId"`
	SubordinateID string `json:"subordinateId"`
}

type ReviewEvent struct {
	ID         string    `json:"id"`
	SubjectID  string    `json:"subjectId"`
	KPIID      string    `json:"kpiId"`
	ReviewerID string    `json:"reviewerId"`
	Met        bool      `json:"met"`
	Notes      string    `json:"notes,omitempty"`
	Plan       string    `json:"plan,omitempty"`
	Date       time.Time `json:"date"`
}

// PeriodScore is derived per request and never persisted.
// SkippedReviews counts events in the window whose KPI could not be resolved.
type PeriodScore struct {
	SubjectID        string    `json:"subjectId"`
	WindowStart      time.Time `json:"windowStart"`
	WindowEnd        time.Time `json:"windowEnd"`
	Score            int       `json:"score"`
	ReviewedKPICount int       `json:"reviewedKpiCount"`
	TotalKPICount    int       `json:"totalKpiCount"`
	SkippedReviews   int       `json:"skippedReviews"`
}

type Reports struct {
	Clinicians   []string `json:"clinicians"`
	SubDirectors []string `json:"subDirectors"`
}

func (r Reports) All() []string {
	out := make([]string, 0, len(r.Clinicians)+len(r.SubDirectors))
	out = append(out, r.Clinicians...)
	return append(out, r.SubDirectors...)
}

func (r Reports) Len() int {
	return len(r.Clinicians) + len(r.SubDirectors)
}

type TeamMember struct {
	ID    string      `json:"id"`
	Role  Role        `json:"role"`
	Score PeriodScore `json:"score"`
}

type Team struct {
	DirectorID string       `json:"directorId"`
	Members    []TeamMember `json:"members"`
	Score      int          `json:"score"`
}

type Scored struct {
	ID    string `json:"id"`
	Score int    `json:"score"`
}

type Cohort struct {
	TopPerformers  []string `json:"topPerformers"`
	NeedsAttention []string `json:"needsAttention"`
}

type Direction string

type Trend struct {
	Direction Direction `json:"direction"`
	Magnitude int       `json:"magnitude"`
}
