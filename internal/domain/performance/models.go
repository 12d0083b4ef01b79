package performance

import "kpidash/internal/domain/scoring"

// MemberRow is one scored subject as the dashboard and the PDF render it.
// TeamScore is set for directors only.
type MemberRow struct {
	Profile   scoring.Profile     `json:"profile"`
	Score     scoring.PeriodScore `json:"score"`
	Series    []int               `json:"series"`
	Trend     scoring.Trend       `json:"trend"`
	TeamScore *int                `json:"teamScore,omitempty"`
}

type Dashboard struct {
	Director   scoring.Profile   `json:"director"`
	Period     string            `json:"period"`
	Label      string            `json:"label"`
	MonthLabel string            `json:"monthLabel"`
	Window     scoring.Window    `json:"window"`
	Transitive bool              `json:"transitive"`
	TeamScore  int               `json:"teamScore"`
	TeamSeries []int             `json:"teamSeries"`
	TeamTrend  scoring.Trend     `json:"teamTrend"`
	Self       MemberRow         `json:"self"`
	Members    []MemberRow       `json:"members"`
	Pending    []scoring.Profile `json:"pending"`
	Cohort     scoring.Cohort    `json:"cohort"`
}

// Member looks up a row by profile id.
func (d Dashboard) Member(id string) (MemberRow, bool) {
	for _, row := range d.Members {
		if row.Profile.ID == id {
			return row, true
		}
	}
	return MemberRow{}, false
}

type DashboardRequest struct {
	Selector   scoring.Selector
	DirectorID string
	Transitive bool
}

type SubjectReport struct {
	Period string         `json:"period"`
	Label  string         `json:"label"`
	Window scoring.Window `json:"window"`
	Row    MemberRow      `json:"row"`
	KPIs   []KPIResult    `json:"kpis"`
}

// KPIResult tallies one subject's reviews of a single active KPI in a window.
type KPIResult struct {
	KPIID   string `json:"kpiId"`
	Title   string `json:"title"`
	Floor   string `json:"floor"`
	Weight  int    `json:"weight"`
	Reviews int    `json:"reviews"`
	Met     int    `json:"met"`
}

type TeamReport struct {
	Period     string         `json:"period"`
	Label      string         `json:"label"`
	Window     scoring.Window `json:"window"`
	Transitive bool           `json:"transitive"`
	Score      int            `json:"score"`
	Team       scoring.Team   `json:"team"`
}

type Organization struct {
	Period     string         `json:"period"`
	Label      string         `json:"label"`
	MonthLabel string         `json:"monthLabel"`
	Window     scoring.Window `json:"window"`
	Rows       []MemberRow    `json:"rows"`
	Cohort     scoring.Cohort `json:"cohort"`
}
