package scoring

import (
	"math/big"
	"testing"
	"time"
)

var teamKPIs = []KPI{
	{ID: "w9", Weight: 9},
	{ID: "w1", Weight: 1},
	{ID: "w6", Weight: 6},
	{ID: "w4", Weight: 4},
	{ID: "w10", Weight: 10},
	{ID: "w10b", Weight: 10},
	{ID: "w18", Weight: 18},
	{ID: "w17", Weight: 17},
}

func at(day int) time.Time {
	return date(2024, time.March, day)
}

// reviewsFor returns reviews that score exactly as named: 90, 60, 50 or 51.
func reviewsFor(subject string, score int) []ReviewEvent {
	switch score {
	case 90:
		return []ReviewEvent{review(subject, "w9", true, at(3)), review(subject, "w1", false, at(3))}
	case 60:
		return []ReviewEvent{review(subject, "w6", true, at(4)), review(subject, "w4", false, at(4))}
	case 50:
		return []ReviewEvent{review(subject, "w10", true, at(5)), review(subject, "w10b", false, at(5))}
	case 51:
		return []ReviewEvent{review(subject, "w18", true, at(6)), review(subject, "w17", false, at(6))}
	}
	return nil
}

func mustSnapshot(t *testing.T, in Input) *Snapshot {
	t.Helper()
	snap, err := NewSnapshot(in)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return snap
}

func profile(id string, role Role) Profile {
	return Profile{ID: id, Name: id, Role: role, Accept: true}
}

func TestTeamScoreAveragesIndividualScores(t *testing.T) {
	var reviews []ReviewEvent
	reviews = append(reviews, reviewsFor("C1", 90)...)
	reviews = append(reviews, reviewsFor("D2", 60)...)
	reviews = append(reviews, reviewsFor("C3", 50)...)

	snap := mustSnapshot(t, Input{
		Profiles: []Profile{
			profile("D", RoleDirector), profile("D2", RoleDirector),
			profile("C1", RoleClinician), profile("C2", RoleClinician), profile("C3", RoleClinician),
		},
		KPIs: teamKPIs,
		Assignments: []Assignment{
			{SupervisorID: "D", SubordinateID: "C1"},
			{SupervisorID: "D", SubordinateID: "C2"},
			{SupervisorID: "D", SubordinateID: "D2"},
			{SupervisorID: "D2", SubordinateID: "C3"},
		},
		Reviews: reviews,
	})

	if got := snap.TeamScore("D", march2024); got != 50 {
		t.Fatalf("expected team score 50, got %d", got)
	}

	team := snap.TeamBreakdown("D", march2024)
	if len(team.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(team.Members))
	}
	if team.Members[2].ID != "D2" || team.Members[2].Role != RoleDirector || team.Members[2].Score.Score != 60 {
		t.Fatalf("expected sub-director last with personal score 60, got %+v", team.Members[2])
	}
	if team.Members[1].Score.Score != 0 {
		t.Fatalf("expected unreviewed member to count as 0, got %+v", team.Members[1])
	}
}

func TestTeamScoreEmptyTeam(t *testing.T) {
	snap := mustSnapshot(t, Input{Profiles: []Profile{profile("D", RoleDirector)}, KPIs: teamKPIs})
	if got := snap.TeamScore("D", march2024); got != 0 {
		t.Fatalf("expected 0 for empty team, got %d", got)
	}
	if got := snap.TeamScoreTransitive("D", march2024, nil); got != 0 {
		t.Fatalf("expected 0 for empty transitive team, got %d", got)
	}
}

func TestTeamScoreTransitiveRoundsOnce(t *testing.T) {
	var reviews []ReviewEvent
	reviews = append(reviews, reviewsFor("C1", 90)...)
	reviews = append(reviews, reviewsFor("C3", 50)...)
	reviews = append(reviews, reviewsFor("C4", 51)...)

	snap := mustSnapshot(t, Input{
		Profiles: []Profile{
			profile("D", RoleDirector), profile("D2", RoleDirector),
			profile("C1", RoleClinician), profile("C3", RoleClinician), profile("C4", RoleClinician),
		},
		KPIs: teamKPIs,
		Assignments: []Assignment{
			{SupervisorID: "D", SubordinateID: "C1"},
			{SupervisorID: "D", SubordinateID: "D2"},
			{SupervisorID: "D2", SubordinateID: "C3"},
			{SupervisorID: "D2", SubordinateID: "C4"},
		},
		Reviews: reviews,
	})

	// (90 + 50.5) / 2 = 70.25
	if got := snap.TeamScoreTransitive("D", march2024, nil); got != 70 {
		t.Fatalf("expected transitive score 70, got %d", got)
	}
	// D2 has no personal reviews.
	if got := snap.TeamScore("D", march2024); got != 45 {
		t.Fatalf("expected canonical score 45, got %d", got)
	}
}

func TestTeamScoreTransitiveTerminatesOnCycles(t *testing.T) {
	var reviews []ReviewEvent
	reviews = append(reviews, reviewsFor("A", 90)...)
	reviews = append(reviews, reviewsFor("B", 60)...)
	reviews = append(reviews, reviewsFor("C1", 50)...)

	snap := mustSnapshot(t, Input{
		Profiles: []Profile{
			profile("A", RoleDirector), profile("B", RoleDirector), profile("E", RoleDirector),
			profile("C1", RoleClinician),
		},
		KPIs: teamKPIs,
		Assignments: []Assignment{
			{SupervisorID: "A", SubordinateID: "B"},
			{SupervisorID: "B", SubordinateID: "A"},
			{SupervisorID: "B", SubordinateID: "C1"},
			{SupervisorID: "E", SubordinateID: "E"},
		},
		Reviews: reviews,
	})

	a := snap.TeamScoreTransitive("A", march2024, nil)
	b := snap.TeamScoreTransitive("B", march2024, nil)
	if a < 0 || a > 100 || b < 0 || b > 100 {
		t.Fatalf("expected finite scores, got A=%d B=%d", a, b)
	}
	// B: (A repeated -> 0, C1 50) / 2
	if b != 25 {
		t.Fatalf("expected B=25, got %d", b)
	}
	// A: B's team mean of 25 over one report.
	if a != 25 {
		t.Fatalf("expected A=25, got %d", a)
	}
	if got := snap.TeamScoreTransitive("E", march2024, nil); got != 0 {
		t.Fatalf("expected self-supervising director to score 0, got %d", got)
	}
	// The canonical entry point never recurses.
	if got := snap.TeamScore("A", march2024); got != 60 {
		t.Fatalf("expected canonical A=60, got %d", got)
	}
}

func TestTeamScoreTransitiveDoesNotMutateVisited(t *testing.T) {
	snap := mustSnapshot(t, Input{
		Profiles:    []Profile{profile("A", RoleDirector), profile("B", RoleDirector)},
		KPIs:        teamKPIs,
		Assignments: []Assignment{{SupervisorID: "A", SubordinateID: "B"}},
	})
	visited := map[string]struct{}{"B": {}}
	_ = snap.TeamScoreTransitive("A", march2024, visited)
	if len(visited) != 1 {
		t.Fatalf("expected caller's visited set untouched, got %v", visited)
	}
}

func TestTeamScoreTransitiveLongChain(t *testing.T) {
	const depth = 200
	in := Input{KPIs: teamKPIs}
	for i := 0; i < depth; i++ {
		id := "D" + string(rune('A'+i%26)) + string(rune('a'+i/26))
		in.Profiles = append(in.Profiles, profile(id, RoleDirector))
		if i > 0 {
			in.Assignments = append(in.Assignments, Assignment{SupervisorID: in.Profiles[i-1].ID, SubordinateID: id})
		}
	}
	in.Assignments = append(in.Assignments, Assignment{SupervisorID: in.Profiles[depth-1].ID, SubordinateID: in.Profiles[0].ID})
	snap := mustSnapshot(t, in)
	if got := snap.TeamScoreTransitive(in.Profiles[0].ID, march2024, nil); got != 0 {
		t.Fatalf("expected 0 for an unreviewed ring, got %d", got)
	}
}

func TestTeamScoreTransitiveThirds(t *testing.T) {
	var reviews []ReviewEvent
	reviews = append(reviews, reviewsFor("C1", 90)...)
	reviews = append(reviews, reviewsFor("C2", 51)...)
	reviews = append(reviews, reviewsFor("C3", 50)...)

	snap := mustSnapshot(t, Input{
		Profiles: []Profile{
			profile("D", RoleDirector), profile("D2", RoleDirector),
			profile("C1", RoleClinician), profile("C2", RoleClinician),
			profile("C3", RoleClinician), profile("C4", RoleClinician),
		},
		KPIs: teamKPIs,
		Assignments: []Assignment{
			{SupervisorID: "D", SubordinateID: "C1"},
			{SupervisorID: "D", SubordinateID: "D2"},
			{SupervisorID: "D2", SubordinateID: "C2"},
			{SupervisorID: "D2", SubordinateID: "C3"},
			{SupervisorID: "D2", SubordinateID: "C4"},
		},
		Reviews: reviews,
	})

	// D2 = 101/3, D = (90 + 101/3) / 2 = 371/6 = 61.83
	if got := snap.TeamScoreTransitive("D", march2024, nil); got != 62 {
		t.Fatalf("expected 62, got %d", got)
	}
	if got := snap.TeamScoreTransitive("D2", march2024, nil); got != 34 {
		t.Fatalf("expected 34, got %d", got)
	}
}

func TestRoundedRatioHalfUp(t *testing.T) {
	cases := []struct {
		num, den int64
		want     int
	}{
		{0, 1, 0},
		{1, 2, 1},
		{67, 2, 34},
		{133, 6, 22},
		{199, 2, 100},
		{371, 6, 62},
	}
	for _, tc := range cases {
		if got := roundedRatio(big.NewInt(tc.num), big.NewInt(tc.den)); got != tc.want {
			t.Fatalf("%d/%d: expected %d, got %d", tc.num, tc.den, tc.want, got)
		}
	}
}
