package scoring

import "math/big"

// TeamScore is the mean of the individual scores of directorID's direct
// reports. Sub-directors count with their personal score, and members with
// no reviews count as 0. The mean is rounded once, at the end.
func (s *Snapshot) TeamScore(directorID string, window Window) int {
	return s.TeamBreakdown(directorID, window).Score
}

// TeamBreakdown returns the member scores behind TeamScore, clinicians
// first, then sub-directors, each in assignment order.
func (s *Snapshot) TeamBreakdown(directorID string, window Window) Team {
	reports := s.DirectReports(directorID)
	team := Team{DirectorID: directorID, Members: make([]TeamMember, 0, reports.Len())}
	sum := 0
	for _, id := range reports.All() {
		score := s.Score(id, window)
		sum += score.Score
		team.Members = append(team.Members, TeamMember{
			ID:    id,
			Role:  s.profileByID[id].Role,
			Score: score,
		})
	}
	team.Score = roundedMean(sum, len(team.Members))
	return team
}

// TeamScoreTransitive averages over direct reports like TeamScore, but each
// sub-director contributes its own transitive team mean. A director that is
// already in visited contributes 0 and is not expanded, so malformed cyclic
// assignments still terminate. visited may be nil and is never modified.
// Means are kept as exact fractions and rounded once, at the top.
func (s *Snapshot) TeamScoreTransitive(directorID string, window Window, visited map[string]struct{}) int {
	seen := make(map[string]struct{}, len(visited)+1)
	for id := range visited {
		seen[id] = struct{}{}
	}
	mean := s.transitiveMean(directorID, window, seen)
	return roundedRatio(mean.Num(), mean.Denom())
}

func (s *Snapshot) transitiveMean(directorID string, window Window, visited map[string]struct{}) *big.Rat {
	visited[directorID] = struct{}{}
	sum := new(big.Rat)
	reports := s.DirectReports(directorID)
	if reports.Len() == 0 {
		return sum
	}

	for _, id := range reports.Clinicians {
		sum.Add(sum, big.NewRat(int64(s.Score(id, window).Score), 1))
	}
	for _, id := range reports.SubDirectors {
		if _, ok := visited[id]; ok {
			continue
		}
		sum.Add(sum, s.transitiveMean(id, window, visited))
	}
	return sum.Quo(sum, big.NewRat(int64(reports.Len()), 1))
}

// roundedRatio rounds the non-negative fraction num/den half-up.
func roundedRatio(num, den *big.Int) int {
	twice := new(big.Int).Lsh(num, 1)
	twice.Add(twice, den)
	q := new(big.Int).Quo(twice, new(big.Int).Lsh(den, 1))
	return int(q.Int64())
}
