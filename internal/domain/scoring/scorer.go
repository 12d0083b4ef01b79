package scoring

// ScoreSubject computes the weighted percentage of met reviews for one
// subject over a window. Reviews whose KPI is missing, removed or weighted
// outside MinKPIWeight..MaxKPIWeight are skipped.
// Every matching event counts, including repeats for the same KPI.
func ScoreSubject(subjectID string, window Window, reviews []ReviewEvent, kpis []KPI) PeriodScore {
	return scoreSubject(subjectID, window, reviews, indexKPIs(kpis))
}

type kpiIndex struct {
	byID   map[string]KPI
	active int
}

func indexKPIs(kpis []KPI) kpiIndex {
	idx := kpiIndex{byID: make(map[string]KPI, len(kpis))}
	for _, kpi := range kpis {
		if kpi.Removed || kpi.Weight < MinKPIWeight || kpi.Weight > MaxKPIWeight {
			continue
		}
		if _, dup := idx.byID[kpi.ID]; !dup {
			idx.active++
		}
		idx.byID[kpi.ID] = kpi
	}
	return idx
}

func scoreSubject(subjectID string, window Window, reviews []ReviewEvent, idx kpiIndex) PeriodScore {
	out := PeriodScore{
		SubjectID:     subjectID,
		WindowStart:   window.Start,
		WindowEnd:     window.End,
		TotalKPICount: idx.active,
	}

	var totalWeight, earnedWeight int
	reviewed := map[string]struct{}{}
	for _, review := range reviews {
		if review.SubjectID != subjectID || !window.Contains(review.Date) {
			continue
		}
		kpi, ok := idx.byID[review.KPIID]
		if !ok {
			out.SkippedReviews++
			continue
		}
		totalWeight += kpi.Weight
		if review.Met {
			earnedWeight += kpi.Weight
		}
		reviewed[kpi.ID] = struct{}{}
	}

	out.ReviewedKPICount = len(reviewed)
	out.Score = roundedPercent(earnedWeight, totalWeight)
	return out
}

// roundedPercent returns part/whole*100 rounded half-up, or 0 for an empty whole.
func roundedPercent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (part*200 + whole) / (2 * whole)
}

// roundedMean returns sum/n rounded half-up, or 0 when n is 0.
func roundedMean(sum, n int) int {
	if n <= 0 {
		return 0
	}
	return (sum*2 + n) / (2 * n)
}
