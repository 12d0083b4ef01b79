package scoring

import (
	"testing"
	"time"
)

var march2024 = MonthSelector{Month: time.March, Year: 2024}.Resolve(time.UTC)

func review(subject, kpi string, met bool, at time.Time) ReviewEvent {
	return ReviewEvent{SubjectID: subject, KPIID: kpi, Met: met, Date: at}
}

func TestScoreSubjectWeighted(t *testing.T) {
	kpis := []KPI{{ID: "k1", Weight: 10}, {ID: "k2", Weight: 20}}
	reviews := []ReviewEvent{
		review("s", "k1", true, date(2024, time.March, 4)),
		review("s", "k2", false, date(2024, time.March, 5)),
	}

	score := ScoreSubject("s", march2024, reviews, kpis)
	if score.Score != 33 {
		t.Fatalf("expected score 33, got %d", score.Score)
	}
	if score.ReviewedKPICount != 2 || score.TotalKPICount != 2 {
		t.Fatalf("unexpected counts: %+v", score)
	}
	if !score.WindowStart.Equal(march2024.Start) || !score.WindowEnd.Equal(march2024.End) {
		t.Fatalf("expected window bounds on score, got %+v", score)
	}
}

func TestScoreSubjectNoReviewsIsZero(t *testing.T) {
	kpis := []KPI{{ID: "k1", Weight: 10}, {ID: "k2", Weight: 20}, {ID: "k3", Weight: 5}}
	score := ScoreSubject("s", march2024, nil, kpis)
	if score.Score != 0 {
		t.Fatalf("expected 0, got %d", score.Score)
	}
	if score.TotalKPICount != 3 {
		t.Fatalf("expected 3 active kpis, got %d", score.TotalKPICount)
	}
}

func TestScoreSubjectWindowIsHalfOpen(t *testing.T) {
	kpis := []KPI{{ID: "k1", Weight: 5}}
	reviews := []ReviewEvent{
		review("s", "k1", true, march2024.Start),
		review("s", "k1", false, march2024.End),
		review("s", "k1", false, march2024.Start.Add(-time.Nanosecond)),
	}
	score := ScoreSubject("s", march2024, reviews, kpis)
	if score.Score != 100 {
		t.Fatalf("expected only the start-boundary review to count, got %d", score.Score)
	}
}

func TestScoreSubjectSkipsOutOfRangeWeights(t *testing.T) {
	kpis := []KPI{{ID: "k1", Weight: 10}, {ID: "zero", Weight: 0}, {ID: "huge", Weight: 21}}
	reviews := []ReviewEvent{
		review("s", "k1", false, date(2024, time.March, 4)),
		review("s", "zero", true, date(2024, time.March, 4)),
		review("s", "huge", true, date(2024, time.March, 4)),
	}
	score := ScoreSubject("s", march2024, reviews, kpis)
	if score.Score != 0 || score.SkippedReviews != 2 || score.TotalKPICount != 1 {
		t.Fatalf("expected out-of-range kpis to be skipped, got %+v", score)
	}

	snap, err := NewSnapshot(Input{KPIs: kpis, Reviews: reviews})
	if err != nil {
		t.Fatalf("expected snapshot to accept out-of-range weights, got %v", err)
	}
	if got := snap.Score("s", march2024); got != score {
		t.Fatalf("snapshot score %+v differs from %+v", got, score)
	}
}

func TestScoreSubjectSkipsMissingAndRemovedKPIs(t *testing.T) {
	kpis := []KPI{{ID: "k1", Weight: 4}, {ID: "gone", Weight: 20, Removed: true}}
	reviews := []ReviewEvent{
		review("s", "k1", true, date(2024, time.March, 2)),
		review("s", "gone", false, date(2024, time.March, 2)),
		review("s", "deleted", false, date(2024, time.March, 2)),
	}
	score := ScoreSubject("s", march2024, reviews, kpis)
	if score.Score != 100 {
		t.Fatalf("expected unresolved kpis to be ignored, got %d", score.Score)
	}
	if score.SkippedReviews != 2 {
		t.Fatalf("expected 2 skipped reviews, got %d", score.SkippedReviews)
	}
	if score.TotalKPICount != 1 {
		t.Fatalf("expected removed kpi excluded from total, got %d", score.TotalKPICount)
	}
}

func TestScoreSubjectCountsDuplicateEvents(t *testing.T) {
	kpis := []KPI{{ID: "k1", Weight: 10}, {ID: "k2", Weight: 10}}
	reviews := []ReviewEvent{
		review("s", "k1", false, date(2024, time.March, 2)),
		review("s", "k1", true, date(2024, time.March, 20)),
		review("s", "k2", true, date(2024, time.March, 21)),
	}
	score := ScoreSubject("s", march2024, reviews, kpis)
	// 20 earned of 30.
	if score.Score != 67 {
		t.Fatalf("expected 67, got %d", score.Score)
	}
	if score.ReviewedKPICount != 2 {
		t.Fatalf("expected 2 distinct reviewed kpis, got %d", score.ReviewedKPICount)
	}
}

func TestScoreSubjectIgnoresOtherSubjects(t *testing.T) {
	kpis := []KPI{{ID: "k1", Weight: 10}}
	reviews := []ReviewEvent{review("other", "k1", true, date(2024, time.March, 2))}
	if got := ScoreSubject("s", march2024, reviews, kpis).Score; got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestScoreSubjectRoundsHalfUp(t *testing.T) {
	kpis := []KPI{{ID: "k1", Weight: 1}, {ID: "k2", Weight: 7}}
	reviews := []ReviewEvent{
		review("s", "k1", true, date(2024, time.March, 2)),
		review("s", "k2", false, date(2024, time.March, 2)),
	}
	// 1/8 = 12.5%
	if got := ScoreSubject("s", march2024, reviews, kpis).Score; got != 13 {
		t.Fatalf("expected 13, got %d", got)
	}
}

func TestScoreSubjectBoundedAndMonotonic(t *testing.T) {
	kpis := []KPI{
		{ID: "k1", Weight: 1}, {ID: "k2", Weight: 3}, {ID: "k3", Weight: 7},
		{ID: "k4", Weight: 13}, {ID: "k5", Weight: 20},
	}
	var reviews []ReviewEvent
	prev := -1
	for i, kpi := range kpis {
		met := i%2 == 0
		reviews = append(reviews, review("s", kpi.ID, met, date(2024, time.March, i+1)))
		score := ScoreSubject("s", march2024, reviews, kpis).Score
		if score < 0 || score > 100 {
			t.Fatalf("score out of range: %d", score)
		}
		if met && prev >= 0 && score < prev {
			t.Fatalf("adding a met review lowered the score from %d to %d", prev, score)
		}
		prev = score
	}
}
