package scoring

// Classify buckets scored subjects into top performers and needs-attention,
// keeping input order. Scores in [70, 90) land in neither list.
func Classify(scored []Scored) Cohort {
	out := Cohort{TopPerformers: []string{}, NeedsAttention: []string{}}
	for _, s := range scored {
		switch {
		case s.Score >= TopPerformerThreshold:
			out.TopPerformers = append(out.TopPerformers, s.ID)
		case s.Score < NeedsAttentionThreshold:
			out.NeedsAttention = append(out.NeedsAttention, s.ID)
		}
	}
	return out
}
