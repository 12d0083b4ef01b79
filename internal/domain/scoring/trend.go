package scoring

// ClassifyTrend compares the last two entries of a chronological series.
func ClassifyTrend(series []int) Trend {
	if len(series) < 2 {
		return Trend{Direction: DirectionStable}
	}
	last, prev := series[len(series)-1], series[len(series)-2]
	delta := last - prev
	magnitude := delta
	if magnitude < 0 {
		magnitude = -magnitude
	}
	if magnitude < TrendStableBelow {
		return Trend{Direction: DirectionStable}
	}
	if delta > 0 {
		return Trend{Direction: DirectionUp, Magnitude: magnitude}
	}
	return Trend{Direction: DirectionDown, Magnitude: magnitude}
}
