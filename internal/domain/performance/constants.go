package performance

const (
	PeriodMonth = "month"
	PeriodWeek  = "week"
)
