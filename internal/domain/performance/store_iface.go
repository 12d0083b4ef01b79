package performance

import (
	"context"
	"time"

	"kpidash/internal/domain/scoring"
)

type StoreAPI interface {
	ListProfiles(ctx context.Context) ([]scoring.Profile, error)
	ListKPIs(ctx context.Context) ([]scoring.KPI, error)
	ListAssignments(ctx context.Context) ([]scoring.Assignment, error)
	ListReviews(ctx context.Context, start, end time.Time) ([]scoring.ReviewEvent, error)
	ListSubjectReviews(ctx context.Context, subjectID string, start, end time.Time) ([]scoring.ReviewEvent, error)
}
