package performance

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"kpidash/internal/domain/scoring"
)

// Querier is the subset of pgxpool.Pool the store needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Store struct {
	DB Querier
}

func NewStore(db Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) ListProfiles(ctx context.Context) ([]scoring.Profile, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, name, username, role, accept, created_at
    FROM profiles
    ORDER BY name, id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []scoring.Profile
	for rows.Next() {
		var p scoring.Profile
		var role string
		if err := rows.Scan(&p.ID, &p.Name, &p.Username, &role, &p.Accept, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Role = scoring.Role(role)
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *Store) ListKPIs(ctx context.Context) ([]scoring.KPI, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, title, description, weight, floor, removed
    FROM kpis
    ORDER BY created_at, id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var kpis []scoring.KPI
	for rows.Next() {
		var kpi scoring.KPI
		if err := rows.Scan(&kpi.ID, &kpi.Title, &kpi.Description, &kpi.Weight, &kpi.Floor, &kpi.Removed); err != nil {
			return nil, err
		}
		kpis = append(kpis, kpi)
	}
	return kpis, rows.Err()
}

func (s *Store) ListAssignments(ctx context.Context) ([]scoring.Assignment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT supervisor_id::text, subordinate_id::text
    FROM assignments
    ORDER BY created_at, supervisor_id, subordinate_id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []scoring.Assignment
	for rows.Next() {
		var a scoring.Assignment
		if err := rows.Scan(&a.SupervisorID, &a.SubordinateID); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

const reviewColumns = `id::text, clinician_id::text, kpi_id::text, COALESCE(reviewer_id::text, ''), met, notes, plan, review_date`

// ListReviews returns every review dated in [start, end).
func (s *Store) ListReviews(ctx context.Context, start, end time.Time) ([]scoring.ReviewEvent, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+reviewColumns+`
    FROM reviews
    WHERE review_date >= $1 AND review_date < $2
    ORDER BY review_date, id
  `, start, end)
	if err != nil {
		return nil, err
	}
	return scanReviews(rows)
}

// ListSubjectReviews returns one subject's reviews dated in [start, end).
func (s *Store) ListSubjectReviews(ctx context.Context, subjectID string, start, end time.Time) ([]scoring.ReviewEvent, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+reviewColumns+`
    FROM reviews
    WHERE clinician_id = $1 AND review_date >= $2 AND review_date < $3
    ORDER BY review_date, id
  `, subjectID, start, end)
	if err != nil {
		return nil, err
	}
	return scanReviews(rows)
}

func scanReviews(rows pgx.Rows) ([]scoring.ReviewEvent, error) {
	defer rows.Close()
	var reviews []scoring.ReviewEvent
	for rows.Next() {
		var r scoring.ReviewEvent
		if err := rows.Scan(&r.ID, &r.SubjectID, &r.KPIID, &r.ReviewerID, &r.Met, &r.Notes, &r.Plan, &r.Date); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
