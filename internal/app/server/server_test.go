package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"kpidash/internal/domain/performance"
	"kpidash/internal/domain/reports"
	"kpidash/internal/domain/scoring"
	"kpidash/internal/platform/config"
	"kpidash/internal/platform/metrics"
)

type stubScorer struct{}

func (stubScorer) Dashboard(context.Context, performance.DashboardRequest) (performance.Dashboard, error) {
	return performance.Dashboard{}, nil
}

func (stubScorer) SubjectScore(context.Context, scoring.Selector, string) (performance.SubjectReport, error) {
	return performance.SubjectReport{}, nil
}

func (stubScorer) TeamScore(context.Context, scoring.Selector, string, bool) (performance.TeamReport, error) {
	return performance.TeamReport{}, nil
}

func (stubScorer) Organization(context.Context, scoring.Selector) (performance.Organization, error) {
	return performance.Organization{}, nil
}

func (stubScorer) Location() *time.Location {
	return time.UTC
}

func (stubScorer) Directors(context.Context) ([]scoring.Profile, error) {
	return []scoring.Profile{{ID: "d1", Role: scoring.RoleDirector}}, nil
}

func testRouter(ready func(context.Context) error) http.Handler {
	cfg := config.Defaults()
	cfg.JWTSecret = "secret"
	collector := metrics.New()
	return NewRouter(RouterDeps{
		Config:  cfg,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: collector,
		Scorer:  stubScorer{},
		Reports: reports.NewService("", nil, collector),
		Ready:   ready,
	})
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndReadiness(t *testing.T) {
	router := testRouter(func(context.Context) error { return nil })
	if rec := get(router, "/healthz"); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz %d %q", rec.Code, rec.Body.String())
	}
	if rec := get(router, "/readyz"); rec.Code != http.StatusOK {
		t.Fatalf("expected ready, got %d", rec.Code)
	}

	down := testRouter(func(context.Context) error { return errors.New("down") })
	if rec := get(down, "/readyz"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestRouterHeadersAndAuth(t *testing.T) {
	router := testRouter(nil)
	rec := get(router, "/api/v1/performance/dashboard")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id")
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("expected no-store, got %q", rec.Header().Get("Cache-Control"))
	}
	if rec.Header().Get("X-RateLimit-Limit") == "" {
		t.Fatalf("expected rate limit headers on api routes")
	}
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	router := testRouter(nil)
	get(router, "/healthz")

	rec := get(router, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `kpidash_http_requests_total{code="200"}`) {
		t.Fatalf("expected request counter in metrics output")
	}
}

func TestExportMonthBeforeExportsPreviousMonth(t *testing.T) {
	dir := t.TempDir()
	app := &App{
		Config:  config.Defaults(),
		source:  stubScorer{},
		reports: reports.NewService(dir, nil, nil),
	}

	result, err := app.exportMonthBefore(context.Background(), time.Date(2024, time.March, 3, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	summary := result.(map[string]any)
	if summary["period"] != "February 2024" || summary["exported"] != 1 {
		t.Fatalf("unexpected summary %v", summary)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one scorecard in %s, got %v %v", dir, entries, err)
	}
}
