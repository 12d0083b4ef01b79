package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"kpidash/internal/domain/performance"
	"kpidash/internal/domain/scoring"
	"kpidash/internal/platform/crypto"
	"kpidash/internal/platform/metrics"
)

// DashboardSource is what a batch export needs from the scoring service.
type DashboardSource interface {
	Directors(ctx context.Context) ([]scoring.Profile, error)
	Dashboard(ctx context.Context, req performance.DashboardRequest) (performance.Dashboard, error)
}

type Service struct {
	dir     string
	sealer  *crypto.Service
	metrics *metrics.Collector
}

// NewService writes exports under dir. When sealer is configured, files
// on disk are encrypted and carry a .enc suffix.
func NewService(dir string, sealer *crypto.Service, collector *metrics.Collector) *Service {
	if dir == "" {
		dir = "storage/scorecards"
	}
	return &Service{dir: dir, sealer: sealer, metrics: collector}
}

// Render returns the scorecard PDF and its download name.
func (s *Service) Render(d performance.Dashboard) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := RenderScorecard(&buf, d); err != nil {
		return nil, "", err
	}
	s.metrics.Exported()
	return buf.Bytes(), FileName(d), nil
}

// ExportScorecard writes the dashboard as a PDF under the export directory
// and returns the file path.
func (s *Service) ExportScorecard(d performance.Dashboard) (string, error) {
	body, name, err := s.Render(d)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, name)
	mode := os.FileMode(0o644)
	if s.sealer.Configured() {
		if body, err = s.sealer.Encrypt(body); err != nil {
			return "", fmt.Errorf("encrypt scorecard: %w", err)
		}
		path += ".enc"
		mode = 0o600
	}
	if err := os.WriteFile(path, body, mode); err != nil {
		return "", err
	}
	return path, nil
}

// ExportAll writes one scorecard per approved director for sel. A failing
// director is logged and skipped; the joined errors are returned alongside
// the paths that were written.
func (s *Service) ExportAll(ctx context.Context, src DashboardSource, sel scoring.Selector) ([]string, error) {
	directors, err := src.Directors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list directors: %w", err)
	}

	var (
		paths []string
		errs  []error
	)
	for _, director := range directors {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		dash, err := src.Dashboard(ctx, performance.DashboardRequest{Selector: sel, DirectorID: director.ID})
		if err == nil {
			var path string
			if path, err = s.ExportScorecard(dash); err == nil {
				paths = append(paths, path)
			}
		}
		if err != nil {
			slog.Warn("scorecard export failed", "directorId", director.ID, "period", sel.Label(), "err", err)
			errs = append(errs, fmt.Errorf("director %s: %w", director.ID, err))
		}
	}
	return paths, errors.Join(errs...)
}

// FileName is the download name for a dashboard's scorecard.
func FileName(d performance.Dashboard) string {
	return fmt.Sprintf("scorecard-%s-%s.pdf", slug(d.Director.ID), slug(d.Label))
}

func slug(value string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(value) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
