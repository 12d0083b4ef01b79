package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"kpidash/internal/domain/auth"
	"kpidash/internal/domain/performance"
	"kpidash/internal/domain/reports"
	"kpidash/internal/domain/scoring"
	"kpidash/internal/platform/config"
	"kpidash/internal/platform/crypto"
	"kpidash/internal/platform/db"
	"kpidash/internal/platform/jobs"
	"kpidash/internal/platform/metrics"
	jobshandler "kpidash/internal/transport/http/handlers/jobs"
	performancehandler "kpidash/internal/transport/http/handlers/performance"
	"kpidash/internal/transport/http/middleware"
)

const jobScorecardExport = "scorecard_export"

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *metrics.Collector
	Router  http.Handler
	Jobs    *jobs.Service

	source  reports.DashboardSource
	reports *reports.Service
}

// RouterDeps is everything NewRouter wires together. Ready reports whether
// the backing store can serve requests.
type RouterDeps struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.Collector
	Scorer  performancehandler.Scorer
	Reports *reports.Service
	Ready   func(ctx context.Context) error
	// Jobs, when set, exposes JobFuncs under /api/v1/jobs.
	Jobs     *jobs.Service
	JobFuncs map[string]jobs.Func
}

// New connects to the database, optionally migrates it, and builds the
// router. Close releases the pool.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	sealer, err := crypto.New(cfg.ExportKey)
	if err != nil {
		return nil, fmt.Errorf("export key: %w", err)
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, os.DirFS(cfg.MigrationsDir)); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied", "dir", cfg.MigrationsDir)
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	service := performance.NewService(performance.NewStore(pool), performance.Options{
		Location:               cfg.Location(),
		WeeklyFetchConcurrency: cfg.WeeklyFetchConcurrency,
		TrendPeriods:           cfg.TrendPeriods,
		Metrics:                collector,
	})

	reportSvc := reports.NewService(cfg.ExportDir, sealer, collector)

	app := &App{
		Config:  cfg,
		DB:      pool,
		Logger:  logger,
		Metrics: collector,
		Jobs:    jobs.New(logger),
		source:  service,
		reports: reportSvc,
	}
	app.Router = NewRouter(RouterDeps{
		Config:   cfg,
		Logger:   logger,
		Metrics:  collector,
		Scorer:   service,
		Reports:  reportSvc,
		Ready:    pool.Ping,
		Jobs:     app.Jobs,
		JobFuncs: map[string]jobs.Func{jobScorecardExport: app.exportLastMonth},
	})
	return app, nil
}

func NewRouter(deps RouterDeps) http.Handler {
	cfg := deps.Config
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(deps.Logger, deps.Metrics))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if deps.Ready != nil {
			if err := deps.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if deps.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

		exportLimit := max(cfg.RateLimitPerMinute/10, 1)
		perms := auth.NewStaticPermissions()
		performanceHandler := performancehandler.NewHandler(deps.Scorer, deps.Reports, perms, exportLimit)
		performanceHandler.RegisterRoutes(r)

		if deps.Jobs != nil {
			jobshandler.NewHandler(deps.Jobs, perms, deps.JobFuncs).RegisterRoutes(r)
		}
	})

	return router
}

// Run serves until ctx is canceled, then drains in-flight requests for up
// to ShutdownTimeout. With an export interval configured, scorecards for
// the last completed month are exported in the background.
func (a *App) Run(ctx context.Context) error {
	a.Jobs.Start(ctx)
	if a.Config.ExportInterval > 0 {
		a.Jobs.Every(ctx, jobScorecardExport, a.Config.ExportInterval, a.exportLastMonth)
	}

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("kpidash server listening", "addr", a.Config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	a.Logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) exportLastMonth(ctx context.Context) (any, error) {
	return a.exportMonthBefore(ctx, time.Now())
}

func (a *App) exportMonthBefore(ctx context.Context, now time.Time) (any, error) {
	sel := scoring.MonthOf(now, a.Config.Location()).Prev()
	paths, err := a.reports.ExportAll(ctx, a.source, sel)
	return map[string]any{"period": sel.Label(), "exported": len(paths)}, err
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
