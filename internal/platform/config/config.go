package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "KPIDASH_"
	envFileVar = "KPIDASH_CONFIG"
)

type Config struct {
	Addr                   string        `koanf:"addr"`
	DatabaseURL            string        `koanf:"database_url"`
	JWTSecret              string        `koanf:"jwt_secret"`
	Environment            string        `koanf:"environment"`
	LogLevel               string        `koanf:"log_level"`
	Timezone               string        `koanf:"timezone"`
	RunMigrations          bool          `koanf:"run_migrations"`
	MigrationsDir          string        `koanf:"migrations_dir"`
	MaxBodyBytes           int64         `koanf:"max_body_bytes"`
	RateLimitPerMinute     int           `koanf:"rate_limit_per_minute"`
	WeeklyFetchConcurrency int           `koanf:"weekly_fetch_concurrency"`
	TrendPeriods           int           `koanf:"trend_periods"`
	MetricsEnabled         bool          `koanf:"metrics_enabled"`
	ExportDir              string        `koanf:"export_dir"`
	ExportKey              string        `koanf:"export_key"`
	ExportInterval         time.Duration `koanf:"export_interval"`
	ShutdownTimeout        time.Duration `koanf:"shutdown_timeout"`
}

func Defaults() Config {
	return Config{
		Addr:                   ":8080",
		Environment:            "development",
		LogLevel:               "info",
		Timezone:               "UTC",
		RunMigrations:          false,
		MigrationsDir:          "migrations",
		MaxBodyBytes:           1048576,
		RateLimitPerMinute:     120,
		WeeklyFetchConcurrency: 8,
		TrendPeriods:           2,
		MetricsEnabled:         true,
		ExportDir:              "storage/scorecards",
		ShutdownTimeout:        10 * time.Second,
	}
}

// Load layers defaults, the YAML file named by KPIDASH_CONFIG (if any) and
// KPIDASH_* environment variables, in increasing precedence.
func Load() (Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load config env: %w", err)
	}

	cfg := Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Location resolves Timezone; Validate guarantees it parses.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("KPIDASH_DATABASE_URL is required")
	}
	if c.IsProduction() && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("KPIDASH_JWT_SECRET must be set to a strong value in production")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("KPIDASH_TIMEZONE is not a valid IANA zone: %w", err)
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("KPIDASH_MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("KPIDASH_RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.WeeklyFetchConcurrency <= 0 {
		return fmt.Errorf("KPIDASH_WEEKLY_FETCH_CONCURRENCY must be positive")
	}
	if c.ExportInterval < 0 {
		return fmt.Errorf("KPIDASH_EXPORT_INTERVAL must not be negative")
	}
	if c.TrendPeriods < 2 {
		return fmt.Errorf("KPIDASH_TREND_PERIODS must be at least 2")
	}
	return nil
}
