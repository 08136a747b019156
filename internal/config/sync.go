// Package config assembles the sanctions sync configuration.
//
// Values are layered: built-in defaults, then the optional YAML file named by
// SYNC_CONFIG_FILE, then environment variables. Invalid environment values fall
// back to the layer below with a warning. A missing database descriptor or an
// invalid YAML file is an error.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"sanctions-sync/internal/infra/db"
	"sanctions-sync/internal/infra/fetcher"
	pkgconfig "sanctions-sync/internal/pkg/config"
)

const (
	DefaultOFACSDNURL        = "https://www.treasury.gov/ofac/downloads/sdn.xml"
	DefaultUNConsolidatedURL = "https://scsanctions.un.org/resources/xml/en/consolidated.xml"

	// EnvConfigFile names the optional YAML file.
	EnvConfigFile = "SYNC_CONFIG_FILE"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid sync configuration")

// SyncConfig is the full configuration of one sanctions-sync process.
type SyncConfig struct {
	Sources  SourcesConfig  `yaml:"sources"`
	Fetch    fetcher.Config `yaml:"fetch"`
	Sync     RunConfig      `yaml:"sync"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
}

// SourcesConfig holds the download locations of the two lists.
type SourcesConfig struct {
	OFACSDNURL        string `yaml:"ofac_sdn_url"`
	UNConsolidatedURL string `yaml:"un_consolidated_url"`
}

type RunConfig struct {
	// ProtectOnFailure keeps a table untouched when its dataset failed to
	// download or parse. When false every table is truncated up front.
	ProtectOnFailure bool `yaml:"protect_on_failure"`
	// Timeout bounds one complete run.
	Timeout time.Duration `yaml:"timeout"`
	// Schedule is a cron expression. Empty runs once and exits.
	Schedule string `yaml:"schedule"`
	Timezone string `yaml:"timezone"`
}

// DatabaseConfig is either a full URL or its parts.
type DatabaseConfig struct {
	URL       string `yaml:"url"`
	db.Params `yaml:",inline"`
	Pool      db.ConnectionConfig `yaml:"pool"`
}

type ServerConfig struct {
	MetricsPort int `yaml:"metrics_port"`
	HealthPort  int `yaml:"health_port"`
}

// DSN returns URL when set, otherwise a descriptor built from the parts.
func (d DatabaseConfig) DSN() (string, error) {
	if d.URL != "" {
		return d.URL, nil
	}
	return d.Params.DSN()
}

// Scheduled reports whether the process should keep running on a schedule.
func (c *SyncConfig) Scheduled() bool {
	return c.Sync.Schedule != ""
}

// DefaultSyncConfig returns the configuration used when nothing is overridden.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		Sources: SourcesConfig{
			OFACSDNURL:        DefaultOFACSDNURL,
			UNConsolidatedURL: DefaultUNConsolidatedURL,
		},
		Fetch: fetcher.DefaultConfig(),
		Sync: RunConfig{
			ProtectOnFailure: true,
			Timeout:          30 * time.Minute,
			Timezone:         "UTC",
		},
		Database: DatabaseConfig{
			Params: db.Params{Port: 5432},
			Pool:   db.DefaultConnectionConfig(),
		},
		Server: ServerConfig{
			MetricsPort: 9090,
			HealthPort:  9091,
		},
	}
}

// Validate checks every field and reports all problems at once.
func (c *SyncConfig) Validate() error {
	var errs []error

	if err := pkgconfig.ValidateHTTPURL(c.Sources.OFACSDNURL); err != nil {
		errs = append(errs, fmt.Errorf("ofac sdn url: %w", err))
	}
	if err := pkgconfig.ValidateHTTPURL(c.Sources.UNConsolidatedURL); err != nil {
		errs = append(errs, fmt.Errorf("un consolidated url: %w", err))
	}
	if err := c.Fetch.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("fetch: %w", err))
	}
	if err := pkgconfig.ValidatePositiveDuration(c.Sync.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("sync timeout: %w", err))
	}
	if c.Sync.Schedule != "" {
		if err := pkgconfig.ValidateCronSchedule(c.Sync.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("sync schedule: %w", err))
		}
	}
	if err := pkgconfig.ValidateTimezone(c.Sync.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("sync timezone: %w", err))
	}
	if _, err := c.Database.DSN(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	if err := pkgconfig.ValidateIntRange(c.Server.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if err := pkgconfig.ValidateIntRange(c.Server.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if c.Server.MetricsPort == c.Server.HealthPort {
		errs = append(errs, fmt.Errorf("metrics port and health port must differ, both %d", c.Server.HealthPort))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// LoadSyncConfig builds the configuration from defaults, the YAML file, and
// the environment. metrics may be nil.
func LoadSyncConfig(logger *slog.Logger, metrics *pkgconfig.ConfigMetrics) (*SyncConfig, error) {
	cfg := DefaultSyncConfig()

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
		logger.Info("configuration file loaded", slog.String("path", path))
	}

	l := &envLoader{logger: logger, metrics: metrics}
	l.apply(&cfg)

	if metrics != nil {
		metrics.SetFallbackActive(l.fallbackApplied)
		metrics.RecordLoadTimestamp()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeFile overlays the YAML document at path onto c. Keys absent from the
// file keep their current values.
func (c *SyncConfig) mergeFile(path string) error {
	// #nosec G304 -- path comes from the operator's environment
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

type envLoader struct {
	logger          *slog.Logger
	metrics         *pkgconfig.ConfigMetrics
	fallbackApplied bool
}

func (l *envLoader) apply(cfg *SyncConfig) {
	cfg.Sources.OFACSDNURL = use(l, "ofac_sdn_url",
		pkgconfig.LoadEnvString("OFAC_SDN_URL", cfg.Sources.OFACSDNURL, pkgconfig.ValidateHTTPURL))
	cfg.Sources.UNConsolidatedURL = use(l, "un_consolidated_url",
		pkgconfig.LoadEnvString("UN_CONSOLIDATED_URL", cfg.Sources.UNConsolidatedURL, pkgconfig.ValidateHTTPURL))

	cfg.Fetch.Timeout = use(l, "fetch_timeout",
		pkgconfig.LoadEnvDuration("FETCH_TIMEOUT", cfg.Fetch.Timeout, func(d time.Duration) error {
			return pkgconfig.ValidateDuration(d, time.Second, time.Hour)
		}))
	cfg.Fetch.MaxAttempts = use(l, "fetch_max_attempts",
		pkgconfig.LoadEnvInt("FETCH_MAX_ATTEMPTS", cfg.Fetch.MaxAttempts, func(v int) error {
			return pkgconfig.ValidateIntRange(v, 1, 10)
		}))
	cfg.Fetch.MaxBodySize = use(l, "fetch_max_body_size",
		pkgconfig.LoadEnvInt64("FETCH_MAX_BODY_SIZE", cfg.Fetch.MaxBodySize, func(v int64) error {
			return pkgconfig.ValidateInt64Range(v, 1024, 1024*1024*1024)
		}))
	cfg.Fetch.UserAgent = use(l, "fetch_user_agent",
		pkgconfig.LoadEnvString("FETCH_USER_AGENT", cfg.Fetch.UserAgent, nil))

	cfg.Sync.ProtectOnFailure = use(l, "sync_protect_on_failure",
		pkgconfig.LoadEnvBool("SYNC_PROTECT_ON_FAILURE", cfg.Sync.ProtectOnFailure))
	cfg.Sync.Timeout = use(l, "sync_timeout",
		pkgconfig.LoadEnvDuration("SYNC_TIMEOUT", cfg.Sync.Timeout, func(d time.Duration) error {
			return pkgconfig.ValidateDuration(d, time.Minute, 4*time.Hour)
		}))
	cfg.Sync.Schedule = use(l, "sync_schedule",
		pkgconfig.LoadEnvString("SYNC_SCHEDULE", cfg.Sync.Schedule, pkgconfig.ValidateCronSchedule))
	cfg.Sync.Timezone = use(l, "sync_timezone",
		pkgconfig.LoadEnvString("SYNC_TIMEZONE", cfg.Sync.Timezone, pkgconfig.ValidateTimezone))

	cfg.Database.URL = use(l, "database_url",
		pkgconfig.LoadEnvString("DATABASE_URL", cfg.Database.URL, nil))
	cfg.Database.Host = use(l, "db_host", pkgconfig.LoadEnvString("DB_HOST", cfg.Database.Host, nil))
	cfg.Database.Port = use(l, "db_port",
		pkgconfig.LoadEnvInt("DB_PORT", cfg.Database.Port, func(v int) error {
			return pkgconfig.ValidateIntRange(v, 1, 65535)
		}))
	cfg.Database.User = use(l, "db_user", pkgconfig.LoadEnvString("DB_USER", cfg.Database.User, nil))
	cfg.Database.Password = use(l, "db_password", pkgconfig.LoadEnvString("DB_PASSWORD", cfg.Database.Password, nil))
	cfg.Database.Name = use(l, "db_name", pkgconfig.LoadEnvString("DB_NAME", cfg.Database.Name, nil))
	cfg.Database.SSLMode = use(l, "db_sslmode",
		pkgconfig.LoadEnvString("DB_SSLMODE", cfg.Database.SSLMode,
			pkgconfig.OneOf("disable", "allow", "prefer", "require", "verify-ca", "verify-full")))

	cfg.Database.Pool.MaxOpenConns = use(l, "db_max_open_conns",
		pkgconfig.LoadEnvInt("DB_MAX_OPEN_CONNS", cfg.Database.Pool.MaxOpenConns, func(v int) error {
			return pkgconfig.ValidateIntRange(v, 1, 100)
		}))
	cfg.Database.Pool.MaxIdleConns = use(l, "db_max_idle_conns",
		pkgconfig.LoadEnvInt("DB_MAX_IDLE_CONNS", cfg.Database.Pool.MaxIdleConns, func(v int) error {
			return pkgconfig.ValidateIntRange(v, 0, 100)
		}))
	cfg.Database.Pool.ConnMaxLifetime = use(l, "db_conn_max_lifetime",
		pkgconfig.LoadEnvDuration("DB_CONN_MAX_LIFETIME", cfg.Database.Pool.ConnMaxLifetime, pkgconfig.ValidatePositiveDuration))
	cfg.Database.Pool.ConnMaxIdleTime = use(l, "db_conn_max_idle_time",
		pkgconfig.LoadEnvDuration("DB_CONN_MAX_IDLE_TIME", cfg.Database.Pool.ConnMaxIdleTime, pkgconfig.ValidatePositiveDuration))

	cfg.Server.MetricsPort = use(l, "metrics_port",
		pkgconfig.LoadEnvInt("METRICS_PORT", cfg.Server.MetricsPort, func(v int) error {
			return pkgconfig.ValidateIntRange(v, 1024, 65535)
		}))
	cfg.Server.HealthPort = use(l, "health_port",
		pkgconfig.LoadEnvInt("WORKER_HEALTH_PORT", cfg.Server.HealthPort, func(v int) error {
			return pkgconfig.ValidateIntRange(v, 1024, 65535)
		}))
}

// use unwraps r, logging and counting a fallback.
func use[T any](l *envLoader, field string, r pkgconfig.Result[T]) T {
	if !r.FallbackApplied {
		return r.Value
	}
	l.fallbackApplied = true
	if l.metrics != nil {
		l.metrics.RecordValidationError(field)
		l.metrics.RecordFallback(field, "default")
	}
	l.logger.Warn("Configuration fallback applied",
		slog.String("field", field),
		slog.String("warning", r.Warning))
	return r.Value
}
