package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
)

const (
	LocalStoreRedis  = "redis"
	LocalStoreSQLite = "sqlite"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// local draft store: "redis" or "sqlite"
	LocalStore     string   `toml:"local_store"`
	LocalStoreTTL  Duration `toml:"local_store_ttl"`
	SQLiteStoreDir string   `toml:"sqlite_store_dir"`
	RedisHost      string   `toml:"redis_host"`
	RedisPort      string   `toml:"redis_port"`

	// remote draft store and workout history
	PostgresHost    string `toml:"postgres_host"`
	PostgresPort    string `toml:"postgres_port"`
	PostgresDBName  string `toml:"postgres_db_name"`
	PostgresUser    string `toml:"postgres_user"`
	PostgresSSLMode string `toml:"postgres_ssl_mode"`
	RunMigrations   bool   `toml:"run_migrations"`
	RemoteDrafts    bool   `toml:"remote_drafts"`
	RemoteFallback  bool   `toml:"remote_fallback"`

	// live session
	AutosaveInterval    Duration `toml:"autosave_interval"`
	PushInterval        Duration `toml:"push_interval"`
	HistoryCacheExpire  Duration `toml:"history_cache_expire"`
	LiveActivityGateway string   `toml:"live_activity_gateway"`
	LivePath            string   `toml:"live_path"`

	// http
	AllowedOrigins       []string `toml:"allowed_origins"`
	AllowedAgentPrefixes []string `toml:"allowed_agent_prefixes"`
	RateLimitPerMin      int      `toml:"rate_limit_per_min"`

	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
}

// Duration reads TOML strings like "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no [%s] table in config", strings.ToLower(env))
	}
	return cfg, nil
}

// Load reads the table of the given environment from the TOML file.
func Load(env, path string) (*Config, error) {
	var t Toml
	md, err := toml.DecodeFile(path, &t)
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config keys: %v", undecoded)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config [%s]: %w", env, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var err error
	if c.Port <= 0 {
		err = multierr.Append(err, errors.New("port must be set"))
	}
	switch c.LocalStore {
	case LocalStoreRedis:
		if c.RedisHost == "" {
			err = multierr.Append(err, errors.New("redis_host must be set for the redis local store"))
		}
	case LocalStoreSQLite:
		if c.SQLiteStoreDir == "" {
			err = multierr.Append(err, errors.New("sqlite_store_dir must be set for the sqlite local store"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("unknown local_store %q", c.LocalStore))
	}
	if c.RemoteFallback && !c.RemoteDrafts {
		err = multierr.Append(err, errors.New("remote_fallback needs remote_drafts"))
	}
	return err
}
