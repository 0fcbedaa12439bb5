package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Primary lead source kinds.
const (
	PrimaryNone      = "none"
	PrimaryDirectory = "directory"
	PrimaryPostgres  = "postgres"
)

// Config holds the full application configuration.
type Config struct {
	Source      SourceConfig      `yaml:"source" mapstructure:"source"`
	Signals     SignalsConfig     `yaml:"signals" mapstructure:"signals"`
	Demographic DemographicConfig `yaml:"demographic" mapstructure:"demographic"`
	Circuit     CircuitConfig     `yaml:"circuit" mapstructure:"circuit"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// SourceConfig selects and configures the primary and fallback lead sources.
type SourceConfig struct {
	Primary      string          `yaml:"primary" mapstructure:"primary"`
	DefaultLimit int             `yaml:"default_limit" mapstructure:"default_limit"`
	Directory    DirectoryConfig `yaml:"directory" mapstructure:"directory"`
	Postgres     PostgresConfig  `yaml:"postgres" mapstructure:"postgres"`
	Fallback     FallbackConfig  `yaml:"fallback" mapstructure:"fallback"`
}

// DirectoryConfig holds licensed business directory API settings.
type DirectoryConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	Key            string  `yaml:"key" mapstructure:"key"`
	RateLimit      float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RetryAttempts  int     `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryBackoffMs int     `yaml:"retry_backoff_ms" mapstructure:"retry_backoff_ms"`
}

// PostgresConfig points at a directory mirror stored in Postgres.
type PostgresConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Table       string `yaml:"table" mapstructure:"table"`
}

// FallbackConfig locates the local lead dataset. Empty values use the
// embedded seed dataset.
type FallbackConfig struct {
	DatasetPath string `yaml:"dataset_path" mapstructure:"dataset_path"`
	SQLiteDSN   string `yaml:"sqlite_dsn" mapstructure:"sqlite_dsn"`
}

// SignalsConfig configures the per-lead signal fan-out and its providers.
type SignalsConfig struct {
	Concurrency      int            `yaml:"concurrency" mapstructure:"concurrency"`
	CallTimeoutSecs  int            `yaml:"call_timeout_secs" mapstructure:"call_timeout_secs"`
	WebsiteRateLimit float64        `yaml:"website_rate_limit" mapstructure:"website_rate_limit"`
	ReviewRateLimit  float64        `yaml:"review_rate_limit" mapstructure:"review_rate_limit"`
	Market           bool           `yaml:"market" mapstructure:"market"`
	Places           PlacesConfig   `yaml:"places" mapstructure:"places"`
	Webprobe         WebprobeConfig `yaml:"webprobe" mapstructure:"webprobe"`
}

// PlacesConfig holds review provider settings.
type PlacesConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// WebprobeConfig holds website probe settings.
type WebprobeConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// DemographicConfig configures the demographic provider and its cache.
type DemographicConfig struct {
	BaseURL         string `yaml:"base_url" mapstructure:"base_url"`
	Key             string `yaml:"key" mapstructure:"key"`
	TTLHours        int    `yaml:"ttl_hours" mapstructure:"ttl_hours"` // 0 = process lifetime
	MaxEntries      int    `yaml:"max_entries" mapstructure:"max_entries"`
	RedisAddr       string `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisTTLHours   int    `yaml:"redis_ttl_hours" mapstructure:"redis_ttl_hours"`
	LoadTimeoutSecs int    `yaml:"load_timeout_secs" mapstructure:"load_timeout_secs"`
}

// CircuitConfig configures the circuit breakers around the directory,
// review and census collaborators.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from ./config.yaml or
// $HOME/.config/dealscout/config.yaml, then the environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches the
// default locations; a named file that does not exist is an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/dealscout")
	}

	v.SetEnvPrefix("DEALSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("source.primary", PrimaryNone)
	v.SetDefault("source.default_limit", 100)
	v.SetDefault("source.directory.rate_limit", 5)
	v.SetDefault("source.directory.timeout_secs", 20)
	v.SetDefault("source.directory.retry_attempts", 3)
	v.SetDefault("source.directory.retry_backoff_ms", 250)
	v.SetDefault("source.postgres.table", "directory_businesses")
	v.SetDefault("signals.concurrency", 8)
	v.SetDefault("signals.call_timeout_secs", 10)
	v.SetDefault("signals.website_rate_limit", 10)
	v.SetDefault("signals.review_rate_limit", 5)
	v.SetDefault("signals.market", true)
	v.SetDefault("signals.places.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("signals.webprobe.timeout_secs", 8)
	v.SetDefault("signals.webprobe.user_agent", "dealscout/1.0 (+https://sellsadvisors.com)")
	v.SetDefault("demographic.ttl_hours", 24)
	v.SetDefault("demographic.max_entries", 2000)
	v.SetDefault("demographic.redis_ttl_hours", 168)
	v.SetDefault("demographic.load_timeout_secs", 30)
	v.SetDefault("circuit.failure_threshold", 5)
	v.SetDefault("circuit.reset_timeout_secs", 30)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. Known commands: "fetch",
// "serve", "market".
func (c *Config) Validate(command string) error {
	var errs []string

	switch command {
	case "fetch", "serve":
		errs = append(errs, c.validateSources()...)
		if c.Signals.Concurrency <= 0 {
			errs = append(errs, "signals.concurrency must be > 0")
		}
		if c.Signals.CallTimeoutSecs < 0 {
			errs = append(errs, "signals.call_timeout_secs must be >= 0")
		}
		if command == "serve" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
			errs = append(errs, fmt.Sprintf("server.port must be between 1 and 65535 (got %d)", c.Server.Port))
		}
	case "market":
	default:
		return eris.Errorf("config: unknown command %q", command)
	}

	if c.Demographic.MaxEntries < 0 {
		errs = append(errs, "demographic.max_entries must be >= 0")
	}
	if c.Demographic.TTLHours < 0 {
		errs = append(errs, "demographic.ttl_hours must be >= 0")
	}
	if c.Demographic.LoadTimeoutSecs < 0 {
		errs = append(errs, "demographic.load_timeout_secs must be >= 0")
	}
	if c.Circuit.FailureThreshold < 0 || c.Circuit.ResetTimeoutSecs < 0 {
		errs = append(errs, "circuit.failure_threshold and circuit.reset_timeout_secs must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s validation failed: %s", command, strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateSources() []string {
	var errs []string
	switch c.Source.Primary {
	case PrimaryNone, "":
	case PrimaryDirectory:
		if c.Source.Directory.BaseURL == "" {
			errs = append(errs, "source.directory.base_url is required")
		}
		if c.Source.Directory.Key == "" {
			errs = append(errs, "source.directory.key is required")
		}
	case PrimaryPostgres:
		if c.Source.Postgres.DatabaseURL == "" {
			errs = append(errs, "source.postgres.database_url is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("source.primary must be one of none, directory, postgres (got %q)", c.Source.Primary))
	}
	if c.Source.DefaultLimit < 0 {
		errs = append(errs, "source.default_limit must be >= 0")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
