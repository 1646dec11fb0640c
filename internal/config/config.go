package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/shc-api/pkg/messaging/redis"
)

// EnvPrefix prefixes the environment overrides, e.g. SHC_SERVER_PORT.
const EnvPrefix = "shc"

// DefaultPaths are searched for config.yaml when Load is given none.
var DefaultPaths = []string{".", "./config", "/app/config"}

type Config struct {
	Server    ServerConfig    `mapstructure:"server" envconfig:"server"`
	Log       LogConfig       `mapstructure:"log" envconfig:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" envconfig:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors" envconfig:"cors"`
	Redis     RedisConfig     `mapstructure:"redis" envconfig:"redis"`
	Report    ReportConfig    `mapstructure:"report" envconfig:"report"`
	Metrics   MetricsConfig   `mapstructure:"metrics" envconfig:"metrics"`
	Cache     CacheConfig     `mapstructure:"cache" envconfig:"cache"`
	Worker    WorkerConfig    `mapstructure:"worker" envconfig:"worker"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-" ignored:"true"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" envconfig:"port"`
	Mode            string        `mapstructure:"mode" envconfig:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" envconfig:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" envconfig:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" envconfig:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes" envconfig:"max_upload_bytes"`
}

type LogConfig struct {
	Level string `mapstructure:"level" envconfig:"level"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled" envconfig:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" envconfig:"requests_per_second"`
	Burst             int     `mapstructure:"burst" envconfig:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" envconfig:"allowed_origins"`
}

type RedisConfig struct {
	Enabled         bool          `mapstructure:"enabled" envconfig:"enabled"`
	URL             string        `mapstructure:"url" envconfig:"url"`
	ChannelPrefix   string        `mapstructure:"channel_prefix" envconfig:"channel_prefix"`
	MaxRetries      int           `mapstructure:"max_retries" envconfig:"max_retries"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff" envconfig:"retry_backoff"`
	PoolSize        int           `mapstructure:"pool_size" envconfig:"pool_size"`
	MinIdleConns    int           `mapstructure:"min_idle_conns" envconfig:"min_idle_conns"`
	BreakerFailures int           `mapstructure:"breaker_failures" envconfig:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout" envconfig:"breaker_timeout"`
}

type ReportConfig struct {
	FontPath   string `mapstructure:"font_path" envconfig:"font_path"`
	FontFamily string `mapstructure:"font_family" envconfig:"font_family"`
	ClinicName string `mapstructure:"clinic_name" envconfig:"clinic_name"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled" envconfig:"enabled"`
	Namespace string `mapstructure:"namespace" envconfig:"namespace"`
	Path      string `mapstructure:"path" envconfig:"path"`
}

type CacheConfig struct {
	TemplateTTL time.Duration `mapstructure:"template_ttl" envconfig:"template_ttl"`
	CatalogTTL  time.Duration `mapstructure:"catalog_ttl" envconfig:"catalog_ttl"`
}

// WorkerConfig drives cmd/worker, which follows the published case events.
type WorkerConfig struct {
	HealthPort    int           `mapstructure:"health_port" envconfig:"health_port"`
	RetryAttempts int           `mapstructure:"retry_attempts" envconfig:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay" envconfig:"retry_delay"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_upload_bytes", 10<<20)

	v.SetDefault("log.level", "info")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 50)
	v.SetDefault("rate_limit.burst", 100)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.channel_prefix", "shc")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.breaker_failures", 5)
	v.SetDefault("redis.breaker_timeout", 30*time.Second)

	v.SetDefault("report.font_path", "")
	v.SetDefault("report.font_family", "report")
	v.SetDefault("report.clinic_name", "")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "shc")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("cache.template_ttl", time.Hour)
	v.SetDefault("cache.catalog_ttl", 10*time.Minute)

	v.SetDefault("worker.health_port", 8081)
	v.SetDefault("worker.retry_attempts", 5)
	v.SetDefault("worker.retry_delay", 2*time.Second)
}

// Load reads config.yaml from the first of paths that has one (DefaultPaths
// when none are given), then applies SHC_* environment overrides. A missing
// file is not an error; the built-in defaults apply.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = DefaultPaths
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values a server cannot start without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server mode %q", c.Server.Mode)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit requires positive requests_per_second and burst")
	}
	if c.Redis.Enabled && c.Redis.URL == "" {
		return fmt.Errorf("redis.url is required when redis is enabled")
	}
	return nil
}

// BrokerConfig converts the redis section for the message broker.
func (c RedisConfig) BrokerConfig() redis.Config {
	return redis.Config{
		URL:             c.URL,
		MaxRetries:      c.MaxRetries,
		RetryBackoff:    c.RetryBackoff,
		PoolSize:        c.PoolSize,
		MinIdleConns:    c.MinIdleConns,
		BreakerFailures: c.BreakerFailures,
		BreakerTimeout:  c.BreakerTimeout,
	}
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
