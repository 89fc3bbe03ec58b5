// Package config loads server configuration from defaults, an optional YAML
// file and RMFAUDIT_-prefixed environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "RMFAUDIT"

// Question bank sources.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
	SourceMemory   = "memory"
)

// Audit sinks.
const (
	SinkMemory   = "memory"
	SinkKafka    = "kafka"
	SinkPostgres = "postgres"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	QuestionBank QuestionBankConfig `mapstructure:"question_bank"`
	Postgres     PostgresConfig     `mapstructure:"postgres"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	Audit        AuditConfig        `mapstructure:"audit"`
	Registry     RegistryConfig     `mapstructure:"registry"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type QuestionBankConfig struct {
	Source string `mapstructure:"source"`
	// Path of a YAML bank; empty uses the embedded default bank.
	Path             string        `mapstructure:"path"`
	Timeout          time.Duration `mapstructure:"timeout"`
	BreakerThreshold int           `mapstructure:"breaker_threshold"`
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	Warmup           bool          `mapstructure:"warmup"`
}

type PostgresConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// RedisConfig enables the question bank cache when URL is set.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type KafkaConfig struct {
	Brokers           []string `mapstructure:"brokers"`
	Topic             string   `mapstructure:"topic"`
	ClientID          string   `mapstructure:"client_id"`
	Partitions        int32    `mapstructure:"partitions"`
	ReplicationFactor int16    `mapstructure:"replication_factor"`
}

type AuditConfig struct {
	Sink       string `mapstructure:"sink"`
	BufferSize int    `mapstructure:"buffer_size"`
}

// RegistryConfig bounds how long idle sessions and runs are retained.
type RegistryConfig struct {
	RetentionTTL time.Duration `mapstructure:"retention_ttl"`
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Defaults returns the default value for every key, which also registers the
// key for environment lookup.
func Defaults() map[string]any {
	return map[string]any{
		"server.addr":                     ":8080",
		"server.read_header_timeout":      5 * time.Second,
		"server.read_timeout":             15 * time.Second,
		"server.write_timeout":            15 * time.Second,
		"server.idle_timeout":             60 * time.Second,
		"server.shutdown_timeout":         10 * time.Second,
		"log.level":                       "info",
		"log.format":                      "json",
		"question_bank.source":            SourceFile,
		"question_bank.path":              "",
		"question_bank.timeout":           5 * time.Second,
		"question_bank.breaker_threshold": 5,
		"question_bank.breaker_cooldown":  30 * time.Second,
		"question_bank.cache_ttl":         10 * time.Minute,
		"question_bank.warmup":            true,
		"postgres.url":                    "",
		"postgres.max_conns":              10,
		"postgres.min_conns":              1,
		"postgres.max_conn_lifetime":      time.Hour,
		"redis.url":                       "",
		"redis.pool_size":                 10,
		"redis.min_idle_conns":            2,
		"redis.dial_timeout":              5 * time.Second,
		"redis.read_timeout":              3 * time.Second,
		"redis.write_timeout":             3 * time.Second,
		"kafka.brokers":                   []string{},
		"kafka.topic":                     "rmf-audit-events",
		"kafka.client_id":                 "rmfaudit",
		"kafka.partitions":                3,
		"kafka.replication_factor":        1,
		"audit.sink":                      SinkMemory,
		"audit.buffer_size":               1024,
		"registry.retention_ttl":          24 * time.Hour,
		"rate_limit.enabled":              true,
		"rate_limit.requests":             120,
		"rate_limit.window":               time.Minute,
		"metrics.enabled":                 true,
	}
}

// Load resolves the configuration. path may be empty.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read configuration: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c Config) Validate() error {
	switch c.QuestionBank.Source {
	case SourceFile, SourceMemory:
	case SourcePostgres:
		if c.Postgres.URL == "" {
			return errors.New("question_bank.source=postgres requires postgres.url")
		}
	default:
		return fmt.Errorf("unknown question_bank.source %q", c.QuestionBank.Source)
	}

	switch c.Audit.Sink {
	case SinkMemory:
	case SinkKafka:
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("audit.sink=kafka requires kafka.brokers")
		}
	case SinkPostgres:
		if c.Postgres.URL == "" {
			return errors.New("audit.sink=postgres requires postgres.url")
		}
	default:
		return fmt.Errorf("unknown audit.sink %q", c.Audit.Sink)
	}

	if c.QuestionBank.Timeout <= 0 {
		return errors.New("question_bank.timeout must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return errors.New("rate_limit requires positive requests and window")
	}
	return nil
}
