package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	DB       DBConfig       `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	CORS     CORSConfig     `mapstructure:"cors"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Geo      GeoConfig      `mapstructure:"geo"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	// ConfigFile is the file the values were read from, empty when none was found.
	ConfigFile string `mapstructure:"-"`
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DBConfig holds database specific configuration
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// DSN returns the pgx connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CORSConfig holds CORS specific configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// JWTConfig holds the token signing secret and lifetime.
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // postgres or memory
}

// GeoConfig selects the proximity index backend.
type GeoConfig struct {
	Backend         string  `mapstructure:"backend"` // memory or redis
	DefaultRadiusKm float64 `mapstructure:"default_radius_km"`
	KeyPrefix       string  `mapstructure:"key_prefix"`
}

// LedgerConfig holds the platform fee and withdrawal floor.
type LedgerConfig struct {
	FeeRate       string `mapstructure:"fee_rate"`
	MinWithdrawal int64  `mapstructure:"min_withdrawal"`
}

// KafkaConfig enables event publishing when brokers are set.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// TracingConfig selects the span exporter: none, stdout or otlp.
type TracingConfig struct {
	Exporter    string  `mapstructure:"exporter"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "gigmatch")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	// For production, this SHOULD be overridden by environment variables.
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", 24*time.Hour)
	v.SetDefault("storage.driver", "postgres")
	v.SetDefault("geo.backend", "memory")
	v.SetDefault("geo.default_radius_km", 10.0)
	v.SetDefault("geo.key_prefix", "gigmatch")
	v.SetDefault("ledger.fee_rate", "0.15")
	v.SetDefault("ledger.min_withdrawal", 100)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "gigmatch.events")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("tracing.exporter", "none")
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// Load reads configuration from file and environment variables. An empty path
// searches the usual locations for config.yaml; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
		v.AddConfigPath("/app")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// GIGMATCH_DATABASE_HOST overrides database.host
	v.SetEnvPrefix("GIGMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	// Comma-separated lists from the environment arrive as one element.
	cfg.CORS.AllowedOrigins = splitList(cfg.CORS.AllowedOrigins)
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("storage.driver must be postgres or memory, got %q", c.Storage.Driver)
	}
	switch c.Geo.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("geo.backend must be memory or redis, got %q", c.Geo.Backend)
	}
	if c.Geo.DefaultRadiusKm <= 0 {
		return errors.New("geo.default_radius_km must be positive")
	}
	if c.Ledger.MinWithdrawal < 0 {
		return errors.New("ledger.min_withdrawal must not be negative")
	}
	switch c.Tracing.Exporter {
	case "none", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be none, stdout or otlp, got %q", c.Tracing.Exporter)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return errors.New("tracing.sample_ratio must be between 0 and 1")
	}
	return nil
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
