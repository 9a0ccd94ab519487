package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	CounterMemory = "memory"
	CounterRedis  = "redis"
)

// ConfigError is returned for missing or invalid settings; the process must not start serving.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Key, e.Reason)
}

type AppConfig struct {
	Port        int
	Environment string
	ServiceName string

	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	SQLLogLevel    string

	LokiURL      string
	OTLPEndpoint string
	MetricsPort  int

	RateLimitEnabled bool
	RateLimitConfigs map[string]RateLimitConfig

	EnforceHTTPS bool
	// TrustedProxies lists proxy IPs/CIDRs whose X-Forwarded-For is believed. Empty trusts none.
	TrustedProxies []string

	CounterBackend string
	RedisURL       string

	RequestTimeout time.Duration
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 3000)
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("SERVICE_NAME", "hypertodo")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("SQL_LOG_LEVEL", "")
	v.SetDefault("METRICS_PORT", 0)
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("ENFORCE_HTTPS", false)
	v.SetDefault("COUNTER_BACKEND", CounterMemory)
	v.SetDefault("REQUEST_TIMEOUT", "10s")
}

// NewViper returns a viper instance reading the environment and, when present, envFile.
// An empty envFile means ".env" in the working directory, which may be absent.
func NewViper(envFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	explicit := envFile != ""
	if !explicit {
		envFile = ".env"
	}

	if _, err := os.Stat(envFile); err != nil {
		if explicit {
			return nil, &ConfigError{Key: "env-file", Reason: err.Error()}
		}
		return v, nil
	}

	v.SetConfigFile(envFile)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		return nil, &ConfigError{Key: "env-file", Reason: err.Error()}
	}

	return v, nil
}

// Load builds AppConfig from v. Environment variables win over the env file.
func Load(v *viper.Viper) (*AppConfig, error) {
	timeout, err := time.ParseDuration(v.GetString("REQUEST_TIMEOUT"))

	if err != nil || timeout <= 0 {
		return nil, &ConfigError{Key: "REQUEST_TIMEOUT", Reason: fmt.Sprintf("%q is not a positive duration", v.GetString("REQUEST_TIMEOUT"))}
	}

	cfg := &AppConfig{
		Port:             v.GetInt("PORT"),
		Environment:      v.GetString("ENVIRONMENT"),
		ServiceName:      v.GetString("SERVICE_NAME"),
		DatabaseURL:      strings.TrimSpace(v.GetString("DATABASE_URL")),
		DBMaxOpenConns:   v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:   v.GetInt("DB_MAX_IDLE_CONNS"),
		SQLLogLevel:      v.GetString("SQL_LOG_LEVEL"),
		LokiURL:          v.GetString("LOKI_URL"),
		OTLPEndpoint:     v.GetString("OTLP_ENDPOINT"),
		MetricsPort:      v.GetInt("METRICS_PORT"),
		RateLimitEnabled: v.GetBool("RATE_LIMIT_ENABLED"),
		RateLimitConfigs: DefaultRateLimits(),
		EnforceHTTPS:     v.GetBool("ENFORCE_HTTPS"),
		TrustedProxies:   splitList(v.GetString("TRUSTED_PROXIES")),
		CounterBackend:   strings.ToLower(v.GetString("COUNTER_BACKEND")),
		RedisURL:         v.GetString("REDIS_URL"),
		RequestTimeout:   timeout,
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, &ConfigError{Key: "PORT", Reason: fmt.Sprintf("%d is out of range", cfg.Port)}
	}

	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return nil, &ConfigError{Key: "METRICS_PORT", Reason: fmt.Sprintf("%d is out of range", cfg.MetricsPort)}
	}

	for _, proxy := range cfg.TrustedProxies {
		if net.ParseIP(proxy) != nil {
			continue
		}

		if _, _, err := net.ParseCIDR(proxy); err != nil {
			return nil, &ConfigError{Key: "TRUSTED_PROXIES", Reason: fmt.Sprintf("%q is not an IP or CIDR", proxy)}
		}
	}

	switch cfg.CounterBackend {
	case CounterMemory:
	case CounterRedis:
		if cfg.RedisURL == "" {
			return nil, &ConfigError{Key: "REDIS_URL", Reason: "required when COUNTER_BACKEND=redis"}
		}
	default:
		return nil, &ConfigError{Key: "COUNTER_BACKEND", Reason: fmt.Sprintf("unknown backend %q", cfg.CounterBackend)}
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string

	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}

func DefaultRateLimits() map[string]RateLimitConfig {
	return map[string]RateLimitConfig{
		"POST /add_todo": {
			Requests: 30,
			Window:   time.Minute,
		},
		"PATCH /todo/:id": {
			Requests: 120,
			Window:   time.Minute,
		},
		"DELETE /todo/:id": {
			Requests: 60,
			Window:   time.Minute,
		},
		"POST /counter": {
			Requests: 300,
			Window:   time.Minute,
		},
		"default": {
			Requests: 600,
			Window:   time.Minute,
		},
	}
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Database resolves DATABASE_URL into a driver and the DSN that driver expects.
func (c *AppConfig) Database() (DatabaseConfig, error) {
	return ParseDatabaseURL(c.DatabaseURL)
}

func ParseDatabaseURL(url string) (DatabaseConfig, error) {
	if url == "" {
		return DatabaseConfig{}, &ConfigError{Key: "DATABASE_URL", Reason: "not set"}
	}

	lower := strings.ToLower(url)

	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DatabaseConfig{Driver: DriverPostgres, DSN: url}, nil
	case strings.HasPrefix(lower, "file:"):
		return DatabaseConfig{Driver: DriverSQLite, DSN: url}, nil
	}

	for _, prefix := range []string{"sqlite3://", "sqlite://", "sqlite3:", "sqlite:"} {
		if strings.HasPrefix(lower, prefix) {
			dsn := url[len(prefix):]

			if dsn == "" {
				return DatabaseConfig{}, &ConfigError{Key: "DATABASE_URL", Reason: "sqlite path is empty"}
			}

			return DatabaseConfig{Driver: DriverSQLite, DSN: dsn}, nil
		}
	}

	return DatabaseConfig{}, &ConfigError{Key: "DATABASE_URL", Reason: "unsupported scheme, use postgres://, sqlite:// or file:"}
}

// IsConfigError reports whether err carries a ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}
