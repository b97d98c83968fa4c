package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultCORSOrigin is the Vite dev server the front-end runs on
const DefaultCORSOrigin = "http://localhost:5173"

// Config holds all configuration
type Config struct {
	Database DatabaseConfig
	Migrate  bool
	HTTPAddr string
	CORS     CORSConfig
	Log      LogConfig
	Tasks    TasksConfig
	Metrics  MetricsConfig
}

// DatabaseConfig holds relational store configuration
type DatabaseConfig struct {
	Driver             string
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// CORSConfig holds cross-origin policy configuration
type CORSConfig struct {
	AllowOrigins []string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// TasksConfig holds task queue configuration
type TasksConfig struct {
	BrokerURL        string
	ResultBackendURL string
	ResultTTLSec     int
	Concurrency      int
}

// MetricsConfig holds metrics collector configuration
type MetricsConfig struct {
	CollectIntervalSec int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			Driver:             getEnv("DB_DRIVER", DriverMySQL),
			URL:                getEnv("DATABASE_URL", ""),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Migrate:  getEnv("MIGRATE", "0") == "1",
		HTTPAddr: getEnv("HTTP_ADDR", ":8000"),
		CORS: CORSConfig{
			AllowOrigins: splitList(getEnv("CORS_ALLOW_ORIGINS", DefaultCORSOrigin)),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Tasks: TasksConfig{
			BrokerURL:        getEnv("BROKER_URL", "redis://localhost:6379/0"),
			ResultBackendURL: getEnv("RESULT_BACKEND_URL", "redis://localhost:6379/0"),
			ResultTTLSec:     getEnvInt("TASK_RESULT_TTL_SEC", 86400),
			Concurrency:      getEnvInt("TASK_WORKER_CONCURRENCY", 4),
		},
		Metrics: MetricsConfig{
			CollectIntervalSec: getEnvInt("METRICS_COLLECT_INTERVAL_SEC", 30),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// LoadFromINI loads configuration from INI file with environment variable override
func LoadFromINI(iniPath string) (*Config, error) {
	_ = godotenv.Load()

	cfgFile, err := ini.Load(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load INI file: %w", err)
	}

	// Priority: ENV > INI > default
	getValue := func(envKey, iniSection, iniKey, defaultValue string) string {
		if value := os.Getenv(envKey); value != "" {
			return value
		}
		if value := cfgFile.Section(iniSection).Key(iniKey).String(); value != "" {
			return value
		}
		return defaultValue
	}

	getValueInt := func(envKey, iniSection, iniKey string, defaultValue int) int {
		if value := os.Getenv(envKey); value != "" {
			if intValue, err := strconv.Atoi(value); err == nil {
				return intValue
			}
		}
		if cfgFile.Section(iniSection).HasKey(iniKey) {
			if value, err := cfgFile.Section(iniSection).Key(iniKey).Int(); err == nil {
				return value
			}
		}
		return defaultValue
	}

	getValueBool := func(envKey, iniSection, iniKey string, defaultValue bool) bool {
		if value := os.Getenv(envKey); value != "" {
			return value == "1" || value == "true"
		}
		if value, err := cfgFile.Section(iniSection).Key(iniKey).Bool(); err == nil {
			return value
		}
		return defaultValue
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Driver:             getValue("DB_DRIVER", "database", "driver", DriverMySQL),
			URL:                getValue("DATABASE_URL", "database", "url", ""),
			MaxOpenConns:       getValueInt("DB_MAX_OPEN_CONNS", "database", "max_open_conns", 20),
			MaxIdleConns:       getValueInt("DB_MAX_IDLE_CONNS", "database", "max_idle_conns", 5),
			ConnMaxLifetimeSec: getValueInt("DB_CONN_MAX_LIFETIME_SEC", "database", "conn_max_lifetime_sec", 300),
		},
		Migrate:  getValueBool("MIGRATE", "app", "migrate", false),
		HTTPAddr: getValue("HTTP_ADDR", "http", "addr", ":8000"),
		CORS: CORSConfig{
			AllowOrigins: splitList(getValue("CORS_ALLOW_ORIGINS", "http", "cors_allow_origins", DefaultCORSOrigin)),
		},
		Log: LogConfig{
			Level:  getValue("LOG_LEVEL", "log", "level", "info"),
			Format: getValue("LOG_FORMAT", "log", "format", "text"),
		},
		Tasks: TasksConfig{
			BrokerURL:        getValue("BROKER_URL", "tasks", "broker_url", "redis://localhost:6379/0"),
			ResultBackendURL: getValue("RESULT_BACKEND_URL", "tasks", "result_backend_url", "redis://localhost:6379/0"),
			ResultTTLSec:     getValueInt("TASK_RESULT_TTL_SEC", "tasks", "result_ttl_sec", 86400),
			Concurrency:      getValueInt("TASK_WORKER_CONCURRENCY", "tasks", "concurrency", 4),
		},
		Metrics: MetricsConfig{
			CollectIntervalSec: getValueInt("METRICS_COLLECT_INTERVAL_SEC", "metrics", "collect_interval_sec", 30),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %s", c.Log.Level)
	}

	if c.Tasks.Concurrency < 1 {
		c.Tasks.Concurrency = 1
	}
	if c.Metrics.CollectIntervalSec < 1 {
		c.Metrics.CollectIntervalSec = 30
	}

	return nil
}
