package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"

	CatalogPostgres = "postgres"
	CatalogSQLite   = "sqlite"
)

// Config holds every runtime setting. Values come from an optional YAML file
// named by CONFIG_FILE, then environment variables, which win.
type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	StoreBackend    string `yaml:"storeBackend"`
	MongoURI        string `yaml:"mongoUri"`
	MongoDB         string `yaml:"mongoDb"`
	TestsCollection string `yaml:"testsCollection"`

	CatalogDriver string `yaml:"catalogDriver"`
	CatalogDSN    string `yaml:"catalogDsn"`

	RedisAddr           string `yaml:"redisAddr"`
	NotifyChannelPrefix string `yaml:"notifyChannelPrefix"`
	NotifyWorkers       int    `yaml:"notifyWorkers"`
	NotifyQueueSize     int    `yaml:"notifyQueueSize"`

	AuthServiceURL    string        `yaml:"authServiceUrl"`
	ResultsServiceURL string        `yaml:"resultsServiceUrl"`
	UpstreamTimeout   time.Duration `yaml:"upstreamTimeout"`

	JWTSecret    string   `yaml:"jwtSecret"`
	TestLinkBase string   `yaml:"testLinkBase"`
	CORSOrigins  []string `yaml:"corsOrigins"`
}

func defaults() *Config {
	return &Config{
		Port:                "8080",
		LogLevel:            "info",
		StoreBackend:        StoreMemory,
		MongoDB:             "testadmin",
		TestsCollection:     "tests",
		CatalogDriver:       CatalogPostgres,
		NotifyChannelPrefix: "notifications.",
		NotifyWorkers:       2,
		NotifyQueueSize:     256,
		AuthServiceURL:      "http://localhost:8081/api/auth",
		ResultsServiceURL:   "http://localhost:8082/api",
		UpstreamTimeout:     5 * time.Second,
		TestLinkBase:        "http://localhost:3000/test/",
		CORSOrigins:         []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// LoadConfig builds the configuration and validates it.
func LoadConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.StoreBackend = strings.ToLower(getEnvOrDefault("STORE_BACKEND", cfg.StoreBackend))
	cfg.MongoURI = getEnvOrDefault("MONGO_URI", cfg.MongoURI)
	cfg.MongoDB = getEnvOrDefault("MONGO_DB", cfg.MongoDB)
	cfg.TestsCollection = getEnvOrDefault("TESTS_COLLECTION", cfg.TestsCollection)
	cfg.CatalogDriver = strings.ToLower(getEnvOrDefault("CATALOG_DRIVER", cfg.CatalogDriver))
	cfg.CatalogDSN = getEnvOrDefault("CATALOG_DSN", cfg.CatalogDSN)
	cfg.RedisAddr = getEnvOrDefault("REDIS_ADDR", cfg.RedisAddr)
	cfg.NotifyChannelPrefix = getEnvOrDefault("NOTIFY_CHANNEL_PREFIX", cfg.NotifyChannelPrefix)
	cfg.NotifyWorkers = getEnvInt("NOTIFY_WORKERS", cfg.NotifyWorkers)
	cfg.NotifyQueueSize = getEnvInt("NOTIFY_QUEUE_SIZE", cfg.NotifyQueueSize)
	cfg.AuthServiceURL = getEnvOrDefault("AUTH_SERVICE_URL", cfg.AuthServiceURL)
	cfg.ResultsServiceURL = getEnvOrDefault("RESULTS_SERVICE_URL", cfg.ResultsServiceURL)
	cfg.UpstreamTimeout = getEnvDuration("UPSTREAM_TIMEOUT", cfg.UpstreamTimeout)
	cfg.JWTSecret = getEnvOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.TestLinkBase = getEnvOrDefault("TEST_LINK_BASE", cfg.TestLinkBase)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	if cfg.CatalogDSN == "" && cfg.CatalogDriver == CatalogPostgres {
		cfg.CatalogDSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			getEnvOrDefault("POSTGRES_HOST", "localhost"),
			getEnvOrDefault("POSTGRES_USER", "postgres"),
			getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			getEnvOrDefault("POSTGRES_DB", "postgres"),
			getEnvOrDefault("POSTGRES_PORT", "5432"),
			getEnvOrDefault("POSTGRES_SSLMODE", "disable"))
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.StoreBackend {
	case StoreMemory:
	case StoreMongo:
		if cfg.MongoURI == "" {
			return errors.New("MONGO_URI is required when STORE_BACKEND=mongo")
		}
	default:
		return errors.New("unsupported store backend: " + cfg.StoreBackend + ". Currently supported: memory, mongo")
	}

	switch cfg.CatalogDriver {
	case CatalogPostgres, CatalogSQLite:
	default:
		return errors.New("unsupported catalog driver: " + cfg.CatalogDriver + ". Currently supported: postgres, sqlite")
	}
	if cfg.CatalogDSN == "" {
		return errors.New("CATALOG_DSN is required")
	}

	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if cfg.NotifyWorkers < 1 || cfg.NotifyQueueSize < 1 {
		return errors.New("NOTIFY_WORKERS and NOTIFY_QUEUE_SIZE must be positive")
	}
	if cfg.UpstreamTimeout <= 0 {
		return errors.New("UPSTREAM_TIMEOUT must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(in string) []string {
	var out []string
	for _, part := range strings.Split(in, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
