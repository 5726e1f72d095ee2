package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"

	JobStoreMemory   = "memory"
	JobStorePostgres = "postgres"

	SinkNone = "none"
	SinkDir  = "dir"
	SinkS3   = "s3"
)

type Config struct {
	Server   ServerConfig
	Scraper  ScraperConfig
	Browser  BrowserConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
	CORSOrigins     []string
}

type ScraperConfig struct {
	FetchMode    string
	Timeout      time.Duration
	UserAgent    string
	BatchSize    int
	BaseURL      string
	ProfilesFile string
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	Locale         string
	ProxyServer    string
	MaxRetries     int
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig is optional. An empty Addr disables event publishing.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

type StorageConfig struct {
	JobStore   string
	SinkType   string
	OutputDir  string
	S3Bucket   string
	S3Region   string
	S3Prefix   string
	S3Endpoint string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			MaxUploadBytes:  int64(getIntOrDefault("SERVER_MAX_UPLOAD_MB", 10)) << 20,
			CORSOrigins:     getStringSliceOrDefault("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Scraper: ScraperConfig{
			FetchMode:    strings.ToLower(getEnvOrDefault("FETCH_MODE", FetchModeHTTP)),
			Timeout:      getDurationOrDefault("SCRAPER_TIMEOUT", 30*time.Second),
			UserAgent:    getEnvOrDefault("SCRAPER_USER_AGENT", ""),
			BatchSize:    getIntOrDefault("BATCH_SIZE", 50),
			BaseURL:      getEnvOrDefault("SITE_BASE_URL", ""),
			ProfilesFile: getEnvOrDefault("SITE_PROFILES_FILE", ""),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "en-US,en;q=0.9,de;q=0.8"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "en-US"),
			ProxyServer:    getEnvOrDefault("BROWSER_PROXY", ""),
			MaxRetries:     getIntOrDefault("BROWSER_MAX_RETRIES", 0),
		},
		Database: DatabaseConfig{
			URL:      getEnvOrDefault("DATABASE_URL", ""),
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getIntOrDefault("DB_PORT", 5432),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", ""),
			DBName:   getEnvOrDefault("DB_NAME", "product_importer"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
			MaxConns: getIntOrDefault("DB_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", ""),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
			Stream:   getEnvOrDefault("REDIS_STREAM", "stream:product_import"),
		},
		Storage: StorageConfig{
			JobStore:   strings.ToLower(getEnvOrDefault("JOB_STORE", JobStoreMemory)),
			SinkType:   strings.ToLower(getEnvOrDefault("SINK_TYPE", SinkDir)),
			OutputDir:  getEnvOrDefault("OUTPUT_DIR", "output"),
			S3Bucket:   getEnvOrDefault("S3_BUCKET", ""),
			S3Region:   getEnvOrDefault("AWS_REGION", "eu-central-1"),
			S3Prefix:   getEnvOrDefault("S3_PREFIX", "imports"),
			S3Endpoint: getEnvOrDefault("S3_ENDPOINT", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Scraper.FetchMode {
	case FetchModeHTTP, FetchModeBrowser:
	default:
		return fmt.Errorf("FETCH_MODE must be %q or %q, got %q", FetchModeHTTP, FetchModeBrowser, c.Scraper.FetchMode)
	}

	if c.Scraper.Timeout <= 0 {
		return fmt.Errorf("SCRAPER_TIMEOUT must be positive")
	}

	if c.Scraper.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be at least 1")
	}

	switch c.Storage.JobStore {
	case JobStoreMemory, JobStorePostgres:
	default:
		return fmt.Errorf("JOB_STORE must be %q or %q, got %q", JobStoreMemory, JobStorePostgres, c.Storage.JobStore)
	}

	switch c.Storage.SinkType {
	case SinkNone, SinkDir:
	case SinkS3:
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when SINK_TYPE is s3")
		}
	default:
		return fmt.Errorf("SINK_TYPE must be one of none, dir, s3, got %q", c.Storage.SinkType)
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
