// Package config loads service configuration from an optional YAML file,
// .env files and the process environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"certforge/internal/logger"
)

type Config struct {
	Env            string        `yaml:"env"`
	ListenAddr     string        `yaml:"listen_addr"`
	DatabaseURL    string        `yaml:"database_url"`
	ComposeWorkers int           `yaml:"compose_workers"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	AutoMigrate    bool          `yaml:"auto_migrate"`
	Logging        logger.Config `yaml:"logging"`
	Storage        Storage       `yaml:"storage"`
	Quality        Quality       `yaml:"quality"`
}

// Storage describes the object store holding photos, signatures and logos.
type Storage struct {
	PublicBaseURL string `yaml:"public_base_url"`
	Bucket        string `yaml:"bucket"`
	// AllowedDomain restricts asset fetches to one registrable domain (eTLD+1). Empty allows any host.
	AllowedDomain     string        `yaml:"allowed_domain"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	MaxAssetBytes     int64         `yaml:"max_asset_bytes"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout"`
	FetchAttempts     int           `yaml:"fetch_attempts"`
}

type Quality struct {
	// Threshold is the score below which a completion report is logged and the draft watermark applied.
	Threshold int `yaml:"threshold"`
}

const (
	defaultListenAddr    = ":8080"
	defaultPollInterval  = 500 * time.Millisecond
	defaultBucket        = "inspection-photos"
	defaultRPS           = 8
	defaultBurst         = 4
	defaultMaxAssetBytes = 10 << 20
	defaultFetchTimeout  = 15 * time.Second
	defaultFetchAttempts = 3
	defaultThreshold     = 70
)

// ErrDatabaseURL is returned by Validate when no database is configured.
var ErrDatabaseURL = errors.New("DATABASE_URL not set")

// Load reads the YAML file at path (a missing file is not an error), loads
// .env files and applies environment overrides and defaults.
func Load(path string) (Config, error) {
	var cfg Config
	if err := loadEnvFiles(); err != nil {
		return cfg, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	setDefaults(&cfg)
	return cfg, nil
}

// Validate reports configuration the HTTP service cannot run without.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrDatabaseURL
	}
	if c.Quality.Threshold < 0 || c.Quality.Threshold > 100 {
		return fmt.Errorf("quality.threshold: must be within 0..100, got %d", c.Quality.Threshold)
	}
	return nil
}

// Path returns CONFIG_PATH or the default config file name.
func Path() string {
	return getenv("CONFIG_PATH", "config.yml")
}

func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Env = getenv("APP_ENV", cfg.Env)
	cfg.ListenAddr = getenv("LISTEN_ADDR", cfg.ListenAddr)
	cfg.DatabaseURL = getenv("DATABASE_URL", cfg.DatabaseURL)
	cfg.ComposeWorkers = getenvInt("COMPOSE_WORKERS", cfg.ComposeWorkers)
	cfg.PollInterval = getenvDuration("POLL_INTERVAL", cfg.PollInterval)
	cfg.AutoMigrate = getenvBool("AUTO_MIGRATE", cfg.AutoMigrate)
	cfg.Logging.Level = getenv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Storage.PublicBaseURL = getenv("STORAGE_PUBLIC_URL", cfg.Storage.PublicBaseURL)
	cfg.Storage.Bucket = getenv("STORAGE_BUCKET", cfg.Storage.Bucket)
	cfg.Storage.AllowedDomain = getenv("STORAGE_ALLOWED_DOMAIN", cfg.Storage.AllowedDomain)
	cfg.Storage.FetchTimeout = getenvDuration("STORAGE_FETCH_TIMEOUT", cfg.Storage.FetchTimeout)
	cfg.Quality.Threshold = getenvInt("QUALITY_THRESHOLD", cfg.Quality.Threshold)
}

func setDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = defaultBucket
	}
	if cfg.Storage.RequestsPerSecond <= 0 {
		cfg.Storage.RequestsPerSecond = defaultRPS
	}
	if cfg.Storage.Burst <= 0 {
		cfg.Storage.Burst = defaultBurst
	}
	if cfg.Storage.MaxAssetBytes <= 0 {
		cfg.Storage.MaxAssetBytes = defaultMaxAssetBytes
	}
	if cfg.Storage.FetchTimeout <= 0 {
		cfg.Storage.FetchTimeout = defaultFetchTimeout
	}
	if cfg.Storage.FetchAttempts <= 0 {
		cfg.Storage.FetchAttempts = defaultFetchAttempts
	}
	if cfg.Quality.Threshold == 0 {
		cfg.Quality.Threshold = defaultThreshold
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}
