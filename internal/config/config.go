package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dlfarias/teamvault/internal/utils"
)

const (
	// ConfigFileName is the name of the config file
	ConfigFileName = "config.json"
	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "TEAMVAULT_"
)

// StorageBackend selects where downloaded files land
type StorageBackend string

const (
	StorageS3    StorageBackend = "s3"
	StorageLocal StorageBackend = "local"
)

// Config holds application configuration
type Config struct {
	// BaseURL is the remote API root
	BaseURL string `json:"baseURL"`

	// TokenFile is an optional path to a file holding the bearer token
	TokenFile string `json:"tokenFile"`

	// MaxRetries is the maximum number of attempts for API calls
	MaxRetries int `json:"maxRetries"`

	// RetryBaseDelay is the base delay for exponential backoff in milliseconds
	RetryBaseDelay int `json:"retryBaseDelay"`

	// RequestTimeout is the HTTP request timeout in seconds
	RequestTimeout int `json:"requestTimeout"`

	// DownloadConcurrency caps simultaneous file downloads across all teams
	DownloadConcurrency int `json:"downloadConcurrency"`

	// ForbiddenRetries is how many times a denied channel listing is retried
	// before falling back to the primary channel
	ForbiddenRetries int `json:"forbiddenRetries"`

	// ForbiddenRetryDelay is the fixed delay between those retries in milliseconds
	ForbiddenRetryDelay int `json:"forbiddenRetryDelay"`

	// CatalogDSN selects the catalog backend: postgres:// for PostgreSQL,
	// anything else is treated as a SQLite file path
	CatalogDSN string `json:"catalogDSN"`

	// StorageBackend is "s3" or "local"
	StorageBackend StorageBackend `json:"storageBackend"`

	// S3 settings, used when StorageBackend is "s3"
	S3Endpoint  string `json:"s3Endpoint"`
	S3Region    string `json:"s3Region"`
	S3Bucket    string `json:"s3Bucket"`
	S3AccessKey string `json:"s3AccessKey"`
	S3SecretKey string `json:"s3SecretKey"`
	S3UseSSL    bool   `json:"s3UseSSL"`

	// LocalRoot is the mirror directory, used when StorageBackend is "local"
	LocalRoot string `json:"localRoot"`

	// KeyPrefix namespaces all storage keys for this deployment
	KeyPrefix string `json:"keyPrefix"`

	// Semester and ClassYear label every collection recorded in this run
	Semester  string `json:"semester"`
	ClassYear int    `json:"classYear"`

	// LogLevel sets logging verbosity (quiet, normal, verbose, debug)
	LogLevel string `json:"logLevel"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	now := time.Now()
	semester := "1"
	if now.Month() >= time.July {
		semester = "2"
	}
	return &Config{
		BaseURL:             "https://graph.microsoft.com/v1.0",
		MaxRetries:          utils.DefaultMaxAttempts,
		RetryBaseDelay:      utils.DefaultRetryBaseDelayMs,
		RequestTimeout:      60,
		DownloadConcurrency: utils.DefaultDownloadConcurrency,
		ForbiddenRetries:    utils.DefaultForbiddenRetries,
		ForbiddenRetryDelay: utils.DefaultForbiddenRetryDelayMs,
		CatalogDSN:          "teamvault.db",
		StorageBackend:      StorageLocal,
		S3UseSSL:            true,
		LocalRoot:           "mirror",
		KeyPrefix:           "backup_teams",
		Semester:            semester,
		ClassYear:           now.Year(),
		LogLevel:            "normal",
	}
}

// Load loads configuration with precedence: env vars > config file > defaults.
// An explicit path overrides the default config location; a missing file at
// the default location is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = GetConfigPath(); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadFromFile(path); err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv(EnvPrefix + "BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvPrefix + "TOKEN_FILE"); v != "" {
		c.TokenFile = v
	}
	if v := os.Getenv(EnvPrefix + "MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv(EnvPrefix + "RETRY_BASE_DELAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RetryBaseDelay = n
		}
	}
	if v := os.Getenv(EnvPrefix + "REQUEST_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RequestTimeout = n
		}
	}
	if v := os.Getenv(EnvPrefix + "DOWNLOAD_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DownloadConcurrency = n
		}
	}
	if v := os.Getenv(EnvPrefix + "FORBIDDEN_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ForbiddenRetries = n
		}
	}
	if v := os.Getenv(EnvPrefix + "FORBIDDEN_RETRY_DELAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ForbiddenRetryDelay = n
		}
	}
	if v := os.Getenv(EnvPrefix + "CATALOG_DSN"); v != "" {
		c.CatalogDSN = v
	}
	if v := os.Getenv(EnvPrefix + "STORAGE_BACKEND"); v != "" {
		c.StorageBackend = StorageBackend(v)
	}
	if v := os.Getenv(EnvPrefix + "S3_ENDPOINT"); v != "" {
		c.S3Endpoint = v
	}
	if v := os.Getenv(EnvPrefix + "S3_REGION"); v != "" {
		c.S3Region = v
	}
	if v := os.Getenv(EnvPrefix + "S3_BUCKET"); v != "" {
		c.S3Bucket = v
	}
	if v := os.Getenv(EnvPrefix + "S3_ACCESS_KEY"); v != "" {
		c.S3AccessKey = v
	}
	if v := os.Getenv(EnvPrefix + "S3_SECRET_KEY"); v != "" {
		c.S3SecretKey = v
	}
	if v := os.Getenv(EnvPrefix + "S3_USE_SSL"); v != "" {
		c.S3UseSSL = parseBool(v)
	}
	if v := os.Getenv(EnvPrefix + "LOCAL_ROOT"); v != "" {
		c.LocalRoot = v
	}
	if v := os.Getenv(EnvPrefix + "KEY_PREFIX"); v != "" {
		c.KeyPrefix = v
	}
	if v := os.Getenv(EnvPrefix + "SEMESTER"); v != "" {
		c.Semester = v
	}
	if v := os.Getenv(EnvPrefix + "CLASS_YEAR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ClassYear = n
		}
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Save writes the configuration to the default config file
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL must not be empty")
	}
	if c.MaxRetries < 1 || c.MaxRetries > 10 {
		return fmt.Errorf("max retries must be between 1 and 10, got: %d", c.MaxRetries)
	}
	if c.RetryBaseDelay < 100 || c.RetryBaseDelay > utils.MaxRetryDelayMs {
		return fmt.Errorf("retry base delay must be between 100ms and %dms, got: %d",
			utils.MaxRetryDelayMs, c.RetryBaseDelay)
	}
	if c.RequestTimeout < 1 || c.RequestTimeout > 3600 {
		return fmt.Errorf("request timeout must be between 1 and 3600 seconds, got: %d", c.RequestTimeout)
	}
	if c.DownloadConcurrency < 1 || c.DownloadConcurrency > 64 {
		return fmt.Errorf("download concurrency must be between 1 and 64, got: %d", c.DownloadConcurrency)
	}
	if c.ForbiddenRetries < 0 {
		return fmt.Errorf("forbidden retries must be non-negative, got: %d", c.ForbiddenRetries)
	}
	if c.CatalogDSN == "" {
		return fmt.Errorf("catalog DSN must not be empty")
	}

	switch c.StorageBackend {
	case StorageS3:
		if c.S3Endpoint == "" || c.S3Bucket == "" {
			return fmt.Errorf("s3 storage requires s3Endpoint and s3Bucket")
		}
	case StorageLocal:
		if c.LocalRoot == "" {
			return fmt.Errorf("local storage requires localRoot")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s (must be 's3' or 'local')", c.StorageBackend)
	}

	if c.Semester == "" {
		return fmt.Errorf("semester must not be empty")
	}
	if c.ClassYear < 2000 || c.ClassYear > 2100 {
		return fmt.Errorf("class year out of range: %d", c.ClassYear)
	}

	validLogLevels := []string{"quiet", "normal", "verbose", "debug"}
	valid := false
	for _, level := range validLogLevels {
		if c.LogLevel == level {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	return nil
}

// GetRetryBaseDelay returns the retry base delay as a duration
func (c *Config) GetRetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelay) * time.Millisecond
}

// GetForbiddenRetryDelay returns the denied-listing retry delay as a duration
func (c *Config) GetForbiddenRetryDelay() time.Duration {
	return time.Duration(c.ForbiddenRetryDelay) * time.Millisecond
}

// GetRequestTimeout returns the request timeout as a duration
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "teamvault"), nil
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
