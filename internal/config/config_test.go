package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvPrefix+"CONFIG_DIR", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DownloadConcurrency != 4 || cfg.KeyPrefix != "backup_teams" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("an explicitly named missing config must be an error")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"catalogDSN": "postgres://user:pw@localhost/teamvault",
		"storageBackend": "s3",
		"s3Endpoint": "minio.local:9000",
		"s3Bucket": "teams",
		"downloadConcurrency": 8,
		"semester": "1",
		"classYear": 2026
	}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CatalogDSN != "postgres://user:pw@localhost/teamvault" {
		t.Errorf("dsn not loaded: %s", cfg.CatalogDSN)
	}
	if cfg.StorageBackend != StorageS3 || cfg.S3Bucket != "teams" {
		t.Errorf("s3 settings not loaded: %+v", cfg)
	}
	if cfg.DownloadConcurrency != 8 {
		t.Errorf("concurrency not loaded: %d", cfg.DownloadConcurrency)
	}
	// untouched fields keep defaults
	if cfg.MaxRetries != 5 {
		t.Errorf("default not preserved: %d", cfg.MaxRetries)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"downloadConcurrency": 2}`), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPrefix+"DOWNLOAD_CONCURRENCY", "6")
	t.Setenv(EnvPrefix+"SEMESTER", "1")
	t.Setenv(EnvPrefix+"S3_SECRET_KEY", "sekrit")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DownloadConcurrency != 6 {
		t.Errorf("env must win over file, got %d", cfg.DownloadConcurrency)
	}
	if cfg.Semester != "1" || cfg.S3SecretKey != "sekrit" {
		t.Errorf("env values not applied: %+v", cfg)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }},
		{"excess concurrency", func(c *Config) { c.DownloadConcurrency = 100 }},
		{"empty dsn", func(c *Config) { c.CatalogDSN = "" }},
		{"unknown backend", func(c *Config) { c.StorageBackend = "tape" }},
		{"s3 without bucket", func(c *Config) { c.StorageBackend = StorageS3; c.S3Endpoint = "x" }},
		{"empty semester", func(c *Config) { c.Semester = "" }},
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }},
		{"ancient year", func(c *Config) { c.ClassYear = 1970 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDurationGetters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RetryBaseDelay = 2000
	cfg.ForbiddenRetryDelay = 2000
	cfg.RequestTimeout = 60

	if cfg.GetRetryBaseDelay() != 2*time.Second {
		t.Errorf("retry base delay: %v", cfg.GetRetryBaseDelay())
	}
	if cfg.GetForbiddenRetryDelay() != 2*time.Second {
		t.Errorf("forbidden retry delay: %v", cfg.GetForbiddenRetryDelay())
	}
	if cfg.GetRequestTimeout() != time.Minute {
		t.Errorf("request timeout: %v", cfg.GetRequestTimeout())
	}
}
