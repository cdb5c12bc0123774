package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "zero target",
			mutate: func(cfg *Config) {
				cfg.TargetCount = 0
			},
			wantErr: "target count",
		},
		{
			name: "zero attempts",
			mutate: func(cfg *Config) {
				cfg.MaxAttempts = 0
			},
			wantErr: "max attempts",
		},
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "invalid url format",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "negative retry delay",
			mutate: func(cfg *Config) {
				cfg.RetryDelay = -time.Second
			},
			wantErr: "retry delay",
		},
		{
			name: "negative cache",
			mutate: func(cfg *Config) {
				cfg.CacheSize = -1
			},
			wantErr: "cache size",
		},
		{
			name: "empty output dir",
			mutate: func(cfg *Config) {
				cfg.OutputDir = ""
			},
			wantErr: "output dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if got, want := cfg.StartURL(), "https://books.toscrape.com/catalogue/page-1.html"; got != want {
		t.Fatalf("start url = %q, want %q", got, want)
	}
	if got := cfg.CSVPath(); got != filepath.Join("data", "output", "books.csv") {
		t.Fatalf("csv path = %q", got)
	}
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.yaml")
	content := "target_count: 40\ninclude_details: true\nretry_delay: 500ms\noutput_dir: out\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("load file: %v", err)
	}
	if cfg.TargetCount != 40 || !cfg.IncludeDetails {
		t.Fatalf("target/details = %d/%v, want 40/true", cfg.TargetCount, cfg.IncludeDetails)
	}
	if cfg.RetryDelay != 500*time.Millisecond {
		t.Fatalf("retry delay = %v, want 500ms", cfg.RetryDelay)
	}
	if cfg.OutputDir != "out" {
		t.Fatalf("output dir = %q, want out", cfg.OutputDir)
	}
	if cfg.MaxAttempts != 3 {
		t.Fatalf("max attempts = %d, want default 3", cfg.MaxAttempts)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BOOKS_TARGET", "12")
	t.Setenv("BOOKS_DETAILS", "true")
	t.Setenv("BOOKS_OUTPUT_DIR", "  /tmp/books  ")
	t.Setenv("BOOKS_METRICS_ADDR", "")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.TargetCount != 12 || !cfg.IncludeDetails || cfg.OutputDir != "/tmp/books" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.MetricsAddr != "" {
		t.Fatalf("empty env value should not override, got %q", cfg.MetricsAddr)
	}

	t.Setenv("BOOKS_TARGET", "many")
	if err := DefaultConfig().ApplyEnv(); err == nil || !strings.Contains(err.Error(), "BOOKS_TARGET") {
		t.Fatalf("expected BOOKS_TARGET error, got %v", err)
	}
}
