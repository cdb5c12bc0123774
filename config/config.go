package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds crawler and report configuration.
type Config struct {
	BaseURL        string        `yaml:"base_url"`
	StartPage      string        `yaml:"start_page"`
	TargetCount    int           `yaml:"target_count"`
	IncludeDetails bool          `yaml:"include_details"`
	MaxAttempts    int           `yaml:"max_attempts"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	Timeout        time.Duration `yaml:"timeout"`
	UserAgent      string        `yaml:"user_agent"`
	CacheSize      int           `yaml:"cache_size"` // 0 disables the fetch cache
	OutputDir      string        `yaml:"output_dir"`
	LogDir         string        `yaml:"log_dir"`
	ReportPath     string        `yaml:"report_path"`
	MetricsAddr    string        `yaml:"metrics_addr"`
	Verbose        bool          `yaml:"verbose"`
}

// DefaultConfig returns the defaults for the demo catalog.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "https://books.toscrape.com/catalogue/",
		StartPage:      "page-1.html",
		TargetCount:    300,
		IncludeDetails: false,
		MaxAttempts:    3,
		RetryDelay:     2 * time.Second,
		Timeout:        10 * time.Second,
		UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		CacheSize:      256,
		OutputDir:      "data/output",
		LogDir:         "data/logs",
		ReportPath:     "data/output/report.pdf",
	}
}

// StartURL is the first catalog page resolved against BaseURL.
func (c *Config) StartURL() string {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return c.BaseURL + c.StartPage
	}
	ref, err := url.Parse(c.StartPage)
	if err != nil {
		return c.BaseURL + c.StartPage
	}
	return base.ResolveReference(ref).String()
}

// CSVPath is the tabular snapshot location.
func (c *Config) CSVPath() string {
	return filepath.Join(c.OutputDir, "books.csv")
}

// JSONPath is the record-oriented snapshot location.
func (c *Config) JSONPath() string {
	return filepath.Join(c.OutputDir, "books.json")
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.StartPage == "" {
		return fmt.Errorf("start page cannot be empty")
	}
	if c.TargetCount <= 0 {
		return fmt.Errorf("target count must be positive")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output dir cannot be empty")
	}
	if c.LogDir == "" {
		return fmt.Errorf("log dir cannot be empty")
	}
	if c.ReportPath == "" {
		return fmt.Errorf("report path cannot be empty")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}

// LoadFile overlays the YAML settings at path onto c. Missing keys keep
// their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %q: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays BOOKS_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	if value, ok, err := EnvInt("BOOKS_TARGET"); err != nil {
		return fmt.Errorf("invalid BOOKS_TARGET: %w", err)
	} else if ok {
		c.TargetCount = value
	}
	if value, ok, err := EnvBool("BOOKS_DETAILS"); err != nil {
		return fmt.Errorf("invalid BOOKS_DETAILS: %w", err)
	} else if ok {
		c.IncludeDetails = value
	}
	if value, ok := EnvString("BOOKS_OUTPUT_DIR"); ok {
		c.OutputDir = value
	}
	if value, ok := EnvString("BOOKS_LOG_DIR"); ok {
		c.LogDir = value
	}
	if value, ok := EnvString("BOOKS_METRICS_ADDR"); ok {
		c.MetricsAddr = value
	}
	return nil
}

// EnvString returns the trimmed value of key if it is set and non-empty.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer.
func EnvInt(key string) (int, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, err
	}
	return parsed, true, nil
}

// EnvBool parses key as a boolean.
func EnvBool(key string) (bool, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return false, false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, false, err
	}
	return parsed, true, nil
}
