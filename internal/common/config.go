// Package common provides shared utilities for Scripwatch
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Scripwatch
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Scraper     ScraperConfig `toml:"scraper"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds paths for the two storage areas.
type StorageConfig struct {
	Internal AreaConfig `toml:"internal"` // Batch-run summaries + settings KV (BadgerHold)
	RefData  AreaConfig `toml:"refdata"`  // Scrip master CSV files
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds exchange client configurations
type ClientsConfig struct {
	BSE    ExchangeConfig `toml:"bse"`
	NSE    ExchangeConfig `toml:"nse"`
	Gemini GeminiConfig   `toml:"gemini"`
}

// ExchangeConfig holds configuration for one exchange endpoint
type ExchangeConfig struct {
	BaseURL   string `toml:"base_url"`
	SiteURL   string `toml:"site_url"` // Session bootstrap / referer origin
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *ExchangeConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// ScraperConfig bounds the pagination controller.
type ScraperConfig struct {
	MaxDepth        int    `toml:"max_depth"`
	PageDelay       string `toml:"page_delay"` // polite delay between page calls
	RefreshInterval string `toml:"refresh_interval"`
}

// GetPageDelay parses and returns the inter-page delay duration
func (c *ScraperConfig) GetPageDelay() time.Duration {
	d, err := time.ParseDuration(c.PageDelay)
	if err != nil {
		return 350 * time.Millisecond
	}
	return d
}

// GetRefreshInterval parses and returns the background refresh interval
func (c *ScraperConfig) GetRefreshInterval() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return 1 * time.Hour
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string `toml:"level"`
	Format   string `toml:"format"`
	FilePath string `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8085,
		},
		Storage: StorageConfig{
			Internal: AreaConfig{Path: "data/internal"},
			RefData:  AreaConfig{Path: "data/refdata"},
		},
		Clients: ClientsConfig{
			BSE: ExchangeConfig{
				BaseURL:   "https://api.bseindia.com/BseIndiaAPI/api",
				SiteURL:   "https://www.bseindia.com",
				RateLimit: 3,
				Timeout:   "30s",
			},
			NSE: ExchangeConfig{
				BaseURL:   "https://www.nseindia.com/api",
				SiteURL:   "https://www.nseindia.com",
				RateLimit: 2,
				Timeout:   "30s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Scraper: ScraperConfig{
			MaxDepth:        998,
			PageDelay:       "350ms",
			RefreshInterval: "1h",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "console",
			FilePath: "",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SCRIPWATCH_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("SCRIPWATCH_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("SCRIPWATCH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("SCRIPWATCH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("SCRIPWATCH_DATA_PATH"); path != "" {
		config.Storage.Internal.Path = filepath.Join(path, "internal")
		config.Storage.RefData.Path = filepath.Join(path, "refdata")
	}

	if depth := os.Getenv("SCRIPWATCH_MAX_DEPTH"); depth != "" {
		if d, err := strconv.Atoi(depth); err == nil && d > 0 {
			config.Scraper.MaxDepth = d
		}
	}

	if v := os.Getenv("SCRIPWATCH_GEMINI_API_KEY"); v != "" {
		config.Clients.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && config.Clients.Gemini.APIKey == "" {
		config.Clients.Gemini.APIKey = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
