package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"market-watchlist/src/helpers"
	"market-watchlist/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// Default returns the configuration used for every key the YAML file leaves out.
func Default() *Config {
	return &Config{MConfig: &models.MConfig{
		Name:     "market-watchlist",
		Host:     "127.0.0.1",
		Port:     8090,
		LogLevel: "INFO",
		Storage: models.MStorageConfig{
			DBType: "sqlite",
			DBPath: "watchlist.db",
		},
		Network: models.MNetworkConfig{
			RequestTimeout: 5,
			MaxRetries:     0,
			UserAgent:      "market-watchlist/1.0",
		},
		QuoteService: models.MQuoteServiceConfig{
			BaseURL:       "http://localhost:8000",
			AssetsPath:    "/assets",
			PositionsPath: "/positions",
			HistoryPath:   "/historical-data",
			HistoryCount:  100,
		},
		Polling: models.MPollingConfig{
			IntervalSeconds: 5,
			MarketCalendars: []string{"xnys"},
		},
		Chart: models.MChartConfig{
			DefaultTimeframe: string(models.DefaultTimeframe),
			Timezone:         "UTC",
		},
		Dashboard: models.MDashboardConfig{
			TradeOverlay:    true,
			AccountCurrency: "USD",
		},
	}}
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, helpers.NewConfigurationError(fmt.Sprintf("failed to read config file '%s'", configPath), err)
	}
	return Parse(data)
}

// -----------------------------------------------------------------------------

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config.MConfig); err != nil {
		return nil, helpers.NewConfigurationError("failed to parse config from YAML", err)
	}

	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Storage
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	case "memory":
	case "":
		return fmt.Errorf("database type cannot be empty")
	default:
		return fmt.Errorf("unsupported database type: %s", c.Storage.DBType)
	}

	// Network
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Network.Enabled && c.Network.Proxy == "" {
		return fmt.Errorf("proxy must be set when network.enabled is true")
	}

	// Quote service
	if c.QuoteService.BaseURL == "" {
		return fmt.Errorf("quote service base url cannot be empty")
	}
	if c.QuoteService.HistoryCount <= 0 {
		return fmt.Errorf("history count must be greater than 0")
	}

	// Polling
	if c.Polling.IntervalSeconds <= 0 {
		return fmt.Errorf("polling interval must be greater than 0")
	}
	if c.Polling.PauseWhenMarketsClosed && len(c.Polling.MarketCalendars) == 0 {
		return fmt.Errorf("at least one market calendar is required to pause when markets are closed")
	}

	// Chart
	if _, err := models.ParseTimeframe(c.Chart.DefaultTimeframe); err != nil {
		return fmt.Errorf("invalid default timeframe: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid chart timezone: %w", err)
	}

	if strings.TrimSpace(c.Dashboard.AccountCurrency) == "" {
		return fmt.Errorf("account currency cannot be empty")
	}

	return nil
}

// -----------------------------------------------------------------------------

// PollInterval returns the polling cadence.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Polling.IntervalSeconds) * time.Second
}

// DefaultTimeframe returns the chart timeframe used for new charts.
func (c *Config) DefaultTimeframe() models.MTimeframe {
	tf, err := models.ParseTimeframe(c.Chart.DefaultTimeframe)
	if err != nil {
		return models.DefaultTimeframe
	}
	return tf
}

// Location resolves the chart time zone; empty means UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.Chart.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Chart.Timezone)
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
