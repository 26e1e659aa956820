package models

// MConfig Structure
type MConfig struct {
	Name         string              `yaml:"name"`
	Host         string              `yaml:"host"`
	Port         int                 `yaml:"port"`
	LogLevel     string              `yaml:"log_level"`
	Storage      MStorageConfig      `yaml:"storage"`
	Network      MNetworkConfig      `yaml:"network"`
	QuoteService MQuoteServiceConfig `yaml:"quote_service"`
	Polling      MPollingConfig      `yaml:"polling"`
	Chart        MChartConfig        `yaml:"chart"`
	Dashboard    MDashboardConfig    `yaml:"dashboard"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // "sqlite", "postgres" or "memory"
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	Enabled        bool   `yaml:"enabled"` // route requests through Proxy
	Proxy          string `yaml:"proxy"`
	RequestTimeout int    `yaml:"timeout"` // seconds
	MaxRetries     int    `yaml:"retries"`
	UserAgent      string `yaml:"user_agent"`
}

type MQuoteServiceConfig struct {
	BaseURL       string `yaml:"base_url"`
	AssetsPath    string `yaml:"assets_path"`
	PositionsPath string `yaml:"positions_path"`
	HistoryPath   string `yaml:"history_path"`
	HistoryCount  int    `yaml:"history_count"`
}

type MPollingConfig struct {
	IntervalSeconds        int      `yaml:"interval_seconds"`
	PauseWhenMarketsClosed bool     `yaml:"pause_when_markets_closed"`
	MarketCalendars        []string `yaml:"market_calendars"` // ISO 10383 MIC codes
}

type MChartConfig struct {
	DefaultTimeframe string `yaml:"default_timeframe"`
	Locale           string `yaml:"locale"` // empty: follow user preferences
	Timezone         string `yaml:"timezone"`
}

type MDashboardConfig struct {
	TradeOverlay    bool   `yaml:"trade_overlay"`
	AccountCurrency string `yaml:"account_currency"`
}
