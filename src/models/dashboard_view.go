package models

import "time"

// MAssetCard is one rendered watchlist card.
type MAssetCard struct {
	Asset          MAssetView    `json:"asset"`
	Expanded       bool          `json:"expanded"`
	PriceText      string        `json:"price_text"`
	ChangeText     string        `json:"change_text"`
	PointsText     string        `json:"points_text"`
	EntryPriceText string        `json:"entry_price_text"`
	GainText       string        `json:"gain_text"`
	GainPctText    string        `json:"gain_pct_text"`
	CountTradeText string        `json:"count_trade_text"`
	VolumeText     string        `json:"volume_text"`
	Chart          *MChartRender `json:"chart,omitempty"`
}

// MDashboardView is the full render model pushed to clients.
type MDashboardView struct {
	Status      string       `json:"status"`
	LastError   string       `json:"last_error,omitempty"`
	Generation  uint64       `json:"generation"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Selection   []string     `json:"selection"`
	Expanded    string       `json:"expanded,omitempty"`
	Cards       []MAssetCard `json:"cards"`
	Preferences MPreferences `json:"preferences"`
}
