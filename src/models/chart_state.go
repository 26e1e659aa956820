package models

import "time"

const (
	ChartCandlestick = "candlestick"
	ChartLine        = "line"
)

// MChartState is the observable state of a chart data adapter.
type MChartState struct {
	Key        MChartKey `json:"key"`
	SeriesKey  MChartKey `json:"series_key"` // key the candles were fetched for
	Candles    []MCandle `json:"candles"`
	Loading    bool      `json:"loading"`
	LastError  string    `json:"last_error,omitempty"`
	ChartType  string    `json:"chart_type"`
	Generation uint64    `json:"generation"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MChartPoint is one renderable sample: Y holds [o,h,l,c] for candlesticks, [close] for lines.
type MChartPoint struct {
	X     int64     `json:"x"` // unix milliseconds
	Y     []float64 `json:"y"`
	Label string    `json:"label"`
}

// MChartRender is a chart ready for display.
type MChartRender struct {
	Key       MChartKey     `json:"key"`
	ChartType string        `json:"chart_type"`
	Points    []MChartPoint `json:"points"`
	Loading   bool          `json:"loading"`
	Error     string        `json:"error,omitempty"`
	Stale     bool          `json:"stale"` // points belong to a previous key
}
