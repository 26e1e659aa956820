package models

import (
	"fmt"
	"strings"
	"time"
)

// MTimeframe is the sampling granularity of a candle series.
type MTimeframe string

const (
	TimeframeM1 MTimeframe = "M1"
	TimeframeH1 MTimeframe = "H1"
	TimeframeD1 MTimeframe = "D1"
	TimeframeW1 MTimeframe = "W1"

	DefaultTimeframe = TimeframeD1
)

// Timeframes lists the supported timeframes, finest first.
var Timeframes = []MTimeframe{TimeframeM1, TimeframeH1, TimeframeD1, TimeframeW1}

// ParseTimeframe accepts M1, H1, D1 or W1 (case-insensitive).
func ParseTimeframe(s string) (MTimeframe, error) {
	tf := MTimeframe(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Timeframes {
		if tf == known {
			return tf, nil
		}
	}
	return "", fmt.Errorf("unknown timeframe %q", s)
}

// MCandle is one OHLC sample.
type MCandle struct {
	Timestamp int64     `json:"timestamp"` // seconds since epoch
	Time      time.Time `json:"time"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
}

// MChartKey binds a chart to one symbol and timeframe.
type MChartKey struct {
	Symbol    string     `json:"symbol"`
	Timeframe MTimeframe `json:"timeframe"`
}

func (k MChartKey) String() string {
	return k.Symbol + "@" + string(k.Timeframe)
}
