package chart

import (
	"time"

	"market-watchlist/src/models"
)

// Render reshapes adapter state into display points. Candlestick points carry
// [open, high, low, close]; line points carry [close]. X is unix milliseconds.
func Render(state models.MChartState, f Formatter) models.MChartRender {
	tf := state.SeriesKey.Timeframe
	if tf == "" {
		tf = state.Key.Timeframe
	}

	points := make([]models.MChartPoint, 0, len(state.Candles))
	for _, c := range state.Candles {
		at := time.Unix(c.Timestamp, 0)
		p := models.MChartPoint{
			X:     c.Timestamp * 1000,
			Label: f.Axis(at, tf),
		}
		if state.ChartType == models.ChartLine {
			p.Y = []float64{c.Close}
		} else {
			p.Y = []float64{c.Open, c.High, c.Low, c.Close}
		}
		points = append(points, p)
	}

	return models.MChartRender{
		Key:       state.Key,
		ChartType: state.ChartType,
		Points:    points,
		Loading:   state.Loading,
		Error:     state.LastError,
		Stale:     len(state.Candles) > 0 && state.SeriesKey != state.Key,
	}
}
