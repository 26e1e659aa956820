// Package merge combines the quote feed and the trade ledger into per-symbol asset views.
package merge

import (
	"math"

	"market-watchlist/src/models"
)

// PointsChange converts a daily percentage change into price points.
// Non-finite inputs or results yield 0 so nothing undefined reaches rendering.
func PointsChange(price, dailyChangePercent float64) float64 {
	if !finite(price) || !finite(dailyChangePercent) {
		return 0
	}
	points := price * dailyChangePercent / 100
	if !finite(points) {
		return 0
	}
	return points
}

// -----------------------------------------------------------------------------

// Merge returns one view per quote, in quote order. Positions are attached by
// symbol; ledger entries for symbols outside the quote feed are ignored.
func Merge(quotes []models.MAssetQuote, positions map[string]models.MTradePosition) []models.MAssetView {
	views := make([]models.MAssetView, 0, len(quotes))

	for _, q := range quotes {
		view := models.MAssetView{
			Symbol:       q.Symbol,
			Spread:       finiteOrZero(q.Spread),
			Digits:       q.Digits,
			TradeAllowed: q.TradeAllowed,
		}
		if view.Digits < 0 {
			view.Digits = 0
		}

		priceKnown := q.Price != nil && finite(*q.Price)
		changeKnown := q.DailyChangePercent != nil && finite(*q.DailyChangePercent)
		if priceKnown {
			view.Price = *q.Price
		}
		if changeKnown {
			view.DailyChangePercent = *q.DailyChangePercent
		}
		if priceKnown && changeKnown {
			view.PointsChange = PointsChange(view.Price, view.DailyChangePercent)
		} else {
			view.Incomplete = true
		}

		if pos, ok := positions[q.Symbol]; ok {
			p := sanitizePosition(pos)
			view.Position = &p
		}

		views = append(views, view)
	}

	return views
}

// -----------------------------------------------------------------------------

// AggregatePositions folds open tickets into one position per symbol: summed
// volume and gain, volume-weighted entry price and the ticket count.
// Symbols whose total volume is zero are dropped.
func AggregatePositions(raw []models.MRawPosition) map[string]models.MTradePosition {
	type acc struct {
		volume   float64
		gain     float64
		weighted float64
		count    int
	}

	accs := make(map[string]*acc)
	for _, r := range raw {
		if r.Symbol == "" || !finite(r.Volume) || !finite(r.Profit) || !finite(r.PriceOpen) {
			continue
		}
		a, ok := accs[r.Symbol]
		if !ok {
			a = &acc{}
			accs[r.Symbol] = a
		}
		a.volume += r.Volume
		a.gain += r.Profit
		a.weighted += r.PriceOpen * r.Volume
		a.count++
	}

	result := make(map[string]models.MTradePosition, len(accs))
	for symbol, a := range accs {
		if a.volume == 0 {
			continue
		}
		entry := a.weighted / a.volume
		gainPct := 0.0
		if cost := entry * a.volume; cost != 0 {
			gainPct = finiteOrZero(a.gain / cost * 100)
		}
		result[symbol] = models.MTradePosition{
			EntryPrice:     entry,
			Gain:           a.gain,
			GainPercentage: gainPct,
			CountTrade:     float64(a.count),
			Volume:         a.volume,
		}
	}
	return result
}

// -----------------------------------------------------------------------------

func sanitizePosition(p models.MTradePosition) models.MTradePosition {
	return models.MTradePosition{
		EntryPrice:     finiteOrZero(p.EntryPrice),
		Gain:           finiteOrZero(p.Gain),
		GainPercentage: finiteOrZero(p.GainPercentage),
		CountTrade:     finiteOrZero(p.CountTrade),
		Volume:         finiteOrZero(p.Volume),
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteOrZero(f float64) float64 {
	if finite(f) {
		return f
	}
	return 0
}
