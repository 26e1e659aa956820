package merge

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"market-watchlist/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestMergeEURUSDWithPosition(t *testing.T) {
	quotes := []models.MAssetQuote{{
		Symbol: "EURUSD", Price: f(1.1000), DailyChangePercent: f(0.50),
		Digits: 4, Spread: 0.0002, TradeAllowed: true,
	}}
	position := models.MTradePosition{EntryPrice: 1.0950, Gain: 50.0, GainPercentage: 0.46, CountTrade: 3, Volume: 1.0}

	views := Merge(quotes, map[string]models.MTradePosition{"EURUSD": position})

	require.Len(t, views, 1)
	v := views[0]
	assert.Equal(t, "EURUSD", v.Symbol)
	assert.InDelta(t, 0.0055, v.PointsChange, 1e-9)
	assert.Equal(t, 4, v.Digits)
	assert.True(t, v.TradeAllowed)
	assert.False(t, v.Incomplete)
	require.True(t, v.HasPosition())
	assert.Equal(t, position, *v.Position)
}

func TestMergeWithoutPosition(t *testing.T) {
	quotes := []models.MAssetQuote{{Symbol: "GBPUSD", Price: f(1.27), DailyChangePercent: f(-0.2), Digits: 5}}

	views := Merge(quotes, map[string]models.MTradePosition{})

	require.Len(t, views, 1)
	assert.False(t, views[0].HasPosition())
	assert.Nil(t, views[0].Position)
}

func TestMergeIgnoresLedgerOnlySymbols(t *testing.T) {
	quotes := []models.MAssetQuote{{Symbol: "EURUSD", Price: f(1.1), DailyChangePercent: f(0.1)}}
	positions := map[string]models.MTradePosition{
		"USDJPY": {EntryPrice: 150, Volume: 2},
	}

	views := Merge(quotes, positions)

	require.Len(t, views, 1)
	assert.Equal(t, "EURUSD", views[0].Symbol)
	assert.Nil(t, views[0].Position)
}

func TestMergeNilInputs(t *testing.T) {
	assert.Empty(t, Merge(nil, nil))

	views := Merge([]models.MAssetQuote{{Symbol: "X", Price: f(2), DailyChangePercent: f(1)}}, nil)
	require.Len(t, views, 1)
	assert.InDelta(t, 0.02, views[0].PointsChange, 1e-12)
}

func TestMergeMissingFieldsFailClosed(t *testing.T) {
	testCases := []struct {
		name  string
		quote models.MAssetQuote
		price float64
		pct   float64
	}{
		{"missing price", models.MAssetQuote{Symbol: "A", DailyChangePercent: f(1.5)}, 0, 1.5},
		{"missing change", models.MAssetQuote{Symbol: "B", Price: f(10)}, 10, 0},
		{"missing both", models.MAssetQuote{Symbol: "C"}, 0, 0},
		{"NaN price", models.MAssetQuote{Symbol: "D", Price: f(math.NaN()), DailyChangePercent: f(1)}, 0, 1},
		{"Inf change", models.MAssetQuote{Symbol: "E", Price: f(3), DailyChangePercent: f(math.Inf(1))}, 3, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			views := Merge([]models.MAssetQuote{tc.quote}, nil)
			require.Len(t, views, 1)
			v := views[0]
			assert.True(t, v.Incomplete)
			assert.Equal(t, 0.0, v.PointsChange)
			assert.Equal(t, tc.price, v.Price)
			assert.Equal(t, tc.pct, v.DailyChangePercent)
			assert.False(t, math.IsNaN(v.Price) || math.IsNaN(v.PointsChange))
		})
	}
}

func TestMergeSanitizesPosition(t *testing.T) {
	quotes := []models.MAssetQuote{{Symbol: "A", Price: f(1), DailyChangePercent: f(1)}}
	views := Merge(quotes, map[string]models.MTradePosition{"A": {Gain: math.NaN(), Volume: 2}})

	require.NotNil(t, views[0].Position)
	assert.Equal(t, 0.0, views[0].Position.Gain)
	assert.Equal(t, 2.0, views[0].Position.Volume)
}

// Randomized check of the cardinality, order and points-change properties.
func TestMergeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := rng.Intn(20)
		quotes := make([]models.MAssetQuote, n)
		positions := make(map[string]models.MTradePosition)
		for i := range quotes {
			symbol := fmt.Sprintf("S%02d", i)
			quotes[i] = models.MAssetQuote{
				Symbol:             symbol,
				Price:              f(rng.Float64() * 1000),
				DailyChangePercent: f(rng.NormFloat64() * 3),
				Digits:             rng.Intn(6),
			}
			if rng.Intn(2) == 0 {
				positions[symbol] = models.MTradePosition{Gain: rng.NormFloat64() * 100, Volume: 1}
			}
		}
		positions["ORPHAN"] = models.MTradePosition{Volume: 1}

		views := Merge(quotes, positions)

		require.Len(t, views, n)
		for i, v := range views {
			q := quotes[i]
			assert.Equal(t, q.Symbol, v.Symbol)
			assert.InDelta(t, *q.Price**q.DailyChangePercent/100, v.PointsChange, 1e-9)
			_, hasPos := positions[q.Symbol]
			assert.Equal(t, hasPos, v.HasPosition())
		}
	}
}

func TestMergeRecomputesEveryCall(t *testing.T) {
	quote := models.MAssetQuote{Symbol: "EURUSD", Price: f(1.0), DailyChangePercent: f(1.0)}
	first := Merge([]models.MAssetQuote{quote}, nil)

	quote.Price = f(2.0)
	second := Merge([]models.MAssetQuote{quote}, nil)

	assert.InDelta(t, 0.01, first[0].PointsChange, 1e-12)
	assert.InDelta(t, 0.02, second[0].PointsChange, 1e-12)
}

func TestAggregatePositions(t *testing.T) {
	raw := []models.MRawPosition{
		{Symbol: "EURUSD", Volume: 1.0, Profit: 30, PriceOpen: 1.0900},
		{Symbol: "EURUSD", Volume: 3.0, Profit: 20, PriceOpen: 1.1000},
		{Symbol: "XAUUSD", Volume: 0.5, Profit: -12.5, PriceOpen: 2000},
		{Symbol: "FLAT", Volume: 0, Profit: 1, PriceOpen: 1},
		{Symbol: "", Volume: 1, PriceOpen: 1},
		{Symbol: "BAD", Volume: math.NaN(), PriceOpen: 1},
	}

	got := AggregatePositions(raw)

	require.Len(t, got, 2)
	eur := got["EURUSD"]
	assert.InDelta(t, (1.09*1+1.10*3)/4, eur.EntryPrice, 1e-12)
	assert.InDelta(t, 50, eur.Gain, 1e-12)
	assert.InDelta(t, 4, eur.Volume, 1e-12)
	assert.Equal(t, 2.0, eur.CountTrade)
	assert.InDelta(t, 50/(eur.EntryPrice*4)*100, eur.GainPercentage, 1e-9)

	gold := got["XAUUSD"]
	assert.InDelta(t, 2000, gold.EntryPrice, 1e-12)
	assert.InDelta(t, -1.25, gold.GainPercentage, 1e-12)
}

func TestPointsChange(t *testing.T) {
	assert.InDelta(t, 0.0055, PointsChange(1.1, 0.5), 1e-12)
	assert.InDelta(t, -2.5, PointsChange(250, -1), 1e-12)
	assert.Equal(t, 0.0, PointsChange(math.NaN(), 1))
	assert.Equal(t, 0.0, PointsChange(math.MaxFloat64, 1000))
}
