package mt5

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"market-watchlist/src/helpers"
	"market-watchlist/src/interfaces"
	"market-watchlist/src/logger"
	"market-watchlist/src/merge"
	"market-watchlist/src/models"
)

// QuoteServiceSource reads quotes, open positions and candle history from the
// MT5 bridge HTTP service.
type QuoteServiceSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewQuoteServiceSource(cfg *models.MConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *QuoteServiceSource {
	return &QuoteServiceSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

func (s *QuoteServiceSource) Name() string {
	return "mt5:" + s.Config.QuoteService.BaseURL
}

// -----------------------------------------------------------------------------

// FetchQuotes returns the full instrument universe in service order.
func (s *QuoteServiceSource) FetchQuotes(ctx context.Context) ([]models.MAssetQuote, error) {
	body, err := s.Network.Get(ctx, s.endpoint(s.Config.QuoteService.AssetsPath), nil)
	if err != nil {
		return nil, err
	}
	quotes, err := parseAssetsResponse(body)
	if err != nil {
		return nil, err
	}
	s.Logger.Debug("Fetched %d asset quote(s)", len(quotes))
	return quotes, nil
}

// -----------------------------------------------------------------------------

// FetchPositions returns the aggregated open positions keyed by symbol.
func (s *QuoteServiceSource) FetchPositions(ctx context.Context) (map[string]models.MTradePosition, error) {
	body, err := s.Network.Get(ctx, s.endpoint(s.Config.QuoteService.PositionsPath), nil)
	if err != nil {
		return nil, err
	}
	return parsePositionsResponse(body)
}

// -----------------------------------------------------------------------------

// FetchHistory returns up to history_count candles for symbol, oldest first.
func (s *QuoteServiceSource) FetchHistory(ctx context.Context, symbol string, timeframe models.MTimeframe) ([]models.MCandle, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, helpers.NewValidationError("symbol cannot be empty")
	}

	params := map[string]string{
		"timeframe": string(timeframe),
		"count":     strconv.Itoa(s.Config.QuoteService.HistoryCount),
	}
	path := strings.TrimRight(s.Config.QuoteService.HistoryPath, "/") + "/" + url.PathEscape(symbol)

	body, err := s.Network.Get(ctx, s.endpoint(path), params)
	if err != nil {
		return nil, err
	}
	candles, err := parseHistoryResponse(symbol, body)
	if err != nil {
		return nil, err
	}
	s.Logger.Debug("Fetched %d %s candle(s) for %s", len(candles), timeframe, symbol)
	return candles, nil
}

// -----------------------------------------------------------------------------

func (s *QuoteServiceSource) endpoint(path string) string {
	base := strings.TrimRight(s.Config.QuoteService.BaseURL, "/")
	if path == "" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// -----------------------------------------------------------------------------
// Wire formats
// -----------------------------------------------------------------------------

type assetsResponse struct {
	Assets *[]models.MAssetQuote `json:"assets"`
}

type positionsResponse struct {
	Positions json.RawMessage `json:"positions"`
}

type historyResponse struct {
	Data *[][]*float64 `json:"data"`
}

// -----------------------------------------------------------------------------

func parseAssetsResponse(data []byte) ([]models.MAssetQuote, error) {
	var resp assetsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, helpers.NewMalformedResponseError("assets: json unmarshal failed", err)
	}
	if resp.Assets == nil {
		return nil, helpers.NewMalformedResponseError("assets: missing \"assets\" array", nil)
	}

	quotes := make([]models.MAssetQuote, 0, len(*resp.Assets))
	for i, q := range *resp.Assets {
		if strings.TrimSpace(q.Symbol) == "" {
			return nil, helpers.NewMalformedResponseError(fmt.Sprintf("assets: entry %d has no symbol", i), nil)
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// -----------------------------------------------------------------------------

// parsePositionsResponse accepts either a map of aggregated positions keyed by
// symbol or an array of raw tickets, which is aggregated here.
func parsePositionsResponse(data []byte) (map[string]models.MTradePosition, error) {
	var resp positionsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, helpers.NewMalformedResponseError("positions: json unmarshal failed", err)
	}

	raw := strings.TrimSpace(string(resp.Positions))
	switch {
	case raw == "" || raw == "null":
		return nil, helpers.NewMalformedResponseError("positions: missing \"positions\" field", nil)

	case strings.HasPrefix(raw, "{"):
		var positions map[string]models.MTradePosition
		if err := json.Unmarshal(resp.Positions, &positions); err != nil {
			return nil, helpers.NewMalformedResponseError("positions: invalid position map", err)
		}
		return positions, nil

	case strings.HasPrefix(raw, "["):
		var tickets []models.MRawPosition
		if err := json.Unmarshal(resp.Positions, &tickets); err != nil {
			return nil, helpers.NewMalformedResponseError("positions: invalid ticket list", err)
		}
		return merge.AggregatePositions(tickets), nil

	default:
		return nil, helpers.NewMalformedResponseError("positions: unexpected shape", nil)
	}
}

// -----------------------------------------------------------------------------

// parseHistoryResponse maps [time, open, high, low, close, ...] rows to
// candles sorted by time. Extra columns (volume, spread) are ignored.
func parseHistoryResponse(symbol string, data []byte) ([]models.MCandle, error) {
	var resp historyResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, helpers.NewMalformedResponseError("history "+symbol+": json unmarshal failed", err)
	}
	if resp.Data == nil {
		return nil, helpers.NewMalformedResponseError("history "+symbol+": missing \"data\" array", nil)
	}

	rows := *resp.Data
	candles := make([]models.MCandle, 0, len(rows))
	for i, row := range rows {
		if len(row) < 5 {
			return nil, helpers.NewMalformedResponseError(
				fmt.Sprintf("history %s: row %d has %d values, want at least 5", symbol, i, len(row)), nil)
		}
		values := make([]float64, 5)
		for j := 0; j < 5; j++ {
			if row[j] == nil || math.IsNaN(*row[j]) || math.IsInf(*row[j], 0) {
				return nil, helpers.NewMalformedResponseError(
					fmt.Sprintf("history %s: row %d column %d is not a number", symbol, i, j), nil)
			}
			values[j] = *row[j]
		}

		ts := int64(values[0])
		candles = append(candles, models.MCandle{
			Timestamp: ts,
			Time:      time.Unix(ts, 0).UTC(),
			Open:      values[1],
			High:      values[2],
			Low:       values[3],
			Close:     values[4],
		})
	}

	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Timestamp < candles[j].Timestamp
	})
	return candles, nil
}
