package interfaces

import (
	"context"
	"market-watchlist/src/models"
)

// -----------------------------------------------------------------------------
// IQuoteFetcher returns the full instrument universe with live prices.
// -----------------------------------------------------------------------------

type IQuoteFetcher interface {
	FetchQuotes(ctx context.Context) ([]models.MAssetQuote, error)
}

// -----------------------------------------------------------------------------
// ITradeLedgerFetcher returns open-position metrics keyed by symbol.
// A symbol without open trades is simply absent from the map.
// -----------------------------------------------------------------------------

type ITradeLedgerFetcher interface {
	FetchPositions(ctx context.Context) (map[string]models.MTradePosition, error)
}

// -----------------------------------------------------------------------------
// IHistoryFetcher returns candles for one symbol and timeframe, oldest first.
// -----------------------------------------------------------------------------

type IHistoryFetcher interface {
	FetchHistory(ctx context.Context, symbol string, timeframe models.MTimeframe) ([]models.MCandle, error)
}

// -----------------------------------------------------------------------------
// IDataSource is a quoting service able to serve all three feeds.
// -----------------------------------------------------------------------------

type IDataSource interface {
	IQuoteFetcher
	ITradeLedgerFetcher
	IHistoryFetcher

	// Name returns the unique identifier of the source
	Name() string
}
