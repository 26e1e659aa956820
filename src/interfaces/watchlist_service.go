package interfaces

import (
	"context"

	"market-watchlist/src/models"
)

// -----------------------------------------------------------------------------
// IWatchlistService is the user-facing surface served over HTTP.
// -----------------------------------------------------------------------------

type IWatchlistService interface {
	Add(symbol string) error
	Remove(symbol string) error
	Toggle(symbol string) (bool, error)
	SetTimeframe(symbol string, tf models.MTimeframe) error
	ToggleChartType(symbol string) (string, error)
	Search(query string) []models.MAssetView
	View() models.MDashboardView
	Preferences() models.MPreferences
	SetPreferences(prefs models.MPreferences) error
	Refresh(ctx context.Context) error
}
