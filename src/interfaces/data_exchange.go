package interfaces

import "market-watchlist/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger pushes dashboard views to external listeners.
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes a view to every connected listener.
	Broadcast(view models.MDashboardView)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
