package interfaces

import "time"

// -----------------------------------------------------------------------------
// IMarketGate decides whether a polling tick is worth running.
// -----------------------------------------------------------------------------

type IMarketGate interface {
	AnyMarketOpen(now time.Time) bool
}
