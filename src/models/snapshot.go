package models

import "time"

// Feed status values published with every snapshot.
const (
	StatusLoading = "LOADING" // nothing applied yet
	StatusLive    = "LIVE"
	StatusStale   = "STALE" // last cycle failed, Assets holds the last good data
	StatusError   = "ERROR" // failed before any success
)

// MSnapshot is the state published by the polling scheduler after each applied cycle.
type MSnapshot struct {
	Generation    uint64                    `json:"generation"`
	Status        string                    `json:"status"`
	Assets        []MAssetView              `json:"assets"`
	Positions     map[string]MTradePosition `json:"positions"`
	LastError     string                    `json:"last_error,omitempty"`
	ErrorKind     string                    `json:"error_kind,omitempty"`
	UpdatedAt     time.Time                 `json:"updated_at"`
	LastSuccessAt time.Time                 `json:"last_success_at"`
}

// FindAsset returns the asset view for symbol, if present.
func (s MSnapshot) FindAsset(symbol string) (MAssetView, bool) {
	for _, a := range s.Assets {
		if a.Symbol == symbol {
			return a, true
		}
	}
	return MAssetView{}, false
}
