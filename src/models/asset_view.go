package models

// MAssetView is the merged per-symbol record consumed by the presentation layer.
type MAssetView struct {
	Symbol             string          `json:"symbol"`
	Price              float64         `json:"price"`
	DailyChangePercent float64         `json:"daily_change"`
	PointsChange       float64         `json:"points_change"`
	Spread             float64         `json:"spread"`
	Digits             int             `json:"digits"`
	TradeAllowed       bool            `json:"trade_allowed"`
	Incomplete         bool            `json:"incomplete"` // price or daily change missing in the feed
	Position           *MTradePosition `json:"position,omitempty"`
}

// HasPosition reports whether an open position is attached.
func (v MAssetView) HasPosition() bool {
	return v.Position != nil
}
