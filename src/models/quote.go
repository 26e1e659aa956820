package models

// MAssetQuote is one instrument of the quoting service universe.
// Price and DailyChangePercent stay nil when the feed omits them.
type MAssetQuote struct {
	Symbol             string   `json:"symbol"`
	Price              *float64 `json:"price"`
	DailyChangePercent *float64 `json:"daily_change"`
	Spread             float64  `json:"spread"`
	Digits             int      `json:"digits"`
	TradeAllowed       bool     `json:"trade_allowed"`
}
