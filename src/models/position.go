package models

// MTradePosition aggregates the open trades of one symbol.
type MTradePosition struct {
	EntryPrice     float64 `json:"entry_price"`
	Gain           float64 `json:"gain"`
	GainPercentage float64 `json:"gain_percentage"`
	CountTrade     float64 `json:"count_trade"` // opaque, the ledger may report fractional counts
	Volume         float64 `json:"volume"`
}

// MRawPosition is a single open ticket as reported by some ledgers.
type MRawPosition struct {
	Symbol       string  `json:"symbol"`
	Volume       float64 `json:"volume"`
	Profit       float64 `json:"profit"`
	PriceOpen    float64 `json:"price_open"`
	PriceCurrent float64 `json:"price_current"`
}
