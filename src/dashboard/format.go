package dashboard

import (
	"math"
	"strings"

	"market-watchlist/src/models"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// fixed renders v rounded half away from zero to digits decimals.
func fixed(v float64, digits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if digits < 0 {
		digits = 0
	}
	return decimal.NewFromFloat(v).StringFixed(int32(digits))
}

// formatMoney renders amount in the account currency, e.g. "$50.00".
// Unknown currency codes fall back to "50.00 XYZ".
func formatMoney(amount float64, currency string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ""
	}
	code := strings.ToUpper(strings.TrimSpace(currency))
	cur := money.GetCurrency(code)
	if cur == nil {
		return fixed(amount, 2) + " " + code
	}

	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	minor := decimal.NewFromFloat(amount).Mul(factor).Round(0)
	return money.New(minor.IntPart(), code).Display()
}

// -----------------------------------------------------------------------------

// buildCard formats one merged asset for display. Position fields stay empty
// when there is no open position.
func buildCard(asset models.MAssetView, currency string) models.MAssetCard {
	card := models.MAssetCard{Asset: asset}
	if !asset.Incomplete || asset.Price != 0 {
		card.PriceText = fixed(asset.Price, asset.Digits)
	}
	if !asset.Incomplete {
		card.ChangeText = fixed(asset.DailyChangePercent, 2) + "%"
		card.PointsText = fixed(asset.PointsChange, asset.Digits) + " pts"
	}

	if p := asset.Position; p != nil {
		card.EntryPriceText = fixed(p.EntryPrice, asset.Digits)
		card.GainText = formatMoney(p.Gain, currency)
		card.GainPctText = fixed(p.GainPercentage, 2) + "%"
		card.CountTradeText = fixed(p.CountTrade, 2)
		card.VolumeText = fixed(p.Volume, 2)
	}
	return card
}
