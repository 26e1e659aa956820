package dashboard

import (
	"math"
	"testing"

	"market-watchlist/src/models"

	"github.com/stretchr/testify/assert"
)

func TestFixed(t *testing.T) {
	assert.Equal(t, "1.1000", fixed(1.1, 4))
	assert.Equal(t, "0.01", fixed(0.005, 2))
	assert.Equal(t, "-0.20", fixed(-0.2, 2))
	assert.Equal(t, "150", fixed(149.5, 0))
	assert.Equal(t, "3", fixed(3, -1))
	assert.Equal(t, "", fixed(math.NaN(), 2))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$50.00", formatMoney(50, "usd"))
	assert.Equal(t, "$1,234.50", formatMoney(1234.5, "USD"))
	assert.Equal(t, "-$12.50", formatMoney(-12.5, "USD"))
	assert.Equal(t, "50.00 XYZ", formatMoney(50, "xyz"))
	assert.Equal(t, "", formatMoney(math.Inf(1), "USD"))
}

func TestBuildCardIncompleteAsset(t *testing.T) {
	card := buildCard(models.MAssetView{Symbol: "X", Digits: 2, Incomplete: true}, "USD")

	assert.Empty(t, card.PriceText)
	assert.Empty(t, card.ChangeText)
	assert.Empty(t, card.PointsText)

	card = buildCard(models.MAssetView{Symbol: "X", Price: 3, Digits: 2, Incomplete: true}, "USD")
	assert.Equal(t, "3.00", card.PriceText)
	assert.Empty(t, card.ChangeText)
}
