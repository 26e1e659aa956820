package utils

import (
	"testing"
	"time"

	"market-watchlist/src/logger"
	"market-watchlist/src/models"

	"github.com/stretchr/testify/assert"
)

func newTestLogger() *logger.Logger {
	return logger.NewLogger(&models.MConfig{LogLevel: "ERROR"}, "UtilsTest")
}

func TestFallbackCalendarHours(t *testing.T) {
	cal := newFallbackCalendar("test")
	ny := cal.Timezone

	assert.True(t, cal.IsOpenOnMinute(time.Date(2025, 1, 15, 9, 30, 0, 0, ny)))
	assert.True(t, cal.IsOpenOnMinute(time.Date(2025, 1, 15, 15, 59, 0, 0, ny)))
	assert.False(t, cal.IsOpenOnMinute(time.Date(2025, 1, 15, 9, 29, 0, 0, ny)))
	assert.False(t, cal.IsOpenOnMinute(time.Date(2025, 1, 15, 16, 0, 0, 0, ny)))
	assert.False(t, cal.IsOpenOnMinute(time.Date(2025, 1, 18, 12, 0, 0, 0, ny)))
	assert.False(t, cal.IsTradingDay(time.Date(2025, 1, 19, 12, 0, 0, 0, ny)))
}

func TestMarketGateNYSE(t *testing.T) {
	gate := NewMarketGate([]string{"XNYS"}, newTestLogger())

	wednesdayMorningNY := time.Date(2025, 1, 15, 15, 0, 0, 0, time.UTC)
	saturday := time.Date(2025, 1, 18, 15, 0, 0, 0, time.UTC)

	assert.Contains(t, gate.Calendars, "xnys")
	assert.True(t, gate.AnyMarketOpen(wednesdayMorningNY))
	assert.False(t, gate.AnyMarketOpen(saturday))
}

func TestMarketGateAnyOfSeveral(t *testing.T) {
	gate := &MarketGate{Logger: newTestLogger(), Calendars: map[string]*TradingCalendar{
		"a": newFallbackCalendar("a"),
		"b": {MIC: "b", Fallback: true, Timezone: time.FixedZone("UTC+9", 9*3600)},
	}}

	// 10:00 in UTC+9 on a Wednesday, New York is still on Tuesday evening.
	now := time.Date(2025, 1, 15, 1, 0, 0, 0, time.UTC)

	assert.True(t, gate.AnyMarketOpen(now))
	assert.False(t, gate.Calendars["a"].IsOpenOnMinute(now))
}

func TestMarketGateWithoutCalendarsStaysOpen(t *testing.T) {
	gate := NewMarketGate(nil, newTestLogger())

	assert.True(t, gate.AnyMarketOpen(time.Date(2025, 1, 18, 12, 0, 0, 0, time.UTC)))
}
