package utils

import (
	"sync"
	"time"

	"market-watchlist/src/logger"
)

// MarketGate tells the poller whether any configured exchange is trading.
type MarketGate struct {
	Calendars map[string]*TradingCalendar
	Logger    *logger.Logger
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMarketGate(mics []string, l *logger.Logger) *MarketGate {
	g := &MarketGate{
		Calendars: make(map[string]*TradingCalendar),
		Logger:    l,
	}
	g.SetMarkets(mics)
	return g
}

// -----------------------------------------------------------------------------

// SetMarkets replaces the watched exchanges.
func (g *MarketGate) SetMarkets(mics []string) {
	calendars := make(map[string]*TradingCalendar, len(mics))
	for _, mic := range mics {
		cal := GetCalendar(mic, g.Logger)
		calendars[cal.MIC] = cal
	}

	g.mu.Lock()
	g.Calendars = calendars
	g.mu.Unlock()

	g.Logger.Info("MarketGate: watching %d exchange calendar(s)", len(calendars))
}

// -----------------------------------------------------------------------------

// AnyMarketOpen reports whether at least one watched exchange is open at now.
// With no calendars configured the gate stays open.
func (g *MarketGate) AnyMarketOpen(now time.Time) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(g.Calendars) == 0 {
		return true
	}
	for _, cal := range g.Calendars {
		if cal.IsOpenOnMinute(now) {
			return true
		}
	}
	return false
}
