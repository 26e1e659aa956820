package chart

import (
	"context"
	"strings"
	"sync"
	"time"

	"market-watchlist/src/helpers"
	"market-watchlist/src/interfaces"
	"market-watchlist/src/logger"
	"market-watchlist/src/models"
	"market-watchlist/src/utils"
)

// Adapter keeps the candle series of one chart in sync with its
// (symbol, timeframe) key. Only the response of the latest request is applied.
type Adapter struct {
	History interfaces.IHistoryFetcher
	Logger  *logger.Logger

	parent   context.Context
	now      func() time.Time
	inflight sync.WaitGroup
	updates  *utils.LatestBroadcaster[models.MChartState]

	mu     sync.Mutex
	state  models.MChartState
	cancel context.CancelFunc
	closed bool
}

// -----------------------------------------------------------------------------

// NewAdapter creates an idle candlestick chart. Fetches stop when parent is
// cancelled or Close is called.
func NewAdapter(parent context.Context, history interfaces.IHistoryFetcher, log *logger.Logger) *Adapter {
	return &Adapter{
		History: history,
		Logger:  log,
		parent:  parent,
		now:     time.Now,
		updates: utils.NewLatestBroadcaster[models.MChartState](),
		state:   models.MChartState{ChartType: models.ChartCandlestick},
	}
}

// -----------------------------------------------------------------------------

// SetKey points the chart at key and fetches its series. Setting the key
// already shown, or already loading, does nothing.
func (a *Adapter) SetKey(key models.MChartKey) error {
	key.Symbol = strings.TrimSpace(key.Symbol)
	if key.Symbol == "" {
		return helpers.NewValidationError("chart symbol cannot be empty")
	}
	tf, err := models.ParseTimeframe(string(key.Timeframe))
	if err != nil {
		return helpers.NewValidationError(err.Error())
	}
	key.Timeframe = tf

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return helpers.NewValidationError("chart is closed")
	}
	if key == a.state.Key && (a.state.Loading || a.state.SeriesKey == key) {
		return nil
	}
	a.startFetchLocked(key)
	return nil
}

// SetSymbol keeps the timeframe, or uses the default one for a fresh chart.
func (a *Adapter) SetSymbol(symbol string) error {
	a.mu.Lock()
	tf := a.state.Key.Timeframe
	a.mu.Unlock()

	if tf == "" {
		tf = models.DefaultTimeframe
	}
	return a.SetKey(models.MChartKey{Symbol: symbol, Timeframe: tf})
}

// SetTimeframe keeps the symbol. It fails when no symbol is set yet.
func (a *Adapter) SetTimeframe(tf models.MTimeframe) error {
	a.mu.Lock()
	symbol := a.state.Key.Symbol
	a.mu.Unlock()

	if symbol == "" {
		return helpers.NewValidationError("chart has no symbol")
	}
	return a.SetKey(models.MChartKey{Symbol: symbol, Timeframe: tf})
}

// Reload refetches the current key even if its series is loaded.
func (a *Adapter) Reload() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return helpers.NewValidationError("chart is closed")
	}
	if a.state.Key.Symbol == "" {
		return helpers.NewValidationError("chart has no symbol")
	}
	a.startFetchLocked(a.state.Key)
	return nil
}

// ToggleChartType switches between candlestick and line and returns the new type.
func (a *Adapter) ToggleChartType() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.ChartType == models.ChartLine {
		a.state.ChartType = models.ChartCandlestick
	} else {
		a.state.ChartType = models.ChartLine
	}
	a.publishLocked()
	return a.state.ChartType
}

// -----------------------------------------------------------------------------

// State returns a copy of the current chart state.
func (a *Adapter) State() models.MChartState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.copyStateLocked()
}

// Subscribe streams state changes, newest wins, starting with the current state.
func (a *Adapter) Subscribe() (<-chan models.MChartState, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.updates.Subscribe(a.copyStateLocked())
}

// Close cancels any fetch in flight, drops its result and closes subscriber
// channels. Calling Close more than once is harmless.
func (a *Adapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	a.closed = true
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.updates.Close()
}

// Wait blocks until every fetch started so far has returned.
func (a *Adapter) Wait() {
	a.inflight.Wait()
}

// -----------------------------------------------------------------------------

func (a *Adapter) startFetchLocked(key models.MChartKey) {
	if a.cancel != nil {
		a.cancel()
	}
	ctx, cancel := context.WithCancel(a.parent)
	a.cancel = cancel

	a.state.Generation++
	a.state.Key = key
	a.state.Loading = true
	gen := a.state.Generation
	a.publishLocked()

	a.inflight.Add(1)
	go a.fetch(ctx, gen, key)
}

func (a *Adapter) fetch(ctx context.Context, gen uint64, key models.MChartKey) {
	defer a.inflight.Done()

	candles, err := a.History.FetchHistory(ctx, key.Symbol, key.Timeframe)
	a.apply(gen, key, candles, err)
}

// apply lands a fetch result if it still belongs to the latest request.
func (a *Adapter) apply(gen uint64, key models.MChartKey, candles []models.MCandle, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || gen != a.state.Generation {
		a.Logger.Debug("Discarding %s series (generation %d, current %d)", key, gen, a.state.Generation)
		return
	}

	a.state.Loading = false
	a.state.UpdatedAt = a.now()
	if err != nil {
		a.state.LastError = err.Error()
		a.Logger.Warning("Failed to load %s series: %v", key, err)
	} else {
		a.state.Candles = candles
		a.state.SeriesKey = key
		a.state.LastError = ""
	}
	a.publishLocked()
}

// -----------------------------------------------------------------------------

func (a *Adapter) copyStateLocked() models.MChartState {
	st := a.state
	st.Candles = append([]models.MCandle(nil), a.state.Candles...)
	return st
}

func (a *Adapter) publishLocked() {
	a.updates.Publish(a.copyStateLocked())
}
