package dashboard

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"market-watchlist/src/chart"
	"market-watchlist/src/config"
	"market-watchlist/src/helpers"
	"market-watchlist/src/interfaces"
	"market-watchlist/src/logger"
	"market-watchlist/src/models"
	"market-watchlist/src/scheduler"
	"market-watchlist/src/utils"
	"market-watchlist/src/watchlist"
)

// Dashboard ties the polling scheduler, the persisted watchlist and one chart
// adapter per tracked symbol into a single render model.
type Dashboard struct {
	Config    *config.Config
	Scheduler *scheduler.PollingScheduler
	History   interfaces.IHistoryFetcher
	Selection *watchlist.Selection
	Expansion *watchlist.Expansion
	Prefs     *watchlist.PreferenceStore
	Logger    *logger.Logger

	location *time.Location
	views    *utils.LatestBroadcaster[models.MDashboardView]
	wg       sync.WaitGroup

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	charts  map[string]*chart.Adapter
	stopped bool
}

// -----------------------------------------------------------------------------

func NewDashboard(
	cfg *config.Config,
	sched *scheduler.PollingScheduler,
	history interfaces.IHistoryFetcher,
	store interfaces.IKeyValueStore,
	log *logger.Logger,
) *Dashboard {
	loc, err := cfg.Location()
	if err != nil {
		log.Warning("Invalid chart timezone %q, using UTC: %v", cfg.Chart.Timezone, err)
		loc = time.UTC
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Dashboard{
		Config:    cfg,
		Scheduler: sched,
		History:   history,
		Selection: watchlist.NewSelection(store, log.Named("Selection")),
		Expansion: watchlist.NewExpansion(),
		Prefs:     watchlist.NewPreferenceStore(store, log.Named("Preferences")),
		Logger:    log,
		location:  loc,
		views:     utils.NewLatestBroadcaster[models.MDashboardView](),
		ctx:       ctx,
		cancel:    cancel,
		charts:    make(map[string]*chart.Adapter),
	}
}

// -----------------------------------------------------------------------------

// Start opens a chart for every tracked symbol and republishes the view on
// each scheduler snapshot until ctx is done or Stop is called.
func (d *Dashboard) Start(ctx context.Context, wg *sync.WaitGroup) {
	d.mu.Lock()
	for _, symbol := range d.Selection.List() {
		d.ensureChartLocked(symbol)
	}
	d.mu.Unlock()

	snapshots, unsubscribe := d.Scheduler.Subscribe()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				d.Stop()
				return
			case <-d.ctx.Done():
				return
			case _, ok := <-snapshots:
				if !ok {
					return
				}
				d.publish()
			}
		}
	}()
}

// Stop closes every chart adapter and the view stream.
func (d *Dashboard) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.cancel()
	for symbol, adapter := range d.charts {
		adapter.Close()
		delete(d.charts, symbol)
	}
	d.mu.Unlock()

	d.wg.Wait()
	d.views.Close()
	d.Logger.Info("Dashboard stopped")
}

// -----------------------------------------------------------------------------

// Add tracks symbol and opens its chart on the default timeframe.
func (d *Dashboard) Add(symbol string) error {
	symbol = strings.TrimSpace(symbol)
	_, err := d.Selection.Add(symbol)
	if err != nil && helpers.ErrorKind(err) == helpers.KindValidation {
		return err
	}

	d.mu.Lock()
	d.ensureChartLocked(symbol)
	d.mu.Unlock()

	d.publish()
	return err
}

// Remove untracks symbol, closes its chart and collapses its card.
func (d *Dashboard) Remove(symbol string) error {
	symbol = strings.TrimSpace(symbol)
	_, err := d.Selection.Remove(symbol)

	d.mu.Lock()
	if adapter, ok := d.charts[symbol]; ok {
		adapter.Close()
		delete(d.charts, symbol)
	}
	d.mu.Unlock()

	if d.Expansion.IsExpanded(symbol) {
		d.Expansion.Collapse()
	}

	d.publish()
	return err
}

// Toggle expands or collapses the card of a tracked symbol.
func (d *Dashboard) Toggle(symbol string) (bool, error) {
	symbol = strings.TrimSpace(symbol)
	if !d.Selection.Contains(symbol) {
		return false, helpers.NewValidationError("symbol " + symbol + " is not tracked")
	}
	expanded := d.Expansion.Toggle(symbol)
	d.publish()
	return expanded, nil
}

// SetTimeframe switches the chart of a tracked symbol.
func (d *Dashboard) SetTimeframe(symbol string, tf models.MTimeframe) error {
	adapter, err := d.chartFor(symbol)
	if err != nil {
		return err
	}
	return adapter.SetTimeframe(tf)
}

// ToggleChartType flips the chart of a tracked symbol between candlestick and line.
func (d *Dashboard) ToggleChartType(symbol string) (string, error) {
	adapter, err := d.chartFor(symbol)
	if err != nil {
		return "", err
	}
	return adapter.ToggleChartType(), nil
}

// Refresh forces an immediate polling cycle.
func (d *Dashboard) Refresh(ctx context.Context) error {
	return d.Scheduler.Refresh(ctx)
}

// -----------------------------------------------------------------------------

// Search returns the untracked assets whose symbol contains query, ignoring
// case, sorted by symbol. An empty query matches nothing.
func (d *Dashboard) Search(query string) []models.MAssetView {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []models.MAssetView{}
	}

	matches := []models.MAssetView{}
	for _, asset := range d.Scheduler.Snapshot().Assets {
		if !strings.Contains(strings.ToLower(asset.Symbol), query) || d.Selection.Contains(asset.Symbol) {
			continue
		}
		matches = append(matches, asset)
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Symbol < matches[j].Symbol })
	return matches
}

// -----------------------------------------------------------------------------

func (d *Dashboard) Preferences() models.MPreferences {
	return d.Prefs.Get()
}

func (d *Dashboard) SetPreferences(prefs models.MPreferences) error {
	if err := d.Prefs.Set(prefs); err != nil {
		return err
	}
	d.publish()
	return nil
}

// -----------------------------------------------------------------------------

// View builds the render model from the latest snapshot. Tracked symbols the
// quoting service no longer lists get no card.
func (d *Dashboard) View() models.MDashboardView {
	snap := d.Scheduler.Snapshot()
	prefs := d.Prefs.Get()
	selection := d.Selection.List()
	expanded, _ := d.Expansion.Current()
	formatter := chart.NewFormatter(d.chartLocale(prefs), d.location)

	view := models.MDashboardView{
		Status:      snap.Status,
		LastError:   snap.LastError,
		Generation:  snap.Generation,
		UpdatedAt:   snap.UpdatedAt,
		Selection:   selection,
		Expanded:    expanded,
		Cards:       make([]models.MAssetCard, 0, len(selection)),
		Preferences: prefs,
	}

	d.mu.Lock()
	charts := make(map[string]*chart.Adapter, len(d.charts))
	for symbol, adapter := range d.charts {
		charts[symbol] = adapter
	}
	d.mu.Unlock()

	for _, symbol := range selection {
		asset, ok := snap.FindAsset(symbol)
		if !ok {
			continue
		}
		if !d.Config.Dashboard.TradeOverlay {
			asset.Position = nil
		}
		card := buildCard(asset, d.Config.Dashboard.AccountCurrency)
		card.Expanded = symbol == expanded
		if adapter, ok := charts[symbol]; ok {
			render := chart.Render(adapter.State(), formatter)
			card.Chart = &render
		}
		view.Cards = append(view.Cards, card)
	}
	return view
}

// Subscribe streams the dashboard view, newest wins, starting with the current one.
func (d *Dashboard) Subscribe() (<-chan models.MDashboardView, func()) {
	return d.views.Subscribe(d.View())
}

// -----------------------------------------------------------------------------

func (d *Dashboard) chartLocale(prefs models.MPreferences) string {
	if d.Config.Chart.Locale != "" {
		return d.Config.Chart.Locale
	}
	return prefs.Language
}

func (d *Dashboard) chartFor(symbol string) (*chart.Adapter, error) {
	symbol = strings.TrimSpace(symbol)
	d.mu.Lock()
	defer d.mu.Unlock()

	adapter, ok := d.charts[symbol]
	if !ok {
		return nil, helpers.NewValidationError("symbol " + symbol + " is not tracked")
	}
	return adapter, nil
}

// ensureChartLocked opens the chart of symbol if it has none and relays its
// state changes into the view stream.
func (d *Dashboard) ensureChartLocked(symbol string) {
	if d.stopped || symbol == "" {
		return
	}
	if _, ok := d.charts[symbol]; ok {
		return
	}

	adapter := chart.NewAdapter(d.ctx, d.History, d.Logger.Named("Chart-"+symbol))
	d.charts[symbol] = adapter

	updates, _ := adapter.Subscribe()
	<-updates
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for range updates {
			d.publish()
		}
	}()

	if err := adapter.SetKey(models.MChartKey{Symbol: symbol, Timeframe: d.Config.DefaultTimeframe()}); err != nil {
		d.Logger.Error("Failed to open chart for %s: %v", symbol, err)
	}
}

func (d *Dashboard) publish() {
	d.views.Publish(d.View())
}
