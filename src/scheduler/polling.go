package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"market-watchlist/src/helpers"
	"market-watchlist/src/interfaces"
	"market-watchlist/src/logger"
	"market-watchlist/src/merge"
	"market-watchlist/src/models"
	"market-watchlist/src/utils"

	"golang.org/x/sync/errgroup"
)

// PollingScheduler refreshes quotes and positions on a fixed cadence and
// publishes the merged result as an MSnapshot.
type PollingScheduler struct {
	Config *models.MConfig
	Quotes interfaces.IQuoteFetcher
	Ledger interfaces.ITradeLedgerFetcher
	Gate   interfaces.IMarketGate
	Logger *logger.Logger

	interval time.Duration
	now      func() time.Time
	errors   *helpers.ErrorHandler
	issued   atomic.Uint64

	mu         sync.Mutex
	ctx        context.Context
	cancelFunc context.CancelFunc
	applied    uint64
	hasSuccess bool
	snapshot   models.MSnapshot
	updates    *utils.LatestBroadcaster[models.MSnapshot]
}

// -----------------------------------------------------------------------------

// NewPollingScheduler builds a stopped scheduler. ledger may be nil, and so
// may gate, in which case every tick runs.
func NewPollingScheduler(
	cfg *models.MConfig,
	quotes interfaces.IQuoteFetcher,
	ledger interfaces.ITradeLedgerFetcher,
	gate interfaces.IMarketGate,
	log *logger.Logger,
) *PollingScheduler {
	interval := time.Duration(cfg.Polling.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &PollingScheduler{
		Config:   cfg,
		Quotes:   quotes,
		Ledger:   ledger,
		Gate:     gate,
		Logger:   log,
		interval: interval,
		now:      time.Now,
		errors:   helpers.NewErrorHandler(log),
		snapshot: models.MSnapshot{Status: models.StatusLoading},
		updates:  utils.NewLatestBroadcaster[models.MSnapshot](),
	}
}

// -----------------------------------------------------------------------------

// Start runs one cycle immediately and then one per interval until ctx is
// cancelled or Stop is called.
func (s *PollingScheduler) Start(parentCtx context.Context, wg *sync.WaitGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx != nil {
		return fmt.Errorf("polling scheduler is already running")
	}

	ctx, cancel := context.WithCancel(parentCtx)
	s.ctx = ctx
	s.cancelFunc = cancel

	wg.Add(1)
	go s.runLoop(ctx, wg)
	s.Logger.Info("Started polling every %s", s.interval)
	return nil
}

// -----------------------------------------------------------------------------

// Stop cancels the run context. Cycles still in flight are never applied.
// Calling Stop more than once is harmless.
func (s *PollingScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelFunc == nil {
		return
	}
	s.cancelFunc()
	s.cancelFunc = nil
	s.ctx = nil
	s.Logger.Info("Polling scheduler stopped")
}

// -----------------------------------------------------------------------------

func (s *PollingScheduler) runLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.shouldSkip() {
				s.Logger.Debug("All watched markets closed, skipping tick")
				continue
			}
			s.runCycle(ctx)
		}
	}
}

func (s *PollingScheduler) shouldSkip() bool {
	return s.Gate != nil && s.Config.Polling.PauseWhenMarketsClosed && !s.Gate.AnyMarketOpen(s.now())
}

// -----------------------------------------------------------------------------

// Refresh runs one cycle outside the ticker and waits for it. The result
// goes through the same generation check as loop cycles, so a newer
// completion always wins. It returns the fetch error, if any.
func (s *PollingScheduler) Refresh(ctx context.Context) error {
	s.mu.Lock()
	runCtx := s.ctx
	s.mu.Unlock()

	if runCtx == nil {
		return helpers.NewValidationError("polling scheduler is not running")
	}

	cycleCtx, cancel := context.WithCancel(runCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return s.runCycle(cycleCtx)
}

// -----------------------------------------------------------------------------

// runCycle fetches both feeds concurrently and hands the outcome to apply.
func (s *PollingScheduler) runCycle(ctx context.Context) error {
	gen := s.issued.Add(1)
	overlay := s.Config.Dashboard.TradeOverlay && s.Ledger != nil

	var (
		quotes    []models.MAssetQuote
		positions map[string]models.MTradePosition
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := s.Quotes.FetchQuotes(gctx)
		if err != nil {
			return err
		}
		quotes = q
		return nil
	})
	if overlay {
		g.Go(func() error {
			p, err := s.Ledger.FetchPositions(gctx)
			if err != nil {
				return err
			}
			positions = p
			return nil
		})
	}
	err := g.Wait()

	s.apply(ctx, gen, quotes, positions, err)
	return err
}

// -----------------------------------------------------------------------------

// apply publishes a cycle outcome unless a newer cycle already landed or the
// cycle's context is gone.
func (s *PollingScheduler) apply(ctx context.Context, gen uint64, quotes []models.MAssetQuote, positions map[string]models.MTradePosition, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil || gen <= s.applied {
		s.Logger.Debug("Discarding cycle %d (last applied %d)", gen, s.applied)
		return
	}
	s.applied = gen

	now := s.now()
	next := s.snapshot
	next.Generation = gen
	next.UpdatedAt = now

	if err != nil {
		next.LastError = err.Error()
		next.ErrorKind = s.errors.Handle(err, "Polling cycle")
		if s.hasSuccess {
			next.Status = models.StatusStale
		} else {
			next.Status = models.StatusError
		}
	} else {
		s.errors.Success("Polling cycle")
		if positions == nil {
			positions = map[string]models.MTradePosition{}
		}
		next.Assets = merge.Merge(quotes, positions)
		next.Positions = positions
		next.Status = models.StatusLive
		next.LastError = ""
		next.ErrorKind = ""
		next.LastSuccessAt = now
		s.hasSuccess = true
	}

	s.snapshot = next
	s.updates.Publish(next)
}

// -----------------------------------------------------------------------------

// Snapshot returns the latest published state.
func (s *PollingScheduler) Snapshot() models.MSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// -----------------------------------------------------------------------------

// Subscribe returns a channel that always holds the newest snapshot not yet
// read, starting with the current one. The cancel func closes the channel.
func (s *PollingScheduler) Subscribe() (<-chan models.MSnapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates.Subscribe(s.snapshot)
}
