package watchlist

import (
	"strings"
	"sync"

	"market-watchlist/src/helpers"
	"market-watchlist/src/interfaces"
	"market-watchlist/src/logger"
	"market-watchlist/src/storage"
)

// SelectionKey is the persisted key holding the tracked symbols.
const SelectionKey = "selectionSet"

// -----------------------------------------------------------------------------

// Selection is the ordered, duplicate-free set of symbols the user tracks.
// Every mutation is written through to the store before returning.
type Selection struct {
	store   interfaces.IKeyValueStore
	logger  *logger.Logger
	mu      sync.RWMutex
	symbols []string
}

// -----------------------------------------------------------------------------

// NewSelection loads the persisted selection. A missing or unreadable value
// starts an empty selection.
func NewSelection(store interfaces.IKeyValueStore, log *logger.Logger) *Selection {
	s := &Selection{store: store, logger: log}

	var loaded []string
	found, err := storage.LoadJSON(store, SelectionKey, &loaded)
	switch {
	case err != nil:
		log.Warning("Falling back to an empty selection: %v", err)
	case found:
		s.symbols = dedupe(loaded)
		log.Info("Loaded %d tracked symbol(s)", len(s.symbols))
	}
	return s
}

// -----------------------------------------------------------------------------

// Add appends symbol unless already present. The returned error only reports
// a failed write; the in-memory selection is updated regardless.
func (s *Selection) Add(symbol string) (bool, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return false, helpers.NewValidationError("symbol cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.symbols, symbol) >= 0 {
		return false, nil
	}
	s.symbols = append(s.symbols, symbol)
	return true, s.persistLocked()
}

// -----------------------------------------------------------------------------

// Remove drops symbol if present.
func (s *Selection) Remove(symbol string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.symbols, strings.TrimSpace(symbol))
	if i < 0 {
		return false, nil
	}
	next := make([]string, 0, len(s.symbols)-1)
	next = append(next, s.symbols[:i]...)
	next = append(next, s.symbols[i+1:]...)
	s.symbols = next
	return true, s.persistLocked()
}

// -----------------------------------------------------------------------------

// List returns a copy of the tracked symbols in insertion order.
func (s *Selection) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.symbols...)
}

// Contains reports whether symbol is tracked.
func (s *Selection) Contains(symbol string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.symbols, symbol) >= 0
}

// -----------------------------------------------------------------------------

func (s *Selection) persistLocked() error {
	symbols := s.symbols
	if symbols == nil {
		symbols = []string{}
	}
	if err := storage.SaveJSON(s.store, SelectionKey, symbols); err != nil {
		s.logger.Error("Failed to persist selection: %v", err)
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func indexOf(list []string, item string) int {
	for i, s := range list {
		if s == item {
			return i
		}
	}
	return -1
}

func dedupe(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		s = strings.TrimSpace(s)
		if s != "" && indexOf(out, s) < 0 {
			out = append(out, s)
		}
	}
	return out
}
