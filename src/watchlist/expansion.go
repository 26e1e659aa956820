package watchlist

import "sync"

// Expansion tracks the single expanded card. Not persisted.
type Expansion struct {
	mu       sync.RWMutex
	expanded string
}

func NewExpansion() *Expansion {
	return &Expansion{}
}

// Toggle collapses symbol if it is expanded, otherwise expands it and
// collapses whichever card was open. It returns the new state of symbol.
func (e *Expansion) Toggle(symbol string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.expanded == symbol {
		e.expanded = ""
		return false
	}
	e.expanded = symbol
	return true
}

// Current returns the expanded symbol, ok is false when none is.
func (e *Expansion) Current() (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.expanded, e.expanded != ""
}

func (e *Expansion) IsExpanded(symbol string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return symbol != "" && e.expanded == symbol
}

// Collapse closes the expanded card, if any.
func (e *Expansion) Collapse() {
	e.mu.Lock()
	e.expanded = ""
	e.mu.Unlock()
}
