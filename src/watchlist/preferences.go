package watchlist

import (
	"fmt"
	"strings"
	"sync"

	"market-watchlist/src/helpers"
	"market-watchlist/src/interfaces"
	"market-watchlist/src/logger"
	"market-watchlist/src/models"
	"market-watchlist/src/storage"
)

// PreferencesKey is the persisted key of the display preferences.
const PreferencesKey = "userPreferences"

// PreferenceStore holds the user display preferences and writes them through.
type PreferenceStore struct {
	store  interfaces.IKeyValueStore
	logger *logger.Logger
	mu     sync.RWMutex
	prefs  models.MPreferences
}

// NewPreferenceStore loads saved preferences; unreadable or missing values
// fall back to models.DefaultPreferences. Fields left empty in the saved
// value keep their defaults.
func NewPreferenceStore(store interfaces.IKeyValueStore, log *logger.Logger) *PreferenceStore {
	p := &PreferenceStore{store: store, logger: log, prefs: models.DefaultPreferences()}

	loaded := models.DefaultPreferences()
	if _, err := storage.LoadJSON(store, PreferencesKey, &loaded); err != nil {
		log.Warning("Falling back to default preferences: %v", err)
		return p
	}
	if err := validatePreferences(loaded); err != nil {
		log.Warning("Ignoring invalid saved preferences: %v", err)
		return p
	}
	p.prefs = loaded
	return p
}

func (p *PreferenceStore) Get() models.MPreferences {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.prefs
}

// Set validates and persists prefs.
func (p *PreferenceStore) Set(prefs models.MPreferences) error {
	prefs.Theme = strings.ToLower(strings.TrimSpace(prefs.Theme))
	prefs.Language = strings.ToLower(strings.TrimSpace(prefs.Language))
	if err := validatePreferences(prefs); err != nil {
		return err
	}

	p.mu.Lock()
	p.prefs = prefs
	p.mu.Unlock()

	if err := storage.SaveJSON(p.store, PreferencesKey, prefs); err != nil {
		p.logger.Error("Failed to persist preferences: %v", err)
		return err
	}
	return nil
}

func validatePreferences(prefs models.MPreferences) error {
	if prefs.Theme != "light" && prefs.Theme != "dark" {
		return helpers.NewValidationError(fmt.Sprintf("unknown theme %q", prefs.Theme))
	}
	if prefs.FontSize < 8 || prefs.FontSize > 48 {
		return helpers.NewValidationError(fmt.Sprintf("font size %d out of range 8-48", prefs.FontSize))
	}
	if prefs.Language == "" {
		return helpers.NewValidationError("language cannot be empty")
	}
	return nil
}
