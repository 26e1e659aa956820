package storage

import (
	"encoding/json"
	"fmt"

	"market-watchlist/src/helpers"
	"market-watchlist/src/interfaces"
	"market-watchlist/src/logger"
	"market-watchlist/src/models"
)

// -----------------------------------------------------------------------------

// NewStore builds and initializes the store selected by storage.db_type.
func NewStore(cfg *models.MConfig, log *logger.Logger) (interfaces.IKeyValueStore, error) {
	var (
		store interfaces.IKeyValueStore
		err   error
	)

	switch cfg.Storage.DBType {
	case "postgres":
		store, err = NewPostgresStore(cfg, log.Named("PostgresStore"))
	case "memory":
		store = NewMemoryStore()
	default:
		store, err = NewSQLiteStore(cfg, log.Named("SQLiteStore"))
	}
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize %s store: %w", cfg.Storage.DBType, err)
	}
	return store, nil
}

// -----------------------------------------------------------------------------

// LoadJSON decodes the value under key into out. found is false when the key is
// absent. Read and decode failures come back as PersistenceReadError.
func LoadJSON(store interfaces.IKeyValueStore, key string, out interface{}) (bool, error) {
	raw, found, err := store.Get(key)
	if err != nil {
		return false, helpers.NewPersistenceReadError(fmt.Sprintf("read %q", key), err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, helpers.NewPersistenceReadError(fmt.Sprintf("decode %q", key), err)
	}
	return true, nil
}

// -----------------------------------------------------------------------------

// SaveJSON encodes value and stores it under key.
func SaveJSON(store interfaces.IKeyValueStore, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := store.Set(key, raw); err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}
