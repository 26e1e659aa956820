package interfaces

// -----------------------------------------------------------------------------
// IKeyValueStore persists opaque values by key across restarts.
// -----------------------------------------------------------------------------

type IKeyValueStore interface {

	// Initialize opens the backend and creates its schema if needed.
	Initialize() error

	// -----------------------------------------------------------------------------

	// Get returns the stored value; found is false when the key was never set.
	Get(key string) (value []byte, found bool, err error)

	// -----------------------------------------------------------------------------

	// Set overwrites the value stored under key.
	Set(key string, value []byte) error

	// -----------------------------------------------------------------------------

	// Close releases the backend.
	Close() error
}
