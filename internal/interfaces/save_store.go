package interfaces

import "context"

// SaveStore defines the interface for save slot persistence
type SaveStore interface {
	// Save writes payload under slot, replacing any previous save
	Save(ctx context.Context, slot string, payload []byte) error

	// Load returns the payload stored under slot
	Load(ctx context.Context, slot string) ([]byte, error)

	// Close releases the underlying connection
	Close() error
}
