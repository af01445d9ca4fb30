package ports

import (
	"context"

	"github.com/google/uuid"
)

// StateStorage persists small UI state blobs per browser session
type StateStorage interface {
	// GetState returns the blob stored under key, and false when nothing is stored
	GetState(ctx context.Context, sessionID uuid.UUID, key string) ([]byte, bool, error)

	// PutState stores or replaces the blob under key
	PutState(ctx context.Context, sessionID uuid.UUID, key string, value []byte) error

	// DeleteState removes the blob; removing an absent key is not an error
	DeleteState(ctx context.Context, sessionID uuid.UUID, key string) error
}
