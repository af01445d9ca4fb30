package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// UIStateRepository persists per-session UI state blobs in ui_state_cache
type UIStateRepository struct {
	db *sqlx.DB
}

// NewUIStateRepository creates a new UI state repository
func NewUIStateRepository(db *sqlx.DB) *UIStateRepository {
	return &UIStateRepository{db: db}
}

// GetState retrieves the blob stored for a session and key
func (r *UIStateRepository) GetState(ctx context.Context, sessionID uuid.UUID, key string) ([]byte, bool, error) {
	query := `
		SELECT ui_state
		FROM ui_state_cache
		WHERE session_id = $1 AND state_key = $2`

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, sessionID, key).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get UI state: %w", err)
	}
	return raw, true, nil
}

// PutState saves or updates the blob, bumping its version
func (r *UIStateRepository) PutState(ctx context.Context, sessionID uuid.UUID, key string, value []byte) error {
	query := `
		INSERT INTO ui_state_cache (session_id, state_key, ui_state, version, last_updated)
		VALUES ($1, $2, $3, 1, $4)
		ON CONFLICT (session_id, state_key) DO UPDATE SET
			ui_state = EXCLUDED.ui_state,
			version = ui_state_cache.version + 1,
			last_updated = EXCLUDED.last_updated`

	_, err := r.db.ExecContext(ctx, query, sessionID, key, string(value), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save UI state: %w", err)
	}
	return nil
}

// DeleteState removes the blob; a missing row is not an error
func (r *UIStateRepository) DeleteState(ctx context.Context, sessionID uuid.UUID, key string) error {
	query := `DELETE FROM ui_state_cache WHERE session_id = $1 AND state_key = $2`

	if _, err := r.db.ExecContext(ctx, query, sessionID, key); err != nil {
		return fmt.Errorf("failed to delete UI state: %w", err)
	}
	return nil
}

// CleanupOldUIStates removes state not touched within maxAge and returns how many rows went
func (r *UIStateRepository) CleanupOldUIStates(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)

	result, err := r.db.ExecContext(ctx, `DELETE FROM ui_state_cache WHERE last_updated < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old UI states: %w", err)
	}

	deleted, _ := result.RowsAffected()
	return deleted, nil
}
