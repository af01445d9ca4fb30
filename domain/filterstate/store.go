package filterstate

import (
	"context"
	"encoding/json"

	"goldendash/domain/columns"
	"goldendash/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StorageKey is the key the state blob is persisted under
const StorageKey = "exampleFilterState"

// Store loads and saves the filter state of one browser session. Storage problems never surface to
// the caller as a broken state: reads fall back to the default and writes are best-effort.
type Store struct {
	storage  ports.StateStorage
	session  uuid.UUID
	registry *columns.Registry
	log      zerolog.Logger
}

// NewStore creates a store scoped to one session
func NewStore(storage ports.StateStorage, session uuid.UUID, registry *columns.Registry, log zerolog.Logger) *Store {
	return &Store{
		storage:  storage,
		session:  session,
		registry: registry,
		log:      log.With().Str("component", "filterstate").Str("session", session.String()).Logger(),
	}
}

// Session returns the session the store is scoped to
func (s *Store) Session() uuid.UUID {
	return s.session
}

// Load returns the persisted state, normalized against the registry
func (s *Store) Load(ctx context.Context) State {
	raw, ok, err := s.storage.GetState(ctx, s.session, StorageKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not read filter state, using defaults")
		return Default(s.registry)
	}
	if !ok {
		return Default(s.registry)
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		s.log.Warn().Err(err).Msg("discarding corrupt filter state")
		return Default(s.registry)
	}
	return st.Normalize(s.registry)
}

// Save persists the full state
func (s *Store) Save(ctx context.Context, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.storage.PutState(ctx, s.session, StorageKey, raw); err != nil {
		s.log.Warn().Err(err).Msg("filter state not persisted")
		return err
	}
	return nil
}

// Reset removes the persisted state
func (s *Store) Reset(ctx context.Context) error {
	if err := s.storage.DeleteState(ctx, s.session, StorageKey); err != nil {
		s.log.Warn().Err(err).Msg("filter state not cleared")
		return err
	}
	return nil
}
