package ui

import (
	"net/http"
	"sync"
	"time"

	"goldendash/app"

	"github.com/google/uuid"
)

const sessionCookie = "goldendash_session"

// sessionID returns the browser session of the request, issuing a cookie on first visit
func sessionID(w http.ResponseWriter, r *http.Request) uuid.UUID {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id
		}
	}

	id := uuid.New()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
	})
	return id
}

type boardEntry struct {
	board    *app.FilterBoard
	lastSeen time.Time
}

// boardRegistry keeps the live filter board of each session between gestures. Boards idle for
// longer than maxIdle are dropped; their state is still in storage.
type boardRegistry struct {
	mu      sync.Mutex
	boards  map[uuid.UUID]*boardEntry
	maxIdle time.Duration
	now     func() time.Time
}

func newBoardRegistry(maxIdle time.Duration) *boardRegistry {
	return &boardRegistry{
		boards:  make(map[uuid.UUID]*boardEntry),
		maxIdle: maxIdle,
		now:     time.Now,
	}
}

func (r *boardRegistry) get(id uuid.UUID) (*app.FilterBoard, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.boards[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = r.now()
	return entry.board, true
}

func (r *boardRegistry) put(id uuid.UUID, board *app.FilterBoard) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.boards[id] = &boardEntry{board: board, lastSeen: r.now()}
	r.sweepLocked()
}

func (r *boardRegistry) sweepLocked() {
	cutoff := r.now().Add(-r.maxIdle)
	for id, entry := range r.boards {
		if entry.lastSeen.Before(cutoff) {
			delete(r.boards, id)
		}
	}
}

func (r *boardRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}
