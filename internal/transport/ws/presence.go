package ws

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tasknest/realtime/internal/domain"
	"github.com/tasknest/realtime/internal/repository"
)

// globalBroadcaster is the slice of the Hub the tracker needs. Presence
// changes are announced to every connected client; scoping them to shared
// projects would mean a membership query per connect/disconnect.
type globalBroadcaster interface {
	BroadcastGlobal(evt *Event)
}

// Tracker refcounts live connections per user and keeps the durable
// PresenceRecord in sync: a user is online iff at least one connection
// maps to them. Writes go through this one component, so concurrent
// updates for the same user serialize here.
type Tracker struct {
	mu    sync.Mutex
	conns map[uuid.UUID]int

	repo        repository.PresenceRepository
	broadcaster globalBroadcaster
	logger      zerolog.Logger
}

func NewTracker(repo repository.PresenceRepository, logger zerolog.Logger) *Tracker {
	return &Tracker{
		conns:  make(map[uuid.UUID]int),
		repo:   repo,
		logger: logger.With().Str("component", "presence").Logger(),
	}
}

// SetBroadcaster attaches the fan-out engine (optional dependency, wired
// after construction to break the hub↔tracker cycle).
func (t *Tracker) SetBroadcaster(b globalBroadcaster) {
	t.broadcaster = b
}

// ConnectionOpened records a new live connection. The first connection for
// a user persists the online flag and, only if the write succeeds,
// announces the change.
func (t *Tracker) ConnectionOpened(ctx context.Context, userID uuid.UUID) {
	t.mu.Lock()
	t.conns[userID]++
	first := t.conns[userID] == 1
	t.mu.Unlock()

	if !first {
		return
	}

	if err := t.repo.SetOnline(ctx, userID); err != nil {
		// Presence is best-effort: log and skip the announce rather than
		// broadcast a status that was never durably recorded.
		t.logger.Error().Err(err).Stringer("user_id", userID).Msg("persisting online status failed")
		return
	}
	t.announce(userID, domain.StatusOnline)
}

// ConnectionClosed records a closed connection. The user's last connection
// persists offline + lastSeen and announces the change.
func (t *Tracker) ConnectionClosed(ctx context.Context, userID uuid.UUID) {
	t.mu.Lock()
	count, ok := t.conns[userID]
	if !ok {
		t.mu.Unlock()
		return
	}
	count--
	if count <= 0 {
		delete(t.conns, userID)
	} else {
		t.conns[userID] = count
	}
	last := count <= 0
	t.mu.Unlock()

	if !last {
		return
	}

	if err := t.repo.SetOffline(ctx, userID, time.Now()); err != nil {
		t.logger.Error().Err(err).Stringer("user_id", userID).Msg("persisting offline status failed")
		return
	}
	t.announce(userID, domain.StatusOffline)
}

// UpdateStatus applies a client-declared status through the same
// persist-then-broadcast path as the implicit lifecycle updates.
func (t *Tracker) UpdateStatus(ctx context.Context, userID uuid.UUID, status string) error {
	if !domain.ValidStatus(status) {
		return domain.ErrInvalidStatus
	}

	if err := t.repo.SetStatus(ctx, userID, status); err != nil {
		t.logger.Error().Err(err).Stringer("user_id", userID).Str("status", status).Msg("persisting status failed")
		return err
	}
	t.announce(userID, status)
	return nil
}

// IsOnline reports whether the user has at least one live connection.
func (t *Tracker) IsOnline(userID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conns[userID] > 0
}

// OnlineUsers returns every user with at least one live connection.
func (t *Tracker) OnlineUsers() []uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()

	users := make([]uuid.UUID, 0, len(t.conns))
	for id := range t.conns {
		users = append(users, id)
	}
	return users
}

func (t *Tracker) announce(userID uuid.UUID, status string) {
	if t.broadcaster == nil {
		return
	}
	evt, err := NewEvent(EventTypeUserStatusChanged, PresencePayload{UserID: userID, Status: status})
	if err != nil {
		return
	}
	t.broadcaster.BroadcastGlobal(evt)
}
