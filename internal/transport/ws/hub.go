package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Frame is one broadcast as it travels between instances: the target room
// ("" for global), an optional excluded user, and the event itself.
type Frame struct {
	Room    string     `json:"room"`
	Exclude *uuid.UUID `json:"exclude,omitempty"`
	Event   *Event     `json:"event"`
}

// MessageBridge relays frames to other server instances. Defined here to
// avoid a circular import with the bridge package.
type MessageBridge interface {
	Publish(f Frame) error
	Available() bool
}

// Hub is the single choke point for all server-initiated broadcasts. One
// instance lives for the whole process and is handed explicitly to every
// caller that publishes or queries membership.
//
// Delivery is at-most-once and non-durable: targets that are not live at
// the moment of the call, or whose send buffer is full, miss the event.
// Callers that need the recipient to eventually learn the fact persist it
// first and use the hub only for the live echo.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client // connection id → client
	bridge  MessageBridge

	rooms    *Rooms
	presence *Tracker
	logger   zerolog.Logger
}

func NewHub(rooms *Rooms, presence *Tracker, logger zerolog.Logger) *Hub {
	return &Hub{
		clients:  make(map[uuid.UUID]*Client),
		rooms:    rooms,
		presence: presence,
		logger:   logger.With().Str("component", "hub").Logger(),
	}
}

// SetBridge attaches a cross-instance message bridge. Without one the hub
// serves a single-process deployment unchanged.
func (h *Hub) SetBridge(b MessageBridge) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bridge = b
}

// Register adds an authenticated connection and joins it to its own user
// room. Client signals can never leave that room; only Unregister does.
func (h *Hub) Register(ctx context.Context, c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()

	h.rooms.Join(c, UserRoom(c.userID))
	h.logger.Info().
		Stringer("conn_id", c.id).
		Stringer("user_id", c.userID).
		Int("total", total).
		Msg("connection registered")

	h.presence.ConnectionOpened(ctx, c.userID)
}

// Unregister tears down a connection: all room memberships go atomically,
// then presence observes the close. Idempotent.
func (h *Hub) Unregister(ctx context.Context, c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.id)
	total := len(h.clients)
	h.mu.Unlock()

	h.rooms.RemoveAll(c)
	c.Close()
	h.logger.Info().
		Stringer("conn_id", c.id).
		Stringer("user_id", c.userID).
		Int("total", total).
		Msg("connection unregistered")

	h.presence.ConnectionClosed(ctx, c.userID)
}

// JoinProject subscribes a connection to a project room.
func (h *Hub) JoinProject(c *Client, projectID uuid.UUID) {
	h.rooms.Join(c, ProjectRoom(projectID))
	h.logger.Debug().Stringer("user_id", c.userID).Stringer("project_id", projectID).Msg("joined project room")
}

// LeaveProject unsubscribes a connection from a project room.
func (h *Hub) LeaveProject(c *Client, projectID uuid.UUID) {
	h.rooms.Leave(c, ProjectRoom(projectID))
	h.logger.Debug().Stringer("user_id", c.userID).Stringer("project_id", projectID).Msg("left project room")
}

// SendToUser delivers an event to every connection in the user's private
// room. The return value says whether at least one connection on this
// instance took the frame - a liveness signal, not a delivery guarantee.
func (h *Hub) SendToUser(userID uuid.UUID, evt *Event) bool {
	data, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error().Err(err).Msg("marshal error")
		return false
	}
	delivered := h.deliverRoom(UserRoom(userID), data, nil)
	h.publishToBridge(Frame{Room: UserRoom(userID), Event: evt})
	return delivered > 0
}

// SendToProject delivers an event to every connection in the project room,
// skipping all connections of excludeUserID when supplied (so the actor
// doesn't receive an echo of their own action).
func (h *Hub) SendToProject(projectID uuid.UUID, evt *Event, excludeUserID *uuid.UUID) {
	data, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error().Err(err).Msg("marshal error")
		return
	}
	h.deliverRoom(ProjectRoom(projectID), data, excludeUserID)
	h.publishToBridge(Frame{Room: ProjectRoom(projectID), Exclude: excludeUserID, Event: evt})
}

// BroadcastGlobal delivers an event to every live connection. Reserved for
// system-wide announcements and presence changes.
func (h *Hub) BroadcastGlobal(evt *Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error().Err(err).Msg("marshal error")
		return
	}
	h.deliverGlobal(data)
	h.publishToBridge(Frame{Event: evt})
}

// HandleTyping rebroadcasts a typing signal to the sender's project peers.
// Unlike the general send path, sender exclusion here is unconditional.
func (h *Hub) HandleTyping(sender *Client, signalType string, p TypingSignalPayload) {
	var outType string
	switch signalType {
	case EventTypeTypingStart:
		outType = EventTypeUserTyping
	case EventTypeTypingStop:
		outType = EventTypeUserStoppedTyping
	default:
		return
	}

	evt, err := NewEvent(outType, TypingPayload{
		UserID:       sender.userID,
		ProjectID:    p.ProjectID,
		DiscussionID: p.DiscussionID,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("marshal error")
		return
	}
	h.SendToProject(p.ProjectID, evt, &sender.userID)
}

// DeliverLocal applies a frame received from the bridge to local
// connections only. No re-publish, so frames never loop between instances.
func (h *Hub) DeliverLocal(f Frame) {
	data, err := json.Marshal(f.Event)
	if err != nil {
		return
	}
	if f.Room == "" {
		h.deliverGlobal(data)
		return
	}
	h.deliverRoom(f.Room, data, f.Exclude)
}

// ProjectViewers returns the users with at least one connection in the
// project room - "who is currently viewing this project".
func (h *Hub) ProjectViewers(projectID uuid.UUID) []uuid.UUID {
	return h.rooms.MembersOf(ProjectRoom(projectID))
}

// OnlineUsers returns every user with at least one live connection.
func (h *Hub) OnlineUsers() []uuid.UUID {
	return h.presence.OnlineUsers()
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) deliverRoom(room string, data []byte, exclude *uuid.UUID) int {
	delivered := 0
	for _, c := range h.rooms.Clients(room) {
		if exclude != nil && c.userID == *exclude {
			continue
		}
		if h.enqueue(c, data) {
			delivered++
		}
	}
	return delivered
}

func (h *Hub) deliverGlobal(data []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.enqueue(c, data)
	}
}

// enqueue hands a frame to the client's write pump. A full buffer drops
// the frame: delivery is at-most-once and the slow client keeps its
// connection.
func (h *Hub) enqueue(c *Client, data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		h.logger.Warn().Stringer("conn_id", c.id).Msg("send buffer full, dropping frame")
		return false
	}
}

func (h *Hub) publishToBridge(f Frame) {
	h.mu.RLock()
	b := h.bridge
	h.mu.RUnlock()

	if b == nil || !b.Available() {
		return
	}
	if err := b.Publish(f); err != nil {
		h.logger.Error().Err(err).Msg("bridge publish failed")
	}
}
