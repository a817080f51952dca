package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tasknest/realtime/internal/domain"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// Client represents a single live WebSocket connection. A user may hold
// several at once (one per browser tab).
type Client struct {
	id     uuid.UUID
	userID uuid.UUID
	hub    *Hub
	conn   *websocket.Conn
	logger zerolog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	id := uuid.New()
	c := &Client{
		id:     id,
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufSize),
		done:   make(chan struct{}),
	}
	c.logger = zerolog.Nop()
	if hub != nil {
		c.logger = hub.logger.With().Stringer("conn_id", id).Stringer("user_id", userID).Logger()
	}
	return c
}

// ID returns the opaque connection id.
func (c *Client) ID() uuid.UUID { return c.id }

// UserID returns the identity resolved at handshake.
func (c *Client) UserID() uuid.UUID { return c.userID }

// Close signals the pumps to stop. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// ReadPump reads signals from the WebSocket and routes them. Blocks until
// the connection drops, then unregisters the client.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(context.Background(), c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				c.logger.Debug().Msg("client disconnected")
			} else {
				c.logger.Debug().Err(err).Msg("read error")
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes frames from the send channel to the WebSocket and keeps
// the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.logger.Debug().Err(err).Msg("write error")
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				c.logger.Debug().Err(err).Msg("ping error")
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes one client signal. Malformed signals cost the sender
// an error frame, never the connection.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeJoinProject:
		var p ProjectPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.ProjectID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "invalid join_project payload")
			return
		}
		c.hub.JoinProject(c, p.ProjectID)

	case EventTypeLeaveProject:
		var p ProjectPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.ProjectID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "invalid leave_project payload")
			return
		}
		c.hub.LeaveProject(c, p.ProjectID)

	case EventTypeTypingStart, EventTypeTypingStop:
		var p TypingSignalPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.ProjectID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "projectId required for typing signals")
			return
		}
		c.hub.HandleTyping(c, event.Type, p)

	case EventTypeUpdatePresence:
		var p UpdatePresencePayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid update_presence payload")
			return
		}
		// Persistence failures stay server-side; only a bad status is the
		// client's problem.
		err := c.hub.presence.UpdateStatus(context.Background(), c.userID, p.Status)
		if errors.Is(err, domain.ErrInvalidStatus) {
			c.sendError("INVALID_STATUS", "unknown presence status: "+p.Status)
		}

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong, Timestamp: time.Now().Unix()})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
