package ws

import (
	"sync"

	"github.com/google/uuid"
)

// Room naming convention: "user:<id>" is a private per-user room joined
// automatically at handshake; "project:<id>" is joined and left on client
// request.
func UserRoom(userID uuid.UUID) string {
	return "user:" + userID.String()
}

func ProjectRoom(projectID uuid.UUID) string {
	return "project:" + projectID.String()
}

// Rooms owns the room-name → subscriber table, the one piece of shared
// mutable state every component touches. All mutation goes through Join,
// Leave and RemoveAll, guarded by a single lock.
type Rooms struct {
	mu    sync.RWMutex
	rooms map[string]map[uuid.UUID]*Client // room → connection id → client
}

func NewRooms() *Rooms {
	return &Rooms{rooms: make(map[string]map[uuid.UUID]*Client)}
}

// Join subscribes a connection to a room. Joining a room the connection is
// already in is a no-op.
func (r *Rooms) Join(c *Client, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[room] == nil {
		r.rooms[room] = make(map[uuid.UUID]*Client)
	}
	r.rooms[room][c.id] = c
}

// Leave removes a connection from a room. Leaving a room the connection
// never joined is a no-op.
func (r *Rooms) Leave(c *Client, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(subs, c.id)
	if len(subs) == 0 {
		delete(r.rooms, room)
	}
}

// RemoveAll tears down every membership a connection holds. Called once
// when the connection closes.
func (r *Rooms) RemoveAll(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for room, subs := range r.rooms {
		delete(subs, c.id)
		if len(subs) == 0 {
			delete(r.rooms, room)
		}
	}
}

// Clients returns the connections currently subscribed to a room.
func (r *Rooms) Clients(room string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := r.rooms[room]
	clients := make([]*Client, 0, len(subs))
	for _, c := range subs {
		clients = append(clients, c)
	}
	return clients
}

// MembersOf returns the user identities subscribed to a room, deduplicated
// across multiple connections per user.
func (r *Rooms) MembersOf(room string) []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[uuid.UUID]struct{})
	users := make([]uuid.UUID, 0, len(r.rooms[room]))
	for _, c := range r.rooms[room] {
		if _, ok := seen[c.userID]; ok {
			continue
		}
		seen[c.userID] = struct{}{}
		users = append(users, c.userID)
	}
	return users
}

// RoomsOf returns the rooms a connection is currently a member of.
func (r *Rooms) RoomsOf(connID uuid.UUID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for room, subs := range r.rooms {
		if _, ok := subs[connID]; ok {
			names = append(names, room)
		}
	}
	return names
}
