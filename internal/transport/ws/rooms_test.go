package ws

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinIsIdempotent(t *testing.T) {
	rooms := NewRooms()
	c := NewClient(nil, nil, uuid.New())
	room := ProjectRoom(uuid.New())

	rooms.Join(c, room)
	rooms.Join(c, room)

	assert.Len(t, rooms.Clients(room), 1)
	assert.Equal(t, []string{room}, rooms.RoomsOf(c.id))
}

func TestLeaveNeverJoinedIsNoOp(t *testing.T) {
	rooms := NewRooms()
	c := NewClient(nil, nil, uuid.New())
	other := NewClient(nil, nil, uuid.New())
	room := ProjectRoom(uuid.New())

	rooms.Join(other, room)
	rooms.Leave(c, room)
	rooms.Leave(c, "project:never-existed")

	assert.Len(t, rooms.Clients(room), 1)
}

func TestLeaveRemovesMembership(t *testing.T) {
	rooms := NewRooms()
	c := NewClient(nil, nil, uuid.New())
	room := ProjectRoom(uuid.New())

	rooms.Join(c, room)
	rooms.Leave(c, room)

	assert.Empty(t, rooms.Clients(room))
	assert.Empty(t, rooms.RoomsOf(c.id))
}

func TestMembersOfDeduplicatesConnections(t *testing.T) {
	rooms := NewRooms()
	userID := uuid.New()
	tab1 := NewClient(nil, nil, userID)
	tab2 := NewClient(nil, nil, userID)
	otherID := uuid.New()
	other := NewClient(nil, nil, otherID)
	room := ProjectRoom(uuid.New())

	rooms.Join(tab1, room)
	rooms.Join(tab2, room)
	rooms.Join(other, room)

	members := rooms.MembersOf(room)
	require.Len(t, members, 2)
	assert.ElementsMatch(t, []uuid.UUID{userID, otherID}, members)
	assert.Len(t, rooms.Clients(room), 3)
}

func TestRemoveAllTearsDownEveryMembership(t *testing.T) {
	rooms := NewRooms()
	c := NewClient(nil, nil, uuid.New())
	peer := NewClient(nil, nil, uuid.New())
	roomA := ProjectRoom(uuid.New())
	roomB := ProjectRoom(uuid.New())

	rooms.Join(c, UserRoom(c.userID))
	rooms.Join(c, roomA)
	rooms.Join(c, roomB)
	rooms.Join(peer, roomA)

	rooms.RemoveAll(c)

	assert.Empty(t, rooms.RoomsOf(c.id))
	assert.Len(t, rooms.Clients(roomA), 1)
	assert.Empty(t, rooms.Clients(roomB))
	assert.Empty(t, rooms.Clients(UserRoom(c.userID)))
}
