package service

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasknest/realtime/internal/transport/ws"
)

type sentFrame struct {
	method    string
	userID    uuid.UUID
	projectID uuid.UUID
	exclude   *uuid.UUID
	event     *ws.Event
}

// fakeBroadcaster records fan-out calls instead of touching connections.
type fakeBroadcaster struct {
	frames     []sentFrame
	userOnline bool
	onSend     func()
}

func (f *fakeBroadcaster) SendToUser(userID uuid.UUID, evt *ws.Event) bool {
	if f.onSend != nil {
		f.onSend()
	}
	f.frames = append(f.frames, sentFrame{method: "user", userID: userID, event: evt})
	return f.userOnline
}

func (f *fakeBroadcaster) SendToProject(projectID uuid.UUID, evt *ws.Event, excludeUserID *uuid.UUID) {
	f.frames = append(f.frames, sentFrame{method: "project", projectID: projectID, exclude: excludeUserID, event: evt})
}

func (f *fakeBroadcaster) BroadcastGlobal(evt *ws.Event) {
	f.frames = append(f.frames, sentFrame{method: "global", event: evt})
}

func TestTaskStatusChangedExcludesActor(t *testing.T) {
	b := &fakeBroadcaster{}
	svc := NewAnnounceService(b, zerolog.Nop())

	projectID, taskID, actorID := uuid.New(), uuid.New(), uuid.New()
	svc.TaskStatusChanged(projectID, taskID, "in_progress", actorID)

	require.Len(t, b.frames, 1)
	f := b.frames[0]
	assert.Equal(t, "project", f.method)
	assert.Equal(t, projectID, f.projectID)
	require.NotNil(t, f.exclude)
	assert.Equal(t, actorID, *f.exclude)
	assert.Equal(t, ws.EventTypeTaskStatusChanged, f.event.Type)

	var p ws.TaskStatusPayload
	require.NoError(t, json.Unmarshal(f.event.Payload, &p))
	assert.Equal(t, taskID, p.TaskID)
	assert.Equal(t, "in_progress", p.Status)
	assert.NotZero(t, f.event.Timestamp)
}

func TestMessageReceivedExcludesSender(t *testing.T) {
	b := &fakeBroadcaster{}
	svc := NewAnnounceService(b, zerolog.Nop())

	senderID := uuid.New()
	svc.MessageReceived(uuid.New(), uuid.New(), uuid.New(), senderID, "hey there")

	require.Len(t, b.frames, 1)
	require.NotNil(t, b.frames[0].exclude)
	assert.Equal(t, senderID, *b.frames[0].exclude)
	assert.Equal(t, ws.EventTypeMessageReceived, b.frames[0].event.Type)
}

func TestProjectNotificationAndMemberUpdateExcludeNobody(t *testing.T) {
	b := &fakeBroadcaster{}
	svc := NewAnnounceService(b, zerolog.Nop())

	svc.ProjectNotification(uuid.New(), "milestone reached")
	svc.MemberUpdate(uuid.New(), uuid.New(), "added")

	require.Len(t, b.frames, 2)
	assert.Nil(t, b.frames[0].exclude)
	assert.Equal(t, ws.EventTypeProjectNotification, b.frames[0].event.Type)
	assert.Nil(t, b.frames[1].exclude)
	assert.Equal(t, ws.EventTypeMemberUpdate, b.frames[1].event.Type)
}

func TestSystemAnnouncementGoesGlobal(t *testing.T) {
	b := &fakeBroadcaster{}
	svc := NewAnnounceService(b, zerolog.Nop())

	svc.SystemAnnouncement("scheduled maintenance")

	require.Len(t, b.frames, 1)
	assert.Equal(t, "global", b.frames[0].method)
	assert.Equal(t, ws.EventTypeSystemAnnouncement, b.frames[0].event.Type)

	var p ws.AnnouncementPayload
	require.NoError(t, json.Unmarshal(b.frames[0].event.Payload, &p))
	assert.Equal(t, "scheduled maintenance", p.Message)
}
