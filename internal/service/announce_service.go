package service

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tasknest/realtime/internal/transport/ws"
)

// Broadcaster is the realtime fan-out capability handed to everything that
// publishes events. Callers persist their mutation first; the broadcast is
// only the live echo and may reach nobody.
type Broadcaster interface {
	SendToUser(userID uuid.UUID, evt *ws.Event) bool
	SendToProject(projectID uuid.UUID, evt *ws.Event, excludeUserID *uuid.UUID)
	BroadcastGlobal(evt *ws.Event)
}

// AnnounceService wraps the Broadcaster with one typed helper per server
// event, so controllers never build wire envelopes by hand.
type AnnounceService struct {
	broadcaster Broadcaster
	logger      zerolog.Logger
}

func NewAnnounceService(broadcaster Broadcaster, logger zerolog.Logger) *AnnounceService {
	return &AnnounceService{
		broadcaster: broadcaster,
		logger:      logger.With().Str("component", "announce").Logger(),
	}
}

// TaskStatusChanged tells a project room about a task transition. The
// actor is excluded - they already see their own change.
func (s *AnnounceService) TaskStatusChanged(projectID, taskID uuid.UUID, status string, actorID uuid.UUID) {
	evt, err := ws.NewEvent(ws.EventTypeTaskStatusChanged, ws.TaskStatusPayload{
		ProjectID: projectID,
		TaskID:    taskID,
		Status:    status,
		ActorID:   actorID,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal error")
		return
	}
	s.broadcaster.SendToProject(projectID, evt, &actorID)
}

// MessageReceived tells a project room about a new discussion message,
// excluding the sender.
func (s *AnnounceService) MessageReceived(projectID, discussionID, messageID, senderID uuid.UUID, preview string) {
	evt, err := ws.NewEvent(ws.EventTypeMessageReceived, ws.MessagePayload{
		ProjectID:    projectID,
		DiscussionID: discussionID,
		MessageID:    messageID,
		SenderID:     senderID,
		Preview:      preview,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal error")
		return
	}
	s.broadcaster.SendToProject(projectID, evt, &senderID)
}

// ProjectNotification posts a plain notice to everyone in a project room.
func (s *AnnounceService) ProjectNotification(projectID uuid.UUID, message string) {
	evt, err := ws.NewEvent(ws.EventTypeProjectNotification, ws.ProjectNotificationPayload{
		ProjectID: projectID,
		Message:   message,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal error")
		return
	}
	s.broadcaster.SendToProject(projectID, evt, nil)
}

// MemberUpdate tells a project room about a membership change.
func (s *AnnounceService) MemberUpdate(projectID, userID uuid.UUID, action string) {
	evt, err := ws.NewEvent(ws.EventTypeMemberUpdate, ws.MemberUpdatePayload{
		ProjectID: projectID,
		UserID:    userID,
		Action:    action,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal error")
		return
	}
	s.broadcaster.SendToProject(projectID, evt, nil)
}

// SystemAnnouncement reaches every connected client.
func (s *AnnounceService) SystemAnnouncement(message string) {
	evt, err := ws.NewEvent(ws.EventTypeSystemAnnouncement, ws.AnnouncementPayload{Message: message})
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal error")
		return
	}
	s.broadcaster.BroadcastGlobal(evt)
}
