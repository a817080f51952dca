package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tasknest/realtime/internal/domain"
	"github.com/tasknest/realtime/internal/repository"
	"github.com/tasknest/realtime/internal/transport/ws"
)

// NotificationService owns the persist-then-announce contract: the
// notification document is durably created first, and only then echoed to
// the recipient's private room. A recipient who is offline misses the echo
// but finds the document in their notification center.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	broadcaster      Broadcaster
	logger           zerolog.Logger
}

func NewNotificationService(notificationRepo repository.NotificationRepository, broadcaster Broadcaster, logger zerolog.Logger) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		broadcaster:      broadcaster,
		logger:           logger.With().Str("component", "notifications").Logger(),
	}
}

type PushInput struct {
	UserID    uuid.UUID  `json:"user_id"`
	ActorID   *uuid.UUID `json:"actor_id,omitempty"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
}

// Push persists a notification and announces it on the recipient's user
// room. The push succeeds as soon as the write does; whether anyone was
// live to receive the echo never fails it.
func (s *NotificationService) Push(ctx context.Context, input PushInput) (*domain.Notification, error) {
	n := &domain.Notification{
		ID:        uuid.New(),
		UserID:    input.UserID,
		ActorID:   input.ActorID,
		ProjectID: input.ProjectID,
		Type:      input.Type,
		Title:     input.Title,
		Body:      input.Body,
		CreatedAt: time.Now(),
	}

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}

	evt, err := ws.NewEvent(ws.EventTypeNewNotification, ws.NotificationPayload{Notification: *n})
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal error")
		return n, nil
	}

	if !s.broadcaster.SendToUser(n.UserID, evt) {
		s.logger.Debug().Stringer("user_id", n.UserID).Msg("recipient not connected, live echo skipped")
	}

	return n, nil
}
