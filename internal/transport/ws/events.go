package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/tasknest/realtime/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeJoinProject    = "join_project"
	EventTypeLeaveProject   = "leave_project"
	EventTypeTypingStart    = "typing_start"
	EventTypeTypingStop     = "typing_stop"
	EventTypeUpdatePresence = "update_presence"
	EventTypePing           = "ping"
)

// Event types - Server → Client
const (
	EventTypeTaskStatusChanged   = "task_status_changed"
	EventTypeMessageReceived     = "message_received"
	EventTypeUserTyping          = "user_typing"
	EventTypeUserStoppedTyping   = "user_stopped_typing"
	EventTypeUserStatusChanged   = "user_status_changed"
	EventTypeNewNotification     = "new_notification"
	EventTypeProjectNotification = "project_notification"
	EventTypeSystemAnnouncement  = "system_announcement"
	EventTypeMemberUpdate        = "member_update"
	EventTypePong                = "pong"
	EventTypeError               = "error"
)

// Event is the base envelope for all WebSocket messages. The shape (and the
// camelCase payload keys below) are fixed by the deployed dashboard client.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type ProjectPayload struct {
	ProjectID uuid.UUID `json:"projectId"`
}

type TypingSignalPayload struct {
	ProjectID    uuid.UUID `json:"projectId"`
	DiscussionID uuid.UUID `json:"discussionId"`
}

type UpdatePresencePayload struct {
	Status string `json:"status"`
}

// --- Server → Client payloads ---

type TypingPayload struct {
	UserID       uuid.UUID `json:"userId"`
	ProjectID    uuid.UUID `json:"projectId"`
	DiscussionID uuid.UUID `json:"discussionId"`
}

type PresencePayload struct {
	UserID uuid.UUID `json:"userId"`
	Status string    `json:"status"`
}

type TaskStatusPayload struct {
	ProjectID uuid.UUID `json:"projectId"`
	TaskID    uuid.UUID `json:"taskId"`
	Status    string    `json:"status"`
	ActorID   uuid.UUID `json:"actorId"`
}

type MessagePayload struct {
	ProjectID    uuid.UUID `json:"projectId"`
	DiscussionID uuid.UUID `json:"discussionId"`
	MessageID    uuid.UUID `json:"messageId"`
	SenderID     uuid.UUID `json:"senderId"`
	Preview      string    `json:"preview,omitempty"`
}

type NotificationPayload struct {
	domain.Notification
}

type ProjectNotificationPayload struct {
	ProjectID uuid.UUID `json:"projectId"`
	Message   string    `json:"message"`
}

type AnnouncementPayload struct {
	Message string `json:"message"`
}

type MemberUpdatePayload struct {
	ProjectID uuid.UUID `json:"projectId"`
	UserID    uuid.UUID `json:"userId"`
	Action    string    `json:"action"` // "added" | "removed" | "role_changed"
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
