package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tasknest/realtime/internal/domain"
)

// UserRepository is the user-lookup capability of the persistence layer.
// The realtime service only reads users; account management lives in the
// main TaskNest API.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type PresenceRepository interface {
	SetOnline(ctx context.Context, userID uuid.UUID) error
	SetOffline(ctx context.Context, userID uuid.UUID, lastSeen time.Time) error
	SetStatus(ctx context.Context, userID uuid.UUID, status string) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
}
