package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidStatus = errors.New("invalid presence status")

// Presence statuses. "away" and "busy" are client-declared; "online" and
// "offline" are also derived from the live connection count.
const (
	StatusOnline  = "online"
	StatusAway    = "away"
	StatusBusy    = "busy"
	StatusOffline = "offline"
)

// PresenceRecord is the durable per-user presence fact. IsOnline holds iff
// the user has at least one live connection.
type PresenceRecord struct {
	UserID   uuid.UUID `json:"user_id"`
	IsOnline bool      `json:"is_online"`
	Status   string    `json:"status"`
	LastSeen time.Time `json:"last_seen"`
}

func ValidStatus(status string) bool {
	switch status {
	case StatusOnline, StatusAway, StatusBusy, StatusOffline:
		return true
	}
	return false
}
