package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tasknest/realtime/internal/domain"
)

type PresenceRepo struct {
	pool *pgxpool.Pool
}

func NewPresenceRepo(pool *pgxpool.Pool) *PresenceRepo {
	return &PresenceRepo{pool: pool}
}

func (r *PresenceRepo) SetOnline(ctx context.Context, userID uuid.UUID) error {
	query := `
		INSERT INTO presence (user_id, is_online, status, last_seen)
		VALUES ($1, true, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET is_online = true, status = $2`

	_, err := r.pool.Exec(ctx, query, userID, domain.StatusOnline)
	return err
}

func (r *PresenceRepo) SetOffline(ctx context.Context, userID uuid.UUID, lastSeen time.Time) error {
	query := `
		INSERT INTO presence (user_id, is_online, status, last_seen)
		VALUES ($1, false, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET is_online = false, status = $2, last_seen = $3`

	_, err := r.pool.Exec(ctx, query, userID, domain.StatusOffline, lastSeen)
	return err
}

func (r *PresenceRepo) SetStatus(ctx context.Context, userID uuid.UUID, status string) error {
	// A client-declared "offline" (e.g. invisible mode) also timestamps last_seen.
	query := `
		INSERT INTO presence (user_id, is_online, status, last_seen)
		VALUES ($1, $2 <> 'offline', $2, now())
		ON CONFLICT (user_id) DO UPDATE SET
			is_online = $2 <> 'offline',
			status    = $2,
			last_seen = CASE WHEN $2 = 'offline' THEN now() ELSE presence.last_seen END`

	_, err := r.pool.Exec(ctx, query, userID, status)
	return err
}
