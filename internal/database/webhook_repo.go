package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lukasmoran/accord/internal/models"
)

type webhookRepo struct {
	pool *pgxpool.Pool
}

func NewWebhookRepository(pool *pgxpool.Pool) WebhookRepository {
	return &webhookRepo{pool: pool}
}

func (r *webhookRepo) GetByID(ctx context.Context, id int64) (*models.Webhook, error) {
	w := &models.Webhook{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, channel_id, name, avatar, token_hash FROM webhooks WHERE id = $1`, id,
	).Scan(&w.ID, &w.ChannelID, &w.Name, &w.Avatar, &w.TokenHash)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return w, err
}
