package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type unreadRepo struct {
	pool *pgxpool.Pool
}

func NewUnreadRepository(pool *pgxpool.Pool) UnreadRepository {
	return &unreadRepo{pool: pool}
}

func (r *unreadRepo) AddMention(ctx context.Context, channelID, userID, messageID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO unreads (channel_id, user_id, mentions)
		 VALUES ($1, $2, ARRAY[$3]::BIGINT[])
		 ON CONFLICT (channel_id, user_id)
		 DO UPDATE SET mentions = array_append(unreads.mentions, $3)`,
		channelID, userID, messageID,
	)
	return err
}
