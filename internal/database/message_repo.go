package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lukasmoran/accord/internal/models"
)

type messageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepo{pool: pool}
}

func (r *messageRepo) Insert(ctx context.Context, msg *models.Message) error {
	// Absent collections are nil on the model, but pgx encodes nil
	// slices and maps as NULL and the collection columns are NOT NULL.
	// Persist them in their empty form instead.
	mentions := msg.Mentions
	if mentions == nil {
		mentions = []int64{}
	}
	replies := msg.Replies
	if replies == nil {
		replies = []int64{}
	}
	reactions := msg.Reactions
	if reactions == nil {
		reactions = map[string][]int64{}
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (id, channel_id, author_id, nonce, webhook, content, system,
		                       attachments, embeds, mentions, replies, reactions, interactions,
		                       masquerade, edited_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		msg.ID, msg.ChannelID, msg.AuthorID, msg.Nonce, msg.Webhook, msg.Content, msg.System,
		msg.Attachments, msg.Embeds, mentions, replies, reactions, msg.Interactions,
		msg.Masquerade, msg.EditedAt, msg.CreatedAt,
	)
	return err
}

func (r *messageRepo) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	m := &models.Message{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, channel_id, author_id, nonce, webhook, content, system,
		        attachments, embeds, mentions, replies, reactions, interactions,
		        masquerade, edited_at, created_at
		 FROM messages WHERE id = $1`, id,
	).Scan(
		&m.ID, &m.ChannelID, &m.AuthorID, &m.Nonce, &m.Webhook, &m.Content, &m.System,
		&m.Attachments, &m.Embeds, &m.Mentions, &m.Replies, &m.Reactions, &m.Interactions,
		&m.Masquerade, &m.EditedAt, &m.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *messageRepo) Append(ctx context.Context, id int64, data models.AppendMessage) error {
	if len(data.Embeds) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE messages
		 SET embeds = COALESCE(embeds, '[]'::JSONB) || $2::JSONB
		 WHERE id = $1`,
		id, data.Embeds,
	)
	return err
}
