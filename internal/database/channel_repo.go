package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lukasmoran/accord/internal/models"
	"github.com/lukasmoran/accord/internal/permissions"
)

type channelRepo struct {
	pool *pgxpool.Pool
}

func NewChannelRepository(pool *pgxpool.Pool) ChannelRepository {
	return &channelRepo{pool: pool}
}

func (r *channelRepo) GetByID(ctx context.Context, id int64) (*models.Channel, error) {
	c := &models.Channel{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, type, name, server_id, role_permissions, default_permissions,
		        recipients, owner_id, last_message_id
		 FROM channels WHERE id = $1`, id,
	).Scan(
		&c.ID, &c.Type, &c.Name, &c.ServerID, &c.RolePermissions, &c.DefaultPermissions,
		&c.Recipients, &c.OwnerID, &c.LastMessageID,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *channelRepo) SetRolePermission(ctx context.Context, channelID, roleID int64, o permissions.Override) error {
	// Single-statement upsert into the override map so a concurrent
	// reader sees either the old override or the whole new one.
	_, err := r.pool.Exec(ctx,
		`UPDATE channels
		 SET role_permissions = jsonb_set(role_permissions, ARRAY[$2::TEXT], $3::JSONB)
		 WHERE id = $1`,
		channelID, roleID, o,
	)
	return err
}

func (r *channelRepo) UpdateLastMessageID(ctx context.Context, channelID, messageID int64) error {
	// Guard against out-of-order task execution: only move forward.
	_, err := r.pool.Exec(ctx,
		`UPDATE channels SET last_message_id = $2
		 WHERE id = $1 AND (last_message_id IS NULL OR last_message_id < $2)`,
		channelID, messageID,
	)
	return err
}

func (r *channelRepo) GetIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id FROM channels c
		 INNER JOIN members m ON m.server_id = c.server_id
		 WHERE m.user_id = $1
		 UNION
		 SELECT id FROM channels WHERE $1 = ANY(recipients)`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
