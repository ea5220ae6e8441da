package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lukasmoran/accord/internal/models"
)

type memberRepo struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &memberRepo{pool: pool}
}

func (r *memberRepo) GetByServerAndUser(ctx context.Context, serverID, userID int64) (*models.Member, error) {
	m := &models.Member{}
	err := r.pool.QueryRow(ctx,
		`SELECT server_id, user_id, nickname, joined_at, roles, permissions
		 FROM members WHERE server_id = $1 AND user_id = $2`,
		serverID, userID,
	).Scan(&m.ServerID, &m.UserID, &m.Nickname, &m.JoinedAt, &m.Roles, &m.Permissions)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return m, err
}
