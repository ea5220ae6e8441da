package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lukasmoran/accord/internal/models"
)

type serverRepo struct {
	pool *pgxpool.Pool
}

func NewServerRepository(pool *pgxpool.Pool) ServerRepository {
	return &serverRepo{pool: pool}
}

func (r *serverRepo) GetByID(ctx context.Context, id int64) (*models.Server, error) {
	s := &models.Server{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, name, description, channel_ids, default_permissions
		 FROM servers WHERE id = $1`, id,
	).Scan(&s.ID, &s.OwnerID, &s.Name, &s.Description, &s.ChannelIDs, &s.DefaultPermissions)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, allow_perms, deny_perms, colour, hoist, rank
		 FROM roles WHERE server_id = $1`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	s.Roles = make(map[int64]models.Role)
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(
			&role.ID, &role.Name, &role.Permissions.Allow, &role.Permissions.Deny,
			&role.Colour, &role.Hoist, &role.Rank,
		); err != nil {
			return nil, err
		}
		s.Roles[role.ID] = role
	}
	return s, rows.Err()
}
