package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lukasmoran/accord/internal/models"
)

type attachmentRepo struct {
	pool *pgxpool.Pool
}

func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepo{pool: pool}
}

func (r *attachmentRepo) CreatePending(ctx context.Context, f *models.File) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO files (id, bucket, filename, content_type, size, storage_key, url,
		                    used, uploader_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)`,
		f.ID, f.Bucket, f.Filename, f.ContentType, f.Size, f.StorageKey, f.URL, f.UploaderID,
	)
	return err
}

func (r *attachmentRepo) FindAndUse(ctx context.Context, id int64, bucket, parentKind string, parentID int64) (*models.File, error) {
	// The used = FALSE condition makes the claim atomic: of any number
	// of concurrent claimants, exactly one sees the row update.
	f := &models.File{}
	err := r.pool.QueryRow(ctx,
		`UPDATE files
		 SET used = TRUE, parent_kind = $3, parent_id = $4
		 WHERE id = $1 AND bucket = $2 AND used = FALSE
		 RETURNING id, bucket, filename, content_type, size, storage_key, url,
		           used, parent_kind, parent_id, uploader_id`,
		id, bucket, parentKind, parentID,
	).Scan(
		&f.ID, &f.Bucket, &f.Filename, &f.ContentType, &f.Size, &f.StorageKey, &f.URL,
		&f.Used, &f.ParentKind, &f.ParentID, &f.UploaderID,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return f, err
}
