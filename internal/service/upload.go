package service

import (
	"context"
	"io"
	"strings"

	"github.com/lukasmoran/accord/internal/database"
	"github.com/lukasmoran/accord/internal/models"
	"github.com/lukasmoran/accord/internal/snowflake"
	"github.com/lukasmoran/accord/internal/storage"
)

// maxUploadSize bounds a single pending upload.
const maxUploadSize = 20 << 20 // 20 MiB

// ObjectStore is the object-storage surface the upload service needs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	GetURL(key string) string
}

// UploadService stores uploads and records them as pending files
// awaiting claim by a message send.
type UploadService struct {
	files database.AttachmentRepository
	store ObjectStore
	gen   *snowflake.Generator
}

// NewUploadService creates an UploadService.
func NewUploadService(files database.AttachmentRepository, store ObjectStore, gen *snowflake.Generator) *UploadService {
	return &UploadService{files: files, store: store, gen: gen}
}

// CreatePending uploads the object and records a pending file. The
// file stays unclaimed until a message send uses it; unclaimed files
// are garbage, not errors.
func (s *UploadService) CreatePending(ctx context.Context, uploaderID int64, filename, contentType string, size int64, r io.Reader) (*models.File, error) {
	filename = sanitizeFilename(filename)
	if filename == "" {
		return nil, BadRequest("INVALID_FILENAME", "filename is required")
	}
	if size <= 0 || size > maxUploadSize {
		e := BadRequest("FILE_TOO_LARGE", "file exceeds the upload size limit")
		e.Max = maxUploadSize
		return nil, e
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := s.gen.Generate().Int64()
	key := storage.ObjectKey(attachmentBucket, id, filename)

	if err := s.store.Upload(ctx, key, r, size, contentType); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	f := &models.File{
		ID:          id,
		Bucket:      attachmentBucket,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		StorageKey:  key,
		URL:         s.store.GetURL(key),
		UploaderID:  uploaderID,
	}
	if err := s.files.CreatePending(ctx, f); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	return f, nil
}

// sanitizeFilename strips path separators so the filename cannot
// influence the storage key layout.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
