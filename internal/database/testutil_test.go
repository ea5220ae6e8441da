package database

import (
	"context"
	"os"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lukasmoran/accord/internal/models"
)

// testPool returns a pgxpool.Pool connected to the test database.
// It skips the test if DATABASE_URL is not set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	pool, err := NewPostgresPool(context.Background(), dsn, 4, 1)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

// testIDCounter provides unique IDs across all tests in the package.
// Starts well above zero to avoid conflicts with any existing data.
var testIDCounter int64 = 100000

func nextID() int64 {
	return atomic.AddInt64(&testIDCounter, 1)
}

// deleteRow registers cleanup removal of a single row by primary key.
func deleteRow(t *testing.T, pool *pgxpool.Pool, table string, id int64) {
	t.Helper()
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM `+table+` WHERE id = $1`, id)
	})
}

func createTestChannel(t *testing.T, pool *pgxpool.Pool) *models.Channel {
	t.Helper()
	ch := &models.Channel{ID: nextID(), Type: models.ChannelTypeText, Name: "general"}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO channels (id, type, name) VALUES ($1, $2, $3)`,
		ch.ID, ch.Type, ch.Name,
	)
	if err != nil {
		t.Fatalf("createTestChannel: %v", err)
	}
	deleteRow(t, pool, "channels", ch.ID)
	return ch
}

func createTestFile(t *testing.T, pool *pgxpool.Pool, repo AttachmentRepository, bucket string) *models.File {
	t.Helper()
	f := &models.File{
		ID:          nextID(),
		Bucket:      bucket,
		Filename:    "image.png",
		ContentType: "image/png",
		Size:        12345,
		StorageKey:  "uploads/test/image.png",
		UploaderID:  nextID(),
	}
	if err := repo.CreatePending(context.Background(), f); err != nil {
		t.Fatalf("createTestFile: %v", err)
	}
	deleteRow(t, pool, "files", f.ID)
	return f
}
