package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lukasmoran/accord/internal/idempotency"
	"github.com/lukasmoran/accord/internal/models"
	"github.com/lukasmoran/accord/internal/permissions"
	"github.com/lukasmoran/accord/internal/snowflake"
	"github.com/lukasmoran/accord/internal/tasks"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func testSnowflake() *snowflake.Generator {
	sf, _ := snowflake.NewGenerator(1, 1)
	return sf
}

func strptr(s string) *string { return &s }

// fakeNonceStore is an in-memory claim store with SET NX semantics.
type fakeNonceStore struct {
	mu      sync.Mutex
	claimed map[string]bool
}

func newFakeNonceStore() *fakeNonceStore {
	return &fakeNonceStore{claimed: make(map[string]bool)}
}

func (s *fakeNonceStore) ClaimNonce(_ context.Context, authorID int64, nonce string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%d:%s", authorID, nonce)
	if s.claimed[key] {
		return false, nil
	}
	s.claimed[key] = true
	return true, nil
}

func testKey(authorID int64) *idempotency.Key {
	return idempotency.New(newFakeNonceStore(), authorID)
}

// ---------------------------------------------------------------------------
// Mock gateway dispatcher
// ---------------------------------------------------------------------------

type publishedEvent struct {
	ChannelID int64
	UserID    int64
	Event     string
	Data      any
}

type mockDispatcher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (m *mockDispatcher) PublishToChannel(channelID int64, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{ChannelID: channelID, Event: event, Data: data})
}

func (m *mockDispatcher) DispatchToUser(userID int64, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{UserID: userID, Event: event, Data: data})
}

func (m *mockDispatcher) SubscribeToChannel(userID, channelID int64) {}

func (m *mockDispatcher) UnsubscribeFromChannel(userID, channelID int64) {}

func (m *mockDispatcher) published() []publishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]publishedEvent, len(m.events))
	copy(out, m.events)
	return out
}

// ---------------------------------------------------------------------------
// Mock task queue
// ---------------------------------------------------------------------------

type mockQueue struct {
	mu    sync.Mutex
	tasks []tasks.Task
}

func (m *mockQueue) Enqueue(task tasks.Task) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
	return true
}

func (m *mockQueue) enqueued() []tasks.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]tasks.Task, len(m.tasks))
	copy(out, m.tasks)
	return out
}

func (m *mockQueue) kinds() []tasks.Kind {
	var out []tasks.Kind
	for _, t := range m.enqueued() {
		out = append(out, t.Kind)
	}
	return out
}

// ---------------------------------------------------------------------------
// Mock repositories
// ---------------------------------------------------------------------------

// mockServerRepo implements database.ServerRepository.
type mockServerRepo struct {
	GetByIDFn func(ctx context.Context, id int64) (*models.Server, error)
}

func (m *mockServerRepo) GetByID(ctx context.Context, id int64) (*models.Server, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

// mockChannelRepo implements database.ChannelRepository.
type mockChannelRepo struct {
	GetByIDFn             func(ctx context.Context, id int64) (*models.Channel, error)
	SetRolePermissionFn   func(ctx context.Context, channelID, roleID int64, o permissions.Override) error
	UpdateLastMessageIDFn func(ctx context.Context, channelID, messageID int64) error
	GetIDsForUserFn       func(ctx context.Context, userID int64) ([]int64, error)
}

func (m *mockChannelRepo) GetByID(ctx context.Context, id int64) (*models.Channel, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockChannelRepo) SetRolePermission(ctx context.Context, channelID, roleID int64, o permissions.Override) error {
	if m.SetRolePermissionFn != nil {
		return m.SetRolePermissionFn(ctx, channelID, roleID, o)
	}
	return nil
}

func (m *mockChannelRepo) UpdateLastMessageID(ctx context.Context, channelID, messageID int64) error {
	if m.UpdateLastMessageIDFn != nil {
		return m.UpdateLastMessageIDFn(ctx, channelID, messageID)
	}
	return nil
}

func (m *mockChannelRepo) GetIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	if m.GetIDsForUserFn != nil {
		return m.GetIDsForUserFn(ctx, userID)
	}
	return nil, nil
}

// mockMemberRepo implements database.MemberRepository.
type mockMemberRepo struct {
	GetByServerAndUserFn func(ctx context.Context, serverID, userID int64) (*models.Member, error)
}

func (m *mockMemberRepo) GetByServerAndUser(ctx context.Context, serverID, userID int64) (*models.Member, error) {
	if m.GetByServerAndUserFn != nil {
		return m.GetByServerAndUserFn(ctx, serverID, userID)
	}
	return nil, nil
}

// mockMessageRepo implements database.MessageRepository. Inserted
// messages are recorded and served back by GetByID unless overridden.
type mockMessageRepo struct {
	mu       sync.Mutex
	inserted []*models.Message

	InsertFn  func(ctx context.Context, msg *models.Message) error
	GetByIDFn func(ctx context.Context, id int64) (*models.Message, error)
	AppendFn  func(ctx context.Context, id int64, data models.AppendMessage) error
}

func (m *mockMessageRepo) Insert(ctx context.Context, msg *models.Message) error {
	if m.InsertFn != nil {
		return m.InsertFn(ctx, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserted = append(m.inserted, msg)
	return nil
}

func (m *mockMessageRepo) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.inserted {
		if msg.ID == id {
			return msg, nil
		}
	}
	return nil, nil
}

func (m *mockMessageRepo) Append(ctx context.Context, id int64, data models.AppendMessage) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, id, data)
	}
	return nil
}

func (m *mockMessageRepo) insertedMessages() []*models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Message, len(m.inserted))
	copy(out, m.inserted)
	return out
}

// mockAttachmentRepo implements database.AttachmentRepository with
// real single-claim semantics over an in-memory file set.
type mockAttachmentRepo struct {
	mu    sync.Mutex
	files map[int64]*models.File

	CreatePendingFn func(ctx context.Context, f *models.File) error
	FindAndUseFn    func(ctx context.Context, id int64, bucket, parentKind string, parentID int64) (*models.File, error)
}

func newMockAttachmentRepo(files ...*models.File) *mockAttachmentRepo {
	m := &mockAttachmentRepo{files: make(map[int64]*models.File)}
	for _, f := range files {
		m.files[f.ID] = f
	}
	return m
}

func (m *mockAttachmentRepo) CreatePending(ctx context.Context, f *models.File) error {
	if m.CreatePendingFn != nil {
		return m.CreatePendingFn(ctx, f)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[f.ID] = f
	return nil
}

func (m *mockAttachmentRepo) FindAndUse(ctx context.Context, id int64, bucket, parentKind string, parentID int64) (*models.File, error) {
	if m.FindAndUseFn != nil {
		return m.FindAndUseFn(ctx, id, bucket, parentKind, parentID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok || f.Used || f.Bucket != bucket {
		return nil, nil
	}
	f.Used = true
	f.ParentKind = parentKind
	f.ParentID = &parentID
	claimed := *f
	return &claimed, nil
}

func pendingFile(id int64) *models.File {
	return &models.File{
		ID:          id,
		Bucket:      attachmentBucket,
		Filename:    "photo.png",
		ContentType: "image/png",
		Size:        512,
		UploaderID:  1,
	}
}
