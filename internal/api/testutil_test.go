package api

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lukasmoran/accord/internal/config"
	"github.com/lukasmoran/accord/internal/models"
	"github.com/lukasmoran/accord/internal/permissions"
	"github.com/lukasmoran/accord/internal/service"
	"github.com/lukasmoran/accord/internal/snowflake"
	"github.com/lukasmoran/accord/internal/tasks"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

const (
	testServerID  int64 = 1000
	testChannelID int64 = 2000
	testUserID    int64 = 3000
	testOwnerID   int64 = 9999
	testRoleID    int64 = 6000
)

func newTestContext(method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func setAuthUser(c echo.Context, userID int64) {
	c.Set("user_id", userID)
	c.Set("bot", false)
}

func testSnowflake() *snowflake.Generator {
	sf, _ := snowflake.NewGenerator(1, 1)
	return sf
}

func strptr(s string) *string { return &s }

func testLimits() config.Limits {
	return config.Limits{
		MessageLength:      2000,
		MessageReplies:     5,
		MessageAttachments: 5,
		MessageEmbeds:      10,
		MessageReactions:   20,
	}
}

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

// ---------------------------------------------------------------------------
// Mock repositories
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	GetByIDFn func(ctx context.Context, id int64) (*models.User, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return &models.User{ID: id, Username: "tester"}, nil
}

type mockServerRepo struct {
	GetByIDFn func(ctx context.Context, id int64) (*models.Server, error)
}

func (m *mockServerRepo) GetByID(ctx context.Context, id int64) (*models.Server, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

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

type mockMemberRepo struct {
	GetByServerAndUserFn func(ctx context.Context, serverID, userID int64) (*models.Member, error)
}

func (m *mockMemberRepo) GetByServerAndUser(ctx context.Context, serverID, userID int64) (*models.Member, error) {
	if m.GetByServerAndUserFn != nil {
		return m.GetByServerAndUserFn(ctx, serverID, userID)
	}
	return nil, nil
}

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

type mockAttachmentRepo struct {
	CreatePendingFn func(ctx context.Context, f *models.File) error
	FindAndUseFn    func(ctx context.Context, id int64, bucket, parentKind string, parentID int64) (*models.File, error)
}

func (m *mockAttachmentRepo) CreatePending(ctx context.Context, f *models.File) error {
	if m.CreatePendingFn != nil {
		return m.CreatePendingFn(ctx, f)
	}
	return nil
}

func (m *mockAttachmentRepo) FindAndUse(ctx context.Context, id int64, bucket, parentKind string, parentID int64) (*models.File, error) {
	if m.FindAndUseFn != nil {
		return m.FindAndUseFn(ctx, id, bucket, parentKind, parentID)
	}
	return nil, nil
}

type mockWebhookRepo struct {
	GetByIDFn func(ctx context.Context, id int64) (*models.Webhook, error)
}

func (m *mockWebhookRepo) GetByID(ctx context.Context, id int64) (*models.Webhook, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

// ---------------------------------------------------------------------------
// Handler fixture: real services over mocks
// ---------------------------------------------------------------------------

type handlerFixture struct {
	messages *MessageHandler
	perms    *PermissionHandler

	msgRepo  *mockMessageRepo
	chRepo   *mockChannelRepo
	whRepo   *mockWebhookRepo
	disp     *mockDispatcher
	queue    *mockQueue
	permSvc  *service.PermissionService
	msgSvc   *service.MessageService
	server   *models.Server
	channel  *models.Channel
	memberOf map[int64]*models.Member
}

// newHandlerFixture wires real services over mock repositories: one
// text channel in one server, the authed test user holding a role
// that grants the given permissions via the server default.
func newHandlerFixture(defaultPerms permissions.Value) *handlerFixture {
	f := &handlerFixture{
		msgRepo: &mockMessageRepo{},
		whRepo:  &mockWebhookRepo{},
		disp:    &mockDispatcher{},
		queue:   &mockQueue{},
	}

	f.server = &models.Server{
		ID:                 testServerID,
		OwnerID:            testOwnerID,
		DefaultPermissions: defaultPerms,
		Roles: map[int64]models.Role{
			testRoleID: {ID: testRoleID, Name: "mod", Rank: 5},
		},
	}
	f.channel = &models.Channel{ID: testChannelID, Type: models.ChannelTypeText, ServerID: testServerID}
	f.memberOf = map[int64]*models.Member{
		testUserID: {ServerID: testServerID, UserID: testUserID, Roles: []int64{testRoleID}},
	}

	servers := &mockServerRepo{GetByIDFn: func(_ context.Context, id int64) (*models.Server, error) {
		if id == testServerID {
			return f.server, nil
		}
		return nil, nil
	}}
	f.chRepo = &mockChannelRepo{GetByIDFn: func(_ context.Context, id int64) (*models.Channel, error) {
		if id == testChannelID {
			return f.channel, nil
		}
		return nil, nil
	}}
	members := &mockMemberRepo{GetByServerAndUserFn: func(_ context.Context, serverID, userID int64) (*models.Member, error) {
		if serverID != testServerID {
			return nil, nil
		}
		return f.memberOf[userID], nil
	}}

	f.permSvc = service.NewPermissionService(servers, f.chRepo, members, f.disp)
	f.msgSvc = service.NewMessageService(f.msgRepo, &mockAttachmentRepo{}, f.disp, f.queue,
		testSnowflake(), service.UnicodeEmoji{}, testLimits())

	f.messages = NewMessageHandler(f.msgSvc, f.permSvc, &mockUserRepo{}, f.whRepo, f.chRepo, newFakeNonceStore())
	f.perms = NewPermissionHandler(f.permSvc)
	return f
}
