package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lukasmoran/accord/internal/auth"
	"github.com/lukasmoran/accord/internal/database"
)

// Manager manages all active WebSocket connections and event routing.
// Subscriptions are keyed by channel: a user receives an event when
// they are subscribed to the channel it was published to.
type Manager struct {
	mu            sync.RWMutex
	connections   map[int64]*Connection    // userID → connection
	subscriptions map[int64]map[int64]bool // channelID → set of userIDs
	sessions      map[string]*Connection   // sessionID → connection

	tokens   *auth.TokenService
	channels database.ChannelRepository
}

// NewManager creates a new gateway Manager.
func NewManager(tokens *auth.TokenService, channels database.ChannelRepository) *Manager {
	return &Manager{
		connections:   make(map[int64]*Connection),
		subscriptions: make(map[int64]map[int64]bool),
		sessions:      make(map[string]*Connection),
		tokens:        tokens,
		channels:      channels,
	}
}

// register adds a connection to the manager.
func (m *Manager) register(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Disconnect existing connection for this user.
	if old, ok := m.connections[c.UserID]; ok {
		old.SendPayload(GatewayPayload{Op: OpReconnect})
		old.Close()
		delete(m.sessions, old.SessionID)
	}

	m.connections[c.UserID] = c
	m.sessions[c.SessionID] = c
}

// unregister removes a connection from the manager and cleans up
// subscriptions.
func (m *Manager) unregister(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.connections[c.UserID]; ok && existing == c {
		delete(m.connections, c.UserID)

		for channelID, members := range m.subscriptions {
			delete(members, c.UserID)
			if len(members) == 0 {
				delete(m.subscriptions, channelID)
			}
		}
	}

	delete(m.sessions, c.SessionID)
}

// subscribe adds a user to a channel's event subscription.
func (m *Manager) subscribe(userID, channelID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subscriptions[channelID] == nil {
		m.subscriptions[channelID] = make(map[int64]bool)
	}
	m.subscriptions[channelID][userID] = true
}

// SubscribeToChannel adds a user to a channel's event subscription.
func (m *Manager) SubscribeToChannel(userID, channelID int64) {
	m.subscribe(userID, channelID)
}

// UnsubscribeFromChannel removes a user from a channel's event
// subscription.
func (m *Manager) UnsubscribeFromChannel(userID, channelID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if members, ok := m.subscriptions[channelID]; ok {
		delete(members, userID)
		if len(members) == 0 {
			delete(m.subscriptions, channelID)
		}
	}
}

// DispatchToUser sends a dispatch event to a specific connected user.
func (m *Manager) DispatchToUser(userID int64, event string, data any) {
	m.mu.RLock()
	c, ok := m.connections[userID]
	m.mu.RUnlock()

	if ok {
		c.SendEvent(event, data)
	}
}

// PublishToChannel sends a dispatch event to all users subscribed to a
// channel.
func (m *Manager) PublishToChannel(channelID int64, event string, data any) {
	m.mu.RLock()
	members := m.subscriptions[channelID]
	conns := make([]*Connection, 0, len(members))
	for userID := range members {
		if c, ok := m.connections[userID]; ok {
			conns = append(conns, c)
		}
	}
	m.mu.RUnlock()

	for _, c := range conns {
		c.SendEvent(event, data)
	}
}

// handleIdentify processes an IDENTIFY payload from a client.
func (m *Manager) handleIdentify(c *Connection, data json.RawMessage) {
	var identify IdentifyData
	if err := json.Unmarshal(data, &identify); err != nil {
		slog.Error("invalid identify data", "error", err)
		c.Close()
		return
	}

	claims, err := m.tokens.ValidateAccessToken(identify.Token)
	if err != nil {
		slog.Warn("invalid token in identify", "error", err)
		c.Close()
		return
	}

	c.UserID = claims.UserID
	c.SessionID = uuid.NewString()

	// Get the user's channels and subscribe.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	channelIDs, err := m.channels.GetIDsForUser(ctx, c.UserID)
	if err != nil {
		slog.Error("failed to get channels for user", "userID", c.UserID, "error", err)
		c.Close()
		return
	}

	m.register(c)

	for _, id := range channelIDs {
		m.subscribe(c.UserID, id)
	}

	c.SendEvent(EventReady, ReadyData{
		SessionID: c.SessionID,
		UserID:    c.UserID,
		Channels:  channelIDs,
	})
}
