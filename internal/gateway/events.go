package gateway

import (
	"encoding/json"

	"github.com/lukasmoran/accord/internal/models"
	"github.com/lukasmoran/accord/internal/permissions"
)

// Op codes for gateway payloads.
const (
	OpDispatch     = 0
	OpHeartbeat    = 1
	OpIdentify     = 2
	OpReconnect    = 7
	OpHello        = 10
	OpHeartbeatAck = 11
)

// Event names for DISPATCH payloads.
const (
	EventReady         = "READY"
	EventMessage       = "MESSAGE"
	EventMessageAppend = "MESSAGE_APPEND"
	EventChannelAck    = "CHANNEL_ACK"
	EventChannelUpdate = "CHANNEL_UPDATE"
)

// GatewayPayload is the envelope for all gateway messages.
type GatewayPayload struct {
	Op       int             `json:"op"`
	Data     json.RawMessage `json:"d,omitempty"`
	Sequence *int64          `json:"s,omitempty"`
	Event    *string         `json:"t,omitempty"`
}

// IdentifyData is sent by the client in an Op 2 IDENTIFY.
type IdentifyData struct {
	Token string `json:"token"`
}

// HelloData is sent by the server after WebSocket connect.
type HelloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

// ReadyData is sent by the server after successful IDENTIFY.
type ReadyData struct {
	SessionID string  `json:"session_id"`
	UserID    int64   `json:"user_id,string"`
	Channels  []int64 `json:"channels"`
}

// MessageAppendData is the payload for MESSAGE_APPEND events.
type MessageAppendData struct {
	ID        int64                `json:"id,string"`
	ChannelID int64                `json:"channel_id,string"`
	Append    models.AppendMessage `json:"append"`
}

// ChannelUpdateData is the payload for CHANNEL_UPDATE events carrying a
// partial channel patch.
type ChannelUpdateData struct {
	ID              int64                          `json:"id,string"`
	RolePermissions map[int64]permissions.Override `json:"role_permissions,omitempty"`
	DefaultPerms    *permissions.Override          `json:"default_permissions,omitempty"`
}
