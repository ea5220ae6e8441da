package models

// SystemMessageType enumerates the closed set of platform-authored
// message variants. Every switch over this type must handle all cases.
type SystemMessageType string

const (
	SystemText                      SystemMessageType = "text"
	SystemUserAdded                 SystemMessageType = "user_added"
	SystemUserRemove                SystemMessageType = "user_remove"
	SystemUserJoined                SystemMessageType = "user_joined"
	SystemUserLeft                  SystemMessageType = "user_left"
	SystemUserKicked                SystemMessageType = "user_kicked"
	SystemUserBanned                SystemMessageType = "user_banned"
	SystemChannelRenamed            SystemMessageType = "channel_renamed"
	SystemChannelDescriptionChanged SystemMessageType = "channel_description_changed"
	SystemChannelIconChanged        SystemMessageType = "channel_icon_changed"
	SystemChannelOwnershipChanged   SystemMessageType = "channel_ownership_changed"
)

// SystemAuthorID is the sentinel author stamped on platform-authored
// messages.
const SystemAuthorID int64 = 0

// SystemMessage is a platform-authored, non-user message. Which fields
// are meaningful depends on Type.
type SystemMessage struct {
	Type    SystemMessageType `json:"type"`
	Content string            `json:"content,omitempty"`
	UserID  int64             `json:"id,string,omitempty"`
	ByID    int64             `json:"by,string,omitempty"`
	Name    string            `json:"name,omitempty"`
	FromID  int64             `json:"from,string,omitempty"`
	ToID    int64             `json:"to,string,omitempty"`
}

// IntoMessage builds the message record for a system event. System
// messages are not client-authored: they bypass validation,
// idempotency and mention/attachment processing entirely. Authorship
// is stamped by the caller.
func (s SystemMessage) IntoMessage(id, channelID int64) *Message {
	sys := s
	return &Message{
		ID:        id,
		ChannelID: channelID,
		System:    &sys,
	}
}
