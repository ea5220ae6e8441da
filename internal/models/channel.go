package models

import "github.com/lukasmoran/accord/internal/permissions"

// ChannelType enumerates the closed set of channel variants. Every
// switch over this type must handle all cases.
type ChannelType int

const (
	ChannelTypeText ChannelType = iota
	ChannelTypeVoice
	ChannelTypeDirectMessage
	ChannelTypeGroup
	ChannelTypeSavedMessages
)

// Channel is a message container. Only Text and Voice channels belong
// to a server and carry role-specific permission overrides; DM, Group
// and SavedMessages channels use membership-based access instead.
type Channel struct {
	ID       int64       `json:"id,string"`
	Type     ChannelType `json:"type"`
	Name     string      `json:"name,omitempty"`
	ServerID int64       `json:"server_id,string,omitempty"`

	// RolePermissions maps role id to the channel-specific override,
	// layered on top of the server-derived value. Text/Voice only.
	RolePermissions map[int64]permissions.Override `json:"role_permissions,omitempty"`

	// DefaultPermissions is the channel's override for members with no
	// matching role override. Text/Voice only.
	DefaultPermissions *permissions.Override `json:"default_permissions,omitempty"`

	// Recipients are the fixed member list of a DM or Group channel.
	Recipients []int64 `json:"recipients,omitempty"`

	// OwnerID is the group owner, or the sole member of SavedMessages.
	OwnerID int64 `json:"owner_id,string,omitempty"`

	LastMessageID *int64 `json:"last_message_id,string,omitempty"`
}

// HasRolePermissions reports whether this channel variant carries
// role-specific overrides.
func (c *Channel) HasRolePermissions() bool {
	switch c.Type {
	case ChannelTypeText, ChannelTypeVoice:
		return true
	case ChannelTypeDirectMessage, ChannelTypeGroup, ChannelTypeSavedMessages:
		return false
	}
	return false
}

// IsRecipient reports whether the user belongs to a DM/Group/Saved
// channel's fixed member set.
func (c *Channel) IsRecipient(userID int64) bool {
	switch c.Type {
	case ChannelTypeSavedMessages:
		return c.OwnerID == userID
	case ChannelTypeDirectMessage, ChannelTypeGroup:
		for _, r := range c.Recipients {
			if r == userID {
				return true
			}
		}
		return false
	case ChannelTypeText, ChannelTypeVoice:
		return false
	}
	return false
}
