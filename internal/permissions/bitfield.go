package permissions

import "strings"

// Value is a bitfield representing a set of permissions. The bit
// positions form a closed, versioned enumeration shared by server-level
// and channel-level permission sets: a bit means the same capability
// everywhere it appears. Adding a permission is a schema change, never
// a runtime operation.
type Value uint64

const (
	ManageChannel     Value = 1 << 0
	ManageServer      Value = 1 << 1
	ManagePermissions Value = 1 << 2
	ManageRole        Value = 1 << 3
	ManageWebhooks    Value = 1 << 4

	KickMembers     Value = 1 << 6
	BanMembers      Value = 1 << 7
	TimeoutMembers  Value = 1 << 8
	AssignRoles     Value = 1 << 9
	ChangeNickname  Value = 1 << 10
	ManageNicknames Value = 1 << 11
	ChangeAvatar    Value = 1 << 12
	RemoveAvatars   Value = 1 << 13

	ViewChannel        Value = 1 << 20
	ReadMessageHistory Value = 1 << 21
	SendMessage        Value = 1 << 22
	ManageMessages     Value = 1 << 23
	InviteOthers       Value = 1 << 25
	SendEmbeds         Value = 1 << 26
	UploadFiles        Value = 1 << 27
	Masquerade         Value = 1 << 28
	React              Value = 1 << 29

	Connect       Value = 1 << 30 // voice
	Speak         Value = 1 << 31 // voice
	MuteMembers   Value = 1 << 33 // voice
	DeafenMembers Value = 1 << 34 // voice
	MoveMembers   Value = 1 << 35 // voice

	// GrantAllSafe is every grantable permission.
	GrantAllSafe = Value(0x000F_FFFF_FFFF_FFFF)
)

// DefaultView is the permission set granted in view-only contexts.
var DefaultView = ViewChannel | ReadMessageHistory

// DefaultDirectMessages is the permission set granted to recipients of
// a direct message or group channel.
var DefaultDirectMessages = DefaultView | SendMessage | ManageChannel |
	SendEmbeds | UploadFiles | Masquerade | React | InviteOthers | Connect | Speak

// DefaultSavedMessages grants everything; the only member is the owner.
var DefaultSavedMessages = GrantAllSafe

// Has returns true if v contains all bits in flag.
func (v Value) Has(flag Value) bool { return v&flag == flag }

// Add returns v with the bits from flag set.
func (v Value) Add(flag Value) Value { return v | flag }

// Remove returns v with the bits from flag cleared.
func (v Value) Remove(flag Value) Value { return v &^ flag }

var flagNames = map[Value]string{
	ManageChannel:      "MANAGE_CHANNEL",
	ManageServer:       "MANAGE_SERVER",
	ManagePermissions:  "MANAGE_PERMISSIONS",
	ManageRole:         "MANAGE_ROLE",
	ManageWebhooks:     "MANAGE_WEBHOOKS",
	KickMembers:        "KICK_MEMBERS",
	BanMembers:         "BAN_MEMBERS",
	TimeoutMembers:     "TIMEOUT_MEMBERS",
	AssignRoles:        "ASSIGN_ROLES",
	ChangeNickname:     "CHANGE_NICKNAME",
	ManageNicknames:    "MANAGE_NICKNAMES",
	ChangeAvatar:       "CHANGE_AVATAR",
	RemoveAvatars:      "REMOVE_AVATARS",
	ViewChannel:        "VIEW_CHANNEL",
	ReadMessageHistory: "READ_MESSAGE_HISTORY",
	SendMessage:        "SEND_MESSAGE",
	ManageMessages:     "MANAGE_MESSAGES",
	InviteOthers:       "INVITE_OTHERS",
	SendEmbeds:         "SEND_EMBEDS",
	UploadFiles:        "UPLOAD_FILES",
	Masquerade:         "MASQUERADE",
	React:              "REACT",
	Connect:            "CONNECT",
	Speak:              "SPEAK",
	MuteMembers:        "MUTE_MEMBERS",
	DeafenMembers:      "DEAFEN_MEMBERS",
	MoveMembers:        "MOVE_MEMBERS",
}

// String returns the set flag names separated by " | ".
func (v Value) String() string {
	if v == 0 {
		return "NONE"
	}

	var names []string
	for bit, name := range flagNames {
		if v.Has(bit) {
			names = append(names, name)
		}
	}

	if len(names) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(names, " | ")
}
