package database

import (
	"context"

	"github.com/lukasmoran/accord/internal/models"
	"github.com/lukasmoran/accord/internal/permissions"
)

// Repository contracts. GetByID-style reads return (nil, nil) when the
// row is absent; callers decide whether absence is an error.

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type ServerRepository interface {
	// GetByID hydrates the server including its role mapping.
	GetByID(ctx context.Context, id int64) (*models.Server, error)
}

type ChannelRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Channel, error)
	// SetRolePermission upserts a role's channel-specific override in
	// one statement; the whole proposed override is written or nothing.
	SetRolePermission(ctx context.Context, channelID, roleID int64, o permissions.Override) error
	UpdateLastMessageID(ctx context.Context, channelID, messageID int64) error
	// GetIDsForUser returns every channel the user can receive events
	// for: server channels via membership plus direct/group channels
	// via recipiency.
	GetIDsForUser(ctx context.Context, userID int64) ([]int64, error)
}

type MemberRepository interface {
	GetByServerAndUser(ctx context.Context, serverID, userID int64) (*models.Member, error)
}

type MessageRepository interface {
	// Insert persists the fully assembled message as a single atomic
	// record.
	Insert(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	// Append adds embeds to an existing message without touching any
	// other field.
	Append(ctx context.Context, id int64, data models.AppendMessage) error
}

type AttachmentRepository interface {
	// CreatePending records an uploaded file awaiting claim.
	CreatePending(ctx context.Context, f *models.File) error
	// FindAndUse atomically claims a pending attachment for a parent.
	// The claim succeeds for exactly one caller; an already-claimed or
	// unknown id returns (nil, nil).
	FindAndUse(ctx context.Context, id int64, bucket, parentKind string, parentID int64) (*models.File, error)
}

type WebhookRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Webhook, error)
}

type UnreadRepository interface {
	// AddMention records a mention of userID in channelID by messageID.
	AddMention(ctx context.Context, channelID, userID, messageID int64) error
}
