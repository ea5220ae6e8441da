package service

import (
	"context"

	"github.com/lukasmoran/accord/internal/database"
	"github.com/lukasmoran/accord/internal/gateway"
	"github.com/lukasmoran/accord/internal/models"
	"github.com/lukasmoran/accord/internal/permissions"
)

// PermissionService resolves effective channel permissions and applies
// permission override mutations.
type PermissionService struct {
	servers    database.ServerRepository
	channels   database.ChannelRepository
	members    database.MemberRepository
	dispatcher gateway.Dispatcher
}

// NewPermissionService creates a PermissionService.
func NewPermissionService(
	servers database.ServerRepository,
	channels database.ChannelRepository,
	members database.MemberRepository,
	dispatcher gateway.Dispatcher,
) *PermissionService {
	return &PermissionService{
		servers:    servers,
		channels:   channels,
		members:    members,
		dispatcher: dispatcher,
	}
}

// ResolveForChannel computes the effective permission value of a user
// in a channel. Non-members and non-recipients get a not-found error,
// never a partial permission set.
func (p *PermissionService) ResolveForChannel(ctx context.Context, channel *models.Channel, userID int64) (permissions.Value, error) {
	switch channel.Type {
	case models.ChannelTypeSavedMessages:
		if channel.OwnerID != userID {
			return 0, NotFound("NOT_FOUND", "channel not found")
		}
		return permissions.DefaultSavedMessages, nil

	case models.ChannelTypeDirectMessage:
		if !channel.IsRecipient(userID) {
			return 0, NotFound("NOT_FOUND", "channel not found")
		}
		return permissions.DefaultDirectMessages, nil

	case models.ChannelTypeGroup:
		if channel.OwnerID == userID {
			return permissions.GrantAllSafe, nil
		}
		if !channel.IsRecipient(userID) {
			return 0, NotFound("NOT_FOUND", "channel not found")
		}
		return permissions.DefaultDirectMessages, nil

	case models.ChannelTypeText, models.ChannelTypeVoice:
		return p.resolveServerChannel(ctx, channel, userID)
	}

	return 0, Internal("INTERNAL", "internal server error")
}

func (p *PermissionService) resolveServerChannel(ctx context.Context, channel *models.Channel, userID int64) (permissions.Value, error) {
	server, err := p.servers.GetByID(ctx, channel.ServerID)
	if err != nil {
		return 0, Internal("INTERNAL", "internal server error")
	}
	if server == nil {
		return 0, NotFound("NOT_FOUND", "server not found")
	}
	if server.OwnerID == userID {
		return permissions.GrantAllSafe, nil
	}

	member, err := p.members.GetByServerAndUser(ctx, channel.ServerID, userID)
	if err != nil {
		return 0, Internal("INTERNAL", "internal server error")
	}
	if member == nil {
		return 0, NotFound("NOT_FOUND", "channel not found")
	}

	pctx := permissions.Context{
		Default:        server.DefaultPermissions,
		MemberOverride: member.Permissions,
	}

	for _, roleID := range member.Roles {
		role, ok := server.Roles[roleID]
		if !ok {
			continue
		}
		if !role.Permissions.IsZero() {
			pctx.RoleOverrides = append(pctx.RoleOverrides, permissions.RankedOverride{
				RoleID:   roleID,
				Rank:     role.Rank,
				Override: role.Permissions,
			})
		}
		if o, ok := channel.RolePermissions[roleID]; ok {
			pctx.ChannelRoleOverrides = append(pctx.ChannelRoleOverrides, permissions.RankedOverride{
				RoleID:   roleID,
				Rank:     role.Rank,
				Override: o,
			})
		}
	}

	// The channel-wide default override carries the least authority, so
	// it enters the ranked fold at UnknownRank and applies before every
	// role-specific channel override.
	if channel.DefaultPermissions != nil {
		pctx.ChannelRoleOverrides = append(pctx.ChannelRoleOverrides, permissions.RankedOverride{
			Rank:     permissions.UnknownRank,
			Override: *channel.DefaultPermissions,
		})
	}

	return permissions.Resolve(pctx), nil
}

// RequireChannelPermission fetches a channel and checks that the user
// holds the given permission in it. Returns the channel and the full
// resolved value on success so callers do not resolve twice.
func (p *PermissionService) RequireChannelPermission(ctx context.Context, channelID, userID int64, perm permissions.Value) (*models.Channel, permissions.Value, error) {
	channel, err := p.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, 0, Internal("INTERNAL", "internal server error")
	}
	if channel == nil {
		return nil, 0, NotFound("NOT_FOUND", "channel not found")
	}

	value, err := p.ResolveForChannel(ctx, channel, userID)
	if err != nil {
		return nil, 0, err
	}
	if !value.Has(perm) {
		return nil, 0, MissingPermission(perm)
	}
	return channel, value, nil
}
