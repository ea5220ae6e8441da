package service

import (
	"context"
	"errors"

	"github.com/lukasmoran/accord/internal/gateway"
	"github.com/lukasmoran/accord/internal/models"
	"github.com/lukasmoran/accord/internal/permissions"
)

// SetRolePermission replaces a channel's override for one role. The
// actor must hold ManagePermissions in the channel, must outrank the
// target role, and may only toggle permission bits they themselves
// hold. The whole mutation is rejected on the first failed check.
//
// The equal-rank case is allowed only for a bot editing a role it is
// itself assigned. The baseline for the escalation check is the
// channel's existing override for the role, not the role's server-wide
// permissions.
func (p *PermissionService) SetRolePermission(ctx context.Context, channelID, roleID, actorID int64, actorIsBot bool, proposed permissions.Override) (*models.Channel, error) {
	channel, err := p.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if channel == nil {
		return nil, NotFound("NOT_FOUND", "channel not found")
	}
	if !channel.HasRolePermissions() {
		return nil, InvalidOperation("this channel type does not carry role permissions")
	}

	server, err := p.servers.GetByID(ctx, channel.ServerID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if server == nil {
		return nil, NotFound("NOT_FOUND", "server not found")
	}

	role, ok := server.Roles[roleID]
	if !ok {
		return nil, NotFound("NOT_FOUND", "role not found")
	}

	value, err := p.ResolveForChannel(ctx, channel, actorID)
	if err != nil {
		return nil, err
	}
	if !value.Has(permissions.ManagePermissions) {
		return nil, MissingPermission(permissions.ManagePermissions)
	}

	proposed = proposed.Normalize()

	if server.OwnerID != actorID {
		member, err := p.members.GetByServerAndUser(ctx, channel.ServerID, actorID)
		if err != nil {
			return nil, Internal("INTERNAL", "internal server error")
		}
		if member == nil {
			return nil, NotFound("NOT_FOUND", "channel not found")
		}

		selfTarget := actorIsBot && member.HasRole(roleID)
		if err := permissions.AuthorizeRoleTarget(member.RankIn(server), selfTarget, role.Rank); err != nil {
			return nil, NotElevated("target role outranks you")
		}

		current := channel.RolePermissions[roleID]
		if err := permissions.AuthorizeOverrideMutation(value, current, proposed); err != nil {
			if errors.Is(err, permissions.ErrEscalation) {
				return nil, CannotGiveMissingPermissions()
			}
			return nil, Internal("INTERNAL", "internal server error")
		}
	}

	if err := p.channels.SetRolePermission(ctx, channelID, roleID, proposed); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	if channel.RolePermissions == nil {
		channel.RolePermissions = make(map[int64]permissions.Override)
	}
	channel.RolePermissions[roleID] = proposed

	p.dispatcher.PublishToChannel(channel.ID, gateway.EventChannelUpdate, gateway.ChannelUpdateData{
		ID:              channel.ID,
		RolePermissions: channel.RolePermissions,
		DefaultPerms:    channel.DefaultPermissions,
	})

	return channel, nil
}
