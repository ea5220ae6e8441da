package models

import (
	"time"

	"github.com/lukasmoran/accord/internal/permissions"
)

// Member ties a user to a server. The record exists only while the
// user is in the server and is deleted on leave, kick or ban.
type Member struct {
	ServerID int64     `json:"server_id,string"`
	UserID   int64     `json:"user_id,string"`
	Nickname *string   `json:"nickname,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
	Roles    []int64   `json:"roles"`

	// Permissions is an optional direct override for this member,
	// applied after all role overrides.
	Permissions *permissions.Override `json:"permissions,omitempty"`
}

// RankIn returns the member's most authoritative (numerically lowest)
// rank among held roles, or permissions.UnknownRank when the member
// holds no ranked role. Fail-closed for hierarchy checks.
func (m *Member) RankIn(server *Server) int64 {
	rank := permissions.UnknownRank
	for _, id := range m.Roles {
		if role, ok := server.Roles[id]; ok && role.Rank < rank {
			rank = role.Rank
		}
	}
	return rank
}

// HasRole reports whether the member holds the given role.
func (m *Member) HasRole(roleID int64) bool {
	for _, id := range m.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}
