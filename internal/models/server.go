package models

import "github.com/lukasmoran/accord/internal/permissions"

// Role is a named permission override owned by exactly one server.
// Rank is a signed integer: lower numeric rank is higher authority.
type Role struct {
	ID          int64                `json:"id,string"`
	Name        string               `json:"name"`
	Permissions permissions.Override `json:"permissions"`
	Colour      *string              `json:"colour,omitempty"`
	Hoist       bool                 `json:"hoist,omitempty"`
	Rank        int64                `json:"rank"`
}

// Server groups channels, roles and members under one owner.
// DefaultPermissions is the base for every member; each held role's
// override is layered on top during resolution.
type Server struct {
	ID                 int64             `json:"id,string"`
	OwnerID            int64             `json:"owner_id,string"`
	Name               string            `json:"name"`
	Description        *string           `json:"description,omitempty"`
	ChannelIDs         []int64           `json:"channels"`
	Roles              map[int64]Role    `json:"roles,omitempty"`
	DefaultPermissions permissions.Value `json:"default_permissions,string"`
}
