package models

import "time"

// Message is a single persisted chat message. Optional fields stay nil
// when absent; reactions and interactions default to their zero form.
// A message is immutable after insert except for content edits, embed
// appends, reactions and interaction metadata.
type Message struct {
	ID          int64              `json:"id,string"`
	Nonce       *string            `json:"nonce,omitempty"`
	ChannelID   int64              `json:"channel_id,string"`
	AuthorID    int64              `json:"author_id,string"`
	Webhook     *MessageWebhook    `json:"webhook,omitempty"`
	Content     *string            `json:"content,omitempty"`
	System      *SystemMessage     `json:"system,omitempty"`
	Attachments []File             `json:"attachments,omitempty"`
	EditedAt    *time.Time         `json:"edited_at,omitempty"`
	Embeds      []Embed            `json:"embeds,omitempty"`
	Mentions    []int64            `json:"mentions,omitempty"`
	Replies     []int64            `json:"replies,omitempty"`
	Reactions   map[string][]int64 `json:"reactions,omitempty"`
	Interactions Interactions      `json:"interactions,omitzero"`
	Masquerade  *Masquerade        `json:"masquerade,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// MessageWebhook is the embedded descriptor of the webhook that sent a
// message.
type MessageWebhook struct {
	ID     int64   `json:"id,string"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar,omitempty"`
}

// Masquerade overrides the name, avatar or colour shown on a message.
type Masquerade struct {
	Name   *string `json:"name,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
	Colour *string `json:"colour,omitempty"`
}

// Interactions guides how a message may be interacted with. The zero
// value means no restriction: any emoji is usable.
type Interactions struct {
	// Reactions which should always appear and be distinct.
	Reactions []string `json:"reactions,omitempty"`
	// RestrictReactions limits reactions to the list above. May only
	// be true when Reactions has at least one entry.
	RestrictReactions bool `json:"restrict_reactions,omitempty"`
}

// IsDefault reports whether every field is at its zero value.
func (i Interactions) IsDefault() bool {
	return !i.RestrictReactions && len(i.Reactions) == 0
}

// CanUse reports whether the given emoji may be used to react.
func (i Interactions) CanUse(emoji string) bool {
	if !i.RestrictReactions {
		return true
	}
	for _, r := range i.Reactions {
		if r == emoji {
			return true
		}
	}
	return false
}

// ReplyIntent references a prior message a new message replies to.
type ReplyIntent struct {
	ID      int64 `json:"id,string"`
	Mention bool  `json:"mention"`
}

// DataMessageSend is the client payload for sending a message.
type DataMessageSend struct {
	Content      *string         `json:"content,omitempty"`
	Nonce        *string         `json:"nonce,omitempty"`
	Attachments  []int64         `json:"attachments,omitempty"`
	Embeds       []SendableEmbed `json:"embeds,omitempty"`
	Replies      []ReplyIntent   `json:"replies,omitempty"`
	Interactions *Interactions   `json:"interactions,omitempty"`
	Masquerade   *Masquerade     `json:"masquerade,omitempty"`
}

// AppendMessage carries information appended to an existing message.
type AppendMessage struct {
	Embeds []Embed `json:"embeds,omitempty"`
}
