package models

// EmbedType enumerates persisted embed variants.
type EmbedType string

const (
	EmbedTypeText    EmbedType = "text"
	EmbedTypeWebsite EmbedType = "website"
)

// Embed is a persisted embed record on a message.
type Embed struct {
	Type        EmbedType `json:"type"`
	IconURL     *string   `json:"icon_url,omitempty"`
	URL         *string   `json:"url,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Media       *File     `json:"media,omitempty"`
	Colour      *string   `json:"colour,omitempty"`
}

// SendableEmbed is the client-supplied form of an embed. Media is a
// pending-attachment id resolved through the claim mechanism when the
// message is sent.
type SendableEmbed struct {
	IconURL     *string `json:"icon_url,omitempty"`
	URL         *string `json:"url,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Media       *int64  `json:"media,string,omitempty"`
	Colour      *string `json:"colour,omitempty"`
}
