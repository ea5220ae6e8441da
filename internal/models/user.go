package models

// User is the minimal account record the core needs: identity plus
// whether the account is an automated (bot) actor.
type User struct {
	ID          int64   `json:"id,string"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name,omitempty"`
	Bot         bool    `json:"bot,omitempty"`
}

// Webhook posts messages into a single channel using a hashed token
// credential.
type Webhook struct {
	ID        int64   `json:"id,string"`
	ChannelID int64   `json:"channel_id,string"`
	Name      string  `json:"name"`
	Avatar    *string `json:"avatar,omitempty"`
	TokenHash string  `json:"-"`
}
