package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/lukasmoran/accord/internal/database"
	"github.com/lukasmoran/accord/internal/gateway"
	"github.com/lukasmoran/accord/internal/models"
)

// LastMessageIDPayload advances a channel's last-message pointer.
type LastMessageIDPayload struct {
	ChannelID int64
	MessageID int64
}

// AckMentionsPayload records unread mentions for the mentioned users.
type AckMentionsPayload struct {
	ChannelID int64
	MessageID int64
	UserIDs   []int64
}

// ProcessEmbedsPayload resolves link embeds for a sent message.
type ProcessEmbedsPayload struct {
	ChannelID int64
	MessageID int64
	Content   string
}

// WebPushPayload notifies offline recipients about a message.
type WebPushPayload struct {
	UserIDs []int64
	Message *models.Message
}

// EmbedFetcher resolves a URL into embed metadata.
type EmbedFetcher interface {
	Fetch(ctx context.Context, url string) (*models.Embed, error)
}

// PushSender delivers a push notification to one user.
type PushSender interface {
	Send(ctx context.Context, userID int64, msg *models.Message) error
}

// NewLastMessageIDHandler returns the handler advancing channel
// last-message pointers.
func NewLastMessageIDHandler(channels database.ChannelRepository) HandlerFunc {
	return func(ctx context.Context, task Task) error {
		p, ok := task.Payload.(LastMessageIDPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", task.Payload)
		}
		return channels.UpdateLastMessageID(ctx, p.ChannelID, p.MessageID)
	}
}

// NewAckMentionsHandler returns the handler recording unread mentions.
func NewAckMentionsHandler(unreads database.UnreadRepository) HandlerFunc {
	return func(ctx context.Context, task Task) error {
		p, ok := task.Payload.(AckMentionsPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", task.Payload)
		}
		for _, userID := range p.UserIDs {
			if err := unreads.AddMention(ctx, p.ChannelID, userID, p.MessageID); err != nil {
				return err
			}
		}
		return nil
	}
}

var urlPattern = regexp.MustCompile(`https?://[^\s<]+`)

// maxEmbedsPerMessage bounds how many links are resolved per message.
const maxEmbedsPerMessage = 5

// NewProcessEmbedsHandler returns the handler that resolves link
// embeds, appends them to the message and fans the append out to the
// channel.
func NewProcessEmbedsHandler(fetcher EmbedFetcher, messages database.MessageRepository, dispatcher gateway.Dispatcher) HandlerFunc {
	return func(ctx context.Context, task Task) error {
		p, ok := task.Payload.(ProcessEmbedsPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", task.Payload)
		}

		urls := urlPattern.FindAllString(p.Content, maxEmbedsPerMessage)
		if len(urls) == 0 {
			return nil
		}

		var embeds []models.Embed
		for _, url := range urls {
			embed, err := fetcher.Fetch(ctx, url)
			if err != nil {
				slog.Debug("embed fetch failed", "url", url, "error", err)
				continue
			}
			if embed != nil {
				embeds = append(embeds, *embed)
			}
		}
		if len(embeds) == 0 {
			return nil
		}

		data := models.AppendMessage{Embeds: embeds}
		if err := messages.Append(ctx, p.MessageID, data); err != nil {
			return err
		}

		dispatcher.PublishToChannel(p.ChannelID, gateway.EventMessageAppend, gateway.MessageAppendData{
			ID:        p.MessageID,
			ChannelID: p.ChannelID,
			Append:    data,
		})
		return nil
	}
}

// NewWebPushHandler returns the handler delivering push notifications.
func NewWebPushHandler(sender PushSender) HandlerFunc {
	return func(ctx context.Context, task Task) error {
		p, ok := task.Payload.(WebPushPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T", task.Payload)
		}
		for _, userID := range p.UserIDs {
			if err := sender.Send(ctx, userID, p.Message); err != nil {
				slog.Debug("push delivery failed", "userID", userID, "error", err)
			}
		}
		return nil
	}
}
