package service

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/lukasmoran/accord/internal/config"
	"github.com/lukasmoran/accord/internal/database"
	"github.com/lukasmoran/accord/internal/gateway"
	"github.com/lukasmoran/accord/internal/idempotency"
	"github.com/lukasmoran/accord/internal/models"
	"github.com/lukasmoran/accord/internal/permissions"
	"github.com/lukasmoran/accord/internal/snowflake"
	"github.com/lukasmoran/accord/internal/tasks"
)

// attachmentBucket is the object-store bucket pending uploads land in.
const attachmentBucket = "attachments"

// mentionPattern matches inline user mentions of the form <@id>.
var mentionPattern = regexp.MustCompile(`<@(\d+)>`)

// Author is the closed set of identities a message can originate from.
// Every new variant must be handled here and in the push fan-out.
type Author interface {
	stamp(msg *models.Message)
}

// UserAuthor is a message sent by an authenticated user.
type UserAuthor struct {
	User *models.User
}

func (a UserAuthor) stamp(msg *models.Message) {
	msg.AuthorID = a.User.ID
}

// WebhookAuthor is a message sent through a channel webhook. The
// webhook descriptor is denormalized onto the message so it renders
// even after the webhook is deleted.
type WebhookAuthor struct {
	Webhook *models.Webhook
}

func (a WebhookAuthor) stamp(msg *models.Message) {
	msg.AuthorID = a.Webhook.ID
	msg.Webhook = &models.MessageWebhook{
		ID:     a.Webhook.ID,
		Name:   a.Webhook.Name,
		Avatar: a.Webhook.Avatar,
	}
}

// SystemAuthor is a platform-authored message.
type SystemAuthor struct{}

func (a SystemAuthor) stamp(msg *models.Message) {
	msg.AuthorID = models.SystemAuthorID
}

// EmojiChecker decides whether an emoji may be pinned as a required
// reaction on a message.
type EmojiChecker interface {
	CanUse(ctx context.Context, emoji string) (bool, error)
}

// UnicodeEmoji permits any unicode emoji and rejects custom emoji ids,
// which would need a server-side emoji registry to validate.
type UnicodeEmoji struct{}

func (UnicodeEmoji) CanUse(_ context.Context, emoji string) (bool, error) {
	if emoji == "" {
		return false, nil
	}
	if _, err := strconv.ParseInt(emoji, 10, 64); err == nil {
		return false, nil
	}
	return true, nil
}

// MessageService assembles, persists and fans out messages.
type MessageService struct {
	messages    database.MessageRepository
	attachments database.AttachmentRepository
	dispatcher  gateway.Dispatcher
	queue       tasks.Queue
	gen         *snowflake.Generator
	emoji       EmojiChecker
	limits      config.Limits
}

// NewMessageService creates a MessageService.
func NewMessageService(
	messages database.MessageRepository,
	attachments database.AttachmentRepository,
	dispatcher gateway.Dispatcher,
	queue tasks.Queue,
	gen *snowflake.Generator,
	emoji EmojiChecker,
	limits config.Limits,
) *MessageService {
	return &MessageService{
		messages:    messages,
		attachments: attachments,
		dispatcher:  dispatcher,
		queue:       queue,
		gen:         gen,
		emoji:       emoji,
		limits:      limits,
	}
}

// ValidateInteractions checks a non-default interactions block against
// the actor's channel permissions: restricting reactions requires the
// React permission and every pinned emoji must be usable.
func (s *MessageService) ValidateInteractions(ctx context.Context, actor permissions.Value, i models.Interactions) error {
	if i.IsDefault() {
		return nil
	}
	if !actor.Has(permissions.React) {
		return MissingPermission(permissions.React)
	}
	for _, emoji := range i.Reactions {
		ok, err := s.emoji.CanUse(ctx, emoji)
		if err != nil {
			return Internal("INTERNAL", "internal server error")
		}
		if !ok {
			return InvalidOperation("invalid reaction emoji")
		}
	}
	return nil
}

// Send runs the full message pipeline: validation, nonce claim,
// enrichment (mentions, replies, attachments, embeds), one atomic
// insert, then post-persist fan-out. Every failure before the insert
// leaves no message behind; the nonce claim and attachment claims are
// deliberately not rolled back, matching their at-most-once contract.
func (s *MessageService) Send(ctx context.Context, channel *models.Channel, data models.DataMessageSend, author Author, idem *idempotency.Key, generateEmbeds, allowMentions bool) (*models.Message, error) {
	if err := s.checkLength(data); err != nil {
		return nil, err
	}

	if err := idem.ConsumeNonce(ctx, data.Nonce); err != nil {
		if errors.Is(err, idempotency.ErrDuplicate) {
			return nil, InvalidOperation("a message was already sent with this nonce")
		}
		return nil, Internal("INTERNAL", "internal server error")
	}

	if isEmptySend(data) {
		return nil, EmptyMessage()
	}

	var interactions models.Interactions
	if data.Interactions != nil {
		interactions = *data.Interactions
		if interactions.RestrictReactions && len(interactions.Reactions) == 0 {
			return nil, InvalidProperty("restrict_reactions requires at least one reaction")
		}
	}

	msg := &models.Message{
		ID:           s.gen.Generate().Int64(),
		ChannelID:    channel.ID,
		Content:      data.Content,
		Interactions: interactions,
		Masquerade:   data.Masquerade,
		CreatedAt:    time.Now().UTC(),
	}
	author.stamp(msg)
	if nonce := idem.IntoKey(); nonce != "" {
		msg.Nonce = &nonce
	}

	mentions := make(map[int64]bool)
	if allowMentions && data.Content != nil {
		for _, m := range mentionPattern.FindAllStringSubmatch(*data.Content, -1) {
			if id, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				mentions[id] = true
			}
		}
	}

	if err := s.resolveReplies(ctx, msg, data.Replies, allowMentions, mentions); err != nil {
		return nil, err
	}
	if err := s.claimAttachments(ctx, msg, data.Attachments); err != nil {
		return nil, err
	}
	if err := s.convertEmbeds(ctx, msg, data.Embeds); err != nil {
		return nil, err
	}

	if len(mentions) > 0 {
		msg.Mentions = sortedIDs(mentions)
	}

	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.fanOut(channel, msg, generateEmbeds)
	return msg, nil
}

// checkLength bounds the combined length of content and embed
// descriptions.
func (s *MessageService) checkLength(data models.DataMessageSend) error {
	total := 0
	if data.Content != nil {
		total += len(*data.Content)
	}
	for _, e := range data.Embeds {
		if e.Description != nil {
			total += len(*e.Description)
		}
	}
	if total > s.limits.MessageLength {
		return PayloadTooLarge(s.limits.MessageLength)
	}
	return nil
}

func isEmptySend(data models.DataMessageSend) bool {
	hasContent := data.Content != nil && *data.Content != ""
	return !hasContent && len(data.Attachments) == 0 && len(data.Embeds) == 0
}

// resolveReplies validates every reply target and folds mentioned
// reply authors into the mention set. System messages have no real
// author to mention.
func (s *MessageService) resolveReplies(ctx context.Context, msg *models.Message, replies []models.ReplyIntent, allowMentions bool, mentions map[int64]bool) error {
	if len(replies) == 0 {
		return nil
	}
	if len(replies) > s.limits.MessageReplies {
		return TooManyReplies(s.limits.MessageReplies)
	}

	seen := make(map[int64]bool, len(replies))
	for _, reply := range replies {
		ref, err := s.messages.GetByID(ctx, reply.ID)
		if err != nil {
			return Internal("INTERNAL", "internal server error")
		}
		if ref == nil {
			return NotFound("NOT_FOUND", "replied-to message not found")
		}

		if !seen[ref.ID] {
			seen[ref.ID] = true
			msg.Replies = append(msg.Replies, ref.ID)
		}
		if reply.Mention && allowMentions && ref.AuthorID != models.SystemAuthorID {
			mentions[ref.AuthorID] = true
		}
	}
	return nil
}

// claimAttachments claims every referenced pending upload for this
// message. A single failed claim aborts the whole send.
func (s *MessageService) claimAttachments(ctx context.Context, msg *models.Message, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > s.limits.MessageAttachments {
		return TooManyAttachments(s.limits.MessageAttachments)
	}

	for _, id := range ids {
		f, err := s.attachments.FindAndUse(ctx, id, attachmentBucket, "message", msg.ID)
		if err != nil {
			return Internal("INTERNAL", "internal server error")
		}
		if f == nil {
			return NotFound("NOT_FOUND", "attachment not found or already used")
		}
		msg.Attachments = append(msg.Attachments, *f)
	}
	return nil
}

// convertEmbeds turns client-supplied text embeds into persisted
// embeds, claiming any referenced media upload.
func (s *MessageService) convertEmbeds(ctx context.Context, msg *models.Message, sendable []models.SendableEmbed) error {
	if len(sendable) == 0 {
		return nil
	}
	if len(sendable) > s.limits.MessageEmbeds {
		return TooManyEmbeds(s.limits.MessageEmbeds)
	}

	for _, se := range sendable {
		embed := models.Embed{
			Type:        models.EmbedTypeText,
			IconURL:     se.IconURL,
			URL:         se.URL,
			Title:       se.Title,
			Description: se.Description,
			Colour:      se.Colour,
		}
		if se.Media != nil {
			f, err := s.attachments.FindAndUse(ctx, *se.Media, attachmentBucket, "message", msg.ID)
			if err != nil {
				return Internal("INTERNAL", "internal server error")
			}
			if f == nil {
				return NotFound("NOT_FOUND", "embed media not found or already used")
			}
			embed.Media = f
		}
		msg.Embeds = append(msg.Embeds, embed)
	}
	return nil
}

// fanOut publishes the persisted message and enqueues the downstream
// work. Everything here is best-effort: the message is already
// durable, and each task kind is independently retryable.
func (s *MessageService) fanOut(channel *models.Channel, msg *models.Message, generateEmbeds bool) {
	s.dispatcher.PublishToChannel(channel.ID, gateway.EventMessage, msg)

	s.queue.Enqueue(tasks.Task{
		Kind:    tasks.KindLastMessageID,
		Payload: tasks.LastMessageIDPayload{ChannelID: channel.ID, MessageID: msg.ID},
	})

	if len(msg.Mentions) > 0 {
		s.queue.Enqueue(tasks.Task{
			Kind:    tasks.KindAckMentions,
			Payload: tasks.AckMentionsPayload{ChannelID: channel.ID, MessageID: msg.ID, UserIDs: msg.Mentions},
		})
	}

	if generateEmbeds && msg.Content != nil && *msg.Content != "" {
		s.queue.Enqueue(tasks.Task{
			Kind:    tasks.KindProcessEmbeds,
			Payload: tasks.ProcessEmbedsPayload{ChannelID: channel.ID, MessageID: msg.ID, Content: *msg.Content},
		})
	}

	if targets := pushTargets(channel, msg); len(targets) > 0 {
		s.queue.Enqueue(tasks.Task{
			Kind:    tasks.KindWebPush,
			Payload: tasks.WebPushPayload{UserIDs: targets, Message: msg},
		})
	}
}

// pushTargets picks who gets a push notification: every other
// recipient in a direct or group channel, only mentioned users in a
// text channel, nobody elsewhere.
func pushTargets(channel *models.Channel, msg *models.Message) []int64 {
	switch channel.Type {
	case models.ChannelTypeDirectMessage, models.ChannelTypeGroup:
		targets := make([]int64, 0, len(channel.Recipients))
		for _, r := range channel.Recipients {
			if r != msg.AuthorID {
				targets = append(targets, r)
			}
		}
		return targets
	case models.ChannelTypeText:
		return msg.Mentions
	case models.ChannelTypeVoice, models.ChannelTypeSavedMessages:
		return nil
	}
	return nil
}

// Get fetches one message scoped to a channel.
func (s *MessageService) Get(ctx context.Context, channelID, messageID int64) (*models.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if msg == nil || msg.ChannelID != channelID {
		return nil, NotFound("NOT_FOUND", "message not found")
	}
	return msg, nil
}

// Append adds embeds to an existing message and notifies subscribers.
// No permission re-validation: append is only reachable from trusted
// internal callers acting on an already-authorized message.
func (s *MessageService) Append(ctx context.Context, channelID, messageID int64, data models.AppendMessage) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	if msg == nil || msg.ChannelID != channelID {
		return NotFound("NOT_FOUND", "message not found")
	}

	if err := s.messages.Append(ctx, messageID, data); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	s.dispatcher.PublishToChannel(channelID, gateway.EventMessageAppend, gateway.MessageAppendData{
		ID:        messageID,
		ChannelID: channelID,
		Append:    data,
	})
	return nil
}

// SendSystem persists a platform-authored message. System sends skip
// the client-facing validation but share the insert and fan-out path.
func (s *MessageService) SendSystem(ctx context.Context, channel *models.Channel, sys models.SystemMessage) (*models.Message, error) {
	msg := sys.IntoMessage(s.gen.Generate().Int64(), channel.ID)
	SystemAuthor{}.stamp(msg)
	msg.CreatedAt = time.Now().UTC()

	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	s.dispatcher.PublishToChannel(channel.ID, gateway.EventMessage, msg)
	s.queue.Enqueue(tasks.Task{
		Kind:    tasks.KindLastMessageID,
		Payload: tasks.LastMessageIDPayload{ChannelID: channel.ID, MessageID: msg.ID},
	})
	return msg, nil
}

func sortedIDs(set map[int64]bool) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
