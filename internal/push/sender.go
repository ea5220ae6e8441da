// Package push hands notifications to the out-of-process push worker
// over Redis pub/sub.
package push

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lukasmoran/accord/internal/models"
	"github.com/lukasmoran/accord/internal/redis"
)

const channelPrefix = "push:"

// Sender publishes push notifications for offline recipients.
type Sender struct {
	redis *redis.Client
}

// NewSender creates a Sender backed by the given Redis client.
func NewSender(r *redis.Client) *Sender {
	return &Sender{redis: r}
}

// notification is the payload consumed by the push worker.
type notification struct {
	UserID  int64           `json:"user_id,string"`
	Message *models.Message `json:"message"`
}

// Send publishes one notification. Delivery past the broker is the
// push worker's problem.
func (s *Sender) Send(ctx context.Context, userID int64, msg *models.Message) error {
	payload, err := json.Marshal(notification{UserID: userID, Message: msg})
	if err != nil {
		return fmt.Errorf("marshaling notification: %w", err)
	}
	return s.redis.Publish(ctx, fmt.Sprintf("%s%d", channelPrefix, userID), payload)
}
