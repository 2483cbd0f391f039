package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const ProfileDeletedChannel = "profile.deleted"

type DeletionEvent struct {
	Type      string `json:"type"` // "user" or "developer"
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
}

// Publisher announces profile deletions. At-most-once is acceptable.
type Publisher interface {
	PublishProfileDeleted(ctx context.Context, kind, id string) error
}

type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) PublishProfileDeleted(ctx context.Context, kind, id string) error {
	event := DeletionEvent{
		Type:      kind,
		ID:        id,
		Timestamp: time.Now().Unix(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, ProfileDeletedChannel, payload).Err()
}

// SubscribeProfileDeleted blocks, invoking handler for each event until the
// context is cancelled. Undecodable messages are logged and skipped.
func (b *RedisBroker) SubscribeProfileDeleted(ctx context.Context, handler func(DeletionEvent)) error {
	sub := b.client.Subscribe(ctx, ProfileDeletedChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event DeletionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Str("channel", msg.Channel).Msg("discarding malformed deletion event")
				continue
			}
			handler(event)
		}
	}
}
