package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"danceslot/internal/logger"
)

const DefaultChannel = "danceslot:changes"

// Bridge publishes change events through Redis so every instance's Hub
// sees them. When Redis is unreachable events are delivered locally only.
type Bridge struct {
	redis   *redis.Client
	hub     *Hub
	channel string
}

func NewBridge(rdb *redis.Client, hub *Hub) *Bridge {
	return &Bridge{redis: rdb, hub: hub, channel: DefaultChannel}
}

func (b *Bridge) Publish(ctx context.Context, e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		logger.Errorf("Failed to marshal change event: %v", err)
		b.hub.Publish(ctx, e)
		return
	}

	if err := b.redis.Publish(ctx, b.channel, data).Err(); err != nil {
		logger.Warn("Redis publish failed, delivering change event locally",
			"table", e.Table,
			"action", e.Action,
			"error", err,
		)
		b.hub.Publish(ctx, e)
	}
}

// Run relays events from Redis into the local hub until ctx is done.
func (b *Bridge) Run(ctx context.Context) {
	sub := b.redis.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	logger.Info("Realtime bridge listening", "channel", b.channel)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Realtime bridge stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.dispatch(ctx, msg.Payload)
		}
	}
}

func (b *Bridge) dispatch(ctx context.Context, payload string) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		logger.Errorf("Bad change event payload: %v", err)
		return
	}
	if e.Table == "" {
		return
	}
	b.hub.Publish(ctx, e)
}
