package websocket

import (
	"context"
)

// BrokerSubscriber is the inbound side of the realtime broker port.
type BrokerSubscriber interface {
	Subscribe(ctx context.Context, patterns []string, handler func(channel string, payload []byte)) error
}

// RedisBridge forwards everything published on the broker to the local
// hub, which fans out to the channel's subscribers.
type RedisBridge struct {
	subscriber BrokerSubscriber
	hub        *Hub
}

func NewRedisBridge(subscriber BrokerSubscriber, hub *Hub) *RedisBridge {
	return &RedisBridge{subscriber: subscriber, hub: hub}
}

func (b *RedisBridge) Run(ctx context.Context) error {
	return b.subscriber.Subscribe(ctx, []string{"channel:*"}, func(channel string, payload []byte) {
		b.hub.Broadcast(channel, payload)
	})
}
