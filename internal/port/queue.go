package port

import (
	"context"
	"time"
)

type QueuePublisher interface {
	// PublishPrepareToSend hands a sent broadcast to the fan-out workers.
	PublishPrepareToSend(ctx context.Context, broadcastID string) error
	// PublishForceComplete publishes the delayed completion deadline on the
	// data queue. The delay travels inside the message so it survives process
	// restarts between publish and delivery.
	PublishForceComplete(ctx context.Context, broadcastID string, delay time.Duration) error
	Close() error
}
