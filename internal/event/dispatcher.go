package event

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nexra/user-service/internal/logger"
	"github.com/nexra/user-service/internal/model"
)

var _ model.EventPublisher = (*Dispatcher)(nil)

// Stream field names shared by producer and consumer.
const (
	fieldKind  = "kind"
	fieldEmail = "email"
	fieldOTP   = "otp"
)

// Dispatcher publishes lifecycle events to a Redis stream. The stream is the
// durable ordered channel between the request path and the notification
// consumer; Publish returns once the append is acknowledged.
type Dispatcher struct {
	rdb    *redis.Client
	stream string
	logger *logger.Logger
}

// NewDispatcher creates an event dispatcher for the given stream.
func NewDispatcher(rdb *redis.Client, stream string, logger *logger.Logger) *Dispatcher {
	return &Dispatcher{rdb: rdb, stream: stream, logger: logger}
}

// Publish appends the event to the stream.
func (d *Dispatcher) Publish(ctx context.Context, event model.UserEvent) error {
	id, err := d.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: d.stream,
		Values: map[string]interface{}{
			fieldKind:  string(event.Kind),
			fieldEmail: event.Email,
			fieldOTP:   event.OTP,
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	d.logger.Info("Event dispatcher: published event",
		"kind", event.Kind,
		"email", event.Email,
		"message_id", id)

	return nil
}
