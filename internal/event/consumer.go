package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nexra/user-service/internal/config"
	"github.com/nexra/user-service/internal/logger"
	"github.com/nexra/user-service/internal/model"
)

const readBlock = 5 * time.Second

// Consumer drains lifecycle events from the stream under a named consumer
// group and turns each into a notification email. Delivery is at-least-once:
// duplicate events are harmless because OTP validation is single-use. Send
// failures are logged and the message is still acknowledged; the stored OTP,
// not the email, is the contract.
type Consumer struct {
	rdb    *redis.Client
	cfg    config.Events
	sender model.MailSender
	logger *logger.Logger
}

// NewConsumer creates an event consumer.
func NewConsumer(rdb *redis.Client, cfg config.Events, sender model.MailSender, logger *logger.Logger) *Consumer {
	return &Consumer{rdb: rdb, cfg: cfg, sender: sender, logger: logger}
}

// Run processes events until the context is cancelled. The in-flight message
// is finished before returning; unread entries stay pending in the group and
// are picked up on the next start.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		return err
	}

	c.logger.Info("Event consumer: started",
		"stream", c.cfg.Stream,
		"group", c.cfg.Group,
		"consumer", c.cfg.Consumer)

	for {
		streams, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.cfg.Group,
			Consumer: c.cfg.Consumer,
			Streams:  []string{c.cfg.Stream, ">"},
			Count:    10,
			Block:    readBlock,
		}).Result()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Event consumer: read failed", "error", err.Error())
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				c.handle(ctx, message)

				if err := c.rdb.XAck(ctx, c.cfg.Stream, c.cfg.Group, message.ID).Err(); err != nil {
					c.logger.Error("Event consumer: ack failed",
						"message_id", message.ID,
						"error", err.Error())
				}
			}
		}
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.rdb.XGroupCreateMkStream(ctx, c.cfg.Stream, c.cfg.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// handle maps an event to its notification. Failures are logged and
// swallowed, never retried here.
func (c *Consumer) handle(ctx context.Context, message redis.XMessage) {
	event, err := decode(message)
	if err != nil {
		c.logger.Error("Event consumer: dropping undecodable message",
			"message_id", message.ID,
			"error", err.Error())
		return
	}

	c.logger.Info("Event consumer: received event",
		"kind", event.Kind,
		"email", event.Email,
		"message_id", message.ID)

	var subject, body string
	switch event.Kind {
	case model.EventRegistration:
		subject = "Welcome & Verify Email"
		body = fmt.Sprintf("<p>Welcome! Your OTP is: <b>%s</b></p>", event.OTP)
	case model.EventPasswordReset:
		subject = "Reset Password"
		body = fmt.Sprintf("<p>Your Password Reset OTP is: <b>%s</b></p>", event.OTP)
	default:
		c.logger.Error("Event consumer: unknown event kind",
			"kind", event.Kind,
			"message_id", message.ID)
		return
	}

	if err := c.sender.Send(ctx, event.Email, subject, body); err != nil {
		c.logger.Error("Event consumer: failed to send email",
			"email", event.Email,
			"kind", event.Kind,
			"error", err.Error())
	}
}

func decode(message redis.XMessage) (model.UserEvent, error) {
	kind, ok := message.Values[fieldKind].(string)
	if !ok {
		return model.UserEvent{}, fmt.Errorf("missing %q field", fieldKind)
	}
	email, ok := message.Values[fieldEmail].(string)
	if !ok {
		return model.UserEvent{}, fmt.Errorf("missing %q field", fieldEmail)
	}
	otp, _ := message.Values[fieldOTP].(string)

	return model.UserEvent{Kind: model.EventKind(kind), Email: email, OTP: otp}, nil
}
