package model

import "context"

// EventKind tags a user lifecycle event.
type EventKind string

const (
	EventRegistration  EventKind = "registration"
	EventPasswordReset EventKind = "password_reset"
)

// UserEvent is a transient lifecycle message carried by the event channel.
// Delivery is at-least-once; consumers must tolerate duplicates.
type UserEvent struct {
	Kind  EventKind
	Email string
	OTP   string
}

// NewRegistrationEvent builds the event published after a successful registration.
func NewRegistrationEvent(email, otp string) UserEvent {
	return UserEvent{Kind: EventRegistration, Email: email, OTP: otp}
}

// NewPasswordResetEvent builds the event published on a forgot-password request.
func NewPasswordResetEvent(email, otp string) UserEvent {
	return UserEvent{Kind: EventPasswordReset, Email: email, OTP: otp}
}

// EventPublisher appends lifecycle events to a durable ordered channel.
// Publish returns once the channel acknowledges the append, not once a
// consumer has processed the event.
type EventPublisher interface {
	Publish(ctx context.Context, event UserEvent) error
}
