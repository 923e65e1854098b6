package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/nexra/user-service/internal/model"
)

// EventPublisher is a mock implementation of model.EventPublisher.
type EventPublisher struct {
	mock.Mock
}

func NewEventPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *EventPublisher {
	m := &EventPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *EventPublisher) Publish(ctx context.Context, event model.UserEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
