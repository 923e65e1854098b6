package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// KeyValueStore is a mock implementation of model.KeyValueStore.
type KeyValueStore struct {
	mock.Mock
}

func NewKeyValueStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *KeyValueStore {
	m := &KeyValueStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *KeyValueStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *KeyValueStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *KeyValueStore) GetDelete(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *KeyValueStore) CompareDelete(ctx context.Context, key, expected string) (bool, error) {
	args := m.Called(ctx, key, expected)
	return args.Bool(0), args.Error(1)
}

func (m *KeyValueStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *KeyValueStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *KeyValueStore) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	args := m.Called(ctx, key, ttl)
	return args.Get(0).(int64), args.Error(1)
}
