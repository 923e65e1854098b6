package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexra/user-service/internal/config"
	"github.com/nexra/user-service/internal/model"
	"github.com/nexra/user-service/internal/testutil"
)

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, subject, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return f.err
}

func (f *fakeSender) all() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.sent...)
}

func testEventsConfig() config.Events {
	return config.Events{Stream: "user-events", Group: "user-service-group", Consumer: "c1"}
}

func newStreamClient(t *testing.T) *redis.Client {
	t.Helper()
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestDispatcher_Publish(t *testing.T) {
	rdb := newStreamClient(t)
	ctx := context.Background()

	d := NewDispatcher(rdb, "user-events", testutil.MakeNoopLogger())

	err := d.Publish(ctx, model.NewRegistrationEvent("a@x.com", "123456"))
	require.NoError(t, err)

	messages, err := rdb.XRange(ctx, "user-events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "registration", messages[0].Values["kind"])
	assert.Equal(t, "a@x.com", messages[0].Values["email"])
	assert.Equal(t, "123456", messages[0].Values["otp"])
}

func TestConsumer_EnsureGroup_Idempotent(t *testing.T) {
	rdb := newStreamClient(t)
	ctx := context.Background()

	c := NewConsumer(rdb, testEventsConfig(), &fakeSender{}, testutil.MakeNoopLogger())

	require.NoError(t, c.ensureGroup(ctx))
	// Creating the same group again is tolerated.
	require.NoError(t, c.ensureGroup(ctx))
}

func TestConsumer_Handle_Registration(t *testing.T) {
	rdb := newStreamClient(t)
	sender := &fakeSender{}

	c := NewConsumer(rdb, testEventsConfig(), sender, testutil.MakeNoopLogger())
	c.handle(context.Background(), redis.XMessage{
		ID: "1-0",
		Values: map[string]interface{}{
			"kind":  "registration",
			"email": "a@x.com",
			"otp":   "123456",
		},
	})

	sent := sender.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "a@x.com", sent[0].to)
	assert.Equal(t, "Welcome & Verify Email", sent[0].subject)
	assert.Contains(t, sent[0].body, "123456")
}

func TestConsumer_Handle_PasswordReset(t *testing.T) {
	rdb := newStreamClient(t)
	sender := &fakeSender{}

	c := NewConsumer(rdb, testEventsConfig(), sender, testutil.MakeNoopLogger())
	c.handle(context.Background(), redis.XMessage{
		ID: "1-0",
		Values: map[string]interface{}{
			"kind":  "password_reset",
			"email": "b@x.com",
			"otp":   "654321",
		},
	})

	sent := sender.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "Reset Password", sent[0].subject)
	assert.Contains(t, sent[0].body, "654321")
}

func TestConsumer_Handle_UnknownKind(t *testing.T) {
	rdb := newStreamClient(t)
	sender := &fakeSender{}

	c := NewConsumer(rdb, testEventsConfig(), sender, testutil.MakeNoopLogger())
	c.handle(context.Background(), redis.XMessage{
		ID:     "1-0",
		Values: map[string]interface{}{"kind": "unknown", "email": "a@x.com"},
	})

	assert.Empty(t, sender.all())
}

func TestConsumer_Handle_SendFailureSwallowed(t *testing.T) {
	rdb := newStreamClient(t)
	sender := &fakeSender{err: assert.AnError}

	c := NewConsumer(rdb, testEventsConfig(), sender, testutil.MakeNoopLogger())

	// Must not panic or propagate; failure is logged and swallowed.
	c.handle(context.Background(), redis.XMessage{
		ID:     "1-0",
		Values: map[string]interface{}{"kind": "registration", "email": "a@x.com", "otp": "1"},
	})

	assert.Len(t, sender.all(), 1)
}

func TestConsumer_Run_DrainsPublishedEvents(t *testing.T) {
	rdb := newStreamClient(t)
	sender := &fakeSender{}
	lg := testutil.MakeNoopLogger()
	cfg := testEventsConfig()

	d := NewDispatcher(rdb, cfg.Stream, lg)
	ctx := context.Background()
	require.NoError(t, d.Publish(ctx, model.NewRegistrationEvent("a@x.com", "111111")))
	require.NoError(t, d.Publish(ctx, model.NewPasswordResetEvent("b@x.com", "222222")))

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	c := NewConsumer(rdb, cfg, sender, lg)
	go func() { done <- c.Run(runCtx) }()

	require.Eventually(t, func() bool { return len(sender.all()) == 2 }, 3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}

	sent := sender.all()
	assert.Equal(t, "a@x.com", sent[0].to)
	assert.Equal(t, "b@x.com", sent[1].to)

	// Both messages were acknowledged.
	pending, err := rdb.XPending(ctx, cfg.Stream, cfg.Group).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
}
