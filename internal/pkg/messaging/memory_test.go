package messaging

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startConsumer(t *testing.T, m *Memory, subject string, handler Handler, opts ...ConsumeOption) (stop func() error) {
	t.Helper()

	before := m.subscribers(subject)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- m.Consume(ctx, subject, handler, opts...) }()

	group := newConsumeOptions(opts...).group
	require.Eventually(t, func() bool {
		if group != "" && before > 0 {
			return true
		}
		return m.subscribers(subject) > before
	}, time.Second, 5*time.Millisecond)

	return func() error {
		cancel()
		return <-errCh
	}
}

func TestMemory_PublishConsume(t *testing.T) {
	m := NewMemory(MemoryConfig{})
	t.Cleanup(func() { _ = m.Close() })

	got := make(chan Message, 1)
	stop := startConsumer(t, m, "mail.scheduled", func(_ context.Context, msg Message) error {
		got <- msg
		return nil
	}, WithAutoAck(true))

	_, err := m.Publish(context.Background(), "mail.scheduled", OutgoingMessage{
		Body:    []byte(`{"id":"1"}`),
		Headers: []Header{{Key: "X-Correlation-ID", Value: "cid-1"}},
	})
	require.NoError(t, err)

	select {
	case msg := <-got:
		assert.JSONEq(t, `{"id":"1"}`, string(msg.Body()))
		assert.Equal(t, "cid-1", msg.Header("x-correlation-id"))
		assert.Equal(t, "mail.scheduled", msg.Subject())
		assert.False(t, msg.Timestamp().IsZero())
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}

	assert.ErrorIs(t, stop(), context.Canceled)
	assert.Zero(t, m.subscribers("mail.scheduled"))
}

func TestMemory_GroupsShareAndFanOut(t *testing.T) {
	m := NewMemory(MemoryConfig{})
	t.Cleanup(func() { _ = m.Close() })

	var delivery, audit atomic.Int32
	var wg sync.WaitGroup
	wg.Add(10)

	count := func(c *atomic.Int32) Handler {
		return func(context.Context, Message) error {
			c.Add(1)
			wg.Done()
			return nil
		}
	}

	stopA := startConsumer(t, m, "jobs", count(&delivery), WithGroup("delivery"))
	stopB := startConsumer(t, m, "jobs", count(&delivery), WithGroup("delivery"))
	stopC := startConsumer(t, m, "jobs", count(&audit), WithGroup("audit"))

	for range 5 {
		_, err := m.Publish(context.Background(), "jobs", OutgoingMessage{Body: []byte("x")})
		require.NoError(t, err)
	}

	wg.Wait()
	assert.Equal(t, int32(5), delivery.Load())
	assert.Equal(t, int32(5), audit.Load())

	for _, stop := range []func() error{stopA, stopB, stopC} {
		assert.ErrorIs(t, stop(), context.Canceled)
	}
}

func TestMemory_HandlerPanicIsRecovered(t *testing.T) {
	m := NewMemory(MemoryConfig{})
	t.Cleanup(func() { _ = m.Close() })

	var calls atomic.Int32
	done := make(chan struct{}, 2)
	stop := startConsumer(t, m, "boom", func(context.Context, Message) error {
		defer func() { done <- struct{}{} }()
		if calls.Add(1) == 1 {
			panic("first message explodes")
		}
		return errors.New("second fails")
	}, WithAutoAck(true))

	for range 2 {
		_, err := m.Publish(context.Background(), "boom", OutgoingMessage{Body: []byte("x")})
		require.NoError(t, err)
	}
	<-done
	<-done

	assert.Equal(t, int32(2), calls.Load())
	assert.ErrorIs(t, stop(), context.Canceled)
}

func TestMemory_Validation(t *testing.T) {
	m := NewMemory(MemoryConfig{Buffer: 1})
	ctx := context.Background()

	_, err := m.Publish(ctx, "", OutgoingMessage{})
	assert.ErrorIs(t, err, ErrDestinationRequired)
	assert.ErrorIs(t, m.Consume(ctx, "x", nil), ErrHandlerRequired)

	_, err = m.Publish(ctx, "nobody-listens", OutgoingMessage{Body: []byte("x")})
	assert.NoError(t, err)

	require.NoError(t, m.Close())
	_, err = m.Publish(ctx, "x", OutgoingMessage{})
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.ErrorIs(t, m.Consume(ctx, "x", func(context.Context, Message) error { return nil }), io.ErrClosedPipe)
}

func TestMemory_CloseStopsConsumers(t *testing.T) {
	m := NewMemory(MemoryConfig{})

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.Consume(context.Background(), "x", func(context.Context, Message) error { return nil })
	}()
	require.Eventually(t, func() bool { return m.subscribers("x") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, m.Close())
	assert.ErrorIs(t, <-errCh, io.ErrClosedPipe)
}

func TestNewFromDriver(t *testing.T) {
	msg, err := NewFromDriver("memory", FactoryOptions{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, msg)

	_, err = NewFromDriver("carrier-pigeon", FactoryOptions{})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = NewFromDriver("nats", FactoryOptions{})
	assert.ErrorIs(t, err, ErrNATSURLRequired)

	_, err = NewFromDriver("kafka", FactoryOptions{})
	assert.ErrorIs(t, err, ErrKafkaBrokersRequired)
}
