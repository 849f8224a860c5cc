package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/serroba/registry-client/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type mockSubscriber struct {
	msgChan      chan *message.Message
	subscribeErr error
	mu           sync.Mutex
	closed       bool
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{
		msgChan: make(chan *message.Message, 10),
	}
}

func (m *mockSubscriber) Subscribe(_ context.Context, _ string) (<-chan *message.Message, error) {
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}

	return m.msgChan, nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.msgChan)
	}

	return nil
}

func noopHandler(_ context.Context, _ *testEvent) error { return nil }

func newEventMessage(t *testing.T, event *testEvent) *message.Message {
	t.Helper()

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	return message.NewMessage(uuid.NewString(), payload)
}

// waitSettled reports "ack" or "nack" for msg.
func waitSettled(t *testing.T, msg *message.Message) string {
	t.Helper()

	select {
	case <-msg.Acked():
		return "ack"
	case <-msg.Nacked():
		return "nack"
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message to settle")

		return ""
	}
}

func TestConsumer_Start(t *testing.T) {
	t.Run("starts successfully", func(t *testing.T) {
		consumer := messaging.NewConsumer(newMockSubscriber(), "document.submitted", noopHandler, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))
		assert.Equal(t, "document.submitted", consumer.Topic())

		_ = consumer.Shutdown()
	})

	t.Run("returns error when subscribe fails", func(t *testing.T) {
		sub := &mockSubscriber{subscribeErr: errors.New("subscribe error")}
		consumer := messaging.NewConsumer(sub, "document.submitted", noopHandler, zap.NewNop())

		require.Error(t, consumer.Start(context.Background()))

		// shutdown after a failed start must not block
		require.NoError(t, consumer.Shutdown())
	})
}

func TestConsumer_HandleMessage(t *testing.T) {
	t.Run("acks on successful handling", func(t *testing.T) {
		sub := newMockSubscriber()
		received := make(chan *testEvent, 1)

		consumer := messaging.NewConsumer(
			sub,
			"document.submitted",
			func(_ context.Context, event *testEvent) error {
				received <- event

				return nil
			},
			zap.NewNop(),
		)
		require.NoError(t, consumer.Start(context.Background()))

		msg := newEventMessage(t, &testEvent{ID: "123", Name: "test"})
		sub.msgChan <- msg

		assert.Equal(t, "ack", waitSettled(t, msg))

		event := <-received
		assert.Equal(t, "123", event.ID)
		assert.Equal(t, "test", event.Name)

		_ = consumer.Shutdown()
	})

	t.Run("acks and drops malformed payloads", func(t *testing.T) {
		sub := newMockSubscriber()
		called := false

		consumer := messaging.NewConsumer(
			sub,
			"document.submitted",
			func(_ context.Context, _ *testEvent) error {
				called = true

				return nil
			},
			zap.NewNop(),
		)
		require.NoError(t, consumer.Start(context.Background()))

		msg := message.NewMessage(uuid.NewString(), []byte("invalid json"))
		sub.msgChan <- msg

		assert.Equal(t, "ack", waitSettled(t, msg))

		_ = consumer.Shutdown()

		assert.False(t, called)
	})

	t.Run("nacks on handler error", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := messaging.NewConsumer(
			sub,
			"document.submitted",
			func(_ context.Context, _ *testEvent) error {
				return errors.New("registry unavailable")
			},
			zap.NewNop(),
		)
		require.NoError(t, consumer.Start(context.Background()))

		msg := newEventMessage(t, &testEvent{ID: "123"})
		sub.msgChan <- msg

		assert.Equal(t, "nack", waitSettled(t, msg))

		_ = consumer.Shutdown()
	})

	t.Run("processes messages in order", func(t *testing.T) {
		sub := newMockSubscriber()

		var (
			mu    sync.Mutex
			order []string
		)

		consumer := messaging.NewConsumer(
			sub,
			"document.submitted",
			func(_ context.Context, event *testEvent) error {
				mu.Lock()
				defer mu.Unlock()

				order = append(order, event.ID)

				return nil
			},
			zap.NewNop(),
		)
		require.NoError(t, consumer.Start(context.Background()))

		msgs := []*message.Message{
			newEventMessage(t, &testEvent{ID: "1"}),
			newEventMessage(t, &testEvent{ID: "2"}),
			newEventMessage(t, &testEvent{ID: "3"}),
		}

		for _, msg := range msgs {
			sub.msgChan <- msg
		}

		for _, msg := range msgs {
			assert.Equal(t, "ack", waitSettled(t, msg))
		}

		_ = consumer.Shutdown()

		assert.Equal(t, []string{"1", "2", "3"}, order)
	})
}

func TestConsumer_Shutdown(t *testing.T) {
	t.Run("shuts down gracefully", func(t *testing.T) {
		consumer := messaging.NewConsumer(newMockSubscriber(), "document.submitted", noopHandler, zap.NewNop())
		require.NoError(t, consumer.Start(context.Background()))

		require.NoError(t, consumer.Shutdown())
	})

	t.Run("returns immediately when never started", func(t *testing.T) {
		consumer := messaging.NewConsumer(newMockSubscriber(), "document.submitted", noopHandler, zap.NewNop())

		done := make(chan error, 1)

		go func() { done <- consumer.Shutdown() }()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("Shutdown blocked without Start")
		}
	})

	t.Run("cancels the context of an in-flight handler", func(t *testing.T) {
		sub := newMockSubscriber()
		entered := make(chan struct{})

		consumer := messaging.NewConsumer(
			sub,
			"document.submitted",
			func(ctx context.Context, _ *testEvent) error {
				close(entered)
				<-ctx.Done()

				return ctx.Err()
			},
			zap.NewNop(),
		)
		require.NoError(t, consumer.Start(context.Background()))

		msg := newEventMessage(t, &testEvent{ID: "slow"})
		sub.msgChan <- msg

		<-entered

		require.NoError(t, consumer.Shutdown())
		assert.Equal(t, "nack", waitSettled(t, msg))
	})
}
