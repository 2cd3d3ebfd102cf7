package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSubscriber is a mock subscriber for testing.
type mockSubscriber struct {
	events  []Event
	mu      sync.Mutex
	closed  bool
	sendErr error
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{
		events: make([]Event, 0),
	}
}

func (m *mockSubscriber) Send(event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.sendErr
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockSubscriber) EventCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func (m *mockSubscriber) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func newTestBroker(t *testing.T) (*Broker, context.CancelFunc) {
	t.Helper()
	logger := zerolog.Nop()
	b := NewBroker(&logger)

	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-b.Done()
	})
	return b, cancel
}

func TestBroker_SubscribeIsCountedOnReturn(t *testing.T) {
	b, _ := newTestBroker(t)

	for i := 1; i <= 50; i++ {
		require.True(t, b.Subscribe(newMockSubscriber()))
		require.Equal(t, i, b.SubscriberCount())
	}
}

func TestBroker_PublishFansOut(t *testing.T) {
	b, _ := newTestBroker(t)

	sub1, sub2 := newMockSubscriber(), newMockSubscriber()
	require.True(t, b.Subscribe(sub1))
	require.True(t, b.Subscribe(sub2))
	assert.Equal(t, 2, b.SubscriberCount())

	b.Publish(PropertyUnified, UnifiedPayload{PropertyID: "PROP-1", Revision: 3})

	assert.Eventually(t, func() bool {
		return sub1.EventCount() == 1 && sub2.EventCount() == 1
	}, time.Second, 5*time.Millisecond)

	sub1.mu.Lock()
	ev := sub1.events[0]
	sub1.mu.Unlock()
	assert.Equal(t, PropertyUnified, ev.Type)
	assert.Equal(t, UnifiedPayload{PropertyID: "PROP-1", Revision: 3}, ev.Data)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestBroker_Unsubscribe(t *testing.T) {
	b, _ := newTestBroker(t)

	sub := newMockSubscriber()
	require.True(t, b.Subscribe(sub))
	b.Unsubscribe(sub)

	assert.Eventually(t, func() bool { return b.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, sub.IsClosed())

	b.Publish(PropertyFailed, FailedPayload{PropertyID: "PROP-1"})
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, sub.EventCount())
}

func TestBroker_SendErrorDoesNotStopBroker(t *testing.T) {
	b, _ := newTestBroker(t)

	failing := newMockSubscriber()
	failing.sendErr = errors.New("peer gone")
	ok := newMockSubscriber()
	require.True(t, b.Subscribe(failing))
	require.True(t, b.Subscribe(ok))

	b.Publish(PropertyUnified, nil)
	b.Publish(PropertyUnified, nil)

	assert.Eventually(t, func() bool { return ok.EventCount() == 2 }, time.Second, 5*time.Millisecond)
}

func TestBroker_ShutdownClosesSubscribers(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroker(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)

	sub := newMockSubscriber()
	require.True(t, b.Subscribe(sub))

	cancel()
	<-b.Done()

	assert.True(t, sub.IsClosed())
	assert.Zero(t, b.SubscriberCount())
	assert.False(t, b.Subscribe(newMockSubscriber()), "subscribe after shutdown does not block")
	b.Unsubscribe(sub)
}

func TestBroker_PublishDropsWhenFull(t *testing.T) {
	b := NewBroker(nil)

	// Run is not started, so the buffer fills up
	for range cap(b.events) + 10 {
		b.Publish(PropertyUnified, nil)
	}
	assert.Len(t, b.events, cap(b.events))
}
