package amqp_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/propverify/internal/events"
	"github.com/agentstation/propverify/internal/events/amqp"
	"github.com/agentstation/propverify/pkg/logging"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	mu         sync.Mutex
	published  []published
	publishErr error
	closed     int
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func TestSendPublishesJSON(t *testing.T) {
	ch := &fakeChannel{}
	p := amqp.NewPublisher(ch, amqp.DefaultExchange, logging.NewNopLogger())

	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, p.Send(events.Event{
		Type:      events.PropertyUnified,
		Timestamp: ts,
		Data:      events.UnifiedPayload{PropertyID: "PROP-1", Revision: 2, Sources: []string{"doris"}},
	}))

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, amqp.DefaultExchange, got.exchange)
	assert.Equal(t, "property.unified", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp091.Persistent, got.msg.DeliveryMode)
	assert.NotEmpty(t, got.msg.MessageId)
	assert.Equal(t, ts, got.msg.Timestamp)

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, "property.unified", body["type"])
	assert.Equal(t, "PROP-1", body["data"].(map[string]any)["propertyId"])
}

func TestSendError(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	p := amqp.NewPublisher(ch, "x", nil)

	err := p.Send(events.Event{Type: events.PropertyFailed})
	assert.ErrorContains(t, err, "channel closed")
}

func TestCloseIsIdempotent(t *testing.T) {
	ch := &fakeChannel{}
	p := amqp.NewPublisher(ch, "x", nil)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, ch.closed)
	assert.Error(t, p.Send(events.Event{Type: events.PropertyUnified}))
}

func TestDialRequiresURL(t *testing.T) {
	_, err := amqp.Dial(amqp.Config{})
	assert.Error(t, err)
}
