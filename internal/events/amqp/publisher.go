// Package amqp forwards verification events to a RabbitMQ exchange. Each
// event is published as JSON with the event type as routing key.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/agentstation/propverify/internal/events"
	"github.com/agentstation/propverify/pkg/logging"
)

const (
	// DefaultExchange is the topic exchange events are published to.
	DefaultExchange = "propverify.events"

	publishTimeout = 5 * time.Second
)

// Channel is the subset of *amqp.Channel used by the Publisher.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Config configures a Publisher.
type Config struct {
	URL      string
	Exchange string
	Logger   *zerolog.Logger
}

// Publisher is an events.Subscriber that publishes to RabbitMQ.
type Publisher struct {
	conn     *amqp.Connection
	channel  Channel
	exchange string
	logger   *zerolog.Logger

	mu     sync.Mutex
	closed bool
}

var _ events.Subscriber = (*Publisher)(nil)

// Dial connects to RabbitMQ and declares the exchange as a durable topic exchange.
func Dial(cfg Config) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("amqp: url is required")
	}
	exchange := cfg.Exchange
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("amqp: failed to dial RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp: failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp: failed to declare exchange '%s': %w", exchange, err)
	}

	p := NewPublisher(ch, exchange, cfg.Logger)
	p.conn = conn
	return p, nil
}

// NewPublisher creates a Publisher on an open channel.
func NewPublisher(ch Channel, exchange string, logger *zerolog.Logger) *Publisher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		channel:  ch,
		exchange: exchange,
		logger:   logger,
	}
}

// Send publishes e to the exchange.
func (p *Publisher) Send(e events.Event) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return fmt.Errorf("amqp: publisher is closed")
	}

	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("amqp: failed to encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, string(e.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    e.Timestamp,
		Type:         string(e.Type),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("amqp: failed to publish message: %w", err)
	}

	p.logger.Debug().
		Str("exchange", p.exchange).
		Str("event_type", string(e.Type)).
		Msg("Event published")
	return nil
}

// Close closes the channel and, when the Publisher dialed it, the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	var firstErr error
	if err := p.channel.Close(); err != nil {
		firstErr = fmt.Errorf("amqp: failed to close channel: %w", err)
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("amqp: failed to close connection: %w", err)
		}
	}
	return firstErr
}
