// Package rabbitmq publishes order events to a topic exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	StatusChangedRoutingKey = "order.status_changed"

	publishTimeout = 5 * time.Second
)

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher implements ports.EventPublisher over one AMQP channel.
type Publisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string

	mu sync.Mutex
}

// Dial connects to url and declares exchange as a durable topic exchange.
func Dial(url, exchange string) (*Publisher, error) {
	if url == "" {
		return nil, errs.NewValueIsRequiredError("amqp url")
	}
	if exchange == "" {
		return nil, errs.NewValueIsRequiredError("amqp exchange")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

type statusChangedMessage struct {
	OrderID    string    `json:"order_id"`
	ShortCode  string    `json:"short_code"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (p *Publisher) PublishStatusChanged(ctx context.Context, event ports.StatusChangedEvent) error {
	body, err := json.Marshal(statusChangedMessage{
		OrderID:    event.OrderID.String(),
		ShortCode:  event.ShortCode.String(),
		From:       event.From.String(),
		To:         event.To.String(),
		Source:     event.Source,
		OccurredAt: event.OccurredAt.UTC(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx,
		p.exchange,              // exchange
		StatusChangedRoutingKey, // routing key
		false,                   // mandatory
		false,                   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    event.OrderID.String() + ":" + event.To.String(),
			Body:         body,
			Timestamp:    event.OccurredAt,
		})
	if err != nil {
		return fmt.Errorf("publish %s for order %s: %w", StatusChangedRoutingKey, event.ShortCode, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	var err error
	if p.channel != nil {
		err = p.channel.Close()
	}
	if p.conn != nil {
		if connErr := p.conn.Close(); err == nil {
			err = connErr
		}
	}
	return err
}

// NoopPublisher drops every event. It stands in when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishStatusChanged(context.Context, ports.StatusChangedEvent) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
