package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the part of *amqp.Channel the forwarder publishes through.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Forwarder copies bus events onto a topic exchange, routed by event type.
type Forwarder struct {
	conn     *amqp.Connection
	channel  Channel
	exchange string
	logger   *slog.Logger
}

func DialForwarder(url, exchange string, logger *slog.Logger) (*Forwarder, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	f, err := NewForwarder(ch, exchange, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	f.conn = conn
	return f, nil
}

func NewForwarder(ch Channel, exchange string, logger *slog.Logger) (*Forwarder, error) {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Forwarder{channel: ch, exchange: exchange, logger: logger}, nil
}

// Attach subscribes the forwarder to every event type on bus.
func (f *Forwarder) Attach(bus *EventBus) {
	for _, t := range Types {
		bus.Subscribe(t, f.Forward)
	}
}

func (f *Forwarder) Forward(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = f.channel.PublishWithContext(ctx, f.exchange, event.EventType(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID(),
		Timestamp:    event.OccurredAt(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.EventType(), err)
	}

	f.logger.Debug("event forwarded", "event_type", event.EventType(), "event_id", event.EventID(), "exchange", f.exchange)
	return nil
}

func (f *Forwarder) Close() error {
	if f.channel != nil {
		f.channel.Close()
	}
	if f.conn != nil {
		return f.conn.Close()
	}
	return nil
}
