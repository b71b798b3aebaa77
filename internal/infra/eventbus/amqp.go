// Package eventbus publishes domain events to the notification exchange.
// Delivery is at-least-once: the outbox worker retries until the publish
// succeeds, and consumers deduplicate on the event ID carried as MessageId.
package eventbus

import (
	"context"
	"time"

	"beautybook/internal/pkg/config"
	"beautybook/internal/pkg/errs"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(cfg config.AMQPConfig) (*Publisher, func(), error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, nil, errs.Wrap(err, "failed to dial AMQP broker")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, errs.Wrap(err, "failed to open AMQP channel")
	}

	// Durable topic exchange; routing key is the event topic, e.g.
	// reservation.confirmed or points.credited.
	if err := ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // autoDelete
		false,        // internal
		false,        // noWait
		nil,          // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, errs.Wrap(err, "failed to declare exchange")
	}

	cleanup := func() {
		_ = ch.Close()
		_ = conn.Close()
	}

	return &Publisher{conn: conn, channel: ch, exchange: cfg.Exchange}, cleanup, nil
}

func (p *Publisher) Publish(ctx context.Context, eventID uuid.UUID, topic string, payload []byte) error {
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    eventID.String(),
		Timestamp:    time.Now().UTC(),
		Body:         payload,
	}

	if err := p.channel.PublishWithContext(ctx, p.exchange, topic, false, false, pub); err != nil {
		return errs.Wrap(err, "failed to publish event")
	}
	return nil
}
