package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/musicuration-desk/internal/logging"
	"github.com/iliyamo/musicuration-desk/internal/queue"
)

// Publisher delivers audit events.  Callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

// NopPublisher drops every event.  Used when auditing is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, any) error { return nil }

// AMQPPublisher publishes persistent JSON messages to the durable audit
// queue on the default exchange.  Each publish dials its own connection.
type AMQPPublisher struct {
	URL         string
	Queue       string
	DialTimeout time.Duration
}

// NewAMQPPublisher returns a publisher for the audit queue at url.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{URL: url, Queue: queue.AuditQueue, DialTimeout: 2 * time.Second}
}

func (p *AMQPPublisher) Publish(ctx context.Context, event any) error {
	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(p.DialTimeout)})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// publish sends event and logs a failure instead of returning it.
func publish(ctx context.Context, p Publisher, event any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := p.Publish(ctx, event); err != nil {
		logging.Warn().Err(err).Str("queue", queue.AuditQueue).Msg("audit event not published")
	}
}
