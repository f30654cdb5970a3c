package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/musicuration-desk/internal/logging"
)

// AuditLogPath is where the consumer appends one line per event.
var AuditLogPath = filepath.Join("logs", "audit.log")

// StartAuditConsumer connects to RabbitMQ, declares the audit queue and
// appends each delivery to AuditLogPath.  It reconnects with exponential
// backoff (capped at 30s) and returns only when ctx is cancelled.  A
// message that cannot be handled is rejected without requeue so a poison
// message cannot spin the loop.
func StartAuditConsumer(ctx context.Context, url string) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logging.Warn().Err(err).Dur("retry_in", backoff).Msg("audit-consumer: dial failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Warn().Err(err).Msg("audit-consumer: consume loop ended, reconnecting")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logging.Warn().Err(err).Msg("audit-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(AuditQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(AuditQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := appendEvent(d.Body); err != nil {
				logging.Error().Err(err).Msg("audit-consumer: handle message failed")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func appendEvent(body []byte) error {
	if err := os.MkdirAll(filepath.Dir(AuditLogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(AuditLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	return WriteLine(f, body)
}

// auditRecord is the union of SessionEvent and CollectionEvent fields.
type auditRecord struct {
	Type       string `json:"type"`
	UserID     uint64 `json:"user_id"`
	Username   string `json:"username"`
	EntityType string `json:"entity_type"`
	EntityID   uint64 `json:"entity_id"`
	At         string `json:"at"`
}

// WriteLine decodes one event body and writes its log line to w.
func WriteLine(w io.Writer, body []byte) error {
	var ev auditRecord
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	var line string
	switch ev.Type {
	case EventLogin, EventLogout:
		line = fmt.Sprintf("[%s] Session %s | user_id=%d | username=%q\n", ev.At, ev.Type, ev.UserID, ev.Username)
	case EventPossession, EventAttendance:
		line = fmt.Sprintf("[%s] Collection %s | user_id=%d | entity=%s | entity_id=%d\n",
			ev.At, ev.Type, ev.UserID, ev.EntityType, ev.EntityID)
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}

	if _, err := io.WriteString(w, line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
