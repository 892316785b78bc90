// Package alert delivers data-inconsistency incidents to an operator
// channel. Inconsistency is fatal for the affected session, so it must be
// surfaced loudly, not just logged.
package alert

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Event describes one detected inconsistency.
type Event struct {
	IncidentID string    `json:"incident_id"`
	SessionID  string    `json:"session_id"`
	Details    string    `json:"details"`
	DetectedAt time.Time `json:"detected_at"`
}

// NewEvent stamps a fresh incident id onto an inconsistency report.
func NewEvent(sessionID, details string) Event {
	return Event{
		IncidentID: uuid.NewString(),
		SessionID:  sessionID,
		Details:    details,
		DetectedAt: time.Now().UTC(),
	}
}

type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// LogNotifier is the fallback channel when no broker is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Notify(ctx context.Context, event Event) error {
	n.Logger.Error("DATA INCONSISTENCY: operator attention required",
		"incident_id", event.IncidentID,
		"session_id", event.SessionID,
		"details", event.Details,
	)

	return nil
}

const operatorQueue = "operator.inconsistency"

// AMQPNotifier publishes incidents as persistent messages to a durable
// queue. A connection is dialed per incident; incidents are rare and the
// simplicity beats keeping a broker connection alive on the hot path.
type AMQPNotifier struct {
	URL    string
	Logger *slog.Logger
}

func (n *AMQPNotifier) Notify(ctx context.Context, event Event) error {
	conn, err := amqp.Dial(n.URL)
	if err != nil {
		n.Logger.Error("alert broker dial failed", "error", err)
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		n.Logger.Error("alert broker channel open failed", "error", err)
		return err
	}
	defer ch.Close()

	// Durable so incidents survive broker restarts.
	if _, err := ch.QueueDeclare(operatorQueue, true, false, false, false, nil); err != nil {
		n.Logger.Error("alert queue declare failed", "error", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, "", operatorQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.DetectedAt,
		Body:         body,
	})
	if err != nil {
		n.Logger.Error("alert publish failed", "error", err)
		return err
	}

	return nil
}
