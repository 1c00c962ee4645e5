package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Routing keys of the domain events published after successful writes.
const (
	EventUserRegistered = "user.registered"
	EventUserCreated    = "user.created"
	EventUserUpdated    = "user.updated"
	EventUserDeleted    = "user.deleted"
	EventTaskCreated    = "task.created"
)

// EventPublisher delivers an encoded event under a routing key.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// Event is the envelope of every published message.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// publishEvent is best effort: failures are logged and never reach the caller.
func publishEvent(ctx context.Context, publisher EventPublisher, eventType string, data any) {
	if publisher == nil {
		return
	}

	body, err := json.Marshal(Event{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode event", "type", eventType, "error", err)
		return
	}

	if err := publisher.Publish(ctx, eventType, body); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "type", eventType, "error", err)
		return
	}
	slog.DebugContext(ctx, "published event", "type", eventType)
}
