package services

import (
	"strings"
	"time"

	"pustaka/internal/models"
	"pustaka/pkg/logger"
	"pustaka/pkg/metrics"
)

// EventPublisher delivers library events. pkg/rabbitmq.Client implements it.
type EventPublisher interface {
	Publish(routingKey string, payload interface{}) error
}

// Event is the payload published for every successful write.
type Event struct {
	Type       string      `json:"type"`
	ResourceID string      `json:"resourceId"`
	ActorID    string      `json:"actorId,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       interface{} `json:"data,omitempty"`
}

// Events counts writes and forwards them to an optional publisher.
// A nil *Events does nothing.
type Events struct {
	publisher EventPublisher
	log       logger.Logger
}

// NewEvents creates an Events. publisher may be nil when messaging is disabled.
func NewEvents(publisher EventPublisher, log logger.Logger) *Events {
	if log == nil {
		log = logger.Nop()
	}
	return &Events{publisher: publisher, log: log}
}

// emit never fails the caller: a publish error is only logged.
func (e *Events) emit(routingKey string, actor *models.Session, resourceID string, data interface{}) {
	if e == nil {
		return
	}
	if resource, action, ok := strings.Cut(routingKey, "."); ok {
		metrics.RecordMutation(resource, action)
	}
	if e.publisher == nil {
		return
	}

	evt := Event{
		Type:       routingKey,
		ResourceID: resourceID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	if actor != nil {
		evt.ActorID = actor.UserID
	}
	if err := e.publisher.Publish(routingKey, evt); err != nil {
		e.log.Warn("failed to publish event", map[string]interface{}{
			"event":       routingKey,
			"resource_id": resourceID,
			"error":       err.Error(),
		})
	}
}
