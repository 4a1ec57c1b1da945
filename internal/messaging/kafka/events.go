package kafka

import (
	"encoding/json"
	"time"

	"github.com/rakibhasan/dokan/internal/domain"
)

// EventType определяет тип события заказа.
type EventType string

const (
	EventTypeOrderPlaced          EventType = "order.placed"
	EventTypeOrderCancelled       EventType = "order.cancelled"
	EventTypeOrderStatusChanged   EventType = "order.status_changed"
	EventTypeOrderPaymentVerified EventType = "order.payment_verified"
)

// Topics для Kafka.
const (
	TopicOrderEvents     = "dokan.order.events"
	TopicDeadLetterQueue = "dokan.dlq"
)

// Kafka headers для retry-логики consumer'а.
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// EventEnvelope — конверт, в котором outbox-сообщения уходят в Kafka.
// Его же собирает заново инструмент переразбора DLQ при возврате события
// в основной topic.
type EventEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// NewEventEnvelope оборачивает outbox-сообщение в конверт с текущим
// временем публикации.
func NewEventEnvelope(msg domain.OutboxMessage) EventEnvelope {
	return EventEnvelope{
		ID:            msg.ID,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		EventType:     msg.EventType,
		Payload:       json.RawMessage(msg.Payload),
		PublishedAt:   time.Now().UTC(),
	}
}

// PartitionKey возвращает ключ партиционирования: aggregate id, а при его
// отсутствии id самого сообщения.
func (e EventEnvelope) PartitionKey() string {
	if e.AggregateID != "" {
		return e.AggregateID
	}
	return e.ID
}

// OrderEvent — событие жизненного цикла заказа для внешних потребителей.
type OrderEvent struct {
	EventType EventType              `json:"event_type"`
	OrderID   string                 `json:"order_id"`
	UserID    string                 `json:"user_id,omitempty"`
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewOrderEvent создаёт событие заказа с текущим timestamp.
func NewOrderEvent(eventType EventType, orderID, userID, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType: eventType,
		OrderID:   orderID,
		UserID:    userID,
		Status:    status,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}
