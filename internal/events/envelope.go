package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderCancelled     = "OrderCancelled"
	EventOrderStatusChanged = "OrderStatusChanged"
)

const (
	TopicOrderCreated       = "order.created"
	TopicOrderCancelled     = "order.cancelled"
	TopicOrderStatusChanged = "order.status_changed"
)

// ProducerName identifies this service in event envelopes.
const ProducerName = "gerai-api"

// Envelope wraps every order event published to Kafka.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope builds a versioned envelope around the payload. The order
// ID doubles as the correlation ID so one order's events stay linkable.
func NewEnvelope(eventType, orderID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      ProducerName,
		CorrelationID: orderID,
		Payload:       raw,
	}, nil
}

// PartitionKey keeps all events of one order on the same partition, so
// consumers see them in order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }

// ---- Payload types per event ----

type ItemLine struct {
	ProductID *string `json:"product_id,omitempty"`
	VariantID *string `json:"variant_id,omitempty"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     int     `json:"price"`
}

type OrderCreatedPayload struct {
	OrderID     string     `json:"order_id"`
	OrderNumber string     `json:"order_number"`
	UserID      uint       `json:"user_id"`
	Items       []ItemLine `json:"items"`
	Total       int        `json:"total"`
	Currency    string     `json:"currency"`
}

type OrderCancelledPayload struct {
	OrderID     string     `json:"order_id"`
	OrderNumber string     `json:"order_number"`
	UserID      uint       `json:"user_id"`
	Items       []ItemLine `json:"items"`
	CancelledBy uint       `json:"cancelled_by"`
}

type OrderStatusChangedPayload struct {
	OrderID    string `json:"order_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

// UnwrapPayload decodes an envelope payload into its concrete type.
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	err := json.Unmarshal(payload, &t)
	return t, err
}
