package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventVersion  = 1
	schemaPattern = "contracts/events/cart/%s.v1.enveloped.schema.json"
)

// EventEnvelope represents the common envelope for all events.
type EventEnvelope[T any] struct {
	EventName     string    `json:"eventName"`
	EventVersion  int       `json:"eventVersion"`
	EventID       string    `json:"eventId"`
	CorrelationID string    `json:"correlationId,omitempty"`
	CausationID   string    `json:"causationId,omitempty"`
	Producer      string    `json:"producer"`
	PartitionKey  string    `json:"partitionKey"`
	Sequence      int64     `json:"sequence"`
	OccurredAt    time.Time `json:"occurredAt"`
	Schema        string    `json:"schema"`
	Payload       T         `json:"payload"`
}

type CartChangedPayload struct {
	CartID      string            `json:"cartId"`
	ProductID   *int64            `json:"productId,omitempty"`
	Items       []CartItemPayload `json:"items"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	Timestamp   time.Time         `json:"timestamp"`
}

type CartItemPayload struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// EnvelopeMetadata carries correlation/causation context for emitted events.
type EnvelopeMetadata struct {
	CorrelationID string
	CausationID   string
}

type metadataKey struct{}

func ContextWithMetadata(ctx context.Context, md EnvelopeMetadata) context.Context {
	return context.WithValue(ctx, metadataKey{}, md)
}

func MetadataFromContext(ctx context.Context) EnvelopeMetadata {
	md, _ := ctx.Value(metadataKey{}).(EnvelopeMetadata)
	return md
}
