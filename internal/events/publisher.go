package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/cart"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher emits enveloped cart change events to EventsExchange.
// It satisfies cart.ChangeNotifier. The envelope sequence is the committed
// cart version, so ordering by partitionKey and sequence yields the newest
// snapshot last. Notifications that arrive after a newer version was
// published carry a superseded snapshot and are dropped.
type Publisher struct {
	ch       channel
	seqRepo  SequenceRepository
	producer string
	logger   *slog.Logger
	now      func() time.Time
}

func NewPublisher(conn *amqp.Connection, seqRepo SequenceRepository) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	return newPublisher(ch, seqRepo), nil
}

func newPublisher(ch channel, seqRepo SequenceRepository) *Publisher {
	return &Publisher{
		ch:       ch,
		seqRepo:  seqRepo,
		producer: storeServiceName,
		logger:   slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) CartChanged(ctx context.Context, change cart.Change) error {
	routingKey, err := RoutingKey(change.Kind)
	if err != nil {
		return err
	}

	seq := change.Cart.Version
	advanced, err := p.seqRepo.Advance(ctx, change.Cart.ID, seq)
	if err != nil {
		return fmt.Errorf("record sequence: %w", err)
	}
	if !advanced {
		p.logger.WarnContext(ctx, "dropping superseded cart event",
			"cart_id", change.Cart.ID, "kind", string(change.Kind), "sequence", seq)
		return nil
	}

	env := p.buildEnvelope(change, MetadataFromContext(ctx), seq)
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", env.EventName, err)
	}

	return p.publishJSON(ctx, routingKey, env.EventID, body)
}

func (p *Publisher) buildEnvelope(change cart.Change, md EnvelopeMetadata, seq int64) EventEnvelope[CartChangedPayload] {
	occurredAt := p.now()
	name := eventNames[change.Kind]

	payload := CartChangedPayload{
		CartID:      change.Cart.ID,
		Items:       make([]CartItemPayload, 0, len(change.Cart.Items)),
		TotalAmount: change.Cart.TotalPrice,
		Timestamp:   occurredAt,
	}
	if change.ProductID != 0 {
		productID := change.ProductID
		payload.ProductID = &productID
	}
	for _, it := range change.Cart.Items {
		payload.Items = append(payload.Items, CartItemPayload{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	return EventEnvelope[CartChangedPayload]{
		EventName:     name,
		EventVersion:  EventVersion,
		EventID:       uuid.NewString(),
		CorrelationID: md.CorrelationID,
		CausationID:   md.CausationID,
		Producer:      p.producer,
		PartitionKey:  change.Cart.ID,
		Sequence:      seq,
		OccurredAt:    occurredAt,
		Schema:        fmt.Sprintf(schemaPattern, name),
		Payload:       payload,
	}
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey, messageID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Timestamp:    p.now(),
			Body:         body,
		},
	)
}
