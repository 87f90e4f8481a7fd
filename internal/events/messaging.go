package events

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/cart"
)

const (
	EventsExchange   = "ecommerce.events"
	storeServiceName = "store-service-go"
)

// routingKeys maps each cart change to its routing key on EventsExchange.
var routingKeys = map[cart.ChangeKind]string{
	cart.ChangeCreated:     "cart.created.v1",
	cart.ChangeItemAdded:   "cart.item-added.v1",
	cart.ChangeItemUpdated: "cart.item-updated.v1",
	cart.ChangeItemRemoved: "cart.item-removed.v1",
	cart.ChangeCleared:     "cart.cleared.v1",
}

var eventNames = map[cart.ChangeKind]string{
	cart.ChangeCreated:     "CartCreated",
	cart.ChangeItemAdded:   "CartItemAdded",
	cart.ChangeItemUpdated: "CartItemUpdated",
	cart.ChangeItemRemoved: "CartItemRemoved",
	cart.ChangeCleared:     "CartCleared",
}

func RoutingKey(kind cart.ChangeKind) (string, error) {
	key, ok := routingKeys[kind]
	if !ok {
		return "", fmt.Errorf("no routing key for cart change %q", kind)
	}
	return key, nil
}

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
