package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Dispatcher defines the high-level contract for outgoing events. It keeps
// the services agnostic of the transport implementation.
type Dispatcher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

type eventDispatcher struct {
	publisher message.Publisher
}

// NewEventDispatcher returns the interface instead of the concrete struct.
func NewEventDispatcher(pub message.Publisher) Dispatcher {
	return &eventDispatcher{publisher: pub}
}

func (d *eventDispatcher) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("event dispatcher: marshal failure: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)

	if err := d.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("event dispatcher: publish to %s: %w", topic, err)
	}
	return nil
}
