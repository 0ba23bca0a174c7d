// Package eventbus consumes the internal event bus and drives the hub: each
// message-created event is routed to its target user's sessions, each
// presence edge is relayed to every connected party.
package eventbus

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/fanchat/messaging-service/internal/adapter/pubsub"
	"github.com/fanchat/messaging-service/internal/domain/registry"
)

type EventHandler struct {
	hub    registry.Hubber
	logger *slog.Logger
}

func NewEventHandler(hub registry.Hubber, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		hub:    hub,
		logger: logger.With("component", "eventbus"),
	}
}

func NewRouter(logger watermill.LoggerAdapter) (*message.Router, error) {
	return message.NewRouter(message.RouterConfig{}, logger)
}

// RegisterHandlers wires the bus subscriptions through the shared middleware
// chain.
func RegisterHandlers(router *message.Router, sub message.Subscriber, h *EventHandler) {
	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		LoggingMiddleware(h.logger),
	)

	router.AddNoPublisherHandler(
		"on_message_created",
		pubsub.TopicMessageCreated,
		sub,
		h.OnMessageCreated,
	)
	router.AddNoPublisherHandler(
		"on_presence_updated",
		pubsub.TopicPresenceUpdated,
		sub,
		h.OnPresenceUpdated,
	)
}
