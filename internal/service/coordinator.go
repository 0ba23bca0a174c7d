package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fanchat/messaging-service/internal/adapter/pubsub"
	"github.com/fanchat/messaging-service/internal/domain/registry"
	"github.com/fanchat/messaging-service/internal/service/dto"
)

// Coordinator is the primary interface for transport handlers: it owns the
// connect/disconnect orchestration around the hub.
type Coordinator interface {
	Subscribe(ctx context.Context, id Identity) (registry.Connector, error)
	Unsubscribe(userID, connID uuid.UUID)
}

type LifecycleCoordinator struct {
	hub       registry.Hubber
	directory Directory
	events    pubsub.Dispatcher
	logger    *slog.Logger

	sessionBuffer int
}

func NewLifecycleCoordinator(hub registry.Hubber, directory Directory, events pubsub.Dispatcher, logger *slog.Logger, sessionBuffer int) *LifecycleCoordinator {
	return &LifecycleCoordinator{
		hub:           hub,
		directory:     directory,
		events:        events,
		logger:        logger.With("component", "coordinator"),
		sessionBuffer: sessionBuffer,
	}
}

// Subscribe registers an authenticated session. The hub decides the presence
// edge inside its per-user critical section; only a true 0->1 edge writes the
// external online flag and publishes a presence event, so concurrent connects
// of a previously-offline user produce exactly one broadcast.
func (c *LifecycleCoordinator) Subscribe(ctx context.Context, id Identity) (registry.Connector, error) {
	conn := registry.NewConnector(ctx, id.UserID, id.Role, c.sessionBuffer)

	if wentOnline := c.hub.Register(conn); wentOnline {
		c.markPresence(ctx, id.UserID, true)
	}
	return conn, nil
}

// Unsubscribe detaches the session. Idempotent: a duplicate teardown for an
// already-closed connection decrements nothing and broadcasts nothing.
func (c *LifecycleCoordinator) Unsubscribe(userID, connID uuid.UUID) {
	if wentOffline := c.hub.Unregister(userID, connID); wentOffline {
		// The originating request context is gone by teardown time.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.markPresence(ctx, userID, false)
	}
}

// markPresence updates the externally persisted projection and relays the
// edge. The directory flag is best-effort: a write failure is logged but
// never suppresses the broadcast, because registry state is the trust source.
func (c *LifecycleCoordinator) markPresence(ctx context.Context, userID uuid.UUID, online bool) {
	if err := c.directory.SetOnline(ctx, userID, online); err != nil {
		c.logger.Warn("online flag update failed", "user_id", userID, "online", online, "err", err)
	}

	ev := dto.NewPresenceUpdatedV1(userID, online, time.Now().UnixMilli())
	if err := c.events.Publish(ctx, pubsub.TopicPresenceUpdated, ev); err != nil {
		c.logger.Error("presence publish failed", "user_id", userID, "online", online, "err", err)
	}
}
