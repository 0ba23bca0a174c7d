package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fanchat/messaging-service/internal/adapter/pubsub"
	"github.com/fanchat/messaging-service/internal/domain/model"
	"github.com/fanchat/messaging-service/internal/service/dto"
)

// Dispatcher validates, authorizes, persists and fans out a private message.
// Used by both the realtime send path and the REST send path; the sender
// identity always comes from the authenticated context.
type Dispatcher interface {
	Send(ctx context.Context, sender Identity, receiverID uuid.UUID, body string) (*model.Message, error)
}

type MessageDispatcher struct {
	resolver Resolver
	store    MessageStore
	events   pubsub.Dispatcher
	logger   *slog.Logger
	now      func() time.Time
}

func NewMessageDispatcher(resolver Resolver, store MessageStore, events pubsub.Dispatcher, logger *slog.Logger) *MessageDispatcher {
	return &MessageDispatcher{
		resolver: resolver,
		store:    store,
		events:   events,
		logger:   logger.With("component", "dispatch"),
		now:      time.Now,
	}
}

// Send runs the dispatch pipeline. Persistence strictly precedes delivery:
// the stored message is the source of truth and fan-out is best-effort on top
// of it, so a delivery failure can never leave a delivered-but-unpersisted
// message behind.
func (d *MessageDispatcher) Send(ctx context.Context, sender Identity, receiverID uuid.UUID, body string) (*model.Message, error) {
	body = strings.TrimSpace(body)
	if receiverID == uuid.Nil || body == "" {
		return nil, ErrValidation
	}

	receiverRole, err := d.resolver.ResolveRole(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("resolve receiver: %w", err)
	}

	if !Allowed(sender.Role, receiverRole) {
		return nil, ErrPolicy
	}

	msg, err := d.store.Append(ctx, sender.UserID, receiverID, body, d.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	// One event per participant: the sender sees their own message echoed on
	// every open session, the receiver gets it on all of theirs.
	d.fanOut(ctx, msg, msg.SenderID)
	d.fanOut(ctx, msg, msg.ReceiverID)

	return msg, nil
}

func (d *MessageDispatcher) fanOut(ctx context.Context, msg *model.Message, target uuid.UUID) {
	ev := dto.NewMessageCreatedV1(msg, target)
	if err := d.events.Publish(ctx, pubsub.TopicMessageCreated, ev); err != nil {
		// The message is already durable; delivery stays best-effort.
		d.logger.Warn("delivery publish failed", "message_id", msg.ID, "target", target, "err", err)
	}
}
