package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanchat/messaging-service/internal/adapter/pubsub"
	"github.com/fanchat/messaging-service/internal/domain/model"
	"github.com/fanchat/messaging-service/internal/service/dto"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDispatchFixture(t *testing.T) (*MessageDispatcher, *fakeDirectory, *fakeStore, *capturePublisher, Identity, *model.User) {
	t.Helper()

	sender := newTestUser(model.RoleFan)
	receiver := newTestUser(model.RolePlayer)
	directory := newFakeDirectory(sender, receiver)
	store := &fakeStore{}
	events := &capturePublisher{}

	d := NewMessageDispatcher(NewUserResolver(directory), store, events, discardLogger())
	return d, directory, store, events, Identity{UserID: sender.ID, Role: sender.Role}, receiver
}

func TestDispatcher_Send(t *testing.T) {
	d, _, store, events, sender, receiver := newDispatchFixture(t)

	msg, err := d.Send(context.Background(), sender, receiver.ID, "  hello  ")
	require.NoError(t, err)

	assert.Equal(t, "hello", msg.Body, "body is trimmed before persistence")
	assert.Equal(t, sender.UserID, msg.SenderID)
	assert.Equal(t, receiver.ID, msg.ReceiverID)
	assert.NotEqual(t, uuid.Nil, msg.ID, "store assigns the message id")
	assert.Equal(t, 1, store.count())

	published := events.events()
	require.Len(t, published, 2, "one event per participant")

	targets := make(map[uuid.UUID]bool)
	for _, e := range published {
		assert.Equal(t, pubsub.TopicMessageCreated, e.topic)
		ev, ok := e.payload.(*dto.MessageCreatedV1)
		require.True(t, ok)
		targets[ev.Target()] = true
	}
	assert.True(t, targets[sender.UserID], "sender sessions get the echo")
	assert.True(t, targets[receiver.ID], "receiver sessions get the message")
}

func TestDispatcher_Validation(t *testing.T) {
	d, _, store, events, sender, receiver := newDispatchFixture(t)

	tests := []struct {
		name       string
		receiverID uuid.UUID
		body       string
	}{
		{"nil receiver", uuid.Nil, "hello"},
		{"empty body", receiver.ID, ""},
		{"whitespace body", receiver.ID, "   \t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Send(context.Background(), sender, tt.receiverID, tt.body)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	assert.Zero(t, store.count(), "rejected sends persist nothing")
	assert.Empty(t, events.events(), "rejected sends deliver nothing")
}

func TestDispatcher_UnknownReceiver(t *testing.T) {
	d, _, store, events, sender, _ := newDispatchFixture(t)

	_, err := d.Send(context.Background(), sender, uuid.New(), "hello")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, store.count())
	assert.Empty(t, events.events())
}

func TestDispatcher_SameRoleRejected(t *testing.T) {
	sender := newTestUser(model.RoleFan)
	otherFan := newTestUser(model.RoleFan)
	store := &fakeStore{}
	events := &capturePublisher{}
	d := NewMessageDispatcher(NewUserResolver(newFakeDirectory(sender, otherFan)), store, events, discardLogger())

	_, err := d.Send(context.Background(), Identity{UserID: sender.ID, Role: sender.Role}, otherFan.ID, "hello")
	assert.ErrorIs(t, err, ErrPolicy)
	assert.Zero(t, store.count(), "policy rejection precedes persistence")
	assert.Empty(t, events.events())
}

func TestDispatcher_StoreFailure(t *testing.T) {
	d, _, store, events, sender, receiver := newDispatchFixture(t)
	store.appendErr = errBoom

	_, err := d.Send(context.Background(), sender, receiver.ID, "hello")
	assert.ErrorIs(t, err, ErrStore)
	assert.Empty(t, events.events(), "nothing is delivered when persistence fails")
}

func TestDispatcher_PublishFailureDoesNotFailSend(t *testing.T) {
	d, _, store, events, sender, receiver := newDispatchFixture(t)
	events.err = errBoom

	msg, err := d.Send(context.Background(), sender, receiver.ID, "hello")
	require.NoError(t, err, "the message is durable; fan-out is best-effort")
	assert.NotNil(t, msg)
	assert.Equal(t, 1, store.count())
}
