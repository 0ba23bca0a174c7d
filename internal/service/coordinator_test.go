package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanchat/messaging-service/internal/adapter/pubsub"
	"github.com/fanchat/messaging-service/internal/domain/model"
	"github.com/fanchat/messaging-service/internal/domain/registry"
	"github.com/fanchat/messaging-service/internal/service/dto"
)

func newCoordinatorFixture(t *testing.T) (*LifecycleCoordinator, *fakeDirectory, *capturePublisher, Identity) {
	t.Helper()

	user := newTestUser(model.RoleFan)
	directory := newFakeDirectory(user)
	events := &capturePublisher{}
	hub := registry.NewHub()
	t.Cleanup(hub.Shutdown)

	c := NewLifecycleCoordinator(hub, directory, events, discardLogger(), 16)
	return c, directory, events, Identity{UserID: user.ID, Role: user.Role}
}

func presenceEvents(events *capturePublisher) []*dto.PresenceUpdatedV1 {
	var out []*dto.PresenceUpdatedV1
	for _, e := range events.events() {
		if e.topic == pubsub.TopicPresenceUpdated {
			out = append(out, e.payload.(*dto.PresenceUpdatedV1))
		}
	}
	return out
}

func TestCoordinator_PresenceEdges(t *testing.T) {
	c, directory, events, id := newCoordinatorFixture(t)
	ctx := context.Background()

	conn1, err := c.Subscribe(ctx, id)
	require.NoError(t, err)
	conn2, err := c.Subscribe(ctx, id)
	require.NoError(t, err)

	published := presenceEvents(events)
	require.Len(t, published, 1, "only the 0->1 transition broadcasts")
	assert.Equal(t, id.UserID, published[0].User())
	assert.True(t, published[0].Online)

	c.Unsubscribe(id.UserID, conn1.GetID())
	assert.Len(t, presenceEvents(events), 1, "1 remaining connection, no offline edge")

	c.Unsubscribe(id.UserID, conn2.GetID())
	published = presenceEvents(events)
	require.Len(t, published, 2, "last disconnect broadcasts offline")
	assert.False(t, published[1].Online)

	assert.Equal(t, []bool{true, false}, directory.onlineCalls)
}

func TestCoordinator_UnsubscribeIdempotent(t *testing.T) {
	c, _, events, id := newCoordinatorFixture(t)

	conn, err := c.Subscribe(context.Background(), id)
	require.NoError(t, err)

	c.Unsubscribe(id.UserID, conn.GetID())
	c.Unsubscribe(id.UserID, conn.GetID())

	assert.Len(t, presenceEvents(events), 2, "duplicate teardown broadcasts nothing extra")
}

func TestCoordinator_ConcurrentSubscribeSingleEdge(t *testing.T) {
	c, _, events, id := newCoordinatorFixture(t)

	const sessions = 16
	var wg sync.WaitGroup
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Subscribe(context.Background(), id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, presenceEvents(events), 1, "racing connects produce exactly one online broadcast")
}

func TestCoordinator_DirectoryFailureDoesNotSuppressBroadcast(t *testing.T) {
	c, directory, events, id := newCoordinatorFixture(t)
	directory.setOnlineErr = errBoom

	_, err := c.Subscribe(context.Background(), id)
	require.NoError(t, err)

	assert.Len(t, presenceEvents(events), 1, "registry state is the trust source")
}
