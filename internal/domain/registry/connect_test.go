package registry

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/fanchat/messaging-service/internal/domain/model"
)

func TestConnector_SendAfterClose(t *testing.T) {
	conn := NewConnector(context.Background(), uuid.New(), model.RolePlayer, 1)
	conn.Close()

	ok := conn.Send(testEvent(uuid.New()), 10*time.Millisecond)
	assert.False(t, ok, "closed session accepts nothing")
}

func TestConnector_SendTimesOutOnFullBuffer(t *testing.T) {
	conn := NewConnector(context.Background(), uuid.New(), model.RolePlayer, 1)
	defer conn.Close()

	assert.True(t, conn.Send(testEvent(uuid.New()), 10*time.Millisecond))
	// Buffer full and nobody draining.
	assert.False(t, conn.Send(testEvent(uuid.New()), 10*time.Millisecond))
}

func TestConnector_CloseIsIdempotent(t *testing.T) {
	conn := NewConnector(context.Background(), uuid.New(), model.RoleFan, 1)

	conn.Close()
	conn.Close()

	select {
	case <-conn.Done():
	default:
		t.Fatal("Done channel not closed")
	}
}

func TestConnector_ParentContextCancelEndsSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	conn := NewConnector(ctx, uuid.New(), model.RoleFan, 1)

	cancel()

	select {
	case <-conn.Done():
	case <-time.After(time.Second):
		t.Fatal("session outlived its parent context")
	}
}
