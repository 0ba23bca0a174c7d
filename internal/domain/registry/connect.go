package registry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/fanchat/messaging-service/internal/domain/event"
	"github.com/fanchat/messaging-service/internal/domain/model"
)

// Interface guard
var _ Connector = (*connect)(nil)

// Connector is the session handle given to transport handlers. It decouples
// the registry from the concrete implementation and allows mocking in tests.
type Connector interface {
	GetID() uuid.UUID
	GetUserID() uuid.UUID
	GetRole() model.Role
	GetOpenedAt() time.Time
	Send(ev event.Eventer, timeout time.Duration) bool // thread-safe, best-effort
	Recv() <-chan event.Eventer
	Done() <-chan struct{}
	Close() // idempotent teardown of the handle itself
}

type connect struct {
	id       uuid.UUID
	userID   uuid.UUID
	role     model.Role
	openedAt time.Time

	ctx      context.Context
	cancelFn context.CancelFunc

	// sendCh is the per-session mailbox drained by the transport's write
	// pump. It is never closed; cancellation of ctx is the end-of-life
	// signal, so a racing Send can never panic on a closed channel.
	sendCh chan event.Eventer

	closeOnce    sync.Once
	droppedCount atomic.Uint64
}

// NewConnector creates a session handle bound to the given context. Closing
// the handle (or cancelling the parent context) releases the write pump.
func NewConnector(ctx context.Context, userID uuid.UUID, role model.Role, bufferSize int) Connector {
	childCtx, cancel := context.WithCancel(ctx)
	return &connect{
		id:       uuid.New(),
		userID:   userID,
		role:     role,
		openedAt: time.Now(),
		ctx:      childCtx,
		cancelFn: cancel,
		sendCh:   make(chan event.Eventer, bufferSize),
	}
}

func (c *connect) GetID() uuid.UUID       { return c.id }
func (c *connect) GetUserID() uuid.UUID   { return c.userID }
func (c *connect) GetRole() model.Role    { return c.role }
func (c *connect) GetOpenedAt() time.Time { return c.openedAt }

// Send attempts to push an event into the session mailbox. It waits up to
// timeout for buffer space so transient consumer jitter does not drop events,
// then gives up: delivery to a slow or dead session is a no-op, not an error.
func (c *connect) Send(ev event.Eventer, timeout time.Duration) bool {
	select {
	case <-c.ctx.Done():
		return false
	case c.sendCh <- ev:
		return true
	default:
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-c.ctx.Done():
		return false
	case c.sendCh <- ev:
		return true
	case <-t.C:
		c.droppedCount.Add(1)
		return false
	}
}

func (c *connect) Recv() <-chan event.Eventer { return c.sendCh }
func (c *connect) Done() <-chan struct{}      { return c.ctx.Done() }

// Dropped reports how many events this session shed under backpressure.
func (c *connect) Dropped() uint64 { return c.droppedCount.Load() }

// Close cancels the session context exactly once. It may be called
// concurrently by the hub (shutdown), the cell (detach) and the transport
// handler (defer) without double teardown.
func (c *connect) Close() {
	c.closeOnce.Do(c.cancelFn)
}
