/*
Package registry is the single owner of live-connection state. Every online
user is represented by an isolated Cell holding that user's session set; the
cell's session count is the user's live-connection count, so the "connection
registry" and the "session router" of the messaging core are one structure
that cannot drift apart.

Delivery is decoupled through a per-cell mailbox goroutine: a slow consumer
on one session never blocks registration, dispatch or other users' delivery.
Presence edges (0->1, 1->0) are decided inside the same critical section that
mutates the session set, which makes the increment/broadcast-if-zero sequence
atomic per user.
*/
package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fanchat/messaging-service/internal/domain/event"
)

// Cell implements isolated delivery for a single user.
type Cell struct {
	userID uuid.UUID

	// mailbox decouples the hub from individual session delivery.
	mailbox chan event.Eventer

	// sessions holds every active transport handle for the user. Its
	// cardinality is the user's live-connection count.
	sessions map[uuid.UUID]Connector

	mu sync.RWMutex

	doneCh   chan struct{}
	stopOnce sync.Once

	sendTimeout time.Duration
}

func NewCell(userID uuid.UUID, mailboxSize int, sendTimeout time.Duration) *Cell {
	c := &Cell{
		userID:      userID,
		mailbox:     make(chan event.Eventer, mailboxSize),
		sessions:    make(map[uuid.UUID]Connector),
		doneCh:      make(chan struct{}),
		sendTimeout: sendTimeout,
	}
	go c.loop()
	return c
}

// Attach adds a session and returns the new live count.
func (c *Cell) Attach(conn Connector) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[conn.GetID()] = conn
	return len(c.sessions)
}

// Detach removes a session. removed is false when the session was already
// gone, which makes duplicate disconnect signals harmless.
func (c *Cell) Detach(connID uuid.UUID) (removed bool, remaining int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conn, ok := c.sessions[connID]
	if !ok {
		return false, len(c.sessions)
	}
	delete(c.sessions, connID)
	conn.Close()
	return true, len(c.sessions)
}

// Size reports the current live-connection count.
func (c *Cell) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

// Push enqueues an event for delivery to every session of this user.
// Returns false when the mailbox is saturated.
func (c *Cell) Push(ev event.Eventer) bool {
	select {
	case c.mailbox <- ev:
		return true
	default:
		return false
	}
}

func (c *Cell) loop() {
	for {
		select {
		case <-c.doneCh:
			return
		case ev := <-c.mailbox:
			c.deliver(ev)
		}
	}
}

func (c *Cell) deliver(ev event.Eventer) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, conn := range c.sessions {
		conn.Send(ev, c.sendTimeout)
	}
}

// Stop terminates the delivery goroutine and closes every remaining session.
func (c *Cell) Stop() {
	c.stopOnce.Do(func() {
		close(c.doneCh)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	for id, conn := range c.sessions {
		conn.Close()
		delete(c.sessions, id)
	}
}
