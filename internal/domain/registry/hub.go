package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fanchat/messaging-service/internal/domain/event"
	"github.com/fanchat/messaging-service/internal/domain/model"
)

// Hubber defines the gateway for user session management and event routing.
type Hubber interface {
	// Register attaches a session and reports whether the user crossed the
	// 0->1 presence edge.
	Register(conn Connector) (wentOnline bool)
	// Unregister detaches a session and reports whether the user crossed
	// the 1->0 presence edge. Safe to call more than once per connection.
	Unregister(userID, connID uuid.UUID) (wentOffline bool)
	// Broadcast routes an event to every session of its target user.
	Broadcast(ev event.Eventer) bool
	// BroadcastAll relays an event to every session of every user.
	BroadcastAll(ev event.Eventer)
	IsConnected(userID uuid.UUID) bool
	Connections(userID uuid.UUID) int
	Stats() model.HubStats
	Shutdown()
}

var _ Hubber = (*Hub)(nil)

// Hub maps userID -> Cell. An entry exists exactly while the user holds at
// least one live connection; zero-count entries are removed, never kept.
type Hub struct {
	mu    sync.RWMutex
	cells map[uuid.UUID]*Cell

	config    hubConfig
	startedAt time.Time
}

type hubConfig struct {
	mailboxSize int
	sendTimeout time.Duration
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		cells: make(map[uuid.UUID]*Cell),
		config: hubConfig{
			mailboxSize: 256,
			sendTimeout: 500 * time.Millisecond,
		},
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register creates the user's cell on first connection. The edge decision and
// the session-set mutation happen under one lock, so two connections racing
// for a previously-offline user yield exactly one online edge.
func (h *Hub) Register(conn Connector) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	uID := conn.GetUserID()
	cell, ok := h.cells[uID]
	if !ok {
		cell = NewCell(uID, h.config.mailboxSize, h.config.sendTimeout)
		h.cells[uID] = cell
	}
	return cell.Attach(conn) == 1
}

// Unregister reclaims the session; when the last one goes, the cell is purged
// from memory and the offline edge is reported. Unknown users or already
// detached connections are no-ops.
func (h *Hub) Unregister(userID, connID uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	cell, ok := h.cells[userID]
	if !ok {
		return false
	}
	removed, remaining := cell.Detach(connID)
	if !removed {
		return false
	}
	if remaining == 0 {
		cell.Stop()
		delete(h.cells, userID)
		return true
	}
	return false
}

// Broadcast routes the event to the target user's cell. Returns false on a
// registry miss or mailbox overflow; both mean "nobody to deliver to now".
func (h *Hub) Broadcast(ev event.Eventer) bool {
	h.mu.RLock()
	cell, ok := h.cells[ev.GetUserID()]
	h.mu.RUnlock()

	if !ok {
		return false
	}
	return cell.Push(ev)
}

// BroadcastAll fans the event out to every cell. Used for presence updates,
// which by contract go to all connected parties.
func (h *Hub) BroadcastAll(ev event.Eventer) {
	h.mu.RLock()
	cells := make([]*Cell, 0, len(h.cells))
	for _, cell := range h.cells {
		cells = append(cells, cell)
	}
	h.mu.RUnlock()

	for _, cell := range cells {
		cell.Push(ev)
	}
}

func (h *Hub) IsConnected(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.cells[userID]
	return ok
}

// Connections reports the live count for one user; absent entry means zero.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	cell, ok := h.cells[userID]
	if !ok {
		return 0
	}
	return cell.Size()
}

func (h *Hub) Stats() model.HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, cell := range h.cells {
		total += cell.Size()
	}
	return model.HubStats{
		TotalUsers:       len(h.cells),
		TotalConnections: total,
		Uptime:           time.Since(h.startedAt),
	}
}

// Shutdown stops every cell goroutine and closes all sessions.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for uID, cell := range h.cells {
		cell.Stop()
		delete(h.cells, uID)
	}
}
