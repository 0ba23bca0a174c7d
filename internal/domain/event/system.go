package event

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var _ Eventer = (*SystemEvent)(nil)

// SystemEvent is a generic envelope for session-scoped signals: handshake
// acknowledgements, server-initiated disconnect notices and dispatch errors.
type SystemEvent struct {
	id         string
	userID     uuid.UUID
	kind       Kind
	priority   Priority
	occurredAt int64
	payload    any
	cached     atomic.Value
}

// NewSystemEvent is a universal factory for creating any signal.
func NewSystemEvent(userID uuid.UUID, kind Kind, priority Priority, payload any) *SystemEvent {
	return &SystemEvent{
		id:         uuid.NewString(),
		userID:     userID,
		kind:       kind,
		priority:   priority,
		occurredAt: time.Now().UnixMilli(),
		payload:    payload,
	}
}

func (e *SystemEvent) GetID() string         { return e.id }
func (e *SystemEvent) GetKind() Kind         { return e.kind }
func (e *SystemEvent) GetUserID() uuid.UUID  { return e.userID }
func (e *SystemEvent) GetPriority() Priority { return e.priority }
func (e *SystemEvent) GetOccurredAt() int64  { return e.occurredAt }
func (e *SystemEvent) GetPayload() any       { return e.payload }
func (e *SystemEvent) GetCached() any        { return e.cached.Load() }
func (e *SystemEvent) SetCached(v any)       { e.cached.Store(v) }
