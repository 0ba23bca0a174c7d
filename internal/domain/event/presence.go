package event

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/fanchat/messaging-service/internal/domain/model"
)

var _ Eventer = (*PresenceEvent)(nil)

// PresenceEvent carries an online/offline edge. The coordinator has already
// deduplicated it to true 0->1 / 1->0 transitions; the broadcaster relays it
// globally without further checks.
type PresenceEvent struct {
	id         string
	userID     uuid.UUID
	online     bool
	occurredAt int64
	cached     atomic.Value
}

func NewPresenceEvent(userID uuid.UUID, online bool, occurredAt int64) *PresenceEvent {
	if occurredAt == 0 {
		occurredAt = time.Now().UnixMilli()
	}
	return &PresenceEvent{
		id:         uuid.NewString(),
		userID:     userID,
		online:     online,
		occurredAt: occurredAt,
	}
}

func (e *PresenceEvent) GetID() string         { return e.id }
func (e *PresenceEvent) GetKind() Kind         { return PresenceChanged }
func (e *PresenceEvent) GetUserID() uuid.UUID  { return e.userID }
func (e *PresenceEvent) GetPriority() Priority { return PriorityNormal }
func (e *PresenceEvent) GetOccurredAt() int64  { return e.occurredAt }
func (e *PresenceEvent) GetCached() any        { return e.cached.Load() }
func (e *PresenceEvent) SetCached(v any)       { e.cached.Store(v) }

func (e *PresenceEvent) GetPayload() any {
	return &model.PresencePayload{UserID: e.userID, Online: e.online}
}
