package event

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/fanchat/messaging-service/internal/domain/model"
)

var _ Eventer = (*MessageEvent)(nil)

// MessageEvent wraps a persisted message for fan-out delivery. It separates
// the business participants (Message.SenderID/ReceiverID, the "who") from the
// routing target (UserID, the "where"): one event instance is created per
// participant so that each user's sessions receive their own copy.
type MessageEvent struct {
	Message *model.Message
	UserID  uuid.UUID // physical recipient for hub routing

	// cached holds the once-marshalled wire frame; atomic because one event
	// fans out to several session goroutines.
	cached atomic.Value
}

func NewMessageEvent(msg *model.Message, target uuid.UUID) *MessageEvent {
	return &MessageEvent{
		Message: msg,
		UserID:  target,
	}
}

func (e *MessageEvent) GetID() string         { return e.Message.ID.String() }
func (e *MessageEvent) GetKind() Kind         { return MessageCreated }
func (e *MessageEvent) GetUserID() uuid.UUID  { return e.UserID }
func (e *MessageEvent) GetPriority() Priority { return PriorityHigh }
func (e *MessageEvent) GetOccurredAt() int64  { return e.Message.CreatedAt }
func (e *MessageEvent) GetPayload() any       { return e.Message }
func (e *MessageEvent) GetCached() any        { return e.cached.Load() }
func (e *MessageEvent) SetCached(v any)       { e.cached.Store(v) }
