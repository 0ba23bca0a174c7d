package event

import "github.com/google/uuid"

type Kind int16

const (
	Connected Kind = iota + 1
	Disconnected
	MessageCreated
	PresenceChanged
	DispatchFailed
)

func (k Kind) String() string {
	switch k {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	case MessageCreated:
		return "message_created"
	case PresenceChanged:
		return "presence_changed"
	case DispatchFailed:
		return "dispatch_failed"
	default:
		return "unknown"
	}
}

type Priority int32

const (
	PriorityLow    Priority = 10
	PriorityNormal Priority = 20
	PriorityHigh   Priority = 30
)

// Eventer defines the contract for all data packets flowing through the Hub.
type Eventer interface {
	GetID() string
	GetKind() Kind
	GetUserID() uuid.UUID
	GetPriority() Priority
	GetOccurredAt() int64
	GetPayload() any
	GetCached() any
	SetCached(any)
}
