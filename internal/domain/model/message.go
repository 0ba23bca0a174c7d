package model

import "github.com/google/uuid"

// Message is the append-only persisted entity. It is created exactly once by
// the dispatch path after the role policy approves it, and never mutated.
type Message struct {
	ID         uuid.UUID
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Body       string
	CreatedAt  int64 // unix millis
}
