// Package dto holds the wire payloads travelling over the internal event bus.
package dto

import (
	"github.com/google/uuid"

	"github.com/fanchat/messaging-service/internal/domain/model"
)

// MessageCreatedV1 is published once per participant of a persisted message.
// TargetID is the physical recipient of this instance (the "where"); the
// sender/receiver pair stays the business truth (the "who").
type MessageCreatedV1 struct {
	MessageID  string `json:"message_id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Body       string `json:"body"`
	CreatedAt  int64  `json:"created_at"`
	TargetID   string `json:"target_id"`
}

func NewMessageCreatedV1(msg *model.Message, target uuid.UUID) *MessageCreatedV1 {
	return &MessageCreatedV1{
		MessageID:  msg.ID.String(),
		SenderID:   msg.SenderID.String(),
		ReceiverID: msg.ReceiverID.String(),
		Body:       msg.Body,
		CreatedAt:  msg.CreatedAt,
		TargetID:   target.String(),
	}
}

func (d *MessageCreatedV1) ToDomain() *model.Message {
	return &model.Message{
		ID:         safeParseUUID(d.MessageID),
		SenderID:   safeParseUUID(d.SenderID),
		ReceiverID: safeParseUUID(d.ReceiverID),
		Body:       d.Body,
		CreatedAt:  d.CreatedAt,
	}
}

func (d *MessageCreatedV1) Target() uuid.UUID {
	return safeParseUUID(d.TargetID)
}

// PresenceUpdatedV1 carries one deduplicated online/offline edge.
type PresenceUpdatedV1 struct {
	UserID     string `json:"user_id"`
	Online     bool   `json:"online"`
	OccurredAt int64  `json:"occurred_at"`
}

func NewPresenceUpdatedV1(userID uuid.UUID, online bool, occurredAt int64) *PresenceUpdatedV1 {
	return &PresenceUpdatedV1{
		UserID:     userID.String(),
		Online:     online,
		OccurredAt: occurredAt,
	}
}

func (d *PresenceUpdatedV1) User() uuid.UUID {
	return safeParseUUID(d.UserID)
}

func safeParseUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
