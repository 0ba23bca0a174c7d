package eventbus

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/fanchat/messaging-service/internal/domain/event"
	"github.com/fanchat/messaging-service/internal/service/dto"
)

// OnMessageCreated routes one persisted message instance to its target
// user's cell. A registry miss means the user has no sessions here right
// now; delivery is best-effort so that is not an error.
func (h *EventHandler) OnMessageCreated(msg *message.Message) error {
	var d dto.MessageCreatedV1
	if err := json.Unmarshal(msg.Payload, &d); err != nil {
		// ACK: a malformed payload will never become parseable.
		h.logger.Error("message event decode failed", "msg_id", msg.UUID, "err", err)
		return nil
	}

	target := d.Target()
	if target == uuid.Nil {
		h.logger.Warn("message event without target", "msg_id", msg.UUID)
		return nil
	}

	if !h.hub.IsConnected(target) {
		return nil
	}

	ev := event.NewMessageEvent(d.ToDomain(), target)
	if !h.hub.Broadcast(ev) {
		h.logger.Debug("delivery skipped", "message_id", d.MessageID, "target", target)
	}
	return nil
}

// OnPresenceUpdated relays a deduplicated presence edge to every session of
// every connected user.
func (h *EventHandler) OnPresenceUpdated(msg *message.Message) error {
	var d dto.PresenceUpdatedV1
	if err := json.Unmarshal(msg.Payload, &d); err != nil {
		h.logger.Error("presence event decode failed", "msg_id", msg.UUID, "err", err)
		return nil
	}

	userID := d.User()
	if userID == uuid.Nil {
		return nil
	}

	h.hub.BroadcastAll(event.NewPresenceEvent(userID, d.Online, d.OccurredAt))
	return nil
}
