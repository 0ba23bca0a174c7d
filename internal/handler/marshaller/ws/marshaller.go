// Package wsmarshaller maps domain events onto the JSON frames of the
// websocket wire contract.
package wsmarshaller

import (
	"encoding/json"

	"github.com/fanchat/messaging-service/internal/domain/event"
	"github.com/fanchat/messaging-service/internal/domain/model"
)

// Frame is the generic wrapper for every server-to-client message.
type Frame struct {
	Event   string `json:"event"` // "message", "presence", "connected", "disconnected", "error"
	ID      string `json:"id"`
	SentAt  int64  `json:"sent_at"`
	Payload any    `json:"payload"`
}

// Marshal prepares an event for websocket transmission. The encoded frame is
// cached on the event, so fan-out to many sessions serializes once.
func Marshal(ev event.Eventer) ([]byte, error) {
	if cached := ev.GetCached(); cached != nil {
		if data, ok := cached.([]byte); ok {
			return data, nil
		}
	}

	res := &Frame{
		ID:     ev.GetID(),
		SentAt: ev.GetOccurredAt(),
	}

	switch p := ev.GetPayload().(type) {
	case *model.Message:
		res.Event = "message"
		res.Payload = mapMessage(p)
	case *model.PresencePayload:
		res.Event = "presence"
		res.Payload = p
	case *model.ConnectedPayload:
		res.Event = "connected"
		res.Payload = p
	case *model.DisconnectedPayload:
		res.Event = "disconnected"
		res.Payload = p
	case *model.ErrorPayload:
		res.Event = "error"
		res.Payload = p
	default:
		res.Event = ev.GetKind().String()
		res.Payload = p
	}

	data, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}

	ev.SetCached(data)
	return data, nil
}
