package wsmarshaller

import "github.com/fanchat/messaging-service/internal/domain/model"

type wsMessage struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Body       string `json:"body"`
	CreatedAt  int64  `json:"created_at"`
}

func mapMessage(m *model.Message) *wsMessage {
	return &wsMessage{
		ID:         m.ID.String(),
		SenderID:   m.SenderID.String(),
		ReceiverID: m.ReceiverID.String(),
		Body:       m.Body,
		CreatedAt:  m.CreatedAt,
	}
}
