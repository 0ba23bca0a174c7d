package model

import "github.com/google/uuid"

const ServerVersion = "1.0.0"

// ConnectedPayload is the handshake acknowledgement sent to a freshly
// subscribed session.
type ConnectedPayload struct {
	Ok            bool   `json:"ok"`
	ConnectionID  string `json:"connection_id"`
	ServerVersion string `json:"server_version"`
}

// DisconnectedPayload is the notification pushed before the server closes a
// session on its own initiative.
type DisconnectedPayload struct {
	Reason string `json:"reason"`
	Code   string `json:"code,omitempty"` // "SHUTDOWN", "EVICTED"
}

// PresencePayload announces an online/offline edge to every connected party.
type PresencePayload struct {
	UserID uuid.UUID `json:"user_id"`
	Online bool      `json:"online"`
}

// ErrorPayload reports a per-message failure to the dispatching session only.
type ErrorPayload struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
