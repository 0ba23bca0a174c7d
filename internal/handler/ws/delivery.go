// Package ws is the realtime transport boundary. Inbound it understands the
// handshake (credential material), send requests and disconnects; outbound it
// emits message deliveries, presence updates and per-connection errors.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fanchat/messaging-service/internal/domain/event"
	"github.com/fanchat/messaging-service/internal/domain/model"
	"github.com/fanchat/messaging-service/internal/domain/registry"
	wsmarshaller "github.com/fanchat/messaging-service/internal/handler/marshaller/ws"
	"github.com/fanchat/messaging-service/internal/service"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 30 * time.Second
	maxFrameSize = 4096
)

type Handler struct {
	logger      *slog.Logger
	auth        service.Auther
	coordinator service.Coordinator
	dispatcher  service.Dispatcher
	upgrader    websocket.Upgrader
}

func NewHandler(logger *slog.Logger, auth service.Auther, coordinator service.Coordinator, dispatcher service.Dispatcher) *Handler {
	return &Handler{
		logger:      logger.With("component", "ws"),
		auth:        auth,
		coordinator: coordinator,
		dispatcher:  dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// clientFrame is the bounded set of inbound event variants.
type clientFrame struct {
	Type       string `json:"type"` // "send"
	ReceiverID string `json:"receiver_id,omitempty"`
	Body       string `json:"body,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Authentication happens before the upgrade and before any registry
	// state exists; a rejected handshake leaves nothing behind.
	id, err := h.authenticate(r)
	if err != nil {
		status := http.StatusUnauthorized
		http.Error(w, err.Error(), status)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", "err", err)
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn, err := h.coordinator.Subscribe(ctx, id)
	if err != nil {
		h.logger.Error("subscription rejected", "user_id", id.UserID, "err", err)
		return
	}
	defer h.coordinator.Unsubscribe(id.UserID, conn.GetID())
	defer conn.Close()

	l := h.logger.With("user_id", id.UserID, "conn_id", conn.GetID())
	l.Info("ws session established", "role", id.Role)

	// Handshake acknowledgement travels through the session mailbox like
	// every other outbound frame, keeping a single writer per socket.
	conn.Send(event.NewSystemEvent(id.UserID, event.Connected, event.PriorityNormal, &model.ConnectedPayload{
		Ok:            true,
		ConnectionID:  conn.GetID().String(),
		ServerVersion: model.ServerVersion,
	}), time.Second)

	go h.readPump(ctx, cancel, ws, conn.Send, id)
	h.writePump(ctx, ws, conn)

	l.Info("ws session closed")
}

// authenticate extracts the token from the dedicated query field or the
// Authorization header and verifies it.
func (h *Handler) authenticate(r *http.Request) (service.Identity, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if header := r.Header.Get("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			}
		}
	}
	return h.auth.Verify(token)
}

type sendFn func(ev event.Eventer, timeout time.Duration) bool

// readPump consumes inbound frames until the client goes away. Dispatch
// errors are pushed back on this session only and never close it.
func (h *Handler) readPump(ctx context.Context, cancel context.CancelFunc, ws *websocket.Conn, send sendFn, id service.Identity) {
	defer cancel()

	ws.SetReadLimit(maxFrameSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			send(h.errorEvent(id.UserID, service.ErrValidation), writeWait)
			continue
		}

		switch frame.Type {
		case "send":
			h.handleSend(ctx, send, id, frame)
		default:
			send(h.errorEvent(id.UserID, service.ErrValidation), writeWait)
		}
	}
}

func (h *Handler) handleSend(ctx context.Context, send sendFn, id service.Identity, frame clientFrame) {
	receiverID, err := uuid.Parse(frame.ReceiverID)
	if err != nil {
		send(h.errorEvent(id.UserID, service.ErrValidation), writeWait)
		return
	}

	if _, err := h.dispatcher.Send(ctx, id, receiverID, frame.Body); err != nil {
		send(h.errorEvent(id.UserID, err), writeWait)
	}
}

// writePump is the single writer of the socket: it drains the session
// mailbox and keeps the connection alive with pings.
func (h *Handler) writePump(ctx context.Context, ws *websocket.Conn, conn registry.Connector) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-conn.Done():
			// Server-initiated teardown (shutdown or eviction).
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
				time.Now().Add(writeWait))
			return

		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}

		case ev := <-conn.Recv():
			data, err := wsmarshaller.Marshal(ev)
			if err != nil {
				h.logger.Error("frame marshal failed", "event_id", ev.GetID(), "err", err)
				continue
			}
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}

func (h *Handler) errorEvent(userID uuid.UUID, err error) event.Eventer {
	return event.NewSystemEvent(userID, event.DispatchFailed, event.PriorityHigh, &model.ErrorPayload{
		Code: errorCode(err),
		Msg:  errorMessage(err),
	})
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, service.ErrValidation):
		return "VALIDATION"
	case errors.Is(err, service.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, service.ErrPolicy):
		return "POLICY"
	default:
		return "DISPATCH_FAILED"
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrValidation):
		return service.ErrValidation.Error()
	case errors.Is(err, service.ErrNotFound):
		return service.ErrNotFound.Error()
	case errors.Is(err, service.ErrPolicy):
		return service.ErrPolicy.Error()
	default:
		// Internal details stay on the server.
		return "message send failed"
	}
}
