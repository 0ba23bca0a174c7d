// Package httpapi exposes the synchronous surface: account routes, the
// conversation history query, a REST send fallback and operational endpoints.
// The realtime path lives in handler/ws and is only mounted here.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/fanchat/messaging-service/internal/domain/model"
	"github.com/fanchat/messaging-service/internal/domain/registry"
	"github.com/fanchat/messaging-service/internal/handler/ws"
	"github.com/fanchat/messaging-service/internal/service"
)

type API struct {
	logger     *slog.Logger
	auth       service.Auther
	accounts   service.Accounter
	history    service.HistoryReader
	dispatcher service.Dispatcher
	hub        registry.Hubber
	realtime   *ws.Handler
}

func NewAPI(
	logger *slog.Logger,
	auth service.Auther,
	accounts service.Accounter,
	history service.HistoryReader,
	dispatcher service.Dispatcher,
	hub registry.Hubber,
	realtime *ws.Handler,
) *API {
	return &API{
		logger:     logger.With("component", "http"),
		auth:       auth,
		accounts:   accounts,
		history:    history,
		dispatcher: dispatcher,
		hub:        hub,
		realtime:   realtime,
	}
}

func (a *API) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", a.handleHealthz)
	r.Get("/ws", a.realtime.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", a.handleRegister)
		r.Post("/auth/login", a.handleLogin)
		r.Get("/stats", a.handleStats)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth)
			r.Get("/users", a.handleContacts)
			r.Get("/chat/{userID}", a.handleHistory)
			r.Post("/chat/send", a.handleSend)
		})
	})

	return r
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, r, service.ErrValidation)
		return
	}

	u, token, err := a.accounts.Register(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusCreated, map[string]any{
		"user":  mapUser(u),
		"token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, r, service.ErrValidation)
		return
	}

	token, err := a.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{"token": token})
}

// handleContacts lists the users the caller may message.
func (a *API) handleContacts(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		a.writeError(w, r, service.ErrMissingToken)
		return
	}

	contacts, err := a.history.Contacts(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	out := make([]*userView, 0, len(contacts))
	for _, u := range contacts {
		out = append(out, mapUser(u))
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"users": out})
}

func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		a.writeError(w, r, service.ErrMissingToken)
		return
	}

	otherID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		a.writeError(w, r, service.ErrValidation)
		return
	}

	order := service.OrderAsc
	if r.URL.Query().Get("sort") == "desc" {
		order = service.OrderDesc
	}

	other, msgs, err := a.history.Between(r.Context(), id, otherID, order)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	out := make([]*messageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, mapMessage(m))
	}
	a.writeJSON(w, http.StatusOK, map[string]any{
		"user":     mapUser(other),
		"messages": out,
	})
}

type sendRequest struct {
	ReceiverID string `json:"receiver_id"`
	Body       string `json:"body"`
}

// handleSend is the REST fallback for producing a message. It reuses the
// realtime dispatch pipeline, so connected sessions of both participants
// still receive the fan-out.
func (a *API) handleSend(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		a.writeError(w, r, service.ErrMissingToken)
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, r, service.ErrValidation)
		return
	}
	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		a.writeError(w, r, service.ErrValidation)
		return
	}

	msg, err := a.dispatcher.Send(r.Context(), id, receiverID, req.Body)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusCreated, mapMessage(msg))
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := a.hub.Stats()
	a.writeJSON(w, http.StatusOK, map[string]any{
		"total_users":       stats.TotalUsers,
		"total_connections": stats.TotalConnections,
		"uptime_seconds":    int64(stats.Uptime.Seconds()),
	})
}

func (a *API) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type userView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	Online bool   `json:"online"`
}

func mapUser(u *model.User) *userView {
	return &userView{
		ID:     u.ID.String(),
		Name:   u.Name,
		Email:  u.Email,
		Role:   string(u.Role),
		Online: u.Online,
	}
}

type messageView struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Body       string `json:"body"`
	CreatedAt  int64  `json:"created_at"`
}

func mapMessage(m *model.Message) *messageView {
	return &messageView{
		ID:         m.ID.String(),
		SenderID:   m.SenderID.String(),
		ReceiverID: m.ReceiverID.String(),
		Body:       m.Body,
		CreatedAt:  m.CreatedAt,
	}
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("response encode failed", "err", err)
	}
}

type errorBody struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// writeError maps the service taxonomy onto HTTP statuses. Unrecognized
// errors stay opaque to the client.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status = http.StatusInternalServerError
		body   = errorBody{Code: "INTERNAL", Msg: "internal error"}
	)

	switch {
	case errors.Is(err, service.ErrMissingToken):
		status, body = http.StatusUnauthorized, errorBody{Code: "AUTH_MISSING", Msg: err.Error()}
	case errors.Is(err, service.ErrInvalidToken):
		status, body = http.StatusUnauthorized, errorBody{Code: "AUTH_INVALID", Msg: service.ErrInvalidToken.Error()}
	case errors.Is(err, service.ErrInvalidCredentials):
		status, body = http.StatusUnauthorized, errorBody{Code: "AUTH_CREDENTIALS", Msg: err.Error()}
	case errors.Is(err, service.ErrValidation):
		status, body = http.StatusBadRequest, errorBody{Code: "VALIDATION", Msg: service.ErrValidation.Error()}
	case errors.Is(err, service.ErrEmailExists):
		status, body = http.StatusConflict, errorBody{Code: "EMAIL_EXISTS", Msg: err.Error()}
	case errors.Is(err, service.ErrNotFound):
		status, body = http.StatusNotFound, errorBody{Code: "NOT_FOUND", Msg: err.Error()}
	case errors.Is(err, service.ErrPolicy):
		status, body = http.StatusForbidden, errorBody{Code: "POLICY", Msg: err.Error()}
	default:
		a.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}

	a.writeJSON(w, status, map[string]any{"error": body})
}
