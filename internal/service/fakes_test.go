package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fanchat/messaging-service/internal/domain/model"
)

// fakeDirectory is an in-memory Directory backed by a plain map.
type fakeDirectory struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User

	getErr       error
	setOnlineErr error
	onlineCalls  []bool
	getCalls     int
}

func newFakeDirectory(users ...*model.User) *fakeDirectory {
	d := &fakeDirectory{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *fakeDirectory) GetUser(_ context.Context, id uuid.UUID) (*model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.getCalls++
	if d.getErr != nil {
		return nil, d.getErr
	}
	u, ok := d.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (d *fakeDirectory) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (d *fakeDirectory) CreateUser(_ context.Context, u *model.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.users {
		if existing.Email == u.Email {
			return ErrEmailExists
		}
	}
	d.users[u.ID] = u
	return nil
}

func (d *fakeDirectory) SetOnline(_ context.Context, id uuid.UUID, online bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onlineCalls = append(d.onlineCalls, online)
	if d.setOnlineErr != nil {
		return d.setOnlineErr
	}
	u, ok := d.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Online = online
	return nil
}

func (d *fakeDirectory) ListUsers(_ context.Context) ([]*model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*model.User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	return out, nil
}

// fakeStore records appended messages and can be forced to fail.
type fakeStore struct {
	mu       sync.Mutex
	appended []*model.Message
	history  []*model.Message

	appendErr error
	queryErr  error
}

func (s *fakeStore) Append(_ context.Context, senderID, receiverID uuid.UUID, body string, at time.Time) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return nil, s.appendErr
	}
	msg := &model.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		CreatedAt:  at.UnixMilli(),
	}
	s.appended = append(s.appended, msg)
	return msg, nil
}

func (s *fakeStore) QueryBetween(_ context.Context, a, b uuid.UUID, _ Order) ([]*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.history, nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.appended)
}

// capturePublisher records every published event for assertion.
type capturePublisher struct {
	mu        sync.Mutex
	published []capturedEvent
	err       error
}

type capturedEvent struct {
	topic   string
	payload any
}

func (p *capturePublisher) Publish(_ context.Context, topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, capturedEvent{topic: topic, payload: payload})
	return nil
}

func (p *capturePublisher) events() []capturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]capturedEvent(nil), p.published...)
}

var errBoom = errors.New("boom")

func newTestUser(role model.Role) *model.User {
	id := uuid.New()
	return &model.User{
		ID:        id,
		Name:      "user-" + id.String()[:8],
		Email:     id.String()[:8] + "@test.local",
		Role:      role,
		CreatedAt: time.Now().UnixMilli(),
	}
}
