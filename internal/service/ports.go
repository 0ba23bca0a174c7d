package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fanchat/messaging-service/internal/domain/model"
)

// Order selects the sort direction of a history query.
type Order int

const (
	OrderAsc Order = iota
	OrderDesc
)

// Directory is the user collaborator: role lookups and the externally
// persisted online flag. Implementations must return ErrNotFound for unknown
// users and ErrEmailExists on duplicate registration.
type Directory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, u *model.User) error
	SetOnline(ctx context.Context, id uuid.UUID, online bool) error
	ListUsers(ctx context.Context) ([]*model.User, error)
}

// MessageStore is the append-only persistence collaborator.
type MessageStore interface {
	Append(ctx context.Context, senderID, receiverID uuid.UUID, body string, at time.Time) (*model.Message, error)
	QueryBetween(ctx context.Context, a, b uuid.UUID, order Order) ([]*model.Message, error)
}
