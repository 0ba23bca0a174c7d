package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fanchat/messaging-service/internal/domain/model"
)

// HistoryReader serves the synchronous conversation paths. It applies the
// same role pairing policy as the realtime path, so a fan can never read a
// fan's thread regardless of entry point.
type HistoryReader interface {
	Between(ctx context.Context, me Identity, otherID uuid.UUID, order Order) (*model.User, []*model.Message, error)
	// Contacts lists the users the caller may message, i.e. everyone of the
	// opposite role.
	Contacts(ctx context.Context, me Identity) ([]*model.User, error)
}

type HistoryService struct {
	resolver  Resolver
	store     MessageStore
	directory Directory
}

func NewHistoryService(resolver Resolver, store MessageStore, directory Directory) *HistoryService {
	return &HistoryService{
		resolver:  resolver,
		store:     store,
		directory: directory,
	}
}

// Between returns the other participant's record plus the ordered message
// log of the pair.
func (s *HistoryService) Between(ctx context.Context, me Identity, otherID uuid.UUID, order Order) (*model.User, []*model.Message, error) {
	if otherID == uuid.Nil {
		return nil, nil, ErrValidation
	}

	mine, other, err := s.resolver.ResolveParticipants(ctx, me.UserID, otherID)
	if err != nil {
		return nil, nil, err
	}

	if !Allowed(mine.Role, other.Role) {
		return nil, nil, ErrPolicy
	}

	msgs, err := s.store.QueryBetween(ctx, me.UserID, otherID, order)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return other, msgs, nil
}

func (s *HistoryService) Contacts(ctx context.Context, me Identity) ([]*model.User, error) {
	all, err := s.directory.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	contacts := make([]*model.User, 0, len(all))
	for _, u := range all {
		if Allowed(me.Role, u.Role) {
			contacts = append(contacts, u)
		}
	}
	return contacts, nil
}
