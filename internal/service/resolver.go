package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/fanchat/messaging-service/internal/domain/model"
)

const roleCacheSize = 10000

// Resolver answers "which role does this user have" on the hot dispatch path
// and fetches full participant records for the history path.
type Resolver interface {
	// ResolveRole returns the receiver's role, serving hot identities from
	// an LRU cache. Roles are immutable once assigned, so the cache never
	// goes stale; the volatile online flag is deliberately not cached.
	ResolveRole(ctx context.Context, userID uuid.UUID) (model.Role, error)
	// ResolveParticipants fetches both users of a conversation in parallel,
	// with fresh (uncached) records.
	ResolveParticipants(ctx context.Context, meID, otherID uuid.UUID) (*model.User, *model.User, error)
}

type UserResolver struct {
	directory Directory
	cache     *lru.Cache[uuid.UUID, model.Role]
}

func NewUserResolver(directory Directory) *UserResolver {
	cache, _ := lru.New[uuid.UUID, model.Role](roleCacheSize)
	return &UserResolver{
		directory: directory,
		cache:     cache,
	}
}

func (r *UserResolver) ResolveRole(ctx context.Context, userID uuid.UUID) (model.Role, error) {
	if role, ok := r.cache.Get(userID); ok {
		return role, nil
	}

	u, err := r.directory.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}

	r.cache.Add(userID, u.Role)
	return u.Role, nil
}

func (r *UserResolver) ResolveParticipants(ctx context.Context, meID, otherID uuid.UUID) (*model.User, *model.User, error) {
	g, gCtx := errgroup.WithContext(ctx)

	var me, other *model.User

	g.Go(func() error {
		var err error
		me, err = r.directory.GetUser(gCtx, meID)
		return err
	})

	g.Go(func() error {
		var err error
		other, err = r.directory.GetUser(gCtx, otherID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("resolve participants: %w", err)
	}
	return me, other, nil
}
