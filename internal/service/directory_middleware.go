package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/fanchat/messaging-service/internal/domain/model"
)

// DirectoryMiddleware decorates the user directory with a circuit breaker
// and outcome logging, without touching business logic. The breaker shields
// the dispatch path when the directory backend degrades: each dependent
// operation fails individually instead of piling up.
type DirectoryMiddleware struct {
	Next    Directory
	Logger  *slog.Logger
	breaker *gobreaker.CircuitBreaker
}

func NewDirectoryMiddleware(next Directory, logger *slog.Logger) *DirectoryMiddleware {
	return &DirectoryMiddleware{
		Next:   next,
		Logger: logger,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "user-directory",
			Timeout: 15 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			// Business misses are not backend failures.
			IsSuccessful: func(err error) bool {
				return err == nil ||
					errors.Is(err, ErrNotFound) ||
					errors.Is(err, ErrEmailExists)
			},
		}),
	}
}

func (m *DirectoryMiddleware) execute(op string, fn func() (any, error)) (any, error) {
	start := time.Now()
	res, err := m.breaker.Execute(fn)
	if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrEmailExists) {
		m.Logger.Warn("directory call failed",
			"op", op,
			"err", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return res, err
}

func (m *DirectoryMiddleware) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	res, err := m.execute("get_user", func() (any, error) {
		return m.Next.GetUser(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return res.(*model.User), nil
}

func (m *DirectoryMiddleware) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	res, err := m.execute("get_user_by_email", func() (any, error) {
		return m.Next.GetUserByEmail(ctx, email)
	})
	if err != nil {
		return nil, err
	}
	return res.(*model.User), nil
}

func (m *DirectoryMiddleware) CreateUser(ctx context.Context, u *model.User) error {
	_, err := m.execute("create_user", func() (any, error) {
		return nil, m.Next.CreateUser(ctx, u)
	})
	return err
}

func (m *DirectoryMiddleware) SetOnline(ctx context.Context, id uuid.UUID, online bool) error {
	_, err := m.execute("set_online", func() (any, error) {
		return nil, m.Next.SetOnline(ctx, id, online)
	})
	return err
}

func (m *DirectoryMiddleware) ListUsers(ctx context.Context) ([]*model.User, error) {
	res, err := m.execute("list_users", func() (any, error) {
		return m.Next.ListUsers(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.([]*model.User), nil
}
