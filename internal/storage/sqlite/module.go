package sqlite

import (
	"context"

	"go.uber.org/fx"

	"github.com/fanchat/messaging-service/config"
	"github.com/fanchat/messaging-service/internal/service"
)

var Module = fx.Module("storage",
	fx.Provide(
		func(cfg *config.Config) (*Store, error) {
			return New(cfg.Database.Path, cfg.Database.BusyTimeout)
		},
		fx.Annotate(
			func(s *Store) service.Directory { return s },
			fx.As(new(service.Directory)),
		),
		fx.Annotate(
			func(s *Store) service.MessageStore { return s },
			fx.As(new(service.MessageStore)),
		),
	),
	fx.Invoke(func(lc fx.Lifecycle, s *Store) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return s.Close()
			},
		})
	}),
)
